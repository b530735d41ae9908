// chatkit is a small CLI wrapper around the generation pipeline: it loads
// settings, sends one prompt, and prints the reply segments (optionally
// paced like a live stream).
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/lumenchat/chatkit/chat"
	"github.com/lumenchat/chatkit/chat/pace"
	"github.com/lumenchat/chatkit/chat/providers"
	"github.com/lumenchat/chatkit/chat/window"
	"github.com/lumenchat/chatkit/config"
	"github.com/lumenchat/chatkit/version"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		configPath string
		stream     bool
	)

	root := &cobra.Command{
		Use:           "chatkit",
		Short:         "send a prompt through the chatkit pipeline",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "chatkit.yaml", "settings file")

	ask := &cobra.Command{
		Use:   "ask <prompt>",
		Short: "send one prompt and print the reply",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAsk(cmd.Context(), cmd.OutOrStdout(), configPath, args[0], stream)
		},
	}
	ask.Flags().BoolVar(&stream, "stream", false, "stream the reply as it arrives")
	root.AddCommand(ask)

	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "print version info",
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := version.Get().ToJSON()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), s)
			return nil
		},
	})

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	root.SetContext(ctx)
	cobra.OnFinalize(cancel)
	return root
}

func runAsk(ctx context.Context, out io.Writer, configPath, prompt string, stream bool) error {
	mgr, err := config.Load(configPath)
	if err != nil {
		return err
	}
	settings := mgr.Settings()
	cfg := settings.ChatConfig()

	client, err := providers.New(cfg)
	if err != nil {
		return err
	}

	history := []chat.RawMessage{{Role: "user", Content: prompt}}
	win := window.Build(history, window.Options{
		MaxTokens:   cfg.MaxContextTokens,
		MaxMessages: cfg.MaxContextMessages,
	})
	env := chat.Envelope{
		SystemInstruction: cfg.SystemPrompt,
		Messages:          win.Messages,
	}

	if stream {
		return streamReply(ctx, out, client, env)
	}

	result, err := client.Generate(ctx, env)
	if err != nil {
		return err
	}
	for _, seg := range result.Segments {
		if cfg.EnablePseudoStream {
			pace.Replay(ctx, seg, func(chunk string) {
				fmt.Fprint(out, chunk)
			}, pace.Options{})
			fmt.Fprintln(out)
			continue
		}
		fmt.Fprintln(out, seg)
	}
	return nil
}

func streamReply(ctx context.Context, out io.Writer, client *providers.Client, env chat.Envelope) error {
	s, err := client.GenerateStream(ctx, env)
	if err != nil {
		return err
	}
	defer s.Close()

	for {
		ev, err := s.Recv()
		if err != nil {
			if err == io.EOF {
				fmt.Fprintln(out)
				return nil
			}
			return err
		}
		switch ev.Kind {
		case chat.StreamEventTextDelta:
			fmt.Fprint(out, ev.Text)
		case chat.StreamEventFallbackKey:
			fmt.Fprintln(os.Stderr, "chatkit: switched to backup api key")
		case chat.StreamEventDone:
			fmt.Fprintln(out)
			return nil
		}
	}
}
