package providers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/lumenchat/chatkit/chat"
	"github.com/lumenchat/chatkit/chat/internal/transport"
	"github.com/lumenchat/chatkit/chat/segment"
	"github.com/lumenchat/chatkit/chat/wire"
)

// Client is one provider client bound to a per-call Config. It is
// stateless across calls and safe to reuse, but the caller must not
// overlap calls that share one logical session.
type Client struct {
	cfg   chat.Config
	strat strategy

	tr *transport.Client

	markers   []string
	splitting bool

	onRetry    transport.RetryNotice
	onFallback func()
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.tr.HTTPClient = hc }
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.tr.Logger = logger
		}
	}
}

func WithRetry(policy transport.RetryPolicy) Option {
	return func(c *Client) { c.tr.Retry = policy }
}

// WithMarkers overrides the segment boundary tokens for batch results.
func WithMarkers(markers ...string) Option {
	return func(c *Client) { c.markers = markers }
}

// WithoutSplitting keeps a batch reply as one segment.
func WithoutSplitting() Option {
	return func(c *Client) { c.splitting = false }
}

// WithRetryNotice registers a callback fired before each backoff wait.
func WithRetryNotice(fn transport.RetryNotice) Option {
	return func(c *Client) { c.onRetry = fn }
}

// WithFallbackNotice registers a callback fired once when the backup key
// takes over.
func WithFallbackNotice(fn func()) Option {
	return func(c *Client) { c.onFallback = fn }
}

// New validates the configured provider id and keys. Missing apiUrl/model
// surface later, from the wire adapter, with the same error class.
func New(cfg chat.Config, opts ...Option) (*Client, error) {
	p, ok := chat.ParseProvider(string(cfg.Provider))
	if !ok {
		return nil, &chat.ConfigError{
			Provider: cfg.Provider,
			Message:  "unknown provider id " + strings.TrimSpace(string(cfg.Provider)),
		}
	}
	cfg.Provider = p

	if strings.TrimSpace(cfg.APIKey) == "" && strings.TrimSpace(cfg.BackupAPIKey) == "" {
		return nil, &chat.ConfigError{Provider: p, Message: "api key is required"}
	}

	c := &Client{
		cfg:       cfg,
		strat:     strategyFor(p),
		tr:        transport.New(nil),
		splitting: true,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// keys returns the ordered key list for this call: primary, then backup
// when one is configured and distinct.
func (c *Client) keys() []string {
	primary := strings.TrimSpace(c.cfg.APIKey)
	backup := strings.TrimSpace(c.cfg.BackupAPIKey)
	if primary == "" {
		primary, backup = backup, ""
	}
	if backup == "" || backup == primary {
		return []string{primary}
	}
	return []string{primary, backup}
}

// Generate issues a batch call and returns the reply cut into segments.
//
// Retries happen per key; a non-cancellation failure of the primary key
// falls back to the backup key exactly once. A wholly empty or garbled
// response body degrades to an empty result.
func (c *Client) Generate(ctx context.Context, env chat.Envelope) (chat.Result, error) {
	var lastErr error
	for i, key := range c.keys() {
		if i > 0 {
			c.noticeFallback()
		}

		req, err := wire.Build(wire.Input{Config: c.cfg, Envelope: env, APIKey: key})
		if err != nil {
			return chat.Result{}, err
		}

		raw, err := c.tr.PostJSON(ctx, req.Endpoint, req.Headers, req.Body, c.onRetry)
		if err != nil {
			if chat.IsCancellation(err) {
				return chat.Result{}, err
			}
			lastErr = err
			continue
		}

		text := c.strat.batchText(raw)
		return chat.Result{Segments: c.split(text)}, nil
	}
	return chat.Result{}, c.wrapErr(lastErr)
}

func (c *Client) split(text string) []string {
	if !c.splitting {
		if t := strings.TrimSpace(text); t != "" {
			return []string{t}
		}
		return nil
	}
	return segment.Split(text, c.markers...)
}

func (c *Client) noticeFallback() {
	c.tr.Logger.Debug("chat key fallback", "provider", string(c.cfg.Provider))
	if c.onFallback != nil {
		c.onFallback()
	}
}

// wrapErr converts a terminal transport failure into a RequestError.
// Configuration errors and cancellation pass through untouched.
func (c *Client) wrapErr(err error) error {
	if err == nil {
		return &chat.RequestError{Provider: c.cfg.Provider, Message: "request failed"}
	}
	if chat.IsCancellation(err) {
		return err
	}
	if _, ok := chat.AsConfigError(err); ok {
		return err
	}
	var se *transport.HTTPStatusError
	if errors.As(err, &se) {
		msg := providerErrorMessage(se.Body)
		if msg == "" {
			msg = http.StatusText(se.StatusCode)
		}
		return &chat.RequestError{
			Provider:   c.cfg.Provider,
			StatusCode: se.StatusCode,
			Message:    msg,
			Raw:        se.Body,
			Cause:      err,
		}
	}
	return &chat.RequestError{Provider: c.cfg.Provider, Message: err.Error(), Cause: err}
}

// providerErrorMessage pulls the human-readable message out of the common
// {"error":{"message":...}} body shape shared by all four protocols.
func providerErrorMessage(raw []byte) string {
	var payload struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return ""
	}
	return strings.TrimSpace(payload.Error.Message)
}
