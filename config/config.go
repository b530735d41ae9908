// Package config loads chatkit settings from a file with CHATKIT_* env
// overrides and hot reload on file change.
package config

import (
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	"github.com/lumenchat/chatkit/chat"
	"github.com/lumenchat/chatkit/chat/window"
)

// Settings is the file/env representation of the per-call configuration.
type Settings struct {
	Provider string `mapstructure:"provider"`
	APIURL   string `mapstructure:"api_url"`
	Model    string `mapstructure:"model"`

	APIKey       string `mapstructure:"api_key"`
	BackupAPIKey string `mapstructure:"backup_api_key"`

	SystemPrompt   string `mapstructure:"system_prompt"`
	ThinkingBudget string `mapstructure:"thinking_budget"`
	SearchMode     string `mapstructure:"search_mode"`

	MaxContextTokens   int `mapstructure:"max_context_tokens"`
	MaxContextMessages int `mapstructure:"max_context_messages"`

	EnablePseudoStream bool `mapstructure:"enable_pseudo_stream"`
}

// ChatConfig converts file settings into the per-call Config consumed by
// the wire adapters and provider clients.
func (s Settings) ChatConfig() chat.Config {
	return chat.Config{
		Provider:           chat.Provider(s.Provider),
		APIURL:             s.APIURL,
		Model:              s.Model,
		APIKey:             s.APIKey,
		BackupAPIKey:       s.BackupAPIKey,
		SystemPrompt:       s.SystemPrompt,
		ThinkingBudget:     s.ThinkingBudget,
		SearchMode:         s.SearchMode,
		MaxContextTokens:   s.MaxContextTokens,
		MaxContextMessages: s.MaxContextMessages,
		EnablePseudoStream: s.EnablePseudoStream,
	}
}

// Manager holds the live settings value and rebuilds it when the backing
// file changes. Get is concurrency-safe and returns a copy.
type Manager struct {
	v        *viper.Viper
	mu       sync.RWMutex
	value    Settings
	watchers []func(old, new Settings)
}

// Load reads the settings file, binds CHATKIT_* environment overrides,
// and starts watching the file for changes.
func Load(path string) (*Manager, error) {
	v := viper.New()
	v.SetConfigFile(path)

	v.SetDefault("provider", string(chat.ProviderOpenAI))
	v.SetDefault("max_context_tokens", window.DefaultMaxTokens)
	v.SetDefault("enable_pseudo_stream", true)

	v.SetEnvPrefix("CHATKIT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	var val Settings
	if err := v.Unmarshal(&val); err != nil {
		return nil, err
	}

	m := &Manager{v: v, value: val}
	m.watch()
	return m, nil
}

func (m *Manager) Settings() Settings {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.value
}

// OnChange registers a callback invoked with the old and new settings
// after a successful reload that changed anything.
func (m *Manager) OnChange(callback func(old, new Settings)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.watchers = append(m.watchers, callback)
}

func (m *Manager) watch() {
	var (
		debounceTimer *time.Timer
		debounceMu    sync.Mutex
	)

	m.v.OnConfigChange(func(_ fsnotify.Event) {
		debounceMu.Lock()
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
		debounceTimer = time.AfterFunc(100*time.Millisecond, m.handleChange)
		debounceMu.Unlock()
	})

	m.v.WatchConfig()
}

func (m *Manager) handleChange() {
	old := m.Settings()

	next, watchers, ok := m.reload()
	if !ok {
		return
	}
	if reflect.DeepEqual(old, next) {
		return
	}

	for _, cb := range watchers {
		func() {
			defer func() { _ = recover() }()
			cb(old, next)
		}()
	}
}

func (m *Manager) reload() (Settings, []func(old, new Settings), bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.v.ReadInConfig(); err != nil {
		return Settings{}, nil, false
	}
	var val Settings
	if err := m.v.Unmarshal(&val); err != nil {
		return Settings{}, nil, false
	}
	m.value = val

	watchers := make([]func(old, new Settings), len(m.watchers))
	copy(watchers, m.watchers)
	return val, watchers, true
}
