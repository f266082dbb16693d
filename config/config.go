package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/bassamadnan/mailpanel/assistant"
)

// UI modes.
const (
	UIModeTea     = "tea"
	UIModeClassic = "classic"
)

// APISettings describes how to reach the backend.
type APISettings struct {
	BaseURL    string `mapstructure:"base_url" toml:"base_url"`
	Token      string `mapstructure:"token" toml:"token,omitempty"`
	TimeoutSec int    `mapstructure:"timeout_sec" toml:"timeout_sec"`
}

// Timeout returns the request timeout as a duration.
func (a APISettings) Timeout() time.Duration {
	return time.Duration(a.TimeoutSec) * time.Second
}

// DraftSettings are the defaults for draft requests.
type DraftSettings struct {
	Tone              assistant.Tone `mapstructure:"tone" toml:"tone"`
	ExtraInstructions string         `mapstructure:"extra_instructions" toml:"extra_instructions"`
}

// UISettings control the interactive panel.
type UISettings struct {
	Mode    string `mapstructure:"mode" toml:"mode"`
	LogFile string `mapstructure:"log_file" toml:"log_file,omitempty"`
}

// Settings is the full configuration.
type Settings struct {
	API   APISettings   `mapstructure:"api" toml:"api"`
	Draft DraftSettings `mapstructure:"draft" toml:"draft"`
	UI    UISettings    `mapstructure:"ui" toml:"ui"`
}

// Defaults returns the built-in settings.
func Defaults() Settings {
	return Settings{
		API: APISettings{
			BaseURL:    assistant.DefaultBaseURL,
			TimeoutSec: int(assistant.DefaultTimeout / time.Second),
		},
		Draft: DraftSettings{Tone: assistant.DefaultTone},
		UI:    UISettings{Mode: UIModeTea},
	}
}

// Validate rejects settings the panel cannot run with.
func (s Settings) Validate() error {
	if s.API.BaseURL == "" {
		return fmt.Errorf("api.base_url must not be empty")
	}
	if s.API.TimeoutSec <= 0 {
		return fmt.Errorf("api.timeout_sec must be positive, got %d", s.API.TimeoutSec)
	}
	if !s.Draft.Tone.Valid() {
		return fmt.Errorf("draft.tone %q is not one of %v", s.Draft.Tone, assistant.Tones())
	}
	if s.UI.Mode != UIModeTea && s.UI.Mode != UIModeClassic {
		return fmt.Errorf("ui.mode must be %q or %q, got %q", UIModeTea, UIModeClassic, s.UI.Mode)
	}
	return nil
}

// DefaultDir returns the configuration directory.
// Respects the MAILPANEL_HOME environment variable.
func DefaultDir() string {
	if h := os.Getenv("MAILPANEL_HOME"); h != "" {
		return h
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".mailpanel"
	}
	return filepath.Join(home, ".config", "mailpanel")
}

// DefaultPath returns the default config file location.
func DefaultPath() string {
	return filepath.Join(DefaultDir(), "config.toml")
}

// Manager handles loading, saving, and accessing panel settings.
// Effective settings layer defaults, the TOML file, MAILPANEL_* environment
// variables and bound flags. Only file-sourced values are written back.
type Manager struct {
	filePath string
	v        *viper.Viper
	settings *Settings
	file     *Settings
	mu       sync.RWMutex
}

// NewManager creates a settings manager for filePath (DefaultPath when empty)
// and loads it. A missing file is not an error.
func NewManager(filePath string) (*Manager, error) {
	if filePath == "" {
		filePath = DefaultPath()
	}
	m := &Manager{
		filePath: filePath,
		v:        newViper(),
	}
	if err := m.Load(); err != nil {
		return nil, err
	}
	return m, nil
}

func newViper() *viper.Viper {
	v := viper.New()
	d := Defaults()
	v.SetDefault("api.base_url", d.API.BaseURL)
	v.SetDefault("api.token", d.API.Token)
	v.SetDefault("api.timeout_sec", d.API.TimeoutSec)
	v.SetDefault("draft.tone", string(d.Draft.Tone))
	v.SetDefault("draft.extra_instructions", d.Draft.ExtraInstructions)
	v.SetDefault("ui.mode", d.UI.Mode)
	v.SetDefault("ui.log_file", d.UI.LogFile)
	v.SetEnvPrefix("MAILPANEL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Path returns the config file path.
func (m *Manager) Path() string { return m.filePath }

// BindFlag makes a command-line flag override key. Call Load afterwards.
func (m *Manager) BindFlag(key string, flag *pflag.Flag) error {
	if flag == nil {
		return fmt.Errorf("bind %s: flag not defined", key)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.v.BindPFlag(key, flag)
}

// Load (re)reads the configuration from all sources.
func (m *Manager) Load() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	file := Defaults()
	exists := true
	if _, err := os.Stat(m.filePath); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("stat config: %w", err)
		}
		exists = false
	}

	if exists {
		if _, err := toml.DecodeFile(m.filePath, &file); err != nil {
			return fmt.Errorf("decode config: %w", err)
		}
		m.v.SetConfigFile(m.filePath)
		m.v.SetConfigType("toml")
		if err := m.v.ReadInConfig(); err != nil {
			return fmt.Errorf("read config: %w", err)
		}
	}

	var s Settings
	if err := m.v.Unmarshal(&s); err != nil {
		return fmt.Errorf("decode settings: %w", err)
	}
	if s.UI.LogFile == "" {
		s.UI.LogFile = filepath.Join(filepath.Dir(m.filePath), "mailpanel.log")
	}
	if err := s.Validate(); err != nil {
		return fmt.Errorf("invalid config %s: %w", m.filePath, err)
	}

	m.settings = &s
	m.file = &file
	return nil
}

// Get returns a copy of the effective settings.
func (m *Manager) Get() Settings {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return *m.settings
}

// SetTone changes the default draft tone and saves.
func (m *Manager) SetTone(tone assistant.Tone) error {
	if !tone.Valid() {
		return fmt.Errorf("unknown tone %q", tone)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.settings.Draft.Tone = tone
	m.file.Draft.Tone = tone
	m.v.Set("draft.tone", string(tone))
	return m.saveSettings()
}

// SetExtraInstructions changes the default extra instructions and saves.
func (m *Manager) SetExtraInstructions(text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.settings.Draft.ExtraInstructions = text
	m.file.Draft.ExtraInstructions = text
	m.v.Set("draft.extra_instructions", text)
	return m.saveSettings()
}

// saveSettings writes the file-sourced settings. Callers hold m.mu.
func (m *Manager) saveSettings() error {
	if err := os.MkdirAll(filepath.Dir(m.filePath), 0o700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	f, err := os.OpenFile(m.filePath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("open config: %w", err)
	}
	if err := toml.NewEncoder(f).Encode(m.file); err != nil {
		f.Close()
		return fmt.Errorf("encode config: %w", err)
	}
	return f.Close()
}
