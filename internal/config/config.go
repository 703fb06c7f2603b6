// Package config provides configuration management for the global input host.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"sync"
	"time"

	"globalinput/internal/hotkey"
	"globalinput/internal/input"
	"globalinput/internal/logger"

	"go.uber.org/zap"
	"gopkg.in/yaml.v2"
)

const appDir = "globalinput"

// Config represents the application configuration
type Config struct {
	// TickInterval is the host loop period (e.g. "16ms")
	TickInterval string `yaml:"tick_interval"`

	// HookTimeout bounds how long startup waits for the OS hook (e.g. "3s")
	HookTimeout string `yaml:"hook_timeout"`

	// MouseQueueLimit bounds the raw mouse queue; 0 keeps it unbounded
	MouseQueueLimit int `yaml:"mouse_queue_limit"`

	// LogLevel is one of debug, info, warn, error
	LogLevel string `yaml:"log_level"`

	// Hotkeys maps a hotkey name to a sequence such as "Ctrl+Shift+Space"
	Hotkeys map[string]string `yaml:"hotkeys"`

	// API configures the optional HTTP and WebSocket surface
	API APIConfig `yaml:"api"`

	// Tray shows a system tray icon in the example host
	Tray bool `yaml:"tray"`
}

// APIConfig contains the remote surface settings
type APIConfig struct {
	// Enabled starts the HTTP server
	Enabled bool `yaml:"enabled"`

	// Port is the listening port (default: 18090)
	Port int `yaml:"port"`

	// Token is an optional bearer token for API requests
	Token string `yaml:"token,omitempty"`
}

// DefaultConfig returns a new Config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		TickInterval:    "16ms",
		HookTimeout:     "3s",
		MouseQueueLimit: 0,
		LogLevel:        "info",
		Hotkeys: map[string]string{
			"toggle_movement": "Ctrl+Shift+Space",
		},
		API: APIConfig{
			Enabled: false,
			Port:    18090,
		},
	}
}

// Tick returns the parsed tick interval.
func (c *Config) Tick() (time.Duration, error) {
	return parsePositive("tick_interval", c.TickInterval)
}

// HookWait returns the parsed hook install timeout.
func (c *Config) HookWait() (time.Duration, error) {
	return parsePositive("hook_timeout", c.HookTimeout)
}

// HotkeySequences parses every configured hotkey. Invalid entries are
// reported together; the valid ones are still returned.
func (c *Config) HotkeySequences() (map[string][]input.Key, error) {
	names := make([]string, 0, len(c.Hotkeys))
	for name := range c.Hotkeys {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make(map[string][]input.Key, len(c.Hotkeys))
	var errs []error
	for _, name := range names {
		keys, err := hotkey.ParseSequence(c.Hotkeys[name])
		if err != nil {
			errs = append(errs, fmt.Errorf("hotkeys.%s: %w", name, err))
			continue
		}
		out[name] = keys
	}
	return out, errors.Join(errs...)
}

// Validate checks every field that has a constrained format. Hotkey
// entries are not checked here: a bad entry only disables that hotkey
// (see HotkeySequences).
func (c *Config) Validate() error {
	if _, err := c.Tick(); err != nil {
		return err
	}
	if _, err := c.HookWait(); err != nil {
		return err
	}
	if c.MouseQueueLimit < 0 {
		return fmt.Errorf("mouse_queue_limit must not be negative, got %d", c.MouseQueueLimit)
	}
	if c.API.Enabled && (c.API.Port <= 0 || c.API.Port > 65535) {
		return fmt.Errorf("api.port out of range: %d", c.API.Port)
	}
	return nil
}

func parsePositive(key, value string) (time.Duration, error) {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %s", key, value)
	}
	return d, nil
}

// Manager handles loading and saving configuration
type Manager struct {
	mu         sync.Mutex
	configPath string
	config     *Config
}

// NewManager creates a configuration manager for path. An empty path
// selects the per-user default location.
func NewManager(path string) (*Manager, error) {
	if path == "" {
		var err error
		path, err = getConfigPath()
		if err != nil {
			return nil, err
		}
	}

	return &Manager{
		configPath: path,
		config:     DefaultConfig(),
	}, nil
}

// getConfigPath returns the path to the configuration file
func getConfigPath() (string, error) {
	var configDir string

	switch runtime.GOOS {
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		configDir = filepath.Join(home, "Library", "Application Support", appDir)
	case "windows":
		appData := os.Getenv("APPDATA")
		if appData == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", err
			}
			appData = filepath.Join(home, "AppData", "Roaming")
		}
		configDir = filepath.Join(appData, appDir)
	default:
		configHome := os.Getenv("XDG_CONFIG_HOME")
		if configHome == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", err
			}
			configHome = filepath.Join(home, ".config")
		}
		configDir = filepath.Join(configHome, appDir)
	}

	return filepath.Join(configDir, "config.yaml"), nil
}

// Path returns the file the manager reads and writes.
func (m *Manager) Path() string {
	return m.configPath
}

// Load reads the configuration from disk. A missing file keeps the
// defaults. Hotkeys that do not parse are logged and kept in the file.
func (m *Manager) Load() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	data, err := os.ReadFile(m.configPath)
	if os.IsNotExist(err) {
		logger.Debug("No config file, using defaults", zap.String("component", "config"),
			zap.String("path", m.configPath))
		return nil
	}
	if err != nil {
		return err
	}

	cfg := DefaultConfig()
	// yaml.v2 merges into a non-nil map
	cfg.Hotkeys = nil
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse %s: %w", m.configPath, err)
	}
	if cfg.Hotkeys == nil {
		cfg.Hotkeys = DefaultConfig().Hotkeys
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config %s: %w", m.configPath, err)
	}
	if _, err := cfg.HotkeySequences(); err != nil {
		logger.Warn("Ignoring invalid hotkeys", zap.String("component", "config"),
			zap.String("path", m.configPath), zap.Error(err))
	}
	m.config = cfg
	return nil
}

// Save writes the configuration to disk
func (m *Manager) Save() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	data, err := yaml.Marshal(m.config)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(m.configPath), 0755); err != nil {
		return err
	}

	logger.Info("Saving configuration", zap.String("component", "config"),
		zap.String("path", m.configPath), zap.Int("bytes", len(data)))
	return os.WriteFile(m.configPath, data, 0644)
}

// Get returns the current configuration
func (m *Manager) Get() *Config {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.config
}

// SetHotkey adds or replaces a hotkey definition. The sequence must parse.
func (m *Manager) SetHotkey(name, sequence string) error {
	if _, err := hotkey.ParseSequence(sequence); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.config.Hotkeys == nil {
		m.config.Hotkeys = make(map[string]string)
	}
	m.config.Hotkeys[name] = sequence
	return nil
}

// DeleteHotkey removes a hotkey definition by name
func (m *Manager) DeleteHotkey(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.config.Hotkeys, name)
}

// SaveHotkey sets a hotkey and writes the file.
func (m *Manager) SaveHotkey(name, sequence string) error {
	if err := m.SetHotkey(name, sequence); err != nil {
		return err
	}
	return m.Save()
}

// RemoveHotkey deletes a hotkey and writes the file.
func (m *Manager) RemoveHotkey(name string) error {
	m.DeleteHotkey(name)
	return m.Save()
}
