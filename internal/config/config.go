package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Config holds all user-configurable settings loaded from config.json
type Config struct {
	Panes      PanesConfig     `json:"panes"`
	Thumbnails ThumbnailConfig `json:"thumbnails"`
	Watch      WatchConfig     `json:"watch"`
	Store      StoreConfig     `json:"store"`
	Hotkeys    HotkeysConfig   `json:"hotkeys"`
}

// PanesConfig holds pane defaults
type PanesConfig struct {
	DefaultRoot     string `json:"defaultRoot"`     // Empty means the platform root
	DefaultViewMode string `json:"defaultViewMode"` // "narrow" | "detailed" | "images"
	ShowDotfiles    bool   `json:"showDotfiles"`
}

// ThumbnailConfig holds thumbnail pipeline settings
type ThumbnailConfig struct {
	Size         int `json:"size"`         // Longest thumbnail edge in pixels
	CacheEntries int `json:"cacheEntries"` // Decoded thumbnails kept in memory
}

// WatchConfig controls directory change refreshes
type WatchConfig struct {
	Enabled    bool `json:"enabled"`
	DebounceMs int  `json:"debounceMs"`
}

// StoreConfig scopes the persisted settings database
type StoreConfig struct {
	Vendor string `json:"vendor"`
	App    string `json:"app"`
}

// Manager handles loading, saving, and accessing configuration
type Manager struct {
	mu       sync.RWMutex
	config   *Config
	path     string
	parseErr error // Stores parsing error if config failed to load
}

// NewManager creates a new configuration manager
func NewManager() *Manager {
	return &Manager{
		config: DefaultConfig(),
	}
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Panes: PanesConfig{
			DefaultRoot:     "",
			DefaultViewMode: "detailed",
			ShowDotfiles:    false,
		},
		Thumbnails: ThumbnailConfig{
			Size:         128,
			CacheEntries: 512,
		},
		Watch: WatchConfig{
			Enabled:    true,
			DebounceMs: 200,
		},
		Store: StoreConfig{
			Vendor: "Mark Stout",
			App:    "File Manager Vibe",
		},
		Hotkeys: DefaultHotkeys(),
	}
}

// PlatformRoot returns the filesystem root panes fall back to.
func PlatformRoot() string {
	if runtime.GOOS == "windows" {
		if home, err := os.UserHomeDir(); err == nil {
			if vol := filepath.VolumeName(home); vol != "" {
				return vol + `\`
			}
		}
		return `C:\`
	}
	return "/"
}

// DefaultRoot returns the configured default root, or the platform root
// when none is configured or the configured one is not a directory.
func (c Config) DefaultRoot() string {
	if c.Panes.DefaultRoot != "" {
		if info, err := os.Stat(c.Panes.DefaultRoot); err == nil && info.IsDir() {
			return c.Panes.DefaultRoot
		}
		logrus.WithField("path", c.Panes.DefaultRoot).Warn("Config: default root is not a directory, using platform root")
	}
	return PlatformRoot()
}

// ConfigPath returns the config file path: ~/.config/panes/config.json
// This is consistent across all platforms (Windows, macOS, Linux)
func ConfigPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "panes", "config.json")
}

// Load reads the configuration from the default config file
func (m *Manager) Load() error {
	return m.LoadFrom(ConfigPath())
}

// LoadFrom reads the configuration from path.
// If the file doesn't exist, creates it with defaults
// If parsing fails, stores the error and returns defaults
func (m *Manager) LoadFrom(path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.path = path
	m.parseErr = nil
	log := logrus.WithField("path", m.path)

	configDir := filepath.Dir(m.path)
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		log.WithError(err).Error("Config: failed to create directory")
		return err
	}

	data, err := os.ReadFile(m.path)
	if os.IsNotExist(err) {
		log.Info("Config: creating default config")
		m.config = DefaultConfig()
		if saveErr := m.saveUnlocked(); saveErr != nil {
			log.WithError(saveErr).Error("Config: failed to save default config")
			return saveErr
		}
		return nil
	}
	if err != nil {
		log.WithError(err).Error("Config: failed to read")
		return err
	}

	// Start from defaults so missing sections keep sane values
	cfg := DefaultConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		log.WithError(err).Warn("Config: JSON parse error, using defaults")
		m.parseErr = err
		m.config = DefaultConfig()
		return nil // Don't return error - we're using defaults
	}

	log.Debug("Config: loaded")
	m.config = cfg
	return nil
}

// saveUnlocked saves config without acquiring lock (caller must hold lock)
func (m *Manager) saveUnlocked() error {
	data, err := json.MarshalIndent(m.config, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(m.path, data, 0o644)
}

// Save writes the current configuration to disk
func (m *Manager) Save() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.path == "" {
		m.path = ConfigPath()
	}
	return m.saveUnlocked()
}

// Get returns a copy of the current configuration
func (m *Manager) Get() Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.config == nil {
		return *DefaultConfig()
	}
	return *m.config
}

// ParseError returns the parsing error if config failed to load
func (m *Manager) ParseError() error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.parseErr
}

// SetDefaultViewMode updates the view mode new panes start in and saves the
// config. A config file that failed to parse is left untouched.
func (m *Manager) SetDefaultViewMode(mode string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.parseErr != nil {
		return fmt.Errorf("config has errors, not saving: %w", m.parseErr)
	}
	if m.config.Panes.DefaultViewMode == mode {
		return nil
	}
	m.config.Panes.DefaultViewMode = mode
	if m.path == "" {
		m.path = ConfigPath()
	}
	return m.saveUnlocked()
}

// GenerateConfig backs up existing config and creates a fresh default config
// Returns the backup path if a backup was created, or empty string if no existing config
func GenerateConfig(configPath string) (backupPath string, err error) {
	if _, err := os.Stat(configPath); err == nil {
		timestamp := time.Now().Format("20060102-150405")
		backupPath = filepath.Join(filepath.Dir(configPath), "config.backup."+timestamp+".json")

		data, err := os.ReadFile(configPath)
		if err != nil {
			return "", fmt.Errorf("failed to read existing config: %w", err)
		}
		if err := os.WriteFile(backupPath, data, 0o644); err != nil {
			return "", fmt.Errorf("failed to write backup: %w", err)
		}
	}

	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return backupPath, fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(DefaultConfig(), "", "  ")
	if err != nil {
		return backupPath, fmt.Errorf("failed to marshal default config: %w", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		return backupPath, fmt.Errorf("failed to write config: %w", err)
	}

	return backupPath, nil
}
