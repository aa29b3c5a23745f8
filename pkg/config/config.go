// Package config provides hierarchical configuration management.
// Priority: defaults < system < user < project < env < flags
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all Conformly configuration.
type Config struct {
	Version int `yaml:"version"`

	Keys         KeysConfig         `yaml:"keys"`
	Verification VerificationConfig `yaml:"verification"`
	Cache        CacheConfig        `yaml:"cache"`
	Source       SourceConfig       `yaml:"source"`
	Telemetry    TelemetryConfig    `yaml:"telemetry"`
}

// KeysConfig names the event attributes used to interpret a log.
type KeysConfig struct {
	Activity  string `yaml:"activity"`
	Timestamp string `yaml:"timestamp"`
	CaseID    string `yaml:"case_id"`
}

// VerificationConfig controls default verification behavior.
type VerificationConfig struct {
	Parallel              bool    `yaml:"parallel"`
	Workers               int     `yaml:"workers"` // 0 = auto
	Zeta                  float64 `yaml:"zeta"`
	FootprintsOnPetriNets bool    `yaml:"footprints_on_petri_nets"`
}

// CacheConfig controls the alignment variant cache.
type CacheConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Address  string        `yaml:"address"`
	Password string        `yaml:"password"`
	Database int           `yaml:"database"`
	Prefix   string        `yaml:"prefix"`
	TTL      time.Duration `yaml:"ttl"`
}

// SourceConfig controls remote log sources.
type SourceConfig struct {
	S3 S3Config `yaml:"s3"`
}

// S3Config for s3:// log URIs.
type S3Config struct {
	Region          string `yaml:"region"`
	Endpoint        string `yaml:"endpoint"`
	UsePathStyle    bool   `yaml:"use_path_style"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
}

// TelemetryConfig for optional tracing.
type TelemetryConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Endpoint string `yaml:"endpoint"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Version: 1,
		Keys: KeysConfig{
			Activity:  "concept:name",
			Timestamp: "time:timestamp",
			CaseID:    "case:concept:name",
		},
		Verification: VerificationConfig{
			Parallel: true,
			Workers:  0, // auto
			Zeta:     6.0,
		},
		Cache: CacheConfig{
			Enabled: false,
			Address: "localhost:6379",
			Prefix:  "conformly:alignments:",
			TTL:     24 * time.Hour,
		},
		Source: SourceConfig{
			S3: S3Config{
				Region: "us-east-1",
			},
		},
		Telemetry: TelemetryConfig{
			Enabled: false,
		},
	}
}

// Manager handles configuration loading and merging.
type Manager struct {
	mu     sync.RWMutex
	config *Config
	paths  []string // Paths that were loaded
}

// NewManager creates a new configuration manager.
func NewManager() *Manager {
	return &Manager{
		config: Default(),
	}
}

// Load loads configuration from all sources in priority order.
func (m *Manager) Load() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	// Start with defaults
	m.config = Default()

	// Load from paths in order (later overrides earlier)
	paths := m.getConfigPaths()
	for _, path := range paths {
		if err := m.loadFile(path); err != nil {
			// Ignore missing files, but surface errors for existing files
			if !os.IsNotExist(err) {
				return err
			}
		} else {
			m.paths = append(m.paths, path)
		}
	}

	// Override with environment variables
	m.loadEnv()

	return nil
}

// getConfigPaths returns config file paths in priority order.
func (m *Manager) getConfigPaths() []string {
	var paths []string

	// System config
	if runtime.GOOS != "windows" {
		paths = append(paths, "/etc/conformly/config.yaml")
	}

	// User config
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".conformly", "config.yaml"))
	}

	// Project config (current directory)
	if cwd, err := os.Getwd(); err == nil {
		paths = append(paths, filepath.Join(cwd, ".conformly.yaml"))
	}

	return paths
}

// loadFile loads a single config file and merges it.
func (m *Manager) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var partial Config
	if err := yaml.Unmarshal(data, &partial); err != nil {
		return err
	}

	// Merge non-zero values
	m.merge(&partial)
	return nil
}

// merge merges non-zero values from src into config.
func (m *Manager) merge(src *Config) {
	// Keys
	if src.Keys.Activity != "" {
		m.config.Keys.Activity = src.Keys.Activity
	}
	if src.Keys.Timestamp != "" {
		m.config.Keys.Timestamp = src.Keys.Timestamp
	}
	if src.Keys.CaseID != "" {
		m.config.Keys.CaseID = src.Keys.CaseID
	}

	// Verification
	if src.Verification.Workers != 0 {
		m.config.Verification.Workers = src.Verification.Workers
	}
	if src.Verification.Zeta != 0 {
		m.config.Verification.Zeta = src.Verification.Zeta
	}
	if src.Verification.FootprintsOnPetriNets {
		m.config.Verification.FootprintsOnPetriNets = true
	}

	// Cache
	if src.Cache.Enabled {
		m.config.Cache.Enabled = true
	}
	if src.Cache.Address != "" {
		m.config.Cache.Address = src.Cache.Address
	}
	if src.Cache.Password != "" {
		m.config.Cache.Password = src.Cache.Password
	}
	if src.Cache.Database != 0 {
		m.config.Cache.Database = src.Cache.Database
	}
	if src.Cache.Prefix != "" {
		m.config.Cache.Prefix = src.Cache.Prefix
	}
	if src.Cache.TTL != 0 {
		m.config.Cache.TTL = src.Cache.TTL
	}

	// Source
	if src.Source.S3.Region != "" {
		m.config.Source.S3.Region = src.Source.S3.Region
	}
	if src.Source.S3.Endpoint != "" {
		m.config.Source.S3.Endpoint = src.Source.S3.Endpoint
	}
	if src.Source.S3.UsePathStyle {
		m.config.Source.S3.UsePathStyle = true
	}
	if src.Source.S3.AccessKeyID != "" {
		m.config.Source.S3.AccessKeyID = src.Source.S3.AccessKeyID
	}
	if src.Source.S3.SecretAccessKey != "" {
		m.config.Source.S3.SecretAccessKey = src.Source.S3.SecretAccessKey
	}

	// Telemetry
	if src.Telemetry.Enabled {
		m.config.Telemetry.Enabled = true
	}
	if src.Telemetry.Endpoint != "" {
		m.config.Telemetry.Endpoint = src.Telemetry.Endpoint
	}
}

// loadEnv loads configuration from environment variables.
func (m *Manager) loadEnv() {
	if v := os.Getenv("CONFORMLY_ACTIVITY_KEY"); v != "" {
		m.config.Keys.Activity = v
	}
	if v := os.Getenv("CONFORMLY_TIMESTAMP_KEY"); v != "" {
		m.config.Keys.Timestamp = v
	}
	if v := os.Getenv("CONFORMLY_CASE_ID_KEY"); v != "" {
		m.config.Keys.CaseID = v
	}
	if v := os.Getenv("CONFORMLY_WORKERS"); v != "" {
		var workers int
		if _, err := fmt.Sscanf(v, "%d", &workers); err == nil {
			m.config.Verification.Workers = workers
		}
	}
	if v := os.Getenv("CONFORMLY_REDIS"); v != "" {
		m.config.Cache.Enabled = true
		m.config.Cache.Address = v
	}
	if v := os.Getenv("CONFORMLY_OTLP_ENDPOINT"); v != "" {
		m.config.Telemetry.Enabled = true
		m.config.Telemetry.Endpoint = v
	}
}

// Get returns the current configuration.
func (m *Manager) Get() *Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.config
}

// GetPaths returns the paths that were loaded.
func (m *Manager) GetPaths() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.paths
}

// Save writes the current config to the user config file.
func (m *Manager) Save() error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	home, err := os.UserHomeDir()
	if err != nil {
		return err
	}

	configDir := filepath.Join(home, ".conformly")
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return err
	}

	data, err := yaml.Marshal(m.config)
	if err != nil {
		return err
	}

	return os.WriteFile(filepath.Join(configDir, "config.yaml"), data, 0644)
}

// Global instance
var (
	globalManager *Manager
	globalOnce    sync.Once
)

// Global returns the global configuration manager.
func Global() *Manager {
	globalOnce.Do(func() {
		globalManager = NewManager()
		globalManager.Load()
	})
	return globalManager
}
