// Package config loads the assistant configuration: data file locations,
// classifier tuning, search defaults, and LLM provider settings. Values are
// defaults overlaid with the user's config.yaml and environment variables.
package config

import (
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/adalundhe/metra/core/storage"
)

// Manager holds the active configuration behind an atomic pointer so
// readers never block and a reload swaps the whole config at once.
type Manager struct {
	config    atomic.Pointer[Config]
	dirs      *storage.Dirs
	watchers  []func(*Config)
	watcherMu sync.RWMutex
}

type Config struct {
	Data   DataConfig   `yaml:"data"`
	Parser ParserConfig `yaml:"parser"`
	Search SearchConfig `yaml:"search"`
	LLM    LLMConfig    `yaml:"llm"`
}

// DataConfig locates the file-backed stores. Relative paths resolve under
// the data directory.
type DataConfig struct {
	DictionaryFile string `yaml:"dictionary_file"`
	RecordsFile    string `yaml:"records_file"`
	HistoryDB      string `yaml:"history_db"`
	WatchFiles     bool   `yaml:"watch_files"`
}

// ParserConfig exposes the classifier tuning constants.
type ParserConfig struct {
	MaxConfidence        float64 `yaml:"max_confidence"`
	DefaultConfidence    float64 `yaml:"default_confidence"`
	WeightNorm           float64 `yaml:"weight_norm"`
	StandaloneBonus      float64 `yaml:"standalone_bonus"`
	ContextBump          float64 `yaml:"context_bump"`
	DependencyThreshold  float64 `yaml:"dependency_threshold"`
	DependencyConfidence float64 `yaml:"dependency_confidence"`
	NoiseThreshold       float64 `yaml:"noise_threshold"`
	MeaningfulThreshold  float64 `yaml:"meaningful_threshold"`
	FieldBonus           float64 `yaml:"field_bonus"`
	FieldBonusCap        float64 `yaml:"field_bonus_cap"`
}

// SearchConfig tunes the fuzzy search surfaces.
type SearchConfig struct {
	Threshold      float64 `yaml:"threshold"`
	Limit          int     `yaml:"limit"`
	FuzzyThreshold float64 `yaml:"fuzzy_threshold"` // record-library name similarity
	CacheTTL       string  `yaml:"cache_ttl"`
}

// LLMConfig configures the optional conversational layer.
type LLMConfig struct {
	DefaultProvider string        `yaml:"default_provider"`
	Model           string        `yaml:"model"`
	MaxTokens       int           `yaml:"max_tokens"`
	Timeout         time.Duration `yaml:"timeout"`
	Streaming       bool          `yaml:"streaming"`
}

// NewManager creates a manager preloaded with defaults.
func NewManager(dirs *storage.Dirs) *Manager {
	m := &Manager{dirs: dirs}
	m.config.Store(DefaultConfig())
	return m
}

func DefaultConfig() *Config {
	return &Config{
		Data: DataConfig{
			DictionaryFile: "field_dictionaries.csv",
			RecordsFile:    "reading_type_codes.csv",
			HistoryDB:      "history",
			WatchFiles:     true,
		},
		Parser: ParserConfig{
			MaxConfidence:        0.95,
			DefaultConfidence:    0.1,
			WeightNorm:           100,
			StandaloneBonus:      1.5,
			ContextBump:          0.2,
			DependencyThreshold:  0.7,
			DependencyConfidence: 0.8,
			NoiseThreshold:       0.1,
			MeaningfulThreshold:  0.3,
			FieldBonus:           0.05,
			FieldBonusCap:        0.2,
		},
		Search: SearchConfig{
			Threshold:      0.3,
			Limit:          10,
			FuzzyThreshold: 0.6,
			CacheTTL:       "10m",
		},
		LLM: LLMConfig{
			DefaultProvider: "anthropic",
			MaxTokens:       4096,
			Timeout:         2 * time.Minute,
			Streaming:       true,
		},
	}
}

// Get returns the active configuration. The returned pointer must be
// treated as read-only.
func (m *Manager) Get() *Config {
	return m.config.Load()
}

// Load builds a fresh config from defaults, the user config file, and
// environment overrides, then publishes it.
func (m *Manager) Load() error {
	cfg := DefaultConfig()

	path := m.dirs.ConfigDir("config.yaml")
	data, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("parse %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("read %s: %w", path, err)
	}

	applyEnvironment(cfg)

	m.config.Store(cfg)
	m.notifyWatchers(cfg)
	return nil
}

// Reload is an alias for Load, for watcher callbacks.
func (m *Manager) Reload() error {
	return m.Load()
}

func applyEnvironment(cfg *Config) {
	if v := os.Getenv("METRA_LLM_PROVIDER"); v != "" {
		cfg.LLM.DefaultProvider = v
	}
	if v := os.Getenv("METRA_LLM_MODEL"); v != "" {
		cfg.LLM.Model = v
	}
	if v := os.Getenv("METRA_LLM_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.LLM.Timeout = d
		}
	}
	if v := os.Getenv("METRA_DICTIONARY_FILE"); v != "" {
		cfg.Data.DictionaryFile = v
	}
	if v := os.Getenv("METRA_RECORDS_FILE"); v != "" {
		cfg.Data.RecordsFile = v
	}
}

// OnChange registers a callback for config reloads.
func (m *Manager) OnChange(fn func(*Config)) {
	m.watcherMu.Lock()
	m.watchers = append(m.watchers, fn)
	m.watcherMu.Unlock()
}

func (m *Manager) notifyWatchers(cfg *Config) {
	m.watcherMu.RLock()
	watchers := m.watchers
	m.watcherMu.RUnlock()

	for _, fn := range watchers {
		fn(cfg)
	}
}
