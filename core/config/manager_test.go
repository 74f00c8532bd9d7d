package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/adalundhe/metra/core/storage"
)

func testDirs(t *testing.T) *storage.Dirs {
	return &storage.Dirs{
		Config: t.TempDir(),
		Data:   t.TempDir(),
		Cache:  t.TempDir(),
		State:  t.TempDir(),
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Data.DictionaryFile != "field_dictionaries.csv" {
		t.Errorf("Data.DictionaryFile: got %s", cfg.Data.DictionaryFile)
	}
	if cfg.Parser.MaxConfidence != 0.95 {
		t.Errorf("Parser.MaxConfidence: got %v, want 0.95", cfg.Parser.MaxConfidence)
	}
	if cfg.Parser.DependencyThreshold != 0.7 {
		t.Errorf("Parser.DependencyThreshold: got %v, want 0.7", cfg.Parser.DependencyThreshold)
	}
	if cfg.Search.FuzzyThreshold != 0.6 {
		t.Errorf("Search.FuzzyThreshold: got %v, want 0.6", cfg.Search.FuzzyThreshold)
	}
	if cfg.LLM.DefaultProvider != "anthropic" {
		t.Errorf("LLM.DefaultProvider: got %s, want anthropic", cfg.LLM.DefaultProvider)
	}
	if cfg.LLM.Timeout != 2*time.Minute {
		t.Errorf("LLM.Timeout: got %v, want 2m", cfg.LLM.Timeout)
	}
}

func TestManagerGet(t *testing.T) {
	m := NewManager(testDirs(t))

	cfg := m.Get()
	if cfg == nil {
		t.Fatal("Get() returned nil")
	}
	if !cfg.Data.WatchFiles {
		t.Error("file watching should default on")
	}
}

func TestManagerLoadFromFile(t *testing.T) {
	dirs := testDirs(t)
	content := `
data:
  dictionary_file: custom.csv
  watch_files: false
search:
  threshold: 0.4
llm:
  default_provider: openai
`
	if err := os.WriteFile(filepath.Join(dirs.Config, "config.yaml"), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	m := NewManager(dirs)
	if err := m.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}

	cfg := m.Get()
	if cfg.Data.DictionaryFile != "custom.csv" {
		t.Errorf("Data.DictionaryFile: got %s, want custom.csv", cfg.Data.DictionaryFile)
	}
	if cfg.Data.WatchFiles {
		t.Error("watch_files should be overridden to false")
	}
	if cfg.Search.Threshold != 0.4 {
		t.Errorf("Search.Threshold: got %v, want 0.4", cfg.Search.Threshold)
	}
	if cfg.LLM.DefaultProvider != "openai" {
		t.Errorf("LLM.DefaultProvider: got %s, want openai", cfg.LLM.DefaultProvider)
	}
	// Untouched sections keep their defaults.
	if cfg.Parser.WeightNorm != 100 {
		t.Errorf("Parser.WeightNorm: got %v, want 100", cfg.Parser.WeightNorm)
	}
}

func TestManagerLoadMissingFile(t *testing.T) {
	m := NewManager(testDirs(t))
	if err := m.Load(); err != nil {
		t.Fatalf("Load with no config file should succeed: %v", err)
	}
	if m.Get().LLM.DefaultProvider != "anthropic" {
		t.Error("missing file should leave defaults intact")
	}
}

func TestEnvironmentOverrides(t *testing.T) {
	t.Setenv("METRA_LLM_PROVIDER", "openai")
	t.Setenv("METRA_LLM_MODEL", "gpt-4o-mini")
	t.Setenv("METRA_DICTIONARY_FILE", "/tmp/dict.csv")

	m := NewManager(testDirs(t))
	if err := m.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}

	cfg := m.Get()
	if cfg.LLM.DefaultProvider != "openai" {
		t.Errorf("LLM.DefaultProvider: got %s, want openai", cfg.LLM.DefaultProvider)
	}
	if cfg.LLM.Model != "gpt-4o-mini" {
		t.Errorf("LLM.Model: got %s, want gpt-4o-mini", cfg.LLM.Model)
	}
	if cfg.Data.DictionaryFile != "/tmp/dict.csv" {
		t.Errorf("Data.DictionaryFile: got %s", cfg.Data.DictionaryFile)
	}
}

func TestOnChangeFires(t *testing.T) {
	m := NewManager(testDirs(t))

	var calls int
	m.OnChange(func(*Config) { calls++ })

	if err := m.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := m.Reload(); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	if calls != 2 {
		t.Errorf("watcher calls: got %d, want 2", calls)
	}
}
