package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/adalundhe/metra/core/assistant"
	"github.com/adalundhe/metra/core/config"
	"github.com/adalundhe/metra/core/database"
	"github.com/adalundhe/metra/core/dictionary"
	"github.com/adalundhe/metra/core/history"
	"github.com/adalundhe/metra/core/providers"
	"github.com/adalundhe/metra/core/records"
	"github.com/adalundhe/metra/core/search"
	"github.com/adalundhe/metra/core/semantic"
	"github.com/adalundhe/metra/core/storage"
)

// app holds the wired services for one command invocation. Commands are
// single-shot; everything is constructed up front and torn down in Close.
type app struct {
	dirs      *storage.Dirs
	config    *config.Manager
	dict      *dictionary.Store
	watcher   *dictionary.Watcher
	engine    *search.Engine
	cache     *search.QueryCache
	records   *records.Store
	db        *database.Manager
	history   *history.Log
	provider  providers.Provider
	assistant *assistant.Assistant
	logger    *slog.Logger
}

// appOptions tweaks wiring per command.
type appOptions struct {
	// watch starts the dictionary file watcher. Only long-running
	// commands (chat) want it.
	watch bool

	// provider constructs the LLM provider. Commands that never talk to
	// a model skip it so a missing API key is not an error.
	provider bool
}

func newApp(ctx context.Context, opts appOptions) (*app, error) {
	logger := newLogger()

	dirs, err := storage.ResolveDirs()
	if err != nil {
		return nil, fmt.Errorf("resolve storage dirs: %w", err)
	}
	if err := dirs.EnsureAll(); err != nil {
		return nil, fmt.Errorf("create storage dirs: %w", err)
	}

	manager := config.NewManager(dirs)
	if err := manager.Load(); err != nil {
		return nil, err
	}
	cfg := manager.Get()

	a := &app{dirs: dirs, config: manager, logger: logger}

	a.dict, err = dictionary.Load(a.dataPath(cfg.Data.DictionaryFile))
	if err != nil {
		return nil, err
	}

	if opts.watch && cfg.Data.WatchFiles {
		a.watcher, err = dictionary.NewWatcher(a.dict, dictionary.WatcherConfig{Logger: logger})
		if err != nil {
			logger.Warn("dictionary watcher unavailable", "error", err)
		} else if err := a.watcher.Start(); err != nil {
			logger.Warn("dictionary watcher failed to start", "error", err)
			a.watcher = nil
		}
	}

	a.cache, err = search.NewQueryCache(search.QueryCacheConfig{TTL: cacheTTL(cfg)})
	if err != nil {
		return nil, err
	}

	parser := semantic.NewParser(semantic.WithThresholds(parserThresholds(cfg)))

	a.engine, err = search.NewEngine(a.dict, search.EngineConfig{
		Threshold: cfg.Search.Threshold,
		Expander:  parser.Synonyms(),
		Cache:     a.cache,
		Logger:    logger,
	})
	if err != nil {
		return nil, err
	}

	a.records, err = records.Open(a.dataPath(cfg.Data.RecordsFile))
	if err != nil {
		return nil, err
	}

	a.db = database.NewManager(dirs)
	pool, err := a.db.Open(cfg.Data.HistoryDB, database.DefaultPoolConfig())
	if err != nil {
		logger.Warn("history database unavailable", "error", err)
	} else if a.history, err = history.Open(ctx, pool); err != nil {
		logger.Warn("history log unavailable", "error", err)
		a.history = nil
	}

	if opts.provider {
		a.provider, err = buildProvider(cfg)
		if err != nil {
			a.Close()
			return nil, err
		}
	}

	a.assistant = assistant.New(assistant.Config{
		Dictionary: a.dict,
		Engine:     a.engine,
		Parser:     parser,
		Records:    a.records,
		History:    a.history,
		Provider:   a.provider,
		Logger:     logger,
		ExportDir:  dirs.ExportDir(),
	})
	return a, nil
}

func (a *app) Close() {
	if a.watcher != nil {
		a.watcher.Close()
	}
	if a.provider != nil {
		a.provider.Close()
	}
	if a.engine != nil {
		a.engine.Close()
	}
	if a.db != nil {
		a.db.CloseAll()
	}
}

// runWithApp wraps a command body with app construction and teardown.
func runWithApp(opts appOptions, fn func(ctx context.Context, a *app) error) error {
	ctx := context.Background()
	a, err := newApp(ctx, opts)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(ctx, a)
}

// dataPath resolves a configured file name under the data directory.
// Absolute paths pass through unchanged.
func (a *app) dataPath(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return a.dirs.DataDir(name)
}

func cacheTTL(cfg *config.Config) time.Duration {
	d, err := time.ParseDuration(cfg.Search.CacheTTL)
	if err != nil {
		return 0
	}
	return d
}

func parserThresholds(cfg *config.Config) semantic.Thresholds {
	p := cfg.Parser
	return semantic.Thresholds{
		MaxConfidence:        p.MaxConfidence,
		DefaultConfidence:    p.DefaultConfidence,
		WeightNorm:           p.WeightNorm,
		StandaloneBonus:      p.StandaloneBonus,
		ContextBump:          p.ContextBump,
		DependencyThreshold:  p.DependencyThreshold,
		DependencyConfidence: p.DependencyConfidence,
		NoiseThreshold:       p.NoiseThreshold,
		MeaningfulThreshold:  p.MeaningfulThreshold,
		FieldBonus:           p.FieldBonus,
		FieldBonusCap:        p.FieldBonusCap,
	}
}

// buildProvider constructs the configured LLM provider, or nil when no API
// key is present. Chat reports the missing provider; everything else works
// without one.
func buildProvider(cfg *config.Config) (providers.Provider, error) {
	switch providers.ProviderType(cfg.LLM.DefaultProvider) {
	case providers.ProviderTypeAnthropic:
		key := os.Getenv("ANTHROPIC_API_KEY")
		if key == "" {
			return nil, nil
		}
		pc := providers.DefaultAnthropicConfig()
		pc.APIKey = key
		applyLLMConfig(&pc.BaseConfig, cfg)
		return providers.NewAnthropicProvider(pc)

	case providers.ProviderTypeOpenAI:
		key := os.Getenv("OPENAI_API_KEY")
		if key == "" {
			return nil, nil
		}
		pc := providers.DefaultOpenAIConfig()
		pc.APIKey = key
		applyLLMConfig(&pc.BaseConfig, cfg)
		return providers.NewOpenAIProvider(pc)

	default:
		return nil, fmt.Errorf("unknown llm provider %q (want anthropic or openai)", cfg.LLM.DefaultProvider)
	}
}

func applyLLMConfig(base *providers.BaseConfig, cfg *config.Config) {
	if cfg.LLM.Model != "" {
		base.Model = cfg.LLM.Model
	}
	if cfg.LLM.MaxTokens > 0 {
		base.MaxTokens = cfg.LLM.MaxTokens
	}
	if cfg.LLM.Timeout > 0 {
		base.Timeout = cfg.LLM.Timeout
	}
}
