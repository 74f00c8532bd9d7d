// Package assistant ties the deterministic core (classifier, search,
// stores) together behind the operations the CLI and the chat surface
// call. Every operation works without an LLM; the provider only adds
// conversation on top.
package assistant

import (
	"context"
	"log/slog"

	"github.com/adalundhe/metra/core/dictionary"
	metraerrors "github.com/adalundhe/metra/core/errors"
	"github.com/adalundhe/metra/core/history"
	"github.com/adalundhe/metra/core/providers"
	"github.com/adalundhe/metra/core/readingtype"
	"github.com/adalundhe/metra/core/records"
	"github.com/adalundhe/metra/core/search"
	"github.com/adalundhe/metra/core/semantic"
)

// Assistant holds the wired core services.
type Assistant struct {
	dict      *dictionary.Store
	engine    *search.Engine
	parser    *semantic.Parser
	records   *records.Store
	history   *history.Log
	provider  providers.Provider
	logger    *slog.Logger
	exportDir string
}

// Config wires an Assistant. Dictionary, Records, Engine and Parser are
// required; History and Provider are optional.
type Config struct {
	Dictionary *dictionary.Store
	Engine     *search.Engine
	Parser     *semantic.Parser
	Records    *records.Store
	History    *history.Log
	Provider   providers.Provider
	Logger     *slog.Logger
	ExportDir  string
}

// New builds an Assistant from already-constructed services.
func New(cfg Config) *Assistant {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Assistant{
		dict:      cfg.Dictionary,
		engine:    cfg.Engine,
		parser:    cfg.Parser,
		records:   cfg.Records,
		history:   cfg.History,
		provider:  cfg.Provider,
		logger:    logger,
		exportDir: cfg.ExportDir,
	}
}

// GenerateResult is the outcome of classifying a description into an
// identifier.
type GenerateResult struct {
	ID          string
	Analysis    semantic.ParseResult
	Warnings    metraerrors.Warnings
	Suggestions []string
}

// Generate classifies a free-text description, builds the identifier, and
// attaches combination warnings and missing-field suggestions.
func (a *Assistant) Generate(ctx context.Context, description string) GenerateResult {
	analysis := a.parser.Analyze(description)

	result := GenerateResult{
		ID:          readingtype.Build(analysis.Vector),
		Analysis:    analysis,
		Warnings:    semantic.ValidateCombination(analysis.Vector),
		Suggestions: semantic.SuggestMissingFields(analysis.Vector, description),
	}

	a.log(ctx, description, "generate", result.ID)
	return result
}

// GenerateFromFields builds an identifier from explicit field values,
// validating each value against the dictionary.
func (a *Assistant) GenerateFromFields(ctx context.Context, values map[string]int) (GenerateResult, error) {
	var vector readingtype.FieldVector
	for name, value := range values {
		if !vector.Set(name, value) {
			return GenerateResult{}, &readingtype.FormatError{
				ID:     name,
				Reason: "unknown field name",
			}
		}
	}

	result := GenerateResult{
		ID:          readingtype.Build(vector),
		Analysis:    semantic.ParseResult{Vector: vector},
		Warnings:    semantic.ValidateCombination(vector),
		Suggestions: nil,
	}

	a.log(ctx, result.ID, "generate", result.ID)
	return result, nil
}

// ValidateResult reports identifier validation: format validity plus
// per-field dictionary lookups for well-formed identifiers.
type ValidateResult struct {
	Valid    bool
	Vector   readingtype.FieldVector
	Warnings metraerrors.Warnings
	Err      error
}

// Validate checks an identifier string and, when well-formed, runs the
// combination checks.
func (a *Assistant) Validate(ctx context.Context, id string) ValidateResult {
	vector, err := readingtype.Parse(id)
	if err != nil {
		a.log(ctx, id, "validate", "invalid")
		return ValidateResult{Valid: false, Err: err}
	}

	result := ValidateResult{
		Valid:    true,
		Vector:   vector,
		Warnings: semantic.ValidateCombination(vector),
	}
	a.log(ctx, id, "validate", "valid")
	return result
}

// SearchCodes searches the record library, returning exact and fuzzy
// matches.
func (a *Assistant) SearchCodes(ctx context.Context, term string) ([]records.Record, []records.FuzzyMatch) {
	exact, fuzzy := a.records.Search(term, 0)
	a.log(ctx, term, "search", renderSearchLog(exact, fuzzy))
	return exact, fuzzy
}

// SearchDictionary runs the fuzzy dictionary search across all fields, or
// one field when field is non-empty.
func (a *Assistant) SearchDictionary(ctx context.Context, term, field string, limit int) []search.Match {
	matches := a.engine.Search(term, field, limit)
	a.log(ctx, term, "dict_search", renderDictSearchLog(matches))
	return matches
}

// AddToLibrary validates and appends a record.
func (a *Assistant) AddToLibrary(ctx context.Context, name, id, description, category string) (records.Record, error) {
	record, err := a.records.Add(name, id, description, category)
	if err != nil {
		a.log(ctx, name, "add", err.Error())
		return records.Record{}, err
	}
	a.log(ctx, "添加编码: "+name, "add", "成功添加编码 "+id)
	return record, nil
}

// Export writes the record library to a timestamped file.
func (a *Assistant) Export(ctx context.Context, format, category string) (string, error) {
	path, err := a.records.Export(a.exportDir, category, format)
	if err != nil {
		a.log(ctx, format, "export", err.Error())
		return "", err
	}
	a.log(ctx, format, "export", path)
	return path, nil
}

// Statistics summarizes the stores.
func (a *Assistant) Statistics() (records.Stats, []dictionary.FieldStats) {
	return a.records.Statistics(), a.dict.Stats()
}

// Dictionary exposes the dictionary store for read paths.
func (a *Assistant) Dictionary() *dictionary.Store {
	return a.dict
}

// Records exposes the record store for read paths.
func (a *Assistant) Records() *records.Store {
	return a.records
}

// log records an operation when a history log is attached. History is
// best-effort: failures are logged, never surfaced.
func (a *Assistant) log(ctx context.Context, input, operation, result string) {
	if a.history == nil {
		return
	}
	if _, err := a.history.Record(ctx, input, operation, result); err != nil {
		a.logger.Warn("history record failed", "operation", operation, "error", err)
	}
}
