// Package semantic implements the rule-driven classifier that turns
// free-text measurement descriptions into ReadingType field vectors.
// Matching is deterministic: pattern rules per field, then cross-field
// context rules, then dependency propagation, then confidence scoring.
package semantic

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/adalundhe/metra/core/readingtype"
)

// Thresholds are the tunable constants of the classifier. They are
// heuristics, not contracts; callers may override them via configuration.
type Thresholds struct {
	// MaxConfidence caps every confidence value. Never 1.0: the parser is
	// heuristic, not certain.
	MaxConfidence float64 `yaml:"max_confidence"`

	// DefaultConfidence is assigned when no rule fires for a field.
	DefaultConfidence float64 `yaml:"default_confidence"`

	// WeightNorm divides accumulated rule weight into a confidence.
	WeightNorm float64 `yaml:"weight_norm"`

	// StandaloneBonus multiplies a keyword's weight when it appears as a
	// standalone token rather than embedded in a longer word.
	StandaloneBonus float64 `yaml:"standalone_bonus"`

	// ContextBump is added to a field's confidence when a context rule
	// force-sets it.
	ContextBump float64 `yaml:"context_bump"`

	// DependencyThreshold guards propagation: a dependency never
	// overwrites a field matched at or above this confidence.
	DependencyThreshold float64 `yaml:"dependency_threshold"`

	// DependencyConfidence is assigned to fields set by propagation.
	DependencyConfidence float64 `yaml:"dependency_confidence"`

	// NoiseThreshold excludes fields from the aggregate mean.
	NoiseThreshold float64 `yaml:"noise_threshold"`

	// MeaningfulThreshold counts a field toward the recognition bonus.
	MeaningfulThreshold float64 `yaml:"meaningful_threshold"`

	// FieldBonus is added per meaningful field, up to FieldBonusCap.
	FieldBonus    float64 `yaml:"field_bonus"`
	FieldBonusCap float64 `yaml:"field_bonus_cap"`
}

// DefaultThresholds returns the tuning the rule tables were calibrated
// against.
func DefaultThresholds() Thresholds {
	return Thresholds{
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
	}
}

// ParseResult is the classifier output: a complete 16-field vector (every
// field has a value, possibly the default), per-field and overall
// confidence, and the keywords that drove each field.
type ParseResult struct {
	Vector          readingtype.FieldVector
	Confidence      float64
	FieldConfidence map[string]float64
	MatchedKeywords map[string][]string
}

// Parser is the semantic classifier. Its rule tables are plain data so the
// matching algorithm stays uniform across fields.
type Parser struct {
	rules        []FieldRules
	contextRules []ContextRule
	dependencies []Dependency
	synonyms     *SynonymTable
	thresholds   Thresholds
}

// Option configures a Parser.
type Option func(*Parser)

// WithThresholds overrides the default tuning constants.
func WithThresholds(t Thresholds) Option {
	return func(p *Parser) { p.thresholds = t }
}

// WithRules replaces the built-in pattern rule tables.
func WithRules(rules []FieldRules) Option {
	return func(p *Parser) { p.rules = rules }
}

// WithContextRules replaces the built-in context rules.
func WithContextRules(rules []ContextRule) Option {
	return func(p *Parser) { p.contextRules = rules }
}

// WithDependencies replaces the built-in dependency table.
func WithDependencies(deps []Dependency) Option {
	return func(p *Parser) { p.dependencies = deps }
}

// WithSynonyms replaces the built-in synonym table.
func WithSynonyms(t *SynonymTable) Option {
	return func(p *Parser) { p.synonyms = t }
}

// NewParser builds a classifier with the built-in rule tables.
func NewParser(opts ...Option) *Parser {
	p := &Parser{
		rules:        DefaultFieldRules(),
		contextRules: DefaultContextRules(),
		dependencies: DefaultDependencies(),
		synonyms:     DefaultSynonyms(),
		thresholds:   DefaultThresholds(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Synonyms exposes the parser's synonym table for search-term expansion.
func (p *Parser) Synonyms() *SynonymTable {
	return p.synonyms
}

// Thresholds returns the active tuning constants.
func (p *Parser) Thresholds() Thresholds {
	return p.thresholds
}

// fieldState tracks one field's best match while the pipeline runs.
type fieldState struct {
	value      int
	confidence float64
	keywords   []string
}

// Analyze classifies a free-text description. It always returns a result:
// nonsensical or empty input degrades to all defaults with low confidence.
func (p *Parser) Analyze(description string) ParseResult {
	text := p.Normalize(description)

	states := p.matchPatterns(text)
	p.applyContextRules(text, states)
	p.applyDependencies(states)

	result := ParseResult{
		FieldConfidence: make(map[string]float64, len(states)),
		MatchedKeywords: make(map[string][]string, len(states)),
	}
	for field, st := range states {
		result.Vector.Set(field, st.value)
		result.FieldConfidence[field] = st.confidence
		if len(st.keywords) > 0 {
			sort.Strings(st.keywords)
			result.MatchedKeywords[field] = st.keywords
		}
	}
	result.Confidence = p.aggregateConfidence(states)
	return result
}

// unitSplits separates magnitude prefixes from base units so "kwh" and
// "kw" are not confused with unrelated words containing "k" or "w".
// Longer forms rewrite first.
var unitSplits = [][2]string{
	{"kwh", "k wh"},
	{"mwh", "m wh"},
	{"kw", "k w"},
	{"mw", "m w"},
	{"kv", "k v"},
	{"mv", "m v"},
	{"ka", "k a"},
	{"ma", "m a"},
}

// Normalize lower-cases, splits ambiguous unit abbreviations, and rewrites
// synonyms to canonical terms.
func (p *Parser) Normalize(text string) string {
	text = strings.ToLower(strings.TrimSpace(text))
	for _, split := range unitSplits {
		text = strings.ReplaceAll(text, split[0], split[1])
	}
	return p.synonyms.Canonicalize(text)
}

func (p *Parser) matchPatterns(text string) map[string]*fieldState {
	states := make(map[string]*fieldState, len(p.rules))

	for _, fr := range p.rules {
		best := &fieldState{value: fr.Default, confidence: p.thresholds.DefaultConfidence}

		for _, rule := range fr.Patterns {
			var matched []string
			var total float64

			for _, kw := range rule.Keywords {
				if !strings.Contains(text, kw) {
					continue
				}
				matched = append(matched, kw)
				weight := rule.Weight * float64(utf8.RuneCountInString(kw))
				if standaloneToken(text, kw) {
					weight *= p.thresholds.StandaloneBonus
				}
				total += weight
			}

			if len(matched) == 0 {
				continue
			}
			confidence := min(p.thresholds.MaxConfidence, total/p.thresholds.WeightNorm)
			if confidence > best.confidence {
				best = &fieldState{value: rule.Value, confidence: confidence, keywords: matched}
			}
		}

		states[fr.Field] = best
	}

	return states
}

// standaloneToken reports whether kw appears in text surrounded by spaces
// (or the text boundary) rather than embedded in a longer word.
func standaloneToken(text, kw string) bool {
	return strings.Contains(" "+text+" ", " "+kw+" ")
}

func (p *Parser) applyContextRules(text string, states map[string]*fieldState) {
	for _, rule := range p.contextRules {
		if !allPresent(text, rule.Triggers) {
			continue
		}
		for field, value := range rule.Updates {
			st, ok := states[field]
			if !ok {
				st = &fieldState{confidence: p.thresholds.DefaultConfidence}
				states[field] = st
			}
			st.value = value
			st.confidence = min(p.thresholds.MaxConfidence, st.confidence+p.thresholds.ContextBump)
			st.keywords = append(st.keywords, rule.Triggers...)
		}
	}
}

func allPresent(text string, keywords []string) bool {
	for _, kw := range keywords {
		if !strings.Contains(text, kw) {
			return false
		}
	}
	return true
}

// applyDependencies propagates resolved values to related fields, never
// downgrading a field matched at or above the dependency threshold.
func (p *Parser) applyDependencies(states map[string]*fieldState) {
	for _, dep := range p.dependencies {
		src, ok := states[dep.Field]
		if !ok || src.value != dep.Value {
			continue
		}
		for field, value := range dep.Updates {
			st, ok := states[field]
			if !ok {
				st = &fieldState{confidence: p.thresholds.DefaultConfidence}
				states[field] = st
			}
			if st.confidence >= p.thresholds.DependencyThreshold {
				continue
			}
			st.value = value
			st.confidence = p.thresholds.DependencyConfidence
		}
	}
}

func (p *Parser) aggregateConfidence(states map[string]*fieldState) float64 {
	var sum float64
	var count, meaningful int

	for _, st := range states {
		if st.confidence > p.thresholds.NoiseThreshold {
			sum += st.confidence
			count++
		}
		if st.confidence > p.thresholds.MeaningfulThreshold {
			meaningful++
		}
	}

	if count == 0 {
		return p.thresholds.DefaultConfidence
	}

	bonus := min(p.thresholds.FieldBonusCap, float64(meaningful)*p.thresholds.FieldBonus)
	return min(p.thresholds.MaxConfidence, sum/float64(count)+bonus)
}
