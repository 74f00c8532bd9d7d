package search

import (
	"log/slog"
	"sort"
	"strings"

	"github.com/adalundhe/metra/core/dictionary"
	"github.com/adalundhe/metra/core/readingtype"
)

// Signal weights for the blended score. A candidate's score is the MAX of
// its signals, not a sum: one strong signal (exact value, whole-token
// display name) should not be diluted by weak ones.
const (
	scoreValueExact       = 1.0
	scoreDisplayToken     = 0.9
	scoreDisplaySubstring = 0.7
	scoreDisplayFuzzy     = 0.8 // multiplier on similarity ratio
	displayFuzzyFloor     = 0.6
	scoreDescSubstring    = 0.6
	scoreDescFuzzy        = 0.5 // multiplier on similarity ratio
	descFuzzyFloor        = 0.5
	scoreKeywordHit       = 0.5
)

// DefaultThreshold drops matches below this score.
const DefaultThreshold = 0.3

// DefaultLimit caps result sets when the caller passes no limit.
const DefaultLimit = 10

// Match is one scored dictionary entry.
type Match struct {
	Field string
	Entry dictionary.Entry
	Score float64
}

// Expander widens a search term to equivalent forms. The semantic synonym
// table satisfies this.
type Expander interface {
	Expand(term string) []string
}

// EngineConfig configures a search engine.
type EngineConfig struct {
	// Threshold filters out weak matches. Zero selects DefaultThreshold.
	Threshold float64

	// Expander is optional; when set, a term is scored against every
	// equivalent form and the best score wins.
	Expander Expander

	// Cache is optional; when set, result sets are memoized until the
	// dictionary mutates.
	Cache *QueryCache

	// Logger receives index rebuild outcomes. Defaults to slog.Default().
	Logger *slog.Logger
}

// Engine scores dictionary entries against free-text terms. It keeps a
// keyword inverted index in sync with the store and memoizes result sets.
type Engine struct {
	store     *dictionary.Store
	index     *Index
	cache     *QueryCache
	expander  Expander
	threshold float64
	logger    *slog.Logger
}

// NewEngine builds an engine over the store and registers for mutation
// callbacks so the index and cache never serve stale entries.
func NewEngine(store *dictionary.Store, config EngineConfig) (*Engine, error) {
	threshold := config.Threshold
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	index, err := NewIndex(0)
	if err != nil {
		return nil, err
	}
	if err := index.Rebuild(store); err != nil {
		index.Close()
		return nil, err
	}

	e := &Engine{
		store:     store,
		index:     index,
		cache:     config.Cache,
		expander:  config.Expander,
		threshold: threshold,
		logger:    logger,
	}
	store.OnMutate(e.Invalidate)
	return e, nil
}

// Invalidate rebuilds the keyword index and drops memoized results. Wired
// to dictionary mutation, so callers rarely need it directly.
func (e *Engine) Invalidate() {
	if err := e.index.Rebuild(e.store); err != nil {
		e.logger.Warn("keyword index rebuild failed", "error", err)
	}
	if e.cache != nil {
		e.cache.Clear()
	}
}

// Search scores every entry (of one field, or all fields when field is
// empty) against term and returns matches at or above the threshold,
// strongest first. Ties order by field position then numeric value, so
// results are stable across runs.
func (e *Engine) Search(term, field string, limit int) []Match {
	if limit <= 0 {
		limit = DefaultLimit
	}
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return nil
	}

	if e.cache != nil {
		if matches, ok := e.cache.Get(term, field, limit, e.threshold); ok {
			return matches
		}
	}

	variants := []string{term}
	if e.expander != nil {
		variants = e.expander.Expand(term)
	}

	var matches []Match
	for _, name := range e.store.FieldNames() {
		if field != "" && name != field {
			continue
		}
		for _, entry := range e.store.Entries(name) {
			var best float64
			for _, v := range variants {
				if s := e.scoreEntry(v, name, entry); s > best {
					best = s
				}
			}
			if best >= e.threshold {
				matches = append(matches, Match{Field: name, Entry: entry, Score: best})
			}
		}
	}

	sortMatches(matches)
	if len(matches) > limit {
		matches = matches[:limit]
	}

	if e.cache != nil {
		e.cache.Put(term, field, limit, e.threshold, matches)
	}
	return matches
}

// scoreEntry blends the match signals for one entry; the strongest signal
// wins.
func (e *Engine) scoreEntry(term, field string, entry dictionary.Entry) float64 {
	display := strings.ToLower(entry.DisplayName)
	desc := strings.ToLower(entry.Description)

	var score float64

	if strings.EqualFold(entry.Value, term) {
		score = max(score, scoreValueExact)
	}

	if display != "" {
		if wholeToken(display, term) {
			score = max(score, scoreDisplayToken)
		} else if strings.Contains(display, term) {
			score = max(score, scoreDisplaySubstring)
		}
		if r := Ratio(term, display); r > displayFuzzyFloor {
			score = max(score, r*scoreDisplayFuzzy)
		}
	}

	if desc != "" {
		if strings.Contains(desc, term) {
			score = max(score, scoreDescSubstring)
		} else if r := Ratio(term, desc); r > descFuzzyFloor {
			score = max(score, r*scoreDescFuzzy)
		}
	}

	if score < scoreKeywordHit && e.index.Contains(term, field, entry.Value) {
		score = scoreKeywordHit
	}

	return score
}

// wholeToken reports whether term is one of the space-separated tokens of
// text.
func wholeToken(text, term string) bool {
	for _, tok := range strings.Fields(text) {
		if tok == term {
			return true
		}
	}
	return false
}

func sortMatches(matches []Match) {
	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		pi, pj := fieldPosition(matches[i].Field), fieldPosition(matches[j].Field)
		if pi != pj {
			return pi < pj
		}
		return matches[i].Entry.Value < matches[j].Entry.Value
	})
}

func fieldPosition(name string) int {
	if spec, ok := readingtype.FieldByName(name); ok {
		return spec.Position
	}
	return readingtype.FieldCount
}

// Close releases the engine's index and cache.
func (e *Engine) Close() error {
	if e.cache != nil {
		e.cache.Close()
	}
	return e.index.Close()
}
