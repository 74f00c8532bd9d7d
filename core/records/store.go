// Package records is the persistent library of named ReadingType codes:
// generated or hand-entered identifiers with their descriptions, stored as
// one CSV file and searched in memory.
package records

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/gobwas/glob"

	metraerrors "github.com/adalundhe/metra/core/errors"
	"github.com/adalundhe/metra/core/readingtype"
	"github.com/adalundhe/metra/core/search"
)

// SourceUser marks records added through the assistant rather than seeded
// from reference data.
const SourceUser = "用户生成"

// DefaultFuzzyThreshold is the minimum name similarity for a fuzzy search
// hit.
const DefaultFuzzyThreshold = 0.6

// Record is one library entry. FieldValues keeps the 16 parsed tokens next
// to the joined ID so exports and per-field queries need no re-parse.
type Record struct {
	ID            int                     `json:"id"`
	Name          string                  `json:"name"`
	Description   string                  `json:"description"`
	ReadingTypeID string                  `json:"reading_type_id"`
	CreatedAt     string                  `json:"created_at"`
	Source        string                  `json:"source"`
	Category      string                  `json:"category"`
	FieldValues   readingtype.FieldVector `json:"field_values"`
}

// FuzzyMatch pairs a record with its name similarity score.
type FuzzyMatch struct {
	Record Record
	Score  float64
}

// Store holds the code library. Mutations rewrite the whole backing file;
// the library is small and whole-file writes keep the CSV trivially
// consistent.
type Store struct {
	mu      sync.RWMutex
	path    string
	records []Record
	now     func() time.Time
}

// NewStore creates an empty store backed by path. Use Open to also load
// existing contents.
func NewStore(path string) *Store {
	return &Store{path: path, now: time.Now}
}

// Open loads the record library at path. A missing file yields an empty
// store.
func Open(path string) (*Store, error) {
	s := NewStore(path)
	if err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// Path returns the backing file path.
func (s *Store) Path() string {
	return s.path
}

// Len returns the number of records.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// All returns a copy of every record in insertion order.
func (s *Store) All() []Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Record(nil), s.records...)
}

// Get returns the record with the given id.
func (s *Store) Get(id int) (Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.records {
		if r.ID == id {
			return r, true
		}
	}
	return Record{}, false
}

// Search splits matches into exact (name equality, case-insensitive) and
// fuzzy (substring on name or description, or name similarity above the
// threshold). Fuzzy matches come back strongest first. threshold <= 0
// selects the default.
func (s *Store) Search(term string, threshold float64) (exact []Record, fuzzy []FuzzyMatch) {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, nil
	}
	if threshold <= 0 {
		threshold = DefaultFuzzyThreshold
	}
	lower := strings.ToLower(term)

	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, r := range s.records {
		name := strings.ToLower(r.Name)
		desc := strings.ToLower(r.Description)

		if lower == name {
			exact = append(exact, r)
			continue
		}

		score := search.Ratio(lower, name)
		if strings.Contains(name, lower) || strings.Contains(desc, lower) || score > threshold {
			fuzzy = append(fuzzy, FuzzyMatch{Record: r, Score: score})
		}
	}

	sort.SliceStable(fuzzy, func(i, j int) bool {
		return fuzzy[i].Score > fuzzy[j].Score
	})
	return exact, fuzzy
}

// Filter narrows the library by category and measurement name. Category
// accepts a glob pattern ("储能*"); a pattern that does not compile falls
// back to case-insensitive substring matching. Measurement always matches
// as a substring of the record name.
func (s *Store) Filter(category, measurement string) []Record {
	s.mu.RLock()
	defer s.mu.RUnlock()

	categoryMatch := func(string) bool { return true }
	if category != "" {
		if g, err := glob.Compile(strings.ToLower(category)); err == nil && strings.ContainsAny(category, "*?[{") {
			categoryMatch = func(c string) bool { return g.Match(c) }
		} else {
			needle := strings.ToLower(category)
			categoryMatch = func(c string) bool { return strings.Contains(c, needle) }
		}
	}
	measurement = strings.ToLower(measurement)

	var out []Record
	for _, r := range s.records {
		if !categoryMatch(strings.ToLower(r.Category)) {
			continue
		}
		if measurement != "" && !strings.Contains(strings.ToLower(r.Name), measurement) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// Add appends a new record and persists the library. The identifier must be
// a well-formed ReadingTypeID; duplicates by name (case-insensitive) or by
// identifier are rejected with a DuplicateError. On persistence failure the
// in-memory library is left unchanged.
func (s *Store) Add(name, readingTypeID, description, category string) (Record, error) {
	name = strings.TrimSpace(name)
	readingTypeID = strings.TrimSpace(readingTypeID)
	if name == "" || readingTypeID == "" {
		return Record{}, fmt.Errorf("record name and ReadingTypeID are required")
	}

	vector, err := readingtype.Parse(readingTypeID)
	if err != nil {
		return Record{}, err
	}
	if category == "" {
		category = SourceUser
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range s.records {
		if strings.EqualFold(r.Name, name) {
			return Record{}, &metraerrors.DuplicateError{Kind: "record name", Key: r.Name}
		}
		if r.ReadingTypeID == readingTypeID {
			return Record{}, &metraerrors.DuplicateError{Kind: "reading type id", Key: readingTypeID}
		}
	}

	record := Record{
		ID:            s.nextIDLocked(),
		Name:          name,
		Description:   description,
		ReadingTypeID: readingTypeID,
		CreatedAt:     s.now().Format("2006-01-02 15:04:05"),
		Source:        SourceUser,
		Category:      category,
		FieldValues:   vector,
	}

	next := append(append([]Record(nil), s.records...), record)
	if err := s.save(next); err != nil {
		return Record{}, err
	}
	s.records = next
	return record, nil
}

// nextIDLocked returns one past the highest existing id, so ids stay unique
// even after deletions in hand-edited files.
func (s *Store) nextIDLocked() int {
	next := 1
	for _, r := range s.records {
		if r.ID >= next {
			next = r.ID + 1
		}
	}
	return next
}

// Stats summarizes the library for the statistics surface.
type Stats struct {
	TotalRecords  int            `json:"total_records"`
	CategoryStats map[string]int `json:"category_stats"`
	SourceStats   map[string]int `json:"source_stats"`
}

// Statistics returns per-category and per-source counts.
func (s *Store) Statistics() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := Stats{
		TotalRecords:  len(s.records),
		CategoryStats: make(map[string]int),
		SourceStats:   make(map[string]int),
	}
	for _, r := range s.records {
		category := r.Category
		if category == "" {
			category = "未知"
		}
		source := r.Source
		if source == "" {
			source = "未知"
		}
		stats.CategoryStats[category]++
		stats.SourceStats[source]++
	}
	return stats
}
