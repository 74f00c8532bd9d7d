// Package dictionary implements the per-field value dictionary for
// ReadingType fields: loading from a tabular CSV source, value and
// description lookup, numeric-sorted enumeration, and user-added custom
// values with whole-file persistence.
package dictionary

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	metraerrors "github.com/adalundhe/metra/core/errors"
	"github.com/adalundhe/metra/core/readingtype"
)

// Entry is one dictionary value for a field. Value is kept as a string
// because a handful of standard keys are decimals.
type Entry struct {
	Value       string `json:"value"`
	DisplayName string `json:"display_name"`
	Description string `json:"description,omitempty"`
	IsCustom    bool   `json:"is_custom"`
}

// Store holds the per-field entry collections. It is safe for concurrent
// readers with a single writer (the interactive session plus the reload
// watcher callback).
type Store struct {
	mu     sync.RWMutex
	path   string
	fields map[string][]Entry

	// onMutate is invoked after a successful mutation so dependents
	// (search cache, keyword index) can invalidate themselves.
	onMutate []func()
}

// NewStore returns an empty store persisted at path.
func NewStore(path string) *Store {
	return &Store{
		path:   path,
		fields: make(map[string][]Entry),
	}
}

// OnMutate registers a callback fired after every successful mutation or
// reload. Callbacks run synchronously under no store lock.
func (s *Store) OnMutate(fn func()) {
	s.mu.Lock()
	s.onMutate = append(s.onMutate, fn)
	s.mu.Unlock()
}

func (s *Store) notifyMutate() {
	s.mu.RLock()
	callbacks := make([]func(), len(s.onMutate))
	copy(callbacks, s.onMutate)
	s.mu.RUnlock()
	for _, fn := range callbacks {
		fn()
	}
}

// Path returns the backing file path.
func (s *Store) Path() string {
	return s.path
}

// FieldNames returns the field names present in the store, sorted by the
// standard's positional order first and alphabetically for any extras.
func (s *Store) FieldNames() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	known := make([]string, 0, len(s.fields))
	for _, f := range readingtype.Fields() {
		if _, ok := s.fields[f.Name]; ok {
			known = append(known, f.Name)
		}
	}

	var extras []string
	for name := range s.fields {
		if _, ok := readingtype.FieldByName(name); !ok {
			extras = append(extras, name)
		}
	}
	sort.Strings(extras)

	return append(known, extras...)
}

// HasField reports whether the store holds entries for the field.
func (s *Store) HasField(field string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.fields[field]
	return ok
}

// Entries returns the field's entries in load order. The slice is a copy.
func (s *Store) Entries(field string) []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entries := s.fields[field]
	out := make([]Entry, len(entries))
	copy(out, entries)
	return out
}

// Lookup returns the entry for an exact value within a field.
func (s *Store) Lookup(field, value string) (Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, e := range s.fields[field] {
		if e.Value == value {
			return e, true
		}
	}
	return Entry{}, false
}

// Description returns the display name for a field value. Lookup misses
// degrade to a placeholder; this path never fails.
func (s *Store) Description(field, value string) string {
	if e, ok := s.Lookup(field, value); ok {
		return e.DisplayName
	}
	return fmt.Sprintf("value: %s", value)
}

// DescriptionInt is Description for integer vector values.
func (s *Store) DescriptionInt(field string, value int) string {
	return s.Description(field, strconv.Itoa(value))
}

// Options returns the field's entries sorted numerically by value and
// truncated to limit (limit <= 0 means no truncation). Entries whose value
// cannot be parsed sort after the numeric ones in load order.
func (s *Store) Options(field string, limit int) []Entry {
	entries := s.Entries(field)

	sort.SliceStable(entries, func(i, j int) bool {
		a, aok := parseNumericValue(entries[i].Value)
		b, bok := parseNumericValue(entries[j].Value)
		switch {
		case aok && bok:
			return a < b
		case aok:
			return true
		default:
			return false
		}
	})

	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries
}

// parseNumericValue parses a dictionary value, normalizing the typographic
// minus (U+2013) that appears in the source data for negative numbers.
func parseNumericValue(value string) (float64, bool) {
	normalized := strings.ReplaceAll(strings.TrimSpace(value), "–", "-")
	f, err := strconv.ParseFloat(normalized, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// ValidateValue reports whether the value exists in the field's dictionary.
func (s *Store) ValidateValue(field, value string) bool {
	_, ok := s.Lookup(field, value)
	return ok
}

// AddCustomValue appends a user-defined entry to a field and persists the
// whole store. Unknown fields and duplicate values are rejected with the
// store untouched.
func (s *Store) AddCustomValue(field, value, displayName, description string) error {
	s.mu.Lock()

	if _, ok := s.fields[field]; !ok {
		s.mu.Unlock()
		return fmt.Errorf("%w: %q", metraerrors.ErrUnknownField, field)
	}
	for _, e := range s.fields[field] {
		if e.Value == value {
			s.mu.Unlock()
			return &metraerrors.DuplicateError{
				Kind: "dictionary value",
				Key:  field + "." + value,
			}
		}
	}

	s.fields[field] = append(s.fields[field], Entry{
		Value:       value,
		DisplayName: displayName,
		Description: description,
		IsCustom:    true,
	})

	if err := s.saveLocked(); err != nil {
		// Roll back the append so a retry sees the original state.
		s.fields[field] = s.fields[field][:len(s.fields[field])-1]
		s.mu.Unlock()
		return err
	}
	s.mu.Unlock()

	s.notifyMutate()
	return nil
}

// FieldStats summarizes one field's dictionary.
type FieldStats struct {
	Field          string `json:"field"`
	DisplayName    string `json:"display_name"`
	TotalValues    int    `json:"total_values"`
	StandardValues int    `json:"standard_values"`
	CustomValues   int    `json:"custom_values"`
}

// Stats returns per-field dictionary statistics in field order.
func (s *Store) Stats() []FieldStats {
	names := s.FieldNames()

	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := make([]FieldStats, 0, len(names))
	for _, name := range names {
		entries := s.fields[name]
		custom := 0
		for _, e := range entries {
			if e.IsCustom {
				custom++
			}
		}
		stats = append(stats, FieldStats{
			Field:          name,
			DisplayName:    readingtype.DisplayName(name),
			TotalValues:    len(entries),
			StandardValues: len(entries) - custom,
			CustomValues:   custom,
		})
	}
	return stats
}
