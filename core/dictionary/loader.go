package dictionary

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	metraerrors "github.com/adalundhe/metra/core/errors"
	"github.com/adalundhe/metra/core/readingtype"
)

// CSV columns of the dictionary source. The store writes back the exact
// same shape it reads.
var csvHeader = []string{
	"field_name",
	"field_chinese_name",
	"field_value",
	"display_name",
	"description",
	"is_custom",
}

// Load reads the dictionary CSV at path. A missing file yields an empty
// store so the rest of the system degrades gracefully.
func Load(path string) (*Store, error) {
	s := NewStore(path)
	if err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// Reload re-reads the backing file, replacing the in-memory entries.
// Loading is idempotent.
func (s *Store) Reload() error {
	f, err := os.Open(s.path)
	if os.IsNotExist(err) {
		s.mu.Lock()
		s.fields = make(map[string][]Entry)
		s.mu.Unlock()
		s.notifyMutate()
		return nil
	}
	if err != nil {
		return fmt.Errorf("open dictionary source: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	rows, err := r.ReadAll()
	if err != nil {
		return fmt.Errorf("read dictionary source: %w", err)
	}
	if len(rows) == 0 {
		s.mu.Lock()
		s.fields = make(map[string][]Entry)
		s.mu.Unlock()
		s.notifyMutate()
		return nil
	}

	cols := headerIndex(rows[0])
	fields := make(map[string][]Entry)

	for _, row := range rows[1:] {
		name := strings.TrimSpace(cell(row, cols["field_name"]))
		if name == "" {
			continue
		}
		fields[name] = append(fields[name], Entry{
			Value:       strings.TrimSpace(cell(row, cols["field_value"])),
			DisplayName: strings.TrimSpace(cell(row, cols["display_name"])),
			Description: strings.TrimSpace(cell(row, cols["description"])),
			IsCustom:    parseBool(cell(row, cols["is_custom"])),
		})
	}

	s.mu.Lock()
	s.fields = fields
	s.mu.Unlock()
	s.notifyMutate()
	return nil
}

func headerIndex(header []string) map[string]int {
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.TrimSpace(strings.ToLower(name))] = i
	}
	return cols
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}

func parseBool(s string) bool {
	b, err := strconv.ParseBool(strings.TrimSpace(s))
	return err == nil && b
}

// Save persists the whole store to the backing file.
func (s *Store) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveLocked()
}

func (s *Store) saveLocked() error {
	f, err := os.Create(s.path)
	if err != nil {
		return &metraerrors.PersistError{Path: s.path, Err: err}
	}

	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		f.Close()
		return &metraerrors.PersistError{Path: s.path, Err: err}
	}

	for _, name := range s.fieldNamesLocked() {
		for _, e := range s.fields[name] {
			row := []string{
				name,
				readingtype.DisplayName(name),
				e.Value,
				e.DisplayName,
				e.Description,
				strconv.FormatBool(e.IsCustom),
			}
			if err := w.Write(row); err != nil {
				f.Close()
				return &metraerrors.PersistError{Path: s.path, Err: err}
			}
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return &metraerrors.PersistError{Path: s.path, Err: err}
	}
	if err := f.Close(); err != nil {
		return &metraerrors.PersistError{Path: s.path, Err: err}
	}
	return nil
}

// fieldNamesLocked mirrors FieldNames without taking the lock.
func (s *Store) fieldNamesLocked() []string {
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

// Export writes the dictionary (optionally a single field) to a timestamped
// CSV or JSON file in dir and returns the file path.
func (s *Store) Export(dir, field, format string) (string, error) {
	if field != "" && !s.HasField(field) {
		return "", fmt.Errorf("%w: %q", metraerrors.ErrUnknownField, field)
	}

	scope := "all"
	if field != "" {
		scope = field
	}
	stamp := time.Now().Format("20060102_150405")
	path := filepath.Join(dir, fmt.Sprintf("dictionary_%s_%s.%s", scope, stamp, format))

	switch format {
	case "csv":
		return path, s.exportCSV(path, field)
	case "json":
		return path, s.exportJSON(path, field)
	default:
		return "", fmt.Errorf("unsupported export format %q (want csv or json)", format)
	}
}

func (s *Store) exportCSV(path, field string) error {
	f, err := os.Create(path)
	if err != nil {
		return &metraerrors.PersistError{Path: path, Err: err}
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		return &metraerrors.PersistError{Path: path, Err: err}
	}

	for _, name := range s.FieldNames() {
		if field != "" && name != field {
			continue
		}
		for _, e := range s.Entries(name) {
			row := []string{
				name,
				readingtype.DisplayName(name),
				e.Value,
				e.DisplayName,
				e.Description,
				strconv.FormatBool(e.IsCustom),
			}
			if err := w.Write(row); err != nil {
				return &metraerrors.PersistError{Path: path, Err: err}
			}
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return &metraerrors.PersistError{Path: path, Err: err}
	}
	return nil
}

func (s *Store) exportJSON(path, field string) error {
	payload := make(map[string][]Entry)
	for _, name := range s.FieldNames() {
		if field != "" && name != field {
			continue
		}
		payload[name] = s.Entries(name)
	}

	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return &metraerrors.PersistError{Path: path, Err: err}
	}
	return nil
}
