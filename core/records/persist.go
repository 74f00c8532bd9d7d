package records

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	metraerrors "github.com/adalundhe/metra/core/errors"
	"github.com/adalundhe/metra/core/readingtype"
)

// recordHeader is the CSV shape of the library: the flat record columns
// followed by one column per positional field.
func recordHeader() []string {
	header := []string{
		"id",
		"name",
		"description",
		"reading_type_id",
		"created_at",
		"source",
		"category",
	}
	for i := 1; i <= readingtype.FieldCount; i++ {
		header = append(header, fmt.Sprintf("field_%d", i))
	}
	return header
}

// Reload re-reads the backing file, replacing in-memory records. A missing
// file yields an empty library.
func (s *Store) Reload() error {
	f, err := os.Open(s.path)
	if os.IsNotExist(err) {
		s.mu.Lock()
		s.records = nil
		s.mu.Unlock()
		return nil
	}
	if err != nil {
		return fmt.Errorf("open record library: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	rows, err := r.ReadAll()
	if err != nil {
		return fmt.Errorf("read record library: %w", err)
	}
	if len(rows) == 0 {
		s.mu.Lock()
		s.records = nil
		s.mu.Unlock()
		return nil
	}

	cols := make(map[string]int, len(rows[0]))
	for i, name := range rows[0] {
		cols[strings.TrimSpace(strings.ToLower(name))] = i
	}

	records := make([]Record, 0, len(rows)-1)
	for _, row := range rows[1:] {
		record := Record{
			Name:          column(row, cols, "name"),
			Description:   column(row, cols, "description"),
			ReadingTypeID: column(row, cols, "reading_type_id"),
			CreatedAt:     column(row, cols, "created_at"),
			Source:        column(row, cols, "source"),
			Category:      column(row, cols, "category"),
		}
		if record.Name == "" {
			continue
		}
		record.ID, _ = strconv.Atoi(column(row, cols, "id"))
		if vector, err := readingtype.Parse(record.ReadingTypeID); err == nil {
			record.FieldValues = vector
		}
		records = append(records, record)
	}

	s.mu.Lock()
	s.records = records
	s.mu.Unlock()
	return nil
}

func column(row []string, cols map[string]int, name string) string {
	idx, ok := cols[name]
	if !ok || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// save writes the given records to the backing file. Called with s.mu held.
func (s *Store) save(records []Record) error {
	f, err := os.Create(s.path)
	if err != nil {
		return &metraerrors.PersistError{Path: s.path, Err: err}
	}

	if err := writeRecordCSV(f, records); err != nil {
		f.Close()
		return &metraerrors.PersistError{Path: s.path, Err: err}
	}
	if err := f.Close(); err != nil {
		return &metraerrors.PersistError{Path: s.path, Err: err}
	}
	return nil
}

func writeRecordCSV(f *os.File, records []Record) error {
	w := csv.NewWriter(f)
	if err := w.Write(recordHeader()); err != nil {
		return err
	}
	for _, r := range records {
		row := []string{
			strconv.Itoa(r.ID),
			r.Name,
			r.Description,
			r.ReadingTypeID,
			r.CreatedAt,
			r.Source,
			r.Category,
		}
		for _, value := range r.FieldValues {
			row = append(row, strconv.Itoa(value))
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// Export writes the library (optionally one category) to a timestamped file
// in dir and returns the file path.
func (s *Store) Export(dir, category, format string) (string, error) {
	var selected []Record
	for _, r := range s.All() {
		if category != "" && !strings.EqualFold(r.Category, category) {
			continue
		}
		selected = append(selected, r)
	}

	stamp := time.Now().Format("20060102_150405")
	path := filepath.Join(dir, fmt.Sprintf("reading_type_export_%s.%s", stamp, format))

	switch format {
	case "csv":
		f, err := os.Create(path)
		if err != nil {
			return "", &metraerrors.PersistError{Path: path, Err: err}
		}
		if err := writeRecordCSV(f, selected); err != nil {
			f.Close()
			return "", &metraerrors.PersistError{Path: path, Err: err}
		}
		if err := f.Close(); err != nil {
			return "", &metraerrors.PersistError{Path: path, Err: err}
		}
		return path, nil
	case "json":
		data, err := json.MarshalIndent(selected, "", "  ")
		if err != nil {
			return "", err
		}
		if err := os.WriteFile(path, data, 0644); err != nil {
			return "", &metraerrors.PersistError{Path: path, Err: err}
		}
		return path, nil
	default:
		return "", fmt.Errorf("unsupported export format %q (want csv or json)", format)
	}
}
