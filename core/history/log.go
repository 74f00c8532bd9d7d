// Package history records every assistant operation (generation, search,
// library mutation, export) so a session can be audited after the fact.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/adalundhe/metra/core/database"
)

// maxResultRunes bounds the stored result text; full payloads live in the
// stores themselves.
const maxResultRunes = 200

// Entry is one logged operation.
type Entry struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Input     string    `json:"input"`
	Operation string    `json:"operation"`
	Result    string    `json:"result"`
	Action    string    `json:"action"`
}

// Log persists operation history in SQLite.
type Log struct {
	pool *database.Pool
}

var migrations = []database.Migration{
	{
		Version:     1,
		Description: "operation history table",
		Up: func(tx *sql.Tx) error {
			_, err := tx.Exec(`
				CREATE TABLE IF NOT EXISTS operations (
					id TEXT PRIMARY KEY,
					timestamp TEXT NOT NULL,
					input TEXT NOT NULL,
					operation TEXT NOT NULL,
					result TEXT NOT NULL,
					action TEXT NOT NULL DEFAULT 'pending'
				);
				CREATE INDEX IF NOT EXISTS idx_operations_timestamp
					ON operations(timestamp DESC);
			`)
			return err
		},
	},
}

// Open prepares the history log on the given pool, applying migrations.
func Open(ctx context.Context, pool *database.Pool) (*Log, error) {
	if err := pool.Migrate(ctx, migrations); err != nil {
		return nil, fmt.Errorf("migrate history schema: %w", err)
	}
	return &Log{pool: pool}, nil
}

// Record appends one operation. Result text beyond 200 runes is truncated
// with an ellipsis marker.
func (l *Log) Record(ctx context.Context, input, operation, result string) (Entry, error) {
	entry := Entry{
		ID:        uuid.NewString(),
		Timestamp: time.Now().UTC(),
		Input:     input,
		Operation: operation,
		Result:    truncate(result),
		Action:    "pending",
	}

	_, err := l.pool.Exec(ctx,
		`INSERT INTO operations (id, timestamp, input, operation, result, action)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		entry.ID,
		entry.Timestamp.Format(time.RFC3339),
		entry.Input,
		entry.Operation,
		entry.Result,
		entry.Action,
	)
	if err != nil {
		return Entry{}, fmt.Errorf("record operation: %w", err)
	}
	return entry, nil
}

// SetAction updates the user disposition of a logged operation (accepted,
// rejected, adjusted).
func (l *Log) SetAction(ctx context.Context, id, action string) error {
	_, err := l.pool.Exec(ctx,
		"UPDATE operations SET action = ? WHERE id = ?", action, id)
	if err != nil {
		return fmt.Errorf("update operation action: %w", err)
	}
	return nil
}

// Recent returns the latest n entries, newest first.
func (l *Log) Recent(ctx context.Context, n int) ([]Entry, error) {
	if n <= 0 {
		n = 20
	}
	rows, err := l.pool.Query(ctx,
		`SELECT id, timestamp, input, operation, result, action
		 FROM operations ORDER BY timestamp DESC LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var ts string
		if err := rows.Scan(&e.ID, &ts, &e.Input, &e.Operation, &e.Result, &e.Action); err != nil {
			return nil, err
		}
		e.Timestamp, _ = time.Parse(time.RFC3339, ts)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func truncate(s string) string {
	runes := []rune(s)
	if len(runes) <= maxResultRunes {
		return s
	}
	return string(runes[:maxResultRunes]) + "..."
}
