// Package usage records tool calls served by the MCP server.
package usage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/RobinCoderZhao/mcp-tools/pkg/storage"
)

// Schema creates the tool call table.
const Schema = `
CREATE TABLE IF NOT EXISTS tool_calls (
	id          TEXT PRIMARY KEY,
	tool        TEXT NOT NULL,
	started_at  INTEGER NOT NULL,
	duration_ms INTEGER NOT NULL,
	is_error    INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_tool_calls_tool ON tool_calls(tool);
`

// Store provides persistence for tool call records using the common storage layer.
type Store struct {
	db *storage.DB
}

// NewStore creates a store and applies its schema.
func NewStore(ctx context.Context, db *storage.DB) (*Store, error) {
	if err := db.Migrate(ctx, Schema); err != nil {
		return nil, fmt.Errorf("usage schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Call is one recorded tool call.
type Call struct {
	ID        string
	Tool      string
	StartedAt time.Time
	Duration  time.Duration
	IsError   bool
}

// ToolStats aggregates the calls of one tool.
type ToolStats struct {
	Tool        string        `json:"tool"`
	Calls       int           `json:"calls"`
	Errors      int           `json:"errors"`
	AvgDuration time.Duration `json:"avgDuration"`
	LastCalled  time.Time     `json:"lastCalled"`
}

// Record inserts a call. An empty ID is filled with a new UUID.
func (s *Store) Record(ctx context.Context, c Call) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	isError := 0
	if c.IsError {
		isError = 1
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO tool_calls (id, tool, started_at, duration_ms, is_error) VALUES (?, ?, ?, ?, ?)`,
		c.ID, c.Tool, c.StartedAt.UnixMilli(), c.Duration.Milliseconds(), isError)
	if err != nil {
		return fmt.Errorf("record call: %w", err)
	}
	return nil
}

// Stats returns per-tool aggregates ordered by tool name.
func (s *Store) Stats(ctx context.Context) ([]ToolStats, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT tool, COUNT(*), SUM(is_error), AVG(duration_ms), MAX(started_at)
		FROM tool_calls
		GROUP BY tool
		ORDER BY tool`)
	if err != nil {
		return nil, fmt.Errorf("query stats: %w", err)
	}
	defer rows.Close()

	var result []ToolStats
	for rows.Next() {
		var (
			st     ToolStats
			avgMs  float64
			lastMs int64
		)
		if err := rows.Scan(&st.Tool, &st.Calls, &st.Errors, &avgMs, &lastMs); err != nil {
			return nil, fmt.Errorf("scan stats: %w", err)
		}
		st.AvgDuration = time.Duration(avgMs * float64(time.Millisecond))
		st.LastCalled = time.UnixMilli(lastMs)
		result = append(result, st)
	}
	return result, rows.Err()
}

// Prune deletes calls started before cutoff and returns how many were removed.
func (s *Store) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	var removed int64
	err := s.db.Transaction(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM tool_calls WHERE started_at < ?`, cutoff.UnixMilli())
		if err != nil {
			return fmt.Errorf("prune calls: %w", err)
		}
		removed, err = res.RowsAffected()
		return err
	})
	return removed, err
}
