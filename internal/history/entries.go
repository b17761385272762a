package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Entry is one recorded conversion.
type Entry struct {
	ID             int64     `json:"id"`
	RunID          string    `json:"run_id"`
	SourcePath     string    `json:"source_path"`
	OutputPath     string    `json:"output_path"`
	BaseName       string    `json:"base_name"`
	ChannelCount   int       `json:"channel_count"`
	ConnectedCount int       `json:"connected_count"`
	ShankCount     int       `json:"shank_count"`
	ShankPitch     float64   `json:"shank_pitch"`
	LFCount        int       `json:"lf_count"`
	SYCount        int       `json:"sy_count"`
	CreatedAt      time.Time `json:"created_at"`
}

// DefaultListLimit caps List when the caller passes a non-positive limit.
const DefaultListLimit = 20

// timestampLayout has fixed-width fractional seconds so created_at sorts as text.
const timestampLayout = "2006-01-02T15:04:05.000000000Z07:00"

const entryColumns = "id, run_id, source_path, output_path, base_name, channel_count, connected_count, shank_count, shank_pitch, lf_count, sy_count, created_at"

// Record appends a conversion to the ledger and returns it with ID set.
func (s *Store) Record(ctx context.Context, entry Entry) (*Entry, error) {
	if strings.TrimSpace(entry.RunID) == "" {
		return nil, errors.New("record conversion: run id is required")
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	entry.CreatedAt = entry.CreatedAt.UTC()

	res, err := s.execWithRetry(
		ctx,
		`INSERT INTO conversions (
            run_id, source_path, output_path, base_name, channel_count, connected_count,
            shank_count, shank_pitch, lf_count, sy_count, created_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.RunID,
		entry.SourcePath,
		entry.OutputPath,
		entry.BaseName,
		entry.ChannelCount,
		entry.ConnectedCount,
		entry.ShankCount,
		entry.ShankPitch,
		entry.LFCount,
		entry.SYCount,
		entry.CreatedAt.Format(timestampLayout),
	)
	if err != nil {
		return nil, fmt.Errorf("insert conversion: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	entry.ID = id
	return &entry, nil
}

// List returns the most recent conversions, newest first.
func (s *Store) List(ctx context.Context, limit int) ([]Entry, error) {
	ctx = ensureContext(ctx)
	if limit <= 0 {
		limit = DefaultListLimit
	}
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+entryColumns+" FROM conversions ORDER BY created_at DESC, id DESC LIMIT ?", limit)
	if err != nil {
		return nil, fmt.Errorf("query conversions: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate conversions: %w", err)
	}
	return entries, nil
}

// GetByRunID returns the entry recorded for runID, or nil when absent.
func (s *Store) GetByRunID(ctx context.Context, runID string) (*Entry, error) {
	ctx = ensureContext(ctx)
	row := s.db.QueryRowContext(ctx, "SELECT "+entryColumns+" FROM conversions WHERE run_id = ?", runID)
	entry, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return entry, err
}

func scanEntry(scanner interface{ Scan(dest ...any) error }) (*Entry, error) {
	var (
		entry      Entry
		createdRaw string
	)
	if err := scanner.Scan(
		&entry.ID,
		&entry.RunID,
		&entry.SourcePath,
		&entry.OutputPath,
		&entry.BaseName,
		&entry.ChannelCount,
		&entry.ConnectedCount,
		&entry.ShankCount,
		&entry.ShankPitch,
		&entry.LFCount,
		&entry.SYCount,
		&createdRaw,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan conversion: %w", err)
	}
	if ts, err := time.Parse(timestampLayout, createdRaw); err == nil {
		entry.CreatedAt = ts
	}
	return &entry, nil
}
