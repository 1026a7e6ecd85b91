package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Entry describes one published fixture.
type Entry struct {
	ID              string
	OutputPath      string
	SHA256          string
	SizeBytes       int64
	DurationSeconds float64
	FPS             int
	FrameCount      int
	SampleRate      int
	ToneCount       int
	ConfigDigest    string
	CreatedAt       time.Time
}

// timeLayout has fixed-width fractions so created_at sorts lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

const entryColumns = `id, output_path, sha256, size_bytes, duration_seconds, fps,
	frame_count, sample_rate, tone_count, config_digest, created_at`

// Record inserts entry, assigning an ID and timestamp when missing.
func (s *Store) Record(ctx context.Context, entry Entry) (Entry, error) {
	ctx = ensureContext(ctx)
	if strings.TrimSpace(entry.OutputPath) == "" {
		return Entry{}, errors.New("catalog record: output path is required")
	}
	if strings.TrimSpace(entry.SHA256) == "" {
		return Entry{}, errors.New("catalog record: sha256 is required")
	}
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	entry.CreatedAt = entry.CreatedAt.UTC()

	err := retryOnBusy(ctx, func() error {
		_, err := s.db.ExecContext(ctx,
			`INSERT INTO fixtures (`+entryColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			entry.ID,
			entry.OutputPath,
			entry.SHA256,
			entry.SizeBytes,
			entry.DurationSeconds,
			entry.FPS,
			entry.FrameCount,
			entry.SampleRate,
			entry.ToneCount,
			entry.ConfigDigest,
			entry.CreatedAt.Format(timeLayout),
		)
		return err
	})
	if err != nil {
		return Entry{}, fmt.Errorf("catalog record: %w", err)
	}
	return entry, nil
}

// List returns up to limit entries, newest first. A non-positive limit
// returns every entry.
func (s *Store) List(ctx context.Context, limit int) ([]Entry, error) {
	ctx = ensureContext(ctx)
	query := `SELECT ` + entryColumns + ` FROM fixtures ORDER BY created_at DESC, rowid DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("catalog list: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("catalog list: %w", err)
	}
	return entries, nil
}

// LatestForOutput returns the newest entry for path, or nil when the path
// was never recorded.
func (s *Store) LatestForOutput(ctx context.Context, path string) (*Entry, error) {
	ctx = ensureContext(ctx)
	row := s.db.QueryRowContext(ctx,
		`SELECT `+entryColumns+` FROM fixtures WHERE output_path = ? ORDER BY created_at DESC, rowid DESC LIMIT 1`,
		path,
	)
	entry, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(row scanner) (Entry, error) {
	var (
		entry   Entry
		created string
	)
	err := row.Scan(
		&entry.ID,
		&entry.OutputPath,
		&entry.SHA256,
		&entry.SizeBytes,
		&entry.DurationSeconds,
		&entry.FPS,
		&entry.FrameCount,
		&entry.SampleRate,
		&entry.ToneCount,
		&entry.ConfigDigest,
		&created,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Entry{}, err
		}
		return Entry{}, fmt.Errorf("scan catalog entry: %w", err)
	}
	entry.CreatedAt, err = time.Parse(timeLayout, created)
	if err != nil {
		return Entry{}, fmt.Errorf("parse created_at %q: %w", created, err)
	}
	return entry, nil
}
