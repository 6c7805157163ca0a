// Package store persists recordings in SQLite.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"
	"github.com/xiaot623/autopilot/internal/domain"
)

// Store is the recording persistence interface.
type Store interface {
	SaveRecording(ctx context.Context, rec *domain.Recording) error
	GetRecording(ctx context.Context, recordingID string) (*domain.Recording, error)
	GetRecordingByName(ctx context.Context, name string) (*domain.Recording, error)
	ListRecordings(ctx context.Context) ([]domain.RecordingSummary, error)
	DeleteRecording(ctx context.Context, recordingID string) (bool, error)
	Close() error
}

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite store.
func NewSQLiteStore(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// For in-memory SQLite, multiple connections create separate databases.
	// Keep a single connection to avoid schema/data disappearing across goroutines.
	if dsn == ":memory:" || strings.Contains(dsn, "mode=memory") {
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	}

	store := &SQLiteStore{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// migrate runs database migrations.
func (s *SQLiteStore) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS recordings (
			recording_id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			map_name TEXT,
			document TEXT NOT NULL,
			action_count INTEGER NOT NULL DEFAULT 0,
			duration REAL NOT NULL DEFAULT 0,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_recordings_name ON recordings(name, created_at)`,
	}

	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w\n%s", err, m)
		}
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// SaveRecording creates or replaces a recording.
func (s *SQLiteStore) SaveRecording(ctx context.Context, rec *domain.Recording) error {
	if rec.RecordingID == "" {
		return fmt.Errorf("recording id is required")
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO recordings (recording_id, name, map_name, document, action_count, duration, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.RecordingID, rec.Name, nullString(rec.MapName), string(rec.Document), rec.ActionCount, rec.Duration, rec.CreatedAt)
	return err
}

// GetRecording retrieves a recording by ID.
func (s *SQLiteStore) GetRecording(ctx context.Context, recordingID string) (*domain.Recording, error) {
	return s.getRecording(ctx,
		`SELECT recording_id, name, map_name, document, action_count, duration, created_at FROM recordings WHERE recording_id = ?`,
		recordingID)
}

// GetRecordingByName retrieves the most recent recording with the given name.
func (s *SQLiteStore) GetRecordingByName(ctx context.Context, name string) (*domain.Recording, error) {
	return s.getRecording(ctx,
		`SELECT recording_id, name, map_name, document, action_count, duration, created_at
		 FROM recordings WHERE name = ? ORDER BY created_at DESC LIMIT 1`,
		name)
}

func (s *SQLiteStore) getRecording(ctx context.Context, query string, arg interface{}) (*domain.Recording, error) {
	var rec domain.Recording
	var mapName sql.NullString
	var document string
	err := s.db.QueryRowContext(ctx, query, arg).
		Scan(&rec.RecordingID, &rec.Name, &mapName, &document, &rec.ActionCount, &rec.Duration, &rec.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if mapName.Valid {
		rec.MapName = mapName.String
	}
	rec.Document = []byte(document)
	return &rec, nil
}

// ListRecordings lists all recordings without their documents, newest first.
func (s *SQLiteStore) ListRecordings(ctx context.Context) ([]domain.RecordingSummary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT recording_id, name, map_name, action_count, duration, created_at FROM recordings ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.RecordingSummary
	for rows.Next() {
		var sum domain.RecordingSummary
		var mapName sql.NullString
		if err := rows.Scan(&sum.RecordingID, &sum.Name, &mapName, &sum.ActionCount, &sum.Duration, &sum.CreatedAt); err != nil {
			return nil, err
		}
		if mapName.Valid {
			sum.MapName = mapName.String
		}
		out = append(out, sum)
	}
	return out, rows.Err()
}

// DeleteRecording removes a recording by ID, reporting whether a row existed.
func (s *SQLiteStore) DeleteRecording(ctx context.Context, recordingID string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM recordings WHERE recording_id = ?`, recordingID)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
