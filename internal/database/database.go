// Package database provides SQLite persistence for the analysis
// history and application settings
package database

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/manmohanbh/tubestream-pwa-v2/pkg/models"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a record is absent from the history
var ErrNotFound = errors.New("record not found")

// HistoryCap bounds the analysis history; older entries are evicted
const HistoryCap = 10

// Well-known settings keys
const (
	SettingBackendURL = "backend_url"
)

// DB wraps the SQLite database connection
type DB struct {
	conn *sql.DB
}

// New creates a new database connection and initializes the schema
func New(dbPath string) (*DB, error) {
	// Add connection parameters to help with concurrent access
	connString := dbPath
	if dbPath != ":memory:" {
		connString = dbPath + "?_busy_timeout=30000&_journal_mode=WAL&_synchronous=NORMAL"
	}

	conn, err := sql.Open("sqlite", connString)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite doesn't handle concurrent writes well
	conn.SetMaxOpenConns(1)
	conn.SetMaxIdleConns(1)

	db := &DB{conn: conn}

	if err := db.initSchema(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return db, nil
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.conn.Close()
}

// initSchema creates the necessary tables
func (db *DB) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS history (
		video_id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		thumbnail TEXT NOT NULL,
		duration TEXT NOT NULL,
		author TEXT NOT NULL,
		type TEXT NOT NULL,
		formats TEXT NOT NULL,
		sources TEXT,
		resolved_at DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_history_resolved_at ON history(resolved_at DESC);

	CREATE TABLE IF NOT EXISTS settings (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);
	`

	_, err := db.conn.Exec(schema)
	return err
}

// SaveRecord prepends a resolved record to the history. A record whose
// id already exists moves to the front without duplicating; entries
// beyond HistoryCap are evicted.
func (db *DB) SaveRecord(record *models.VideoRecord) error {
	formats, err := json.Marshal(record.Formats)
	if err != nil {
		return fmt.Errorf("failed to encode formats: %w", err)
	}

	var sources []byte
	if len(record.Sources) > 0 {
		sources, err = json.Marshal(record.Sources)
		if err != nil {
			return fmt.Errorf("failed to encode sources: %w", err)
		}
	}

	resolvedAt := record.ResolvedAt
	if resolvedAt.IsZero() {
		resolvedAt = time.Now()
	}

	query := `
	INSERT INTO history (video_id, title, thumbnail, duration, author, type, formats, sources, resolved_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(video_id) DO UPDATE SET
		title = excluded.title,
		thumbnail = excluded.thumbnail,
		duration = excluded.duration,
		author = excluded.author,
		type = excluded.type,
		formats = excluded.formats,
		sources = excluded.sources,
		resolved_at = excluded.resolved_at
	`

	if _, err := db.conn.Exec(query,
		record.ID, record.Title, record.Thumbnail, record.Duration,
		record.Author, record.Type, string(formats), nullableString(sources),
		resolvedAt,
	); err != nil {
		return fmt.Errorf("failed to save record: %w", err)
	}

	return db.trimHistory()
}

// trimHistory evicts entries beyond the history cap, oldest first
func (db *DB) trimHistory() error {
	query := `
	DELETE FROM history WHERE video_id NOT IN (
		SELECT video_id FROM history ORDER BY resolved_at DESC, video_id LIMIT ?
	)
	`
	if _, err := db.conn.Exec(query, HistoryCap); err != nil {
		return fmt.Errorf("failed to trim history: %w", err)
	}
	return nil
}

// GetRecord retrieves a history entry by video id
func (db *DB) GetRecord(videoID string) (*models.VideoRecord, error) {
	query := `
	SELECT video_id, title, thumbnail, duration, author, type, formats, sources, resolved_at
	FROM history WHERE video_id = ?
	`

	record, err := scanRecord(db.conn.QueryRow(query, videoID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get record: %w", err)
	}
	return record, nil
}

// ListHistory returns the history, most recent first
func (db *DB) ListHistory() ([]*models.VideoRecord, error) {
	query := `
	SELECT video_id, title, thumbnail, duration, author, type, formats, sources, resolved_at
	FROM history
	ORDER BY resolved_at DESC, video_id
	LIMIT ?
	`

	rows, err := db.conn.Query(query, HistoryCap)
	if err != nil {
		return nil, fmt.Errorf("failed to list history: %w", err)
	}
	defer rows.Close()

	var records []*models.VideoRecord
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		records = append(records, record)
	}

	return records, rows.Err()
}

// ClearHistory removes every history entry
func (db *DB) ClearHistory() error {
	if _, err := db.conn.Exec(`DELETE FROM history`); err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}
	return nil
}

// GetSetting returns the stored value for a key, or empty string when unset
func (db *DB) GetSetting(key string) (string, error) {
	var value string
	err := db.conn.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", nil
		}
		return "", fmt.Errorf("failed to get setting: %w", err)
	}
	return value, nil
}

// SetSetting stores a settings value, replacing any previous one
func (db *DB) SetSetting(key, value string) error {
	query := `
	INSERT INTO settings (key, value) VALUES (?, ?)
	ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`
	if _, err := db.conn.Exec(query, key, value); err != nil {
		return fmt.Errorf("failed to set setting: %w", err)
	}
	return nil
}

type scannable interface {
	Scan(dest ...any) error
}

func scanRecord(row scannable) (*models.VideoRecord, error) {
	var record models.VideoRecord
	var formats string
	var sources sql.NullString

	if err := row.Scan(
		&record.ID, &record.Title, &record.Thumbnail, &record.Duration,
		&record.Author, &record.Type, &formats, &sources, &record.ResolvedAt,
	); err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(formats), &record.Formats); err != nil {
		return nil, fmt.Errorf("failed to decode formats: %w", err)
	}
	if sources.Valid && sources.String != "" {
		if err := json.Unmarshal([]byte(sources.String), &record.Sources); err != nil {
			return nil, fmt.Errorf("failed to decode sources: %w", err)
		}
	}

	return &record, nil
}

func nullableString(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return string(b)
}
