// Package sqlitelib stores named project snapshots in a single sqlite
// library file. Snapshots are kept as zstd-compressed canonical JSON
// blobs; the database is an archive, not a queryable model.
package sqlitelib

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/klauspost/compress/zstd"
	_ "github.com/mattn/go-sqlite3"

	"trackport/internal/domain"
)

const schema = `
CREATE TABLE IF NOT EXISTS projects (
    uuid       TEXT PRIMARY KEY,
    name       TEXT NOT NULL UNIQUE,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL,
    snapshot   BLOB NOT NULL
);
`

// Entry describes one stored project.
type Entry struct {
	UUID      string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Library is an open project library.
type Library struct {
	db   *sql.DB
	path string
}

// Open opens or creates a library at path.
func Open(path string) (*Library, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create library directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open library: %w", err)
	}

	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return &Library{db: db, path: path}, nil
}

// Close closes the underlying database.
func (l *Library) Close() error {
	return l.db.Close()
}

// Path returns the library file path.
func (l *Library) Path() string {
	return l.path
}

// Save stores a snapshot under name, replacing any previous snapshot
// with that name.
func (l *Library) Save(name string, snap *domain.Snapshot) error {
	if name == "" {
		return fmt.Errorf("project name is required")
	}
	blob, err := compressSnapshot(snap)
	if err != nil {
		return err
	}
	now := time.Now().UTC().Format(time.RFC3339)
	_, err = l.db.Exec(`
		INSERT INTO projects (uuid, name, created_at, updated_at, snapshot)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			updated_at = excluded.updated_at,
			snapshot   = excluded.snapshot
	`, uuid.NewString(), name, now, now, blob)
	if err != nil {
		return fmt.Errorf("failed to save project %q: %w", name, err)
	}
	return nil
}

// Load retrieves the snapshot stored under name.
func (l *Library) Load(name string) (*domain.Snapshot, error) {
	var blob []byte
	err := l.db.QueryRow(`SELECT snapshot FROM projects WHERE name = ?`, name).Scan(&blob)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("project %q not found in %s", name, l.path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load project %q: %w", name, err)
	}
	return decompressSnapshot(blob)
}

// List returns all stored projects ordered by name.
func (l *Library) List() ([]Entry, error) {
	rows, err := l.db.Query(`SELECT uuid, name, created_at, updated_at FROM projects ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var created, updated string
		if err := rows.Scan(&e.UUID, &e.Name, &created, &updated); err != nil {
			return nil, fmt.Errorf("failed to scan project row: %w", err)
		}
		e.CreatedAt, _ = time.Parse(time.RFC3339, created)
		e.UpdatedAt, _ = time.Parse(time.RFC3339, updated)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Delete removes the project stored under name.
func (l *Library) Delete(name string) error {
	res, err := l.db.Exec(`DELETE FROM projects WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("failed to delete project %q: %w", name, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("project %q not found in %s", name, l.path)
	}
	return nil
}

func compressSnapshot(snap *domain.Snapshot) ([]byte, error) {
	raw, err := json.Marshal(snap)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create compressor: %w", err)
	}
	defer enc.Close()
	return enc.EncodeAll(raw, nil), nil
}

func decompressSnapshot(blob []byte) (*domain.Snapshot, error) {
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create decompressor: %w", err)
	}
	defer dec.Close()
	raw, err := dec.DecodeAll(blob, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to decompress snapshot: %w", err)
	}
	var snap domain.Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, fmt.Errorf("failed to unmarshal snapshot: %w", err)
	}
	return &snap, nil
}
