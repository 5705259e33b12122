package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/packworks/packtrack/internal/hunt"
	_ "modernc.org/sqlite"
)

// SQLiteStore persists the document in a SQLite database. Hunts are stored
// one row each with the full hunt JSON, alongside a single meta row carrying
// the pack name and revision. Save replaces the snapshot in one transaction.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the database at the given path.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("%w: open database: %v", ErrStorage, err)
	}

	// Enable WAL mode for better concurrent access.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: set WAL mode: %v", ErrStorage, err)
	}

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: migrate: %v", ErrStorage, err)
	}
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS hunts (
		id        TEXT PRIMARY KEY,
		seq       INTEGER NOT NULL,
		document  TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS meta (
		key       TEXT PRIMARY KEY,
		pack_name TEXT NOT NULL DEFAULT '',
		revision  INTEGER NOT NULL DEFAULT 0
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Load reads the full document. An empty database yields an empty document.
func (s *SQLiteStore) Load() (*Document, error) {
	doc := &Document{}

	row := s.db.QueryRow(`SELECT pack_name, revision FROM meta WHERE key = 'pack'`)
	err := row.Scan(&doc.PackName, &doc.Revision)
	if err == sql.ErrNoRows {
		return doc, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: read meta: %v", ErrStorage, err)
	}

	rows, err := s.db.Query(`SELECT document FROM hunts ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("%w: query hunts: %v", ErrStorage, err)
	}
	defer rows.Close()

	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("%w: scan hunt: %v", ErrStorage, err)
		}
		var h hunt.Hunt
		if err := json.Unmarshal([]byte(data), &h); err != nil {
			return nil, fmt.Errorf("%w: parse hunt: %v", ErrStorage, err)
		}
		doc.Hunts = append(doc.Hunts, &h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate hunts: %v", ErrStorage, err)
	}
	return doc, nil
}

// Save replaces the stored snapshot in a single transaction.
func (s *SQLiteStore) Save(doc *Document) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("%w: begin transaction: %v", ErrStorage, err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM hunts`); err != nil {
		return fmt.Errorf("%w: clear hunts: %v", ErrStorage, err)
	}
	for i, h := range doc.Hunts {
		data, err := json.Marshal(h)
		if err != nil {
			return fmt.Errorf("%w: marshal hunt %s: %v", ErrStorage, h.ID, err)
		}
		if _, err := tx.Exec(
			`INSERT INTO hunts (id, seq, document) VALUES (?, ?, ?)`,
			h.ID, i, string(data),
		); err != nil {
			return fmt.Errorf("%w: insert hunt %s: %v", ErrStorage, h.ID, err)
		}
	}

	if _, err := tx.Exec(
		`INSERT INTO meta (key, pack_name, revision) VALUES ('pack', ?, ?)
		 ON CONFLICT(key) DO UPDATE SET pack_name = excluded.pack_name, revision = excluded.revision`,
		doc.PackName, doc.Revision,
	); err != nil {
		return fmt.Errorf("%w: update meta: %v", ErrStorage, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit: %v", ErrStorage, err)
	}
	return nil
}
