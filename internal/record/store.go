package record

import (
	"database/sql"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/ibeckermayer/reelscribe/internal/types"
)

// Store is the SQLite run index. It remembers which reels have already been
// extracted so reruns can skip them without re-downloading, and keeps a
// queryable history across batches.
type Store struct {
	db *sql.DB
}

// NewStore creates a Store with SQLite backend
func NewStore(dbPath string) (*Store, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS records (
		reel_id TEXT PRIMARY KEY,
		original_url TEXT NOT NULL,
		final_url TEXT,
		extracted_at TEXT NOT NULL,
		has_error BOOLEAN NOT NULL DEFAULT 0,
		error TEXT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_records_extracted_at ON records(extracted_at);
	CREATE INDEX IF NOT EXISTS idx_records_has_error ON records(has_error);
	`

	_, err := s.db.Exec(schema)
	return err
}

// SaveRecord inserts or updates the index entry for a record
func (s *Store) SaveRecord(r *types.ExtractionRecord) error {
	_, err := s.db.Exec(`
		INSERT INTO records (reel_id, original_url, final_url, extracted_at, has_error, error)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(reel_id) DO UPDATE SET
			original_url = excluded.original_url,
			final_url = excluded.final_url,
			extracted_at = excluded.extracted_at,
			has_error = excluded.has_error,
			error = excluded.error
	`, r.ReelID, r.OriginalURL, r.FinalURL, r.Timestamp, r.Error != "", r.Error)

	return err
}

// Has reports whether a reel has already been indexed
func (s *Store) Has(reelID string) (bool, error) {
	var one int
	err := s.db.QueryRow(`SELECT 1 FROM records WHERE reel_id = ?`, reelID).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Count returns how many reels are indexed, optionally only failures
func (s *Store) Count(onlyErrors bool) (int, error) {
	query := `SELECT COUNT(*) FROM records`
	if onlyErrors {
		query += ` WHERE has_error = 1`
	}
	var n int
	err := s.db.QueryRow(query).Scan(&n)
	return n, err
}
