package timerlib

import (
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"
)

// SQLiteBlobStore keeps blobs in a single key-value table.
type SQLiteBlobStore struct {
	db *sql.DB
}

// OpenSQLiteBlobStore opens (or creates) the database at path.
func OpenSQLiteBlobStore(path string) (*SQLiteBlobStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite store: %w", err)
	}
	// a single connection serialises writers; the store is written from one goroutine anyway
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS kv (
		key   TEXT PRIMARY KEY,
		value BLOB NOT NULL
	)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create kv table: %w", err)
	}
	return &SQLiteBlobStore{db: db}, nil
}

func (b *SQLiteBlobStore) Get(key string) ([]byte, error) {
	var data []byte
	err := b.db.QueryRow(`SELECT value FROM kv WHERE key = ?`, key).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBlobNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", key, err)
	}
	return data, nil
}

func (b *SQLiteBlobStore) Put(key string, data []byte) error {
	_, err := b.db.Exec(`INSERT INTO kv (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, data)
	if err != nil {
		return fmt.Errorf("upsert %s: %w", key, err)
	}
	return nil
}

// Close closes the database.
func (b *SQLiteBlobStore) Close() error {
	return b.db.Close()
}

var _ BlobStore = (*SQLiteBlobStore)(nil)
