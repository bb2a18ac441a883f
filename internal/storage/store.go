package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// ErrNoEncryptionKey is returned by credential operations when the store
// was opened without a key.
var ErrNoEncryptionKey = errors.New("encryption key not configured")

// SQLiteStore persists analysis runs, their suggestions, the seen-product
// ledger and the encrypted API credentials.
type SQLiteStore struct {
	db            *sql.DB
	encryptionKey []byte
	mu            sync.RWMutex
}

// NewSQLiteStore opens (creating if needed) the SQLite database at dbPath.
// encryptionKey guards the stored API token and may be nil, in which case
// credential operations fail with ErrNoEncryptionKey.
func NewSQLiteStore(dbPath string, encryptionKey []byte) (*SQLiteStore, error) {
	// Configure SQLite with WAL mode and busy timeout for better concurrency
	dsn := fmt.Sprintf("%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", dbPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Set file permissions (only works on creation)
	if err := os.Chmod(dbPath, 0600); err != nil && !os.IsNotExist(err) {
		// Ignore error if file doesn't exist yet
	}

	store := &SQLiteStore{
		db:            db,
		encryptionKey: encryptionKey,
	}

	if err := store.init(); err != nil {
		db.Close()
		return nil, err
	}

	return store, nil
}

func (s *SQLiteStore) init() error {
	runsQuery := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		started_at DATETIME NOT NULL,
		finished_at DATETIME,
		status TEXT NOT NULL,
		source TEXT NOT NULL,
		total_products INTEGER NOT NULL DEFAULT 0,
		analyzed INTEGER NOT NULL DEFAULT 0,
		matched INTEGER NOT NULL DEFAULT 0,
		high_confidence INTEGER NOT NULL DEFAULT 0,
		already_correct INTEGER NOT NULL DEFAULT 0
	);
	`
	_, err := s.db.Exec(runsQuery)
	if err != nil {
		return fmt.Errorf("failed to create runs table: %w", err)
	}

	suggestionsQuery := `
	CREATE TABLE IF NOT EXISTS suggestions (
		run_id TEXT NOT NULL,
		sku TEXT NOT NULL,
		titulo TEXT NOT NULL,
		current_category TEXT NOT NULL DEFAULT '',
		suggested_slug TEXT NOT NULL DEFAULT '',
		suggested_path TEXT NOT NULL DEFAULT '',
		confidence INTEGER NOT NULL DEFAULT 0,
		matched_keywords TEXT NOT NULL DEFAULT 'null',
		already_correct INTEGER NOT NULL DEFAULT 0,
		selected INTEGER NOT NULL DEFAULT 0,
		applied INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (run_id, sku),
		FOREIGN KEY (run_id) REFERENCES runs(id) ON DELETE CASCADE
	);
	`
	_, err = s.db.Exec(suggestionsQuery)
	if err != nil {
		return fmt.Errorf("failed to create suggestions table: %w", err)
	}

	seenQuery := `
	CREATE TABLE IF NOT EXISTS seen_products (
		sku TEXT PRIMARY KEY,
		seen_at DATETIME NOT NULL
	);
	`
	_, err = s.db.Exec(seenQuery)
	if err != nil {
		return fmt.Errorf("failed to create seen_products table: %w", err)
	}

	credentialsQuery := `
	CREATE TABLE IF NOT EXISTS credentials (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		base_url TEXT NOT NULL DEFAULT '',
		encrypted_token TEXT NOT NULL,
		updated_at DATETIME NOT NULL
	);
	`
	_, err = s.db.Exec(credentialsQuery)
	if err != nil {
		return fmt.Errorf("failed to create credentials table: %w", err)
	}

	// Enable foreign keys for cascade delete
	_, err = s.db.Exec("PRAGMA foreign_keys = ON")
	if err != nil {
		return fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// SaveCredentials stores the catalog base URL and API token, replacing any
// previous pair. The token is encrypted, the URL is not.
func (s *SQLiteStore) SaveCredentials(baseURL, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.encryptionKey) == 0 {
		return ErrNoEncryptionKey
	}

	encrypted, err := Encrypt([]byte(token), s.encryptionKey)
	if err != nil {
		return fmt.Errorf("failed to encrypt token: %w", err)
	}

	_, err = s.db.Exec(`
		INSERT INTO credentials (id, base_url, encrypted_token, updated_at)
		VALUES (1, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			base_url = excluded.base_url,
			encrypted_token = excluded.encrypted_token,
			updated_at = excluded.updated_at
	`, baseURL, encrypted, time.Now())

	if err != nil {
		return fmt.Errorf("failed to save credentials: %w", err)
	}

	return nil
}

// LoadCredentials returns the stored base URL and catalog API token, or
// empty strings when nothing has been saved yet.
func (s *SQLiteStore) LoadCredentials() (string, string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.encryptionKey) == 0 {
		return "", "", ErrNoEncryptionKey
	}

	var baseURL, encrypted string
	err := s.db.QueryRow("SELECT base_url, encrypted_token FROM credentials WHERE id = 1").Scan(&baseURL, &encrypted)
	if err == sql.ErrNoRows {
		return "", "", nil
	}
	if err != nil {
		return "", "", fmt.Errorf("failed to query credentials: %w", err)
	}

	token, err := Decrypt(encrypted, s.encryptionKey)
	if err != nil {
		return "", "", fmt.Errorf("failed to decrypt token: %w", err)
	}

	return baseURL, string(token), nil
}

// DeleteCredentials removes the stored token.
func (s *SQLiteStore) DeleteCredentials() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec("DELETE FROM credentials WHERE id = 1")
	if err != nil {
		return fmt.Errorf("failed to delete credentials: %w", err)
	}

	return nil
}
