package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS weight_versions (
	version_id  TEXT PRIMARY KEY,
	name        TEXT NOT NULL,
	seq         INTEGER NOT NULL,
	blob        BLOB NOT NULL,
	hash        TEXT NOT NULL,
	created_at  TEXT NOT NULL,
	UNIQUE (name, seq)
);

CREATE TABLE IF NOT EXISTS active_weights (
	name        TEXT PRIMARY KEY,
	version_id  TEXT NOT NULL,
	FOREIGN KEY (version_id) REFERENCES weight_versions(version_id)
);
`

// SQLiteStore keeps versions in a single sqlite database
type SQLiteStore struct {
	db *sql.DB
}

var _ Store = &SQLiteStore{}

// NewSQLiteStore opens the database and runs migrations
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma fk: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) Put(ctx context.Context, name string, blob []byte) (string, error) {
	if err := validateName(name); err != nil {
		return "", err
	}
	id := uuid.New().String()
	now := time.Now().UTC()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var seq int64
	if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), 0) + 1 FROM weight_versions WHERE name = ?`, name).Scan(&seq); err != nil {
		return "", fmt.Errorf("next seq: %w", err)
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO weight_versions (version_id, name, seq, blob, hash, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		id, name, seq, blob, hashOf(blob), now.Format(time.RFC3339Nano),
	)
	if err != nil {
		return "", fmt.Errorf("insert version: %w", err)
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO active_weights (name, version_id) VALUES (?, ?)
		 ON CONFLICT(name) DO UPDATE SET version_id = excluded.version_id`,
		name, id,
	)
	if err != nil {
		return "", fmt.Errorf("set active: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}
	return id, nil
}

func (s *SQLiteStore) Get(ctx context.Context, name string) ([]byte, error) {
	var blob []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT v.blob FROM active_weights a JOIN weight_versions v ON v.version_id = a.version_id
		 WHERE a.name = ?`, name).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("weights %s: %w", name, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get active: %w", err)
	}
	return blob, nil
}

func (s *SQLiteStore) GetVersion(ctx context.Context, name, version string) ([]byte, error) {
	var blob []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT blob FROM weight_versions WHERE name = ? AND version_id = ?`, name, version).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("weights %s version %s: %w", name, version, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get version: %w", err)
	}
	return blob, nil
}

func (s *SQLiteStore) Versions(ctx context.Context, name string) ([]Version, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT v.version_id, v.hash, length(v.blob), v.created_at, COALESCE(a.version_id = v.version_id, 0)
		 FROM weight_versions v LEFT JOIN active_weights a ON a.name = v.name
		 WHERE v.name = ? ORDER BY v.seq`, name)
	if err != nil {
		return nil, fmt.Errorf("query versions: %w", err)
	}
	defer rows.Close()

	versions := make([]Version, 0)
	for rows.Next() {
		var v Version
		var createdAt string
		if err := rows.Scan(&v.ID, &v.Hash, &v.Size, &createdAt, &v.Active); err != nil {
			return nil, fmt.Errorf("scan version: %w", err)
		}
		v.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
		versions = append(versions, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate versions: %w", err)
	}
	if len(versions) == 0 {
		return nil, fmt.Errorf("weights %s: %w", name, ErrNotFound)
	}
	return versions, nil
}

// Activate points name at an existing version, a rollback when the version is older
func (s *SQLiteStore) Activate(ctx context.Context, name, version string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var exists int
	err = tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM weight_versions WHERE name = ? AND version_id = ?`, name, version).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check version: %w", err)
	}
	if exists == 0 {
		return fmt.Errorf("weights %s version %s: %w", name, version, ErrNotFound)
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO active_weights (name, version_id) VALUES (?, ?)
		 ON CONFLICT(name) DO UPDATE SET version_id = excluded.version_id`,
		name, version,
	)
	if err != nil {
		return fmt.Errorf("set active: %w", err)
	}
	return tx.Commit()
}
