// Package store persists application settings and account records in a
// single SQLite database. It owns account folder assignment at creation time
// but never moves the live redirection; that belongs to the switch engine.
package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	_ "modernc.org/sqlite"
)

// Encryptor seals a plaintext password for storage.
type Encryptor interface {
	Encrypt(plain string) ([]byte, error)
}

// Store wraps the application database.
type Store struct {
	db      *sql.DB
	fs      afero.Fs
	enc     Encryptor
	logger  zerolog.Logger
	nowFunc func() time.Time
}

// Open opens (creating if needed) the database at path, applies the schema
// and migrations, and fills unset path settings with platform defaults.
func Open(path string, fsys afero.Fs, enc Encryptor, logger zerolog.Logger) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database %s: %w", path, err)
	}

	if err := configure(db); err != nil {
		db.Close()
		return nil, err
	}

	s := &Store{db: db, fs: fsys, enc: enc, logger: logger, nowFunc: time.Now}
	if err := s.init(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// SetNow overrides the clock, for tests.
func (s *Store) SetNow(now func() time.Time) {
	if now == nil {
		s.nowFunc = time.Now
		return
	}
	s.nowFunc = now
}

func configure(db *sql.DB) error {
	if _, err := db.Exec(`PRAGMA busy_timeout=5000;`); err != nil {
		return fmt.Errorf("set busy timeout: %w", err)
	}
	if _, err := db.Exec(`PRAGMA journal_mode=WAL;`); err != nil {
		return fmt.Errorf("set journal mode: %w", err)
	}
	if _, err := db.Exec(`PRAGMA foreign_keys=ON;`); err != nil {
		return fmt.Errorf("enable foreign keys: %w", err)
	}
	return nil
}

func (s *Store) init() error {
	if _, err := s.db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("initialize schema: %w", err)
	}
	s.migrate()
	if err := s.fillDefaultPaths(); err != nil {
		return err
	}
	return nil
}

// migrate applies tolerant column migrations for databases created by older
// releases. Each statement fails harmlessly when the column already has the
// new shape.
func (s *Store) migrate() {
	for _, stmt := range []string{
		`ALTER TABLE accounts ADD COLUMN data_folder TEXT`,
		`ALTER TABLE accounts RENAME COLUMN email TO username`,
		`ALTER TABLE settings RENAME COLUMN client_path TO client_service_path`,
		`ALTER TABLE settings ADD COLUMN client_data_path TEXT`,
		`ALTER TABLE settings ADD COLUMN launched INTEGER NOT NULL DEFAULT 0`,
	} {
		if _, err := s.db.Exec(stmt); err != nil {
			s.logger.Trace().Err(err).Str("stmt", stmt).Msg("migration statement skipped")
		}
	}
}
