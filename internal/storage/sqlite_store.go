package storage

import (
	"database/sql"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/julianstephens/habitual/internal/migration"
	"github.com/julianstephens/habitual/internal/models"
	"github.com/julianstephens/habitual/migrations"
	_ "modernc.org/sqlite"
)

// SQLiteStore keeps the snapshot in a habits table and a completions table.
// Save rewrites both tables inside a single transaction.
type SQLiteStore struct {
	path string
	db   *sql.DB
}

func NewSQLiteStore(path string) *SQLiteStore {
	return &SQLiteStore{
		path: path,
	}
}

func (s *SQLiteStore) Init() error {
	if _, err := os.Stat(s.path); err == nil {
		return fmt.Errorf("storage already initialized at %s", s.path)
	}
	return s.open()
}

// Load reads both tables. A missing database file yields an empty snapshot
// and the file is created on the first Save.
func (s *SQLiteStore) Load() (Snapshot, error) {
	if s.db == nil {
		if _, err := os.Stat(s.path); os.IsNotExist(err) {
			return NewSnapshot(), nil
		}
		if err := s.open(); err != nil {
			return Snapshot{}, err
		}
	}

	snapshot := NewSnapshot()

	rows, err := s.db.Query(`SELECT id, owner_email, name, frequency, created_at FROM habits ORDER BY position`)
	if err != nil {
		return Snapshot{}, fmt.Errorf("failed to query habits: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var h models.Habit
		var frequency, createdAt string
		if err := rows.Scan(&h.ID, &h.OwnerEmail, &h.Name, &frequency, &createdAt); err != nil {
			return Snapshot{}, fmt.Errorf("failed to scan habit: %w", err)
		}
		h.Frequency = models.Frequency(frequency)
		h.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt)
		if err != nil {
			return Snapshot{}, fmt.Errorf("habit %s has invalid created_at %q: %w", h.ID, createdAt, err)
		}
		snapshot.Habits = append(snapshot.Habits, h)
	}
	if err := rows.Err(); err != nil {
		return Snapshot{}, err
	}

	crows, err := s.db.Query(`SELECT habit_id, iso_date, owner_email FROM completions ORDER BY habit_id, iso_date`)
	if err != nil {
		return Snapshot{}, fmt.Errorf("failed to query completions: %w", err)
	}
	defer crows.Close()

	for crows.Next() {
		var r models.CompletionRecord
		if err := crows.Scan(&r.HabitID, &r.Day, &r.OwnerEmail); err != nil {
			return Snapshot{}, fmt.Errorf("failed to scan completion: %w", err)
		}
		snapshot.Completions = append(snapshot.Completions, r)
	}
	if err := crows.Err(); err != nil {
		return Snapshot{}, err
	}

	return snapshot, nil
}

func (s *SQLiteStore) Save(snapshot Snapshot) error {
	if s.db == nil {
		if err := s.open(); err != nil {
			return err
		}
	}

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM completions"); err != nil {
		return fmt.Errorf("failed to clear completions: %w", err)
	}
	if _, err := tx.Exec("DELETE FROM habits"); err != nil {
		return fmt.Errorf("failed to clear habits: %w", err)
	}

	habitStmt, err := tx.Prepare(`INSERT INTO habits (id, owner_email, name, frequency, created_at, position) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer habitStmt.Close()

	for i, h := range snapshot.Habits {
		if _, err := habitStmt.Exec(h.ID, h.OwnerEmail, h.Name, string(h.Frequency), h.CreatedAt.UTC().Format(time.RFC3339Nano), i); err != nil {
			return fmt.Errorf("failed to insert habit %s: %w", h.ID, err)
		}
	}

	completionStmt, err := tx.Prepare(`INSERT INTO completions (habit_id, iso_date, owner_email) VALUES (?, ?, ?)`)
	if err != nil {
		return err
	}
	defer completionStmt.Close()

	for _, r := range snapshot.Completions {
		if _, err := completionStmt.Exec(r.HabitID, r.Day, r.OwnerEmail); err != nil {
			return fmt.Errorf("failed to insert completion %s/%s: %w", r.HabitID, r.Day, err)
		}
	}

	return tx.Commit()
}

func (s *SQLiteStore) Close() error {
	if s.db != nil {
		err := s.db.Close()
		s.db = nil
		return err
	}
	return nil
}

func (s *SQLiteStore) GetConfigPath() string {
	return s.path
}

// GetDB returns the open database handle, or nil before Load/Init/Save
func (s *SQLiteStore) GetDB() *sql.DB {
	return s.db
}

// SchemaVersion returns the migration version recorded in the database
func (s *SQLiteStore) SchemaVersion() (int, error) {
	runner, err := s.MigrationRunner()
	if err != nil {
		return 0, err
	}
	return runner.GetCurrentVersion()
}

// MigrationRunner returns a runner over the embedded migrations bound to the
// open database.
func (s *SQLiteStore) MigrationRunner() (*migration.Runner, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not open")
	}
	return newRunner(s.db)
}

func (s *SQLiteStore) open() error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	db, err := sql.Open("sqlite", s.path+"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := s.runMigrations(db); err != nil {
		db.Close()
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	s.db = db
	return nil
}

func (s *SQLiteStore) runMigrations(db *sql.DB) error {
	runner, err := newRunner(db)
	if err != nil {
		return err
	}
	if err := runner.ValidateVersion(); err != nil {
		return err
	}
	_, err = runner.ApplyMigrations()
	return err
}

func newRunner(db *sql.DB) (*migration.Runner, error) {
	sub, err := fs.Sub(migrations.FS, migrations.SQLiteDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load embedded migrations: %w", err)
	}
	return migration.NewRunner(db, sub), nil
}
