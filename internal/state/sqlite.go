package state

import (
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store on a SQLite database file.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// NewSQLiteStore creates an unopened store.
func NewSQLiteStore() *SQLiteStore {
	return &SQLiteStore{}
}

// Open connects to the database at path. Use ":memory:" for an
// in-memory database.
func (s *SQLiteStore) Open(path string) error {
	dsn := path
	if path != ":memory:" {
		dsn = fmt.Sprintf("%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return fmt.Errorf("failed to open sqlite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return fmt.Errorf("failed to ping sqlite database: %w", err)
	}

	s.db = db
	s.path = path
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func generateID() string {
	return uuid.New().String()
}

// RecordRun inserts a finished run. Missing IDs and timestamps are
// filled in.
func (s *SQLiteStore) RecordRun(run *Run) error {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}

	if run.ID == "" {
		run.ID = generateID()
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now().UTC()
	}
	if run.CompletedAt == nil {
		now := time.Now().UTC()
		run.CompletedAt = &now
	}

	var errMsg *string
	if run.Error != "" {
		errMsg = &run.Error
	}
	// Stored as a decimal string; gas counters exceed the int64 range.
	var gas *string
	if run.GasRemaining != nil {
		g := strconv.FormatUint(*run.GasRemaining, 10)
		gas = &g
	}

	_, err := s.db.Exec(
		`INSERT INTO runs (id, source, status, report, error, gas_remaining, started_at, completed_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Source, run.Status, run.Report, errMsg, gas, run.StartedAt, run.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to record run: %w", err)
	}
	return nil
}

// GetRun retrieves a run by ID.
func (s *SQLiteStore) GetRun(id string) (*Run, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	run := &Run{}
	var errMsg sql.NullString
	var gas sql.NullString
	var completedAt sql.NullTime

	err := s.db.QueryRow(
		`SELECT id, source, status, report, error, gas_remaining, started_at, completed_at
		 FROM runs WHERE id = ?`,
		id,
	).Scan(&run.ID, &run.Source, &run.Status, &run.Report, &errMsg, &gas, &run.StartedAt, &completedAt)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("run not found: %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}

	if errMsg.Valid {
		run.Error = errMsg.String
	}
	if err := setGasRemaining(run, gas); err != nil {
		return nil, err
	}
	if completedAt.Valid {
		run.CompletedAt = &completedAt.Time
	}
	return run, nil
}

func setGasRemaining(run *Run, gas sql.NullString) error {
	if !gas.Valid {
		return nil
	}
	g, err := strconv.ParseUint(gas.String, 10, 64)
	if err != nil {
		return fmt.Errorf("failed to parse stored gas value %q: %w", gas.String, err)
	}
	run.GasRemaining = &g
	return nil
}

// ListRuns retrieves the most recent runs, newest first. A limit of 0
// means no limit.
func (s *SQLiteStore) ListRuns(limit int) ([]*Run, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}
	if limit <= 0 {
		limit = -1
	}

	rows, err := s.db.Query(
		`SELECT id, source, status, report, error, gas_remaining, started_at, completed_at
		 FROM runs ORDER BY started_at DESC, id LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		run := &Run{}
		var errMsg sql.NullString
		var gas sql.NullString
		var completedAt sql.NullTime

		err := rows.Scan(&run.ID, &run.Source, &run.Status, &run.Report, &errMsg, &gas, &run.StartedAt, &completedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}

		if errMsg.Valid {
			run.Error = errMsg.String
		}
		if err := setGasRemaining(run, gas); err != nil {
			return nil, err
		}
		if completedAt.Valid {
			run.CompletedAt = &completedAt.Time
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

var _ Store = (*SQLiteStore)(nil)
