package history

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite" // SQLite driver
)

// SQLiteStore implements Store using SQLite. It provides durable history
// across CLI invocations and uses a write-ahead log for concurrent reads
// during watch mode.
type SQLiteStore struct {
	db        *sql.DB
	closeOnce sync.Once

	saveStmt *sql.Stmt
	getStmt  *sql.Stmt
}

// SQLiteConfig configures the SQLite store.
type SQLiteConfig struct {
	// Path is the database file path.
	Path string

	// BusyTimeout is how long to wait for locks before failing.
	// Default: 5 seconds.
	BusyTimeout time.Duration
}

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id            TEXT PRIMARY KEY,
	document_name TEXT NOT NULL,
	rules_name    TEXT NOT NULL,
	status        TEXT NOT NULL,
	passed        INTEGER NOT NULL,
	failed        INTEGER NOT NULL,
	skipped       INTEGER NOT NULL,
	report        TEXT NOT NULL,
	created_at    TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at);
CREATE INDEX IF NOT EXISTS idx_runs_status ON runs(status);
`

// NewSQLiteStore opens (creating if necessary) a SQLite history store.
func NewSQLiteStore(cfg SQLiteConfig) (*SQLiteStore, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("sqlite store requires a database path")
	}
	busyTimeout := cfg.BusyTimeout
	if busyTimeout == 0 {
		busyTimeout = 5 * time.Second
	}

	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(%d)&_pragma=journal_mode(WAL)",
		cfg.Path, busyTimeout.Milliseconds())
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize history schema: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.prepare(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) prepare() error {
	var err error
	s.saveStmt, err = s.db.Prepare(`
		INSERT INTO runs (id, document_name, rules_name, status, passed, failed, skipped, report, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare save statement: %w", err)
	}
	s.getStmt, err = s.db.Prepare(`
		SELECT id, document_name, rules_name, status, passed, failed, skipped, report, created_at
		FROM runs WHERE id = ?`)
	if err != nil {
		return fmt.Errorf("failed to prepare get statement: %w", err)
	}
	return nil
}

// Save appends a run record.
func (s *SQLiteStore) Save(ctx context.Context, record *RunRecord) error {
	_, err := s.saveStmt.ExecContext(ctx,
		record.ID,
		record.DocumentName,
		record.RulesName,
		record.Status,
		record.Passed,
		record.Failed,
		record.Skipped,
		record.Report,
		record.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to save run %s: %w", record.ID, err)
	}
	return nil
}

// Get retrieves a run by ID, or nil when absent.
func (s *SQLiteStore) Get(ctx context.Context, id string) (*RunRecord, error) {
	record, err := scanRun(s.getStmt.QueryRowContext(ctx, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load run %s: %w", id, err)
	}
	return record, nil
}

// Query returns matching runs, newest first.
func (s *SQLiteStore) Query(ctx context.Context, q *Query) ([]*RunRecord, error) {
	var (
		conditions []string
		args       []interface{}
	)
	if q != nil {
		if q.Status != "" {
			conditions = append(conditions, "status = ?")
			args = append(args, q.Status)
		}
		if q.DocumentName != "" {
			conditions = append(conditions, "document_name = ?")
			args = append(args, q.DocumentName)
		}
		if q.Since != nil {
			conditions = append(conditions, "created_at >= ?")
			args = append(args, q.Since.UTC())
		}
		if q.Until != nil {
			conditions = append(conditions, "created_at <= ?")
			args = append(args, q.Until.UTC())
		}
	}

	query := `SELECT id, document_name, rules_name, status, passed, failed, skipped, report, created_at FROM runs`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY created_at DESC"
	if q != nil && q.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", q.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var records []*RunRecord
	for rows.Next() {
		record, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

// Prune removes runs created before the cutoff.
func (s *SQLiteStore) Prune(ctx context.Context, olderThan time.Time) (int, error) {
	result, err := s.db.ExecContext(ctx, "DELETE FROM runs WHERE created_at < ?", olderThan.UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to prune runs: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(affected), nil
}

// Close releases the database handle.
func (s *SQLiteStore) Close() error {
	var err error
	s.closeOnce.Do(func() {
		if s.saveStmt != nil {
			s.saveStmt.Close()
		}
		if s.getStmt != nil {
			s.getStmt.Close()
		}
		err = s.db.Close()
	})
	return err
}

// scanner abstracts *sql.Row and *sql.Rows for scanRun.
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRun(row scanner) (*RunRecord, error) {
	var record RunRecord
	err := row.Scan(
		&record.ID,
		&record.DocumentName,
		&record.RulesName,
		&record.Status,
		&record.Passed,
		&record.Failed,
		&record.Skipped,
		&record.Report,
		&record.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	record.CreatedAt = record.CreatedAt.UTC()
	return &record, nil
}
