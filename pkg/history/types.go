// Package history records validation runs so past results can be queried
// after the fact.
//
// The check and watch commands append a RunRecord per validation run when
// history is enabled; the history command queries them. Two backends are
// provided: SQLite for persistence across invocations and an in-memory
// store for tests and ephemeral use.
package history

import (
	"context"
	"time"
)

// RunRecord is one recorded validation run.
type RunRecord struct {
	// ID is the report's run ID.
	ID string

	// DocumentName and RulesName identify the inputs.
	DocumentName string
	RulesName    string

	// Status is the overall run status (PASS or FAIL).
	Status string

	// Passed, Failed, and Skipped count rule outcomes.
	Passed  int
	Failed  int
	Skipped int

	// Report is the full serialized report JSON.
	Report string

	// CreatedAt is when the run completed.
	CreatedAt time.Time
}

// Query filters recorded runs. Zero values match everything.
type Query struct {
	// Status filters by overall status when non-empty.
	Status string

	// DocumentName filters by document name when non-empty.
	DocumentName string

	// Since and Until bound CreatedAt when non-nil.
	Since *time.Time
	Until *time.Time

	// Limit caps the number of returned records. Zero means no cap.
	Limit int
}

// Store persists validation runs. Implementations must be safe for
// concurrent use.
type Store interface {
	// Save appends a run record.
	Save(ctx context.Context, record *RunRecord) error

	// Get retrieves a run by ID. Returns nil if no such run exists.
	Get(ctx context.Context, id string) (*RunRecord, error)

	// Query returns runs matching the query, newest first.
	Query(ctx context.Context, q *Query) ([]*RunRecord, error)

	// Prune removes runs created before the cutoff and returns the
	// number removed.
	Prune(ctx context.Context, olderThan time.Time) (int, error)

	// Close releases resources. The store must not be used after Close.
	Close() error
}
