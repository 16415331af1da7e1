// Package store is the transactional persistence abstraction
// described by spec.md §4.1: a narrow set of atomic operations over
// five relational entities (run, node, task_ins, task_res, plus
// migration metadata owned by the migration tool).
//
// All operations that touch more than one row run inside a single
// serialisable (or equivalent isolation) transaction; callers never
// see partial effects of a concurrent pull/insert/delete.
package store

import (
	"context"
	"time"

	"github.com/flwr-dev/superlink/internal/objects"
)

// Store is the narrow transactional interface the Driver and Fleet
// handlers are built on. Every method here corresponds to one of the
// atomic operations in spec.md §4.1.
type Store interface {
	// InsertRun inserts a row into run, failing with ErrConflict on a
	// primary-key collision.
	InsertRun(ctx context.Context, id objects.RunID) error

	// InsertNode inserts a row into node with the given id,
	// online_until and ping_interval, failing with ErrConflict on a
	// duplicate id.
	InsertNode(ctx context.Context, id objects.NodeID, onlineUntil time.Time, pingInterval time.Duration) error

	// DeleteNode deletes the node by id. A missing id is a silent
	// no-op; the caller is expected to log it if useful.
	DeleteNode(ctx context.Context, id objects.NodeID) error

	// UpdatePing updates (online_until, ping_interval) for an existing
	// node keyed by id. Returns true iff exactly one row was updated;
	// it never creates a node.
	UpdatePing(ctx context.Context, id objects.NodeID, onlineUntil time.Time, pingInterval time.Duration) (bool, error)

	// ListNodes returns the ids of every node that is currently alive
	// (online_until >= now) once run exists; nodes are not tied to a
	// particular run. An unknown run yields an empty set, not an error.
	ListNodes(ctx context.Context, run objects.RunID, now time.Time) ([]objects.NodeID, error)

	// InsertTaskInstructions bulk-inserts rows into task_ins. An empty
	// slice is an immediate no-op success. Implementations cap the
	// per-statement parameter fan-out to respect the backend's bind
	// parameter limit; batching above that limit is this method's
	// responsibility, not the caller's.
	InsertTaskInstructions(ctx context.Context, tasks []objects.Task) error

	// PullTaskInstructions is the delivery primitive: it selects up to
	// limit undelivered instructions matching consumer, atomically
	// marks them delivered, and returns the full rows. Each
	// undelivered instruction is returned to at most one caller across
	// any number of concurrent callers.
	PullTaskInstructions(ctx context.Context, consumer objects.NodeRef, limit int, now time.Time) ([]objects.Task, error)

	// InsertTaskResult inserts one row into task_res. Ancestry must be
	// the originating instruction's id; result id uniqueness is
	// enforced with ErrConflict.
	InsertTaskResult(ctx context.Context, task objects.Task) error

	// PullTaskResults selects undelivered results whose ancestry is in
	// instructionIDs, marks them delivered, and returns them. For any
	// instruction id with no delivered result, it synthesizes a
	// "node unavailable" result when the instruction's target node is
	// absent or offline (spec.md §4.1 step 3); synthesized results are
	// not persisted.
	PullTaskResults(ctx context.Context, instructionIDs []string, now time.Time) ([]objects.Task, error)

	// DeleteTasks deletes, within one transaction, every instruction in
	// instructionIDs that has been delivered and has a delivered
	// matching result, together with that result. Instructions without
	// a delivered result are retained. Empty input is a no-op.
	DeleteTasks(ctx context.Context, instructionIDs []string) error

	// Close releases the underlying connection pool.
	Close() error
}
