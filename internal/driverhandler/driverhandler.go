// Package driverhandler implements the Driver half of the brokering
// state engine (spec.md §4.2): create-run, list-nodes,
// push-task-instructions and pull-task-results. Handlers are thin
// orchestration over internal/store.Store, following the shape of
// the teacher's GRPCAPI (go/ingest/grpc_api.go): a struct wrapping
// its collaborators with one method per operation.
package driverhandler

import (
	"context"
	"errors"
	"fmt"

	"github.com/flwr-dev/superlink/internal/ids"
	"github.com/flwr-dev/superlink/internal/objects"
	"github.com/flwr-dev/superlink/internal/store"
)

// maxCreateRunAttempts bounds the create-run id-collision retry loop
// (spec.md §4.2: "on rare id collision, retry with a fresh id").
const maxCreateRunAttempts = 8

// Handler implements the Driver brokering operations against a Store.
type Handler struct {
	Store store.Store
	Clock ids.Clock
}

// New returns a Handler backed by s, using the system clock.
func New(s store.Store) *Handler {
	return &Handler{Store: s, Clock: ids.SystemClock{}}
}

// CreateRun generates a non-zero random run id, inserts it, and
// retries on collision.
func (h *Handler) CreateRun(ctx context.Context) (objects.RunID, error) {
	for attempt := 0; attempt < maxCreateRunAttempts; attempt++ {
		raw, err := ids.NewRunOrNodeID()
		if err != nil {
			return 0, fmt.Errorf("generating run id: %w", err)
		}
		runID := objects.RunID(raw)
		err = h.Store.InsertRun(ctx, runID)
		if err == nil {
			return runID, nil
		}
		if errors.Is(err, store.ErrConflict) {
			continue
		}
		return 0, err
	}
	return 0, fmt.Errorf("creating run: exhausted %d id collision retries", maxCreateRunAttempts)
}

// ListNodes delegates to the Store's liveness query. An unknown run
// yields an empty set, not an error.
func (h *Handler) ListNodes(ctx context.Context, run objects.RunID) ([]objects.NodeID, error) {
	return h.Store.ListNodes(ctx, run, h.Clock.Now())
}

// PushTaskIns assigns a fresh id and pushed_at to each instruction in
// request order, bulk-inserts them, and returns the assigned ids in
// the same order.
func (h *Handler) PushTaskIns(ctx context.Context, tasks []objects.Task) ([]string, error) {
	if len(tasks) == 0 {
		return nil, nil
	}

	now := float64(h.Clock.Now().Unix())
	taskIDs := make([]string, len(tasks))
	assigned := make([]objects.Task, len(tasks))
	for i, t := range tasks {
		t.ID = newTaskID()
		t.PushedAt = now
		taskIDs[i] = t.ID
		assigned[i] = t
	}

	if err := h.Store.InsertTaskInstructions(ctx, assigned); err != nil {
		return nil, err
	}
	return taskIDs, nil
}

// PullTaskRes pulls any delivered results (and synthesized
// unavailability results) for the given instruction ids, then purges
// the now-fully-consumed instruction/result pairs. The two Store
// calls are independent transactions (spec.md §4.2): the pull's
// delivered_at stamp is what makes "observed exactly once" durable,
// even if this second call never runs (e.g. a crash in between).
func (h *Handler) PullTaskRes(ctx context.Context, instructionIDs []string) ([]objects.Task, error) {
	results, err := h.Store.PullTaskResults(ctx, instructionIDs, h.Clock.Now())
	if err != nil {
		return nil, err
	}
	if err := h.Store.DeleteTasks(ctx, instructionIDs); err != nil {
		return nil, err
	}
	return results, nil
}

// newTaskID is a package-level indirection point kept separate from
// ids.NewTaskID so tests can substitute deterministic ids if needed.
var newTaskID = ids.NewTaskID
