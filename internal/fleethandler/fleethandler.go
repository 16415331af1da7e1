// Package fleethandler implements the Fleet half of the brokering
// state engine (spec.md §4.3): node registration, heartbeat,
// pull-task-instructions and push-task-result. Handlers are thin
// orchestration over internal/store.Store, in the same shape as
// driverhandler.Handler.
package fleethandler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/flwr-dev/superlink/internal/ids"
	"github.com/flwr-dev/superlink/internal/objects"
	"github.com/flwr-dev/superlink/internal/store"
)

// maxCreateNodeAttempts bounds the create-node id-collision retry
// loop, mirroring driverhandler's create-run retry.
const maxCreateNodeAttempts = 8

// defaultPullLimit is the Fleet pull's instruction count per call.
// spec.md §9 notes the source hard-codes 1; this spec treats it as a
// parameter that does not affect correctness, so it is kept as an
// unexported default rather than a magic literal scattered at call
// sites.
const defaultPullLimit = 1

// Handler implements the Fleet brokering operations against a Store.
type Handler struct {
	Store store.Store
	Clock ids.Clock
}

// New returns a Handler backed by s, using the system clock.
func New(s store.Store) *Handler {
	return &Handler{Store: s, Clock: ids.SystemClock{}}
}

// CreateNode generates a non-zero random node id, inserts it with
// online_until = now + pingInterval, and retries on collision.
// pingInterval validity is the caller's (service-layer) responsibility.
func (h *Handler) CreateNode(ctx context.Context, pingInterval time.Duration) (objects.NodeID, error) {
	now := h.Clock.Now()
	for attempt := 0; attempt < maxCreateNodeAttempts; attempt++ {
		raw, err := ids.NewRunOrNodeID()
		if err != nil {
			return 0, fmt.Errorf("generating node id: %w", err)
		}
		nodeID := objects.NodeID(raw)
		err = h.Store.InsertNode(ctx, nodeID, now.Add(pingInterval), pingInterval)
		if err == nil {
			return nodeID, nil
		}
		if errors.Is(err, store.ErrConflict) {
			continue
		}
		return 0, err
	}
	return 0, fmt.Errorf("creating node: exhausted %d id collision retries", maxCreateNodeAttempts)
}

// DeleteNode deletes an identified node; an anonymous reference is a
// no-op (spec.md §4.3).
func (h *Handler) DeleteNode(ctx context.Context, node objects.NodeRef) error {
	if node.IsAnonymous() {
		return nil
	}
	return h.Store.DeleteNode(ctx, node.ID())
}

// Heartbeat refreshes a node's liveness window and reports whether
// the node existed. pingInterval validity is the service layer's
// responsibility.
func (h *Handler) Heartbeat(ctx context.Context, node objects.NodeID, pingInterval time.Duration) (bool, error) {
	now := h.Clock.Now()
	return h.Store.UpdatePing(ctx, node, now.Add(pingInterval), pingInterval)
}

// PullTaskIns delegates to the Store's delivery primitive with the
// default pull limit.
func (h *Handler) PullTaskIns(ctx context.Context, node objects.NodeRef) ([]objects.Task, error) {
	return h.Store.PullTaskInstructions(ctx, node, defaultPullLimit, h.Clock.Now())
}

// PushTaskRes assigns a fresh id and pushed_at to the result and
// inserts it, returning the assigned id. ancestry (the parent
// instruction id) is the caller's responsibility and must already be
// non-empty by the time it reaches here (spec.md §4.4).
func (h *Handler) PushTaskRes(ctx context.Context, task objects.Task) (string, error) {
	task.ID = ids.NewTaskID()
	task.PushedAt = float64(h.Clock.Now().Unix())
	if err := h.Store.InsertTaskResult(ctx, task); err != nil {
		return "", err
	}
	return task.ID, nil
}
