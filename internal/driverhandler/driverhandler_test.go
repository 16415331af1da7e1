package driverhandler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/flwr-dev/superlink/internal/ids"
	"github.com/flwr-dev/superlink/internal/objects"
	"github.com/flwr-dev/superlink/internal/store"
)

func newTestHandler(t *testing.T) *Handler {
	t.Helper()
	s, err := store.OpenSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, s.Close()) })
	return &Handler{Store: s, Clock: ids.FixedClock{At: time.Now()}}
}

func TestCreateRunAssignsNonZeroID(t *testing.T) {
	h := newTestHandler(t)
	run, err := h.CreateRun(context.Background())
	require.NoError(t, err)
	require.NotZero(t, run)
}

func TestListNodesUnknownRunEmpty(t *testing.T) {
	h := newTestHandler(t)
	nodes, err := h.ListNodes(context.Background(), objects.RunID(404))
	require.NoError(t, err)
	require.Empty(t, nodes)
}

func TestPushTaskInsAssignsFreshIDsInOrder(t *testing.T) {
	h := newTestHandler(t)
	ctx := context.Background()
	run, err := h.CreateRun(ctx)
	require.NoError(t, err)

	tasks := []objects.Task{
		{GroupID: "g", RunID: run, Producer: objects.Anonymous(), Consumer: objects.Anonymous(),
			TTL: 30, TaskType: "a", Payload: objects.Payload{Recordset: []byte("1")}},
		{GroupID: "g", RunID: run, Producer: objects.Anonymous(), Consumer: objects.Anonymous(),
			TTL: 30, TaskType: "b", Payload: objects.Payload{Recordset: []byte("2")}},
	}
	assigned, err := h.PushTaskIns(ctx, tasks)
	require.NoError(t, err)
	require.Len(t, assigned, 2)
	require.NotEqual(t, assigned[0], assigned[1])
	for _, id := range assigned {
		require.NotEmpty(t, id)
	}
}

func TestPushTaskInsEmptyIsNoOp(t *testing.T) {
	h := newTestHandler(t)
	assigned, err := h.PushTaskIns(context.Background(), nil)
	require.NoError(t, err)
	require.Empty(t, assigned)
}

func TestPullTaskResPurgesAfterDelivery(t *testing.T) {
	h := newTestHandler(t)
	ctx := context.Background()
	run, err := h.CreateRun(ctx)
	require.NoError(t, err)

	require.NoError(t, h.Store.InsertNode(ctx, objects.NodeID(9), time.Now().Add(time.Minute), time.Minute))

	assigned, err := h.PushTaskIns(ctx, []objects.Task{{
		GroupID: "g", RunID: run, Producer: objects.Anonymous(), Consumer: objects.Identified(objects.NodeID(9)),
		TTL: 30, TaskType: "t", Payload: objects.Payload{Recordset: []byte("x")},
	}})
	require.NoError(t, err)
	instrID := assigned[0]

	pulled, err := h.Store.PullTaskInstructions(ctx, objects.Identified(objects.NodeID(9)), 1, time.Now())
	require.NoError(t, err)
	require.Len(t, pulled, 1)

	require.NoError(t, h.Store.InsertTaskResult(ctx, objects.Task{
		ID: "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa", GroupID: "g", RunID: run,
		Producer: objects.Identified(objects.NodeID(9)), Consumer: objects.Anonymous(),
		TTL: 30, Ancestry: []string{instrID}, TaskType: "t",
		Payload: objects.Payload{Recordset: []byte("y")},
	}))

	results, err := h.PullTaskRes(ctx, []string{instrID})
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Equal(t, []byte("y"), results[0].Payload.Recordset)

	results2, err := h.PullTaskRes(ctx, []string{instrID})
	require.NoError(t, err)
	require.Empty(t, results2, "purge must run after the first successful pull")
}
