package fleethandler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/flwr-dev/superlink/internal/ids"
	"github.com/flwr-dev/superlink/internal/objects"
	"github.com/flwr-dev/superlink/internal/store"
)

func newTestHandler(t *testing.T) (*Handler, ids.FixedClock) {
	t.Helper()
	s, err := store.OpenSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, s.Close()) })
	clock := ids.FixedClock{At: time.Now()}
	return &Handler{Store: s, Clock: clock}, clock
}

func TestCreateNodeAssignsNonZeroID(t *testing.T) {
	h, _ := newTestHandler(t)
	node, err := h.CreateNode(context.Background(), 10*time.Second)
	require.NoError(t, err)
	require.NotZero(t, node)
}

func TestDeleteNodeAnonymousIsNoOp(t *testing.T) {
	h, _ := newTestHandler(t)
	err := h.DeleteNode(context.Background(), objects.Anonymous())
	require.NoError(t, err)
}

func TestDeleteNodeIdentified(t *testing.T) {
	h, _ := newTestHandler(t)
	ctx := context.Background()
	node, err := h.CreateNode(ctx, 10*time.Second)
	require.NoError(t, err)

	require.NoError(t, h.DeleteNode(ctx, objects.Identified(node)))

	ok, err := h.Heartbeat(ctx, node, 10*time.Second)
	require.NoError(t, err)
	require.False(t, ok, "heartbeat must report false once the node is gone")
}

func TestHeartbeatOnMissingNode(t *testing.T) {
	h, _ := newTestHandler(t)
	ok, err := h.Heartbeat(context.Background(), objects.NodeID(123), time.Second)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestPullTaskInsDefaultLimitIsOne(t *testing.T) {
	h, _ := newTestHandler(t)
	ctx := context.Background()

	node, err := h.CreateNode(ctx, time.Minute)
	require.NoError(t, err)

	require.NoError(t, h.Store.InsertRun(ctx, objects.RunID(1)))
	require.NoError(t, h.Store.InsertTaskInstructions(ctx, []objects.Task{
		{ID: "11111111111111111111111111111111", GroupID: "g", RunID: 1,
			Producer: objects.Anonymous(), Consumer: objects.Identified(node),
			TTL: 30, TaskType: "t", Payload: objects.Payload{Recordset: []byte("1")}},
		{ID: "22222222222222222222222222222222", GroupID: "g", RunID: 1,
			Producer: objects.Anonymous(), Consumer: objects.Identified(node),
			TTL: 30, TaskType: "t", Payload: objects.Payload{Recordset: []byte("2")}},
	}))

	pulled, err := h.PullTaskIns(ctx, objects.Identified(node))
	require.NoError(t, err)
	require.Len(t, pulled, defaultPullLimit)
}

func TestPushTaskResAssignsFreshID(t *testing.T) {
	h, _ := newTestHandler(t)
	ctx := context.Background()

	id, err := h.PushTaskRes(ctx, objects.Task{
		GroupID: "g", RunID: 1, Producer: objects.Anonymous(), Consumer: objects.Anonymous(),
		TTL: 30, Ancestry: []string{"33333333333333333333333333333333"}, TaskType: "t",
		Payload: objects.Payload{Recordset: []byte("x")},
	})
	require.NoError(t, err)
	require.NotEmpty(t, id)
}
