package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/flwr-dev/superlink/internal/superlinkpb"
)

func TestCreateNodeRejectsNonPositivePingInterval(t *testing.T) {
	_, fleet := newTestServices(t)
	_, err := fleet.CreateNode(context.Background(), &superlinkpb.CreateNodeRequest{PingInterval: 0})
	require.Error(t, err)
	require.Contains(t, err.Error(), "ping_interval")
}

func TestDeleteNodeAnonymousIsNoOp(t *testing.T) {
	_, fleet := newTestServices(t)
	_, err := fleet.DeleteNode(context.Background(), &superlinkpb.DeleteNodeRequest{Node: &superlinkpb.Node{Anonymous: true}})
	require.NoError(t, err)
}

// TestHeartbeatOnMissingNodeReportsFailure exercises spec.md §4.3/§8:
// pinging a node id the store has never seen (or that has been
// deleted) returns success=false rather than an error.
func TestHeartbeatOnMissingNodeReportsFailure(t *testing.T) {
	_, fleet := newTestServices(t)
	resp, err := fleet.Ping(context.Background(), &superlinkpb.PingRequest{
		Node:         &superlinkpb.Node{NodeID: 404},
		PingInterval: 30,
	})
	require.NoError(t, err)
	require.False(t, resp.Success)
}

func TestPingRejectsAnonymousNode(t *testing.T) {
	_, fleet := newTestServices(t)
	_, err := fleet.Ping(context.Background(), &superlinkpb.PingRequest{
		Node:         &superlinkpb.Node{Anonymous: true},
		PingInterval: 30,
	})
	require.Error(t, err)
	require.Contains(t, err.Error(), "node")
}

func TestPingRefreshesLiveness(t *testing.T) {
	_, fleet := newTestServices(t)
	ctx := context.Background()

	createResp, err := fleet.CreateNode(ctx, &superlinkpb.CreateNodeRequest{PingInterval: 1})
	require.NoError(t, err)

	time.Sleep(1100 * time.Millisecond)

	pingResp, err := fleet.Ping(ctx, &superlinkpb.PingRequest{Node: createResp.Node, PingInterval: 30})
	require.NoError(t, err)
	require.True(t, pingResp.Success)
}

func TestPushTaskResRejectsMultipleEntries(t *testing.T) {
	_, fleet := newTestServices(t)
	_, err := fleet.PushTaskRes(context.Background(), &superlinkpb.PushTaskResRequest{
		TaskResList: []*superlinkpb.TaskRes{{}, {}},
	})
	require.Error(t, err)
	require.Contains(t, err.Error(), "task_res_list")
}

func TestPushTaskResRejectsEmptyAncestry(t *testing.T) {
	_, fleet := newTestServices(t)
	_, err := fleet.PushTaskRes(context.Background(), &superlinkpb.PushTaskResRequest{
		TaskResList: []*superlinkpb.TaskRes{{
			Task: &superlinkpb.Task{
				Producer:  &superlinkpb.Node{Anonymous: true},
				Consumer:  &superlinkpb.Node{Anonymous: true},
				CreatedAt: float64(time.Now().Unix()),
				TTL:       60,
				TaskType:  "demo",
				Recordset: []byte("x"),
			},
		}},
	})
	require.Error(t, err)
	require.Contains(t, err.Error(), "task_res_list.task.ancestry")
}
