package store

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/flwr-dev/superlink/internal/objects"
)

// testPostgresURI follows the gocryptotrader testhelpers convention
// (CheckValidConfig / t.Skip "database not configured"): these tests
// only run when a real Postgres instance is reachable at the URI
// named by FLWR_TEST_DATABASE_URI, and are skipped otherwise rather
// than faked with a mock driver.
func testPostgresURI(t *testing.T) string {
	t.Helper()
	uri := os.Getenv("FLWR_TEST_DATABASE_URI")
	if uri == "" {
		t.Skip("FLWR_TEST_DATABASE_URI not set, skipping Postgres-backed test")
	}
	return uri
}

func newTestPostgres(t *testing.T) *Postgres {
	t.Helper()
	ctx := context.Background()
	p, err := OpenPostgres(ctx, PostgresConfig{URI: testPostgresURI(t)})
	require.NoError(t, err)

	// Tests run against whatever schema the migration tool has already
	// applied to the target database; truncate between runs so each
	// test starts from an empty table set.
	_, err = p.pool.Exec(ctx, `TRUNCATE task_res, task_ins, node, run`)
	require.NoError(t, err)

	t.Cleanup(func() { require.NoError(t, p.Close()) })
	return p
}

// TestPostgresDeleteTasksPurgesDeliveredPair guards against the
// task_ins.id (UUID) / task_res.ancestry (TEXT) type mismatch in
// DeleteTasks's purge-candidate JOIN: on SQLite both columns are
// dynamically typed TEXT so a bare column comparison never surfaces a
// "operator does not exist" error the way it does on a real Postgres
// server. This is S5 exercised against the production backend.
func TestPostgresDeleteTasksPurgesDeliveredPair(t *testing.T) {
	p := newTestPostgres(t)
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, p.InsertRun(ctx, objects.RunID(1)))
	node := objects.NodeID(42)
	require.NoError(t, p.InsertNode(ctx, node, now.Add(10*time.Second), 10*time.Second))

	instr := objects.Task{
		ID:        "88888888888888888888888888888888",
		GroupID:   "g",
		RunID:     1,
		Producer:  objects.Anonymous(),
		Consumer:  objects.Identified(node),
		CreatedAt: float64(now.Unix()),
		PushedAt:  float64(now.Unix()),
		TTL:       30,
		TaskType:  "t",
		Payload:   objects.Payload{Recordset: []byte("x")},
	}
	require.NoError(t, p.InsertTaskInstructions(ctx, []objects.Task{instr}))

	pulled, err := p.PullTaskInstructions(ctx, objects.Identified(node), 1, now)
	require.NoError(t, err)
	require.Len(t, pulled, 1)

	result := objects.Task{
		ID:        "99999999999999999999999999999999",
		GroupID:   "g",
		RunID:     1,
		Producer:  objects.Identified(node),
		Consumer:  objects.Anonymous(),
		CreatedAt: float64(now.Unix()),
		PushedAt:  float64(now.Unix()),
		TTL:       30,
		Ancestry:  []string{instr.ID},
		TaskType:  "t",
		Payload:   objects.Payload{Recordset: []byte("y")},
	}
	require.NoError(t, p.InsertTaskResult(ctx, result))

	results, err := p.PullTaskResults(ctx, []string{instr.ID}, now)
	require.NoError(t, err)
	require.Len(t, results, 1)

	require.NoError(t, p.DeleteTasks(ctx, []string{instr.ID}))
	require.NoError(t, p.DeleteTasks(ctx, []string{instr.ID})) // idempotent

	results2, err := p.PullTaskResults(ctx, []string{instr.ID}, now)
	require.NoError(t, err)
	require.Empty(t, results2, "purged instruction must not resynthesize a result")
}

// TestPostgresDeleteTasksRetainsUndeliveredInstruction mirrors the
// SQLite-backed property test against the production backend.
func TestPostgresDeleteTasksRetainsUndeliveredInstruction(t *testing.T) {
	p := newTestPostgres(t)
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, p.InsertRun(ctx, objects.RunID(1)))
	node := objects.NodeID(7)
	require.NoError(t, p.InsertNode(ctx, node, now.Add(10*time.Second), 10*time.Second))

	instr := objects.Task{
		ID:        "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa",
		GroupID:   "g",
		RunID:     1,
		Producer:  objects.Anonymous(),
		Consumer:  objects.Identified(node),
		CreatedAt: float64(now.Unix()),
		PushedAt:  float64(now.Unix()),
		TTL:       30,
		TaskType:  "t",
		Payload:   objects.Payload{Recordset: []byte("x")},
	}
	require.NoError(t, p.InsertTaskInstructions(ctx, []objects.Task{instr}))

	// Never pulled: delivered_at is still "", so it must not be purged.
	require.NoError(t, p.DeleteTasks(ctx, []string{instr.ID}))

	pulled, err := p.PullTaskInstructions(ctx, objects.Identified(node), 1, now)
	require.NoError(t, err)
	require.Len(t, pulled, 1, "undelivered instruction must survive delete_tasks")
}
