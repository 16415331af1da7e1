package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/flwr-dev/superlink/internal/objects"
)

// sqliteMaxBindParameters is the per-statement parameter fan-out cap
// InsertTaskInstructions batches under on SQLite. It is kept below
// SQLite's default limit of 999, far lower than the 32000 bound
// (postgresMaxBindParameters) the Postgres store uses.
const sqliteMaxBindParameters = 900

const taskInsColumns = 17

// SQLite is a Store backed by database/sql + mattn/go-sqlite3,
// intended for local development and the test suite -- the same role
// go/materialize/driver/sql/sqlite.go's StandardSQLConnectionBuilder
// plays for the teacher's materialization driver tests.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens (creating if necessary) a SQLite database at path
// and applies the dev/test schema. Use ":memory:" for ephemeral
// stores in tests.
func OpenSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("opening sqlite database: %w", err)
	}
	db.SetMaxOpenConns(1) // sqlite serializes writers regardless; avoid SQLITE_BUSY churn.

	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("applying sqlite schema: %w", err)
	}
	return &SQLite{db: db}, nil
}

// Close implements Store.
func (s *SQLite) Close() error { return s.db.Close() }

// InsertRun implements Store.
func (s *SQLite) InsertRun(ctx context.Context, id objects.RunID) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO run (id) VALUES (?)`, int64(id))
	if isUniqueViolation(err) {
		return ErrConflict
	}
	return err
}

// InsertNode implements Store.
func (s *SQLite) InsertNode(ctx context.Context, id objects.NodeID, onlineUntil time.Time, pingInterval time.Duration) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO node (id, online_until, ping_interval) VALUES (?, ?, ?)`,
		int64(id), onlineUntil.UTC().Format(time.RFC3339Nano), pingInterval.Seconds())
	if isUniqueViolation(err) {
		return ErrConflict
	}
	return err
}

// DeleteNode implements Store.
func (s *SQLite) DeleteNode(ctx context.Context, id objects.NodeID) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM node WHERE id = ?`, int64(id))
	return err
}

// UpdatePing implements Store.
func (s *SQLite) UpdatePing(ctx context.Context, id objects.NodeID, onlineUntil time.Time, pingInterval time.Duration) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE node SET online_until = ?, ping_interval = ? WHERE id = ?`,
		onlineUntil.UTC().Format(time.RFC3339Nano), pingInterval.Seconds(), int64(id))
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// ListNodes implements Store.
func (s *SQLite) ListNodes(ctx context.Context, run objects.RunID, now time.Time) ([]objects.NodeID, error) {
	var exists bool
	if err := s.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM run WHERE id = ?)`, int64(run)).Scan(&exists); err != nil {
		return nil, err
	}
	if !exists {
		return nil, nil
	}

	rows, err := s.db.QueryContext(ctx, `SELECT id FROM node WHERE online_until >= ?`, now.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []objects.NodeID
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, objects.NodeID(id))
	}
	return out, rows.Err()
}

// InsertTaskInstructions implements Store.
func (s *SQLite) InsertTaskInstructions(ctx context.Context, tasks []objects.Task) error {
	if len(tasks) == 0 {
		return nil
	}
	perBatch := sqliteMaxBindParameters / taskInsColumns
	if perBatch == 0 {
		perBatch = 1
	}

	txn, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer txn.Rollback()

	for start := 0; start < len(tasks); start += perBatch {
		end := start + perBatch
		if end > len(tasks) {
			end = len(tasks)
		}
		if err := insertTaskInsBatch(ctx, txn, tasks[start:end]); err != nil {
			return err
		}
	}
	return txn.Commit()
}

func insertTaskInsBatch(ctx context.Context, txn *sql.Tx, tasks []objects.Task) error {
	var placeholders []string
	var args []interface{}
	for _, t := range tasks {
		r := taskToRow(t)
		placeholders = append(placeholders, "(?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)")
		args = append(args,
			r.ID, r.GroupID, r.RunID, r.ProducerNodeID, r.ProducerAnonymous,
			r.ConsumerNodeID, r.ConsumerAnonymous, r.CreatedAt, r.DeliveredAt,
			r.PushedAt, r.TTL, r.Ancestry, r.TaskType, r.Recordset,
			r.ErrorCode, r.ErrorReason, r.ErrorMessage,
		)
	}
	query := fmt.Sprintf(`INSERT INTO task_ins
		(id, group_id, run_id, producer_node_id, producer_anonymous,
		 consumer_node_id, consumer_anonymous, created_at, delivered_at,
		 pushed_at, ttl, ancestry, task_type, recordset, error_code, error_reason, error_message)
		VALUES %s`, strings.Join(placeholders, ","))
	_, err := txn.ExecContext(ctx, query, args...)
	if isUniqueViolation(err) {
		return ErrConflict
	}
	return err
}

// PullTaskInstructions implements Store.
func (s *SQLite) PullTaskInstructions(ctx context.Context, consumer objects.NodeRef, limit int, now time.Time) ([]objects.Task, error) {
	txn, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return nil, err
	}
	defer txn.Rollback()

	rows, err := txn.QueryContext(ctx,
		`SELECT id FROM task_ins
		 WHERE delivered_at = '' AND consumer_anonymous = ? AND consumer_node_id = ?
		 LIMIT ?`,
		consumer.IsAnonymous(), int64(consumer.ID()), limit)
	if err != nil {
		return nil, err
	}
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, err
		}
		ids = append(ids, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, txn.Commit()
	}

	deliveredAt := now.UTC().Format(time.RFC3339Nano)
	placeholders := make([]string, len(ids))
	args := make([]interface{}, 0, len(ids)+1)
	args = append(args, deliveredAt)
	for i, id := range ids {
		placeholders[i] = "?"
		args = append(args, id)
	}
	_, err = txn.ExecContext(ctx,
		fmt.Sprintf(`UPDATE task_ins SET delivered_at = ? WHERE id IN (%s)`, strings.Join(placeholders, ",")),
		args...)
	if err != nil {
		return nil, err
	}

	tasks, err := selectTaskInsByIDs(ctx, txn, ids)
	if err != nil {
		return nil, err
	}
	return tasks, txn.Commit()
}

func selectTaskInsByIDs(ctx context.Context, txn *sql.Tx, ids []string) ([]objects.Task, error) {
	placeholders := make([]string, len(ids))
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		placeholders[i] = "?"
		args[i] = id
	}
	rows, err := txn.QueryContext(ctx,
		fmt.Sprintf(`SELECT id, group_id, run_id, producer_node_id, producer_anonymous,
			consumer_node_id, consumer_anonymous, created_at, delivered_at, pushed_at,
			ttl, ancestry, task_type, recordset, error_code, error_reason, error_message
			FROM task_ins WHERE id IN (%s)`, strings.Join(placeholders, ",")),
		args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []objects.Task
	for rows.Next() {
		var r taskRow
		if err := rows.Scan(&r.ID, &r.GroupID, &r.RunID, &r.ProducerNodeID, &r.ProducerAnonymous,
			&r.ConsumerNodeID, &r.ConsumerAnonymous, &r.CreatedAt, &r.DeliveredAt, &r.PushedAt,
			&r.TTL, &r.Ancestry, &r.TaskType, &r.Recordset, &r.ErrorCode, &r.ErrorReason, &r.ErrorMessage); err != nil {
			return nil, err
		}
		out = append(out, rowToTask(r))
	}
	return out, rows.Err()
}

// InsertTaskResult implements Store.
func (s *SQLite) InsertTaskResult(ctx context.Context, task objects.Task) error {
	r := taskToRow(task)
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO task_res
		(id, group_id, run_id, producer_node_id, producer_anonymous,
		 consumer_node_id, consumer_anonymous, created_at, delivered_at,
		 pushed_at, ttl, ancestry, task_type, recordset, error_code, error_reason, error_message)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		r.ID, r.GroupID, r.RunID, r.ProducerNodeID, r.ProducerAnonymous,
		r.ConsumerNodeID, r.ConsumerAnonymous, r.CreatedAt, r.DeliveredAt,
		r.PushedAt, r.TTL, r.Ancestry, r.TaskType, r.Recordset, r.ErrorCode, r.ErrorReason, r.ErrorMessage)
	if isUniqueViolation(err) {
		return ErrConflict
	}
	return err
}

// PullTaskResults implements Store.
func (s *SQLite) PullTaskResults(ctx context.Context, instructionIDs []string, now time.Time) ([]objects.Task, error) {
	if len(instructionIDs) == 0 {
		return nil, nil
	}

	txn, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return nil, err
	}
	defer txn.Rollback()

	placeholders := make([]string, len(instructionIDs))
	args := make([]interface{}, len(instructionIDs))
	for i, id := range instructionIDs {
		placeholders[i] = "?"
		args[i] = id
	}

	rows, err := txn.QueryContext(ctx,
		fmt.Sprintf(`SELECT id FROM task_res WHERE delivered_at = '' AND ancestry IN (%s)`, strings.Join(placeholders, ",")),
		args...)
	if err != nil {
		return nil, err
	}
	var resultIDs []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, err
		}
		resultIDs = append(resultIDs, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var out []objects.Task
	if len(resultIDs) > 0 {
		deliveredAt := now.UTC().Format(time.RFC3339Nano)
		resPlaceholders := make([]string, len(resultIDs))
		resArgs := make([]interface{}, 0, len(resultIDs)+1)
		resArgs = append(resArgs, deliveredAt)
		for i, id := range resultIDs {
			resPlaceholders[i] = "?"
			resArgs = append(resArgs, id)
		}
		if _, err := txn.ExecContext(ctx,
			fmt.Sprintf(`UPDATE task_res SET delivered_at = ? WHERE id IN (%s)`, strings.Join(resPlaceholders, ",")),
			resArgs...); err != nil {
			return nil, err
		}

		results, err := selectTaskResByIDs(ctx, txn, resultIDs)
		if err != nil {
			return nil, err
		}
		out = append(out, results...)
	}

	// Unavailability synthesis (spec.md §4.1 step 3): for every
	// instruction id with no delivered result, synthesize one if its
	// target node is gone or offline. Synthesized results are never
	// persisted.
	answered := make(map[string]bool, len(out))
	for _, t := range out {
		for _, a := range t.Ancestry {
			answered[a] = true
		}
	}

	for _, instrID := range instructionIDs {
		if answered[instrID] {
			continue
		}
		instr, found, err := selectTaskInsByID(ctx, txn, instrID)
		if err != nil {
			return nil, err
		}
		if !found {
			continue
		}
		unavailable, err := nodeUnavailable(ctx, txn, instr.Consumer, now)
		if err != nil {
			return nil, err
		}
		if !unavailable {
			continue
		}
		out = append(out, synthesizeUnavailableResult(instr))
	}

	return out, txn.Commit()
}

func selectTaskResByIDs(ctx context.Context, txn *sql.Tx, ids []string) ([]objects.Task, error) {
	placeholders := make([]string, len(ids))
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		placeholders[i] = "?"
		args[i] = id
	}
	rows, err := txn.QueryContext(ctx,
		fmt.Sprintf(`SELECT id, group_id, run_id, producer_node_id, producer_anonymous,
			consumer_node_id, consumer_anonymous, created_at, delivered_at, pushed_at,
			ttl, ancestry, task_type, recordset, error_code, error_reason, error_message
			FROM task_res WHERE id IN (%s)`, strings.Join(placeholders, ",")),
		args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []objects.Task
	for rows.Next() {
		var r taskRow
		if err := rows.Scan(&r.ID, &r.GroupID, &r.RunID, &r.ProducerNodeID, &r.ProducerAnonymous,
			&r.ConsumerNodeID, &r.ConsumerAnonymous, &r.CreatedAt, &r.DeliveredAt, &r.PushedAt,
			&r.TTL, &r.Ancestry, &r.TaskType, &r.Recordset, &r.ErrorCode, &r.ErrorReason, &r.ErrorMessage); err != nil {
			return nil, err
		}
		out = append(out, rowToTask(r))
	}
	return out, rows.Err()
}

func selectTaskInsByID(ctx context.Context, txn *sql.Tx, id string) (objects.Task, bool, error) {
	var r taskRow
	err := txn.QueryRowContext(ctx,
		`SELECT id, group_id, run_id, producer_node_id, producer_anonymous,
			consumer_node_id, consumer_anonymous, created_at, delivered_at, pushed_at,
			ttl, ancestry, task_type, recordset, error_code, error_reason, error_message
			FROM task_ins WHERE id = ?`, id).
		Scan(&r.ID, &r.GroupID, &r.RunID, &r.ProducerNodeID, &r.ProducerAnonymous,
			&r.ConsumerNodeID, &r.ConsumerAnonymous, &r.CreatedAt, &r.DeliveredAt, &r.PushedAt,
			&r.TTL, &r.Ancestry, &r.TaskType, &r.Recordset, &r.ErrorCode, &r.ErrorReason, &r.ErrorMessage)
	if errors.Is(err, sql.ErrNoRows) {
		return objects.Task{}, false, nil
	}
	if err != nil {
		return objects.Task{}, false, err
	}
	return rowToTask(r), true, nil
}

func nodeUnavailable(ctx context.Context, txn *sql.Tx, consumer objects.NodeRef, now time.Time) (bool, error) {
	if consumer.IsAnonymous() {
		// An anonymous consumer was never a specific node that can go
		// offline; unavailability synthesis does not apply to it.
		return false, nil
	}
	var onlineUntil string
	err := txn.QueryRowContext(ctx, `SELECT online_until FROM node WHERE id = ?`, int64(consumer.ID())).Scan(&onlineUntil)
	if errors.Is(err, sql.ErrNoRows) {
		return true, nil
	}
	if err != nil {
		return false, err
	}
	until, err := time.Parse(time.RFC3339Nano, onlineUntil)
	if err != nil {
		return false, err
	}
	return until.Before(now), nil
}

func synthesizeUnavailableResult(instr objects.Task) objects.Task {
	return objects.Task{
		ID:          "", // synthesized, never persisted, never assigned a stored id
		GroupID:     instr.GroupID,
		RunID:       instr.RunID,
		Producer:    instr.Consumer,
		Consumer:    instr.Producer,
		CreatedAt:   instr.CreatedAt,
		DeliveredAt: "",
		PushedAt:    instr.PushedAt,
		TTL:         instr.TTL,
		Ancestry:    []string{instr.ID},
		TaskType:    instr.TaskType,
		Payload: objects.Payload{
			Error: &objects.ErrorRecord{
				Code:    objects.ErrCodeNodeUnavailable,
				Reason:  "NODE_UNAVAILABLE",
				Message: fmt.Sprintf("node %s is not available to reply to task %s", instr.Consumer, instr.ID),
			},
		},
	}
}

// DeleteTasks implements Store.
func (s *SQLite) DeleteTasks(ctx context.Context, instructionIDs []string) error {
	if len(instructionIDs) == 0 {
		return nil
	}

	txn, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return err
	}
	defer txn.Rollback()

	return deleteTasksTwoPass(ctx, txn, instructionIDs)
}

// deleteTasksTwoPass implements spec.md §4.1 delete_tasks precisely:
// an instruction is only removed if it has been delivered AND a
// delivered result exists for it, and the result is only removed
// together with its instruction. Doing this correctly requires
// reading which instructions qualify before deleting either table.
func deleteTasksTwoPass(ctx context.Context, txn *sql.Tx, instructionIDs []string) error {
	placeholders := make([]string, len(instructionIDs))
	args := make([]interface{}, len(instructionIDs))
	for i, id := range instructionIDs {
		placeholders[i] = "?"
		args[i] = id
	}
	in := strings.Join(placeholders, ",")

	rows, err := txn.QueryContext(ctx, fmt.Sprintf(`
		SELECT task_ins.id FROM task_ins
		JOIN task_res ON task_res.ancestry = task_ins.id
		WHERE task_ins.id IN (%s)
		  AND task_ins.delivered_at != ''
		  AND task_res.delivered_at != ''`, in), args...)
	if err != nil {
		return err
	}
	var purge []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return err
		}
		purge = append(purge, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}
	if len(purge) == 0 {
		return txn.Commit()
	}

	purgePlaceholders := make([]string, len(purge))
	purgeArgs := make([]interface{}, len(purge))
	for i, id := range purge {
		purgePlaceholders[i] = "?"
		purgeArgs[i] = id
	}
	purgeIn := strings.Join(purgePlaceholders, ",")

	if _, err := txn.ExecContext(ctx, fmt.Sprintf(`DELETE FROM task_res WHERE ancestry IN (%s) AND delivered_at != ''`, purgeIn), purgeArgs...); err != nil {
		return err
	}
	if _, err := txn.ExecContext(ctx, fmt.Sprintf(`DELETE FROM task_ins WHERE id IN (%s)`, purgeIn), purgeArgs...); err != nil {
		return err
	}
	return txn.Commit()
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed") ||
		strings.Contains(err.Error(), "PRIMARY KEY")
}
