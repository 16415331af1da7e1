package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	log "github.com/sirupsen/logrus"

	"github.com/flwr-dev/superlink/internal/objects"
)

// postgresMaxBindParameters conservatively bounds the per-statement
// parameter fan-out InsertTaskInstructions batches under, per
// spec.md §4.1 ("conservatively ~32k bind parameters").
const postgresMaxBindParameters = 32000

// serializableTx is the isolation level spec.md §4.1 asks every
// multi-statement Store operation to run under.
var serializableTx = pgx.TxOptions{IsoLevel: pgx.Serializable}

// Postgres is the production Store, backed by a pooled pgx
// connection, the same driver (though not the identical code path)
// go/materialize/driver/sql/postgres.go uses for its own transactions.
type Postgres struct {
	pool *pgxpool.Pool
}

// PostgresConfig controls pool sizing (spec.md §5 "single bounded
// connection pool").
type PostgresConfig struct {
	URI         string
	MinConns    int32
	MaxConns    int32
}

// OpenPostgres connects a pgxpool.Pool per cfg.
func OpenPostgres(ctx context.Context, cfg PostgresConfig) (*Postgres, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.URI)
	if err != nil {
		return nil, fmt.Errorf("parsing database uri: %w", err)
	}
	if cfg.MinConns > 0 {
		poolCfg.MinConns = cfg.MinConns
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}

	pool, err := pgxpool.ConnectConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connecting to postgres: %w", err)
	}
	return &Postgres{pool: pool}, nil
}

// Close implements Store.
func (p *Postgres) Close() error {
	p.pool.Close()
	return nil
}

// InsertRun implements Store.
func (p *Postgres) InsertRun(ctx context.Context, id objects.RunID) error {
	_, err := p.pool.Exec(ctx, `INSERT INTO run (id) VALUES ($1)`, int64(id))
	if isPgUniqueViolation(err) {
		return ErrConflict
	}
	return err
}

// InsertNode implements Store.
func (p *Postgres) InsertNode(ctx context.Context, id objects.NodeID, onlineUntil time.Time, pingInterval time.Duration) error {
	_, err := p.pool.Exec(ctx,
		`INSERT INTO node (id, online_until, ping_interval) VALUES ($1, $2, $3)`,
		int64(id), onlineUntil.UTC(), pingInterval.Seconds())
	if isPgUniqueViolation(err) {
		return ErrConflict
	}
	return err
}

// DeleteNode implements Store.
func (p *Postgres) DeleteNode(ctx context.Context, id objects.NodeID) error {
	tag, err := p.pool.Exec(ctx, `DELETE FROM node WHERE id = $1`, int64(id))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		log.WithField("node_id", id).Debug("delete_node: no such node, ignoring")
	}
	return nil
}

// UpdatePing implements Store.
func (p *Postgres) UpdatePing(ctx context.Context, id objects.NodeID, onlineUntil time.Time, pingInterval time.Duration) (bool, error) {
	tag, err := p.pool.Exec(ctx,
		`UPDATE node SET online_until = $1, ping_interval = $2 WHERE id = $3`,
		onlineUntil.UTC(), pingInterval.Seconds(), int64(id))
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// ListNodes implements Store.
func (p *Postgres) ListNodes(ctx context.Context, run objects.RunID, now time.Time) ([]objects.NodeID, error) {
	var exists bool
	if err := p.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM run WHERE id = $1)`, int64(run)).Scan(&exists); err != nil {
		return nil, err
	}
	if !exists {
		return nil, nil
	}

	rows, err := p.pool.Query(ctx, `SELECT id FROM node WHERE online_until >= $1`, now.UTC())
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
func (p *Postgres) InsertTaskInstructions(ctx context.Context, tasks []objects.Task) error {
	if len(tasks) == 0 {
		return nil
	}
	perBatch := postgresMaxBindParameters / taskInsColumns
	if perBatch == 0 {
		perBatch = 1
	}

	txn, err := p.pool.BeginTx(ctx, serializableTx)
	if err != nil {
		return err
	}
	defer txn.Rollback(ctx)

	for start := 0; start < len(tasks); start += perBatch {
		end := start + perBatch
		if end > len(tasks) {
			end = len(tasks)
		}
		if err := pgInsertTaskInsBatch(ctx, txn, tasks[start:end]); err != nil {
			return err
		}
	}
	return txn.Commit(ctx)
}

func pgInsertTaskInsBatch(ctx context.Context, txn pgx.Tx, tasks []objects.Task) error {
	var placeholders []string
	var args []interface{}
	for i, t := range tasks {
		r := taskToRow(t)
		base := i * taskInsColumns
		var ph []string
		for c := 1; c <= taskInsColumns; c++ {
			ph = append(ph, fmt.Sprintf("$%d", base+c))
		}
		placeholders = append(placeholders, "("+strings.Join(ph, ",")+")")
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
	_, err := txn.Exec(ctx, query, args...)
	if isPgUniqueViolation(err) {
		return ErrConflict
	}
	return err
}

// PullTaskInstructions implements Store.
func (p *Postgres) PullTaskInstructions(ctx context.Context, consumer objects.NodeRef, limit int, now time.Time) ([]objects.Task, error) {
	txn, err := p.pool.BeginTx(ctx, serializableTx)
	if err != nil {
		return nil, err
	}
	defer txn.Rollback(ctx)

	rows, err := txn.Query(ctx,
		`SELECT id FROM task_ins
		 WHERE delivered_at = '' AND consumer_anonymous = $1 AND consumer_node_id = $2
		 ORDER BY pushed_at
		 LIMIT $3
		 FOR UPDATE SKIP LOCKED`,
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
		return nil, txn.Commit(ctx)
	}

	if _, err := txn.Exec(ctx,
		`UPDATE task_ins SET delivered_at = $1 WHERE id = ANY($2)`,
		now.UTC().Format(time.RFC3339Nano), ids); err != nil {
		return nil, err
	}

	tasks, err := pgSelectTaskInsByIDs(ctx, txn, ids)
	if err != nil {
		return nil, err
	}
	return tasks, txn.Commit(ctx)
}

func pgSelectTaskInsByIDs(ctx context.Context, txn pgx.Tx, ids []string) ([]objects.Task, error) {
	rows, err := txn.Query(ctx, `SELECT id, group_id, run_id, producer_node_id, producer_anonymous,
		consumer_node_id, consumer_anonymous, created_at, delivered_at, pushed_at,
		ttl, ancestry, task_type, recordset, error_code, error_reason, error_message
		FROM task_ins WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTaskRows(rows)
}

func pgSelectTaskResByIDs(ctx context.Context, txn pgx.Tx, ids []string) ([]objects.Task, error) {
	rows, err := txn.Query(ctx, `SELECT id, group_id, run_id, producer_node_id, producer_anonymous,
		consumer_node_id, consumer_anonymous, created_at, delivered_at, pushed_at,
		ttl, ancestry, task_type, recordset, error_code, error_reason, error_message
		FROM task_res WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTaskRows(rows)
}

func scanTaskRows(rows pgx.Rows) ([]objects.Task, error) {
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
func (p *Postgres) InsertTaskResult(ctx context.Context, task objects.Task) error {
	r := taskToRow(task)
	_, err := p.pool.Exec(ctx,
		`INSERT INTO task_res
		(id, group_id, run_id, producer_node_id, producer_anonymous,
		 consumer_node_id, consumer_anonymous, created_at, delivered_at,
		 pushed_at, ttl, ancestry, task_type, recordset, error_code, error_reason, error_message)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)`,
		r.ID, r.GroupID, r.RunID, r.ProducerNodeID, r.ProducerAnonymous,
		r.ConsumerNodeID, r.ConsumerAnonymous, r.CreatedAt, r.DeliveredAt,
		r.PushedAt, r.TTL, r.Ancestry, r.TaskType, r.Recordset, r.ErrorCode, r.ErrorReason, r.ErrorMessage)
	if isPgUniqueViolation(err) {
		return ErrConflict
	}
	return err
}

// PullTaskResults implements Store.
func (p *Postgres) PullTaskResults(ctx context.Context, instructionIDs []string, now time.Time) ([]objects.Task, error) {
	if len(instructionIDs) == 0 {
		return nil, nil
	}

	txn, err := p.pool.BeginTx(ctx, serializableTx)
	if err != nil {
		return nil, err
	}
	defer txn.Rollback(ctx)

	rows, err := txn.Query(ctx,
		`SELECT id FROM task_res WHERE delivered_at = '' AND ancestry = ANY($1)`, instructionIDs)
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
		if _, err := txn.Exec(ctx, `UPDATE task_res SET delivered_at = $1 WHERE id = ANY($2)`,
			now.UTC().Format(time.RFC3339Nano), resultIDs); err != nil {
			return nil, err
		}
		results, err := pgSelectTaskResByIDs(ctx, txn, resultIDs)
		if err != nil {
			return nil, err
		}
		out = append(out, results...)
	}

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
		instr, found, err := pgSelectTaskInsByID(ctx, txn, instrID)
		if err != nil {
			return nil, err
		}
		if !found {
			continue
		}
		unavailable, err := pgNodeUnavailable(ctx, txn, instr.Consumer, now)
		if err != nil {
			return nil, err
		}
		if !unavailable {
			continue
		}
		out = append(out, synthesizeUnavailableResult(instr))
	}

	return out, txn.Commit(ctx)
}

func pgSelectTaskInsByID(ctx context.Context, txn pgx.Tx, id string) (objects.Task, bool, error) {
	var r taskRow
	err := txn.QueryRow(ctx, `SELECT id, group_id, run_id, producer_node_id, producer_anonymous,
		consumer_node_id, consumer_anonymous, created_at, delivered_at, pushed_at,
		ttl, ancestry, task_type, recordset, error_code, error_reason, error_message
		FROM task_ins WHERE id = $1`, id).
		Scan(&r.ID, &r.GroupID, &r.RunID, &r.ProducerNodeID, &r.ProducerAnonymous,
			&r.ConsumerNodeID, &r.ConsumerAnonymous, &r.CreatedAt, &r.DeliveredAt, &r.PushedAt,
			&r.TTL, &r.Ancestry, &r.TaskType, &r.Recordset, &r.ErrorCode, &r.ErrorReason, &r.ErrorMessage)
	if errors.Is(err, pgx.ErrNoRows) {
		return objects.Task{}, false, nil
	}
	if err != nil {
		return objects.Task{}, false, err
	}
	return rowToTask(r), true, nil
}

func pgNodeUnavailable(ctx context.Context, txn pgx.Tx, consumer objects.NodeRef, now time.Time) (bool, error) {
	if consumer.IsAnonymous() {
		return false, nil
	}
	var onlineUntil time.Time
	err := txn.QueryRow(ctx, `SELECT online_until FROM node WHERE id = $1`, int64(consumer.ID())).Scan(&onlineUntil)
	if errors.Is(err, pgx.ErrNoRows) {
		return true, nil
	}
	if err != nil {
		return false, err
	}
	return onlineUntil.Before(now), nil
}

// DeleteTasks implements Store.
func (p *Postgres) DeleteTasks(ctx context.Context, instructionIDs []string) error {
	if len(instructionIDs) == 0 {
		return nil
	}

	txn, err := p.pool.BeginTx(ctx, serializableTx)
	if err != nil {
		return err
	}
	defer txn.Rollback(ctx)

	rows, err := txn.Query(ctx, `
		SELECT task_ins.id FROM task_ins
		JOIN task_res ON task_res.ancestry = task_ins.id::text
		WHERE task_ins.id = ANY($1)
		  AND task_ins.delivered_at != ''
		  AND task_res.delivered_at != ''`, instructionIDs)
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
		return txn.Commit(ctx)
	}

	if _, err := txn.Exec(ctx, `DELETE FROM task_res WHERE ancestry = ANY($1) AND delivered_at != ''`, purge); err != nil {
		return err
	}
	if _, err := txn.Exec(ctx, `DELETE FROM task_ins WHERE id = ANY($1)`, purge); err != nil {
		return err
	}
	return txn.Commit(ctx)
}

func isPgUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
