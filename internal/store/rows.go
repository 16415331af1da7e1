package store

import (
	"database/sql"

	"github.com/flwr-dev/superlink/internal/objects"
	"github.com/flwr-dev/superlink/internal/validate"
)

// taskRow is the flat column shape shared by task_ins and task_res,
// used by both backend implementations to scan a row before it is
// reassembled into an objects.Task.
type taskRow struct {
	ID                string
	GroupID           string
	RunID             int64
	ProducerNodeID    int64
	ProducerAnonymous bool
	ConsumerNodeID    int64
	ConsumerAnonymous bool
	CreatedAt         float64
	DeliveredAt       string
	PushedAt          float64
	TTL               float64
	Ancestry          string
	TaskType          string
	Recordset         []byte
	ErrorCode         sql.NullInt32
	ErrorReason       sql.NullString
	ErrorMessage      sql.NullString
}

func taskToRow(t objects.Task) taskRow {
	r := taskRow{
		ID:                t.ID,
		GroupID:           t.GroupID,
		RunID:             int64(t.RunID),
		ProducerNodeID:    int64(t.Producer.ID()),
		ProducerAnonymous: t.Producer.IsAnonymous(),
		ConsumerNodeID:    int64(t.Consumer.ID()),
		ConsumerAnonymous: t.Consumer.IsAnonymous(),
		CreatedAt:         t.CreatedAt,
		DeliveredAt:       t.DeliveredAt,
		PushedAt:          t.PushedAt,
		TTL:               t.TTL,
		Ancestry:          validate.JoinAncestry(t.Ancestry),
		TaskType:          t.TaskType,
		Recordset:         t.Payload.Recordset,
	}
	if t.Payload.Error != nil {
		r.ErrorCode = sql.NullInt32{Int32: t.Payload.Error.Code, Valid: true}
		r.ErrorReason = sql.NullString{String: t.Payload.Error.Reason, Valid: true}
		r.ErrorMessage = sql.NullString{String: t.Payload.Error.Message, Valid: true}
	}
	return r
}

func rowToTask(r taskRow) objects.Task {
	t := objects.Task{
		ID:          r.ID,
		GroupID:     r.GroupID,
		RunID:       objects.RunID(r.RunID),
		CreatedAt:   r.CreatedAt,
		DeliveredAt: r.DeliveredAt,
		PushedAt:    r.PushedAt,
		TTL:         r.TTL,
		Ancestry:    validate.SplitAncestry(r.Ancestry),
		TaskType:    r.TaskType,
	}
	if r.ProducerAnonymous {
		t.Producer = objects.Anonymous()
	} else {
		t.Producer = objects.Identified(objects.NodeID(r.ProducerNodeID))
	}
	if r.ConsumerAnonymous {
		t.Consumer = objects.Anonymous()
	} else {
		t.Consumer = objects.Identified(objects.NodeID(r.ConsumerNodeID))
	}
	if r.ErrorCode.Valid {
		t.Payload.Error = &objects.ErrorRecord{
			Code:    r.ErrorCode.Int32,
			Reason:  r.ErrorReason.String,
			Message: r.ErrorMessage.String,
		}
	} else {
		t.Payload.Recordset = r.Recordset
	}
	return t
}
