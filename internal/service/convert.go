// Package service is the RPC service layer of SPEC_FULL.md §4/§7: it
// decodes superlinkpb wire messages into internal/objects domain
// records, validates them with internal/validate, delegates to
// internal/driverhandler and internal/fleethandler, and encodes their
// results back onto the wire. It is the one place validation errors
// and store errors are mapped onto gRPC status codes.
package service

import (
	"github.com/flwr-dev/superlink/internal/objects"
	"github.com/flwr-dev/superlink/internal/superlinkpb"
	"github.com/flwr-dev/superlink/internal/validate"
)

func nodeToWire(ref objects.NodeRef) *superlinkpb.Node {
	return &superlinkpb.Node{NodeID: int64(ref.ID()), Anonymous: ref.IsAnonymous()}
}

func nodeFromWire(n *superlinkpb.Node) objects.NodeRef {
	if n == nil {
		return objects.Anonymous()
	}
	if n.Anonymous {
		return objects.Anonymous()
	}
	return objects.Identified(objects.NodeID(n.NodeID))
}

func payloadFromWire(t *superlinkpb.Task) objects.Payload {
	if t.Error != nil {
		return objects.Payload{Error: &objects.ErrorRecord{
			Code:    t.Error.Code,
			Reason:  t.Error.Reason,
			Message: t.Error.Message,
		}}
	}
	return objects.Payload{Recordset: t.Recordset}
}

func payloadToWire(p objects.Payload) (recordset []byte, taskErr *superlinkpb.TaskError) {
	if p.Error != nil {
		return nil, &superlinkpb.TaskError{
			Code:    p.Error.Code,
			Reason:  p.Error.Reason,
			Message: p.Error.Message,
		}
	}
	return p.Recordset, nil
}

// ingressTaskFromWire translates a wire Task into validate.IngressTask,
// ready for ValidateIngressTask; it does not itself decide
// producer/consumer validity, TTL, etc. -- that's ValidateIngressTask's job.
func ingressTaskFromWire(t *superlinkpb.Task, taskID string) validate.IngressTask {
	if t == nil {
		t = &superlinkpb.Task{}
	}
	return validate.IngressTask{
		Producer:    nodeFromWire(t.Producer),
		Consumer:    nodeFromWire(t.Consumer),
		CreatedAt:   t.CreatedAt,
		DeliveredAt: t.DeliveredAt,
		PushedAt:    t.PushedAt,
		TTL:         t.TTL,
		Ancestry:    t.Ancestry,
		TaskType:    t.TaskType,
		Payload:     payloadFromWire(t),
		TaskID:      taskID,
	}
}

func domainTaskFromIngress(group string, run objects.RunID, ingress validate.IngressTask) objects.Task {
	return objects.Task{
		GroupID:  group,
		RunID:    run,
		Producer: ingress.Producer,
		Consumer: ingress.Consumer,
		CreatedAt: ingress.CreatedAt,
		TTL:       ingress.TTL,
		Ancestry:  ingress.Ancestry,
		TaskType:  ingress.TaskType,
		Payload:   ingress.Payload,
	}
}

func taskToWire(t objects.Task) *superlinkpb.Task {
	recordset, taskErr := payloadToWire(t.Payload)
	return &superlinkpb.Task{
		Producer:    nodeToWire(t.Producer),
		Consumer:    nodeToWire(t.Consumer),
		CreatedAt:   t.CreatedAt,
		DeliveredAt: t.DeliveredAt,
		PushedAt:    t.PushedAt,
		TTL:         t.TTL,
		Ancestry:    t.Ancestry,
		TaskType:    t.TaskType,
		Recordset:   recordset,
		Error:       taskErr,
	}
}

func taskInsToWire(t objects.Task) *superlinkpb.TaskIns {
	return &superlinkpb.TaskIns{TaskID: t.ID, GroupID: t.GroupID, RunID: int64(t.RunID), Task: taskToWire(t)}
}

func taskResToWire(t objects.Task) *superlinkpb.TaskRes {
	return &superlinkpb.TaskRes{TaskID: t.ID, GroupID: t.GroupID, RunID: int64(t.RunID), Task: taskToWire(t)}
}
