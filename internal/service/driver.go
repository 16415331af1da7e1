package service

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/flwr-dev/superlink/internal/driverhandler"
	"github.com/flwr-dev/superlink/internal/objects"
	"github.com/flwr-dev/superlink/internal/superlinkpb"
	"github.com/flwr-dev/superlink/internal/validate"
)

// DriverService implements superlinkpb.DriverServer over a
// driverhandler.Handler, per spec.md §4.2 and §5 ("thin
// validating/translating shells over this engine").
type DriverService struct {
	Handler             *driverhandler.Handler
	MessageExpiresAfter time.Duration
}

var _ superlinkpb.DriverServer = (*DriverService)(nil)

// CreateRun implements superlinkpb.DriverServer.
func (s *DriverService) CreateRun(ctx context.Context, _ *superlinkpb.CreateRunRequest) (*superlinkpb.CreateRunResponse, error) {
	run, err := s.Handler.CreateRun(ctx)
	if err != nil {
		return nil, storeError(log.WithField("rpc", "CreateRun"), "create_run", err)
	}
	return &superlinkpb.CreateRunResponse{RunID: int64(run)}, nil
}

// GetNodes implements superlinkpb.DriverServer.
func (s *DriverService) GetNodes(ctx context.Context, req *superlinkpb.GetNodesRequest) (*superlinkpb.GetNodesResponse, error) {
	nodes, err := s.Handler.ListNodes(ctx, objects.RunID(req.RunID))
	if err != nil {
		return nil, storeError(log.WithField("rpc", "GetNodes"), "list_nodes", err)
	}
	wire := make([]*superlinkpb.Node, len(nodes))
	for i, n := range nodes {
		wire[i] = nodeToWire(objects.Identified(n))
	}
	return &superlinkpb.GetNodesResponse{Nodes: wire}, nil
}

// PushTaskIns implements superlinkpb.DriverServer.
func (s *DriverService) PushTaskIns(ctx context.Context, req *superlinkpb.PushTaskInsRequest) (*superlinkpb.PushTaskInsResponse, error) {
	if len(req.TaskInsList) == 0 {
		return nil, invalidArgument(validate.Violations{{Field: "task_ins_list", Description: "must be non-empty"}})
	}

	now := time.Now()
	var vs validate.Violations
	tasks := make([]objects.Task, len(req.TaskInsList))
	for i, item := range req.TaskInsList {
		ingress := ingressTaskFromWire(item.Task, item.TaskID)
		vs = append(vs, validate.ValidateIngressTask(ingress, validate.KindInstruction, now, s.MessageExpiresAfter, "task_ins_list.task")...)
		tasks[i] = domainTaskFromIngress(item.GroupID, objects.RunID(item.RunID), ingress)
	}
	if len(vs) > 0 {
		return nil, invalidArgument(vs)
	}

	taskIDs, err := s.Handler.PushTaskIns(ctx, tasks)
	if err != nil {
		return nil, storeError(log.WithField("rpc", "PushTaskIns"), "push_task_instructions", err)
	}
	return &superlinkpb.PushTaskInsResponse{TaskIDs: taskIDs}, nil
}

// PullTaskRes implements superlinkpb.DriverServer.
func (s *DriverService) PullTaskRes(ctx context.Context, req *superlinkpb.PullTaskResRequest) (*superlinkpb.PullTaskResResponse, error) {
	if vs := validate.ValidateUUIDs(req.TaskIDs, "task_ids"); len(vs) > 0 {
		return nil, invalidArgument(vs)
	}

	results, err := s.Handler.PullTaskRes(ctx, req.TaskIDs)
	if err != nil {
		return nil, storeError(log.WithField("rpc", "PullTaskRes"), "pull_task_results", err)
	}
	wire := make([]*superlinkpb.TaskRes, len(results))
	for i, t := range results {
		wire[i] = taskResToWire(t)
	}
	return &superlinkpb.PullTaskResResponse{TaskResList: wire}, nil
}
