package service

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/flwr-dev/superlink/internal/fleethandler"
	"github.com/flwr-dev/superlink/internal/objects"
	"github.com/flwr-dev/superlink/internal/superlinkpb"
	"github.com/flwr-dev/superlink/internal/validate"
)

// fleetReconnectSeconds is the reconnect hint PushTaskRes returns
// (spec.md §6: "reconnect: {reconnect: 5}").
const fleetReconnectSeconds = 5

// FleetService implements superlinkpb.FleetServer over a
// fleethandler.Handler, per spec.md §4.3.
type FleetService struct {
	Handler             *fleethandler.Handler
	MessageExpiresAfter time.Duration
}

var _ superlinkpb.FleetServer = (*FleetService)(nil)

// CreateNode implements superlinkpb.FleetServer.
func (s *FleetService) CreateNode(ctx context.Context, req *superlinkpb.CreateNodeRequest) (*superlinkpb.CreateNodeResponse, error) {
	if vs := validate.ValidatePingInterval(req.PingInterval, "ping_interval"); len(vs) > 0 {
		return nil, invalidArgument(vs)
	}
	node, err := s.Handler.CreateNode(ctx, time.Duration(req.PingInterval*float64(time.Second)))
	if err != nil {
		return nil, storeError(log.WithField("rpc", "CreateNode"), "create_node", err)
	}
	return &superlinkpb.CreateNodeResponse{Node: nodeToWire(objects.Identified(node))}, nil
}

// DeleteNode implements superlinkpb.FleetServer.
func (s *FleetService) DeleteNode(ctx context.Context, req *superlinkpb.DeleteNodeRequest) (*superlinkpb.DeleteNodeResponse, error) {
	if err := s.Handler.DeleteNode(ctx, nodeFromWire(req.Node)); err != nil {
		return nil, storeError(log.WithField("rpc", "DeleteNode"), "delete_node", err)
	}
	return &superlinkpb.DeleteNodeResponse{}, nil
}

// PullTaskIns implements superlinkpb.FleetServer.
func (s *FleetService) PullTaskIns(ctx context.Context, req *superlinkpb.PullTaskInsRequest) (*superlinkpb.PullTaskInsResponse, error) {
	tasks, err := s.Handler.PullTaskIns(ctx, nodeFromWire(req.Node))
	if err != nil {
		return nil, storeError(log.WithField("rpc", "PullTaskIns"), "pull_task_instructions", err)
	}
	wire := make([]*superlinkpb.TaskIns, len(tasks))
	for i, t := range tasks {
		wire[i] = taskInsToWire(t)
	}
	return &superlinkpb.PullTaskInsResponse{TaskInsList: wire}, nil
}

// PushTaskRes implements superlinkpb.FleetServer.
func (s *FleetService) PushTaskRes(ctx context.Context, req *superlinkpb.PushTaskResRequest) (*superlinkpb.PushTaskResResponse, error) {
	if len(req.TaskResList) != 1 {
		return nil, invalidArgument(validate.Violations{{Field: "task_res_list", Description: "must contain exactly one entry"}})
	}

	item := req.TaskResList[0]
	now := time.Now()
	ingress := ingressTaskFromWire(item.Task, item.TaskID)
	if vs := validate.ValidateIngressTask(ingress, validate.KindResult, now, s.MessageExpiresAfter, "task_res_list.task"); len(vs) > 0 {
		return nil, invalidArgument(vs)
	}

	task := domainTaskFromIngress(item.GroupID, objects.RunID(item.RunID), ingress)
	assignedID, err := s.Handler.PushTaskRes(ctx, task)
	if err != nil {
		return nil, storeError(log.WithField("rpc", "PushTaskRes"), "push_task_result", err)
	}

	return &superlinkpb.PushTaskResResponse{
		Results:   map[string]int32{assignedID: 0},
		Reconnect: &superlinkpb.Reconnect{Reconnect: fleetReconnectSeconds},
	}, nil
}

// Ping implements superlinkpb.FleetServer.
func (s *FleetService) Ping(ctx context.Context, req *superlinkpb.PingRequest) (*superlinkpb.PingResponse, error) {
	if vs := validate.ValidatePingInterval(req.PingInterval, "ping_interval"); len(vs) > 0 {
		return nil, invalidArgument(vs)
	}
	node := nodeFromWire(req.Node)
	if node.IsAnonymous() {
		return nil, invalidArgument(validate.Violations{{Field: "node", Description: "must be identified"}})
	}
	ok, err := s.Handler.Heartbeat(ctx, node.ID(), time.Duration(req.PingInterval*float64(time.Second)))
	if err != nil {
		return nil, storeError(log.WithField("rpc", "Ping"), "update_ping", err)
	}
	return &superlinkpb.PingResponse{Success: ok}, nil
}
