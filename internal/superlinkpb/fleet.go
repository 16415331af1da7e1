package superlinkpb

import (
	"context"

	"google.golang.org/grpc"
)

// FleetServer is the service interface implemented by
// internal/service for the Fleet RPC surface.
type FleetServer interface {
	CreateNode(context.Context, *CreateNodeRequest) (*CreateNodeResponse, error)
	DeleteNode(context.Context, *DeleteNodeRequest) (*DeleteNodeResponse, error)
	PullTaskIns(context.Context, *PullTaskInsRequest) (*PullTaskInsResponse, error)
	PushTaskRes(context.Context, *PushTaskResRequest) (*PushTaskResResponse, error)
	Ping(context.Context, *PingRequest) (*PingResponse, error)
}

func _Fleet_CreateNode_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(CreateNodeRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(FleetServer).CreateNode(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/flwr.superlink.Fleet/CreateNode"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(FleetServer).CreateNode(ctx, req.(*CreateNodeRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _Fleet_DeleteNode_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(DeleteNodeRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(FleetServer).DeleteNode(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/flwr.superlink.Fleet/DeleteNode"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(FleetServer).DeleteNode(ctx, req.(*DeleteNodeRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _Fleet_PullTaskIns_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(PullTaskInsRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(FleetServer).PullTaskIns(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/flwr.superlink.Fleet/PullTaskIns"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(FleetServer).PullTaskIns(ctx, req.(*PullTaskInsRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _Fleet_PushTaskRes_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(PushTaskResRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(FleetServer).PushTaskRes(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/flwr.superlink.Fleet/PushTaskRes"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(FleetServer).PushTaskRes(ctx, req.(*PushTaskResRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _Fleet_Ping_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(PingRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(FleetServer).Ping(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/flwr.superlink.Fleet/Ping"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(FleetServer).Ping(ctx, req.(*PingRequest))
	}
	return interceptor(ctx, in, info, handler)
}

// FleetServiceDesc is the grpc.ServiceDesc that would ordinarily be
// emitted by protoc-gen-go-grpc for the Fleet service.
var FleetServiceDesc = grpc.ServiceDesc{
	ServiceName: "flwr.superlink.Fleet",
	HandlerType: (*FleetServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "CreateNode", Handler: _Fleet_CreateNode_Handler},
		{MethodName: "DeleteNode", Handler: _Fleet_DeleteNode_Handler},
		{MethodName: "PullTaskIns", Handler: _Fleet_PullTaskIns_Handler},
		{MethodName: "PushTaskRes", Handler: _Fleet_PushTaskRes_Handler},
		{MethodName: "Ping", Handler: _Fleet_Ping_Handler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "superlink.proto",
}

// RegisterFleetServer registers srv as the implementation backing
// FleetServiceDesc on s.
func RegisterFleetServer(s grpc.ServiceRegistrar, srv FleetServer) {
	s.RegisterService(&FleetServiceDesc, srv)
}
