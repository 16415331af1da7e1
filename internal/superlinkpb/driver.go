package superlinkpb

import (
	"context"

	"google.golang.org/grpc"
)

// DriverServer is the service interface implemented by
// internal/service for the Driver RPC surface.
type DriverServer interface {
	CreateRun(context.Context, *CreateRunRequest) (*CreateRunResponse, error)
	GetNodes(context.Context, *GetNodesRequest) (*GetNodesResponse, error)
	PushTaskIns(context.Context, *PushTaskInsRequest) (*PushTaskInsResponse, error)
	PullTaskRes(context.Context, *PullTaskResRequest) (*PullTaskResResponse, error)
}

func _Driver_CreateRun_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(CreateRunRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(DriverServer).CreateRun(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/flwr.superlink.Driver/CreateRun"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(DriverServer).CreateRun(ctx, req.(*CreateRunRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _Driver_GetNodes_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(GetNodesRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(DriverServer).GetNodes(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/flwr.superlink.Driver/GetNodes"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(DriverServer).GetNodes(ctx, req.(*GetNodesRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _Driver_PushTaskIns_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(PushTaskInsRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(DriverServer).PushTaskIns(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/flwr.superlink.Driver/PushTaskIns"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(DriverServer).PushTaskIns(ctx, req.(*PushTaskInsRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func _Driver_PullTaskRes_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(PullTaskResRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(DriverServer).PullTaskRes(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/flwr.superlink.Driver/PullTaskRes"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(DriverServer).PullTaskRes(ctx, req.(*PullTaskResRequest))
	}
	return interceptor(ctx, in, info, handler)
}

// DriverServiceDesc is the grpc.ServiceDesc that would ordinarily be
// emitted by protoc-gen-go-grpc for the Driver service.
var DriverServiceDesc = grpc.ServiceDesc{
	ServiceName: "flwr.superlink.Driver",
	HandlerType: (*DriverServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "CreateRun", Handler: _Driver_CreateRun_Handler},
		{MethodName: "GetNodes", Handler: _Driver_GetNodes_Handler},
		{MethodName: "PushTaskIns", Handler: _Driver_PushTaskIns_Handler},
		{MethodName: "PullTaskRes", Handler: _Driver_PullTaskRes_Handler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "superlink.proto",
}

// RegisterDriverServer registers srv as the implementation backing
// DriverServiceDesc on s.
func RegisterDriverServer(s grpc.ServiceRegistrar, srv DriverServer) {
	s.RegisterService(&DriverServiceDesc, srv)
}
