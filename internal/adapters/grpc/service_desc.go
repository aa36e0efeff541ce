package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "widsview.v1.Monitor"

const (
	methodGetSnapshot    = "/" + ServiceName + "/GetSnapshot"
	methodGetTopology    = "/" + ServiceName + "/GetTopology"
	methodWatchSnapshots = "/" + ServiceName + "/WatchSnapshots"
)

// MonitorServer is the server API for the Monitor service.
// Payloads are the JSON shape of the domain types carried in a Struct.
type MonitorServer interface {
	GetSnapshot(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	GetTopology(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	WatchSnapshots(*emptypb.Empty, grpc.ServerStream) error
}

// MonitorServiceDesc describes the Monitor service for grpc.Server.RegisterService.
var MonitorServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*MonitorServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "GetSnapshot", Handler: getSnapshotHandler},
		{MethodName: "GetTopology", Handler: getTopologyHandler},
	},
	Streams: []grpc.StreamDesc{
		{StreamName: "WatchSnapshots", Handler: watchSnapshotsHandler, ServerStreams: true},
	},
	Metadata: "widsview/v1/monitor.proto",
}

func getSnapshotHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(MonitorServer).GetSnapshot(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: methodGetSnapshot}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(MonitorServer).GetSnapshot(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}

func getTopologyHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(MonitorServer).GetTopology(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: methodGetTopology}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(MonitorServer).GetTopology(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}

func watchSnapshotsHandler(srv interface{}, stream grpc.ServerStream) error {
	in := new(emptypb.Empty)
	if err := stream.RecvMsg(in); err != nil {
		return err
	}
	return srv.(MonitorServer).WatchSnapshots(in, stream)
}

// MonitorClient is the client API for the Monitor service.
type MonitorClient struct {
	cc grpc.ClientConnInterface
}

// NewMonitorClient wraps a client connection.
func NewMonitorClient(cc grpc.ClientConnInterface) *MonitorClient {
	return &MonitorClient{cc: cc}
}

// GetSnapshot fetches the current snapshot.
func (c *MonitorClient) GetSnapshot(ctx context.Context, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, methodGetSnapshot, &emptypb.Empty{}, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// GetTopology fetches the current topology.
func (c *MonitorClient) GetTopology(ctx context.Context, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, methodGetTopology, &emptypb.Empty{}, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// SnapshotStream receives one snapshot per tick.
type SnapshotStream struct {
	grpc.ClientStream
}

// Recv blocks for the next snapshot.
func (s *SnapshotStream) Recv() (*structpb.Struct, error) {
	m := new(structpb.Struct)
	if err := s.ClientStream.RecvMsg(m); err != nil {
		return nil, err
	}
	return m, nil
}

// WatchSnapshots opens the snapshot stream.
func (c *MonitorClient) WatchSnapshots(ctx context.Context, opts ...grpc.CallOption) (*SnapshotStream, error) {
	stream, err := c.cc.NewStream(ctx, &MonitorServiceDesc.Streams[0], methodWatchSnapshots, opts...)
	if err != nil {
		return nil, err
	}
	if err := stream.SendMsg(&emptypb.Empty{}); err != nil {
		return nil, err
	}
	if err := stream.CloseSend(); err != nil {
		return nil, err
	}
	return &SnapshotStream{ClientStream: stream}, nil
}
