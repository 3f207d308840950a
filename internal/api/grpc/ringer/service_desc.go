package ringer

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "emergencyringer.v1.RingerService"

// Method names of the RingerService.
const (
	MethodPostNotification = "PostNotification"
	MethodTrigger          = "Trigger"
	MethodStop             = "Stop"
	MethodGetStatus        = "GetStatus"
	MethodListContacts     = "ListContacts"
	MethodAddContact       = "AddContact"
	MethodRemoveContact    = "RemoveContact"
	MethodSetMonitoring    = "SetMonitoring"
)

// RingerServiceServer is the server API of the RingerService.
type RingerServiceServer interface {
	PostNotification(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	Trigger(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	Stop(ctx context.Context, req *emptypb.Empty) (*structpb.Struct, error)
	GetStatus(ctx context.Context, req *emptypb.Empty) (*structpb.Struct, error)
	ListContacts(ctx context.Context, req *emptypb.Empty) (*structpb.Struct, error)
	AddContact(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	RemoveContact(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	SetMonitoring(ctx context.Context, req *wrapperspb.BoolValue) (*structpb.Struct, error)
}

// ServiceDesc describes the RingerService for grpc.Server registration.
//
//nolint:gochecknoglobals // Service descriptors are package-level by convention.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*RingerServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: MethodPostNotification,
			Handler:    unaryHandler(MethodPostNotification, RingerServiceServer.PostNotification),
		},
		{
			MethodName: MethodTrigger,
			Handler:    unaryHandler(MethodTrigger, RingerServiceServer.Trigger),
		},
		{
			MethodName: MethodStop,
			Handler:    unaryHandler(MethodStop, RingerServiceServer.Stop),
		},
		{
			MethodName: MethodGetStatus,
			Handler:    unaryHandler(MethodGetStatus, RingerServiceServer.GetStatus),
		},
		{
			MethodName: MethodListContacts,
			Handler:    unaryHandler(MethodListContacts, RingerServiceServer.ListContacts),
		},
		{
			MethodName: MethodAddContact,
			Handler:    unaryHandler(MethodAddContact, RingerServiceServer.AddContact),
		},
		{
			MethodName: MethodRemoveContact,
			Handler:    unaryHandler(MethodRemoveContact, RingerServiceServer.RemoveContact),
		},
		{
			MethodName: MethodSetMonitoring,
			Handler:    unaryHandler(MethodSetMonitoring, RingerServiceServer.SetMonitoring),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "emergencyringer/v1/ringer.proto",
}

// RegisterRingerServiceServer registers srv on s.
func RegisterRingerServiceServer(s grpc.ServiceRegistrar, srv RingerServiceServer) {
	s.RegisterService(&ServiceDesc, srv)
}

// FullMethod returns the gRPC path of a RingerService method.
func FullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

// unaryHandler adapts a typed server method to a grpc.MethodHandler.
func unaryHandler[Req any, PReq interface {
	*Req
	proto.Message
}, Resp proto.Message](
	method string,
	call func(RingerServiceServer, context.Context, PReq) (Resp, error),
) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := PReq(new(Req))
		if err := dec(in); err != nil {
			return nil, err
		}

		if interceptor == nil {
			return call(srv.(RingerServiceServer), ctx, in)
		}

		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: FullMethod(method),
		}

		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(RingerServiceServer), ctx, req.(PReq))
		}

		return interceptor(ctx, in, info, handler)
	}
}

// RingerServiceClient is the client stub of the RingerService.
type RingerServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewRingerServiceClient creates a client stub over cc.
func NewRingerServiceClient(cc grpc.ClientConnInterface) *RingerServiceClient {
	return &RingerServiceClient{cc: cc}
}

// PostNotification classifies a notification on the daemon.
func (c *RingerServiceClient) PostNotification(
	ctx context.Context,
	in *structpb.Struct,
	opts ...grpc.CallOption,
) (*structpb.Struct, error) {
	return invoke(ctx, c.cc, MethodPostNotification, in, opts)
}

// Trigger starts a manual alert.
func (c *RingerServiceClient) Trigger(
	ctx context.Context,
	in *structpb.Struct,
	opts ...grpc.CallOption,
) (*structpb.Struct, error) {
	return invoke(ctx, c.cc, MethodTrigger, in, opts)
}

// Stop ends the running alert.
func (c *RingerServiceClient) Stop(ctx context.Context, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return invoke(ctx, c.cc, MethodStop, &emptypb.Empty{}, opts)
}

// GetStatus returns the daemon status.
func (c *RingerServiceClient) GetStatus(ctx context.Context, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return invoke(ctx, c.cc, MethodGetStatus, &emptypb.Empty{}, opts)
}

// ListContacts returns the trusted contacts and the monitoring switch.
func (c *RingerServiceClient) ListContacts(ctx context.Context, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return invoke(ctx, c.cc, MethodListContacts, &emptypb.Empty{}, opts)
}

// AddContact stores a trusted contact.
func (c *RingerServiceClient) AddContact(
	ctx context.Context,
	in *structpb.Struct,
	opts ...grpc.CallOption,
) (*structpb.Struct, error) {
	return invoke(ctx, c.cc, MethodAddContact, in, opts)
}

// RemoveContact deletes a trusted contact.
func (c *RingerServiceClient) RemoveContact(
	ctx context.Context,
	in *structpb.Struct,
	opts ...grpc.CallOption,
) (*structpb.Struct, error) {
	return invoke(ctx, c.cc, MethodRemoveContact, in, opts)
}

// SetMonitoring switches call monitoring.
func (c *RingerServiceClient) SetMonitoring(
	ctx context.Context,
	enabled bool,
	opts ...grpc.CallOption,
) (*structpb.Struct, error) {
	return invoke(ctx, c.cc, MethodSetMonitoring, wrapperspb.Bool(enabled), opts)
}

func invoke(
	ctx context.Context,
	cc grpc.ClientConnInterface,
	method string,
	in proto.Message,
	opts []grpc.CallOption,
) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := cc.Invoke(ctx, FullMethod(method), in, out, opts...); err != nil {
		return nil, err
	}

	return out, nil
}
