// Package bridge relays raw telemetry lines from a serial port to one remote
// dashboard over gRPC.
package bridge

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const (
	serviceName       = "radian.bridge.Telemetry"
	streamLinesMethod = "/" + serviceName + "/StreamLines"
)

// TelemetryServer is the server side of the bridge service
type TelemetryServer interface {
	// StreamLines sends every telemetry line read from the port, in order,
	// until the viewer goes away.
	StreamLines(*emptypb.Empty, LineSender) error
}

// LineSender is the server end of a StreamLines call
type LineSender interface {
	Send(*wrapperspb.StringValue) error
	grpc.ServerStream
}

type lineSender struct {
	grpc.ServerStream
}

func (x *lineSender) Send(m *wrapperspb.StringValue) error {
	return x.ServerStream.SendMsg(m)
}

func streamLinesHandler(srv interface{}, stream grpc.ServerStream) error {
	m := new(emptypb.Empty)
	if err := stream.RecvMsg(m); err != nil {
		return err
	}
	return srv.(TelemetryServer).StreamLines(m, &lineSender{stream})
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*TelemetryServer)(nil),
	Methods:     []grpc.MethodDesc{},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "StreamLines",
			Handler:       streamLinesHandler,
			ServerStreams: true,
		},
	},
	Metadata: "radian/bridge.proto",
}

// RegisterTelemetryServer registers the bridge service on s
func RegisterTelemetryServer(s grpc.ServiceRegistrar, srv TelemetryServer) {
	s.RegisterService(&serviceDesc, srv)
}

// TelemetryClient is the client side of the bridge service
type TelemetryClient interface {
	StreamLines(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (LineReceiver, error)
}

// LineReceiver is the client end of a StreamLines call
type LineReceiver interface {
	Recv() (*wrapperspb.StringValue, error)
	grpc.ClientStream
}

type telemetryClient struct {
	cc grpc.ClientConnInterface
}

// NewTelemetryClient creates a client for the bridge service
func NewTelemetryClient(cc grpc.ClientConnInterface) TelemetryClient {
	return &telemetryClient{cc}
}

func (c *telemetryClient) StreamLines(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (LineReceiver, error) {
	stream, err := c.cc.NewStream(ctx, &serviceDesc.Streams[0], streamLinesMethod, opts...)
	if err != nil {
		return nil, err
	}
	x := &lineReceiver{stream}
	if err := x.ClientStream.SendMsg(in); err != nil {
		return nil, err
	}
	if err := x.ClientStream.CloseSend(); err != nil {
		return nil, err
	}
	return x, nil
}

type lineReceiver struct {
	grpc.ClientStream
}

func (x *lineReceiver) Recv() (*wrapperspb.StringValue, error) {
	m := new(wrapperspb.StringValue)
	if err := x.ClientStream.RecvMsg(m); err != nil {
		return nil, err
	}
	return m, nil
}
