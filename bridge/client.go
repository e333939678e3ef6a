package bridge

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/emptypb"

	"radian-view/telemetry"
)

// Remote is a telemetry.Source that reads lines from a bridge server.
type Remote struct {
	addr    string
	parser  *telemetry.Parser
	timeout time.Duration

	conn   *grpc.ClientConn
	client TelemetryClient

	cancel context.CancelFunc
	lines  chan string
	errs   chan error
}

var _ telemetry.Source = (*Remote)(nil)

// Dial connects to the bridge at addr and starts streaming. A failed first
// stream is not an error; the frame loop's reconnect retries it.
func Dial(addr string, parser *telemetry.Parser, timeout time.Duration, opts ...grpc.DialOption) (*Remote, error) {
	if parser == nil {
		parser = telemetry.NewParser()
	}
	if timeout <= 0 {
		timeout = telemetry.DefaultReadTimeout
	}
	opts = append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, opts...)
	conn, err := grpc.NewClient(addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("bridge client for %s: %w", addr, err)
	}

	r := &Remote{
		addr:    addr,
		parser:  parser,
		timeout: timeout,
		conn:    conn,
		client:  NewTelemetryClient(conn),
	}
	if err := r.startStream(); err != nil {
		telemetry.Logf("[bridge] stream to %s not ready: %v", addr, err)
	}
	return r, nil
}

func (r *Remote) startStream() error {
	r.stopStream()

	ctx, cancel := context.WithCancel(context.Background())
	stream, err := r.client.StreamLines(ctx, &emptypb.Empty{})
	if err != nil {
		cancel()
		return err
	}

	lines := make(chan string, 64)
	errs := make(chan error, 1)
	go func() {
		for {
			msg, err := stream.Recv()
			if err != nil {
				errs <- err
				return
			}
			select {
			case lines <- msg.GetValue():
			case <-ctx.Done():
				return
			}
		}
	}()

	r.cancel, r.lines, r.errs = cancel, lines, errs
	return nil
}

func (r *Remote) stopStream() {
	if r.cancel != nil {
		r.cancel()
	}
	r.cancel, r.lines, r.errs = nil, nil, nil
}

// ReadLine waits up to the read timeout for the next line from the bridge.
func (r *Remote) ReadLine() (telemetry.Record, error) {
	if r.lines == nil {
		return nil, fmt.Errorf("%w: no stream to %s", telemetry.ErrLinkDown, r.addr)
	}

	// drain buffered lines before reporting a stream error
	select {
	case line := <-r.lines:
		return r.parser.Parse(line)
	default:
	}

	timer := time.NewTimer(r.timeout)
	defer timer.Stop()
	select {
	case line := <-r.lines:
		return r.parser.Parse(line)
	case err := <-r.errs:
		r.stopStream()
		return nil, fmt.Errorf("%w: %v", telemetry.ErrLinkDown, err)
	case <-timer.C:
		return nil, telemetry.ErrNoData
	}
}

// Reconnect replaces the stream. Failures are logged and ignored.
func (r *Remote) Reconnect() {
	if err := r.startStream(); err != nil {
		telemetry.Logf("[bridge] reconnect to %s failed: %v", r.addr, err)
	}
}

// Close ends the stream and the connection
func (r *Remote) Close() error {
	r.stopStream()
	return r.conn.Close()
}
