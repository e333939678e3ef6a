package bridge

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/emptypb"

	"radian-view/telemetry"
)

func init() {
	telemetry.SetLogger(nil)
}

// fakeSource hands out queued lines, then repeats a line if set, then
// reports no data. The first failures reads report a dead link. Each read
// takes delay, like a serial read waiting out its timeout.
type fakeSource struct {
	delay time.Duration

	mu         sync.Mutex
	lines      []string
	repeat     string
	failures   int
	reconnects int
}

func (f *fakeSource) ReadRaw() (string, error) {
	time.Sleep(f.delay)
	f.mu.Lock()
	if f.failures > 0 {
		f.failures--
		f.mu.Unlock()
		return "", fmt.Errorf("%w: unplugged", telemetry.ErrLinkDown)
	}
	if len(f.lines) > 0 {
		line := f.lines[0]
		f.lines = f.lines[1:]
		f.mu.Unlock()
		return line, nil
	}
	repeat := f.repeat
	f.mu.Unlock()

	if repeat != "" {
		return repeat, nil
	}
	time.Sleep(time.Millisecond)
	return "", telemetry.ErrNoData
}

func (f *fakeSource) ReadLine() (telemetry.Record, error) {
	line, err := f.ReadRaw()
	if err != nil {
		return nil, err
	}
	return telemetry.NewParser().Parse(line)
}

func (f *fakeSource) Reconnect() {
	f.mu.Lock()
	f.reconnects++
	f.mu.Unlock()
}

func (f *fakeSource) Close() error { return nil }

func (f *fakeSource) reconnectCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.reconnects
}

func startBridge(t *testing.T, src telemetry.LineSource, cfg ServerConfig) (*Server, grpc.DialOption) {
	t.Helper()
	lis := bufconn.Listen(1 << 20)
	srv := NewServer(src, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- srv.Serve(ctx, lis) }()
	t.Cleanup(func() {
		cancel()
		select {
		case err := <-errc:
			assert.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Error("bridge did not stop")
		}
	})

	dialer := grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
		return lis.DialContext(ctx)
	})
	return srv, dialer
}

func dialRemote(t *testing.T, dialer grpc.DialOption) *Remote {
	t.Helper()
	r, err := Dial("passthrough:///bufnet", nil, 200*time.Millisecond, dialer)
	require.NoError(t, err)
	t.Cleanup(func() { r.Close() })
	return r
}

// nextRecord reads until a record arrives, skipping empty frames
func nextRecord(t *testing.T, r *Remote) telemetry.Record {
	t.Helper()
	for i := 0; i < 50; i++ {
		rec, err := r.ReadLine()
		if errors.Is(err, telemetry.ErrNoData) {
			continue
		}
		require.NoError(t, err)
		return rec
	}
	t.Fatal("no record received")
	return nil
}

func TestBridge_StreamsLinesInOrder(t *testing.T) {
	src := &fakeSource{lines: []string{"gyro 12.5", "infra 1 2 3", "compass 7"}}
	_, dialer := startBridge(t, src, ServerConfig{})
	r := dialRemote(t, dialer)

	assert.Equal(t, telemetry.Gyro{Heading: 12.5}, nextRecord(t, r))
	assert.Equal(t, telemetry.Infra{Values: []float64{1, 2, 3}}, nextRecord(t, r))
	assert.Equal(t, telemetry.Unknown{Tag: "compass", Values: []float64{7}}, nextRecord(t, r))

	_, err := r.ReadLine()
	assert.ErrorIs(t, err, telemetry.ErrNoData)
}

func TestBridge_NewViewerPreemptsAttached(t *testing.T) {
	src := &fakeSource{repeat: "gyro 1"}
	srv, dialer := startBridge(t, src, ServerConfig{Interval: 5 * time.Millisecond})
	r := dialRemote(t, dialer)

	nextRecord(t, r)
	assert.True(t, srv.Attached())

	cc, err := grpc.NewClient("passthrough:///bufnet", dialer, grpc.WithTransportCredentials(insecure.NewCredentials()))
	require.NoError(t, err)
	defer cc.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	stream, err := NewTelemetryClient(cc).StreamLines(ctx, &emptypb.Empty{})
	require.NoError(t, err)
	msg, err := stream.Recv()
	require.NoError(t, err)
	assert.Equal(t, "gyro 1", msg.GetValue())

	// the first viewer loses its stream
	var readErr error
	require.Eventually(t, func() bool {
		_, readErr = r.ReadLine()
		return errors.Is(readErr, telemetry.ErrLinkDown)
	}, 5*time.Second, time.Millisecond)
	assert.Contains(t, readErr.Error(), codes.Aborted.String())
}

func TestBridge_ReconnectAcceptedWhileReadInFlight(t *testing.T) {
	src := &fakeSource{delay: 100 * time.Millisecond, lines: []string{"gyro", "gyro 4"}}
	_, dialer := startBridge(t, src, ServerConfig{})
	r, err := Dial("passthrough:///bufnet", nil, time.Second, dialer)
	require.NoError(t, err)
	t.Cleanup(func() { r.Close() })

	_, err = r.ReadLine()
	require.ErrorIs(t, err, telemetry.ErrMalformed)

	// the old session is still inside a 100ms read when the new stream opens
	r.Reconnect()

	for i := 0; i < 10; i++ {
		rec, err := r.ReadLine()
		if errors.Is(err, telemetry.ErrNoData) {
			continue
		}
		require.NoError(t, err, "the new stream must be accepted on the first attempt")
		assert.Equal(t, telemetry.Gyro{Heading: 4}, rec)
		return
	}
	t.Fatal("no record after reconnect")
}

func TestBridge_ViewerCanReattach(t *testing.T) {
	src := &fakeSource{repeat: "gyro 2"}
	srv, dialer := startBridge(t, src, ServerConfig{Interval: 5 * time.Millisecond})

	first, err := Dial("passthrough:///bufnet", nil, 200*time.Millisecond, dialer)
	require.NoError(t, err)
	nextRecord(t, first)
	require.NoError(t, first.Close())

	require.Eventually(t, func() bool { return !srv.Attached() }, 5*time.Second, 10*time.Millisecond)

	second := dialRemote(t, dialer)
	assert.Equal(t, telemetry.Gyro{Heading: 2}, nextRecord(t, second))
}

func TestBridge_ReconnectsPortOnLinkDown(t *testing.T) {
	src := &fakeSource{failures: 2, lines: []string{"gyro 3"}}
	_, dialer := startBridge(t, src, ServerConfig{ReconnectPause: time.Millisecond})
	r := dialRemote(t, dialer)

	assert.Equal(t, telemetry.Gyro{Heading: 3}, nextRecord(t, r))
	assert.Equal(t, 2, src.reconnectCount())
}

func TestBridge_MalformedLinesStillForwarded(t *testing.T) {
	// parsing happens on the viewer side
	src := &fakeSource{lines: []string{"gyro", "gyro 4"}}
	_, dialer := startBridge(t, src, ServerConfig{})
	r := dialRemote(t, dialer)

	var err error
	for i := 0; i < 50; i++ {
		if _, err = r.ReadLine(); !errors.Is(err, telemetry.ErrNoData) {
			break
		}
	}
	assert.ErrorIs(t, err, telemetry.ErrMalformed)
	assert.Equal(t, telemetry.Gyro{Heading: 4}, nextRecord(t, r))
}

func TestRemote_Unreachable(t *testing.T) {
	failing := grpc.WithContextDialer(func(context.Context, string) (net.Conn, error) {
		return nil, errors.New("connection refused")
	})
	r, err := Dial("passthrough:///nowhere", nil, 20*time.Millisecond, failing)
	require.NoError(t, err)
	defer r.Close()

	require.Eventually(t, func() bool {
		_, err := r.ReadLine()
		return errors.Is(err, telemetry.ErrLinkDown)
	}, 10*time.Second, 10*time.Millisecond)

	assert.NotPanics(t, r.Reconnect)
}

func TestServer_StopIsIdempotent(t *testing.T) {
	srv := NewServer(&fakeSource{}, ServerConfig{})
	srv.Stop()
	assert.NotPanics(t, srv.Stop)
}
