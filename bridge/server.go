package bridge

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"radian-view/telemetry"
)

// DefaultReconnectPause is the wait between reopen attempts while the port is down
const DefaultReconnectPause = 500 * time.Millisecond

// ServerConfig tunes the bridge server
type ServerConfig struct {
	// Interval is the minimum time between lines. Zero forwards lines as
	// fast as the source produces them.
	Interval time.Duration
	// ReconnectPause is the wait after a failed read before reading again.
	ReconnectPause time.Duration
}

// Server owns the telemetry port and streams its lines to a single viewer.
// A new viewer preempts the attached one.
type Server struct {
	cfg    ServerConfig
	source telemetry.LineSource
	grpc   *grpc.Server

	mu      sync.Mutex
	current *session
	carry   []string // lines read by a preempted session but not sent

	done     chan struct{}
	stopOnce atomic.Bool
}

// session is one attached viewer. done is closed once its handler has
// stopped reading the source.
type session struct {
	id     string
	cancel context.CancelFunc
	done   chan struct{}
}

var _ TelemetryServer = (*Server)(nil)

// NewServer creates a bridge server reading from source
func NewServer(source telemetry.LineSource, cfg ServerConfig) *Server {
	if cfg.ReconnectPause <= 0 {
		cfg.ReconnectPause = DefaultReconnectPause
	}
	s := &Server{
		cfg:    cfg,
		source: source,
		grpc:   grpc.NewServer(),
		done:   make(chan struct{}),
	}
	RegisterTelemetryServer(s.grpc, s)
	return s
}

// StreamLines implements TelemetryServer. It cancels the attached viewer,
// waits until that viewer stops reading the port, then takes over.
func (s *Server) StreamLines(_ *emptypb.Empty, stream LineSender) error {
	ctx, cancel := context.WithCancel(stream.Context())
	defer cancel()

	sess := &session{id: uuid.NewString(), cancel: cancel, done: make(chan struct{})}
	s.mu.Lock()
	prev := s.current
	s.current = sess
	s.mu.Unlock()
	defer s.detach(sess)

	if prev != nil {
		telemetry.Logf("[bridge] viewer %s preempts %s", sess.id, prev.id)
		prev.cancel()
		// the source is not safe for concurrent reads
		<-prev.done
	}

	telemetry.Logf("[bridge] viewer %s attached", sess.id)
	defer telemetry.Logf("[bridge] viewer %s detached", sess.id)

	for _, line := range s.takeCarry() {
		if err := stream.Send(wrapperspb.String(line)); err != nil {
			return err
		}
	}

	var last time.Time
	for {
		select {
		case <-ctx.Done():
			return s.endErr(stream.Context())
		case <-s.done:
			return status.Error(codes.Unavailable, "bridge shutting down")
		default:
		}

		line, err := s.source.ReadRaw()
		switch {
		case err == nil:
		case errors.Is(err, telemetry.ErrNoData):
			continue
		case errors.Is(err, telemetry.ErrMalformed):
			telemetry.Logf("[bridge] %s: dropped line: %v", sess.id, err)
			continue
		default:
			telemetry.Logf("[bridge] %s: read failed: %v", sess.id, err)
			s.source.Reconnect()
			if !s.pause(ctx, s.cfg.ReconnectPause) {
				return s.endErr(stream.Context())
			}
			continue
		}

		if ctx.Err() != nil {
			// preempted or gone while reading; the next viewer gets the line
			s.putCarry(line)
			return s.endErr(stream.Context())
		}

		if s.cfg.Interval > 0 {
			if wait := s.cfg.Interval - time.Since(last); wait > 0 && !s.pause(ctx, wait) {
				s.putCarry(line)
				return s.endErr(stream.Context())
			}
			last = time.Now()
		}
		if err := stream.Send(wrapperspb.String(line)); err != nil {
			return err
		}
	}
}

// detach releases the port for the next viewer
func (s *Server) detach(sess *session) {
	s.mu.Lock()
	if s.current == sess {
		s.current = nil
	}
	s.mu.Unlock()
	close(sess.done)
}

// endErr is the status for a session that stopped early. A viewer whose
// own stream is still open was preempted.
func (s *Server) endErr(streamCtx context.Context) error {
	select {
	case <-s.done:
		return status.Error(codes.Unavailable, "bridge shutting down")
	default:
	}
	if err := streamCtx.Err(); err != nil {
		return status.FromContextError(err).Err()
	}
	return status.Error(codes.Aborted, "preempted by a new viewer")
}

func (s *Server) putCarry(line string) {
	s.mu.Lock()
	s.carry = append(s.carry, line)
	s.mu.Unlock()
}

func (s *Server) takeCarry() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	lines := s.carry
	s.carry = nil
	return lines
}

func (s *Server) pause(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-s.done:
		return false
	case <-ctx.Done():
		return false
	}
}

// Attached reports whether a viewer is streaming
func (s *Server) Attached() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current != nil
}

// Serve accepts viewers on lis until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, lis net.Listener) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		telemetry.Logf("[bridge] listening on %s", lis.Addr())
		if err := s.grpc.Serve(lis); err != nil {
			return fmt.Errorf("bridge serve: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		s.Stop()
		return nil
	})
	return g.Wait()
}

// Stop ends the active stream and stops the gRPC server
func (s *Server) Stop() {
	if !s.stopOnce.CompareAndSwap(false, true) {
		return
	}
	close(s.done)
	s.grpc.GracefulStop()
	telemetry.Logf("[bridge] stopped")
}
