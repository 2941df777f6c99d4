package serverlessgql

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	eventbus "github.com/hanpama/serverlessgql/internal/eventbus"
	events "github.com/hanpama/serverlessgql/internal/events"
)

// observe publishes one SubscriptionEvent per result pulled from stream and
// a SubscriptionEnd when it ends. A stream the caller abandons ends when ctx
// is done. Without a bus the stream is returned as is.
func (r *QueryRunner) observe(ctx context.Context, name string, start time.Time, stream ResultStream) ResultStream {
	if r.bus == nil {
		return stream
	}
	s := &observedStream{ResultStream: stream, bus: r.bus, ctx: ctx, name: name, start: start}
	s.mu.Lock()
	s.stop = context.AfterFunc(ctx, func() { s.end(ctx.Err()) })
	s.mu.Unlock()
	return s
}

type observedStream struct {
	ResultStream
	bus   *eventbus.Bus
	ctx   context.Context
	name  string
	start time.Time

	mu    sync.Mutex
	seq   int
	ended bool
	stop  func() bool
}

func (s *observedStream) Next(ctx context.Context) (*ExecutionResult, error) {
	res, err := s.ResultStream.Next(ctx)
	switch {
	case errors.Is(err, io.EOF):
		s.end(nil)
	case err != nil && ctx.Err() != nil:
		// The caller gave up waiting; the stream itself stays open.
	case err != nil:
		s.end(err)
	default:
		s.mu.Lock()
		s.seq++
		seq := s.seq
		s.mu.Unlock()
		eventbus.Emit(s.bus, s.ctx, events.SubscriptionEvent{OperationName: s.name, Seq: seq, Errors: resultErrors(res)})
	}
	return res, err
}

func (s *observedStream) Close() error {
	err := s.ResultStream.Close()
	s.end(nil)
	return err
}

func (s *observedStream) end(err error) {
	s.mu.Lock()
	if s.ended {
		s.mu.Unlock()
		return
	}
	s.ended = true
	n, stop := s.seq, s.stop
	s.mu.Unlock()
	if stop != nil {
		stop()
	}
	eventbus.Emit(s.bus, s.ctx, events.SubscriptionEnd{OperationName: s.name, Events: n, Err: err, Duration: time.Since(s.start)})
}
