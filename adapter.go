package serverlessgql

import (
	"context"
	"io"
	"sync"

	executor "github.com/hanpama/serverlessgql/internal/executor"
)

// adapt gives every subscription outcome the ResultStream shape. Streams
// pass through untouched; a single result becomes a one-shot stream.
func adapt(outcome executor.Outcome) ResultStream {
	if stream, ok := outcome.Stream(); ok {
		return stream
	}
	result, _ := outcome.Result()
	return &oneShotStream{result: result}
}

type oneShotState int

const (
	oneShotPending oneShotState = iota
	oneShotDone
)

// oneShotStream yields result on the first Next and io.EOF afterwards.
type oneShotStream struct {
	mu     sync.Mutex
	state  oneShotState
	result *ExecutionResult
}

func (s *oneShotStream) Next(context.Context) (*ExecutionResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == oneShotDone {
		return nil, io.EOF
	}
	s.state = oneShotDone
	result := s.result
	s.result = nil
	return result, nil
}

func (s *oneShotStream) Close() error {
	s.mu.Lock()
	s.state = oneShotDone
	s.result = nil
	s.mu.Unlock()
	return nil
}
