package notifications

import (
	"context"
	"errors"
	"sync"
)

// ErrShuttingDown is returned when a stream opens after CloseAll.
var ErrShuttingDown = errors.New("notification streams are shutting down")

// Streams tracks open SSE connections so shutdown can end them. Long-lived
// streams would otherwise hold http.Server.Shutdown until its deadline.
type Streams struct {
	mu     sync.Mutex
	nextID uint64
	open   map[uint64]context.CancelFunc
	closed bool
}

func NewStreams() *Streams {
	return &Streams{open: make(map[uint64]context.CancelFunc)}
}

// track derives a context that CloseAll cancels. release must be called when
// the stream ends.
func (s *Streams) track(parent context.Context) (context.Context, func(), error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, nil, ErrShuttingDown
	}

	ctx, cancel := context.WithCancel(parent)
	id := s.nextID
	s.nextID++
	s.open[id] = cancel

	release := func() {
		s.mu.Lock()
		delete(s.open, id)
		s.mu.Unlock()
		cancel()
	}
	return ctx, release, nil
}

// Len reports the number of open streams.
func (s *Streams) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.open)
}

// CloseAll ends every open stream and refuses new ones.
func (s *Streams) CloseAll() {
	s.mu.Lock()
	s.closed = true
	open := s.open
	s.open = make(map[uint64]context.CancelFunc)
	s.mu.Unlock()

	for _, cancel := range open {
		cancel()
	}
}
