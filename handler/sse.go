package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/starfederation/datastar-go/datastar"
)

// Stream is a server-sent event writer bound to one request.
type Stream struct {
	ctx context.Context
	sse *datastar.ServerSentEventGenerator
}

// Context is cancelled when the client goes away.
func (s *Stream) Context() context.Context { return s.ctx }

// Send writes one event frame with data encoded as a single JSON line.
// An empty id omits the id field.
func (s *Stream) Send(event, id string, data any) error {
	b, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("encode %s event: %w", event, err)
	}

	var opts []datastar.SSEEventOption
	if id != "" {
		opts = append(opts, datastar.WithSSEEventId(id))
	}
	return s.sse.Send(datastar.EventType(event), []string{string(b)}, opts...)
}

// Signals patches client-side signals, for datastar-driven pages.
func (s *Stream) Signals(v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode signals: %w", err)
	}
	return s.sse.PatchSignals(b)
}

type sseResponse struct {
	fn       func(*Stream) error
	cleanups []func()
}

// SSEOption configures an SSE response.
type SSEOption func(*sseResponse)

// WithSSECleanup registers fn to run once Render returns, whether or not the
// stream was started. Cleanups run in reverse registration order.
func WithSSECleanup(fn func()) SSEOption {
	return func(s *sseResponse) {
		if fn != nil {
			s.cleanups = append(s.cleanups, fn)
		}
	}
}

// SSE returns a Response that keeps the connection open and runs fn until it
// returns. The server write deadline is lifted for the life of the stream.
// A context.Canceled from fn is treated as a normal client disconnect; any
// other error is wrapped in ErrStreamAborted since the status is already
// sent.
func SSE(fn func(*Stream) error, opts ...SSEOption) Response {
	s := sseResponse{fn: fn}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

func (s sseResponse) Render(w http.ResponseWriter, r *http.Request) error {
	for _, fn := range s.cleanups {
		defer fn()
	}

	if _, ok := w.(http.Flusher); !ok {
		return ErrStreamingUnsupported
	}

	// Not every writer supports deadlines; streaming still works without.
	_ = http.NewResponseController(w).SetWriteDeadline(time.Time{})

	stream := &Stream{ctx: r.Context(), sse: datastar.NewSSE(w, r)}
	if err := s.fn(stream); err != nil && !errors.Is(err, context.Canceled) {
		return errors.Join(ErrStreamAborted, err)
	}
	return nil
}
