package notifyclient

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/tracepanic/compyle/pkg/logger"
	notify "github.com/tracepanic/compyle/pkg/notifications"
)

const (
	eventNotification = "notification"
	maxFrameSize      = 64 * 1024
)

// Stream is an open live delivery channel. Notifications arrive on C in the
// order the server wrote them. C is closed when the stream ends; Err then
// reports why.
type Stream struct {
	body   io.ReadCloser
	ch     chan notify.Notification
	log    *slog.Logger
	cancel context.CancelFunc

	mu  sync.Mutex
	err error
}

// Stream opens GET /stream. It returns once the server accepted the
// connection.
func (a *API) Stream(ctx context.Context) (*Stream, error) {
	ctx, cancel := context.WithCancel(ctx)

	resp, err := a.client.R().
		SetContext(ctx).
		SetDoNotParseResponse(true).
		SetHeader("Accept", "text/event-stream").
		Get("/stream")
	if err != nil {
		cancel()
		return nil, errors.Join(ErrRequestFailed, err)
	}

	body := resp.RawBody()
	if resp.StatusCode() != http.StatusOK {
		_ = body.Close()
		cancel()
		if resp.StatusCode() == http.StatusUnauthorized {
			return nil, ErrUnauthorized
		}
		return nil, &ServerError{Status: resp.StatusCode(), Code: http.StatusText(resp.StatusCode())}
	}

	s := &Stream{
		body:   body,
		ch:     make(chan notify.Notification),
		log:    a.log,
		cancel: cancel,
	}
	go s.read(ctx)
	return s, nil
}

func (s *Stream) C() <-chan notify.Notification { return s.ch }

// Err returns the reason the stream ended. It is nil while C is open and
// after a Close.
func (s *Stream) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Close ends the stream.
func (s *Stream) Close() {
	s.cancel()
}

// read owns the stream: whatever ends it, the request context is released
// along with the body.
func (s *Stream) read(ctx context.Context) {
	defer close(s.ch)
	defer s.cancel()
	defer s.body.Close()

	err := readEvents(s.body, func(ev event) error {
		if ev.name != eventNotification {
			return nil
		}
		var n notify.Notification
		if err := json.Unmarshal([]byte(ev.data), &n); err != nil {
			s.log.LogAttrs(ctx, slog.LevelWarn, "skipping malformed notification event",
				logger.NotificationID(ev.id), logger.Error(err))
			return nil
		}
		select {
		case s.ch <- n:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	})

	switch {
	case ctx.Err() != nil:
		err = nil
	case err == nil:
		err = ErrStreamClosed
	}
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
}

type event struct {
	name string
	id   string
	data string
}

// readEvents parses text/event-stream framing and calls fn per dispatched
// event. It returns nil at EOF.
func readEvents(r io.Reader, fn func(event) error) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 4096), maxFrameSize)

	var (
		cur  event
		data []string
	)
	for sc.Scan() {
		line := sc.Text()
		if line == "" {
			if len(data) > 0 {
				cur.data = strings.Join(data, "\n")
				if cur.name == "" {
					cur.name = "message"
				}
				if err := fn(cur); err != nil {
					return err
				}
			}
			cur, data = event{}, data[:0]
			continue
		}
		if strings.HasPrefix(line, ":") {
			continue
		}

		field, value, _ := strings.Cut(line, ":")
		value = strings.TrimPrefix(value, " ")
		switch field {
		case "event":
			cur.name = value
		case "id":
			cur.id = value
		case "data":
			data = append(data, value)
		}
	}
	return sc.Err()
}
