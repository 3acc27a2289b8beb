package notifyclient

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tracepanic/compyle/pkg/logger"
	notify "github.com/tracepanic/compyle/pkg/notifications"
)

func TestReadEvents(t *testing.T) {
	t.Parallel()

	input := strings.Join([]string{
		": comment",
		"event: datastar-patch-signals",
		"data: signals {\"unread\":2}",
		"",
		"event: notification",
		"id: n-1",
		`data: {"id":"n-1"}`,
		"",
		"data: first",
		"data:second",
		"",
		"event: ping",
		"",
		"event: notification",
		"id: n-2",
		`data: {"id":"n-2"}`,
		"",
	}, "\n")

	var got []event
	require.NoError(t, readEvents(strings.NewReader(input), func(ev event) error {
		got = append(got, ev)
		return nil
	}))

	assert.Equal(t, []event{
		{name: "datastar-patch-signals", data: `signals {"unread":2}`},
		{name: "notification", id: "n-1", data: `{"id":"n-1"}`},
		{name: "message", data: "first\nsecond"},
		{name: "notification", id: "n-2", data: `{"id":"n-2"}`},
	}, got)
}

func TestReadEventsStopsOnCallbackError(t *testing.T) {
	t.Parallel()

	stop := errors.New("stop")
	calls := 0
	err := readEvents(strings.NewReader("data: a\n\ndata: b\n\n"), func(event) error {
		calls++
		return stop
	})
	assert.ErrorIs(t, err, stop)
	assert.Equal(t, 1, calls)
}

func TestStreamReleasesContextWhenServerEnds(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	body := `event: notification
id: n-1
data: {"id":"n-1","title":"hi"}

`
	s := &Stream{
		body:   io.NopCloser(strings.NewReader(body)),
		ch:     make(chan notify.Notification),
		log:    logger.Noop(),
		cancel: cancel,
	}
	go s.read(ctx)

	var got []string
	for n := range s.C() {
		got = append(got, n.ID)
	}

	assert.Equal(t, []string{"n-1"}, got)
	assert.ErrorIs(t, s.Err(), ErrStreamClosed)
	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		t.Fatal("request context still live after the stream ended")
	}
}
