package broadcast_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tracepanic/compyle/pkg/broadcast"
	"github.com/tracepanic/compyle/pkg/logger"
)

func newBus() *broadcast.Bus[string] {
	return broadcast.New[string](broadcast.WithLogger(logger.Noop()))
}

func TestBus_PublishDeliversInSubscriptionOrder(t *testing.T) {
	t.Parallel()
	bus := newBus()
	ctx := context.Background()

	var got []string
	for _, name := range []string{"a", "b", "c"} {
		_, err := bus.Subscribe("notification:u1", func(_ context.Context, msg broadcast.Message[string]) error {
			got = append(got, name+":"+msg.Data)
			return nil
		})
		require.NoError(t, err)
	}

	require.NoError(t, bus.Publish(ctx, "notification:u1", "hello"))
	assert.Equal(t, []string{"a:hello", "b:hello", "c:hello"}, got)
}

func TestBus_TopicsAreIsolated(t *testing.T) {
	t.Parallel()
	bus := newBus()

	var u1, u2 atomic.Int32
	_, err := bus.Subscribe("notification:u1", func(context.Context, broadcast.Message[string]) error {
		u1.Add(1)
		return nil
	})
	require.NoError(t, err)
	_, err = bus.Subscribe("notification:u2", func(context.Context, broadcast.Message[string]) error {
		u2.Add(1)
		return nil
	})
	require.NoError(t, err)

	require.NoError(t, bus.Publish(context.Background(), "notification:u1", "x"))
	require.NoError(t, bus.Publish(context.Background(), "notification:nobody", "x"))

	assert.Equal(t, int32(1), u1.Load())
	assert.Equal(t, int32(0), u2.Load())
}

func TestBus_FailingSubscriberDoesNotBlockOthers(t *testing.T) {
	t.Parallel()
	bus := newBus()
	boom := errors.New("write failed")

	var delivered atomic.Int32
	_, err := bus.Subscribe("t", func(context.Context, broadcast.Message[string]) error { return boom })
	require.NoError(t, err)
	_, err = bus.Subscribe("t", func(context.Context, broadcast.Message[string]) error { panic("bad handler") })
	require.NoError(t, err)
	_, err = bus.Subscribe("t", func(context.Context, broadcast.Message[string]) error {
		delivered.Add(1)
		return nil
	})
	require.NoError(t, err)

	err = bus.Publish(context.Background(), "t", "payload")
	require.Error(t, err)
	assert.ErrorIs(t, err, broadcast.ErrDeliveryFailed)
	assert.ErrorIs(t, err, boom)
	assert.ErrorIs(t, err, broadcast.ErrHandlerPanic)
	assert.Equal(t, int32(1), delivered.Load())
}

func TestBus_Unsubscribe(t *testing.T) {
	t.Parallel()
	bus := newBus()

	var calls atomic.Int32
	sub, err := bus.Subscribe("t", func(context.Context, broadcast.Message[string]) error {
		calls.Add(1)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, bus.SubscriberCount("t"))
	assert.Equal(t, []string{"t"}, bus.Topics())

	sub.Close()
	sub.Close()
	bus.Unsubscribe(nil)

	select {
	case <-sub.Done():
	default:
		t.Fatal("done channel must be closed after unsubscribe")
	}

	require.NoError(t, bus.Publish(context.Background(), "t", "after"))
	assert.Equal(t, int32(0), calls.Load())
	assert.Equal(t, 0, bus.SubscriberCount("t"))
	assert.Empty(t, bus.Topics())
}

func TestBus_UnsubscribeWaitsForInFlightDelivery(t *testing.T) {
	t.Parallel()
	bus := newBus()

	entered := make(chan struct{})
	release := make(chan struct{})
	var running atomic.Bool

	sub, err := bus.Subscribe("t", func(context.Context, broadcast.Message[string]) error {
		running.Store(true)
		close(entered)
		<-release
		running.Store(false)
		return nil
	})
	require.NoError(t, err)

	go func() { _ = bus.Publish(context.Background(), "t", "slow") }()
	<-entered

	unsubscribed := make(chan struct{})
	go func() {
		bus.Unsubscribe(sub)
		close(unsubscribed)
	}()

	select {
	case <-unsubscribed:
		t.Fatal("unsubscribe returned while handler was running")
	case <-time.After(50 * time.Millisecond):
	}

	close(release)
	<-unsubscribed
	assert.False(t, running.Load())
}

func TestBus_ConcurrentSubscribePublishUnsubscribe(t *testing.T) {
	t.Parallel()
	bus := newBus()
	ctx := context.Background()

	var wg sync.WaitGroup
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 50 {
				var closed atomic.Bool
				sub, err := bus.Subscribe("t", func(context.Context, broadcast.Message[string]) error {
					if closed.Load() {
						t.Error("handler invoked after unsubscribe")
					}
					return nil
				})
				if err != nil {
					t.Error(err)
					return
				}
				_ = bus.Publish(ctx, "t", "m")
				bus.Unsubscribe(sub)
				closed.Store(true)
			}
		}()
	}
	for range 5 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 200 {
				_ = bus.Publish(ctx, "t", "m")
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 0, bus.SubscriberCount("t"))
}

func TestBus_Close(t *testing.T) {
	t.Parallel()
	bus := newBus()

	sub, err := bus.Subscribe("t", func(context.Context, broadcast.Message[string]) error { return nil })
	require.NoError(t, err)

	require.NoError(t, bus.Close())
	require.NoError(t, bus.Close())

	<-sub.Done()
	assert.ErrorIs(t, bus.Publish(context.Background(), "t", "x"), broadcast.ErrBusClosed)
	_, err = bus.Subscribe("t", func(context.Context, broadcast.Message[string]) error { return nil })
	assert.ErrorIs(t, err, broadcast.ErrBusClosed)
	sub.Close()
}

func TestBus_SubscribeValidation(t *testing.T) {
	t.Parallel()
	bus := newBus()

	_, err := bus.Subscribe("", func(context.Context, broadcast.Message[string]) error { return nil })
	assert.ErrorIs(t, err, broadcast.ErrEmptyTopic)
	_, err = bus.Subscribe("t", nil)
	assert.ErrorIs(t, err, broadcast.ErrNilHandler)
}

func TestQueue(t *testing.T) {
	t.Parallel()
	bus := newBus()
	q := broadcast.NewQueue[string](2)

	sub, err := bus.Subscribe("t", q.Handle)
	require.NoError(t, err)
	defer sub.Close()

	require.NoError(t, bus.Publish(context.Background(), "t", "1"))
	require.NoError(t, bus.Publish(context.Background(), "t", "2"))

	select {
	case <-q.Overflow():
		t.Fatal("queue must not overflow within capacity")
	default:
	}

	err = bus.Publish(context.Background(), "t", "3")
	assert.ErrorIs(t, err, broadcast.ErrSlowConsumer)
	<-q.Overflow()

	assert.Equal(t, "1", (<-q.C()).Data)
	assert.Equal(t, "2", (<-q.C()).Data)
}
