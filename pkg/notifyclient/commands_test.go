package notifyclient_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/tracepanic/compyle/pkg/logger"
	notify "github.com/tracepanic/compyle/pkg/notifications"
	"github.com/tracepanic/compyle/pkg/notifyclient"
)

type MockMutator struct {
	mock.Mock
}

func (m *MockMutator) MarkRead(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockMutator) MarkUnread(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockMutator) MarkAllRead(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockMutator) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func TestCommands_Success(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	server := &MockMutator{}
	server.On("MarkRead", ctx, "n-00").Return(nil).Once()
	server.On("MarkUnread", ctx, "n-00").Return(nil).Once()
	server.On("Delete", ctx, "n-01").Return(nil).Once()
	server.On("MarkAllRead", ctx).Return(nil).Once()

	state := notifyclient.NewState()
	state.Replace(fixtures(3, nil))

	resyncs := 0
	cmds := notifyclient.NewCommands(server, state, func(context.Context) error {
		resyncs++
		return nil
	}, notifyclient.WithCommandsLogger(logger.Noop()))

	require.NoError(t, cmds.MarkRead(ctx, "n-00"))
	n, _ := state.Get("n-00")
	assert.True(t, n.Read)

	require.NoError(t, cmds.MarkUnread(ctx, "n-00"))
	n, _ = state.Get("n-00")
	assert.False(t, n.Read)

	require.NoError(t, cmds.Delete(ctx, "n-01"))
	_, ok := state.Get("n-01")
	assert.False(t, ok)

	require.NoError(t, cmds.MarkAllRead(ctx))
	assert.Zero(t, state.UnreadCount())

	assert.Zero(t, resyncs)
	server.AssertExpectations(t)
}

func TestCommands_FailureCompensatesAndResyncs(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	boom := errors.New("server unavailable")

	tests := []struct {
		name  string
		setup func(m *MockMutator)
		run   func(c *notifyclient.Commands) error
	}{
		{
			name:  "mark read",
			setup: func(m *MockMutator) { m.On("MarkRead", ctx, "n-01").Return(boom) },
			run:   func(c *notifyclient.Commands) error { return c.MarkRead(ctx, "n-01") },
		},
		{
			name:  "mark unread",
			setup: func(m *MockMutator) { m.On("MarkUnread", ctx, "n-00").Return(boom) },
			run:   func(c *notifyclient.Commands) error { return c.MarkUnread(ctx, "n-00") },
		},
		{
			name:  "mark all read",
			setup: func(m *MockMutator) { m.On("MarkAllRead", ctx).Return(boom) },
			run:   func(c *notifyclient.Commands) error { return c.MarkAllRead(ctx) },
		},
		{
			name:  "delete",
			setup: func(m *MockMutator) { m.On("Delete", ctx, "n-02").Return(boom) },
			run:   func(c *notifyclient.Commands) error { return c.Delete(ctx, "n-02") },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			server := &MockMutator{}
			tt.setup(server)

			initial := fixtures(3, func(i int) bool { return i == 0 })
			state := notifyclient.NewState()
			state.Replace(initial)

			resyncs := 0
			cmds := notifyclient.NewCommands(server, state, func(context.Context) error {
				resyncs++
				return nil
			}, notifyclient.WithCommandsLogger(logger.Noop()))

			err := tt.run(cmds)
			require.ErrorIs(t, err, boom)
			assert.Equal(t, 1, resyncs)

			got := state.All()
			want := append([]notify.Notification(nil), initial...)
			assert.ElementsMatch(t, want, got, "state is restored to the pre-command snapshot")
			server.AssertExpectations(t)
		})
	}
}

func TestCommands_ResyncErrorDoesNotMaskCommandError(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	server := &MockMutator{}
	server.On("MarkRead", ctx, "n-00").Return(notifyclient.ErrUnauthorized)

	state := notifyclient.NewState()
	state.Replace(fixtures(1, nil))

	cmds := notifyclient.NewCommands(server, state, func(context.Context) error {
		return errors.New("offline")
	}, notifyclient.WithCommandsLogger(logger.Noop()))

	assert.ErrorIs(t, cmds.MarkRead(ctx, "n-00"), notifyclient.ErrUnauthorized)
	assert.Equal(t, 1, state.UnreadCount())
}
