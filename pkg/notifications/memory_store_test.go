package notifications_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tracepanic/compyle/pkg/notifications"
)

func seed(t *testing.T, s notifications.Store, userID string, n int) []notifications.Notification {
	t.Helper()
	out := make([]notifications.Notification, 0, n)
	for i := range n {
		created, err := s.Insert(context.Background(), notifications.Content{
			Title:   fmt.Sprintf("title %d", i),
			Message: fmt.Sprintf("message %d", i),
		}.For(userID))
		require.NoError(t, err)
		out = append(out, created)
	}
	return out
}

func TestMemoryStore_ListScopedOrderedAndCapped(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := notifications.NewMemoryStore()

	mine := seed(t, store, "alice", 60)
	seed(t, store, "bob", 3)

	list, err := store.List(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, list, notifications.ListLimit)

	for _, n := range list {
		assert.Equal(t, "alice", n.UserID)
	}
	for i := 1; i < len(list); i++ {
		assert.True(t, list[i-1].CreatedAt.After(list[i].CreatedAt), "newest first")
	}
	assert.Equal(t, mine[59].ID, list[0].ID)
	assert.Equal(t, notifications.TypeInfo, list[0].Type)
	assert.False(t, list[0].Read)
	assert.Nil(t, list[0].Link)
}

func TestMemoryStore_FrozenClockKeepsInsertionOrder(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	frozen := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	store := notifications.NewMemoryStore(notifications.WithClock(func() time.Time { return frozen }))

	created := seed(t, store, "alice", 5)

	list, err := store.List(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, list, len(created))
	for i, n := range list {
		assert.Equal(t, created[len(created)-1-i].ID, n.ID)
	}
}

func TestMemoryStore_ListEmpty(t *testing.T) {
	t.Parallel()
	list, err := notifications.NewMemoryStore().List(context.Background(), "nobody")
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)
}

func TestMemoryStore_ReadState(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	now := start
	store := notifications.NewMemoryStore(notifications.WithClock(func() time.Time {
		now = now.Add(time.Second)
		return now
	}))
	n := seed(t, store, "alice", 1)[0]

	require.NoError(t, store.MarkRead(ctx, "alice", n.ID))
	require.NoError(t, store.MarkRead(ctx, "alice", n.ID))
	list, _ := store.List(ctx, "alice")
	assert.True(t, list[0].Read)
	assert.True(t, list[0].UpdatedAt.After(list[0].CreatedAt))
	assert.Equal(t, n.CreatedAt, list[0].CreatedAt)

	require.NoError(t, store.MarkUnread(ctx, "alice", n.ID))
	list, _ = store.List(ctx, "alice")
	assert.False(t, list[0].Read)

	require.NoError(t, store.MarkRead(ctx, "alice", "missing"), "unknown id is a no-op")
}

func TestMemoryStore_CrossUserMutationsAreNoOps(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := notifications.NewMemoryStore()
	n := seed(t, store, "alice", 1)[0]

	require.NoError(t, store.MarkRead(ctx, "mallory", n.ID))
	require.NoError(t, store.Delete(ctx, "mallory", n.ID))
	require.NoError(t, store.MarkAllRead(ctx, "mallory"))

	list, err := store.List(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.False(t, list[0].Read)
	assert.Equal(t, n.UpdatedAt, list[0].UpdatedAt)
}

func TestMemoryStore_MarkAllReadAndCount(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := notifications.NewMemoryStore()

	for _, typ := range notifications.Types {
		_, err := store.Insert(ctx, notifications.Content{Title: string(typ), Message: "m", Type: typ}.For("alice"))
		require.NoError(t, err)
	}
	seed(t, store, "bob", 2)

	count, err := store.CountUnread(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 4, count)

	require.NoError(t, store.MarkAllRead(ctx, "alice"))
	require.NoError(t, store.MarkAllRead(ctx, "alice"))

	list, _ := store.List(ctx, "alice")
	require.Len(t, list, 4)
	types := map[notifications.Type]bool{}
	for _, n := range list {
		assert.True(t, n.Read)
		types[n.Type] = true
	}
	assert.Len(t, types, 4)

	count, _ = store.CountUnread(ctx, "alice")
	assert.Zero(t, count)
	count, _ = store.CountUnread(ctx, "bob")
	assert.Equal(t, 2, count)
}

func TestMemoryStore_Delete(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := notifications.NewMemoryStore()
	n := seed(t, store, "alice", 2)

	require.NoError(t, store.Delete(ctx, "alice", n[0].ID))
	require.NoError(t, store.Delete(ctx, "alice", n[0].ID))
	require.NoError(t, store.MarkRead(ctx, "alice", n[0].ID))

	list, _ := store.List(ctx, "alice")
	require.Len(t, list, 1)
	assert.Equal(t, n[1].ID, list[0].ID)
}

func TestMemoryStore_InsertBulk(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("empty batch", func(t *testing.T) {
		t.Parallel()
		out, err := notifications.NewMemoryStore().InsertBulk(ctx, nil)
		require.NoError(t, err)
		assert.NotNil(t, out)
		assert.Empty(t, out)
	})

	t.Run("unknown user rejects the batch", func(t *testing.T) {
		t.Parallel()
		store := notifications.NewMemoryStore(notifications.WithUsers("alice"))
		c := notifications.Content{Title: "t", Message: "m"}
		_, err := store.InsertBulk(ctx, []notifications.NewNotification{c.For("alice"), c.For("ghost")})
		require.Error(t, err)
		assert.ErrorIs(t, err, notifications.ErrStorage)
		assert.ErrorIs(t, err, notifications.ErrUnknownUser)
		assert.Equal(t, "Failed to create notification", notifications.PublicMessage(err))

		list, _ := store.List(ctx, "alice")
		assert.Empty(t, list)
	})

	t.Run("removing a user cascades", func(t *testing.T) {
		t.Parallel()
		store := notifications.NewMemoryStore(notifications.WithUsers("alice", "bob"))
		seed(t, store, "alice", 2)
		store.RemoveUser("alice")

		list, _ := store.List(ctx, "alice")
		assert.Empty(t, list)
		ids, _ := store.ListUserIDs(ctx)
		assert.Equal(t, []string{"bob"}, ids)
	})
}
