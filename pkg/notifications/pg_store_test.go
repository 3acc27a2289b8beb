package notifications_test

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tracepanic/compyle/internal/db"
	"github.com/tracepanic/compyle/pkg/broadcast"
	"github.com/tracepanic/compyle/pkg/logger"
	"github.com/tracepanic/compyle/pkg/notifications"
	"github.com/tracepanic/compyle/pkg/pg"
)

// setupPG connects to PG_CONN_URL, applies migrations and returns a pool.
// Tests using it are skipped when the variable is not set.
func setupPG(t *testing.T) *pgxpool.Pool {
	t.Helper()
	url := os.Getenv("PG_CONN_URL")
	if url == "" {
		t.Skip("PG_CONN_URL not set")
	}

	ctx := context.Background()
	cfg := pg.Config{ConnectionString: url, MaxConns: 4, RetryAttempts: 1, MigrationsTable: "schema_migrations"}
	pool, err := pg.Connect(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, pg.Migrate(ctx, pool, db.Migrations, db.MigrationsDir, cfg, logger.Noop()))
	return pool
}

func createUser(t *testing.T, pool *pgxpool.Pool) string {
	t.Helper()
	id := uuid.NewString()
	_, err := pool.Exec(context.Background(), `INSERT INTO users (id, email) VALUES ($1, $2)`, id, id+"@example.com")
	require.NoError(t, err)
	t.Cleanup(func() {
		_, _ = pool.Exec(context.Background(), `DELETE FROM users WHERE id = $1`, id)
	})
	return id
}

func TestPGStore(t *testing.T) {
	pool := setupPG(t)
	ctx := context.Background()
	store := notifications.NewPGStore(pool)

	alice, bob := createUser(t, pool), createUser(t, pool)

	t.Run("insert and list", func(t *testing.T) {
		n, err := store.Insert(ctx, notifications.Content{Title: "t", Message: "m", Link: notifications.Link("/x")}.For(alice))
		require.NoError(t, err)
		assert.NotEmpty(t, n.ID)
		assert.Equal(t, notifications.TypeInfo, n.Type)
		assert.False(t, n.CreatedAt.IsZero())

		list, err := store.List(ctx, alice)
		require.NoError(t, err)
		require.NotEmpty(t, list)
		assert.Equal(t, n.ID, list[0].ID)

		other, err := store.List(ctx, bob)
		require.NoError(t, err)
		assert.Empty(t, other)
	})

	t.Run("cross user mutations are no-ops", func(t *testing.T) {
		n, err := store.Insert(ctx, notifications.Content{Title: "t", Message: "m"}.For(alice))
		require.NoError(t, err)

		require.NoError(t, store.MarkRead(ctx, bob, n.ID))
		require.NoError(t, store.Delete(ctx, bob, n.ID))

		list, err := store.List(ctx, alice)
		require.NoError(t, err)
		require.Equal(t, n.ID, list[0].ID)
		assert.False(t, list[0].Read)
	})

	t.Run("bulk insert and mark all read", func(t *testing.T) {
		c := notifications.Content{Title: "t", Message: "m", Type: notifications.TypeError}
		out, err := store.InsertBulk(ctx, []notifications.NewNotification{c.For(alice), c.For(bob)})
		require.NoError(t, err)
		assert.Len(t, out, 2)

		require.NoError(t, store.MarkAllRead(ctx, alice))
		count, err := store.CountUnread(ctx, alice)
		require.NoError(t, err)
		assert.Zero(t, count)

		count, err = store.CountUnread(ctx, bob)
		require.NoError(t, err)
		assert.Equal(t, 1, count)
	})

	t.Run("inserts sharing a transaction timestamp list newest first", func(t *testing.T) {
		carol := createUser(t, pool)
		var first, second notifications.Notification
		err := pg.WithTx(ctx, pool, func(ctx context.Context, tx *pg.Tx) error {
			txStore := store.WithTx(tx)
			var err error
			if first, err = txStore.Insert(ctx, notifications.Content{Title: "first", Message: "m"}.For(carol)); err != nil {
				return err
			}
			second, err = txStore.Insert(ctx, notifications.Content{Title: "second", Message: "m"}.For(carol))
			return err
		})
		require.NoError(t, err)
		require.True(t, first.CreatedAt.Equal(second.CreatedAt), "now() is fixed for the transaction")

		list, err := store.List(ctx, carol)
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, second.ID, list[0].ID)
		assert.Equal(t, first.ID, list[1].ID)
	})

	t.Run("unknown user", func(t *testing.T) {
		_, err := store.Insert(ctx, notifications.Content{Title: "t", Message: "m"}.For("ghost-"+uuid.NewString()))
		require.ErrorIs(t, err, notifications.ErrStorage)
		assert.ErrorIs(t, err, notifications.ErrUnknownUser)
	})

	t.Run("send tx publishes after commit only", func(t *testing.T) {
		bus := broadcast.New[notifications.Notification](broadcast.WithLogger(logger.Noop()))
		svc := notifications.NewService(store, store, bus, notifications.WithLogger(logger.Noop()))

		var pushed []string
		_, err := bus.Subscribe(notifications.Topic(alice), func(_ context.Context, msg broadcast.Message[notifications.Notification]) error {
			pushed = append(pushed, msg.Data.ID)
			return nil
		})
		require.NoError(t, err)

		err = pg.WithTx(ctx, pool, func(ctx context.Context, tx *pg.Tx) error {
			_, err := svc.SendTx(ctx, notifications.PGTx(store, tx), notifications.Content{Title: "rolled", Message: "back"}.For(alice))
			require.NoError(t, err)
			return assert.AnError
		})
		require.ErrorIs(t, err, assert.AnError)
		assert.Empty(t, pushed)

		var committed notifications.Notification
		err = pg.WithTx(ctx, pool, func(ctx context.Context, tx *pg.Tx) error {
			committed, err = svc.SendTx(ctx, notifications.PGTx(store, tx), notifications.Content{Title: "kept", Message: "m"}.For(alice))
			return err
		})
		require.NoError(t, err)
		assert.Equal(t, []string{committed.ID}, pushed)

		list, err := store.List(ctx, alice)
		require.NoError(t, err)
		assert.Equal(t, "kept", list[0].Title)
	})
}
