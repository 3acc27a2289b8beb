package pg

import (
	"context"
	"errors"
	"sync"

	"github.com/jackc/pgx/v5"
)

// TxBeginner is satisfied by *pgxpool.Pool and *pgx.Conn.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Tx is a pgx transaction that collects callbacks to run once the
// transaction has committed. Callbacks registered on a transaction that
// rolls back are discarded.
type Tx struct {
	pgx.Tx

	mu    sync.Mutex
	hooks []func(context.Context)
}

// NewTx wraps an already started transaction. The caller stays responsible
// for Commit and Rollback; use Commit on the returned value so the hooks run.
func NewTx(tx pgx.Tx) *Tx {
	return &Tx{Tx: tx}
}

// AfterCommit registers fn to run after a successful commit, in registration
// order.
func (t *Tx) AfterCommit(fn func(context.Context)) {
	if fn == nil {
		return
	}
	t.mu.Lock()
	t.hooks = append(t.hooks, fn)
	t.mu.Unlock()
}

// Commit commits the underlying transaction and then runs the registered
// hooks. Hooks are dropped when the commit fails.
func (t *Tx) Commit(ctx context.Context) error {
	if err := t.Tx.Commit(ctx); err != nil {
		t.discard()
		return errors.Join(ErrCommitTx, err)
	}

	t.mu.Lock()
	hooks := t.hooks
	t.hooks = nil
	t.mu.Unlock()

	for _, fn := range hooks {
		fn(ctx)
	}
	return nil
}

// Rollback aborts the transaction and drops the registered hooks.
func (t *Tx) Rollback(ctx context.Context) error {
	t.discard()
	return t.Tx.Rollback(ctx)
}

func (t *Tx) discard() {
	t.mu.Lock()
	t.hooks = nil
	t.mu.Unlock()
}

// WithTx runs fn inside a transaction. It commits when fn returns nil and
// rolls back on error or panic. After-commit hooks registered by fn run only
// when the commit succeeds.
func WithTx(ctx context.Context, db TxBeginner, fn func(ctx context.Context, tx *Tx) error) (err error) {
	raw, err := db.Begin(ctx)
	if err != nil {
		return errors.Join(ErrBeginTx, err)
	}
	tx := NewTx(raw)

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback(context.WithoutCancel(ctx))
			panic(p)
		}
	}()

	if err := fn(ctx, tx); err != nil {
		if rbErr := tx.Rollback(context.WithoutCancel(ctx)); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			return errors.Join(err, rbErr)
		}
		return err
	}

	return tx.Commit(ctx)
}
