// Package pg bootstraps PostgreSQL access on top of pgx/v5.
//
// Connect opens a *pgxpool.Pool with retries, Migrate applies goose
// migrations from an fs.FS, and Healthcheck produces a readiness probe.
//
// WithTx owns the transaction lifecycle and exposes a *Tx whose AfterCommit
// hooks run only after a successful commit. Side effects that must not be
// observable for rolled back work, such as pushing a live event, are
// registered there:
//
//	err := pg.WithTx(ctx, pool, func(ctx context.Context, tx *pg.Tx) error {
//	    if err := orders.Create(ctx, tx, order); err != nil {
//	        return err
//	    }
//	    _, err := svc.SendTx(ctx, notifications.PGTx(store, tx), in)
//	    return err
//	})
package pg
