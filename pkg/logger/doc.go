// Package logger builds *slog.Logger instances with functional options and
// provides attribute constructors so keys stay consistent across packages.
//
// Records pass through a context-aware handler that runs registered
// ContextExtractor callbacks, which is how request ids end up on every log
// line emitted while serving a request:
//
//	log := logger.New(
//	    logger.WithEnvironment(cfg.Env, "notifications"),
//	    logger.WithContextExtractors(requestid.LoggerExtractor()),
//	)
//	log.InfoContext(ctx, "notification sent", logger.UserID(uid), logger.NotificationID(id))
//
// Error and UserID return an empty attribute for zero values, so they can be
// passed without nil checks.
package logger
