package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/tracepanic/compyle/pkg/logger"
)

// NewErrorHandler logs err and answers with a JSON error envelope. Client
// errors are logged at warn level, server errors at error level. translate,
// when given, maps domain errors to HTTP errors first. Errors wrapping
// ErrStreamAborted are only logged: the stream already owns the response.
func NewErrorHandler(log *slog.Logger, translate func(error) error) ErrorHandler {
	if log == nil {
		log = slog.Default()
	}
	return func(ctx Context, err error) {
		if translate != nil {
			err = translate(err)
		}

		r := ctx.Request()
		if errors.Is(err, ErrStreamAborted) {
			log.LogAttrs(r.Context(), slog.LevelWarn, "stream aborted",
				logger.Error(err),
				slog.String("path", r.URL.Path),
				logger.Component("http"),
			)
			return
		}

		status, _ := errorDetail(err)
		level := slog.LevelError
		if status < http.StatusInternalServerError {
			level = slog.LevelWarn
		}

		log.LogAttrs(r.Context(), level, "request failed",
			logger.Error(err),
			slog.Int("status_code", status),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			logger.Component("http"),
		)

		if renderErr := JSONError(err).Render(ctx.ResponseWriter(), r); renderErr != nil {
			log.LogAttrs(r.Context(), slog.LevelError, "failed to render error response", logger.Error(renderErr))
		}
	}
}
