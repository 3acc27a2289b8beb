// Package notifications mounts the HTTP surface of the notification system:
// the per-user query and mutation endpoints and the live SSE stream.
package notifications

import (
	"log/slog"

	"github.com/go-chi/chi/v5"

	"github.com/tracepanic/compyle/binder"
	"github.com/tracepanic/compyle/handler"
	"github.com/tracepanic/compyle/pkg/broadcast"
	notify "github.com/tracepanic/compyle/pkg/notifications"
	"github.com/tracepanic/compyle/pkg/session"
)

// Subscriber is the subscribe side of the event bus.
type Subscriber interface {
	Subscribe(topic string, h broadcast.Handler[notify.Notification]) (*broadcast.Subscription[notify.Notification], error)
}

// RouterOptions wires the module. Service, Bus and Session are required.
type RouterOptions struct {
	Service *notify.Service
	Bus     Subscriber
	Session session.Resolver
	// Streams tracks open SSE connections; nil creates a private registry.
	Streams *Streams
	Config  Config
	Logger  *slog.Logger
}

// Router returns the notifications router, meant to be mounted at
// "/notifications":
//
//	GET    /               list the newest notifications with the unread count
//	GET    /unread-count   unread count only
//	GET    /stream         live delivery (text/event-stream)
//	POST   /read-all       mark every notification read
//	POST   /{id}/read      mark one read
//	POST   /{id}/unread    mark one unread
//	DELETE /{id}           delete one
//
// Every route requires an authenticated session.
func Router(opts RouterOptions) chi.Router {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	streams := opts.Streams
	if streams == nil {
		streams = NewStreams()
	}

	h := &handlers{
		svc:     opts.Service,
		bus:     opts.Bus,
		streams: streams,
		cfg:     opts.Config,
		log:     log,
	}
	errs := handler.NewErrorHandler(log, translateError)

	r := chi.NewRouter()
	r.Use(session.Middleware(opts.Session, session.WithLogger(log)))

	r.Get("/", handler.Wrap(h.list, handler.WithErrorHandler[struct{}](errs)))
	r.Get("/unread-count", handler.Wrap(h.unreadCount, handler.WithErrorHandler[struct{}](errs)))
	r.Get("/stream", handler.Wrap(h.stream, handler.WithErrorHandler[struct{}](errs)))
	r.Post("/read-all", handler.Wrap(h.markAllRead, handler.WithErrorHandler[struct{}](errs)))

	byID := []handler.WrapOption[idRequest]{
		handler.WithBinders[idRequest](binder.Path(chi.URLParam)),
		handler.WithErrorHandler[idRequest](errs),
	}
	r.Post("/{id}/read", handler.Wrap(h.markRead, byID...))
	r.Post("/{id}/unread", handler.Wrap(h.markUnread, byID...))
	r.Delete("/{id}", handler.Wrap(h.delete, byID...))

	return r
}
