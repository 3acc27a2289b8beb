package notifications

import (
	"log/slog"

	"github.com/tracepanic/compyle/handler"
	notify "github.com/tracepanic/compyle/pkg/notifications"
	"github.com/tracepanic/compyle/pkg/session"
)

type handlers struct {
	svc     *notify.Service
	bus     Subscriber
	streams *Streams
	cfg     Config
	log     *slog.Logger
}

type idRequest struct {
	ID string `path:"id,required"`
}

type unreadCount struct {
	Unread int `json:"unread"`
}

func (h *handlers) list(ctx handler.Context, _ struct{}) handler.Response {
	userID := session.UserID(ctx)

	items, err := h.svc.List(ctx, userID)
	if err != nil {
		return handler.Fail(err)
	}
	unread, err := h.svc.CountUnread(ctx, userID)
	if err != nil {
		return handler.Fail(err)
	}

	if items == nil {
		items = []notify.Notification{}
	}
	return handler.JSON(items, handler.WithJSONMeta(map[string]any{"unread": unread}))
}

func (h *handlers) unreadCount(ctx handler.Context, _ struct{}) handler.Response {
	n, err := h.svc.CountUnread(ctx, session.UserID(ctx))
	if err != nil {
		return handler.Fail(err)
	}
	return handler.JSON(unreadCount{Unread: n})
}

func (h *handlers) markRead(ctx handler.Context, req idRequest) handler.Response {
	return h.empty(h.svc.MarkRead(ctx, session.UserID(ctx), req.ID))
}

func (h *handlers) markUnread(ctx handler.Context, req idRequest) handler.Response {
	return h.empty(h.svc.MarkUnread(ctx, session.UserID(ctx), req.ID))
}

func (h *handlers) markAllRead(ctx handler.Context, _ struct{}) handler.Response {
	return h.empty(h.svc.MarkAllRead(ctx, session.UserID(ctx)))
}

func (h *handlers) delete(ctx handler.Context, req idRequest) handler.Response {
	return h.empty(h.svc.Delete(ctx, session.UserID(ctx), req.ID))
}

func (h *handlers) empty(err error) handler.Response {
	if err != nil {
		return handler.Fail(err)
	}
	return handler.Empty()
}
