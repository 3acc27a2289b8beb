package notifications

import (
	"log/slog"
	"time"

	"github.com/tracepanic/compyle/handler"
	"github.com/tracepanic/compyle/pkg/broadcast"
	"github.com/tracepanic/compyle/pkg/logger"
	notify "github.com/tracepanic/compyle/pkg/notifications"
	"github.com/tracepanic/compyle/pkg/session"
)

// SSE event names.
const (
	EventNotification = "notification"
	EventPing         = "ping"
)

// streamSignals is patched once on open so datastar pages can render the
// badge without a separate request.
type streamSignals struct {
	Unread int `json:"unread"`
}

func (h *handlers) stream(ctx handler.Context, _ struct{}) handler.Response {
	userID := session.UserID(ctx)

	// Registration happens before any header is written so refusals still
	// reach the client as a status code.
	streamCtx, release, err := h.streams.track(ctx.Request().Context())
	if err != nil {
		return handler.Fail(err)
	}
	queue := broadcast.NewQueue[notify.Notification](h.cfg.StreamBuffer)
	sub, err := h.bus.Subscribe(notify.Topic(userID), queue.Handle)
	if err != nil {
		release()
		return handler.Fail(err)
	}

	return handler.SSE(func(s *handler.Stream) error {
		log := h.log.With(logger.UserID(userID), logger.Component("stream"))
		log.LogAttrs(streamCtx, slog.LevelDebug, "stream opened")
		defer log.LogAttrs(streamCtx, slog.LevelDebug, "stream closed")

		if n, err := h.svc.CountUnread(streamCtx, userID); err != nil {
			log.LogAttrs(streamCtx, slog.LevelWarn, "failed to load unread count", logger.Error(err))
		} else if err := s.Signals(streamSignals{Unread: n}); err != nil {
			return err
		}

		var heartbeat <-chan time.Time
		if h.cfg.StreamHeartbeat > 0 {
			ticker := time.NewTicker(h.cfg.StreamHeartbeat)
			defer ticker.Stop()
			heartbeat = ticker.C
		}

		for {
			select {
			case <-streamCtx.Done():
				return nil
			case <-sub.Done():
				return nil
			case <-queue.Overflow():
				log.LogAttrs(streamCtx, slog.LevelWarn, "slow stream consumer disconnected")
				return nil
			case msg := <-queue.C():
				if err := s.Send(EventNotification, msg.Data.ID, msg.Data); err != nil {
					return err
				}
			case <-heartbeat:
				if err := s.Send(EventPing, "", struct{}{}); err != nil {
					return err
				}
			}
		}
	}, handler.WithSSECleanup(release), handler.WithSSECleanup(sub.Close))
}
