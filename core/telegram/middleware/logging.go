package middleware

import (
	"log/slog"
	"sync"
	"time"

	"github.com/m3rciful/iskra/core/logger"
	"github.com/m3rciful/iskra/core/telegram/callbacks"
	tghelpers "github.com/m3rciful/iskra/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

// seenUpdates remembers update ids for a short while so an update that
// passes the middleware twice is logged once.
type seenUpdates struct {
	mu    sync.Mutex
	ttl   time.Duration
	at    map[int]time.Time
	swept time.Time
}

var received = &seenUpdates{ttl: 10 * time.Second, at: map[int]time.Time{}}

// first reports whether id is new and records it.
func (s *seenUpdates) first(id int, now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if now.Sub(s.swept) > s.ttl {
		for k, t := range s.at {
			if now.Sub(t) > s.ttl {
				delete(s.at, k)
			}
		}
		s.swept = now
	}
	if _, ok := s.at[id]; ok {
		return false
	}
	s.at[id] = now
	return true
}

// LoggerMiddleware attaches the request context to every update and logs its
// receipt at debug level.
func LoggerMiddleware(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		ctx := tghelpers.BuildContext(c)
		c.Set("update_start", time.Now())

		upd := c.Update()
		if logger.ShouldSampleDebug() && received.first(upd.ID, time.Now()) {
			attrs := []slog.Attr{slog.String("kind", UpdateKind(upd))}
			if u := c.Sender(); u != nil && u.Username != "" {
				attrs = append(attrs, slog.String("username", logger.SanitizeLimit(u.Username, 64)))
			}
			switch {
			case upd.Callback != nil:
				prefix, payload := callbacks.Split(callbacks.Data(c))
				if prefix != "" {
					attrs = append(attrs, slog.String("cb_prefix", logger.SanitizeLimit(prefix, 64)))
				}
				if payload != nil {
					attrs = append(attrs, slog.String("payload", logger.SanitizeLimit(*payload, 128)))
				}
			case upd.Message != nil:
				// Free text may be private; only commands are logged.
				if t := c.Text(); len(t) > 0 && t[0] == '/' {
					attrs = append(attrs, slog.String("payload", logger.SanitizeLimit(t, 64)))
				}
			}
			logger.LogEvent(ctx, logger.Component("tg"), slog.LevelDebug, "update.received", attrs...)
		}
		return next(c)
	}
}
