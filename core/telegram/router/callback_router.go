package router

import (
	"log/slog"
	"time"

	"github.com/m3rciful/iskra/core/logger"
	"github.com/m3rciful/iskra/core/telegram/callbacks"

	tele "gopkg.in/telebot.v4"
)

// onCallback splits the data once on ':' and hands the untouched remainder to
// the prefix handler through callbacks.Payload. Unknown prefixes go to the
// registry fallback, or are logged and dropped.
func (d *dispatcher) onCallback(c tele.Context) error {
	start := time.Now()
	if c.Callback() == nil {
		return nil
	}

	prefix, payload := callbacks.Split(callbacks.Data(c))
	callbacks.Store(c, prefix, payload)
	cb := slog.String("cb_prefix", logger.SanitizeLimit(prefix, 64))

	if h, ok := d.reg.Callback(prefix); ok {
		return d.span(c, "callback", handlerName("callback", prefix), start, cb).run(h)
	}
	notFound := slog.String("reason", "not_found")
	if fallback := d.reg.CallbackNotFound(); fallback != nil {
		return d.span(c, "callback", "callback.fallback", start, cb, notFound).run(fallback)
	}
	d.span(c, "skip", "callback.unknown", start, cb, notFound).skip()
	return nil
}
