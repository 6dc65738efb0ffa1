package router

import (
	"log/slog"
	"time"

	tg "github.com/m3rciful/iskra/core/telegram"

	tele "gopkg.in/telebot.v4"
)

// onText resolves commands first, then reply-keyboard shortcuts, then the
// freeform handler of the sender's state. Unregistered commands are treated as
// freeform text; text nobody expects is skipped.
func (d *dispatcher) onText(c tele.Context) error {
	start := time.Now()
	text := c.Text()

	if name, args, cmd, ok := d.reg.LookupCommand(text); ok {
		return d.runCommand(c, name, args, cmd, start)
	}

	if h, ok := d.reg.Shortcut(text); ok {
		return d.span(c, "shortcut", "shortcut", start).run(h)
	}

	return d.freeform(c, tg.InputText, start)
}

func (d *dispatcher) onMedia(kind tg.InputKind) tele.HandlerFunc {
	return func(c tele.Context) error {
		return d.freeform(c, kind, time.Now())
	}
}

func (d *dispatcher) freeform(c tele.Context, kind tg.InputKind, start time.Time) error {
	state, ok := d.stateKey(c)
	if h, found := d.reg.Freeform(state, kind); ok && found {
		name := "freeform." + state + "." + string(kind)
		return d.span(c, "freeform", name, start, slog.String("state", state)).run(h)
	}
	d.span(c, "skip", "unexpected_"+string(kind), start, slog.String("state", state)).skip()
	return nil
}
