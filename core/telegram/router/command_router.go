package router

import (
	"log/slog"
	"time"

	"github.com/m3rciful/iskra/core/telegram/commands"

	tele "gopkg.in/telebot.v4"
)

const argsKey = "cmd_args"

// Args returns the text following the command name.
func Args(c tele.Context) string {
	if v, ok := c.Get(argsKey).(string); ok {
		return v
	}
	return ""
}

func (d *dispatcher) runCommand(c tele.Context, name, args string, cmd commands.Command, start time.Time) error {
	c.Set(argsKey, args)
	handler := handlerName("command", name)
	if cmd.AdminOnly && !d.admin.IsAdmin(c) {
		s := d.span(c, "command", handler, start, slog.String("reason", "not_admin"))
		if d.admin.OnReject == nil {
			s.skip()
			return nil
		}
		return s.run(d.admin.OnReject)
	}
	return d.span(c, "command", handler, start).run(cmd.Handler)
}
