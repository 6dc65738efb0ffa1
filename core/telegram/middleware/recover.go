package middleware

import (
	"fmt"
	"log/slog"
	"runtime/debug"

	"github.com/m3rciful/iskra/core/logger"
	tghelpers "github.com/m3rciful/iskra/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

const maxStack = 4096

// RecoverMiddleware turns a handler panic into an error so one bad update
// cannot stop the bot.
func RecoverMiddleware(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) (err error) {
		defer func() {
			r := recover()
			if r == nil {
				return
			}
			ctx := tghelpers.BuildContext(c)
			stack := debug.Stack()
			if len(stack) > maxStack {
				stack = stack[:maxStack]
			}
			logger.Error(ctx, "tg", "tg.panic",
				slog.String("handler", logger.HandlerFrom(ctx)),
				slog.Any("err", r),
				slog.String("stack", string(stack)),
			)
			err = fmt.Errorf("telegram: handler panic: %v", r)
		}()
		return next(c)
	}
}
