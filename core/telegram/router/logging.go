package router

import (
	"errors"
	"log/slog"
	"reflect"
	"strings"
	"time"

	"github.com/m3rciful/iskra/core/logger"
	tghelpers "github.com/m3rciful/iskra/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

// HandlerObserver receives one observation per dispatched handler.
type HandlerObserver interface {
	ObserveHandler(route, handler string, took time.Duration, err error)
}

// span is one routing decision; it ends in exactly one handler.handled line.
type span struct {
	d       *dispatcher
	c       tele.Context
	route   string
	handler string
	start   time.Time
	attrs   []slog.Attr
}

func (d *dispatcher) span(c tele.Context, route, handler string, start time.Time, attrs ...slog.Attr) *span {
	return &span{d: d, c: c, route: route, handler: handler, start: start, attrs: attrs}
}

// run calls h under the span's handler name and records the result.
func (s *span) run(h tele.HandlerFunc) error {
	tghelpers.WithHandler(s.c, s.handler)
	err := h(s.c)
	s.end("", err)
	return err
}

// skip records that nothing handled the update.
func (s *span) skip() {
	s.end("skip", nil)
}

func (s *span) end(status string, err error) {
	ctx := tghelpers.WithHandler(s.c, s.handler)
	took := time.Since(s.start)
	if s.d.observer != nil && status != "skip" {
		s.d.observer.ObserveHandler(s.route, s.handler, took, err)
	}

	outcome := "ok"
	if err != nil {
		outcome = "fail"
	}
	if status == "" {
		status = outcome
	}
	level := slog.LevelInfo
	if status == "skip" {
		level = slog.LevelDebug
	}
	attrs := append([]slog.Attr{
		slog.String("status", status),
		slog.String("outcome", outcome),
		slog.String("op", s.route),
		slog.Duration("duration", took),
	}, s.attrs...)
	if err != nil {
		attrs = append(attrs,
			slog.String("err", logger.SanitizeLimit(err.Error(), 256)),
			slog.String("err_code", errorCode(err)),
		)
	}
	logger.LogEvent(ctx, logger.Component("tg"), level, "handler.handled", attrs...)
}

// handlerName turns a command or prefix into a log-friendly name.
func handlerName(kind, name string) string {
	name = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(name), "/"))
	if name == "" {
		name = "unknown"
	}
	return kind + "." + strings.ReplaceAll(name, " ", "_")
}

// errorCode prefers a Code() method anywhere in the chain and falls back to
// the dynamic type name of err.
func errorCode(err error) string {
	upper := func(s string) string {
		return strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(s), " ", "_"))
	}
	var coded interface{ Code() string }
	if errors.As(err, &coded) {
		if code := upper(coded.Code()); code != "" {
			return code
		}
	}
	t := reflect.TypeOf(err)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil || t.Name() == "" {
		return "UNKNOWN_ERROR"
	}
	return upper(t.Name())
}
