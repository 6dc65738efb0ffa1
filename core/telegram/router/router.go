// Package router binds the registry's dispatch tables to telebot endpoints.
//
// Commands and callbacks are routed without looking at conversation state;
// freeform text and media are routed by the sender's current state key. The
// router never writes shared state and performs no I/O besides logging.
package router

import (
	tg "github.com/m3rciful/iskra/core/telegram"
	"github.com/m3rciful/iskra/core/telegram/middleware"

	tele "gopkg.in/telebot.v4"
)

// StateReader exposes the routing key of a user's conversation state.
type StateReader interface {
	StateKey(userID int64) string
}

// Options customises routing.
type Options struct {
	AdminID int64
	// OnAdminReject runs when a non-admin invokes an admin-only command.
	OnAdminReject tele.HandlerFunc
	Observer      HandlerObserver
}

type dispatcher struct {
	reg      *tg.Registry
	states   StateReader
	admin    middleware.AdminOptions
	observer HandlerObserver
}

var mediaEndpoints = []string{
	tele.OnVideo,
	tele.OnDocument,
	tele.OnAnimation,
	tele.OnVoice,
	tele.OnAudio,
	tele.OnSticker,
	tele.OnVideoNote,
}

// Routes seals reg and returns the telebot routes that dispatch through it.
func Routes(reg *tg.Registry, states StateReader, opts Options) []tg.Route {
	if reg == nil {
		return nil
	}
	reg.Seal()
	d := &dispatcher{
		reg:    reg,
		states: states,
		admin: middleware.AdminOptions{
			AdminID:  opts.AdminID,
			OnReject: opts.OnAdminReject,
		},
		observer: opts.Observer,
	}

	wrap := func(h tele.HandlerFunc) tele.HandlerFunc {
		return middleware.RecoverMiddleware(middleware.LoggerMiddleware(h))
	}

	routes := []tg.Route{
		{Endpoint: tele.OnText, Handler: wrap(d.onText)},
		{Endpoint: tele.OnPhoto, Handler: wrap(d.onMedia(tg.InputPhoto))},
		{Endpoint: tele.OnCallback, Handler: wrap(d.onCallback)},
	}
	media := wrap(d.onMedia(tg.InputMedia))
	for _, ep := range mediaEndpoints {
		routes = append(routes, tg.Route{Endpoint: ep, Handler: media})
	}
	return routes
}

func (d *dispatcher) stateKey(c tele.Context) (string, bool) {
	user := c.Sender()
	if user == nil || d.states == nil {
		return "", false
	}
	return d.states.StateKey(user.ID), true
}
