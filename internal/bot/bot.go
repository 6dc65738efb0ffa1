// Package bot implements the conversation flows of the dating bot: onboarding,
// profile authoring, filters, browsing and moderation. Handlers are bound to
// a core/telegram Registry; each one reads the session, releases it, talks to
// storage and the match engine, then writes the next state.
package bot

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/m3rciful/iskra/core/logger"
	tg "github.com/m3rciful/iskra/core/telegram"
	"github.com/m3rciful/iskra/core/telegram/helpers"
	"github.com/m3rciful/iskra/core/telegram/sender"
	"github.com/m3rciful/iskra/internal/candidates"
	"github.com/m3rciful/iskra/internal/config"
	"github.com/m3rciful/iskra/internal/domain"
	"github.com/m3rciful/iskra/internal/i18n"
	"github.com/m3rciful/iskra/internal/matching"
	"github.com/m3rciful/iskra/internal/session"

	tele "gopkg.in/telebot.v4"
)

// Outbox delivers rendered messages. *sender.Outbox satisfies it.
type Outbox interface {
	Send(ctx context.Context, to int64, msg sender.Message) error
	Ack(ctx context.Context, c tele.Context, text string) error
}

// Deps are the collaborators of the flows.
type Deps struct {
	Sessions *session.Store
	Repos    domain.Repositories
	Engine   *matching.Engine
	Selector *candidates.Selector
	Outbox   Outbox
	Text     i18n.Localizer
	Dating   config.DatingConfig
	// AdminID is the moderator chat; zero disables moderation delivery.
	AdminID int64
	Now     func() time.Time
}

// view renders texts and keyboards.
type view struct {
	text i18n.Localizer
}

// Bot owns the handlers.
type Bot struct {
	view
	sessions *session.Store
	repos    domain.Repositories
	engine   *matching.Engine
	selector *candidates.Selector
	out      Outbox
	dating   config.DatingConfig
	adminID  int64
	now      func() time.Time
}

// New wires a Bot. Now defaults to time.Now.
func New(d Deps) *Bot {
	now := d.Now
	if now == nil {
		now = time.Now
	}
	return &Bot{
		view:     view{text: d.Text},
		sessions: d.Sessions,
		repos:    d.Repos,
		engine:   d.Engine,
		selector: d.Selector,
		out:      d.Outbox,
		dating:   d.Dating,
		adminID:  d.AdminID,
		now:      now,
	}
}

// Register binds every command, shortcut, callback and freeform handler.
func (b *Bot) Register(reg *tg.Registry) error {
	steps := []func(*tg.Registry) error{
		b.registerMenu,
		b.registerOnboarding,
		b.registerProfile,
		b.registerFilters,
		b.registerSearch,
		b.registerModeration,
	}
	for _, step := range steps {
		if err := step(reg); err != nil {
			return err
		}
	}
	return reg.SetCallbackNotFound(b.onExpiredButton)
}

// acked answers the callback query after h returns so the client stops its
// spinner even when h fails.
func (b *Bot) acked(h tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		err := h(c)
		if ackErr := b.out.Ack(helpers.BuildContext(c), c, ""); ackErr != nil && err == nil {
			logger.Warn(helpers.BuildContext(c), "tg", "callback.ack",
				slog.String("status", "fail"),
				slog.String("err", ackErr.Error()),
			)
		}
		return err
	}
}

func (b *Bot) onExpiredButton(c tele.Context) error {
	return b.out.Ack(helpers.BuildContext(c), c, b.text.T("errors.expired_button"))
}

func userID(c tele.Context) int64 {
	if u := c.Sender(); u != nil {
		return u.ID
	}
	return 0
}

func (b *Bot) send(ctx context.Context, to int64, msg sender.Message) error {
	return b.out.Send(ctx, to, msg)
}

func (b *Bot) say(ctx context.Context, to int64, key string, args ...any) error {
	return b.send(ctx, to, sender.Message{Text: b.text.T(key, args...)})
}

// fail reports an unexpected error to the user and hands it to the router
// summary.
func (b *Bot) fail(ctx context.Context, to int64, err error) error {
	if sendErr := b.say(ctx, to, "errors.generic"); sendErr != nil {
		return errors.Join(err, sendErr)
	}
	return err
}

// expired resets the session after its scratch data went missing.
func (b *Bot) expired(ctx context.Context, to int64) error {
	b.sessions.Reset(to)
	logger.Info(ctx, "session", "session.expired", slog.Int64("actor_id", to))
	return b.say(ctx, to, "errors.session_expired")
}

// registeredUser loads the account of the sender. ok is false, and the user
// has been told, when there is none.
func (b *Bot) registeredUser(ctx context.Context, id int64) (domain.User, bool, error) {
	u, err := b.repos.Users.Find(ctx, id)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return domain.User{}, false, b.say(ctx, id, "search.not_registered")
	case err != nil:
		return domain.User{}, false, b.fail(ctx, id, err)
	}
	return u, true, nil
}

func (b *Bot) ageFloor() int   { return b.dating.AgeFloor }
func (b *Bot) ageCeiling() int { return b.dating.AgeCeiling }
