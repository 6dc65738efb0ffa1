package bot

import (
	"context"
	"errors"
	"log/slog"

	"github.com/m3rciful/iskra/core/logger"
	tg "github.com/m3rciful/iskra/core/telegram"
	"github.com/m3rciful/iskra/core/telegram/callbacks"
	"github.com/m3rciful/iskra/core/telegram/commands"
	"github.com/m3rciful/iskra/core/telegram/helpers"
	"github.com/m3rciful/iskra/core/telegram/sender"
	"github.com/m3rciful/iskra/internal/actions"
	"github.com/m3rciful/iskra/internal/domain"
	"github.com/m3rciful/iskra/internal/input"
	"github.com/m3rciful/iskra/internal/session"

	tele "gopkg.in/telebot.v4"
)

var birthdateState = session.Onboarding{Step: session.AwaitingBirthdate}

func (b *Bot) registerOnboarding(reg *tg.Registry) error {
	if err := reg.RegisterCommand("start", commands.Command{Handler: b.onStart, Description: "Start"}); err != nil {
		return err
	}
	if err := reg.RegisterCallback(actions.PrefixOnboarding, b.acked(b.onOnboardingCallback)); err != nil {
		return err
	}
	return reg.RegisterFreeform(birthdateState.Key(), tg.InputText, b.onBirthdate)
}

// onStart greets known users and shows the intro to everyone else. It always
// abandons the current flow.
func (b *Bot) onStart(c tele.Context) error {
	ctx := helpers.BuildContext(c)
	uid := userID(c)
	b.sessions.Reset(uid)

	u, err := b.repos.Users.Find(ctx, uid)
	switch {
	case err == nil:
		p, _ := b.repos.Profiles.Find(ctx, uid)
		return b.send(ctx, uid, sender.Message{
			Text:   b.text.T("onboarding.welcome_back", displayName(u, p)),
			Markup: b.menuKeyboard(),
		})
	case !errors.Is(err, domain.ErrNotFound):
		return b.fail(ctx, uid, err)
	}
	return b.showIntro(ctx, uid)
}

func (b *Bot) showIntro(ctx context.Context, uid int64) error {
	return b.send(ctx, uid, sender.Message{Text: b.text.T("onboarding.intro"), Markup: b.introKeyboard()})
}

func (b *Bot) onOnboardingCallback(c tele.Context) error {
	ctx := helpers.BuildContext(c)
	uid := userID(c)
	act, err := actions.ParseOnboarding(callbacks.Payload(c))
	if err != nil {
		return err
	}
	switch act.Kind {
	case actions.OnboardingLearn:
		return b.send(ctx, uid, sender.Message{Text: b.text.T("onboarding.learn_more"), Markup: b.learnKeyboard()})
	case actions.OnboardingBack:
		return b.showIntro(ctx, uid)
	case actions.OnboardingCreate:
		return b.beginRegistration(ctx, c.Sender())
	case actions.OnboardingGender:
		return b.completeRegistration(ctx, c.Sender(), act.Gender)
	}
	return nil
}

func (b *Bot) beginRegistration(ctx context.Context, from *tele.User) error {
	uid := from.ID
	if _, err := b.repos.Users.Find(ctx, uid); err == nil {
		return b.send(ctx, uid, sender.Message{
			Text:   b.text.T("onboarding.welcome_back", senderName(from)),
			Markup: b.menuKeyboard(),
		})
	}
	if from.Username == "" {
		return b.say(ctx, uid, "onboarding.username_required")
	}
	b.sessions.Update(uid, func(s *session.Session) {
		s.State = birthdateState
		s.Onboarding = &session.OnboardingScratch{}
	})
	return b.say(ctx, uid, "onboarding.birthdate")
}

func (b *Bot) onBirthdate(c tele.Context) error {
	ctx := helpers.BuildContext(c)
	uid := userID(c)
	birth, age, err := input.ParseBirthdate(c.Text(), b.now())
	if err != nil {
		return b.say(ctx, uid, "onboarding.birthdate_invalid")
	}
	if age < b.dating.MinAge {
		b.sessions.Reset(uid)
		logger.Info(ctx, "onboarding", "onboarding.underage",
			slog.Int64("actor_id", uid),
			slog.Int("age", age),
		)
		return b.say(ctx, uid, "onboarding.underage", b.dating.MinAge)
	}
	b.sessions.Update(uid, func(s *session.Session) {
		s.EnsureOnboarding().BirthDate = &birth
		s.State = session.Onboarding{Step: session.AwaitingGender}
	})
	return b.send(ctx, uid, sender.Message{Text: b.text.T("onboarding.gender"), Markup: b.genderKeyboard()})
}

func (b *Bot) completeRegistration(ctx context.Context, from *tele.User, gender domain.Gender) error {
	uid := from.ID
	scratch := session.UpdateReturning(b.sessions, uid, func(s *session.Session) *session.OnboardingScratch {
		if s.Onboarding == nil || s.Onboarding.BirthDate == nil {
			return nil
		}
		s.Onboarding.Gender = &gender
		out := *s.Onboarding
		return &out
	})
	if scratch == nil {
		return b.expired(ctx, uid)
	}

	u := domain.User{
		ID:        uid,
		Username:  from.Username,
		BirthDate: *scratch.BirthDate,
		Gender:    gender,
		Status:    domain.UserActive,
		CreatedAt: b.now().UTC(),
	}
	if err := b.repos.Users.Create(ctx, u); err != nil && !errors.Is(err, domain.ErrConflict) {
		return b.fail(ctx, uid, err)
	}
	b.sessions.Reset(uid)
	logger.Info(ctx, "onboarding", "onboarding.complete",
		slog.Int64("actor_id", uid),
		slog.String("kind", string(gender)),
	)

	if err := b.send(ctx, uid, sender.Message{Text: b.text.T("onboarding.complete"), Markup: b.createProfileKeyboard()}); err != nil {
		return err
	}
	return b.send(ctx, uid, sender.Message{Text: b.text.T("menu.hint"), Markup: b.menuKeyboard()})
}
