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
	"github.com/m3rciful/iskra/internal/candidates"
	"github.com/m3rciful/iskra/internal/domain"
	"github.com/m3rciful/iskra/internal/input"
	"github.com/m3rciful/iskra/internal/matching"
	"github.com/m3rciful/iskra/internal/session"

	tele "gopkg.in/telebot.v4"
)

var browsing = session.Search{Step: session.Browsing}

func (b *Bot) registerSearch(reg *tg.Registry) error {
	if err := reg.RegisterCommand("search", commands.Command{Handler: b.onSearchCommand, Description: "Browse profiles"}); err != nil {
		return err
	}
	if err := reg.RegisterCallback(actions.PrefixSearch, b.acked(b.onSearchCallback)); err != nil {
		return err
	}
	return reg.RegisterFreeform(session.Composing(0).Key(), tg.InputText, b.onComposeText)
}

func (b *Bot) onSearchCommand(c tele.Context) error {
	return b.startSearch(helpers.BuildContext(c), userID(c))
}

func (b *Bot) onSearchCallback(c tele.Context) error {
	ctx := helpers.BuildContext(c)
	uid := userID(c)
	act, err := actions.ParseSearch(callbacks.Payload(c))
	if err != nil {
		return err
	}
	switch act.Kind {
	case actions.SearchStart:
		return b.startSearch(ctx, uid)
	case actions.SearchContinue:
		return b.showNext(ctx, uid)
	case actions.SearchStop:
		b.sessions.Reset(uid)
		return b.send(ctx, uid, sender.Message{Text: b.text.T("search.stopped"), Markup: b.browseKeyboard("search.resume")})
	case actions.SearchLike:
		return b.like(ctx, uid, act.UserID)
	case actions.SearchPass:
		if _, err := b.engine.Pass(ctx, uid, act.UserID); err != nil {
			return b.interactionFailed(ctx, uid, err)
		}
		return b.showNext(ctx, uid)
	case actions.SearchMessage:
		b.sessions.SetState(uid, session.Composing(act.UserID))
		return b.send(ctx, uid, sender.Message{Text: b.text.T("search.message_prompt"), Markup: b.composeKeyboard()})
	case actions.SearchCancelMessage:
		b.sessions.SetState(uid, browsing)
		if err := b.say(ctx, uid, "search.message_cancelled"); err != nil {
			return err
		}
		return b.showNext(ctx, uid)
	case actions.SearchReport:
		if _, err := b.engine.Report(ctx, uid, act.UserID); err != nil {
			return b.interactionFailed(ctx, uid, err)
		}
		if err := b.say(ctx, uid, "search.reported"); err != nil {
			return err
		}
		return b.showNext(ctx, uid)
	case actions.SearchIncoming:
		return b.showIncoming(ctx, uid)
	case actions.SearchIncomingLike:
		kind, err := b.relationKind(ctx, uid, act.UserID)
		if err != nil {
			return b.fail(ctx, uid, err)
		}
		if _, err := b.engine.LikeBack(ctx, uid, act.UserID, kind); err != nil {
			return b.interactionFailed(ctx, uid, err)
		}
		return b.showNextIncoming(ctx, uid)
	case actions.SearchIncomingSkip:
		if err := b.engine.HideByID(ctx, act.InteractionID); err != nil && !errors.Is(err, domain.ErrNotFound) {
			return b.fail(ctx, uid, err)
		}
		return b.showNextIncoming(ctx, uid)
	}
	return nil
}

// startSearch enters browsing for users with an approved profile.
func (b *Bot) startSearch(ctx context.Context, uid int64) error {
	u, ok, err := b.registeredUser(ctx, uid)
	if !ok {
		return err
	}
	_, err = b.repos.Profiles.Find(ctx, uid)
	if errors.Is(err, domain.ErrNotFound) || (err == nil && u.Status != domain.UserActive) {
		return b.send(ctx, uid, sender.Message{Text: b.text.T("search.no_profile"), Markup: b.createProfileKeyboard()})
	}
	if err != nil {
		return b.fail(ctx, uid, err)
	}
	return b.showNext(ctx, uid)
}

// showNext presents the next candidate, or the exhausted screen.
func (b *Bot) showNext(ctx context.Context, uid int64) error {
	next, err := b.selector.Next(ctx, uid)
	if errors.Is(err, candidates.ErrNoCandidates) {
		b.sessions.SetState(uid, session.Search{Step: session.NoProfiles})
		return b.send(ctx, uid, sender.Message{Text: b.text.T("search.no_profiles"), Markup: b.noProfilesKeyboard()})
	}
	if err != nil {
		return b.fail(ctx, uid, err)
	}
	b.sessions.SetState(uid, browsing)
	return b.send(ctx, uid, sender.Message{
		Kind:    "card",
		Text:    b.cardText(next.User, next.Profile, b.now()),
		PhotoID: next.Profile.PhotoFileID,
		Markup:  b.cardKeyboard(next.User.ID),
	})
}

func (b *Bot) like(ctx context.Context, uid, target int64) error {
	kind, err := b.relationKind(ctx, uid, target)
	if err != nil {
		return b.fail(ctx, uid, err)
	}
	res, err := b.engine.Like(ctx, uid, target, kind)
	if err != nil {
		return b.interactionFailed(ctx, uid, err)
	}
	if res.Matched() {
		logger.Info(ctx, "search", "search.like",
			slog.String("outcome", "matched"),
			slog.Int64("actor_id", uid),
			slog.Int64("target_id", target),
		)
	}
	return b.showNext(ctx, uid)
}

// relationKind derives the kind a match between a and other would have. A
// missing profile counts as open to both kinds.
func (b *Bot) relationKind(ctx context.Context, a, other int64) (domain.RelationKind, error) {
	goal := func(id int64) (domain.Goal, error) {
		p, err := b.repos.Profiles.Find(ctx, id)
		if errors.Is(err, domain.ErrNotFound) {
			return domain.GoalBoth, nil
		}
		return p.Goal, err
	}
	ga, err := goal(a)
	if err != nil {
		return "", err
	}
	gb, err := goal(other)
	if err != nil {
		return "", err
	}
	return matching.KindFor(ga, gb), nil
}

// interactionFailed answers validation errors, such as acting on oneself,
// without failing the update. A target whose account is gone moves the user
// on to the next card.
func (b *Bot) interactionFailed(ctx context.Context, uid int64, err error) error {
	if errors.Is(err, domain.ErrNotFound) {
		logger.Info(ctx, "search", "interaction.rejected",
			slog.String("outcome", "not_found"),
			slog.Int64("actor_id", uid),
			slog.String("err", err.Error()),
		)
		if err := b.say(ctx, uid, "search.profile_gone"); err != nil {
			return err
		}
		return b.showNext(ctx, uid)
	}
	if errors.Is(err, domain.ErrValidation) {
		logger.Debug(ctx, "search", "interaction.rejected",
			slog.Int64("actor_id", uid),
			slog.String("err", err.Error()),
		)
		return nil
	}
	return b.fail(ctx, uid, err)
}

func (b *Bot) onComposeText(c tele.Context) error {
	ctx := helpers.BuildContext(c)
	uid := userID(c)
	st, ok := b.sessions.State(uid).(session.Search)
	if !ok || st.Step != session.ComposingMessage {
		return nil
	}
	text, err := input.Message(c.Text())
	if err != nil {
		return b.say(ctx, uid, "search.message_prompt")
	}
	if _, err := b.engine.SendMessage(ctx, uid, st.TargetID, text); err != nil {
		return b.interactionFailed(ctx, uid, err)
	}
	b.sessions.SetState(uid, browsing)
	if err := b.say(ctx, uid, "search.message_sent"); err != nil {
		return err
	}
	return b.showNext(ctx, uid)
}

func (b *Bot) showIncoming(ctx context.Context, uid int64) error {
	if _, ok, err := b.registeredUser(ctx, uid); !ok {
		return err
	}
	list, err := b.engine.Incoming(ctx, uid)
	if err != nil {
		return b.fail(ctx, uid, err)
	}
	if len(list) == 0 {
		return b.send(ctx, uid, sender.Message{Text: b.text.T("search.no_incoming"), Markup: b.browseKeyboard("search.browse")})
	}
	b.sessions.SetState(uid, session.Search{Step: session.ViewingIncoming})
	return b.showNextIncoming(ctx, uid)
}

// showNextIncoming presents the newest visible like or message. Entries whose
// sender has no profile any more are hidden on the way.
func (b *Bot) showNextIncoming(ctx context.Context, uid int64) error {
	list, err := b.engine.Incoming(ctx, uid)
	if err != nil {
		return b.fail(ctx, uid, err)
	}
	for _, in := range list {
		u, uerr := b.repos.Users.Find(ctx, in.ActorID)
		p, perr := b.repos.Profiles.Find(ctx, in.ActorID)
		if errors.Is(uerr, domain.ErrNotFound) || errors.Is(perr, domain.ErrNotFound) {
			if err := b.engine.HideByID(ctx, in.ID); err != nil && !errors.Is(err, domain.ErrNotFound) {
				return b.fail(ctx, uid, err)
			}
			continue
		}
		if err := errors.Join(uerr, perr); err != nil {
			return b.fail(ctx, uid, err)
		}
		text := b.cardText(u, p, b.now())
		if in.Action == domain.ActionMessage && in.Message != "" {
			text += b.text.T("search.incoming_message", in.Message)
		}
		b.sessions.SetState(uid, session.Search{Step: session.ViewingIncoming})
		return b.send(ctx, uid, sender.Message{
			Kind:    "card",
			Text:    text,
			PhotoID: p.PhotoFileID,
			Markup:  b.incomingKeyboard(in),
		})
	}
	b.sessions.SetState(uid, browsing)
	return b.send(ctx, uid, sender.Message{Text: b.text.T("search.no_more_incoming"), Markup: b.browseKeyboard("search.browse")})
}
