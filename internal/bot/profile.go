package bot

import (
	"context"
	"errors"
	"log/slog"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/m3rciful/iskra/core/logger"
	tg "github.com/m3rciful/iskra/core/telegram"
	"github.com/m3rciful/iskra/core/telegram/callbacks"
	"github.com/m3rciful/iskra/core/telegram/helpers"
	"github.com/m3rciful/iskra/core/telegram/sender"
	"github.com/m3rciful/iskra/internal/actions"
	"github.com/m3rciful/iskra/internal/domain"
	"github.com/m3rciful/iskra/internal/input"
	"github.com/m3rciful/iskra/internal/session"

	tele "gopkg.in/telebot.v4"
)

var previewing = session.Profile{Step: session.Previewing}

// nextStep is the order of the creation questions.
var nextStep = map[session.ProfileStep]session.ProfileStep{
	session.EnteringCity:        session.SelectingGoal,
	session.SelectingGoal:       session.SelectingPreference,
	session.SelectingPreference: session.EnteringBio,
	session.EnteringBio:         session.UploadingPhoto,
	session.UploadingPhoto:      session.Previewing,
}

func (b *Bot) registerProfile(reg *tg.Registry) error {
	if err := reg.RegisterCallback(actions.PrefixProfile, b.acked(b.onProfileCallback)); err != nil {
		return err
	}
	type freeform struct {
		state session.State
		kind  tg.InputKind
		h     tele.HandlerFunc
	}
	steps := []freeform{
		{session.Profile{Step: session.EnteringCity}, tg.InputText, b.onCity},
		{session.ProfileEditing(session.FieldCity), tg.InputText, b.onCity},
		{session.Profile{Step: session.EnteringBio}, tg.InputText, b.onBio},
		{session.ProfileEditing(session.FieldBio), tg.InputText, b.onBio},
	}
	for _, st := range []session.State{session.Profile{Step: session.UploadingPhoto}, session.ProfileEditing(session.FieldPhoto)} {
		steps = append(steps,
			freeform{st, tg.InputPhoto, b.onPhoto},
			freeform{st, tg.InputMedia, b.onNotPhoto},
			freeform{st, tg.InputText, b.onNotPhoto},
		)
	}
	for _, f := range steps {
		if err := reg.RegisterFreeform(f.state.Key(), f.kind, f.h); err != nil {
			return err
		}
	}
	return nil
}

func (b *Bot) onProfileCallback(c tele.Context) error {
	ctx := helpers.BuildContext(c)
	uid := userID(c)
	act, err := actions.ParseProfile(callbacks.Payload(c))
	if err != nil {
		return err
	}
	switch act.Kind {
	case actions.ProfileCreate:
		return b.beginProfile(ctx, uid)
	case actions.ProfileGoal:
		goal := act.Goal
		return b.fillDraft(ctx, uid, session.SelectingGoal, session.FieldGoal, func(d *session.ProfileDraft) {
			d.Goal = &goal
		})
	case actions.ProfilePreference:
		pref := act.Preference
		return b.fillDraft(ctx, uid, session.SelectingPreference, session.FieldPreference, func(d *session.ProfileDraft) {
			d.Preference = &pref
		})
	case actions.ProfileSubmit:
		return b.submitProfile(ctx, c.Sender())
	case actions.ProfileEditMenu:
		return b.showEditMenu(ctx, uid)
	case actions.ProfileEditBack:
		return b.leaveEditMenu(ctx, uid)
	case actions.ProfileEditField:
		return b.editField(ctx, uid, act.Field)
	}
	return nil
}

func (b *Bot) beginProfile(ctx context.Context, uid int64) error {
	if _, ok, err := b.registeredUser(ctx, uid); !ok {
		return err
	}
	if waiting, err := b.hasPending(ctx, uid); err != nil {
		return b.fail(ctx, uid, err)
	} else if waiting {
		return b.say(ctx, uid, "profile.pending")
	}
	b.sessions.Update(uid, func(s *session.Session) {
		s.Draft = &session.ProfileDraft{}
		s.State = session.Profile{Step: session.EnteringCity}
	})
	return b.say(ctx, uid, "profile.city")
}

func (b *Bot) onCity(c tele.Context) error {
	ctx := helpers.BuildContext(c)
	uid := userID(c)
	city, err := input.City(c.Text())
	if err != nil {
		return b.say(ctx, uid, "profile.city_invalid")
	}
	return b.fillDraft(ctx, uid, session.EnteringCity, session.FieldCity, func(d *session.ProfileDraft) {
		d.City = city
	})
}

func (b *Bot) onBio(c tele.Context) error {
	ctx := helpers.BuildContext(c)
	uid := userID(c)
	bio, err := input.Bio(c.Text())
	if err != nil {
		if utf8.RuneCountInString(input.CleanText(c.Text())) < input.BioMin {
			return b.say(ctx, uid, "profile.bio_short")
		}
		return b.say(ctx, uid, "profile.bio_long")
	}
	return b.fillDraft(ctx, uid, session.EnteringBio, session.FieldBio, func(d *session.ProfileDraft) {
		d.Bio = bio
	})
}

func (b *Bot) onPhoto(c tele.Context) error {
	ctx := helpers.BuildContext(c)
	uid := userID(c)
	msg := c.Message()
	if msg == nil || msg.Photo == nil || msg.Photo.FileID == "" {
		return b.onNotPhoto(c)
	}
	fileID := msg.Photo.FileID
	return b.fillDraft(ctx, uid, session.UploadingPhoto, session.FieldPhoto, func(d *session.ProfileDraft) {
		d.PhotoFileID = fileID
	})
}

func (b *Bot) onNotPhoto(c tele.Context) error {
	return b.say(helpers.BuildContext(c), userID(c), "profile.photo_invalid")
}

type fillOutcome int

const (
	fillApplied fillOutcome = iota
	fillStale
	fillExpired
)

// fillDraft stores one answer. It is accepted while the session is at step
// or editing field; editing always returns to the preview, otherwise the
// flow moves to the next question.
func (b *Bot) fillDraft(ctx context.Context, uid int64, step session.ProfileStep, field session.ProfileField, fn func(*session.ProfileDraft)) error {
	type result struct {
		outcome fillOutcome
		next    session.ProfileStep
		draft   session.ProfileDraft
	}
	r := session.UpdateReturning(b.sessions, uid, func(s *session.Session) result {
		cur, ok := s.State.(session.Profile)
		if !ok || (cur.Step != step && !(cur.Step == session.Editing && cur.Field == field)) {
			return result{outcome: fillStale}
		}
		if s.Draft == nil {
			return result{outcome: fillExpired}
		}
		fn(s.Draft)
		next := nextStep[step]
		if cur.Step == session.Editing {
			next = session.Previewing
		}
		s.State = session.Profile{Step: next}
		return result{outcome: fillApplied, next: next, draft: *s.Draft}
	})
	switch r.outcome {
	case fillStale:
		logger.Debug(ctx, "profile", "profile.stale_answer",
			slog.Int64("actor_id", uid),
			slog.String("kind", string(field)),
		)
		return nil
	case fillExpired:
		return b.expired(ctx, uid)
	}
	return b.promptStep(ctx, uid, r.next, &r.draft)
}

// promptStep asks the question of step, confirming the previous answer.
func (b *Bot) promptStep(ctx context.Context, uid int64, step session.ProfileStep, d *session.ProfileDraft) error {
	switch step {
	case session.SelectingGoal:
		return b.send(ctx, uid, sender.Message{Text: b.text.T("profile.city_confirm", d.City), Markup: b.goalKeyboard()})
	case session.SelectingPreference:
		return b.send(ctx, uid, sender.Message{
			Text:   b.text.T("profile.goal_confirm", b.goalLabel(*d.Goal)),
			Markup: b.preferenceKeyboard(),
		})
	case session.EnteringBio:
		return b.send(ctx, uid, sender.Message{
			Text: b.text.T("profile.preference_confirm", b.preferenceLabel(*d.Preference)) + "\n\n" + b.text.T("profile.bio_hint"),
		})
	case session.UploadingPhoto:
		return b.send(ctx, uid, sender.Message{Text: b.text.T("profile.photo") + "\n\n" + b.text.T("profile.photo_hint")})
	case session.Previewing:
		return b.sendPreview(ctx, uid, d)
	}
	return nil
}

func (b *Bot) sendPreview(ctx context.Context, uid int64, d *session.ProfileDraft) error {
	return b.send(ctx, uid, sender.Message{
		Text:    b.previewText(d),
		PhotoID: d.PhotoFileID,
		Markup:  b.previewKeyboard(),
	})
}

// submitProfile turns a complete draft into a pending moderation request.
// An incomplete draft leaves the session untouched.
func (b *Bot) submitProfile(ctx context.Context, from *tele.User) error {
	uid := from.ID
	s, ok := b.sessions.Get(uid)
	if !ok || s.Draft == nil {
		return b.expired(ctx, uid)
	}
	if missing := s.Draft.Missing(); len(missing) > 0 {
		logger.Info(ctx, "profile", "profile.submit",
			slog.String("status", "fail"),
			slog.Int64("actor_id", uid),
			slog.Int("count", len(missing)),
		)
		return b.send(ctx, uid, sender.Message{Text: b.missingText(missing)})
	}
	u, ok, err := b.registeredUser(ctx, uid)
	if !ok {
		return err
	}
	if waiting, err := b.hasPending(ctx, uid); err != nil {
		return b.fail(ctx, uid, err)
	} else if waiting {
		return b.alreadyPending(ctx, uid)
	}

	d := s.Draft
	req := domain.ModerationRequest{
		ID:          uuid.New(),
		UserID:      uid,
		DisplayName: senderName(from),
		Bio:         d.Bio,
		PhotoFileID: d.PhotoFileID,
		City:        d.City,
		Goal:        *d.Goal,
		Preference:  *d.Preference,
		Status:      domain.ModerationPending,
		CreatedAt:   b.now().UTC(),
	}
	if err := b.repos.Moderations.CreatePending(ctx, req); errors.Is(err, domain.ErrConflict) {
		return b.alreadyPending(ctx, uid)
	} else if err != nil {
		return b.fail(ctx, uid, err)
	}
	b.sessions.Reset(uid)
	logger.Info(ctx, "moderation", "moderation.submitted",
		slog.String("status", "ok"),
		slog.Int64("actor_id", uid),
		slog.String("request_id", req.ID.String()),
	)

	if b.adminID != 0 {
		if err := b.send(ctx, b.adminID, b.reviewMessage(u, req)); err != nil {
			logger.Warn(ctx, "moderation", "moderation.deliver",
				slog.String("status", "fail"),
				slog.String("err", err.Error()),
			)
		}
	}
	return b.send(ctx, uid, sender.Message{Text: b.text.T("profile.submitted"), Markup: b.menuKeyboard()})
}

// hasPending reports whether uid already waits for a review.
func (b *Bot) hasPending(ctx context.Context, uid int64) (bool, error) {
	_, err := b.repos.Moderations.PendingFor(ctx, uid)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, domain.ErrNotFound):
		return false, nil
	}
	return false, err
}

// alreadyPending drops a second submission while the first is in review.
func (b *Bot) alreadyPending(ctx context.Context, uid int64) error {
	b.sessions.Reset(uid)
	logger.Info(ctx, "profile", "profile.submit",
		slog.String("status", "skip"),
		slog.String("outcome", "duplicate"),
		slog.Int64("actor_id", uid),
	)
	return b.say(ctx, uid, "profile.pending")
}

func (b *Bot) reviewMessage(u domain.User, req domain.ModerationRequest) sender.Message {
	return sender.Message{
		Kind:      "moderation",
		Text:      b.reviewText(u, req),
		PhotoID:   req.PhotoFileID,
		Markup:    b.reviewKeyboard(req.ID),
		ParseMode: tele.ModeMarkdownV2,
	}
}

// showEditMenu opens the field picker. Without a draft in progress the
// approved profile is loaded into a new one.
func (b *Bot) showEditMenu(ctx context.Context, uid int64) error {
	if s, ok := b.sessions.Get(uid); !ok || s.Draft == nil {
		p, err := b.repos.Profiles.Find(ctx, uid)
		if errors.Is(err, domain.ErrNotFound) {
			return b.send(ctx, uid, sender.Message{Text: b.text.T("profile.none"), Markup: b.createProfileKeyboard()})
		}
		if err != nil {
			return b.fail(ctx, uid, err)
		}
		goal, pref := p.Goal, p.Preference
		b.sessions.Update(uid, func(s *session.Session) {
			s.Draft = &session.ProfileDraft{
				City:        p.City,
				Goal:        &goal,
				Preference:  &pref,
				Bio:         p.Bio,
				PhotoFileID: p.PhotoFileID,
			}
			s.State = previewing
		})
	} else {
		b.sessions.SetState(uid, previewing)
	}
	return b.send(ctx, uid, sender.Message{Text: b.text.T("profile.edit_title"), Markup: b.editKeyboard()})
}

func (b *Bot) leaveEditMenu(ctx context.Context, uid int64) error {
	if s, ok := b.sessions.Get(uid); ok && s.Draft.Complete() {
		b.sessions.SetState(uid, previewing)
		return b.sendPreview(ctx, uid, s.Draft)
	}
	b.sessions.Reset(uid)
	return b.showOwnProfile(ctx, uid)
}

func (b *Bot) editField(ctx context.Context, uid int64, field session.ProfileField) error {
	ok := session.UpdateReturning(b.sessions, uid, func(s *session.Session) bool {
		if s.Draft == nil {
			return false
		}
		s.State = session.ProfileEditing(field)
		return true
	})
	if !ok {
		return b.expired(ctx, uid)
	}
	switch field {
	case session.FieldCity:
		return b.say(ctx, uid, "profile.city")
	case session.FieldGoal:
		return b.send(ctx, uid, sender.Message{Text: b.text.T("profile.goal"), Markup: b.goalKeyboard()})
	case session.FieldPreference:
		return b.send(ctx, uid, sender.Message{Text: b.text.T("profile.preference"), Markup: b.preferenceKeyboard()})
	case session.FieldBio:
		return b.send(ctx, uid, sender.Message{Text: b.text.T("profile.bio") + "\n\n" + b.text.T("profile.bio_hint")})
	case session.FieldPhoto:
		return b.send(ctx, uid, sender.Message{Text: b.text.T("profile.photo") + "\n\n" + b.text.T("profile.photo_hint")})
	}
	return nil
}
