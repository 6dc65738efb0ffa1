package bot

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/m3rciful/iskra/core/logger"
	tg "github.com/m3rciful/iskra/core/telegram"
	"github.com/m3rciful/iskra/core/telegram/callbacks"
	"github.com/m3rciful/iskra/core/telegram/commands"
	"github.com/m3rciful/iskra/core/telegram/helpers"
	"github.com/m3rciful/iskra/core/telegram/sender"
	"github.com/m3rciful/iskra/internal/actions"
	"github.com/m3rciful/iskra/internal/domain"
	"github.com/m3rciful/iskra/internal/export"

	tele "gopkg.in/telebot.v4"
)

const xlsxMIME = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func (b *Bot) registerModeration(reg *tg.Registry) error {
	if err := reg.RegisterCommand("queue", commands.Command{
		Handler:     b.onQueue,
		Description: "Export pending profiles",
		AdminOnly:   true,
		Hidden:      true,
	}); err != nil {
		return err
	}
	return reg.RegisterCallback(actions.PrefixModeration, b.acked(b.onModerationCallback))
}

// OnAdminReject answers non-admins that hit an admin-only command.
func (b *Bot) OnAdminReject(c tele.Context) error {
	return b.say(helpers.BuildContext(c), userID(c), "moderation.admins_only")
}

func (b *Bot) onModerationCallback(c tele.Context) error {
	ctx := helpers.BuildContext(c)
	uid := userID(c)
	if b.adminID == 0 || uid != b.adminID {
		logger.Warn(ctx, "moderation", "moderation.denied", slog.Int64("actor_id", uid))
		return nil
	}
	act, err := actions.ParseModeration(callbacks.Payload(c))
	if err != nil {
		return err
	}
	switch act.Kind {
	case actions.ModerationApprove:
		return b.approve(ctx, act.RequestID)
	case actions.ModerationReject:
		return b.send(ctx, uid, sender.Message{Text: b.text.T("moderation.reason_title"), Markup: b.reasonKeyboard(act.RequestID)})
	case actions.ModerationBack:
		return b.resendReview(ctx, act.RequestID)
	case actions.ModerationReason:
		return b.reject(ctx, act.RequestID, act.Reason)
	}
	return nil
}

// approve publishes the profile of a pending request. A request closed
// before is answered without touching the profile again. When publishing
// fails the request goes back to pending so the admin can retry.
func (b *Bot) approve(ctx context.Context, id uuid.UUID) error {
	now := b.now().UTC()
	req, err := b.repos.Moderations.Close(ctx, id, domain.ModerationApproved, "", now)
	if errors.Is(err, domain.ErrNotFound) {
		return b.say(ctx, b.adminID, "moderation.already_closed")
	}
	if err != nil {
		return b.fail(ctx, b.adminID, err)
	}
	if err := b.publish(ctx, req, now); err != nil {
		if reopenErr := b.repos.Moderations.Reopen(ctx, id); reopenErr != nil {
			logger.Error(ctx, "moderation", "moderation.reopen",
				slog.String("status", "fail"),
				slog.String("request_id", id.String()),
				slog.String("err", reopenErr.Error()),
			)
		}
		return b.fail(ctx, b.adminID, err)
	}
	logger.Info(ctx, "moderation", "moderation.closed",
		slog.String("outcome", string(domain.ModerationApproved)),
		slog.String("request_id", id.String()),
		slog.Int64("target_id", req.UserID),
	)
	if err := b.send(ctx, req.UserID, sender.Message{Kind: "moderation", Text: b.text.T("moderation.approved"), Markup: b.menuKeyboard()}); err != nil {
		logger.Warn(ctx, "moderation", "moderation.notify",
			slog.String("status", "fail"),
			slog.String("err", err.Error()),
		)
	}
	return b.say(ctx, b.adminID, "moderation.approved_admin")
}

// publish makes the profile of an approved request visible and seeds a
// default filter for first-time profiles.
func (b *Bot) publish(ctx context.Context, req domain.ModerationRequest, now time.Time) error {
	p := domain.ProfileFrom(req, now)
	if err := b.repos.Profiles.Upsert(ctx, p); err != nil {
		return err
	}
	if _, err := b.repos.Filters.Find(ctx, req.UserID); errors.Is(err, domain.ErrNotFound) {
		if err := b.repos.Filters.Save(ctx, domain.FilterForProfile(p, b.ageFloor(), b.ageCeiling())); err != nil {
			return err
		}
	} else if err != nil {
		return err
	}
	if err := b.repos.Users.SetStatus(ctx, req.UserID, domain.UserActive); err != nil && !errors.Is(err, domain.ErrNotFound) {
		return err
	}
	return nil
}

func (b *Bot) reject(ctx context.Context, id uuid.UUID, reason domain.RejectReason) error {
	req, err := b.repos.Moderations.Close(ctx, id, domain.ModerationRejected, reason.Text(), b.now().UTC())
	if errors.Is(err, domain.ErrNotFound) {
		return b.say(ctx, b.adminID, "moderation.already_closed")
	}
	if err != nil {
		return b.fail(ctx, b.adminID, err)
	}
	logger.Info(ctx, "moderation", "moderation.closed",
		slog.String("outcome", string(domain.ModerationRejected)),
		slog.String("reason", string(reason)),
		slog.String("request_id", id.String()),
		slog.Int64("target_id", req.UserID),
	)
	if err := b.send(ctx, req.UserID, sender.Message{
		Kind:   "moderation",
		Text:   b.text.T("moderation.rejected", reason.Text()),
		Markup: b.createProfileKeyboard(),
	}); err != nil {
		logger.Warn(ctx, "moderation", "moderation.notify",
			slog.String("status", "fail"),
			slog.String("err", err.Error()),
		)
	}
	return b.say(ctx, b.adminID, "moderation.rejected_admin", b.text.T("moderation.reasons."+string(reason)))
}

func (b *Bot) resendReview(ctx context.Context, id uuid.UUID) error {
	req, err := b.repos.Moderations.Find(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return b.say(ctx, b.adminID, "moderation.already_closed")
	}
	if err != nil {
		return b.fail(ctx, b.adminID, err)
	}
	if req.Status != domain.ModerationPending {
		return b.say(ctx, b.adminID, "moderation.already_closed")
	}
	u, err := b.repos.Users.Find(ctx, req.UserID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return b.fail(ctx, b.adminID, err)
	}
	return b.send(ctx, b.adminID, b.reviewMessage(u, req))
}

// onQueue exports the pending requests as a spreadsheet.
func (b *Bot) onQueue(c tele.Context) error {
	ctx := helpers.BuildContext(c)
	uid := userID(c)
	reqs, err := b.repos.Moderations.ListPending(ctx, b.dating.QueueLimit)
	if err != nil {
		return b.fail(ctx, uid, err)
	}
	if len(reqs) == 0 {
		return b.say(ctx, uid, "moderation.queue_empty")
	}
	now := b.now().UTC()
	buf, err := export.ModerationQueue(reqs, now)
	if err != nil {
		return b.fail(ctx, uid, err)
	}
	logger.Info(ctx, "moderation", "moderation.export", slog.Int("count", len(reqs)))
	return b.send(ctx, uid, sender.Message{
		Kind: "export",
		Text: b.text.T("moderation.queue_caption", len(reqs)),
		Document: &tele.Document{
			File:     tele.FromReader(buf),
			FileName: "moderation-queue-" + now.Format("20060102") + ".xlsx",
			MIME:     xlsxMIME,
		},
	})
}
