package bot

import (
	"context"
	"errors"

	"github.com/m3rciful/iskra/core/telegram/sender"
	"github.com/m3rciful/iskra/internal/domain"
	"github.com/m3rciful/iskra/internal/i18n"
)

// Notifier delivers engine events to the users involved through the outbox.
type Notifier struct {
	view
	users    domain.UserRepository
	profiles domain.ProfileRepository
	out      Outbox
	adminID  int64
}

// NewNotifier builds a Notifier. Reports are dropped when adminID is zero.
func NewNotifier(repos domain.Repositories, out Outbox, text i18n.Localizer, adminID int64) *Notifier {
	return &Notifier{
		view:     view{text: text},
		users:    repos.Users,
		profiles: repos.Profiles,
		out:      out,
		adminID:  adminID,
	}
}

func (n *Notifier) NotifyLike(ctx context.Context, targetID, _ int64) error {
	return n.out.Send(ctx, targetID, sender.Message{
		Kind:   "like",
		Text:   n.text.T("notify.like"),
		Markup: n.viewIncomingKeyboard(),
	})
}

// NotifyMatch introduces the other participant of m to userID. The handle is
// left out when the other side is muted or has no username.
func (n *Notifier) NotifyMatch(ctx context.Context, userID int64, m domain.Match) error {
	other := m.Other(userID)
	u, err := n.users.Find(ctx, other)
	if err != nil {
		return err
	}
	p, err := n.profiles.Find(ctx, other)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return err
	}
	name := displayName(u, p)
	handle := u.Username
	if u.IsMuted {
		handle = ""
	}
	text := n.text.T("notify.match", name, handle)
	if handle == "" {
		text = n.text.T("notify.match_muted", name)
	}
	return n.out.Send(ctx, userID, sender.Message{
		Kind:   "match",
		Text:   text,
		Markup: n.matchKeyboard(other, handle),
	})
}

func (n *Notifier) NotifyMessage(ctx context.Context, targetID, _ int64, text string) error {
	return n.out.Send(ctx, targetID, sender.Message{
		Kind:   "message",
		Text:   n.text.T("notify.message", text),
		Markup: n.viewIncomingKeyboard(),
	})
}

func (n *Notifier) NotifyReport(ctx context.Context, actorID, targetID int64) error {
	if n.adminID == 0 {
		return nil
	}
	return n.out.Send(ctx, n.adminID, sender.Message{
		Kind: "report",
		Text: n.text.T("notify.report", actorID, targetID),
	})
}
