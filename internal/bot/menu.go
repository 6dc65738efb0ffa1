package bot

import (
	"context"
	"errors"
	"strings"

	tg "github.com/m3rciful/iskra/core/telegram"
	"github.com/m3rciful/iskra/core/telegram/commands"
	"github.com/m3rciful/iskra/core/telegram/helpers"
	"github.com/m3rciful/iskra/core/telegram/sender"
	"github.com/m3rciful/iskra/internal/actions"
	"github.com/m3rciful/iskra/internal/domain"
	"github.com/m3rciful/iskra/internal/session"

	tele "gopkg.in/telebot.v4"
)

func (b *Bot) registerMenu(reg *tg.Registry) error {
	cmds := map[string]commands.Command{
		"help":    {Handler: b.onHelp, Description: "How Iskra works"},
		"menu":    {Handler: b.onMenu, Description: "Main menu"},
		"matches": {Handler: b.onMatches, Description: "Your matches"},
	}
	for name, cmd := range cmds {
		if err := reg.RegisterCommand(name, cmd); err != nil {
			return err
		}
	}
	if err := reg.RegisterShortcut(b.text.T("menu.surf"), b.onSearchCommand); err != nil {
		return err
	}
	if err := reg.RegisterShortcut(b.text.T("menu.profile"), b.onOwnProfile); err != nil {
		return err
	}
	return reg.RegisterCallback(actions.PrefixCancel, b.acked(b.onCancel))
}

func (b *Bot) onHelp(c tele.Context) error {
	ctx := helpers.BuildContext(c)
	return b.say(ctx, userID(c), "help.text")
}

func (b *Bot) onMenu(c tele.Context) error {
	ctx := helpers.BuildContext(c)
	uid := userID(c)
	b.sessions.Reset(uid)
	return b.send(ctx, uid, sender.Message{Text: b.text.T("menu.hint"), Markup: b.menuKeyboard()})
}

func (b *Bot) onOwnProfile(c tele.Context) error {
	return b.showOwnProfile(helpers.BuildContext(c), userID(c))
}

// showOwnProfile shows the approved profile, or where the user is on the way
// to one.
func (b *Bot) showOwnProfile(ctx context.Context, uid int64) error {
	u, ok, err := b.registeredUser(ctx, uid)
	if !ok {
		return err
	}
	p, err := b.repos.Profiles.Find(ctx, uid)
	if err == nil {
		return b.send(ctx, uid, sender.Message{
			Text:    b.cardText(u, p, b.now()),
			PhotoID: p.PhotoFileID,
			Markup:  b.ownProfileKeyboard(),
		})
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return b.fail(ctx, uid, err)
	}
	if waiting, err := b.hasPending(ctx, uid); err != nil {
		return b.fail(ctx, uid, err)
	} else if waiting {
		return b.say(ctx, uid, "profile.pending")
	}
	return b.send(ctx, uid, sender.Message{Text: b.text.T("profile.none"), Markup: b.createProfileKeyboard()})
}

func (b *Bot) onMatches(c tele.Context) error {
	ctx := helpers.BuildContext(c)
	uid := userID(c)
	if _, ok, err := b.registeredUser(ctx, uid); !ok {
		return err
	}
	matches, err := b.engine.Matches(ctx, uid)
	if err != nil {
		return b.fail(ctx, uid, err)
	}
	if len(matches) == 0 {
		return b.say(ctx, uid, "matches.none")
	}
	lines := []string{b.text.T("matches.title")}
	for _, m := range matches {
		other := m.Other(uid)
		u, err := b.repos.Users.Find(ctx, other)
		if err != nil {
			continue
		}
		p, _ := b.repos.Profiles.Find(ctx, other)
		lines = append(lines, b.text.T("matches.line", displayName(u, p), u.Username))
	}
	return b.send(ctx, uid, sender.Message{Text: strings.Join(lines, "\n")})
}

// onCancel backs out of the current text prompt.
func (b *Bot) onCancel(c tele.Context) error {
	ctx := helpers.BuildContext(c)
	uid := userID(c)
	switch st := b.sessions.State(uid).(type) {
	case session.Search:
		if st.Step == session.ComposingMessage {
			b.sessions.SetState(uid, session.Search{Step: session.Browsing})
			if err := b.say(ctx, uid, "search.message_cancelled"); err != nil {
				return err
			}
			return b.showNext(ctx, uid)
		}
	case session.Settings:
		if st.Step == session.FiltersAgeInput {
			return b.showFilters(ctx, uid)
		}
	}
	b.sessions.Reset(uid)
	return b.send(ctx, uid, sender.Message{Text: b.text.T("menu.hint"), Markup: b.menuKeyboard()})
}
