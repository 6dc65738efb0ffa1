package bot

import (
	"context"
	"log/slog"

	"github.com/m3rciful/iskra/core/logger"
	tg "github.com/m3rciful/iskra/core/telegram"
	"github.com/m3rciful/iskra/core/telegram/callbacks"
	"github.com/m3rciful/iskra/core/telegram/commands"
	"github.com/m3rciful/iskra/core/telegram/helpers"
	"github.com/m3rciful/iskra/core/telegram/keyboard"
	"github.com/m3rciful/iskra/core/telegram/sender"
	"github.com/m3rciful/iskra/internal/actions"
	"github.com/m3rciful/iskra/internal/domain"
	"github.com/m3rciful/iskra/internal/input"
	"github.com/m3rciful/iskra/internal/session"

	tele "gopkg.in/telebot.v4"
)

var ageInputState = session.Settings{Step: session.FiltersAgeInput}

// Fixed age presets; AgePeers and AgeAny depend on the user and the bounds.
var agePresets = map[actions.AgePreset][2]int{
	actions.AgeYoung:  {18, 25},
	actions.AgeMid:    {26, 35},
	actions.AgeMature: {35, 99},
}

const peersSpread = 3

func (b *Bot) registerFilters(reg *tg.Registry) error {
	if err := reg.RegisterCommand("filters", commands.Command{Handler: b.onFiltersCommand, Description: "Search filters"}); err != nil {
		return err
	}
	if err := reg.RegisterCallback(actions.PrefixFilter, b.acked(b.onFilterCallback)); err != nil {
		return err
	}
	return reg.RegisterFreeform(ageInputState.Key(), tg.InputText, b.onAgeInput)
}

func (b *Bot) onFiltersCommand(c tele.Context) error {
	return b.showFilters(helpers.BuildContext(c), userID(c))
}

func (b *Bot) showFilters(ctx context.Context, uid int64) error {
	if _, ok, err := b.registeredUser(ctx, uid); !ok {
		return err
	}
	f, err := b.selector.Filter(ctx, uid)
	if err != nil {
		return b.fail(ctx, uid, err)
	}
	return b.showFilterMenu(ctx, uid, f)
}

func (b *Bot) showFilterMenu(ctx context.Context, uid int64, f domain.Filter) error {
	b.sessions.SetState(uid, session.Settings{Step: session.FiltersMenu})
	return b.send(ctx, uid, sender.Message{Text: b.filterText(f), Markup: b.filtersKeyboard()})
}

func (b *Bot) onFilterCallback(c tele.Context) error {
	ctx := helpers.BuildContext(c)
	uid := userID(c)
	act, err := actions.ParseFilter(callbacks.Payload(c))
	if err != nil {
		return err
	}
	switch act.Kind {
	case actions.FilterMenu:
		return b.showFilters(ctx, uid)
	case actions.FilterShowGender:
		return b.send(ctx, uid, sender.Message{Text: b.text.T("filters.gender_title"), Markup: b.genderPresetKeyboard()})
	case actions.FilterShowAge:
		return b.send(ctx, uid, sender.Message{Text: b.text.T("filters.age_title"), Markup: b.agePresetKeyboard()})
	case actions.FilterGender:
		return b.updateFilter(ctx, uid, func(u domain.User, f *domain.Filter) {
			f.TargetGenders = genderPreset(act.Gender, u.Gender)
		})
	case actions.FilterAge:
		return b.updateFilter(ctx, uid, func(u domain.User, f *domain.Filter) {
			f.AgeMin, f.AgeMax = b.agePreset(act.Age, u.AgeAt(b.now()))
		})
	case actions.FilterAgeCustom:
		b.sessions.SetState(uid, ageInputState)
		return b.send(ctx, uid, sender.Message{
			Text:   b.text.T("filters.custom_prompt", b.ageFloor(), b.ageCeiling()),
			Markup: keyboard.SingleButton(b.text.T("search.message_cancel"), actions.Cancel()),
		})
	case actions.FilterDone:
		b.sessions.Reset(uid)
		return b.send(ctx, uid, sender.Message{Text: b.text.T("filters.saved"), Markup: b.browseKeyboard("search.browse")})
	}
	return nil
}

func (b *Bot) onAgeInput(c tele.Context) error {
	ctx := helpers.BuildContext(c)
	uid := userID(c)
	lo, hi, err := input.ParseAgeRange(c.Text(), b.ageFloor(), b.ageCeiling())
	if err != nil {
		return b.say(ctx, uid, "filters.custom_invalid", err.Error())
	}
	return b.updateFilter(ctx, uid, func(_ domain.User, f *domain.Filter) {
		f.AgeMin, f.AgeMax = lo, hi
	})
}

// updateFilter applies fn to the saved filter and shows the menu again.
func (b *Bot) updateFilter(ctx context.Context, uid int64, fn func(domain.User, *domain.Filter)) error {
	u, ok, err := b.registeredUser(ctx, uid)
	if !ok {
		return err
	}
	f, err := b.selector.Filter(ctx, uid)
	if err != nil {
		return b.fail(ctx, uid, err)
	}
	fn(u, &f)
	f.UserID = uid
	if err := b.repos.Filters.Save(ctx, f); err != nil {
		return b.fail(ctx, uid, err)
	}
	logger.Info(ctx, "search", "filters.saved",
		slog.Int64("actor_id", uid),
		slog.Int("age_min", f.AgeMin),
		slog.Int("age_max", f.AgeMax),
		slog.Int("count", len(f.TargetGenders)),
	)
	return b.showFilterMenu(ctx, uid, f)
}

func genderPreset(p actions.GenderPreset, own domain.Gender) []domain.Gender {
	switch p {
	case actions.GenderOwn:
		return []domain.Gender{own}
	case actions.GenderOpposite:
		return []domain.Gender{own.Opposite()}
	}
	return domain.AllGenders()
}

// agePreset resolves a preset to a range clamped to the configured bounds.
func (b *Bot) agePreset(p actions.AgePreset, age int) (int, int) {
	lo, hi := b.ageFloor(), b.ageCeiling()
	if r, ok := agePresets[p]; ok {
		lo, hi = r[0], r[1]
	} else if p == actions.AgePeers {
		lo, hi = age-peersSpread, age+peersSpread
	}
	lo = max(lo, b.ageFloor())
	hi = min(hi, b.ageCeiling())
	if lo > hi {
		lo = hi
	}
	return lo, hi
}
