package bot

import (
	"github.com/google/uuid"

	"github.com/m3rciful/iskra/core/telegram/keyboard"
	"github.com/m3rciful/iskra/internal/actions"
	"github.com/m3rciful/iskra/internal/domain"
	"github.com/m3rciful/iskra/internal/session"

	tele "gopkg.in/telebot.v4"
)

func (v view) menuKeyboard() *tele.ReplyMarkup {
	return keyboard.ReplyButtons([]string{v.text.T("menu.surf"), v.text.T("menu.profile")})
}

func (v view) introKeyboard() *tele.ReplyMarkup {
	return keyboard.InlineButtons(
		keyboard.Btn(v.text.T("onboarding.create"), actions.Onboarding{Kind: actions.OnboardingCreate}.Data()),
		keyboard.Btn(v.text.T("onboarding.learn"), actions.Onboarding{Kind: actions.OnboardingLearn}.Data()),
	)
}

func (v view) learnKeyboard() *tele.ReplyMarkup {
	return keyboard.InlineButtonsRows(
		[]keyboard.InlineBtn{
			keyboard.Btn(v.text.T("onboarding.back"), actions.Onboarding{Kind: actions.OnboardingBack}.Data()),
			keyboard.Btn(v.text.T("onboarding.create"), actions.Onboarding{Kind: actions.OnboardingCreate}.Data()),
		},
	)
}

func (v view) genderKeyboard() *tele.ReplyMarkup {
	return keyboard.InlineButtonsRows([]keyboard.InlineBtn{
		keyboard.Btn(v.text.T("onboarding.male"), actions.Onboarding{Kind: actions.OnboardingGender, Gender: domain.GenderMale}.Data()),
		keyboard.Btn(v.text.T("onboarding.female"), actions.Onboarding{Kind: actions.OnboardingGender, Gender: domain.GenderFemale}.Data()),
	})
}

func (v view) createProfileKeyboard() *tele.ReplyMarkup {
	return keyboard.SingleButton(v.text.T("onboarding.create_profile"), actions.Profile{Kind: actions.ProfileCreate}.Data())
}

func (v view) goalKeyboard() *tele.ReplyMarkup {
	goals := []domain.Goal{domain.GoalFriendship, domain.GoalRelationship, domain.GoalBoth}
	btns := make([]keyboard.InlineBtn, 0, len(goals))
	for _, g := range goals {
		btns = append(btns, keyboard.Btn(v.goalLabel(g), actions.Profile{Kind: actions.ProfileGoal, Goal: g}.Data()))
	}
	return keyboard.InlineButtons(btns...)
}

func (v view) preferenceKeyboard() *tele.ReplyMarkup {
	prefs := []domain.Preference{domain.PreferMale, domain.PreferFemale, domain.PreferAny}
	btns := make([]keyboard.InlineBtn, 0, len(prefs))
	for _, p := range prefs {
		btns = append(btns, keyboard.Btn(v.preferenceLabel(p), actions.Profile{Kind: actions.ProfilePreference, Preference: p}.Data()))
	}
	return keyboard.InlineButtons(btns...)
}

func (v view) previewKeyboard() *tele.ReplyMarkup {
	return keyboard.InlineButtonsRows([]keyboard.InlineBtn{
		keyboard.Btn(v.text.T("profile.edit"), actions.Profile{Kind: actions.ProfileEditMenu}.Data()),
		keyboard.Btn(v.text.T("profile.submit"), actions.Profile{Kind: actions.ProfileSubmit}.Data()),
	})
}

func (v view) editKeyboard() *tele.ReplyMarkup {
	field := func(f session.ProfileField) keyboard.InlineBtn {
		return keyboard.Btn(v.text.T("profile.fields."+string(f)), actions.Profile{Kind: actions.ProfileEditField, Field: f}.Data())
	}
	return keyboard.InlineButtonsRows(
		[]keyboard.InlineBtn{field(session.FieldCity), field(session.FieldGoal)},
		[]keyboard.InlineBtn{field(session.FieldPreference), field(session.FieldBio)},
		[]keyboard.InlineBtn{field(session.FieldPhoto)},
		[]keyboard.InlineBtn{keyboard.Btn(v.text.T("onboarding.back"), actions.Profile{Kind: actions.ProfileEditBack}.Data())},
	)
}

func (v view) ownProfileKeyboard() *tele.ReplyMarkup {
	return keyboard.SingleButton(v.text.T("profile.edit"), actions.Profile{Kind: actions.ProfileEditMenu}.Data())
}

func (v view) filtersKeyboard() *tele.ReplyMarkup {
	return keyboard.InlineButtonsRows(
		[]keyboard.InlineBtn{
			keyboard.Btn(v.text.T("filters.gender"), actions.Filter{Kind: actions.FilterShowGender}.Data()),
			keyboard.Btn(v.text.T("filters.age"), actions.Filter{Kind: actions.FilterShowAge}.Data()),
		},
		[]keyboard.InlineBtn{keyboard.Btn(v.text.T("filters.done"), actions.Filter{Kind: actions.FilterDone}.Data())},
	)
}

func (v view) genderPresetKeyboard() *tele.ReplyMarkup {
	preset := func(key string, p actions.GenderPreset) keyboard.InlineBtn {
		return keyboard.Btn(v.text.T(key), actions.Filter{Kind: actions.FilterGender, Gender: p}.Data())
	}
	return keyboard.InlineButtons(
		preset("filters.own", actions.GenderOwn),
		preset("filters.opposite", actions.GenderOpposite),
		preset("filters.any", actions.GenderAny),
	)
}

func (v view) agePresetKeyboard() *tele.ReplyMarkup {
	preset := func(key string, p actions.AgePreset) keyboard.InlineBtn {
		return keyboard.Btn(v.text.T(key), actions.Filter{Kind: actions.FilterAge, Age: p}.Data())
	}
	return keyboard.InlineButtonsNPerRow([]keyboard.InlineBtn{
		preset("filters.peers", actions.AgePeers),
		preset("filters.young", actions.AgeYoung),
		preset("filters.mid", actions.AgeMid),
		preset("filters.mature", actions.AgeMature),
		preset("filters.any_age", actions.AgeAny),
		keyboard.Btn(v.text.T("filters.custom"), actions.Filter{Kind: actions.FilterAgeCustom}.Data()),
	}, 2)
}

func (v view) cardKeyboard(target int64) *tele.ReplyMarkup {
	act := func(key string, kind actions.SearchKind) keyboard.InlineBtn {
		return keyboard.Btn(v.text.T(key), actions.Search{Kind: kind, UserID: target}.Data())
	}
	return keyboard.InlineButtonsRows(
		[]keyboard.InlineBtn{act("search.report", actions.SearchReport), act("search.message", actions.SearchMessage)},
		[]keyboard.InlineBtn{act("search.pass", actions.SearchPass), act("search.like", actions.SearchLike)},
	)
}

func (v view) incomingKeyboard(in domain.Interaction) *tele.ReplyMarkup {
	return keyboard.InlineButtonsRows([]keyboard.InlineBtn{
		keyboard.Btn(v.text.T("search.skip"), actions.Search{Kind: actions.SearchIncomingSkip, InteractionID: in.ID}.Data()),
		keyboard.Btn(v.text.T("search.like_back"), actions.Search{Kind: actions.SearchIncomingLike, UserID: in.ActorID}.Data()),
	})
}

func (v view) noProfilesKeyboard() *tele.ReplyMarkup {
	return keyboard.InlineButtons(
		keyboard.Btn(v.text.T("search.adjust_filters"), actions.Filter{Kind: actions.FilterMenu}.Data()),
		keyboard.Btn(v.text.T("search.view_incoming"), actions.Search{Kind: actions.SearchIncoming}.Data()),
		keyboard.Btn(v.text.T("search.stop"), actions.Search{Kind: actions.SearchStop}.Data()),
	)
}

func (v view) browseKeyboard(key string) *tele.ReplyMarkup {
	return keyboard.SingleButton(v.text.T(key), actions.Search{Kind: actions.SearchStart}.Data())
}

func (v view) composeKeyboard() *tele.ReplyMarkup {
	return keyboard.SingleButton(v.text.T("search.message_cancel"), actions.Search{Kind: actions.SearchCancelMessage}.Data())
}

func (v view) viewIncomingKeyboard() *tele.ReplyMarkup {
	return keyboard.SingleButton(v.text.T("notify.view"), actions.Search{Kind: actions.SearchIncoming}.Data())
}

// matchKeyboard links to the other user's chat when their handle may be shown.
func (v view) matchKeyboard(other int64, username string) *tele.ReplyMarkup {
	btns := make([]keyboard.InlineBtn, 0, 3)
	if username != "" {
		btns = append(btns, keyboard.Link(v.text.T("notify.open_chat"), "https://t.me/"+username))
	}
	btns = append(btns,
		keyboard.Btn(v.text.T("search.message"), actions.Search{Kind: actions.SearchMessage, UserID: other}.Data()),
		keyboard.Btn(v.text.T("search.continue"), actions.Search{Kind: actions.SearchContinue}.Data()),
	)
	return keyboard.InlineButtons(btns...)
}

func (v view) reviewKeyboard(id uuid.UUID) *tele.ReplyMarkup {
	return keyboard.InlineButtonsRows([]keyboard.InlineBtn{
		keyboard.Btn(v.text.T("moderation.approve"), actions.Moderation{Kind: actions.ModerationApprove, RequestID: id}.Data()),
		keyboard.Btn(v.text.T("moderation.reject"), actions.Moderation{Kind: actions.ModerationReject, RequestID: id}.Data()),
	})
}

func (v view) reasonKeyboard(id uuid.UUID) *tele.ReplyMarkup {
	reason := func(r domain.RejectReason) keyboard.InlineBtn {
		return keyboard.Btn(v.text.T("moderation.reasons."+string(r)), actions.Moderation{Kind: actions.ModerationReason, RequestID: id, Reason: r}.Data())
	}
	return keyboard.InlineButtonsRows(
		[]keyboard.InlineBtn{reason(domain.RejectPhoto), reason(domain.RejectBio)},
		[]keyboard.InlineBtn{reason(domain.RejectInappropriate), reason(domain.RejectOther)},
		[]keyboard.InlineBtn{keyboard.Btn(v.text.T("moderation.back"), actions.Moderation{Kind: actions.ModerationBack, RequestID: id}.Data())},
	)
}
