package bot

import (
	"strconv"
	"strings"
	"time"

	"github.com/m3rciful/iskra/core/telegram/format"
	"github.com/m3rciful/iskra/internal/domain"
	"github.com/m3rciful/iskra/internal/session"

	tele "gopkg.in/telebot.v4"
)

const placeholder = "—"

func (v view) goalLabel(g domain.Goal) string {
	return v.text.T("profile.goals." + string(g))
}

func (v view) preferenceLabel(p domain.Preference) string {
	return v.text.T("profile.preferences." + string(p))
}

func orDash(s string) string {
	if s == "" {
		return placeholder
	}
	return s
}

// previewText renders a draft for confirmation.
func (v view) previewText(d *session.ProfileDraft) string {
	goal, pref := placeholder, placeholder
	if g := format.Deref(d.Goal, ""); g != "" {
		goal = v.goalLabel(g)
	}
	if p := format.Deref(d.Preference, ""); p != "" {
		pref = v.preferenceLabel(p)
	}
	return v.text.T("profile.preview_title") + "\n\n" +
		v.text.T("profile.preview_body", orDash(d.City), pref, goal, orDash(d.Bio)) + "\n\n" +
		v.text.T("profile.preview_footer")
}

// cardText renders the caption of a profile card.
func (v view) cardText(u domain.User, p domain.Profile, now time.Time) string {
	return v.text.T("profile.card", displayName(u, p), u.AgeAt(now), p.City, p.Bio)
}

func (v view) missingText(fields []session.ProfileField) string {
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = strings.ToLower(v.text.T("profile.fields." + string(f)))
	}
	return v.text.T("profile.incomplete", strings.Join(names, ", "))
}

func (v view) gendersText(gs []domain.Gender) string {
	if len(gs) == len(domain.AllGenders()) {
		return v.text.T("filters.genders.all")
	}
	names := make([]string, len(gs))
	for i, g := range gs {
		names[i] = v.text.T("filters.genders." + string(g))
	}
	return strings.Join(names, ", ")
}

func (v view) filterText(f domain.Filter) string {
	return v.text.T("filters.title") + "\n\n" +
		v.text.T("filters.summary", v.gendersText(f.TargetGenders), f.AgeMin, f.AgeMax)
}

func displayName(u domain.User, p domain.Profile) string {
	if p.DisplayName != "" {
		return p.DisplayName
	}
	if u.Username != "" {
		return u.Username
	}
	return "User " + strconv.FormatInt(u.ID, 10)
}

// senderName picks the name a new profile is published under.
func senderName(u *tele.User) string {
	if u == nil {
		return ""
	}
	if name := strings.TrimSpace(u.FirstName + " " + u.LastName); name != "" {
		return name
	}
	if u.Username != "" {
		return u.Username
	}
	return "User " + strconv.FormatInt(u.ID, 10)
}

// reviewText renders a moderation request for the admin as MarkdownV2.
func (v view) reviewText(u domain.User, req domain.ModerationRequest) string {
	body := v.text.T("moderation.request",
		req.UserID, u.Username, req.DisplayName, req.City,
		v.goalLabel(req.Goal), v.preferenceLabel(req.Preference), req.Bio)
	return "*" + format.MDV2(v.text.T("moderation.request_title")) + "*\n\n" + format.MDV2(body)
}
