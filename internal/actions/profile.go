package actions

import (
	"fmt"

	"github.com/m3rciful/iskra/core/telegram/callbacks"
	"github.com/m3rciful/iskra/internal/domain"
	"github.com/m3rciful/iskra/internal/session"
)

// ProfileKind enumerates profile authoring buttons.
type ProfileKind string

const (
	ProfileCreate     ProfileKind = "create"
	ProfileSubmit     ProfileKind = "submit"
	ProfileGoal       ProfileKind = "goal"
	ProfilePreference ProfileKind = "pref"
	ProfileEditMenu   ProfileKind = "edit.menu"
	ProfileEditBack   ProfileKind = "edit.back"
	ProfileEditField  ProfileKind = "edit.field"
)

// Profile is a parsed profile callback.
type Profile struct {
	Kind       ProfileKind
	Goal       domain.Goal
	Preference domain.Preference
	Field      session.ProfileField
}

// ParseProfile parses the payload of a profile callback.
func ParseProfile(payload *string) (Profile, error) {
	r, seg, err := head(payload, PrefixProfile)
	if err != nil {
		return Profile{}, err
	}
	var out Profile
	switch seg {
	case "create":
		out.Kind = ProfileCreate
	case "submit":
		out.Kind = ProfileSubmit
	case "goal":
		out.Kind = ProfileGoal
		raw, err := r.String("goal")
		if err != nil {
			return Profile{}, err
		}
		if out.Goal, err = domain.ParseGoal(raw); err != nil {
			return Profile{}, err
		}
	case "pref":
		out.Kind = ProfilePreference
		raw, err := r.String("preference")
		if err != nil {
			return Profile{}, err
		}
		if out.Preference, err = domain.ParsePreference(raw); err != nil {
			return Profile{}, err
		}
	case "edit":
		sub, err := r.String("edit target")
		if err != nil {
			return Profile{}, err
		}
		switch sub {
		case "menu":
			out.Kind = ProfileEditMenu
		case "back":
			out.Kind = ProfileEditBack
		default:
			field, ok := session.ParseProfileField(sub)
			if !ok {
				return Profile{}, fmt.Errorf("%w: unknown profile field %q", callbacks.ErrMalformed, sub)
			}
			out.Kind = ProfileEditField
			out.Field = field
		}
	default:
		return Profile{}, unknown(PrefixProfile, seg)
	}
	return out, r.End()
}

// Data encodes the action as callback data.
func (a Profile) Data() string {
	switch a.Kind {
	case ProfileGoal:
		return callbacks.Join(PrefixProfile, "goal", string(a.Goal))
	case ProfilePreference:
		return callbacks.Join(PrefixProfile, "pref", string(a.Preference))
	case ProfileEditMenu:
		return callbacks.Join(PrefixProfile, "edit", "menu")
	case ProfileEditBack:
		return callbacks.Join(PrefixProfile, "edit", "back")
	case ProfileEditField:
		return callbacks.Join(PrefixProfile, "edit", string(a.Field))
	}
	return callbacks.Join(PrefixProfile, string(a.Kind))
}
