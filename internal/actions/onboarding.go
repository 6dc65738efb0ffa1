package actions

import (
	"github.com/m3rciful/iskra/core/telegram/callbacks"
	"github.com/m3rciful/iskra/internal/domain"
)

// OnboardingKind enumerates onboarding buttons.
type OnboardingKind string

const (
	OnboardingCreate OnboardingKind = "create"
	OnboardingLearn  OnboardingKind = "learn"
	OnboardingBack   OnboardingKind = "back"
	OnboardingGender OnboardingKind = "gender"
)

// Onboarding is a parsed onboarding callback. Gender is set for OnboardingGender.
type Onboarding struct {
	Kind   OnboardingKind
	Gender domain.Gender
}

// ParseOnboarding parses the payload of an onboarding callback.
func ParseOnboarding(payload *string) (Onboarding, error) {
	r, seg, err := head(payload, PrefixOnboarding)
	if err != nil {
		return Onboarding{}, err
	}
	out := Onboarding{Kind: OnboardingKind(seg)}
	switch out.Kind {
	case OnboardingCreate, OnboardingLearn, OnboardingBack:
	case OnboardingGender:
		raw, err := r.String("gender")
		if err != nil {
			return Onboarding{}, err
		}
		if out.Gender, err = domain.ParseGender(raw); err != nil {
			return Onboarding{}, err
		}
	default:
		return Onboarding{}, unknown(PrefixOnboarding, seg)
	}
	return out, r.End()
}

// Data encodes the action as callback data.
func (a Onboarding) Data() string {
	if a.Kind == OnboardingGender {
		return callbacks.Join(PrefixOnboarding, string(a.Kind), string(a.Gender))
	}
	return callbacks.Join(PrefixOnboarding, string(a.Kind))
}
