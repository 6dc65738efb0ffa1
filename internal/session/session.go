package session

import (
	"time"

	"github.com/m3rciful/iskra/internal/domain"
)

// OnboardingScratch accumulates registration answers.
type OnboardingScratch struct {
	BirthDate *time.Time
	Gender    *domain.Gender
}

// ProfileDraft accumulates profile answers until submission.
type ProfileDraft struct {
	City        string
	Goal        *domain.Goal
	Preference  *domain.Preference
	Bio         string
	PhotoFileID string
}

// Missing lists the fields still required before submission.
func (d *ProfileDraft) Missing() []ProfileField {
	if d == nil {
		return []ProfileField{FieldCity, FieldGoal, FieldPreference, FieldBio, FieldPhoto}
	}
	var out []ProfileField
	if d.City == "" {
		out = append(out, FieldCity)
	}
	if d.Goal == nil {
		out = append(out, FieldGoal)
	}
	if d.Preference == nil {
		out = append(out, FieldPreference)
	}
	if d.Bio == "" {
		out = append(out, FieldBio)
	}
	if d.PhotoFileID == "" {
		out = append(out, FieldPhoto)
	}
	return out
}

// Complete reports whether every field is filled.
func (d *ProfileDraft) Complete() bool { return len(d.Missing()) == 0 }

// Session is one user's conversation state plus scratch data.
type Session struct {
	State          State
	LastActivityAt time.Time
	Onboarding     *OnboardingScratch
	Draft          *ProfileDraft
}

// EnsureOnboarding returns the onboarding scratch, allocating it if needed.
func (s *Session) EnsureOnboarding() *OnboardingScratch {
	if s.Onboarding == nil {
		s.Onboarding = &OnboardingScratch{}
	}
	return s.Onboarding
}

// EnsureDraft returns the profile draft, allocating it if needed.
func (s *Session) EnsureDraft() *ProfileDraft {
	if s.Draft == nil {
		s.Draft = &ProfileDraft{}
	}
	return s.Draft
}

// clone deep-copies the session so callers never alias store memory.
func (s *Session) clone() Session {
	out := Session{State: s.State, LastActivityAt: s.LastActivityAt}
	if s.Onboarding != nil {
		ob := *s.Onboarding
		if ob.BirthDate != nil {
			t := *ob.BirthDate
			ob.BirthDate = &t
		}
		if ob.Gender != nil {
			g := *ob.Gender
			ob.Gender = &g
		}
		out.Onboarding = &ob
	}
	if s.Draft != nil {
		d := *s.Draft
		if d.Goal != nil {
			g := *d.Goal
			d.Goal = &g
		}
		if d.Preference != nil {
			p := *d.Preference
			d.Preference = &p
		}
		out.Draft = &d
	}
	return out
}

// normalize restores invariants after a mutation.
func (s *Session) normalize() {
	if s.State == nil {
		s.State = Idle{}
	}
	if IsIdle(s.State) {
		s.Onboarding = nil
		s.Draft = nil
	}
}
