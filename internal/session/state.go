package session

import "strconv"

// State is the conversation node a user is in. The set of implementations is
// closed: only the types in this file satisfy it.
type State interface {
	// Key identifies the full (branch, step) pair for routing.
	Key() string
	sealed()
}

// OnboardingStep enumerates registration steps.
type OnboardingStep int

const (
	AwaitingBirthdate OnboardingStep = iota + 1
	AwaitingGender
)

// ProfileStep enumerates profile authoring steps.
type ProfileStep int

const (
	EnteringCity ProfileStep = iota + 1
	SelectingGoal
	SelectingPreference
	EnteringBio
	UploadingPhoto
	Previewing
	Editing
)

// ProfileField names a draft field that can be re-collected from the preview.
type ProfileField string

const (
	FieldCity       ProfileField = "city"
	FieldGoal       ProfileField = "goal"
	FieldPreference ProfileField = "preference"
	FieldBio        ProfileField = "bio"
	FieldPhoto      ProfileField = "photo"
)

// ParseProfileField validates a field name.
func ParseProfileField(s string) (ProfileField, bool) {
	switch ProfileField(s) {
	case FieldCity, FieldGoal, FieldPreference, FieldBio, FieldPhoto:
		return ProfileField(s), true
	}
	return "", false
}

// SettingsStep enumerates filter configuration steps.
type SettingsStep int

const (
	FiltersMenu SettingsStep = iota + 1
	FiltersAgeInput
)

// SearchStep enumerates browsing steps.
type SearchStep int

const (
	Browsing SearchStep = iota + 1
	ViewingIncoming
	NoProfiles
	ComposingMessage
)

// Idle means no flow is active.
type Idle struct{}

// Onboarding is the registration flow.
type Onboarding struct {
	Step OnboardingStep
}

// Profile is the profile authoring flow. Field is set only while Editing.
type Profile struct {
	Step  ProfileStep
	Field ProfileField
}

// Settings is the filter configuration flow.
type Settings struct {
	Step SettingsStep
}

// Search is the browsing flow. TargetID is set only while ComposingMessage.
type Search struct {
	Step     SearchStep
	TargetID int64
}

func (Idle) sealed()       {}
func (Onboarding) sealed() {}
func (Profile) sealed()    {}
func (Settings) sealed()   {}
func (Search) sealed()     {}

// Key implements State.
func (Idle) Key() string { return "idle" }

// Key implements State.
func (s Onboarding) Key() string {
	switch s.Step {
	case AwaitingBirthdate:
		return "onboarding.awaiting_birthdate"
	case AwaitingGender:
		return "onboarding.awaiting_gender"
	}
	return "onboarding.unknown"
}

// Key implements State.
func (s Profile) Key() string {
	switch s.Step {
	case EnteringCity:
		return "profile.entering_city"
	case SelectingGoal:
		return "profile.selecting_goal"
	case SelectingPreference:
		return "profile.selecting_preference"
	case EnteringBio:
		return "profile.entering_bio"
	case UploadingPhoto:
		return "profile.uploading_photo"
	case Previewing:
		return "profile.previewing"
	case Editing:
		return "profile.editing." + string(s.Field)
	}
	return "profile.unknown"
}

// Key implements State.
func (s Settings) Key() string {
	switch s.Step {
	case FiltersMenu:
		return "settings.filters"
	case FiltersAgeInput:
		return "settings.filters_age_input"
	}
	return "settings.unknown"
}

// Key implements State.
func (s Search) Key() string {
	switch s.Step {
	case Browsing:
		return "search.browsing"
	case ViewingIncoming:
		return "search.viewing_incoming"
	case NoProfiles:
		return "search.no_profiles"
	case ComposingMessage:
		return "search.composing_message"
	}
	return "search.unknown"
}

// String renders the state for logs, including the message target.
func (s Search) String() string {
	if s.Step == ComposingMessage {
		return s.Key() + "(" + strconv.FormatInt(s.TargetID, 10) + ")"
	}
	return s.Key()
}

// ProfileEditing is the state for re-collecting one draft field.
func ProfileEditing(field ProfileField) State { return Profile{Step: Editing, Field: field} }

// Composing is the state for writing a message to targetID.
func Composing(targetID int64) State { return Search{Step: ComposingMessage, TargetID: targetID} }

// IsIdle reports whether st is the idle state (nil counts as idle).
func IsIdle(st State) bool {
	if st == nil {
		return true
	}
	_, ok := st.(Idle)
	return ok
}
