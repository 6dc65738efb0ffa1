package domain

import "fmt"

// Gender of a registered user.
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

// Opposite returns the other gender.
func (g Gender) Opposite() Gender {
	if g == GenderMale {
		return GenderFemale
	}
	return GenderMale
}

// ParseGender validates a raw gender value.
func ParseGender(s string) (Gender, error) {
	switch Gender(s) {
	case GenderMale, GenderFemale:
		return Gender(s), nil
	}
	return "", Validation(fmt.Sprintf("unknown gender %q", s))
}

// AllGenders lists every gender in a stable order.
func AllGenders() []Gender { return []Gender{GenderMale, GenderFemale} }

// Goal is what a profile owner is looking for on the platform.
type Goal string

const (
	GoalFriendship   Goal = "friendship"
	GoalRelationship Goal = "relationship"
	GoalBoth         Goal = "both"
)

// ParseGoal validates a raw goal value.
func ParseGoal(s string) (Goal, error) {
	switch Goal(s) {
	case GoalFriendship, GoalRelationship, GoalBoth:
		return Goal(s), nil
	}
	return "", Validation(fmt.Sprintf("unknown goal %q", s))
}

// Kinds expands a goal into the relation kinds it covers.
func (g Goal) Kinds() []RelationKind {
	switch g {
	case GoalFriendship:
		return []RelationKind{RelationFriendship}
	case GoalRelationship:
		return []RelationKind{RelationRelationship}
	default:
		return []RelationKind{RelationFriendship, RelationRelationship}
	}
}

// Preference is the gender a profile owner would like to meet.
type Preference string

const (
	PreferMale   Preference = "male"
	PreferFemale Preference = "female"
	PreferAny    Preference = "any"
)

// ParsePreference validates a raw preference value.
func ParsePreference(s string) (Preference, error) {
	switch Preference(s) {
	case PreferMale, PreferFemale, PreferAny:
		return Preference(s), nil
	}
	return "", Validation(fmt.Sprintf("unknown preference %q", s))
}

// Genders expands a preference into target genders.
func (p Preference) Genders() []Gender {
	switch p {
	case PreferMale:
		return []Gender{GenderMale}
	case PreferFemale:
		return []Gender{GenderFemale}
	default:
		return AllGenders()
	}
}

// RelationKind classifies a match and a filter's desired relationship.
type RelationKind string

const (
	RelationFriendship   RelationKind = "friendship"
	RelationRelationship RelationKind = "relationship"
)

// Action is a directed signal from one user toward another.
type Action string

const (
	ActionPass    Action = "pass"
	ActionLike    Action = "like"
	ActionMessage Action = "message"
	ActionReport  Action = "report"
)

// Valid reports whether a is a known action.
func (a Action) Valid() bool {
	switch a {
	case ActionPass, ActionLike, ActionMessage, ActionReport:
		return true
	}
	return false
}

// UserStatus is the account lifecycle state.
type UserStatus string

const (
	UserActive   UserStatus = "active"
	UserPaused   UserStatus = "paused"
	UserBanned   UserStatus = "banned"
	UserArchived UserStatus = "archived"
)

// ModerationStatus tracks a profile review.
type ModerationStatus string

const (
	ModerationPending  ModerationStatus = "pending"
	ModerationApproved ModerationStatus = "approved"
	ModerationRejected ModerationStatus = "rejected"
)

// RejectReason is a canned moderator decision.
type RejectReason string

const (
	RejectPhoto         RejectReason = "photo"
	RejectBio           RejectReason = "bio"
	RejectInappropriate RejectReason = "inappropriate"
	RejectOther         RejectReason = "other"
)

// ParseRejectReason validates a raw rejection reason.
func ParseRejectReason(s string) (RejectReason, error) {
	switch RejectReason(s) {
	case RejectPhoto, RejectBio, RejectInappropriate, RejectOther:
		return RejectReason(s), nil
	}
	return "", Validation(fmt.Sprintf("unknown reject reason %q", s))
}

// Text is the explanation sent to the profile owner.
func (r RejectReason) Text() string {
	switch r {
	case RejectPhoto:
		return "Please use a clear photo of yourself"
	case RejectBio:
		return "Please update your bio to be more descriptive"
	case RejectInappropriate:
		return "Content doesn't meet our community guidelines"
	default:
		return "Please review and update your profile"
	}
}
