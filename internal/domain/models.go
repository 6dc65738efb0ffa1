// Package domain holds the dating entities, their typed errors and the
// persistence contracts implemented by the storage packages.
package domain

import (
	"slices"
	"time"

	"github.com/google/uuid"
)

// User is a registered account keyed by its Telegram id.
type User struct {
	ID        int64      `db:"id"`
	Username  string     `db:"username"`
	BirthDate time.Time  `db:"birth_date"`
	Gender    Gender     `db:"gender"`
	Status    UserStatus `db:"status"`
	IsMuted   bool       `db:"is_muted"`
	CreatedAt time.Time  `db:"created_at"`
}

// AgeAt returns the full years between the birth date and now.
func (u User) AgeAt(now time.Time) int {
	return AgeAt(u.BirthDate, now)
}

// AgeAt counts completed years from birth to now in UTC.
func AgeAt(birth, now time.Time) int {
	birth, now = birth.UTC(), now.UTC()
	age := now.Year() - birth.Year()
	if now.Month() < birth.Month() || (now.Month() == birth.Month() && now.Day() < birth.Day()) {
		age--
	}
	return age
}

// Profile is a moderated, publicly visible card. A row exists only once a
// moderation request has been approved.
type Profile struct {
	UserID      int64      `db:"user_id"`
	DisplayName string     `db:"display_name"`
	Bio         string     `db:"bio"`
	PhotoFileID string     `db:"photo_file_id"`
	City        string     `db:"city"`
	Goal        Goal       `db:"goal"`
	Preference  Preference `db:"preference"`
	CreatedAt   time.Time  `db:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at"`
}

// ModerationRequest is a submitted profile waiting for an admin decision.
type ModerationRequest struct {
	ID          uuid.UUID        `db:"id"`
	UserID      int64            `db:"user_id"`
	DisplayName string           `db:"display_name"`
	Bio         string           `db:"bio"`
	PhotoFileID string           `db:"photo_file_id"`
	City        string           `db:"city"`
	Goal        Goal             `db:"goal"`
	Preference  Preference       `db:"preference"`
	Status      ModerationStatus `db:"status"`
	Reason      string           `db:"reason"`
	CreatedAt   time.Time        `db:"created_at"`
	ClosedAt    *time.Time       `db:"closed_at"`
}

// ProfileFrom projects an approved request into the profile it publishes.
func ProfileFrom(m ModerationRequest, now time.Time) Profile {
	return Profile{
		UserID:      m.UserID,
		DisplayName: m.DisplayName,
		Bio:         m.Bio,
		PhotoFileID: m.PhotoFileID,
		City:        m.City,
		Goal:        m.Goal,
		Preference:  m.Preference,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Filter holds per-user search preferences.
type Filter struct {
	UserID        int64
	TargetGenders []Gender
	AgeMin        int
	AgeMax        int
	LookingFor    []RelationKind
}

// AcceptsGender reports whether g is among the target genders.
func (f Filter) AcceptsGender(g Gender) bool {
	return slices.Contains(f.TargetGenders, g)
}

// DefaultFilter is used until the user saves their own filter.
func DefaultFilter(userID int64, floor, ceiling int) Filter {
	return Filter{
		UserID:        userID,
		TargetGenders: AllGenders(),
		AgeMin:        floor,
		AgeMax:        ceiling,
		LookingFor:    []RelationKind{RelationFriendship, RelationRelationship},
	}
}

// FilterForProfile seeds a filter from the preferences given at profile creation.
func FilterForProfile(p Profile, floor, ceiling int) Filter {
	f := DefaultFilter(p.UserID, floor, ceiling)
	f.TargetGenders = p.Preference.Genders()
	f.LookingFor = p.Goal.Kinds()
	return f
}

// Interaction is one actor's latest action toward one target.
type Interaction struct {
	ID        uuid.UUID `db:"id"`
	ActorID   int64     `db:"actor_id"`
	TargetID  int64     `db:"target_id"`
	Action    Action    `db:"action"`
	Message   string    `db:"message"`
	IsHidden  bool      `db:"is_hidden"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// Match is a deduplicated mutual like stored in canonical order.
type Match struct {
	ID        uuid.UUID    `db:"id"`
	UserLow   int64        `db:"user_low"`
	UserHigh  int64        `db:"user_high"`
	Kind      RelationKind `db:"kind"`
	CreatedAt time.Time    `db:"created_at"`
}

// Other returns the participant that is not userID.
func (m Match) Other(userID int64) int64 {
	if m.UserLow == userID {
		return m.UserHigh
	}
	return m.UserLow
}

// CanonicalPair orders two user ids so the smaller one comes first.
func CanonicalPair(a, b int64) (low, high int64) {
	if a < b {
		return a, b
	}
	return b, a
}

// Candidate is a profile eligible to be shown to a searching user.
type Candidate struct {
	User    User
	Profile Profile
}
