package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// UserRepository persists registered accounts.
type UserRepository interface {
	Find(ctx context.Context, id int64) (User, error)
	Create(ctx context.Context, u User) error
	SetStatus(ctx context.Context, id int64, status UserStatus) error
}

// ProfileRepository persists approved profiles.
type ProfileRepository interface {
	Find(ctx context.Context, userID int64) (Profile, error)
	Upsert(ctx context.Context, p Profile) error
	// Candidates returns active users with profiles matching q, ordered by user id.
	Candidates(ctx context.Context, q CandidateQuery) ([]Candidate, error)
}

// CandidateQuery is the storage-level shape of a candidate search.
type CandidateQuery struct {
	Requester int64
	Genders   []Gender
	// BornAfter is exclusive, BornThrough inclusive.
	BornAfter   time.Time
	BornThrough time.Time
	Exclude     map[int64]struct{}
	Limit       int
}

// ModerationRepository persists profile review requests.
type ModerationRepository interface {
	// CreatePending stores a new request. A user has at most one pending
	// request; a second one is a conflict.
	CreatePending(ctx context.Context, m ModerationRequest) error
	Find(ctx context.Context, id uuid.UUID) (ModerationRequest, error)
	Close(ctx context.Context, id uuid.UUID, status ModerationStatus, reason string, at time.Time) (ModerationRequest, error)
	// Reopen returns a closed request to pending.
	Reopen(ctx context.Context, id uuid.UUID) error
	ListPending(ctx context.Context, limit int) ([]ModerationRequest, error)
	// PendingFor returns the newest pending request of a user.
	PendingFor(ctx context.Context, userID int64) (ModerationRequest, error)
}

// FilterRepository persists search filters.
type FilterRepository interface {
	Find(ctx context.Context, userID int64) (Filter, error)
	Save(ctx context.Context, f Filter) error
}

// InteractionRepository persists directed interactions with a unique
// (actor, target) pair.
type InteractionRepository interface {
	// Upsert inserts a row or overwrites action and message of the existing
	// pair, clearing the hidden flag.
	Upsert(ctx context.Context, in Interaction) (Interaction, error)
	Find(ctx context.Context, actorID, targetID int64) (Interaction, error)
	FindByID(ctx context.Context, id uuid.UUID) (Interaction, error)
	HasLiked(ctx context.Context, actorID, targetID int64) (bool, error)
	Targets(ctx context.Context, actorID int64) (map[int64]struct{}, error)
	Incoming(ctx context.Context, targetID int64, actions []Action) ([]Interaction, error)
	HidePair(ctx context.Context, actorID, targetID int64) (int, error)
	Hide(ctx context.Context, id uuid.UUID) error
}

// MatchRepository persists matches with a unique canonical pair.
type MatchRepository interface {
	FindPair(ctx context.Context, low, high int64) (Match, error)
	// Insert returns ErrConflict when the canonical pair already exists.
	Insert(ctx context.Context, m Match) error
	ListFor(ctx context.Context, userID int64) ([]Match, error)
}

// Repositories bundles the persistence collaborator.
type Repositories struct {
	Users        UserRepository
	Profiles     ProfileRepository
	Moderations  ModerationRepository
	Filters      FilterRepository
	Interactions InteractionRepository
	Matches      MatchRepository
}
