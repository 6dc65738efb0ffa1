// Package memory implements the domain repositories in process memory. It
// enforces the same uniqueness rules as the Postgres schema and backs tests
// and the memory storage driver.
package memory

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/m3rciful/iskra/internal/domain"
)

type pair struct{ a, b int64 }

// Store holds every table behind one mutex.
type Store struct {
	mu           sync.RWMutex
	users        map[int64]domain.User
	profiles     map[int64]domain.Profile
	moderations  map[uuid.UUID]domain.ModerationRequest
	filters      map[int64]domain.Filter
	interactions map[uuid.UUID]domain.Interaction
	byPair       map[pair]uuid.UUID
	matches      map[pair]domain.Match
}

// New returns an empty store.
func New() *Store {
	return &Store{
		users:        make(map[int64]domain.User),
		profiles:     make(map[int64]domain.Profile),
		moderations:  make(map[uuid.UUID]domain.ModerationRequest),
		filters:      make(map[int64]domain.Filter),
		interactions: make(map[uuid.UUID]domain.Interaction),
		byPair:       make(map[pair]uuid.UUID),
		matches:      make(map[pair]domain.Match),
	}
}

// Repositories exposes the store through the domain contracts.
func (s *Store) Repositories() domain.Repositories {
	return domain.Repositories{
		Users:        Users{s},
		Profiles:     Profiles{s},
		Moderations:  Moderations{s},
		Filters:      Filters{s},
		Interactions: Interactions{s},
		Matches:      Matches{s},
	}
}

// Users implements domain.UserRepository.
type Users struct{ s *Store }

func (r Users) Find(_ context.Context, id int64) (domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	u, ok := r.s.users[id]
	if !ok {
		return domain.User{}, domain.NotFound("user", id)
	}
	return u, nil
}

func (r Users) Create(_ context.Context, u domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[u.ID]; ok {
		return domain.Conflict("user", nil)
	}
	r.s.users[u.ID] = u
	return nil
}

func (r Users) SetStatus(_ context.Context, id int64, status domain.UserStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return domain.NotFound("user", id)
	}
	u.Status = status
	r.s.users[id] = u
	return nil
}

// Profiles implements domain.ProfileRepository.
type Profiles struct{ s *Store }

func (r Profiles) Find(_ context.Context, userID int64) (domain.Profile, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.profiles[userID]
	if !ok {
		return domain.Profile{}, domain.NotFound("profile", userID)
	}
	return p, nil
}

func (r Profiles) Upsert(_ context.Context, p domain.Profile) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if old, ok := r.s.profiles[p.UserID]; ok {
		p.CreatedAt = old.CreatedAt
	}
	r.s.profiles[p.UserID] = p
	return nil
}

func (r Profiles) Candidates(_ context.Context, q domain.CandidateQuery) ([]domain.Candidate, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []domain.Candidate
	for id, p := range r.s.profiles {
		if id == q.Requester {
			continue
		}
		if _, skip := q.Exclude[id]; skip {
			continue
		}
		u, ok := r.s.users[id]
		if !ok || u.Status != domain.UserActive {
			continue
		}
		if !slices.Contains(q.Genders, u.Gender) {
			continue
		}
		if !u.BirthDate.After(q.BornAfter) || u.BirthDate.After(q.BornThrough) {
			continue
		}
		out = append(out, domain.Candidate{User: u, Profile: p})
	}
	slices.SortFunc(out, func(a, b domain.Candidate) int {
		switch {
		case a.User.ID < b.User.ID:
			return -1
		case a.User.ID > b.User.ID:
			return 1
		}
		return 0
	})
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

// Moderations implements domain.ModerationRepository.
type Moderations struct{ s *Store }

func (r Moderations) CreatePending(_ context.Context, m domain.ModerationRequest) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.moderations[m.ID]; ok {
		return domain.Conflict("moderation request", nil)
	}
	if r.hasPendingLocked(m.UserID, m.ID) {
		return domain.Conflict("pending moderation request", nil)
	}
	m.Status = domain.ModerationPending
	r.s.moderations[m.ID] = m
	return nil
}

func (r Moderations) Find(_ context.Context, id uuid.UUID) (domain.ModerationRequest, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	m, ok := r.s.moderations[id]
	if !ok {
		return domain.ModerationRequest{}, domain.NotFound("moderation request", id)
	}
	return m, nil
}

func (r Moderations) Close(_ context.Context, id uuid.UUID, status domain.ModerationStatus, reason string, at time.Time) (domain.ModerationRequest, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	m, ok := r.s.moderations[id]
	if !ok || m.Status != domain.ModerationPending {
		return domain.ModerationRequest{}, domain.NotFound("pending moderation request", id)
	}
	m.Status = status
	m.Reason = reason
	m.ClosedAt = &at
	r.s.moderations[id] = m
	return m, nil
}

func (r Moderations) Reopen(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	m, ok := r.s.moderations[id]
	if !ok || m.Status == domain.ModerationPending {
		return domain.NotFound("closed moderation request", id)
	}
	if r.hasPendingLocked(m.UserID, id) {
		return domain.Conflict("pending moderation request", nil)
	}
	m.Status = domain.ModerationPending
	m.Reason = ""
	m.ClosedAt = nil
	r.s.moderations[id] = m
	return nil
}

// hasPendingLocked mirrors the partial unique index on pending requests.
func (r Moderations) hasPendingLocked(userID int64, except uuid.UUID) bool {
	for id, m := range r.s.moderations {
		if id != except && m.UserID == userID && m.Status == domain.ModerationPending {
			return true
		}
	}
	return false
}

func (r Moderations) ListPending(_ context.Context, limit int) ([]domain.ModerationRequest, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []domain.ModerationRequest
	for _, m := range r.s.moderations {
		if m.Status == domain.ModerationPending {
			out = append(out, m)
		}
	}
	slices.SortFunc(out, func(a, b domain.ModerationRequest) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r Moderations) PendingFor(_ context.Context, userID int64) (domain.ModerationRequest, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var (
		out   domain.ModerationRequest
		found bool
	)
	for _, m := range r.s.moderations {
		if m.UserID != userID || m.Status != domain.ModerationPending {
			continue
		}
		if !found || m.CreatedAt.After(out.CreatedAt) {
			out, found = m, true
		}
	}
	if !found {
		return domain.ModerationRequest{}, domain.NotFound("pending moderation request", userID)
	}
	return out, nil
}

// Filters implements domain.FilterRepository.
type Filters struct{ s *Store }

func (r Filters) Find(_ context.Context, userID int64) (domain.Filter, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	f, ok := r.s.filters[userID]
	if !ok {
		return domain.Filter{}, domain.NotFound("filter", userID)
	}
	f.TargetGenders = slices.Clone(f.TargetGenders)
	f.LookingFor = slices.Clone(f.LookingFor)
	return f, nil
}

func (r Filters) Save(_ context.Context, f domain.Filter) error {
	if len(f.TargetGenders) == 0 {
		return domain.Validation("filter needs at least one target gender")
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	f.TargetGenders = slices.Clone(f.TargetGenders)
	f.LookingFor = slices.Clone(f.LookingFor)
	r.s.filters[f.UserID] = f
	return nil
}

// Interactions implements domain.InteractionRepository.
type Interactions struct{ s *Store }

func (r Interactions) Upsert(_ context.Context, in domain.Interaction) (domain.Interaction, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	key := pair{in.ActorID, in.TargetID}
	if id, ok := r.s.byPair[key]; ok {
		cur := r.s.interactions[id]
		cur.Action = in.Action
		cur.Message = in.Message
		cur.IsHidden = false
		cur.UpdatedAt = in.UpdatedAt
		r.s.interactions[id] = cur
		return cur, nil
	}
	if in.ID == uuid.Nil {
		in.ID = uuid.New()
	}
	in.IsHidden = false
	r.s.interactions[in.ID] = in
	r.s.byPair[key] = in.ID
	return in, nil
}

func (r Interactions) Find(_ context.Context, actorID, targetID int64) (domain.Interaction, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	id, ok := r.s.byPair[pair{actorID, targetID}]
	if !ok {
		return domain.Interaction{}, domain.NotFound("interaction", pair{actorID, targetID})
	}
	return r.s.interactions[id], nil
}

func (r Interactions) FindByID(_ context.Context, id uuid.UUID) (domain.Interaction, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	in, ok := r.s.interactions[id]
	if !ok {
		return domain.Interaction{}, domain.NotFound("interaction", id)
	}
	return in, nil
}

// HasLiked reports a visible like from actor to target.
func (r Interactions) HasLiked(_ context.Context, actorID, targetID int64) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	id, ok := r.s.byPair[pair{actorID, targetID}]
	if !ok {
		return false, nil
	}
	in := r.s.interactions[id]
	return in.Action == domain.ActionLike && !in.IsHidden, nil
}

func (r Interactions) Targets(_ context.Context, actorID int64) (map[int64]struct{}, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make(map[int64]struct{})
	for key := range r.s.byPair {
		if key.a == actorID {
			out[key.b] = struct{}{}
		}
	}
	return out, nil
}

func (r Interactions) Incoming(_ context.Context, targetID int64, actions []domain.Action) ([]domain.Interaction, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []domain.Interaction
	for _, in := range r.s.interactions {
		if in.TargetID == targetID && !in.IsHidden && slices.Contains(actions, in.Action) {
			out = append(out, in)
		}
	}
	slices.SortFunc(out, func(a, b domain.Interaction) int {
		return b.UpdatedAt.Compare(a.UpdatedAt)
	})
	return out, nil
}

func (r Interactions) HidePair(_ context.Context, actorID, targetID int64) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	id, ok := r.s.byPair[pair{actorID, targetID}]
	if !ok {
		return 0, nil
	}
	in := r.s.interactions[id]
	in.IsHidden = true
	r.s.interactions[id] = in
	return 1, nil
}

func (r Interactions) Hide(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	in, ok := r.s.interactions[id]
	if !ok {
		return domain.NotFound("interaction", id)
	}
	in.IsHidden = true
	r.s.interactions[id] = in
	return nil
}

// Count returns the number of stored interactions.
func (r Interactions) Count() int {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return len(r.s.interactions)
}

// Matches implements domain.MatchRepository.
type Matches struct{ s *Store }

func (r Matches) FindPair(_ context.Context, low, high int64) (domain.Match, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	m, ok := r.s.matches[pair{low, high}]
	if !ok {
		return domain.Match{}, domain.NotFound("match", pair{low, high})
	}
	return m, nil
}

func (r Matches) Insert(_ context.Context, m domain.Match) error {
	if m.UserLow >= m.UserHigh {
		return domain.Validation("match pair is not canonical")
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	key := pair{m.UserLow, m.UserHigh}
	if _, ok := r.s.matches[key]; ok {
		return domain.Conflict("match", nil)
	}
	r.s.matches[key] = m
	return nil
}

func (r Matches) ListFor(_ context.Context, userID int64) ([]domain.Match, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []domain.Match
	for _, m := range r.s.matches {
		if m.UserLow == userID || m.UserHigh == userID {
			out = append(out, m)
		}
	}
	slices.SortFunc(out, func(a, b domain.Match) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return out, nil
}

// Count returns the number of stored matches.
func (r Matches) Count() int {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return len(r.s.matches)
}
