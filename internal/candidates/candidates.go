// Package candidates decides which profile a searching user sees next.
package candidates

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/m3rciful/iskra/core/logger"
	"github.com/m3rciful/iskra/core/telegram/helpers"
	"github.com/m3rciful/iskra/internal/domain"
)

// ErrNoCandidates means the requester has seen everyone the filter allows.
var ErrNoCandidates = errors.New("candidates: no more profiles")

// BirthWindow converts an inclusive age range into birth dates relative to
// now. after is exclusive, through is inclusive, both at UTC midnight.
func BirthWindow(now time.Time, ageMin, ageMax int) (after, through time.Time) {
	today := helpers.StartOfDay(now)
	return today.AddDate(-(ageMax + 1), 0, 0), today.AddDate(-ageMin, 0, 0)
}

// Bounds are the age limits applied when a user has no saved filter.
type Bounds struct {
	Floor   int
	Ceiling int
}

// Selector queries profiles for a searching user.
type Selector struct {
	profiles     domain.ProfileRepository
	filters      domain.FilterRepository
	interactions domain.InteractionRepository
	bounds       Bounds
	now          func() time.Time
}

// NewSelector wires a selector. now defaults to time.Now.
func NewSelector(repos domain.Repositories, bounds Bounds, now func() time.Time) *Selector {
	if now == nil {
		now = time.Now
	}
	return &Selector{
		profiles:     repos.Profiles,
		filters:      repos.Filters,
		interactions: repos.Interactions,
		bounds:       bounds,
		now:          now,
	}
}

// Find returns up to limit candidates for requester ordered by user id. The
// requester and every id in excluded are never returned.
func (s *Selector) Find(ctx context.Context, requester int64, f domain.Filter, excluded map[int64]struct{}, limit int) ([]domain.Candidate, error) {
	if len(f.TargetGenders) == 0 {
		return nil, nil
	}
	after, through := BirthWindow(s.now(), f.AgeMin, f.AgeMax)
	start := time.Now()
	found, err := s.profiles.Candidates(ctx, domain.CandidateQuery{
		Requester:   requester,
		Genders:     f.TargetGenders,
		BornAfter:   after,
		BornThrough: through,
		Exclude:     excluded,
		Limit:       limit,
	})
	if err != nil {
		return nil, fmt.Errorf("query candidates: %w", err)
	}
	out := found[:0]
	for _, c := range found {
		if c.User.ID == requester {
			continue
		}
		if _, skip := excluded[c.User.ID]; skip {
			continue
		}
		out = append(out, c)
	}
	logger.Debug(ctx, "search", "candidates.find",
		slog.Int64("actor_id", requester),
		slog.Int("candidates", len(out)),
		slog.Int("count", len(excluded)),
		slog.Duration("duration", logger.RoundMS(logger.Took(start))),
	)
	return out, nil
}

// Filter loads the requester's filter, falling back to the default one.
func (s *Selector) Filter(ctx context.Context, requester int64) (domain.Filter, error) {
	f, err := s.filters.Find(ctx, requester)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.DefaultFilter(requester, s.bounds.Floor, s.bounds.Ceiling), nil
	}
	if err != nil {
		return domain.Filter{}, fmt.Errorf("load filter: %w", err)
	}
	return f, nil
}

// Next returns the first candidate the requester has not interacted with.
func (s *Selector) Next(ctx context.Context, requester int64) (domain.Candidate, error) {
	f, err := s.Filter(ctx, requester)
	if err != nil {
		return domain.Candidate{}, err
	}
	seen, err := s.interactions.Targets(ctx, requester)
	if err != nil {
		return domain.Candidate{}, fmt.Errorf("load interactions: %w", err)
	}
	found, err := s.Find(ctx, requester, f, seen, 1)
	if err != nil {
		return domain.Candidate{}, err
	}
	if len(found) == 0 {
		logger.Info(ctx, "search", "candidates.next",
			slog.String("outcome", "exhausted"),
			slog.Int64("actor_id", requester),
		)
		return domain.Candidate{}, ErrNoCandidates
	}
	return found[0], nil
}
