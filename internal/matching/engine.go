// Package matching records interactions between users and derives the
// symmetric match relation from mutual likes.
package matching

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/m3rciful/iskra/core/logger"
	"github.com/m3rciful/iskra/internal/domain"
)

const component = "match"

// Notifier tells users about what happened to them. Implementations should
// not block on delivery.
type Notifier interface {
	NotifyLike(ctx context.Context, targetID, actorID int64) error
	NotifyMatch(ctx context.Context, userID int64, m domain.Match) error
	NotifyMessage(ctx context.Context, targetID, actorID int64, text string) error
	NotifyReport(ctx context.Context, actorID, targetID int64) error
}

// Observer receives engine counters.
type Observer interface {
	ObserveInteraction(action domain.Action)
	ObserveMatch(created bool)
}

// Options configure an Engine.
type Options struct {
	Notifier Notifier
	Observer Observer
	Now      func() time.Time
}

// Engine enforces the interaction and match invariants on top of the
// repositories. It is safe for concurrent use.
type Engine struct {
	users        domain.UserRepository
	interactions domain.InteractionRepository
	matches      domain.MatchRepository
	notifier     Notifier
	observer     Observer
	now          func() time.Time
	inflight     singleflight.Group
}

// LikeResult describes the outcome of a like.
type LikeResult struct {
	Interaction domain.Interaction
	// Match is set when the like was mutual.
	Match *domain.Match
	// Created is true only for the call that inserted the match.
	Created bool
}

// Matched reports whether the like completed a mutual pair.
func (r LikeResult) Matched() bool { return r.Match != nil }

// NewEngine builds an engine over the given repositories.
func NewEngine(users domain.UserRepository, interactions domain.InteractionRepository, matches domain.MatchRepository, opts Options) *Engine {
	e := &Engine{
		users:        users,
		interactions: interactions,
		matches:      matches,
		notifier:     opts.Notifier,
		observer:     opts.Observer,
		now:          opts.Now,
	}
	if e.notifier == nil {
		e.notifier = nopNotifier{}
	}
	if e.now == nil {
		e.now = time.Now
	}
	return e
}

// RecordInteraction stores the latest action of actor toward target. An
// existing row for the ordered pair is overwritten and unhidden. A target
// without an account is reported as domain.ErrNotFound.
func (e *Engine) RecordInteraction(ctx context.Context, actorID, targetID int64, action domain.Action, message string) (domain.Interaction, error) {
	if actorID == targetID {
		return domain.Interaction{}, domain.Validation("cannot interact with yourself")
	}
	if !action.Valid() {
		return domain.Interaction{}, domain.Validation(fmt.Sprintf("unknown action %q", action))
	}
	if _, err := e.users.Find(ctx, targetID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			logger.Debug(ctx, component, "interaction.record",
				slog.String("outcome", "not_found"),
				slog.String("action", string(action)),
				slog.Int64("actor_id", actorID),
				slog.Int64("target_id", targetID),
			)
			return domain.Interaction{}, err
		}
		return domain.Interaction{}, fmt.Errorf("find target: %w", err)
	}
	now := e.now().UTC()
	in, err := e.interactions.Upsert(ctx, domain.Interaction{
		ID:        uuid.New(),
		ActorID:   actorID,
		TargetID:  targetID,
		Action:    action,
		Message:   message,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		logger.Error(ctx, component, "interaction.record",
			slog.String("status", "fail"),
			slog.String("action", string(action)),
			slog.Int64("actor_id", actorID),
			slog.Int64("target_id", targetID),
			slog.String("err", err.Error()),
		)
		return domain.Interaction{}, fmt.Errorf("record %s: %w", action, err)
	}
	if e.observer != nil {
		e.observer.ObserveInteraction(action)
	}
	logger.Debug(ctx, component, "interaction.record",
		slog.String("status", "ok"),
		slog.String("action", string(action)),
		slog.Int64("actor_id", actorID),
		slog.Int64("target_id", targetID),
		slog.String("interaction_id", in.ID.String()),
	)
	return in, nil
}

type matchResult struct {
	match   domain.Match
	created bool
	claimed atomic.Bool
}

// TryCreateMatch returns the match between a and b, inserting it when absent.
// Argument order does not matter. created is true for exactly one caller per
// inserted row, even when several calls for the pair run concurrently.
func (e *Engine) TryCreateMatch(ctx context.Context, a, b int64, kind domain.RelationKind) (domain.Match, bool, error) {
	if a == b {
		return domain.Match{}, false, domain.Validation("cannot match a user with themselves")
	}
	low, high := domain.CanonicalPair(a, b)
	key := strconv.FormatInt(low, 10) + ":" + strconv.FormatInt(high, 10)

	v, err, _ := e.inflight.Do(key, func() (interface{}, error) {
		return e.createMatch(ctx, low, high, kind)
	})
	if err != nil {
		return domain.Match{}, false, err
	}
	res := v.(*matchResult)
	created := res.created && res.claimed.CompareAndSwap(false, true)
	if e.observer != nil {
		e.observer.ObserveMatch(created)
	}
	return res.match, created, nil
}

func (e *Engine) createMatch(ctx context.Context, low, high int64, kind domain.RelationKind) (*matchResult, error) {
	existing, err := e.matches.FindPair(ctx, low, high)
	switch {
	case err == nil:
		return &matchResult{match: existing}, nil
	case !errors.Is(err, domain.ErrNotFound):
		return nil, fmt.Errorf("find match: %w", err)
	}

	m := domain.Match{
		ID:        uuid.New(),
		UserLow:   low,
		UserHigh:  high,
		Kind:      kind,
		CreatedAt: e.now().UTC(),
	}
	err = e.matches.Insert(ctx, m)
	if errors.Is(err, domain.ErrConflict) {
		// Another writer got there first; its row is the result.
		existing, err = e.matches.FindPair(ctx, low, high)
		if err != nil {
			return nil, fmt.Errorf("reread match after conflict: %w", err)
		}
		logger.Debug(ctx, component, "match.create",
			slog.String("outcome", "duplicate"),
			slog.String("match_id", existing.ID.String()),
		)
		return &matchResult{match: existing}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("insert match: %w", err)
	}
	logger.Info(ctx, component, "match.create",
		slog.String("outcome", "matched"),
		slog.String("match_id", m.ID.String()),
		slog.String("match_kind", string(kind)),
		slog.Int64("actor_id", low),
		slog.Int64("target_id", high),
	)
	return &matchResult{match: m, created: true}, nil
}

// Like records a like and completes a match when target already likes actor.
// Without a match the target is told about the incoming like.
func (e *Engine) Like(ctx context.Context, actorID, targetID int64, kind domain.RelationKind) (LikeResult, error) {
	in, err := e.RecordInteraction(ctx, actorID, targetID, domain.ActionLike, "")
	if err != nil {
		return LikeResult{}, err
	}
	res := LikeResult{Interaction: in}

	mutual, err := e.interactions.HasLiked(ctx, targetID, actorID)
	if err != nil {
		return res, fmt.Errorf("check mutual like: %w", err)
	}
	if !mutual {
		e.notify(ctx, "like", targetID, func(ctx context.Context) error {
			return e.notifier.NotifyLike(ctx, targetID, actorID)
		})
		return res, nil
	}

	m, created, err := e.TryCreateMatch(ctx, actorID, targetID, kind)
	if err != nil {
		return res, err
	}
	res.Match = &m
	res.Created = created
	if created {
		var g errgroup.Group
		for _, uid := range []int64{m.UserLow, m.UserHigh} {
			g.Go(func() error {
				e.notify(ctx, "match", uid, func(ctx context.Context) error {
					return e.notifier.NotifyMatch(ctx, uid, m)
				})
				return nil
			})
		}
		_ = g.Wait()
	}
	return res, nil
}

// LikeBack answers an incoming like from likerID and marks it as seen.
func (e *Engine) LikeBack(ctx context.Context, actorID, likerID int64, kind domain.RelationKind) (LikeResult, error) {
	res, err := e.Like(ctx, actorID, likerID, kind)
	if err != nil {
		return res, err
	}
	if _, err := e.interactions.HidePair(ctx, likerID, actorID); err != nil {
		logger.Warn(ctx, component, "interaction.hide",
			slog.String("status", "fail"),
			slog.Int64("actor_id", likerID),
			slog.Int64("target_id", actorID),
			slog.String("err", err.Error()),
		)
	}
	return res, nil
}

// Pass records that actor skipped target.
func (e *Engine) Pass(ctx context.Context, actorID, targetID int64) (domain.Interaction, error) {
	return e.RecordInteraction(ctx, actorID, targetID, domain.ActionPass, "")
}

// SendMessage records a message toward target and delivers it.
func (e *Engine) SendMessage(ctx context.Context, actorID, targetID int64, text string) (domain.Interaction, error) {
	if text == "" {
		return domain.Interaction{}, domain.Validation("message is empty")
	}
	in, err := e.RecordInteraction(ctx, actorID, targetID, domain.ActionMessage, text)
	if err != nil {
		return domain.Interaction{}, err
	}
	e.notify(ctx, "message", targetID, func(ctx context.Context) error {
		return e.notifier.NotifyMessage(ctx, targetID, actorID, text)
	})
	return in, nil
}

// Report records a report against target and alerts moderators.
func (e *Engine) Report(ctx context.Context, actorID, targetID int64) (domain.Interaction, error) {
	in, err := e.RecordInteraction(ctx, actorID, targetID, domain.ActionReport, "")
	if err != nil {
		return domain.Interaction{}, err
	}
	e.notify(ctx, "report", 0, func(ctx context.Context) error {
		return e.notifier.NotifyReport(ctx, actorID, targetID)
	})
	return in, nil
}

// Hide marks actor's interaction toward target as seen.
func (e *Engine) Hide(ctx context.Context, actorID, targetID int64) error {
	n, err := e.interactions.HidePair(ctx, actorID, targetID)
	if err != nil {
		return fmt.Errorf("hide interaction: %w", err)
	}
	if n == 0 {
		return domain.NotFound("interaction", strconv.FormatInt(actorID, 10)+"->"+strconv.FormatInt(targetID, 10))
	}
	return nil
}

// HideByID marks one interaction as seen.
func (e *Engine) HideByID(ctx context.Context, id uuid.UUID) error {
	return e.interactions.Hide(ctx, id)
}

// Incoming lists visible likes and messages addressed to userID, newest first.
func (e *Engine) Incoming(ctx context.Context, userID int64) ([]domain.Interaction, error) {
	list, err := e.interactions.Incoming(ctx, userID, []domain.Action{domain.ActionLike, domain.ActionMessage})
	if err != nil {
		return nil, fmt.Errorf("list incoming: %w", err)
	}
	slices.SortStableFunc(list, func(a, b domain.Interaction) int {
		return b.UpdatedAt.Compare(a.UpdatedAt)
	})
	return list, nil
}

// Matches lists the matches userID takes part in.
func (e *Engine) Matches(ctx context.Context, userID int64) ([]domain.Match, error) {
	return e.matches.ListFor(ctx, userID)
}

func (e *Engine) notify(ctx context.Context, what string, to int64, fn func(context.Context) error) {
	if err := fn(ctx); err != nil {
		logger.Warn(ctx, component, "notify",
			slog.String("status", "fail"),
			slog.String("kind", what),
			slog.Int64("target_id", to),
			slog.String("err", err.Error()),
		)
	}
}

// KindFor picks the match kind from both owners' goals: a relationship when
// both are open to one, friendship otherwise.
func KindFor(a, b domain.Goal) domain.RelationKind {
	if slices.Contains(a.Kinds(), domain.RelationRelationship) && slices.Contains(b.Kinds(), domain.RelationRelationship) {
		return domain.RelationRelationship
	}
	return domain.RelationFriendship
}

type nopNotifier struct{}

func (nopNotifier) NotifyLike(context.Context, int64, int64) error            { return nil }
func (nopNotifier) NotifyMatch(context.Context, int64, domain.Match) error    { return nil }
func (nopNotifier) NotifyMessage(context.Context, int64, int64, string) error { return nil }
func (nopNotifier) NotifyReport(context.Context, int64, int64) error          { return nil }
