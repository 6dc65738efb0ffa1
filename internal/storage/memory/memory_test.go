package memory

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m3rciful/iskra/internal/domain"
)

func TestMatchInsertRejectsDuplicatePair(t *testing.T) {
	ctx := context.Background()
	repo := New().Repositories().Matches

	require.NoError(t, repo.Insert(ctx, domain.Match{ID: uuid.New(), UserLow: 1, UserHigh: 2}))
	assert.ErrorIs(t, repo.Insert(ctx, domain.Match{ID: uuid.New(), UserLow: 1, UserHigh: 2}), domain.ErrConflict)
	assert.ErrorIs(t, repo.Insert(ctx, domain.Match{ID: uuid.New(), UserLow: 3, UserHigh: 3}), domain.ErrValidation)

	_, err := repo.FindPair(ctx, 2, 3)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestInteractionUpsertKeepsIdentity(t *testing.T) {
	ctx := context.Background()
	repo := New().Repositories().Interactions
	t0 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	first, err := repo.Upsert(ctx, domain.Interaction{ID: uuid.New(), ActorID: 1, TargetID: 2, Action: domain.ActionLike, CreatedAt: t0, UpdatedAt: t0})
	require.NoError(t, err)
	require.NoError(t, repo.Hide(ctx, first.ID))

	second, err := repo.Upsert(ctx, domain.Interaction{ID: uuid.New(), ActorID: 1, TargetID: 2, Action: domain.ActionMessage, Message: "hi", UpdatedAt: t0.Add(time.Hour)})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, domain.ActionMessage, second.Action)
	assert.False(t, second.IsHidden)
	assert.Equal(t, t0, second.CreatedAt)

	liked, err := repo.HasLiked(ctx, 1, 2)
	require.NoError(t, err)
	assert.False(t, liked)
	assert.ErrorIs(t, repo.Hide(ctx, uuid.New()), domain.ErrNotFound)
}

func TestCandidatesWindowBounds(t *testing.T) {
	ctx := context.Background()
	store := New()
	repos := store.Repositories()
	after := time.Date(1990, 5, 10, 0, 0, 0, 0, time.UTC)
	through := time.Date(2000, 5, 10, 0, 0, 0, 0, time.UTC)

	births := map[int64]time.Time{
		10: after,                   // exclusive bound
		11: after.AddDate(0, 0, 1),  // inside
		12: through,                 // inclusive bound
		13: through.AddDate(0, 0, 1), // too young
	}
	for id, b := range births {
		require.NoError(t, repos.Users.Create(ctx, domain.User{ID: id, BirthDate: b, Gender: domain.GenderFemale, Status: domain.UserActive}))
		require.NoError(t, repos.Profiles.Upsert(ctx, domain.Profile{UserID: id}))
	}

	got, err := repos.Profiles.Candidates(ctx, domain.CandidateQuery{
		Requester:   1,
		Genders:     []domain.Gender{domain.GenderFemale},
		BornAfter:   after,
		BornThrough: through,
	})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, int64(11), got[0].User.ID)
	assert.Equal(t, int64(12), got[1].User.ID)
}

func TestModerationLifecycle(t *testing.T) {
	ctx := context.Background()
	repo := New().Repositories().Moderations
	t0 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	first := domain.ModerationRequest{ID: uuid.New(), UserID: 7, CreatedAt: t0}
	second := domain.ModerationRequest{ID: uuid.New(), UserID: 7, CreatedAt: t0.Add(time.Minute)}
	other := domain.ModerationRequest{ID: uuid.New(), UserID: 9, CreatedAt: t0}
	require.NoError(t, repo.CreatePending(ctx, first))
	require.NoError(t, repo.CreatePending(ctx, other))
	assert.ErrorIs(t, repo.CreatePending(ctx, second), domain.ErrConflict, "one pending request per user")

	got, err := repo.PendingFor(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, first.ID, got.ID)

	closed, err := repo.Close(ctx, first.ID, domain.ModerationApproved, "", t0.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, domain.ModerationApproved, closed.Status)
	_, err = repo.Close(ctx, first.ID, domain.ModerationRejected, "late", t0.Add(2*time.Hour))
	assert.ErrorIs(t, err, domain.ErrNotFound)

	pending, err := repo.ListPending(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, other.ID, pending[0].ID)

	_, err = repo.PendingFor(ctx, 8)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestModerationReopen(t *testing.T) {
	ctx := context.Background()
	repo := New().Repositories().Moderations
	t0 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	req := domain.ModerationRequest{ID: uuid.New(), UserID: 7, CreatedAt: t0}
	require.NoError(t, repo.CreatePending(ctx, req))
	assert.ErrorIs(t, repo.Reopen(ctx, req.ID), domain.ErrNotFound, "pending requests are already open")

	_, err := repo.Close(ctx, req.ID, domain.ModerationRejected, "photo", t0.Add(time.Hour))
	require.NoError(t, err)
	require.NoError(t, repo.Reopen(ctx, req.ID))

	got, err := repo.Find(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ModerationPending, got.Status)
	assert.Empty(t, got.Reason)
	assert.Nil(t, got.ClosedAt)

	_, err = repo.Close(ctx, req.ID, domain.ModerationApproved, "", t0.Add(2*time.Hour))
	require.NoError(t, err)
	require.NoError(t, repo.CreatePending(ctx, domain.ModerationRequest{ID: uuid.New(), UserID: 7, CreatedAt: t0.Add(3 * time.Hour)}))
	assert.ErrorIs(t, repo.Reopen(ctx, req.ID), domain.ErrConflict)
	assert.ErrorIs(t, repo.Reopen(ctx, uuid.New()), domain.ErrNotFound)
}
