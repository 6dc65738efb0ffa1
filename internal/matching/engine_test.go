package matching

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m3rciful/iskra/internal/domain"
	"github.com/m3rciful/iskra/internal/storage/memory"
)

type notifications struct {
	mu       sync.Mutex
	likes    []int64
	matches  []int64
	messages []string
	reports  int
	fail     error
}

func (n *notifications) NotifyLike(_ context.Context, targetID, _ int64) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.likes = append(n.likes, targetID)
	return n.fail
}

func (n *notifications) NotifyMatch(_ context.Context, userID int64, _ domain.Match) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.matches = append(n.matches, userID)
	return n.fail
}

func (n *notifications) NotifyMessage(_ context.Context, _, _ int64, text string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, text)
	return n.fail
}

func (n *notifications) NotifyReport(context.Context, int64, int64) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.reports++
	return n.fail
}

type fixture struct {
	engine       *Engine
	interactions memory.Interactions
	matches      memory.Matches
	notes        *notifications
}

// newFixture seeds accounts 1 to 9; interactions need an existing target.
func newFixture() fixture {
	repos := memory.New().Repositories()
	for id := range int64(10) {
		if id == 0 {
			continue
		}
		_ = repos.Users.Create(context.Background(), domain.User{ID: id, Status: domain.UserActive})
	}
	notes := &notifications{}
	clock := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	var mu sync.Mutex
	now := func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		clock = clock.Add(time.Second)
		return clock
	}
	return fixture{
		engine:       NewEngine(repos.Users, repos.Interactions, repos.Matches, Options{Notifier: notes, Now: now}),
		interactions: repos.Interactions.(memory.Interactions),
		matches:      repos.Matches.(memory.Matches),
		notes:        notes,
	}
}

func TestRecordInteractionIsIdempotentPerPair(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	first, err := f.engine.RecordInteraction(ctx, 1, 2, domain.ActionLike, "")
	require.NoError(t, err)
	require.NoError(t, f.engine.Hide(ctx, 1, 2))

	second, err := f.engine.RecordInteraction(ctx, 1, 2, domain.ActionLike, "")
	require.NoError(t, err)

	assert.Equal(t, 1, f.interactions.Count())
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, domain.ActionLike, second.Action)
	assert.False(t, second.IsHidden)

	_, err = f.engine.RecordInteraction(ctx, 3, 3, domain.ActionLike, "")
	assert.ErrorIs(t, err, domain.ErrValidation)
	_, err = f.engine.RecordInteraction(ctx, 3, 4, domain.Action("wink"), "")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestTryCreateMatchIsCanonicalInEitherOrder(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	m1, created, err := f.engine.TryCreateMatch(ctx, 20, 10, domain.RelationFriendship)
	require.NoError(t, err)
	assert.True(t, created)
	m2, created, err := f.engine.TryCreateMatch(ctx, 10, 20, domain.RelationFriendship)
	require.NoError(t, err)
	assert.False(t, created)

	assert.Equal(t, m1.ID, m2.ID)
	assert.Equal(t, int64(10), m1.UserLow)
	assert.Equal(t, int64(20), m1.UserHigh)
	assert.Equal(t, 1, f.matches.Count())
}

func TestTryCreateMatchConcurrent(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	const workers = 32
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		ids     = map[uuid.UUID]struct{}{}
		created int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			a, b := int64(5), int64(7)
			if i%2 == 1 {
				a, b = b, a
			}
			m, c, err := f.engine.TryCreateMatch(ctx, a, b, domain.RelationRelationship)
			assert.NoError(t, err)
			mu.Lock()
			ids[m.ID] = struct{}{}
			if c {
				created++
			}
			mu.Unlock()
		}(i)
	}
	wg.Wait()

	assert.Len(t, ids, 1)
	assert.Equal(t, 1, created)
	assert.Equal(t, 1, f.matches.Count())
}

// conflictingMatches simulates another process inserting the pair between
// our lookup and our insert.
type conflictingMatches struct {
	domain.MatchRepository
	winner domain.Match
	raced  bool
}

func (c *conflictingMatches) Insert(ctx context.Context, m domain.Match) error {
	if !c.raced {
		c.raced = true
		if err := c.MatchRepository.Insert(ctx, c.winner); err != nil {
			return err
		}
	}
	return c.MatchRepository.Insert(ctx, m)
}

func TestTryCreateMatchReturnsExistingRowOnConflict(t *testing.T) {
	ctx := context.Background()
	repos := memory.New().Repositories()
	winner := domain.Match{ID: uuid.New(), UserLow: 1, UserHigh: 2, Kind: domain.RelationFriendship}
	e := NewEngine(repos.Users, repos.Interactions, &conflictingMatches{MatchRepository: repos.Matches, winner: winner}, Options{})

	m, created, err := e.TryCreateMatch(ctx, 2, 1, domain.RelationFriendship)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, winner.ID, m.ID)
}

func TestMatchIsCreatedOnSecondLike(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	res, err := f.engine.Like(ctx, 1, 2, domain.RelationFriendship)
	require.NoError(t, err)
	assert.False(t, res.Matched())
	assert.Zero(t, f.matches.Count())
	assert.Equal(t, []int64{2}, f.notes.likes)

	res, err = f.engine.Like(ctx, 2, 1, domain.RelationFriendship)
	require.NoError(t, err)
	require.True(t, res.Matched())
	assert.True(t, res.Created)
	assert.Equal(t, 1, f.matches.Count())
	assert.ElementsMatch(t, []int64{1, 2}, f.notes.matches)

	res, err = f.engine.Like(ctx, 2, 1, domain.RelationFriendship)
	require.NoError(t, err)
	assert.True(t, res.Matched())
	assert.False(t, res.Created)
	assert.Len(t, f.notes.matches, 2, "repeated like must not notify again")
}

func TestPassNeverMatches(t *testing.T) {
	ctx := context.Background()

	f := newFixture()
	_, err := f.engine.Like(ctx, 1, 2, domain.RelationFriendship)
	require.NoError(t, err)
	_, err = f.engine.Pass(ctx, 2, 1)
	require.NoError(t, err)
	assert.Zero(t, f.matches.Count())

	g := newFixture()
	_, err = g.engine.Pass(ctx, 2, 1)
	require.NoError(t, err)
	res, err := g.engine.Like(ctx, 1, 2, domain.RelationFriendship)
	require.NoError(t, err)
	assert.False(t, res.Matched())
	assert.Zero(t, g.matches.Count())
}

func TestLikeBackHidesIncoming(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	_, err := f.engine.Like(ctx, 1, 2, domain.RelationFriendship)
	require.NoError(t, err)
	_, err = f.engine.SendMessage(ctx, 3, 2, "hey there")
	require.NoError(t, err)

	incoming, err := f.engine.Incoming(ctx, 2)
	require.NoError(t, err)
	require.Len(t, incoming, 2)
	assert.Equal(t, int64(3), incoming[0].ActorID, "newest first")

	res, err := f.engine.LikeBack(ctx, 2, 1, domain.RelationRelationship)
	require.NoError(t, err)
	assert.True(t, res.Matched())

	incoming, err = f.engine.Incoming(ctx, 2)
	require.NoError(t, err)
	require.Len(t, incoming, 1)
	assert.Equal(t, []string{"hey there"}, f.notes.messages)

	matches, err := f.engine.Matches(ctx, 1)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, int64(2), matches[0].Other(1))
}

func TestNotificationFailureKeepsState(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	f.notes.fail = errors.New("telegram down")

	_, err := f.engine.Report(ctx, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, 1, f.notes.reports)

	in, err := f.interactions.Find(ctx, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, domain.ActionReport, in.Action)
}

func TestInteractionWithUnknownUserIsNotFound(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	_, err := f.engine.RecordInteraction(ctx, 1, 424242, domain.ActionPass, "")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	res, err := f.engine.Like(ctx, 1, 424242, domain.RelationFriendship)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.False(t, res.Matched())

	_, err = f.engine.SendMessage(ctx, 1, 424242, "hello")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = f.engine.Report(ctx, 1, 424242)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	assert.Zero(t, f.interactions.Count())
	assert.Empty(t, f.notes.likes)
	assert.Zero(t, f.notes.reports)
}

// failingUsers stands in for a user store that cannot be reached.
type failingUsers struct{ domain.UserRepository }

func (failingUsers) Find(context.Context, int64) (domain.User, error) {
	return domain.User{}, errors.New("connection reset")
}

func TestInteractionKeepsLookupFailures(t *testing.T) {
	repos := memory.New().Repositories()
	e := NewEngine(failingUsers{repos.Users}, repos.Interactions, repos.Matches, Options{})

	_, err := e.RecordInteraction(context.Background(), 1, 2, domain.ActionLike, "")
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorContains(t, err, "connection reset")
}

func TestHideUnknownIsNotFound(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	assert.ErrorIs(t, f.engine.Hide(ctx, 8, 9), domain.ErrNotFound)
	assert.ErrorIs(t, f.engine.HideByID(ctx, uuid.New()), domain.ErrNotFound)
}

func TestKindFor(t *testing.T) {
	assert.Equal(t, domain.RelationRelationship, KindFor(domain.GoalRelationship, domain.GoalBoth))
	assert.Equal(t, domain.RelationFriendship, KindFor(domain.GoalRelationship, domain.GoalFriendship))
	assert.Equal(t, domain.RelationFriendship, KindFor(domain.GoalFriendship, domain.GoalFriendship))
}
