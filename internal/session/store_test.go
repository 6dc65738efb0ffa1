package session

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m3rciful/iskra/internal/domain"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func TestGetOrCreateStartsIdle(t *testing.T) {
	store := NewStore()
	sess := store.GetOrCreate(42)
	assert.True(t, IsIdle(sess.State))
	assert.Nil(t, sess.Draft)
	assert.Equal(t, 1, store.Len())
}

func TestReturnedSessionIsACopy(t *testing.T) {
	store := NewStore()
	store.Update(1, func(s *Session) {
		s.State = Profile{Step: EnteringBio}
		s.EnsureDraft().City = "Riga"
	})

	got := store.GetOrCreate(1)
	got.Draft.City = "Tallinn"

	again, ok := store.Get(1)
	require.True(t, ok)
	assert.Equal(t, "Riga", again.Draft.City)
}

func TestIdleDropsScratchData(t *testing.T) {
	store := NewStore()
	store.Update(7, func(s *Session) {
		s.State = Onboarding{Step: AwaitingGender}
		birth := time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)
		s.EnsureOnboarding().BirthDate = &birth
		goal := domain.GoalBoth
		s.EnsureDraft().Goal = &goal
	})
	store.SetState(7, Idle{})

	sess, _ := store.Get(7)
	assert.Nil(t, sess.Onboarding)
	assert.Nil(t, sess.Draft)
}

func TestResetClearsEverything(t *testing.T) {
	store := NewStore()
	store.Update(3, func(s *Session) {
		s.State = Composing(99)
		s.EnsureDraft().Bio = "hello there"
	})
	store.Reset(3)

	sess, ok := store.Get(3)
	require.True(t, ok)
	assert.Equal(t, "idle", sess.State.Key())
	assert.Nil(t, sess.Draft)
}

func TestUpdateReturningYieldsValue(t *testing.T) {
	store := NewStore()
	prev := UpdateReturning(store, 5, func(s *Session) string {
		old := s.State.Key()
		s.State = Settings{Step: FiltersAgeInput}
		return old
	})
	assert.Equal(t, "idle", prev)
	assert.Equal(t, "settings.filters_age_input", store.StateKey(5))
}

func TestRemove(t *testing.T) {
	store := NewStore()
	store.GetOrCreate(9)
	assert.True(t, store.Remove(9))
	assert.False(t, store.Remove(9))
	_, ok := store.Get(9)
	assert.False(t, ok)
}

func TestPruneInactiveKeepsRecentSessions(t *testing.T) {
	clock := newClock()
	store := NewStore(WithClock(clock.Now))

	store.Update(1, func(s *Session) { s.State = Search{Step: Browsing} })
	store.Update(2, func(s *Session) { s.State = Profile{Step: EnteringCity} })
	clock.Advance(20 * time.Hour)
	store.Update(3, func(s *Session) {
		s.State = Profile{Step: EnteringBio}
		s.EnsureDraft().City = "Oslo"
	})
	clock.Advance(5 * time.Hour)

	removed := store.PruneInactive(24 * time.Hour)
	assert.Equal(t, 2, removed)

	_, ok := store.Get(1)
	assert.False(t, ok)
	_, ok = store.Get(2)
	assert.False(t, ok)

	kept, ok := store.Get(3)
	require.True(t, ok)
	assert.Equal(t, "profile.entering_bio", kept.State.Key())
	assert.Equal(t, "Oslo", kept.Draft.City)
	assert.Equal(t, clock.Now().Add(-5*time.Hour), kept.LastActivityAt)
}

func TestConcurrentUpdatesForOneUserDoNotInterleave(t *testing.T) {
	store := NewStore(WithShards(4))
	const workers = 64
	const perWorker = 200

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perWorker; j++ {
				store.Update(11, func(s *Session) {
					d := s.EnsureDraft()
					s.State = Profile{Step: EnteringCity}
					d.City += "x"
				})
			}
		}()
	}
	wg.Wait()

	sess, _ := store.Get(11)
	assert.Len(t, sess.Draft.City, workers*perWorker)
}

func TestStateIndependentOfOtherUsers(t *testing.T) {
	transition := func(store *Store) string {
		store.SetState(100, Onboarding{Step: AwaitingBirthdate})
		store.Update(100, func(s *Session) {
			if _, ok := s.State.(Onboarding); ok {
				s.State = Onboarding{Step: AwaitingGender}
			}
		})
		return store.StateKey(100)
	}

	quiet := NewStore()
	busy := NewStore()
	var wg sync.WaitGroup
	for i := int64(0); i < 500; i++ {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			busy.SetState(id+1000, Search{Step: Browsing})
		}(i)
	}
	got := transition(busy)
	wg.Wait()

	assert.Equal(t, transition(quiet), got)
	assert.Equal(t, "onboarding.awaiting_gender", got)
}

func TestStateKeysAreDistinct(t *testing.T) {
	states := []State{
		Idle{},
		Onboarding{Step: AwaitingBirthdate},
		Onboarding{Step: AwaitingGender},
		Profile{Step: EnteringCity},
		Profile{Step: SelectingGoal},
		Profile{Step: SelectingPreference},
		Profile{Step: EnteringBio},
		Profile{Step: UploadingPhoto},
		Profile{Step: Previewing},
		ProfileEditing(FieldCity),
		ProfileEditing(FieldGoal),
		ProfileEditing(FieldPreference),
		ProfileEditing(FieldBio),
		ProfileEditing(FieldPhoto),
		Settings{Step: FiltersMenu},
		Settings{Step: FiltersAgeInput},
		Search{Step: Browsing},
		Search{Step: ViewingIncoming},
		Search{Step: NoProfiles},
		Composing(1),
	}
	seen := map[string]bool{}
	for _, st := range states {
		key := st.Key()
		assert.False(t, seen[key], "duplicate key %s", key)
		seen[key] = true
	}
	assert.Equal(t, Composing(1).Key(), Composing(2).Key())
}

func TestDraftMissing(t *testing.T) {
	var nilDraft *ProfileDraft
	assert.Len(t, nilDraft.Missing(), 5)

	goal := domain.GoalFriendship
	pref := domain.PreferAny
	d := &ProfileDraft{City: "Kyiv", Goal: &goal, Preference: &pref, Bio: "long enough bio"}
	assert.Equal(t, []ProfileField{FieldPhoto}, d.Missing())
	assert.False(t, d.Complete())
	d.PhotoFileID = "file"
	assert.True(t, d.Complete())
}
