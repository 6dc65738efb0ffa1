package session

import (
	"sync"
	"time"
)

const defaultShards = 32

type shard struct {
	mu       sync.Mutex
	sessions map[int64]*Session
}

// Store is a concurrency-safe table of sessions keyed by user id.
type Store struct {
	shards []*shard
	now    func() time.Time
}

// Option customises a Store.
type Option func(*Store)

// WithShards sets the number of lock shards; values below 1 mean one global lock.
func WithShards(n int) Option {
	return func(s *Store) {
		if n < 1 {
			n = 1
		}
		s.shards = newShards(n)
	}
}

// WithClock injects the time source used for activity stamps and pruning.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// NewStore constructs an empty store.
func NewStore(opts ...Option) *Store {
	s := &Store{
		shards: newShards(defaultShards),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func newShards(n int) []*shard {
	out := make([]*shard, n)
	for i := range out {
		out[i] = &shard{sessions: make(map[int64]*Session)}
	}
	return out
}

func (s *Store) shardFor(userID int64) *shard {
	// splitmix64 finaliser spreads sequential Telegram ids across shards.
	x := uint64(userID)
	x ^= x >> 30
	x *= 0xbf58476d1ce4e5b9
	x ^= x >> 27
	x *= 0x94d049bb133111eb
	x ^= x >> 31
	return s.shards[x%uint64(len(s.shards))]
}

// lockedSession returns the user's session, creating it lazily. The shard
// lock must be held.
func (sh *shard) lockedSession(userID int64, now time.Time) *Session {
	sess, ok := sh.sessions[userID]
	if !ok {
		sess = &Session{State: Idle{}, LastActivityAt: now}
		sh.sessions[userID] = sess
	}
	return sess
}

// GetOrCreate returns a copy of the user's session, creating an idle one if absent.
func (s *Store) GetOrCreate(userID int64) Session {
	sh := s.shardFor(userID)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	return sh.lockedSession(userID, s.now()).clone()
}

// Get returns a copy of the user's session if one exists.
func (s *Store) Get(userID int64) (Session, bool) {
	sh := s.shardFor(userID)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	sess, ok := sh.sessions[userID]
	if !ok {
		return Session{State: Idle{}}, false
	}
	return sess.clone(), true
}

// Update applies fn atomically to the user's session and stamps activity.
func (s *Store) Update(userID int64, fn func(*Session)) {
	UpdateReturning(s, userID, func(sess *Session) struct{} {
		fn(sess)
		return struct{}{}
	})
}

// UpdateReturning applies fn atomically and returns its result.
func UpdateReturning[T any](s *Store, userID int64, fn func(*Session) T) T {
	sh := s.shardFor(userID)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	now := s.now()
	sess := sh.lockedSession(userID, now)
	out := fn(sess)
	sess.LastActivityAt = now
	sess.normalize()
	return out
}

// SetState moves the user to st.
func (s *Store) SetState(userID int64, st State) {
	s.Update(userID, func(sess *Session) { sess.State = st })
}

// State returns the user's current state; unknown users are idle.
func (s *Store) State(userID int64) State {
	sh := s.shardFor(userID)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	if sess, ok := sh.sessions[userID]; ok {
		return sess.State
	}
	return Idle{}
}

// StateKey returns the routing key of the user's current state.
func (s *Store) StateKey(userID int64) string {
	return s.State(userID).Key()
}

// Reset returns the user to idle and drops scratch data.
func (s *Store) Reset(userID int64) {
	s.Update(userID, func(sess *Session) {
		sess.State = Idle{}
		sess.Onboarding = nil
		sess.Draft = nil
	})
}

// Remove deletes the user's session and reports whether it existed.
func (s *Store) Remove(userID int64) bool {
	sh := s.shardFor(userID)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	_, ok := sh.sessions[userID]
	delete(sh.sessions, userID)
	return ok
}

// PruneInactive removes sessions idle for longer than maxAge and returns how
// many were removed.
func (s *Store) PruneInactive(maxAge time.Duration) int {
	cutoff := s.now().Add(-maxAge)
	removed := 0
	for _, sh := range s.shards {
		sh.mu.Lock()
		for id, sess := range sh.sessions {
			if sess.LastActivityAt.Before(cutoff) {
				delete(sh.sessions, id)
				removed++
			}
		}
		sh.mu.Unlock()
	}
	return removed
}

// Len counts stored sessions.
func (s *Store) Len() int {
	n := 0
	for _, sh := range s.shards {
		sh.mu.Lock()
		n += len(sh.sessions)
		sh.mu.Unlock()
	}
	return n
}
