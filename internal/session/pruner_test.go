package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPrunerSweepReportsCounts(t *testing.T) {
	clock := newClock()
	store := NewStore(WithClock(clock.Now))
	store.GetOrCreate(1)
	store.GetOrCreate(2)
	clock.Advance(2 * time.Hour)
	store.GetOrCreate(3)

	var gotRemoved, gotRemaining int
	p := Pruner{
		Store:    store,
		Interval: time.Minute,
		MaxAge:   time.Hour,
		Observe: func(removed, remaining int) {
			gotRemoved, gotRemaining = removed, remaining
		},
	}
	assert.Equal(t, 2, p.Sweep(context.Background()))
	assert.Equal(t, 2, gotRemoved)
	assert.Equal(t, 1, gotRemaining)
}

func TestPrunerRunStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		Pruner{Store: NewStore(), Interval: time.Millisecond, MaxAge: time.Hour}.Run(ctx)
		close(done)
	}()
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("pruner did not stop")
	}
}
