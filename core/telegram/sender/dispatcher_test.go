package sender

import (
	"context"
	"errors"
	"net"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatcherRetriesTransientErrors(t *testing.T) {
	var calls atomic.Int32
	done := make(chan error, 1)
	d := NewDispatcher(Options{
		Workers:      1,
		MaxRetries:   2,
		RetryBackoff: time.Millisecond,
		OnResult:     func(_ string, err error) { done <- err },
	})
	defer d.Close()

	require.NoError(t, d.Enqueue(context.Background(), "send.prompt", "sendMessage", func() error {
		if calls.Add(1) == 1 {
			return &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("refused")}
		}
		return nil
	}))

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("job did not finish")
	}
	assert.Equal(t, int32(2), calls.Load())
	assert.Zero(t, d.ErrorCount())
}

func TestDispatcherDoesNotRetryPermanentErrors(t *testing.T) {
	var calls atomic.Int32
	d := NewDispatcher(Options{Workers: 1, MaxRetries: 3, RetryBackoff: time.Millisecond})
	require.NoError(t, d.Enqueue(context.Background(), "send.prompt", "sendMessage", func() error {
		calls.Add(1)
		return errors.New("telegram: chat not found (400)")
	}))
	d.Close()

	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, uint64(1), d.ErrorCount())
}

func TestDispatcherRejectsAfterClose(t *testing.T) {
	d := NewDispatcher(Options{Workers: 1})
	d.Close()
	d.Close()

	err := d.Enqueue(context.Background(), "send.prompt", "", func() error { return nil })
	assert.ErrorIs(t, err, ErrQueueClosed)
}

func TestQueuedJobSurvivesCanceledUpdate(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var ran atomic.Bool
	d := NewDispatcher(Options{Workers: 1})
	require.NoError(t, d.Enqueue(ctx, "send.match", "sendMessage", func() error {
		ran.Store(true)
		return nil
	}))
	cancel()
	d.Close()

	assert.True(t, ran.Load())
}
