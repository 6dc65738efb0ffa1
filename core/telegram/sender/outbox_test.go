package sender

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	tele "gopkg.in/telebot.v4"
)

type sent struct {
	to   string
	what interface{}
	opts []interface{}
}

type fakeAPI struct {
	mu       sync.Mutex
	sent     []sent
	answered int
	fail     error
}

func (f *fakeAPI) Send(to tele.Recipient, what interface{}, opts ...interface{}) (*tele.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sent{to: to.Recipient(), what: what, opts: opts})
	return &tele.Message{}, f.fail
}

func (f *fakeAPI) Respond(*tele.Callback, ...*tele.CallbackResponse) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.answered++
	return nil
}

func (f *fakeAPI) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

func TestOutboxSendsTextAndPhoto(t *testing.T) {
	api := &fakeAPI{}
	o := NewOutbox(api, nil)

	require.NoError(t, o.Send(context.Background(), 42, Message{Text: "hi"}))
	require.NoError(t, o.Send(context.Background(), 42, Message{Text: "card", PhotoID: "file-1", ParseMode: tele.ModeMarkdownV2}))

	require.Len(t, api.sent, 2)
	assert.Equal(t, "42", api.sent[0].to)
	assert.Equal(t, "hi", api.sent[0].what)
	assert.Empty(t, api.sent[0].opts)

	photo, ok := api.sent[1].what.(*tele.Photo)
	require.True(t, ok)
	assert.Equal(t, "file-1", photo.FileID)
	assert.Equal(t, "card", photo.Caption)
	require.Len(t, api.sent[1].opts, 1)
}

func TestOutboxThroughDispatcherReportsResult(t *testing.T) {
	api := &fakeAPI{fail: errors.New("boom")}
	var (
		mu      sync.Mutex
		results = map[string]error{}
	)
	disp := NewDispatcher(Options{
		Workers:     1,
		MaxRetries:  0,
		MaxDuration: time.Second,
		OnResult: func(action string, err error) {
			mu.Lock()
			results[action] = err
			mu.Unlock()
		},
	})
	o := NewOutbox(api, disp)

	require.NoError(t, o.Send(context.Background(), 7, Message{Kind: "match", Text: "It's a match"}))
	disp.Close()

	assert.Equal(t, 1, api.count())
	mu.Lock()
	defer mu.Unlock()
	assert.EqualError(t, results["send.match"], "boom")
	assert.Equal(t, uint64(1), disp.ErrorCount())
}

func TestAckIgnoresNonCallbackUpdates(t *testing.T) {
	api := &fakeAPI{}
	o := NewOutbox(api, nil)
	b, err := tele.NewBot(tele.Settings{Offline: true})
	require.NoError(t, err)

	msgCtx := b.NewContext(tele.Update{Message: &tele.Message{Text: "x"}})
	require.NoError(t, o.Ack(context.Background(), msgCtx, ""))
	assert.Zero(t, api.answered)

	cbCtx := b.NewContext(tele.Update{Callback: &tele.Callback{ID: "1", Data: "filter:menu"}})
	require.NoError(t, o.Ack(context.Background(), cbCtx, "ok"))
	assert.Equal(t, 1, api.answered)
}
