package middleware

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	tghelpers "github.com/m3rciful/iskra/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

func newContext(t *testing.T, upd tele.Update) tele.Context {
	t.Helper()
	b, err := tele.NewBot(tele.Settings{Offline: true})
	require.NoError(t, err)
	return b.NewContext(upd)
}

func textUpdate(id int, from int64) tele.Update {
	return tele.Update{ID: id, Message: &tele.Message{
		Sender: &tele.User{ID: from},
		Chat:   &tele.Chat{ID: from},
		Text:   "/start",
	}}
}

func TestSeenUpdatesForgetsAfterTTL(t *testing.T) {
	s := &seenUpdates{ttl: time.Second, at: map[int]time.Time{}}
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

	assert.True(t, s.first(1, now))
	assert.False(t, s.first(1, now.Add(500*time.Millisecond)))
	assert.True(t, s.first(1, now.Add(3*time.Second)))
}

func TestLoggerMiddlewareStoresContext(t *testing.T) {
	c := newContext(t, textUpdate(7, 42))
	called := false
	h := LoggerMiddleware(func(c tele.Context) error {
		called = true
		_, ok := tghelpers.ContextFrom(c)
		assert.True(t, ok)
		return nil
	})
	require.NoError(t, h(c))
	assert.True(t, called)
}

func TestAdminOnly(t *testing.T) {
	var rejected, passed int
	mw := AdminOnlyMiddleware(AdminOptions{
		AdminID:  42,
		OnReject: func(tele.Context) error { rejected++; return nil },
	})
	h := mw(func(tele.Context) error { passed++; return nil })

	require.NoError(t, h(newContext(t, textUpdate(1, 42))))
	require.NoError(t, h(newContext(t, textUpdate(2, 7))))
	assert.Equal(t, 1, passed)
	assert.Equal(t, 1, rejected)

	assert.False(t, AdminOptions{}.IsAdmin(newContext(t, textUpdate(3, 0))))
}

func TestRecoverMiddlewareReturnsError(t *testing.T) {
	h := RecoverMiddleware(func(tele.Context) error { panic("boom") })
	err := h(newContext(t, textUpdate(1, 42)))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")

	want := errors.New("plain")
	h = RecoverMiddleware(func(tele.Context) error { return want })
	assert.ErrorIs(t, h(newContext(t, textUpdate(2, 42))), want)
}
