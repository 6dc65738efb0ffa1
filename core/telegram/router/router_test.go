package router

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	tg "github.com/m3rciful/iskra/core/telegram"
	"github.com/m3rciful/iskra/core/telegram/callbacks"
	"github.com/m3rciful/iskra/core/telegram/commands"

	tele "gopkg.in/telebot.v4"
)

type fixedStates map[int64]string

func (f fixedStates) StateKey(userID int64) string {
	if key, ok := f[userID]; ok {
		return key
	}
	return "idle"
}

type recorder struct {
	mu    sync.Mutex
	calls []string
}

func (r *recorder) handler(name string) tele.HandlerFunc {
	return func(tele.Context) error {
		r.mu.Lock()
		r.calls = append(r.calls, name)
		r.mu.Unlock()
		return nil
	}
}

func (r *recorder) last() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.calls) == 0 {
		return ""
	}
	return r.calls[len(r.calls)-1]
}

type observed struct {
	route, handler string
	err            error
}

type observer struct {
	mu  sync.Mutex
	got []observed
}

func (o *observer) ObserveHandler(route, handler string, _ time.Duration, err error) {
	o.mu.Lock()
	o.got = append(o.got, observed{route, handler, err})
	o.mu.Unlock()
}

type harness struct {
	bot    *tele.Bot
	routes map[any]tele.HandlerFunc
}

func newHarness(t *testing.T, reg *tg.Registry, states StateReader, opts Options) *harness {
	t.Helper()
	b, err := tele.NewBot(tele.Settings{Offline: true})
	require.NoError(t, err)
	h := &harness{bot: b, routes: map[any]tele.HandlerFunc{}}
	for _, r := range Routes(reg, states, opts) {
		h.routes[r.Endpoint] = r.Handler
	}
	return h
}

func (h *harness) text(t *testing.T, userID int64, text string) error {
	t.Helper()
	c := h.bot.NewContext(tele.Update{ID: 1, Message: &tele.Message{
		Text:   text,
		Sender: &tele.User{ID: userID},
		Chat:   &tele.Chat{ID: userID},
	}})
	return h.routes[tele.OnText](c)
}

func (h *harness) photo(t *testing.T, userID int64) error {
	t.Helper()
	c := h.bot.NewContext(tele.Update{ID: 2, Message: &tele.Message{
		Photo:  &tele.Photo{File: tele.File{FileID: "p"}},
		Sender: &tele.User{ID: userID},
		Chat:   &tele.Chat{ID: userID},
	}})
	return h.routes[tele.OnPhoto](c)
}

func (h *harness) callback(t *testing.T, userID int64, data string) (tele.Context, error) {
	t.Helper()
	c := h.bot.NewContext(tele.Update{ID: 3, Callback: &tele.Callback{
		ID:     "cb",
		Data:   data,
		Sender: &tele.User{ID: userID},
	}})
	return c, h.routes[tele.OnCallback](c)
}

func TestCallbackPayloadIsHandedOverUntouched(t *testing.T) {
	reg := tg.NewRegistry()
	var (
		gotPrefix  string
		gotPayload *string
	)
	capture := func(c tele.Context) error {
		gotPrefix = callbacks.Prefix(c)
		gotPayload = callbacks.Payload(c)
		return nil
	}
	require.NoError(t, reg.RegisterCallback("mod", capture))
	require.NoError(t, reg.RegisterCallback("filter", capture))
	require.NoError(t, reg.RegisterCallback("cancel", capture))
	h := newHarness(t, reg, fixedStates{}, Options{})

	_, err := h.callback(t, 1, "mod:reason:ABC123:photo")
	require.NoError(t, err)
	assert.Equal(t, "mod", gotPrefix)
	require.NotNil(t, gotPayload)
	assert.Equal(t, "reason:ABC123:photo", *gotPayload)

	_, err = h.callback(t, 1, "filter:menu")
	require.NoError(t, err)
	require.NotNil(t, gotPayload)
	assert.Equal(t, "menu", *gotPayload)

	_, err = h.callback(t, 1, "cancel")
	require.NoError(t, err)
	assert.Equal(t, "cancel", gotPrefix)
	assert.Nil(t, gotPayload)
}

func TestUnknownCallbackUsesFallbackOrDrops(t *testing.T) {
	rec := &recorder{}
	reg := tg.NewRegistry()
	require.NoError(t, reg.RegisterCallback("search", rec.handler("search")))
	h := newHarness(t, reg, fixedStates{}, Options{})

	_, err := h.callback(t, 1, "nope:1")
	require.NoError(t, err)
	assert.Empty(t, rec.calls)

	reg2 := tg.NewRegistry()
	require.NoError(t, reg2.SetCallbackNotFound(rec.handler("fallback")))
	h2 := newHarness(t, reg2, fixedStates{}, Options{})
	_, err = h2.callback(t, 1, "nope:1")
	require.NoError(t, err)
	assert.Equal(t, "fallback", rec.last())
}

func TestCommandsAreCaseInsensitiveAndStripBotName(t *testing.T) {
	rec := &recorder{}
	reg := tg.NewRegistry()
	require.NoError(t, reg.RegisterCommand("/start", commands.Command{Handler: rec.handler("start"), Description: "Start"}))
	require.NoError(t, reg.RegisterCommand("help", commands.Command{
		Handler: rec.handler("help"), Description: "Help", Aliases: []string{"h"},
	}))
	h := newHarness(t, reg, fixedStates{}, Options{})

	require.NoError(t, h.text(t, 5, "/START"))
	assert.Equal(t, "start", rec.last())
	require.NoError(t, h.text(t, 5, "/Help@iskra_bot please"))
	assert.Equal(t, "help", rec.last())
	require.NoError(t, h.text(t, 5, "/h"))
	assert.Equal(t, "help", rec.last())
}

func TestUnknownCommandFallsThroughToFreeform(t *testing.T) {
	rec := &recorder{}
	reg := tg.NewRegistry()
	require.NoError(t, reg.RegisterCommand("start", commands.Command{Handler: rec.handler("start"), Description: "Start"}))
	require.NoError(t, reg.RegisterFreeform("search.composing_message", tg.InputText, rec.handler("compose")))
	h := newHarness(t, reg, fixedStates{9: "search.composing_message"}, Options{})

	require.NoError(t, h.text(t, 9, "/shrug hello"))
	assert.Equal(t, "compose", rec.last())
}

func TestFreeformDependsOnState(t *testing.T) {
	rec := &recorder{}
	reg := tg.NewRegistry()
	require.NoError(t, reg.RegisterFreeform("onboarding.awaiting_birthdate", tg.InputText, rec.handler("birthdate")))
	require.NoError(t, reg.RegisterFreeform("profile.uploading_photo", tg.InputPhoto, rec.handler("photo")))
	require.NoError(t, reg.RegisterFreeform("profile.uploading_photo", tg.InputMedia, rec.handler("not_a_photo")))
	require.NoError(t, reg.RegisterShortcut("Surf", rec.handler("surf")))
	states := fixedStates{1: "onboarding.awaiting_birthdate", 2: "profile.uploading_photo", 3: "search.browsing"}
	h := newHarness(t, reg, states, Options{})

	require.NoError(t, h.text(t, 1, "01.02.2000"))
	assert.Equal(t, "birthdate", rec.last())

	require.NoError(t, h.photo(t, 2))
	assert.Equal(t, "photo", rec.last())

	n := len(rec.calls)
	require.NoError(t, h.text(t, 2, "some words"))
	require.NoError(t, h.text(t, 3, "hello?"))
	require.NoError(t, h.photo(t, 3))
	assert.Len(t, rec.calls, n, "unexpected input must be ignored")

	require.NoError(t, h.text(t, 3, "Surf"))
	assert.Equal(t, "surf", rec.last())
}

func TestAdminOnlyCommand(t *testing.T) {
	rec := &recorder{}
	reg := tg.NewRegistry()
	require.NoError(t, reg.RegisterCommand("queue", commands.Command{
		Handler: rec.handler("queue"), Description: "Queue", AdminOnly: true,
	}))
	h := newHarness(t, reg, fixedStates{}, Options{AdminID: 100, OnAdminReject: rec.handler("rejected")})

	require.NoError(t, h.text(t, 5, "/queue"))
	assert.Equal(t, "rejected", rec.last())
	require.NoError(t, h.text(t, 100, "/queue"))
	assert.Equal(t, "queue", rec.last())
}

type codedErr struct{}

func (codedErr) Error() string { return "bad input" }
func (codedErr) Code() string  { return "validation error" }

func TestHandlerErrorsAreObserved(t *testing.T) {
	obs := &observer{}
	reg := tg.NewRegistry()
	require.NoError(t, reg.RegisterCallback("profile", func(tele.Context) error { return codedErr{} }))
	h := newHarness(t, reg, fixedStates{}, Options{Observer: obs})

	_, err := h.callback(t, 1, "profile:submit")
	assert.ErrorIs(t, err, codedErr{})
	require.Len(t, obs.got, 1)
	assert.Equal(t, "callback", obs.got[0].route)
	assert.Equal(t, "callback.profile", obs.got[0].handler)
	assert.Equal(t, "VALIDATION_ERROR", errorCode(obs.got[0].err))
	assert.Equal(t, "ERRORSTRING", errorCode(errors.New("x")))
}

func TestPanicsAreRecovered(t *testing.T) {
	reg := tg.NewRegistry()
	require.NoError(t, reg.RegisterCallback("boom", func(tele.Context) error { panic("kaboom") }))
	h := newHarness(t, reg, fixedStates{}, Options{})
	assert.NotPanics(t, func() {
		_, err := h.callback(t, 1, "boom")
		assert.Error(t, err)
	})
}
