package helpers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m3rciful/iskra/core/logger"

	tele "gopkg.in/telebot.v4"
)

func TestBuildContextCarriesUpdateMeta(t *testing.T) {
	b, err := tele.NewBot(tele.Settings{Offline: true})
	require.NoError(t, err)
	c := b.NewContext(tele.Update{ID: 1001, Message: &tele.Message{
		Sender: &tele.User{ID: 42},
		Chat:   &tele.Chat{ID: 42},
		Text:   "hi",
	}})

	_, ok := ContextFrom(c)
	assert.False(t, ok)

	ctx := BuildContext(c)
	assert.Equal(t, "1001:42:42", logger.RIDFrom(ctx))
	assert.Equal(t, int64(42), logger.UserIDFrom(ctx))
	assert.Equal(t, 1001, logger.UpdateIDFrom(ctx))

	ctx = WithHandler(c, "start")
	assert.Equal(t, "start", logger.HandlerFrom(ctx))
	stored, ok := ContextFrom(c)
	require.True(t, ok)
	assert.Equal(t, "start", logger.HandlerFrom(stored))
}
