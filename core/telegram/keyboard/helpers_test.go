package keyboard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInlineButtonsKeepRawData(t *testing.T) {
	m := InlineButtonsNPerRow([]InlineBtn{
		Btn("Like", "search:like:7"),
		Btn("Pass", "search:pass:7"),
		Btn("Stop", "search:stop"),
	}, 2)
	require.Len(t, m.InlineKeyboard, 2)
	assert.Len(t, m.InlineKeyboard[0], 2)
	assert.Equal(t, "search:like:7", m.InlineKeyboard[0][0].Data)
	assert.Equal(t, "search:stop", m.InlineKeyboard[1][0].Data)
	assert.Empty(t, m.InlineKeyboard[0][0].Unique)
}

func TestInlineButtonsRowsSkipsEmptyRows(t *testing.T) {
	m := InlineButtonsRows([]InlineBtn{Btn("a", "x")}, nil)
	assert.Len(t, m.InlineKeyboard, 1)
}

func TestReplyButtons(t *testing.T) {
	m := ReplyButtons([]string{"Surf", "Profile"})
	require.Len(t, m.ReplyKeyboard, 1)
	assert.Equal(t, "Surf", m.ReplyKeyboard[0][0].Text)
	assert.True(t, m.ResizeKeyboard)
}

func TestLinkButton(t *testing.T) {
	m := InlineButtons(Link("Open chat", "https://t.me/anna"), Btn("Next", "search:continue"))
	require.Len(t, m.InlineKeyboard, 2)
	assert.Equal(t, "https://t.me/anna", m.InlineKeyboard[0][0].URL)
	assert.Empty(t, m.InlineKeyboard[0][0].Data)
	assert.Equal(t, "search:continue", m.InlineKeyboard[1][0].Data)
}

func TestInlineButtonsNPerRowClampsN(t *testing.T) {
	m := InlineButtonsNPerRow([]InlineBtn{Btn("a", "1"), Btn("b", "2")}, 0)
	assert.Len(t, m.InlineKeyboard, 2)
	assert.Empty(t, InlineButtons().InlineKeyboard)
}
