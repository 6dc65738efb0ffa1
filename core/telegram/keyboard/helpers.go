// Package keyboard builds reply and inline markups.
package keyboard

import (
	"slices"

	tele "gopkg.in/telebot.v4"
)

// InlineBtn is an inline button carrying raw callback data, or a link when
// URL is set.
type InlineBtn struct {
	Text string
	Data string
	URL  string
}

// Btn is a callback button.
func Btn(text, data string) InlineBtn {
	return InlineBtn{Text: text, Data: data}
}

// Link is a button that opens url.
func Link(text, url string) InlineBtn {
	return InlineBtn{Text: text, URL: url}
}

func (b InlineBtn) inline() tele.InlineButton {
	if b.URL != "" {
		return tele.InlineButton{Text: b.Text, URL: b.URL}
	}
	// No Unique: the router matches on the data exactly as written.
	return tele.InlineButton{Text: b.Text, Data: b.Data}
}

// RemoveKeyboard hides the reply keyboard.
func RemoveKeyboard() *tele.ReplyMarkup {
	return &tele.ReplyMarkup{RemoveKeyboard: true}
}

// ReplyButtons builds a resized reply keyboard, one slice per row.
func ReplyButtons(rows ...[]string) *tele.ReplyMarkup {
	m := &tele.ReplyMarkup{ResizeKeyboard: true}
	keys := make([][]tele.ReplyButton, 0, len(rows))
	for _, row := range rows {
		r := make([]tele.ReplyButton, 0, len(row))
		for _, label := range row {
			r = append(r, tele.ReplyButton{Text: label})
		}
		keys = append(keys, r)
	}
	m.ReplyKeyboard = keys
	return m
}

// InlineButtons puts every button on its own row.
func InlineButtons(buttons ...InlineBtn) *tele.ReplyMarkup {
	return InlineButtonsNPerRow(buttons, 1)
}

// InlineButtonsRows builds an inline keyboard; empty rows are skipped.
func InlineButtonsRows(rows ...[]InlineBtn) *tele.ReplyMarkup {
	keys := make([][]tele.InlineButton, 0, len(rows))
	for _, row := range rows {
		if len(row) == 0 {
			continue
		}
		r := make([]tele.InlineButton, len(row))
		for i, b := range row {
			r[i] = b.inline()
		}
		keys = append(keys, r)
	}
	return &tele.ReplyMarkup{InlineKeyboard: keys}
}

// InlineButtonsNPerRow lays buttons out n per row; n < 1 counts as 1.
func InlineButtonsNPerRow(buttons []InlineBtn, n int) *tele.ReplyMarkup {
	return InlineButtonsRows(slices.Collect(slices.Chunk(buttons, max(n, 1)))...)
}

// SingleButton is a keyboard with one callback button.
func SingleButton(text, data string) *tele.ReplyMarkup {
	return InlineButtons(Btn(text, data))
}
