package sender

import (
	"context"
	"errors"
	"log/slog"

	"github.com/m3rciful/iskra/core/logger"

	tele "gopkg.in/telebot.v4"
)

// API is the part of *tele.Bot the outbox needs.
type API interface {
	Send(to tele.Recipient, what interface{}, opts ...interface{}) (*tele.Message, error)
	Respond(c *tele.Callback, resp ...*tele.CallbackResponse) error
}

// Message is a rendered outbound message.
type Message struct {
	// Kind labels the message in logs and metrics, e.g. "prompt" or "match".
	Kind string
	Text string
	// PhotoID sends a photo by Telegram file id with Text as its caption.
	PhotoID string
	// Document sends a file with Text as its caption.
	Document  *tele.Document
	Markup    *tele.ReplyMarkup
	ParseMode tele.ParseMode
}

func (m Message) payload() interface{} {
	switch {
	case m.PhotoID != "":
		return &tele.Photo{File: tele.File{FileID: m.PhotoID}, Caption: m.Text}
	case m.Document != nil:
		doc := *m.Document
		if doc.Caption == "" {
			doc.Caption = m.Text
		}
		return &doc
	}
	return m.Text
}

func (m Message) options() *tele.SendOptions {
	opts := &tele.SendOptions{ParseMode: m.ParseMode, ReplyMarkup: m.Markup}
	if m.ParseMode == tele.ModeDefault && m.Markup == nil {
		return nil
	}
	return opts
}

// Outbox delivers messages through the dispatcher. Delivery is fire and
// forget: failures are logged by the dispatcher and never reach the caller.
type Outbox struct {
	api  API
	disp *Dispatcher
}

// NewOutbox wires an outbox; a nil dispatcher sends synchronously.
func NewOutbox(api API, disp *Dispatcher) *Outbox {
	return &Outbox{api: api, disp: disp}
}

// Send queues msg for chat id to.
func (o *Outbox) Send(ctx context.Context, to int64, msg Message) error {
	if o == nil || o.api == nil {
		return errors.New("telegram sender: outbox not configured")
	}
	kind := msg.Kind
	if kind == "" {
		kind = "prompt"
	}
	endpoint := "sendMessage"
	if msg.PhotoID != "" {
		endpoint = "sendPhoto"
	} else if msg.Document != nil {
		endpoint = "sendDocument"
	}
	return o.enqueue(ctx, "send."+kind, endpoint, func() error {
		var err error
		if opts := msg.options(); opts != nil {
			_, err = o.api.Send(tele.ChatID(to), msg.payload(), opts)
		} else {
			_, err = o.api.Send(tele.ChatID(to), msg.payload())
		}
		return err
	})
}

// Ack answers a callback query so the client stops its spinner. Non-callback
// updates are ignored.
func (o *Outbox) Ack(ctx context.Context, c tele.Context, text string) error {
	cb := c.Callback()
	if o == nil || o.api == nil || cb == nil {
		return nil
	}
	return o.enqueue(ctx, "respond", "answerCallbackQuery", func() error {
		if text == "" {
			return o.api.Respond(cb)
		}
		return o.api.Respond(cb, &tele.CallbackResponse{Text: text})
	})
}

func (o *Outbox) enqueue(ctx context.Context, action, endpoint string, run func() error) error {
	if o.disp == nil {
		return run()
	}
	if err := o.disp.Enqueue(ctx, action, endpoint, run); err != nil {
		if errors.Is(err, ErrQueueFull) || errors.Is(err, ErrQueueClosed) {
			logger.Warn(ctx, "tg.sender", "queue.fallback",
				slog.String("op", action),
				slog.String("endpoint", endpoint),
				slog.String("err", err.Error()),
			)
			return run()
		}
		return err
	}
	return nil
}
