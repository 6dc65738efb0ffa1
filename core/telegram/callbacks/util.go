package callbacks

import (
	"strings"

	tele "gopkg.in/telebot.v4"
)

const (
	// Separator delimits the prefix and the segments of callback data.
	Separator = ":"

	keyPrefix  = "cb_prefix"
	keyPayload = "cb_payload"
)

// Split cuts callback data once on the first separator. The payload is nil when
// data carries no separator and is passed on untouched otherwise.
func Split(data string) (string, *string) {
	prefix, rest, found := strings.Cut(data, Separator)
	if !found {
		return data, nil
	}
	return prefix, &rest
}

// Join builds callback data from a prefix and payload segments.
func Join(prefix string, segments ...string) string {
	if len(segments) == 0 {
		return prefix
	}
	return prefix + Separator + strings.Join(segments, Separator)
}

// Data returns the raw callback data of the update. Telebot's unique-button
// marker is stripped so both encodings route the same way.
func Data(c tele.Context) string {
	cb := c.Callback()
	if cb == nil {
		return ""
	}
	if cb.Unique != "" {
		if cb.Data == "" {
			return cb.Unique
		}
		return cb.Unique + Separator + cb.Data
	}
	return strings.TrimPrefix(cb.Data, "\f")
}

// Store records the routed prefix and payload on the context.
func Store(c tele.Context, prefix string, payload *string) {
	c.Set(keyPrefix, prefix)
	c.Set(keyPayload, payload)
}

// Prefix returns the prefix the router matched for this callback.
func Prefix(c tele.Context) string {
	if v, ok := c.Get(keyPrefix).(string); ok {
		return v
	}
	return ""
}

// Payload returns the remainder after the routed prefix, or nil when the
// callback had none.
func Payload(c tele.Context) *string {
	if v, ok := c.Get(keyPayload).(*string); ok {
		return v
	}
	return nil
}

// PayloadString is Payload without the pointer; ok reports presence.
func PayloadString(c tele.Context) (string, bool) {
	p := Payload(c)
	if p == nil {
		return "", false
	}
	return *p, true
}
