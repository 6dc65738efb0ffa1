package callbacks

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrMalformed reports a payload that does not fit the expected grammar.
var ErrMalformed = errors.New("callbacks: malformed payload")

// Reader tokenizes a colon-delimited payload one segment at a time.
type Reader struct {
	rest string
	done bool
}

// NewReader starts reading payload. A nil payload yields no segments.
func NewReader(payload *string) *Reader {
	if payload == nil {
		return &Reader{done: true}
	}
	return &Reader{rest: *payload}
}

// ReaderOf reads a plain string payload.
func ReaderOf(payload string) *Reader {
	return NewReader(&payload)
}

// Done reports whether every segment has been consumed.
func (r *Reader) Done() bool {
	return r.done
}

// Next returns the next segment.
func (r *Reader) Next() (string, bool) {
	if r.done {
		return "", false
	}
	seg, rest, found := strings.Cut(r.rest, Separator)
	if !found {
		r.done = true
		r.rest = ""
		return seg, true
	}
	r.rest = rest
	return seg, true
}

// Peek returns the next segment without consuming it.
func (r *Reader) Peek() (string, bool) {
	if r.done {
		return "", false
	}
	seg, _, _ := strings.Cut(r.rest, Separator)
	return seg, true
}

// Rest consumes and returns everything left, separators included.
func (r *Reader) Rest() (string, bool) {
	if r.done {
		return "", false
	}
	out := r.rest
	r.rest = ""
	r.done = true
	return out, true
}

// String consumes a required non-empty segment.
func (r *Reader) String(name string) (string, error) {
	seg, ok := r.Next()
	if !ok || seg == "" {
		return "", fmt.Errorf("%w: missing %s", ErrMalformed, name)
	}
	return seg, nil
}

// Int64 consumes a required integer segment.
func (r *Reader) Int64(name string) (int64, error) {
	seg, err := r.String(name)
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseInt(seg, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s %q is not an integer", ErrMalformed, name, seg)
	}
	return v, nil
}

// End fails if unread segments remain.
func (r *Reader) End() error {
	if !r.done {
		return fmt.Errorf("%w: unexpected trailing %q", ErrMalformed, r.rest)
	}
	return nil
}
