// Package actions defines the callback data grammar of the bot. Each prefix
// has a typed value with a parser for the payload the router hands over and
// a Data method producing the callback data for keyboard buttons.
package actions

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/m3rciful/iskra/core/telegram/callbacks"
)

// Callback prefixes registered with the router.
const (
	PrefixOnboarding = "onboarding"
	PrefixProfile    = "profile"
	PrefixFilter     = "filter"
	PrefixSearch     = "search"
	PrefixModeration = "mod"
	PrefixCancel     = "cancel"
)

// Cancel is the data of the payload-less cancel button.
func Cancel() string { return PrefixCancel }

func unknown(prefix, seg string) error {
	return fmt.Errorf("%w: unknown %s action %q", callbacks.ErrMalformed, prefix, seg)
}

func readUUID(r *callbacks.Reader, name string) (uuid.UUID, error) {
	seg, err := r.String(name)
	if err != nil {
		return uuid.Nil, err
	}
	id, err := uuid.Parse(seg)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %s %q is not a uuid", callbacks.ErrMalformed, name, seg)
	}
	return id, nil
}

func head(payload *string, prefix string) (*callbacks.Reader, string, error) {
	r := callbacks.NewReader(payload)
	seg, err := r.String(prefix + " action")
	if err != nil {
		return nil, "", err
	}
	return r, seg, nil
}
