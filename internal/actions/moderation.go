package actions

import (
	"github.com/google/uuid"

	"github.com/m3rciful/iskra/core/telegram/callbacks"
	"github.com/m3rciful/iskra/internal/domain"
)

// ModerationKind enumerates admin review buttons.
type ModerationKind string

const (
	ModerationApprove ModerationKind = "approve"
	ModerationReject  ModerationKind = "reject"
	ModerationReason  ModerationKind = "reason"
	ModerationBack    ModerationKind = "back"
)

// Moderation is a parsed moderation callback. Reason is set for ModerationReason.
type Moderation struct {
	Kind      ModerationKind
	RequestID uuid.UUID
	Reason    domain.RejectReason
}

// ParseModeration parses the payload of a moderation callback.
func ParseModeration(payload *string) (Moderation, error) {
	r, seg, err := head(payload, PrefixModeration)
	if err != nil {
		return Moderation{}, err
	}
	out := Moderation{Kind: ModerationKind(seg)}
	switch out.Kind {
	case ModerationApprove, ModerationReject, ModerationBack, ModerationReason:
	default:
		return Moderation{}, unknown(PrefixModeration, seg)
	}
	if out.RequestID, err = readUUID(r, "request id"); err != nil {
		return Moderation{}, err
	}
	if out.Kind == ModerationReason {
		raw, err := r.String("reason")
		if err != nil {
			return Moderation{}, err
		}
		if out.Reason, err = domain.ParseRejectReason(raw); err != nil {
			return Moderation{}, err
		}
	}
	return out, r.End()
}

// Data encodes the action as callback data.
func (a Moderation) Data() string {
	if a.Kind == ModerationReason {
		return callbacks.Join(PrefixModeration, string(a.Kind), a.RequestID.String(), string(a.Reason))
	}
	return callbacks.Join(PrefixModeration, string(a.Kind), a.RequestID.String())
}
