package actions

import (
	"strconv"

	"github.com/google/uuid"

	"github.com/m3rciful/iskra/core/telegram/callbacks"
)

// SearchKind enumerates browsing buttons.
type SearchKind string

const (
	SearchStart         SearchKind = "start"
	SearchStop          SearchKind = "stop"
	SearchContinue      SearchKind = "continue"
	SearchLike          SearchKind = "like"
	SearchPass          SearchKind = "pass"
	SearchMessage       SearchKind = "message"
	SearchCancelMessage SearchKind = "cancelMessage"
	SearchReport        SearchKind = "report"
	SearchIncoming      SearchKind = "incoming"
	SearchIncomingLike  SearchKind = "incoming.like"
	SearchIncomingSkip  SearchKind = "incoming.skip"
)

// Search is a parsed search callback. UserID is the candidate for
// like/pass/message/report and the liker for SearchIncomingLike;
// InteractionID is set for SearchIncomingSkip.
type Search struct {
	Kind          SearchKind
	UserID        int64
	InteractionID uuid.UUID
}

// ParseSearch parses the payload of a search callback.
func ParseSearch(payload *string) (Search, error) {
	r, seg, err := head(payload, PrefixSearch)
	if err != nil {
		return Search{}, err
	}
	var out Search
	switch k := SearchKind(seg); k {
	case SearchStart, SearchStop, SearchContinue, SearchCancelMessage:
		out.Kind = k
	case SearchLike, SearchPass, SearchMessage, SearchReport:
		out.Kind = k
		if out.UserID, err = r.Int64("user id"); err != nil {
			return Search{}, err
		}
	case SearchIncoming:
		out.Kind = SearchIncoming
		if r.Done() {
			return out, nil
		}
		sub, err := r.String("incoming action")
		if err != nil {
			return Search{}, err
		}
		switch sub {
		case "like":
			out.Kind = SearchIncomingLike
			if out.UserID, err = r.Int64("actor id"); err != nil {
				return Search{}, err
			}
		case "skip":
			out.Kind = SearchIncomingSkip
			if out.InteractionID, err = readUUID(r, "interaction id"); err != nil {
				return Search{}, err
			}
		default:
			return Search{}, unknown(PrefixSearch, "incoming:"+sub)
		}
	default:
		return Search{}, unknown(PrefixSearch, seg)
	}
	return out, r.End()
}

// Data encodes the action as callback data.
func (a Search) Data() string {
	switch a.Kind {
	case SearchLike, SearchPass, SearchMessage, SearchReport:
		return callbacks.Join(PrefixSearch, string(a.Kind), strconv.FormatInt(a.UserID, 10))
	case SearchIncomingLike:
		return callbacks.Join(PrefixSearch, "incoming", "like", strconv.FormatInt(a.UserID, 10))
	case SearchIncomingSkip:
		return callbacks.Join(PrefixSearch, "incoming", "skip", a.InteractionID.String())
	}
	return callbacks.Join(PrefixSearch, string(a.Kind))
}
