package actions

import "github.com/m3rciful/iskra/core/telegram/callbacks"

// FilterKind enumerates filter menu buttons.
type FilterKind string

const (
	FilterMenu       FilterKind = "menu"
	FilterShowGender FilterKind = "show.gender"
	FilterShowAge    FilterKind = "show.age"
	FilterGender     FilterKind = "gender"
	FilterAge        FilterKind = "age"
	FilterAgeCustom  FilterKind = "age.custom"
	FilterDone       FilterKind = "done"
)

// GenderPreset is a one-tap target gender choice, relative to the user.
type GenderPreset string

const (
	GenderOwn      GenderPreset = "own"
	GenderOpposite GenderPreset = "opposite"
	GenderAny      GenderPreset = "any"
)

// AgePreset is a one-tap age range choice.
type AgePreset string

const (
	AgePeers  AgePreset = "peers"
	AgeYoung  AgePreset = "young"
	AgeMid    AgePreset = "mid"
	AgeMature AgePreset = "mature"
	AgeAny    AgePreset = "any"
)

// Filter is a parsed filter callback.
type Filter struct {
	Kind   FilterKind
	Gender GenderPreset
	Age    AgePreset
}

// ParseFilter parses the payload of a filter callback.
func ParseFilter(payload *string) (Filter, error) {
	r, seg, err := head(payload, PrefixFilter)
	if err != nil {
		return Filter{}, err
	}
	var out Filter
	switch seg {
	case "menu":
		out.Kind = FilterMenu
	case "done":
		out.Kind = FilterDone
	case "show":
		what, err := r.String("section")
		if err != nil {
			return Filter{}, err
		}
		switch what {
		case "gender":
			out.Kind = FilterShowGender
		case "age":
			out.Kind = FilterShowAge
		default:
			return Filter{}, unknown(PrefixFilter, "show:"+what)
		}
	case "gender":
		raw, err := r.String("gender preset")
		if err != nil {
			return Filter{}, err
		}
		switch p := GenderPreset(raw); p {
		case GenderOwn, GenderOpposite, GenderAny:
			out.Kind, out.Gender = FilterGender, p
		default:
			return Filter{}, unknown(PrefixFilter, "gender:"+raw)
		}
	case "age":
		raw, err := r.String("age preset")
		if err != nil {
			return Filter{}, err
		}
		switch p := AgePreset(raw); p {
		case AgePeers, AgeYoung, AgeMid, AgeMature, AgeAny:
			out.Kind, out.Age = FilterAge, p
		case "custom":
			out.Kind = FilterAgeCustom
		default:
			return Filter{}, unknown(PrefixFilter, "age:"+raw)
		}
	default:
		return Filter{}, unknown(PrefixFilter, seg)
	}
	return out, r.End()
}

// Data encodes the action as callback data.
func (a Filter) Data() string {
	switch a.Kind {
	case FilterShowGender:
		return callbacks.Join(PrefixFilter, "show", "gender")
	case FilterShowAge:
		return callbacks.Join(PrefixFilter, "show", "age")
	case FilterGender:
		return callbacks.Join(PrefixFilter, "gender", string(a.Gender))
	case FilterAge:
		return callbacks.Join(PrefixFilter, "age", string(a.Age))
	case FilterAgeCustom:
		return callbacks.Join(PrefixFilter, "age", "custom")
	}
	return callbacks.Join(PrefixFilter, string(a.Kind))
}
