package helpers

import (
	"strings"
	"time"
)

// DateLayouts are the day-precision formats accepted from users.
var DateLayouts = []string{
	"02.01.2006",
	"2.1.2006",
	"02/01/2006",
	"2/1/2006",
	"2006-01-02",
	"2006-1-2",
}

// ParseFlexibleDate tries each layout in order and returns the date at UTC
// midnight. With no layouts given DateLayouts is used.
func ParseFlexibleDate(input string, layouts ...string) (time.Time, bool) {
	s := strings.TrimSpace(input)
	if s == "" {
		return time.Time{}, false
	}
	if len(layouts) == 0 {
		layouts = DateLayouts
	}
	for _, layout := range layouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// StartOfDay truncates t to midnight UTC.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
