// Package input validates the free text users type during the flows.
package input

import (
	"fmt"
	"html"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"

	"github.com/m3rciful/iskra/core/telegram/helpers"
	"github.com/m3rciful/iskra/internal/domain"
)

// Length limits in runes.
const (
	BioMin     = 10
	BioMax     = 600
	CityMin    = 2
	CityMax    = 64
	MessageMax = 1000
)

var strict = bluemonday.StrictPolicy()

// CleanText strips markup and control bytes. Entities are decoded again
// because replies are sent as plain text.
func CleanText(s string) string {
	s = strings.ReplaceAll(s, "\x00", "")
	s = html.UnescapeString(strict.Sanitize(s))
	return strings.TrimSpace(s)
}

// ParseBirthdate accepts dd.MM.yyyy, dd/MM/yyyy and yyyy-MM-dd and returns the
// date with the age it gives at now.
func ParseBirthdate(text string, now time.Time) (time.Time, int, error) {
	birth, ok := helpers.ParseFlexibleDate(text)
	if !ok {
		return time.Time{}, 0, domain.Validation("unrecognised date")
	}
	if birth.After(helpers.StartOfDay(now)) {
		return time.Time{}, 0, domain.Validation("birth date is in the future")
	}
	age := domain.AgeAt(birth, now)
	if age > 120 {
		return time.Time{}, 0, domain.Validation("birth date is too far in the past")
	}
	return birth, age, nil
}

func between(s string, lo, hi int, what string) (string, error) {
	n := utf8.RuneCountInString(s)
	if n < lo || n > hi {
		return "", domain.Validation(fmt.Sprintf("%s must be %d to %d characters", what, lo, hi))
	}
	return s, nil
}

// Bio cleans and length-checks a profile bio.
func Bio(s string) (string, error) {
	return between(CleanText(s), BioMin, BioMax, "bio")
}

// City cleans and length-checks a city name.
func City(s string) (string, error) {
	return between(strings.Join(strings.Fields(CleanText(s)), " "), CityMin, CityMax, "city")
}

// Message cleans and length-checks a message to another user.
func Message(s string) (string, error) {
	return between(CleanText(s), 1, MessageMax, "message")
}

// ParseAgeRange reads "min-max" and checks it against [floor, ceiling].
func ParseAgeRange(s string, floor, ceiling int) (int, int, error) {
	s = strings.NewReplacer("–", "-", "—", "-", " ", "").Replace(strings.TrimSpace(s))
	lo, hi, found := strings.Cut(s, "-")
	if !found {
		return 0, 0, domain.Validation("expected a range like 20-30")
	}
	minAge, err1 := strconv.Atoi(lo)
	maxAge, err2 := strconv.Atoi(hi)
	if err1 != nil || err2 != nil {
		return 0, 0, domain.Validation("ages must be whole numbers")
	}
	if minAge < floor || maxAge > ceiling {
		return 0, 0, domain.Validation(fmt.Sprintf("ages must be between %d and %d", floor, ceiling))
	}
	if minAge > maxAge {
		return 0, 0, domain.Validation("minimum age is above maximum age")
	}
	return minAge, maxAge, nil
}
