package input

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m3rciful/iskra/internal/domain"
)

func TestParseBirthdate(t *testing.T) {
	now := time.Date(2026, 6, 15, 9, 0, 0, 0, time.UTC)
	for _, in := range []string{"15.06.2008", "15/06/2008", "2008-06-15", " 15.6.2008 "} {
		birth, age, err := ParseBirthdate(in, now)
		require.NoError(t, err, in)
		assert.Equal(t, time.Date(2008, 6, 15, 0, 0, 0, 0, time.UTC), birth)
		assert.Equal(t, 18, age)
	}

	_, age, err := ParseBirthdate("16.06.2008", now)
	require.NoError(t, err)
	assert.Equal(t, 17, age)

	for _, in := range []string{"", "yesterday", "31.02.2000", "2000.01.01", "01.01.2030"} {
		_, _, err := ParseBirthdate(in, now)
		assert.ErrorIs(t, err, domain.ErrValidation, in)
	}
}

func TestBioBounds(t *testing.T) {
	_, err := Bio("too short")
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = Bio(strings.Repeat("я", BioMax+1))
	assert.ErrorIs(t, err, domain.ErrValidation)

	got, err := Bio("  <b>Hiking</b> & coffee lover  ")
	require.NoError(t, err)
	assert.Equal(t, "Hiking & coffee lover", got)

	_, err = Bio("<script>alert(1)</script>")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestCityCollapsesSpaces(t *testing.T) {
	got, err := City("  New   York ")
	require.NoError(t, err)
	assert.Equal(t, "New York", got)
	_, err = City("X")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestParseAgeRange(t *testing.T) {
	lo, hi, err := ParseAgeRange("20 - 30", 18, 99)
	require.NoError(t, err)
	assert.Equal(t, 20, lo)
	assert.Equal(t, 30, hi)

	lo, hi, err = ParseAgeRange("25–25", 18, 99)
	require.NoError(t, err)
	assert.Equal(t, 25, lo)
	assert.Equal(t, 25, hi)

	for _, in := range []string{"20", "a-b", "17-30", "30-100", "40-30"} {
		_, _, err := ParseAgeRange(in, 18, 99)
		assert.ErrorIs(t, err, domain.ErrValidation, in)
	}
}
