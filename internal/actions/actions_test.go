package actions

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m3rciful/iskra/core/telegram/callbacks"
	"github.com/m3rciful/iskra/internal/domain"
	"github.com/m3rciful/iskra/internal/session"
)

func payloadOf(t *testing.T, data, prefix string) *string {
	t.Helper()
	got, payload := callbacks.Split(data)
	require.Equal(t, prefix, got)
	return payload
}

func TestParseModerationReason(t *testing.T) {
	id := uuid.MustParse("0b6c1c9e-6b5a-4a3e-9d89-1a2b3c4d5e6f")
	a, err := ParseModeration(payloadOf(t, "mod:reason:"+id.String()+":photo", PrefixModeration))
	require.NoError(t, err)
	assert.Equal(t, Moderation{Kind: ModerationReason, RequestID: id, Reason: domain.RejectPhoto}, a)
	assert.Equal(t, "mod:reason:"+id.String()+":photo", a.Data())

	_, err = ParseModeration(payloadOf(t, "mod:approve:ABC123", PrefixModeration))
	assert.ErrorIs(t, err, callbacks.ErrMalformed)
	_, err = ParseModeration(payloadOf(t, "mod:approve:"+id.String()+":extra", PrefixModeration))
	assert.ErrorIs(t, err, callbacks.ErrMalformed)
	_, err = ParseModeration(payloadOf(t, "mod:reason:"+id.String()+":ugly", PrefixModeration))
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestParseSearch(t *testing.T) {
	skip := uuid.New()
	cases := []struct {
		data string
		want Search
	}{
		{"search:start", Search{Kind: SearchStart}},
		{"search:like:42", Search{Kind: SearchLike, UserID: 42}},
		{"search:report:7", Search{Kind: SearchReport, UserID: 7}},
		{"search:cancelMessage", Search{Kind: SearchCancelMessage}},
		{"search:incoming", Search{Kind: SearchIncoming}},
		{"search:incoming:like:9", Search{Kind: SearchIncomingLike, UserID: 9}},
		{"search:incoming:skip:" + skip.String(), Search{Kind: SearchIncomingSkip, InteractionID: skip}},
	}
	for _, tc := range cases {
		t.Run(tc.data, func(t *testing.T) {
			got, err := ParseSearch(payloadOf(t, tc.data, PrefixSearch))
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
			assert.Equal(t, tc.data, got.Data())
		})
	}

	for _, bad := range []string{"search", "search:like", "search:like:abc", "search:jump", "search:incoming:like:x", "search:stop:1"} {
		_, payload := callbacks.Split(bad)
		_, err := ParseSearch(payload)
		assert.ErrorIs(t, err, callbacks.ErrMalformed, bad)
	}
}

func TestParseProfile(t *testing.T) {
	a, err := ParseProfile(payloadOf(t, "profile:edit:bio", PrefixProfile))
	require.NoError(t, err)
	assert.Equal(t, Profile{Kind: ProfileEditField, Field: session.FieldBio}, a)

	a, err = ParseProfile(payloadOf(t, "profile:edit:menu", PrefixProfile))
	require.NoError(t, err)
	assert.Equal(t, ProfileEditMenu, a.Kind)
	assert.Equal(t, "profile:edit:menu", a.Data())

	a, err = ParseProfile(payloadOf(t, "profile:goal:both", PrefixProfile))
	require.NoError(t, err)
	assert.Equal(t, domain.GoalBoth, a.Goal)

	a, err = ParseProfile(payloadOf(t, "profile:pref:any", PrefixProfile))
	require.NoError(t, err)
	assert.Equal(t, "profile:pref:any", a.Data())

	_, err = ParseProfile(payloadOf(t, "profile:edit:age", PrefixProfile))
	assert.ErrorIs(t, err, callbacks.ErrMalformed)
	_, err = ParseProfile(payloadOf(t, "profile:goal:fun", PrefixProfile))
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestParseFilter(t *testing.T) {
	a, err := ParseFilter(payloadOf(t, "filter:age:custom", PrefixFilter))
	require.NoError(t, err)
	assert.Equal(t, Filter{Kind: FilterAgeCustom}, a)
	assert.Equal(t, "filter:age:custom", a.Data())

	a, err = ParseFilter(payloadOf(t, "filter:gender:opposite", PrefixFilter))
	require.NoError(t, err)
	assert.Equal(t, Filter{Kind: FilterGender, Gender: GenderOpposite}, a)

	a, err = ParseFilter(payloadOf(t, "filter:show:age", PrefixFilter))
	require.NoError(t, err)
	assert.Equal(t, FilterShowAge, a.Kind)

	_, err = ParseFilter(payloadOf(t, "filter:age:ancient", PrefixFilter))
	assert.ErrorIs(t, err, callbacks.ErrMalformed)
}

func TestParseOnboarding(t *testing.T) {
	a, err := ParseOnboarding(payloadOf(t, "onboarding:gender:female", PrefixOnboarding))
	require.NoError(t, err)
	assert.Equal(t, Onboarding{Kind: OnboardingGender, Gender: domain.GenderFemale}, a)
	assert.Equal(t, "onboarding:gender:female", a.Data())

	_, err = ParseOnboarding(nil)
	assert.ErrorIs(t, err, callbacks.ErrMalformed)
	_, err = ParseOnboarding(payloadOf(t, "onboarding:gender:robot", PrefixOnboarding))
	assert.ErrorIs(t, err, domain.ErrValidation)
}
