package telegram

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m3rciful/iskra/core/telegram/commands"

	tele "gopkg.in/telebot.v4"
)

func noop(tele.Context) error { return nil }

func TestRegistrySealRejectsLateRegistrations(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.RegisterCallback("search", noop))
	reg.Seal()
	reg.Seal()
	assert.True(t, reg.Sealed())

	assert.ErrorIs(t, reg.RegisterCallback("filter", noop), ErrRegistrySealed)
	assert.ErrorIs(t, reg.RegisterCommand("start", commands.Command{Handler: noop, Description: "x"}), ErrRegistrySealed)
	assert.ErrorIs(t, reg.RegisterShortcut("Surf", noop), ErrRegistrySealed)
	assert.ErrorIs(t, reg.RegisterFreeform("idle", InputText, noop), ErrRegistrySealed)

	_, ok := reg.Callback("search")
	assert.True(t, ok)
	_, ok = reg.Callback("filter")
	assert.False(t, ok)
}

func TestRegistryRejectsInvalidAndDuplicate(t *testing.T) {
	reg := NewRegistry()
	assert.ErrorIs(t, reg.RegisterCallback("", noop), ErrInvalidRegistration)
	assert.ErrorIs(t, reg.RegisterCallback("a:b", noop), ErrInvalidRegistration)
	assert.ErrorIs(t, reg.RegisterCallback("x", nil), ErrInvalidRegistration)
	assert.ErrorIs(t, reg.RegisterCommand("start", commands.Command{Handler: noop}), ErrInvalidRegistration)

	require.NoError(t, reg.RegisterCommand("/Start", commands.Command{Handler: noop, Description: "Start", Aliases: []string{"go"}}))
	assert.ErrorIs(t, reg.RegisterCommand("start", commands.Command{Handler: noop, Description: "again"}), ErrDuplicate)
	assert.ErrorIs(t, reg.RegisterCommand("go", commands.Command{Handler: noop, Description: "alias clash"}), ErrDuplicate)
	require.NoError(t, reg.RegisterFreeform("idle", InputText, noop))
	assert.ErrorIs(t, reg.RegisterFreeform("idle", InputText, noop), ErrDuplicate)
}

func TestLookupCommand(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.RegisterCommand("filters", commands.Command{Handler: noop, Description: "Filters", Aliases: []string{"f"}}))
	reg.Seal()

	name, args, _, ok := reg.LookupCommand("/FILTERS@iskra_bot  age 20")
	require.True(t, ok)
	assert.Equal(t, "filters", name)
	assert.Equal(t, "age 20", args)

	name, _, _, ok = reg.LookupCommand("/f")
	require.True(t, ok)
	assert.Equal(t, "filters", name)

	_, _, _, ok = reg.LookupCommand("filters")
	assert.False(t, ok)
	_, _, _, ok = reg.LookupCommand("/unknown")
	assert.False(t, ok)
}

func TestFreeformPhotoFallsBackToMedia(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.RegisterFreeform("profile.uploading_photo", InputMedia, noop))
	reg.Seal()

	_, ok := reg.Freeform("profile.uploading_photo", InputPhoto)
	assert.True(t, ok)
	_, ok = reg.Freeform("profile.uploading_photo", InputText)
	assert.False(t, ok)
}

func TestListCommandsHidesAdminAndHidden(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.RegisterCommand("start", commands.Command{Handler: noop, Description: "Start"}))
	require.NoError(t, reg.RegisterCommand("queue", commands.Command{Handler: noop, Description: "Queue", AdminOnly: true}))
	require.NoError(t, reg.RegisterCommand("debug", commands.Command{Handler: noop, Description: "Debug", Hidden: true}))

	visible := reg.ListCommands(true)
	require.Len(t, visible, 1)
	assert.Equal(t, "start", visible[0].Text)
	assert.Len(t, reg.ListCommands(false), 3)
}
