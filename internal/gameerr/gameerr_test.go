package gameerr_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/integration-quest/internal/gameerr"
)

func TestErrorString(t *testing.T) {
	err := gameerr.New(gameerr.CodeImmune, "blocked")
	assert.Equal(t, "IMMUNE: blocked", err.Error())
}

func TestErrorStringWithCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := gameerr.Wrap(cause, "saving game")
	assert.Equal(t, "INTERNAL: saving game: connection refused", err.Error())
	assert.ErrorIs(t, err, cause)
}

func TestIsMatchesByCode(t *testing.T) {
	err := gameerr.InvalidTarget("Rate Limit Guardian")
	assert.ErrorIs(t, err, gameerr.New(gameerr.CodeInvalidTarget, ""))
	assert.NotErrorIs(t, err, gameerr.New(gameerr.CodeImmune, ""))
}

func TestIsMatchesThroughWrapping(t *testing.T) {
	inner := gameerr.InventoryFull(20)
	wrapped := fmt.Errorf("pickup failed: %w", inner)
	assert.ErrorIs(t, wrapped, gameerr.New(gameerr.CodeInventoryFull, ""))
	assert.Equal(t, gameerr.CodeInventoryFull, gameerr.CodeOf(wrapped))
}

func TestWrapPreservesCode(t *testing.T) {
	inner := gameerr.ItemNotFound("Job Retry Potion")
	wrapped := gameerr.Wrap(inner, "using item")
	assert.Equal(t, gameerr.CodeItemNotFound, wrapped.Code)
	assert.ErrorIs(t, wrapped, inner)
}

func TestWrapNil(t *testing.T) {
	assert.Nil(t, gameerr.Wrap(nil, "noop"))
}

func TestInsufficientResourceMeta(t *testing.T) {
	err := gameerr.InsufficientResource(25, 10)
	require.NotNil(t, err.Meta)
	assert.Equal(t, 25, err.Meta["required"])
	assert.Equal(t, 10, err.Meta["available"])
}

func TestInvalidTargetMeta(t *testing.T) {
	err := gameerr.InvalidTarget("ghost")
	assert.Equal(t, "ghost", err.Meta["target"])
}

func TestCodeOfForeignError(t *testing.T) {
	assert.Equal(t, gameerr.CodeInternal, gameerr.CodeOf(errors.New("plain")))
}

func TestMetaOf(t *testing.T) {
	err := gameerr.InvalidDirection("up")
	meta := gameerr.MetaOf(fmt.Errorf("move: %w", err))
	require.NotNil(t, meta)
	assert.Equal(t, "up", meta["direction"])

	assert.Nil(t, gameerr.MetaOf(errors.New("plain")))
}

func TestWithMetaChaining(t *testing.T) {
	err := gameerr.New(gameerr.CodeInternal, "boom").
		WithMeta("a", 1).
		WithMeta("b", "two")
	assert.Equal(t, 1, err.Meta["a"])
	assert.Equal(t, "two", err.Meta["b"])
}

func TestConstructorCodes(t *testing.T) {
	cases := []struct {
		name string
		err  *gameerr.Error
		code gameerr.Code
	}{
		{"no active session", gameerr.NoActiveSession(), gameerr.CodeNoActiveSession},
		{"not in combat", gameerr.NotInCombat(), gameerr.CodeNotInCombat},
		{"in combat", gameerr.InCombat("rest"), gameerr.CodeInCombat},
		{"blocked", gameerr.Blocked(), gameerr.CodeAlreadyBlocked},
		{"inventory full", gameerr.InventoryFull(20), gameerr.CodeInventoryFull},
		{"immune", gameerr.Immune("Undocumented API"), gameerr.CodeImmune},
		{"not registered", gameerr.NotRegistered("a@b.c"), gameerr.CodeNotRegistered},
		{"already registered", gameerr.AlreadyRegistered("email", "a@b.c"), gameerr.CodeAlreadyRegistered},
		{"not logged in", gameerr.NotLoggedIn(), gameerr.CodeNotLoggedIn},
		{"multiplayer disabled", gameerr.MultiplayerDisabled(), gameerr.CodeMultiplayerDisabled},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.code, tc.err.Code)
			assert.NotEmpty(t, tc.err.Message)
		})
	}
}
