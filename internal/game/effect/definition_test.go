package effect_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/integration-quest/internal/game/effect"
)

func TestRegistry_Get_Found(t *testing.T) {
	reg := effect.NewRegistry()
	def := &effect.EffectDef{Type: "buffered", DamageModifier: 1.25}
	reg.Register(def)
	got, ok := reg.Get("buffered")
	require.True(t, ok)
	assert.Equal(t, def, got)
}

func TestRegistry_Get_NotFound(t *testing.T) {
	reg := effect.NewRegistry()
	_, ok := reg.Get("nonexistent")
	assert.False(t, ok)
}

func TestRegistry_Register_NormalizesZeroModifiers(t *testing.T) {
	reg := effect.NewRegistry()
	reg.Register(&effect.EffectDef{Type: "cached", ArmorBonus: 3})
	got, ok := reg.Get("cached")
	require.True(t, ok)
	assert.Equal(t, 1.0, got.DamageModifier, "omitted damage_modifier must normalize to 1")
	assert.Equal(t, 1.0, got.CostModifier, "omitted cost_modifier must normalize to 1")
}

func TestEffectDef_Validate(t *testing.T) {
	valid := &effect.EffectDef{Type: "buffered", DamageModifier: 1.25}
	assert.NoError(t, valid.Validate())

	missing := &effect.EffectDef{DamageModifier: 1.25}
	assert.Error(t, missing.Validate())

	negative := &effect.EffectDef{Type: "broken", DamageModifier: -0.5}
	assert.Error(t, negative.Validate())
}

func TestLoadDirectory_ParsesYAML(t *testing.T) {
	dir := t.TempDir()
	yaml := `
type: auth_expired
description: "Your auth token expired. Outgoing damage is halved."
damage_modifier: 0.5
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "auth_expired.yaml"), []byte(yaml), 0644))

	reg, err := effect.LoadDirectory(dir)
	require.NoError(t, err)
	got, ok := reg.Get("auth_expired")
	require.True(t, ok)
	assert.Equal(t, 0.5, got.DamageModifier)
	assert.Equal(t, 1.0, got.CostModifier)
	assert.False(t, got.BlocksAction)
}

func TestLoadDirectory_EmptyDir(t *testing.T) {
	dir := t.TempDir()
	reg, err := effect.LoadDirectory(dir)
	require.NoError(t, err)
	assert.Empty(t, reg.All())
}

func TestLoadDirectory_InvalidYAML_ReturnsError(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.yaml"), []byte(":::bad:::"), 0644))
	_, err := effect.LoadDirectory(dir)
	assert.Error(t, err)
}

func TestLoadDirectory_NonexistentDir_ReturnsError(t *testing.T) {
	_, err := effect.LoadDirectory("/nonexistent/path/that/does/not/exist")
	assert.Error(t, err)
}

func TestLoadDirectory_RealEffects(t *testing.T) {
	reg, err := effect.LoadDirectory("../../../content/effects")
	require.NoError(t, err)
	for _, typ := range []string{"buffered", "auth_expired", "throttled", "cached", "rate_limited"} {
		_, ok := reg.Get(typ)
		assert.True(t, ok, "effect %q must be present", typ)
	}
}

func TestPropertyRegistry_RegisterThenGet(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		typ := rapid.StringMatching(`[a-z_]{3,12}`).Draw(t, "type")
		reg := effect.NewRegistry()
		def := &effect.EffectDef{Type: typ, DamageModifier: 1}
		reg.Register(def)
		got, ok := reg.Get(typ)
		assert.True(t, ok, "registered effect must be retrievable")
		assert.Equal(t, def, got)
	})
}
