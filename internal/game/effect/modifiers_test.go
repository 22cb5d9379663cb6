package effect_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/integration-quest/internal/game/effect"
)

// testRegistry mirrors the shipped effect content.
func testRegistry() *effect.Registry {
	reg := effect.NewRegistry()
	reg.Register(&effect.EffectDef{Type: "buffered", DamageModifier: 1.25})
	reg.Register(&effect.EffectDef{Type: "auth_expired", DamageModifier: 0.5})
	reg.Register(&effect.EffectDef{Type: "throttled", CostModifier: 0.5})
	reg.Register(&effect.EffectDef{Type: "cached", ArmorBonus: 3})
	reg.Register(&effect.EffectDef{Type: "rate_limited", BlocksAction: true,
		BlockMessage: "Rate Limited! You must skip this turn."})
	return reg
}

func TestDamageModifier_Empty(t *testing.T) {
	var s effect.Set
	assert.Equal(t, 1.0, effect.DamageModifier(s, testRegistry()))
}

func TestDamageModifier_ComposesMultiplicatively(t *testing.T) {
	reg := testRegistry()
	var s effect.Set
	s.Apply("buffered", 3, "")
	assert.Equal(t, 1.25, effect.DamageModifier(s, reg))

	s.Apply("auth_expired", 2, "")
	assert.Equal(t, 0.625, effect.DamageModifier(s, reg), "1.25 * 0.5 must compose")
}

func TestDamageModifier_IgnoresUnknownTypes(t *testing.T) {
	var s effect.Set
	s.Apply("god_mode", effect.PermanentDuration, "")
	assert.Equal(t, 1.0, effect.DamageModifier(s, testRegistry()))
}

func TestCostModifier_Throttled(t *testing.T) {
	reg := testRegistry()
	var s effect.Set
	s.Apply("throttled", 4, "")
	assert.Equal(t, 0.5, effect.CostModifier(s, reg))

	s.Apply("buffered", 3, "")
	assert.Equal(t, 0.5, effect.CostModifier(s, reg), "damage buffs must not alter costs")
}

func TestArmorBonus_Cached(t *testing.T) {
	reg := testRegistry()
	var s effect.Set
	assert.Equal(t, 0, effect.ArmorBonus(s, reg))

	s.Apply("cached", 5, "")
	assert.Equal(t, 3, effect.ArmorBonus(s, reg))
}

func TestCanAct_RateLimited(t *testing.T) {
	reg := testRegistry()
	var s effect.Set
	ok, _ := effect.CanAct(s, reg)
	assert.True(t, ok)

	s.Apply("rate_limited", 2, "")
	ok, msg := effect.CanAct(s, reg)
	require.False(t, ok)
	assert.Equal(t, "Rate Limited! You must skip this turn.", msg)
}

func TestCanAct_DefaultBlockMessage(t *testing.T) {
	reg := effect.NewRegistry()
	reg.Register(&effect.EffectDef{Type: "deadlocked", BlocksAction: true})
	var s effect.Set
	s.Apply("deadlocked", 1, "")
	ok, msg := effect.CanAct(s, reg)
	require.False(t, ok)
	assert.Equal(t, "Deadlocked! You must skip this turn.", msg)
}

func TestPropertyDamageModifier_OrderIndependent(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		reg := testRegistry()
		types := rapid.Permutation([]string{"buffered", "auth_expired", "cached"}).Draw(t, "types")

		var s effect.Set
		for _, typ := range types {
			s.Apply(typ, 3, "")
		}
		assert.InDelta(t, 0.625, effect.DamageModifier(s, reg), 1e-9,
			"multiplicative composition must not depend on application order")
	})
}
