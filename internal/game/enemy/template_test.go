package enemy_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/integration-quest/internal/game/enemy"
)

func validTemplate() *enemy.Template {
	return &enemy.Template{
		ID:          "timeout_imp",
		Name:        "Timeout Imp",
		Emoji:       "⏳",
		Description: "A twitchy little daemon that lets connections hang forever.",
		MaxHP:       15,
		DamageDice:  "1d4",
		Armor:       0,
		XPReward:    10,
		GoldReward:  5,
		Tier:        enemy.TierCommon,
	}
}

func TestTemplate_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*enemy.Template)
		errStr string
	}{
		{"valid", func(tmpl *enemy.Template) {}, ""},
		{"empty id", func(tmpl *enemy.Template) { tmpl.ID = "" }, "id must not be empty"},
		{"empty name", func(tmpl *enemy.Template) { tmpl.Name = "" }, "name must not be empty"},
		{"empty description", func(tmpl *enemy.Template) { tmpl.Description = "" }, "description must not be empty"},
		{"zero hp", func(tmpl *enemy.Template) { tmpl.MaxHP = 0 }, "max_hp must be >= 1"},
		{"bad dice", func(tmpl *enemy.Template) { tmpl.DamageDice = "lots" }, "not valid dice notation"},
		{"negative armor", func(tmpl *enemy.Template) { tmpl.Armor = -1 }, "armor must be >= 0"},
		{"negative xp", func(tmpl *enemy.Template) { tmpl.XPReward = -5 }, "xp_reward must be >= 0"},
		{"negative gold", func(tmpl *enemy.Template) { tmpl.GoldReward = -5 }, "gold_reward must be >= 0"},
		{"unknown tier", func(tmpl *enemy.Template) { tmpl.Tier = "mythic" }, "tier must be one of"},
		{"unknown special", func(tmpl *enemy.Template) { tmpl.SpecialAbility = "summon_interns" }, "unknown special_ability"},
		{"script on non-boss", func(tmpl *enemy.Template) { tmpl.AbilityScript = "slam.lua" }, "boss-tier only"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpl := validTemplate()
			tt.mutate(tmpl)
			err := tmpl.Validate()
			if tt.errStr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errStr)
			}
		})
	}
}

func TestTemplate_Validate_BossScript(t *testing.T) {
	tmpl := validTemplate()
	tmpl.Tier = enemy.TierBoss
	tmpl.AbilityScript = "monolith_slam.lua"
	assert.NoError(t, tmpl.Validate())
}

func TestLoadTemplateFromBytes(t *testing.T) {
	data := []byte(`id: rate_limit_guardian
name: Rate Limit Guardian
emoji: "🚦"
description: A towering sentinel that counts your every request.
max_hp: 30
damage_dice: 1d8
armor: 2
special_ability: rate_limited_inflict
xp_reward: 35
gold_reward: 20
tier: uncommon
`)
	tmpl, err := enemy.LoadTemplateFromBytes(data)
	require.NoError(t, err)
	assert.Equal(t, "rate_limit_guardian", tmpl.ID)
	assert.Equal(t, "🚦", tmpl.Emoji)
	assert.Equal(t, enemy.SpecialRateLimit, tmpl.SpecialAbility)
	assert.Equal(t, enemy.TierUncommon, tmpl.Tier)
}

func TestLoadTemplateFromBytes_DefaultsEmoji(t *testing.T) {
	data := []byte(`id: blob
name: Blob
description: Unstructured data given form.
max_hp: 10
damage_dice: 1d4
tier: common
`)
	tmpl, err := enemy.LoadTemplateFromBytes(data)
	require.NoError(t, err)
	assert.Equal(t, enemy.DefaultEmoji, tmpl.Emoji)
}

func TestLoadTemplateFromBytes_RejectsUnknownFields(t *testing.T) {
	data := []byte(`id: blob
name: Blob
description: Unstructured data given form.
max_hp: 10
damage_dice: 1d4
tier: common
attack_speed: 3
`)
	_, err := enemy.LoadTemplateFromBytes(data)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "attack_speed")
}

func TestLoadTemplates_LexicalOrder(t *testing.T) {
	dir := t.TempDir()
	writeTemplate := func(file, id, tier string) {
		data := "id: " + id + "\nname: " + id + "\ndescription: test enemy\nmax_hp: 10\ndamage_dice: 1d4\ntier: " + tier + "\n"
		require.NoError(t, os.WriteFile(filepath.Join(dir, file), []byte(data), 0o644))
	}
	writeTemplate("boss_2_second.yaml", "second_boss", "boss")
	writeTemplate("boss_1_first.yaml", "first_boss", "boss")
	writeTemplate("imp.yaml", "imp", "common")

	templates, err := enemy.LoadTemplates(dir)
	require.NoError(t, err)
	require.Len(t, templates, 3)
	// os.ReadDir sorts entries, so boss_1 precedes boss_2.
	assert.Equal(t, "first_boss", templates[0].ID)
	assert.Equal(t, "second_boss", templates[1].ID)
	assert.Equal(t, "imp", templates[2].ID)
}

func TestLoadTemplates_PropagatesValidationFailure(t *testing.T) {
	dir := t.TempDir()
	bad := "id: broken\nname: Broken\ndescription: test\nmax_hp: 0\ndamage_dice: 1d4\ntier: common\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.yaml"), []byte(bad), 0o644))

	_, err := enemy.LoadTemplates(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "max_hp must be >= 1")
}

func TestRegistry_Register(t *testing.T) {
	reg := enemy.NewRegistry()
	tmpl := validTemplate()
	require.NoError(t, reg.Register(tmpl))

	got, ok := reg.Get("timeout_imp")
	require.True(t, ok)
	assert.Equal(t, tmpl, got)

	_, ok = reg.Get("nonexistent")
	assert.False(t, ok)
	assert.Equal(t, 1, reg.Len())
}

func TestRegistry_RejectsDuplicateID(t *testing.T) {
	reg := enemy.NewRegistry()
	require.NoError(t, reg.Register(validTemplate()))

	err := reg.Register(validTemplate())
	require.Error(t, err)
	assert.Contains(t, err.Error(), `duplicate template ID "timeout_imp"`)
	assert.Equal(t, 1, reg.Len())
}

func TestRegistry_ByTierPreservesOrder(t *testing.T) {
	reg := enemy.NewRegistry()
	for _, id := range []string{"alpha", "beta", "gamma"} {
		tmpl := validTemplate()
		tmpl.ID = id
		require.NoError(t, reg.Register(tmpl))
	}
	boss := validTemplate()
	boss.ID = "final_boss"
	boss.Tier = enemy.TierBoss
	require.NoError(t, reg.Register(boss))

	commons := reg.ByTier(enemy.TierCommon)
	require.Len(t, commons, 3)
	assert.Equal(t, "alpha", commons[0].ID)
	assert.Equal(t, "beta", commons[1].ID)
	assert.Equal(t, "gamma", commons[2].ID)

	bosses := reg.Bosses()
	require.Len(t, bosses, 1)
	assert.Equal(t, "final_boss", bosses[0].ID)

	assert.Empty(t, reg.ByTier(enemy.TierRare))
}

func TestLoadRegistry_RealContent(t *testing.T) {
	reg, err := enemy.LoadRegistry(filepath.Join("..", "..", "..", "content", "enemies"))
	require.NoError(t, err)

	for _, tier := range []string{enemy.TierCommon, enemy.TierUncommon, enemy.TierRare, enemy.TierBoss} {
		assert.NotEmpty(t, reg.ByTier(tier), "tier %s has no templates", tier)
	}

	guardian, ok := reg.Get("rate_limit_guardian")
	require.True(t, ok)
	assert.Equal(t, enemy.SpecialRateLimit, guardian.SpecialAbility)

	bosses := reg.Bosses()
	require.NotEmpty(t, bosses)
	assert.Equal(t, "gateway_keeper", bosses[0].ID, "first boss guards depth 5")
	for _, b := range bosses {
		assert.GreaterOrEqual(t, b.MaxHP, 50, "boss %s base health", b.ID)
	}
}
