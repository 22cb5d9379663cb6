package enemy

// Depth scaling multipliers. Non-boss enemies gain 10% of base health per
// depth level; bosses gain 5% because their base pools are already large.
const (
	hpScalePerDepth     = 0.10
	bossHPScalePerDepth = 0.05
)

// Instance is a live enemy occupying a room. It is the persisted form: the
// session snapshot serializes the room's enemy list as-is. Defeated instances
// stay in the list as markers and are excluded from alive queries.
type Instance struct {
	ID                  string `json:"id"`
	TemplateID          string `json:"template_id"`
	Name                string `json:"name"`
	Emoji               string `json:"emoji"`
	Description         string `json:"description"`
	HP                  int    `json:"hp"`
	MaxHP               int    `json:"max_hp"`
	DamageDice          string `json:"damage_dice"`
	Armor               int    `json:"armor"`
	Weakness            string `json:"weakness,omitempty"`
	Resistance          string `json:"resistance,omitempty"`
	SpecialAbility      string `json:"special_ability,omitempty"`
	AbilityScript       string `json:"ability_script,omitempty"`
	ImmuneUntilExamined bool   `json:"immune_until_examined"`
	XPReward            int    `json:"xp_reward"`
	GoldReward          int    `json:"gold_reward"`
	Tier                string `json:"tier"`
	IsExamined          bool   `json:"is_examined"`
}

// ScaledHP applies the depth multiplier to a base health value: ×(1 + 0.10·depth)
// for regular enemies, ×(1 + 0.05·depth) for bosses, truncated to int.
//
// Postcondition: Returns >= base for depth >= 0.
func ScaledHP(base, depth int, boss bool) int {
	scale := hpScalePerDepth
	if boss {
		scale = bossHPScalePerDepth
	}
	return int(float64(base) * (1.0 + scale*float64(depth)))
}

// NewInstance creates a live enemy from a template, scaled to depth. The
// scaled health becomes both current and max.
//
// Precondition: id must be non-empty; tmpl must be non-nil and validated;
// depth must be >= 1.
// Postcondition: HP == MaxHP == ScaledHP(tmpl.MaxHP, depth, boss).
func NewInstance(id string, tmpl *Template, depth int) *Instance {
	hp := ScaledHP(tmpl.MaxHP, depth, tmpl.Tier == TierBoss)
	emoji := tmpl.Emoji
	if emoji == "" {
		emoji = DefaultEmoji
	}
	return &Instance{
		ID:                  id,
		TemplateID:          tmpl.ID,
		Name:                tmpl.Name,
		Emoji:               emoji,
		Description:         tmpl.Description,
		HP:                  hp,
		MaxHP:               hp,
		DamageDice:          tmpl.DamageDice,
		Armor:               tmpl.Armor,
		Weakness:            tmpl.Weakness,
		Resistance:          tmpl.Resistance,
		SpecialAbility:      tmpl.SpecialAbility,
		AbilityScript:       tmpl.AbilityScript,
		ImmuneUntilExamined: tmpl.ImmuneUntilExamined,
		XPReward:            tmpl.XPReward,
		GoldReward:          tmpl.GoldReward,
		Tier:                tmpl.Tier,
	}
}

// IsAlive reports whether the instance has positive health.
func (i *Instance) IsAlive() bool {
	return i.HP > 0
}

// IsImmune reports whether the examine-gate currently blocks all damage to
// this instance.
func (i *Instance) IsImmune() bool {
	return i.ImmuneUntilExamined && !i.IsExamined
}

// MarkExamined clears the examine-gate and returns the revealed weakness
// ("" if the template has none).
//
// Postcondition: IsImmune() is false.
func (i *Instance) MarkExamined() string {
	i.IsExamined = true
	return i.Weakness
}

// ApplyDamage subtracts dmg from health, clamped at 0, and returns the
// health actually removed.
//
// Precondition: dmg must be >= 0.
// Postcondition: HP >= 0; repeated lethal hits leave HP at exactly 0.
func (i *Instance) ApplyDamage(dmg int) int {
	if dmg > i.HP {
		dmg = i.HP
	}
	i.HP -= dmg
	return dmg
}

// Heal restores up to n health, capped at the scaled maximum. Returns the
// amount actually restored.
//
// Postcondition: HP <= MaxHP.
func (i *Instance) Heal(n int) int {
	missing := i.MaxHP - i.HP
	if n > missing {
		n = missing
	}
	if n < 0 {
		n = 0
	}
	i.HP += n
	return n
}

// HealthDescription returns a visible health state string suitable for
// examine output.
//
// Postcondition: Returns a non-empty string.
func (i *Instance) HealthDescription() string {
	if i.HP <= 0 {
		return "defeated"
	}
	pct := float64(i.HP) / float64(i.MaxHP)
	switch {
	case pct >= 1.0:
		return "fully operational"
	case pct >= 0.85:
		return "barely dented"
	case pct >= 0.60:
		return "lightly damaged"
	case pct >= 0.40:
		return "moderately damaged"
	case pct >= 0.20:
		return "heavily damaged"
	default:
		return "critically unstable"
	}
}
