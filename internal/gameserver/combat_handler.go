package gameserver

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/cory-johannsen/integration-quest/internal/game/combat"
	"github.com/cory-johannsen/integration-quest/internal/game/progress"
	"github.com/cory-johannsen/integration-quest/internal/game/skill"
	"github.com/cory-johannsen/integration-quest/internal/gameerr"
)

// AttackInput picks the enemy and optionally the skill to use. An empty
// target matches the first living enemy; an empty skill is the basic attack.
type AttackInput struct {
	Target string `json:"target,omitempty" jsonschema:"enemy name, matched as a substring; empty attacks the first living enemy"`
	Skill  string `json:"skill,omitempty" jsonschema:"skill id to use; empty uses basic_attack"`
}

// DefendInput is empty; defending takes no arguments.
type DefendInput struct{}

// FleeInput is empty; fleeing takes no arguments.
type FleeInput struct{}

// handleAttack resolves one full combat round: the hero's status tick and
// action gate, the skill cost, the attack itself, then either victory
// accounting or the enemies' phase. Combat starts lazily on the first
// attack against an uncleared room.
func (s *Server) handleAttack(ctx context.Context, req *mcp.CallToolRequest, input AttackInput) (*mcp.CallToolResult, ToolResult, error) {
	st, ok := s.state()
	if !ok {
		return nil, fail(msgNoGame, gameerr.NoActiveSession()), nil
	}
	room, ok := st.CurrentRoom()
	if !ok {
		return nil, fail(msgNoGame, gameerr.NoActiveSession()), nil
	}
	h := st.Hero
	src := s.roller.Source()

	target, ok := room.FindEnemy(input.Target)
	if !ok {
		return nil, fail(msgInvalidTarget(input.Target), gameerr.InvalidTarget(input.Target)), nil
	}

	if !st.IsInCombat() {
		st.Combat = combat.NewState(room.AliveEnemies(), src)
	}

	def, err := s.resolveSkill(input.Skill)
	if err != nil {
		return nil, fail(fmt.Sprintf("❓ Skill '%s' not found!", input.Skill), err), nil
	}

	canAct, messages := combat.BeginHeroTurn(h, s.effects)
	if !canAct {
		phase := combat.ResolveEnemyPhase(room.Enemies, h, st.Combat, s.items, s.effects, src, s.abilities)
		messages = append(messages, phase.Messages...)
		st.Touch()
		if phase.HeroDefeated {
			messages = append(messages, "\n"+pick(gameOverMessages, src))
			return nil, narrateState(strings.Join(messages, "\n"), map[string]any{"game_over": true}), nil
		}
		return nil, narrateState(strings.Join(messages, "\n"), map[string]any{
			"uptime":        h.Uptime,
			"api_credits":   h.APICredits,
			"combat_active": st.IsInCombat(),
			"room_cleared":  room.IsCleared,
		}), nil
	}

	cost := combat.SkillCost(def, h.StatusEffects, s.effects)
	if !h.SpendCredits(cost) {
		return nil, fail(msgInsufficientCredits,
			gameerr.InsufficientResource(cost, h.APICredits)), nil
	}

	result := combat.ResolveHeroAttack(h, target, st.Combat, def, s.items, s.effects, src)
	messages = append(messages, result.Messages...)

	if st.Combat.IsOver(room.Enemies) {
		xp, gold, defeated := st.Combat.VictoryRewards(room.Enemies)
		room.IsCleared = true
		st.Combat = nil
		messages = append(messages, "\n"+pick(victoryMessages, src))

		class, _ := s.heroClass(h)
		_, levelMessages := progress.AddExperience(h, class, xp, src)
		progress.AddGold(h, gold)
		messages = append(messages, levelMessages...)

		messages = append(messages, s.accrueScore(ctx, xp, defeated)...)
	} else {
		phase := combat.ResolveEnemyPhase(room.Enemies, h, st.Combat, s.items, s.effects, src, s.abilities)
		messages = append(messages, phase.Messages...)
		if phase.HeroDefeated {
			messages = append(messages, "\n"+pick(gameOverMessages, src))
			st.Touch()
			return nil, ToolResult{
				Narrative: strings.Join(messages, "\n"),
				CombatLog: result,
				State:     map[string]any{"game_over": true},
			}, nil
		}
	}

	st.Touch()
	return nil, ToolResult{
		Narrative: strings.Join(messages, "\n"),
		CombatLog: result,
		State: map[string]any{
			"uptime":        h.Uptime,
			"api_credits":   h.APICredits,
			"combat_active": st.IsInCombat(),
			"room_cleared":  room.IsCleared,
		},
	}, nil
}

// handleDefend spends the turn bracing: incoming damage is halved for the
// following enemy phase and survive-lethal armor can catch a killing blow.
func (s *Server) handleDefend(ctx context.Context, req *mcp.CallToolRequest, input DefendInput) (*mcp.CallToolResult, ToolResult, error) {
	st, ok := s.state()
	if !ok {
		return nil, fail(msgNoGame, gameerr.NoActiveSession()), nil
	}
	if !st.IsInCombat() {
		return nil, fail(msgNotInCombat, gameerr.NotInCombat()), nil
	}
	room, ok := st.CurrentRoom()
	if !ok {
		return nil, fail(msgNoGame, gameerr.NoActiveSession()), nil
	}
	h := st.Hero

	messages := []string{"🛡️ You take a defensive stance, bracing for incoming attacks!"}

	phase := combat.ResolveDefend(room.Enemies, h, st.Combat, s.items, s.effects, s.roller.Source(), s.abilities)
	messages = append(messages, phase.Messages...)
	st.Touch()

	if phase.HeroDefeated {
		messages = append(messages, "\n"+pick(gameOverMessages, s.roller.Source()))
		return nil, narrateState(strings.Join(messages, "\n"), map[string]any{"game_over": true}), nil
	}

	return nil, narrateState(strings.Join(messages, "\n"), map[string]any{
		"uptime":        h.Uptime,
		"combat_active": true,
	}), nil
}

// handleFlee attempts graceful degradation. Success deactivates combat and
// leaves the hero in the room; failure gives every living enemy one free
// attack with no defensive discount and no vest rescue.
func (s *Server) handleFlee(ctx context.Context, req *mcp.CallToolRequest, input FleeInput) (*mcp.CallToolResult, ToolResult, error) {
	st, ok := s.state()
	if !ok {
		return nil, fail(msgNoGame, gameerr.NoActiveSession()), nil
	}
	if !st.IsInCombat() {
		return nil, fail(msgNotInCombat, gameerr.NotInCombat()), nil
	}
	room, ok := st.CurrentRoom()
	if !ok {
		return nil, fail(msgNoGame, gameerr.NoActiveSession()), nil
	}
	h := st.Hero
	src := s.roller.Source()

	if combat.AttemptFlee(h, st.Combat, src) {
		st.Touch()
		return nil, narrateState(
			"💨 Graceful degradation successful! You've escaped combat!",
			map[string]any{"combat_active": false}), nil
	}

	messages := []string{"❌ Escape failed! The enemies block your retreat!"}
	for _, e := range room.AliveEnemies() {
		atk := combat.ResolveEnemyAttack(e, h, st.Combat, s.items, s.effects, src)
		messages = append(messages, atk.Messages...)
		if atk.HeroDefeated {
			messages = append(messages, "\n"+pick(gameOverMessages, src))
			st.Touch()
			return nil, narrateState(strings.Join(messages, "\n"), map[string]any{"game_over": true}), nil
		}
	}

	st.Touch()
	return nil, narrateState(strings.Join(messages, "\n"), map[string]any{
		"uptime":        h.Uptime,
		"combat_active": true,
	}), nil
}

// resolveSkill maps a requested skill id to its definition. Empty falls
// back to the built-in basic attack; unknown ids are invalid targets.
func (s *Server) resolveSkill(id string) (*skill.SkillDef, error) {
	if id == "" {
		id = skill.BasicAttackID
	}
	def, ok := s.classes.Skill(id)
	if !ok {
		return nil, gameerr.Newf(gameerr.CodeInvalidTarget, "skill %q not found", id).
			WithMeta("skill", id)
	}
	return def, nil
}

// accrueScore pushes a victory's experience into the authenticated
// player's scores: the in-session run total, the durable postgres counters,
// and the redis mirror. Storage failures are logged and swallowed; a score
// hiccup never fails the fight that earned it.
func (s *Server) accrueScore(ctx context.Context, xp, defeated int) []string {
	if !s.cfg.Game.Multiplayer {
		return nil
	}
	ps, ok := s.authenticated()
	if !ok {
		return nil
	}

	ps.RunScore += xp
	if err := s.players.AddScore(ctx, ps.Email, int64(xp)); err != nil {
		s.logger.Warn("recording score failed",
			zap.String("email", ps.Email),
			zap.Error(err),
		)
	}
	if err := s.players.IncrementEnemiesDefeated(ctx, ps.Email, int64(defeated)); err != nil {
		s.logger.Warn("recording defeats failed",
			zap.String("email", ps.Email),
			zap.Error(err),
		)
	}
	if s.board != nil {
		if _, err := s.board.AddScore(ctx, ps.Email, int64(xp)); err != nil {
			s.logger.Warn("mirroring score to leaderboard failed",
				zap.String("email", ps.Email),
				zap.Error(err),
			)
		}
	}

	return []string{fmt.Sprintf("\n🏆 **+%d points!** (Run total: %s)", xp, commas(int64(ps.RunScore)))}
}

