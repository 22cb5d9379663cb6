package gameserver

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/integration-quest/internal/game/combat"
	"github.com/cory-johannsen/integration-quest/internal/game/dungeon"
	"github.com/cory-johannsen/integration-quest/internal/game/enemy"
	"github.com/cory-johannsen/integration-quest/internal/game/session"
	"github.com/cory-johannsen/integration-quest/internal/gameerr"
)

// roomNorthOf resolves the room behind the given room's north exit.
func roomNorthOf(t *testing.T, st *session.GameState, room *dungeon.Room) *dungeon.Room {
	t.Helper()
	id, ok := room.Exits[dungeon.North]
	require.True(t, ok)
	next, ok := st.DungeonMap.Get(id)
	require.True(t, ok)
	return next
}

// clearEnemies flattens every enemy in the room so movement is unblocked.
func clearEnemies(room *dungeon.Room) {
	for _, e := range room.Enemies {
		e.HP = 0
	}
}

func TestHandleExplore_NoGame(t *testing.T) {
	s := newTestServer(t, &fakeSource{})

	_, res, err := s.handleExplore(context.Background(), nil, ExploreInput{})
	require.NoError(t, err)
	require.NotNil(t, res.Error)
	assert.Equal(t, gameerr.CodeNoActiveSession, res.Error.Code)
}

func TestHandleExplore_Entrance(t *testing.T) {
	s := newTestServer(t, &fakeSource{})
	createHero(t, s)

	_, res, err := s.handleExplore(context.Background(), nil, ExploreInput{})
	require.NoError(t, err)
	require.Nil(t, res.Error)

	assert.Contains(t, res.Narrative, "🏛️ **INTEGRATION HUB ENTRANCE**")
	assert.Contains(t, res.Narrative, "📍 **Exits**: [NORTH]")
	// Zeroed dice fill both entrance loot slots with the first weapon drop.
	assert.Contains(t, res.Narrative, "📦 **Items**: HTTP Client (common), HTTP Client (common)")
	assert.Contains(t, res.Narrative, "✅ Room cleared.")
	assert.Equal(t, dungeon.RoomCorridor, res.State["room_type"])
	assert.Equal(t, false, res.State["has_enemies"])
	assert.Equal(t, true, res.State["has_items"])
	assert.Equal(t, []string{dungeon.North}, res.State["exits"])
}

func TestHandleMove_IntoEnemyRoom(t *testing.T) {
	s := newTestServer(t, &fakeSource{})
	st := createHero(t, s)
	entrance, _ := st.CurrentRoom()
	next := roomNorthOf(t, st, entrance)

	_, res, err := s.handleMove(context.Background(), nil, MoveInput{Direction: "north"})
	require.NoError(t, err)
	require.Nil(t, res.Error)

	assert.Contains(t, res.Narrative, "CORRIDOR SYSTEM")
	// Depth 1 scales the 10 HP template to 11.
	assert.Contains(t, res.Narrative, "👾 **Null Pointer** (11/11 HP)")
	assert.Contains(t, res.Narrative, "⚠️ Enemies block your path! You must fight or flee.")
	assert.Equal(t, true, res.State["has_enemies"])
	assert.Equal(t, next.ID, st.CurrentRoomID)
	assert.Equal(t, 1, st.TurnCount)
	assert.True(t, next.IsDiscovered)
}

func TestHandleMove_InvalidDirection(t *testing.T) {
	s := newTestServer(t, &fakeSource{})
	createHero(t, s)

	for _, dir := range []string{"up", "south"} {
		_, res, err := s.handleMove(context.Background(), nil, MoveInput{Direction: dir})
		require.NoError(t, err)
		require.NotNil(t, res.Error)
		assert.Equal(t, gameerr.CodeInvalidDirection, res.Error.Code)
		assert.Contains(t, res.Narrative, "Cannot move "+dir)
	}
}

func TestHandleMove_BlockedByEnemies(t *testing.T) {
	s := newTestServer(t, &fakeSource{})
	createHero(t, s)

	_, res, err := s.handleMove(context.Background(), nil, MoveInput{Direction: "north"})
	require.NoError(t, err)
	require.Nil(t, res.Error)

	_, res, err = s.handleMove(context.Background(), nil, MoveInput{Direction: "north"})
	require.NoError(t, err)
	require.NotNil(t, res.Error)
	assert.Equal(t, gameerr.CodeAlreadyBlocked, res.Error.Code)
	assert.Contains(t, res.Narrative, "Enemies block your path! Defeat them first")
}

func TestHandleMove_WhileInCombat(t *testing.T) {
	s := newTestServer(t, &fakeSource{})
	st := createHero(t, s)
	st.Combat = &combat.State{Active: true}

	_, res, err := s.handleMove(context.Background(), nil, MoveInput{Direction: "north"})
	require.NoError(t, err)
	require.NotNil(t, res.Error)
	assert.Equal(t, gameerr.CodeInCombat, res.Error.Code)
	assert.Contains(t, res.Narrative, "You cannot move while in combat")
}

func TestHandleMove_GeneratesNextLevel(t *testing.T) {
	s := newTestServer(t, &fakeSource{})
	st := createHero(t, s)
	entrance, _ := st.CurrentRoom()
	first := roomNorthOf(t, st, entrance)
	second := roomNorthOf(t, st, first)
	clearEnemies(first)
	clearEnemies(second)
	require.Equal(t, dungeon.GeneratedExit, second.Exits[dungeon.North])

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		_, res, err := s.handleMove(ctx, nil, MoveInput{Direction: "north"})
		require.NoError(t, err)
		require.Nil(t, res.Error)
	}
	require.Equal(t, second.ID, st.CurrentRoomID)

	_, res, err := s.handleMove(ctx, nil, MoveInput{Direction: "north"})
	require.NoError(t, err)
	require.Nil(t, res.Error)

	assert.Equal(t, 2, st.Depth)
	assert.Equal(t, 2, st.MaxDepthReached)
	assert.Len(t, st.DungeonMap, 5)
	// The lazy exit was rewired to the new level's entry room.
	entryID := second.Exits[dungeon.North]
	assert.NotEqual(t, dungeon.GeneratedExit, entryID)
	assert.Equal(t, entryID, st.CurrentRoomID)
	// Depth 2 scales the 10 HP template to 12.
	assert.Contains(t, res.Narrative, "👾 **Null Pointer** (12/12 HP)")
}

func TestHandleExamine_Enemy(t *testing.T) {
	s := newTestServer(t, &fakeSource{})
	createHero(t, s)
	_, res, err := s.handleMove(context.Background(), nil, MoveInput{Direction: "north"})
	require.NoError(t, err)
	require.Nil(t, res.Error)

	_, res, err = s.handleExamine(context.Background(), nil, ExamineInput{Target: "null"})
	require.NoError(t, err)
	require.Nil(t, res.Error)

	assert.Contains(t, res.Narrative, "🔍 **NULL POINTER**")
	assert.Contains(t, res.Narrative, "**HP**: 11/11")
	assert.Contains(t, res.Narrative, "**Damage**: 1d4")
	assert.Contains(t, res.Narrative, "**Armor**: 0")
	assert.Contains(t, res.Narrative, "No known weakness")
	assert.Contains(t, res.Narrative, "**XP Reward**: 10")
	assert.Contains(t, res.Narrative, "**Gold Reward**: 5")
	assert.Equal(t, 11, res.State["enemy_hp"])
}

func TestHandleExamine_ClearsImmunityAndRevealsWeakness(t *testing.T) {
	s := newTestServer(t, &fakeSource{})
	st := createHero(t, s)
	room, _ := st.CurrentRoom()

	tmpl := &enemy.Template{
		ID:                  "legacy_monolith",
		Name:                "Legacy Monolith",
		Description:         "Undocumented and angry.",
		MaxHP:               60,
		DamageDice:          "2d6",
		Armor:               3,
		Weakness:            "strangler pattern",
		ImmuneUntilExamined: true,
		XPReward:            120,
		GoldReward:          80,
		Tier:                enemy.TierBoss,
	}
	inst := enemy.NewInstance("boss-1", tmpl, 1)
	room.Enemies = append(room.Enemies, inst)
	room.IsCleared = false
	require.True(t, inst.IsImmune())

	_, res, err := s.handleExamine(context.Background(), nil, ExamineInput{Target: "monolith"})
	require.NoError(t, err)
	require.Nil(t, res.Error)

	assert.Contains(t, res.Narrative, "**Weakness**: strangler pattern")
	assert.Contains(t, res.Narrative, "This enemy was IMMUNE until examined!")
	assert.False(t, inst.IsImmune())
}

func TestHandleExamine_Item(t *testing.T) {
	s := newTestServer(t, &fakeSource{})
	createHero(t, s)

	_, res, err := s.handleExamine(context.Background(), nil, ExamineInput{Target: "http"})
	require.NoError(t, err)
	require.Nil(t, res.Error)

	assert.Contains(t, res.Narrative, "🔍 **HTTP Client**")
	assert.Contains(t, res.Narrative, "**Tier**: common")
	assert.Contains(t, res.Narrative, "**Type**: weapon")
	assert.Contains(t, res.Narrative, "Use 'pickup'")
}

func TestHandleExamine_UnknownTarget(t *testing.T) {
	s := newTestServer(t, &fakeSource{})
	createHero(t, s)

	_, res, err := s.handleExamine(context.Background(), nil, ExamineInput{Target: "xyzzy"})
	require.NoError(t, err)
	require.NotNil(t, res.Error)
	assert.Equal(t, gameerr.CodeInvalidTarget, res.Error.Code)
	assert.Contains(t, res.Narrative, "Target 'xyzzy' not found")
}

func TestHandleRest_RecoversMissingFractions(t *testing.T) {
	src := &fakeSource{floats: []float64{0.9}} // no ambush
	s := newTestServer(t, src)
	st := createHero(t, s)
	st.Hero.Uptime = 100
	st.Hero.APICredits = 30

	_, res, err := s.handleRest(context.Background(), nil, RestInput{})
	require.NoError(t, err)
	require.Nil(t, res.Error)

	// Half of 80 missing uptime, three quarters of 40 missing credits.
	assert.Contains(t, res.Narrative, "❤️ Uptime restored: +40 (140/180)")
	assert.Contains(t, res.Narrative, "💙 API Credits restored: +30 (60/70)")
	assert.NotContains(t, res.Narrative, "AMBUSH")
	assert.Equal(t, 140, res.State["uptime"])
	assert.Equal(t, 60, res.State["api_credits"])
}

func TestHandleRest_FullPoolsGainNothing(t *testing.T) {
	src := &fakeSource{floats: []float64{0.9}}
	s := newTestServer(t, src)
	createHero(t, s)

	_, res, err := s.handleRest(context.Background(), nil, RestInput{})
	require.NoError(t, err)
	require.Nil(t, res.Error)
	assert.Contains(t, res.Narrative, "❤️ Uptime restored: +0 (180/180)")
	assert.Contains(t, res.Narrative, "💙 API Credits restored: +0 (70/70)")
}

func TestHandleRest_Ambush(t *testing.T) {
	s := newTestServer(t, &fakeSource{}) // zeroed floats always ambush
	st := createHero(t, s)
	room, _ := st.CurrentRoom()
	require.True(t, room.IsCleared)

	_, res, err := s.handleRest(context.Background(), nil, RestInput{})
	require.NoError(t, err)
	require.Nil(t, res.Error)

	assert.Contains(t, res.Narrative, "⚠️ **AMBUSH!** A random encounter interrupts your rest!")
	assert.Contains(t, res.Narrative, "👹 Null Pointer appears!")
	assert.False(t, room.IsCleared)
	assert.True(t, room.HasAliveEnemies())
}

func TestHandleRest_WhileInCombat(t *testing.T) {
	s := newTestServer(t, &fakeSource{})
	st := createHero(t, s)
	st.Combat = &combat.State{Active: true}

	_, res, err := s.handleRest(context.Background(), nil, RestInput{})
	require.NoError(t, err)
	require.NotNil(t, res.Error)
	assert.Equal(t, gameerr.CodeInCombat, res.Error.Code)
	assert.Contains(t, res.Narrative, "You cannot rest during combat")
}
