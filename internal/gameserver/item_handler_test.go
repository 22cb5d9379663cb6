package gameserver

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/integration-quest/internal/gameerr"
)

func TestHandleUseItem_NoGame(t *testing.T) {
	s := newTestServer(t, &fakeSource{})

	_, res, err := s.handleUseItem(context.Background(), nil, UseItemInput{Item: "potion"})
	require.NoError(t, err)
	require.NotNil(t, res.Error)
	assert.Equal(t, gameerr.CodeNoActiveSession, res.Error.Code)
}

func TestHandleUseItem_HealUptime(t *testing.T) {
	s := newTestServer(t, &fakeSource{})
	st := createHero(t, s)
	st.Hero.Uptime = 100

	_, res, err := s.handleUseItem(context.Background(), nil, UseItemInput{Item: "retry"})
	require.NoError(t, err)
	require.Nil(t, res.Error)

	assert.Contains(t, res.Narrative, "🧪 You use Job Retry Potion!")
	assert.Contains(t, res.Narrative, "❤️ Restored 30 Uptime! (130/180)")
	assert.Equal(t, 130, res.State["uptime"])
	// One unit of the starting stack is spent.
	assert.Equal(t, 1, st.Hero.Inventory[0].Quantity)
}

func TestHandleUseItem_HealClampsAtMax(t *testing.T) {
	s := newTestServer(t, &fakeSource{})
	st := createHero(t, s)
	st.Hero.Uptime = 170

	_, res, err := s.handleUseItem(context.Background(), nil, UseItemInput{Item: "retry"})
	require.NoError(t, err)
	require.Nil(t, res.Error)
	assert.Contains(t, res.Narrative, "❤️ Restored 10 Uptime! (180/180)")
}

func TestHandleUseItem_RestoreCredits(t *testing.T) {
	s := newTestServer(t, &fakeSource{})
	st := createHero(t, s)
	st.Hero.APICredits = 30
	require.True(t, st.Hero.Inventory.Add("api_credit_refill", 1, 8))

	_, res, err := s.handleUseItem(context.Background(), nil, UseItemInput{Item: "refill"})
	require.NoError(t, err)
	require.Nil(t, res.Error)
	assert.Contains(t, res.Narrative, "🧪 You use API Credit Refill!")
	assert.Contains(t, res.Narrative, "💙 Restored 25 API Credits! (55/70)")
	assert.Equal(t, 55, res.State["api_credits"])
}

func TestHandleUseItem_CureStatus(t *testing.T) {
	s := newTestServer(t, &fakeSource{})
	st := createHero(t, s)
	st.Hero.StatusEffects.Apply("rate_limited", 2, "Too many requests.")
	require.True(t, st.Hero.Inventory.Add("cache_invalidator", 1, 8))

	_, res, err := s.handleUseItem(context.Background(), nil, UseItemInput{Item: "invalidator"})
	require.NoError(t, err)
	require.Nil(t, res.Error)
	assert.Contains(t, res.Narrative, "✨ Rate Limited cured!")
	assert.False(t, st.Hero.StatusEffects.Has("rate_limited"))
}

func TestHandleUseItem_Buff(t *testing.T) {
	s := newTestServer(t, &fakeSource{})
	st := createHero(t, s)
	require.True(t, st.Hero.Inventory.Add("buffer_brew", 1, 8))

	_, res, err := s.handleUseItem(context.Background(), nil, UseItemInput{Item: "brew"})
	require.NoError(t, err)
	require.Nil(t, res.Error)
	assert.Contains(t, res.Narrative, "✨ Buffered active! (3 turns)")
	assert.True(t, st.Hero.StatusEffects.Has("buffered"))
}

func TestHandleUseItem_EscapeRope(t *testing.T) {
	s := newTestServer(t, &fakeSource{})
	st, _ := enterFirstEnemyRoom(t, s)
	require.True(t, st.Hero.Inventory.Add("graceful_degradation_rope", 2, 8))
	ctx := context.Background()

	_, res, err := s.handleAttack(ctx, nil, AttackInput{})
	require.NoError(t, err)
	require.Nil(t, res.Error)
	require.True(t, st.IsInCombat())

	_, res, err = s.handleUseItem(ctx, nil, UseItemInput{Item: "rope"})
	require.NoError(t, err)
	require.Nil(t, res.Error)
	assert.Contains(t, res.Narrative, "💨 Graceful degradation successful!")
	assert.False(t, st.IsInCombat())

	// Outside combat the unit is still spent with nothing to escape.
	_, res, err = s.handleUseItem(ctx, nil, UseItemInput{Item: "rope"})
	require.NoError(t, err)
	require.Nil(t, res.Error)
	assert.Contains(t, res.Narrative, "🧪 You use Graceful Degradation Rope!")
	assert.NotContains(t, res.Narrative, "escaped combat")

	_, res, err = s.handleUseItem(ctx, nil, UseItemInput{Item: "rope"})
	require.NoError(t, err)
	require.NotNil(t, res.Error)
	assert.Equal(t, gameerr.CodeItemNotFound, res.Error.Code)
}

func TestHandleUseItem_FragmentSetGrantsUptimeBonus(t *testing.T) {
	s := newTestServer(t, &fakeSource{})
	st := createHero(t, s)
	require.True(t, st.Hero.Inventory.Add("recipe_fragment", 3, 8))
	ctx := context.Background()

	_, res, err := s.handleUseItem(ctx, nil, UseItemInput{Item: "fragment"})
	require.NoError(t, err)
	require.Nil(t, res.Error)
	assert.Contains(t, res.Narrative, "✨ Recipe Fragment collected! (1 total)")
	assert.Contains(t, res.Narrative, "Collect 2 more for +5 max Uptime bonus")

	_, res, err = s.handleUseItem(ctx, nil, UseItemInput{Item: "fragment"})
	require.NoError(t, err)
	require.Nil(t, res.Error)

	_, res, err = s.handleUseItem(ctx, nil, UseItemInput{Item: "fragment"})
	require.NoError(t, err)
	require.Nil(t, res.Error)
	assert.Contains(t, res.Narrative, "🎉 3 fragments combined! Max Uptime +5 (180 → 185)")
	assert.Equal(t, 3, st.Hero.RecipeFragments)
	assert.Equal(t, 185, st.Hero.MaxUptime)
}

func TestHandleUseItem_NotFound(t *testing.T) {
	s := newTestServer(t, &fakeSource{})
	createHero(t, s)

	_, res, err := s.handleUseItem(context.Background(), nil, UseItemInput{Item: "xyzzy"})
	require.NoError(t, err)
	require.NotNil(t, res.Error)
	assert.Equal(t, gameerr.CodeItemNotFound, res.Error.Code)
	assert.Contains(t, res.Narrative, "'xyzzy' not found in inventory")
}

func TestHandleUseItem_OnlyConsumablesMatch(t *testing.T) {
	s := newTestServer(t, &fakeSource{})
	st := createHero(t, s)
	require.True(t, st.Hero.Inventory.Add("salesforce_connector", 1, 8))

	_, res, err := s.handleUseItem(context.Background(), nil, UseItemInput{Item: "salesforce"})
	require.NoError(t, err)
	require.NotNil(t, res.Error)
	assert.Equal(t, gameerr.CodeItemNotFound, res.Error.Code)
}

func TestHandlePickup(t *testing.T) {
	s := newTestServer(t, &fakeSource{})
	st := createHero(t, s)
	room, _ := st.CurrentRoom()
	require.Len(t, room.Items, 2)

	_, res, err := s.handlePickup(context.Background(), nil, PickupInput{Item: "http"})
	require.NoError(t, err)
	require.Nil(t, res.Error)

	assert.Contains(t, res.Narrative, "✅ Picked up **HTTP Client**! Added to inventory.")
	assert.Equal(t, 2, res.State["inventory_count"])
	assert.Len(t, room.Items, 1)
}

func TestHandlePickup_NotFound(t *testing.T) {
	s := newTestServer(t, &fakeSource{})
	createHero(t, s)

	_, res, err := s.handlePickup(context.Background(), nil, PickupInput{Item: "grail"})
	require.NoError(t, err)
	require.NotNil(t, res.Error)
	assert.Equal(t, gameerr.CodeItemNotFound, res.Error.Code)
}

func TestHandlePickup_InventoryFull(t *testing.T) {
	s := newTestServer(t, &fakeSource{})
	st := createHero(t, s)
	for _, id := range []string{
		"salesforce_connector", "basic_logging", "firewall_vest", "try_catch_vest",
		"api_credit_refill", "cache_invalidator", "buffer_brew",
	} {
		require.True(t, st.Hero.Inventory.Add(id, 1, 8))
	}
	require.Len(t, st.Hero.Inventory, 8)

	_, res, err := s.handlePickup(context.Background(), nil, PickupInput{Item: "http"})
	require.NoError(t, err)
	require.NotNil(t, res.Error)
	assert.Equal(t, gameerr.CodeInventoryFull, res.Error.Code)
	assert.Equal(t, msgInventoryFull, res.Narrative)

	room, _ := st.CurrentRoom()
	assert.Len(t, room.Items, 2)
}

func TestHandleEquip_WeaponSwap(t *testing.T) {
	s := newTestServer(t, &fakeSource{})
	st := createHero(t, s)
	require.True(t, st.Hero.Inventory.Add("salesforce_connector", 1, 8))

	_, res, err := s.handleEquip(context.Background(), nil, EquipInput{Item: "salesforce"})
	require.NoError(t, err)
	require.Nil(t, res.Error)

	assert.Contains(t, res.Narrative, "⚔️ Equipped **Salesforce Connector** (2d6)!")
	assert.Contains(t, res.Narrative, "(Unequipped HTTP Client)")
	assert.Equal(t, "salesforce_connector", st.Hero.Equipped.WeaponID)
	assert.Equal(t, "Salesforce Connector", res.State["weapon"])
	assert.Equal(t, "Basic Logging", res.State["armor"])
}

func TestHandleEquip_Armor(t *testing.T) {
	s := newTestServer(t, &fakeSource{})
	st := createHero(t, s)
	require.True(t, st.Hero.Inventory.Add("firewall_vest", 1, 8))

	_, res, err := s.handleEquip(context.Background(), nil, EquipInput{Item: "firewall"})
	require.NoError(t, err)
	require.Nil(t, res.Error)

	assert.Contains(t, res.Narrative, "🛡️ Equipped **Firewall Vest** (+5 protection)!")
	assert.Contains(t, res.Narrative, "(Unequipped Basic Logging)")
	assert.Equal(t, "firewall_vest", st.Hero.Equipped.ArmorID)
}

func TestHandleEquip_ConsumableRejected(t *testing.T) {
	s := newTestServer(t, &fakeSource{})
	createHero(t, s)

	_, res, err := s.handleEquip(context.Background(), nil, EquipInput{Item: "retry"})
	require.NoError(t, err)
	require.NotNil(t, res.Error)
	assert.Equal(t, gameerr.CodeInvalidTarget, res.Error.Code)
	assert.Contains(t, res.Narrative, "cannot be equipped")
}

func TestHandleEquip_NotFound(t *testing.T) {
	s := newTestServer(t, &fakeSource{})
	createHero(t, s)

	_, res, err := s.handleEquip(context.Background(), nil, EquipInput{Item: "excalibur"})
	require.NoError(t, err)
	require.NotNil(t, res.Error)
	assert.Equal(t, gameerr.CodeItemNotFound, res.Error.Code)
}
