package gameserver

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/cory-johannsen/integration-quest/internal/game/dice"
	"github.com/cory-johannsen/integration-quest/internal/game/dungeon"
	"github.com/cory-johannsen/integration-quest/internal/game/session"
	"github.com/cory-johannsen/integration-quest/internal/gameerr"
)

// newSavingServer builds a single-player Server backed by an in-memory save
// store.
func newSavingServer(t *testing.T, src *fakeSource) (*Server, *mockSaveStore) {
	t.Helper()
	items := testItems(t)
	gen, err := dungeon.NewGenerator(testEnemies(t), items, testFlavors(), src, dungeon.Config{RoomsPerLevel: 2})
	require.NoError(t, err)
	logger := zaptest.NewLogger(t)
	saves := &mockSaveStore{}
	s, err := New(
		testConfig(),
		logger,
		session.NewManager(),
		testClasses(t),
		items,
		testEffects(),
		testGear(),
		gen,
		dice.NewLoggedRoller(src, logger),
		nil, nil, saves, nil, nil,
	)
	require.NoError(t, err)
	return s, saves
}

func TestHandleSaveGame_NoGame(t *testing.T) {
	s, _ := newSavingServer(t, &fakeSource{})

	_, res, err := s.handleSaveGame(context.Background(), nil, SaveGameInput{})
	require.NoError(t, err)
	require.NotNil(t, res.Error)
	assert.Equal(t, gameerr.CodeNoActiveSession, res.Error.Code)
}

func TestHandleSaveGame_NilStore(t *testing.T) {
	s := newTestServer(t, &fakeSource{})
	createHero(t, s)

	_, res, err := s.handleSaveGame(context.Background(), nil, SaveGameInput{})
	require.NoError(t, err)
	require.NotNil(t, res.Error)
	assert.Equal(t, gameerr.CodeInternal, res.Error.Code)
	assert.Equal(t, msgSavesDisabled, res.Narrative)
}

func TestHandleSaveGame_SinglePlayer(t *testing.T) {
	s, saves := newSavingServer(t, &fakeSource{})
	st := createHero(t, s)

	_, res, err := s.handleSaveGame(context.Background(), nil, SaveGameInput{})
	require.NoError(t, err)
	require.Nil(t, res.Error)

	require.Len(t, saves.saves, 1)
	save := saves.saves[0]
	assert.Contains(t, res.Narrative, "💾 Game saved!")
	assert.Contains(t, res.Narrative, "**Save ID**: "+save.ID.String())
	assert.Equal(t, save.ID.String(), res.State["save_id"])
	assert.Equal(t, save.ID.String(), st.SaveID)
	assert.Equal(t, session.DefaultKey, save.SessionKey)
	assert.Empty(t, save.PlayerEmail)
	assert.Zero(t, save.RunScore)
}

func TestHandleSaveGame_StoreFailure(t *testing.T) {
	s, saves := newSavingServer(t, &fakeSource{})
	createHero(t, s)
	saves.createErr = assert.AnError

	_, res, err := s.handleSaveGame(context.Background(), nil, SaveGameInput{})
	require.NoError(t, err)
	require.NotNil(t, res.Error)
	assert.Contains(t, res.Narrative, "Save failed")
}

func TestHandleSaveGame_MultiplayerRequiresLogin(t *testing.T) {
	f := newMultiplayerServer(t, &fakeSource{})
	createHero(t, f.server)

	_, res, err := f.server.handleSaveGame(context.Background(), nil, SaveGameInput{})
	require.NoError(t, err)
	require.NotNil(t, res.Error)
	assert.Equal(t, gameerr.CodeNotLoggedIn, res.Error.Code)
	assert.Contains(t, res.Narrative, "Login required to save")
}

func TestHandleSaveGame_Cloud(t *testing.T) {
	ctx := context.Background()
	f := newMultiplayerServer(t, &fakeSource{})
	createHero(t, f.server)
	email := registerAndLogin(t, f)

	ps, ok := f.server.sessions.GetPlayer(session.DefaultKey)
	require.True(t, ok)
	ps.RunScore = 1250

	_, res, err := f.server.handleSaveGame(ctx, nil, SaveGameInput{})
	require.NoError(t, err)
	require.Nil(t, res.Error)

	assert.Contains(t, res.Narrative, "☁️ **Game saved to cloud!**")
	assert.Contains(t, res.Narrative, "Current run score: 1,250 points")
	assert.Equal(t, true, res.State["cloud_save"])

	require.Len(t, f.saves.saves, 1)
	save := f.saves.saves[0]
	assert.Equal(t, email, save.PlayerEmail)
	assert.Equal(t, int64(1250), save.RunScore)
}

func TestHandleLoadGame_NilStore(t *testing.T) {
	s := newTestServer(t, &fakeSource{})

	_, res, err := s.handleLoadGame(context.Background(), nil, LoadGameInput{})
	require.NoError(t, err)
	require.NotNil(t, res.Error)
	assert.Equal(t, msgSavesDisabled, res.Narrative)
}

func TestHandleLoadGame_ByID(t *testing.T) {
	ctx := context.Background()
	s, saves := newSavingServer(t, &fakeSource{})
	st := createHero(t, s)

	_, res, err := s.handleSaveGame(ctx, nil, SaveGameInput{})
	require.NoError(t, err)
	require.Nil(t, res.Error)
	saveID := saves.saves[0].ID.String()

	// Damage taken after the checkpoint is rolled back by the load.
	st.Hero.Uptime = 42

	_, res, err = s.handleLoadGame(ctx, nil, LoadGameInput{SaveID: saveID})
	require.NoError(t, err)
	require.Nil(t, res.Error)

	assert.Contains(t, res.Narrative, "📂 Game loaded!")
	assert.Contains(t, res.Narrative, "Welcome back, **Pat**!")
	assert.Contains(t, res.Narrative, "Level 1 Warrior")
	assert.Contains(t, res.Narrative, "Uptime: 180/180")
	assert.Equal(t, "Pat", res.State["hero_name"])
	assert.Equal(t, 1, res.State["depth"])

	restored, ok := s.state()
	require.True(t, ok)
	assert.Equal(t, 180, restored.Hero.Uptime)
	assert.Equal(t, saveID, restored.SaveID)
}

func TestHandleLoadGame_LatestWhenNoID(t *testing.T) {
	ctx := context.Background()
	s, _ := newSavingServer(t, &fakeSource{})
	st := createHero(t, s)

	_, res, err := s.handleSaveGame(ctx, nil, SaveGameInput{})
	require.NoError(t, err)
	require.Nil(t, res.Error)

	st.Hero.Uptime = 150
	_, res, err = s.handleSaveGame(ctx, nil, SaveGameInput{})
	require.NoError(t, err)
	require.Nil(t, res.Error)

	st.Hero.Uptime = 42
	_, res, err = s.handleLoadGame(ctx, nil, LoadGameInput{})
	require.NoError(t, err)
	require.Nil(t, res.Error)

	restored, ok := s.state()
	require.True(t, ok)
	assert.Equal(t, 150, restored.Hero.Uptime)
}

func TestHandleLoadGame_BadID(t *testing.T) {
	s, _ := newSavingServer(t, &fakeSource{})
	createHero(t, s)

	_, res, err := s.handleLoadGame(context.Background(), nil, LoadGameInput{SaveID: "not-a-uuid"})
	require.NoError(t, err)
	require.NotNil(t, res.Error)
	assert.Equal(t, gameerr.CodeInvalidTarget, res.Error.Code)
	assert.Contains(t, res.Narrative, "❌ Save file 'not-a-uuid' not found!")
}

func TestHandleLoadGame_MissingID(t *testing.T) {
	s, _ := newSavingServer(t, &fakeSource{})
	createHero(t, s)
	id := uuid.New().String()

	_, res, err := s.handleLoadGame(context.Background(), nil, LoadGameInput{SaveID: id})
	require.NoError(t, err)
	require.NotNil(t, res.Error)
	assert.Equal(t, gameerr.CodeInvalidTarget, res.Error.Code)
	assert.Contains(t, res.Narrative, "Save file '"+id+"' not found!")
}

func TestHandleLoadGame_NoSaves(t *testing.T) {
	s, _ := newSavingServer(t, &fakeSource{})
	createHero(t, s)

	_, res, err := s.handleLoadGame(context.Background(), nil, LoadGameInput{})
	require.NoError(t, err)
	require.NotNil(t, res.Error)
	assert.Contains(t, res.Narrative, "❌ No saved game found!")
}

func TestHandleLoadGame_CorruptSnapshot(t *testing.T) {
	ctx := context.Background()
	s, saves := newSavingServer(t, &fakeSource{})
	st := createHero(t, s)
	_, err := saves.Create(ctx, session.DefaultKey, "", []byte("junk"), 0)
	require.NoError(t, err)

	_, res, err := s.handleLoadGame(ctx, nil, LoadGameInput{})
	require.NoError(t, err)
	require.NotNil(t, res.Error)
	assert.Contains(t, res.Narrative, "Failed to load save")

	// The running session is untouched by a failed load.
	current, ok := s.state()
	require.True(t, ok)
	assert.Same(t, st, current)
}

func TestHandleLoadGame_CloudRequiresLogin(t *testing.T) {
	f := newMultiplayerServer(t, &fakeSource{})

	_, res, err := f.server.handleLoadGame(context.Background(), nil, LoadGameInput{})
	require.NoError(t, err)
	require.NotNil(t, res.Error)
	assert.Equal(t, gameerr.CodeNotLoggedIn, res.Error.Code)
	assert.Contains(t, res.Narrative, "Login required to load")
}

func TestHandleLoadGame_CloudNoSave(t *testing.T) {
	f := newMultiplayerServer(t, &fakeSource{})
	registerAndLogin(t, f)

	_, res, err := f.server.handleLoadGame(context.Background(), nil, LoadGameInput{})
	require.NoError(t, err)
	require.NotNil(t, res.Error)
	assert.Equal(t, gameerr.CodeInvalidTarget, res.Error.Code)
	assert.Contains(t, res.Narrative, "❌ No cloud save found.")
}

func TestHandleLoadGame_CloudRestoresRunScore(t *testing.T) {
	ctx := context.Background()
	f := newMultiplayerServer(t, &fakeSource{})
	st := createHero(t, f.server)
	registerAndLogin(t, f)

	ps, ok := f.server.sessions.GetPlayer(session.DefaultKey)
	require.True(t, ok)
	ps.RunScore = 777

	_, res, err := f.server.handleSaveGame(ctx, nil, SaveGameInput{})
	require.NoError(t, err)
	require.Nil(t, res.Error)

	// A new run resets the score; loading the cloud save brings it back.
	ps.RunScore = 0
	st.Hero.Uptime = 10

	_, res, err = f.server.handleLoadGame(ctx, nil, LoadGameInput{})
	require.NoError(t, err)
	require.Nil(t, res.Error)

	assert.Contains(t, res.Narrative, "☁️ **Cloud save loaded!**")
	assert.Contains(t, res.Narrative, "Welcome back, **Pat**!")
	assert.Contains(t, res.Narrative, "Current run score: 777 points")
	assert.Equal(t, true, res.State["cloud_save"])
	assert.Equal(t, 777, ps.RunScore)

	restored, ok := f.server.state()
	require.True(t, ok)
	assert.Equal(t, 180, restored.Hero.Uptime)
}
