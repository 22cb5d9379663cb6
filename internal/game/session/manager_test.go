package session_test

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/integration-quest/internal/game/session"
)

func TestManager_PutAndGetState(t *testing.T) {
	m := session.NewManager()
	st := session.NewGameState(newTestHero(), entranceRoom("room-1"))

	m.PutState(session.DefaultKey, st)

	got, ok := m.GetState(session.DefaultKey)
	require.True(t, ok)
	assert.Same(t, st, got)
	assert.Equal(t, 1, m.StateCount())

	_, ok = m.GetState("other")
	assert.False(t, ok)
}

func TestManager_PutStateReplaces(t *testing.T) {
	m := session.NewManager()
	first := session.NewGameState(newTestHero(), entranceRoom("room-1"))
	m.PutState(session.DefaultKey, first)

	fresh := session.NewGameState(newTestHero(), entranceRoom("room-2"))
	m.PutState(session.DefaultKey, fresh)

	got, ok := m.GetState(session.DefaultKey)
	require.True(t, ok)
	assert.Same(t, fresh, got, "a new adventure replaces the old one wholesale")
	assert.Equal(t, 1, m.StateCount())
}

func TestManager_RemoveState(t *testing.T) {
	m := session.NewManager()
	m.PutState(session.DefaultKey, session.NewGameState(newTestHero(), entranceRoom("room-1")))

	require.NoError(t, m.RemoveState(session.DefaultKey))
	assert.Zero(t, m.StateCount())

	err := m.RemoveState(session.DefaultKey)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no game state")
}

func TestManager_PlayerEnvelope(t *testing.T) {
	m := session.NewManager()

	_, ok := m.GetPlayer(session.DefaultKey)
	assert.False(t, ok)

	m.PutPlayer(session.DefaultKey, &session.PlayerSession{
		Email:         "pat@example.com",
		Username:      "pat_dev",
		Authenticated: true,
	})

	ps, ok := m.GetPlayer(session.DefaultKey)
	require.True(t, ok)
	assert.Equal(t, "pat_dev", ps.Username)
	assert.True(t, ps.Authenticated)
	assert.Zero(t, ps.RunScore)
	assert.Equal(t, 1, m.PlayerCount())
}

func TestManager_LogoutKeepsAdventure(t *testing.T) {
	m := session.NewManager()
	st := session.NewGameState(newTestHero(), entranceRoom("room-1"))
	m.PutState(session.DefaultKey, st)
	m.PutPlayer(session.DefaultKey, &session.PlayerSession{Email: "pat@example.com", Username: "pat_dev", Authenticated: true})

	require.NoError(t, m.RemovePlayer(session.DefaultKey))
	assert.Zero(t, m.PlayerCount())

	got, ok := m.GetState(session.DefaultKey)
	require.True(t, ok, "logging out must not abandon the adventure")
	assert.Same(t, st, got)
}

func TestManager_RemovePlayerNotFound(t *testing.T) {
	m := session.NewManager()
	err := m.RemovePlayer("nobody")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no player logged in")
}

func TestManager_SessionIsolation(t *testing.T) {
	m := session.NewManager()
	one := session.NewGameState(newTestHero(), entranceRoom("room-1"))
	two := session.NewGameState(newTestHero(), entranceRoom("room-2"))
	m.PutState("session-1", one)
	m.PutState("session-2", two)

	one.Hero.Gold = 500
	one.Hero.ApplyDamage(40)

	got, ok := m.GetState("session-2")
	require.True(t, ok)
	assert.Zero(t, got.Hero.Gold)
	assert.Equal(t, got.Hero.MaxUptime, got.Hero.Uptime)
}

func TestManager_ConcurrentStates(t *testing.T) {
	m := session.NewManager()
	const n = 100
	var wg sync.WaitGroup

	wg.Add(n)
	for i := 0; i < n; i++ {
		go func(i int) {
			defer wg.Done()
			key := fmt.Sprintf("s%d", i)
			m.PutState(key, session.NewGameState(newTestHero(), entranceRoom(fmt.Sprintf("room-%d", i))))
		}(i)
	}
	wg.Wait()
	assert.Equal(t, n, m.StateCount())

	wg.Add(n)
	for i := 0; i < n; i++ {
		go func(i int) {
			defer wg.Done()
			_ = m.RemoveState(fmt.Sprintf("s%d", i))
		}(i)
	}
	wg.Wait()
	assert.Zero(t, m.StateCount())
}

func TestPropertyManagerCountsStayConsistent(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		m := session.NewManager()
		model := map[string]bool{}
		keys := []string{"k1", "k2", "k3", "k4"}

		ops := rapid.IntRange(1, 40).Draw(t, "ops")
		for i := 0; i < ops; i++ {
			key := rapid.SampledFrom(keys).Draw(t, "key")
			if rapid.Bool().Draw(t, "put") {
				m.PutState(key, session.NewGameState(newTestHero(), entranceRoom("room-"+key)))
				model[key] = true
			} else {
				err := m.RemoveState(key)
				if model[key] {
					require.NoError(t, err)
				} else {
					require.Error(t, err)
				}
				delete(model, key)
			}
		}

		if m.StateCount() != len(model) {
			t.Fatalf("state count %d != model %d", m.StateCount(), len(model))
		}
		for _, key := range keys {
			_, ok := m.GetState(key)
			if ok != model[key] {
				t.Fatalf("key %q presence %v != model %v", key, ok, model[key])
			}
		}
	})
}
