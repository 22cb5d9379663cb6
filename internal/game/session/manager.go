package session

import (
	"fmt"
	"sync"
)

// DefaultKey is the session key used by single-player stdio transports,
// where one server process hosts exactly one adventure.
const DefaultKey = "default"

// PlayerSession is the in-memory login envelope behind a game session.
// The persistent profile lives in the player store; this only tracks
// who is logged in right now and what they have scored since.
type PlayerSession struct {
	// Email is the account identity, lowercased.
	Email string
	// Username is the display name shown on the leaderboard.
	Username string
	// Authenticated reports whether the token check passed.
	Authenticated bool
	// RunScore accumulates points earned since login or since the last
	// cloud save submitted them.
	RunScore int
}

// Manager maps session keys to live game states and login envelopes.
// The registry itself is safe for concurrent use; the states it hands
// out are not locked, because each session's state is owned by the
// sequence of actions that session issues.
type Manager struct {
	mu      sync.RWMutex
	states  map[string]*GameState
	players map[string]*PlayerSession
}

// NewManager creates an empty session Manager.
func NewManager() *Manager {
	return &Manager{
		states:  make(map[string]*GameState),
		players: make(map[string]*PlayerSession),
	}
}

// GetState returns the game state for the given session key.
//
// Postcondition: Returns (state, true) if found, or (nil, false) otherwise.
func (m *Manager) GetState(key string) (*GameState, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	st, ok := m.states[key]
	return st, ok
}

// PutState installs or replaces the game state for a session key.
// Character creation replaces any previous adventure wholesale.
//
// Precondition: key must be non-empty; st must be non-nil.
func (m *Manager) PutState(key string, st *GameState) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.states[key] = st
}

// RemoveState drops a session's game state.
//
// Postcondition: Returns an error if the key held no state.
func (m *Manager) RemoveState(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.states[key]; !exists {
		return fmt.Errorf("session %q has no game state", key)
	}
	delete(m.states, key)
	return nil
}

// StateCount returns the number of live game states.
func (m *Manager) StateCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.states)
}

// GetPlayer returns the login envelope for the given session key.
//
// Postcondition: Returns (session, true) if found, or (nil, false) otherwise.
func (m *Manager) GetPlayer(key string) (*PlayerSession, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ps, ok := m.players[key]
	return ps, ok
}

// PutPlayer installs or replaces the login envelope for a session key.
// Logging in over an existing login simply switches accounts.
//
// Precondition: key must be non-empty; ps must be non-nil.
func (m *Manager) PutPlayer(key string, ps *PlayerSession) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.players[key] = ps
}

// RemovePlayer drops a session's login envelope. The game state, if
// any, stays; logging out does not abandon the adventure.
//
// Postcondition: Returns an error if the key held no login.
func (m *Manager) RemovePlayer(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.players[key]; !exists {
		return fmt.Errorf("session %q has no player logged in", key)
	}
	delete(m.players, key)
	return nil
}

// PlayerCount returns the number of logged-in players.
func (m *Manager) PlayerCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.players)
}
