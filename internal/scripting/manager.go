package scripting

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/cory-johannsen/integration-quest/internal/game/dice"
)

// AbilityHook is the global function every ability script must define. It
// receives (boss, hero) view tables and acts through the engine.* modules.
const AbilityHook = "boss_turn"

// BossView is a read-only snapshot of the acting boss passed to Lua.
type BossView struct {
	ID    string
	Name  string
	HP    int
	MaxHP int
	Armor int
}

// HeroView is a read-only snapshot of the hero passed to Lua.
type HeroView struct {
	Name       string
	Level      int
	Uptime     int
	MaxUptime  int
	APICredits int
	Effects    []string
}

// Inflict is one status effect a script asked to place on the hero.
type Inflict struct {
	EffectType string
	Turns      int
}

// AbilityOutcome is everything a script chose to do during its turn. The
// combat engine applies it; scripts never mutate game state directly.
// Performed is false when the script was missing, defined no hook, or
// failed at runtime, in which case every other field is zero and the boss
// falls back to its basic attack.
type AbilityOutcome struct {
	Performed  bool
	BossHeal   int
	HeroDamage int
	Inflicts   []Inflict
	Lines      []string
}

// outcomeSlot is the per-VM binding point for the outcome under
// construction. Module closures write through it during a hook call.
type outcomeSlot struct {
	out *AbilityOutcome
}

type vmEntry struct {
	L    *lua.LState
	slot *outcomeSlot
}

// Manager owns one sandboxed LState per ability script and dispatches boss
// turns into them. Calls are serialized: each LState is single-threaded and
// ability turns are rare, so one lock covers the lot.
type Manager struct {
	mu     sync.Mutex
	vms    map[string]*vmEntry
	limit  int
	roller *dice.Roller
	logger *zap.Logger
}

// NewManager creates a Manager. Every script load and hook call runs under
// an instruction budget of instLimit opcodes (0 uses the default).
//
// Precondition: roller and logger must be non-nil.
func NewManager(roller *dice.Roller, logger *zap.Logger, instLimit int) *Manager {
	if roller == nil {
		panic("scripting: roller must not be nil")
	}
	if logger == nil {
		panic("scripting: logger must not be nil")
	}
	if instLimit <= 0 {
		instLimit = DefaultInstructionLimit
	}
	return &Manager{
		vms:    make(map[string]*vmEntry),
		limit:  instLimit,
		roller: roller,
		logger: logger,
	}
}

// LoadDir compiles every *.lua file in dir into its own sandboxed VM, keyed
// by the file's base name without the extension, in lexicographic order.
// Reloading a key replaces and closes the previous VM.
//
// Precondition: dir must be a readable directory.
// Postcondition: Returns the first load error; scripts loaded before the
// failure stay registered.
func (m *Manager) LoadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("scripting: reading script dir %q: %w", dir, err)
	}

	var names []string
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".lua" {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	for _, name := range names {
		key := strings.TrimSuffix(name, ".lua")
		if err := m.loadScript(key, filepath.Join(dir, name)); err != nil {
			return err
		}
	}
	return nil
}

// loadScript builds a fresh sandboxed VM for one script file and publishes
// it under key once its top level has executed cleanly.
func (m *Manager) loadScript(key, path string) error {
	L := NewSandboxedState(m.limit)
	slot := &outcomeSlot{}
	m.registerModules(L, key, slot)

	if err := L.DoFile(path); err != nil {
		L.Close()
		return fmt.Errorf("scripting: loading %q: %w", path, err)
	}

	m.mu.Lock()
	if old, ok := m.vms[key]; ok {
		old.L.Close()
	}
	m.vms[key] = &vmEntry{L: L, slot: slot}
	m.mu.Unlock()
	return nil
}

// Has reports whether a script is loaded under the given key.
func (m *Manager) Has(script string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.vms[script]
	return ok
}

// Scripts returns the loaded script keys in sorted order.
func (m *Manager) Scripts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	keys := make([]string, 0, len(m.vms))
	for k := range m.vms {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// CallAbility runs one scripted boss turn under a fresh instruction budget
// and returns what the script chose to do. A missing script, a script
// without the hook, and a runtime failure all come back as a zero outcome
// with Performed false; runtime failures additionally discard any actions
// the script took before dying, so a half-executed ability never leaks
// into combat.
//
// Postcondition: Returns a non-nil outcome; never panics on script errors.
func (m *Manager) CallAbility(script string, boss BossView, hero HeroView) *AbilityOutcome {
	out := &AbilityOutcome{}

	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.vms[script]
	if !ok {
		m.logger.Info("no ability script loaded",
			zap.String("script", script),
		)
		return out
	}

	L := entry.L
	fn := L.GetGlobal(AbilityHook)
	if fn == lua.LNil {
		m.logger.Warn("ability script defines no hook",
			zap.String("script", script),
			zap.String("hook", AbilityHook),
		)
		return out
	}

	entry.slot.out = out
	release := ResetBudget(L, m.limit)
	err := L.CallByParam(lua.P{
		Fn:      fn,
		NRet:    0,
		Protect: true,
	}, bossTable(L, boss), heroTable(L, hero))
	release()
	entry.slot.out = nil

	if err != nil {
		m.logger.Warn("ability script failed",
			zap.String("script", script),
			zap.Error(err),
		)
		return &AbilityOutcome{}
	}

	out.Performed = true
	return out
}

// Close releases every loaded VM. The Manager is empty but reusable after.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for key, entry := range m.vms {
		entry.L.Close()
		delete(m.vms, key)
	}
}

// bossTable converts a BossView into a Lua table.
func bossTable(L *lua.LState, b BossView) *lua.LTable {
	t := L.NewTable()
	L.SetField(t, "id", lua.LString(b.ID))
	L.SetField(t, "name", lua.LString(b.Name))
	L.SetField(t, "hp", lua.LNumber(b.HP))
	L.SetField(t, "max_hp", lua.LNumber(b.MaxHP))
	L.SetField(t, "armor", lua.LNumber(b.Armor))
	return t
}

// heroTable converts a HeroView into a Lua table.
func heroTable(L *lua.LState, h HeroView) *lua.LTable {
	t := L.NewTable()
	L.SetField(t, "name", lua.LString(h.Name))
	L.SetField(t, "level", lua.LNumber(h.Level))
	L.SetField(t, "uptime", lua.LNumber(h.Uptime))
	L.SetField(t, "max_uptime", lua.LNumber(h.MaxUptime))
	L.SetField(t, "api_credits", lua.LNumber(h.APICredits))
	effects := L.NewTable()
	for _, e := range h.Effects {
		effects.Append(lua.LString(e))
	}
	L.SetField(t, "effects", effects)
	return t
}
