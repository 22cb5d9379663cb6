package effect

import (
	"fmt"
	"strings"
)

// PermanentDuration marks an effect that never ticks down and never expires.
const PermanentDuration = -1

// Active is one status effect currently applied to a hero. It is the
// persisted form: the session snapshot serializes it as-is.
type Active struct {
	Name        string `json:"name"`
	Type        string `json:"effect_type"`
	Duration    int    `json:"duration"` // turns remaining; PermanentDuration never expires
	Description string `json:"description"`
}

// Set is the ordered list of active effects on one hero. At most one effect
// per type is active at a time; re-application refreshes the duration. It is
// not safe for concurrent use; the caller must serialise access.
type Set []Active

// DisplayName derives a human-readable effect name from its type tag:
// "auth_expired" becomes "Auth Expired".
func DisplayName(effectType string) string {
	words := strings.Split(effectType, "_")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// Apply adds a status effect, or refreshes an existing one of the same type
// to the longer of the two durations. PermanentDuration counts as infinite:
// a permanent effect is never shortened, and a permanent re-application
// upgrades a finite one.
//
// Postcondition: Has(effectType) is true; an existing effect's duration never
// decreases.
func (s *Set) Apply(effectType string, duration int, description string) {
	s.ApplyNamed(DisplayName(effectType), effectType, duration, description)
}

// ApplyNamed is Apply with an explicit display name, for effects whose name
// is not derived from their type (the diagnostic "God Mode" flag rides the
// transformed type). Refreshing an existing effect of the same type keeps
// its original name and description.
func (s *Set) ApplyNamed(name, effectType string, duration int, description string) {
	for i := range *s {
		e := &(*s)[i]
		if e.Type != effectType {
			continue
		}
		if e.Duration == PermanentDuration {
			return
		}
		if duration == PermanentDuration || duration > e.Duration {
			e.Duration = duration
		}
		return
	}
	*s = append(*s, Active{
		Name:        name,
		Type:        effectType,
		Duration:    duration,
		Description: description,
	})
}

// Remove deletes the effect with the given type from the set, regardless of
// remaining duration. Returns true if an effect was removed.
//
// Postcondition: Has(effectType) is false.
func (s *Set) Remove(effectType string) bool {
	for i := range *s {
		if (*s)[i].Type == effectType {
			*s = append((*s)[:i], (*s)[i+1:]...)
			return true
		}
	}
	return false
}

// Tick advances one turn: every non-permanent effect's remaining duration
// drops by 1, and effects reaching 0 are removed. Returns the display names
// of the effects that expired this tick, in application order.
//
// Postcondition: No remaining effect has Duration == 0; permanent effects
// are untouched.
func (s *Set) Tick() []string {
	var expired []string
	kept := (*s)[:0]
	for _, e := range *s {
		if e.Duration == PermanentDuration {
			kept = append(kept, e)
			continue
		}
		e.Duration--
		if e.Duration <= 0 {
			expired = append(expired, e.Name)
			continue
		}
		kept = append(kept, e)
	}
	*s = kept
	return expired
}

// RemoveNamed deletes the effect carrying the given display name, regardless
// of type. Returns true if an effect was removed.
func (s *Set) RemoveNamed(name string) bool {
	for i := range *s {
		if (*s)[i].Name == name {
			*s = append((*s)[:i], (*s)[i+1:]...)
			return true
		}
	}
	return false
}

// Has reports whether an effect with the given type is currently active.
func (s Set) Has(effectType string) bool {
	for _, e := range s {
		if e.Type == effectType {
			return true
		}
	}
	return false
}

// HasNamed reports whether an effect with the given display name is active.
func (s Set) HasNamed(name string) bool {
	for _, e := range s {
		if e.Name == name {
			return true
		}
	}
	return false
}

// Format renders the active effects for display: "Buffered (3 turns),
// God Mode (Permanent)", or "None" when the set is empty.
func (s Set) Format() string {
	if len(s) == 0 {
		return "None"
	}
	parts := make([]string, 0, len(s))
	for _, e := range s {
		durStr := "Permanent"
		if e.Duration > 0 {
			durStr = fmt.Sprintf("%d turns", e.Duration)
		}
		parts = append(parts, fmt.Sprintf("%s (%s)", e.Name, durStr))
	}
	return strings.Join(parts, ", ")
}
