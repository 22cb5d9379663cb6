// Package gameerr defines the recoverable game-error taxonomy. Every failure
// a player can cause is reported as a structured value through the tool layer,
// never as a transport or process error.
package gameerr

import (
	"errors"
	"fmt"
)

// Code identifies one recoverable failure kind.
type Code string

const (
	// CodeNoActiveSession - an action requires an initialized hero/game state.
	CodeNoActiveSession Code = "NO_ACTIVE_SESSION"
	// CodeInvalidTarget - a named enemy or item does not match anything in scope.
	CodeInvalidTarget Code = "INVALID_TARGET"
	// CodeNotInCombat - an action requires an active combat state.
	CodeNotInCombat Code = "NOT_IN_COMBAT"
	// CodeAlreadyBlocked - living enemies block the attempted movement.
	CodeAlreadyBlocked Code = "ALREADY_BLOCKED"
	// CodeInCombat - an action is forbidden during combat.
	CodeInCombat Code = "IN_COMBAT"
	// CodeInsufficientResource - a skill cost exceeds the hero's current pool.
	CodeInsufficientResource Code = "INSUFFICIENT_RESOURCE"
	// CodeInventoryFull - pickup attempted at capacity.
	CodeInventoryFull Code = "INVENTORY_FULL"
	// CodeItemNotFound - use/equip target absent from inventory.
	CodeItemNotFound Code = "ITEM_NOT_FOUND"
	// CodeInvalidDirection - movement target does not exist from the current room.
	CodeInvalidDirection Code = "INVALID_DIRECTION"
	// CodeImmune - attack blocked by the examine gate.
	CodeImmune Code = "IMMUNE"
	// CodeNotRegistered - multiplayer action against an unknown account.
	CodeNotRegistered Code = "NOT_REGISTERED"
	// CodeAlreadyRegistered - registration against a taken email or username.
	CodeAlreadyRegistered Code = "ALREADY_REGISTERED"
	// CodeNotLoggedIn - multiplayer action requires an authenticated session.
	CodeNotLoggedIn Code = "NOT_LOGGED_IN"
	// CodeMultiplayerDisabled - multiplayer tool invoked in single-player mode.
	CodeMultiplayerDisabled Code = "MULTIPLAYER_DISABLED"
	// CodeInternal - unexpected failure in a collaborator (storage, mail).
	CodeInternal Code = "INTERNAL"
)

// Error is a structured recoverable game error.
type Error struct {
	Code    Code           `json:"code"`
	Message string         `json:"message"`
	Cause   error          `json:"-"`
	Meta    map[string]any `json:"meta,omitempty"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the wrapped cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches errors by code so errors.Is works across instances.
func (e *Error) Is(target error) bool {
	var targetErr *Error
	if errors.As(target, &targetErr) {
		return e.Code == targetErr.Code
	}
	return false
}

// WithMeta attaches one detail entry (offending name, required amount) and
// returns the receiver for chaining.
func (e *Error) WithMeta(key string, value any) *Error {
	if e.Meta == nil {
		e.Meta = make(map[string]any)
	}
	e.Meta[key] = value
	return e
}

// New creates an error with the given code and message.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Newf creates an error with a formatted message.
func Newf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap wraps a collaborator failure as an internal game error.
func Wrap(err error, message string) *Error {
	if err == nil {
		return nil
	}
	var existing *Error
	if errors.As(err, &existing) {
		return &Error{Code: existing.Code, Message: message, Cause: err, Meta: existing.Meta}
	}
	return &Error{Code: CodeInternal, Message: message, Cause: err}
}

// CodeOf extracts the code from err, or CodeInternal for foreign errors.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeInternal
}

// MetaOf extracts the metadata from err, or nil for foreign errors.
func MetaOf(err error) map[string]any {
	var e *Error
	if errors.As(err, &e) {
		return e.Meta
	}
	return nil
}

// MessageOf extracts the player-facing message from err, or err.Error()
// for foreign errors.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// Constructors for the common cases. Messages are written in-world; the tool
// layer passes them straight through to the player.

// NoActiveSession reports a missing hero/game state.
func NoActiveSession() *Error {
	return New(CodeNoActiveSession, "no active integration detected; use create_character to initialize a new hero")
}

// InvalidTarget reports an unmatched enemy or item name.
func InvalidTarget(target string) *Error {
	return Newf(CodeInvalidTarget, "target %q not found in current scope", target).
		WithMeta("target", target)
}

// NotInCombat reports an action that requires an active encounter.
func NotInCombat() *Error {
	return New(CodeNotInCombat, "no active incidents; the system is peaceful, for now")
}

// InCombat reports an action forbidden during an active encounter.
func InCombat(action string) *Error {
	return Newf(CodeInCombat, "cannot %s during combat", action).WithMeta("action", action)
}

// Blocked reports movement stopped by living enemies.
func Blocked() *Error {
	return New(CodeAlreadyBlocked, "enemies block your path; defeat them first or flee")
}

// InsufficientResource reports an unpayable skill cost.
func InsufficientResource(required, available int) *Error {
	return Newf(CodeInsufficientResource, "insufficient credits: need %d, have %d", required, available).
		WithMeta("required", required).
		WithMeta("available", available)
}

// InventoryFull reports a pickup at capacity.
func InventoryFull(capacity int) *Error {
	return Newf(CodeInventoryFull, "inventory buffer overflow: all %d slots in use", capacity).
		WithMeta("capacity", capacity)
}

// ItemNotFound reports a missing inventory item.
func ItemNotFound(item string) *Error {
	return Newf(CodeItemNotFound, "%q not found in inventory", item).WithMeta("item", item)
}

// InvalidDirection reports a nonexistent exit.
func InvalidDirection(direction string) *Error {
	return Newf(CodeInvalidDirection, "cannot move %s: no endpoint exists in that direction", direction).
		WithMeta("direction", direction)
}

// Immune reports an attack stopped by the examine gate.
func Immune(enemy string) *Error {
	return Newf(CodeImmune, "the %s is immune; examine it first to find its weakness", enemy).
		WithMeta("enemy", enemy)
}

// NotRegistered reports an unknown account email.
func NotRegistered(email string) *Error {
	return Newf(CodeNotRegistered, "email %q is not registered", email).WithMeta("email", email)
}

// AlreadyRegistered reports a registration collision on the named field
// ("email" or "username").
func AlreadyRegistered(field, value string) *Error {
	return Newf(CodeAlreadyRegistered, "%s %q is already registered", field, value).
		WithMeta(field, value)
}

// NotLoggedIn reports a missing authenticated player session.
func NotLoggedIn() *Error {
	return New(CodeNotLoggedIn, "you're not logged in")
}

// MultiplayerDisabled reports a multiplayer tool used in single-player mode.
func MultiplayerDisabled() *Error {
	return New(CodeMultiplayerDisabled, "this feature requires multiplayer mode")
}
