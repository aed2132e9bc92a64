package membership

import (
	goerrors "github.com/goliatone/go-errors"
)

const (
	textCodeInvalidTransition = "INVALID_LOGIN_STATE_TRANSITION"
	textCodeTerminalState     = "TERMINAL_LOGIN_STATE"
)

// ErrInvalidTransition is returned when a requested lifecycle change is not allowed.
var ErrInvalidTransition = goerrors.New("invalid login state transition", goerrors.CategoryValidation).
	WithTextCode(textCodeInvalidTransition)

// ErrTerminalState is returned when attempting to move away from a terminal
// state (soft-deleted or purged).
var ErrTerminalState = goerrors.New("login state is terminal", goerrors.CategoryConflict).
	WithTextCode(textCodeTerminalState)

// LoginState is a node in the login lifecycle graph. Unlike LoginStatus it
// folds the lockout flag in, so callers can validate a full transition
// (Active <-> LockedOut, either -> SoftDeleted or Purged) in one place.
type LoginState string

const (
	StateActive      LoginState = "active"
	StateLockedOut   LoginState = "locked_out"
	StateSoftDeleted LoginState = "soft_deleted"
	StatePurged      LoginState = "purged"
)

var loginTransitions = map[LoginState][]LoginState{
	StateActive:      {StateLockedOut, StateSoftDeleted, StatePurged},
	StateLockedOut:   {StateActive, StateSoftDeleted, StatePurged},
	StateSoftDeleted: {},
	StatePurged:      {},
}

// CurrentState derives the lifecycle state of a login record
func CurrentState(l *Login) LoginState {
	if l == nil {
		return StatePurged
	}

	l.EnsureStatus()
	if l.Status == LoginStatusDeleted || l.DeletedAt != nil {
		return StateSoftDeleted
	}

	if l.IsLockedOut {
		return StateLockedOut
	}

	return StateActive
}

// CanTransition reports whether the lifecycle graph allows moving from one
// state to another
func CanTransition(from, to LoginState) bool {
	if from == to {
		return true
	}
	for _, allowed := range loginTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

func validateTransition(l *Login, target LoginState) error {
	from := CurrentState(l)

	if from == target {
		return nil
	}

	if len(loginTransitions[from]) == 0 {
		return ErrTerminalState
	}

	if !CanTransition(from, target) {
		return ErrInvalidTransition
	}

	return nil
}
