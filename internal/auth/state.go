package auth

import (
	"errors"

	"github.com/suranjanamuahaha/BlinkEd/internal/api"
)

// ErrNotLoggedIn is returned by CompleteLogin when no access token is stored.
var ErrNotLoggedIn = errors.New("not logged in")

// Phase is where the session is in the login lifecycle.
type Phase int

const (
	// PhaseAnonymous: no user, no usable token.
	PhaseAnonymous Phase = iota
	// PhaseProfilePending: tokens are stored but the profile has not been
	// fetched yet. A failed or interrupted login can leave the session here
	// until the next Restore.
	PhaseProfilePending
	// PhaseAuthenticated: tokens stored and profile known.
	PhaseAuthenticated
)

func (p Phase) String() string {
	switch p {
	case PhaseProfilePending:
		return "profile-pending"
	case PhaseAuthenticated:
		return "authenticated"
	default:
		return "anonymous"
	}
}

// State is a snapshot of the session.
type State struct {
	User *api.Profile
	// Loading is true only until the startup Restore finishes.
	Loading bool
	// Error is the last login/register failure message, "" when none.
	Error string
	Phase Phase
}

// LoggedIn reports whether a user profile is present.
func (s State) LoggedIn() bool {
	return s.User != nil
}

// Error is returned by Login and Register. Message is ready for display;
// Err is the underlying gateway or storage failure.
type Error struct {
	Op      string
	Message string
	Err     error
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Err }
