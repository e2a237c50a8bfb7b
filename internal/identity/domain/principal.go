// Package domain holds the identity entities: users, sessions, and the
// tri-state session resolution consumed by the access gate.
package domain

import (
	"errors"
	"time"
)

// Principal is the authenticated user as seen by the rest of the gateway.
type Principal struct {
	ID    string
	Name  string
	Email string
}

// SessionPhase is the resolution phase of the current session.
type SessionPhase string

const (
	// SessionLoading means resolution has started but not produced an answer yet.
	SessionLoading SessionPhase = "loading"
	// SessionAuthenticated means a valid session exists; Principal is set.
	SessionAuthenticated SessionPhase = "authenticated"
	// SessionUnauthenticated means no valid session exists; Principal is nil.
	SessionUnauthenticated SessionPhase = "unauthenticated"
)

// SessionState is the tri-state answer to "is there an authenticated
// principal". Per resolution cycle it transitions exactly once from loading to
// one of the terminal phases; a new cycle starts only on sign-in or sign-out.
type SessionState struct {
	Phase     SessionPhase
	Principal *Principal // non-nil iff Phase is SessionAuthenticated
}

// Loading returns the initial SessionState for a new resolution cycle.
func Loading() SessionState { return SessionState{Phase: SessionLoading} }

// Authenticated returns the terminal SessionState for a resolved principal.
func Authenticated(p Principal) SessionState {
	return SessionState{Phase: SessionAuthenticated, Principal: &p}
}

// Unauthenticated returns the terminal SessionState for no active session.
func Unauthenticated() SessionState { return SessionState{Phase: SessionUnauthenticated} }

// IsLoading reports whether resolution has not reached a terminal phase.
func (s SessionState) IsLoading() bool { return s.Phase == SessionLoading }

// User is the stored account behind a Principal.
type User struct {
	ID           string
	Email        string
	Name         string
	PasswordHash string
	Status       UserStatus
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type UserStatus string

const (
	UserStatusActive   UserStatus = "active"
	UserStatusDisabled UserStatus = "disabled"
)

// Validate validates the user for persistence. Returns an error describing the first validation failure.
func (u *User) Validate() error {
	if u.Email == "" {
		return errors.New("email is required")
	}
	if u.Status == "" {
		u.Status = UserStatusActive
	}
	return nil
}

// AsPrincipal returns the Principal view of the user.
func (u *User) AsPrincipal() Principal {
	return Principal{ID: u.ID, Name: u.Name, Email: u.Email}
}
