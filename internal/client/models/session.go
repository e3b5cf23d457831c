package models

import (
	"strings"
	"time"

	"github.com/dmitrijs2005/connecthub/internal/common"
)

// SessionUser is the auth-side user attached to a session.
type SessionUser struct {
	ID       string         `json:"id"`
	Email    string         `json:"email"`
	Metadata map[string]any `json:"user_metadata,omitempty"`
}

// DisplayName returns the "name" metadata value, falling back to the local
// part of the email address.
func (u SessionUser) DisplayName() string {
	if name, ok := u.Metadata["name"].(string); ok && strings.TrimSpace(name) != "" {
		return name
	}
	return common.EmailLocalPart(u.Email)
}

// Session is an authenticated backend session.
type Session struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
	User         SessionUser
}

// ExpiresWithin reports whether the access token expires within d of now.
func (s *Session) ExpiresWithin(d time.Duration, now time.Time) bool {
	if s.ExpiresAt.IsZero() {
		return false
	}
	return now.Add(d).After(s.ExpiresAt)
}

// AuthEventKind names a session-change notification.
type AuthEventKind string

const (
	AuthInitialSession AuthEventKind = "INITIAL_SESSION"
	AuthSignedIn       AuthEventKind = "SIGNED_IN"
	AuthSignedOut      AuthEventKind = "SIGNED_OUT"
	AuthTokenRefreshed AuthEventKind = "TOKEN_REFRESHED"
	AuthUserUpdated    AuthEventKind = "USER_UPDATED"
)

// AuthEvent is delivered to session-change listeners. Session is nil when
// there is no authenticated session.
type AuthEvent struct {
	Kind    AuthEventKind
	Session *Session
}
