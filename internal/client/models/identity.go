// Package models defines client-side data models used by the ConnectHub CLI.
package models

import (
	"strings"
	"time"
)

// Identity is the authenticated user's profile record as stored in the
// backend "users" collection.
type Identity struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Bio       *string   `json:"bio,omitempty"`
	AvatarURL *string   `json:"avatar_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// IdentityUpdate is a partial update of an Identity. Nil fields are left
// untouched.
type IdentityUpdate struct {
	Name      *string `json:"name,omitempty"`
	Bio       *string `json:"bio,omitempty"`
	AvatarURL *string `json:"avatar_url,omitempty"`
}

// Empty reports whether the update carries no fields.
func (u IdentityUpdate) Empty() bool {
	return u.Name == nil && u.Bio == nil && u.AvatarURL == nil
}

// Apply returns a copy of id with the set fields of u merged in.
func (u IdentityUpdate) Apply(id Identity) Identity {
	if u.Name != nil {
		id.Name = *u.Name
	}
	if u.Bio != nil {
		bio := *u.Bio
		id.Bio = &bio
	}
	if u.AvatarURL != nil {
		avatar := *u.AvatarURL
		id.AvatarURL = &avatar
	}
	return id
}

// Initial returns the upper-cased first letter of name, used as an avatar
// placeholder.
func Initial(name string) string {
	for _, r := range name {
		return strings.ToUpper(string(r))
	}
	return "?"
}
