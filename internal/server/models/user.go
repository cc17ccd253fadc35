// Package models defines the persistent entities of the auth service.
package models

import "time"

// User is an account that can log in with a password and own API keys.
// PasswordHash is a bcrypt digest; the plaintext password is never stored.
type User struct {
	ID           int64
	Username     string
	Email        string
	PasswordHash string
	Active       bool
	CreatedAt    time.Time
	Roles        []Role
}

// RoleNames returns the names of the user's roles, in stored order.
func (u *User) RoleNames() []string {
	names := make([]string, 0, len(u.Roles))
	for _, r := range u.Roles {
		names = append(names, r.Name)
	}
	return names
}
