package models

import "time"

// ApiKey is a long-lived credential owned by exactly one user.
//
// Two derived values of the raw secret are stored: Hash is a bcrypt digest
// used to verify a presented secret, Fingerprint is a deterministic keyed
// HMAC used as a unique lookup index. The raw secret itself is returned
// once at creation and never persisted.
type ApiKey struct {
	ID            int64
	Hash          string
	Fingerprint   string
	Description   string
	Active        bool
	CreatedAt     time.Time
	ExpiresAt     *time.Time
	OwnerID       int64
	OwnerUsername string
	Roles         []Role
}

// Expired reports whether the key has an expiry in the past relative to now.
func (k *ApiKey) Expired(now time.Time) bool {
	return k.ExpiresAt != nil && !k.ExpiresAt.After(now)
}

// RoleNames returns the names of the key's roles, in stored order.
func (k *ApiKey) RoleNames() []string {
	names := make([]string, 0, len(k.Roles))
	for _, r := range k.Roles {
		names = append(names, r.Name)
	}
	return names
}
