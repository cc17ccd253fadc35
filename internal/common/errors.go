// Package common defines shared constants and sentinel errors used across
// the client and server layers of authd. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("already exists")

	// Service-level errors (generic/internal flow control).
	ErrInternal = errors.New("internal error")

	// Login errors. An unknown username and a wrong password both map to
	// ErrInvalidCredentials so that login responses do not reveal which
	// part was wrong. Inactive accounts are reported separately.
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountInactive    = errors.New("account is inactive")

	// Authorization errors.
	ErrNotOwner     = errors.New("not the owner")
	ErrRoleNotFound = errors.New("role not found")

	// Token lifecycle errors.
	ErrTokenInvalid = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")

	// API key verification errors. Inactive, expired and unknown keys all
	// collapse into ErrKeyInvalid.
	ErrKeyInvalid = errors.New("invalid api key")
)
