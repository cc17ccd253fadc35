// Package auth implements the token side of authentication: issuing and
// verifying signed bearer tokens and turning them into principals.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/prestobr/authd/internal/common"
)

// Claims is the JWT payload: registered claims (sub, iat, exp) plus the
// role names granted to the subject.
type Claims struct {
	jwt.RegisteredClaims
	Roles []string `json:"roles"`
}

// Principal is the authenticated identity derived from a verified
// credential: the subject username and its role names.
type Principal struct {
	Username string
	Roles    []string
}

// HasRole reports whether the principal carries the given role name.
func (p *Principal) HasRole(name string) bool {
	for _, r := range p.Roles {
		if r == name {
			return true
		}
	}
	return false
}

// Codec signs and verifies bearer tokens with a single symmetric key
// (HS256). The key and TTL are injected at construction and never change;
// key rotation is not supported.
type Codec struct {
	secret []byte
	ttl    time.Duration
}

func NewCodec(secret []byte, ttl time.Duration) *Codec {
	return &Codec{secret: secret, ttl: ttl}
}

// Issue creates a signed token for the subject with issued-at = now and
// expiry = now + TTL.
func (c *Codec) Issue(username string, roles []string, now time.Time) (string, error) {
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
		},
		Roles: roles,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(c.secret)
}

// Verify validates the signature and expiry of raw at the given time and
// returns the embedded principal. Any malformed or tampered input yields
// common.ErrTokenInvalid; an expired token yields common.ErrTokenExpired.
// Verify never panics on attacker-controlled input.
func (c *Codec) Verify(raw string, now time.Time) (*Principal, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(raw, claims,
		func(t *jwt.Token) (any, error) { return c.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(func() time.Time { return now }),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.ErrTokenExpired
		}
		return nil, common.ErrTokenInvalid
	}
	if !token.Valid {
		return nil, common.ErrTokenInvalid
	}

	return &Principal{Username: claims.Subject, Roles: claims.Roles}, nil
}
