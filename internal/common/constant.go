package common

// AuthorizationHeaderName is the HTTP header carrying the bearer token.
const AuthorizationHeaderName = "Authorization"

// BearerPrefix is the scheme prefix expected in the Authorization header.
const BearerPrefix = "Bearer "

// APIKeyHeaderName is the HTTP header carrying a raw API key when a client
// authenticates with a key instead of a bearer token.
const APIKeyHeaderName = "X-Api-Key"
