package models

// Role is a named permission grant, e.g. "ADMIN". Roles are referenced by
// name from users and API keys and are never auto-created by the service.
type Role struct {
	ID   int64
	Name string
}
