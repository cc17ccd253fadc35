package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prestobr/authd/internal/server/auth"
	"github.com/prestobr/authd/internal/server/models"
	"github.com/prestobr/authd/internal/server/services"
)

type userResponse struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	Roles     []string  `json:"roles"`
}

type roleResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// keyResponse deliberately carries no hash or fingerprint material.
type keyResponse struct {
	ID          int64      `json:"id"`
	Description string     `json:"description"`
	Active      bool       `json:"active"`
	CreatedAt   time.Time  `json:"created_at"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
	Owner       string     `json:"owner"`
	Roles       []string   `json:"roles"`
}

func toUserResponse(u *models.User) userResponse {
	return userResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		Active:    u.Active,
		CreatedAt: u.CreatedAt,
		Roles:     u.RoleNames(),
	}
}

func toKeyResponse(k *models.ApiKey) keyResponse {
	return keyResponse{
		ID:          k.ID,
		Description: k.Description,
		Active:      k.Active,
		CreatedAt:   k.CreatedAt,
		ExpiresAt:   k.ExpiresAt,
		Owner:       k.OwnerUsername,
		Roles:       k.RoleNames(),
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

func (s *HTTPServer) register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string   `json:"username"`
		Email    string   `json:"email"`
		Password string   `json:"password"`
		Roles    []string `json:"roles"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Username == "" || req.Email == "" || req.Password == "" {
		writeErrorMessage(w, http.StatusBadRequest, "username, email and password are required")
		return
	}

	user, err := s.auth.Register(r.Context(), req.Username, req.Email, req.Password, req.Roles)
	if err != nil {
		writeError(w, err)
		return
	}

	s.logger.Info(r.Context(), "Registered user", "username", user.Username)
	writeJSON(w, http.StatusCreated, toUserResponse(user))
}

func (s *HTTPServer) login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := s.auth.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	s.logger.Info(r.Context(), "Login", "username", result.Username)
	writeJSON(w, http.StatusOK, struct {
		Token    string `json:"token"`
		Username string `json:"username"`
	}{Token: result.Token, Username: result.Username})
}

func (s *HTTPServer) listRoles(w http.ResponseWriter, r *http.Request) {
	roles, err := s.auth.Roles(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	out := make([]roleResponse, 0, len(roles))
	for _, role := range roles {
		out = append(out, roleResponse{ID: role.ID, Name: role.Name})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *HTTPServer) listUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.auth.Users(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	out := make([]userResponse, 0, len(users))
	for _, u := range users {
		out = append(out, toUserResponse(u))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *HTTPServer) listAllKeys(w http.ResponseWriter, r *http.Request) {
	keys, err := s.auth.AllKeys(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	out := make([]keyResponse, 0, len(keys))
	for _, k := range keys {
		out = append(out, toKeyResponse(k))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *HTTPServer) updateUserRoles(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "invalid user id")
		return
	}

	var req struct {
		Roles []string `json:"roles"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := s.auth.UpdateRoles(r.Context(), userID, req.Roles); err != nil {
		writeError(w, err)
		return
	}

	s.logger.Info(r.Context(), "Updated user roles", "user_id", userID, "roles", req.Roles)
	w.WriteHeader(http.StatusNoContent)
}

func (s *HTTPServer) createKey(w http.ResponseWriter, r *http.Request) {
	p, _ := auth.PrincipalFrom(r.Context())

	var req struct {
		Description string     `json:"description"`
		Roles       []string   `json:"roles"`
		ExpiresAt   *time.Time `json:"expires_at"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	key, raw, err := s.keys.Create(r.Context(), p.Username, req.Description, req.Roles, req.ExpiresAt)
	if err != nil {
		writeError(w, err)
		return
	}

	s.logger.Info(r.Context(), "Created API key", "owner", p.Username, "key_id", key.ID)

	// The raw secret appears in this response and nowhere else.
	writeJSON(w, http.StatusCreated, struct {
		keyResponse
		Key string `json:"key"`
	}{keyResponse: toKeyResponse(key), Key: raw})
}

func (s *HTTPServer) listKeys(w http.ResponseWriter, r *http.Request) {
	p, _ := auth.PrincipalFrom(r.Context())

	keys, err := s.keys.List(r.Context(), p.Username)
	if err != nil {
		writeError(w, err)
		return
	}

	out := make([]keyResponse, 0, len(keys))
	for _, k := range keys {
		out = append(out, toKeyResponse(k))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *HTTPServer) updateKey(w http.ResponseWriter, r *http.Request) {
	p, _ := auth.PrincipalFrom(r.Context())

	keyID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "invalid key id")
		return
	}

	var req struct {
		Description *string    `json:"description"`
		Roles       []string   `json:"roles"`
		ExpiresAt   *time.Time `json:"expires_at"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	key, err := s.keys.Update(r.Context(), p.Username, keyID, services.ApiKeyPatch{
		Description: req.Description,
		RoleNames:   req.Roles,
		ExpiresAt:   req.ExpiresAt,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toKeyResponse(key))
}

func (s *HTTPServer) revokeKey(w http.ResponseWriter, r *http.Request) {
	p, _ := auth.PrincipalFrom(r.Context())

	keyID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "invalid key id")
		return
	}

	if err := s.keys.Revoke(r.Context(), p.Username, keyID); err != nil {
		writeError(w, err)
		return
	}

	s.logger.Info(r.Context(), "Revoked API key", "owner", p.Username, "key_id", keyID)
	w.WriteHeader(http.StatusNoContent)
}
