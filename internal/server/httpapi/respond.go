package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/prestobr/authd/internal/common"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErrorMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// writeError maps service errors to HTTP statuses. Unrecognized errors are
// collapsed into a plain 500 so no internal detail leaks.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, common.ErrNotFound):
		writeErrorMessage(w, http.StatusNotFound, "not found")
	case errors.Is(err, common.ErrConflict):
		writeErrorMessage(w, http.StatusConflict, "already exists")
	case errors.Is(err, common.ErrRoleNotFound):
		writeErrorMessage(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, common.ErrInvalidCredentials):
		writeErrorMessage(w, http.StatusUnauthorized, "invalid credentials")
	case errors.Is(err, common.ErrAccountInactive):
		writeErrorMessage(w, http.StatusForbidden, "account inactive")
	case errors.Is(err, common.ErrNotOwner):
		writeErrorMessage(w, http.StatusForbidden, "not the key owner")
	case errors.Is(err, common.ErrKeyInvalid):
		writeErrorMessage(w, http.StatusUnauthorized, "invalid key")
	default:
		writeErrorMessage(w, http.StatusInternalServerError, "internal error")
	}
}
