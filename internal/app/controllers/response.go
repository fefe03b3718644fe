package controllers

import (
	"encoding/json"
	"net/http"

	"github.com/communityhub/server/internal/domain/apperr"
	"github.com/communityhub/server/internal/domain/user"
	"github.com/communityhub/server/internal/platform/middleware"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, statusFor(err), errorResponse{Error: err.Error()})
}

func writeBadRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, errorResponse{Error: msg})
}

func statusFor(err error) int {
	switch apperr.KindOf(err) {
	case apperr.KindBadRequest:
		return http.StatusBadRequest
	case apperr.KindUnauthenticated:
		return http.StatusUnauthorized
	case apperr.KindForbidden:
		return http.StatusForbidden
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// requireCaller returns the authenticated user or writes a 401.
func requireCaller(w http.ResponseWriter, r *http.Request) (*user.User, bool) {
	u := middleware.UserFrom(r.Context())
	if u == nil {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "authentication required"})
		return nil, false
	}
	return u, true
}

// callerID returns the authenticated user's id, or "" for anonymous requests.
func callerID(r *http.Request) string {
	if u := middleware.UserFrom(r.Context()); u != nil {
		return u.ID
	}
	return ""
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeBadRequest(w, "invalid request body")
		return false
	}
	return true
}
