package server

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/quarrydb/quarry/internal/authn"
)

// AuthHandlers serves the authentication endpoint for the engine's
// connection layer.
type AuthHandlers struct {
	manager *authn.Manager
	catalog authn.Catalog
}

// NewAuthHandlers wires the handlers to the authentication manager and the
// catalog.
func NewAuthHandlers(manager *authn.Manager, catalog authn.Catalog) *AuthHandlers {
	return &AuthHandlers{manager: manager, catalog: catalog}
}

// sessionRequest is one authentication attempt as presented by the
// connection layer.
type sessionRequest struct {
	User     string `json:"user"`
	Password string `json:"password"`
	Realm    string `json:"realm,omitempty"`
}

// sessionResponse is a successfully resolved principal.
type sessionResponse struct {
	User      string   `json:"user"` // fully-qualified name
	Roles     []string `json:"roles"`
	Temporary bool     `json:"temporary"`
}

// CreateSession authenticates one attempt.
//
// Responses: 200 with the resolved principal, 401 with an opaque error for
// every credentials rejection (internal distinctions are logged, never
// returned), 500 when the authentication machinery itself failed.
func (h *AuthHandlers) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req sessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.User == "" {
		writeError(w, http.StatusBadRequest, "user is required")
		return
	}

	info := authn.NewInfo(req.User, req.Password, req.Realm)
	user, err := h.manager.Authenticate(r.Context(), info, h.catalog)
	if err != nil {
		if errors.Is(err, authn.ErrAuthenticationFailed) {
			writeError(w, http.StatusUnauthorized, "authentication failed")
			return
		}
		log.Printf("server: authentication infrastructure failure: %v", err)
		writeError(w, http.StatusInternalServerError, "authentication infrastructure failure")
		return
	}

	roles, err := h.catalog.ListRoleNames(r.Context(), user.ID)
	if err != nil {
		log.Printf("server: list roles for %s: %v", user.Name, err)
		writeError(w, http.StatusInternalServerError, "authentication infrastructure failure")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(sessionResponse{
		User:      user.Name,
		Roles:     roles,
		Temporary: user.Temporary,
	}); err != nil {
		log.Printf("server: encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
