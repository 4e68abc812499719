package handlers

import (
	"encoding/json"
	"net/http"
	"orthoiq-api/internal/services"

	"golang.org/x/crypto/bcrypt"
)

// AuthHandler exchanges verified Farcaster quick-auth identities for session
// tokens. Signature verification happens upstream in the auth-kit; requests
// reaching this handler carry the shared relay secret. Only a bcrypt hash of
// the secret is held in memory and in the environment.
type AuthHandler struct {
	authService     services.AuthService
	relaySecretHash []byte
}

func NewAuthHandler(authService services.AuthService, relaySecretHash string) *AuthHandler {
	return &AuthHandler{
		authService:     authService,
		relaySecretHash: []byte(relaySecretHash),
	}
}

type sessionRequest struct {
	FID         int64  `json:"fid"`
	Username    string `json:"username"`
	DisplayName string `json:"displayName"`
}

type sessionResponse struct {
	Token string `json:"token,omitempty"`
	Error string `json:"error,omitempty"`
}

// CreateSession - issue a session token for a verified Farcaster identity.
func (h *AuthHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	if err := bcrypt.CompareHashAndPassword(h.relaySecretHash, []byte(r.Header.Get("X-Relay-Secret"))); err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req sessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.FID <= 0 {
		http.Error(w, "Invalid fid", http.StatusBadRequest)
		return
	}

	token, _, err := h.authService.Authenticate(r.Context(), req.FID, req.Username, req.DisplayName)
	if err != nil {
		http.Error(w, "Error creating session", http.StatusInternalServerError)
		return
	}

	respondWithJSON(w, http.StatusOK, sessionResponse{Token: token})
}
