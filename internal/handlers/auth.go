package handlers

import (
	"net/http"
	"strings"
	"time"

	common "github.com/folioworks/folio/internal/common"
	"github.com/folioworks/folio/internal/store"
)

// AuthHandler handles login, logout and session introspection.
type AuthHandler struct {
	users      *store.UserStore
	jwtSecret  []byte
	sessionTTL time.Duration
	logger     *common.Logger
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(users *store.UserStore, jwtSecret []byte, sessionTTL time.Duration, logger *common.Logger) *AuthHandler {
	return &AuthHandler{
		users:      users,
		jwtSecret:  jwtSecret,
		sessionTTL: sessionTTL,
		logger:     logger,
	}
}

// HandleLogin handles POST /api/auth/login.
// Verifies the credentials against the stored bcrypt hash, mints a session
// JWT and sets it as an HttpOnly cookie.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := ReadJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	username := strings.TrimSpace(req.Username)
	if username == "" || req.Password == "" {
		WriteError(w, http.StatusBadRequest, "username and password are required")
		return
	}

	user, err := h.users.Authenticate(r.Context(), username, req.Password)
	if err != nil {
		h.logger.Warn().Str("username", username).Msg("login rejected")
		WriteError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	now := time.Now()
	token, err := SignJWT(JWTClaims{
		Sub:  user.Username,
		Name: user.Username,
		Role: user.Role,
		Iss:  "folio",
		Iat:  now.Unix(),
		Exp:  now.Add(h.sessionTTL).Unix(),
	}, h.jwtSecret)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to sign session token")
		WriteError(w, http.StatusInternalServerError, "failed to create session")
		return
	}

	setSessionCookie(w, token, h.sessionTTL)
	h.logger.Info().Str("username", user.Username).Msg("user logged in")

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status": "ok",
		"user": map[string]string{
			"username": user.Username,
			"email":    user.Email,
			"role":     user.Role,
		},
	})
}

// HandleLogout handles POST /api/auth/logout by clearing the session cookie.
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}
	clearSessionCookie(w)
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// HandleMe handles GET /api/auth/me, returning the current session's claims.
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	claims, ok := RequireUser(w, r, h.jwtSecret)
	if !ok {
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{
		"username": claims.Sub,
		"role":     claims.Role,
	})
}
