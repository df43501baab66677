package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/sakif/township/internal/auth"
	"github.com/sakif/township/internal/model"
	"github.com/sakif/township/internal/service"
)

// AuthHandler serves login, logout and the current-user lookup.
type AuthHandler struct {
	auth     *service.AuthService
	tokenTTL time.Duration
	logger   *slog.Logger
}

func NewAuthHandler(auth *service.AuthService, tokenTTL time.Duration, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, tokenTTL: tokenTTL, logger: logger}
}

type loginRequest struct {
	Username string     `json:"username"`
	Password string     `json:"password"`
	Role     model.Role `json:"role"`
}

// HandleLogin checks credentials and opens the session.
//
// HTTP: POST /api/login
//
// The token is returned in the body for API clients and also set as an
// HttpOnly cookie for browsers.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	res, err := h.auth.Login(r.Context(), req.Username, req.Password, req.Role)
	if err != nil {
		writeError(w, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    res.Token,
		Path:     "/",
		MaxAge:   int(h.tokenTTL.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, res)
}

// HandleLogout clears the session slot, which invalidates every token
// issued for it, and deletes the cookie.
//
// HTTP: POST /api/logout
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if err := h.auth.Logout(r.Context()); err != nil {
		h.logger.Error("logout failed", slog.String("error", err.Error()))
		writeError(w, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}

// HandleMe returns the logged-in user.
//
// HTTP: GET /api/me
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.UserFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "unauthorized", Message: "not logged in"})
		return
	}
	writeJSON(w, http.StatusOK, u)
}
