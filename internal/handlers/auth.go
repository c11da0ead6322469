package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/findosh/showroom/internal/middleware"
	"github.com/findosh/showroom/internal/models"
	"github.com/findosh/showroom/internal/services/auth"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// Login checks credentials, returns the token and sets it as a cookie
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		h.jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if blank(req.Email) || req.Password == "" {
		h.jsonError(w, "email and password are required", http.StatusBadRequest)
		return
	}

	result, err := h.authService.Login(r.Context(), auth.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if errors.Is(err, auth.ErrInvalidCredentials) {
		h.jsonError(w, "invalid credentials", http.StatusUnauthorized)
		return
	}
	if err != nil {
		h.serverError(w, r, err, "login failed")
		return
	}

	// Set session cookie
	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    result.Token,
		Path:     "/",
		Expires:  result.Expires,
		MaxAge:   int(h.authService.Tokens().TTL().Seconds()),
		HttpOnly: true,
		Secure:   h.cfg.IsProduction(),
		SameSite: http.SameSiteLaxMode,
	})

	writeJSON(w, http.StatusOK, loginResponse{Token: result.Token, User: result.User})
}

// Logout expires the session cookie. The token itself stays valid until it
// expires; there is no server side session to revoke.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cfg.IsProduction(),
		SameSite: http.SameSiteLaxMode,
	})

	writeJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}

// Me returns the authenticated user
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, middleware.GetUser(r))
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// ChangePassword replaces the authenticated user's password
func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)

	var req changePasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		h.jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if req.CurrentPassword == "" || strings.TrimSpace(req.NewPassword) == "" {
		h.jsonError(w, "current and new password are required", http.StatusBadRequest)
		return
	}

	err := h.authService.ChangePassword(r.Context(), user.ID, req.CurrentPassword, req.NewPassword)
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		h.jsonError(w, "current password is incorrect", http.StatusBadRequest)
	case errors.Is(err, auth.ErrPasswordTooShort):
		h.jsonError(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, auth.ErrUserNotFound):
		h.jsonError(w, "unauthorized", http.StatusUnauthorized)
	case err != nil:
		h.serverError(w, r, err, "failed to change password")
	default:
		writeJSON(w, http.StatusOK, map[string]string{"message": "password changed"})
	}
}
