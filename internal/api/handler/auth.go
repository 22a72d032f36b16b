// internal/api/handler/auth.go
package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"fintrack/internal/auth"
	"fintrack/internal/domain"
	"fintrack/internal/service"
	"fintrack/internal/util"
)

// AuthHandler handles sign-up, sign-in and bearer token checks.
type AuthHandler struct {
	base
	service service.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(svc service.AuthService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{base: base{logger: logger}, service: svc}
}

type SignUpRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Name     string `json:"name" validate:"required,max=100"`
}

type SignInRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// SignInResponse is returned by a successful sign-in.
type SignInResponse struct {
	AccessToken string       `json:"accessToken"`
	User        *domain.User `json:"user"`
}

// SignUp handles POST /auth/sign-up.
func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req SignUpRequest
	if err := decode(r, &req); err != nil {
		h.respondWithError(w, err)
		return
	}

	user, err := h.service.SignUp(r.Context(), service.SignUpInput{Email: req.Email, Password: req.Password, Name: req.Name})
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	h.respondWithJSON(w, http.StatusCreated, "User registered", user)
}

// SignIn handles POST /auth/sign-in.
func (h *AuthHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	var req SignInRequest
	if err := decode(r, &req); err != nil {
		h.respondWithError(w, err)
		return
	}

	user, token, err := h.service.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	h.respondWithJSON(w, http.StatusOK, "Signed in", SignInResponse{AccessToken: token, User: user})
}

// Me handles GET /auth/me.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUserID(r)
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	user, err := h.service.Me(r.Context(), userID)
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	h.respondWithJSON(w, http.StatusOK, "User retrieved", user)
}

// RequireAuth rejects requests without a valid "Authorization: Bearer" token
// and stores the caller in the request context.
func (h *AuthHandler) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		scheme, token, found := strings.Cut(header, " ")
		if !found || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			h.respondWithError(w, util.ErrUnauthorized)
			return
		}

		principal, err := h.service.Authenticate(r.Context(), strings.TrimSpace(token))
		if err != nil {
			if !util.IsError(err, util.ErrUnauthorized) {
				h.respondWithError(w, err)
				return
			}
			h.logger.Debug("Rejected bearer token", "error", err)
			h.respondWithError(w, util.ErrUnauthorized)
			return
		}

		next.ServeHTTP(w, r.WithContext(auth.WithPrincipal(r.Context(), principal)))
	})
}
