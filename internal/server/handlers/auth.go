package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/stancehq/stance/internal/server/auth"
	"github.com/stancehq/stance/internal/validation"
	"github.com/stancehq/stance/pkg/api"
)

// AuthHandler serves the authentication endpoints
type AuthHandler struct {
	logger *slog.Logger
	auth   *auth.Service
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(logger *slog.Logger, authService *auth.Service) *AuthHandler {
	return &AuthHandler{
		logger: logger,
		auth:   authService,
	}
}

// Signup handles POST /auth/signup.
// Creates a new account; does not log the user in.
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WarnContext(ctx, "failed to decode signup request", slog.Any("error", err))
		sendError(h.logger, w, "invalid request body", http.StatusBadRequest)
		return
	}

	if err := validation.ValidateUsername(req.Username); err != nil {
		sendError(h.logger, w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := validation.ValidateEmail(req.Email); err != nil {
		sendError(h.logger, w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := validation.ValidatePassword(req.Password); err != nil {
		sendError(h.logger, w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := validation.ValidateFullName(req.FullName); err != nil {
		sendError(h.logger, w, err.Error(), http.StatusBadRequest)
		return
	}

	user, err := h.auth.Signup(ctx, auth.SignupParams{
		Username: req.Username,
		FullName: req.FullName,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		if errors.Is(err, auth.ErrDuplicateUser) {
			h.logger.WarnContext(ctx, "signup collision", slog.String("username", req.Username))
			sendError(h.logger, w, "username or email already exists", http.StatusBadRequest)
			return
		}
		h.logger.ErrorContext(ctx, "signup failed", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	resp := api.SignupResponse{
		ID:       user.ID,
		Username: user.Username,
		FullName: user.FullName,
		Email:    user.Email,
	}

	sendJSON(h.logger, w, resp, http.StatusCreated)
}

// Login handles POST /auth/login.
// The error body is the same whether the username is unknown or the
// password is wrong.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WarnContext(ctx, "failed to decode login request", slog.Any("error", err))
		sendError(h.logger, w, "invalid request body", http.StatusBadRequest)
		return
	}

	pair, err := h.auth.Login(ctx, req.Username, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			h.logger.WarnContext(ctx, "login failed", slog.String("username", req.Username))
			sendError(h.logger, w, "invalid credentials", http.StatusUnauthorized)
			return
		}
		h.logger.ErrorContext(ctx, "login failed", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	sendJSON(h.logger, w, tokenResponse(pair), http.StatusOK)
}

// Refresh handles POST /auth/refresh.
// On success the presented refresh token is dead and the response carries
// its replacement.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.RefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WarnContext(ctx, "failed to decode refresh request", slog.Any("error", err))
		sendError(h.logger, w, "invalid request body", http.StatusBadRequest)
		return
	}

	pair, err := h.auth.Refresh(ctx, req.RefreshToken)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidRefreshToken) {
			h.logger.WarnContext(ctx, "refresh with invalid token")
			sendError(h.logger, w, "invalid or revoked refresh token", http.StatusUnauthorized)
			return
		}
		h.logger.ErrorContext(ctx, "refresh failed", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	sendJSON(h.logger, w, tokenResponse(pair), http.StatusOK)
}

// Logout handles POST /auth/logout.
// Always reports success for an unknown token; the only visible failure
// mode is a persistence error.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.LogoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WarnContext(ctx, "failed to decode logout request", slog.Any("error", err))
		sendError(h.logger, w, "invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.auth.Logout(ctx, req.RefreshToken); err != nil {
		h.logger.ErrorContext(ctx, "logout failed", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	sendJSON(h.logger, w, api.LogoutResponse{Success: true}, http.StatusOK)
}

func tokenResponse(pair *auth.TokenPair) api.TokenResponse {
	return api.TokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresIn:    pair.ExpiresIn,
	}
}
