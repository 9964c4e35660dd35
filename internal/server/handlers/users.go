package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/stancehq/stance/internal/models"
	"github.com/stancehq/stance/internal/server/storage"
	"github.com/stancehq/stance/pkg/api"
)

// UserHandler serves user profile endpoints
type UserHandler struct {
	logger *slog.Logger
	users  storage.UserStorage
}

// NewUserHandler creates a new user handler
func NewUserHandler(logger *slog.Logger, users storage.UserStorage) *UserHandler {
	return &UserHandler{
		logger: logger,
		users:  users,
	}
}

// Me handles GET /users/me. Requires an authenticated identity; the
// middleware guarantees a user ID is present in the context.
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := GetUserID(ctx)
	if !ok {
		sendError(h.logger, w, "unauthorized", http.StatusUnauthorized)
		return
	}

	user, err := h.users.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			// valid token for a since-deleted account
			h.logger.WarnContext(ctx, "token subject no longer exists", slog.String("user_id", userID))
			sendError(h.logger, w, "unauthorized", http.StatusUnauthorized)
			return
		}
		h.logger.ErrorContext(ctx, "failed to load user", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	sendJSON(h.logger, w, userResponse(user, true), http.StatusOK)
}

// Profile handles GET /users/{username}. Identity is optional: anonymous
// viewers get the public fields, the account owner and admins also see
// the email address.
func (h *UserHandler) Profile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	username := r.PathValue("username")
	if username == "" {
		sendError(h.logger, w, "username is required", http.StatusBadRequest)
		return
	}

	user, err := h.users.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			sendError(h.logger, w, "user not found", http.StatusNotFound)
			return
		}
		h.logger.ErrorContext(ctx, "failed to load user", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	viewerID, _ := GetUserID(ctx)
	withEmail := viewerID == user.ID || GetIsAdmin(ctx)

	sendJSON(h.logger, w, userResponse(user, withEmail), http.StatusOK)
}

func userResponse(user *models.User, withEmail bool) api.UserResponse {
	resp := api.UserResponse{
		ID:       user.ID,
		Username: user.Username,
		FullName: user.FullName,
	}
	if withEmail {
		resp.Email = user.Email
	}
	return resp
}
