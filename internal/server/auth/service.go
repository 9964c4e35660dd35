package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/stancehq/stance/internal/models"
	"github.com/stancehq/stance/internal/server/storage"
)

// TokenPair is what login and refresh hand back to the caller: a signed
// access token plus the plaintext of a freshly minted refresh token.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    int64
}

// SignupParams carries the fields of a signup request
type SignupParams struct {
	Username string
	FullName string
	Email    string
	Password string
}

// Service orchestrates signup, login, refresh and logout. It is the only
// component that mutates token state; request-time identity resolution
// lives in the middleware and never touches storage.
type Service struct {
	logger  *slog.Logger
	users   storage.UserStorage
	hasher  *PasswordHasher
	codec   *TokenCodec
	refresh *RefreshManager

	// dummyHash is verified against when the username does not exist, so
	// a login attempt costs one bcrypt comparison either way and timing
	// does not reveal whether the account exists.
	dummyHash string
}

// NewService creates the auth service from its parts.
func NewService(logger *slog.Logger, users storage.UserStorage, hasher *PasswordHasher, codec *TokenCodec, refresh *RefreshManager) (*Service, error) {
	dummyHash, err := hasher.Hash("stance.dummy.password.for.timing")
	if err != nil {
		return nil, fmt.Errorf("failed to prepare dummy hash: %w", err)
	}

	return &Service{
		logger:    logger,
		users:     users,
		hasher:    hasher,
		codec:     codec,
		refresh:   refresh,
		dummyHash: dummyHash,
	}, nil
}

// Signup creates a new user. Both username and email must be unused; a
// collision on either yields ErrDuplicateUser. The check-then-insert race
// is closed by the storage layer's unique constraints, which surface as
// the same error. Signup does not log the user in. Field validation is the
// handler's job; the service assumes well-formed input.
func (s *Service) Signup(ctx context.Context, params SignupParams) (*models.User, error) {
	if _, err := s.users.GetUserByUsername(ctx, params.Username); err == nil {
		return nil, ErrDuplicateUser
	} else if !errors.Is(err, storage.ErrUserNotFound) {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}

	if _, err := s.users.GetUserByEmail(ctx, params.Email); err == nil {
		return nil, ErrDuplicateUser
	} else if !errors.Is(err, storage.ErrUserNotFound) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	passwordHash, err := s.hasher.Hash(params.Password)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	user := &models.User{
		ID:           uuid.New().String(),
		Username:     params.Username,
		FullName:     params.FullName,
		Email:        params.Email,
		PasswordHash: passwordHash,
		IsAdmin:      false,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, storage.ErrUserAlreadyExists) {
			return nil, ErrDuplicateUser
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.InfoContext(ctx, "user signed up",
		slog.String("user_id", user.ID),
		slog.String("username", user.Username))

	return user, nil
}

// Login verifies credentials and, on success, issues an access token and a
// brand-new refresh token. An unknown username and a wrong password both
// return ErrInvalidCredentials after one bcrypt comparison each.
func (s *Service) Login(ctx context.Context, username, password string) (*TokenPair, error) {
	user, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			// burn the same bcrypt cost as a real verification
			s.hasher.Verify(password, s.dummyHash)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	return s.issuePair(ctx, user)
}

// Refresh rotates a presented refresh token into a new token pair. The
// owning user's admin flag is re-read from storage, never carried over
// from issuance, so a privilege downgrade takes effect on the next
// refresh. Once Refresh succeeds, the presented plaintext is dead.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	record, err := s.refresh.Lookup(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, storage.ErrTokenNotFound) {
			return nil, ErrInvalidRefreshToken
		}
		return nil, fmt.Errorf("failed to look up refresh token: %w", err)
	}

	user, err := s.users.GetUserByID(ctx, record.UserID)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			// owner is gone; the token is as good as revoked
			return nil, ErrInvalidRefreshToken
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	accessToken, expiresIn, err := s.codec.Issue(user.ID, user.IsAdmin)
	if err != nil {
		return nil, err
	}

	newPlaintext, _, err := s.refresh.Rotate(ctx, record)
	if err != nil {
		if errors.Is(err, storage.ErrTokenNotFound) {
			// lost a rotation race or got revoked in between
			return nil, ErrInvalidRefreshToken
		}
		return nil, fmt.Errorf("failed to rotate refresh token: %w", err)
	}

	s.logger.InfoContext(ctx, "refresh token rotated",
		slog.String("user_id", user.ID),
		slog.String("token_id", record.ID))

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: newPlaintext,
		ExpiresIn:    expiresIn,
	}, nil
}

// Logout revokes the presented refresh token. A token that is unknown,
// already revoked or expired counts as already logged out: no error, so
// the endpoint cannot be used to probe for live tokens. Already-issued
// access tokens stay valid until their own expiry.
func (s *Service) Logout(ctx context.Context, refreshToken string) error {
	record, err := s.refresh.Lookup(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, storage.ErrTokenNotFound) {
			s.logger.DebugContext(ctx, "logout with unknown or inactive refresh token")
			return nil
		}
		return fmt.Errorf("failed to look up refresh token: %w", err)
	}

	if err := s.refresh.Revoke(ctx, record.ID); err != nil {
		return fmt.Errorf("failed to revoke refresh token: %w", err)
	}

	s.logger.InfoContext(ctx, "refresh token revoked",
		slog.String("user_id", record.UserID),
		slog.String("token_id", record.ID))

	return nil
}

// issuePair mints an access token and a fresh refresh token for user.
func (s *Service) issuePair(ctx context.Context, user *models.User) (*TokenPair, error) {
	accessToken, expiresIn, err := s.codec.Issue(user.ID, user.IsAdmin)
	if err != nil {
		return nil, err
	}

	refreshPlaintext, _, err := s.refresh.Issue(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to issue refresh token: %w", err)
	}

	s.logger.InfoContext(ctx, "user logged in",
		slog.String("user_id", user.ID),
		slog.String("username", user.Username))

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshPlaintext,
		ExpiresIn:    expiresIn,
	}, nil
}
