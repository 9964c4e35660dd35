// Package cli implements the stance client commands: signup, login,
// whoami, refresh, logout and status. Commands talk to the server through
// the API client and keep the session in a local store.
package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	clientapi "github.com/stancehq/stance/internal/client/api"
	"github.com/stancehq/stance/internal/client/session"
	"github.com/stancehq/stance/pkg/api"
)

// SessionStore is the slice of the session package the commands need
type SessionStore interface {
	Save(ctx context.Context, s *session.Session) error
	Get(ctx context.Context) (*session.Session, error)
	Delete(ctx context.Context) error
}

// APIClient is the slice of the API client the commands need
type APIClient interface {
	Signup(ctx context.Context, req api.SignupRequest) (*api.SignupResponse, error)
	Login(ctx context.Context, req api.LoginRequest) (*api.TokenResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*api.TokenResponse, error)
	Logout(ctx context.Context, refreshToken string) error
	Me(ctx context.Context, accessToken string) (*api.UserResponse, error)
}

var _ APIClient = (*clientapi.Client)(nil)
var _ SessionStore = (*session.Store)(nil)

// App holds the dependencies of the CLI commands
type App struct {
	io       IO
	client   APIClient
	sessions SessionStore
}

// NewApp creates the CLI command runner
func NewApp(io IO, client APIClient, sessions SessionStore) *App {
	return &App{
		io:       io,
		client:   client,
		sessions: sessions,
	}
}

// Run dispatches a command by name
func (a *App) Run(ctx context.Context, command string) error {
	switch command {
	case "signup":
		return a.Signup(ctx)
	case "login":
		return a.Login(ctx)
	case "whoami":
		return a.Whoami(ctx)
	case "refresh":
		return a.RefreshSession(ctx)
	case "logout":
		return a.Logout(ctx)
	case "status":
		return a.Status(ctx)
	default:
		a.Usage()
		return fmt.Errorf("unknown command: %s", command)
	}
}

// Usage prints the command list
func (a *App) Usage() {
	a.io.Println("Usage: stance <command>")
	a.io.Println("")
	a.io.Println("Commands:")
	a.io.Println("  signup   create a new account")
	a.io.Println("  login    log in and store the session")
	a.io.Println("  whoami   show the current account")
	a.io.Println("  refresh  rotate the stored token pair")
	a.io.Println("  logout   revoke the session and forget it")
	a.io.Println("  status   show local session state")
}

// Signup creates a new account. It does not log in: the server treats
// signup and login as independent operations.
func (a *App) Signup(ctx context.Context) error {
	username, err := a.io.ReadInput("Username: ")
	if err != nil {
		return err
	}
	fullName, err := a.io.ReadInput("Full name (optional): ")
	if err != nil {
		return err
	}
	email, err := a.io.ReadInput("Email: ")
	if err != nil {
		return err
	}
	password, err := a.io.ReadPassword("Password: ")
	if err != nil {
		return err
	}
	confirm, err := a.io.ReadPassword("Confirm password: ")
	if err != nil {
		return err
	}
	if password != confirm {
		return fmt.Errorf("passwords do not match")
	}

	resp, err := a.client.Signup(ctx, api.SignupRequest{
		Username: username,
		FullName: fullName,
		Email:    email,
		Password: password,
	})
	if err != nil {
		return err
	}

	a.io.Printf("Account %q created (id %s). Run 'stance login' to sign in.\n", resp.Username, resp.ID)
	return nil
}

// Login authenticates and stores the returned session locally
func (a *App) Login(ctx context.Context) error {
	username, err := a.io.ReadInput("Username: ")
	if err != nil {
		return err
	}
	password, err := a.io.ReadPassword("Password: ")
	if err != nil {
		return err
	}

	resp, err := a.client.Login(ctx, api.LoginRequest{
		Username: username,
		Password: password,
	})
	if err != nil {
		return err
	}

	err = a.sessions.Save(ctx, &session.Session{
		Username:     username,
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		ExpiresAt:    time.Now().Add(time.Duration(resp.ExpiresIn) * time.Second),
	})
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	a.io.Printf("Logged in as %q.\n", username)
	return nil
}

// Whoami shows the profile of the logged-in account
func (a *App) Whoami(ctx context.Context) error {
	sess, err := a.currentSession(ctx)
	if err != nil {
		return err
	}

	user, err := a.client.Me(ctx, sess.AccessToken)
	if err != nil {
		return err
	}

	a.io.Printf("id:        %s\n", user.ID)
	a.io.Printf("username:  %s\n", user.Username)
	if user.FullName != "" {
		a.io.Printf("full name: %s\n", user.FullName)
	}
	if user.Email != "" {
		a.io.Printf("email:     %s\n", user.Email)
	}
	return nil
}

// RefreshSession rotates the stored token pair. The old refresh token is
// dead after this succeeds, so the new pair replaces it immediately.
func (a *App) RefreshSession(ctx context.Context) error {
	sess, err := a.currentSession(ctx)
	if err != nil {
		return err
	}

	resp, err := a.client.Refresh(ctx, sess.RefreshToken)
	if err != nil {
		return err
	}

	sess.AccessToken = resp.AccessToken
	sess.RefreshToken = resp.RefreshToken
	sess.ExpiresAt = time.Now().Add(time.Duration(resp.ExpiresIn) * time.Second)

	if err := a.sessions.Save(ctx, sess); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	a.io.Println("Session refreshed.")
	return nil
}

// Logout revokes the refresh token server-side and deletes the local
// session. The local state is removed even if the server call fails: the
// user asked to be logged out.
func (a *App) Logout(ctx context.Context) error {
	sess, err := a.currentSession(ctx)
	if err != nil {
		return err
	}

	if err := a.client.Logout(ctx, sess.RefreshToken); err != nil {
		a.io.Printf("Warning: server logout failed: %v\n", err)
	}

	if err := a.sessions.Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	a.io.Println("Logged out.")
	return nil
}

// Status shows the local session without calling the server
func (a *App) Status(ctx context.Context) error {
	sess, err := a.sessions.Get(ctx)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			a.io.Println("Not logged in.")
			return nil
		}
		return err
	}

	a.io.Printf("Logged in as %q.\n", sess.Username)
	if time.Now().After(sess.ExpiresAt) {
		a.io.Println("Access token expired; run 'stance refresh'.")
	} else {
		a.io.Printf("Access token valid until %s.\n", sess.ExpiresAt.Format(time.RFC3339))
	}
	return nil
}

func (a *App) currentSession(ctx context.Context) (*session.Session, error) {
	sess, err := a.sessions.Get(ctx)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			return nil, fmt.Errorf("not logged in; run 'stance login' first")
		}
		return nil, err
	}
	return sess, nil
}
