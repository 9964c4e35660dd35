package cli

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stancehq/stance/internal/client/session"
	"github.com/stancehq/stance/pkg/api"
)

// scriptedIO feeds canned answers to prompts and records all output
type scriptedIO struct {
	inputs    []string
	passwords []string
	output    strings.Builder
}

func (s *scriptedIO) Println(a ...any) {
	s.output.WriteString(fmt.Sprintln(a...))
}

func (s *scriptedIO) Printf(format string, a ...any) {
	fmt.Fprintf(&s.output, format, a...)
}

func (s *scriptedIO) ReadInput(prompt string) (string, error) {
	if len(s.inputs) == 0 {
		return "", fmt.Errorf("no scripted input for prompt %q", prompt)
	}
	next := s.inputs[0]
	s.inputs = s.inputs[1:]
	return next, nil
}

func (s *scriptedIO) ReadPassword(prompt string) (string, error) {
	if len(s.passwords) == 0 {
		return "", fmt.Errorf("no scripted password for prompt %q", prompt)
	}
	next := s.passwords[0]
	s.passwords = s.passwords[1:]
	return next, nil
}

// fakeClient records calls and returns canned responses
type fakeClient struct {
	signupReq  *api.SignupRequest
	loginReq   *api.LoginRequest
	refreshed  string
	loggedOut  string
	meToken    string
	loginErr   error
	logoutErr  error
	tokenResp  api.TokenResponse
	userResp   api.UserResponse
	signupResp api.SignupResponse
}

func (f *fakeClient) Signup(ctx context.Context, req api.SignupRequest) (*api.SignupResponse, error) {
	f.signupReq = &req
	return &f.signupResp, nil
}

func (f *fakeClient) Login(ctx context.Context, req api.LoginRequest) (*api.TokenResponse, error) {
	f.loginReq = &req
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	return &f.tokenResp, nil
}

func (f *fakeClient) Refresh(ctx context.Context, refreshToken string) (*api.TokenResponse, error) {
	f.refreshed = refreshToken
	return &f.tokenResp, nil
}

func (f *fakeClient) Logout(ctx context.Context, refreshToken string) error {
	f.loggedOut = refreshToken
	return f.logoutErr
}

func (f *fakeClient) Me(ctx context.Context, accessToken string) (*api.UserResponse, error) {
	f.meToken = accessToken
	return &f.userResp, nil
}

// memoryStore is an in-memory SessionStore
type memoryStore struct {
	session *session.Session
}

func (m *memoryStore) Save(ctx context.Context, s *session.Session) error {
	copied := *s
	m.session = &copied
	return nil
}

func (m *memoryStore) Get(ctx context.Context) (*session.Session, error) {
	if m.session == nil {
		return nil, session.ErrNotFound
	}
	copied := *m.session
	return &copied, nil
}

func (m *memoryStore) Delete(ctx context.Context) error {
	m.session = nil
	return nil
}

func TestApp_Signup(t *testing.T) {
	io := &scriptedIO{
		inputs:    []string{"alice", "Alice A.", "alice@example.com"},
		passwords: []string{"password-one", "password-one"},
	}
	client := &fakeClient{signupResp: api.SignupResponse{ID: "id-1", Username: "alice"}}
	store := &memoryStore{}
	app := NewApp(io, client, store)

	require.NoError(t, app.Signup(context.Background()))

	require.NotNil(t, client.signupReq)
	assert.Equal(t, "alice", client.signupReq.Username)
	assert.Equal(t, "Alice A.", client.signupReq.FullName)
	assert.Equal(t, "alice@example.com", client.signupReq.Email)
	assert.Equal(t, "password-one", client.signupReq.Password)

	// signup never logs in
	assert.Nil(t, store.session)
	assert.Contains(t, io.output.String(), "created")
}

func TestApp_Signup_PasswordMismatch(t *testing.T) {
	io := &scriptedIO{
		inputs:    []string{"alice", "", "alice@example.com"},
		passwords: []string{"password-one", "password-two"},
	}
	client := &fakeClient{}
	app := NewApp(io, client, &memoryStore{})

	err := app.Signup(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "do not match")
	assert.Nil(t, client.signupReq, "no request may be sent")
}

func TestApp_Login(t *testing.T) {
	io := &scriptedIO{
		inputs:    []string{"alice"},
		passwords: []string{"password-one"},
	}
	client := &fakeClient{tokenResp: api.TokenResponse{
		AccessToken:  "access",
		RefreshToken: "refresh",
		ExpiresIn:    900,
	}}
	store := &memoryStore{}
	app := NewApp(io, client, store)

	require.NoError(t, app.Login(context.Background()))

	require.NotNil(t, store.session)
	assert.Equal(t, "alice", store.session.Username)
	assert.Equal(t, "access", store.session.AccessToken)
	assert.Equal(t, "refresh", store.session.RefreshToken)
	assert.WithinDuration(t, time.Now().Add(900*time.Second), store.session.ExpiresAt, 5*time.Second)
}

func TestApp_Login_ServerRejection(t *testing.T) {
	io := &scriptedIO{inputs: []string{"alice"}, passwords: []string{"wrong"}}
	client := &fakeClient{loginErr: fmt.Errorf("server returned 401: invalid credentials")}
	store := &memoryStore{}
	app := NewApp(io, client, store)

	require.Error(t, app.Login(context.Background()))
	assert.Nil(t, store.session)
}

func TestApp_Whoami(t *testing.T) {
	io := &scriptedIO{}
	client := &fakeClient{userResp: api.UserResponse{
		ID:       "id-1",
		Username: "alice",
		Email:    "alice@example.com",
	}}
	store := &memoryStore{session: &session.Session{Username: "alice", AccessToken: "access"}}
	app := NewApp(io, client, store)

	require.NoError(t, app.Whoami(context.Background()))

	assert.Equal(t, "access", client.meToken)
	assert.Contains(t, io.output.String(), "alice")
	assert.Contains(t, io.output.String(), "alice@example.com")
}

func TestApp_Whoami_NotLoggedIn(t *testing.T) {
	app := NewApp(&scriptedIO{}, &fakeClient{}, &memoryStore{})

	err := app.Whoami(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not logged in")
}

func TestApp_RefreshSession(t *testing.T) {
	io := &scriptedIO{}
	client := &fakeClient{tokenResp: api.TokenResponse{
		AccessToken:  "new-access",
		RefreshToken: "new-refresh",
		ExpiresIn:    900,
	}}
	store := &memoryStore{session: &session.Session{
		Username:     "alice",
		AccessToken:  "old-access",
		RefreshToken: "old-refresh",
	}}
	app := NewApp(io, client, store)

	require.NoError(t, app.RefreshSession(context.Background()))

	assert.Equal(t, "old-refresh", client.refreshed)
	assert.Equal(t, "new-access", store.session.AccessToken)
	assert.Equal(t, "new-refresh", store.session.RefreshToken)
	assert.Equal(t, "alice", store.session.Username, "username survives rotation")
}

func TestApp_Logout(t *testing.T) {
	io := &scriptedIO{}
	client := &fakeClient{}
	store := &memoryStore{session: &session.Session{Username: "alice", RefreshToken: "refresh"}}
	app := NewApp(io, client, store)

	require.NoError(t, app.Logout(context.Background()))

	assert.Equal(t, "refresh", client.loggedOut)
	assert.Nil(t, store.session)
}

func TestApp_Logout_ServerFailureStillClearsLocal(t *testing.T) {
	io := &scriptedIO{}
	client := &fakeClient{logoutErr: fmt.Errorf("connection refused")}
	store := &memoryStore{session: &session.Session{Username: "alice", RefreshToken: "refresh"}}
	app := NewApp(io, client, store)

	require.NoError(t, app.Logout(context.Background()))

	assert.Nil(t, store.session, "local session is removed regardless")
	assert.Contains(t, io.output.String(), "Warning")
}

func TestApp_Status(t *testing.T) {
	t.Run("not logged in", func(t *testing.T) {
		io := &scriptedIO{}
		app := NewApp(io, &fakeClient{}, &memoryStore{})

		require.NoError(t, app.Status(context.Background()))
		assert.Contains(t, io.output.String(), "Not logged in")
	})

	t.Run("valid session", func(t *testing.T) {
		io := &scriptedIO{}
		store := &memoryStore{session: &session.Session{
			Username:  "alice",
			ExpiresAt: time.Now().Add(10 * time.Minute),
		}}
		app := NewApp(io, &fakeClient{}, store)

		require.NoError(t, app.Status(context.Background()))
		assert.Contains(t, io.output.String(), `Logged in as "alice"`)
		assert.Contains(t, io.output.String(), "valid until")
	})

	t.Run("expired session", func(t *testing.T) {
		io := &scriptedIO{}
		store := &memoryStore{session: &session.Session{
			Username:  "alice",
			ExpiresAt: time.Now().Add(-time.Minute),
		}}
		app := NewApp(io, &fakeClient{}, store)

		require.NoError(t, app.Status(context.Background()))
		assert.Contains(t, io.output.String(), "expired")
	})
}

func TestApp_Run_UnknownCommand(t *testing.T) {
	io := &scriptedIO{}
	app := NewApp(io, &fakeClient{}, &memoryStore{})

	err := app.Run(context.Background(), "frobnicate")
	require.Error(t, err)
	assert.Contains(t, io.output.String(), "Usage")
}
