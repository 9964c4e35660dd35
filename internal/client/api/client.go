// Package api implements the HTTP client for the stance server.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/stancehq/stance/pkg/api"
)

// Client is an HTTP client for the stance auth API
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// StatusError is returned when the server answers with a non-2xx status
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("server returned %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("server returned %d", e.StatusCode)
}

// NewClient creates a new API client for the given base URL
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Signup registers a new account. No tokens are issued; call Login next.
func (c *Client) Signup(ctx context.Context, req api.SignupRequest) (*api.SignupResponse, error) {
	var resp api.SignupResponse
	if err := c.doRequest(ctx, http.MethodPost, "/auth/signup", "", req, &resp); err != nil {
		return nil, fmt.Errorf("signup request failed: %w", err)
	}
	return &resp, nil
}

// Login authenticates and returns a token pair
func (c *Client) Login(ctx context.Context, req api.LoginRequest) (*api.TokenResponse, error) {
	var resp api.TokenResponse
	if err := c.doRequest(ctx, http.MethodPost, "/auth/login", "", req, &resp); err != nil {
		return nil, fmt.Errorf("login request failed: %w", err)
	}
	return &resp, nil
}

// Refresh trades a refresh token for a new token pair. The presented
// token is unusable afterwards, whether or not the response arrives.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*api.TokenResponse, error) {
	var resp api.TokenResponse
	req := api.RefreshRequest{RefreshToken: refreshToken}
	if err := c.doRequest(ctx, http.MethodPost, "/auth/refresh", "", req, &resp); err != nil {
		return nil, fmt.Errorf("refresh request failed: %w", err)
	}
	return &resp, nil
}

// Logout revokes a refresh token server-side
func (c *Client) Logout(ctx context.Context, refreshToken string) error {
	var resp api.LogoutResponse
	req := api.LogoutRequest{RefreshToken: refreshToken}
	if err := c.doRequest(ctx, http.MethodPost, "/auth/logout", "", req, &resp); err != nil {
		return fmt.Errorf("logout request failed: %w", err)
	}
	return nil
}

// Me fetches the authenticated user's own profile
func (c *Client) Me(ctx context.Context, accessToken string) (*api.UserResponse, error) {
	var resp api.UserResponse
	if err := c.doRequest(ctx, http.MethodGet, "/users/me", accessToken, nil, &resp); err != nil {
		return nil, fmt.Errorf("me request failed: %w", err)
	}
	return &resp, nil
}

// doRequest performs one HTTP round trip, JSON in and out
func (c *Client) doRequest(ctx context.Context, method, path, accessToken string, body, result any) error {
	url := c.baseURL + path

	var bodyReader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+accessToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errResp api.ErrorResponse
		message := ""
		if decodeErr := json.NewDecoder(resp.Body).Decode(&errResp); decodeErr == nil {
			message = errResp.Message
		}
		return &StatusError{StatusCode: resp.StatusCode, Message: message}
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}
