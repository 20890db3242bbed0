package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/adnalow/next-level/internal/config"
)

// AuthClient handles communication with the external auth provider. The
// provider owns accounts and sessions; this backend only proxies sign-up and
// sign-in and verifies the tokens it issues.
type AuthClient struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

// AuthUser is the provider's view of an account.
type AuthUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Session is an authenticated session returned by the provider.
type Session struct {
	AccessToken string   `json:"access_token"`
	TokenType   string   `json:"token_type"`
	ExpiresIn   int      `json:"expires_in"`
	User        AuthUser `json:"user"`
}

// NewAuthClient creates a new auth provider client
func NewAuthClient(cfg *config.AuthProviderConfig) *AuthClient {
	return &AuthClient{
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
	}
}

// SignUp registers a new account with the provider.
func (c *AuthClient) SignUp(ctx context.Context, email, password string) (*Session, error) {
	return c.postCredentials(ctx, "/signup", email, password)
}

// SignIn exchanges credentials for a session.
func (c *AuthClient) SignIn(ctx context.Context, email, password string) (*Session, error) {
	return c.postCredentials(ctx, "/token?grant_type=password", email, password)
}

func (c *AuthClient) postCredentials(ctx context.Context, path, email, password string) (*Session, error) {
	reqBody := map[string]string{
		"email":    email,
		"password": password,
	}
	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("apikey", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("auth provider error (status %d): %s", resp.StatusCode, string(respBody))
	}

	var session Session
	if err := json.Unmarshal(respBody, &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	if session.AccessToken == "" {
		return nil, fmt.Errorf("no access token in session")
	}
	return &session, nil
}

// GetUser looks up the account behind an access token.
func (c *AuthClient) GetUser(ctx context.Context, accessToken string) (*AuthUser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/user", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	if c.apiKey != "" {
		req.Header.Set("apikey", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("auth provider error (status %d): %s", resp.StatusCode, string(respBody))
	}

	var user AuthUser
	if err := json.Unmarshal(respBody, &user); err != nil {
		return nil, fmt.Errorf("failed to unmarshal user: %w", err)
	}
	return &user, nil
}

// IsConfigured returns true if the client has valid configuration
func (c *AuthClient) IsConfigured() bool {
	return c.baseURL != ""
}
