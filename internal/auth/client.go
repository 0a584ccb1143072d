// Package auth talks to the hosted backend's identity collaborator (GoTrue
// convention): sign-up, password sign-in, token refresh, sign-out, and
// password recovery. It also owns the session lifecycle; see Manager.
//
// The collaborator signs and verifies tokens; this client only carries them
// and reads the identity claims out of the access token.
package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Identity is the stable identity of a signed-in user.
type Identity struct {
	ID    string
	Email string
}

// Session holds the tokens and identity of one signed-in user.
type Session struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
	UserID       string    `json:"user_id"`
	Email        string    `json:"email"`
}

// Identity returns the session's identity.
func (s *Session) Identity() Identity {
	return Identity{ID: s.UserID, Email: s.Email}
}

// Expired reports whether the access token expires within the grace window.
// Refreshing slightly early avoids issuing a storage request that dies with
// an invalid-token error mid-flight.
func (s *Session) Expired() bool {
	return time.Now().After(s.ExpiresAt.Add(-time.Minute))
}

// Client issues requests to the identity collaborator.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates a Client for the project at baseURL (without the
// /auth/v1 suffix).
func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

// SignUp registers a new account and returns the signed-in session.
// The display name travels in the identity collaborator's user metadata.
func (c *Client) SignUp(ctx context.Context, email, password, name string) (*Session, error) {
	body := map[string]any{
		"email":    email,
		"password": password,
		"data":     map[string]string{"name": name},
	}
	return c.requestSession(ctx, "/auth/v1/signup", body)
}

// SignIn exchanges email and password for a session.
func (c *Client) SignIn(ctx context.Context, email, password string) (*Session, error) {
	body := map[string]string{"email": email, "password": password}
	return c.requestSession(ctx, "/auth/v1/token?grant_type=password", body)
}

// Refresh exchanges a refresh token for a fresh session.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*Session, error) {
	body := map[string]string{"refresh_token": refreshToken}
	return c.requestSession(ctx, "/auth/v1/token?grant_type=refresh_token", body)
}

// SignOut revokes the session's tokens on the collaborator.
func (c *Client) SignOut(ctx context.Context, accessToken string) error {
	resp, err := c.post(ctx, "/auth/v1/logout", nil, accessToken)
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}

// ResetPassword asks the collaborator to send a recovery email. The reset
// itself is completed out of band.
func (c *Client) ResetPassword(ctx context.Context, email string) error {
	resp, err := c.post(ctx, "/auth/v1/recover", map[string]string{"email": email}, "")
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}

func (c *Client) requestSession(ctx context.Context, path string, body any) (*Session, error) {
	resp, err := c.post(ctx, path, body, "")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var tr tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return nil, fmt.Errorf("failed to decode session response: %w", err)
	}
	if tr.AccessToken == "" {
		return nil, fmt.Errorf("session response carried no access token")
	}

	identity, err := identityFromToken(tr.AccessToken)
	if err != nil {
		return nil, err
	}

	return &Session{
		AccessToken:  tr.AccessToken,
		RefreshToken: tr.RefreshToken,
		ExpiresAt:    time.Now().Add(time.Duration(tr.ExpiresIn) * time.Second),
		UserID:       identity.ID,
		Email:        identity.Email,
	}, nil
}

func (c *Client) post(ctx context.Context, path string, body any, bearer string) (*http.Response, error) {
	var reqBody io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("X-Request-Id", uuid.NewString())
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("auth request failed: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		defer resp.Body.Close()
		return nil, decodeAuthError(resp)
	}
	return resp, nil
}

// identityFromToken reads the sub and email claims out of the access token.
// The signature is not verified here: the HMAC secret lives on the
// collaborator, and every request carrying the token is verified there.
func identityFromToken(accessToken string) (Identity, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(accessToken, claims); err != nil {
		return Identity{}, fmt.Errorf("failed to parse access token: %w", err)
	}

	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return Identity{}, fmt.Errorf("access token carries no subject")
	}
	email, _ := claims["email"].(string)

	return Identity{ID: sub, Email: email}, nil
}
