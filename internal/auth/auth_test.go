package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// signToken builds an access token the way the collaborator would; the
// client never verifies the signature, only reads the claims.
func signToken(t *testing.T, userID, email string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   userID,
		"email": email,
		"exp":   time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return signed
}

// fakeAuthServer is a minimal identity collaborator: one known account,
// refresh accepted for the issued refresh token.
func fakeAuthServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()

	writeSession := func(w http.ResponseWriter) {
		json.NewEncoder(w).Encode(map[string]any{
			"access_token":  signToken(t, "user-1", "asha@example.com"),
			"refresh_token": "refresh-1",
			"expires_in":    3600,
		})
	}

	mux.HandleFunc("/auth/v1/token", func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("grant_type") {
		case "password":
			var creds struct{ Email, Password string }
			json.NewDecoder(r.Body).Decode(&creds)
			if creds.Email != "asha@example.com" || creds.Password != "hunter2" {
				w.WriteHeader(http.StatusBadRequest)
				w.Write([]byte(`{"error":"invalid_grant","error_description":"Invalid login credentials"}`))
				return
			}
			writeSession(w)
		case "refresh_token":
			var body struct {
				RefreshToken string `json:"refresh_token"`
			}
			json.NewDecoder(r.Body).Decode(&body)
			if body.RefreshToken != "refresh-1" {
				w.WriteHeader(http.StatusBadRequest)
				w.Write([]byte(`{"error":"invalid_grant","error_description":"Invalid Refresh Token"}`))
				return
			}
			writeSession(w)
		default:
			w.WriteHeader(http.StatusBadRequest)
		}
	})
	mux.HandleFunc("/auth/v1/signup", func(w http.ResponseWriter, r *http.Request) {
		writeSession(w)
	})
	mux.HandleFunc("/auth/v1/logout", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") == "" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("/auth/v1/recover", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("{}"))
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	server := fakeAuthServer(t)
	client := NewClient(server.URL, "anon-key", 5*time.Second)
	return NewManager(client, filepath.Join(t.TempDir(), "session.json"))
}

func TestSignInParsesIdentityFromToken(t *testing.T) {
	m := newTestManager(t)

	identity, err := m.SignIn(context.Background(), "asha@example.com", "hunter2")
	if err != nil {
		t.Fatalf("SignIn returned error: %v", err)
	}
	if identity.ID != "user-1" || identity.Email != "asha@example.com" {
		t.Errorf("identity = %+v, want user-1/asha@example.com", identity)
	}
	if m.State() != StateReady {
		t.Errorf("state = %s, want ready", m.State())
	}
}

func TestSignInBadCredentials(t *testing.T) {
	m := newTestManager(t)

	_, err := m.SignIn(context.Background(), "asha@example.com", "wrong")
	var authErr *AuthError
	if !errors.As(err, &authErr) {
		t.Fatalf("error %v is not an AuthError", err)
	}
	if authErr.Status != http.StatusBadRequest || authErr.Message != "Invalid login credentials" {
		t.Errorf("AuthError = %+v, want collaborator's description", authErr)
	}
	if m.State() != StateLoading {
		t.Errorf("state = %s, want still loading after failed sign-in", m.State())
	}
}

func TestSessionPersistsAcrossManagers(t *testing.T) {
	server := fakeAuthServer(t)
	client := NewClient(server.URL, "anon-key", 5*time.Second)
	path := filepath.Join(t.TempDir(), "session.json")

	first := NewManager(client, path)
	if _, err := first.SignIn(context.Background(), "asha@example.com", "hunter2"); err != nil {
		t.Fatalf("SignIn returned error: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("session file not written: %v", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("session file mode = %v, want 0600", info.Mode().Perm())
	}

	second := NewManager(client, path)
	state, err := second.Load(context.Background())
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if state != StateReady {
		t.Fatalf("state after Load = %s, want ready", state)
	}
	identity, err := second.Identity()
	if err != nil {
		t.Fatalf("Identity returned error: %v", err)
	}
	if identity.ID != "user-1" {
		t.Errorf("identity = %+v, want user-1", identity)
	}

	token, err := second.AccessToken(context.Background())
	if err != nil || token == "" {
		t.Errorf("AccessToken = %q, %v; want a token", token, err)
	}
}

func TestLoadWithoutSessionFile(t *testing.T) {
	m := newTestManager(t)

	state, err := m.Load(context.Background())
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if state != StateUnauthenticated {
		t.Errorf("state = %s, want unauthenticated", state)
	}
	if _, err := m.Identity(); !errors.Is(err, ErrNotSignedIn) {
		t.Errorf("Identity error = %v, want ErrNotSignedIn", err)
	}
	if _, err := m.AccessToken(context.Background()); !errors.Is(err, ErrNotSignedIn) {
		t.Errorf("AccessToken error = %v, want ErrNotSignedIn", err)
	}
}

func TestLoadRefreshesExpiredSession(t *testing.T) {
	server := fakeAuthServer(t)
	client := NewClient(server.URL, "anon-key", 5*time.Second)
	path := filepath.Join(t.TempDir(), "session.json")

	// Persist a session whose access token expired an hour ago.
	stale := &Session{
		AccessToken:  signToken(t, "user-1", "asha@example.com"),
		RefreshToken: "refresh-1",
		ExpiresAt:    time.Now().Add(-time.Hour),
		UserID:       "user-1",
		Email:        "asha@example.com",
	}
	data, _ := json.Marshal(stale)
	if err := os.WriteFile(path, data, 0600); err != nil {
		t.Fatal(err)
	}

	m := NewManager(client, path)
	state, err := m.Load(context.Background())
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if state != StateReady {
		t.Fatalf("state = %s, want ready after refresh", state)
	}
}

func TestLoadWithRevokedRefreshToken(t *testing.T) {
	server := fakeAuthServer(t)
	client := NewClient(server.URL, "anon-key", 5*time.Second)
	path := filepath.Join(t.TempDir(), "session.json")

	stale := &Session{
		AccessToken:  signToken(t, "user-1", "asha@example.com"),
		RefreshToken: "revoked",
		ExpiresAt:    time.Now().Add(-time.Hour),
	}
	data, _ := json.Marshal(stale)
	if err := os.WriteFile(path, data, 0600); err != nil {
		t.Fatal(err)
	}

	m := NewManager(client, path)
	state, err := m.Load(context.Background())
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if state != StateUnauthenticated {
		t.Errorf("state = %s, want unauthenticated when refresh fails", state)
	}
	if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
		t.Error("unusable session file should be removed")
	}
}

func TestAccessTokenRefreshHonorsContext(t *testing.T) {
	server := fakeAuthServer(t)
	client := NewClient(server.URL, "anon-key", 5*time.Second)
	path := filepath.Join(t.TempDir(), "session.json")

	m := NewManager(client, path)
	if _, err := m.SignIn(context.Background(), "asha@example.com", "hunter2"); err != nil {
		t.Fatalf("SignIn returned error: %v", err)
	}
	// Force the near-expiry refresh path.
	m.mu.Lock()
	m.session.ExpiresAt = time.Now().Add(-time.Hour)
	m.mu.Unlock()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := m.AccessToken(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("AccessToken with canceled context = %v, want context.Canceled", err)
	}
}

func TestSignOutTerminates(t *testing.T) {
	server := fakeAuthServer(t)
	client := NewClient(server.URL, "anon-key", 5*time.Second)
	path := filepath.Join(t.TempDir(), "session.json")
	m := NewManager(client, path)

	if _, err := m.SignIn(context.Background(), "asha@example.com", "hunter2"); err != nil {
		t.Fatalf("SignIn returned error: %v", err)
	}
	if err := m.SignOut(context.Background()); err != nil {
		t.Fatalf("SignOut returned error: %v", err)
	}
	if m.State() != StateTerminated {
		t.Errorf("state = %s, want terminated", m.State())
	}
	if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
		t.Error("session file should be removed on sign-out")
	}
}
