package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

// State is the session lifecycle: a Manager starts Loading, moves to Ready
// or Unauthenticated once the persisted session is resolved, and ends
// Terminated after sign-out.
type State int

const (
	StateLoading State = iota
	StateReady
	StateUnauthenticated
	StateTerminated
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateUnauthenticated:
		return "unauthenticated"
	case StateTerminated:
		return "terminated"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Manager owns the process's session: it restores a persisted session at
// startup, refreshes tokens as they approach expiry, and persists every
// change. It is passed explicitly to the components that need identity and
// serves as the storage client's token source.
type Manager struct {
	client *Client
	path   string

	mu      sync.Mutex
	state   State
	session *Session
}

// NewManager creates a Manager persisting its session at path. The manager
// starts in StateLoading; call Load to resolve it.
func NewManager(client *Client, path string) *Manager {
	return &Manager{client: client, path: path, state: StateLoading}
}

// Load restores the persisted session, refreshing it if the access token
// has expired. A missing or unusable session resolves to
// StateUnauthenticated; a corrupt session file is an error.
func (m *Manager) Load(ctx context.Context) (State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	data, err := os.ReadFile(m.path)
	if errors.Is(err, fs.ErrNotExist) {
		m.state = StateUnauthenticated
		return m.state, nil
	}
	if err != nil {
		return m.state, fmt.Errorf("failed to read session file: %w", err)
	}

	var session Session
	if err := json.Unmarshal(data, &session); err != nil {
		return m.state, fmt.Errorf("failed to parse session file: %w", err)
	}

	if session.Expired() {
		refreshed, err := m.client.Refresh(ctx, session.RefreshToken)
		if err != nil {
			// Refresh token revoked or expired; the user signs in again.
			slog.Info("Persisted session could not be refreshed", "error", err)
			m.state = StateUnauthenticated
			m.session = nil
			m.removeLocked()
			return m.state, nil
		}
		session = *refreshed
		if err := m.persistLocked(&session); err != nil {
			return m.state, err
		}
	}

	m.session = &session
	m.state = StateReady
	return m.state, nil
}

// SignUp registers a new account and stores the resulting session.
func (m *Manager) SignUp(ctx context.Context, email, password, name string) (Identity, error) {
	session, err := m.client.SignUp(ctx, email, password, name)
	if err != nil {
		return Identity{}, err
	}
	return m.adopt(session)
}

// SignIn signs in with email and password and stores the resulting session.
func (m *Manager) SignIn(ctx context.Context, email, password string) (Identity, error) {
	session, err := m.client.SignIn(ctx, email, password)
	if err != nil {
		return Identity{}, err
	}
	return m.adopt(session)
}

// SignOut revokes the session on the collaborator, removes the persisted
// copy, and terminates the manager. Revocation failure still tears down
// local state; the tokens expire on their own.
func (m *Manager) SignOut(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.session != nil {
		if err := m.client.SignOut(ctx, m.session.AccessToken); err != nil {
			slog.Warn("Sign-out revocation failed", "error", err)
		}
	}
	m.session = nil
	m.state = StateTerminated
	m.removeLocked()
	return nil
}

// ResetPassword delegates password recovery to the collaborator.
func (m *Manager) ResetPassword(ctx context.Context, email string) error {
	return m.client.ResetPassword(ctx, email)
}

// State returns the current lifecycle state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Identity returns the signed-in identity, or ErrNotSignedIn.
func (m *Manager) Identity() (Identity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != StateReady || m.session == nil {
		return Identity{}, ErrNotSignedIn
	}
	return m.session.Identity(), nil
}

// AccessToken implements the storage client's token source, refreshing the
// session first when it is close to expiry. The caller's context bounds the
// refresh round trip.
func (m *Manager) AccessToken(ctx context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != StateReady || m.session == nil {
		return "", ErrNotSignedIn
	}

	if m.session.Expired() {
		refreshed, err := m.client.Refresh(ctx, m.session.RefreshToken)
		if err != nil {
			return "", fmt.Errorf("failed to refresh session: %w", err)
		}
		m.session = refreshed
		if err := m.persistLocked(refreshed); err != nil {
			return "", err
		}
	}
	return m.session.AccessToken, nil
}

func (m *Manager) adopt(session *Session) (Identity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.session = session
	m.state = StateReady
	if err := m.persistLocked(session); err != nil {
		return Identity{}, err
	}
	return session.Identity(), nil
}

// persistLocked writes the session to disk, owner-readable only since it
// holds live tokens. Callers hold m.mu.
func (m *Manager) persistLocked(session *Session) error {
	if err := os.MkdirAll(filepath.Dir(m.path), 0700); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}
	data, err := json.MarshalIndent(session, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	if err := os.WriteFile(m.path, data, 0600); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}
	return nil
}

func (m *Manager) removeLocked() {
	if err := os.Remove(m.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("Failed to remove session file", "path", m.path, "error", err)
	}
}
