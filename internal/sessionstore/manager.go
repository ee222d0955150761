package sessionstore

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/fivetwenty-io/glpi/internal/constants"
	"github.com/fivetwenty-io/glpi/pkg/glpi"
)

// Manager binds one profile of a Store to a client session.
type Manager struct {
	store   Store
	profile string
	logger  glpi.Logger
	mutex   sync.Mutex
	current *Session
}

// NewManager creates a manager for profile. logger may be nil.
func NewManager(store Store, profile string, logger glpi.Logger) *Manager {
	return &Manager{store: store, profile: profile, logger: logger}
}

// Profile returns the managed profile name.
func (m *Manager) Profile() string {
	return m.profile
}

// Current returns the session last loaded or saved, if any.
func (m *Manager) Current() *Session {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	return m.current
}

// Restore loads the stored session and hands it to client.
func (m *Manager) Restore(ctx context.Context, client glpi.SessionClient) (*Session, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	session, err := m.store.Load(ctx, m.profile)
	if err != nil {
		return nil, err
	}

	if session.SessionToken == "" {
		return nil, fmt.Errorf("profile '%s': %w", m.profile, constants.ErrNoSessionStored)
	}

	client.RestoreSession(session.State())
	m.current = session

	return session, nil
}

// Persist saves the client's current session under the profile.
func (m *Manager) Persist(ctx context.Context, client glpi.SessionClient, endpoint, username string) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	session := NewSession(endpoint, username, client.Session())
	if m.current != nil && m.current.SessionToken == session.SessionToken {
		session.CreatedAt = m.current.CreatedAt
	}

	err := m.store.Save(ctx, m.profile, session)
	if err != nil {
		return fmt.Errorf("failed to persist session: %w", err)
	}

	m.current = session

	return nil
}

// Forget removes the stored session.
func (m *Manager) Forget(ctx context.Context) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.current = nil

	err := m.store.Delete(ctx, m.profile)
	if err != nil {
		return fmt.Errorf("failed to forget session: %w", err)
	}

	return nil
}

// InvalidationInterceptor forgets the stored session as soon as the server
// reports its token invalid, so the next command asks for a new login.
func (m *Manager) InvalidationInterceptor() glpi.ResponseInterceptor {
	return func(ctx context.Context, req *glpi.Request, resp *glpi.Response, _ error) error {
		if resp == nil || resp.IsSuccess() || req.Sessionless {
			return nil
		}

		code, message, ok := glpi.ParseErrorBody(resp.Body)
		if !ok || code != glpi.ErrorCodeSessionTokenInvalid {
			return nil
		}

		forgetCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), constants.ShortHTTPTimeout)
		defer cancel()

		err := m.Forget(forgetCtx)
		if err != nil && !errors.Is(err, constants.ErrSessionNotFound) {
			m.warn("Failed to forget invalid session", map[string]interface{}{"profile": m.profile, "error": err.Error()})

			return err
		}

		m.warn("Stored session rejected by server", map[string]interface{}{
			"profile":  m.profile,
			"message":  message,
			"endpoint": req.Endpoint,
			"at":       time.Now().UTC().Format(time.RFC3339),
		})

		return nil
	}
}

func (m *Manager) warn(msg string, fields map[string]interface{}) {
	if m.logger != nil {
		m.logger.Warn(msg, fields)
	}
}
