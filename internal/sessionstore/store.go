// Package sessionstore persists GLPI sessions between CLI invocations.
//
// Three backends are provided: a YAML file in the user's config directory,
// Redis, and a NATS JetStream key-value bucket. The shared backends let
// several hosts reuse one session token.
package sessionstore

import (
	"context"
	"fmt"
	"time"

	"github.com/fivetwenty-io/glpi/internal/constants"
	"github.com/fivetwenty-io/glpi/pkg/glpi"
)

// Session is the persisted form of a GLPI session.
type Session struct {
	Endpoint     string    `json:"endpoint"             yaml:"endpoint"`
	SessionToken string    `json:"session_token"        yaml:"session_token"`
	AppToken     *string   `json:"app_token,omitempty"  yaml:"app_token,omitempty"`
	Username     string    `json:"username,omitempty"   yaml:"username,omitempty"`
	CreatedAt    time.Time `json:"created_at"           yaml:"created_at"`
	UpdatedAt    time.Time `json:"updated_at,omitempty" yaml:"updated_at,omitempty"`
}

// NewSession captures state for endpoint.
func NewSession(endpoint, username string, state glpi.SessionState) *Session {
	snapshot := state.Clone()
	now := time.Now().UTC()

	return &Session{
		Endpoint:     endpoint,
		SessionToken: snapshot.SessionToken,
		AppToken:     snapshot.AppToken,
		Username:     username,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// State returns the session state to hand to glpi.Client.RestoreSession.
func (s *Session) State() glpi.SessionState {
	return glpi.SessionState{SessionToken: s.SessionToken, AppToken: s.AppToken}.Clone()
}

// Store loads, saves and deletes sessions by profile name.
type Store interface {
	// Load returns constants.ErrSessionNotFound when nothing is stored.
	Load(ctx context.Context, profile string) (*Session, error)
	Save(ctx context.Context, profile string, session *Session) error
	// Delete is a no-op for unknown profiles.
	Delete(ctx context.Context, profile string) error
	Close() error
}

// Config selects and configures a backend.
type Config struct {
	// Kind is one of constants.SessionStoreFile, SessionStoreRedis or SessionStoreNATS.
	Kind string

	// File backend.
	Path string

	// Redis backend.
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// NATS backend.
	NATSURL string
	Bucket  string

	// TTL expires sessions in the shared backends. Zero keeps them forever.
	TTL time.Duration
}

// New opens the backend named by cfg.Kind. An empty kind selects the file backend.
func New(ctx context.Context, cfg Config) (Store, error) {
	switch cfg.Kind {
	case "", constants.SessionStoreFile:
		return NewFileStore(cfg.Path)
	case constants.SessionStoreRedis:
		return NewRedisStore(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, WithTTL(cfg.TTL)), nil
	case constants.SessionStoreNATS:
		return NewNATSStore(ctx, cfg.NATSURL, cfg.Bucket, cfg.TTL)
	default:
		return nil, fmt.Errorf("%w: %s", constants.ErrUnknownSessionStore, cfg.Kind)
	}
}
