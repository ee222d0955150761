package sessionstore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/fivetwenty-io/glpi/internal/constants"
)

// sessionsFile is the on-disk layout of the file backend.
type sessionsFile struct {
	Sessions map[string]*Session `yaml:"sessions"`
}

// FileStore keeps every profile's session in one YAML file.
type FileStore struct {
	path  string
	mutex sync.Mutex
}

var _ Store = (*FileStore)(nil)

// DefaultSessionsPath returns $HOME/.glpi/sessions.yml.
func DefaultSessionsPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	return filepath.Join(home, ".glpi", "sessions.yml"), nil
}

// NewFileStore creates a file store at path, or at DefaultSessionsPath when empty.
func NewFileStore(path string) (*FileStore, error) {
	if path == "" {
		defaultPath, err := DefaultSessionsPath()
		if err != nil {
			return nil, err
		}

		path = defaultPath
	}

	return &FileStore{path: path}, nil
}

// Path returns the sessions file location.
func (s *FileStore) Path() string {
	return s.path
}

// Load implements Store.
func (s *FileStore) Load(_ context.Context, profile string) (*Session, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	file, err := s.read()
	if err != nil {
		return nil, err
	}

	session, ok := file.Sessions[profile]
	if !ok || session == nil {
		return nil, fmt.Errorf("profile '%s': %w", profile, constants.ErrSessionNotFound)
	}

	return session, nil
}

// Save implements Store.
func (s *FileStore) Save(_ context.Context, profile string, session *Session) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	file, err := s.read()
	if err != nil {
		return err
	}

	file.Sessions[profile] = session

	return s.write(file)
}

// Delete implements Store.
func (s *FileStore) Delete(_ context.Context, profile string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	file, err := s.read()
	if err != nil {
		return err
	}

	if _, ok := file.Sessions[profile]; !ok {
		return nil
	}

	delete(file.Sessions, profile)

	return s.write(file)
}

// Close implements Store.
func (s *FileStore) Close() error {
	return nil
}

func (s *FileStore) read() (*sessionsFile, error) {
	file := &sessionsFile{Sessions: make(map[string]*Session)}

	// #nosec G304 -- path comes from the user's own configuration
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return file, nil
	}

	if err != nil {
		return nil, fmt.Errorf("failed to read sessions file: %w", err)
	}

	err = yaml.Unmarshal(data, file)
	if err != nil {
		return nil, fmt.Errorf("failed to parse sessions file: %w", err)
	}

	if file.Sessions == nil {
		file.Sessions = make(map[string]*Session)
	}

	return file, nil
}

func (s *FileStore) write(file *sessionsFile) error {
	err := os.MkdirAll(filepath.Dir(s.path), constants.ConfigDirPerm)
	if err != nil {
		return fmt.Errorf("failed to create sessions directory: %w", err)
	}

	data, err := yaml.Marshal(file)
	if err != nil {
		return fmt.Errorf("failed to marshal sessions: %w", err)
	}

	err = os.WriteFile(s.path, data, constants.ConfigFilePerm)
	if err != nil {
		return fmt.Errorf("failed to write sessions file: %w", err)
	}

	return nil
}
