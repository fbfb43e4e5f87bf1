// Package auth persists client credentials between processes.
package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/fivetwenty-io/pocketbase-client/internal/constants"
	"github.com/fivetwenty-io/pocketbase-client/pkg/pocketbase"
)

// storedCredential is the on-disk form of a credential.
type storedCredential struct {
	Token   string    `yaml:"token"`
	Kind    string    `yaml:"kind"`
	Model   string    `yaml:"model,omitempty"`
	SavedAt time.Time `yaml:"saved_at"`
}

// FileStorage implements pocketbase.Storage on a YAML file.
type FileStorage struct {
	fs   afero.Fs
	path string
	mu   sync.Mutex
}

// NewFileStorage creates a storage writing to path on fs.
func NewFileStorage(fs afero.Fs, path string) *FileStorage {
	return &FileStorage{fs: fs, path: path}
}

// NewOSFileStorage creates a storage on the OS filesystem at the default
// location, ~/.pocketbase/auth.yml.
func NewOSFileStorage() (*FileStorage, error) {
	path, err := DefaultCredentialPath()
	if err != nil {
		return nil, err
	}

	return NewFileStorage(afero.NewOsFs(), path), nil
}

// DefaultCredentialPath returns ~/.pocketbase/auth.yml.
func DefaultCredentialPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("finding home directory: %w", err)
	}

	return filepath.Join(home, constants.CredentialDirName, constants.CredentialFileName), nil
}

// Path returns the file the storage writes.
func (s *FileStorage) Path() string {
	return s.path
}

// Load implements pocketbase.Storage.Load.
func (s *FileStorage) Load() (*pocketbase.Credential, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := afero.ReadFile(s.fs, s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}

		return nil, fmt.Errorf("reading credential file: %w", err)
	}

	var stored storedCredential

	err = yaml.Unmarshal(data, &stored)
	if err != nil {
		return nil, fmt.Errorf("parsing credential file: %w", err)
	}

	if stored.Token == "" {
		return nil, nil
	}

	cred := &pocketbase.Credential{Token: stored.Token}

	err = cred.Kind.UnmarshalText([]byte(stored.Kind))
	if err != nil {
		return nil, fmt.Errorf("parsing credential file: %w", err)
	}

	if stored.Model != "" {
		if !json.Valid([]byte(stored.Model)) {
			return nil, fmt.Errorf("parsing credential file: %w", constants.ErrInvalidModel)
		}

		cred.Model = json.RawMessage(stored.Model)
	}

	return cred, nil
}

// Save implements pocketbase.Storage.Save. The file is replaced atomically.
func (s *FileStorage) Save(cred pocketbase.Credential) error {
	kind, err := cred.Kind.MarshalText()
	if err != nil {
		return fmt.Errorf("encoding credential: %w", err)
	}

	data, err := yaml.Marshal(storedCredential{
		Token:   cred.Token,
		Kind:    string(kind),
		Model:   string(cred.Model),
		SavedAt: time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("encoding credential: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	err = s.fs.MkdirAll(filepath.Dir(s.path), constants.ConfigDirPerm)
	if err != nil {
		return fmt.Errorf("creating credential directory: %w", err)
	}

	tmpPath := s.path + ".tmp"

	err = afero.WriteFile(s.fs, tmpPath, data, constants.ConfigFilePerm)
	if err != nil {
		return fmt.Errorf("writing credential file: %w", err)
	}

	err = s.fs.Rename(tmpPath, s.path)
	if err != nil {
		return fmt.Errorf("replacing credential file: %w", err)
	}

	return nil
}

// Clear implements pocketbase.Storage.Clear.
func (s *FileStorage) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.fs.Remove(s.path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("removing credential file: %w", err)
	}

	return nil
}
