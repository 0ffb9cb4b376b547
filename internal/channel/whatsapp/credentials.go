package whatsapp

import (
	"fmt"
	"os"
	"path/filepath"
)

// CredentialStore persists the opaque session credential blob across
// process restarts.
type CredentialStore interface {
	// Load returns the stored blob, or (nil, nil) when none exists.
	Load() ([]byte, error)

	// Save overwrites the stored blob.
	Save(blob []byte) error
}

// FileCredentialStore keeps the credential blob in a single file.
type FileCredentialStore struct {
	path string
}

// NewFileCredentialStore creates a file-backed credential store at path.
func NewFileCredentialStore(path string) *FileCredentialStore {
	return &FileCredentialStore{path: path}
}

func (s *FileCredentialStore) Load() ([]byte, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading credentials: %w", err)
	}
	return data, nil
}

func (s *FileCredentialStore) Save(blob []byte) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("creating credentials dir: %w", err)
	}
	if err := os.WriteFile(s.path, blob, 0o600); err != nil {
		return fmt.Errorf("writing credentials: %w", err)
	}
	return nil
}
