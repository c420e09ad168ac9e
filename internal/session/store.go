package session

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/julianstephens/habitual/internal/constants"
	"github.com/julianstephens/habitual/internal/keyring"
	"github.com/julianstephens/habitual/internal/logger"
	"github.com/julianstephens/habitual/internal/storage"
)

// SessionStore remembers which account is signed in between runs.
// Get returns "" when nobody is signed in.
type SessionStore interface {
	Get() (string, error)
	Set(email string) error
	Clear() error
}

// NewSessionStore prefers the OS keyring and falls back to a file in dataDir
// when no keyring is available (headless machines, CI).
func NewSessionStore(dataDir string) SessionStore {
	if keyring.IsAvailable() {
		return NewKeyringSession(dataDir)
	}
	logger.Debug("OS keyring unavailable, remembering session in a file", "dir", dataDir)
	return NewFileSession(filepath.Join(dataDir, constants.SessionFileName))
}

// KeyringSession stores the signed-in email in the OS keyring, keyed by data directory.
type KeyringSession struct {
	user string
}

func NewKeyringSession(dataDir string) KeyringSession {
	return KeyringSession{user: keyring.SessionUser(dataDir)}
}

func (k KeyringSession) Get() (string, error) {
	email, err := keyring.GetSessionEmail(k.user)
	if errors.Is(err, keyring.ErrNotFound) {
		return "", nil
	}
	return email, err
}

func (k KeyringSession) Set(email string) error {
	return keyring.SetSessionEmail(k.user, email)
}

func (k KeyringSession) Clear() error {
	err := keyring.DeleteSessionEmail(k.user)
	if errors.Is(err, keyring.ErrNotFound) {
		return nil
	}
	return err
}

// FileSession stores the signed-in email in a 0600 file.
type FileSession struct {
	path string
}

func NewFileSession(path string) *FileSession {
	return &FileSession{path: path}
}

func (f *FileSession) Get() (string, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("failed to read session: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

func (f *FileSession) Set(email string) error {
	return storage.WriteFileAtomic(f.path, []byte(email+"\n"), 0600)
}

func (f *FileSession) Clear() error {
	if err := os.Remove(f.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}
