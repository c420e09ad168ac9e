package keyring

import (
	"encoding/hex"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/zalando/go-keyring"
	"golang.org/x/crypto/blake2b"

	"github.com/julianstephens/habitual/internal/constants"
)

var (
	// ErrNotFound is returned when no session is stored in the keyring
	ErrNotFound = errors.New("session not found in keyring")
	// ErrKeyringUnavailable is returned when the OS keyring is not available
	ErrKeyringUnavailable = errors.New("OS keyring is not available")
)

// SessionUser returns the keyring user under which the session for dataDir
// is stored. Each data directory gets its own entry.
func SessionUser(dataDir string) string {
	if abs, err := filepath.Abs(dataDir); err == nil {
		dataDir = abs
	}
	sum := blake2b.Sum256([]byte(filepath.Clean(dataDir)))
	return constants.DefaultKeyringUser + "-" + hex.EncodeToString(sum[:8])
}

// GetSessionEmail retrieves the signed-in email stored under user.
// Returns ErrNotFound if no session is stored.
func GetSessionEmail(user string) (string, error) {
	email, err := keyring.Get(constants.AppName, user)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("%w: %v", ErrKeyringUnavailable, err)
	}
	return email, nil
}

// SetSessionEmail stores the signed-in email under user.
func SetSessionEmail(user, email string) error {
	if email == "" {
		return errors.New("session email cannot be empty")
	}
	if err := keyring.Set(constants.AppName, user, email); err != nil {
		return fmt.Errorf("failed to store session in keyring: %w", err)
	}
	return nil
}

// DeleteSessionEmail removes the signed-in email stored under user.
func DeleteSessionEmail(user string) error {
	err := keyring.Delete(constants.AppName, user)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete session from keyring: %w", err)
	}
	return nil
}

// IsAvailable checks if the OS keyring is available on the current system.
// This is a best-effort check and may not catch all failure scenarios.
func IsAvailable() bool {
	_, err := keyring.Get(constants.AppName, "test-availability")
	return err == nil || errors.Is(err, keyring.ErrNotFound)
}
