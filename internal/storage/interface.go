package storage

import (
	"fmt"
	"path/filepath"

	"github.com/julianstephens/habitual/internal/constants"
)

// Provider is durable storage for the full habit snapshot. Snapshots are
// loaded wholesale at startup and rewritten wholesale on every save.
type Provider interface {
	// Lifecycle
	Init() error
	Load() (Snapshot, error)
	Save(Snapshot) error
	Close() error

	// Utils
	GetConfigPath() string
}

// New returns the provider for backend rooted in dataDir.
func New(backend, dataDir string) (Provider, error) {
	switch backend {
	case "", constants.BackendJSON:
		return NewJSONStore(filepath.Join(dataDir, constants.JSONStoreFileName)), nil
	case constants.BackendSQLite:
		return NewSQLiteStore(filepath.Join(dataDir, constants.SQLiteStoreFileName)), nil
	default:
		return nil, fmt.Errorf("unknown storage backend: %q (expected %s or %s)", backend, constants.BackendJSON, constants.BackendSQLite)
	}
}

var (
	_ Provider = (*JSONStore)(nil)
	_ Provider = (*SQLiteStore)(nil)
	_ Provider = (*MemoryStore)(nil)
)
