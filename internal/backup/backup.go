package backup

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/julianstephens/habitual/internal/constants"
	"github.com/julianstephens/habitual/internal/logger"
	"github.com/julianstephens/habitual/internal/storage"
	_ "modernc.org/sqlite"
)

const timestampFormat = "20060102-150405"

// BackupInfo contains information about a backup file
type BackupInfo struct {
	Path      string
	Timestamp time.Time
	Size      int64
}

// Manager creates, lists, rotates and restores backups of a store file.
// JSON stores are copied and verified by decoding; SQLite stores are
// copied with VACUUM INTO.
type Manager struct {
	storePath string
	backupDir string
	suffix    string
	now       func() time.Time
}

// NewManager creates a backup manager for the store file at storePath.
// Backups live in a "backups" directory next to it.
func NewManager(storePath string) *Manager {
	suffix := filepath.Ext(storePath)
	if suffix == "" {
		suffix = ".bak"
	}
	return &Manager{
		storePath: storePath,
		backupDir: filepath.Join(filepath.Dir(storePath), constants.BackupDirName),
		suffix:    suffix,
		now:       time.Now,
	}
}

// GetBackupDir returns the backup directory path
func (m *Manager) GetBackupDir() string {
	return m.backupDir
}

func (m *Manager) isJSON() bool {
	return m.suffix == ".json"
}

// CreateBackup copies the store file into the backup directory and rotates
// old backups beyond MaxBackups.
func (m *Manager) CreateBackup() (string, error) {
	return m.createBackup(false)
}

// skipRotation prevents the pre-restore safety copy from evicting the
// backup being restored
func (m *Manager) createBackup(skipRotation bool) (string, error) {
	if err := os.MkdirAll(m.backupDir, 0700); err != nil {
		return "", fmt.Errorf("failed to create backup directory: %w", err)
	}

	if _, err := os.Stat(m.storePath); os.IsNotExist(err) {
		return "", fmt.Errorf("store does not exist: %s", m.storePath)
	}

	backupPath, err := m.nextBackupPath()
	if err != nil {
		return "", err
	}

	if m.isJSON() {
		err = m.backupJSON(backupPath)
	} else {
		err = m.backupSQLite(backupPath)
	}
	if err != nil {
		return "", fmt.Errorf("failed to backup store: %w", err)
	}

	if !skipRotation {
		if err := m.rotateBackups(); err != nil {
			logger.Warn("Failed to rotate old backups", "error", err)
		}
	}

	logger.Info("Created backup", "path", backupPath)
	return backupPath, nil
}

func (m *Manager) nextBackupPath() (string, error) {
	base := constants.BackupFilePrefix + m.now().Format(timestampFormat)
	path := filepath.Join(m.backupDir, base+m.suffix)
	for counter := 1; ; counter++ {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return path, nil
		}
		if counter > 100 {
			return "", fmt.Errorf("failed to generate unique backup filename")
		}
		path = filepath.Join(m.backupDir, fmt.Sprintf("%s-%d%s", base, counter, m.suffix))
	}
}

func (m *Manager) backupJSON(destPath string) error {
	data, err := os.ReadFile(m.storePath)
	if err != nil {
		return err
	}
	if _, err := storage.DecodeSnapshot(data); err != nil {
		return fmt.Errorf("source store appears to be corrupted: %w", err)
	}
	return storage.WriteFileAtomic(destPath, data, 0600)
}

func (m *Manager) backupSQLite(destPath string) error {
	srcDB, err := sql.Open("sqlite", m.storePath+"?mode=ro")
	if err != nil {
		return fmt.Errorf("failed to open source database: %w", err)
	}
	defer srcDB.Close()

	var count int
	if err := srcDB.QueryRow("SELECT COUNT(*) FROM sqlite_master").Scan(&count); err != nil {
		return fmt.Errorf("source database appears to be corrupted: %w", err)
	}

	if _, err := srcDB.Exec("VACUUM INTO ?", destPath); err != nil {
		logger.Warn("VACUUM INTO failed, falling back to file copy", "error", err)
		return copyFile(m.storePath, destPath)
	}
	return nil
}

// ListBackups returns all backups, newest first
func (m *Manager) ListBackups() ([]BackupInfo, error) {
	entries, err := os.ReadDir(m.backupDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []BackupInfo{}, nil
		}
		return nil, fmt.Errorf("failed to read backup directory: %w", err)
	}

	backups := []BackupInfo{}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		timestamp, counter, ok := m.parseBackupName(entry.Name())
		if !ok {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}

		backups = append(backups, BackupInfo{
			Path: filepath.Join(m.backupDir, entry.Name()),
			// counters break ties between backups taken in the same second
			Timestamp: timestamp.Add(time.Duration(counter) * time.Millisecond),
			Size:      info.Size(),
		})
	}

	sort.Slice(backups, func(i, j int) bool {
		return backups[i].Timestamp.After(backups[j].Timestamp)
	})

	return backups, nil
}

// parseBackupName extracts the timestamp and optional counter from
// habitual-YYYYMMDD-HHMMSS[-N]<suffix>.
func (m *Manager) parseBackupName(name string) (time.Time, int, bool) {
	if !strings.HasPrefix(name, constants.BackupFilePrefix) || !strings.HasSuffix(name, m.suffix) {
		return time.Time{}, 0, false
	}
	stamp := strings.TrimSuffix(strings.TrimPrefix(name, constants.BackupFilePrefix), m.suffix)

	counter := 0
	if len(stamp) > len(timestampFormat) {
		rest := stamp[len(timestampFormat):]
		n, err := strconv.Atoi(strings.TrimPrefix(rest, "-"))
		if !strings.HasPrefix(rest, "-") || err != nil {
			return time.Time{}, 0, false
		}
		counter = n
		stamp = stamp[:len(timestampFormat)]
	}

	timestamp, err := time.ParseInLocation(timestampFormat, stamp, time.Local)
	if err != nil {
		return time.Time{}, 0, false
	}
	return timestamp, counter, true
}

// rotateBackups removes old backups beyond the retention limit
func (m *Manager) rotateBackups() error {
	backups, err := m.ListBackups()
	if err != nil {
		return err
	}

	for i := constants.MaxBackups; i < len(backups); i++ {
		if err := os.Remove(backups[i].Path); err != nil {
			return fmt.Errorf("failed to remove old backup %s: %w", backups[i].Path, err)
		}
	}
	return nil
}

// RestoreBackup verifies backupPath, saves a copy of the current store,
// then atomically replaces the store with the backup. It returns the path
// of the safety copy, or "" if there was no current store.
func (m *Manager) RestoreBackup(backupPath string) (string, error) {
	if _, err := os.Stat(backupPath); os.IsNotExist(err) {
		return "", fmt.Errorf("backup file does not exist: %s", backupPath)
	}

	if err := m.verifyBackup(backupPath); err != nil {
		return "", fmt.Errorf("backup file is corrupted or invalid: %w", err)
	}

	var safety string
	if _, err := os.Stat(m.storePath); err == nil {
		safety, err = m.createBackup(true)
		if err != nil {
			return "", fmt.Errorf("failed to backup current store before restore: %w", err)
		}
	}

	data, err := os.ReadFile(backupPath)
	if err != nil {
		return safety, fmt.Errorf("failed to read backup file: %w", err)
	}
	if err := storage.WriteFileAtomic(m.storePath, data, 0600); err != nil {
		return safety, fmt.Errorf("failed to restore store: %w", err)
	}

	logger.Info("Restored backup", "from", backupPath, "to", m.storePath)
	return safety, nil
}

func (m *Manager) verifyBackup(path string) error {
	if m.isJSON() {
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		_, err = storage.DecodeSnapshot(data)
		return err
	}

	db, err := sql.Open("sqlite", path+"?mode=ro")
	if err != nil {
		return err
	}
	defer db.Close()

	var count int
	return db.QueryRow("SELECT COUNT(*) FROM sqlite_master").Scan(&count)
}

func copyFile(src, dst string) error {
	sourceFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer sourceFile.Close()

	destFile, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer destFile.Close()

	if _, err := destFile.ReadFrom(sourceFile); err != nil {
		return err
	}
	return destFile.Sync()
}
