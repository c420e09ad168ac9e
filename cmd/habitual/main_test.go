package main

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	gokeyring "github.com/zalando/go-keyring"

	"github.com/julianstephens/habitual/internal/backup"
	"github.com/julianstephens/habitual/internal/constants"
	"github.com/julianstephens/habitual/internal/session"
	"github.com/julianstephens/habitual/internal/storage"
)

func TestEndToEndWorkflow(t *testing.T) {
	for _, backend := range []string{constants.BackendJSON, constants.BackendSQLite} {
		t.Run(backend, func(t *testing.T) {
			// 1. Setup environment
			gokeyring.MockInit()
			configDir := t.TempDir()
			dataDir := t.TempDir()
			t.Setenv("HABITUAL_BACKEND", backend)
			t.Setenv("HABITUAL_TIMEZONE", "UTC")
			t.Setenv("HABITUAL_ASYNC_PERSIST", "false")
			t.Setenv("HABITUAL_PASSWORD", "secret123")

			habitual := func(args ...string) error {
				return run(append([]string{"--config-dir", configDir, "--data-dir", dataDir}, args...))
			}
			mustRun := func(args ...string) {
				t.Helper()
				if err := habitual(args...); err != nil {
					t.Fatalf("habitual %v failed: %v", args, err)
				}
			}

			// 2. Initialize storage and account
			mustRun("init")
			if err := habitual("init"); err == nil {
				t.Fatal("second init should fail")
			}
			if _, err := os.Stat(filepath.Join(configDir, "config.yaml")); err != nil {
				t.Fatalf("expected default config file: %v", err)
			}
			mustRun("register", "Ana", "ana@example.com")
			mustRun("whoami")

			// 3. Track habits
			mustRun("habit", "add", "Drink water")
			mustRun("habit", "add", "Read")
			mustRun("habit", "add", "--weekly", "Call mom")
			mustRun("habit", "toggle", "Read")
			mustRun("habit", "today")
			mustRun("habit", "list", "--filter", "today")
			mustRun("progress", "--week", "--stats")

			// 4. Verify persisted state
			storePath := filepath.Join(dataDir, constants.JSONStoreFileName)
			var provider storage.Provider = storage.NewJSONStore(storePath)
			if backend == constants.BackendSQLite {
				storePath = filepath.Join(dataDir, constants.SQLiteStoreFileName)
				provider = storage.NewSQLiteStore(storePath)
			}
			snap, err := provider.Load()
			provider.Close()
			if err != nil {
				t.Fatalf("failed to load store: %v", err)
			}
			if len(snap.Habits) != 3 {
				t.Errorf("expected 3 habits, got %d", len(snap.Habits))
			}
			if len(snap.Completions) != 1 {
				t.Fatalf("expected 1 completion, got %d", len(snap.Completions))
			}
			today := time.Now().UTC().Format(constants.DateFormat)
			if c := snap.Completions[0]; c.Day != today || c.OwnerEmail != "ana@example.com" {
				t.Errorf("unexpected completion record: %+v", c)
			}

			// 5. Backups and diagnostics
			mustRun("backup", "create")
			backups, err := backup.NewManager(storePath).ListBackups()
			if err != nil {
				t.Fatal(err)
			}
			if len(backups) != 1 {
				t.Errorf("expected 1 backup, got %d", len(backups))
			}
			mustRun("doctor")

			// 6. Removing a habit drops its history
			mustRun("habit", "remove", "Read")
			mustRun("debug", "db-path")

			// 7. Signed-out users cannot touch habits
			mustRun("logout")
			err = habitual("habit", "list")
			if !errors.Is(err, session.ErrNotLoggedIn) {
				t.Errorf("expected ErrNotLoggedIn after logout, got %v", err)
			}

			// 8. Another account sees none of Ana's habits
			mustRun("register", "Bob", "bob@example.com")
			mustRun("habit", "add", "Stretch")
			mustRun("login", "ana@example.com")

			provider = storage.NewJSONStore(storePath)
			if backend == constants.BackendSQLite {
				provider = storage.NewSQLiteStore(storePath)
			}
			snap, err = provider.Load()
			provider.Close()
			if err != nil {
				t.Fatal(err)
			}
			owners := map[string]int{}
			for _, h := range snap.Habits {
				owners[h.OwnerEmail]++
			}
			if owners["ana@example.com"] != 2 || owners["bob@example.com"] != 1 {
				t.Errorf("unexpected habit owners: %v", owners)
			}
			if len(snap.Completions) != 0 {
				t.Errorf("expected removed habit's completion to be gone, got %d", len(snap.Completions))
			}
		})
	}
}

func TestUnknownBackend(t *testing.T) {
	gokeyring.MockInit()
	t.Setenv("HABITUAL_BACKEND", "postgres")

	err := run([]string{"--config-dir", t.TempDir(), "--data-dir", t.TempDir(), "init"})
	if err == nil {
		t.Fatal("expected an invalid backend to be rejected")
	}
}
