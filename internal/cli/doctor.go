package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/julianstephens/habitual/internal/backup"
	"github.com/julianstephens/habitual/internal/keyring"
	"github.com/julianstephens/habitual/internal/migration"
	"github.com/julianstephens/habitual/internal/storage"
	"github.com/julianstephens/habitual/internal/validation"
)

type DoctorCmd struct{}

func (cmd *DoctorCmd) Run(ctx *Context) error {
	fmt.Println("Running diagnostics...")
	fmt.Println()

	hasError := false

	// Check 1: storage readable
	snapshot, err := checkStorageReachable(ctx)
	storageReachable := err == nil
	if err != nil {
		fmt.Printf("❌ Storage reachable: FAIL\n")
		fmt.Printf("   Error: %v\n", err)
		hasError = true
	} else {
		fmt.Printf("✓ Storage reachable: OK\n")
	}

	// Check 2: schema version valid
	if err := checkSchemaVersion(ctx); err != nil {
		fmt.Printf("❌ Schema version: FAIL\n")
		fmt.Printf("   Error: %v\n", err)
		hasError = true
	} else {
		fmt.Printf("✓ Schema version: OK\n")
	}

	// Check 3: migrations complete
	if err := checkMigrationsComplete(ctx); err != nil {
		fmt.Printf("❌ Migrations complete: FAIL\n")
		fmt.Printf("   Error: %v\n", err)
		hasError = true
	} else {
		fmt.Printf("✓ Migrations complete: OK\n")
	}

	// Check 4: backups present (warning only)
	if err := checkBackupsPresent(ctx); err != nil {
		fmt.Printf("⚠ Backups present: WARNING\n")
		fmt.Printf("   %v\n", err)
	} else {
		fmt.Printf("✓ Backups present: OK\n")
	}

	// Check 5: data validation
	if storageReachable {
		result := validation.New().ValidateSnapshot(snapshot.Habits, snapshot.Completions)
		switch {
		case len(result.Fatal()) > 0:
			fmt.Printf("❌ Data validation: FAIL\n")
			printIndented(result.FormatReport())
			hasError = true
		case result.HasConflicts():
			fmt.Printf("⚠ Data validation: WARNING\n")
			printIndented(result.FormatReport())
			fmt.Printf("   Invalid completion records are dropped on the next save.\n")
		default:
			fmt.Printf("✓ Data validation: OK\n")
		}
	} else {
		fmt.Printf("⊘ Data validation: SKIPPED (storage not reachable)\n")
	}

	// Check 6: clock/timezone sanity
	if err := checkClockTimezone(ctx); err != nil {
		fmt.Printf("❌ Clock/timezone: FAIL\n")
		fmt.Printf("   Error: %v\n", err)
		hasError = true
	} else {
		fmt.Printf("✓ Clock/timezone: OK\n")
	}

	// Check 7: session store (informational)
	if keyring.IsAvailable() {
		fmt.Printf("✓ Session store: OS keyring\n")
	} else {
		fmt.Printf("✓ Session store: file (OS keyring unavailable)\n")
	}

	fmt.Println()
	if hasError {
		fmt.Println("Diagnostics completed with errors.")
		return fmt.Errorf("one or more health checks failed")
	}

	fmt.Println("All diagnostics passed!")
	return nil
}

func printIndented(report string) {
	for _, line := range strings.Split(strings.TrimRight(report, "\n"), "\n") {
		fmt.Printf("   %s\n", line)
	}
}

func checkStorageReachable(ctx *Context) (storage.Snapshot, error) {
	snapshot, err := ctx.Storage.Load()
	if err != nil {
		return storage.Snapshot{}, fmt.Errorf("failed to load storage: %w", err)
	}

	// For SQLite, also try a simple query
	if sqliteStore, ok := ctx.Storage.(*storage.SQLiteStore); ok {
		db := sqliteStore.GetDB()
		if db == nil {
			// Load never opens a database that does not exist yet
			return snapshot, nil
		}
		var result int
		if err := db.QueryRow("SELECT 1").Scan(&result); err != nil {
			return snapshot, fmt.Errorf("failed to query database: %w", err)
		}
	}

	return snapshot, nil
}

// sqliteVersions returns the current and latest schema versions, or ok=false
// for backends without migrations.
func sqliteVersions(ctx *Context) (current, latest int, ok bool, err error) {
	sqliteStore, isSQLite := ctx.Storage.(*storage.SQLiteStore)
	if !isSQLite || sqliteStore.GetDB() == nil {
		return 0, 0, false, nil
	}

	var runner *migration.Runner
	runner, err = sqliteStore.MigrationRunner()
	if err != nil {
		return 0, 0, true, err
	}

	current, err = runner.GetCurrentVersion()
	if err != nil {
		return 0, 0, true, fmt.Errorf("failed to get current schema version: %w", err)
	}

	latest, err = runner.GetLatestVersion()
	if err != nil {
		return 0, 0, true, fmt.Errorf("failed to get latest schema version: %w", err)
	}
	return current, latest, true, nil
}

func checkSchemaVersion(ctx *Context) error {
	current, latest, ok, err := sqliteVersions(ctx)
	if !ok || err != nil {
		return err
	}
	if current > latest {
		return fmt.Errorf("database schema version (%d) is newer than supported version (%d)", current, latest)
	}
	return nil
}

func checkMigrationsComplete(ctx *Context) error {
	current, latest, ok, err := sqliteVersions(ctx)
	if !ok || err != nil {
		return err
	}
	if current < latest {
		return fmt.Errorf("migrations incomplete: current version %d, latest version %d", current, latest)
	}
	return nil
}

func checkBackupsPresent(ctx *Context) error {
	mgr := backup.NewManager(ctx.Storage.GetConfigPath())
	backups, err := mgr.ListBackups()
	if err != nil {
		return fmt.Errorf("failed to list backups: %w", err)
	}

	if len(backups) == 0 {
		return fmt.Errorf("no backups found - consider creating one with 'habitual backup create'")
	}

	return nil
}

func checkClockTimezone(ctx *Context) error {
	now := time.Now()

	if now.Year() < 2020 || now.Year() > 2100 {
		return fmt.Errorf("system time appears incorrect: %s", now.Format(time.RFC3339))
	}

	loc, err := ctx.Config.Location()
	if err != nil {
		return fmt.Errorf("invalid timezone %q: %w", ctx.Config.Timezone, err)
	}
	fmt.Printf("   Note: today is %s in %s\n", now.In(loc).Format("2006-01-02"), loc)

	return nil
}
