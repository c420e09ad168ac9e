package constants

const (
	AppName            = "habitual"
	DefaultKeyringUser = "current-session"
	Version            = "v0.1.0"

	// DateFormat is the standard date format used throughout the application (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// SchemaVersion is the only on-disk snapshot version this build reads and writes
	SchemaVersion = 1

	// Habit constraints
	MaxHabitNameLength = 50

	// Account constraints
	MinPasswordLength = 6
	MaxPasswordLength = 72 // bcrypt truncates beyond 72 bytes
	MaxEmailLength    = 254

	// WeeklyWindowDays is the number of calendar days covered by the weekly trend
	WeeklyWindowDays = 7

	// Storage backends
	BackendJSON   = "json"
	BackendSQLite = "sqlite"

	// Default file names inside the data directory
	JSONStoreFileName   = "habits.json"
	SQLiteStoreFileName = "habits.db"
	AccountsFileName    = "accounts.json"
	SessionFileName     = "session"

	// Backup constants
	MaxBackups       = 14
	BackupDirName    = "backups"
	BackupFilePrefix = "habitual-"
)
