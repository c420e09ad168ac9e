// Package migrations embeds the versioned SQL schema files.
package migrations

import "embed"

//go:embed sqlite/*.sql
var FS embed.FS

// SQLiteDir is the subdirectory of FS holding the SQLite migrations
const SQLiteDir = "sqlite"
