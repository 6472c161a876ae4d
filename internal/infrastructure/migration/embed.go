package migration

import "embed"

// Files holds the SQL migrations, one directory per dialect.
//
//go:embed sql/postgres/*.sql sql/sqlite/*.sql
var Files embed.FS
