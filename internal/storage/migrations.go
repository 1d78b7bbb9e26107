package storage

import "embed"

// migrationsFS holds one directory of golang-migrate files per SQL backend.
//
//go:embed migrations/postgres/*.sql migrations/sqlite/*.sql
var migrationsFS embed.FS
