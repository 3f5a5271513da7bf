package db

import "embed"

// MigrationFS embeds the SQL schema under internal/db/migrations.
// cmd/migrate applies it through internal/db/migrate.
//
//go:embed migrations/*.sql
var MigrationFS embed.FS
