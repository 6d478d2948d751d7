package migrations

import "github.com/uptrace/bun/migrate"

// Migrations is the registry the migrate command and server startup apply.
var Migrations = migrate.NewMigrations()
