// Package db embeds the goose migrations for the PostgreSQL schema.
package db

import "embed"

// Migrations holds the SQL files under MigrationsDir.
//
//go:embed migrations/*.sql
var Migrations embed.FS

const MigrationsDir = "migrations"
