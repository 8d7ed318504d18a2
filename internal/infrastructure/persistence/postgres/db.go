// Package postgres implements the persistence ports on PostgreSQL via pgx.
package postgres

import (
	"embed"

	pgutil "github.com/bibbank/loanengine/pkg/postgres"
)

// Migrations holds the schema migrations applied at startup.
//
//go:embed migrations/*.sql
var Migrations embed.FS

// MigrationsDir is the directory of Migrations holding the SQL files.
const MigrationsDir = "migrations"

// DB is satisfied by *pgxpool.Pool.
type DB interface {
	pgutil.Querier
	pgutil.TxBeginner
}

// Migrate applies every pending migration against dsn.
func Migrate(dsn string) error {
	return pgutil.RunMigrations(dsn, Migrations, MigrationsDir)
}
