package db

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"sort"

	"github.com/RezaEskandarii/prnotifier/internal/constants"
	"github.com/RezaEskandarii/prnotifier/internal/lock"
)

const Schema = "prnotifier_schema"

//go:embed migrations/*.sql
var migrations embed.FS

// Init creates the schema and runs the embedded migration scripts in file name order.
// Only one instance migrates at a time: the work runs under a distributed lock.
//
// The function performs the following steps:
//  1. Acquires the migration lock.
//  2. Pings the database to verify the connection.
//  3. Creates the schema if it does not exist.
//  4. Executes every script under migrations/.
//
// The lock is released on return whether or not a step failed.
func Init(ctx context.Context, db *sql.DB, distributedLock lock.DistributedLockManager) (err error) {
	migrationLock := constants.MigrationLock

	if err = distributedLock.Acquire(ctx, migrationLock); err != nil {
		return err
	}
	defer func() {
		if releaseErr := distributedLock.Release(ctx, migrationLock); releaseErr != nil && err == nil {
			err = releaseErr
		}
	}()

	if err = db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}

	if _, err = db.ExecContext(ctx, fmt.Sprintf("CREATE SCHEMA IF NOT EXISTS %s", Schema)); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}

	scripts, err := readSQLScripts()
	if err != nil {
		return err
	}
	for _, script := range scripts {
		slog.Info("applying migration", "name", script.name)
		if _, err = db.ExecContext(ctx, script.body); err != nil {
			return fmt.Errorf("migration %s: %w", script.name, err)
		}
	}
	return nil
}

type sqlScript struct {
	name string
	body string
}

func readSQLScripts() ([]sqlScript, error) {
	entries, err := fs.ReadDir(migrations, "migrations")
	if err != nil {
		return nil, err
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	var scripts []sqlScript
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		content, err := migrations.ReadFile("migrations/" + entry.Name())
		if err != nil {
			return nil, err
		}
		scripts = append(scripts, sqlScript{name: entry.Name(), body: string(content)})
	}
	return scripts, nil
}
