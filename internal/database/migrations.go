package database

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
)

// Migrations holds the schema and seed files shipped with the binary.
//
//go:embed migrations/*.sql
var Migrations embed.FS

// MigrationsDir is the directory inside Migrations that holds the files.
const MigrationsDir = "migrations"

// RunMigrations runs all SQL migration files under dir in fsys
func (db *DB) RunMigrations(ctx context.Context, fsys fs.FS, dir string) error {
	return runMigrations(ctx, db.Pool, fsys, dir, func(file string) {
		db.logger.Info("migration_applied", fmt.Sprintf("Applied migration: %s", file), "startup", nil)
	})
}

func runMigrations(ctx context.Context, q Querier, fsys fs.FS, dir string, applied func(string)) error {
	if err := createMigrationsTable(ctx, q); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	migrationFiles, err := getMigrationFiles(fsys, dir)
	if err != nil {
		return fmt.Errorf("failed to get migration files: %w", err)
	}

	appliedMigrations, err := getAppliedMigrations(ctx, q)
	if err != nil {
		return fmt.Errorf("failed to get applied migrations: %w", err)
	}

	for _, file := range migrationFiles {
		if appliedMigrations[file] {
			continue
		}

		if err := runMigration(ctx, q, fsys, dir, file); err != nil {
			return fmt.Errorf("failed to run migration %s: %w", file, Classify(err))
		}
		applied(file)
	}

	return nil
}

func createMigrationsTable(ctx context.Context, q Querier) error {
	_, err := q.Exec(ctx, createMigrationsTableSQL)
	return err
}

// getMigrationFiles returns a sorted list of migration files
func getMigrationFiles(fsys fs.FS, dir string) ([]string, error) {
	var files []string

	err := fs.WalkDir(fsys, dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(p, ".sql") {
			files = append(files, path.Base(p))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(files)
	return files, nil
}

func getAppliedMigrations(ctx context.Context, q Querier) (map[string]bool, error) {
	applied := make(map[string]bool)

	rows, err := q.Query(ctx, selectAppliedMigrationsSQL)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var migrationName string
		if err := rows.Scan(&migrationName); err != nil {
			return nil, err
		}
		applied[migrationName] = true
	}

	return applied, rows.Err()
}

// runMigration executes one file and records it in the same transaction.
func runMigration(ctx context.Context, q Querier, fsys fs.FS, dir, filename string) error {
	content, err := fs.ReadFile(fsys, path.Join(dir, filename))
	if err != nil {
		return fmt.Errorf("failed to read migration file: %w", err)
	}

	tx, err := q.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, string(content)); err != nil {
		return fmt.Errorf("failed to execute migration: %w", err)
	}
	if _, err := tx.Exec(ctx, insertMigrationSQL, filename); err != nil {
		return fmt.Errorf("failed to record migration: %w", err)
	}

	return tx.Commit(ctx)
}
