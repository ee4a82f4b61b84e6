package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strings"

	"github.com/yuzvak/eventsales-service/internal/pkg/logger"
	"github.com/yuzvak/eventsales-service/migrations"
)

// MigrationsFS prefers a directory on disk and falls back to the embedded schema.
func MigrationsFS(path string) fs.FS {
	if path != "" {
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			return os.DirFS(path)
		}
	}
	return migrations.FS
}

// RunMigrations applies every *.up.sql in lexical order, once, each in its own transaction.
func RunMigrations(ctx context.Context, db *sql.DB, source fs.FS, log *logger.Logger) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS migrations (
			id SERIAL PRIMARY KEY,
			name VARCHAR(255) NOT NULL UNIQUE,
			applied_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	applied, err := appliedMigrations(ctx, db)
	if err != nil {
		return err
	}

	entries, err := fs.ReadDir(source, ".")
	if err != nil {
		return fmt.Errorf("failed to read migrations: %w", err)
	}

	var pending []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".up.sql") && !applied[entry.Name()] {
			pending = append(pending, entry.Name())
		}
	}
	sort.Strings(pending)

	for _, name := range pending {
		content, err := fs.ReadFile(source, name)
		if err != nil {
			return fmt.Errorf("failed to read migration %s: %w", name, err)
		}

		if err := applyMigration(ctx, db, name, string(content)); err != nil {
			return err
		}
		log.Info("Applied migration", "name", name)
	}

	log.Info("Migrations up to date", "applied", len(applied)+len(pending))
	return nil
}

func appliedMigrations(ctx context.Context, db *sql.DB) (map[string]bool, error) {
	rows, err := db.QueryContext(ctx, "SELECT name FROM migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to query migrations table: %w", err)
	}
	defer rows.Close()

	applied := make(map[string]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		applied[name] = true
	}
	return applied, rows.Err()
}

func applyMigration(ctx context.Context, db *sql.DB, name, content string) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if _, err := tx.ExecContext(ctx, content); err != nil {
		tx.Rollback()
		return fmt.Errorf("error executing migration %s: %w", name, err)
	}

	if _, err := tx.ExecContext(ctx, "INSERT INTO migrations (name) VALUES ($1)", name); err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to record migration %s: %w", name, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit migration %s: %w", name, err)
	}
	return nil
}
