// Package migrations applies the embedded schema scripts that create the
// review and complaint tables.
package migrations

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"path"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

//go:embed sql/*.sql
var embeddedFS embed.FS

const migrationTable = "reviewdesk_schema_migrations"

var namePattern = regexp.MustCompile(`^([0-9]+)_.+\.(up|down)\.sql$`)

type migration struct {
	version int64
	upSQL   string
	downSQL string
}

type Runner struct {
	fsys fs.FS
}

func NewRunner() *Runner {
	return &Runner{fsys: embeddedFS}
}

// Up applies every pending migration in version order and returns how
// many ran.
func (r *Runner) Up(ctx context.Context, db *sql.DB) (int, error) {
	items, err := load(r.fsys)
	if err != nil {
		return 0, err
	}
	if err := ensureMigrationTable(ctx, db); err != nil {
		return 0, err
	}
	applied, err := appliedVersions(ctx, db)
	if err != nil {
		return 0, err
	}

	ran := 0
	for _, item := range items {
		if _, ok := applied[item.version]; ok {
			continue
		}
		if err := runInTx(ctx, db, item.upSQL, func(tx *sql.Tx) error {
			_, err := tx.ExecContext(ctx, `INSERT INTO `+migrationTable+` (version) VALUES ($1)`, item.version)
			return err
		}); err != nil {
			return ran, fmt.Errorf("apply migration %d: %w", item.version, err)
		}
		ran++
	}
	return ran, nil
}

// Down rolls back the most recently applied migration.
func (r *Runner) Down(ctx context.Context, db *sql.DB) error {
	items, err := load(r.fsys)
	if err != nil {
		return err
	}
	if err := ensureMigrationTable(ctx, db); err != nil {
		return err
	}

	var latest int64
	row := db.QueryRowContext(ctx, `SELECT version FROM `+migrationTable+` ORDER BY version DESC LIMIT 1`)
	if err := row.Scan(&latest); err != nil {
		if err == sql.ErrNoRows {
			return nil
		}
		return fmt.Errorf("find latest migration: %w", err)
	}

	for _, item := range items {
		if item.version != latest {
			continue
		}
		if err := runInTx(ctx, db, item.downSQL, func(tx *sql.Tx) error {
			_, err := tx.ExecContext(ctx, `DELETE FROM `+migrationTable+` WHERE version = $1`, item.version)
			return err
		}); err != nil {
			return fmt.Errorf("rollback migration %d: %w", item.version, err)
		}
		return nil
	}
	return fmt.Errorf("applied migration %d is missing from source", latest)
}

func ensureMigrationTable(ctx context.Context, db *sql.DB) error {
	query := `
CREATE TABLE IF NOT EXISTS ` + migrationTable + ` (
	version BIGINT PRIMARY KEY,
	applied_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
)`
	if _, err := db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("ensure migration table: %w", err)
	}
	return nil
}

func runInTx(ctx context.Context, db *sql.DB, script string, mark func(*sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, script); err != nil {
		return err
	}
	if err := mark(tx); err != nil {
		return err
	}
	return tx.Commit()
}

func appliedVersions(ctx context.Context, db *sql.DB) (map[int64]struct{}, error) {
	rows, err := db.QueryContext(ctx, `SELECT version FROM `+migrationTable)
	if err != nil {
		return nil, fmt.Errorf("query applied versions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	versions := map[int64]struct{}{}
	for rows.Next() {
		var version int64
		if err := rows.Scan(&version); err != nil {
			return nil, fmt.Errorf("scan version: %w", err)
		}
		versions[version] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return versions, nil
}

func load(fsys fs.FS) ([]migration, error) {
	entries, err := fs.ReadDir(fsys, "sql")
	if err != nil {
		return nil, fmt.Errorf("read migration dir: %w", err)
	}

	byVersion := map[int64]migration{}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		matches := namePattern.FindStringSubmatch(path.Base(entry.Name()))
		if len(matches) != 3 {
			continue
		}
		version, err := strconv.ParseInt(matches[1], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parse migration version for %q: %w", entry.Name(), err)
		}
		script, err := fs.ReadFile(fsys, path.Join("sql", entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("read migration %q: %w", entry.Name(), err)
		}

		item := byVersion[version]
		item.version = version
		if matches[2] == "up" {
			item.upSQL = string(script)
		} else {
			item.downSQL = string(script)
		}
		byVersion[version] = item
	}

	items := make([]migration, 0, len(byVersion))
	for _, item := range byVersion {
		if strings.TrimSpace(item.upSQL) == "" {
			return nil, fmt.Errorf("migration %d missing up SQL", item.version)
		}
		if strings.TrimSpace(item.downSQL) == "" {
			return nil, fmt.Errorf("migration %d missing down SQL", item.version)
		}
		items = append(items, item)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].version < items[j].version })
	return items, nil
}
