package db

import (
	"database/sql"
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

type migration struct {
	name string
	sql  string
}

// RunMigrations applies the schema. When dir is set and exists its *.sql
// files are used, otherwise the embedded migrations. Statements are
// idempotent (CREATE IF NOT EXISTS), so re-running on startup is safe.
func RunMigrations(sqlDB *sql.DB, dir string) error {
	ms, err := loadMigrations(dir)
	if err != nil {
		return err
	}
	for _, m := range ms {
		if m.sql == "" {
			continue
		}
		if _, err := sqlDB.Exec(m.sql); err != nil {
			return fmt.Errorf("exec migration %s: %w", m.name, err)
		}
	}
	return nil
}

func loadMigrations(dir string) ([]migration, error) {
	var ms []migration
	if dir != "" {
		if entries, err := os.ReadDir(dir); err == nil {
			for _, e := range entries {
				if e.IsDir() || filepath.Ext(e.Name()) != ".sql" {
					continue
				}
				b, err := os.ReadFile(filepath.Join(dir, e.Name()))
				if err != nil {
					return nil, fmt.Errorf("read migration %s: %w", e.Name(), err)
				}
				ms = append(ms, migration{name: e.Name(), sql: string(b)})
			}
			sort.Slice(ms, func(i, j int) bool { return ms[i].name < ms[j].name })
			return ms, nil
		}
	}

	entries, err := migrationFS.ReadDir("migrations")
	if err != nil {
		return nil, fmt.Errorf("read embedded migrations: %w", err)
	}
	for _, e := range entries {
		b, err := migrationFS.ReadFile(filepath.Join("migrations", e.Name()))
		if err != nil {
			return nil, fmt.Errorf("read embedded migration %s: %w", e.Name(), err)
		}
		ms = append(ms, migration{name: e.Name(), sql: string(b)})
	}
	sort.Slice(ms, func(i, j int) bool { return ms[i].name < ms[j].name })
	return ms, nil
}
