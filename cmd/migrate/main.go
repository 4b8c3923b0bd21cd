// Command migrate applies the SQL files under database/migrations in
// lexical order, recording each applied file so reruns are idempotent.
package main

import (
	"context"
	"database/sql"
	"flag"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	configx "github.com/chatcart/chatcart/pkg/config"
	_ "github.com/chatcart/chatcart/pkg/logger/autoload"
)

type DatabaseConfig struct {
	DSN string `envconfig:"DSN" split_words:"true" required:"true"`
}

func main() {
	dir := flag.String("dir", "database/migrations", "directory containing .sql migration files")
	flag.Parse()

	dbCfg := configx.MustNew[DatabaseConfig]("POSTGRES")

	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dbCfg.DSN)))
	db := bun.NewDB(sqldb, pgdialect.New())
	defer db.Close()

	ctx := context.Background()
	if err := run(ctx, db, *dir); err != nil {
		log.Fatal().Err(err).Msg("migration failed")
	}
	log.Info().Msg("migrations up to date")
}

func run(ctx context.Context, db *bun.DB, dir string) error {
	if _, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			name TEXT PRIMARY KEY,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`); err != nil {
		return err
	}

	files, err := migrationFiles(dir)
	if err != nil {
		return err
	}

	for _, file := range files {
		name := filepath.Base(file)

		var applied int
		if err := db.NewSelect().
			Table("schema_migrations").
			ColumnExpr("count(*)").
			Where("name = ?", name).
			Scan(ctx, &applied); err != nil {
			return err
		}
		if applied > 0 {
			log.Debug().Str("migration", name).Msg("already applied")
			continue
		}

		script, err := os.ReadFile(file)
		if err != nil {
			return err
		}

		err = db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			if _, err := tx.ExecContext(ctx, string(script)); err != nil {
				return err
			}
			_, err := tx.ExecContext(ctx, "INSERT INTO schema_migrations (name) VALUES (?)", name)
			return err
		})
		if err != nil {
			return err
		}
		log.Info().Str("migration", name).Msg("applied")
	}
	return nil
}

func migrationFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}
		files = append(files, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(files)
	return files, nil
}
