package db

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"log"
	"os"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/extra/bundebug"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/padraicbc/cc6api/config"
	"github.com/padraicbc/cc6api/models"
)

//go:embed clubs.yaml
var defaultClubs []byte

// Setup opens a PostgreSQL connection using the provided config.
func Setup(cfg *config.Config) *bun.DB {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(cfg.PostgresDSN())))
	db := bun.NewDB(sqldb, pgdialect.New())

	if cfg.Debug {
		db.AddQueryHook(bundebug.NewQueryHook(bundebug.WithVerbose(true)))
	}

	if err := db.PingContext(context.Background()); err != nil {
		log.Fatal("failed to connect to database:", err)
	}

	return db
}

// CreateTables creates all tables and their lookup indexes.
func CreateTables(ctx context.Context, db *bun.DB) error {
	tables := []interface{}{
		(*models.User)(nil),
		(*models.Club)(nil),
		(*models.Participant)(nil),
		(*models.Season)(nil),
		(*models.Race)(nil),
		(*models.Result)(nil),
	}

	for _, model := range tables {
		if _, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("creating table for %T: %w", model, err)
		}
	}

	indexes := []string{
		`CREATE INDEX IF NOT EXISTS results_race_idx ON results (season, race_name, position)`,
		`CREATE INDEX IF NOT EXISTS results_barcode_idx ON results (participant_parkrun_barcode_id)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS seasons_one_default ON seasons (is_default) WHERE is_default`,
	}
	for _, stmt := range indexes {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			zap.L().Warn("create index", zap.String("stmt", stmt), zap.Error(err))
		}
	}

	return nil
}

// LoadClubs parses a YAML list of clubs.
func LoadClubs(data []byte) ([]models.Club, error) {
	var clubs []models.Club
	if err := yaml.Unmarshal(data, &clubs); err != nil {
		return nil, fmt.Errorf("parse clubs: %w", err)
	}
	for i, c := range clubs {
		if c.Name == "" {
			return nil, fmt.Errorf("parse clubs: entry %d has no name", i)
		}
		if c.ShortNames == nil {
			clubs[i].ShortNames = []string{}
		}
	}
	return clubs, nil
}

// SeedClubs inserts the club list when the clubs table is empty. The list comes
// from path when set, otherwise from the built-in list.
func SeedClubs(ctx context.Context, db *bun.DB, path string) (int, error) {
	n, err := db.NewSelect().Model((*models.Club)(nil)).Count(ctx)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		return 0, nil
	}

	data := defaultClubs
	if path != "" {
		if data, err = os.ReadFile(path); err != nil {
			return 0, fmt.Errorf("read clubs seed: %w", err)
		}
	}
	clubs, err := LoadClubs(data)
	if err != nil {
		return 0, err
	}
	if len(clubs) == 0 {
		return 0, nil
	}

	if _, err := db.NewInsert().Model(&clubs).On("CONFLICT DO NOTHING").Exec(ctx); err != nil {
		return 0, fmt.Errorf("seed clubs: %w", err)
	}
	return len(clubs), nil
}
