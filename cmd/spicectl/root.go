package main

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Simplici0/spicebooks/internal/books"
	"github.com/Simplici0/spicebooks/internal/config"
	"github.com/Simplici0/spicebooks/internal/db"
	"github.com/Simplici0/spicebooks/internal/logger"
	"github.com/Simplici0/spicebooks/internal/migrations"
	"github.com/Simplici0/spicebooks/internal/store"
)

type globalFlags struct {
	envFile string
	dbPath  string
}

// app is what every subcommand needs: the loaded config, an open and migrated
// database and a logger.
type app struct {
	cfg      config.Config
	database *sql.DB
	log      *zap.Logger
}

func (a *app) close() {
	_ = a.log.Sync()
	_ = a.database.Close()
}

func (a *app) books() *books.Service {
	return books.New(books.Deps{
		Store:      store.New(a.database),
		Logger:     a.log,
		TaxPercent: a.cfg.TaxPercent,
	})
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}

	root := &cobra.Command{
		Use:           "spicectl",
		Short:         "Operate the spice shop books from the command line",
		Long:          `spicectl runs migrations, seeds the starter catalog, maintains ingredient prices, costs recipes and prints stock registers against the same database the server uses.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&flags.envFile, "env-file", "", "env file to load (default is .env)")
	root.PersistentFlags().StringVar(&flags.dbPath, "db", "", "sqlite database path (overrides DB_PATH)")

	root.AddCommand(
		newMigrateCmd(flags),
		newSeedCmd(flags),
		newCostCmd(flags),
		newIngredientCmd(flags),
		newRegisterCmd(flags),
		newSnapshotCmd(flags),
	)
	return root
}

func openApp(ctx context.Context, flags *globalFlags) (*app, error) {
	cfg, err := config.Load(flags.envFile)
	if err != nil {
		return nil, err
	}
	if flags.dbPath != "" {
		cfg.DBPath = flags.dbPath
	}

	log, err := logger.New(cfg.LogLevel, cfg.IsDev())
	if err != nil {
		return nil, err
	}

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := migrations.Up(ctx, database); err != nil {
		_ = database.Close()
		return nil, err
	}

	return &app{cfg: cfg, database: database, log: log.Named("spicectl")}, nil
}
