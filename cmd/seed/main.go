package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/andresuchdata/restock-forecast/internal/repository/postgres"
	"github.com/andresuchdata/restock-forecast/pkg/logger"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
)

type dbKey struct{}

func newDBURLFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:     "db-url",
		Usage:    "Database connection string",
		Required: true,
		EnvVars:  []string{"DATABASE_URL"},
	}
}

func newDataDirFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "data-dir",
		Usage:   "Directory containing items.csv, recipe.csv, inventory.csv and orders.csv",
		Value:   "./data/seeds",
		EnvVars: []string{"SEED_DATA_DIR"},
	}
}

func initDB(c *cli.Context) error {
	db, err := sqlx.Open("pgx", c.String("db-url"))
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	// Test the connection
	if err := db.PingContext(c.Context); err != nil {
		db.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}

	c.Context = context.WithValue(c.Context, dbKey{}, postgres.Wrap(db))
	return nil
}

func closeDB(c *cli.Context) error {
	if db, ok := c.Context.Value(dbKey{}).(*postgres.DB); ok && db != nil {
		return db.Close()
	}
	return nil
}

func dbFrom(c *cli.Context) (*postgres.DB, error) {
	db, ok := c.Context.Value(dbKey{}).(*postgres.DB)
	if !ok || db == nil {
		return nil, fmt.Errorf("database not initialized")
	}
	return db, nil
}

func main() {
	if err := godotenv.Load(".env"); err != nil {
		logger.Log.Debug().Err(err).Msg("no .env file loaded")
	}

	app := &cli.App{
		Name:  "seed",
		Usage: "Seed the database from CSV exports",
		Commands: []*cli.Command{
			{
				Name:   "catalog",
				Usage:  "Seed items, recipes and inventory",
				Flags:  []cli.Flag{newDBURLFlag(), newDataDirFlag()},
				Before: initDB,
				After:  closeDB,
				Action: seedCatalog,
			},
			{
				Name:   "orders",
				Usage:  "Append historical orders",
				Flags:  []cli.Flag{newDBURLFlag(), newDataDirFlag()},
				Before: initDB,
				After:  closeDB,
				Action: seedOrders,
			},
			{
				Name:   "all",
				Usage:  "Seed catalog data then orders",
				Flags:  []cli.Flag{newDBURLFlag(), newDataDirFlag()},
				Before: initDB,
				After:  closeDB,
				Action: func(c *cli.Context) error {
					if err := seedCatalog(c); err != nil {
						return fmt.Errorf("error seeding catalog: %w", err)
					}
					if err := seedOrders(c); err != nil {
						return fmt.Errorf("error seeding orders: %w", err)
					}
					return nil
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		logger.Log.Fatal().Err(err).Msg("seed failed")
	}
}

func seedCatalog(c *cli.Context) error {
	db, err := dbFrom(c)
	if err != nil {
		return err
	}
	dir := c.String("data-dir")
	ctx := c.Context

	catalog := postgres.NewCatalogRepository(db)
	inventory := postgres.NewInventoryRepository(db)

	items, err := readItems(filepath.Join(dir, "items.csv"))
	if err != nil {
		return err
	}
	for _, item := range items {
		if err := catalog.UpsertItem(ctx, item); err != nil {
			return err
		}
	}
	logger.Log.Info().Int("rows", len(items)).Msg("Seeded items")

	recipe, err := readRecipe(filepath.Join(dir, "recipe.csv"))
	if err != nil {
		return err
	}
	for _, entry := range recipe {
		if err := catalog.UpsertRecipeEntry(ctx, entry); err != nil {
			return err
		}
	}
	logger.Log.Info().Int("rows", len(recipe)).Msg("Seeded recipe entries")

	stock, err := readInventory(filepath.Join(dir, "inventory.csv"))
	if err != nil {
		return err
	}
	for _, rec := range stock {
		if err := inventory.UpsertInventory(ctx, rec); err != nil {
			return err
		}
	}
	logger.Log.Info().Int("rows", len(stock)).Msg("Seeded inventory")

	return nil
}

func seedOrders(c *cli.Context) error {
	db, err := dbFrom(c)
	if err != nil {
		return err
	}

	orders, err := readOrders(filepath.Join(c.String("data-dir"), "orders.csv"))
	if err != nil {
		return err
	}

	repo := postgres.NewOrderRepository(db)
	for _, order := range orders {
		if err := repo.InsertOrder(c.Context, order); err != nil {
			return err
		}
	}

	logger.Log.Info().Int("rows", len(orders)).Msg("Seeded orders")
	return nil
}
