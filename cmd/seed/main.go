package main

import (
	"context"
	"flag"
	"log"

	"github.com/joho/godotenv"

	"proposalforge/internal/config"
	"proposalforge/internal/repository/postgres"
	"proposalforge/internal/seed"
)

func main() {
	fixturesPath := flag.String("fixtures", "internal/seed/fixtures.yaml", "Path to the YAML fixtures file")
	clearData := flag.Bool("clear-data", false, "Delete all engine rows before seeding (keep schema)")
	schemaOnly := flag.Bool("schema-only", false, "Only ensure the schema, don't insert fixtures")
	flag.Parse()

	_ = godotenv.Load()

	cfg := config.Load()

	// SAFETY: destructive operations never run against prod tables
	if cfg.Environment == "prod" && *clearData {
		log.Fatal("BLOCKED: --clear-data is not allowed in the prod environment")
	}

	log.Printf("seeding database (environment: %s, prefix: %s)", cfg.Environment, cfg.TablePrefix)

	ctx := context.Background()
	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	tables := postgres.NewTableNames(cfg.TablePrefix)

	if err := postgres.Migrate(ctx, pool, tables); err != nil {
		log.Fatalf("Failed to run schema: %v", err)
	}
	log.Println("schema ready")

	if *schemaOnly {
		return
	}

	fixtures, err := seed.LoadFixtures(*fixturesPath)
	if err != nil {
		log.Fatalf("Failed to load fixtures: %v", err)
	}

	// Clear and re-seed atomically so a bad fixture file can't leave the
	// tables half-populated.
	tm := postgres.NewTransactionManager(pool)
	err = tm.ExecTx(ctx, func(txCtx context.Context) error {
		if *clearData {
			if err := seed.Truncate(txCtx, pool, tables); err != nil {
				return err
			}
			log.Println("existing rows cleared")
		}
		return seed.Apply(txCtx, pool, tables, fixtures)
	})
	if err != nil {
		log.Fatalf("Failed to apply fixtures: %v", err)
	}

	log.Printf("seeded %d proposals", len(fixtures.Proposals))
}
