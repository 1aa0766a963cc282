package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/erp/ledger/internal/domain/ledger"
	"github.com/erp/ledger/internal/infrastructure/config"
	"github.com/erp/ledger/internal/infrastructure/logger"
	"github.com/erp/ledger/internal/infrastructure/persistence"
	"github.com/erp/ledger/internal/infrastructure/persistence/models"
	"go.uber.org/zap"
)

func main() {
	var (
		configPath string
		logLevel   string
	)

	flag.StringVar(&configPath, "config", "", "Path to a config file (default: ./config.toml)")
	flag.StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}
	command := args[0]

	log, err := logger.New(&logger.Config{
		Level:      logLevel,
		Format:     "console",
		Output:     "stdout",
		TimeFormat: "2006-01-02 15:04:05",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = log.Sync()
	}()

	// Handle tables command separately (doesn't need DB)
	if command == "tables" {
		for _, name := range ledger.AllCollections {
			fmt.Printf("  %-16s %s\n", name, models.TableFor(name))
		}
		return
	}

	var cfg *config.Config
	if configPath != "" {
		cfg, err = config.LoadFile(configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}

	db, err := persistence.NewDatabase(&cfg.Database, persistence.WithLogger(log))
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()

	log.Info("Migration CLI started",
		zap.String("command", command),
		zap.String("driver", cfg.Database.Driver),
	)

	switch command {
	case "up":
		if err := db.AutoMigrate(); err != nil {
			log.Fatal("Schema migration failed", zap.Error(err))
		}
		log.Info("Collection tables are up to date", zap.Int("tables", len(ledger.AllCollections)))

	case "seed":
		if len(args) < 2 {
			log.Fatal("Seed file required. Usage: migrate seed <file.json>")
		}
		data, err := persistence.ReadSeedFile(args[1])
		if err != nil {
			log.Fatal("Failed to read seed file", zap.Error(err))
		}
		counts, err := persistence.NewSeeder(db.DB, log).Seed(context.Background(), data)
		if err != nil {
			log.Fatal("Seed failed", zap.Error(err))
		}
		total := 0
		for _, n := range counts {
			total += n
		}
		log.Info("Seed complete", zap.Int("collections", len(counts)), zap.Int("records", total))

	default:
		log.Error("Unknown command", zap.String("command", command))
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`ERP Ledger Schema Tool

Usage:
  migrate [flags] <command> [arguments]

Commands:
  up                    Create or update the ledger collection tables
  seed <file.json>      Upsert records from a JSON file of collection -> records
  tables                List collections and their backing tables

Flags:
  -config string        Path to a config file (default: ./config.toml)
  -log-level string     Log level: debug, info, warn, error (default: info)

Examples:
  # Prepare a local sqlite store
  LEDGER_DATABASE_DRIVER=sqlite LEDGER_DATABASE_PATH=ledger.db migrate up

  # Load a fixture
  migrate seed ./seed.json`)
}
