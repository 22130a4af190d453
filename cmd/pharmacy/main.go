package main

import (
	"context"
	"log"
	"os"

	"github.com/avishkin/pharmacy/internal/cli"
	"github.com/avishkin/pharmacy/internal/config"
	"github.com/avishkin/pharmacy/internal/logging"
	"github.com/avishkin/pharmacy/internal/service"
)

func main() {
	configuration, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	// keep the structured log quiet so menu output stays readable
	logger := logging.New("error")

	db, err := config.InitDB(configuration.DB_DSN)
	if err != nil {
		log.Fatalf("db init error: %v", err)
	}
	if err := config.SeedCatalog(db); err != nil {
		log.Fatalf("seed error: %v", err)
	}

	catalog := service.NewCatalog(db, logger)
	ledger := service.NewLedger(db, logger)
	inventory := service.NewInventory(db, catalog, ledger, logger)

	app := cli.New(db, catalog, inventory, logger, os.Stdin, os.Stdout)
	if err := app.Run(context.Background()); err != nil {
		log.Fatalf("session error: %v", err)
	}
}
