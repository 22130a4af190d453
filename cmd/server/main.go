package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/avishkin/pharmacy/internal/config"
	"github.com/avishkin/pharmacy/internal/events"
	"github.com/avishkin/pharmacy/internal/handlers"
	"github.com/avishkin/pharmacy/internal/logging"
	"github.com/avishkin/pharmacy/internal/service"
	httpserver "github.com/avishkin/pharmacy/internal/transport/http"
)

func main() {
	configuration, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	logger := logging.New(configuration.LOG_LEVEL)

	db, err := config.InitDB(configuration.DB_DSN)
	if err != nil {
		log.Fatalf("db init error: %v", err)
	}
	if configuration.SEED_CATALOG != "false" {
		if err := config.SeedCatalog(db); err != nil {
			log.Fatalf("seed error: %v", err)
		}
	}

	prod := events.NewProducer(configuration.KAFKA_ADDRESS, "pharmacy_events")

	catalog := service.NewCatalog(db, logger)
	ledger := service.NewLedger(db, logger)
	inventory := service.NewInventory(db, catalog, ledger, logger)

	jwtSecret := []byte(configuration.JWT_SECRET)

	e := echo.New()
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID())

	deps := httpserver.Deps{
		JWTSecret:         jwtSecret,
		AuthHandler:       &handlers.AuthHandler{DB: db, JWTSecret: jwtSecret, Producer: prod},
		MedicationHandler: &handlers.MedicationHandler{Catalog: catalog, Inventory: inventory, Producer: prod},
		OrderHandler:      &handlers.OrderHandler{Inventory: inventory, Producer: prod},
	}
	httpserver.Register(e, &deps)

	srv := &http.Server{
		Addr:         configuration.HTTP_ADDR,
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("http server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("server shutdown error: %v", err)
	}

	if sqlDB, err := db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			log.Printf("db close error: %v", err)
		}
	}

	if err := prod.Close(); err != nil {
		log.Printf("kafka close error: %v", err)
	}

	log.Println("shutdown complete")
}
