package config

import (
	"fmt"
	"log"
	"os"

	"github.com/glebarez/sqlite"
	"github.com/joho/godotenv"
	"gorm.io/gorm"

	"github.com/avishkin/pharmacy/internal/models"
)

type Config struct {
	DB_DSN        string
	HTTP_ADDR     string
	JWT_SECRET    string
	KAFKA_ADDRESS string
	LOG_LEVEL     string
	SEED_CATALOG  string
}

func LoadConfig() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Notice: .env file not found: %v. Using system environment variables", err)
	}

	config := &Config{
		DB_DSN:        os.Getenv("DB_DSN"),
		HTTP_ADDR:     os.Getenv("HTTP_ADDR"),
		JWT_SECRET:    os.Getenv("JWT_SECRET"),
		KAFKA_ADDRESS: os.Getenv("KAFKA_ADDRESS"),
		LOG_LEVEL:     os.Getenv("LOG_LEVEL"),
		SEED_CATALOG:  os.Getenv("SEED_CATALOG"),
	}

	if config.DB_DSN == "" {
		// session-lifetime storage only: the catalog is gone once the process exits
		config.DB_DSN = "file::memory:?cache=shared"
	}
	if config.HTTP_ADDR == "" {
		config.HTTP_ADDR = ":8080"
	}
	if config.JWT_SECRET == "" {
		config.JWT_SECRET = "dev-secret"
	}

	return config, nil
}

func InitDB(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// a shared in-memory sqlite db lives as long as one connection holds it open
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&models.Medication{}, &models.Order{}, &models.User{}); err != nil {
		return nil, fmt.Errorf("failed to migrate tables: %w", err)
	}
	return db, nil
}

// SeedCatalog loads the default medication set. Already-present codes are kept as is.
func SeedCatalog(db *gorm.DB) error {
	seed := []models.Medication{
		{Code: "M101", Name: "Paracetamol", Price: 25.0, Stock: 100},
		{Code: "M102", Name: "Ibuprofen", Price: 35.0, Stock: 80},
		{Code: "M103", Name: "Cough Syrup", Price: 45.0, Stock: 50},
	}
	for _, m := range seed {
		var existing models.Medication
		if err := db.Where("code = ?", m.Code).First(&existing).Error; err == nil {
			continue
		}
		if err := db.Create(&m).Error; err != nil {
			return fmt.Errorf("failed to seed %s: %w", m.Code, err)
		}
	}
	return nil
}
