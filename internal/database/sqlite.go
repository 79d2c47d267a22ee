package database

import (
	"fmt"
	"log"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Koodattu/fyralath-data-tracker/internal/models"
)

// Open connects to the sqlite database at dbPath and migrates the schema
func Open(dbPath string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	log.Println("Database connected successfully")

	if err := migrate(db); err != nil {
		_ = Close(db)
		return nil, err
	}

	log.Println("Database migration completed")
	return db, nil
}

func migrate(db *gorm.DB) error {
	// Duplicates must be gone before AutoMigrate adds the unique indexes
	if err := cleanupDuplicateSnapshots(db); err != nil {
		return fmt.Errorf("failed to clean up duplicate snapshots: %w", err)
	}

	err := db.AutoMigrate(&models.RegionPriceRecord{}, &models.DailyAverageRecord{}, &models.LatestSnapshot{})
	if err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}

	return RunMigrations(db)
}

// Close releases the underlying connection pool
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
