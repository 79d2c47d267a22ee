package database

import (
	"log"
	"time"

	"gorm.io/gorm"
)

// cleanupDuplicateSnapshots removes duplicate hourly and daily rows before the
// unique indexes are (re)created. Duplicates only appear when the database file
// was imported or edited by hand with the indexes dropped. The oldest row wins,
// since records are never overwritten once written.
func cleanupDuplicateSnapshots(db *gorm.DB) error {
	tables := []struct {
		name    string
		groupBy string
	}{
		{"region_price_records", "region, timestamp"},
		{"daily_average_records", "region, date"},
	}

	for _, table := range tables {
		if !db.Migrator().HasTable(table.name) {
			continue
		}

		result := db.Exec(`
			DELETE FROM ` + table.name + `
			WHERE id NOT IN (
				SELECT MIN(id)
				FROM ` + table.name + `
				GROUP BY ` + table.groupBy + `
			)
		`)
		if result.Error != nil {
			return result.Error
		}

		if result.RowsAffected > 0 {
			log.Printf("Cleaned up %d duplicate %s entries", result.RowsAffected, table.name)
		}
	}

	return nil
}

// RunMigrations runs custom data migrations after schema changes
func RunMigrations(db *gorm.DB) error {
	return migrateHourAlignment(db)
}

// migrateHourAlignment reports hourly rows whose timestamp is not on an hour
// boundary. The pipeline always writes hour starts, so such rows come from
// imported data or manual edits; they are left untouched but flagged.
func migrateHourAlignment(db *gorm.DB) error {
	if !db.Migrator().HasTable("region_price_records") {
		return nil
	}

	var unaligned int64
	err := db.Table("region_price_records").
		Where("timestamp % ? != 0", time.Hour.Milliseconds()).
		Count(&unaligned).Error
	if err != nil {
		return err
	}

	if unaligned > 0 {
		log.Printf("Warning: %d hourly snapshots are not hour aligned", unaligned)
	}
	return nil
}
