package database

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Koodattu/fyralath-data-tracker/internal/models"
)

// Store persists hourly snapshots, daily averages and the latest snapshot document.
//
// Existence checks and inserts are separate statements. The unique indexes on
// (region, timestamp) and (region, date) combined with insert-or-ignore keep a
// second writer process from creating duplicates, but nothing serializes the
// read-compute-write sequence across processes.
type Store struct {
	db *gorm.DB
}

// NewStore wraps an opened database
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Ping checks that the database is reachable
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// HasSnapshot reports whether an hourly snapshot exists for region at timestamp
func (s *Store) HasSnapshot(ctx context.Context, region models.Region, timestamp int64) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.RegionPriceRecord{}).
		Where("region = ? AND timestamp = ?", region, timestamp).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check snapshot: %w", err)
	}
	return count > 0, nil
}

// InsertSnapshot inserts an hourly snapshot, ignoring it if the key already exists.
// Returns true when a row was written.
func (s *Store) InsertSnapshot(ctx context.Context, record *models.RegionPriceRecord) (bool, error) {
	result := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(record)
	if result.Error != nil {
		return false, fmt.Errorf("failed to insert snapshot: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}

// SnapshotsInRange returns a region's snapshots with start <= timestamp < end, oldest first
func (s *Store) SnapshotsInRange(ctx context.Context, region models.Region, start, end int64) ([]models.RegionPriceRecord, error) {
	var records []models.RegionPriceRecord
	err := s.db.WithContext(ctx).
		Where("region = ? AND timestamp >= ? AND timestamp < ?", region, start, end).
		Order("timestamp ASC").
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshots: %w", err)
	}
	return records, nil
}

// HasDailyAverage reports whether a daily average exists for region on date
func (s *Store) HasDailyAverage(ctx context.Context, region models.Region, date string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.DailyAverageRecord{}).
		Where("region = ? AND date = ?", region, date).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check daily average: %w", err)
	}
	return count > 0, nil
}

// InsertDailyAverage inserts a daily average, ignoring it if the key already exists.
// Returns true when a row was written.
func (s *Store) InsertDailyAverage(ctx context.Context, record *models.DailyAverageRecord) (bool, error) {
	result := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(record)
	if result.Error != nil {
		return false, fmt.Errorf("failed to insert daily average: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}

// DailyAveragesSince returns a region's daily averages on or after the given
// YYYY-MM-DD date, oldest first. An empty date returns all of them.
func (s *Store) DailyAveragesSince(ctx context.Context, region models.Region, date string) ([]models.DailyAverageRecord, error) {
	var records []models.DailyAverageRecord
	query := s.db.WithContext(ctx).Where("region = ?", region)
	if date != "" {
		query = query.Where("date >= ?", date)
	}
	if err := query.Order("date ASC").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to query daily averages: %w", err)
	}
	return records, nil
}

// SaveLatest replaces the latest snapshot document
func (s *Store) SaveLatest(ctx context.Context, latest *models.LatestSnapshot) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.LatestSnapshot{}).Error; err != nil {
			return fmt.Errorf("failed to clear latest snapshot: %w", err)
		}
		latest.ID = 0
		if err := tx.Create(latest).Error; err != nil {
			return fmt.Errorf("failed to save latest snapshot: %w", err)
		}
		return nil
	})
}

// Latest returns the latest snapshot document, or nil if none was saved yet
func (s *Store) Latest(ctx context.Context) (*models.LatestSnapshot, error) {
	var latest models.LatestSnapshot
	err := s.db.WithContext(ctx).Order("id DESC").First(&latest).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load latest snapshot: %w", err)
	}
	return &latest, nil
}
