package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/Koodattu/fyralath-data-tracker/internal/models"
)

// ErrNoSnapshot is returned when no pipeline run has produced a latest snapshot yet
var ErrNoSnapshot = errors.New("no snapshot available yet")

// HistoryService serves persisted prices to the HTTP API
type HistoryService struct {
	store   SnapshotStore
	cache   ResponseCache
	regions []models.Region
	now     func() time.Time

	// generation is bumped by InvalidateCache; a response loaded under an
	// older generation is returned but not cached
	cacheMu    sync.Mutex
	generation uint64
}

// NewHistoryService creates a new history service. cache may be nil.
func NewHistoryService(store SnapshotStore, cache ResponseCache, regions []models.Region) *HistoryService {
	return &HistoryService{
		store:   store,
		cache:   cache,
		regions: regions,
		now:     time.Now,
	}
}

// GetLatestSnapshot returns the most recent run's prices, or nil before the first run
func (s *HistoryService) GetLatestSnapshot(ctx context.Context) (*models.LatestSnapshot, error) {
	return s.store.Latest(ctx)
}

// GetHourlySnapshots returns a region's hourly snapshots within period, oldest first
func (s *HistoryService) GetHourlySnapshots(ctx context.Context, region models.Region, period models.Period) ([]models.RegionPriceRecord, error) {
	var start int64
	if since := period.Since(s.now()); !since.IsZero() {
		start = since.UnixMilli()
	}
	records, err := s.store.SnapshotsInRange(ctx, region, start, math.MaxInt64)
	if err != nil {
		return nil, err
	}
	if records == nil {
		records = []models.RegionPriceRecord{}
	}
	return records, nil
}

// GetDailyAverages returns a region's daily averages within period, oldest first
func (s *HistoryService) GetDailyAverages(ctx context.Context, region models.Region, period models.Period) ([]models.DailyAverageRecord, error) {
	var since string
	if start := period.Since(s.now()); !start.IsZero() {
		since = start.Format(models.DateLayout)
	}
	records, err := s.store.DailyAveragesSince(ctx, region, since)
	if err != nil {
		return nil, err
	}
	if records == nil {
		records = []models.DailyAverageRecord{}
	}
	return records, nil
}

// GetRegionHistory returns every region's history for period: hourly
// snapshots for day and week, daily averages for month and all
func (s *HistoryService) GetRegionHistory(ctx context.Context, period models.Period) ([]models.RegionHistory, error) {
	history := make([]models.RegionHistory, 0, len(s.regions))
	for _, region := range s.regions {
		var data any
		var err error
		if period.UsesDailyAverages() {
			data, err = s.GetDailyAverages(ctx, region, period)
		} else {
			data, err = s.GetHourlySnapshots(ctx, region, period)
		}
		if err != nil {
			return nil, err
		}
		history = append(history, models.RegionHistory{Region: region, Data: data})
	}
	return history, nil
}

// CurrentResponse returns the serialized latest snapshot
func (s *HistoryService) CurrentResponse(ctx context.Context) ([]byte, error) {
	return s.cachedJSON("current", func() (any, error) {
		latest, err := s.GetLatestSnapshot(ctx)
		if err != nil {
			return nil, err
		}
		if latest == nil {
			return nil, ErrNoSnapshot
		}
		return latest, nil
	})
}

// HistoryResponse returns the serialized history of all regions
func (s *HistoryService) HistoryResponse(ctx context.Context, period models.Period) ([]byte, error) {
	return s.cachedJSON("history:"+string(period), func() (any, error) {
		return s.GetRegionHistory(ctx, period)
	})
}

// SnapshotsResponse returns a region's serialized hourly snapshots
func (s *HistoryService) SnapshotsResponse(ctx context.Context, region models.Region, period models.Period) ([]byte, error) {
	return s.cachedJSON(fmt.Sprintf("snapshots:%s:%s", region, period), func() (any, error) {
		return s.GetHourlySnapshots(ctx, region, period)
	})
}

// AveragesResponse returns a region's serialized daily averages
func (s *HistoryService) AveragesResponse(ctx context.Context, region models.Region, period models.Period) ([]byte, error) {
	return s.cachedJSON(fmt.Sprintf("averages:%s:%s", region, period), func() (any, error) {
		return s.GetDailyAverages(ctx, region, period)
	})
}

// InvalidateCache drops all cached responses after new data was written
func (s *HistoryService) InvalidateCache() {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()

	s.generation++
	if s.cache != nil {
		s.cache.Purge()
	}
}

func (s *HistoryService) cachedJSON(key string, load func() (any, error)) ([]byte, error) {
	if s.cache != nil {
		if data, ok := s.cache.Get(key); ok {
			return data, nil
		}
	}

	s.cacheMu.Lock()
	generation := s.generation
	s.cacheMu.Unlock()

	value, err := load()
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("failed to encode response: %w", err)
	}

	if s.cache != nil {
		s.cacheMu.Lock()
		if s.generation == generation {
			s.cache.Set(key, data)
		}
		s.cacheMu.Unlock()
	}
	return data, nil
}
