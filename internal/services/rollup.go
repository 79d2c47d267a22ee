package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/Koodattu/fyralath-data-tracker/internal/metrics"
	"github.com/Koodattu/fyralath-data-tracker/internal/models"
)

// ErrDayNotComplete is returned when asked to roll up a UTC day that has not ended yet
var ErrDayNotComplete = errors.New("day has not ended yet")

// RollupAggregator writes one daily average per region for each completed UTC day
type RollupAggregator struct {
	store SnapshotStore
	mu    sync.Mutex
	now   func() time.Time
}

// NewRollupAggregator creates a new daily rollup aggregator
func NewRollupAggregator(store SnapshotStore) *RollupAggregator {
	return &RollupAggregator{store: store, now: time.Now}
}

// RollupPreviousDay averages the region's hourly snapshots of the UTC day before runTime.
// Returns nil without error when the day already has an average or has no snapshots.
func (a *RollupAggregator) RollupPreviousDay(ctx context.Context, region models.Region, runTime time.Time) (*models.DailyAverageRecord, error) {
	return a.RollupDay(ctx, region, models.DayStart(runTime).AddDate(0, 0, -1))
}

// RollupDay writes the daily average of the UTC day containing day.
// The day must be over; otherwise ErrDayNotComplete is returned and nothing is written.
func (a *RollupAggregator) RollupDay(ctx context.Context, region models.Region, day time.Time) (*models.DailyAverageRecord, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	average, err := a.computeDay(ctx, region, day)
	if err != nil || average == nil {
		return nil, err
	}

	written, err := a.store.InsertDailyAverage(ctx, average)
	if err != nil {
		return nil, err
	}
	if !written {
		return nil, nil
	}

	metrics.DailyAveragesTotal.WithLabelValues(string(region), "written").Inc()
	log.Printf("Rollup: saved %s daily average for %s: %d (%d snapshots)", region, average.Date, average.AverageCost, average.Samples)
	return average, nil
}

// Backfill computes averages for every completed UTC day before now that has
// snapshots but no average yet. With dryRun set nothing is written.
func (a *RollupAggregator) Backfill(ctx context.Context, region models.Region, now time.Time, dryRun bool) ([]models.DailyAverageRecord, error) {
	records, err := a.store.SnapshotsInRange(ctx, region, 0, models.DayStart(now).UnixMilli())
	if err != nil {
		return nil, err
	}

	var days []time.Time
	seen := make(map[string]bool)
	for i := range records {
		day := models.DayStart(models.UnixMilli(records[i].Timestamp))
		if key := day.Format(models.DateLayout); !seen[key] {
			seen[key] = true
			days = append(days, day)
		}
	}

	var filled []models.DailyAverageRecord
	for _, day := range days {
		if err := ctx.Err(); err != nil {
			return filled, err
		}

		var average *models.DailyAverageRecord
		if dryRun {
			a.mu.Lock()
			average, err = a.computeDay(ctx, region, day)
			a.mu.Unlock()
		} else {
			average, err = a.RollupDay(ctx, region, day)
		}
		if err != nil {
			return filled, err
		}
		if average != nil {
			filled = append(filled, *average)
		}
	}
	return filled, nil
}

// computeDay builds the average for one day, or nil when it exists or has no data.
// Callers hold a.mu.
func (a *RollupAggregator) computeDay(ctx context.Context, region models.Region, day time.Time) (*models.DailyAverageRecord, error) {
	dayStart := models.DayStart(day)
	dayEnd := dayStart.AddDate(0, 0, 1)
	date := dayStart.Format(models.DateLayout)

	// Averages are never rewritten, so a partial day would stay partial forever
	if dayEnd.After(a.now()) {
		return nil, fmt.Errorf("%w: %s %s", ErrDayNotComplete, region, date)
	}

	exists, err := a.store.HasDailyAverage(ctx, region, date)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, nil
	}

	records, err := a.store.SnapshotsInRange(ctx, region, dayStart.UnixMilli(), dayEnd.UnixMilli())
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		metrics.DailyAveragesTotal.WithLabelValues(string(region), "empty").Inc()
		log.Printf("Rollup: no %s snapshots for %s, skipping daily average", region, date)
		return nil, nil
	}

	prices := make([]int64, 0, len(records))
	for i := range records {
		prices = append(prices, records[i].RootPrice())
	}

	return &models.DailyAverageRecord{
		Region:      region,
		Date:        date,
		AverageCost: RoundedMean(prices),
		Samples:     len(prices),
	}, nil
}

// RoundedMean returns the arithmetic mean of non-negative values rounded half up.
// The caller guarantees values is not empty.
func RoundedMean(values []int64) int64 {
	var sum int64
	for _, v := range values {
		sum += v
	}
	n := int64(len(values))
	return (2*sum + n) / (2 * n)
}
