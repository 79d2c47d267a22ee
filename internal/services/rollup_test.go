package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Koodattu/fyralath-data-tracker/internal/models"
)

func TestRollupPreviousDay(t *testing.T) {
	store := &memoryStore{}
	day := time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC)
	store.addSnapshot(models.RegionEU, day.Add(1*time.Hour).UnixMilli(), 100)
	store.addSnapshot(models.RegionEU, day.Add(7*time.Hour).UnixMilli(), 200)
	store.addSnapshot(models.RegionEU, day.Add(23*time.Hour).UnixMilli(), 300)
	// Outside the day on both ends
	store.addSnapshot(models.RegionEU, day.Add(-1*time.Hour).UnixMilli(), 9000)
	store.addSnapshot(models.RegionEU, day.Add(24*time.Hour).UnixMilli(), 9000)
	// Other region
	store.addSnapshot(models.RegionUS, day.Add(2*time.Hour).UnixMilli(), 5)

	rollup := NewRollupAggregator(store)
	runTime := time.Date(2024, 3, 10, 0, 5, 0, 0, time.UTC)

	average, err := rollup.RollupPreviousDay(context.Background(), models.RegionEU, runTime)
	if err != nil {
		t.Fatalf("RollupPreviousDay returned %v", err)
	}
	if average == nil {
		t.Fatal("expected a daily average")
	}
	if average.Date != "2024-03-09" {
		t.Errorf("date = %s, want 2024-03-09", average.Date)
	}
	if average.AverageCost != 200 {
		t.Errorf("average = %d, want 200", average.AverageCost)
	}
	if average.Samples != 3 {
		t.Errorf("samples = %d, want 3", average.Samples)
	}
}

func TestRollupPreviousDayOnlyOnce(t *testing.T) {
	store := &memoryStore{}
	day := time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC)
	store.addSnapshot(models.RegionTW, day.Add(3*time.Hour).UnixMilli(), 42)

	rollup := NewRollupAggregator(store)
	ctx := context.Background()

	// Every hourly run of March 10th targets March 9th
	for hour := 0; hour < 24; hour++ {
		runTime := time.Date(2024, 3, 10, hour, 1, 0, 0, time.UTC)
		average, err := rollup.RollupPreviousDay(ctx, models.RegionTW, runTime)
		if err != nil {
			t.Fatalf("run at %02d:01 returned %v", hour, err)
		}
		if hour == 0 && average == nil {
			t.Error("first run of the day should write the average")
		}
		if hour > 0 && average != nil {
			t.Errorf("run at %02d:01 wrote a second average", hour)
		}
	}

	if len(store.averages) != 1 {
		t.Errorf("got %d daily averages, want 1", len(store.averages))
	}
}

func TestRollupPreviousDayEmpty(t *testing.T) {
	store := &memoryStore{}
	rollup := NewRollupAggregator(store)

	average, err := rollup.RollupPreviousDay(context.Background(), models.RegionKR, time.Date(2024, 3, 10, 5, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("RollupPreviousDay returned %v", err)
	}
	if average != nil {
		t.Errorf("empty day should not produce an average, got %+v", average)
	}
	if len(store.averages) != 0 {
		t.Error("empty day should not persist anything")
	}
}

func TestRollupUsesUTCDay(t *testing.T) {
	store := &memoryStore{}
	store.addSnapshot(models.RegionUS, time.Date(2024, 3, 9, 23, 0, 0, 0, time.UTC).UnixMilli(), 10)

	// 20:00 on March 9th in New York is already March 10th UTC
	ny := time.FixedZone("EST", -5*60*60)
	runTime := time.Date(2024, 3, 9, 20, 0, 0, 0, ny)

	average, err := NewRollupAggregator(store).RollupPreviousDay(context.Background(), models.RegionUS, runTime)
	if err != nil {
		t.Fatalf("RollupPreviousDay returned %v", err)
	}
	if average == nil || average.Date != "2024-03-09" {
		t.Errorf("average = %+v, want date 2024-03-09", average)
	}
}

func TestRoundedMean(t *testing.T) {
	tests := []struct {
		values []int64
		want   int64
	}{
		{[]int64{100, 200, 300}, 200},
		{[]int64{1, 2}, 2},    // 1.5 rounds up
		{[]int64{1, 1, 2}, 1}, // 1.33 rounds down
		{[]int64{1, 2, 2}, 2}, // 1.67 rounds up
		{[]int64{0}, 0},
		{[]int64{7}, 7},
		{[]int64{250000000000, 250000000001}, 250000000001},
	}

	for _, tt := range tests {
		if got := RoundedMean(tt.values); got != tt.want {
			t.Errorf("RoundedMean(%v) = %d, want %d", tt.values, got, tt.want)
		}
	}
}

func TestBackfill(t *testing.T) {
	store := &memoryStore{}
	for _, ts := range []time.Time{
		time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
		time.Date(2024, 3, 1, 11, 0, 0, 0, time.UTC),
		time.Date(2024, 3, 4, 8, 0, 0, 0, time.UTC),
		time.Date(2024, 3, 9, 8, 0, 0, 0, time.UTC), // today, not complete yet
	} {
		store.addSnapshot(models.RegionUS, ts.UnixMilli(), int64(ts.Hour()))
	}
	store.averages = append(store.averages, models.DailyAverageRecord{Region: models.RegionUS, Date: "2024-03-04", AverageCost: 8})

	rollup := NewRollupAggregator(store)
	now := time.Date(2024, 3, 9, 12, 0, 0, 0, time.UTC)

	pending, err := rollup.Backfill(context.Background(), models.RegionUS, now, true)
	if err != nil {
		t.Fatalf("dry run returned %v", err)
	}
	if len(pending) != 1 || pending[0].Date != "2024-03-01" || pending[0].AverageCost != 11 {
		t.Errorf("pending = %+v, want 2024-03-01 at 11", pending)
	}
	if len(store.averages) != 1 {
		t.Fatal("dry run should not write")
	}

	filled, err := rollup.Backfill(context.Background(), models.RegionUS, now, false)
	if err != nil {
		t.Fatalf("Backfill returned %v", err)
	}
	if len(filled) != 1 || len(store.averages) != 2 {
		t.Errorf("filled = %+v, stored = %d", filled, len(store.averages))
	}

	again, _ := rollup.Backfill(context.Background(), models.RegionUS, now, false)
	if len(again) != 0 {
		t.Errorf("second backfill wrote %+v", again)
	}
}

func TestRollupDayRefusesUnfinishedDay(t *testing.T) {
	store := &memoryStore{}
	store.addSnapshot(models.RegionUS, time.Date(2024, 3, 10, 1, 0, 0, 0, time.UTC).UnixMilli(), 100)

	rollup := NewRollupAggregator(store)
	rollup.now = func() time.Time { return time.Date(2024, 3, 10, 5, 30, 0, 0, time.UTC) }
	ctx := context.Background()

	tests := []struct {
		name string
		day  time.Time
	}{
		{"today", time.Date(2024, 3, 10, 5, 30, 0, 0, time.UTC)},
		{"tomorrow", time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			average, err := rollup.RollupDay(ctx, models.RegionUS, tt.day)
			if !errors.Is(err, ErrDayNotComplete) {
				t.Errorf("err = %v, want ErrDayNotComplete", err)
			}
			if average != nil {
				t.Errorf("average = %+v, want nil", average)
			}
		})
	}
	if len(store.averages) != 0 {
		t.Fatalf("unfinished day wrote %+v", store.averages)
	}

	// Once the day is over its full set of snapshots is averaged
	store.addSnapshot(models.RegionUS, time.Date(2024, 3, 10, 20, 0, 0, 0, time.UTC).UnixMilli(), 900)
	runTime := time.Date(2024, 3, 11, 0, 5, 0, 0, time.UTC)
	rollup.now = func() time.Time { return runTime }

	average, err := rollup.RollupPreviousDay(ctx, models.RegionUS, runTime)
	if err != nil {
		t.Fatalf("RollupPreviousDay returned %v", err)
	}
	if average == nil || average.Date != "2024-03-10" || average.AverageCost != 500 || average.Samples != 2 {
		t.Errorf("average = %+v, want 2024-03-10 at 500 from 2 snapshots", average)
	}
}

func TestBackfillDryRunSkipsToday(t *testing.T) {
	store := &memoryStore{}
	store.addSnapshot(models.RegionEU, time.Date(2024, 3, 10, 1, 0, 0, 0, time.UTC).UnixMilli(), 100)

	rollup := NewRollupAggregator(store)
	now := time.Date(2024, 3, 10, 5, 30, 0, 0, time.UTC)
	rollup.now = func() time.Time { return now }

	pending, err := rollup.Backfill(context.Background(), models.RegionEU, now, true)
	if err != nil {
		t.Fatalf("Backfill returned %v", err)
	}
	if len(pending) != 0 {
		t.Errorf("pending = %+v, want nothing for the current day", pending)
	}
}
