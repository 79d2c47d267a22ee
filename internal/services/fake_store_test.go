package services

import (
	"context"
	"sort"
	"sync"

	"github.com/Koodattu/fyralath-data-tracker/internal/models"
)

// memoryStore is an in-memory SnapshotStore for tests
type memoryStore struct {
	mu        sync.Mutex
	snapshots []models.RegionPriceRecord
	averages  []models.DailyAverageRecord
	latest    *models.LatestSnapshot

	insertCalls int
	failWith    error // returned by every write when set
}

func (s *memoryStore) HasSnapshot(ctx context.Context, region models.Region, timestamp int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.snapshots {
		if r.Region == region && r.Timestamp == timestamp {
			return true, nil
		}
	}
	return false, nil
}

func (s *memoryStore) InsertSnapshot(ctx context.Context, record *models.RegionPriceRecord) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.insertCalls++
	if s.failWith != nil {
		return false, s.failWith
	}
	for _, r := range s.snapshots {
		if r.Region == record.Region && r.Timestamp == record.Timestamp {
			return false, nil
		}
	}
	s.snapshots = append(s.snapshots, *record)
	return true, nil
}

func (s *memoryStore) SnapshotsInRange(ctx context.Context, region models.Region, start, end int64) ([]models.RegionPriceRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.RegionPriceRecord
	for _, r := range s.snapshots {
		if r.Region == region && r.Timestamp >= start && r.Timestamp < end {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp < out[j].Timestamp })
	return out, nil
}

func (s *memoryStore) HasDailyAverage(ctx context.Context, region models.Region, date string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.averages {
		if a.Region == region && a.Date == date {
			return true, nil
		}
	}
	return false, nil
}

func (s *memoryStore) InsertDailyAverage(ctx context.Context, record *models.DailyAverageRecord) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return false, s.failWith
	}
	for _, a := range s.averages {
		if a.Region == record.Region && a.Date == record.Date {
			return false, nil
		}
	}
	s.averages = append(s.averages, *record)
	return true, nil
}

func (s *memoryStore) DailyAveragesSince(ctx context.Context, region models.Region, date string) ([]models.DailyAverageRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.DailyAverageRecord
	for _, a := range s.averages {
		if a.Region == region && a.Date >= date {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out, nil
}

func (s *memoryStore) SaveLatest(ctx context.Context, latest *models.LatestSnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return s.failWith
	}
	copied := *latest
	s.latest = &copied
	return nil
}

func (s *memoryStore) Latest(ctx context.Context) (*models.LatestSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.latest, nil
}

func (s *memoryStore) addSnapshot(region models.Region, timestamp, rootPrice int64) {
	s.snapshots = append(s.snapshots, models.RegionPriceRecord{
		Region:    region,
		Timestamp: timestamp,
		Items:     []models.PriceItem{{ID: 206448, Name: "Fyr'alath the Dreamrender", Price: rootPrice}},
	})
}

func int64Ptr(v int64) *int64 {
	return &v
}
