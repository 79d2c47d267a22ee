package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/Koodattu/fyralath-data-tracker/internal/metrics"
	"github.com/Koodattu/fyralath-data-tracker/internal/models"
)

// ErrUnalignedTimestamp is returned when a snapshot timestamp is not at the top of a UTC hour
var ErrUnalignedTimestamp = errors.New("timestamp is not hour aligned")

// SnapshotWriter persists at most one hourly snapshot per region and hour
type SnapshotWriter struct {
	store SnapshotStore
	mu    sync.Mutex
}

// NewSnapshotWriter creates a new snapshot writer
func NewSnapshotWriter(store SnapshotStore) *SnapshotWriter {
	return &SnapshotWriter{store: store}
}

// WriteIfAbsent stores items for (region, timestamp) unless a snapshot already exists.
// timestamp must already be truncated to the hour (see models.HourStart).
// The check and the insert are serialized within this process only.
func (w *SnapshotWriter) WriteIfAbsent(ctx context.Context, region models.Region, timestamp int64, items []models.PriceItem) (bool, error) {
	if !models.IsHourAligned(timestamp) {
		return false, fmt.Errorf("%w: %d", ErrUnalignedTimestamp, timestamp)
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	exists, err := w.store.HasSnapshot(ctx, region, timestamp)
	if err != nil {
		return false, err
	}
	if exists {
		metrics.SnapshotsTotal.WithLabelValues(string(region), "exists").Inc()
		return false, nil
	}

	record := &models.RegionPriceRecord{
		Region:    region,
		Timestamp: timestamp,
		Items:     items,
	}
	written, err := w.store.InsertSnapshot(ctx, record)
	if err != nil {
		return false, err
	}

	if written {
		metrics.SnapshotsTotal.WithLabelValues(string(region), "written").Inc()
		log.Printf("Snapshot writer: saved %s snapshot for %s (total: %d)",
			region, models.UnixMilli(timestamp).Format("2006-01-02 15:04"), record.RootPrice())
	} else {
		metrics.SnapshotsTotal.WithLabelValues(string(region), "exists").Inc()
	}
	return written, nil
}
