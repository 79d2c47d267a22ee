package services

import (
	"context"

	"github.com/Koodattu/fyralath-data-tracker/internal/models"
)

// SnapshotStore is the persistence boundary used by the pipeline and the read API.
// database.Store implements it.
type SnapshotStore interface {
	HasSnapshot(ctx context.Context, region models.Region, timestamp int64) (bool, error)
	InsertSnapshot(ctx context.Context, record *models.RegionPriceRecord) (bool, error)
	SnapshotsInRange(ctx context.Context, region models.Region, start, end int64) ([]models.RegionPriceRecord, error)

	HasDailyAverage(ctx context.Context, region models.Region, date string) (bool, error)
	InsertDailyAverage(ctx context.Context, record *models.DailyAverageRecord) (bool, error)
	DailyAveragesSince(ctx context.Context, region models.Region, date string) ([]models.DailyAverageRecord, error)

	SaveLatest(ctx context.Context, latest *models.LatestSnapshot) error
	Latest(ctx context.Context) (*models.LatestSnapshot, error)
}
