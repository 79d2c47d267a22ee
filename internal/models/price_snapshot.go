package models

import (
	"time"
)

// PriceItem is one priced entry of a snapshot; the root item comes first
type PriceItem struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Price int64  `json:"price"`
}

// RegionPriceRecord stores one hourly crafting cost reading for a region.
// At most one row exists per (region, timestamp) and rows are never updated.
type RegionPriceRecord struct {
	ID        uint        `json:"-" gorm:"primaryKey;autoIncrement"`
	Region    Region      `json:"region" gorm:"not null;uniqueIndex:idx_region_hour"`
	Timestamp int64       `json:"timestamp" gorm:"not null;uniqueIndex:idx_region_hour"` // ms, hour-aligned UTC
	Items     []PriceItem `json:"items" gorm:"serializer:json"`
	CreatedAt time.Time   `json:"-"`
}

// RootPrice returns the crafted item's total cost (0 for an empty record)
func (r *RegionPriceRecord) RootPrice() int64 {
	if len(r.Items) == 0 {
		return 0
	}
	return r.Items[0].Price
}

// DailyAverageRecord stores the mean hourly root price of one UTC calendar day
type DailyAverageRecord struct {
	ID          uint      `json:"-" gorm:"primaryKey;autoIncrement"`
	Region      Region    `json:"region" gorm:"not null;uniqueIndex:idx_region_date"`
	Date        string    `json:"date" gorm:"not null;uniqueIndex:idx_region_date"` // YYYY-MM-DD
	AverageCost int64     `json:"average_cost"`
	Samples     int       `json:"samples"`
	CreatedAt   time.Time `json:"-"`
}

// RegionLatest is one region's entry in the latest snapshot document
type RegionLatest struct {
	Region        Region      `json:"region"`
	WowTokenRatio float64     `json:"wow_token_ratio"`
	TokenPrice    int64       `json:"token_price"`
	Data          *PricedNode `json:"data"`
}

// LatestSnapshot is the single most recent reading across all regions.
// The table holds one row which is replaced after every run.
type LatestSnapshot struct {
	ID        uint           `json:"-" gorm:"primaryKey"`
	Timestamp int64          `json:"timestamp"` // ms, time of the run
	Regions   []RegionLatest `json:"data" gorm:"serializer:json"`
}

// RegionHistory groups history rows of one region for the combined history route
type RegionHistory struct {
	Region Region `json:"region"`
	Data   any    `json:"data"`
}
