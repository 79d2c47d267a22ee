package services

import (
	"context"
	"fmt"
	"log"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Koodattu/fyralath-data-tracker/internal/metrics"
	"github.com/Koodattu/fyralath-data-tracker/internal/models"
)

const defaultRunInterval = time.Hour

// AuctionSource provides live auction data for a region
type AuctionSource interface {
	FetchCommodities(ctx context.Context, region models.Region) ([]models.AuctionListing, error)
	FetchTokenPrice(ctx context.Context, region models.Region) (int64, error)
}

// RunResult summarizes one pass over all regions
type RunResult struct {
	RunID          string          `json:"run_id"`
	Timestamp      int64           `json:"timestamp"`
	SnapshotHour   int64           `json:"snapshot_hour"`
	Written        []models.Region `json:"written,omitempty"`
	AlreadyPresent []models.Region `json:"already_present,omitempty"`
	FetchFailed    []models.Region `json:"fetch_failed,omitempty"`
	Averaged       []models.Region `json:"averaged,omitempty"`
}

// AuctionStatus is the worker state exposed at /api/status
type AuctionStatus struct {
	LastRunTime   time.Time       `json:"last_run_time"`
	NextRunTime   time.Time       `json:"next_run_time"`
	RunInterval   string          `json:"run_interval"`
	RunsCompleted int             `json:"runs_completed"`
	RunsFailed    int             `json:"runs_failed"`
	LastError     string          `json:"last_error,omitempty"`
	LastResult    *RunResult      `json:"last_result,omitempty"`
	Regions       []models.Region `json:"regions"`
}

// AuctionWorker runs the hourly fetch, price, snapshot and rollup pipeline
type AuctionWorker struct {
	source      AuctionSource
	store       SnapshotStore
	recipe      *models.BillOfMaterialsNode
	regions     []models.Region
	writer      *SnapshotWriter
	rollup      *RollupAggregator
	history     *HistoryService
	runInterval time.Duration
	now         func() time.Time

	mu            sync.RWMutex
	lastRunTime   time.Time
	runsCompleted int
	runsFailed    int
	lastError     string
	lastResult    *RunResult
}

// NewAuctionWorker creates a new auction worker. history may be nil.
func NewAuctionWorker(source AuctionSource, store SnapshotStore, recipe *models.BillOfMaterialsNode, regions []models.Region, history *HistoryService, runInterval time.Duration) *AuctionWorker {
	if runInterval <= 0 {
		runInterval = defaultRunInterval
	}
	return &AuctionWorker{
		source:      source,
		store:       store,
		recipe:      recipe,
		regions:     regions,
		writer:      NewSnapshotWriter(store),
		rollup:      NewRollupAggregator(store),
		history:     history,
		runInterval: runInterval,
		now:         time.Now,
	}
}

// Start runs the pipeline immediately and then once per interval until ctx is cancelled
func (w *AuctionWorker) Start(ctx context.Context) {
	log.Printf("Auction worker started: will price %d regions every %v", len(w.regions), w.runInterval)

	w.runAndLog(ctx)

	ticker := time.NewTicker(w.runInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Auction worker stopping...")
			return
		case <-ticker.C:
			w.runAndLog(ctx)
		}
	}
}

func (w *AuctionWorker) runAndLog(ctx context.Context) {
	result, err := w.RunOnce(ctx)
	if err != nil {
		log.Printf("Auction worker: run failed: %v (next attempt in %v)", err, w.runInterval)
		return
	}
	log.Printf("Auction worker: run %s complete (written: %d, existing: %d, fetch failed: %d, averaged: %d)",
		result.RunID, len(result.Written), len(result.AlreadyPresent), len(result.FetchFailed), len(result.Averaged))
}

// RunOnce processes every region once. A source failure skips that region; a
// store failure aborts the run and is returned.
func (w *AuctionWorker) RunOnce(ctx context.Context) (result *RunResult, err error) {
	start := time.Now()
	runTime := w.now().UTC()
	result = &RunResult{
		RunID:        uuid.NewString(),
		Timestamp:    runTime.UnixMilli(),
		SnapshotHour: models.HourStart(runTime).UnixMilli(),
	}
	changed := false

	defer func() {
		if changed && w.history != nil {
			w.history.InvalidateCache()
		}
		metrics.RunDuration.Observe(time.Since(start).Seconds())
		w.recordRun(runTime, result, err)
	}()

	itemIDs := w.recipe.ItemIDs()
	latest := &models.LatestSnapshot{Timestamp: runTime.UnixMilli()}

	for _, region := range w.regions {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		entry, ok := w.priceRegion(ctx, region, itemIDs)
		if ok {
			latest.Regions = append(latest.Regions, entry)

			written, err := w.writer.WriteIfAbsent(ctx, region, result.SnapshotHour, entry.Data.Items())
			if err != nil {
				return result, fmt.Errorf("failed to write %s snapshot: %w", region, err)
			}
			if written {
				changed = true
				result.Written = append(result.Written, region)
			} else {
				result.AlreadyPresent = append(result.AlreadyPresent, region)
			}
		} else {
			result.FetchFailed = append(result.FetchFailed, region)
		}

		// The rollup reads only stored snapshots, so it runs even when the fetch failed
		average, err := w.rollup.RollupPreviousDay(ctx, region, runTime)
		if err != nil {
			return result, fmt.Errorf("failed to roll up %s: %w", region, err)
		}
		if average != nil {
			changed = true
			result.Averaged = append(result.Averaged, region)
		}
	}

	if len(latest.Regions) > 0 {
		if err := w.store.SaveLatest(ctx, latest); err != nil {
			return result, err
		}
		changed = true
	}

	return result, nil
}

// priceRegion fetches one region's auctions and prices the recipe.
// Returns false when the auction data could not be fetched.
func (w *AuctionWorker) priceRegion(ctx context.Context, region models.Region, itemIDs []int) (models.RegionLatest, bool) {
	listings, err := w.source.FetchCommodities(ctx, region)
	if err != nil {
		metrics.RegionFetchFailures.WithLabelValues(string(region), "commodities").Inc()
		log.Printf("Auction worker: failed to fetch %s auctions, skipping region: %v", region, err)
		return models.RegionLatest{}, false
	}

	prices := ExtractMinPrices(listings, itemIDs)
	priced := ComputeCompositePrice(w.recipe, prices)

	missing := MissingPrices(w.recipe, prices)
	metrics.MissingPrices.WithLabelValues(string(region)).Set(float64(len(missing)))
	if len(missing) > 0 {
		log.Printf("Auction worker: %s has no listings for items %v, counting them as 0", region, missing)
	}

	entry := models.RegionLatest{Region: region, Data: priced}

	tokenPrice, err := w.source.FetchTokenPrice(ctx, region)
	if err != nil {
		metrics.RegionFetchFailures.WithLabelValues(string(region), "token").Inc()
		log.Printf("Auction worker: failed to fetch %s token price: %v", region, err)
	} else {
		entry.TokenPrice = tokenPrice
		entry.WowTokenRatio = TokenRatio(priced.Price, tokenPrice)
	}

	metrics.CraftingCost.WithLabelValues(string(region)).Set(float64(priced.Price))
	metrics.TokenRatio.WithLabelValues(string(region)).Set(entry.WowTokenRatio)
	log.Printf("Auction worker: %s crafting cost %d copper from %d listings (token ratio %.3f)",
		region, priced.Price, len(listings), entry.WowTokenRatio)

	return entry, true
}

func (w *AuctionWorker) recordRun(runTime time.Time, result *RunResult, err error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.lastRunTime = runTime
	w.lastResult = result
	if err != nil {
		w.runsFailed++
		w.lastError = err.Error()
		metrics.RunsTotal.WithLabelValues("failed").Inc()
		return
	}
	w.runsCompleted++
	w.lastError = ""
	metrics.RunsTotal.WithLabelValues("success").Inc()
}

// GetStatus returns the current status
func (w *AuctionWorker) GetStatus() AuctionStatus {
	w.mu.RLock()
	defer w.mu.RUnlock()

	status := AuctionStatus{
		LastRunTime:   w.lastRunTime,
		RunInterval:   w.runInterval.String(),
		RunsCompleted: w.runsCompleted,
		RunsFailed:    w.runsFailed,
		LastError:     w.lastError,
		LastResult:    w.lastResult,
		Regions:       w.regions,
	}
	if !w.lastRunTime.IsZero() {
		status.NextRunTime = w.lastRunTime.Add(w.runInterval)
	}
	return status
}

// TokenRatio expresses a copper price in WoW tokens, rounded to three decimals
func TokenRatio(price, tokenPrice int64) float64 {
	if tokenPrice <= 0 {
		return 0
	}
	return math.Round(float64(price)/float64(tokenPrice)*1000) / 1000
}
