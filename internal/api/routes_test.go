package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Koodattu/fyralath-data-tracker/internal/database"
	"github.com/Koodattu/fyralath-data-tracker/internal/models"
	"github.com/Koodattu/fyralath-data-tracker/internal/services"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testServer struct {
	store  *database.Store
	router *gin.Engine
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	name := strings.ReplaceAll(t.Name(), "/", "_")
	db, err := database.Open(fmt.Sprintf("file:api_%s?mode=memory&cache=shared", name))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { _ = database.Close(db) })

	store := database.NewStore(db)
	cache, err := services.NewMemoryCache(16)
	if err != nil {
		t.Fatal(err)
	}
	regions := models.AllRegions()
	history := services.NewHistoryService(store, cache, regions)
	recipe, err := services.LoadRecipe("")
	if err != nil {
		t.Fatal(err)
	}
	worker := services.NewAuctionWorker(nil, store, recipe, regions, history, time.Hour)

	return &testServer{
		store:  store,
		router: SetupRouter(history, worker, store, nil),
	}
}

func (s *testServer) get(path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	s.router.ServeHTTP(w, req)
	return w
}

func TestCurrentBeforeFirstRun(t *testing.T) {
	srv := newTestServer(t)

	w := srv.get("/api/data/current")
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestCurrent(t *testing.T) {
	srv := newTestServer(t)
	err := srv.store.SaveLatest(context.Background(), &models.LatestSnapshot{
		Timestamp: 1710079200000,
		Regions: []models.RegionLatest{{
			Region:        models.RegionEU,
			WowTokenRatio: 0.75,
			TokenPrice:    4000,
			Data:          &models.PricedNode{ItemID: 206448, Name: "Fyr'alath the Dreamrender", AmountNeeded: 1, Price: 3000},
		}},
	})
	if err != nil {
		t.Fatal(err)
	}

	w := srv.get("/api/data/current")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		t.Errorf("Content-Type = %q", ct)
	}

	var body models.LatestSnapshot
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if body.Timestamp != 1710079200000 || len(body.Regions) != 1 || body.Regions[0].Data.Price != 3000 {
		t.Errorf("body = %+v", body)
	}
}

func TestHistoryRoutes(t *testing.T) {
	srv := newTestServer(t)
	ctx := context.Background()

	now := models.HourStart(time.Now())
	_, err := srv.store.InsertSnapshot(ctx, &models.RegionPriceRecord{
		Region:    models.RegionUS,
		Timestamp: now.UnixMilli(),
		Items:     []models.PriceItem{{ID: 206448, Name: "Fyr'alath the Dreamrender", Price: 123}},
	})
	if err != nil {
		t.Fatal(err)
	}
	_, err = srv.store.InsertDailyAverage(ctx, &models.DailyAverageRecord{
		Region:      models.RegionUS,
		Date:        now.AddDate(0, 0, -1).Format(models.DateLayout),
		AverageCost: 120,
		Samples:     24,
	})
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		path string
		code int
	}{
		{"/api/data/history/day", http.StatusOK},
		{"/api/data/history/week", http.StatusOK},
		{"/api/data/history/month", http.StatusOK},
		{"/api/data/history/all", http.StatusOK},
		{"/api/data/history/year", http.StatusBadRequest},
		{"/api/regions/us/snapshots", http.StatusOK},
		{"/api/regions/US/snapshots?period=day", http.StatusOK},
		{"/api/regions/us/averages?period=all", http.StatusOK},
		{"/api/regions/moon/snapshots", http.StatusBadRequest},
		{"/api/regions/eu/averages?period=decade", http.StatusBadRequest},
		{"/api/unknown", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			w := srv.get(tt.path)
			if w.Code != tt.code {
				t.Errorf("GET %s = %d, want %d: %s", tt.path, w.Code, tt.code, w.Body.String())
			}
		})
	}
}

func TestRegionSnapshotsBody(t *testing.T) {
	srv := newTestServer(t)
	ts := models.HourStart(time.Now()).UnixMilli()
	_, err := srv.store.InsertSnapshot(context.Background(), &models.RegionPriceRecord{
		Region:    models.RegionKR,
		Timestamp: ts,
		Items:     []models.PriceItem{{ID: 206448, Name: "Fyr'alath the Dreamrender", Price: 77}},
	})
	if err != nil {
		t.Fatal(err)
	}

	w := srv.get("/api/regions/kr/snapshots?period=day")
	var records []models.RegionPriceRecord
	if err := json.Unmarshal(w.Body.Bytes(), &records); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if len(records) != 1 || records[0].Timestamp != ts || records[0].RootPrice() != 77 {
		t.Errorf("records = %+v", records)
	}

	// A region without data returns an empty list, not null
	w = srv.get("/api/regions/tw/snapshots?period=day")
	if body := strings.TrimSpace(w.Body.String()); body != "[]" {
		t.Errorf("empty region body = %s, want []", body)
	}
}

func TestStatusHealthAndMetrics(t *testing.T) {
	srv := newTestServer(t)

	w := srv.get("/api/status")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var status services.AuctionStatus
	if err := json.Unmarshal(w.Body.Bytes(), &status); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if status.RunInterval != "1h0m0s" || len(status.Regions) != 4 {
		t.Errorf("status = %+v", status)
	}

	if w := srv.get("/health"); w.Code != http.StatusOK {
		t.Errorf("/health = %d, want 200", w.Code)
	}

	w = srv.get("/metrics")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "fyralath_http_requests_total") {
		t.Errorf("/metrics = %d, missing request counter", w.Code)
	}
}
