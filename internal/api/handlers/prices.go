package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Koodattu/fyralath-data-tracker/internal/models"
	"github.com/Koodattu/fyralath-data-tracker/internal/services"
)

type PriceHandler struct {
	history *services.HistoryService
}

func NewPriceHandler(history *services.HistoryService) *PriceHandler {
	return &PriceHandler{
		history: history,
	}
}

// GetCurrent returns the latest crafting cost of every region
func (h *PriceHandler) GetCurrent(c *gin.Context) {
	data, err := h.history.CurrentResponse(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", data)
}

// GetHistory returns all regions' history for a period.
// Day and week return hourly snapshots, month and all return daily averages.
func (h *PriceHandler) GetHistory(c *gin.Context) {
	period, err := models.ParsePeriod(c.Param("period"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "period must be one of day, week, month, all"})
		return
	}

	data, err := h.history.HistoryResponse(c.Request.Context(), period)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", data)
}

// GetRegionSnapshots returns one region's hourly snapshots
func (h *PriceHandler) GetRegionSnapshots(c *gin.Context) {
	region, period, ok := parseRegionQuery(c)
	if !ok {
		return
	}

	data, err := h.history.SnapshotsResponse(c.Request.Context(), region, period)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", data)
}

// GetRegionAverages returns one region's daily averages
func (h *PriceHandler) GetRegionAverages(c *gin.Context) {
	region, period, ok := parseRegionQuery(c)
	if !ok {
		return
	}

	data, err := h.history.AveragesResponse(c.Request.Context(), region, period)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", data)
}

func parseRegionQuery(c *gin.Context) (models.Region, models.Period, bool) {
	region, err := models.ParseRegion(c.Param("region"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "region must be one of us, eu, tw, kr"})
		return "", "", false
	}

	period, err := models.ParsePeriod(c.DefaultQuery("period", string(models.PeriodWeek)))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "period must be one of day, week, month, all"})
		return "", "", false
	}
	return region, period, true
}

func respondError(c *gin.Context, err error) {
	if errors.Is(err, services.ErrNoSnapshot) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	log.Printf("API: %s %s failed: %v", c.Request.Method, c.Request.URL.Path, err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load price data"})
}
