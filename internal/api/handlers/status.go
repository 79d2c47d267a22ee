package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Koodattu/fyralath-data-tracker/internal/services"
)

// Pinger reports whether the database is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

type StatusHandler struct {
	worker *services.AuctionWorker
	db     Pinger
}

func NewStatusHandler(worker *services.AuctionWorker, db Pinger) *StatusHandler {
	return &StatusHandler{
		worker: worker,
		db:     db,
	}
}

// GetStatus returns the auction worker's run status
func (h *StatusHandler) GetStatus(c *gin.Context) {
	c.JSON(http.StatusOK, h.worker.GetStatus())
}

// Health reports ok when the database answers
func (h *StatusHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := h.db.Ping(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
