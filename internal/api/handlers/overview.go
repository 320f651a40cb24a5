package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/your-org/reunite/internal/storage"
	"github.com/your-org/reunite/pkg/dto"
)

type OverviewHandler struct {
	db *storage.PostgresStore
}

func NewOverviewHandler(db *storage.PostgresStore) *OverviewHandler {
	return &OverviewHandler{db: db}
}

// Get returns the dashboard aggregations: count-by-status KPIs and the
// daily intake time series.
func (h *OverviewHandler) Get(c *gin.Context) {
	counts, err := h.db.CountCasesByStatus(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	days, _ := strconv.Atoi(c.DefaultQuery("days", "30"))
	daily, err := h.db.DailyIntakeCounts(c.Request.Context(), days)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, dto.OverviewResponse{KPIs: counts, DailyReports: daily})
}
