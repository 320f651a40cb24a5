package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/your-org/reunite/internal/ingest"
	"github.com/your-org/reunite/internal/models"
	"github.com/your-org/reunite/pkg/dto"
)

type MatchHandler struct {
	ingest *ingest.Service
}

func NewMatchHandler(ingestSvc *ingest.Service) *MatchHandler {
	return &MatchHandler{ingest: ingestSvc}
}

// Report accepts a match report posted directly by a recognizer node.
// The same payload also arrives via the MATCHES stream; both paths feed the
// ingestion service.
func (h *MatchHandler) Report(c *gin.Context) {
	var req dto.ReportMatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "case_id, person_name and snapshot are required"})
		return
	}

	caseID, err := uuid.Parse(req.CaseID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid case id"})
		return
	}

	n, err := h.ingest.ReportMatch(c.Request.Context(), models.MatchReport{
		CaseID:     caseID,
		PersonName: req.PersonName,
		Snapshot:   req.Snapshot,
		CameraName: req.CameraName,
	}, "http")
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":      "Match received and broadcasted.",
		"notification": dto.NewNotificationResponse(n),
	})
}
