package handlers

import (
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/your-org/reunite/internal/resolution"
	"github.com/your-org/reunite/pkg/dto"
)

type ResolutionHandler struct {
	engine *resolution.Engine
}

func NewResolutionHandler(engine *resolution.Engine) *ResolutionHandler {
	return &ResolutionHandler{engine: engine}
}

// Review applies a dashboard accept/reject decision to one notification.
func (h *ResolutionHandler) Review(c *gin.Context) {
	caseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid case id"})
		return
	}

	var req dto.ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "notification_id and action are required"})
		return
	}

	updated, err := h.engine.ReviewNotification(c.Request.Context(), caseID, req.NotificationID, req.Action)
	if err != nil {
		respondError(c, err)
		return
	}

	if updated == nil {
		c.JSON(http.StatusOK, gin.H{"message": "Re-search initiated."})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": fmt.Sprintf("Status for %s updated to %s.", updated.FullName, updated.Status),
		"status":  updated.Status,
	})
}

// Confirm is step one of the mobile resolution flow: a multipart
// confirmation photo checked against the case's stored embeddings.
// No state changes here; a passing check unlocks Finalize.
func (h *ResolutionHandler) Confirm(c *gin.Context) {
	caseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid case id"})
		return
	}

	file, _, err := c.Request.FormFile("photo")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Confirmation photo is required."})
		return
	}
	defer file.Close()

	photo, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "read photo failed"})
		return
	}

	if err := h.engine.SubmitConfirmationPhoto(c.Request.Context(), caseID, photo); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Photo verified."})
}

// Finalize is step two: drop-off logistics close the case.
func (h *ResolutionHandler) Finalize(c *gin.Context) {
	caseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid case id"})
		return
	}

	var req dto.FinalizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Booth location and officer contact are required."})
		return
	}

	if _, err := h.engine.FinalizeResolution(c.Request.Context(), caseID, req.BoothLocation, req.OfficerContact); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Case has been successfully resolved and notification sent."})
}
