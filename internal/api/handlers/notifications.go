package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/your-org/reunite/internal/storage"
	"github.com/your-org/reunite/pkg/dto"
)

type NotificationHandler struct {
	db    *storage.PostgresStore
	minio *storage.MinIOStore
}

func NewNotificationHandler(db *storage.PostgresStore, minio *storage.MinIOStore) *NotificationHandler {
	return &NotificationHandler{db: db, minio: minio}
}

// List returns pending match candidates newest-first, each carrying the
// case's first registered image for side-by-side comparison.
func (h *NotificationHandler) List(c *gin.Context) {
	notifications, err := h.db.ListNotifications(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	resp := make([]dto.NotificationResponse, 0, len(notifications))
	for i := range notifications {
		resp = append(resp, dto.NewNotificationResponse(&notifications[i]))
	}

	c.JSON(http.StatusOK, dto.NotificationListResponse{Notifications: resp, Total: len(resp)})
}

// Snapshot serves the evidence image captured by the recognizer.
func (h *NotificationHandler) Snapshot(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid notification id"})
		return
	}

	n, err := h.db.GetNotification(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if n == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "notification not found"})
		return
	}

	data, err := h.minio.GetObject(c.Request.Context(), n.SnapshotKey)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "snapshot not available"})
		return
	}
	c.Data(http.StatusOK, "image/jpeg", data)
}
