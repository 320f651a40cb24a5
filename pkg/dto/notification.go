package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/your-org/reunite/internal/models"
)

type NotificationResponse struct {
	ID                 uuid.UUID `json:"id"`
	CaseID             uuid.UUID `json:"case_id"`
	PersonName         string    `json:"person_name"`
	SnapshotURL        string    `json:"snapshot_url"`
	CameraName         string    `json:"camera_name"`
	RegisteredImageURL string    `json:"registered_image_url,omitempty"`
	CreatedAt          string    `json:"created_at"`
}

type NotificationListResponse struct {
	Notifications []NotificationResponse `json:"notifications"`
	Total         int                    `json:"total"`
}

// ReportMatchRequest is the inbound HTTP shape of a recognizer match report.
// Snapshot travels base64-encoded; gin decodes []byte from base64 JSON.
type ReportMatchRequest struct {
	CaseID     string `json:"case_id" binding:"required"`
	PersonName string `json:"person_name" binding:"required"`
	Snapshot   []byte `json:"snapshot" binding:"required"`
	CameraName string `json:"camera_name"`
}

type ReviewRequest struct {
	NotificationID uuid.UUID `json:"notification_id" binding:"required"`
	Action         string    `json:"action" binding:"required"` // accept, reject
}

func NewNotificationResponse(n *models.Notification) NotificationResponse {
	resp := NotificationResponse{
		ID:          n.ID,
		CaseID:      n.CaseID,
		PersonName:  n.PersonName,
		SnapshotURL: NotificationSnapshotURL(n.ID),
		CameraName:  n.CameraName,
		CreatedAt:   n.CreatedAt.Format(time.RFC3339),
	}
	if n.RegisteredImageKey != "" {
		// The first registered intake image, for side-by-side comparison.
		resp.RegisteredImageURL = "/v1/cases/" + n.CaseID.String() + "/images/primary"
	}
	return resp
}

func NotificationSnapshotURL(id uuid.UUID) string {
	return "/v1/notifications/" + id.String() + "/snapshot"
}
