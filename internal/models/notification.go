package models

import (
	"time"

	"github.com/google/uuid"
)

// Notification is a pending match candidate awaiting human review.
// It is a queue item, not an audit log: the resolution engine deletes it
// the moment a reviewer accepts or rejects it. Several may exist for the
// same case if the recognizer reports repeatedly before review.
type Notification struct {
	ID          uuid.UUID `json:"id" db:"id"`
	CaseID      uuid.UUID `json:"case_id" db:"case_id"`
	PersonName  string    `json:"person_name" db:"person_name"`
	SnapshotKey string    `json:"snapshot_key" db:"snapshot_key"`
	CameraName  string    `json:"camera_name" db:"camera_name"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`

	// First registered intake image of the case, joined in for the
	// side-by-side comparison card. Empty if the case has vanished.
	RegisteredImageKey string `json:"registered_image_key,omitempty" db:"registered_image_key"`
}

// MatchReport is the payload a recognizer node publishes on the MATCHES
// stream (and posts to /v1/matches with the snapshot base64-encoded).
type MatchReport struct {
	CaseID     uuid.UUID `json:"case_id"`
	PersonName string    `json:"person_name"`
	Snapshot   []byte    `json:"snapshot"`
	CameraName string    `json:"camera_name,omitempty"`
}
