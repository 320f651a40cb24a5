package dto

import "github.com/google/uuid"

// Realtime event types pushed to dashboard sessions.
const (
	EventNewMatchFound  = "new_match_found"
	EventPersonFound    = "person_found"
	EventPersonResolved = "person_resolved"
)

// Client -> server websocket message types for the notification-count
// handshake.
const (
	MsgRequestNotificationCount = "request_notification_count"
	MsgResetNotificationCount   = "reset_notification_count"
	MsgNotificationCountUpdate  = "notification_count_update"
)

// RealtimeEvent is a server-to-client websocket push. Delivery is
// at-most-once, best-effort; a client that misses one re-fetches the
// notification queue on reconnect.
type RealtimeEvent struct {
	Type string      `json:"type"`
	Data interface{} `json:"data,omitempty"`
}

// PersonFoundEvent announces an accepted review decision.
type PersonFoundEvent struct {
	CaseID        uuid.UUID `json:"case_id"`
	FullName      string    `json:"full_name"`
	SnapshotURL   string    `json:"snapshot_url,omitempty"`
	FoundOnCamera string    `json:"found_on_camera,omitempty"`
}

// PersonResolvedEvent announces a finalized case.
type PersonResolvedEvent struct {
	CaseID   uuid.UUID `json:"case_id"`
	FullName string    `json:"full_name"`
	Status   string    `json:"status"`
}

// ClientMessage is any inbound websocket message from a dashboard session.
type ClientMessage struct {
	Type string `json:"type"`
}

// NotificationCountUpdate answers a request_notification_count message on
// the connection that asked.
type NotificationCountUpdate struct {
	Type  string `json:"type"`
	Count int    `json:"count"`
}
