package models

import (
	"time"

	"github.com/google/uuid"
)

type CaseStatus string

const (
	StatusLost     CaseStatus = "Lost"
	StatusFound    CaseStatus = "Found"
	StatusResolved CaseStatus = "Resolved"
)

// Case is the record of one missing person, from intake to resolution.
// Status only moves forward: Lost -> Found -> Resolved.
type Case struct {
	ID uuid.UUID `json:"id" db:"id"`

	// Intake fields, immutable after creation.
	FullName              string    `json:"full_name" db:"full_name"`
	Age                   int       `json:"age" db:"age"`
	PersonContactNumber   string    `json:"person_contact_number,omitempty" db:"person_contact_number"`
	LastSeenLocation      string    `json:"last_seen_location" db:"last_seen_location"`
	LastSeenTime          time.Time `json:"last_seen_time" db:"last_seen_time"`
	IdentificationDetails string    `json:"identification_details" db:"identification_details"`
	IsMinor               bool      `json:"is_minor" db:"is_minor"`
	GuardianType          string    `json:"guardian_type,omitempty" db:"guardian_type"`
	GuardianDetails       string    `json:"guardian_details,omitempty" db:"guardian_details"`
	ReporterName          string    `json:"reporter_name" db:"reporter_name"`
	ReporterRelation      string    `json:"reporter_relation" db:"reporter_relation"`
	ReporterContactNumber string    `json:"reporter_contact_number" db:"reporter_contact_number"`

	Status CaseStatus `json:"status" db:"status"`

	// Ordered intake images, 3-7 entries, set once.
	Images []CaseImage `json:"images"`

	// One embedding per intake image. Never included in default reads;
	// loaded only for the photo-confirmation path.
	Embeddings [][]float32 `json:"-"`

	// Set once on Lost -> Found.
	FoundSnapshotKey string `json:"found_snapshot_key,omitempty" db:"found_snapshot_key"`
	FoundOnCamera    string `json:"found_on_camera,omitempty" db:"found_on_camera"`

	// Set once on Found -> Resolved.
	ResolvedAtBoothLocation string `json:"resolved_at_booth_location,omitempty" db:"resolved_at_booth_location"`
	BoothOfficerContact     string `json:"booth_officer_contact,omitempty" db:"booth_officer_contact"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// CaseImage is one stored intake photo.
type CaseImage struct {
	ID        uuid.UUID `json:"id" db:"id"`
	CaseID    uuid.UUID `json:"case_id" db:"case_id"`
	Position  int       `json:"position" db:"position"`
	ObjectKey string    `json:"object_key" db:"object_key"`
}

// CaseSummary is the thumbnail-only list projection: no embeddings,
// no full-resolution references.
type CaseSummary struct {
	ID           uuid.UUID  `json:"id" db:"id"`
	FullName     string     `json:"full_name" db:"full_name"`
	Age          int        `json:"age" db:"age"`
	Status       CaseStatus `json:"status" db:"status"`
	LastSeenLoc  string     `json:"last_seen_location" db:"last_seen_location"`
	ThumbnailKey string     `json:"thumbnail_key" db:"thumbnail_key"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
}

// StatusCounts is the count-by-status aggregation for the overview panel.
type StatusCounts struct {
	Lost     int `json:"lost"`
	Found    int `json:"found"`
	Resolved int `json:"resolved"`
	Total    int `json:"total"`
}

// DailyCount is one calendar-day bucket of the intake time series.
type DailyCount struct {
	Day   string `json:"day"` // YYYY-MM-DD
	Count int    `json:"count"`
}
