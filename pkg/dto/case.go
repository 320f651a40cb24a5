package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/your-org/reunite/internal/models"
)

// CaseImageRef is one stored intake image as exposed to clients. The full
// image and its thumbnail are served through the API; thumbnail rendering is
// delegated to the storage/CDN layer, so both point at the same object.
type CaseImageRef struct {
	FileID       uuid.UUID `json:"file_id"`
	URL          string    `json:"url"`
	ThumbnailURL string    `json:"thumbnail_url"`
}

type CaseResponse struct {
	ID                    uuid.UUID         `json:"id"`
	FullName              string            `json:"full_name"`
	Age                   int               `json:"age"`
	PersonContactNumber   string            `json:"person_contact_number,omitempty"`
	LastSeenLocation      string            `json:"last_seen_location"`
	LastSeenTime          string            `json:"last_seen_time"`
	IdentificationDetails string            `json:"identification_details"`
	IsMinor               bool              `json:"is_minor"`
	GuardianType          string            `json:"guardian_type,omitempty"`
	GuardianDetails       string            `json:"guardian_details,omitempty"`
	ReporterName          string            `json:"reporter_name"`
	ReporterRelation      string            `json:"reporter_relation"`
	ReporterContactNumber string            `json:"reporter_contact_number"`
	Status                models.CaseStatus `json:"status"`
	Images                []CaseImageRef    `json:"images"`
	FoundSnapshotURL      string            `json:"found_snapshot_url,omitempty"`
	FoundOnCamera         string            `json:"found_on_camera,omitempty"`
	ResolvedAtBooth       string            `json:"resolved_at_booth_location,omitempty"`
	BoothOfficerContact   string            `json:"booth_officer_contact,omitempty"`
	CreatedAt             string            `json:"created_at"`
}

type CaseSummaryResponse struct {
	ID               uuid.UUID         `json:"id"`
	FullName         string            `json:"full_name"`
	Age              int               `json:"age"`
	Status           models.CaseStatus `json:"status"`
	LastSeenLocation string            `json:"last_seen_location"`
	ThumbnailURL     string            `json:"thumbnail_url,omitempty"`
	CreatedAt        string            `json:"created_at"`
}

type CaseListResponse struct {
	Cases []CaseSummaryResponse `json:"cases"`
	Total int                   `json:"total"`
}

type FinalizeRequest struct {
	BoothLocation  string `json:"booth_location"`
	OfficerContact string `json:"officer_contact"`
}

type OverviewResponse struct {
	KPIs         models.StatusCounts `json:"kpis"`
	DailyReports []models.DailyCount `json:"daily_reports"`
}

// NewCaseResponse maps a model to its wire shape. Embeddings are never
// included; found/resolved fields appear only once populated.
func NewCaseResponse(c *models.Case) CaseResponse {
	resp := CaseResponse{
		ID:                    c.ID,
		FullName:              c.FullName,
		Age:                   c.Age,
		PersonContactNumber:   c.PersonContactNumber,
		LastSeenLocation:      c.LastSeenLocation,
		LastSeenTime:          c.LastSeenTime.Format(time.RFC3339),
		IdentificationDetails: c.IdentificationDetails,
		IsMinor:               c.IsMinor,
		GuardianType:          c.GuardianType,
		GuardianDetails:       c.GuardianDetails,
		ReporterName:          c.ReporterName,
		ReporterRelation:      c.ReporterRelation,
		ReporterContactNumber: c.ReporterContactNumber,
		Status:                c.Status,
		FoundOnCamera:         c.FoundOnCamera,
		ResolvedAtBooth:       c.ResolvedAtBoothLocation,
		BoothOfficerContact:   c.BoothOfficerContact,
		CreatedAt:             c.CreatedAt.Format(time.RFC3339),
	}
	if c.FoundSnapshotKey != "" {
		resp.FoundSnapshotURL = CaseSnapshotURL(c.ID)
	}
	for _, img := range c.Images {
		url := CaseImageURL(c.ID, img.ID)
		resp.Images = append(resp.Images, CaseImageRef{
			FileID:       img.ID,
			URL:          url,
			ThumbnailURL: url,
		})
	}
	return resp
}

func NewCaseSummaryResponse(cs models.CaseSummary, thumbnailURL string) CaseSummaryResponse {
	return CaseSummaryResponse{
		ID:               cs.ID,
		FullName:         cs.FullName,
		Age:              cs.Age,
		Status:           cs.Status,
		LastSeenLocation: cs.LastSeenLoc,
		ThumbnailURL:     thumbnailURL,
		CreatedAt:        cs.CreatedAt.Format(time.RFC3339),
	}
}

func CaseImageURL(caseID, imageID uuid.UUID) string {
	return "/v1/cases/" + caseID.String() + "/images/" + imageID.String()
}

func CaseSnapshotURL(caseID uuid.UUID) string {
	return "/v1/cases/" + caseID.String() + "/snapshot"
}
