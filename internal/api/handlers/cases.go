package handlers

import (
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/your-org/reunite/internal/intake"
	"github.com/your-org/reunite/internal/models"
	"github.com/your-org/reunite/internal/storage"
	"github.com/your-org/reunite/pkg/dto"
)

type CaseHandler struct {
	db     *storage.PostgresStore
	minio  *storage.MinIOStore
	intake *intake.Service
}

func NewCaseHandler(db *storage.PostgresStore, minio *storage.MinIOStore, intakeSvc *intake.Service) *CaseHandler {
	return &CaseHandler{db: db, minio: minio, intake: intakeSvc}
}

// Create handles the multipart intake form: person details, reporter
// details, and 3-7 photos.
func (h *CaseHandler) Create(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "multipart form required"})
		return
	}

	in := intake.RegisterInput{
		FullName:              c.PostForm("full_name"),
		PersonContactNumber:   c.PostForm("person_contact_number"),
		LastSeenLocation:      c.PostForm("last_seen_location"),
		IdentificationDetails: c.PostForm("identification_details"),
		GuardianType:          c.PostForm("guardian_type"),
		GuardianDetails:       c.PostForm("guardian_details"),
		ReporterName:          c.PostForm("reporter_name"),
		ReporterRelation:      c.PostForm("reporter_relation"),
		ReporterContactNumber: c.PostForm("reporter_contact_number"),
	}
	in.Age, _ = strconv.Atoi(c.PostForm("age"))
	if t, err := time.Parse(time.RFC3339, c.PostForm("last_seen_time")); err == nil {
		in.LastSeenTime = t
	}

	for _, fh := range form.File["images"] {
		f, err := fh.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable image upload"})
			return
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable image upload"})
			return
		}
		in.Images = append(in.Images, intake.ImageUpload{
			Filename:    fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Data:        data,
		})
	}

	created, err := h.intake.Register(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.NewCaseResponse(created))
}

// List returns the thumbnail-only projection, filtered and sorted for the
// dashboard and the mobile app's Found listing.
func (h *CaseHandler) List(c *gin.Context) {
	var status *models.CaseStatus
	switch s := models.CaseStatus(c.Query("status")); s {
	case models.StatusLost, models.StatusFound, models.StatusResolved:
		status = &s
	}

	newestFirst := c.DefaultQuery("sort", "newest") != "oldest"

	summaries, err := h.db.QueryCases(c.Request.Context(), status, c.Query("search"), newestFirst)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	resp := make([]dto.CaseSummaryResponse, 0, len(summaries))
	for _, cs := range summaries {
		thumbnail := ""
		if cs.ThumbnailKey != "" {
			thumbnail = "/v1/cases/" + cs.ID.String() + "/images/primary"
		}
		resp = append(resp, dto.NewCaseSummaryResponse(cs, thumbnail))
	}

	c.JSON(http.StatusOK, dto.CaseListResponse{Cases: resp, Total: len(resp)})
}

// Get returns full case details minus embeddings.
func (h *CaseHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid case id"})
		return
	}

	cs, err := h.db.GetCase(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if cs == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "case not found"})
		return
	}

	c.JSON(http.StatusOK, dto.NewCaseResponse(cs))
}

// Image serves one stored intake image. "primary" selects the first
// registered photo, which list views use as the thumbnail.
func (h *CaseHandler) Image(c *gin.Context) {
	caseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid case id"})
		return
	}

	cs, err := h.db.GetCase(c.Request.Context(), caseID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if cs == nil || len(cs.Images) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "case not found"})
		return
	}

	var key string
	if imageParam := c.Param("imageId"); imageParam == "primary" {
		key = cs.Images[0].ObjectKey
	} else {
		imageID, err := uuid.Parse(imageParam)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid image id"})
			return
		}
		for _, img := range cs.Images {
			if img.ID == imageID {
				key = img.ObjectKey
				break
			}
		}
	}
	if key == "" {
		c.JSON(http.StatusNotFound, gin.H{"error": "image not found"})
		return
	}

	data, err := h.minio.GetObject(c.Request.Context(), key)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "image not available"})
		return
	}
	c.Data(http.StatusOK, "image/jpeg", data)
}

// Snapshot serves the found-state evidence snapshot, present once the case
// has progressed past Lost.
func (h *CaseHandler) Snapshot(c *gin.Context) {
	caseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid case id"})
		return
	}

	cs, err := h.db.GetCase(c.Request.Context(), caseID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if cs == nil || cs.FoundSnapshotKey == "" {
		c.JSON(http.StatusNotFound, gin.H{"error": "snapshot not found"})
		return
	}

	data, err := h.minio.GetObject(c.Request.Context(), cs.FoundSnapshotKey)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "snapshot not available"})
		return
	}
	c.Data(http.StatusOK, "image/jpeg", data)
}
