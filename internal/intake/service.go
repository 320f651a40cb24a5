// Package intake registers new missing-person cases: it verifies the photo
// set with the external matcher, stores the images, and persists the case
// with one embedding per image. Nothing is written until the matcher has
// accepted the full set.
package intake

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/your-org/reunite/internal/apperrors"
	"github.com/your-org/reunite/internal/models"
	"github.com/your-org/reunite/internal/observability"
)

const adultAge = 18

type CaseStore interface {
	CreateCase(ctx context.Context, c *models.Case) error
}

type ObjectStore interface {
	PutObject(ctx context.Context, key string, data []byte, contentType string) error
}

type Matcher interface {
	VerifyFaceSet(ctx context.Context, images [][]byte) ([][]float32, error)
}

type ImageUpload struct {
	Filename    string
	ContentType string
	Data        []byte
}

type RegisterInput struct {
	FullName              string
	Age                   int
	PersonContactNumber   string
	LastSeenLocation      string
	LastSeenTime          time.Time
	IdentificationDetails string
	GuardianType          string
	GuardianDetails       string
	ReporterName          string
	ReporterRelation      string
	ReporterContactNumber string
	Images                []ImageUpload
}

type Service struct {
	store     CaseStore
	objects   ObjectStore
	matcher   Matcher
	minImages int
	maxImages int
}

func NewService(store CaseStore, objects ObjectStore, matcher Matcher, minImages, maxImages int) *Service {
	return &Service{
		store:     store,
		objects:   objects,
		matcher:   matcher,
		minImages: minImages,
		maxImages: maxImages,
	}
}

// Register creates a new case with status Lost. The matcher runs before any
// write, so a rejected photo set or an unavailable matcher leaves no partial
// state behind. The stored embedding count always equals the image count.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*models.Case, error) {
	if err := s.validate(in); err != nil {
		return nil, err
	}
	isMinor := in.Age < adultAge

	imageData := make([][]byte, len(in.Images))
	for i, img := range in.Images {
		imageData[i] = img.Data
	}
	embeddings, err := s.matcher.VerifyFaceSet(ctx, imageData)
	if err != nil {
		return nil, fmt.Errorf("verify face set: %w", err)
	}

	batch := uuid.New()
	images := make([]models.CaseImage, len(in.Images))
	for i, img := range in.Images {
		key := fmt.Sprintf("lost-persons/%s/%d_%s", batch, i, sanitizeFilename(img.Filename))
		contentType := img.ContentType
		if contentType == "" {
			contentType = "image/jpeg"
		}
		if err := s.objects.PutObject(ctx, key, img.Data, contentType); err != nil {
			return nil, fmt.Errorf("%w: store intake image: %v", apperrors.ErrUnavailable, err)
		}
		images[i] = models.CaseImage{ObjectKey: key}
	}

	c := &models.Case{
		FullName:              in.FullName,
		Age:                   in.Age,
		LastSeenLocation:      in.LastSeenLocation,
		LastSeenTime:          in.LastSeenTime,
		IdentificationDetails: in.IdentificationDetails,
		IsMinor:               isMinor,
		ReporterName:          in.ReporterName,
		ReporterRelation:      in.ReporterRelation,
		ReporterContactNumber: in.ReporterContactNumber,
		Images:                images,
		Embeddings:            embeddings,
	}
	if isMinor {
		c.GuardianType = in.GuardianType
		c.GuardianDetails = in.GuardianDetails
	} else {
		c.PersonContactNumber = in.PersonContactNumber
	}

	if err := s.store.CreateCase(ctx, c); err != nil {
		return nil, err
	}

	observability.CasesRegistered.Inc()
	slog.Info("case registered", "case_id", c.ID, "name", c.FullName, "images", len(c.Images))
	return c, nil
}

func (s *Service) validate(in RegisterInput) error {
	if len(in.Images) < s.minImages || len(in.Images) > s.maxImages {
		return fmt.Errorf("%w: between %d and %d images are required", apperrors.ErrValidation, s.minImages, s.maxImages)
	}
	if in.FullName == "" || in.LastSeenLocation == "" || in.IdentificationDetails == "" || in.LastSeenTime.IsZero() {
		return fmt.Errorf("%w: missing person details are incomplete", apperrors.ErrValidation)
	}
	if in.Age <= 0 {
		return fmt.Errorf("%w: age must be positive", apperrors.ErrValidation)
	}
	if in.ReporterName == "" || in.ReporterRelation == "" || in.ReporterContactNumber == "" {
		return fmt.Errorf("%w: reporter details are incomplete", apperrors.ErrValidation)
	}
	if in.Age >= adultAge && in.PersonContactNumber == "" {
		return fmt.Errorf("%w: contact number is required for adults", apperrors.ErrValidation)
	}
	if in.Age < adultAge && (in.GuardianType == "" || in.GuardianDetails == "") {
		return fmt.Errorf("%w: guardian details are required for minors", apperrors.ErrValidation)
	}
	return nil
}

func sanitizeFilename(name string) string {
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	if name == "" {
		name = "image.jpg"
	}
	return name
}
