// Package ingest bridges the external recognizer and the rest of the system:
// every inbound match report becomes a durable notification plus a realtime
// push to connected dashboards.
package ingest

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/your-org/reunite/internal/apperrors"
	"github.com/your-org/reunite/internal/models"
	"github.com/your-org/reunite/internal/observability"
	"github.com/your-org/reunite/pkg/dto"
)

type NotificationQueue interface {
	CreateNotification(ctx context.Context, n *models.Notification) error
}

type ObjectStore interface {
	PutObject(ctx context.Context, key string, data []byte, contentType string) error
}

type Broadcaster interface {
	Broadcast(event dto.RealtimeEvent)
}

type Service struct {
	queue       NotificationQueue
	objects     ObjectStore
	broadcaster Broadcaster
}

func NewService(queue NotificationQueue, objects ObjectStore, broadcaster Broadcaster) *Service {
	return &Service{queue: queue, objects: objects, broadcaster: broadcaster}
}

// ReportMatch accepts one sighting from the recognizer. The snapshot is
// stored first, then the notification, and only after the notification is
// durable does the realtime event fire — a reconnecting client that missed
// the push still finds it in the queue. Repeated reports for the same
// sighting create repeated notifications on purpose; the operator
// deduplicates visually.
func (s *Service) ReportMatch(ctx context.Context, report models.MatchReport, source string) (*models.Notification, error) {
	if report.CaseID == uuid.Nil || report.PersonName == "" || len(report.Snapshot) == 0 {
		return nil, fmt.Errorf("%w: case id, person name and snapshot are required", apperrors.ErrValidation)
	}

	key := fmt.Sprintf("found-snapshots/%s/%s.jpg", report.CaseID, uuid.New())
	if err := s.objects.PutObject(ctx, key, report.Snapshot, "image/jpeg"); err != nil {
		return nil, fmt.Errorf("%w: store snapshot: %v", apperrors.ErrUnavailable, err)
	}

	n := &models.Notification{
		CaseID:      report.CaseID,
		PersonName:  report.PersonName,
		SnapshotKey: key,
		CameraName:  report.CameraName,
	}
	if err := s.queue.CreateNotification(ctx, n); err != nil {
		return nil, err
	}

	observability.MatchesReported.WithLabelValues(source).Inc()
	slog.Info("match report ingested",
		"case_id", report.CaseID, "person", report.PersonName, "camera", n.CameraName, "source", source)

	s.broadcaster.Broadcast(dto.RealtimeEvent{
		Type: dto.EventNewMatchFound,
		Data: dto.NewNotificationResponse(n),
	})

	return n, nil
}
