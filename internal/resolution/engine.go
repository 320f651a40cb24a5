// Package resolution implements the case lifecycle state machine:
// Lost -> Found -> Resolved, driven by review decisions from the dashboard
// and photo-confirmed resolution from the field app.
//
// Every transition commits its store write before running side effects.
// Side effects (recognizer control, realtime broadcast, SMS) are
// best-effort: their failure is logged and counted, never propagated, and
// never unwinds the committed state change.
package resolution

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

const (
	DecisionAccept = "accept"
	DecisionReject = "reject"

	actionStopSearch   = "accept"
	actionResumeSearch = "research"
)

type CaseStore interface {
	GetCase(ctx context.Context, id uuid.UUID) (*models.Case, error)
	GetCaseWithEmbeddings(ctx context.Context, id uuid.UUID) (*models.Case, error)
	MarkFound(ctx context.Context, id uuid.UUID, snapshotKey, camera string) (*models.Case, error)
	MarkResolved(ctx context.Context, id uuid.UUID, boothLocation, officerContact string) (*models.Case, error)
}

type NotificationQueue interface {
	GetNotification(ctx context.Context, id uuid.UUID) (*models.Notification, error)
	DeleteNotification(ctx context.Context, id uuid.UUID) error
}

type Matcher interface {
	CompareFace(ctx context.Context, photo []byte, embeddings [][]float32) (bool, string, error)
}

// Recognizer controls the external search process. Calls are
// fire-and-forget.
type Recognizer interface {
	SetSearchStatus(ctx context.Context, caseID, action string) error
}

type SMSSender interface {
	Enabled() bool
	SendResolutionSMS(ctx context.Context, toNumber string, c *models.Case) error
}

type Broadcaster interface {
	Broadcast(event dto.RealtimeEvent)
}

type Engine struct {
	cases       CaseStore
	queue       NotificationQueue
	matcher     Matcher
	recognizer  Recognizer
	sms         SMSSender
	broadcaster Broadcaster
}

func NewEngine(cases CaseStore, queue NotificationQueue, matcher Matcher, recognizer Recognizer, sms SMSSender, broadcaster Broadcaster) *Engine {
	return &Engine{
		cases:       cases,
		queue:       queue,
		matcher:     matcher,
		recognizer:  recognizer,
		sms:         sms,
		broadcaster: broadcaster,
	}
}

// ReviewNotification applies a human accept/reject decision to one pending
// match candidate.
//
// Accept marks the case Found with the notification's snapshot and camera,
// tells the recognizer to stop searching, announces person_found, and
// removes the notification. Other pending notifications for the same case
// are left in place; each must be reviewed individually.
//
// Reject tells the recognizer to resume searching and removes the
// notification; the case status is untouched.
//
// Returns the post-transition case for accept, nil for reject.
func (e *Engine) ReviewNotification(ctx context.Context, caseID, notificationID uuid.UUID, decision string) (*models.Case, error) {
	if decision != DecisionAccept && decision != DecisionReject {
		return nil, fmt.Errorf("%w: unknown decision %q", apperrors.ErrValidation, decision)
	}

	n, err := e.queue.GetNotification(ctx, notificationID)
	if err != nil {
		return nil, err
	}
	if n == nil {
		return nil, fmt.Errorf("%w: notification %s", apperrors.ErrNotFound, notificationID)
	}

	if decision == DecisionReject {
		e.notifyRecognizer(ctx, caseID, actionResumeSearch)
		if err := e.queue.DeleteNotification(ctx, notificationID); err != nil {
			return nil, err
		}
		observability.ReviewDecisions.WithLabelValues(DecisionReject).Inc()
		slog.Info("notification rejected", "case_id", caseID, "notification_id", notificationID)
		return nil, nil
	}

	c, err := e.cases.MarkFound(ctx, caseID, n.SnapshotKey, n.CameraName)
	if err != nil {
		return nil, err
	}
	if c == nil {
		existing, err := e.cases.GetCase(ctx, caseID)
		if err != nil {
			return nil, err
		}
		if existing != nil && existing.Status == models.StatusResolved {
			return nil, fmt.Errorf("%w: case %s is already resolved", apperrors.ErrConflict, caseID)
		}
		return nil, fmt.Errorf("%w: case %s", apperrors.ErrNotFound, caseID)
	}
	observability.StatusTransitions.WithLabelValues(string(models.StatusFound)).Inc()
	observability.ReviewDecisions.WithLabelValues(DecisionAccept).Inc()
	slog.Info("case marked found", "case_id", c.ID, "name", c.FullName, "camera", c.FoundOnCamera)

	// State is committed; everything below is best-effort.
	e.notifyRecognizer(ctx, caseID, actionStopSearch)

	e.broadcaster.Broadcast(dto.RealtimeEvent{
		Type: dto.EventPersonFound,
		Data: dto.PersonFoundEvent{
			CaseID:        c.ID,
			FullName:      c.FullName,
			SnapshotURL:   dto.CaseSnapshotURL(c.ID),
			FoundOnCamera: c.FoundOnCamera,
		},
	})

	if err := e.queue.DeleteNotification(ctx, notificationID); err != nil {
		// The transition already committed; a leftover card is re-reviewable
		// and accept is re-settable from Found.
		slog.Error("delete reviewed notification", "notification_id", notificationID, "error", err)
	}
	return c, nil
}

// SubmitConfirmationPhoto is the verification gate of the two-step mobile
// resolution flow. It compares the drop-off photo against the case's stored
// embeddings and mutates nothing:
//   - matcher unreachable or timed out -> ErrUnavailable, operator may retry;
//   - no match -> ErrMismatch, recognizer resumes searching, case stays Found;
//   - match -> nil, the operator proceeds to FinalizeResolution.
func (e *Engine) SubmitConfirmationPhoto(ctx context.Context, caseID uuid.UUID, photo []byte) error {
	if len(photo) == 0 {
		return fmt.Errorf("%w: confirmation photo is required", apperrors.ErrValidation)
	}

	c, err := e.cases.GetCaseWithEmbeddings(ctx, caseID)
	if err != nil {
		return err
	}
	if c == nil || len(c.Embeddings) == 0 {
		return fmt.Errorf("%w: case %s or its face data", apperrors.ErrNotFound, caseID)
	}
	if c.Status != models.StatusFound {
		return fmt.Errorf("%w: case %s is not in found state", apperrors.ErrNotFound, caseID)
	}

	match, message, err := e.matcher.CompareFace(ctx, photo, c.Embeddings)
	if err != nil {
		return fmt.Errorf("compare confirmation photo: %w", err)
	}
	if !match {
		e.notifyRecognizer(ctx, caseID, actionResumeSearch)
		slog.Info("confirmation photo mismatch", "case_id", caseID, "message", message)
		return fmt.Errorf("%w: %s", apperrors.ErrMismatch, message)
	}

	slog.Info("confirmation photo verified", "case_id", caseID)
	return nil
}

// FinalizeResolution is the terminal transition: it records the drop-off
// logistics, closes the case, texts the reporter, and announces
// person_resolved. SMS failure never fails the finalize; the committed
// status change takes precedence over delivery confirmation.
func (e *Engine) FinalizeResolution(ctx context.Context, caseID uuid.UUID, boothLocation, officerContact string) (*models.Case, error) {
	if boothLocation == "" || officerContact == "" {
		return nil, fmt.Errorf("%w: booth location and officer contact are required", apperrors.ErrValidation)
	}

	c, err := e.cases.MarkResolved(ctx, caseID, boothLocation, officerContact)
	if err != nil {
		return nil, err
	}
	if c == nil {
		existing, err := e.cases.GetCase(ctx, caseID)
		if err != nil {
			return nil, err
		}
		if existing == nil {
			return nil, fmt.Errorf("%w: case %s", apperrors.ErrNotFound, caseID)
		}
		return nil, fmt.Errorf("%w: case %s is %s, not Found", apperrors.ErrConflict, caseID, existing.Status)
	}
	observability.StatusTransitions.WithLabelValues(string(models.StatusResolved)).Inc()
	slog.Info("case resolved", "case_id", c.ID, "name", c.FullName, "booth", boothLocation)

	if e.sms.Enabled() {
		if err := e.sms.SendResolutionSMS(ctx, c.ReporterContactNumber, c); err != nil {
			observability.SideEffectFailures.WithLabelValues("sms").Inc()
			slog.Error("resolution sms failed", "case_id", c.ID, "error", err)
		}
	} else {
		slog.Debug("sms disabled, skipping resolution notification", "case_id", c.ID)
	}

	e.broadcaster.Broadcast(dto.RealtimeEvent{
		Type: dto.EventPersonResolved,
		Data: dto.PersonResolvedEvent{
			CaseID:   c.ID,
			FullName: c.FullName,
			Status:   string(c.Status),
		},
	})

	return c, nil
}

func (e *Engine) notifyRecognizer(ctx context.Context, caseID uuid.UUID, action string) {
	if err := e.recognizer.SetSearchStatus(ctx, caseID.String(), action); err != nil {
		observability.SideEffectFailures.WithLabelValues("recognizer").Inc()
		slog.Error("recognizer control failed", "case_id", caseID, "action", action, "error", err)
	}
}
