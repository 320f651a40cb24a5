package ingest

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/your-org/reunite/internal/apperrors"
	"github.com/your-org/reunite/internal/models"
	"github.com/your-org/reunite/pkg/dto"
)

type mockQueue struct {
	created []*models.Notification
	err     error
}

func (m *mockQueue) CreateNotification(ctx context.Context, n *models.Notification) error {
	if m.err != nil {
		return m.err
	}
	n.ID = uuid.New()
	if n.CameraName == "" {
		n.CameraName = "unknown"
	}
	m.created = append(m.created, n)
	return nil
}

type mockObjects struct {
	keys []string
	data map[string][]byte
	err  error
}

func (m *mockObjects) PutObject(ctx context.Context, key string, data []byte, contentType string) error {
	if m.err != nil {
		return m.err
	}
	if m.data == nil {
		m.data = make(map[string][]byte)
	}
	m.keys = append(m.keys, key)
	m.data[key] = data
	return nil
}

type mockBroadcaster struct {
	events []dto.RealtimeEvent
}

func (m *mockBroadcaster) Broadcast(event dto.RealtimeEvent) {
	m.events = append(m.events, event)
}

func validReport() models.MatchReport {
	return models.MatchReport{
		CaseID:     uuid.New(),
		PersonName: "Ramesh Kumar",
		Snapshot:   []byte("jpeg-bytes"),
		CameraName: "gate-3",
	}
}

func TestReportMatch_PersistsThenBroadcasts(t *testing.T) {
	q := &mockQueue{}
	o := &mockObjects{}
	b := &mockBroadcaster{}
	svc := NewService(q, o, b)

	report := validReport()
	n, err := svc.ReportMatch(context.Background(), report, "http")
	require.NoError(t, err)
	require.NotNil(t, n)

	require.Len(t, o.keys, 1)
	assert.True(t, strings.HasPrefix(o.keys[0], "found-snapshots/"+report.CaseID.String()+"/"))
	assert.Equal(t, report.Snapshot, o.data[o.keys[0]])

	require.Len(t, q.created, 1)
	assert.Equal(t, report.CaseID, q.created[0].CaseID)
	assert.Equal(t, o.keys[0], q.created[0].SnapshotKey)
	assert.Equal(t, "gate-3", q.created[0].CameraName)

	require.Len(t, b.events, 1)
	assert.Equal(t, dto.EventNewMatchFound, b.events[0].Type)
}

func TestReportMatch_NoBroadcastWhenPersistFails(t *testing.T) {
	q := &mockQueue{err: errors.New("db down")}
	o := &mockObjects{}
	b := &mockBroadcaster{}
	svc := NewService(q, o, b)

	_, err := svc.ReportMatch(context.Background(), validReport(), "http")
	require.Error(t, err)

	// A realtime push for a notification that never became durable would
	// vanish on reconnect.
	assert.Empty(t, b.events)
}

func TestReportMatch_SnapshotStoreFailure(t *testing.T) {
	q := &mockQueue{}
	o := &mockObjects{err: errors.New("minio down")}
	b := &mockBroadcaster{}
	svc := NewService(q, o, b)

	_, err := svc.ReportMatch(context.Background(), validReport(), "nats")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrUnavailable)
	assert.Empty(t, q.created)
	assert.Empty(t, b.events)
}

func TestReportMatch_Validation(t *testing.T) {
	svc := NewService(&mockQueue{}, &mockObjects{}, &mockBroadcaster{})

	tests := []struct {
		name   string
		mutate func(*models.MatchReport)
	}{
		{"missing case id", func(r *models.MatchReport) { r.CaseID = uuid.Nil }},
		{"missing person name", func(r *models.MatchReport) { r.PersonName = "" }},
		{"missing snapshot", func(r *models.MatchReport) { r.Snapshot = nil }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report := validReport()
			tt.mutate(&report)
			_, err := svc.ReportMatch(context.Background(), report, "http")
			require.Error(t, err)
			assert.ErrorIs(t, err, apperrors.ErrValidation)
		})
	}
}

func TestReportMatch_RepeatedReportsCreateRepeatedNotifications(t *testing.T) {
	q := &mockQueue{}
	o := &mockObjects{}
	b := &mockBroadcaster{}
	svc := NewService(q, o, b)

	report := validReport()
	for i := 0; i < 3; i++ {
		_, err := svc.ReportMatch(context.Background(), report, "nats")
		require.NoError(t, err)
	}

	assert.Len(t, q.created, 3)
	assert.Len(t, b.events, 3)
}

func TestReportMatch_CameraDefaultsToUnknown(t *testing.T) {
	q := &mockQueue{}
	svc := NewService(q, &mockObjects{}, &mockBroadcaster{})

	report := validReport()
	report.CameraName = ""
	n, err := svc.ReportMatch(context.Background(), report, "http")
	require.NoError(t, err)
	assert.Equal(t, "unknown", n.CameraName)
}
