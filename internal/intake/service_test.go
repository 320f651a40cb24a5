package intake

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/your-org/reunite/internal/apperrors"
	"github.com/your-org/reunite/internal/models"
)

type mockStore struct {
	created []*models.Case
	err     error
}

func (m *mockStore) CreateCase(ctx context.Context, c *models.Case) error {
	if m.err != nil {
		return m.err
	}
	m.created = append(m.created, c)
	return nil
}

type mockObjects struct {
	keys []string
	err  error
}

func (m *mockObjects) PutObject(ctx context.Context, key string, data []byte, contentType string) error {
	if m.err != nil {
		return m.err
	}
	m.keys = append(m.keys, key)
	return nil
}

type mockMatcher struct {
	embeddings [][]float32
	err        error
	gotImages  [][]byte
}

func (m *mockMatcher) VerifyFaceSet(ctx context.Context, images [][]byte) ([][]float32, error) {
	m.gotImages = images
	if m.err != nil {
		return nil, m.err
	}
	if m.embeddings != nil {
		return m.embeddings, nil
	}
	out := make([][]float32, len(images))
	for i := range out {
		out[i] = make([]float32, 512)
	}
	return out, nil
}

func uploads(n int) []ImageUpload {
	out := make([]ImageUpload, n)
	for i := range out {
		out[i] = ImageUpload{
			Filename:    fmt.Sprintf("photo_%d.jpg", i),
			ContentType: "image/jpeg",
			Data:        []byte{byte(i), 0xFF},
		}
	}
	return out
}

func adultInput() RegisterInput {
	return RegisterInput{
		FullName:              "Ramesh Kumar",
		Age:                   34,
		PersonContactNumber:   "9876543210",
		LastSeenLocation:      "Sector 4 ghat",
		LastSeenTime:          time.Now().Add(-2 * time.Hour),
		IdentificationDetails: "blue kurta, scar on left hand",
		ReporterName:          "Suresh Kumar",
		ReporterRelation:      "brother",
		ReporterContactNumber: "9876500000",
		Images:                uploads(3),
	}
}

func minorInput() RegisterInput {
	in := adultInput()
	in.FullName = "Anu Kumari"
	in.Age = 9
	in.PersonContactNumber = ""
	in.GuardianType = "parent"
	in.GuardianDetails = "Suresh Kumar, 9876500000"
	return in
}

func newService(store *mockStore, objects *mockObjects, matcher *mockMatcher) *Service {
	return NewService(store, objects, matcher, 3, 7)
}

func TestRegister_Adult(t *testing.T) {
	store := &mockStore{}
	objects := &mockObjects{}
	matcher := &mockMatcher{}
	svc := newService(store, objects, matcher)

	c, err := svc.Register(context.Background(), adultInput())
	require.NoError(t, err)
	require.NotNil(t, c)

	assert.Equal(t, "Ramesh Kumar", c.FullName)
	assert.False(t, c.IsMinor)
	assert.Equal(t, "9876543210", c.PersonContactNumber)
	assert.Empty(t, c.GuardianType)

	require.Len(t, c.Images, 3)
	require.Len(t, c.Embeddings, 3)
	require.Len(t, objects.keys, 3)
	for i, img := range c.Images {
		assert.Equal(t, objects.keys[i], img.ObjectKey)
		assert.True(t, strings.HasPrefix(img.ObjectKey, "lost-persons/"))
	}

	require.Len(t, store.created, 1)
	require.Len(t, matcher.gotImages, 3)
}

func TestRegister_MinorRequiresGuardian(t *testing.T) {
	svc := newService(&mockStore{}, &mockObjects{}, &mockMatcher{})

	in := minorInput()
	in.GuardianDetails = ""
	_, err := svc.Register(context.Background(), in)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestRegister_MinorDropsPersonContact(t *testing.T) {
	store := &mockStore{}
	svc := newService(store, &mockObjects{}, &mockMatcher{})

	in := minorInput()
	in.PersonContactNumber = "1234567890" // ignored for minors
	c, err := svc.Register(context.Background(), in)
	require.NoError(t, err)

	assert.True(t, c.IsMinor)
	assert.Empty(t, c.PersonContactNumber)
	assert.Equal(t, "parent", c.GuardianType)
}

func TestRegister_AdultRequiresContactNumber(t *testing.T) {
	svc := newService(&mockStore{}, &mockObjects{}, &mockMatcher{})

	in := adultInput()
	in.PersonContactNumber = ""
	_, err := svc.Register(context.Background(), in)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestRegister_ImageCountBounds(t *testing.T) {
	svc := newService(&mockStore{}, &mockObjects{}, &mockMatcher{})

	for _, n := range []int{0, 2, 8} {
		in := adultInput()
		in.Images = uploads(n)
		_, err := svc.Register(context.Background(), in)
		require.Error(t, err, "expected %d images to be rejected", n)
		assert.ErrorIs(t, err, apperrors.ErrValidation)
	}

	store := &mockStore{}
	svc = newService(store, &mockObjects{}, &mockMatcher{})
	in := adultInput()
	in.Images = uploads(7)
	_, err := svc.Register(context.Background(), in)
	require.NoError(t, err)
	require.Len(t, store.created, 1)
	assert.Len(t, store.created[0].Images, 7)
}

func TestRegister_MatcherRejectionLeavesNoState(t *testing.T) {
	store := &mockStore{}
	objects := &mockObjects{}
	matcher := &mockMatcher{err: fmt.Errorf("%w: image 2 has no detectable face", apperrors.ErrValidation)}
	svc := newService(store, objects, matcher)

	_, err := svc.Register(context.Background(), adultInput())
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	// Rejected photo sets must not leave orphaned objects or a partial case.
	assert.Empty(t, objects.keys)
	assert.Empty(t, store.created)
}

func TestRegister_MatcherUnavailableAborts(t *testing.T) {
	store := &mockStore{}
	matcher := &mockMatcher{err: apperrors.ErrUnavailable}
	svc := newService(store, &mockObjects{}, matcher)

	_, err := svc.Register(context.Background(), adultInput())
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrUnavailable)
	assert.Empty(t, store.created)
}

func TestRegister_ObjectStoreFailure(t *testing.T) {
	store := &mockStore{}
	objects := &mockObjects{err: errors.New("minio down")}
	svc := newService(store, objects, &mockMatcher{})

	_, err := svc.Register(context.Background(), adultInput())
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrUnavailable)
	assert.Empty(t, store.created)
}

func TestRegister_MissingRequiredFields(t *testing.T) {
	svc := newService(&mockStore{}, &mockObjects{}, &mockMatcher{})

	tests := []struct {
		name   string
		mutate func(*RegisterInput)
	}{
		{"missing name", func(in *RegisterInput) { in.FullName = "" }},
		{"missing location", func(in *RegisterInput) { in.LastSeenLocation = "" }},
		{"missing identification", func(in *RegisterInput) { in.IdentificationDetails = "" }},
		{"zero last seen time", func(in *RegisterInput) { in.LastSeenTime = time.Time{} }},
		{"zero age", func(in *RegisterInput) { in.Age = 0 }},
		{"missing reporter name", func(in *RegisterInput) { in.ReporterName = "" }},
		{"missing reporter relation", func(in *RegisterInput) { in.ReporterRelation = "" }},
		{"missing reporter contact", func(in *RegisterInput) { in.ReporterContactNumber = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := adultInput()
			tt.mutate(&in)
			_, err := svc.Register(context.Background(), in)
			require.Error(t, err)
			assert.ErrorIs(t, err, apperrors.ErrValidation)
		})
	}
}

func TestSanitizeFilename(t *testing.T) {
	assert.Equal(t, "a_b.jpg", sanitizeFilename("a/b.jpg"))
	assert.Equal(t, "a_b.jpg", sanitizeFilename(`a\b.jpg`))
	assert.Equal(t, "image.jpg", sanitizeFilename(""))
}
