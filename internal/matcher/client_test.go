package matcher

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/your-org/reunite/internal/apperrors"
	"github.com/your-org/reunite/internal/config"
)

func newTestClient(baseURL string) *Client {
	return NewClient(config.MatcherConfig{
		BaseURL:        baseURL,
		VerifyTimeout:  5 * time.Second,
		CompareTimeout: 5 * time.Second,
	})
}

func TestVerifyFaceSet_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/verify_faceset", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(10 << 20))
		require.Len(t, r.MultipartForm.File["images"], 3)

		json.NewEncoder(w).Encode(map[string]interface{}{
			"success":    true,
			"embeddings": [][]float32{{0.1}, {0.2}, {0.3}},
		})
	}))
	defer srv.Close()

	embeddings, err := newTestClient(srv.URL).VerifyFaceSet(context.Background(),
		[][]byte{[]byte("a"), []byte("b"), []byte("c")})
	require.NoError(t, err)
	require.Len(t, embeddings, 3)
	assert.Equal(t, []float32{0.2}, embeddings[1])
}

func TestVerifyFaceSet_Rejection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": false,
			"message": "image 2 has no detectable face",
		})
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).VerifyFaceSet(context.Background(), [][]byte{[]byte("a")})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
	assert.Contains(t, err.Error(), "no detectable face")
}

func TestVerifyFaceSet_EmbeddingCountMismatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success":    true,
			"embeddings": [][]float32{{0.1}},
		})
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).VerifyFaceSet(context.Background(),
		[][]byte{[]byte("a"), []byte("b")})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrUnavailable)
}

func TestVerifyFaceSet_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).VerifyFaceSet(context.Background(), [][]byte{[]byte("a")})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrUnavailable)
}

func TestVerifyFaceSet_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	_, err := newTestClient(srv.URL).VerifyFaceSet(context.Background(), [][]byte{[]byte("a")})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrUnavailable)
}

func TestCompareFace_Match(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/verify_resolve_photo", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(10 << 20))
		require.Len(t, r.MultipartForm.File["image"], 1)

		var embeddings [][]float32
		require.NoError(t, json.Unmarshal([]byte(r.FormValue("embeddings_str")), &embeddings))
		require.Len(t, embeddings, 2)

		json.NewEncoder(w).Encode(map[string]interface{}{
			"match":   true,
			"message": "Face matched.",
		})
	}))
	defer srv.Close()

	match, message, err := newTestClient(srv.URL).CompareFace(context.Background(),
		[]byte("photo"), [][]float32{{0.1}, {0.2}})
	require.NoError(t, err)
	assert.True(t, match)
	assert.Equal(t, "Face matched.", message)
}

func TestCompareFace_NoMatchIsNotAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"match":   false,
			"message": "Face does not match.",
		})
	}))
	defer srv.Close()

	match, message, err := newTestClient(srv.URL).CompareFace(context.Background(),
		[]byte("photo"), [][]float32{{0.1}})
	require.NoError(t, err)
	assert.False(t, match)
	assert.Equal(t, "Face does not match.", message)
}

func TestCompareFace_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, _, err := newTestClient(srv.URL).CompareFace(context.Background(),
		[]byte("photo"), [][]float32{{0.1}})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrUnavailable)
}
