package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/your-org/reunite/internal/apperrors"
)

func TestRespondError_StatusMapping(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		err    error
		status int
	}{
		{fmt.Errorf("%w: bad input", apperrors.ErrValidation), http.StatusBadRequest},
		{fmt.Errorf("%w: face does not match", apperrors.ErrMismatch), http.StatusBadRequest},
		{fmt.Errorf("%w: no such case", apperrors.ErrNotFound), http.StatusNotFound},
		{fmt.Errorf("%w: already resolved", apperrors.ErrConflict), http.StatusConflict},
		{fmt.Errorf("%w: matcher down", apperrors.ErrUnavailable), http.StatusBadGateway},
		{errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		respondError(c, tt.err)
		assert.Equal(t, tt.status, w.Code, "error: %v", tt.err)
	}
}

func TestRespondError_MismatchShape(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	respondError(c, fmt.Errorf("%w: face does not match", apperrors.ErrMismatch))

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))

	// A mismatch is a verification verdict, delivered as success=false.
	assert.Equal(t, false, body["success"])
	assert.Contains(t, body["message"], "face does not match")
	assert.NotContains(t, body, "error")
}
