package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func serve(apiKey, header string) int {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(APIKeyMiddleware(apiKey))
	r.GET("/protected", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if header != "" {
		req.Header.Set("X-API-Key", header)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w.Code
}

func TestAPIKeyMiddleware(t *testing.T) {
	assert.Equal(t, http.StatusOK, serve("secret", "secret"))
	assert.Equal(t, http.StatusUnauthorized, serve("secret", ""))
	assert.Equal(t, http.StatusForbidden, serve("secret", "wrong"))

	// An empty configured key disables the gate.
	assert.Equal(t, http.StatusOK, serve("", ""))
}
