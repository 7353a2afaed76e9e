package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"invprov/internal/shared/constants"
	apperrors "invprov/internal/shared/errors"
	"invprov/internal/shared/logger"
)

func newTestEngine() *gin.Engine {
	gin.SetMode(gin.TestMode)
	log := logger.NewNopLogger()
	engine := gin.New()
	engine.Use(RequestID(), Logger(log), Recovery(log), ErrorHandler(log))
	return engine
}

func TestRequestID(t *testing.T) {
	engine := newTestEngine()
	engine.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, GetRequestID(c))
	})

	tests := []struct {
		name     string
		incoming string
	}{
		{name: "propagates caller id", incoming: "req-123"},
		{name: "assigns id when absent"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/ping", nil)
			if tt.incoming != "" {
				req.Header.Set(constants.HeaderXRequestID, tt.incoming)
			}
			w := httptest.NewRecorder()
			engine.ServeHTTP(w, req)

			got := w.Header().Get(constants.HeaderXRequestID)
			assert.NotEmpty(t, got)
			assert.Equal(t, got, w.Body.String())
			if tt.incoming != "" {
				assert.Equal(t, tt.incoming, got)
			}
		})
	}
}

func TestRecovery_RendersInternalError(t *testing.T) {
	engine := newTestEngine()
	engine.GET("/panic", func(c *gin.Context) {
		panic("boom")
	})

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "Internal server error occurred")
}

func TestErrorHandler_RendersAttachedError(t *testing.T) {
	engine := newTestEngine()
	engine.GET("/missing", func(c *gin.Context) {
		_ = c.Error(apperrors.NewNotFoundError("subscription not found"))
	})

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/missing", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "subscription not found")
}
