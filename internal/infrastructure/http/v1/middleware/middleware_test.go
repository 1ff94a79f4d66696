package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"pharmadesk/internal/core/apperror"
	appctx "pharmadesk/internal/core/context"
	"pharmadesk/internal/infrastructure/auth"
	"pharmadesk/pkg/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newRouter(handlers ...gin.HandlerFunc) *gin.Engine {
	router := gin.New()
	router.Use(Recovery(), Trace(), Logger(logger.Nop()), ErrorHandler())
	router.Use(handlers...)
	return router
}

func serve(router *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestErrorHandler_AppError(t *testing.T) {
	router := newRouter()
	router.GET("/test", func(c *gin.Context) {
		_ = c.Error(apperror.NewInsufficientStock("napa", "Napa 500", 10, 15))
		c.Abort()
	})

	rec := serve(router, httptest.NewRequest(http.MethodGet, "/test", nil))

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	body := decodeError(t, rec)
	assert.Equal(t, apperror.CodeInsufficientStock, body["code"])
	details := body["details"].(map[string]any)
	assert.Equal(t, "napa", details["medicine_id"])
	assert.EqualValues(t, 10, details["available"])
	assert.EqualValues(t, 15, details["required"])
}

func TestErrorHandler_UnknownErrorIsHidden(t *testing.T) {
	router := newRouter()
	router.GET("/test", func(c *gin.Context) {
		_ = c.Error(errors.New("connection refused by 10.0.0.5"))
		c.Abort()
	})

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set(HeaderRequestID, "req-42")
	rec := serve(router, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "10.0.0.5")
	body := decodeError(t, rec)
	assert.Equal(t, apperror.CodeInternal, body["code"])
	assert.Equal(t, "req-42", body["details"].(map[string]any)["request_id"])
}

func TestErrorHandler_WrittenResponseKept(t *testing.T) {
	router := newRouter()
	router.GET("/test", func(c *gin.Context) {
		c.JSON(http.StatusAccepted, gin.H{"ok": true})
		_ = c.Error(errors.New("late"))
	})

	rec := serve(router, httptest.NewRequest(http.MethodGet, "/test", nil))
	assert.Equal(t, http.StatusAccepted, rec.Code)
}

func TestRecovery_PanicBecomesInternalError(t *testing.T) {
	router := newRouter()
	router.GET("/test", func(c *gin.Context) {
		panic("boom")
	})

	rec := serve(router, httptest.NewRequest(http.MethodGet, "/test", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "boom")
	assert.Equal(t, apperror.CodeInternal, decodeError(t, rec)["code"])
}

func TestTrace_ReusesOrGeneratesIDs(t *testing.T) {
	var seen string
	router := newRouter()
	router.GET("/test", func(c *gin.Context) {
		seen = appctx.GetRequestID(c.Request.Context())
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set(HeaderRequestID, "req-1")
	rec := serve(router, req)
	assert.Equal(t, "req-1", seen)
	assert.Equal(t, "req-1", rec.Header().Get(HeaderRequestID))
	assert.Equal(t, "req-1", rec.Header().Get(HeaderTraceID))

	rec = serve(router, httptest.NewRequest(http.MethodGet, "/test", nil))
	assert.NotEmpty(t, rec.Header().Get(HeaderRequestID))
	assert.Equal(t, rec.Header().Get(HeaderRequestID), seen)
}

func newValidator() *auth.JWTValidator {
	return auth.NewJWTValidator(auth.DefaultConfig("test-secret-key-at-least-32-chars"))
}

func issue(t *testing.T, v *auth.JWTValidator, user appctx.UserContext) string {
	t.Helper()
	token, _, err := v.IssueToken(user)
	require.NoError(t, err)
	return token
}

func TestAuth(t *testing.T) {
	v := newValidator()
	valid := issue(t, v, appctx.UserContext{UserID: "u-1", PharmacyID: "ph-1", Roles: []string{"cashier"}})

	tests := []struct {
		name       string
		header     string
		wantStatus int
	}{
		{"valid token", "Bearer " + valid, http.StatusOK},
		{"lowercase scheme", "bearer " + valid, http.StatusOK},
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic " + valid, http.StatusUnauthorized},
		{"no token", "Bearer ", http.StatusUnauthorized},
		{"garbage token", "Bearer not-a-jwt", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var pharmacyID string
			router := newRouter(Auth(v))
			router.GET("/test", func(c *gin.Context) {
				pharmacyID = appctx.GetPharmacyID(c.Request.Context())
				c.Status(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := serve(router, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantStatus == http.StatusOK {
				assert.Equal(t, "ph-1", pharmacyID)
			} else {
				assert.Equal(t, apperror.CodeUnauthorized, decodeError(t, rec)["code"])
			}
		})
	}
}

func TestRequireRole(t *testing.T) {
	v := newValidator()

	tests := []struct {
		name       string
		user       appctx.UserContext
		wantStatus int
	}{
		{"matching role", appctx.UserContext{UserID: "u-1", Roles: []string{"pharmacist"}}, http.StatusOK},
		{"admin", appctx.UserContext{UserID: "u-2", IsAdmin: true}, http.StatusOK},
		{"other role", appctx.UserContext{UserID: "u-3", Roles: []string{"viewer"}}, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newRouter(Auth(v), RequireRole("pharmacist", "owner"))
			router.POST("/test", func(c *gin.Context) { c.Status(http.StatusOK) })

			req := httptest.NewRequest(http.MethodPost, "/test", nil)
			req.Header.Set("Authorization", "Bearer "+issue(t, v, tt.user))
			rec := serve(router, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestRequireRole_WithoutUser(t *testing.T) {
	router := newRouter(RequireRole("owner"))
	router.POST("/test", func(c *gin.Context) { c.Status(http.StatusOK) })

	rec := serve(router, httptest.NewRequest(http.MethodPost, "/test", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLogger_RequestScopedLogger(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	log := &logger.Logger{SugaredLogger: zap.New(core).Sugar()}

	router := gin.New()
	router.Use(Trace(), Logger(log), ErrorHandler())
	router.GET("/api/invoice/:id", func(c *gin.Context) {
		logger.Info(c.Request.Context(), "loading invoice")
		_ = c.Error(apperror.NewNotFound("invoice", "x"))
		c.Abort()
	})
	router.GET("/health/live", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/api/invoice/42", nil)
	req.Header.Set(HeaderRequestID, "req-7")
	serve(router, req)
	serve(router, httptest.NewRequest(http.MethodGet, "/health/live", nil))

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "loading invoice", entries[0].Message)
	assert.Equal(t, "req-7", entries[0].ContextMap()["request_id"])

	access := entries[1]
	assert.Equal(t, zapcore.WarnLevel, access.Level)
	assert.Equal(t, "/api/invoice/:id", access.ContextMap()["route"])
	assert.EqualValues(t, http.StatusNotFound, access.ContextMap()["status"])
}
