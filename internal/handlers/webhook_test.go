// internal/handlers/webhook_test.go
package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/samoku/samoku-backend/internal/config"
	"github.com/samoku/samoku-backend/internal/services"
)

func newWebhookRouter(t *testing.T) (*gin.Engine, sqlmock.Sqlmock) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		TranslateError:         true,
		DisableAutomaticPing:   true,
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	cfg := &config.Config{}
	handler := NewWebhookHandler(services.NewDropshipService(gdb, cfg, nil), cfg)

	router := gin.New()
	router.POST("/webhooks/dropship", handler.HandleDropshipEvent)
	return router, mock
}

func postDropshipEvent(t *testing.T, router *gin.Engine, eventType string, data gin.H) *httptest.ResponseRecorder {
	t.Helper()

	body, err := json.Marshal(gin.H{"event_type": eventType, "data": data})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/webhooks/dropship", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// Database faults are the platform's problem: the provider gets a retryable
// 500 and none of the driver's error text.
func TestDropshipWebhookHidesPersistenceFailures(t *testing.T) {
	router, mock := newWebhookRouter(t)

	mock.ExpectExec(`UPDATE "products"`).
		WillReturnError(errors.New("pq: connection reset by peer"))
	mock.ExpectQuery(`INSERT INTO "dropship_sync_logs"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(uuid.New().String()))

	w := postDropshipEvent(t, router, "stock_changed", gin.H{
		"external_product_id": "SUP-100",
		"stock":               4,
	})

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "connection reset")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDropshipWebhookRejectsUnknownProduct(t *testing.T) {
	router, mock := newWebhookRouter(t)

	mock.ExpectExec(`UPDATE "products"`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`INSERT INTO "dropship_sync_logs"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(uuid.New().String()))

	w := postDropshipEvent(t, router, "stock_changed", gin.H{
		"external_product_id": "SUP-404",
		"stock":               4,
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDropshipWebhookRejectsUnknownEventType(t *testing.T) {
	router, _ := newWebhookRouter(t)

	w := postDropshipEvent(t, router, "warehouse_exploded", gin.H{})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
