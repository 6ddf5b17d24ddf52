// internal/services/fulfillment_service_test.go
package services

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samoku/samoku-backend/internal/models"
)

func TestDeriveOrderStatus(t *testing.T) {
	tests := []struct {
		name     string
		statuses []models.FulfillmentStatus
		want     models.OrderStatus
	}{
		{
			"no lines",
			nil,
			models.OrderStatusPending,
		},
		{
			"all pending",
			[]models.FulfillmentStatus{models.FulfillmentStatusPending, models.FulfillmentStatusPending},
			models.OrderStatusPending,
		},
		{
			"one processing",
			[]models.FulfillmentStatus{models.FulfillmentStatusPending, models.FulfillmentStatusProcessing},
			models.OrderStatusProcessing,
		},
		{
			"shipped beats processing",
			[]models.FulfillmentStatus{models.FulfillmentStatusProcessing, models.FulfillmentStatusShipped},
			models.OrderStatusShipped,
		},
		{
			"partial delivery still shipped",
			[]models.FulfillmentStatus{models.FulfillmentStatusDelivered, models.FulfillmentStatusShipped},
			models.OrderStatusShipped,
		},
		{
			"delivered plus pending stays pending",
			[]models.FulfillmentStatus{models.FulfillmentStatusDelivered, models.FulfillmentStatusPending},
			models.OrderStatusPending,
		},
		{
			"all delivered",
			[]models.FulfillmentStatus{models.FulfillmentStatusDelivered, models.FulfillmentStatusDelivered},
			models.OrderStatusDelivered,
		},
		{
			"single delivered line",
			[]models.FulfillmentStatus{models.FulfillmentStatusDelivered},
			models.OrderStatusDelivered,
		},
		{
			"failed line alone stays pending",
			[]models.FulfillmentStatus{models.FulfillmentStatusFailed},
			models.OrderStatusPending,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, deriveOrderStatus(tt.statuses))
		})
	}
}

// Recomputing from the same line statuses must always give the same
// answer; the reconciler relies on this to stay idempotent.
func TestDeriveOrderStatusStable(t *testing.T) {
	statuses := []models.FulfillmentStatus{
		models.FulfillmentStatusShipped,
		models.FulfillmentStatusDelivered,
		models.FulfillmentStatusProcessing,
	}

	first := deriveOrderStatus(statuses)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, deriveOrderStatus(statuses))
	}
}

func TestValidFulfillmentStatuses(t *testing.T) {
	assert.True(t, validFulfillmentStatuses[models.FulfillmentStatusShipped])
	assert.False(t, validFulfillmentStatuses[models.FulfillmentStatus("teleported")])
	assert.False(t, validFulfillmentStatuses[models.FulfillmentStatus("")])
}

func TestCanTransitionFulfillment(t *testing.T) {
	tests := []struct {
		name    string
		from    models.FulfillmentStatus
		to      models.FulfillmentStatus
		allowed bool
	}{
		{"pending to processing", models.FulfillmentStatusPending, models.FulfillmentStatusProcessing, true},
		{"pending straight to shipped", models.FulfillmentStatusPending, models.FulfillmentStatusShipped, true},
		{"processing to delivered", models.FulfillmentStatusProcessing, models.FulfillmentStatusDelivered, true},
		{"shipped to delivered", models.FulfillmentStatusShipped, models.FulfillmentStatusDelivered, true},
		{"failed line retried", models.FulfillmentStatusFailed, models.FulfillmentStatusProcessing, true},
		{"same status is idempotent", models.FulfillmentStatusDelivered, models.FulfillmentStatusDelivered, true},
		{"delivered cannot regress to pending", models.FulfillmentStatusDelivered, models.FulfillmentStatusPending, false},
		{"delivered cannot regress to shipped", models.FulfillmentStatusDelivered, models.FulfillmentStatusShipped, false},
		{"shipped cannot regress to processing", models.FulfillmentStatusShipped, models.FulfillmentStatusProcessing, false},
		{"processing cannot regress to pending", models.FulfillmentStatusProcessing, models.FulfillmentStatusPending, false},
		{"failed cannot jump to delivered", models.FulfillmentStatusFailed, models.FulfillmentStatusDelivered, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.allowed, canTransitionFulfillment(tt.from, tt.to))
		})
	}
}

// A delivered line's commission is already settled; nobody may move the line
// backwards, vendor or supplier alike.
func TestUpdateItemStatusRejectsRegression(t *testing.T) {
	gdb, mock := newMockDB(t)
	svc := NewFulfillmentService(gdb, NewCommissionService(gdb, nil), nil)

	itemID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "order_items"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "order_id", "store_id", "status"}).
			AddRow(itemID.String(), uuid.New().String(), uuid.New().String(), "delivered"))
	mock.ExpectRollback()

	_, err := svc.UpdateItemStatus(itemID, &UpdateItemStatusRequest{Status: models.FulfillmentStatusPending}, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.NoError(t, mock.ExpectationsWereMet())
}
