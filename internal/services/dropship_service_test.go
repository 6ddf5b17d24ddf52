// internal/services/dropship_service_test.go
package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/samoku/samoku-backend/internal/models"
)

func TestSupplierStatusMap(t *testing.T) {
	tests := []struct {
		supplier string
		want     models.FulfillmentStatus
	}{
		{"accepted", models.FulfillmentStatusProcessing},
		{"processing", models.FulfillmentStatusProcessing},
		{"shipped", models.FulfillmentStatusShipped},
		{"delivered", models.FulfillmentStatusDelivered},
		{"failed", models.FulfillmentStatusFailed},
	}

	for _, tt := range tests {
		got, ok := supplierStatusMap[tt.supplier]
		assert.True(t, ok, tt.supplier)
		assert.Equal(t, tt.want, got)
	}

	_, ok := supplierStatusMap["refunded"]
	assert.False(t, ok)
}
