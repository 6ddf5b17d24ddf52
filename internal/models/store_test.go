// internal/models/store_test.go
package models

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestEffectiveCommissionRate(t *testing.T) {
	store := Store{CommissionRate: decimal.NewFromFloat(7.5)}
	assert.True(t, decimal.NewFromFloat(7.5).Equal(store.EffectiveCommissionRate()))

	unset := Store{}
	assert.True(t, DefaultCommissionRate.Equal(unset.EffectiveCommissionRate()))
}

func TestOrderItemLineTotal(t *testing.T) {
	item := OrderItem{
		UnitPrice: decimal.NewFromFloat(19.99),
		Quantity:  3,
	}
	assert.True(t, decimal.NewFromFloat(59.97).Equal(item.LineTotal()))
}

func TestProductFirstImage(t *testing.T) {
	p := Product{Images: []string{"a.jpg", "b.jpg"}}
	assert.Equal(t, "a.jpg", p.FirstImage())

	empty := Product{}
	assert.Equal(t, "", empty.FirstImage())
}
