// internal/models/store.go
package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DefaultCommissionRate applies when a store has no explicit rate.
var DefaultCommissionRate = decimal.NewFromFloat(5.0)

type Store struct {
	BaseModel
	OwnerID        uuid.UUID       `json:"owner_id" gorm:"type:uuid;not null;index"`
	Name           string          `json:"name" gorm:"size:255;not null"`
	Slug           string          `json:"slug" gorm:"uniqueIndex;size:255;not null"`
	Description    string          `json:"description" gorm:"type:text"`
	LogoURL        string          `json:"logo_url" gorm:"size:512"`
	CommissionRate decimal.Decimal `json:"commission_rate" gorm:"type:decimal(5,2);default:5.0"`
	Approved       bool            `json:"approved" gorm:"default:false;index"`
	BankDetails    JSONB           `json:"bank_details,omitempty" gorm:"type:jsonb"`

	// Relationships
	Owner      User        `json:"owner,omitempty" gorm:"foreignKey:OwnerID"`
	Products   []Product   `json:"products,omitempty" gorm:"foreignKey:StoreID"`
	OrderItems []OrderItem `json:"order_items,omitempty" gorm:"foreignKey:StoreID"`
	Payouts    []Payout    `json:"payouts,omitempty" gorm:"foreignKey:StoreID"`
}

// EffectiveCommissionRate returns the store's rate, falling back to the
// platform default when the record carries none.
func (s *Store) EffectiveCommissionRate() decimal.Decimal {
	if s.CommissionRate.IsZero() {
		return DefaultCommissionRate
	}
	return s.CommissionRate
}
