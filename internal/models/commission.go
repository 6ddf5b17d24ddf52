// internal/models/commission.go
package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type CommissionTransaction struct {
	BaseModel
	OrderItemID      uuid.UUID        `json:"order_item_id" gorm:"type:uuid;not null;uniqueIndex"`
	OrderID          uuid.UUID        `json:"order_id" gorm:"type:uuid;not null;index"`
	StoreID          uuid.UUID        `json:"store_id" gorm:"type:uuid;not null;index"`
	SaleAmount       decimal.Decimal  `json:"sale_amount" gorm:"type:decimal(12,2);not null"`
	CommissionRate   decimal.Decimal  `json:"commission_rate" gorm:"type:decimal(5,2);not null"`
	CommissionAmount decimal.Decimal  `json:"commission_amount" gorm:"type:decimal(12,2);not null"`
	PlatformFee      decimal.Decimal  `json:"platform_fee" gorm:"type:decimal(12,2);not null"`
	NetAmount        decimal.Decimal  `json:"net_amount" gorm:"type:decimal(12,2);not null"`
	Status           CommissionStatus `json:"status" gorm:"type:varchar(20);default:'pending';index"`
	PayoutID         *uuid.UUID       `json:"payout_id" gorm:"type:uuid;index"`
	PaidAt           *time.Time       `json:"paid_at"`

	// Relationships
	OrderItem OrderItem `json:"order_item,omitempty" gorm:"foreignKey:OrderItemID"`
	Store     Store     `json:"store,omitempty" gorm:"foreignKey:StoreID"`
	Payout    *Payout   `json:"payout,omitempty" gorm:"foreignKey:PayoutID"`
}

type Payout struct {
	BaseModel
	StoreID     uuid.UUID       `json:"store_id" gorm:"type:uuid;not null;index"`
	Amount      decimal.Decimal `json:"amount" gorm:"type:decimal(12,2);not null"`
	PeriodStart time.Time       `json:"period_start" gorm:"not null"`
	PeriodEnd   time.Time       `json:"period_end" gorm:"not null"`
	Status      PayoutStatus    `json:"status" gorm:"type:varchar(20);default:'pending';index"`
	BankDetails JSONB           `json:"bank_details,omitempty" gorm:"type:jsonb"`
	Notes       string          `json:"notes,omitempty" gorm:"type:text"`
	ProcessedAt *time.Time      `json:"processed_at"`

	// Relationships
	Store        Store                   `json:"store,omitempty" gorm:"foreignKey:StoreID"`
	Transactions []CommissionTransaction `json:"transactions,omitempty" gorm:"foreignKey:PayoutID"`
}
