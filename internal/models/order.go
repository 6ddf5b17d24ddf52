// internal/models/order.go
package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Order struct {
	BaseModel
	OrderNumber     string          `json:"order_number" gorm:"uniqueIndex;size:32;not null"`
	CustomerID      uuid.UUID       `json:"customer_id" gorm:"type:uuid;not null;index"`
	Subtotal        decimal.Decimal `json:"subtotal" gorm:"type:decimal(12,2);not null"`
	Tax             decimal.Decimal `json:"tax" gorm:"type:decimal(12,2);not null"`
	Shipping        decimal.Decimal `json:"shipping" gorm:"type:decimal(12,2);not null"`
	Total           decimal.Decimal `json:"total" gorm:"type:decimal(12,2);not null"`
	ShippingAddress JSONB           `json:"shipping_address" gorm:"type:jsonb"`
	BillingAddress  JSONB           `json:"billing_address" gorm:"type:jsonb"`
	PaymentMethod   string          `json:"payment_method" gorm:"size:50"`
	Status          OrderStatus     `json:"status" gorm:"type:varchar(20);default:'pending';index"`
	PaymentStatus   PaymentStatus   `json:"payment_status" gorm:"type:varchar(20);default:'pending';index"`
	ShippedAt       *time.Time      `json:"shipped_at"`
	DeliveredAt     *time.Time      `json:"delivered_at"`

	// Relationships
	Customer User        `json:"customer,omitempty" gorm:"foreignKey:CustomerID"`
	Items    []OrderItem `json:"items,omitempty" gorm:"foreignKey:OrderID"`
}

type OrderItem struct {
	BaseModel
	OrderID          uuid.UUID         `json:"order_id" gorm:"type:uuid;not null;index"`
	ProductID        uuid.UUID         `json:"product_id" gorm:"type:uuid;not null;index"`
	StoreID          uuid.UUID         `json:"store_id" gorm:"type:uuid;not null;index"`
	ProductName      string            `json:"product_name" gorm:"size:255;not null"`
	ProductImage     string            `json:"product_image" gorm:"size:512"`
	UnitPrice        decimal.Decimal   `json:"unit_price" gorm:"type:decimal(12,2);not null"`
	Quantity         int               `json:"quantity" gorm:"not null"`
	Status           FulfillmentStatus `json:"status" gorm:"type:varchar(20);default:'pending';index"`
	TrackingNumber   string            `json:"tracking_number,omitempty" gorm:"size:100"`
	CommissionRate   decimal.Decimal   `json:"commission_rate" gorm:"type:decimal(5,2);not null"`
	CommissionAmount decimal.Decimal   `json:"commission_amount" gorm:"type:decimal(12,2);not null"`

	// Relationships
	Order      Order                  `json:"order,omitempty" gorm:"foreignKey:OrderID"`
	Product    Product                `json:"product,omitempty" gorm:"foreignKey:ProductID"`
	Store      Store                  `json:"store,omitempty" gorm:"foreignKey:StoreID"`
	Commission *CommissionTransaction `json:"commission,omitempty" gorm:"foreignKey:OrderItemID"`
}

// LineTotal is the sale amount for the line (unit price x quantity).
func (i *OrderItem) LineTotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}
