// internal/models/product.go
package models

import (
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

type Product struct {
	BaseModel
	StoreID       uuid.UUID       `json:"store_id" gorm:"type:uuid;not null;index"`
	Name          string          `json:"name" gorm:"size:255;not null"`
	Description   string          `json:"description" gorm:"type:text"`
	Category      string          `json:"category" gorm:"size:100;index"`
	Price         decimal.Decimal `json:"price" gorm:"type:decimal(12,2);not null"`
	StockQuantity int             `json:"stock_quantity" gorm:"default:0"`
	Images        pq.StringArray  `json:"images" gorm:"type:text[]"`
	Tags          pq.StringArray  `json:"tags" gorm:"type:text[]"`
	Status        ProductStatus   `json:"status" gorm:"type:varchar(20);default:'draft';index"`
	Dropshipped   bool            `json:"dropshipped" gorm:"default:false;index"`
	ExternalID    string          `json:"external_id,omitempty" gorm:"size:100;index"`
	ViewCount     int64           `json:"view_count" gorm:"default:0"`
	SalesCount    int64           `json:"sales_count" gorm:"default:0"`
	Rating        float64         `json:"rating" gorm:"type:decimal(3,2);default:0"`
	ReviewCount   int64           `json:"review_count" gorm:"default:0"`

	// Relationships
	Store      Store       `json:"store,omitempty" gorm:"foreignKey:StoreID"`
	OrderItems []OrderItem `json:"order_items,omitempty" gorm:"foreignKey:ProductID"`
}

// FirstImage returns the snapshot image used on order lines.
func (p *Product) FirstImage() string {
	if len(p.Images) > 0 {
		return p.Images[0]
	}
	return ""
}

type InventoryAlert struct {
	BaseModel
	ProductID uuid.UUID `json:"product_id" gorm:"type:uuid;not null;index"`
	StoreID   uuid.UUID `json:"store_id" gorm:"type:uuid;not null;index"`
	AlertType AlertType `json:"alert_type" gorm:"type:varchar(20);not null"`
	Threshold int       `json:"threshold" gorm:"default:0"`
	Resolved  bool      `json:"resolved" gorm:"default:false;index"`

	// Relationships
	Product Product `json:"product,omitempty" gorm:"foreignKey:ProductID"`
}
