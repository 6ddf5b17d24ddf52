// internal/models/notification.go
package models

import (
	"time"

	"github.com/google/uuid"
)

type Notification struct {
	BaseModel
	RecipientID uuid.UUID  `json:"recipient_id" gorm:"type:uuid;not null;index"`
	Category    string     `json:"category" gorm:"type:varchar(50);not null;index"`
	Title       string     `json:"title" gorm:"size:255;not null"`
	Message     string     `json:"message" gorm:"type:text;not null"`
	Payload     JSONB      `json:"payload,omitempty" gorm:"type:jsonb"`
	Link        string     `json:"link,omitempty" gorm:"size:512"`
	ReadAt      *time.Time `json:"read_at"`

	// Relationships
	Recipient User `json:"recipient,omitempty" gorm:"foreignKey:RecipientID"`
}
