// internal/models/dropship.go
package models

type DropshipSyncLog struct {
	BaseModel
	Provider   string `json:"provider" gorm:"size:50;not null;index"`
	EventType  string `json:"event_type" gorm:"size:50;not null;index"`
	ExternalID string `json:"external_id" gorm:"size:100;index"`
	Payload    JSONB  `json:"payload" gorm:"type:jsonb"`
	Success    bool   `json:"success" gorm:"default:true;index"`
	Error      string `json:"error,omitempty" gorm:"type:text"`
}
