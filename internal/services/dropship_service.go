// internal/services/dropship_service.go
package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/samoku/samoku-backend/internal/config"
	"github.com/samoku/samoku-backend/internal/models"
)

// DropshipService ingests supplier webhook events and keeps dropshipped
// product records in sync with the external catalog.
type DropshipService struct {
	db                 *gorm.DB
	config             *config.Config
	fulfillmentService *FulfillmentService
}

type OrderStatusChangedEvent struct {
	OrderItemID    string `json:"order_item_id"`
	Status         string `json:"status"`
	TrackingNumber string `json:"tracking_number,omitempty"`
}

type StockChangedEvent struct {
	ExternalProductID string `json:"external_product_id"`
	Stock             int    `json:"stock"`
}

type ProductUpdatedEvent struct {
	ExternalProductID string   `json:"external_product_id"`
	Name              string   `json:"name,omitempty"`
	Description       string   `json:"description,omitempty"`
	Price             string   `json:"price,omitempty"`
	Images            []string `json:"images,omitempty"`
	Discontinued      bool     `json:"discontinued,omitempty"`
}

var supplierStatusMap = map[string]models.FulfillmentStatus{
	"accepted":   models.FulfillmentStatusProcessing,
	"processing": models.FulfillmentStatusProcessing,
	"shipped":    models.FulfillmentStatusShipped,
	"delivered":  models.FulfillmentStatusDelivered,
	"failed":     models.FulfillmentStatusFailed,
}

func NewDropshipService(db *gorm.DB, cfg *config.Config, fulfillmentService *FulfillmentService) *DropshipService {
	return &DropshipService{
		db:                 db,
		config:             cfg,
		fulfillmentService: fulfillmentService,
	}
}

func (s *DropshipService) logEvent(eventType, externalID string, payload models.JSONB, err error) {
	entry := &models.DropshipSyncLog{
		Provider:   s.config.Dropship.Provider,
		EventType:  eventType,
		ExternalID: externalID,
		Payload:    payload,
		Success:    err == nil,
	}
	if err != nil {
		entry.Error = err.Error()
	}
	if dbErr := s.db.Create(entry).Error; dbErr != nil {
		logrus.WithError(dbErr).Error("Failed to record dropship sync log")
	}
}

// HandleOrderStatusChanged maps a supplier fulfillment update onto the
// order line we handed the supplier at purchase time. The line-level
// update runs through the same reconciliation path vendors use.
func (s *DropshipService) HandleOrderStatusChanged(event *OrderStatusChangedEvent) error {
	payload := models.JSONB{
		"order_item_id":   event.OrderItemID,
		"status":          event.Status,
		"tracking_number": event.TrackingNumber,
	}

	err := s.applyOrderStatus(event)
	s.logEvent("order_status_changed", event.OrderItemID, payload, err)
	return err
}

func (s *DropshipService) applyOrderStatus(event *OrderStatusChangedEvent) error {
	itemID, err := uuid.Parse(event.OrderItemID)
	if err != nil {
		return fmt.Errorf("%w: invalid order_item_id %q", ErrInvalidEvent, event.OrderItemID)
	}

	status, ok := supplierStatusMap[event.Status]
	if !ok {
		return fmt.Errorf("%w: unknown supplier status %q", ErrInvalidEvent, event.Status)
	}

	// nil actor store: supplier updates bypass the ownership check.
	_, err = s.fulfillmentService.UpdateItemStatus(itemID, &UpdateItemStatusRequest{
		Status:         status,
		TrackingNumber: event.TrackingNumber,
	}, nil)
	return err
}

// HandleStockChanged overwrites local stock with the supplier's absolute
// figure for a dropshipped product.
func (s *DropshipService) HandleStockChanged(event *StockChangedEvent) error {
	payload := models.JSONB{
		"external_product_id": event.ExternalProductID,
		"stock":               event.Stock,
	}

	err := s.applyStockChange(event)
	s.logEvent("stock_changed", event.ExternalProductID, payload, err)
	return err
}

func (s *DropshipService) applyStockChange(event *StockChangedEvent) error {
	if event.Stock < 0 {
		return fmt.Errorf("%w: stock must be non-negative", ErrInvalidEvent)
	}

	res := s.db.Model(&models.Product{}).
		Where("external_id = ? AND dropshipped = true", event.ExternalProductID).
		UpdateColumn("stock_quantity", event.Stock)
	if res.Error != nil {
		return fmt.Errorf("failed to update stock: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: no dropshipped product with external id %q", ErrInvalidEvent, event.ExternalProductID)
	}

	if event.Stock == 0 {
		s.db.Model(&models.Product{}).
			Where("external_id = ? AND dropshipped = true", event.ExternalProductID).
			Update("status", models.ProductStatusSoldOut)
	}

	return nil
}

// HandleProductUpdated applies catalog changes pushed by the supplier.
// Discontinued products are suspended rather than deleted so existing
// order lines keep a valid reference.
func (s *DropshipService) HandleProductUpdated(event *ProductUpdatedEvent) error {
	payload := models.JSONB{"external_product_id": event.ExternalProductID}

	err := s.applyProductUpdate(event)
	s.logEvent("product_updated", event.ExternalProductID, payload, err)
	return err
}

func (s *DropshipService) applyProductUpdate(event *ProductUpdatedEvent) error {
	var product models.Product
	if err := s.db.Where("external_id = ? AND dropshipped = true", event.ExternalProductID).
		First(&product).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: no dropshipped product with external id %q", ErrInvalidEvent, event.ExternalProductID)
		}
		return fmt.Errorf("database error: %w", err)
	}

	updates := make(map[string]interface{})
	if event.Name != "" {
		updates["name"] = event.Name
	}
	if event.Description != "" {
		updates["description"] = event.Description
	}
	if event.Price != "" {
		price, err := decimal.NewFromString(event.Price)
		if err != nil || price.IsNegative() || price.IsZero() {
			return fmt.Errorf("%w: invalid price %q", ErrInvalidEvent, event.Price)
		}
		updates["price"] = price.Round(2)
	}
	if len(event.Images) > 0 {
		updates["images"] = pq.StringArray(event.Images)
	}
	if event.Discontinued {
		updates["status"] = models.ProductStatusSuspended
	}

	if len(updates) == 0 {
		return nil
	}

	if err := s.db.Model(&product).Updates(updates).Error; err != nil {
		return fmt.Errorf("failed to update product: %w", err)
	}

	return nil
}

// ImportProducts creates dropshipped catalog entries for a store from a
// supplier feed. Entries already imported (same external id) are skipped.
func (s *DropshipService) ImportProducts(storeID uuid.UUID, feed []ProductUpdatedEvent) (int, error) {
	imported := 0
	for _, item := range feed {
		if item.ExternalProductID == "" || item.Name == "" || item.Price == "" {
			continue
		}

		var count int64
		s.db.Model(&models.Product{}).
			Where("external_id = ?", item.ExternalProductID).
			Count(&count)
		if count > 0 {
			continue
		}

		price, err := decimal.NewFromString(item.Price)
		if err != nil || price.IsNegative() || price.IsZero() {
			continue
		}

		product := &models.Product{
			StoreID:     storeID,
			Name:        item.Name,
			Description: item.Description,
			Category:    "dropship",
			Price:       price.Round(2),
			Images:      pq.StringArray(item.Images),
			Status:      models.ProductStatusActive,
			Dropshipped: true,
			ExternalID:  item.ExternalProductID,
		}
		if err := s.db.Create(product).Error; err != nil {
			s.logEvent("product_imported", item.ExternalProductID, models.JSONB{"name": item.Name}, err)
			continue
		}

		s.logEvent("product_imported", item.ExternalProductID, models.JSONB{"name": item.Name}, nil)
		imported++
	}

	return imported, nil
}

// GetSyncLogs lists recent webhook activity for the admin dashboard.
func (s *DropshipService) GetSyncLogs(limit int, failedOnly bool) ([]models.DropshipSyncLog, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	query := s.db.Order("created_at DESC").Limit(limit)
	if failedOnly {
		query = query.Where("success = false")
	}

	var logs []models.DropshipSyncLog
	if err := query.Find(&logs).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch sync logs: %w", err)
	}
	return logs, nil
}
