// internal/services/fulfillment_service.go
package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/samoku/samoku-backend/internal/models"
)

type FulfillmentService struct {
	db                  *gorm.DB
	commissionService   *CommissionService
	notificationService *NotificationService
}

type UpdateItemStatusRequest struct {
	Status         models.FulfillmentStatus `json:"status" validate:"required"`
	TrackingNumber string                   `json:"tracking_number,omitempty"`
}

func NewFulfillmentService(db *gorm.DB, commissionService *CommissionService, notificationService *NotificationService) *FulfillmentService {
	return &FulfillmentService{
		db:                  db,
		commissionService:   commissionService,
		notificationService: notificationService,
	}
}

var validFulfillmentStatuses = map[models.FulfillmentStatus]bool{
	models.FulfillmentStatusPending:    true,
	models.FulfillmentStatusProcessing: true,
	models.FulfillmentStatusShipped:    true,
	models.FulfillmentStatusDelivered:  true,
	models.FulfillmentStatusFailed:     true,
}

// fulfillmentTransitions is the forward-only lifecycle: a delivered line is
// terminal (its commission is already settled), a failed line can be retried.
var fulfillmentTransitions = map[models.FulfillmentStatus]map[models.FulfillmentStatus]bool{
	models.FulfillmentStatusPending: {
		models.FulfillmentStatusProcessing: true,
		models.FulfillmentStatusShipped:    true,
		models.FulfillmentStatusDelivered:  true,
		models.FulfillmentStatusFailed:     true,
	},
	models.FulfillmentStatusProcessing: {
		models.FulfillmentStatusShipped:   true,
		models.FulfillmentStatusDelivered: true,
		models.FulfillmentStatusFailed:    true,
	},
	models.FulfillmentStatusShipped: {
		models.FulfillmentStatusDelivered: true,
		models.FulfillmentStatusFailed:    true,
	},
	models.FulfillmentStatusDelivered: {},
	models.FulfillmentStatusFailed: {
		models.FulfillmentStatusProcessing: true,
	},
}

// canTransitionFulfillment reports whether a line may move between the two
// statuses. Re-submitting the current status is allowed so retried updates
// stay idempotent.
func canTransitionFulfillment(from, to models.FulfillmentStatus) bool {
	if from == to {
		return true
	}
	allowed, ok := fulfillmentTransitions[from]
	return ok && allowed[to]
}

// deriveOrderStatus folds the per-line fulfillment statuses into the parent
// order's overall status: all delivered wins, then any shipped, then any
// processing, otherwise pending.
func deriveOrderStatus(statuses []models.FulfillmentStatus) models.OrderStatus {
	if len(statuses) == 0 {
		return models.OrderStatusPending
	}

	allDelivered := true
	anyShipped := false
	anyProcessing := false

	for _, status := range statuses {
		if status != models.FulfillmentStatusDelivered {
			allDelivered = false
		}
		if status == models.FulfillmentStatusShipped {
			anyShipped = true
		}
		if status == models.FulfillmentStatusProcessing {
			anyProcessing = true
		}
	}

	switch {
	case allDelivered:
		return models.OrderStatusDelivered
	case anyShipped:
		return models.OrderStatusShipped
	case anyProcessing:
		return models.OrderStatusProcessing
	default:
		return models.OrderStatusPending
	}
}

// UpdateItemStatus advances one order line's fulfillment status and
// reconciles the parent order. The derived status is recomputed over all
// sibling lines on every call and written only when it changes, so repeated
// calls with the same target are idempotent. When actorStoreID is set, the
// line must belong to that store.
func (s *FulfillmentService) UpdateItemStatus(itemID uuid.UUID, req *UpdateItemStatusRequest, actorStoreID *uuid.UUID) (*models.Order, error) {
	if !validFulfillmentStatuses[req.Status] {
		return nil, fmt.Errorf("invalid fulfillment status %q", req.Status)
	}

	var order models.Order
	var statusChanged bool

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var item models.OrderItem
		if err := tx.First(&item, itemID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("order item not found: %w", err)
			}
			return fmt.Errorf("database error: %w", err)
		}

		if actorStoreID != nil && item.StoreID != *actorStoreID {
			return ErrNotStoreOwner
		}

		if !canTransitionFulfillment(item.Status, req.Status) {
			return fmt.Errorf("%w: %s to %s", ErrInvalidTransition, item.Status, req.Status)
		}

		updates := map[string]interface{}{"status": req.Status}
		if req.TrackingNumber != "" {
			updates["tracking_number"] = req.TrackingNumber
		}
		if err := tx.Model(&item).Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to update order item: %w", err)
		}

		// A delivered line settles its commission
		if req.Status == models.FulfillmentStatusDelivered {
			if err := s.commissionService.MarkPaidForItem(tx, item.ID); err != nil {
				return err
			}
		}

		// Reconcile the parent order against all sibling lines
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&order, item.OrderID).Error; err != nil {
			return fmt.Errorf("failed to load parent order: %w", err)
		}

		var siblings []models.OrderItem
		if err := tx.Where("order_id = ?", order.ID).Find(&siblings).Error; err != nil {
			return fmt.Errorf("failed to load sibling items: %w", err)
		}

		statuses := make([]models.FulfillmentStatus, len(siblings))
		for i, sibling := range siblings {
			statuses[i] = sibling.Status
		}

		derived := deriveOrderStatus(statuses)
		if derived == order.Status {
			return nil
		}

		orderUpdates := map[string]interface{}{"status": derived}
		now := time.Now()
		// Timestamps record the first transition only
		if derived == models.OrderStatusShipped && order.ShippedAt == nil {
			orderUpdates["shipped_at"] = &now
		}
		if derived == models.OrderStatusDelivered && order.DeliveredAt == nil {
			orderUpdates["delivered_at"] = &now
		}

		if err := tx.Model(&order).Updates(orderUpdates).Error; err != nil {
			return fmt.Errorf("failed to update order status: %w", err)
		}

		order.Status = derived
		statusChanged = true
		return nil
	})
	if err != nil {
		return nil, err
	}

	if statusChanged && s.notificationService != nil {
		go s.notificationService.SendOrderStatusNotification(&order)
	}

	return &order, nil
}

func (s *FulfillmentService) GetStoreOrderItems(storeID uuid.UUID, status *models.FulfillmentStatus) ([]models.OrderItem, error) {
	query := s.db.Where("store_id = ?", storeID).
		Preload("Order").
		Order("created_at DESC")

	if status != nil {
		query = query.Where("status = ?", *status)
	}

	var items []models.OrderItem
	if err := query.Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch store order items: %w", err)
	}

	return items, nil
}
