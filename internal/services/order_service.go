// internal/services/order_service.go
package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/samoku/samoku-backend/internal/config"
	"github.com/samoku/samoku-backend/internal/models"
	"github.com/samoku/samoku-backend/internal/utils"
)

const orderNumberRetries = 3

type OrderService struct {
	db                  *gorm.DB
	cfg                 *config.Config
	commissionService   *CommissionService
	notificationService *NotificationService
}

// checkoutLine is a cart line resolved against the catalog: the owning store
// and the price in effect at checkout time are already bound.
type checkoutLine struct {
	ProductID    uuid.UUID
	StoreID      uuid.UUID
	StoreOwnerID uuid.UUID
	ProductName  string
	ProductImage string
	UnitPrice    decimal.Decimal
	Quantity     int
	Rate         decimal.Decimal
}

// storeGroup is one vendor's slice of an order, in original line order.
type storeGroup struct {
	StoreID uuid.UUID
	Lines   []checkoutLine
}

type PlaceOrderRequest struct {
	ShippingAddress map[string]interface{} `json:"shipping_address" validate:"required"`
	BillingAddress  map[string]interface{} `json:"billing_address,omitempty"`
	PaymentMethod   string                 `json:"payment_method" validate:"required"`
}

func NewOrderService(db *gorm.DB, cfg *config.Config, commissionService *CommissionService, notificationService *NotificationService) *OrderService {
	return &OrderService{
		db:                  db,
		cfg:                 cfg,
		commissionService:   commissionService,
		notificationService: notificationService,
	}
}

// money rounds to 2 decimal places, half away from zero.
func money(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// splitByStore partitions resolved lines by owning store, preserving the input
// order within each group and the first-seen order across groups. Every line
// lands in exactly one group; a line without a store fails the whole order.
func splitByStore(lines []checkoutLine) ([]storeGroup, error) {
	groups := make([]storeGroup, 0, len(lines))
	index := make(map[uuid.UUID]int, len(lines))

	for _, line := range lines {
		if line.StoreID == uuid.Nil {
			return nil, fmt.Errorf("%w: product %s", ErrStoreResolution, line.ProductID)
		}
		i, seen := index[line.StoreID]
		if !seen {
			index[line.StoreID] = len(groups)
			groups = append(groups, storeGroup{StoreID: line.StoreID})
			i = len(groups) - 1
		}
		groups[i].Lines = append(groups[i].Lines, line)
	}

	return groups, nil
}

func (g *storeGroup) subtotal() decimal.Decimal {
	total := decimal.Zero
	for _, line := range g.Lines {
		total = total.Add(line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}
	return total
}

// shippingForGroup charges the flat fee when a vendor group's subtotal is
// under the free-shipping threshold; at or above it, shipping is free.
func shippingForGroup(subtotal, threshold, flatFee decimal.Decimal) decimal.Decimal {
	if subtotal.LessThan(threshold) {
		return flatFee
	}
	return decimal.Zero
}

// PlaceOrder turns the customer's cart into a persisted order aggregate:
// totals, vendor split, per-line commission snapshots and stock decrements
// all inside one database transaction. A failure on any line rolls back the
// whole order.
func (s *OrderService) PlaceOrder(customerID uuid.UUID, req *PlaceOrderRequest) (*models.Order, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var order *models.Order
	var groups []storeGroup

	err := s.db.Transaction(func(tx *gorm.DB) error {
		lines, err := s.resolveCartLines(tx, customerID)
		if err != nil {
			return err
		}
		if len(lines) == 0 {
			return ErrEmptyCart
		}

		groups, err = splitByStore(lines)
		if err != nil {
			return err
		}

		subtotal := decimal.Zero
		for _, line := range lines {
			subtotal = subtotal.Add(line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity))))
		}
		subtotal = money(subtotal)

		tax := money(subtotal.Mul(decimal.NewFromFloat(s.cfg.Platform.TaxRate)))

		threshold := decimal.NewFromFloat(s.cfg.Platform.FreeShippingThreshold)
		flatFee := decimal.NewFromFloat(s.cfg.Platform.FlatShippingFee)
		shipping := decimal.Zero
		for i := range groups {
			shipping = shipping.Add(shippingForGroup(groups[i].subtotal(), threshold, flatFee))
		}
		shipping = money(shipping)

		order = &models.Order{
			CustomerID:      customerID,
			Subtotal:        subtotal,
			Tax:             tax,
			Shipping:        shipping,
			Total:           subtotal.Add(tax).Add(shipping),
			ShippingAddress: models.JSONB(req.ShippingAddress),
			BillingAddress:  models.JSONB(req.BillingAddress),
			PaymentMethod:   req.PaymentMethod,
			Status:          models.OrderStatusPending,
			PaymentStatus:   models.PaymentStatusPending,
		}

		if err := s.createWithOrderNumber(tx, order); err != nil {
			return err
		}

		for _, group := range groups {
			for _, line := range group.Lines {
				if err := s.persistLine(tx, order, line); err != nil {
					return err
				}
			}
		}

		// Checkout consumes the cart
		if err := tx.Where("user_id = ?", customerID).Delete(&models.CartItem{}).Error; err != nil {
			return fmt.Errorf("failed to clear cart: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	// Payment capture is simulated; the order is treated as paid once placed.
	go s.settlePayment(order.ID)
	go s.notifyVendors(order, groups)
	go s.raiseStockAlerts(groups)

	if err := s.db.Preload("Items").Preload("Items.Commission").First(order, order.ID).Error; err != nil {
		return nil, fmt.Errorf("failed to load order aggregate: %w", err)
	}

	return order, nil
}

// resolveCartLines loads the customer's cart and binds each line to its
// product snapshot and owning store.
func (s *OrderService) resolveCartLines(tx *gorm.DB, customerID uuid.UUID) ([]checkoutLine, error) {
	var items []models.CartItem
	if err := tx.Where("user_id = ?", customerID).
		Order("created_at ASC").
		Preload("Product").Preload("Product.Store").
		Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}

	lines := make([]checkoutLine, 0, len(items))
	for _, item := range items {
		product := item.Product
		if product.ID == uuid.Nil || product.StoreID == uuid.Nil {
			return nil, fmt.Errorf("%w: cart item %s", ErrStoreResolution, item.ID)
		}
		if product.Status != models.ProductStatusActive {
			return nil, fmt.Errorf("product %q is not available for purchase", product.Name)
		}

		lines = append(lines, checkoutLine{
			ProductID:    product.ID,
			StoreID:      product.StoreID,
			StoreOwnerID: product.Store.OwnerID,
			ProductName:  product.Name,
			ProductImage: product.FirstImage(),
			UnitPrice:    product.Price,
			Quantity:     item.Quantity,
			Rate:         product.Store.EffectiveCommissionRate(),
		})
	}

	return lines, nil
}

// createWithOrderNumber persists the order, regenerating the order number on
// a unique-key collision.
func (s *OrderService) createWithOrderNumber(tx *gorm.DB, order *models.Order) error {
	for attempt := 0; attempt < orderNumberRetries; attempt++ {
		number, err := utils.GenerateOrderNumber(s.cfg.Platform.OrderNumberPrefix)
		if err != nil {
			return fmt.Errorf("failed to generate order number: %w", err)
		}
		order.OrderNumber = number

		err = tx.Create(order).Error
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("failed to create order: %w", err)
		}
	}
	return fmt.Errorf("failed to create order: order number collisions exhausted retries")
}

// persistLine writes one order line, its commission transaction, and the
// conditional stock decrement. Zero affected rows on the decrement means a
// concurrent checkout won the remaining stock.
func (s *OrderService) persistLine(tx *gorm.DB, order *models.Order, line checkoutLine) error {
	saleAmount := money(line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity))))
	commissionAmount, netAmount := ComputeCommission(line.Rate, saleAmount)

	item := &models.OrderItem{
		OrderID:          order.ID,
		ProductID:        line.ProductID,
		StoreID:          line.StoreID,
		ProductName:      line.ProductName,
		ProductImage:     line.ProductImage,
		UnitPrice:        line.UnitPrice,
		Quantity:         line.Quantity,
		Status:           models.FulfillmentStatusPending,
		CommissionRate:   line.Rate,
		CommissionAmount: commissionAmount,
	}
	if err := tx.Create(item).Error; err != nil {
		return fmt.Errorf("failed to create order item: %w", err)
	}

	if err := s.commissionService.CreateForOrderItem(tx, item, saleAmount, netAmount); err != nil {
		return err
	}

	res := tx.Model(&models.Product{}).
		Where("id = ? AND stock_quantity >= ?", line.ProductID, line.Quantity).
		UpdateColumns(map[string]interface{}{
			"stock_quantity": gorm.Expr("stock_quantity - ?", line.Quantity),
			"sales_count":    gorm.Expr("sales_count + ?", line.Quantity),
		})
	if res.Error != nil {
		return fmt.Errorf("failed to update inventory: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: %s", ErrInsufficientStock, line.ProductName)
	}

	return nil
}

// settlePayment simulates the payment capture the platform does not integrate.
func (s *OrderService) settlePayment(orderID uuid.UUID) {
	if err := s.db.Model(&models.Order{}).
		Where("id = ? AND payment_status = ?", orderID, models.PaymentStatusPending).
		Update("payment_status", models.PaymentStatusPaid).Error; err != nil {
		logrus.WithError(err).WithField("order_id", orderID).Error("Failed to settle simulated payment")
		return
	}

	if s.notificationService != nil {
		var order models.Order
		if err := s.db.First(&order, orderID).Error; err == nil {
			s.notificationService.SendOrderConfirmationNotification(&order)
		}
	}
}

func (s *OrderService) notifyVendors(order *models.Order, groups []storeGroup) {
	if s.notificationService == nil {
		return
	}
	for _, group := range groups {
		if len(group.Lines) == 0 {
			continue
		}
		s.notificationService.SendNewOrderNotification(group.Lines[0].StoreOwnerID, order, group.StoreID, len(group.Lines))
	}
}

// raiseStockAlerts checks the sold products against the low-stock threshold.
// Best effort: failures are logged, never surfaced to the customer.
func (s *OrderService) raiseStockAlerts(groups []storeGroup) {
	threshold := s.cfg.Platform.LowStockThreshold
	for _, group := range groups {
		for _, line := range group.Lines {
			var product models.Product
			if err := s.db.First(&product, line.ProductID).Error; err != nil {
				logrus.WithError(err).WithField("product_id", line.ProductID).Warn("Stock alert check failed")
				continue
			}
			if product.StockQuantity > threshold {
				continue
			}

			var open int64
			if err := s.db.Model(&models.InventoryAlert{}).
				Where("product_id = ? AND resolved = false", product.ID).
				Count(&open).Error; err != nil {
				logrus.WithError(err).WithField("product_id", product.ID).Warn("Stock alert check failed")
				continue
			}
			if open > 0 {
				continue
			}

			alertType := models.AlertTypeLowStock
			if product.StockQuantity == 0 {
				alertType = models.AlertTypeOutOfStock
			}

			alert := &models.InventoryAlert{
				ProductID: product.ID,
				StoreID:   product.StoreID,
				AlertType: alertType,
				Threshold: threshold,
			}
			if err := s.db.Create(alert).Error; err != nil {
				logrus.WithError(err).WithField("product_id", product.ID).Warn("Failed to create inventory alert")
				continue
			}

			if s.notificationService != nil {
				s.notificationService.SendLowStockNotification(line.StoreOwnerID, &product)
			}
		}
	}
}

func (s *OrderService) GetOrder(id uuid.UUID, customerID *uuid.UUID) (*models.Order, error) {
	var order models.Order
	query := s.db.Preload("Items").Preload("Items.Commission").Preload("Customer")

	if err := query.First(&order, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("order not found")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if customerID != nil && order.CustomerID != *customerID {
		return nil, errors.New("order not found")
	}

	return &order, nil
}

func (s *OrderService) GetCustomerOrders(customerID uuid.UUID, params utils.PaginationParams) ([]models.Order, int64, error) {
	query := s.db.Model(&models.Order{}).Where("customer_id = ?", customerID).Preload("Items")

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count orders: %w", err)
	}

	allowedSortFields := []string{"created_at", "total", "status"}
	query = utils.ApplySort(query, params, allowedSortFields)
	query = utils.ApplyPagination(query, params)

	var orders []models.Order
	if err := query.Find(&orders).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch orders: %w", err)
	}

	return orders, total, nil
}

// CancelOrder cancels a pending order and restores the reserved stock.
func (s *OrderService) CancelOrder(id uuid.UUID, customerID uuid.UUID) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var order models.Order
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Preload("Items").First(&order, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errors.New("order not found")
			}
			return fmt.Errorf("database error: %w", err)
		}

		if order.CustomerID != customerID {
			return errors.New("order not found")
		}
		if order.Status != models.OrderStatusPending {
			return errors.New("only pending orders can be cancelled")
		}

		for _, item := range order.Items {
			if err := tx.Model(&models.Product{}).
				Where("id = ?", item.ProductID).
				UpdateColumns(map[string]interface{}{
					"stock_quantity": gorm.Expr("stock_quantity + ?", item.Quantity),
					"sales_count":    gorm.Expr("sales_count - ?", item.Quantity),
				}).Error; err != nil {
				return fmt.Errorf("failed to restore stock: %w", err)
			}
		}

		if err := tx.Model(&models.CommissionTransaction{}).
			Where("order_id = ? AND status = ?", order.ID, models.CommissionStatusPending).
			Update("status", models.CommissionStatusFailed).Error; err != nil {
			return fmt.Errorf("failed to void commissions: %w", err)
		}

		updates := map[string]interface{}{"status": models.OrderStatusCancelled}
		if order.PaymentStatus == models.PaymentStatusPaid {
			updates["payment_status"] = models.PaymentStatusRefunded
		}
		if err := tx.Model(&order).Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to cancel order: %w", err)
		}

		return nil
	})
}
