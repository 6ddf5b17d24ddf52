// internal/services/commission_service.go
package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/samoku/samoku-backend/internal/models"
	"github.com/samoku/samoku-backend/internal/utils"
)

type CommissionService struct {
	db                  *gorm.DB
	notificationService *NotificationService
}

type RequestPayoutRequest struct {
	// RequestedAmount is accepted for UI compatibility but never trusted:
	// the payout amount is always recomputed from the pending transactions.
	RequestedAmount float64                `json:"requested_amount,omitempty"`
	BankDetails     map[string]interface{} `json:"bank_details" validate:"required"`
	Notes           string                 `json:"notes,omitempty"`
}

func NewCommissionService(db *gorm.DB, notificationService *NotificationService) *CommissionService {
	return &CommissionService{
		db:                  db,
		notificationService: notificationService,
	}
}

// ComputeCommission splits a sale amount at the given percentage rate:
// commission = sale * rate / 100, net = sale - commission. Both halves are
// rounded to cents, half away from zero, and always sum back to the sale.
func ComputeCommission(rate, saleAmount decimal.Decimal) (commission, net decimal.Decimal) {
	commission = saleAmount.Mul(rate).Div(decimal.NewFromInt(100)).Round(2)
	net = saleAmount.Sub(commission)
	return commission, net
}

// SumNetAmounts totals the vendor's take over a set of commission
// transactions. This is the authoritative payout amount.
func SumNetAmounts(transactions []models.CommissionTransaction) decimal.Decimal {
	total := decimal.Zero
	for _, txn := range transactions {
		total = total.Add(txn.NetAmount)
	}
	return total
}

// derivePayoutAmount recomputes the payout from the transactions it settles.
// A client-supplied figure is never trusted; a mismatch is only logged.
func derivePayoutAmount(transactions []models.CommissionTransaction, requested decimal.Decimal, storeID uuid.UUID) decimal.Decimal {
	amount := SumNetAmounts(transactions)
	if !requested.IsZero() && !requested.Equal(amount) {
		logrus.WithFields(logrus.Fields{
			"store_id":  storeID,
			"requested": requested,
			"derived":   amount,
		}).Warn("Client-supplied payout amount ignored")
	}
	return amount
}

// CreateForOrderItem records the commission transaction for one order line,
// inside the caller's checkout transaction. The rate on the line is the
// store's rate at sale time and is never recomputed.
func (s *CommissionService) CreateForOrderItem(tx *gorm.DB, item *models.OrderItem, saleAmount, netAmount decimal.Decimal) error {
	txn := &models.CommissionTransaction{
		OrderItemID:      item.ID,
		OrderID:          item.OrderID,
		StoreID:          item.StoreID,
		SaleAmount:       saleAmount,
		CommissionRate:   item.CommissionRate,
		CommissionAmount: item.CommissionAmount,
		PlatformFee:      item.CommissionAmount,
		NetAmount:        netAmount,
		Status:           models.CommissionStatusPending,
	}

	if err := tx.Create(txn).Error; err != nil {
		return fmt.Errorf("failed to create commission transaction: %w", err)
	}
	return nil
}

// MarkPaidForItem settles the line's commission when the line is delivered.
func (s *CommissionService) MarkPaidForItem(tx *gorm.DB, orderItemID uuid.UUID) error {
	now := time.Now()
	if err := tx.Model(&models.CommissionTransaction{}).
		Where("order_item_id = ? AND status IN ?", orderItemID,
			[]models.CommissionStatus{models.CommissionStatusPending, models.CommissionStatusProcessing}).
		Updates(map[string]interface{}{
			"status":  models.CommissionStatusPaid,
			"paid_at": &now,
		}).Error; err != nil {
		return fmt.Errorf("failed to mark commission paid: %w", err)
	}
	return nil
}

// PendingBalance is the sum the vendor could request right now.
func (s *CommissionService) PendingBalance(storeID uuid.UUID) (decimal.Decimal, error) {
	var transactions []models.CommissionTransaction
	if err := s.db.Where("store_id = ? AND status = ?", storeID, models.CommissionStatusPending).
		Find(&transactions).Error; err != nil {
		return decimal.Zero, fmt.Errorf("failed to fetch pending commissions: %w", err)
	}
	return SumNetAmounts(transactions), nil
}

func (s *CommissionService) GetStoreTransactions(storeID uuid.UUID, params utils.PaginationParams) ([]models.CommissionTransaction, int64, error) {
	query := s.db.Model(&models.CommissionTransaction{}).
		Where("store_id = ?", storeID).
		Preload("OrderItem")

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count commission transactions: %w", err)
	}

	allowedSortFields := []string{"created_at", "sale_amount", "net_amount", "status"}
	query = utils.ApplySort(query, params, allowedSortFields)
	query = utils.ApplyPagination(query, params)

	var transactions []models.CommissionTransaction
	if err := query.Find(&transactions).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch commission transactions: %w", err)
	}

	return transactions, total, nil
}

// RequestPayout bundles every pending commission transaction for the store
// into one payout. The amount is derived server-side from the fetched
// transactions; the transactions move to processing atomically with the
// payout row.
func (s *CommissionService) RequestPayout(storeID uuid.UUID, req *RequestPayoutRequest) (*models.Payout, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var payout *models.Payout
	var store models.Store

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&store, storeID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errors.New("store not found")
			}
			return fmt.Errorf("database error: %w", err)
		}

		var transactions []models.CommissionTransaction
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("store_id = ? AND status = ?", storeID, models.CommissionStatusPending).
			Find(&transactions).Error; err != nil {
			return fmt.Errorf("failed to fetch pending commissions: %w", err)
		}

		if len(transactions) == 0 {
			return ErrNoPendingCommissions
		}

		amount := derivePayoutAmount(transactions, decimal.NewFromFloat(req.RequestedAmount), storeID)

		now := time.Now()
		periodStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

		payout = &models.Payout{
			StoreID:     storeID,
			Amount:      amount,
			PeriodStart: periodStart,
			PeriodEnd:   now,
			Status:      models.PayoutStatusPending,
			BankDetails: models.JSONB(req.BankDetails),
			Notes:       req.Notes,
		}
		if err := tx.Create(payout).Error; err != nil {
			return fmt.Errorf("failed to create payout: %w", err)
		}

		ids := make([]uuid.UUID, len(transactions))
		for i, txn := range transactions {
			ids[i] = txn.ID
		}

		// The status predicate and row count catch a concurrent payout
		// claiming the same transactions between the fetch and this write.
		res := tx.Model(&models.CommissionTransaction{}).
			Where("id IN ? AND status = ?", ids, models.CommissionStatusPending).
			Updates(map[string]interface{}{
				"status":    models.CommissionStatusProcessing,
				"payout_id": payout.ID,
			})
		if res.Error != nil {
			return fmt.Errorf("failed to claim commission transactions: %w", res.Error)
		}
		if res.RowsAffected != int64(len(ids)) {
			return fmt.Errorf("commission transactions claimed by a concurrent payout: wanted %d, got %d", len(ids), res.RowsAffected)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.notificationService != nil {
		go s.notificationService.SendPayoutRequestedNotification(store.OwnerID, payout)
	}

	if err := s.db.Preload("Transactions").First(payout, payout.ID).Error; err != nil {
		return nil, fmt.Errorf("failed to load payout: %w", err)
	}

	return payout, nil
}

func (s *CommissionService) GetStorePayouts(storeID uuid.UUID, params utils.PaginationParams) ([]models.Payout, int64, error) {
	query := s.db.Model(&models.Payout{}).Where("store_id = ?", storeID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count payouts: %w", err)
	}

	allowedSortFields := []string{"created_at", "amount", "status"}
	query = utils.ApplySort(query, params, allowedSortFields)
	query = utils.ApplyPagination(query, params)

	var payouts []models.Payout
	if err := query.Find(&payouts).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch payouts: %w", err)
	}

	return payouts, total, nil
}

// CompletePayout is the admin action that marks a payout (and its claimed
// transactions) as paid out to the vendor.
func (s *CommissionService) CompletePayout(payoutID uuid.UUID) (*models.Payout, error) {
	var payout models.Payout

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&payout, payoutID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errors.New("payout not found")
			}
			return fmt.Errorf("database error: %w", err)
		}

		if payout.Status != models.PayoutStatusPending && payout.Status != models.PayoutStatusProcessing {
			return errors.New("payout is already settled")
		}

		now := time.Now()
		if err := tx.Model(&payout).Updates(map[string]interface{}{
			"status":       models.PayoutStatusPaid,
			"processed_at": &now,
		}).Error; err != nil {
			return fmt.Errorf("failed to update payout: %w", err)
		}

		if err := tx.Model(&models.CommissionTransaction{}).
			Where("payout_id = ? AND status = ?", payout.ID, models.CommissionStatusProcessing).
			Updates(map[string]interface{}{
				"status":  models.CommissionStatusPaid,
				"paid_at": &now,
			}).Error; err != nil {
			return fmt.Errorf("failed to settle commission transactions: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return &payout, nil
}
