// internal/services/store_service.go
package services

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/samoku/samoku-backend/internal/models"
	"github.com/samoku/samoku-backend/internal/utils"
)

type StoreService struct {
	db                  *gorm.DB
	notificationService *NotificationService
}

type CreateStoreRequest struct {
	Name        string `json:"name" validate:"required,min=2,max=255"`
	Description string `json:"description" validate:"max=5000"`
	LogoURL     string `json:"logo_url" validate:"omitempty,url,max=512"`
}

type UpdateStoreRequest struct {
	Name        *string      `json:"name,omitempty" validate:"omitempty,min=2,max=255"`
	Description *string      `json:"description,omitempty" validate:"omitempty,max=5000"`
	LogoURL     *string      `json:"logo_url,omitempty" validate:"omitempty,url,max=512"`
	BankDetails models.JSONB `json:"bank_details,omitempty"`
}

type SetCommissionRateRequest struct {
	CommissionRate decimal.Decimal `json:"commission_rate" validate:"commission_rate"`
}

// DashboardStats is the vendor dashboard summary.
type DashboardStats struct {
	TotalProducts  int64           `json:"total_products"`
	ActiveProducts int64           `json:"active_products"`
	PendingItems   int64           `json:"pending_items"`
	TotalSales     decimal.Decimal `json:"total_sales"`
	PendingBalance decimal.Decimal `json:"pending_balance"`
	SalesThisMonth decimal.Decimal `json:"sales_this_month"`
	OpenAlerts     int64           `json:"open_alerts"`
}

var slugPattern = regexp.MustCompile(`[^a-z0-9]+`)

func NewStoreService(db *gorm.DB, notificationService *NotificationService) *StoreService {
	return &StoreService{db: db, notificationService: notificationService}
}

func slugify(name string) string {
	slug := slugPattern.ReplaceAllString(strings.ToLower(name), "-")
	return strings.Trim(slug, "-")
}

func (s *StoreService) CreateStore(ownerID uuid.UUID, req *CreateStoreRequest) (*models.Store, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var existing models.Store
	if err := s.db.Where("owner_id = ?", ownerID).First(&existing).Error; err == nil {
		return nil, errors.New("user already owns a store")
	}

	store := &models.Store{
		OwnerID:        ownerID,
		Name:           req.Name,
		Slug:           slugify(req.Name),
		Description:    req.Description,
		LogoURL:        req.LogoURL,
		CommissionRate: models.DefaultCommissionRate,
	}

	if err := s.db.Create(store).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			suffix, randErr := utils.GenerateRandomString(4)
			if randErr != nil {
				return nil, fmt.Errorf("failed to create store: %w", randErr)
			}
			store.Slug = fmt.Sprintf("%s-%s", store.Slug, strings.ToLower(suffix))
			if err := s.db.Create(store).Error; err != nil {
				return nil, fmt.Errorf("failed to create store: %w", err)
			}
		} else {
			return nil, fmt.Errorf("failed to create store: %w", err)
		}
	}

	return store, nil
}

func (s *StoreService) UpdateStore(ownerID, storeID uuid.UUID, req *UpdateStoreRequest) (*models.Store, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var store models.Store
	if err := s.db.Where("id = ? AND owner_id = ?", storeID, ownerID).First(&store).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("store not found")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	updates := make(map[string]interface{})
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.LogoURL != nil {
		updates["logo_url"] = *req.LogoURL
	}
	if req.BankDetails != nil {
		updates["bank_details"] = req.BankDetails
	}

	if len(updates) > 0 {
		if err := s.db.Model(&store).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("failed to update store: %w", err)
		}
	}

	return &store, nil
}

func (s *StoreService) GetStore(storeID uuid.UUID) (*models.Store, error) {
	var store models.Store
	if err := s.db.Preload("Owner").First(&store, storeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("store not found")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &store, nil
}

func (s *StoreService) GetStoreBySlug(slug string) (*models.Store, error) {
	var store models.Store
	if err := s.db.Where("slug = ? AND approved = true", slug).First(&store).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("store not found")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &store, nil
}

// GetStoreByOwner resolves the store a vendor account owns.
func (s *StoreService) GetStoreByOwner(ownerID uuid.UUID) (*models.Store, error) {
	var store models.Store
	if err := s.db.Where("owner_id = ?", ownerID).First(&store).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("store not found")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &store, nil
}

func (s *StoreService) ApproveStore(storeID uuid.UUID) (*models.Store, error) {
	var store models.Store
	if err := s.db.First(&store, storeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("store not found")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if store.Approved {
		return &store, nil
	}

	if err := s.db.Model(&store).Update("approved", true).Error; err != nil {
		return nil, fmt.Errorf("failed to approve store: %w", err)
	}

	go s.notificationService.SendStoreApprovedNotification(store.OwnerID, &store)

	return &store, nil
}

// SetCommissionRate is an admin operation; rate is a percentage in [0, 100].
func (s *StoreService) SetCommissionRate(storeID uuid.UUID, req *SetCommissionRateRequest) (*models.Store, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var store models.Store
	if err := s.db.First(&store, storeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("store not found")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if err := s.db.Model(&store).Update("commission_rate", req.CommissionRate).Error; err != nil {
		return nil, fmt.Errorf("failed to update commission rate: %w", err)
	}

	return &store, nil
}

func (s *StoreService) ListStores(params utils.PaginationParams, approvedOnly bool) (*utils.PaginationResult, error) {
	query := s.db.Model(&models.Store{})
	if approvedOnly {
		query = query.Where("approved = true")
	}
	if params.Search != "" {
		query = query.Where("name ILIKE ?", "%"+params.Search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count stores: %w", err)
	}

	var stores []models.Store
	query = utils.ApplySort(query, params, []string{"created_at", "name"})
	query = utils.ApplyPagination(query, params)

	if err := query.Find(&stores).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch stores: %w", err)
	}

	result := utils.CreatePaginationResult(stores, total, params)
	return &result, nil
}

// GetDashboardStats aggregates the vendor dashboard figures for a store.
func (s *StoreService) GetDashboardStats(storeID uuid.UUID) (*DashboardStats, error) {
	stats := &DashboardStats{
		TotalSales:     decimal.Zero,
		PendingBalance: decimal.Zero,
		SalesThisMonth: decimal.Zero,
	}

	s.db.Model(&models.Product{}).Where("store_id = ?", storeID).Count(&stats.TotalProducts)
	s.db.Model(&models.Product{}).Where("store_id = ? AND status = ?", storeID, models.ProductStatusActive).
		Count(&stats.ActiveProducts)
	s.db.Model(&models.OrderItem{}).Where("store_id = ? AND status = ?", storeID, models.FulfillmentStatusPending).
		Count(&stats.PendingItems)
	s.db.Model(&models.InventoryAlert{}).Where("store_id = ? AND resolved = false", storeID).
		Count(&stats.OpenAlerts)

	type sumRow struct {
		Sum decimal.Decimal
	}
	var row sumRow

	if err := s.db.Model(&models.CommissionTransaction{}).
		Select("COALESCE(SUM(sale_amount), 0) AS sum").
		Where("store_id = ? AND status <> ?", storeID, models.CommissionStatusFailed).
		Scan(&row).Error; err != nil {
		return nil, fmt.Errorf("failed to aggregate sales: %w", err)
	}
	stats.TotalSales = row.Sum

	monthStart := time.Now().UTC().Truncate(24 * time.Hour)
	monthStart = time.Date(monthStart.Year(), monthStart.Month(), 1, 0, 0, 0, 0, time.UTC)
	if err := s.db.Model(&models.CommissionTransaction{}).
		Select("COALESCE(SUM(sale_amount), 0) AS sum").
		Where("store_id = ? AND status <> ? AND created_at >= ?", storeID, models.CommissionStatusFailed, monthStart).
		Scan(&row).Error; err != nil {
		return nil, fmt.Errorf("failed to aggregate sales: %w", err)
	}
	stats.SalesThisMonth = row.Sum

	if err := s.db.Model(&models.CommissionTransaction{}).
		Select("COALESCE(SUM(net_amount), 0) AS sum").
		Where("store_id = ? AND status = ?", storeID, models.CommissionStatusPending).
		Scan(&row).Error; err != nil {
		return nil, fmt.Errorf("failed to aggregate balance: %w", err)
	}
	stats.PendingBalance = row.Sum

	return stats, nil
}
