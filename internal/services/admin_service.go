// internal/services/admin_service.go
package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/samoku/samoku-backend/internal/models"
	"github.com/samoku/samoku-backend/internal/utils"
)

type AdminService struct {
	db *gorm.DB
}

// PlatformStats is the admin dashboard summary.
type PlatformStats struct {
	TotalUsers       int64           `json:"total_users"`
	TotalVendors     int64           `json:"total_vendors"`
	TotalStores      int64           `json:"total_stores"`
	PendingStores    int64           `json:"pending_stores"`
	TotalProducts    int64           `json:"total_products"`
	TotalOrders      int64           `json:"total_orders"`
	GrossSales       decimal.Decimal `json:"gross_sales"`
	PlatformRevenue  decimal.Decimal `json:"platform_revenue"`
	PendingPayouts   int64           `json:"pending_payouts"`
	FailedSyncEvents int64           `json:"failed_sync_events"`
}

type UpdateSettingRequest struct {
	Value       models.JSONB `json:"value" validate:"required"`
	Description string       `json:"description" validate:"max=500"`
}

func NewAdminService(db *gorm.DB) *AdminService {
	return &AdminService{db: db}
}

func (s *AdminService) GetPlatformStats() (*PlatformStats, error) {
	stats := &PlatformStats{
		GrossSales:      decimal.Zero,
		PlatformRevenue: decimal.Zero,
	}

	s.db.Model(&models.User{}).Count(&stats.TotalUsers)
	s.db.Model(&models.User{}).Where("user_type = ?", models.UserTypeVendor).Count(&stats.TotalVendors)
	s.db.Model(&models.Store{}).Count(&stats.TotalStores)
	s.db.Model(&models.Store{}).Where("approved = false").Count(&stats.PendingStores)
	s.db.Model(&models.Product{}).Count(&stats.TotalProducts)
	s.db.Model(&models.Order{}).Where("status <> ?", models.OrderStatusCancelled).Count(&stats.TotalOrders)
	s.db.Model(&models.Payout{}).Where("status = ?", models.PayoutStatusPending).Count(&stats.PendingPayouts)
	s.db.Model(&models.DropshipSyncLog{}).Where("success = false").Count(&stats.FailedSyncEvents)

	type sumRow struct {
		Sum decimal.Decimal
	}
	var row sumRow

	if err := s.db.Model(&models.Order{}).
		Select("COALESCE(SUM(total), 0) AS sum").
		Where("status <> ?", models.OrderStatusCancelled).
		Scan(&row).Error; err != nil {
		return nil, fmt.Errorf("failed to aggregate sales: %w", err)
	}
	stats.GrossSales = row.Sum

	if err := s.db.Model(&models.CommissionTransaction{}).
		Select("COALESCE(SUM(commission_amount), 0) AS sum").
		Where("status <> ?", models.CommissionStatusFailed).
		Scan(&row).Error; err != nil {
		return nil, fmt.Errorf("failed to aggregate revenue: %w", err)
	}
	stats.PlatformRevenue = row.Sum

	return stats, nil
}

func (s *AdminService) ListOrders(params utils.PaginationParams) (*utils.PaginationResult, error) {
	query := s.db.Model(&models.Order{})

	if params.Search != "" {
		query = query.Where("order_number ILIKE ?", "%"+params.Search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count orders: %w", err)
	}

	var orders []models.Order
	query = utils.ApplySort(query, params, []string{"created_at", "total", "status"})
	query = utils.ApplyPagination(query, params)

	if err := query.Preload("Customer").Preload("Items").Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch orders: %w", err)
	}

	result := utils.CreatePaginationResult(orders, total, params)
	return &result, nil
}

func (s *AdminService) ListPayouts(params utils.PaginationParams, status *models.PayoutStatus) (*utils.PaginationResult, error) {
	query := s.db.Model(&models.Payout{})
	if status != nil {
		query = query.Where("status = ?", *status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count payouts: %w", err)
	}

	var payouts []models.Payout
	query = utils.ApplySort(query, params, []string{"created_at", "amount"})
	query = utils.ApplyPagination(query, params)

	if err := query.Preload("Store").Find(&payouts).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch payouts: %w", err)
	}

	result := utils.CreatePaginationResult(payouts, total, params)
	return &result, nil
}

func (s *AdminService) ListUsers(params utils.PaginationParams, userType *models.UserType) (*utils.PaginationResult, error) {
	query := s.db.Model(&models.User{})
	if userType != nil {
		query = query.Where("user_type = ?", *userType)
	}
	if params.Search != "" {
		query = query.Where("username ILIKE ? OR email ILIKE ?", "%"+params.Search+"%", "%"+params.Search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count users: %w", err)
	}

	var users []models.User
	query = utils.ApplySort(query, params, []string{"created_at", "username"})
	query = utils.ApplyPagination(query, params)

	if err := query.Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch users: %w", err)
	}

	result := utils.CreatePaginationResult(users, total, params)
	return &result, nil
}

func (s *AdminService) SetUserStatus(userID uuid.UUID, status models.UserStatus) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("user not found")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if user.UserType == models.UserTypeAdmin {
		return nil, errors.New("cannot change admin account status")
	}

	if err := s.db.Model(&user).Update("status", status).Error; err != nil {
		return nil, fmt.Errorf("failed to update user status: %w", err)
	}

	return &user, nil
}

// Settings

func (s *AdminService) GetSettings(category string) ([]models.PlatformSettings, error) {
	query := s.db.Order("category, key")
	if category != "" {
		query = query.Where("category = ?", category)
	}

	var settings []models.PlatformSettings
	if err := query.Find(&settings).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch settings: %w", err)
	}
	return settings, nil
}

func (s *AdminService) UpdateSetting(adminID uuid.UUID, category, key string, req *UpdateSettingRequest) (*models.PlatformSettings, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var setting models.PlatformSettings
	if err := s.db.Where("category = ? AND key = ?", category, key).First(&setting).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("setting not found")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	updates := map[string]interface{}{
		"value":      req.Value,
		"updated_by": adminID,
	}
	if req.Description != "" {
		updates["description"] = req.Description
	}

	if err := s.db.Model(&setting).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update setting: %w", err)
	}

	return &setting, nil
}

// Audit log

func (s *AdminService) RecordAudit(entry *models.AuditLog) error {
	return s.db.Create(entry).Error
}

func (s *AdminService) GetAuditLogs(params utils.PaginationParams) (*utils.PaginationResult, error) {
	query := s.db.Model(&models.AuditLog{})

	if params.Search != "" {
		query = query.Where("action ILIKE ? OR resource_type ILIKE ?", "%"+params.Search+"%", "%"+params.Search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count audit logs: %w", err)
	}

	var logs []models.AuditLog
	query = utils.ApplySort(query, params, []string{"created_at", "action"})
	query = utils.ApplyPagination(query, params)

	if err := query.Preload("User").Find(&logs).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch audit logs: %w", err)
	}

	result := utils.CreatePaginationResult(logs, total, params)
	return &result, nil
}
