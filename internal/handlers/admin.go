// internal/handlers/admin.go
package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/samoku/samoku-backend/internal/i18n"
	"github.com/samoku/samoku-backend/internal/models"
	"github.com/samoku/samoku-backend/internal/services"
	"github.com/samoku/samoku-backend/internal/utils"
)

type AdminHandler struct {
	adminService      *services.AdminService
	storeService      *services.StoreService
	commissionService *services.CommissionService
	dropshipService   *services.DropshipService
}

func NewAdminHandler(
	adminService *services.AdminService,
	storeService *services.StoreService,
	commissionService *services.CommissionService,
	dropshipService *services.DropshipService,
) *AdminHandler {
	return &AdminHandler{
		adminService:      adminService,
		storeService:      storeService,
		commissionService: commissionService,
		dropshipService:   dropshipService,
	}
}

// GET /admin/stats
func (h *AdminHandler) GetStats(c *gin.Context) {
	stats, err := h.adminService.GetPlatformStats()
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, gin.H{"stats": stats})
}

// GET /admin/orders
func (h *AdminHandler) ListOrders(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	result, err := h.adminService.ListOrders(params)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.PaginatedResponse(c, *result)
}

// GET /admin/users
func (h *AdminHandler) ListUsers(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	var userType *models.UserType
	if raw := c.Query("user_type"); raw != "" {
		t := models.UserType(raw)
		userType = &t
	}

	result, err := h.adminService.ListUsers(params, userType)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.PaginatedResponse(c, *result)
}

// PUT /admin/users/:id/status
func (h *AdminHandler) SetUserStatus(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid user ID", nil)
		return
	}

	var req struct {
		Status string `json:"status" validate:"required,oneof=active suspended banned"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	user, err := h.adminService.SetUserStatus(userID, models.UserStatus(req.Status))
	if err != nil {
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	utils.SuccessResponse(c, gin.H{"user": user})
}

// GET /admin/stores
func (h *AdminHandler) ListStores(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	result, err := h.storeService.ListStores(params, false)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.PaginatedResponse(c, *result)
}

// POST /admin/stores/:id/approve
func (h *AdminHandler) ApproveStore(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	storeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid store ID", nil)
		return
	}

	store, err := h.storeService.ApproveStore(storeID)
	if err != nil {
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyStoreApproved),
		"store":   store,
	})
}

// PUT /admin/stores/:id/commission-rate
func (h *AdminHandler) SetCommissionRate(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	storeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid store ID", nil)
		return
	}

	var req services.SetCommissionRateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	store, err := h.storeService.SetCommissionRate(storeID, &req)
	if err != nil {
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	utils.SuccessResponse(c, gin.H{"store": store})
}

// GET /admin/payouts
func (h *AdminHandler) ListPayouts(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	var status *models.PayoutStatus
	if raw := c.Query("status"); raw != "" {
		s := models.PayoutStatus(raw)
		status = &s
	}

	result, err := h.adminService.ListPayouts(params, status)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.PaginatedResponse(c, *result)
}

// POST /admin/payouts/:id/complete
func (h *AdminHandler) CompletePayout(c *gin.Context) {
	payoutID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid payout ID", nil)
		return
	}

	payout, err := h.commissionService.CompletePayout(payoutID)
	if err != nil {
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	utils.SuccessResponse(c, gin.H{"payout": payout})
}

// POST /admin/dropship/import
func (h *AdminHandler) ImportDropshipProducts(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	var req struct {
		StoreID uuid.UUID                      `json:"store_id" validate:"required"`
		Feed    []services.ProductUpdatedEvent `json:"feed" validate:"required,min=1"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	imported, err := h.dropshipService.ImportProducts(req.StoreID, req.Feed)
	if err != nil {
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	utils.SuccessResponse(c, gin.H{"imported": imported})
}

// GET /admin/dropship/logs
func (h *AdminHandler) GetDropshipLogs(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	failedOnly := c.Query("failed") == "true"

	logs, err := h.dropshipService.GetSyncLogs(limit, failedOnly)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, gin.H{"logs": logs})
}

// GET /admin/settings
func (h *AdminHandler) GetSettings(c *gin.Context) {
	settings, err := h.adminService.GetSettings(c.Query("category"))
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, gin.H{"settings": settings})
}

// PUT /admin/settings/:category/:key
func (h *AdminHandler) UpdateSetting(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	adminID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req services.UpdateSettingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	setting, err := h.adminService.UpdateSetting(adminID, c.Param("category"), c.Param("key"), &req)
	if err != nil {
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	utils.SuccessResponse(c, gin.H{"setting": setting})
}

// GET /admin/audit-logs
func (h *AdminHandler) GetAuditLogs(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	result, err := h.adminService.GetAuditLogs(params)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.PaginatedResponse(c, *result)
}
