// internal/handlers/store.go
package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/samoku/samoku-backend/internal/i18n"
	"github.com/samoku/samoku-backend/internal/models"
	"github.com/samoku/samoku-backend/internal/services"
	"github.com/samoku/samoku-backend/internal/utils"
)

type StoreHandler struct {
	storeService       *services.StoreService
	productService     *services.ProductService
	fulfillmentService *services.FulfillmentService
	commissionService  *services.CommissionService
	storageService     *services.StorageService
}

func NewStoreHandler(
	storeService *services.StoreService,
	productService *services.ProductService,
	fulfillmentService *services.FulfillmentService,
	commissionService *services.CommissionService,
	storageService *services.StorageService,
) *StoreHandler {
	return &StoreHandler{
		storeService:       storeService,
		productService:     productService,
		fulfillmentService: fulfillmentService,
		commissionService:  commissionService,
		storageService:     storageService,
	}
}

// GET /stores
func (h *StoreHandler) ListStores(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	result, err := h.storeService.ListStores(params, true)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.PaginatedResponse(c, *result)
}

// GET /stores/:slug
func (h *StoreHandler) GetStoreBySlug(c *gin.Context) {
	store, err := h.storeService.GetStoreBySlug(c.Param("slug"))
	if err != nil {
		utils.NotFoundResponse(c, "store")
		return
	}

	utils.SuccessResponse(c, gin.H{"store": store})
}

// GET /stores/:slug/products
func (h *StoreHandler) GetStoreProducts(c *gin.Context) {
	store, err := h.storeService.GetStoreBySlug(c.Param("slug"))
	if err != nil {
		utils.NotFoundResponse(c, "store")
		return
	}

	params := utils.GetPaginationParams(c)
	result, err := h.productService.GetStoreProducts(store.ID, params)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.PaginatedResponse(c, *result)
}

// POST /vendor/store
func (h *StoreHandler) CreateStore(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req services.CreateStoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	store, err := h.storeService.CreateStore(userID, &req)
	if err != nil {
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyStoreCreated),
		"store":   store,
	})
}

// GET /vendor/store
func (h *StoreHandler) GetOwnStore(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	store, err := h.storeService.GetStoreByOwner(userID)
	if err != nil {
		utils.NotFoundResponse(c, "store")
		return
	}

	utils.SuccessResponse(c, gin.H{"store": store})
}

// PUT /vendor/store
func (h *StoreHandler) UpdateStore(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	store, err := h.storeService.GetStoreByOwner(userID)
	if err != nil {
		utils.NotFoundResponse(c, "store")
		return
	}

	var req services.UpdateStoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	updated, err := h.storeService.UpdateStore(userID, store.ID, &req)
	if err != nil {
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyStoreUpdated),
		"store":   updated,
	})
}

// GET /vendor/dashboard
func (h *StoreHandler) GetDashboard(c *gin.Context) {
	store, ok := h.ownStore(c)
	if !ok {
		return
	}

	stats, err := h.storeService.GetDashboardStats(store.ID)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, gin.H{"stats": stats})
}

// GET /vendor/inventory
func (h *StoreHandler) GetInventory(c *gin.Context) {
	store, ok := h.ownStore(c)
	if !ok {
		return
	}

	products, alerts, err := h.productService.GetStoreInventory(store.ID)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, gin.H{
		"products": products,
		"alerts":   alerts,
	})
}

// GET /vendor/order-items
func (h *StoreHandler) GetOrderItems(c *gin.Context) {
	store, ok := h.ownStore(c)
	if !ok {
		return
	}

	var status *models.FulfillmentStatus
	if raw := c.Query("status"); raw != "" {
		s := models.FulfillmentStatus(raw)
		status = &s
	}

	items, err := h.fulfillmentService.GetStoreOrderItems(store.ID, status)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, gin.H{"items": items})
}

// PUT /vendor/order-items/:id/status
func (h *StoreHandler) UpdateOrderItemStatus(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	store, ok := h.ownStore(c)
	if !ok {
		return
	}

	itemID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid order item ID", nil)
		return
	}

	var req services.UpdateItemStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	order, err := h.fulfillmentService.UpdateItemStatus(itemID, &req, &store.ID)
	if err != nil {
		if errors.Is(err, services.ErrNotStoreOwner) {
			utils.ForbiddenResponse(c, "")
			return
		}
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyOrderStatusUpdated),
		"order":   order,
	})
}

// GET /vendor/commissions
func (h *StoreHandler) GetCommissions(c *gin.Context) {
	store, ok := h.ownStore(c)
	if !ok {
		return
	}

	params := utils.GetPaginationParams(c)
	transactions, total, err := h.commissionService.GetStoreTransactions(store.ID, params)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	balance, err := h.commissionService.PendingBalance(store.ID)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	result := utils.CreatePaginationResult(transactions, total, params)
	utils.SetPaginationHeaders(c, result)
	utils.SuccessResponseWithMeta(c, gin.H{
		"transactions":    transactions,
		"pending_balance": balance,
	}, gin.H{
		"pagination": gin.H{
			"page":        result.Page,
			"limit":       result.Limit,
			"total":       result.Total,
			"total_pages": result.TotalPages,
		},
	})
}

// POST /vendor/payouts
func (h *StoreHandler) RequestPayout(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	store, ok := h.ownStore(c)
	if !ok {
		return
	}

	var req services.RequestPayoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	payout, err := h.commissionService.RequestPayout(store.ID, &req)
	if err != nil {
		if errors.Is(err, services.ErrNoPendingCommissions) {
			utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyPayoutNothingToPay), nil)
			return
		}
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyPayoutRequested),
		"payout":  payout,
	})
}

// GET /vendor/payouts
func (h *StoreHandler) GetPayouts(c *gin.Context) {
	store, ok := h.ownStore(c)
	if !ok {
		return
	}

	params := utils.GetPaginationParams(c)
	payouts, total, err := h.commissionService.GetStorePayouts(store.ID, params)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.PaginatedResponse(c, utils.CreatePaginationResult(payouts, total, params))
}

// POST /vendor/store/logo
func (h *StoreHandler) UploadLogo(c *gin.Context) {
	if _, ok := h.ownStore(c); !ok {
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		utils.BadRequestResponse(c, "file is required", nil)
		return
	}
	defer file.Close()

	if err := h.storageService.ValidateImage(file); err != nil {
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	result, err := h.storageService.UploadFile(file, header, h.storageService.GetDefaultUploadOptions("stores"))
	if err != nil {
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	utils.CreatedResponse(c, gin.H{"upload": result})
}

func (h *StoreHandler) ownStore(c *gin.Context) (*models.Store, bool) {
	userID, ok := currentUserID(c)
	if !ok {
		return nil, false
	}

	store, err := h.storeService.GetStoreByOwner(userID)
	if err != nil {
		utils.NotFoundResponse(c, "store")
		return nil, false
	}

	return store, true
}
