// internal/services/product_service.go
package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/samoku/samoku-backend/internal/config"
	"github.com/samoku/samoku-backend/internal/models"
	"github.com/samoku/samoku-backend/internal/utils"
)

type ProductService struct {
	db     *gorm.DB
	config *config.Config
}

type CreateProductRequest struct {
	Name          string          `json:"name" validate:"required,min=2,max=255"`
	Description   string          `json:"description" validate:"max=5000"`
	Category      string          `json:"category" validate:"required,max=100"`
	Price         decimal.Decimal `json:"price" validate:"required"`
	StockQuantity int             `json:"stock_quantity" validate:"min=0"`
	Images        []string        `json:"images" validate:"max=10"`
	Tags          []string        `json:"tags" validate:"max=20"`
}

type UpdateProductRequest struct {
	Name        *string          `json:"name,omitempty" validate:"omitempty,min=2,max=255"`
	Description *string          `json:"description,omitempty" validate:"omitempty,max=5000"`
	Category    *string          `json:"category,omitempty" validate:"omitempty,max=100"`
	Price       *decimal.Decimal `json:"price,omitempty"`
	Images      []string         `json:"images,omitempty" validate:"omitempty,max=10"`
	Tags        []string         `json:"tags,omitempty" validate:"omitempty,max=20"`
	Status      *string          `json:"status,omitempty" validate:"omitempty,oneof=draft active inactive"`
}

type AdjustStockRequest struct {
	Delta  int    `json:"delta" validate:"required"`
	Reason string `json:"reason" validate:"max=255"`
}

func NewProductService(db *gorm.DB, cfg *config.Config) *ProductService {
	return &ProductService{db: db, config: cfg}
}

func (s *ProductService) CreateProduct(storeID uuid.UUID, req *CreateProductRequest) (*models.Product, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	if req.Price.IsNegative() || req.Price.IsZero() {
		return nil, errors.New("price must be positive")
	}

	var store models.Store
	if err := s.db.First(&store, storeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("store not found")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	if !store.Approved {
		return nil, ErrStoreNotApproved
	}

	product := &models.Product{
		StoreID:       storeID,
		Name:          req.Name,
		Description:   req.Description,
		Category:      req.Category,
		Price:         req.Price.Round(2),
		StockQuantity: req.StockQuantity,
		Images:        pq.StringArray(req.Images),
		Tags:          pq.StringArray(req.Tags),
		Status:        models.ProductStatusDraft,
	}

	if err := s.db.Create(product).Error; err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	return product, nil
}

func (s *ProductService) UpdateProduct(storeID, productID uuid.UUID, req *UpdateProductRequest) (*models.Product, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var product models.Product
	if err := s.db.Where("id = ? AND store_id = ?", productID, storeID).First(&product).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("product not found")
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
	if req.Category != nil {
		updates["category"] = *req.Category
	}
	if req.Price != nil {
		if req.Price.IsNegative() || req.Price.IsZero() {
			return nil, errors.New("price must be positive")
		}
		updates["price"] = req.Price.Round(2)
	}
	if req.Images != nil {
		updates["images"] = pq.StringArray(req.Images)
	}
	if req.Tags != nil {
		updates["tags"] = pq.StringArray(req.Tags)
	}
	if req.Status != nil {
		updates["status"] = models.ProductStatus(*req.Status)
	}

	if len(updates) > 0 {
		if err := s.db.Model(&product).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("failed to update product: %w", err)
		}
	}

	return &product, nil
}

func (s *ProductService) DeleteProduct(storeID, productID uuid.UUID) error {
	res := s.db.Where("id = ? AND store_id = ?", productID, storeID).Delete(&models.Product{})
	if res.Error != nil {
		return fmt.Errorf("failed to delete product: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return errors.New("product not found")
	}
	return nil
}

func (s *ProductService) GetProduct(productID uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := s.db.Preload("Store").First(&product, productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("product not found")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	// Best-effort view counter, outside the request's error path.
	go func() {
		s.db.Model(&models.Product{}).Where("id = ?", productID).
			UpdateColumn("view_count", gorm.Expr("view_count + 1"))
	}()

	return &product, nil
}

func (s *ProductService) SearchProducts(params utils.PaginationParams) (*utils.PaginationResult, error) {
	query := s.db.Model(&models.Product{}).
		Where("status = ?", models.ProductStatusActive)

	if params.Search != "" {
		query = query.Where(
			"to_tsvector('english', name || ' ' || description) @@ plainto_tsquery('english', ?)",
			params.Search,
		)
	}
	if params.Category != "" {
		query = query.Where("category = ?", params.Category)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count products: %w", err)
	}

	var products []models.Product
	query = utils.ApplySort(query, params, []string{"created_at", "price", "sales_count", "rating", "view_count"})
	query = utils.ApplyPagination(query, params)

	if err := query.Preload("Store").Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to search products: %w", err)
	}

	result := utils.CreatePaginationResult(products, total, params)
	return &result, nil
}

func (s *ProductService) GetStoreProducts(storeID uuid.UUID, params utils.PaginationParams) (*utils.PaginationResult, error) {
	query := s.db.Model(&models.Product{}).Where("store_id = ?", storeID)

	if params.Search != "" {
		query = query.Where("name ILIKE ?", "%"+params.Search+"%")
	}
	if params.Category != "" {
		query = query.Where("category = ?", params.Category)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count products: %w", err)
	}

	var products []models.Product
	query = utils.ApplySort(query, params, []string{"created_at", "price", "stock_quantity", "sales_count"})
	query = utils.ApplyPagination(query, params)

	if err := query.Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch products: %w", err)
	}

	result := utils.CreatePaginationResult(products, total, params)
	return &result, nil
}

// AdjustStock applies a relative stock change. Negative deltas use a
// conditional update so concurrent adjustments cannot push stock below
// zero; restocks above the low-stock threshold resolve open alerts.
func (s *ProductService) AdjustStock(storeID, productID uuid.UUID, req *AdjustStockRequest) (*models.Product, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var product models.Product
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ? AND store_id = ?", productID, storeID).First(&product).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errors.New("product not found")
			}
			return fmt.Errorf("database error: %w", err)
		}

		update := tx.Model(&models.Product{}).Where("id = ?", productID)
		if req.Delta < 0 {
			update = update.Where("stock_quantity >= ?", -req.Delta)
		}
		res := update.UpdateColumn("stock_quantity", gorm.Expr("stock_quantity + ?", req.Delta))
		if res.Error != nil {
			return fmt.Errorf("failed to adjust stock: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrInsufficientStock
		}

		if err := tx.First(&product, productID).Error; err != nil {
			return fmt.Errorf("database error: %w", err)
		}

		if product.StockQuantity > s.config.Platform.LowStockThreshold {
			if err := tx.Model(&models.InventoryAlert{}).
				Where("product_id = ? AND resolved = false", productID).
				Update("resolved", true).Error; err != nil {
				return fmt.Errorf("failed to resolve alerts: %w", err)
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return &product, nil
}

// GetStoreInventory lists a store's products with their open stock alerts.
func (s *ProductService) GetStoreInventory(storeID uuid.UUID) ([]models.Product, []models.InventoryAlert, error) {
	var products []models.Product
	if err := s.db.Where("store_id = ?", storeID).
		Order("stock_quantity ASC").
		Find(&products).Error; err != nil {
		return nil, nil, fmt.Errorf("failed to fetch inventory: %w", err)
	}

	var alerts []models.InventoryAlert
	if err := s.db.Where("store_id = ? AND resolved = false", storeID).
		Order("created_at DESC").
		Preload("Product").
		Find(&alerts).Error; err != nil {
		return nil, nil, fmt.Errorf("failed to fetch alerts: %w", err)
	}

	return products, alerts, nil
}

func (s *ProductService) GetCategories() ([]string, error) {
	var categories []string
	if err := s.db.Model(&models.Product{}).
		Where("status = ?", models.ProductStatusActive).
		Distinct("category").
		Order("category").
		Pluck("category", &categories).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch categories: %w", err)
	}
	return categories, nil
}
