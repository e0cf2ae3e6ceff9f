package service

import (
	"errors"
	"fmt"
	"math"
	"time"

	"catalog-service/internal/model"

	"gorm.io/gorm"
)

// ProductService owns product CRUD plus the filtering, pagination and
// stock-state queries.
type ProductService struct {
	db *gorm.DB
}

// NewProductService returns a ProductService bound to the given database
// handle.
func NewProductService(db *gorm.DB) *ProductService {
	return &ProductService{db: db}
}

// ProductFilters is a conjunctive filter set for FindAll; zero values mean
// "not filtered".
type ProductFilters struct {
	Search     string
	CategoryID *uint
	Status     model.ProductStatus
	MinPrice   *float64
	MaxPrice   *float64
	InStock    *bool
	IsFeatured *bool
	Brand      string
	Tags       string
}

// Pagination selects a 1-indexed page and the sort order. OrderBy accepts
// the JSON field names of the sortable columns; unknown names fall back to
// creation time.
type Pagination struct {
	Page           int
	Limit          int
	OrderBy        string
	OrderDirection string
}

// PageInfo describes the position of a result page within the full result
// set.
type PageInfo struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
	HasPrev    bool  `json:"has_prev"`
}

// ProductPage is one page of products plus its pagination envelope.
type ProductPage struct {
	Products   []*model.Product `json:"products"`
	Pagination PageInfo         `json:"pagination"`
}

// ProductStats are the aggregate inventory counters.
type ProductStats struct {
	Total      int64 `json:"total"`
	Active     int64 `json:"active"`
	OutOfStock int64 `json:"out_of_stock"`
	LowStock   int64 `json:"low_stock"`
}

// CreateProductInput carries the attributes for a new product.
type CreateProductInput struct {
	Name            string              `json:"name"`
	SKU             string              `json:"sku"`
	Description     string              `json:"description"`
	LongDescription string              `json:"long_description"`
	Price           float64             `json:"price"`
	SalePrice       *float64            `json:"sale_price"`
	Stock           int                 `json:"stock"`
	MinStock        int                 `json:"min_stock"`
	Weight          *float64            `json:"weight"`
	Length          *float64            `json:"length"`
	Width           *float64            `json:"width"`
	Height          *float64            `json:"height"`
	Color           string              `json:"color"`
	Material        string              `json:"material"`
	Brand           string              `json:"brand"`
	Model           string              `json:"model"`
	Year            *int                `json:"year"`
	Warranty        *int                `json:"warranty"`
	Tags            string              `json:"tags"`
	MainImage       string              `json:"main_image"`
	Images          string              `json:"images"`
	Video           string              `json:"video"`
	Status          model.ProductStatus `json:"status"`
	IsFeatured      bool                `json:"is_featured"`
	PublishedAt     *time.Time          `json:"published_at"`
	MetaTitle       string              `json:"meta_title"`
	MetaDescription string              `json:"meta_description"`
	MetaKeywords    string              `json:"meta_keywords"`
	CategoryID      *uint               `json:"category_id"`
}

// UpdateProductInput is a partial patch; nil fields are left unchanged.
type UpdateProductInput struct {
	Name            *string              `json:"name"`
	SKU             *string              `json:"sku"`
	Description     *string              `json:"description"`
	LongDescription *string              `json:"long_description"`
	Price           *float64             `json:"price"`
	SalePrice       *float64             `json:"sale_price"`
	Stock           *int                 `json:"stock"`
	MinStock        *int                 `json:"min_stock"`
	Weight          *float64             `json:"weight"`
	Length          *float64             `json:"length"`
	Width           *float64             `json:"width"`
	Height          *float64             `json:"height"`
	Color           *string              `json:"color"`
	Material        *string              `json:"material"`
	Brand           *string              `json:"brand"`
	Model           *string              `json:"model"`
	Year            *int                 `json:"year"`
	Warranty        *int                 `json:"warranty"`
	Tags            *string              `json:"tags"`
	MainImage       *string              `json:"main_image"`
	Images          *string              `json:"images"`
	Video           *string              `json:"video"`
	Status          *model.ProductStatus `json:"status"`
	IsFeatured      *bool                `json:"is_featured"`
	PublishedAt     *time.Time           `json:"published_at"`
	MetaTitle       *string              `json:"meta_title"`
	MetaDescription *string              `json:"meta_description"`
	MetaKeywords    *string              `json:"meta_keywords"`
	CategoryID      *uint                `json:"category_id"`
}

// Sortable columns, keyed by the JSON field names callers supply.
var productSortColumns = map[string]string{
	"createdAt": "created_at",
	"updatedAt": "updated_at",
	"name":      "name",
	"sku":       "sku",
	"price":     "price",
	"stock":     "stock",
	"viewCount": "view_count",
}

// Create persists a new product with creator and updater set to actorID.
// The SKU must not be in use.
func (s *ProductService) Create(in CreateProductInput, actorID uint) (*model.Product, error) {
	status := in.Status
	if status == "" {
		status = model.StatusDraft
	}
	product := &model.Product{
		Name:            in.Name,
		SKU:             in.SKU,
		Description:     in.Description,
		LongDescription: in.LongDescription,
		Price:           in.Price,
		SalePrice:       in.SalePrice,
		Stock:           in.Stock,
		MinStock:        in.MinStock,
		Weight:          in.Weight,
		Length:          in.Length,
		Width:           in.Width,
		Height:          in.Height,
		Color:           in.Color,
		Material:        in.Material,
		Brand:           in.Brand,
		Model:           in.Model,
		Year:            in.Year,
		Warranty:        in.Warranty,
		Tags:            in.Tags,
		MainImage:       in.MainImage,
		Images:          in.Images,
		Video:           in.Video,
		Status:          status,
		IsFeatured:      in.IsFeatured,
		PublishedAt:     in.PublishedAt,
		MetaTitle:       in.MetaTitle,
		MetaDescription: in.MetaDescription,
		MetaKeywords:    in.MetaKeywords,
		CategoryID:      in.CategoryID,
		CreatedByID:     &actorID,
		UpdatedByID:     &actorID,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&model.Product{}).Where("sku = ?", in.SKU).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return fmt.Errorf("%w: SKU %q already exists", ErrConflict, in.SKU)
		}
		return tx.Create(product).Error
	})
	if err != nil {
		return nil, err
	}
	return product, nil
}

// FindAll returns one page of products matching every supplied filter,
// with category and creator/updater display data joined in. An empty result
// set is not an error.
func (s *ProductService) FindAll(filters ProductFilters, p Pagination) (*ProductPage, error) {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = 20
	}

	// Fresh statement per execution; GORM statements are not reusable
	// across finishers.
	matching := func() *gorm.DB {
		return applyProductFilters(s.db.Model(&model.Product{}), filters)
	}

	var total int64
	if err := matching().Count(&total).Error; err != nil {
		return nil, err
	}

	column, ok := productSortColumns[p.OrderBy]
	if !ok {
		column = "created_at"
	}
	direction := "DESC"
	if p.OrderDirection == "ASC" || p.OrderDirection == "asc" {
		direction = "ASC"
	}

	products := make([]*model.Product, 0, p.Limit)
	err := matching().
		Preload("Category").Preload("CreatedBy").Preload("UpdatedBy").
		Order(column + " " + direction).
		Offset((p.Page - 1) * p.Limit).
		Limit(p.Limit).
		Find(&products).Error
	if err != nil {
		return nil, err
	}

	totalPages := int(math.Ceil(float64(total) / float64(p.Limit)))
	return &ProductPage{
		Products: products,
		Pagination: PageInfo{
			Page:       p.Page,
			Limit:      p.Limit,
			Total:      total,
			TotalPages: totalPages,
			HasNext:    p.Page < totalPages,
			HasPrev:    p.Page > 1,
		},
	}, nil
}

// FindOne returns a product with its relations resolved and, as a side
// effect of every successful read, increments the persisted view counter.
// The increment is a single atomic column update.
func (s *ProductService) FindOne(id uint) (*model.Product, error) {
	var product model.Product
	err := s.db.Preload("Category").Preload("CreatedBy").Preload("UpdatedBy").
		First(&product, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("product %d: %w", id, ErrNotFound)
		}
		return nil, err
	}

	err = s.db.Model(&model.Product{}).Where("id = ?", id).
		UpdateColumn("view_count", gorm.Expr("view_count + ?", 1)).Error
	if err != nil {
		return nil, err
	}
	product.ViewCount++
	return &product, nil
}

// Update applies a partial patch and records actorID as the updater. A SKU
// change is rejected when the new SKU belongs to a different product.
func (s *ProductService) Update(id uint, in UpdateProductInput, actorID uint) (*model.Product, error) {
	var product model.Product
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&product, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("product %d: %w", id, ErrNotFound)
			}
			return err
		}

		if in.SKU != nil && *in.SKU != product.SKU {
			var count int64
			err := tx.Model(&model.Product{}).
				Where("sku = ? AND id <> ?", *in.SKU, id).
				Count(&count).Error
			if err != nil {
				return err
			}
			if count > 0 {
				return fmt.Errorf("%w: SKU %q already exists", ErrConflict, *in.SKU)
			}
			product.SKU = *in.SKU
		}

		applyProductPatch(&product, in)
		product.UpdatedByID = &actorID
		return tx.Save(&product).Error
	})
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// Remove deletes a product.
func (s *ProductService) Remove(id uint) error {
	result := s.db.Delete(&model.Product{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("product %d: %w", id, ErrNotFound)
	}
	return nil
}

// LowStock lists products at or below their minimum threshold but not yet
// empty, scarcest first.
func (s *ProductService) LowStock(limit int) ([]*model.Product, error) {
	var products []*model.Product
	err := s.db.
		Where("stock <= min_stock AND stock > 0").
		Order("stock").
		Limit(defaultLimit(limit, 10)).
		Find(&products).Error
	return products, err
}

// OutOfStock lists empty products, most recently touched first.
func (s *ProductService) OutOfStock(limit int) ([]*model.Product, error) {
	var products []*model.Product
	err := s.db.
		Where("stock = 0").
		Order("updated_at DESC").
		Limit(defaultLimit(limit, 10)).
		Find(&products).Error
	return products, err
}

// Featured lists active featured products, most recently updated first.
func (s *ProductService) Featured(limit int) ([]*model.Product, error) {
	var products []*model.Product
	err := s.db.
		Where("is_featured = ? AND status = ?", true, model.StatusActive).
		Order("updated_at DESC").
		Limit(defaultLimit(limit, 10)).
		Find(&products).Error
	return products, err
}

// ByCategory lists active products in one category, newest first.
func (s *ProductService) ByCategory(categoryID uint, limit int) ([]*model.Product, error) {
	var products []*model.Product
	err := s.db.
		Where("category_id = ? AND status = ?", categoryID, model.StatusActive).
		Order("created_at DESC").
		Limit(defaultLimit(limit, 20)).
		Find(&products).Error
	return products, err
}

// Search lists active products matching the term in name, description or
// SKU, most viewed first.
func (s *ProductService) Search(term string, limit int) ([]*model.Product, error) {
	var products []*model.Product
	pattern := "%" + term + "%"
	err := s.db.
		Where("(LOWER(name) LIKE LOWER(?) OR LOWER(description) LIKE LOWER(?) OR LOWER(sku) LIKE LOWER(?))",
			pattern, pattern, pattern).
		Where("status = ?", model.StatusActive).
		Order("view_count DESC").
		Limit(defaultLimit(limit, 20)).
		Find(&products).Error
	return products, err
}

// Stats returns the aggregate inventory counters.
func (s *ProductService) Stats() (*ProductStats, error) {
	stats := &ProductStats{}
	if err := s.db.Model(&model.Product{}).Count(&stats.Total).Error; err != nil {
		return nil, err
	}
	if err := s.db.Model(&model.Product{}).Where("status = ?", model.StatusActive).Count(&stats.Active).Error; err != nil {
		return nil, err
	}
	if err := s.db.Model(&model.Product{}).Where("stock = 0").Count(&stats.OutOfStock).Error; err != nil {
		return nil, err
	}
	err := s.db.Model(&model.Product{}).
		Where("stock <= min_stock AND stock > 0").
		Count(&stats.LowStock).Error
	if err != nil {
		return nil, err
	}
	return stats, nil
}

func applyProductFilters(query *gorm.DB, f ProductFilters) *gorm.DB {
	if f.Search != "" {
		pattern := "%" + f.Search + "%"
		query = query.Where(
			"(LOWER(name) LIKE LOWER(?) OR LOWER(description) LIKE LOWER(?) OR LOWER(sku) LIKE LOWER(?))",
			pattern, pattern, pattern)
	}
	if f.CategoryID != nil {
		query = query.Where("category_id = ?", *f.CategoryID)
	}
	if f.Status != "" {
		query = query.Where("status = ?", f.Status)
	}
	if f.MinPrice != nil && f.MaxPrice != nil {
		query = query.Where("price BETWEEN ? AND ?", *f.MinPrice, *f.MaxPrice)
	} else if f.MinPrice != nil {
		query = query.Where("price >= ?", *f.MinPrice)
	} else if f.MaxPrice != nil {
		query = query.Where("price <= ?", *f.MaxPrice)
	}
	if f.InStock != nil {
		if *f.InStock {
			query = query.Where("stock > 0")
		} else {
			query = query.Where("stock = 0")
		}
	}
	if f.IsFeatured != nil {
		query = query.Where("is_featured = ?", *f.IsFeatured)
	}
	if f.Brand != "" {
		query = query.Where("LOWER(brand) LIKE LOWER(?)", "%"+f.Brand+"%")
	}
	if f.Tags != "" {
		query = query.Where("LOWER(tags) LIKE LOWER(?)", "%"+f.Tags+"%")
	}
	return query
}

func applyProductPatch(product *model.Product, in UpdateProductInput) {
	if in.Name != nil {
		product.Name = *in.Name
	}
	if in.Description != nil {
		product.Description = *in.Description
	}
	if in.LongDescription != nil {
		product.LongDescription = *in.LongDescription
	}
	if in.Price != nil {
		product.Price = *in.Price
	}
	if in.SalePrice != nil {
		product.SalePrice = in.SalePrice
	}
	if in.Stock != nil {
		product.Stock = *in.Stock
	}
	if in.MinStock != nil {
		product.MinStock = *in.MinStock
	}
	if in.Weight != nil {
		product.Weight = in.Weight
	}
	if in.Length != nil {
		product.Length = in.Length
	}
	if in.Width != nil {
		product.Width = in.Width
	}
	if in.Height != nil {
		product.Height = in.Height
	}
	if in.Color != nil {
		product.Color = *in.Color
	}
	if in.Material != nil {
		product.Material = *in.Material
	}
	if in.Brand != nil {
		product.Brand = *in.Brand
	}
	if in.Model != nil {
		product.Model = *in.Model
	}
	if in.Year != nil {
		product.Year = in.Year
	}
	if in.Warranty != nil {
		product.Warranty = in.Warranty
	}
	if in.Tags != nil {
		product.Tags = *in.Tags
	}
	if in.MainImage != nil {
		product.MainImage = *in.MainImage
	}
	if in.Images != nil {
		product.Images = *in.Images
	}
	if in.Video != nil {
		product.Video = *in.Video
	}
	if in.Status != nil {
		product.Status = *in.Status
	}
	if in.IsFeatured != nil {
		product.IsFeatured = *in.IsFeatured
	}
	if in.PublishedAt != nil {
		product.PublishedAt = in.PublishedAt
	}
	if in.MetaTitle != nil {
		product.MetaTitle = *in.MetaTitle
	}
	if in.MetaDescription != nil {
		product.MetaDescription = *in.MetaDescription
	}
	if in.MetaKeywords != nil {
		product.MetaKeywords = *in.MetaKeywords
	}
	if in.CategoryID != nil {
		product.CategoryID = in.CategoryID
	}
}

func defaultLimit(limit, fallback int) int {
	if limit < 1 {
		return fallback
	}
	return limit
}
