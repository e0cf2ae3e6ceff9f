package model

import (
	"math"
	"time"
)

// ProductStatus is the publication state of a product.
type ProductStatus string

const (
	StatusActive   ProductStatus = "active"
	StatusInactive ProductStatus = "inactive"
	StatusDraft    ProductStatus = "draft"
)

// Product represents an item in the catalog. A product optionally belongs to
// one category and records which user created and last updated it.
type Product struct {
	ID              uint          `json:"id" gorm:"primarykey"`
	Name            string        `json:"name" gorm:"type:varchar(100);not null"`
	SKU             string        `json:"sku" gorm:"type:varchar(20);uniqueIndex;not null"`
	Description     string        `json:"description,omitempty" gorm:"type:text"`
	LongDescription string        `json:"long_description,omitempty" gorm:"type:text"`
	Price           float64       `json:"price" gorm:"not null"`
	SalePrice       *float64      `json:"sale_price,omitempty"`
	Stock           int           `json:"stock" gorm:"default:0"`
	MinStock        int           `json:"min_stock" gorm:"default:0"`
	Weight          *float64      `json:"weight,omitempty"`
	Length          *float64      `json:"length,omitempty"`
	Width           *float64      `json:"width,omitempty"`
	Height          *float64      `json:"height,omitempty"`
	Color           string        `json:"color,omitempty" gorm:"type:varchar(7)"`
	Material        string        `json:"material,omitempty" gorm:"type:varchar(50)"`
	Brand           string        `json:"brand,omitempty" gorm:"type:varchar(50)"`
	Model           string        `json:"model,omitempty" gorm:"type:varchar(50)"`
	Year            *int          `json:"year,omitempty"`
	Warranty        *int          `json:"warranty,omitempty"`
	Tags            string        `json:"tags,omitempty" gorm:"type:text"`
	MainImage       string        `json:"main_image,omitempty" gorm:"type:varchar(255)"`
	Images          string        `json:"images,omitempty" gorm:"type:text"`
	Video           string        `json:"video,omitempty" gorm:"type:varchar(255)"`
	Status          ProductStatus `json:"status" gorm:"type:varchar(20);default:'draft';index"`
	IsFeatured      bool          `json:"is_featured" gorm:"default:false"`
	PublishedAt     *time.Time    `json:"published_at,omitempty"`
	MetaTitle       string        `json:"meta_title,omitempty" gorm:"type:varchar(100)"`
	MetaDescription string        `json:"meta_description,omitempty" gorm:"type:text"`
	MetaKeywords    string        `json:"meta_keywords,omitempty" gorm:"type:text"`
	ViewCount       int           `json:"view_count" gorm:"default:0"`
	CategoryID      *uint         `json:"category_id" gorm:"index"`
	Category        *Category     `json:"category,omitempty" gorm:"foreignKey:CategoryID"`
	CreatedByID     *uint         `json:"created_by_id"`
	CreatedBy       *User         `json:"created_by,omitempty" gorm:"foreignKey:CreatedByID"`
	UpdatedByID     *uint         `json:"updated_by_id"`
	UpdatedBy       *User         `json:"updated_by,omitempty" gorm:"foreignKey:UpdatedByID"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
}

// IsInStock reports whether any units are available.
func (p *Product) IsInStock() bool {
	return p.Stock > 0
}

// IsLowStock reports whether the stock level is at or below the product's
// minimum threshold.
func (p *Product) IsLowStock() bool {
	return p.Stock <= p.MinStock
}

// IsOnSale reports whether a sale price is set below the regular price.
func (p *Product) IsOnSale() bool {
	return p.SalePrice != nil && *p.SalePrice < p.Price
}

// CurrentPrice returns the sale price while the product is on sale,
// otherwise the regular price.
func (p *Product) CurrentPrice() float64 {
	if p.IsOnSale() {
		return *p.SalePrice
	}
	return p.Price
}

// DiscountPercentage returns the rounded discount relative to the regular
// price, or 0 when the product is not on sale.
func (p *Product) DiscountPercentage() int {
	if !p.IsOnSale() || p.Price <= 0 {
		return 0
	}
	return int(math.Round((p.Price - *p.SalePrice) / p.Price * 100))
}
