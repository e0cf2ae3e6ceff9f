package service

import (
	"time"

	"catalog-service/internal/model"

	"gorm.io/gorm"
)

// ReportService serves the read-only aggregate rollups over products,
// categories and users. Every query is a single parameterized round trip;
// nothing here mutates state.
type ReportService struct {
	db        *gorm.DB
	startedAt time.Time
}

// NewReportService returns a ReportService bound to the given database
// handle. Uptime in the health report is measured from construction.
func NewReportService(db *gorm.DB) *ReportService {
	return &ReportService{db: db, startedAt: time.Now()}
}

// DateRange is an inclusive creation/login timestamp filter.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// ProductStatsReport breaks the product set down by status and stock state.
type ProductStatsReport struct {
	TotalProducts      int64   `json:"total_products"`
	ActiveProducts     int64   `json:"active_products"`
	InactiveProducts   int64   `json:"inactive_products"`
	DraftProducts      int64   `json:"draft_products"`
	OutOfStockProducts int64   `json:"out_of_stock_products"`
	LowStockProducts   int64   `json:"low_stock_products"`
	TotalValue         float64 `json:"total_value"`
	AveragePrice       float64 `json:"average_price"`
}

// CategoryStatsRow aggregates one category's inventory. CategoryID is nil
// for products without a category.
type CategoryStatsRow struct {
	CategoryID   *uint   `json:"category_id"`
	CategoryName string  `json:"category_name"`
	ProductCount int64   `json:"product_count"`
	TotalStock   int64   `json:"total_stock"`
	TotalValue   float64 `json:"total_value"`
}

// TopProductRow is one entry of the most-viewed listing.
type TopProductRow struct {
	ID           uint   `json:"id"`
	Name         string `json:"name"`
	ViewCount    int    `json:"view_count"`
	CategoryName string `json:"category_name"`
}

// LowStockRow is one entry of the low-stock listing.
type LowStockRow struct {
	ID           uint   `json:"id"`
	Name         string `json:"name"`
	SKU          string `json:"sku"`
	CurrentStock int    `json:"current_stock"`
	MinStock     int    `json:"min_stock"`
	CategoryName string `json:"category_name"`
}

// OutOfStockRow is one entry of the out-of-stock listing.
type OutOfStockRow struct {
	ID            uint      `json:"id"`
	Name          string    `json:"name"`
	SKU           string    `json:"sku"`
	LastStockDate time.Time `json:"last_stock_date"`
	CategoryName  string    `json:"category_name"`
}

// GrowthRow is the number of products created on one day.
type GrowthRow struct {
	Date  string `json:"date"`
	Count int64  `json:"count"`
}

// InventoryValueRow is one category's share of the inventory value.
type InventoryValueRow struct {
	CategoryName string  `json:"category_name"`
	TotalValue   float64 `json:"total_value"`
	ProductCount int64   `json:"product_count"`
}

// UserActivityRow pairs a user's last login with their authoring counts.
type UserActivityRow struct {
	ID              uint       `json:"id"`
	Name            string     `json:"name"`
	Email           string     `json:"email"`
	LastLoginAt     *time.Time `json:"last_login_at"`
	ProductsCreated int64      `json:"products_created"`
	ProductsUpdated int64      `json:"products_updated"`
}

// SystemHealthReport summarizes entity counts and process state.
type SystemHealthReport struct {
	DatabaseStatus  string  `json:"database_status"`
	TotalProducts   int64   `json:"total_products"`
	TotalCategories int64   `json:"total_categories"`
	TotalUsers      int64   `json:"total_users"`
	ActiveUsers     int64   `json:"active_users"`
	SystemUptime    float64 `json:"system_uptime"`
}

// ProductStats aggregates product counters, optionally restricted to
// products created within the range.
func (s *ReportService) ProductStats(r *DateRange) (*ProductStatsReport, error) {
	base := func() *gorm.DB {
		q := s.db.Model(&model.Product{})
		if r != nil {
			q = q.Where("created_at BETWEEN ? AND ?", r.Start, r.End)
		}
		return q
	}

	report := &ProductStatsReport{}
	if err := base().Count(&report.TotalProducts).Error; err != nil {
		return nil, err
	}
	if err := base().Where("status = ?", model.StatusActive).Count(&report.ActiveProducts).Error; err != nil {
		return nil, err
	}
	if err := base().Where("status = ?", model.StatusInactive).Count(&report.InactiveProducts).Error; err != nil {
		return nil, err
	}
	if err := base().Where("status = ?", model.StatusDraft).Count(&report.DraftProducts).Error; err != nil {
		return nil, err
	}
	if err := base().Where("stock = 0").Count(&report.OutOfStockProducts).Error; err != nil {
		return nil, err
	}
	if err := base().Where("stock <= min_stock AND stock > 0").Count(&report.LowStockProducts).Error; err != nil {
		return nil, err
	}
	if err := base().Select("COALESCE(SUM(price * stock), 0)").Scan(&report.TotalValue).Error; err != nil {
		return nil, err
	}
	if err := base().Select("COALESCE(AVG(price), 0)").Scan(&report.AveragePrice).Error; err != nil {
		return nil, err
	}
	return report, nil
}

// CategoryStats returns per-category product count, stock and value.
func (s *ReportService) CategoryStats() ([]CategoryStatsRow, error) {
	rows := make([]CategoryStatsRow, 0)
	err := s.db.Model(&model.Product{}).
		Select(`categories.id AS category_id,
			categories.name AS category_name,
			COUNT(products.id) AS product_count,
			COALESCE(SUM(products.stock), 0) AS total_stock,
			COALESCE(SUM(products.price * products.stock), 0) AS total_value`).
		Joins("LEFT JOIN categories ON categories.id = products.category_id").
		Group("categories.id, categories.name").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// TopProducts lists the most-viewed products with their category name,
// optionally restricted to products created within the range.
func (s *ReportService) TopProducts(limit int, r *DateRange) ([]TopProductRow, error) {
	q := s.db.Model(&model.Product{}).
		Select(`products.id, products.name, products.view_count,
			categories.name AS category_name`).
		Joins("LEFT JOIN categories ON categories.id = products.category_id")
	if r != nil {
		q = q.Where("products.created_at BETWEEN ? AND ?", r.Start, r.End)
	}
	rows := make([]TopProductRow, 0)
	err := q.Order("products.view_count DESC").
		Limit(defaultLimit(limit, 10)).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// LowStockReport lists low-stock products with category names, scarcest
// first.
func (s *ReportService) LowStockReport(limit int) ([]LowStockRow, error) {
	rows := make([]LowStockRow, 0)
	err := s.db.Model(&model.Product{}).
		Select(`products.id, products.name, products.sku,
			products.stock AS current_stock, products.min_stock,
			categories.name AS category_name`).
		Joins("LEFT JOIN categories ON categories.id = products.category_id").
		Where("products.stock <= products.min_stock AND products.stock > 0").
		Order("products.stock").
		Limit(defaultLimit(limit, 20)).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// OutOfStockReport lists empty products with category names, most recently
// touched first.
func (s *ReportService) OutOfStockReport(limit int) ([]OutOfStockRow, error) {
	rows := make([]OutOfStockRow, 0)
	err := s.db.Model(&model.Product{}).
		Select(`products.id, products.name, products.sku,
			products.updated_at AS last_stock_date,
			categories.name AS category_name`).
		Joins("LEFT JOIN categories ON categories.id = products.category_id").
		Where("products.stock = 0").
		Order("products.updated_at DESC").
		Limit(defaultLimit(limit, 20)).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// Growth counts products created per day within the mandatory range,
// ascending by date.
func (s *ReportService) Growth(r DateRange) ([]GrowthRow, error) {
	rows := make([]GrowthRow, 0)
	err := s.db.Model(&model.Product{}).
		Select("CAST(DATE(created_at) AS TEXT) AS date, COUNT(id) AS count").
		Where("created_at BETWEEN ? AND ?", r.Start, r.End).
		Group("DATE(created_at)").
		Order("date").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// InventoryValue returns per-category inventory value, most valuable first.
func (s *ReportService) InventoryValue() ([]InventoryValueRow, error) {
	rows := make([]InventoryValueRow, 0)
	err := s.db.Model(&model.Product{}).
		Select(`categories.name AS category_name,
			COALESCE(SUM(products.price * products.stock), 0) AS total_value,
			COUNT(products.id) AS product_count`).
		Joins("LEFT JOIN categories ON categories.id = products.category_id").
		Group("categories.id, categories.name").
		Order("total_value DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// UserActivity lists users by recency of login with the number of products
// they created and updated, optionally restricted to logins within the
// range.
func (s *ReportService) UserActivity(r *DateRange) ([]UserActivityRow, error) {
	q := s.db.Model(&model.User{})
	if r != nil {
		q = q.Where("last_login_at BETWEEN ? AND ?", r.Start, r.End)
	}
	var users []model.User
	if err := q.Order("last_login_at DESC").Find(&users).Error; err != nil {
		return nil, err
	}

	rows := make([]UserActivityRow, 0, len(users))
	for _, u := range users {
		row := UserActivityRow{
			ID:          u.ID,
			Name:        u.Name,
			Email:       u.Email,
			LastLoginAt: u.LastLoginAt,
		}
		if err := s.db.Model(&model.Product{}).Where("created_by_id = ?", u.ID).Count(&row.ProductsCreated).Error; err != nil {
			return nil, err
		}
		if err := s.db.Model(&model.Product{}).Where("updated_by_id = ?", u.ID).Count(&row.ProductsUpdated).Error; err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// SystemHealth reports entity counts, database reachability and process
// uptime in seconds.
func (s *ReportService) SystemHealth() (*SystemHealthReport, error) {
	report := &SystemHealthReport{
		DatabaseStatus: "ok",
		SystemUptime:   time.Since(s.startedAt).Seconds(),
	}
	if sqlDB, err := s.db.DB(); err != nil || sqlDB.Ping() != nil {
		report.DatabaseStatus = "unreachable"
	}
	if err := s.db.Model(&model.Product{}).Count(&report.TotalProducts).Error; err != nil {
		return nil, err
	}
	if err := s.db.Model(&model.Category{}).Count(&report.TotalCategories).Error; err != nil {
		return nil, err
	}
	if err := s.db.Model(&model.User{}).Count(&report.TotalUsers).Error; err != nil {
		return nil, err
	}
	if err := s.db.Model(&model.User{}).Where("is_active = ?", true).Count(&report.ActiveUsers).Error; err != nil {
		return nil, err
	}
	return report, nil
}
