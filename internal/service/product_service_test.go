package service

import (
	"errors"
	"fmt"
	"testing"

	"catalog-service/internal/model"
)

const testActorID = uint(1)

// TestProductCreateDuplicateSKU verifies the Conflict outcome and that the
// failed create writes nothing.
func TestProductCreateDuplicateSKU(t *testing.T) {
	db := newTestDB(t)
	s := NewProductService(db)

	first, err := s.Create(CreateProductInput{Name: "Widget", SKU: "W-1", Price: 10}, testActorID)
	if err != nil {
		t.Fatalf("Create: unexpected error %v", err)
	}
	if first.CreatedByID == nil || *first.CreatedByID != testActorID {
		t.Errorf("Create: creator = %v, want %d", first.CreatedByID, testActorID)
	}
	if first.Status != model.StatusDraft {
		t.Errorf("Create: default status = %q, want draft", first.Status)
	}

	if _, err := s.Create(CreateProductInput{Name: "Other", SKU: "W-1", Price: 20}, testActorID); !errors.Is(err, ErrConflict) {
		t.Fatalf("duplicate SKU: got %v, want ErrConflict", err)
	}

	var count int64
	if err := db.Model(&model.Product{}).Count(&count).Error; err != nil {
		t.Fatalf("failed to count products: %v", err)
	}
	if count != 1 {
		t.Errorf("product count after rejected create = %d, want 1", count)
	}
}

// TestProductFindAllPriceRangeAndPagination verifies the inclusive price
// filter together with the pagination envelope: 25 matching rows, page 2 of
// size 10 returns rows 11-20.
func TestProductFindAllPriceRangeAndPagination(t *testing.T) {
	db := newTestDB(t)
	s := NewProductService(db)

	for i := 1; i <= 30; i++ {
		p := model.Product{
			Name:  fmt.Sprintf("Product %02d", i),
			SKU:   fmt.Sprintf("SKU-%02d", i),
			Price: float64(i),
		}
		if err := db.Create(&p).Error; err != nil {
			t.Fatalf("failed to seed product %d: %v", i, err)
		}
	}

	page, err := s.FindAll(
		ProductFilters{MinPrice: floatPtr(1), MaxPrice: floatPtr(25)},
		Pagination{Page: 2, Limit: 10, OrderBy: "price", OrderDirection: "ASC"},
	)
	if err != nil {
		t.Fatalf("FindAll: unexpected error %v", err)
	}

	pi := page.Pagination
	if pi.Total != 25 || pi.TotalPages != 3 || !pi.HasNext || !pi.HasPrev {
		t.Fatalf("pagination = %+v, want total 25, totalPages 3, hasNext, hasPrev", pi)
	}
	if len(page.Products) != 10 {
		t.Fatalf("page size = %d, want 10", len(page.Products))
	}
	for i, p := range page.Products {
		want := float64(11 + i)
		if p.Price != want {
			t.Errorf("row %d price = %v, want %v", i, p.Price, want)
		}
	}

	// Both bounds are inclusive.
	edge, err := s.FindAll(
		ProductFilters{MinPrice: floatPtr(25), MaxPrice: floatPtr(25)},
		Pagination{Page: 1, Limit: 10},
	)
	if err != nil {
		t.Fatalf("FindAll edge: unexpected error %v", err)
	}
	if edge.Pagination.Total != 1 {
		t.Errorf("inclusive bound total = %d, want 1", edge.Pagination.Total)
	}
}

// TestProductFindAllFilters exercises the remaining conjunctive filters.
func TestProductFindAllFilters(t *testing.T) {
	db := newTestDB(t)
	s := NewProductService(db)

	category := model.Category{Name: "Tools"}
	if err := db.Create(&category).Error; err != nil {
		t.Fatalf("failed to seed category: %v", err)
	}

	seed := []model.Product{
		{Name: "Cordless Drill", SKU: "T-1", Price: 99, Stock: 4, Brand: "Makita", Tags: "power,drill", Status: model.StatusActive, CategoryID: &category.ID, IsFeatured: true},
		{Name: "Hammer", SKU: "T-2", Price: 15, Stock: 0, Brand: "Stanley", Tags: "hand", Status: model.StatusActive, CategoryID: &category.ID},
		{Name: "Drill bits", SKU: "T-3", Price: 25, Stock: 50, Brand: "Bosch", Tags: "drill,accessory", Status: model.StatusDraft},
	}
	for i := range seed {
		if err := db.Create(&seed[i]).Error; err != nil {
			t.Fatalf("failed to seed product: %v", err)
		}
	}

	tests := []struct {
		name    string
		filters ProductFilters
		want    []string
	}{
		{name: "search matches name case-insensitively", filters: ProductFilters{Search: "drill"}, want: []string{"T-1", "T-3"}},
		{name: "search matches sku", filters: ProductFilters{Search: "t-2"}, want: []string{"T-2"}},
		{name: "category", filters: ProductFilters{CategoryID: &category.ID}, want: []string{"T-1", "T-2"}},
		{name: "status", filters: ProductFilters{Status: model.StatusDraft}, want: []string{"T-3"}},
		{name: "in stock", filters: ProductFilters{InStock: boolPtr(true)}, want: []string{"T-1", "T-3"}},
		{name: "out of stock", filters: ProductFilters{InStock: boolPtr(false)}, want: []string{"T-2"}},
		{name: "featured", filters: ProductFilters{IsFeatured: boolPtr(true)}, want: []string{"T-1"}},
		{name: "brand substring", filters: ProductFilters{Brand: "maki"}, want: []string{"T-1"}},
		{name: "tag substring", filters: ProductFilters{Tags: "drill"}, want: []string{"T-1", "T-3"}},
		{name: "conjunction", filters: ProductFilters{Search: "drill", InStock: boolPtr(true), Status: model.StatusActive}, want: []string{"T-1"}},
		{name: "no matches is empty not error", filters: ProductFilters{Brand: "nope"}, want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := s.FindAll(tt.filters, Pagination{Page: 1, Limit: 10, OrderBy: "sku", OrderDirection: "ASC"})
			if err != nil {
				t.Fatalf("FindAll: unexpected error %v", err)
			}
			got := make([]string, len(page.Products))
			for i, p := range page.Products {
				got[i] = p.SKU
			}
			if len(got) != len(tt.want) {
				t.Fatalf("FindAll = %v, want %v", got, tt.want)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Fatalf("FindAll = %v, want %v", got, tt.want)
				}
			}
		})
	}
}

// TestProductFindOneIncrementsViewCount verifies the persisted view counter
// side effect of successive reads.
func TestProductFindOneIncrementsViewCount(t *testing.T) {
	db := newTestDB(t)
	s := NewProductService(db)

	created, err := s.Create(CreateProductInput{Name: "Widget", SKU: "W-1", Price: 10}, testActorID)
	if err != nil {
		t.Fatalf("Create: unexpected error %v", err)
	}

	first, err := s.FindOne(created.ID)
	if err != nil {
		t.Fatalf("FindOne: unexpected error %v", err)
	}
	second, err := s.FindOne(created.ID)
	if err != nil {
		t.Fatalf("FindOne: unexpected error %v", err)
	}
	if first.ViewCount != 1 || second.ViewCount != 2 {
		t.Errorf("view counts = %d, %d, want 1, 2", first.ViewCount, second.ViewCount)
	}

	var persisted model.Product
	if err := db.First(&persisted, created.ID).Error; err != nil {
		t.Fatalf("failed to reload product: %v", err)
	}
	if persisted.ViewCount != 2 {
		t.Errorf("persisted view count = %d, want 2", persisted.ViewCount)
	}

	if _, err := s.FindOne(999); !errors.Is(err, ErrNotFound) {
		t.Fatalf("FindOne unknown id: got %v, want ErrNotFound", err)
	}
}

// TestProductUpdate verifies SKU-collision rejection, patch application and
// the updater stamp.
func TestProductUpdate(t *testing.T) {
	db := newTestDB(t)
	s := NewProductService(db)

	a, err := s.Create(CreateProductInput{Name: "A", SKU: "A-1", Price: 10}, testActorID)
	if err != nil {
		t.Fatalf("Create: unexpected error %v", err)
	}
	if _, err := s.Create(CreateProductInput{Name: "B", SKU: "B-1", Price: 10}, testActorID); err != nil {
		t.Fatalf("Create: unexpected error %v", err)
	}

	if _, err := s.Update(a.ID, UpdateProductInput{SKU: strPtr("B-1")}, 2); !errors.Is(err, ErrConflict) {
		t.Fatalf("SKU collision: got %v, want ErrConflict", err)
	}

	status := model.StatusActive
	updated, err := s.Update(a.ID, UpdateProductInput{
		Name:      strPtr("A+"),
		Price:     floatPtr(12),
		SalePrice: floatPtr(9),
		Stock:     intPtr(7),
		Status:    &status,
	}, 2)
	if err != nil {
		t.Fatalf("Update: unexpected error %v", err)
	}
	if updated.Name != "A+" || updated.Price != 12 || updated.Stock != 7 || updated.Status != model.StatusActive {
		t.Errorf("Update: patch not applied: %+v", updated)
	}
	if updated.SalePrice == nil || *updated.SalePrice != 9 {
		t.Errorf("Update: sale price = %v, want 9", updated.SalePrice)
	}
	if updated.UpdatedByID == nil || *updated.UpdatedByID != 2 {
		t.Errorf("Update: updater = %v, want 2", updated.UpdatedByID)
	}
	if updated.CreatedByID == nil || *updated.CreatedByID != testActorID {
		t.Errorf("Update: creator changed to %v", updated.CreatedByID)
	}

	if _, err := s.Update(999, UpdateProductInput{}, 2); !errors.Is(err, ErrNotFound) {
		t.Fatalf("update unknown id: got %v, want ErrNotFound", err)
	}
}

// TestProductRemove verifies deletion and the NotFound outcome.
func TestProductRemove(t *testing.T) {
	s := NewProductService(newTestDB(t))

	created, err := s.Create(CreateProductInput{Name: "Widget", SKU: "W-1", Price: 10}, testActorID)
	if err != nil {
		t.Fatalf("Create: unexpected error %v", err)
	}
	if err := s.Remove(created.ID); err != nil {
		t.Fatalf("Remove: unexpected error %v", err)
	}
	if err := s.Remove(created.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Remove twice: got %v, want ErrNotFound", err)
	}
}

// TestProductStockQueries exercises the convenience read-only queries.
func TestProductStockQueries(t *testing.T) {
	db := newTestDB(t)
	s := NewProductService(db)

	category := model.Category{Name: "Tools"}
	if err := db.Create(&category).Error; err != nil {
		t.Fatalf("failed to seed category: %v", err)
	}

	seed := []model.Product{
		{Name: "Scarce", SKU: "S-1", Price: 10, Stock: 1, MinStock: 5, Status: model.StatusActive, ViewCount: 3},
		{Name: "Low", SKU: "S-2", Price: 10, Stock: 4, MinStock: 5, Status: model.StatusActive, ViewCount: 9},
		{Name: "Empty", SKU: "S-3", Price: 10, Stock: 0, MinStock: 5, Status: model.StatusActive},
		{Name: "Plenty", SKU: "S-4", Price: 10, Stock: 50, MinStock: 5, Status: model.StatusActive, IsFeatured: true, CategoryID: &category.ID},
		{Name: "Hidden", SKU: "S-5", Price: 10, Stock: 50, MinStock: 5, Status: model.StatusDraft, IsFeatured: true, CategoryID: &category.ID},
	}
	for i := range seed {
		if err := db.Create(&seed[i]).Error; err != nil {
			t.Fatalf("failed to seed product: %v", err)
		}
	}

	low, err := s.LowStock(10)
	if err != nil {
		t.Fatalf("LowStock: unexpected error %v", err)
	}
	if len(low) != 2 || low[0].SKU != "S-1" || low[1].SKU != "S-2" {
		t.Errorf("LowStock: wrong rows or order: %v", skus(low))
	}

	out, err := s.OutOfStock(10)
	if err != nil {
		t.Fatalf("OutOfStock: unexpected error %v", err)
	}
	if len(out) != 1 || out[0].SKU != "S-3" {
		t.Errorf("OutOfStock = %v, want [S-3]", skus(out))
	}

	featured, err := s.Featured(10)
	if err != nil {
		t.Fatalf("Featured: unexpected error %v", err)
	}
	if len(featured) != 1 || featured[0].SKU != "S-4" {
		t.Errorf("Featured = %v, want [S-4] (drafts excluded)", skus(featured))
	}

	byCategory, err := s.ByCategory(category.ID, 10)
	if err != nil {
		t.Fatalf("ByCategory: unexpected error %v", err)
	}
	if len(byCategory) != 1 || byCategory[0].SKU != "S-4" {
		t.Errorf("ByCategory = %v, want [S-4]", skus(byCategory))
	}

	// Search covers active rows only, most viewed first.
	found, err := s.Search("s", 10)
	if err != nil {
		t.Fatalf("Search: unexpected error %v", err)
	}
	if len(found) != 4 || found[0].SKU != "S-2" {
		t.Errorf("Search = %v, want 4 active rows with S-2 first", skus(found))
	}

	stats, err := s.Stats()
	if err != nil {
		t.Fatalf("Stats: unexpected error %v", err)
	}
	if stats.Total != 5 || stats.Active != 4 || stats.OutOfStock != 1 || stats.LowStock != 2 {
		t.Errorf("Stats = %+v, want total 5, active 4, outOfStock 1, lowStock 2", stats)
	}
}

func skus(products []*model.Product) []string {
	out := make([]string, len(products))
	for i, p := range products {
		out[i] = p.SKU
	}
	return out
}
