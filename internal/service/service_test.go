package service

import (
	"testing"

	"catalog-service/internal/model"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens a private in-memory database per test and migrates the
// full schema.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get database object: %v", err)
	}
	// Every :memory: connection is a separate database; keep one connection.
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(
		&model.User{},
		&model.Category{},
		&model.CategoryClosure{},
		&model.Product{},
	)
	if err != nil {
		t.Fatalf("failed to migrate test schema: %v", err)
	}
	return db
}

func uintPtr(v uint) *uint        { return &v }
func intPtr(v int) *int           { return &v }
func floatPtr(v float64) *float64 { return &v }
func strPtr(v string) *string     { return &v }
func boolPtr(v bool) *bool        { return &v }

func mustCreateCategory(t *testing.T, s *CategoryService, name string, parentID *uint) *model.Category {
	t.Helper()
	category, err := s.Create(CreateCategoryInput{Name: name, ParentID: parentID})
	if err != nil {
		t.Fatalf("failed to create category %q: %v", name, err)
	}
	return category
}

func categoryIDs(categories []*model.Category) []uint {
	ids := make([]uint, len(categories))
	for i, c := range categories {
		ids[i] = c.ID
	}
	return ids
}

func containsID(categories []*model.Category, id uint) bool {
	for _, c := range categories {
		if c.ID == id {
			return true
		}
	}
	return false
}
