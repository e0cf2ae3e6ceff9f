package service

import (
	"errors"
	"fmt"

	"catalog-service/internal/model"

	"gorm.io/gorm"
)

// CategoryService manages the category tree. Structural mutations (create,
// reparent, delete) run inside a transaction that keeps the category_closure
// index in step with the adjacency list.
type CategoryService struct {
	db *gorm.DB
}

// NewCategoryService returns a CategoryService bound to the given database
// handle.
func NewCategoryService(db *gorm.DB) *CategoryService {
	return &CategoryService{db: db}
}

// CreateCategoryInput carries the attributes for a new category.
type CreateCategoryInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Image       string `json:"image"`
	Color       string `json:"color"`
	IsActive    *bool  `json:"is_active"`
	ParentID    *uint  `json:"parent_id"`
}

// UpdateCategoryInput is a partial patch; nil fields are left unchanged.
// A non-nil ParentID re-parents the category and is validated against the
// cycle invariant. Detaching to root goes through MoveToRoot, since a nil
// ParentID here means "unchanged".
type UpdateCategoryInput struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Image       *string `json:"image"`
	Color       *string `json:"color"`
	IsActive    *bool   `json:"is_active"`
	ParentID    *uint   `json:"parent_id"`
}

// CategoryStats summarizes the shape of the tree.
type CategoryStats struct {
	Total        int64 `json:"total"`
	Root         int64 `json:"root"`
	WithProducts int64 `json:"with_products"`
}

// Create persists a new category after checking that no sibling under the
// same parent (or among the roots) already carries the name.
func (s *CategoryService) Create(in CreateCategoryInput) (*model.Category, error) {
	category := &model.Category{
		Name:        in.Name,
		Description: in.Description,
		Image:       in.Image,
		Color:       in.Color,
		IsActive:    true,
		ParentID:    in.ParentID,
	}
	if in.IsActive != nil {
		category.IsActive = *in.IsActive
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if in.ParentID != nil {
			var parent model.Category
			if err := tx.First(&parent, *in.ParentID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return fmt.Errorf("parent category %d: %w", *in.ParentID, ErrNotFound)
				}
				return err
			}
		}

		taken, err := siblingNameTaken(tx, in.Name, in.ParentID, 0)
		if err != nil {
			return err
		}
		if taken {
			return fmt.Errorf("%w: a category named %q already exists at this level", ErrConflict, in.Name)
		}

		if err := tx.Create(category).Error; err != nil {
			return err
		}
		return insertClosureRows(tx, category.ID, category.ParentID)
	})
	if err != nil {
		return nil, err
	}
	return category, nil
}

// Get returns a category with its parent and direct children resolved.
func (s *CategoryService) Get(id uint) (*model.Category, error) {
	var category model.Category
	err := s.db.Preload("Parent").Preload("Children").First(&category, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("category %d: %w", id, ErrNotFound)
		}
		return nil, err
	}
	return &category, nil
}

// ListTrees returns the full category forest: every root category populated
// with its descendant subtree. The forest is assembled in memory from a
// single query.
func (s *CategoryService) ListTrees() ([]*model.Category, error) {
	var categories []*model.Category
	if err := s.db.Order("id").Find(&categories).Error; err != nil {
		return nil, err
	}

	byID := make(map[uint]*model.Category, len(categories))
	for _, c := range categories {
		byID[c.ID] = c
	}

	roots := make([]*model.Category, 0)
	for _, c := range categories {
		if c.ParentID == nil {
			roots = append(roots, c)
			continue
		}
		if parent, ok := byID[*c.ParentID]; ok {
			parent.Children = append(parent.Children, c)
		}
	}
	return roots, nil
}

// ListRoots returns the parentless categories without expanding subtrees.
func (s *CategoryService) ListRoots() ([]*model.Category, error) {
	var roots []*model.Category
	err := s.db.Where("parent_id IS NULL").Order("id").Find(&roots).Error
	if err != nil {
		return nil, err
	}
	return roots, nil
}

// Descendants returns the subtree rooted at id, the category itself
// included, ordered from the root of the subtree outward.
func (s *CategoryService) Descendants(id uint) ([]*model.Category, error) {
	if err := s.ensureExists(id); err != nil {
		return nil, err
	}
	var categories []*model.Category
	err := s.db.
		Joins("JOIN category_closure cc ON cc.descendant_id = categories.id").
		Where("cc.ancestor_id = ?", id).
		Order("cc.depth, categories.id").
		Find(&categories).Error
	if err != nil {
		return nil, err
	}
	return categories, nil
}

// Ancestors returns the chain from the tree root down to the category
// itself, inclusive.
func (s *CategoryService) Ancestors(id uint) ([]*model.Category, error) {
	if err := s.ensureExists(id); err != nil {
		return nil, err
	}
	var categories []*model.Category
	err := s.db.
		Joins("JOIN category_closure cc ON cc.ancestor_id = categories.id").
		Where("cc.descendant_id = ?", id).
		Order("cc.depth DESC").
		Find(&categories).Error
	if err != nil {
		return nil, err
	}
	return categories, nil
}

// Update applies a partial patch. Sibling uniqueness is re-validated when
// the name or the parent changes; a parent change is additionally validated
// against the cycle invariant and re-indexes the subtree.
func (s *CategoryService) Update(id uint, in UpdateCategoryInput) (*model.Category, error) {
	var category model.Category
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&category, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("category %d: %w", id, ErrNotFound)
			}
			return err
		}

		newName := category.Name
		if in.Name != nil {
			newName = *in.Name
		}
		newParentID := category.ParentID
		parentChanged := false
		if in.ParentID != nil && (category.ParentID == nil || *category.ParentID != *in.ParentID) {
			newParentID = in.ParentID
			parentChanged = true
		}

		if newName != category.Name || parentChanged {
			taken, err := siblingNameTaken(tx, newName, newParentID, id)
			if err != nil {
				return err
			}
			if taken {
				return fmt.Errorf("%w: a category named %q already exists at this level", ErrConflict, newName)
			}
		}

		if parentChanged {
			if err := ensureNoCycle(tx, id, *in.ParentID); err != nil {
				return err
			}
			if err := moveSubtree(tx, id, in.ParentID); err != nil {
				return err
			}
			category.ParentID = in.ParentID
		}

		category.Name = newName
		if in.Description != nil {
			category.Description = *in.Description
		}
		if in.Image != nil {
			category.Image = *in.Image
		}
		if in.Color != nil {
			category.Color = *in.Color
		}
		if in.IsActive != nil {
			category.IsActive = *in.IsActive
		}
		return tx.Save(&category).Error
	})
	if err != nil {
		return nil, err
	}
	return &category, nil
}

// Move re-parents a category under newParentID. The move is rejected with
// ErrConflict when it would make the category an ancestor of itself, which
// includes moving it under one of its own descendants or under itself.
func (s *CategoryService) Move(id, newParentID uint) (*model.Category, error) {
	var category model.Category
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&category, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("category %d: %w", id, ErrNotFound)
			}
			return err
		}
		if err := ensureNoCycle(tx, id, newParentID); err != nil {
			return err
		}
		if err := moveSubtree(tx, id, &newParentID); err != nil {
			return err
		}
		category.ParentID = &newParentID
		return tx.Save(&category).Error
	})
	if err != nil {
		return nil, err
	}
	return &category, nil
}

// MoveToRoot detaches a category from its parent, making it a root. The
// subtree keeps its internal structure; only the links to the former
// ancestors are dropped.
func (s *CategoryService) MoveToRoot(id uint) (*model.Category, error) {
	var category model.Category
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&category, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("category %d: %w", id, ErrNotFound)
			}
			return err
		}
		if category.ParentID == nil {
			return nil
		}

		taken, err := siblingNameTaken(tx, category.Name, nil, id)
		if err != nil {
			return err
		}
		if taken {
			return fmt.Errorf("%w: a category named %q already exists at this level", ErrConflict, category.Name)
		}

		if err := moveSubtree(tx, id, nil); err != nil {
			return err
		}
		category.ParentID = nil
		return tx.Save(&category).Error
	})
	if err != nil {
		return nil, err
	}
	return &category, nil
}

// Remove deletes a category. Deletion is blocked while the category still
// owns products or has child categories.
func (s *CategoryService) Remove(id uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var category model.Category
		if err := tx.First(&category, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("category %d: %w", id, ErrNotFound)
			}
			return err
		}

		var productCount int64
		if err := tx.Model(&model.Product{}).Where("category_id = ?", id).Count(&productCount).Error; err != nil {
			return err
		}
		if productCount > 0 {
			return fmt.Errorf("%w: category has associated products", ErrConflict)
		}

		// Real children only: the depth-0 self row is excluded.
		var childCount int64
		err := tx.Model(&model.CategoryClosure{}).
			Where("ancestor_id = ? AND depth > 0", id).
			Count(&childCount).Error
		if err != nil {
			return err
		}
		if childCount > 0 {
			return fmt.Errorf("%w: category has subcategories", ErrConflict)
		}

		if err := tx.Where("ancestor_id = ? OR descendant_id = ?", id, id).
			Delete(&model.CategoryClosure{}).Error; err != nil {
			return err
		}
		return tx.Delete(&category).Error
	})
}

// Stats returns total, root and has-products category counts.
func (s *CategoryService) Stats() (*CategoryStats, error) {
	stats := &CategoryStats{}
	if err := s.db.Model(&model.Category{}).Count(&stats.Total).Error; err != nil {
		return nil, err
	}
	if err := s.db.Model(&model.Category{}).Where("parent_id IS NULL").Count(&stats.Root).Error; err != nil {
		return nil, err
	}
	err := s.db.Model(&model.Product{}).
		Where("category_id IS NOT NULL").
		Distinct("category_id").
		Count(&stats.WithProducts).Error
	if err != nil {
		return nil, err
	}
	return stats, nil
}

func (s *CategoryService) ensureExists(id uint) error {
	var count int64
	if err := s.db.Model(&model.Category{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return fmt.Errorf("category %d: %w", id, ErrNotFound)
	}
	return nil
}

// siblingNameTaken reports whether another category with the given name
// already exists under parentID (or among the roots when parentID is nil).
// excludeID skips the category being updated.
func siblingNameTaken(tx *gorm.DB, name string, parentID *uint, excludeID uint) (bool, error) {
	q := tx.Model(&model.Category{}).Where("name = ?", name)
	if parentID != nil {
		q = q.Where("parent_id = ?", *parentID)
	} else {
		q = q.Where("parent_id IS NULL")
	}
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// insertClosureRows writes the self row for a new category plus one row per
// ancestor inherited from the parent.
func insertClosureRows(tx *gorm.DB, id uint, parentID *uint) error {
	rows := []model.CategoryClosure{{AncestorID: id, DescendantID: id, Depth: 0}}
	if parentID != nil {
		var ancestors []model.CategoryClosure
		if err := tx.Where("descendant_id = ?", *parentID).Find(&ancestors).Error; err != nil {
			return err
		}
		for _, a := range ancestors {
			rows = append(rows, model.CategoryClosure{
				AncestorID:   a.AncestorID,
				DescendantID: id,
				Depth:        a.Depth + 1,
			})
		}
	}
	return tx.Create(&rows).Error
}

// ensureNoCycle rejects a re-parenting that would place id above itself.
// The prospective parent's ancestor chain is consulted through the closure
// table: the move is illegal when id appears in it, or when id equals the
// prospective parent. O(1) lookups against the index, O(depth) rows.
func ensureNoCycle(tx *gorm.DB, id, newParentID uint) error {
	if id == newParentID {
		return fmt.Errorf("%w: category cannot be its own parent", ErrConflict)
	}
	var parent model.Category
	if err := tx.First(&parent, newParentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("parent category %d: %w", newParentID, ErrNotFound)
		}
		return err
	}
	var count int64
	err := tx.Model(&model.CategoryClosure{}).
		Where("ancestor_id = ? AND descendant_id = ?", id, newParentID).
		Count(&count).Error
	if err != nil {
		return err
	}
	if count > 0 {
		return fmt.Errorf("%w: move would create a cycle", ErrConflict)
	}
	return nil
}

// moveSubtree re-indexes the closure rows when id moves under newParentID.
// First every link between the subtree of id and its former ancestors is
// dropped, then the cross product of the new parent's ancestor chain and the
// subtree is inserted with additive depths.
func moveSubtree(tx *gorm.DB, id uint, newParentID *uint) error {
	err := tx.Exec(`DELETE FROM category_closure
		WHERE descendant_id IN (SELECT descendant_id FROM category_closure WHERE ancestor_id = ?)
		  AND ancestor_id NOT IN (SELECT descendant_id FROM category_closure WHERE ancestor_id = ?)`,
		id, id).Error
	if err != nil {
		return err
	}
	if newParentID == nil {
		return nil
	}
	return tx.Exec(`INSERT INTO category_closure (ancestor_id, descendant_id, depth)
		SELECT a.ancestor_id, d.descendant_id, a.depth + d.depth + 1
		FROM category_closure a, category_closure d
		WHERE a.descendant_id = ? AND d.ancestor_id = ?`,
		*newParentID, id).Error
}
