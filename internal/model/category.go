package model

import "time"

// Category is a node in the catalog's category tree. The tree is stored as
// an adjacency list (ParentID) plus the category_closure index table, which
// holds every ancestor-descendant pair so that subtree and ancestor-chain
// queries never need recursive traversal.
type Category struct {
	ID          uint        `json:"id" gorm:"primarykey"`
	Name        string      `json:"name" gorm:"type:varchar(100);not null"`
	Description string      `json:"description,omitempty" gorm:"type:text"`
	Image       string      `json:"image,omitempty" gorm:"type:varchar(255)"`
	Color       string      `json:"color,omitempty" gorm:"type:varchar(7)"`
	IsActive    bool        `json:"is_active"`
	ParentID    *uint       `json:"parent_id" gorm:"index"`
	Parent      *Category   `json:"parent,omitempty" gorm:"foreignKey:ParentID"`
	Children    []*Category `json:"children,omitempty" gorm:"foreignKey:ParentID"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// IsRoot reports whether the category has no parent.
func (c *Category) IsRoot() bool {
	return c.ParentID == nil
}

// IsLeaf reports whether the category has no loaded children.
func (c *Category) IsLeaf() bool {
	return len(c.Children) == 0
}

// CategoryClosure is one ancestor-descendant pair of the category tree.
// Every category has a self row with depth 0; a direct parent-child edge has
// depth 1. Rows are maintained transactionally on every insert, move and
// delete.
type CategoryClosure struct {
	AncestorID   uint `json:"ancestor_id" gorm:"primaryKey;autoIncrement:false"`
	DescendantID uint `json:"descendant_id" gorm:"primaryKey;autoIncrement:false;index"`
	Depth        int  `json:"depth" gorm:"not null"`
}

// TableName overrides the default pluralization.
func (CategoryClosure) TableName() string {
	return "category_closure"
}
