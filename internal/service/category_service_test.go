package service

import (
	"errors"
	"testing"

	"catalog-service/internal/model"
)

// TestCategoryCreateSiblingUniqueness verifies that a name may not repeat
// within one sibling level but may repeat across levels.
func TestCategoryCreateSiblingUniqueness(t *testing.T) {
	s := NewCategoryService(newTestDB(t))

	root := mustCreateCategory(t, s, "Electronics", nil)

	if _, err := s.Create(CreateCategoryInput{Name: "Electronics"}); !errors.Is(err, ErrConflict) {
		t.Fatalf("duplicate root name: got %v, want ErrConflict", err)
	}

	child := mustCreateCategory(t, s, "Phones", &root.ID)
	if _, err := s.Create(CreateCategoryInput{Name: "Phones", ParentID: &root.ID}); !errors.Is(err, ErrConflict) {
		t.Fatalf("duplicate sibling name: got %v, want ErrConflict", err)
	}

	// Same name is fine under a different parent.
	if _, err := s.Create(CreateCategoryInput{Name: "Electronics", ParentID: &child.ID}); err != nil {
		t.Fatalf("same name under different parent: unexpected error %v", err)
	}
}

// TestCategoryCreateInactive verifies that IsActive false survives the
// insert and a reload. A default tag on the column would swallow the zero
// value.
func TestCategoryCreateInactive(t *testing.T) {
	db := newTestDB(t)
	s := NewCategoryService(db)

	created, err := s.Create(CreateCategoryInput{Name: "Hidden", IsActive: boolPtr(false)})
	if err != nil {
		t.Fatalf("Create: unexpected error %v", err)
	}
	if created.IsActive {
		t.Error("Create: returned category is active, want inactive")
	}

	var reloaded model.Category
	if err := db.First(&reloaded, created.ID).Error; err != nil {
		t.Fatalf("failed to reload category: %v", err)
	}
	if reloaded.IsActive {
		t.Error("reloaded category is active, want inactive")
	}

	// Unspecified stays the default of active.
	active := mustCreateCategory(t, s, "Visible", nil)
	if !active.IsActive {
		t.Error("Create without flag: category inactive, want active")
	}
}

// TestCategoryCreateMissingParent verifies the NotFound outcome for an
// unknown parent id.
func TestCategoryCreateMissingParent(t *testing.T) {
	s := NewCategoryService(newTestDB(t))

	if _, err := s.Create(CreateCategoryInput{Name: "Orphan", ParentID: uintPtr(999)}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing parent: got %v, want ErrNotFound", err)
	}
}

// TestCategoryGet verifies relation resolution and the NotFound outcome.
func TestCategoryGet(t *testing.T) {
	s := NewCategoryService(newTestDB(t))

	root := mustCreateCategory(t, s, "Home", nil)
	child := mustCreateCategory(t, s, "Kitchen", &root.ID)

	got, err := s.Get(child.ID)
	if err != nil {
		t.Fatalf("Get: unexpected error %v", err)
	}
	if got.Parent == nil || got.Parent.ID != root.ID {
		t.Errorf("Get: parent not resolved, got %+v", got.Parent)
	}

	got, err = s.Get(root.ID)
	if err != nil {
		t.Fatalf("Get root: unexpected error %v", err)
	}
	if len(got.Children) != 1 || got.Children[0].ID != child.ID {
		t.Errorf("Get root: children = %v, want [%d]", categoryIDs(got.Children), child.ID)
	}

	if _, err := s.Get(999); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get unknown id: got %v, want ErrNotFound", err)
	}
}

// TestCategoryAncestorsAndDescendants verifies inclusive ordering of both
// closure queries over a three-level chain.
func TestCategoryAncestorsAndDescendants(t *testing.T) {
	s := NewCategoryService(newTestDB(t))

	root := mustCreateCategory(t, s, "Root", nil)
	mid := mustCreateCategory(t, s, "Mid", &root.ID)
	leaf := mustCreateCategory(t, s, "Leaf", &mid.ID)

	ancestors, err := s.Ancestors(leaf.ID)
	if err != nil {
		t.Fatalf("Ancestors: unexpected error %v", err)
	}
	want := []uint{root.ID, mid.ID, leaf.ID}
	got := categoryIDs(ancestors)
	if len(got) != len(want) {
		t.Fatalf("Ancestors = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Ancestors = %v, want %v", got, want)
		}
	}

	descendants, err := s.Descendants(root.ID)
	if err != nil {
		t.Fatalf("Descendants: unexpected error %v", err)
	}
	if len(descendants) != 3 || descendants[0].ID != root.ID {
		t.Fatalf("Descendants = %v, want inclusive subtree starting at root", categoryIDs(descendants))
	}

	if _, err := s.Ancestors(999); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Ancestors of unknown id: got %v, want ErrNotFound", err)
	}
	if _, err := s.Descendants(999); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Descendants of unknown id: got %v, want ErrNotFound", err)
	}
}

// TestCategoryListTreesAndRoots verifies forest assembly and the flat root
// listing.
func TestCategoryListTreesAndRoots(t *testing.T) {
	s := NewCategoryService(newTestDB(t))

	rootA := mustCreateCategory(t, s, "A", nil)
	rootB := mustCreateCategory(t, s, "B", nil)
	childA := mustCreateCategory(t, s, "A1", &rootA.ID)
	grandA := mustCreateCategory(t, s, "A11", &childA.ID)

	trees, err := s.ListTrees()
	if err != nil {
		t.Fatalf("ListTrees: unexpected error %v", err)
	}
	if len(trees) != 2 {
		t.Fatalf("ListTrees: got %d roots, want 2", len(trees))
	}
	if trees[0].ID != rootA.ID || len(trees[0].Children) != 1 {
		t.Fatalf("ListTrees: first root children = %v, want [%d]", categoryIDs(trees[0].Children), childA.ID)
	}
	if len(trees[0].Children[0].Children) != 1 || trees[0].Children[0].Children[0].ID != grandA.ID {
		t.Fatal("ListTrees: subtree not populated to depth 2")
	}

	roots, err := s.ListRoots()
	if err != nil {
		t.Fatalf("ListRoots: unexpected error %v", err)
	}
	if len(roots) != 2 || roots[0].ID != rootA.ID || roots[1].ID != rootB.ID {
		t.Fatalf("ListRoots = %v, want [%d %d]", categoryIDs(roots), rootA.ID, rootB.ID)
	}
}

// TestCategoryMoveCycleRejection verifies every illegal move: onto itself,
// under a direct child and under a deeper descendant.
func TestCategoryMoveCycleRejection(t *testing.T) {
	s := NewCategoryService(newTestDB(t))

	root := mustCreateCategory(t, s, "Root", nil)
	mid := mustCreateCategory(t, s, "Mid", &root.ID)
	leaf := mustCreateCategory(t, s, "Leaf", &mid.ID)

	if _, err := s.Move(root.ID, root.ID); !errors.Is(err, ErrConflict) {
		t.Fatalf("move onto itself: got %v, want ErrConflict", err)
	}
	if _, err := s.Move(root.ID, mid.ID); !errors.Is(err, ErrConflict) {
		t.Fatalf("move under child: got %v, want ErrConflict", err)
	}
	if _, err := s.Move(root.ID, leaf.ID); !errors.Is(err, ErrConflict) {
		t.Fatalf("move under descendant: got %v, want ErrConflict", err)
	}
	if _, err := s.Move(999, root.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("move unknown id: got %v, want ErrNotFound", err)
	}
	if _, err := s.Move(leaf.ID, 999); !errors.Is(err, ErrNotFound) {
		t.Fatalf("move under unknown parent: got %v, want ErrNotFound", err)
	}
}

// TestCategoryMoveReindexesSubtree verifies that a legal move carries the
// whole subtree and that ancestor chains stay acyclic afterwards.
func TestCategoryMoveReindexesSubtree(t *testing.T) {
	s := NewCategoryService(newTestDB(t))

	rootA := mustCreateCategory(t, s, "A", nil)
	rootB := mustCreateCategory(t, s, "B", nil)
	mid := mustCreateCategory(t, s, "Mid", &rootA.ID)
	leaf := mustCreateCategory(t, s, "Leaf", &mid.ID)

	moved, err := s.Move(mid.ID, rootB.ID)
	if err != nil {
		t.Fatalf("Move: unexpected error %v", err)
	}
	if moved.ParentID == nil || *moved.ParentID != rootB.ID {
		t.Fatalf("Move: parent = %v, want %d", moved.ParentID, rootB.ID)
	}

	// The leaf now reaches rootB, and rootA keeps only itself.
	ancestors, err := s.Ancestors(leaf.ID)
	if err != nil {
		t.Fatalf("Ancestors after move: unexpected error %v", err)
	}
	if !containsID(ancestors, rootB.ID) || containsID(ancestors, rootA.ID) {
		t.Fatalf("Ancestors after move = %v, want rootB in chain and rootA gone", categoryIDs(ancestors))
	}

	remaining, err := s.Descendants(rootA.ID)
	if err != nil {
		t.Fatalf("Descendants after move: unexpected error %v", err)
	}
	if len(remaining) != 1 || remaining[0].ID != rootA.ID {
		t.Fatalf("Descendants of old root = %v, want only itself", categoryIDs(remaining))
	}

	// Acyclicity holds for every category after the move.
	for _, id := range []uint{rootA.ID, rootB.ID, mid.ID, leaf.ID} {
		chain, err := s.Ancestors(id)
		if err != nil {
			t.Fatalf("Ancestors(%d): unexpected error %v", id, err)
		}
		seen := make(map[uint]bool, len(chain))
		for _, c := range chain {
			if seen[c.ID] {
				t.Fatalf("Ancestors(%d) contains %d twice", id, c.ID)
			}
			seen[c.ID] = true
		}
	}
}

// TestCategoryMoveToRoot verifies detaching a nested category, subtree
// preservation and the root-level name guard.
func TestCategoryMoveToRoot(t *testing.T) {
	s := NewCategoryService(newTestDB(t))

	root := mustCreateCategory(t, s, "Root", nil)
	mid := mustCreateCategory(t, s, "Mid", &root.ID)
	leaf := mustCreateCategory(t, s, "Leaf", &mid.ID)

	moved, err := s.MoveToRoot(mid.ID)
	if err != nil {
		t.Fatalf("MoveToRoot: unexpected error %v", err)
	}
	if moved.ParentID != nil {
		t.Fatalf("MoveToRoot: parent = %v, want nil", moved.ParentID)
	}

	// The subtree came along; the old root lost it.
	ancestors, err := s.Ancestors(leaf.ID)
	if err != nil {
		t.Fatalf("Ancestors after detach: unexpected error %v", err)
	}
	got := categoryIDs(ancestors)
	if len(got) != 2 || got[0] != mid.ID || got[1] != leaf.ID {
		t.Fatalf("Ancestors after detach = %v, want [%d %d]", got, mid.ID, leaf.ID)
	}
	remaining, err := s.Descendants(root.ID)
	if err != nil {
		t.Fatalf("Descendants after detach: unexpected error %v", err)
	}
	if len(remaining) != 1 {
		t.Fatalf("Descendants of old root = %v, want only itself", categoryIDs(remaining))
	}

	roots, err := s.ListRoots()
	if err != nil {
		t.Fatalf("ListRoots: unexpected error %v", err)
	}
	if len(roots) != 2 {
		t.Fatalf("ListRoots = %v, want 2 roots", categoryIDs(roots))
	}

	// Detaching a root is a no-op.
	if _, err := s.MoveToRoot(root.ID); err != nil {
		t.Fatalf("MoveToRoot on a root: unexpected error %v", err)
	}

	// A root with the same name blocks the detach.
	clash := mustCreateCategory(t, s, "Root", &mid.ID)
	if _, err := s.MoveToRoot(clash.ID); !errors.Is(err, ErrConflict) {
		t.Fatalf("detach onto name clash: got %v, want ErrConflict", err)
	}

	if _, err := s.MoveToRoot(999); !errors.Is(err, ErrNotFound) {
		t.Fatalf("detach unknown id: got %v, want ErrNotFound", err)
	}
}

// TestCategoryUpdate verifies rename conflicts, attribute merging and the
// cycle guard on re-parenting through update.
func TestCategoryUpdate(t *testing.T) {
	s := NewCategoryService(newTestDB(t))

	root := mustCreateCategory(t, s, "Root", nil)
	a := mustCreateCategory(t, s, "A", &root.ID)
	mustCreateCategory(t, s, "B", &root.ID)

	if _, err := s.Update(a.ID, UpdateCategoryInput{Name: strPtr("B")}); !errors.Is(err, ErrConflict) {
		t.Fatalf("rename onto sibling: got %v, want ErrConflict", err)
	}

	updated, err := s.Update(a.ID, UpdateCategoryInput{
		Description: strPtr("first level"),
		Color:       strPtr("#00ff00"),
		IsActive:    boolPtr(false),
	})
	if err != nil {
		t.Fatalf("Update: unexpected error %v", err)
	}
	if updated.Description != "first level" || updated.Color != "#00ff00" || updated.IsActive {
		t.Errorf("Update: merged attributes wrong: %+v", updated)
	}
	if updated.Name != "A" {
		t.Errorf("Update: name changed unexpectedly to %q", updated.Name)
	}

	// Re-parenting through update runs the cycle check.
	if _, err := s.Update(root.ID, UpdateCategoryInput{ParentID: &a.ID}); !errors.Is(err, ErrConflict) {
		t.Fatalf("update creating cycle: got %v, want ErrConflict", err)
	}

	if _, err := s.Update(999, UpdateCategoryInput{Name: strPtr("X")}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("update unknown id: got %v, want ErrNotFound", err)
	}
}

// TestCategoryRemoveGuards verifies that deletion is blocked by children and
// by products, and succeeds for empty leaves.
func TestCategoryRemoveGuards(t *testing.T) {
	db := newTestDB(t)
	s := NewCategoryService(db)

	root := mustCreateCategory(t, s, "Root", nil)
	leaf := mustCreateCategory(t, s, "Leaf", &root.ID)

	if err := s.Remove(root.ID); !errors.Is(err, ErrConflict) {
		t.Fatalf("remove with child: got %v, want ErrConflict", err)
	}

	product := model.Product{Name: "Widget", SKU: "W-1", Price: 10, CategoryID: &leaf.ID}
	if err := db.Create(&product).Error; err != nil {
		t.Fatalf("failed to seed product: %v", err)
	}
	if err := s.Remove(leaf.ID); !errors.Is(err, ErrConflict) {
		t.Fatalf("remove with product: got %v, want ErrConflict", err)
	}

	if err := db.Delete(&product).Error; err != nil {
		t.Fatalf("failed to delete product: %v", err)
	}
	if err := s.Remove(leaf.ID); err != nil {
		t.Fatalf("remove empty leaf: unexpected error %v", err)
	}
	if err := s.Remove(leaf.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("remove twice: got %v, want ErrNotFound", err)
	}

	// The root became a leaf and can go now; its closure rows go with it.
	if err := s.Remove(root.ID); err != nil {
		t.Fatalf("remove former root: unexpected error %v", err)
	}
	var closureCount int64
	if err := db.Model(&model.CategoryClosure{}).Count(&closureCount).Error; err != nil {
		t.Fatalf("failed to count closure rows: %v", err)
	}
	if closureCount != 0 {
		t.Errorf("closure rows left after full removal: %d", closureCount)
	}
}

// TestCategoryStats verifies the total/root/with-products counters.
func TestCategoryStats(t *testing.T) {
	db := newTestDB(t)
	s := NewCategoryService(db)

	rootA := mustCreateCategory(t, s, "A", nil)
	mustCreateCategory(t, s, "B", nil)
	child := mustCreateCategory(t, s, "A1", &rootA.ID)

	for i, categoryID := range []*uint{&child.ID, &child.ID, nil} {
		p := model.Product{Name: "P", SKU: "SKU-" + string(rune('a'+i)), Price: 5, CategoryID: categoryID}
		if err := db.Create(&p).Error; err != nil {
			t.Fatalf("failed to seed product: %v", err)
		}
	}

	stats, err := s.Stats()
	if err != nil {
		t.Fatalf("Stats: unexpected error %v", err)
	}
	if stats.Total != 3 || stats.Root != 2 || stats.WithProducts != 1 {
		t.Errorf("Stats = %+v, want total 3, root 2, with_products 1", stats)
	}
}
