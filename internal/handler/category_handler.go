package handler

import (
	"net/http"
	"strconv"

	"catalog-service/internal/service"
	"catalog-service/pkg/logger"
	"catalog-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// CategoryHandler exposes the category tree endpoints.
type CategoryHandler struct {
	categories *service.CategoryService
}

// NewCategoryHandler returns a CategoryHandler backed by the given service.
func NewCategoryHandler(categories *service.CategoryService) *CategoryHandler {
	return &CategoryHandler{categories: categories}
}

// Create handles creating a new category
func (h *CategoryHandler) Create(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.CategoryOperations.WithLabelValues("create").Inc()

	var req service.CreateCategoryInput
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}
	if req.Name == "" {
		log.Warn("Category name missing")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}

	category, err := h.categories.Create(req)
	if err != nil {
		log.Warn("Failed to create category", zap.String("name", req.Name), zap.Error(err))
		return writeServiceError(c, err)
	}

	log.Info("Category created",
		zap.Uint("category_id", category.ID),
		zap.String("name", category.Name))
	return c.JSON(http.StatusCreated, category)
}

// ListTrees returns the full category forest
func (h *CategoryHandler) ListTrees(c echo.Context) error {
	log := logger.FromContext(c)

	trees, err := h.categories.ListTrees()
	if err != nil {
		log.Error("Failed to list category trees", zap.Error(err))
		return writeServiceError(c, err)
	}

	log.Info("Category trees retrieved", zap.Int("roots", len(trees)))
	return c.JSON(http.StatusOK, trees)
}

// ListRoots returns only the parentless categories
func (h *CategoryHandler) ListRoots(c echo.Context) error {
	log := logger.FromContext(c)

	roots, err := h.categories.ListRoots()
	if err != nil {
		log.Error("Failed to list root categories", zap.Error(err))
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, roots)
}

// Stats returns the category counters
func (h *CategoryHandler) Stats(c echo.Context) error {
	log := logger.FromContext(c)

	stats, err := h.categories.Stats()
	if err != nil {
		log.Error("Failed to compute category stats", zap.Error(err))
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, stats)
}

// Get returns one category with parent and children resolved
func (h *CategoryHandler) Get(c echo.Context) error {
	log := logger.FromContext(c)

	id, err := parseID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid category id"})
	}

	category, err := h.categories.Get(id)
	if err != nil {
		log.Warn("Category lookup failed", zap.Uint("category_id", id), zap.Error(err))
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, category)
}

// Children returns the subtree rooted at the category
func (h *CategoryHandler) Children(c echo.Context) error {
	log := logger.FromContext(c)

	id, err := parseID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid category id"})
	}

	descendants, err := h.categories.Descendants(id)
	if err != nil {
		log.Warn("Descendant lookup failed", zap.Uint("category_id", id), zap.Error(err))
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, descendants)
}

// Parents returns the ancestor chain of the category
func (h *CategoryHandler) Parents(c echo.Context) error {
	log := logger.FromContext(c)

	id, err := parseID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid category id"})
	}

	ancestors, err := h.categories.Ancestors(id)
	if err != nil {
		log.Warn("Ancestor lookup failed", zap.Uint("category_id", id), zap.Error(err))
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, ancestors)
}

// Update handles patching an existing category
func (h *CategoryHandler) Update(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.CategoryOperations.WithLabelValues("update").Inc()

	id, err := parseID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid category id"})
	}

	var req service.UpdateCategoryInput
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Uint("category_id", id), zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}

	category, err := h.categories.Update(id, req)
	if err != nil {
		log.Warn("Failed to update category", zap.Uint("category_id", id), zap.Error(err))
		return writeServiceError(c, err)
	}

	log.Info("Category updated",
		zap.Uint("category_id", category.ID),
		zap.String("name", category.Name))
	return c.JSON(http.StatusOK, category)
}

// Move re-parents a category
func (h *CategoryHandler) Move(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.CategoryOperations.WithLabelValues("move").Inc()

	id, err := parseID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid category id"})
	}
	newParentID, err := parseID(c, "newParentId")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid parent id"})
	}

	category, err := h.categories.Move(id, newParentID)
	if err != nil {
		log.Warn("Failed to move category",
			zap.Uint("category_id", id),
			zap.Uint("new_parent_id", newParentID),
			zap.Error(err))
		return writeServiceError(c, err)
	}

	log.Info("Category moved",
		zap.Uint("category_id", id),
		zap.Uint("new_parent_id", newParentID))
	return c.JSON(http.StatusOK, category)
}

// MoveToRoot detaches a category from its parent
func (h *CategoryHandler) MoveToRoot(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.CategoryOperations.WithLabelValues("move").Inc()

	id, err := parseID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid category id"})
	}

	category, err := h.categories.MoveToRoot(id)
	if err != nil {
		log.Warn("Failed to move category to root", zap.Uint("category_id", id), zap.Error(err))
		return writeServiceError(c, err)
	}

	log.Info("Category moved to root", zap.Uint("category_id", id))
	return c.JSON(http.StatusOK, category)
}

// Delete removes a category without products or children
func (h *CategoryHandler) Delete(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.CategoryOperations.WithLabelValues("delete").Inc()

	id, err := parseID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid category id"})
	}

	if err := h.categories.Remove(id); err != nil {
		log.Warn("Failed to delete category", zap.Uint("category_id", id), zap.Error(err))
		return writeServiceError(c, err)
	}

	log.Info("Category deleted", zap.Uint("category_id", id))
	return c.NoContent(http.StatusNoContent)
}

func parseID(c echo.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}
