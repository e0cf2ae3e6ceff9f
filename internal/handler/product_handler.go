package handler

import (
	"net/http"
	"strconv"

	"catalog-service/internal/middleware"
	"catalog-service/internal/model"
	"catalog-service/internal/service"
	"catalog-service/pkg/logger"
	"catalog-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// ProductHandler exposes product CRUD and the catalog queries.
type ProductHandler struct {
	products *service.ProductService
}

// NewProductHandler returns a ProductHandler backed by the given service.
func NewProductHandler(products *service.ProductService) *ProductHandler {
	return &ProductHandler{products: products}
}

// Create handles creating a new product
func (h *ProductHandler) Create(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.ProductOperations.WithLabelValues("create").Inc()

	actorID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		log.Warn("Missing user_id in context")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing authorization token"})
	}

	var req service.CreateProductInput
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}
	if req.Name == "" || req.SKU == "" {
		log.Warn("Product name or SKU missing")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name and sku are required"})
	}
	if req.Price < 0 {
		log.Warn("Negative product price", zap.Float64("price", req.Price))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "price must not be negative"})
	}
	if req.SalePrice != nil && *req.SalePrice < 0 {
		log.Warn("Negative sale price", zap.Float64("sale_price", *req.SalePrice))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "sale price must not be negative"})
	}

	product, err := h.products.Create(req, actorID)
	if err != nil {
		log.Warn("Failed to create product",
			zap.String("name", req.Name),
			zap.String("sku", req.SKU),
			zap.Error(err))
		return writeServiceError(c, err)
	}

	log.Info("Product created",
		zap.Uint("product_id", product.ID),
		zap.String("name", product.Name),
		zap.String("sku", product.SKU))
	return c.JSON(http.StatusCreated, product)
}

// List handles retrieving products with filtering and pagination
func (h *ProductHandler) List(c echo.Context) error {
	log := logger.FromContext(c)

	filters := service.ProductFilters{
		Search: c.QueryParam("search"),
		Brand:  c.QueryParam("brand"),
		Tags:   c.QueryParam("tags"),
		Status: model.ProductStatus(c.QueryParam("status")),
	}
	if v := c.QueryParam("categoryId"); v != "" {
		if id, err := strconv.ParseUint(v, 10, 32); err == nil {
			categoryID := uint(id)
			filters.CategoryID = &categoryID
		} else {
			log.Warn("Invalid categoryId parameter", zap.String("value", v))
		}
	}
	if v := c.QueryParam("minPrice"); v != "" {
		if price, err := strconv.ParseFloat(v, 64); err == nil {
			filters.MinPrice = &price
		}
	}
	if v := c.QueryParam("maxPrice"); v != "" {
		if price, err := strconv.ParseFloat(v, 64); err == nil {
			filters.MaxPrice = &price
		}
	}
	if v := c.QueryParam("inStock"); v != "" {
		if inStock, err := strconv.ParseBool(v); err == nil {
			filters.InStock = &inStock
		}
	}
	if v := c.QueryParam("isFeatured"); v != "" {
		if featured, err := strconv.ParseBool(v); err == nil {
			filters.IsFeatured = &featured
		}
	}

	pagination := service.Pagination{
		Page:           queryInt(c, "page", 1),
		Limit:          queryInt(c, "limit", 20),
		OrderBy:        c.QueryParam("orderBy"),
		OrderDirection: c.QueryParam("orderDirection"),
	}

	page, err := h.products.FindAll(filters, pagination)
	if err != nil {
		log.Error("Failed to list products", zap.Error(err))
		return writeServiceError(c, err)
	}

	log.Info("Products retrieved",
		zap.Int("count", len(page.Products)),
		zap.Int64("total", page.Pagination.Total))
	return c.JSON(http.StatusOK, page)
}

// Stats returns the aggregate product counters
func (h *ProductHandler) Stats(c echo.Context) error {
	log := logger.FromContext(c)

	stats, err := h.products.Stats()
	if err != nil {
		log.Error("Failed to compute product stats", zap.Error(err))
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, stats)
}

// LowStock lists products at or below their minimum threshold
func (h *ProductHandler) LowStock(c echo.Context) error {
	log := logger.FromContext(c)

	products, err := h.products.LowStock(queryInt(c, "limit", 10))
	if err != nil {
		log.Error("Failed to list low-stock products", zap.Error(err))
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, products)
}

// OutOfStock lists products with no stock left
func (h *ProductHandler) OutOfStock(c echo.Context) error {
	log := logger.FromContext(c)

	products, err := h.products.OutOfStock(queryInt(c, "limit", 10))
	if err != nil {
		log.Error("Failed to list out-of-stock products", zap.Error(err))
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, products)
}

// Featured lists active featured products
func (h *ProductHandler) Featured(c echo.Context) error {
	log := logger.FromContext(c)

	products, err := h.products.Featured(queryInt(c, "limit", 10))
	if err != nil {
		log.Error("Failed to list featured products", zap.Error(err))
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, products)
}

// ByCategory lists active products in one category
func (h *ProductHandler) ByCategory(c echo.Context) error {
	log := logger.FromContext(c)

	categoryID, err := parseID(c, "categoryId")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid category id"})
	}

	products, err := h.products.ByCategory(categoryID, queryInt(c, "limit", 20))
	if err != nil {
		log.Error("Failed to list products by category",
			zap.Uint("category_id", categoryID),
			zap.Error(err))
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, products)
}

// Search lists active products matching a free-text term
func (h *ProductHandler) Search(c echo.Context) error {
	log := logger.FromContext(c)

	term := c.QueryParam("q")
	if term == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "q is required"})
	}

	products, err := h.products.Search(term, queryInt(c, "limit", 20))
	if err != nil {
		log.Error("Failed to search products", zap.String("term", term), zap.Error(err))
		return writeServiceError(c, err)
	}

	log.Info("Product search completed",
		zap.String("term", term),
		zap.Int("count", len(products)))
	return c.JSON(http.StatusOK, products)
}

// Get returns a single product and counts the view
func (h *ProductHandler) Get(c echo.Context) error {
	log := logger.FromContext(c)

	id, err := parseID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid product id"})
	}

	product, err := h.products.FindOne(id)
	if err != nil {
		log.Warn("Product lookup failed", zap.Uint("product_id", id), zap.Error(err))
		return writeServiceError(c, err)
	}
	prometheus.ProductViews.Inc()

	log.Info("Product retrieved",
		zap.Uint("product_id", product.ID),
		zap.String("sku", product.SKU))
	return c.JSON(http.StatusOK, product)
}

// Update handles patching an existing product
func (h *ProductHandler) Update(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.ProductOperations.WithLabelValues("update").Inc()

	actorID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		log.Warn("Missing user_id in context")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing authorization token"})
	}

	id, err := parseID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid product id"})
	}

	var req service.UpdateProductInput
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Uint("product_id", id), zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}
	if req.Price != nil && *req.Price < 0 {
		log.Warn("Negative product price", zap.Float64("price", *req.Price))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "price must not be negative"})
	}
	if req.SalePrice != nil && *req.SalePrice < 0 {
		log.Warn("Negative sale price", zap.Float64("sale_price", *req.SalePrice))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "sale price must not be negative"})
	}

	product, err := h.products.Update(id, req, actorID)
	if err != nil {
		log.Warn("Failed to update product", zap.Uint("product_id", id), zap.Error(err))
		return writeServiceError(c, err)
	}

	log.Info("Product updated",
		zap.Uint("product_id", product.ID),
		zap.String("sku", product.SKU))
	return c.JSON(http.StatusOK, product)
}

// Delete removes a product
func (h *ProductHandler) Delete(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.ProductOperations.WithLabelValues("delete").Inc()

	id, err := parseID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid product id"})
	}

	if err := h.products.Remove(id); err != nil {
		log.Warn("Failed to delete product", zap.Uint("product_id", id), zap.Error(err))
		return writeServiceError(c, err)
	}

	log.Info("Product deleted", zap.Uint("product_id", id))
	return c.NoContent(http.StatusNoContent)
}

func queryInt(c echo.Context, name string, fallback int) int {
	if v := c.QueryParam(name); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
