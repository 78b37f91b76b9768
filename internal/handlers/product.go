package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/supportta-projects/waterpurifier-sub000/internal/billing"
	"github.com/supportta-projects/waterpurifier-sub000/internal/ids"
	"github.com/supportta-projects/waterpurifier-sub000/internal/models"
	"github.com/supportta-projects/waterpurifier-sub000/internal/repository"
	"github.com/supportta-projects/waterpurifier-sub000/internal/servicing"
	"go.uber.org/zap"
)

type ProductHandler struct {
	repos *repository.Repositories
	gen   *ids.Generator
}

func NewProductHandler(repos *repository.Repositories, gen *ids.Generator) *ProductHandler {
	return &ProductHandler{repos: repos, gen: gen}
}

func (h *ProductHandler) CreateProduct(c *gin.Context) {
	var req models.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if !billing.ValidAmount(req.Price) {
		respondError(c, errInvalidPrice)
		return
	}
	if req.Status == "" {
		req.Status = models.ProductActive
	}
	if !req.Status.Valid() {
		respondError(c, errInvalidStatus)
		return
	}
	if req.ServiceIntervalMonths == 0 {
		req.ServiceIntervalMonths = servicing.DefaultIntervalMonths
	}

	ctx := c.Request.Context()
	customID, err := h.gen.Reserve(ctx, ids.PrefixProduct, h.repos.Products.CustomIDExists())
	if err != nil {
		respondError(c, err)
		return
	}

	product := models.Product{
		ID:                    h.gen.NextID(),
		CustomID:              customID,
		Name:                  strings.TrimSpace(req.Name),
		Description:           req.Description,
		Price:                 req.Price,
		Status:                req.Status,
		ServiceIntervalMonths: req.ServiceIntervalMonths,
	}
	if err := h.repos.Products.Create(ctx, &product); err != nil {
		respondError(c, err)
		return
	}

	zap.L().Info("product created", zap.String("product", product.CustomID))
	c.JSON(http.StatusCreated, product)
}

func (h *ProductHandler) GetProducts(c *gin.Context) {
	p := pageFromQuery(c)
	f := repository.ProductFilter{
		Query:  strings.TrimSpace(c.Query("q")),
		Status: models.ProductStatus(strings.ToUpper(c.Query("status"))),
	}

	products, total, err := h.repos.Products.List(c.Request.Context(), f, p)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, listResponse("products", products, total, p))
}

func (h *ProductHandler) GetProduct(c *gin.Context) {
	id, ok := paramID(c, "product")
	if !ok {
		return
	}

	product, err := h.repos.Products.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	id, ok := paramID(c, "product")
	if !ok {
		return
	}

	var req models.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	ctx := c.Request.Context()
	product, err := h.repos.Products.Get(ctx, id)
	if err != nil {
		respondError(c, err)
		return
	}

	if req.Name != "" {
		product.Name = strings.TrimSpace(req.Name)
	}
	if req.Description != nil {
		product.Description = *req.Description
	}
	if req.Price != nil {
		if !billing.ValidAmount(*req.Price) {
			respondError(c, errInvalidPrice)
			return
		}
		product.Price = *req.Price
	}
	if req.Status != "" {
		if !req.Status.Valid() {
			respondError(c, errInvalidStatus)
			return
		}
		product.Status = req.Status
	}
	if req.ServiceIntervalMonths != nil {
		if *req.ServiceIntervalMonths < 1 || *req.ServiceIntervalMonths > 24 {
			respondError(c, errInvalidInterval)
			return
		}
		product.ServiceIntervalMonths = *req.ServiceIntervalMonths
	}

	if err := h.repos.Products.Save(ctx, product); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	id, ok := paramID(c, "product")
	if !ok {
		return
	}

	if err := h.repos.Products.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "product deleted successfully"})
}
