package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/supportta-projects/waterpurifier-sub000/internal/ids"
	"github.com/supportta-projects/waterpurifier-sub000/internal/models"
	"github.com/supportta-projects/waterpurifier-sub000/internal/repository"
	"go.uber.org/zap"
)

type CustomerHandler struct {
	repos *repository.Repositories
	gen   *ids.Generator
}

func NewCustomerHandler(repos *repository.Repositories, gen *ids.Generator) *CustomerHandler {
	return &CustomerHandler{repos: repos, gen: gen}
}

// CreateCustomer creates new customer
func (h *CustomerHandler) CreateCustomer(c *gin.Context) {
	var req models.CreateCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	ctx := c.Request.Context()
	email := strings.ToLower(strings.TrimSpace(req.Email))
	taken, err := h.repos.Customers.EmailTaken(ctx, email, 0)
	if err != nil {
		respondError(c, err)
		return
	}
	if taken {
		c.JSON(http.StatusConflict, models.ErrorResponse{
			Error:   "customer_exists",
			Message: "customer with this email already exists",
			Code:    http.StatusConflict,
		})
		return
	}

	customID, err := h.gen.Reserve(ctx, ids.PrefixCustomer, h.repos.Customers.CustomIDExists())
	if err != nil {
		respondError(c, err)
		return
	}

	customer := models.Customer{
		ID:       h.gen.NextID(),
		CustomID: customID,
		Name:     strings.TrimSpace(req.Name),
		Email:    email,
		Phone:    strings.TrimSpace(req.Phone),
		Address:  req.Address,
		IsActive: true,
	}
	if err := h.repos.Customers.Create(ctx, &customer); err != nil {
		respondError(c, err)
		return
	}

	zap.L().Info("customer created", zap.String("customer", customer.CustomID))
	c.JSON(http.StatusCreated, customer)
}

func (h *CustomerHandler) GetCustomers(c *gin.Context) {
	p := pageFromQuery(c)
	f := repository.CustomerFilter{
		Query:  strings.TrimSpace(c.Query("q")),
		Active: queryBool(c, "active"),
	}

	customers, total, err := h.repos.Customers.List(c.Request.Context(), f, p)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, listResponse("customers", customers, total, p))
}

func (h *CustomerHandler) GetCustomer(c *gin.Context) {
	id, ok := paramID(c, "customer")
	if !ok {
		return
	}

	customer, err := h.repos.Customers.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, customer)
}

func (h *CustomerHandler) UpdateCustomer(c *gin.Context) {
	id, ok := paramID(c, "customer")
	if !ok {
		return
	}

	var req models.UpdateCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	ctx := c.Request.Context()
	customer, err := h.repos.Customers.Get(ctx, id)
	if err != nil {
		respondError(c, err)
		return
	}

	if req.Name != "" {
		customer.Name = strings.TrimSpace(req.Name)
	}
	if req.Phone != "" {
		customer.Phone = strings.TrimSpace(req.Phone)
	}
	if req.Address != "" {
		customer.Address = req.Address
	}
	if req.IsActive != nil {
		customer.IsActive = *req.IsActive
	}
	if req.Email != "" {
		email := strings.ToLower(strings.TrimSpace(req.Email))
		taken, err := h.repos.Customers.EmailTaken(ctx, email, id)
		if err != nil {
			respondError(c, err)
			return
		}
		if taken {
			respondError(c, errEmailInUse)
			return
		}
		customer.Email = email
	}

	if err := h.repos.Customers.Save(ctx, customer); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, customer)
}

func (h *CustomerHandler) DeleteCustomer(c *gin.Context) {
	id, ok := paramID(c, "customer")
	if !ok {
		return
	}

	if err := h.repos.Customers.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "customer deleted successfully"})
}
