package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/supportta-projects/waterpurifier-sub000/internal/billing"
	"github.com/supportta-projects/waterpurifier-sub000/internal/middleware"
	"github.com/supportta-projects/waterpurifier-sub000/internal/models"
	"github.com/supportta-projects/waterpurifier-sub000/internal/repository"
)

type OrderHandler struct {
	repos   *repository.Repositories
	billing *billing.Service
}

func NewOrderHandler(repos *repository.Repositories, billing *billing.Service) *OrderHandler {
	return &OrderHandler{repos: repos, billing: billing}
}

// CreateOrder places an order and raises its invoice in one step.
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	var req models.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	order, invoice, err := h.billing.CreateOrder(c.Request.Context(), middleware.CurrentSession(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"order": order, "invoice": invoice})
}

func (h *OrderHandler) GetOrders(c *gin.Context) {
	p := pageFromQuery(c)
	f := repository.OrderFilter{
		Status:     models.OrderStatus(strings.ToUpper(c.Query("status"))),
		CustomerID: queryID(c, "customer_id"),
	}

	orders, total, err := h.repos.Orders.List(c.Request.Context(), f, p)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, listResponse("orders", orders, total, p))
}

func (h *OrderHandler) GetOrder(c *gin.Context) {
	id, ok := paramID(c, "order")
	if !ok {
		return
	}

	order, err := h.repos.Orders.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *OrderHandler) UpdateOrderStatus(c *gin.Context) {
	id, ok := paramID(c, "order")
	if !ok {
		return
	}

	var req models.UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	order, err := h.billing.UpdateOrderStatus(c.Request.Context(), middleware.CurrentSession(c), id, req.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}
