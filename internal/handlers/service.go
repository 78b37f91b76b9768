package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/gin-gonic/gin"
	"github.com/supportta-projects/waterpurifier-sub000/internal/billing"
	"github.com/supportta-projects/waterpurifier-sub000/internal/middleware"
	"github.com/supportta-projects/waterpurifier-sub000/internal/models"
	"github.com/supportta-projects/waterpurifier-sub000/internal/repository"
	"github.com/supportta-projects/waterpurifier-sub000/internal/servicing"
)

type ServiceHandler struct {
	services *servicing.Service
	billing  *billing.Service
	loc      *time.Location
}

// NewServiceHandler builds the handler; loc interprets date filters that
// carry no zone and defaults to UTC.
func NewServiceHandler(services *servicing.Service, billing *billing.Service, loc *time.Location) *ServiceHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &ServiceHandler{services: services, billing: billing, loc: loc}
}

func (h *ServiceHandler) CreateService(c *gin.Context) {
	var req models.CreateServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	svc, err := h.services.Create(c.Request.Context(), middleware.CurrentSession(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, svc)
}

// queryDate parses an optional date filter in any layout dateparse knows.
func (h *ServiceHandler) queryDate(c *gin.Context, key string) (*time.Time, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return nil, nil
	}
	t, err := dateparse.ParseIn(raw, h.loc)
	if err != nil {
		return nil, errInvalidDate
	}
	return &t, nil
}

func (h *ServiceHandler) GetServices(c *gin.Context) {
	from, err := h.queryDate(c, "from")
	if err != nil {
		respondError(c, err)
		return
	}
	to, err := h.queryDate(c, "to")
	if err != nil {
		respondError(c, err)
		return
	}

	p := pageFromQuery(c)
	f := repository.ServiceFilter{
		Status:       models.ServiceStatus(strings.ToUpper(c.Query("status"))),
		ServiceType:  models.ServiceType(strings.ToUpper(c.Query("service_type"))),
		CustomerID:   queryID(c, "customer_id"),
		TechnicianID: queryID(c, "technician_id"),
		From:         from,
		To:           to,
	}

	services, total, err := h.services.List(c.Request.Context(), middleware.CurrentSession(c), f, p)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, listResponse("services", services, total, p))
}

func (h *ServiceHandler) GetService(c *gin.Context) {
	id, ok := paramID(c, "service")
	if !ok {
		return
	}

	svc, err := h.services.Get(c.Request.Context(), middleware.CurrentSession(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, svc)
}

func (h *ServiceHandler) AssignService(c *gin.Context) {
	id, ok := paramID(c, "service")
	if !ok {
		return
	}

	var req models.AssignServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	svc, err := h.services.Assign(c.Request.Context(), middleware.CurrentSession(c), id, req.TechnicianID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, svc)
}

func (h *ServiceHandler) UpdateServiceStatus(c *gin.Context) {
	id, ok := paramID(c, "service")
	if !ok {
		return
	}

	var req models.UpdateServiceStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	svc, err := h.services.UpdateStatus(c.Request.Context(), middleware.CurrentSession(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, svc)
}

// CreateServiceInvoice bills a completed visit.
func (h *ServiceHandler) CreateServiceInvoice(c *gin.Context) {
	id, ok := paramID(c, "service")
	if !ok {
		return
	}

	var req models.CreateServiceInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	inv, err := h.billing.CreateServiceInvoice(c.Request.Context(), middleware.CurrentSession(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, inv)
}
