package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/supportta-projects/waterpurifier-sub000/internal/auth"
	"github.com/supportta-projects/waterpurifier-sub000/internal/middleware"
	"github.com/supportta-projects/waterpurifier-sub000/internal/models"
	"github.com/supportta-projects/waterpurifier-sub000/internal/repository"
)

type DashboardHandler struct {
	repos *repository.Repositories
}

func NewDashboardHandler(repos *repository.Repositories) *DashboardHandler {
	return &DashboardHandler{repos: repos}
}

type ManagerStats struct {
	Customers         int64            `json:"customers"`
	Orders            map[string]int64 `json:"orders"`
	Services          map[string]int64 `json:"services"`
	Invoices          map[string]int64 `json:"invoices"`
	Staff             map[string]int64 `json:"staff"`
	OutstandingAmount decimal.Decimal  `json:"outstanding_amount"`
	CollectedAmount   decimal.Decimal  `json:"collected_amount"`
}

type TechnicianStats struct {
	MyServices     map[string]int64 `json:"my_services"`
	AvailableJobs  int64            `json:"available_jobs"`
	Invoices       map[string]int64 `json:"invoices"`
	InvoicedAmount decimal.Decimal  `json:"invoiced_amount"`
}

// GetDashboard returns counters scoped to the caller's role.
func (h *DashboardHandler) GetDashboard(c *gin.Context) {
	s := middleware.CurrentSession(c)
	ctx := c.Request.Context()

	var (
		stats interface{}
		err   error
	)
	if s.IsManager() {
		stats, err = h.managerStats(ctx)
	} else {
		stats, err = h.technicianStats(ctx, s)
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"role": s.Role, "home": auth.HomePath(s.Role), "stats": stats})
}

func (h *DashboardHandler) managerStats(ctx context.Context) (*ManagerStats, error) {
	var st ManagerStats
	var err error
	if st.Customers, err = h.repos.Customers.Count(ctx); err != nil {
		return nil, err
	}
	if st.Orders, err = h.repos.Orders.CountByStatus(ctx); err != nil {
		return nil, err
	}
	if st.Services, err = h.repos.Services.CountByStatus(ctx, repository.ServiceFilter{}); err != nil {
		return nil, err
	}
	if st.Invoices, err = h.repos.Invoices.CountByStatus(ctx, repository.InvoiceFilter{}); err != nil {
		return nil, err
	}
	if st.Staff, err = h.repos.Users.CountByRole(ctx); err != nil {
		return nil, err
	}

	st.OutstandingAmount = decimal.Zero
	for _, status := range []models.InvoiceStatus{models.InvoicePending, models.InvoiceSent} {
		total, err := h.repos.Invoices.Total(ctx, repository.InvoiceFilter{Status: status})
		if err != nil {
			return nil, err
		}
		st.OutstandingAmount = st.OutstandingAmount.Add(total)
	}
	if st.CollectedAmount, err = h.repos.Invoices.Total(ctx, repository.InvoiceFilter{Status: models.InvoicePaid}); err != nil {
		return nil, err
	}
	return &st, nil
}

func (h *DashboardHandler) technicianStats(ctx context.Context, s *auth.Session) (*TechnicianStats, error) {
	var st TechnicianStats
	var err error
	if st.MyServices, err = h.repos.Services.CountByStatus(ctx, repository.ServiceFilter{TechnicianID: s.UserID}); err != nil {
		return nil, err
	}
	available, err := h.repos.Services.CountByStatus(ctx, repository.ServiceFilter{Status: models.ServiceAvailable})
	if err != nil {
		return nil, err
	}
	st.AvailableJobs = available[string(models.ServiceAvailable)]

	mine := repository.InvoiceFilter{CreatedBy: s.UserID, InvoiceType: models.InvoiceForService}
	if st.Invoices, err = h.repos.Invoices.CountByStatus(ctx, mine); err != nil {
		return nil, err
	}
	if st.InvoicedAmount, err = h.repos.Invoices.Total(ctx, mine); err != nil {
		return nil, err
	}
	return &st, nil
}
