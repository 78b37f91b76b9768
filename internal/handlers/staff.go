package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/supportta-projects/waterpurifier-sub000/internal/middleware"
	"github.com/supportta-projects/waterpurifier-sub000/internal/models"
	"github.com/supportta-projects/waterpurifier-sub000/internal/repository"
	"github.com/supportta-projects/waterpurifier-sub000/internal/staff"
)

type StaffHandler struct {
	staff *staff.Service
}

func NewStaffHandler(staff *staff.Service) *StaffHandler {
	return &StaffHandler{staff: staff}
}

// CreateStaff answers with the account and its one-time password.
func (h *StaffHandler) CreateStaff(c *gin.Context) {
	var req models.CreateStaffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	res, err := h.staff.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, res)
}

func (h *StaffHandler) GetStaff(c *gin.Context) {
	p := pageFromQuery(c)
	f := repository.UserFilter{
		Active: queryBool(c, "active"),
		Query:  strings.TrimSpace(c.Query("q")),
	}
	if role := models.Role(strings.ToUpper(c.Query("role"))); role != "" {
		f.Roles = []models.Role{role}
	}

	users, total, err := h.staff.List(c.Request.Context(), f, p)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, listResponse("staff", users, total, p))
}

func (h *StaffHandler) GetStaffMember(c *gin.Context) {
	id, ok := paramID(c, "staff")
	if !ok {
		return
	}

	u, err := h.staff.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

func (h *StaffHandler) UpdateStaff(c *gin.Context) {
	id, ok := paramID(c, "staff")
	if !ok {
		return
	}

	var req models.UpdateStaffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	u, err := h.staff.Update(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

func (h *StaffHandler) UpdateStaffStatus(c *gin.Context) {
	id, ok := paramID(c, "staff")
	if !ok {
		return
	}

	var req models.UpdateStaffStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	u, err := h.staff.SetActive(c.Request.Context(), middleware.CurrentSession(c), id, *req.IsActive)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

func (h *StaffHandler) ResetPassword(c *gin.Context) {
	id, ok := paramID(c, "staff")
	if !ok {
		return
	}

	var req models.ResetPasswordRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
	}

	password, err := h.staff.ResetPassword(c.Request.Context(), id, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"password": password})
}
