package handlers

import (
	"net/http"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/spf13/cast"
	"github.com/supportta-projects/waterpurifier-sub000/internal/auth"
	"github.com/supportta-projects/waterpurifier-sub000/internal/billing"
	"github.com/supportta-projects/waterpurifier-sub000/internal/ids"
	"github.com/supportta-projects/waterpurifier-sub000/internal/models"
	"github.com/supportta-projects/waterpurifier-sub000/internal/repository"
	"github.com/supportta-projects/waterpurifier-sub000/internal/servicing"
	"github.com/supportta-projects/waterpurifier-sub000/internal/staff"
	"go.uber.org/zap"
)

var (
	errInvalidPrice    = errors.New("price must be greater than zero with at most two decimals")
	errInvalidStatus   = errors.New("invalid status")
	errInvalidInterval = errors.New("service interval must be between 1 and 24 months")
	errEmailInUse      = errors.New("email already in use")
	errInvalidDate     = errors.New("invalid date")
)

// statusFor maps business errors to HTTP status codes. Unknown errors are 500.
var statusFor = []struct {
	err    error
	status int
}{
	{auth.ErrUnauthenticated, http.StatusUnauthorized},
	{auth.ErrInactive, http.StatusUnauthorized},
	{auth.ErrForbidden, http.StatusForbidden},

	{repository.ErrNotFound, http.StatusNotFound},
	{billing.ErrCustomerNotFound, http.StatusNotFound},
	{billing.ErrProductNotFound, http.StatusNotFound},
	{billing.ErrOrderNotFound, http.StatusNotFound},
	{billing.ErrServiceNotFound, http.StatusNotFound},
	{billing.ErrInvoiceNotFound, http.StatusNotFound},
	{servicing.ErrServiceNotFound, http.StatusNotFound},
	{servicing.ErrCustomerNotFound, http.StatusNotFound},
	{servicing.ErrProductNotFound, http.StatusNotFound},
	{staff.ErrNotFound, http.StatusNotFound},

	{billing.ErrInvalidQuantity, http.StatusBadRequest},
	{billing.ErrInvalidPrice, http.StatusBadRequest},
	{billing.ErrInvalidAmount, http.StatusBadRequest},
	{billing.ErrInvalidStatus, http.StatusBadRequest},
	{servicing.ErrInvalidStatus, http.StatusBadRequest},
	{servicing.ErrInvalidType, http.StatusBadRequest},
	{servicing.ErrScheduledDateRequired, http.StatusBadRequest},
	{servicing.ErrTechnicianRequired, http.StatusBadRequest},
	{servicing.ErrOrderMismatch, http.StatusBadRequest},
	{errInvalidPrice, http.StatusBadRequest},
	{errInvalidStatus, http.StatusBadRequest},
	{errInvalidInterval, http.StatusBadRequest},
	{errInvalidDate, http.StatusBadRequest},

	{billing.ErrCustomerInactive, http.StatusUnprocessableEntity},
	{billing.ErrProductUnavailable, http.StatusUnprocessableEntity},
	{billing.ErrServiceNotCompleted, http.StatusUnprocessableEntity},
	{servicing.ErrCustomerInactive, http.StatusUnprocessableEntity},
	{servicing.ErrTechnicianUnavailable, http.StatusUnprocessableEntity},
	{staff.ErrSelfDisable, http.StatusUnprocessableEntity},

	{billing.ErrInvoiceExists, http.StatusConflict},
	{staff.ErrEmailInUse, http.StatusConflict},
	{errEmailInUse, http.StatusConflict},
}

func respondError(c *gin.Context, err error) {
	var staffErr *staff.Error
	for _, m := range statusFor {
		if errors.Is(err, m.err) {
			resp := models.ErrorResponse{Error: m.err.Error(), Message: err.Error(), Code: m.status}
			if errors.As(err, &staffErr) {
				resp.Error = staffErr.Code
			}
			c.JSON(m.status, resp)
			return
		}
	}
	if errors.As(err, &staffErr) {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   staffErr.Code,
			Message: staffErr.Message,
			Code:    http.StatusBadRequest,
		})
		return
	}

	zap.L().Error("request failed",
		zap.String("path", c.FullPath()),
		zap.String("request_id", c.GetString("request_id")),
		zap.Error(err))
	c.JSON(http.StatusInternalServerError, models.ErrorResponse{
		Error:   "internal error",
		Message: "internal server error",
		Code:    http.StatusInternalServerError,
	})
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, models.ErrorResponse{
		Error:   "invalid request",
		Message: err.Error(),
		Code:    http.StatusBadRequest,
	})
}

// paramID parses the :id path parameter, answering 400 when it is malformed.
func paramID(c *gin.Context, what string) (snowflake.ID, bool) {
	id, err := ids.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid id",
			Message: "invalid " + what + " id",
			Code:    http.StatusBadRequest,
		})
		return 0, false
	}
	return id, true
}

// queryID parses an optional id filter; malformed values are ignored.
func queryID(c *gin.Context, key string) snowflake.ID {
	id, err := ids.Parse(c.Query(key))
	if err != nil {
		return 0
	}
	return id
}

func queryBool(c *gin.Context, key string) *bool {
	raw, ok := c.GetQuery(key)
	if !ok || raw == "" {
		return nil
	}
	b, err := cast.ToBoolE(raw)
	if err != nil {
		return nil
	}
	return &b
}

func pageFromQuery(c *gin.Context) repository.Page {
	return repository.NewPage(
		cast.ToInt(c.DefaultQuery("page", "1")),
		cast.ToInt(c.DefaultQuery("limit", "10")),
	)
}

func listResponse(key string, items interface{}, total int64, p repository.Page) gin.H {
	return gin.H{
		key:     items,
		"total": total,
		"page":  p.Page,
		"limit": p.Limit,
	}
}
