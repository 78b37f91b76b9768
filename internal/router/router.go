// Package router declares the HTTP surface and the roles allowed per route.
package router

import (
	"github.com/gin-gonic/gin"
	"github.com/supportta-projects/waterpurifier-sub000/internal/auth"
	"github.com/supportta-projects/waterpurifier-sub000/internal/billing"
	"github.com/supportta-projects/waterpurifier-sub000/internal/handlers"
	"github.com/supportta-projects/waterpurifier-sub000/internal/middleware"
	"github.com/supportta-projects/waterpurifier-sub000/internal/models"
)

type Handlers struct {
	Auth      *handlers.AuthHandler
	Customers *handlers.CustomerHandler
	Products  *handlers.ProductHandler
	Orders    *handlers.OrderHandler
	Services  *handlers.ServiceHandler
	Invoices  *handlers.InvoiceHandler
	Staff     *handlers.StaffHandler
	Dashboard *handlers.DashboardHandler
	Public    *handlers.PublicHandler
}

type Options struct {
	Issuer      *auth.Issuer
	Users       middleware.UserLoader
	CORSOrigins []string
}

var (
	adminOnly  = []models.Role{models.RoleAdmin}
	managers   = []models.Role{models.RoleAdmin, models.RoleStaff}
	technician = []models.Role{models.RoleTechnician}
)

func New(opts Options, h Handlers) *gin.Engine {
	r := gin.New()
	r.Use(
		middleware.RequestID(),
		middleware.Logger(),
		middleware.Recovery(),
		middleware.CORS(opts.CORSOrigins),
	)

	r.GET("/health", h.Public.Health)

	v1 := r.Group("/api/v1")
	v1.GET("/health", h.Public.Health)
	r.GET(billing.PublicInvoicePath+":token", h.Public.PublicInvoice)

	authGroup := v1.Group("/auth")
	{
		authGroup.POST("/login", h.Auth.Login)
		authGroup.GET("/oidc/login", h.Auth.OIDCLogin)
		authGroup.GET("/callback", h.Auth.Callback)
	}

	// every route below needs an active session; groups narrow the roles
	api := v1.Group("", middleware.Authenticate(opts.Issuer, opts.Users), middleware.RequireRoles())
	api.GET("/auth/me", h.Auth.Me)
	api.GET("/dashboard", h.Dashboard.GetDashboard)

	customers := api.Group("/customers", middleware.RequireRoles(managers...))
	{
		customers.POST("", h.Customers.CreateCustomer)
		customers.GET("", h.Customers.GetCustomers)
		customers.GET("/:id", h.Customers.GetCustomer)
		customers.PUT("/:id", h.Customers.UpdateCustomer)
		customers.DELETE("/:id", h.Customers.DeleteCustomer)
	}

	products := api.Group("/products")
	{
		products.GET("", h.Products.GetProducts)
		products.GET("/:id", h.Products.GetProduct)
		products.POST("", middleware.RequireRoles(adminOnly...), h.Products.CreateProduct)
		products.PUT("/:id", middleware.RequireRoles(adminOnly...), h.Products.UpdateProduct)
		products.DELETE("/:id", middleware.RequireRoles(adminOnly...), h.Products.DeleteProduct)
	}

	orders := api.Group("/orders", middleware.RequireRoles(managers...))
	{
		orders.POST("", h.Orders.CreateOrder)
		orders.GET("", h.Orders.GetOrders)
		orders.GET("/:id", h.Orders.GetOrder)
		orders.PATCH("/:id/status", h.Orders.UpdateOrderStatus)
	}

	services := api.Group("/services")
	{
		services.GET("", h.Services.GetServices)
		services.GET("/:id", h.Services.GetService)
		services.PATCH("/:id/status", h.Services.UpdateServiceStatus)
		services.POST("", middleware.RequireRoles(managers...), h.Services.CreateService)
		services.PUT("/:id/assign", middleware.RequireRoles(managers...), h.Services.AssignService)
		services.POST("/:id/invoice", middleware.RequireRoles(technician...), h.Services.CreateServiceInvoice)
	}

	invoices := api.Group("/invoices")
	{
		invoices.GET("", h.Invoices.GetInvoices)
		invoices.GET("/export", middleware.RequireRoles(adminOnly...), h.Invoices.ExportInvoices)
		invoices.GET("/:id", h.Invoices.GetInvoice)
		invoices.POST("/:id/share", h.Invoices.ShareInvoice)
		invoices.PATCH("/:id/status", middleware.RequireRoles(managers...), h.Invoices.UpdateInvoiceStatus)
	}

	staffGroup := api.Group("/staff", middleware.RequireRoles(adminOnly...))
	{
		staffGroup.POST("", h.Staff.CreateStaff)
		staffGroup.GET("", h.Staff.GetStaff)
		staffGroup.GET("/:id", h.Staff.GetStaffMember)
		staffGroup.PUT("/:id", h.Staff.UpdateStaff)
		staffGroup.PATCH("/:id/status", h.Staff.UpdateStaffStatus)
		staffGroup.PUT("/:id/password", h.Staff.ResetPassword)
	}

	return r
}
