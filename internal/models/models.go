package models

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

type Role string

const (
	RoleAdmin      Role = "ADMIN"
	RoleStaff      Role = "STAFF"
	RoleTechnician Role = "TECHNICIAN"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleStaff, RoleTechnician:
		return true
	}
	return false
}

type ProductStatus string

const (
	ProductActive       ProductStatus = "ACTIVE"
	ProductComingSoon   ProductStatus = "COMING_SOON"
	ProductDiscontinued ProductStatus = "DISCONTINUED"
)

func (s ProductStatus) Valid() bool {
	switch s {
	case ProductActive, ProductComingSoon, ProductDiscontinued:
		return true
	}
	return false
}

type OrderStatus string

const (
	OrderPending   OrderStatus = "PENDING"
	OrderFulfilled OrderStatus = "FULFILLED"
	OrderCancelled OrderStatus = "CANCELLED"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderPending, OrderFulfilled, OrderCancelled:
		return true
	}
	return false
}

type ServiceType string

const (
	ServiceManual    ServiceType = "MANUAL"
	ServiceQuarterly ServiceType = "QUARTERLY"
)

func (t ServiceType) Valid() bool {
	return t == ServiceManual || t == ServiceQuarterly
}

type ServiceStatus string

const (
	ServiceAvailable  ServiceStatus = "AVAILABLE"
	ServiceAssigned   ServiceStatus = "ASSIGNED"
	ServiceInProgress ServiceStatus = "IN_PROGRESS"
	ServiceCompleted  ServiceStatus = "COMPLETED"
)

func (s ServiceStatus) Valid() bool {
	switch s {
	case ServiceAvailable, ServiceAssigned, ServiceInProgress, ServiceCompleted:
		return true
	}
	return false
}

type InvoiceType string

const (
	InvoiceForOrder   InvoiceType = "ORDER"
	InvoiceForService InvoiceType = "SERVICE"
)

type InvoiceStatus string

const (
	InvoicePending   InvoiceStatus = "PENDING"
	InvoiceSent      InvoiceStatus = "SENT"
	InvoicePaid      InvoiceStatus = "PAID"
	InvoiceCancelled InvoiceStatus = "CANCELLED"
)

func (s InvoiceStatus) Valid() bool {
	switch s {
	case InvoicePending, InvoiceSent, InvoicePaid, InvoiceCancelled:
		return true
	}
	return false
}

// Customer - customer owning one or more purifiers
type Customer struct {
	ID        snowflake.ID `json:"id" gorm:"primaryKey;autoIncrement:false"`
	CustomID  string       `json:"custom_id" gorm:"size:20;uniqueIndex;not null"`
	Name      string       `json:"name" gorm:"not null"`
	Email     string       `json:"email" gorm:"not null;index"`
	Phone     string       `json:"phone"`
	Address   string       `json:"address"`
	IsActive  bool         `json:"is_active" gorm:"not null"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

type Product struct {
	ID                    snowflake.ID    `json:"id" gorm:"primaryKey;autoIncrement:false"`
	CustomID              string          `json:"custom_id" gorm:"size:20;uniqueIndex;not null"`
	Name                  string          `json:"name" gorm:"not null"`
	Description           string          `json:"description"`
	Price                 decimal.Decimal `json:"price" gorm:"type:decimal(12,2);not null"`
	Status                ProductStatus   `json:"status" gorm:"size:20;index;not null"`
	ServiceIntervalMonths int             `json:"service_interval_months" gorm:"not null"`
	CreatedAt             time.Time       `json:"created_at"`
	UpdatedAt             time.Time       `json:"updated_at"`
}

type Order struct {
	ID            snowflake.ID    `json:"id" gorm:"primaryKey;autoIncrement:false"`
	CustomID      string          `json:"custom_id" gorm:"size:20;uniqueIndex;not null"`
	CustomerID    snowflake.ID    `json:"customer_id" gorm:"index;not null"`
	CustomerName  string          `json:"customer_name"`
	ProductID     snowflake.ID    `json:"product_id" gorm:"index;not null"`
	ProductName   string          `json:"product_name"`
	Quantity      int             `json:"quantity" gorm:"not null"`
	UnitPrice     decimal.Decimal `json:"unit_price" gorm:"type:decimal(12,2);not null"`
	TotalAmount   decimal.Decimal `json:"total_amount" gorm:"type:decimal(12,2);not null"`
	Status        OrderStatus     `json:"status" gorm:"size:20;index;not null"`
	InvoiceID     *snowflake.ID   `json:"invoice_id"`
	InvoiceNumber *string         `json:"invoice_number"`
	InvoiceStatus *InvoiceStatus  `json:"invoice_status" gorm:"size:20"`
	Notes         string          `json:"notes"`
	CreatedBy     snowflake.ID    `json:"created_by"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// Service is a maintenance or installation visit
type Service struct {
	ID             snowflake.ID  `json:"id" gorm:"primaryKey;autoIncrement:false"`
	CustomID       string        `json:"custom_id" gorm:"size:20;uniqueIndex;not null"`
	CustomerID     snowflake.ID  `json:"customer_id" gorm:"index;not null"`
	CustomerName   string        `json:"customer_name"`
	CustomerPhone  string        `json:"customer_phone"`
	ProductID      snowflake.ID  `json:"product_id" gorm:"index;not null"`
	ProductName    string        `json:"product_name"`
	OrderID        *snowflake.ID `json:"order_id" gorm:"index"`
	TechnicianID   *snowflake.ID `json:"technician_id" gorm:"index"`
	TechnicianName *string       `json:"technician_name"`
	ServiceType    ServiceType   `json:"service_type" gorm:"size:20;not null"`
	Status         ServiceStatus `json:"status" gorm:"size:20;index;not null"`
	ScheduledDate  time.Time     `json:"scheduled_date" gorm:"index;not null"`
	CompletedDate  *time.Time    `json:"completed_date"`
	InvoiceID      *snowflake.ID `json:"invoice_id"`
	FollowUpID     *snowflake.ID `json:"follow_up_id"`
	Notes          string        `json:"notes"`
	CreatedBy      snowflake.ID  `json:"created_by"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`
}

type Invoice struct {
	ID            snowflake.ID    `json:"id" gorm:"primaryKey;autoIncrement:false"`
	InvoiceNumber string          `json:"invoice_number" gorm:"size:20;uniqueIndex;not null"`
	InvoiceType   InvoiceType     `json:"invoice_type" gorm:"size:20;index;not null"`
	OrderID       *snowflake.ID   `json:"order_id" gorm:"index"`
	ServiceID     *snowflake.ID   `json:"service_id" gorm:"index"`
	CustomerID    snowflake.ID    `json:"customer_id" gorm:"index;not null"`
	CustomerName  string          `json:"customer_name"`
	CustomerPhone string          `json:"customer_phone"`
	CustomerEmail string          `json:"customer_email"`
	ProductID     snowflake.ID    `json:"product_id"`
	ProductName   string          `json:"product_name"`
	Quantity      int             `json:"quantity"`
	UnitPrice     decimal.Decimal `json:"unit_price" gorm:"type:decimal(12,2);not null"`
	TotalAmount   decimal.Decimal `json:"total_amount" gorm:"type:decimal(12,2);not null"`
	Status        InvoiceStatus   `json:"status" gorm:"size:20;index;not null"`
	ShareURL      string          `json:"share_url"`
	ShareToken    string          `json:"-" gorm:"size:64;uniqueIndex;not null"`
	Notes         string          `json:"notes"`
	CreatedBy     snowflake.ID    `json:"created_by" gorm:"index"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// User is an admin, staff member or technician. Email is stored lower-cased.
type User struct {
	ID           snowflake.ID `json:"id" gorm:"primaryKey;autoIncrement:false"`
	CustomID     string       `json:"custom_id" gorm:"size:20;uniqueIndex;not null"`
	Name         string       `json:"name" gorm:"not null"`
	Email        string       `json:"email" gorm:"size:255;uniqueIndex;not null"`
	Phone        string       `json:"phone"`
	Role         Role         `json:"role" gorm:"size:20;index;not null"`
	IsActive     bool         `json:"is_active" gorm:"not null"`
	PasswordHash string       `json:"-" gorm:"not null"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

// Tables lists every persisted model in migration order.
var Tables = []interface{}{
	&User{},
	&Customer{},
	&Product{},
	&Order{},
	&Service{},
	&Invoice{},
}

type CreateCustomerRequest struct {
	Name    string `json:"name" binding:"required"`
	Email   string `json:"email" binding:"required,email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

type UpdateCustomerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email" binding:"omitempty,email"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
	IsActive *bool  `json:"is_active"`
}

type CreateProductRequest struct {
	Name                  string          `json:"name" binding:"required"`
	Description           string          `json:"description"`
	Price                 decimal.Decimal `json:"price"`
	Status                ProductStatus   `json:"status"`
	ServiceIntervalMonths int             `json:"service_interval_months" binding:"omitempty,min=1,max=24"`
}

type UpdateProductRequest struct {
	Name                  string           `json:"name"`
	Description           *string          `json:"description"`
	Price                 *decimal.Decimal `json:"price"`
	Status                ProductStatus    `json:"status"`
	ServiceIntervalMonths *int             `json:"service_interval_months" binding:"omitempty,min=1,max=24"`
}

type CreateOrderRequest struct {
	CustomerID snowflake.ID    `json:"customer_id" binding:"required"`
	ProductID  snowflake.ID    `json:"product_id" binding:"required"`
	Quantity   int             `json:"quantity" binding:"required"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	Notes      string          `json:"notes"`
}

type UpdateOrderStatusRequest struct {
	Status OrderStatus `json:"status" binding:"required"`
}

type CreateServiceRequest struct {
	CustomerID    snowflake.ID  `json:"customer_id" binding:"required"`
	ProductID     snowflake.ID  `json:"product_id" binding:"required"`
	OrderID       *snowflake.ID `json:"order_id"`
	ServiceType   ServiceType   `json:"service_type"`
	ScheduledDate time.Time     `json:"scheduled_date" binding:"required"`
	Notes         string        `json:"notes"`
}

type AssignServiceRequest struct {
	TechnicianID snowflake.ID `json:"technician_id" binding:"required"`
}

type UpdateServiceStatusRequest struct {
	Status         ServiceStatus `json:"status" binding:"required"`
	TechnicianID   *snowflake.ID `json:"technician_id"`
	TechnicianName string        `json:"technician_name"`
}

type CreateServiceInvoiceRequest struct {
	Amount decimal.Decimal `json:"amount"`
	Notes  string          `json:"notes"`
}

type UpdateInvoiceStatusRequest struct {
	Status InvoiceStatus `json:"status" binding:"required"`
}

type CreateStaffRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Phone    string `json:"phone"`
	Role     Role   `json:"role" binding:"required"`
	Password string `json:"password"`
}

type UpdateStaffRequest struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Role  Role   `json:"role"`
}

type UpdateStaffStatusRequest struct {
	IsActive *bool `json:"is_active" binding:"required"`
}

type ResetPasswordRequest struct {
	Password string `json:"password"`
}

// StaffCreatedResponse carries the generated password; it is only ever returned here.
type StaffCreatedResponse struct {
	User     User   `json:"user"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type AuthResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	ExpiresIn    int64  `json:"expires_in"`
	TokenType    string `json:"token_type"`
	User         *User  `json:"user,omitempty"`
	Home         string `json:"home,omitempty"`
}

type ErrorResponse struct {
	Error    string `json:"error"`
	Message  string `json:"message"`
	Code     int    `json:"code"`
	Redirect string `json:"redirect,omitempty"`
}
