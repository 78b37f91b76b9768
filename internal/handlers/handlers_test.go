package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/supportta-projects/waterpurifier-sub000/internal/auth"
	"github.com/supportta-projects/waterpurifier-sub000/internal/billing"
	"github.com/supportta-projects/waterpurifier-sub000/internal/events"
	"github.com/supportta-projects/waterpurifier-sub000/internal/ids"
	"github.com/supportta-projects/waterpurifier-sub000/internal/middleware"
	"github.com/supportta-projects/waterpurifier-sub000/internal/models"
	"github.com/supportta-projects/waterpurifier-sub000/internal/repository"
	"github.com/supportta-projects/waterpurifier-sub000/internal/servicing"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(models.Tables...))
	return db
}

type testEnv struct {
	db        *gorm.DB
	repos     *repository.Repositories
	gen       *ids.Generator
	bus       *events.Bus
	billing   *billing.Service
	servicing *servicing.Service

	admin *auth.Session
	staff *auth.Session
	tech  *auth.Session

	technician models.User
	customer   models.Customer
	product    models.Product
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := setupTestDB(t)
	gen, err := ids.NewGenerator(1)
	require.NoError(t, err)
	repos := repository.New(db)
	bus := events.NewBus()

	e := &testEnv{
		db:        db,
		repos:     repos,
		gen:       gen,
		bus:       bus,
		billing:   billing.NewService(repos, gen, bus, billing.Options{CompanyName: "AquaPure", PublicBaseURL: "https://app.example.com", CountryCode: "+91"}),
		servicing: servicing.NewService(repos, gen, bus),
	}

	admin := e.createUser(t, "USR-000001", "Asha Admin", "admin@example.com", models.RoleAdmin, true)
	staffUser := e.createUser(t, "USR-000002", "Sona Staff", "staff@example.com", models.RoleStaff, true)
	e.technician = e.createUser(t, "USR-000003", "Ravi Tech", "ravi@example.com", models.RoleTechnician, true)
	e.admin = auth.SessionFromUser(&admin)
	e.staff = auth.SessionFromUser(&staffUser)
	e.tech = auth.SessionFromUser(&e.technician)

	e.customer = models.Customer{
		ID:       gen.NextID(),
		CustomID: "CUS-000001",
		Name:     "Meera Pillai",
		Email:    "meera@example.com",
		Phone:    "9847012345",
		IsActive: true,
	}
	require.NoError(t, db.Create(&e.customer).Error)

	e.product = models.Product{
		ID:                    gen.NextID(),
		CustomID:              "PRD-000001",
		Name:                  "RO Purifier X1",
		Price:                 decimal.NewFromInt(1000),
		Status:                models.ProductActive,
		ServiceIntervalMonths: 3,
	}
	require.NoError(t, db.Create(&e.product).Error)
	return e
}

const testPassword = "correct-horse"

func (e *testEnv) createUser(t *testing.T, customID, name, email string, role models.Role, active bool) models.User {
	t.Helper()
	hash, err := auth.HashPassword(testPassword)
	require.NoError(t, err)
	u := models.User{
		ID:           e.gen.NextID(),
		CustomID:     customID,
		Name:         name,
		Email:        email,
		Phone:        "9400022222",
		Role:         role,
		IsActive:     active,
		PasswordHash: hash,
	}
	require.NoError(t, e.db.Create(&u).Error)
	return u
}

// completedService stores a service assigned to the env's technician and
// already marked completed.
func (e *testEnv) completedService(t *testing.T, customID string) models.Service {
	t.Helper()
	techID := e.technician.ID
	name := e.technician.Name
	done := time.Now()
	svc := models.Service{
		ID:             e.gen.NextID(),
		CustomID:       customID,
		CustomerID:     e.customer.ID,
		CustomerName:   e.customer.Name,
		CustomerPhone:  e.customer.Phone,
		ProductID:      e.product.ID,
		ProductName:    e.product.Name,
		ServiceType:    models.ServiceManual,
		Status:         models.ServiceCompleted,
		TechnicianID:   &techID,
		TechnicianName: &name,
		ScheduledDate:  done.Add(-time.Hour),
		CompletedDate:  &done,
		CreatedBy:      e.admin.UserID,
	}
	require.NoError(t, e.db.Create(&svc).Error)
	return svc
}

type call struct {
	method  string
	path    string
	body    interface{}
	session *auth.Session
	params  gin.Params
}

func perform(h gin.HandlerFunc, in call) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	var body *bytes.Buffer
	switch b := in.body.(type) {
	case nil:
		body = &bytes.Buffer{}
	case string:
		body = bytes.NewBufferString(b)
	default:
		raw, _ := json.Marshal(b)
		body = bytes.NewBuffer(raw)
	}
	req, _ := http.NewRequest(in.method, in.path, body)
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	c.Params = in.params
	if in.session != nil {
		middleware.SetSession(c, in.session)
	}
	h(c)
	return w
}

func idParam(id interface{ String() string }) gin.Params {
	return gin.Params{{Key: "id", Value: id.String()}}
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v))
}
