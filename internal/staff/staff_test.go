package staff

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/supportta-projects/waterpurifier-sub000/internal/auth"
	"github.com/supportta-projects/waterpurifier-sub000/internal/ids"
	"github.com/supportta-projects/waterpurifier-sub000/internal/models"
	"github.com/supportta-projects/waterpurifier-sub000/internal/repository"
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

func newTestService(t *testing.T) (*Service, *repository.Repositories) {
	t.Helper()
	gen, err := ids.NewGenerator(1)
	require.NoError(t, err)
	repos := repository.New(setupTestDB(t))
	return NewService(repos, gen), repos
}

func TestCreateStaff(t *testing.T) {
	svc, repos := newTestService(t)
	ctx := context.Background()

	res, err := svc.Create(ctx, models.CreateStaffRequest{
		Name:  " Ravi Kumar ",
		Email: "Ravi@Example.com",
		Phone: "9847012345",
		Role:  models.RoleTechnician,
	})
	require.NoError(t, err)

	assert.Len(t, res.Password, GeneratedPasswordLength)
	assert.Equal(t, "Ravi Kumar", res.User.Name)
	assert.Equal(t, "ravi@example.com", res.User.Email)
	assert.True(t, res.User.IsActive)
	assert.Regexp(t, `^USR-\d{6}$`, res.User.CustomID)

	stored, err := repos.Users.Get(ctx, res.User.ID)
	require.NoError(t, err)
	assert.NotEqual(t, res.Password, stored.PasswordHash)
	assert.True(t, auth.CheckPassword(stored.PasswordHash, res.Password))
}

func TestCreateStaffSuppliedPassword(t *testing.T) {
	svc, _ := newTestService(t)

	res, err := svc.Create(context.Background(), models.CreateStaffRequest{
		Name: "Asha", Email: "asha@example.com", Role: models.RoleStaff, Password: "s3cret-pass",
	})
	require.NoError(t, err)
	assert.Equal(t, "s3cret-pass", res.Password)
}

func TestCreateStaffDuplicateEmail(t *testing.T) {
	svc, repos := newTestService(t)
	ctx := context.Background()

	admin := models.User{ID: 99, CustomID: "USR-000099", Name: "Admin", Email: "owner@example.com", Role: models.RoleAdmin, IsActive: true, PasswordHash: "x"}
	require.NoError(t, repos.Users.Create(ctx, &admin))

	_, err := svc.Create(ctx, models.CreateStaffRequest{Name: "A", Email: "tech@example.com", Role: models.RoleTechnician})
	require.NoError(t, err)

	tests := []struct {
		name  string
		email string
		role  models.Role
	}{
		{name: "same role", email: "tech@example.com", role: models.RoleTechnician},
		{name: "different role", email: "tech@example.com", role: models.RoleStaff},
		{name: "different case", email: "TECH@example.com", role: models.RoleTechnician},
		{name: "admin email", email: "Owner@Example.com", role: models.RoleStaff},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(ctx, models.CreateStaffRequest{Name: "B", Email: tt.email, Role: tt.role})
			assert.ErrorIs(t, err, ErrEmailInUse)
			assert.Equal(t, "email-already-in-use", ErrorCode(err))
		})
	}
}

func TestCreateStaffValidation(t *testing.T) {
	svc, _ := newTestService(t)

	tests := []struct {
		name string
		req  models.CreateStaffRequest
		want error
	}{
		{name: "missing name", req: models.CreateStaffRequest{Email: "a@example.com", Role: models.RoleStaff}, want: ErrNameRequired},
		{name: "admin role", req: models.CreateStaffRequest{Name: "A", Email: "a@example.com", Role: models.RoleAdmin}, want: ErrInvalidRole},
		{name: "bad email", req: models.CreateStaffRequest{Name: "A", Email: "not-an-email", Role: models.RoleStaff}, want: ErrInvalidEmail},
		{name: "short password", req: models.CreateStaffRequest{Name: "A", Email: "a@example.com", Role: models.RoleStaff, Password: "abc"}, want: ErrWeakPassword},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), tt.req)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestErrorMessage(t *testing.T) {
	assert.Equal(t, "This email is already registered.", ErrorMessage(ErrEmailInUse))
	assert.Equal(t, "Please enter a valid email address.", ErrorMessage(ErrInvalidEmail))
	assert.Equal(t, "Password must be at least 8 characters.", ErrorMessage(ErrWeakPassword))
	assert.Equal(t, genericMessage, ErrorMessage(errors.New("network unreachable")))
	assert.Equal(t, "unknown", ErrorCode(errors.New("boom")))
}

func TestGeneratePassword(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 20; i++ {
		p, err := GeneratePassword(GeneratedPasswordLength)
		require.NoError(t, err)
		assert.Len(t, p, GeneratedPasswordLength)
		for _, c := range p {
			assert.Contains(t, passwordAlphabet, string(c))
		}
		seen[p] = true
	}
	assert.Len(t, seen, 20)
}

func TestListUpdateAndStatus(t *testing.T) {
	svc, repos := newTestService(t)
	ctx := context.Background()

	admin := models.User{ID: 99, CustomID: "USR-000099", Name: "Admin", Email: "owner@example.com", Role: models.RoleAdmin, IsActive: true, PasswordHash: "x"}
	require.NoError(t, repos.Users.Create(ctx, &admin))
	staffRes, err := svc.Create(ctx, models.CreateStaffRequest{Name: "Asha", Email: "asha@example.com", Role: models.RoleStaff})
	require.NoError(t, err)
	techRes, err := svc.Create(ctx, models.CreateStaffRequest{Name: "Ravi", Email: "ravi@example.com", Role: models.RoleTechnician})
	require.NoError(t, err)

	users, total, err := svc.List(ctx, repository.UserFilter{}, repository.NewPage(1, 10))
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	for _, u := range users {
		assert.NotEqual(t, models.RoleAdmin, u.Role)
	}

	users, total, err = svc.List(ctx, repository.UserFilter{Roles: []models.Role{models.RoleTechnician}}, repository.NewPage(1, 10))
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, "Ravi", users[0].Name)

	_, err = svc.Get(ctx, admin.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	updated, err := svc.Update(ctx, staffRes.User.ID, models.UpdateStaffRequest{Phone: "9447011111", Role: models.RoleTechnician})
	require.NoError(t, err)
	assert.Equal(t, "Asha", updated.Name)
	assert.Equal(t, "9447011111", updated.Phone)
	assert.Equal(t, models.RoleTechnician, updated.Role)

	_, err = svc.Update(ctx, staffRes.User.ID, models.UpdateStaffRequest{Role: models.RoleAdmin})
	assert.ErrorIs(t, err, ErrInvalidRole)

	actor := &auth.Session{UserID: techRes.User.ID, Role: models.RoleTechnician, Active: true}
	_, err = svc.SetActive(ctx, actor, techRes.User.ID, false)
	assert.ErrorIs(t, err, ErrSelfDisable)

	adminSession := auth.SessionFromUser(&admin)
	u, err := svc.SetActive(ctx, adminSession, techRes.User.ID, false)
	require.NoError(t, err)
	assert.False(t, u.IsActive)
}

func TestResetPassword(t *testing.T) {
	svc, repos := newTestService(t)
	ctx := context.Background()

	res, err := svc.Create(ctx, models.CreateStaffRequest{Name: "Asha", Email: "asha@example.com", Role: models.RoleStaff})
	require.NoError(t, err)

	password, err := svc.ResetPassword(ctx, res.User.ID, "")
	require.NoError(t, err)
	assert.Len(t, password, GeneratedPasswordLength)
	assert.NotEqual(t, res.Password, password)

	stored, err := repos.Users.Get(ctx, res.User.ID)
	require.NoError(t, err)
	assert.True(t, auth.CheckPassword(stored.PasswordHash, password))
	assert.False(t, auth.CheckPassword(stored.PasswordHash, res.Password))

	_, err = svc.ResetPassword(ctx, res.User.ID, "short")
	assert.ErrorIs(t, err, ErrWeakPassword)
}
