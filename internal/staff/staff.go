// Package staff provisions staff and technician accounts.
package staff

import (
	"context"
	"crypto/rand"
	"math/big"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/supportta-projects/waterpurifier-sub000/internal/auth"
	"github.com/supportta-projects/waterpurifier-sub000/internal/ids"
	"github.com/supportta-projects/waterpurifier-sub000/internal/models"
	"github.com/supportta-projects/waterpurifier-sub000/internal/repository"
	"go.uber.org/zap"
)

const (
	GeneratedPasswordLength = 12
	MinPasswordLength       = 8

	passwordAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz23456789@#$%"
)

// Error carries a stable code the client can switch on.
type Error struct {
	Code    string
	Message string
}

func (e *Error) Error() string { return e.Message }

var (
	ErrEmailInUse   = &Error{Code: "email-already-in-use", Message: "This email is already registered."}
	ErrInvalidEmail = &Error{Code: "invalid-email", Message: "Please enter a valid email address."}
	ErrWeakPassword = &Error{Code: "weak-password", Message: "Password must be at least 8 characters."}
	ErrInvalidRole  = &Error{Code: "invalid-role", Message: "Role must be STAFF or TECHNICIAN."}
	ErrNameRequired = &Error{Code: "name-required", Message: "Name is required."}
	ErrNotFound     = &Error{Code: "user-not-found", Message: "Staff member not found."}
	ErrSelfDisable  = &Error{Code: "self-deactivation", Message: "You cannot deactivate your own account."}
)

const genericMessage = "Failed to save staff member. Please try again."

// ErrorMessage returns the user-facing text for err.
func ErrorMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return genericMessage
}

// ErrorCode returns the code of err, or "unknown".
func ErrorCode(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return "unknown"
}

var validate = validator.New()

func validEmail(email string) bool {
	return validate.Var(email, "required,email") == nil
}

func staffRole(r models.Role) bool {
	return r == models.RoleStaff || r == models.RoleTechnician
}

type Service struct {
	repos *repository.Repositories
	gen   *ids.Generator
}

func NewService(repos *repository.Repositories, gen *ids.Generator) *Service {
	return &Service{repos: repos, gen: gen}
}

// GeneratePassword returns a random password of n characters.
func GeneratePassword(n int) (string, error) {
	size := big.NewInt(int64(len(passwordAlphabet)))
	b := make([]byte, n)
	for i := range b {
		idx, err := rand.Int(rand.Reader, size)
		if err != nil {
			return "", errors.Wrap(err, "generate password")
		}
		b[i] = passwordAlphabet[idx.Int64()]
	}
	return string(b), nil
}

func passwordOrGenerated(password string) (string, error) {
	if password == "" {
		return GeneratePassword(GeneratedPasswordLength)
	}
	if len(password) < MinPasswordLength {
		return "", ErrWeakPassword
	}
	return password, nil
}

// Create registers a STAFF or TECHNICIAN account. The clear password is
// only ever returned here.
func (s *Service) Create(ctx context.Context, req models.CreateStaffRequest) (*models.StaffCreatedResponse, error) {
	name := strings.TrimSpace(req.Name)
	email := strings.ToLower(strings.TrimSpace(req.Email))
	switch {
	case name == "":
		return nil, ErrNameRequired
	case !staffRole(req.Role):
		return nil, ErrInvalidRole
	case !validEmail(email):
		return nil, ErrInvalidEmail
	}

	password, err := passwordOrGenerated(req.Password)
	if err != nil {
		return nil, err
	}

	taken, err := s.repos.Users.EmailExists(ctx, email)
	if err != nil {
		return nil, errors.Wrap(err, "check email")
	}
	if taken {
		return nil, ErrEmailInUse
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}
	customID, err := s.gen.Reserve(ctx, ids.PrefixUser, s.repos.Users.CustomIDExists())
	if err != nil {
		return nil, err
	}

	user := models.User{
		ID:           s.gen.NextID(),
		CustomID:     customID,
		Name:         name,
		Email:        email,
		Phone:        strings.TrimSpace(req.Phone),
		Role:         req.Role,
		IsActive:     true,
		PasswordHash: hash,
	}
	if err := s.repos.Users.Create(ctx, &user); err != nil {
		return nil, errors.Wrap(err, "create user")
	}

	zap.L().Info("staff account created",
		zap.String("user", user.CustomID),
		zap.String("role", string(user.Role)))
	return &models.StaffCreatedResponse{User: user, Password: password}, nil
}

// List returns staff and technicians, never administrators.
func (s *Service) List(ctx context.Context, f repository.UserFilter, p repository.Page) ([]models.User, int64, error) {
	roles := f.Roles[:0:0]
	for _, r := range f.Roles {
		if staffRole(r) {
			roles = append(roles, r)
		}
	}
	if len(roles) == 0 {
		roles = []models.Role{models.RoleStaff, models.RoleTechnician}
	}
	f.Roles = roles
	return s.repos.Users.List(ctx, f, p)
}

func (s *Service) Get(ctx context.Context, id snowflake.ID) (*models.User, error) {
	u, err := s.repos.Users.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if !staffRole(u.Role) {
		return nil, ErrNotFound
	}
	return u, nil
}

func (s *Service) Update(ctx context.Context, id snowflake.ID, req models.UpdateStaffRequest) (*models.User, error) {
	u, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if name := strings.TrimSpace(req.Name); name != "" {
		u.Name = name
	}
	if req.Phone != "" {
		u.Phone = strings.TrimSpace(req.Phone)
	}
	if req.Role != "" {
		if !staffRole(req.Role) {
			return nil, ErrInvalidRole
		}
		u.Role = req.Role
	}
	if err := s.repos.Users.Save(ctx, u); err != nil {
		return nil, errors.Wrap(err, "update user")
	}
	return u, nil
}

// SetActive enables or disables an account. A disabled account is rejected
// by the route guard on its next request.
func (s *Service) SetActive(ctx context.Context, actor *auth.Session, id snowflake.ID, active bool) (*models.User, error) {
	if !active && actor != nil && actor.UserID == id {
		return nil, ErrSelfDisable
	}
	u, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	u.IsActive = active
	if err := s.repos.Users.Save(ctx, u); err != nil {
		return nil, errors.Wrap(err, "update user")
	}
	zap.L().Info("staff account status changed",
		zap.String("user", u.CustomID),
		zap.Bool("active", active))
	return u, nil
}

// ResetPassword sets a new password, generating one when password is empty,
// and returns the clear text.
func (s *Service) ResetPassword(ctx context.Context, id snowflake.ID, password string) (string, error) {
	u, err := s.Get(ctx, id)
	if err != nil {
		return "", err
	}
	password, err = passwordOrGenerated(password)
	if err != nil {
		return "", err
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return "", err
	}
	u.PasswordHash = hash
	if err := s.repos.Users.Save(ctx, u); err != nil {
		return "", errors.Wrap(err, "update user")
	}
	return password, nil
}
