package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/supportta-projects/waterpurifier-sub000/internal/auth"
	"github.com/supportta-projects/waterpurifier-sub000/internal/models"
	"github.com/supportta-projects/waterpurifier-sub000/internal/repository"
)

type fakeUsers map[snowflake.ID]*models.User

func (f fakeUsers) Get(_ context.Context, id snowflake.ID) (*models.User, error) {
	if u, ok := f[id]; ok {
		copied := *u
		return &copied, nil
	}
	return nil, repository.ErrNotFound
}

var (
	adminUser    = &models.User{ID: 1, Name: "Admin", Email: "admin@example.com", Role: models.RoleAdmin, IsActive: true}
	techUser     = &models.User{ID: 2, Name: "Ravi", Email: "ravi@example.com", Role: models.RoleTechnician, IsActive: true}
	inactiveUser = &models.User{ID: 3, Name: "Old", Email: "old@example.com", Role: models.RoleStaff, IsActive: false}
	deletedUser  = &models.User{ID: 4, Name: "Gone", Email: "gone@example.com", Role: models.RoleStaff, IsActive: true}
)

func expiredToken(t *testing.T, secret string) string {
	claims := &models.Claims{
		Email: adminUser.Email,
		Role:  adminUser.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   adminUser.ID.String(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func newRouter(issuer *auth.Issuer, roles ...models.Role) *gin.Engine {
	users := fakeUsers{adminUser.ID: adminUser, techUser.ID: techUser, inactiveUser.ID: inactiveUser}
	router := gin.New()
	router.Use(Authenticate(issuer, users), RequireRoles(roles...))
	router.GET("/test", func(c *gin.Context) {
		s := CurrentSession(c)
		c.JSON(http.StatusOK, gin.H{"message": "success", "email": s.Email})
	})
	return router
}

func TestAuthenticate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	issuer := auth.NewIssuer("test-secret", time.Hour, "waterpurifier")

	token := func(u *models.User) string {
		s, err := issuer.Issue(u)
		require.NoError(t, err)
		return s
	}

	tests := []struct {
		name             string
		authHeader       string
		expectedStatus   int
		expectedError    string
		expectedMessage  string
		expectedRedirect string
	}{
		{
			name:             "missing authorization header",
			expectedStatus:   http.StatusUnauthorized,
			expectedError:    "missing token",
			expectedRedirect: "/login",
		},
		{
			name:             "invalid authorization header format",
			authHeader:       "invalidformat token123",
			expectedStatus:   http.StatusUnauthorized,
			expectedError:    "invalid token format",
			expectedRedirect: "/login",
		},
		{
			name:             "missing bearer prefix",
			authHeader:       "token123",
			expectedStatus:   http.StatusUnauthorized,
			expectedError:    "invalid token format",
			expectedRedirect: "/login",
		},
		{
			name:           "valid token",
			authHeader:     "Bearer " + token(adminUser),
			expectedStatus: http.StatusOK,
		},
		{
			name:             "expired token",
			authHeader:       "Bearer " + expiredToken(t, "test-secret"),
			expectedStatus:   http.StatusUnauthorized,
			expectedError:    "invalid token",
			expectedMessage:  "expired token",
			expectedRedirect: "/login",
		},
		{
			name:             "malformed token",
			authHeader:       "Bearer invalid.token.here",
			expectedStatus:   http.StatusUnauthorized,
			expectedError:    "invalid token",
			expectedRedirect: "/login",
		},
		{
			name:             "wrong secret",
			authHeader:       "Bearer " + expiredToken(t, "other-secret"),
			expectedStatus:   http.StatusUnauthorized,
			expectedError:    "invalid token",
			expectedRedirect: "/login",
		},
		{
			name:             "user removed since login",
			authHeader:       "Bearer " + token(deletedUser),
			expectedStatus:   http.StatusUnauthorized,
			expectedError:    "invalid token",
			expectedMessage:  "user no longer exists",
			expectedRedirect: "/login",
		},
		{
			name:             "inactive user",
			authHeader:       "Bearer " + token(inactiveUser),
			expectedStatus:   http.StatusUnauthorized,
			expectedError:    auth.ErrInactive.Error(),
			expectedRedirect: "/login?inactive=true",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newRouter(issuer)

			w := httptest.NewRecorder()
			req, _ := http.NewRequest("GET", "/test", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)

			if tt.expectedError != "" {
				var errorResponse models.ErrorResponse
				err := json.Unmarshal(w.Body.Bytes(), &errorResponse)
				assert.NoError(t, err)
				assert.Contains(t, errorResponse.Error, tt.expectedError)
				assert.Equal(t, tt.expectedRedirect, errorResponse.Redirect)
				assert.Equal(t, tt.expectedStatus, errorResponse.Code)
				if tt.expectedMessage != "" {
					assert.Equal(t, tt.expectedMessage, errorResponse.Message)
				}
			} else {
				var response map[string]interface{}
				err := json.Unmarshal(w.Body.Bytes(), &response)
				assert.NoError(t, err)
				assert.Equal(t, "success", response["message"])
				assert.Equal(t, adminUser.Email, response["email"])
			}
		})
	}
}

func TestRequireRoles(t *testing.T) {
	gin.SetMode(gin.TestMode)
	issuer := auth.NewIssuer("test-secret", time.Hour, "waterpurifier")

	techToken, err := issuer.Issue(techUser)
	require.NoError(t, err)
	adminToken, err := issuer.Issue(adminUser)
	require.NoError(t, err)

	tests := []struct {
		name             string
		token            string
		roles            []models.Role
		expectedStatus   int
		expectedRedirect string
	}{
		{name: "technician on admin route", token: techToken, roles: []models.Role{models.RoleAdmin, models.RoleStaff}, expectedStatus: http.StatusForbidden, expectedRedirect: "/technician/dashboard"},
		{name: "technician on technician route", token: techToken, roles: []models.Role{models.RoleTechnician}, expectedStatus: http.StatusOK},
		{name: "admin on admin route", token: adminToken, roles: []models.Role{models.RoleAdmin}, expectedStatus: http.StatusOK},
		{name: "admin on technician route", token: adminToken, roles: []models.Role{models.RoleTechnician}, expectedStatus: http.StatusForbidden, expectedRedirect: "/admin/dashboard"},
		{name: "any role", token: techToken, expectedStatus: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newRouter(issuer, tt.roles...)
			w := httptest.NewRecorder()
			req, _ := http.NewRequest("GET", "/test", nil)
			req.Header.Set("Authorization", "Bearer "+tt.token)
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedRedirect != "" {
				var errorResponse models.ErrorResponse
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &errorResponse))
				assert.Equal(t, tt.expectedRedirect, errorResponse.Redirect)
			}
		})
	}
}

func TestRequireRolesWithoutSession(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(RequireRoles(models.RoleAdmin))
	router.GET("/test", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/test", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	var errorResponse models.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &errorResponse))
	assert.Equal(t, "/login", errorResponse.Redirect)
}
