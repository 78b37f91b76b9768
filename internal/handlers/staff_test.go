package handlers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/supportta-projects/waterpurifier-sub000/internal/auth"
	"github.com/supportta-projects/waterpurifier-sub000/internal/models"
	"github.com/supportta-projects/waterpurifier-sub000/internal/staff"
)

func TestCreateStaff(t *testing.T) {
	e := newTestEnv(t)
	handler := NewStaffHandler(staff.NewService(e.repos, e.gen))

	tests := []struct {
		name           string
		requestBody    models.CreateStaffRequest
		expectedStatus int
		expectedError  string
	}{
		{
			name:           "technician with generated password",
			requestBody:    models.CreateStaffRequest{Name: "Kiran", Email: "kiran@example.com", Role: models.RoleTechnician},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "email used by another account",
			requestBody:    models.CreateStaffRequest{Name: "Sona Again", Email: "Staff@Example.com", Role: models.RoleStaff},
			expectedStatus: http.StatusConflict,
			expectedError:  "email-already-in-use",
		},
		{
			name:           "admin role refused",
			requestBody:    models.CreateStaffRequest{Name: "Boss", Email: "boss@example.com", Role: models.RoleAdmin},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "bad email",
			requestBody:    models.CreateStaffRequest{Name: "Kiran", Email: "kiran", Role: models.RoleStaff},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "invalid-email",
		},
		{
			name:           "weak password",
			requestBody:    models.CreateStaffRequest{Name: "Kiran", Email: "k2@example.com", Role: models.RoleStaff, Password: "short"},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "weak-password",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := perform(handler.CreateStaff, call{method: http.MethodPost, path: "/staff", body: tt.requestBody, session: e.admin})
			assert.Equal(t, tt.expectedStatus, w.Code)

			if tt.expectedStatus != http.StatusCreated {
				if tt.expectedError != "" {
					var resp models.ErrorResponse
					decode(t, w, &resp)
					assert.Equal(t, tt.expectedError, resp.Error)
				}
				return
			}

			var resp models.StaffCreatedResponse
			decode(t, w, &resp)
			assert.Regexp(t, `^USR-\d{6}$`, resp.User.CustomID)
			assert.Len(t, resp.Password, staff.GeneratedPasswordLength)
			assert.NotContains(t, w.Body.String(), "password_hash")

			stored, err := e.repos.Users.Get(t.Context(), resp.User.ID)
			require.NoError(t, err)
			assert.True(t, auth.CheckPassword(stored.PasswordHash, resp.Password))
		})
	}
}

func TestStaffListAndStatus(t *testing.T) {
	e := newTestEnv(t)
	handler := NewStaffHandler(staff.NewService(e.repos, e.gen))

	var list struct {
		Staff []models.User `json:"staff"`
		Total int64         `json:"total"`
	}
	w := perform(handler.GetStaff, call{method: http.MethodGet, path: "/staff", session: e.admin})
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &list)
	assert.Equal(t, int64(2), list.Total)
	for _, u := range list.Staff {
		assert.NotEqual(t, models.RoleAdmin, u.Role)
	}

	w = perform(handler.GetStaff, call{method: http.MethodGet, path: "/staff?role=technician", session: e.admin})
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &list)
	require.Equal(t, int64(1), list.Total)
	assert.Equal(t, "Ravi Tech", list.Staff[0].Name)

	w = perform(handler.GetStaffMember, call{method: http.MethodGet, path: "/staff/x", params: idParam(e.admin.UserID), session: e.admin})
	assert.Equal(t, http.StatusNotFound, w.Code)

	disabled := false
	w = perform(handler.UpdateStaffStatus, call{
		method:  http.MethodPatch,
		path:    "/staff/x/status",
		params:  idParam(e.technician.ID),
		body:    models.UpdateStaffStatusRequest{IsActive: &disabled},
		session: e.admin,
	})
	require.Equal(t, http.StatusOK, w.Code)
	var u models.User
	decode(t, w, &u)
	assert.False(t, u.IsActive)

	w = perform(handler.UpdateStaffStatus, call{
		method:  http.MethodPatch,
		path:    "/staff/x/status",
		params:  idParam(e.technician.ID),
		body:    `{}`,
		session: e.admin,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = perform(handler.UpdateStaff, call{
		method:  http.MethodPut,
		path:    "/staff/x",
		params:  idParam(e.technician.ID),
		body:    models.UpdateStaffRequest{Role: models.RoleStaff, Phone: "9000000001"},
		session: e.admin,
	})
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &u)
	assert.Equal(t, models.RoleStaff, u.Role)
	assert.Equal(t, "9000000001", u.Phone)
}

func TestResetStaffPassword(t *testing.T) {
	e := newTestEnv(t)
	handler := NewStaffHandler(staff.NewService(e.repos, e.gen))

	t.Run("generated", func(t *testing.T) {
		w := perform(handler.ResetPassword, call{method: http.MethodPut, path: "/staff/x/password", params: idParam(e.technician.ID), session: e.admin})
		require.Equal(t, http.StatusOK, w.Code)
		var resp struct {
			Password string `json:"password"`
		}
		decode(t, w, &resp)
		assert.Len(t, resp.Password, staff.GeneratedPasswordLength)

		stored, err := e.repos.Users.Get(t.Context(), e.technician.ID)
		require.NoError(t, err)
		assert.True(t, auth.CheckPassword(stored.PasswordHash, resp.Password))
		assert.False(t, auth.CheckPassword(stored.PasswordHash, testPassword))
	})

	t.Run("chosen", func(t *testing.T) {
		w := perform(handler.ResetPassword, call{
			method:  http.MethodPut,
			path:    "/staff/x/password",
			params:  idParam(e.technician.ID),
			body:    models.ResetPasswordRequest{Password: "filters-and-fins"},
			session: e.admin,
		})
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "filters-and-fins")
	})

	t.Run("too short", func(t *testing.T) {
		w := perform(handler.ResetPassword, call{
			method:  http.MethodPut,
			path:    "/staff/x/password",
			params:  idParam(e.technician.ID),
			body:    models.ResetPasswordRequest{Password: "abc"},
			session: e.admin,
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
