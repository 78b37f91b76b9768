package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/supportta-projects/waterpurifier-sub000/internal/auth"
	"github.com/supportta-projects/waterpurifier-sub000/internal/config"
	"github.com/supportta-projects/waterpurifier-sub000/internal/middleware"
	"github.com/supportta-projects/waterpurifier-sub000/internal/models"
	"github.com/supportta-projects/waterpurifier-sub000/internal/repository"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

const stateCookie = "oidc_state"

type AuthHandler struct {
	issuer       *auth.Issuer
	users        *repository.UserRepository
	verifier     *oidc.IDTokenVerifier
	oauth2Config *oauth2.Config
	oidcEnabled  bool
}

// NewAuthHandler discovers the OIDC provider when one is configured. A
// provider that cannot be reached leaves password login only.
func NewAuthHandler(ctx context.Context, cfg config.OIDCConfig, issuer *auth.Issuer, users *repository.UserRepository) *AuthHandler {
	h := &AuthHandler{issuer: issuer, users: users}
	if !cfg.Enabled() {
		return h
	}

	provider, err := oidc.NewProvider(ctx, cfg.ProviderURL)
	if err != nil {
		zap.L().Warn("oidc provider discovery failed", zap.String("provider", cfg.ProviderURL), zap.Error(err))
		return h
	}
	h.verifier = provider.Verifier(&oidc.Config{ClientID: cfg.ClientID})
	h.oauth2Config = &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		Endpoint:     provider.Endpoint(),
		Scopes:       []string{oidc.ScopeOpenID, "profile", "email"},
		RedirectURL:  cfg.RedirectURI,
	}
	h.oidcEnabled = true
	return h
}

func (h *AuthHandler) tokenResponse(c *gin.Context, user *models.User) (*models.AuthResponse, bool) {
	token, err := h.issuer.Issue(user)
	if err != nil {
		zap.L().Error("issue token", zap.Error(err))
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "token generation failed",
			Message: "token generation failed",
			Code:    http.StatusInternalServerError,
		})
		return nil, false
	}
	return &models.AuthResponse{
		AccessToken: token,
		ExpiresIn:   int64(h.issuer.TTL().Seconds()),
		TokenType:   "Bearer",
		User:        user,
		Home:        auth.HomePath(user.Role),
	}, true
}

func inactive(c *gin.Context) {
	c.JSON(http.StatusUnauthorized, models.ErrorResponse{
		Error:    "account inactive",
		Message:  auth.ErrInactive.Error(),
		Code:     http.StatusUnauthorized,
		Redirect: auth.InactiveLoginPath,
	})
}

// Login checks an email and password against the stored bcrypt hash.
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid request",
			Message: "invalid request",
			Code:    http.StatusBadRequest,
		})
		return
	}

	user, err := h.users.GetByEmail(c.Request.Context(), req.Email)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		respondError(c, err)
		return
	}
	if user == nil || !auth.CheckPassword(user.PasswordHash, req.Password) {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{
			Error:   "invalid credentials",
			Message: "invalid email or password",
			Code:    http.StatusUnauthorized,
		})
		return
	}
	if !user.IsActive {
		inactive(c)
		return
	}

	resp, ok := h.tokenResponse(c, user)
	if !ok {
		return
	}
	zap.L().Info("user logged in", zap.String("user", user.CustomID))
	c.JSON(http.StatusOK, resp)
}

// OIDCLogin redirects to the provider's consent page.
func (h *AuthHandler) OIDCLogin(c *gin.Context) {
	if !h.oidcEnabled {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "oidc_not_configured",
			Message: "OIDC provider not configured",
			Code:    http.StatusBadRequest,
		})
		return
	}

	state := uuid.NewString()
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(stateCookie, state, 600, "/", "", c.Request.TLS != nil, true)
	c.Redirect(http.StatusFound, h.oauth2Config.AuthCodeURL(state, oauth2.AccessTypeOffline))
}

// Callback completes the OIDC flow. Only users already provisioned with the
// same email may sign in this way.
func (h *AuthHandler) Callback(c *gin.Context) {
	if !h.oidcEnabled {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "oidc_not_configured",
			Message: "OIDC provider not configured",
			Code:    http.StatusBadRequest,
		})
		return
	}

	ctx := c.Request.Context()
	code := c.Query("code")
	state := c.Query("state")
	if code == "" {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "missing code",
			Message: "authorization code is required",
			Code:    http.StatusBadRequest,
		})
		return
	}
	expected, err := c.Cookie(stateCookie)
	if err != nil || expected == "" || expected != state {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_state",
			Message: "state does not match",
			Code:    http.StatusBadRequest,
		})
		return
	}
	// the state is single use
	c.SetCookie(stateCookie, "", -1, "/", "", c.Request.TLS != nil, true)

	token, err := h.oauth2Config.Exchange(ctx, code)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "token_exchange_failed",
			Message: err.Error(),
			Code:    http.StatusInternalServerError,
		})
		return
	}

	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok || rawIDToken == "" {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "id_token_missing",
			Message: "no id_token in token response",
			Code:    http.StatusInternalServerError,
		})
		return
	}

	idToken, err := h.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{
			Error:   "invalid_id_token",
			Message: err.Error(),
			Code:    http.StatusUnauthorized,
		})
		return
	}

	var oidcClaims struct {
		Email         string `json:"email"`
		EmailVerified bool   `json:"email_verified"`
		Sub           string `json:"sub"`
		Name          string `json:"name"`
	}
	if err := idToken.Claims(&oidcClaims); err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "claims_parse_error",
			Message: err.Error(),
			Code:    http.StatusInternalServerError,
		})
		return
	}

	if !oidcClaims.EmailVerified {
		c.JSON(http.StatusForbidden, models.ErrorResponse{
			Error:    "email_not_verified",
			Message:  "the identity provider has not verified this email",
			Code:     http.StatusForbidden,
			Redirect: auth.LoginPath,
		})
		return
	}

	user, err := h.users.GetByEmail(ctx, strings.TrimSpace(oidcClaims.Email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusForbidden, models.ErrorResponse{
				Error:    "user_not_provisioned",
				Message:  "no account exists for " + oidcClaims.Email,
				Code:     http.StatusForbidden,
				Redirect: auth.LoginPath,
			})
			return
		}
		respondError(c, err)
		return
	}
	if !user.IsActive {
		inactive(c)
		return
	}

	resp, ok := h.tokenResponse(c, user)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"auth":  resp,
		"state": state,
	})
}

// Me returns the caller's current profile.
func (h *AuthHandler) Me(c *gin.Context) {
	s := middleware.CurrentSession(c)
	user, err := h.users.Get(c.Request.Context(), s.UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"user": user,
		"home": auth.HomePath(user.Role),
	})
}
