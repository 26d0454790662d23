package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	firmapp "github.com/lexdesk/backend/internal/application/firm"
	"github.com/lexdesk/backend/internal/infrastructure/auth"
	"github.com/lexdesk/backend/internal/interfaces/http/middleware"
)

// Registrar signs up new firms
type Registrar interface {
	RegisterFirm(ctx context.Context, req firmapp.RegisterFirmRequest) (*firmapp.RegisterResponse, error)
}

// Authenticator issues and revokes tokens
type Authenticator interface {
	Login(ctx context.Context, req firmapp.LoginRequest) (*firmapp.LoginResponse, error)
	Refresh(ctx context.Context, req firmapp.RefreshRequest) (*firmapp.TokenResponse, error)
	Logout(ctx context.Context, claims *auth.Claims, req firmapp.LogoutRequest) error
	Me(ctx context.Context, firmID, profileID uuid.UUID) (*firmapp.MeResponse, error)
}

// AuthHandler handles sign-up and authentication
type AuthHandler struct {
	BaseHandler
	registrar Registrar
	auth      Authenticator
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(registrar Registrar, authenticator Authenticator) *AuthHandler {
	return &AuthHandler{registrar: registrar, auth: authenticator}
}

// Register godoc
// @ID           registerFirm
// @Summary      Register a firm
// @Description  Create a firm with its owner profile and start the free trial
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body firmapp.RegisterFirmRequest true "Firm and owner"
// @Success      201 {object} APIResponse[firmapp.RegisterResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      409 {object} dto.ErrorResponse
// @Failure      500 {object} dto.ErrorResponse
// @Router       /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req firmapp.RegisterFirmRequest
	if !h.bindJSON(c, &req) {
		return
	}

	result, err := h.registrar.RegisterFirm(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, result)
}

// Login godoc
// @ID           login
// @Summary      Log in
// @Description  Authenticate a profile by email and password. Firms with a lapsed subscription can still log in to renew.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body firmapp.LoginRequest true "Credentials"
// @Success      200 {object} APIResponse[firmapp.LoginResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      401 {object} dto.ErrorResponse
// @Failure      403 {object} dto.ErrorResponse
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req firmapp.LoginRequest
	if !h.bindJSON(c, &req) {
		return
	}

	result, err := h.auth.Login(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// Refresh godoc
// @ID           refreshToken
// @Summary      Refresh tokens
// @Description  Exchange a refresh token for a new token pair
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body firmapp.RefreshRequest true "Refresh token"
// @Success      200 {object} APIResponse[firmapp.TokenResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      401 {object} dto.ErrorResponse
// @Router       /auth/refresh [post]
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req firmapp.RefreshRequest
	if !h.bindJSON(c, &req) {
		return
	}

	result, err := h.auth.Refresh(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// Logout godoc
// @ID           logout
// @Summary      Log out
// @Description  Revoke the current access token and, when given, the refresh token
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body firmapp.LogoutRequest false "Refresh token to revoke"
// @Success      200 {object} APIResponse[MessageData]
// @Failure      401 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	claims := middleware.GetJWTClaims(c)
	if claims == nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req firmapp.LogoutRequest
	if c.Request.ContentLength > 0 && !h.bindJSON(c, &req) {
		return
	}

	if err := h.auth.Logout(c.Request.Context(), claims, req); err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, MessageData{Message: "Logged out"})
}

// Me godoc
// @ID           me
// @Summary      Current profile
// @Description  Return the authenticated profile and its firm
// @Tags         auth
// @Produce      json
// @Success      200 {object} APIResponse[firmapp.MeResponse]
// @Failure      401 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	firmID, profileID, ok := h.actor(c)
	if !ok {
		return
	}

	result, err := h.auth.Me(c.Request.Context(), firmID, profileID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}
