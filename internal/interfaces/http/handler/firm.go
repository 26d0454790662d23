package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	firmapp "github.com/lexdesk/backend/internal/application/firm"
	"github.com/lexdesk/backend/internal/domain/shared"
)

// FirmManager manages the firm and its members
type FirmManager interface {
	GetFirm(ctx context.Context, firmID uuid.UUID) (*firmapp.FirmResponse, error)
	UpdateFirm(ctx context.Context, firmID uuid.UUID, req firmapp.UpdateFirmRequest) (*firmapp.FirmResponse, error)
	ListProfiles(ctx context.Context, firmID uuid.UUID, filter shared.Filter) ([]firmapp.ProfileResponse, int64, error)
	GetProfile(ctx context.Context, firmID, profileID uuid.UUID) (*firmapp.ProfileResponse, error)
	AddProfile(ctx context.Context, firmID uuid.UUID, req firmapp.CreateProfileRequest) (*firmapp.ProfileResponse, error)
	UpdateProfile(ctx context.Context, firmID, profileID uuid.UUID, req firmapp.UpdateProfileRequest) (*firmapp.ProfileResponse, error)
	DeactivateProfile(ctx context.Context, firmID, actorID, profileID uuid.UUID) error
	ReactivateProfile(ctx context.Context, firmID, profileID uuid.UUID) (*firmapp.ProfileResponse, error)
	ChangePassword(ctx context.Context, firmID, profileID uuid.UUID, req firmapp.ChangePasswordRequest) error
}

// ProfileListQuery filters the member list
type ProfileListQuery struct {
	Search   string `form:"search"`
	Role     string `form:"role" binding:"omitempty,oneof=owner admin lawyer assistant"`
	Active   string `form:"active" binding:"omitempty,oneof=true false"`
	Page     int    `form:"page" binding:"min=0"`
	PageSize int    `form:"page_size" binding:"min=0,max=100"`
}

func (q ProfileListQuery) toFilter() shared.Filter {
	f := shared.Filter{
		Page:     q.Page,
		PageSize: q.PageSize,
		Search:   q.Search,
		OrderBy:  "full_name",
		OrderDir: "asc",
		Filters:  make(map[string]any),
	}
	if f.Page <= 0 {
		f.Page = 1
	}
	if f.PageSize <= 0 {
		f.PageSize = 20
	}
	if q.Role != "" {
		f.Filters["role"] = q.Role
	}
	if q.Active != "" {
		f.Filters["active"] = q.Active == "true"
	}
	return f
}

// FirmHandler handles the firm settings and member management
type FirmHandler struct {
	BaseHandler
	firms FirmManager
}

// NewFirmHandler creates a new firm handler
func NewFirmHandler(firms FirmManager) *FirmHandler {
	return &FirmHandler{firms: firms}
}

// GetFirm godoc
// @ID           getFirm
// @Summary      Get the firm
// @Tags         firm
// @Produce      json
// @Success      200 {object} APIResponse[firmapp.FirmResponse]
// @Failure      401 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /firm [get]
func (h *FirmHandler) GetFirm(c *gin.Context) {
	firmID, ok := h.firmID(c)
	if !ok {
		return
	}

	result, err := h.firms.GetFirm(c.Request.Context(), firmID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// UpdateFirm godoc
// @ID           updateFirm
// @Summary      Update the firm
// @Description  Replace the firm's identity and preferences. Owners and admins only.
// @Tags         firm
// @Accept       json
// @Produce      json
// @Param        request body firmapp.UpdateFirmRequest true "Firm settings"
// @Success      200 {object} APIResponse[firmapp.FirmResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      403 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /firm [put]
func (h *FirmHandler) UpdateFirm(c *gin.Context) {
	firmID, ok := h.firmID(c)
	if !ok {
		return
	}

	var req firmapp.UpdateFirmRequest
	if !h.bindJSON(c, &req) {
		return
	}

	result, err := h.firms.UpdateFirm(c.Request.Context(), firmID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// ListProfiles godoc
// @ID           listProfiles
// @Summary      List members
// @Tags         firm
// @Produce      json
// @Param        search query string false "Name or email"
// @Param        role query string false "Role" Enums(owner, admin, lawyer, assistant)
// @Param        active query string false "Active flag" Enums(true, false)
// @Param        page query int false "Page" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Success      200 {object} APIResponse[[]firmapp.ProfileResponse]
// @Security     BearerAuth
// @Router       /firm/profiles [get]
func (h *FirmHandler) ListProfiles(c *gin.Context) {
	firmID, ok := h.firmID(c)
	if !ok {
		return
	}

	var query ProfileListQuery
	if !h.bindQuery(c, &query) {
		return
	}
	filter := query.toFilter()

	profiles, total, err := h.firms.ListProfiles(c.Request.Context(), firmID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, profiles, total, filter.Page, filter.PageSize)
}

// GetProfile godoc
// @ID           getProfile
// @Summary      Get a member
// @Tags         firm
// @Produce      json
// @Param        id path string true "Profile ID" format(uuid)
// @Success      200 {object} APIResponse[firmapp.ProfileResponse]
// @Failure      404 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /firm/profiles/{id} [get]
func (h *FirmHandler) GetProfile(c *gin.Context) {
	firmID, ok := h.firmID(c)
	if !ok {
		return
	}
	profileID, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	result, err := h.firms.GetProfile(c.Request.Context(), firmID, profileID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// AddProfile godoc
// @ID           addProfile
// @Summary      Add a member
// @Description  Create a profile in the firm, within the plan's user limit
// @Tags         firm
// @Accept       json
// @Produce      json
// @Param        request body firmapp.CreateProfileRequest true "Member"
// @Success      201 {object} APIResponse[firmapp.ProfileResponse]
// @Failure      403 {object} dto.ErrorResponse
// @Failure      409 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /firm/profiles [post]
func (h *FirmHandler) AddProfile(c *gin.Context) {
	firmID, ok := h.firmID(c)
	if !ok {
		return
	}

	var req firmapp.CreateProfileRequest
	if !h.bindJSON(c, &req) {
		return
	}

	result, err := h.firms.AddProfile(c.Request.Context(), firmID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, result)
}

// UpdateProfile godoc
// @ID           updateProfile
// @Summary      Update a member
// @Tags         firm
// @Accept       json
// @Produce      json
// @Param        id path string true "Profile ID" format(uuid)
// @Param        request body firmapp.UpdateProfileRequest true "Member"
// @Success      200 {object} APIResponse[firmapp.ProfileResponse]
// @Failure      409 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /firm/profiles/{id} [put]
func (h *FirmHandler) UpdateProfile(c *gin.Context) {
	firmID, ok := h.firmID(c)
	if !ok {
		return
	}
	profileID, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	var req firmapp.UpdateProfileRequest
	if !h.bindJSON(c, &req) {
		return
	}

	result, err := h.firms.UpdateProfile(c.Request.Context(), firmID, profileID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// DeactivateProfile godoc
// @ID           deactivateProfile
// @Summary      Deactivate a member
// @Description  Disable a profile and revoke its sessions. The last owner cannot be deactivated.
// @Tags         firm
// @Produce      json
// @Param        id path string true "Profile ID" format(uuid)
// @Success      200 {object} APIResponse[MessageData]
// @Failure      409 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /firm/profiles/{id}/deactivate [post]
func (h *FirmHandler) DeactivateProfile(c *gin.Context) {
	firmID, actorID, ok := h.actor(c)
	if !ok {
		return
	}
	profileID, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	if err := h.firms.DeactivateProfile(c.Request.Context(), firmID, actorID, profileID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, MessageData{Message: "Profile deactivated"})
}

// ReactivateProfile godoc
// @ID           reactivateProfile
// @Summary      Reactivate a member
// @Tags         firm
// @Produce      json
// @Param        id path string true "Profile ID" format(uuid)
// @Success      200 {object} APIResponse[firmapp.ProfileResponse]
// @Failure      403 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /firm/profiles/{id}/activate [post]
func (h *FirmHandler) ReactivateProfile(c *gin.Context) {
	firmID, ok := h.firmID(c)
	if !ok {
		return
	}
	profileID, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	result, err := h.firms.ReactivateProfile(c.Request.Context(), firmID, profileID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// ChangePassword godoc
// @ID           changePassword
// @Summary      Change own password
// @Description  Replace the caller's password. Other sessions are revoked.
// @Tags         profile
// @Accept       json
// @Produce      json
// @Param        request body firmapp.ChangePasswordRequest true "Passwords"
// @Success      200 {object} APIResponse[MessageData]
// @Failure      400 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /profile/password [put]
func (h *FirmHandler) ChangePassword(c *gin.Context) {
	firmID, profileID, ok := h.actor(c)
	if !ok {
		return
	}

	var req firmapp.ChangePasswordRequest
	if !h.bindJSON(c, &req) {
		return
	}

	if err := h.firms.ChangePassword(c.Request.Context(), firmID, profileID, req); err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, MessageData{Message: "Password changed"})
}
