package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	matterapp "github.com/lexdesk/backend/internal/application/matter"
)

// CaseManager manages legal matters
type CaseManager interface {
	Create(ctx context.Context, firmID, actorID uuid.UUID, req matterapp.CreateCaseRequest) (*matterapp.CaseResponse, error)
	GetByID(ctx context.Context, firmID, caseID uuid.UUID) (*matterapp.CaseResponse, error)
	List(ctx context.Context, firmID uuid.UUID, filter matterapp.CaseListFilter) ([]matterapp.CaseResponse, int64, error)
	Update(ctx context.Context, firmID, caseID uuid.UUID, req matterapp.UpdateCaseRequest) (*matterapp.CaseResponse, error)
	Assign(ctx context.Context, firmID, caseID uuid.UUID, req matterapp.AssignCaseRequest) (*matterapp.CaseResponse, error)
	ChangeStatus(ctx context.Context, firmID, caseID uuid.UUID, req matterapp.ChangeCaseStatusRequest) (*matterapp.CaseResponse, error)
	Delete(ctx context.Context, firmID, caseID uuid.UUID) error
}

// TimeTracker records work on cases
type TimeTracker interface {
	Create(ctx context.Context, firmID, profileID, caseID uuid.UUID, req matterapp.TimeEntryRequest) (*matterapp.TimeEntryResponse, error)
	GetByID(ctx context.Context, firmID, entryID uuid.UUID) (*matterapp.TimeEntryResponse, error)
	List(ctx context.Context, firmID uuid.UUID, filter matterapp.TimeEntryListFilter) ([]matterapp.TimeEntryResponse, int64, error)
	Update(ctx context.Context, firmID, entryID uuid.UUID, req matterapp.TimeEntryRequest) (*matterapp.TimeEntryResponse, error)
	Delete(ctx context.Context, firmID, entryID uuid.UUID) error
	UnbilledSummary(ctx context.Context, firmID, caseID uuid.UUID) (*matterapp.TimeSummary, error)
}

// CaseHandler handles cases and the time recorded on them
type CaseHandler struct {
	BaseHandler
	cases CaseManager
	time  TimeTracker
}

// NewCaseHandler creates a new CaseHandler
func NewCaseHandler(cases CaseManager, tracker TimeTracker) *CaseHandler {
	return &CaseHandler{cases: cases, time: tracker}
}

// Create godoc
// @ID           createCase
// @Summary      Open a case
// @Description  Open a case for a client of the firm. The reference is generated when omitted.
// @Tags         cases
// @Accept       json
// @Produce      json
// @Param        request body matterapp.CreateCaseRequest true "Case"
// @Success      201 {object} APIResponse[matterapp.CaseResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      403 {object} dto.ErrorResponse
// @Failure      409 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /cases [post]
func (h *CaseHandler) Create(c *gin.Context) {
	firmID, actorID, ok := h.actor(c)
	if !ok {
		return
	}

	var req matterapp.CreateCaseRequest
	if !h.bindJSON(c, &req) {
		return
	}

	result, err := h.cases.Create(c.Request.Context(), firmID, actorID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, result)
}

// GetByID godoc
// @ID           getCase
// @Summary      Get a case
// @Tags         cases
// @Produce      json
// @Param        id path string true "Case ID" format(uuid)
// @Success      200 {object} APIResponse[matterapp.CaseResponse]
// @Failure      404 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /cases/{id} [get]
func (h *CaseHandler) GetByID(c *gin.Context) {
	firmID, ok := h.firmID(c)
	if !ok {
		return
	}
	caseID, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	result, err := h.cases.GetByID(c.Request.Context(), firmID, caseID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// List godoc
// @ID           listCases
// @Summary      List cases
// @Tags         cases
// @Produce      json
// @Param        search query string false "Reference, title or opposing party"
// @Param        client_id query string false "Client ID" format(uuid)
// @Param        status query string false "Status" Enums(open, in_progress, pending, closed, archived)
// @Param        priority query string false "Priority" Enums(low, medium, high, urgent)
// @Param        type query string false "Case type"
// @Param        assigned_to query string false "Assignee profile ID" format(uuid)
// @Param        page query int false "Page" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Success      200 {object} APIResponse[[]matterapp.CaseResponse]
// @Security     BearerAuth
// @Router       /cases [get]
func (h *CaseHandler) List(c *gin.Context) {
	firmID, ok := h.firmID(c)
	if !ok {
		return
	}

	var filter matterapp.CaseListFilter
	if !h.bindQuery(c, &filter) {
		return
	}

	cases, total, err := h.cases.List(c.Request.Context(), firmID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	page, size := pageOf(filter.Page, filter.PageSize)
	h.SuccessWithMeta(c, cases, total, page, size)
}

// Update godoc
// @ID           updateCase
// @Summary      Update a case
// @Tags         cases
// @Accept       json
// @Produce      json
// @Param        id path string true "Case ID" format(uuid)
// @Param        request body matterapp.UpdateCaseRequest true "Case"
// @Success      200 {object} APIResponse[matterapp.CaseResponse]
// @Failure      422 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /cases/{id} [put]
func (h *CaseHandler) Update(c *gin.Context) {
	firmID, ok := h.firmID(c)
	if !ok {
		return
	}
	caseID, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	var req matterapp.UpdateCaseRequest
	if !h.bindJSON(c, &req) {
		return
	}

	result, err := h.cases.Update(c.Request.Context(), firmID, caseID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// Assign godoc
// @ID           assignCase
// @Summary      Assign a case
// @Description  Set the responsible profile; null unassigns
// @Tags         cases
// @Accept       json
// @Produce      json
// @Param        id path string true "Case ID" format(uuid)
// @Param        request body matterapp.AssignCaseRequest true "Assignee"
// @Success      200 {object} APIResponse[matterapp.CaseResponse]
// @Security     BearerAuth
// @Router       /cases/{id}/assign [put]
func (h *CaseHandler) Assign(c *gin.Context) {
	firmID, ok := h.firmID(c)
	if !ok {
		return
	}
	caseID, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	var req matterapp.AssignCaseRequest
	if !h.bindJSON(c, &req) {
		return
	}

	result, err := h.cases.Assign(c.Request.Context(), firmID, caseID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// ChangeStatus godoc
// @ID           changeCaseStatus
// @Summary      Change a case's status
// @Description  Closing sets closed_at, reopening clears it. Archived cases cannot change.
// @Tags         cases
// @Accept       json
// @Produce      json
// @Param        id path string true "Case ID" format(uuid)
// @Param        request body matterapp.ChangeCaseStatusRequest true "Status"
// @Success      200 {object} APIResponse[matterapp.CaseResponse]
// @Failure      422 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /cases/{id}/status [put]
func (h *CaseHandler) ChangeStatus(c *gin.Context) {
	firmID, ok := h.firmID(c)
	if !ok {
		return
	}
	caseID, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	var req matterapp.ChangeCaseStatusRequest
	if !h.bindJSON(c, &req) {
		return
	}

	result, err := h.cases.ChangeStatus(c.Request.Context(), firmID, caseID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// Delete godoc
// @ID           deleteCase
// @Summary      Delete a case
// @Tags         cases
// @Param        id path string true "Case ID" format(uuid)
// @Success      204
// @Failure      409 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /cases/{id} [delete]
func (h *CaseHandler) Delete(c *gin.Context) {
	firmID, ok := h.firmID(c)
	if !ok {
		return
	}
	caseID, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	if err := h.cases.Delete(c.Request.Context(), firmID, caseID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// CreateTimeEntry godoc
// @ID           createTimeEntry
// @Summary      Record time
// @Description  Record work on a case for the authenticated profile
// @Tags         time-entries
// @Accept       json
// @Produce      json
// @Param        id path string true "Case ID" format(uuid)
// @Param        request body matterapp.TimeEntryRequest true "Work"
// @Success      201 {object} APIResponse[matterapp.TimeEntryResponse]
// @Failure      403 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /cases/{id}/time-entries [post]
func (h *CaseHandler) CreateTimeEntry(c *gin.Context) {
	firmID, profileID, ok := h.actor(c)
	if !ok {
		return
	}
	caseID, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	var req matterapp.TimeEntryRequest
	if !h.bindJSON(c, &req) {
		return
	}

	result, err := h.time.Create(c.Request.Context(), firmID, profileID, caseID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, result)
}

// ListCaseTimeEntries godoc
// @ID           listCaseTimeEntries
// @Summary      Time recorded on a case
// @Tags         time-entries
// @Produce      json
// @Param        id path string true "Case ID" format(uuid)
// @Param        billed query string false "Billed" Enums(true, false)
// @Param        page query int false "Page" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Success      200 {object} APIResponse[[]matterapp.TimeEntryResponse]
// @Security     BearerAuth
// @Router       /cases/{id}/time-entries [get]
func (h *CaseHandler) ListCaseTimeEntries(c *gin.Context) {
	caseID, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	h.listTimeEntries(c, caseID.String())
}

// ListTimeEntries godoc
// @ID           listTimeEntries
// @Summary      List time entries
// @Tags         time-entries
// @Produce      json
// @Param        case_id query string false "Case ID" format(uuid)
// @Param        profile_id query string false "Profile ID" format(uuid)
// @Param        billed query string false "Billed" Enums(true, false)
// @Param        start_date query string false "From (RFC3339)"
// @Param        end_date query string false "To (RFC3339)"
// @Param        page query int false "Page" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Success      200 {object} APIResponse[[]matterapp.TimeEntryResponse]
// @Security     BearerAuth
// @Router       /time-entries [get]
func (h *CaseHandler) ListTimeEntries(c *gin.Context) {
	h.listTimeEntries(c, "")
}

func (h *CaseHandler) listTimeEntries(c *gin.Context, caseID string) {
	firmID, ok := h.firmID(c)
	if !ok {
		return
	}

	var filter matterapp.TimeEntryListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	if caseID != "" {
		filter.CaseID = caseID
	}

	entries, total, err := h.time.List(c.Request.Context(), firmID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	page, size := pageOf(filter.Page, filter.PageSize)
	h.SuccessWithMeta(c, entries, total, page, size)
}

// UnbilledSummary godoc
// @ID           caseUnbilledTime
// @Summary      Unbilled time on a case
// @Tags         time-entries
// @Produce      json
// @Param        id path string true "Case ID" format(uuid)
// @Success      200 {object} APIResponse[matterapp.TimeSummary]
// @Security     BearerAuth
// @Router       /cases/{id}/time-entries/unbilled [get]
func (h *CaseHandler) UnbilledSummary(c *gin.Context) {
	firmID, ok := h.firmID(c)
	if !ok {
		return
	}
	caseID, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	result, err := h.time.UnbilledSummary(c.Request.Context(), firmID, caseID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// GetTimeEntry godoc
// @ID           getTimeEntry
// @Summary      Get a time entry
// @Tags         time-entries
// @Produce      json
// @Param        id path string true "Time entry ID" format(uuid)
// @Success      200 {object} APIResponse[matterapp.TimeEntryResponse]
// @Failure      404 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /time-entries/{id} [get]
func (h *CaseHandler) GetTimeEntry(c *gin.Context) {
	firmID, ok := h.firmID(c)
	if !ok {
		return
	}
	entryID, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	result, err := h.time.GetByID(c.Request.Context(), firmID, entryID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// UpdateTimeEntry godoc
// @ID           updateTimeEntry
// @Summary      Update a time entry
// @Description  Billed entries cannot change
// @Tags         time-entries
// @Accept       json
// @Produce      json
// @Param        id path string true "Time entry ID" format(uuid)
// @Param        request body matterapp.TimeEntryRequest true "Work"
// @Success      200 {object} APIResponse[matterapp.TimeEntryResponse]
// @Failure      422 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /time-entries/{id} [put]
func (h *CaseHandler) UpdateTimeEntry(c *gin.Context) {
	firmID, ok := h.firmID(c)
	if !ok {
		return
	}
	entryID, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	var req matterapp.TimeEntryRequest
	if !h.bindJSON(c, &req) {
		return
	}

	result, err := h.time.Update(c.Request.Context(), firmID, entryID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// DeleteTimeEntry godoc
// @ID           deleteTimeEntry
// @Summary      Delete a time entry
// @Tags         time-entries
// @Param        id path string true "Time entry ID" format(uuid)
// @Success      204
// @Failure      422 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /time-entries/{id} [delete]
func (h *CaseHandler) DeleteTimeEntry(c *gin.Context) {
	firmID, ok := h.firmID(c)
	if !ok {
		return
	}
	entryID, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	if err := h.time.Delete(c.Request.Context(), firmID, entryID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}
