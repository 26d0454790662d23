package handler

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	documentapp "github.com/lexdesk/backend/internal/application/document"
)

// uploadField is the multipart field carrying the file
const uploadField = "file"

// DocumentStore manages stored documents
type DocumentStore interface {
	Upload(ctx context.Context, firmID, actorID uuid.UUID, req documentapp.UploadRequest, file documentapp.Upload) (*documentapp.DocumentResponse, error)
	GetByID(ctx context.Context, firmID, docID uuid.UUID) (*documentapp.DocumentResponse, error)
	List(ctx context.Context, firmID uuid.UUID, filter documentapp.DocumentListFilter) ([]documentapp.DocumentResponse, int64, error)
	Update(ctx context.Context, firmID, docID uuid.UUID, req documentapp.UpdateDocumentRequest) (*documentapp.DocumentResponse, error)
	Download(ctx context.Context, firmID, docID uuid.UUID) (*documentapp.DownloadResponse, error)
	Open(ctx context.Context, firmID, docID uuid.UUID) (io.ReadCloser, *documentapp.DocumentResponse, error)
	Delete(ctx context.Context, firmID, docID uuid.UUID) error
	Usage(ctx context.Context, firmID uuid.UUID) (*documentapp.StorageUsageResponse, error)
}

// DocumentHandler handles document storage
type DocumentHandler struct {
	BaseHandler
	documents DocumentStore
}

// NewDocumentHandler creates a new DocumentHandler
func NewDocumentHandler(documents DocumentStore) *DocumentHandler {
	return &DocumentHandler{documents: documents}
}

// Upload godoc
// @ID           uploadDocument
// @Summary      Upload a document
// @Description  Stores the file and its metadata. Subject to the plan's document and storage quotas.
// @Tags         documents
// @Accept       multipart/form-data
// @Produce      json
// @Param        file formData file true "File"
// @Param        name formData string false "Display name, defaults to the file name"
// @Param        description formData string false "Description"
// @Param        category formData string false "Category" Enums(pleading, contract, evidence, correspondence, judgment, identity, invoice, other)
// @Param        case_id formData string false "Case ID" format(uuid)
// @Param        client_id formData string false "Client ID" format(uuid)
// @Success      201 {object} APIResponse[documentapp.DocumentResponse]
// @Failure      400 {object} dto.ErrorResponse
// @Failure      403 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /documents [post]
func (h *DocumentHandler) Upload(c *gin.Context) {
	firmID, actorID, ok := h.actor(c)
	if !ok {
		return
	}

	header, err := c.FormFile(uploadField)
	if err != nil {
		h.BadRequest(c, "A file is required in the '"+uploadField+"' field")
		return
	}

	var req documentapp.UploadRequest
	if err := c.ShouldBind(&req); err != nil {
		h.bindError(c, err)
		return
	}

	f, err := header.Open()
	if err != nil {
		h.BadRequest(c, "Unreadable upload")
		return
	}
	defer f.Close()

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	result, err := h.documents.Upload(c.Request.Context(), firmID, actorID, req, documentapp.Upload{
		Filename:    header.Filename,
		ContentType: contentType,
		Size:        header.Size,
		Body:        f,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, result)
}

// GetByID godoc
// @ID           getDocument
// @Summary      Get document metadata
// @Tags         documents
// @Produce      json
// @Param        id path string true "Document ID" format(uuid)
// @Success      200 {object} APIResponse[documentapp.DocumentResponse]
// @Failure      404 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /documents/{id} [get]
func (h *DocumentHandler) GetByID(c *gin.Context) {
	firmID, ok := h.firmID(c)
	if !ok {
		return
	}
	docID, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	result, err := h.documents.GetByID(c.Request.Context(), firmID, docID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// List godoc
// @ID           listDocuments
// @Summary      List documents
// @Tags         documents
// @Produce      json
// @Param        search query string false "Name"
// @Param        case_id query string false "Case ID" format(uuid)
// @Param        client_id query string false "Client ID" format(uuid)
// @Param        category query string false "Category"
// @Param        page query int false "Page" default(1)
// @Param        page_size query int false "Page size" default(20)
// @Success      200 {object} APIResponse[[]documentapp.DocumentResponse]
// @Security     BearerAuth
// @Router       /documents [get]
func (h *DocumentHandler) List(c *gin.Context) {
	firmID, ok := h.firmID(c)
	if !ok {
		return
	}

	var filter documentapp.DocumentListFilter
	if !h.bindQuery(c, &filter) {
		return
	}

	docs, total, err := h.documents.List(c.Request.Context(), firmID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	page, size := pageOf(filter.Page, filter.PageSize)
	h.SuccessWithMeta(c, docs, total, page, size)
}

// Update godoc
// @ID           updateDocument
// @Summary      Update document metadata
// @Tags         documents
// @Accept       json
// @Produce      json
// @Param        id path string true "Document ID" format(uuid)
// @Param        request body documentapp.UpdateDocumentRequest true "Metadata"
// @Success      200 {object} APIResponse[documentapp.DocumentResponse]
// @Failure      404 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /documents/{id} [put]
func (h *DocumentHandler) Update(c *gin.Context) {
	firmID, ok := h.firmID(c)
	if !ok {
		return
	}
	docID, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	var req documentapp.UpdateDocumentRequest
	if !h.bindJSON(c, &req) {
		return
	}

	result, err := h.documents.Update(c.Request.Context(), firmID, docID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// Download godoc
// @ID           documentDownloadURL
// @Summary      Get a download link
// @Description  Returns a presigned link that expires after a short time
// @Tags         documents
// @Produce      json
// @Param        id path string true "Document ID" format(uuid)
// @Success      200 {object} APIResponse[documentapp.DownloadResponse]
// @Failure      404 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /documents/{id}/download [get]
func (h *DocumentHandler) Download(c *gin.Context) {
	firmID, ok := h.firmID(c)
	if !ok {
		return
	}
	docID, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	result, err := h.documents.Download(c.Request.Context(), firmID, docID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// Content godoc
// @ID           documentContent
// @Summary      Stream a document
// @Tags         documents
// @Produce      application/octet-stream
// @Param        id path string true "Document ID" format(uuid)
// @Success      200 {file} binary
// @Failure      404 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /documents/{id}/content [get]
func (h *DocumentHandler) Content(c *gin.Context) {
	firmID, ok := h.firmID(c)
	if !ok {
		return
	}
	docID, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	body, doc, err := h.documents.Open(c.Request.Context(), firmID, docID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	defer body.Close()

	c.DataFromReader(http.StatusOK, doc.SizeBytes, doc.MimeType, body, map[string]string{
		"Content-Disposition": fmt.Sprintf("attachment; filename=%s", strconv.Quote(doc.Name)),
	})
}

// Delete godoc
// @ID           deleteDocument
// @Summary      Delete a document
// @Tags         documents
// @Param        id path string true "Document ID" format(uuid)
// @Success      204
// @Failure      404 {object} dto.ErrorResponse
// @Security     BearerAuth
// @Router       /documents/{id} [delete]
func (h *DocumentHandler) Delete(c *gin.Context) {
	firmID, ok := h.firmID(c)
	if !ok {
		return
	}
	docID, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	if err := h.documents.Delete(c.Request.Context(), firmID, docID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// Usage godoc
// @ID           documentUsage
// @Summary      Storage usage
// @Tags         documents
// @Produce      json
// @Success      200 {object} APIResponse[documentapp.StorageUsageResponse]
// @Security     BearerAuth
// @Router       /documents/usage [get]
func (h *DocumentHandler) Usage(c *gin.Context) {
	firmID, ok := h.firmID(c)
	if !ok {
		return
	}

	result, err := h.documents.Usage(c.Request.Context(), firmID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}
