package document

import (
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/lexdesk/backend/internal/domain/document"
)

// UploadRequest carries the metadata sent with a multipart upload
type UploadRequest struct {
	Name        string `form:"name" binding:"max=255"`
	Description string `form:"description" binding:"max=2000"`
	Category    string `form:"category" binding:"omitempty,oneof=pleading contract evidence correspondence judgment identity invoice other"`
	CaseID      string `form:"case_id" binding:"omitempty,uuid"`
	ClientID    string `form:"client_id" binding:"omitempty,uuid"`
}

// Links returns the case and client the upload is attached to
func (r UploadRequest) Links() (caseID, clientID *uuid.UUID) {
	return optionalID(r.CaseID), optionalID(r.ClientID)
}

func optionalID(s string) *uuid.UUID {
	id, err := uuid.Parse(s)
	if err != nil {
		return nil
	}
	return &id
}

// Upload is the file part of an upload
type Upload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// UpdateDocumentRequest renames or recategorises a document
type UpdateDocumentRequest struct {
	Name        string     `json:"name" binding:"required,max=255"`
	Description string     `json:"description" binding:"max=2000"`
	Category    string     `json:"category" binding:"omitempty,oneof=pleading contract evidence correspondence judgment identity invoice other"`
	CaseID      *uuid.UUID `json:"case_id"`
	ClientID    *uuid.UUID `json:"client_id"`
}

// DocumentListFilter represents filter options for the document list
type DocumentListFilter struct {
	Search   string `form:"search"`
	CaseID   string `form:"case_id" binding:"omitempty,uuid"`
	ClientID string `form:"client_id" binding:"omitempty,uuid"`
	Category string `form:"category"`
	Page     int    `form:"page" binding:"min=0"`
	PageSize int    `form:"page_size" binding:"min=0,max=100"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// DocumentResponse represents a document in API responses
type DocumentResponse struct {
	ID          uuid.UUID  `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	Category    string     `json:"category"`
	MimeType    string     `json:"mime_type"`
	SizeBytes   int64      `json:"size_bytes"`
	CaseID      *uuid.UUID `json:"case_id,omitempty"`
	ClientID    *uuid.UUID `json:"client_id,omitempty"`
	UploadedBy  *uuid.UUID `json:"uploaded_by,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// ToDocumentResponse converts a domain document. The storage key stays
// internal.
func ToDocumentResponse(d *document.Document) DocumentResponse {
	return DocumentResponse{
		ID:          d.ID,
		Name:        d.Name,
		Description: d.Description,
		Category:    string(d.Category),
		MimeType:    d.MimeType,
		SizeBytes:   d.SizeBytes,
		CaseID:      d.CaseID,
		ClientID:    d.ClientID,
		UploadedBy:  d.UploadedBy,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

// DownloadResponse is a time-limited link to the file
type DownloadResponse struct {
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}

// StorageUsageResponse reports what the firm stores
type StorageUsageResponse struct {
	Documents int64 `json:"documents"`
	Bytes     int64 `json:"bytes"`
}
