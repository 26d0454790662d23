// Package document holds metadata of files stored in object storage.
package document

import (
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lexdesk/backend/internal/domain/shared"
)

// Category classifies a document
type Category string

const (
	CategoryPleading       Category = "pleading"
	CategoryContract       Category = "contract"
	CategoryEvidence       Category = "evidence"
	CategoryCorrespondence Category = "correspondence"
	CategoryJudgment       Category = "judgment"
	CategoryIdentity       Category = "identity"
	CategoryInvoice        Category = "invoice"
	CategoryOther          Category = "other"
)

// IsValid reports whether c is known
func (c Category) IsValid() bool {
	switch c {
	case CategoryPleading, CategoryContract, CategoryEvidence, CategoryCorrespondence,
		CategoryJudgment, CategoryIdentity, CategoryInvoice, CategoryOther:
		return true
	}
	return false
}

// MaxSizeBytes bounds a single upload
const MaxSizeBytes int64 = 50 << 20

// Document is a stored file attached to a case or client
type Document struct {
	shared.FirmAggregateRoot
	Name        string
	Description string
	Category    Category
	MimeType    string
	SizeBytes   int64
	StorageKey  string
	CaseID      *uuid.UUID
	ClientID    *uuid.UUID
	UploadedBy  *uuid.UUID
}

// NewDocument builds the metadata for an upload and derives its storage key
func NewDocument(firmID uuid.UUID, name string, category Category, mimeType string, size int64) (*Document, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Document name cannot be empty")
	}
	if category == "" {
		category = CategoryOther
	}
	if !category.IsValid() {
		return nil, shared.NewDomainError("INVALID_CATEGORY", "Invalid document category")
	}
	if size <= 0 {
		return nil, shared.NewDomainError("INVALID_SIZE", "Document is empty")
	}
	if size > MaxSizeBytes {
		return nil, shared.NewDomainError("FILE_TOO_LARGE", fmt.Sprintf("Document exceeds %d MB", MaxSizeBytes>>20))
	}
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	d := &Document{
		FirmAggregateRoot: shared.NewFirmAggregateRoot(firmID),
		Name:              name,
		Category:          category,
		MimeType:          mimeType,
		SizeBytes:         size,
	}
	d.StorageKey = StorageKey(firmID, d.ID, name)
	return d, nil
}

// StorageKey returns "firms/<firm>/documents/<id><ext>"
func StorageKey(firmID, docID uuid.UUID, name string) string {
	ext := strings.ToLower(path.Ext(name))
	return fmt.Sprintf("firms/%s/documents/%s%s", firmID, docID, ext)
}

// Attach links the document to a case and/or client
func (d *Document) Attach(caseID, clientID *uuid.UUID) {
	d.CaseID = caseID
	d.ClientID = clientID
	d.touch()
}

// Rename changes display name, description and category
func (d *Document) Rename(name, description string, category Category) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Document name cannot be empty")
	}
	if category != "" {
		if !category.IsValid() {
			return shared.NewDomainError("INVALID_CATEGORY", "Invalid document category")
		}
		d.Category = category
	}
	d.Name = name
	d.Description = description
	d.touch()
	return nil
}

// SizeMB returns the size rounded up to whole megabytes
func (d *Document) SizeMB() int64 {
	return (d.SizeBytes + (1 << 20) - 1) >> 20
}

func (d *Document) touch() {
	d.UpdatedAt = time.Now()
	d.IncrementVersion()
}
