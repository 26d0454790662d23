package models

import (
	"github.com/google/uuid"
	"github.com/lexdesk/backend/internal/domain/document"
)

// DocumentModel holds document metadata; the bytes live in object storage
type DocumentModel struct {
	FirmAggregateModel
	Name        string            `gorm:"type:varchar(300);not null"`
	Description string            `gorm:"type:text"`
	Category    document.Category `gorm:"type:varchar(20);not null;index"`
	MimeType    string            `gorm:"type:varchar(100);not null"`
	SizeBytes   int64             `gorm:"not null"`
	StorageKey  string            `gorm:"type:varchar(500);not null;uniqueIndex"`
	CaseID      *uuid.UUID        `gorm:"type:uuid;index"`
	ClientID    *uuid.UUID        `gorm:"type:uuid;index"`
	UploadedBy  *uuid.UUID        `gorm:"type:uuid"`
}

// TableName returns the table name for GORM
func (DocumentModel) TableName() string {
	return "documents"
}

// ToDomain converts the persistence model to a domain Document
func (m *DocumentModel) ToDomain() *document.Document {
	return &document.Document{
		FirmAggregateRoot: m.ToDomainFirmAggregateRoot(),
		Name:              m.Name,
		Description:       m.Description,
		Category:          m.Category,
		MimeType:          m.MimeType,
		SizeBytes:         m.SizeBytes,
		StorageKey:        m.StorageKey,
		CaseID:            m.CaseID,
		ClientID:          m.ClientID,
		UploadedBy:        m.UploadedBy,
	}
}

// DocumentModelFromDomain creates a new persistence model from a domain Document
func DocumentModelFromDomain(d *document.Document) *DocumentModel {
	m := &DocumentModel{
		Name:        d.Name,
		Description: d.Description,
		Category:    d.Category,
		MimeType:    d.MimeType,
		SizeBytes:   d.SizeBytes,
		StorageKey:  d.StorageKey,
		CaseID:      d.CaseID,
		ClientID:    d.ClientID,
		UploadedBy:  d.UploadedBy,
	}
	m.FromDomainFirmAggregateRoot(d.FirmAggregateRoot)
	return m
}
