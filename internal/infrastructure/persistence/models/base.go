package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lexdesk/backend/internal/domain/shared"
)

// BaseModel provides common persistence fields for all models.
// It maps to the domain's BaseEntity.
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// ToDomain converts BaseModel to domain BaseEntity
func (m *BaseModel) ToDomain() shared.BaseEntity {
	return shared.BaseEntity{
		ID:        m.ID,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// FromDomainBaseEntity populates BaseModel from domain BaseEntity
func (m *BaseModel) FromDomainBaseEntity(e shared.BaseEntity) {
	m.ID = e.ID
	m.CreatedAt = e.CreatedAt
	m.UpdatedAt = e.UpdatedAt
}

// AggregateModel adds the optimistic locking version to BaseModel
type AggregateModel struct {
	BaseModel
	Version int `gorm:"not null;default:1"`
}

// FromDomainAggregateRoot populates AggregateModel from domain BaseAggregateRoot
func (m *AggregateModel) FromDomainAggregateRoot(a shared.BaseAggregateRoot) {
	m.FromDomainBaseEntity(a.BaseEntity)
	m.Version = a.Version
}

// PopulateAggregateRoot copies identity, timestamps and version into a
func (m *AggregateModel) PopulateAggregateRoot(a *shared.BaseAggregateRoot) {
	a.BaseEntity = m.BaseModel.ToDomain()
	a.Version = m.Version
}

// FirmAggregateModel is the base of every firm-scoped table
type FirmAggregateModel struct {
	AggregateModel
	FirmID    uuid.UUID  `gorm:"type:uuid;not null;index"`
	CreatedBy *uuid.UUID `gorm:"type:uuid"`
}

// FromDomainFirmAggregateRoot populates FirmAggregateModel from the domain root
func (m *FirmAggregateModel) FromDomainFirmAggregateRoot(f shared.FirmAggregateRoot) {
	m.FromDomainAggregateRoot(f.BaseAggregateRoot)
	m.FirmID = f.FirmID
	m.CreatedBy = f.CreatedBy
}

// ToDomainFirmAggregateRoot builds the domain root from the persisted fields
func (m *FirmAggregateModel) ToDomainFirmAggregateRoot() shared.FirmAggregateRoot {
	f := shared.FirmAggregateRoot{
		FirmID:    m.FirmID,
		CreatedBy: m.CreatedBy,
	}
	m.PopulateAggregateRoot(&f.BaseAggregateRoot)
	return f
}
