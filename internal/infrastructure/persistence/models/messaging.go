package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lexdesk/backend/internal/domain/messaging"
)

// CommunicationModel records one message exchanged with a client
type CommunicationModel struct {
	FirmAggregateModel
	Channel           messaging.Channel             `gorm:"type:varchar(20);not null;index"`
	Direction         messaging.Direction           `gorm:"type:varchar(10);not null"`
	ClientID          *uuid.UUID                    `gorm:"type:uuid;index"`
	CaseID            *uuid.UUID                    `gorm:"type:uuid;index"`
	Recipient         string                        `gorm:"type:varchar(200);not null"`
	Subject           string                        `gorm:"type:varchar(300)"`
	Body              string                        `gorm:"type:text;not null"`
	Template          string                        `gorm:"type:varchar(50)"`
	Status            messaging.CommunicationStatus `gorm:"type:varchar(20);not null;index"`
	Provider          string                        `gorm:"type:varchar(50)"`
	ProviderMessageID string                        `gorm:"type:varchar(200)"`
	Error             string                        `gorm:"type:text"`
	SentAt            *time.Time
}

// TableName returns the table name for GORM
func (CommunicationModel) TableName() string {
	return "communications"
}

// ToDomain converts the persistence model to a domain Communication
func (m *CommunicationModel) ToDomain() *messaging.Communication {
	return &messaging.Communication{
		FirmAggregateRoot: m.ToDomainFirmAggregateRoot(),
		Channel:           m.Channel,
		Direction:         m.Direction,
		ClientID:          m.ClientID,
		CaseID:            m.CaseID,
		Recipient:         m.Recipient,
		Subject:           m.Subject,
		Body:              m.Body,
		Template:          m.Template,
		Status:            m.Status,
		Provider:          m.Provider,
		ProviderMessageID: m.ProviderMessageID,
		Error:             m.Error,
		SentAt:            m.SentAt,
	}
}

// CommunicationModelFromDomain creates a new persistence model from a domain Communication
func CommunicationModelFromDomain(c *messaging.Communication) *CommunicationModel {
	m := &CommunicationModel{
		Channel:           c.Channel,
		Direction:         c.Direction,
		ClientID:          c.ClientID,
		CaseID:            c.CaseID,
		Recipient:         c.Recipient,
		Subject:           c.Subject,
		Body:              c.Body,
		Template:          c.Template,
		Status:            c.Status,
		Provider:          c.Provider,
		ProviderMessageID: c.ProviderMessageID,
		Error:             c.Error,
		SentAt:            c.SentAt,
	}
	m.FromDomainFirmAggregateRoot(c.FirmAggregateRoot)
	return m
}

// NotificationModel is an in-app notice for a firm or a single profile
type NotificationModel struct {
	BaseModel
	FirmID    uuid.UUID                  `gorm:"type:uuid;not null;index"`
	ProfileID *uuid.UUID                 `gorm:"type:uuid;index"`
	Type      messaging.NotificationType `gorm:"type:varchar(40);not null;index"`
	Title     string                     `gorm:"type:varchar(300);not null"`
	Message   string                     `gorm:"type:text;not null"`
	Link      string                     `gorm:"type:varchar(500)"`
	Priority  messaging.Priority         `gorm:"type:varchar(10);not null;default:'normal'"`
	ReadAt    *time.Time
}

// TableName returns the table name for GORM
func (NotificationModel) TableName() string {
	return "notifications"
}

// ToDomain converts the persistence model to a domain Notification
func (m *NotificationModel) ToDomain() *messaging.Notification {
	return &messaging.Notification{
		BaseEntity: m.BaseModel.ToDomain(),
		FirmID:     m.FirmID,
		ProfileID:  m.ProfileID,
		Type:       m.Type,
		Title:      m.Title,
		Message:    m.Message,
		Link:       m.Link,
		Priority:   m.Priority,
		ReadAt:     m.ReadAt,
	}
}

// NotificationModelFromDomain creates a new persistence model from a domain Notification
func NotificationModelFromDomain(n *messaging.Notification) *NotificationModel {
	m := &NotificationModel{
		FirmID:    n.FirmID,
		ProfileID: n.ProfileID,
		Type:      n.Type,
		Title:     n.Title,
		Message:   n.Message,
		Link:      n.Link,
		Priority:  n.Priority,
		ReadAt:    n.ReadAt,
	}
	m.FromDomainBaseEntity(n.BaseEntity)
	return m
}
