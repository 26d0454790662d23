package client

import (
	"time"

	"github.com/google/uuid"
	"github.com/lexdesk/backend/internal/domain/client"
)

// =============================================================================
// Client DTOs
// =============================================================================

// CreateClientRequest represents a request to create a new client
type CreateClientRequest struct {
	Kind               string `json:"kind" binding:"required,oneof=individual company"`
	Name               string `json:"name" binding:"required,min=2,max=200"`
	Email              string `json:"email" binding:"omitempty,email,max=200"`
	Phone              string `json:"phone" binding:"omitempty,max=20"`
	Address            string `json:"address" binding:"max=500"`
	City               string `json:"city" binding:"max=100"`
	IDNumber           string `json:"id_number" binding:"max=50"`
	RegistrationNumber string `json:"registration_number" binding:"max=50"`
	Profession         string `json:"profession" binding:"max=100"`
	Notes              string `json:"notes"`
}

// UpdateClientRequest replaces a client's editable fields
type UpdateClientRequest struct {
	Kind               string `json:"kind" binding:"omitempty,oneof=individual company"`
	Name               string `json:"name" binding:"required,min=2,max=200"`
	Email              string `json:"email" binding:"omitempty,email,max=200"`
	Phone              string `json:"phone" binding:"omitempty,max=20"`
	Address            string `json:"address" binding:"max=500"`
	City               string `json:"city" binding:"max=100"`
	IDNumber           string `json:"id_number" binding:"max=50"`
	RegistrationNumber string `json:"registration_number" binding:"max=50"`
	Profession         string `json:"profession" binding:"max=100"`
	Notes              string `json:"notes"`
}

// UpdateClientStatusRequest moves a client between active and inactive, or
// brings an archived client back
type UpdateClientStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=active inactive"`
}

// ClientListFilter represents filter options for the client list
type ClientListFilter struct {
	Search   string `form:"search"`
	Status   string `form:"status" binding:"omitempty,oneof=active inactive archived"`
	Kind     string `form:"kind" binding:"omitempty,oneof=individual company"`
	City     string `form:"city"`
	Page     int    `form:"page" binding:"min=0"`
	PageSize int    `form:"page_size" binding:"min=0,max=100"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// ClientResponse represents a client in API responses
type ClientResponse struct {
	ID                 uuid.UUID  `json:"id"`
	FirmID             uuid.UUID  `json:"firm_id"`
	Kind               string     `json:"kind"`
	Name               string     `json:"name"`
	Email              string     `json:"email,omitempty"`
	Phone              string     `json:"phone,omitempty"`
	Address            string     `json:"address,omitempty"`
	City               string     `json:"city,omitempty"`
	IDNumber           string     `json:"id_number,omitempty"`
	RegistrationNumber string     `json:"registration_number,omitempty"`
	Profession         string     `json:"profession,omitempty"`
	Notes              string     `json:"notes,omitempty"`
	Status             string     `json:"status"`
	CreatedBy          *uuid.UUID `json:"created_by,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

// ToClientResponse converts a domain client to a response DTO
func ToClientResponse(c *client.Client) ClientResponse {
	return ClientResponse{
		ID:                 c.ID,
		FirmID:             c.FirmID,
		Kind:               string(c.Kind),
		Name:               c.Name,
		Email:              c.Email,
		Phone:              c.Phone,
		Address:            c.Address,
		City:               c.City,
		IDNumber:           c.IDNumber,
		RegistrationNumber: c.RegistrationNumber,
		Profession:         c.Profession,
		Notes:              c.Notes,
		Status:             string(c.Status),
		CreatedBy:          c.CreatedBy,
		CreatedAt:          c.CreatedAt,
		UpdatedAt:          c.UpdatedAt,
	}
}

// ToClientResponses converts a slice of clients
func ToClientResponses(clients []client.Client) []ClientResponse {
	out := make([]ClientResponse, len(clients))
	for i := range clients {
		out[i] = ToClientResponse(&clients[i])
	}
	return out
}

// =============================================================================
// Professional contact DTOs
// =============================================================================

// ContactRequest creates or replaces a professional contact
type ContactRequest struct {
	Name         string `json:"name" binding:"required,min=2,max=200"`
	Category     string `json:"category" binding:"omitempty,oneof=lawyer bailiff notary expert judge court_clerk other"`
	Organization string `json:"organization" binding:"max=200"`
	Email        string `json:"email" binding:"omitempty,email,max=200"`
	Phone        string `json:"phone" binding:"omitempty,max=20"`
	Address      string `json:"address" binding:"max=500"`
	Notes        string `json:"notes"`
}

// ContactListFilter represents filter options for the contact list
type ContactListFilter struct {
	Search   string `form:"search"`
	Category string `form:"category" binding:"omitempty,oneof=lawyer bailiff notary expert judge court_clerk other"`
	Page     int    `form:"page" binding:"min=0"`
	PageSize int    `form:"page_size" binding:"min=0,max=100"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// ContactResponse represents a professional contact in API responses
type ContactResponse struct {
	ID           uuid.UUID `json:"id"`
	FirmID       uuid.UUID `json:"firm_id"`
	Name         string    `json:"name"`
	Category     string    `json:"category"`
	Organization string    `json:"organization,omitempty"`
	Email        string    `json:"email,omitempty"`
	Phone        string    `json:"phone,omitempty"`
	Address      string    `json:"address,omitempty"`
	Notes        string    `json:"notes,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ToContactResponse converts a domain contact to a response DTO
func ToContactResponse(c *client.ProfessionalContact) ContactResponse {
	return ContactResponse{
		ID:           c.ID,
		FirmID:       c.FirmID,
		Name:         c.Name,
		Category:     string(c.Category),
		Organization: c.Organization,
		Email:        c.Email,
		Phone:        c.Phone,
		Address:      c.Address,
		Notes:        c.Notes,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
	}
}
