// Package firmscope restricts GORM queries to a single firm.
//
// The firm ID travels in the request context (set by the auth middleware
// through logger.WithFirmID). FirmDB turns it into a WHERE firm_id = ?
// condition; the callbacks in callback.go do the same for every query on a
// firm-scoped table, as a second line of defence behind the explicit
// conditions written in the repositories.
//
//	db := firmscope.NewFirmDB(gormDB)
//	db.WithContext(ctx).Find(&clients) // WHERE firm_id = '...'
package firmscope

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/lexdesk/backend/internal/infrastructure/logger"
	"gorm.io/gorm"
)

// Column is the firm discriminator present on every firm-scoped table
const Column = "firm_id"

// ErrFirmIDRequired is returned when a firm-scoped query has no firm in context
var ErrFirmIDRequired = errors.New("firm_id is required but not found in context")

// ErrInvalidFirmID is returned when the firm ID in context is not a UUID
var ErrInvalidFirmID = errors.New("invalid firm_id format")

// Scope filters a query to firmID
func Scope(firmID uuid.UUID) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where(Column+" = ?", firmID)
	}
}

// FirmDB wraps a GORM DB and scopes it to the firm found in the context
type FirmDB struct {
	db       *gorm.DB
	required bool
}

// NewFirmDB creates a FirmDB that refuses to run without a firm in context
func NewFirmDB(db *gorm.DB) *FirmDB {
	return &FirmDB{db: db, required: true}
}

// Optional returns a copy that runs unscoped when the context has no firm
func (f *FirmDB) Optional() *FirmDB {
	return &FirmDB{db: f.db, required: false}
}

// FirmIDFromContext parses the firm ID carried by ctx
func FirmIDFromContext(ctx context.Context) (uuid.UUID, error) {
	raw := logger.GetFirmID(ctx)
	if raw == "" {
		return uuid.Nil, ErrFirmIDRequired
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, ErrInvalidFirmID
	}
	return id, nil
}

// WithContext returns a DB scoped to the firm carried by ctx. When the firm
// is missing and required, every operation on the returned DB fails.
func (f *FirmDB) WithContext(ctx context.Context) *gorm.DB {
	firmID, err := FirmIDFromContext(ctx)
	if err != nil {
		db := f.db.WithContext(ctx)
		if errors.Is(err, ErrFirmIDRequired) && !f.required {
			return db
		}
		_ = db.AddError(err)
		return db
	}
	return f.db.WithContext(ctx).Scopes(Scope(firmID))
}

// ForFirm scopes to an explicit firm ID
func (f *FirmDB) ForFirm(ctx context.Context, firmID uuid.UUID) *gorm.DB {
	db := f.db.WithContext(ctx)
	if firmID == uuid.Nil {
		_ = db.AddError(ErrFirmIDRequired)
		return db
	}
	return db.Scopes(Scope(firmID))
}

// Transaction runs fn in a transaction scoped to the firm carried by ctx
func (f *FirmDB) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	firmID, err := FirmIDFromContext(ctx)
	if err != nil && (f.required || !errors.Is(err, ErrFirmIDRequired)) {
		return err
	}
	return f.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if firmID != uuid.Nil {
			tx = tx.Scopes(Scope(firmID))
		}
		return fn(tx)
	})
}

// Unscoped returns the underlying DB. Only the scheduler and payment
// callbacks, which act across firms, should need it.
func (f *FirmDB) Unscoped() *gorm.DB {
	return f.db
}
