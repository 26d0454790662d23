package persistence

import (
	"errors"

	"github.com/google/uuid"
	"github.com/lexdesk/backend/internal/domain/shared"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// translateError maps GORM's not-found error onto the domain sentinel
func translateError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return shared.ErrNotFound
	}
	return err
}

// deleted turns a delete result into ErrNotFound when nothing matched
func deleted(result *gorm.DB) error {
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// updateWithLock writes every column of model only while the stored row is
// still at the version the aggregate was loaded with. Domain mutations bump
// the version once, so the expected stored version is version-1.
func updateWithLock(db *gorm.DB, model any, id uuid.UUID, version int) error {
	result := db.Model(model).
		Select("*").
		Omit("created_at", clause.Associations).
		Where("id = ? AND version = ?", id, version-1).
		Updates(model)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}
