package persistence

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Sequence names stored in firm_sequences
const (
	SequenceCase    = "case"
	SequenceInvoice = "invoice"
)

// SequenceGenerator hands out gap-free per-firm yearly counters. The upsert
// is atomic on both PostgreSQL and SQLite, so concurrent callers never
// receive the same value.
type SequenceGenerator struct {
	db *gorm.DB
}

// NewSequenceGenerator creates a new SequenceGenerator
func NewSequenceGenerator(db *gorm.DB) *SequenceGenerator {
	return &SequenceGenerator{db: db}
}

// Next increments and returns the counter for (firm, name, year), starting at 1
func (g *SequenceGenerator) Next(ctx context.Context, firmID uuid.UUID, name string, year int) (int64, error) {
	var value int64
	err := g.db.WithContext(ctx).Raw(
		`INSERT INTO firm_sequences (firm_id, name, year, value) VALUES (?, ?, ?, 1)
		 ON CONFLICT (firm_id, name, year) DO UPDATE SET value = firm_sequences.value + 1
		 RETURNING value`,
		firmID, name, year,
	).Scan(&value).Error
	if err != nil {
		return 0, err
	}
	return value, nil
}
