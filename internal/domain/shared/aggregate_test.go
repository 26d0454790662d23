package shared

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestFirmAggregateRoot_SatisfiesAggregateRoot(t *testing.T) {
	firmID := uuid.New()
	root := NewFirmAggregateRoot(firmID)

	var agg AggregateRoot = &root
	assert.Equal(t, root.ID, agg.GetID())
	assert.False(t, agg.GetCreatedAt().IsZero())
	assert.Equal(t, agg.GetCreatedAt(), agg.GetUpdatedAt())
	assert.Equal(t, 1, agg.GetVersion())

	agg.IncrementVersion()
	ev := NewBaseDomainEvent("ClientCreated", "Client", root.ID, firmID)
	agg.AddDomainEvent(&ev)
	assert.Equal(t, 2, agg.GetVersion())
	assert.Len(t, agg.GetDomainEvents(), 1)

	agg.ClearDomainEvents()
	assert.Empty(t, agg.GetDomainEvents())
}
