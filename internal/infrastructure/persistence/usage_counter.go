package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lexdesk/backend/internal/domain/messaging"
	"github.com/lexdesk/backend/internal/domain/subscription"
	"gorm.io/gorm"
)

const bytesPerMB = 1 << 20

// GormUsageCounter implements subscription.UsageCounter on top of the
// firm-scoped repositories
type GormUsageCounter struct {
	profiles  *GormProfileRepository
	clients   *GormClientRepository
	cases     *GormCaseRepository
	documents *GormDocumentRepository
	invoices  *GormInvoiceRepository
	comms     *GormCommunicationRepository
	now       func() time.Time
}

// NewGormUsageCounter creates a usage counter reading from db
func NewGormUsageCounter(db *gorm.DB) *GormUsageCounter {
	return &GormUsageCounter{
		profiles:  NewGormProfileRepository(db),
		clients:   NewGormClientRepository(db),
		cases:     NewGormCaseRepository(db),
		documents: NewGormDocumentRepository(db),
		invoices:  NewGormInvoiceRepository(db),
		comms:     NewGormCommunicationRepository(db),
		now:       time.Now,
	}
}

// CountUsage returns the current usage of resource by the firm
func (c *GormUsageCounter) CountUsage(ctx context.Context, firmID uuid.UUID, resource subscription.Resource) (int64, error) {
	switch resource {
	case subscription.ResourceUsers:
		return c.profiles.CountActiveForFirm(ctx, firmID)
	case subscription.ResourceClients:
		return c.clients.CountForFirm(ctx, firmID)
	case subscription.ResourceCases:
		return c.cases.CountForFirm(ctx, firmID)
	case subscription.ResourceDocuments:
		return c.documents.CountForFirm(ctx, firmID)
	case subscription.ResourceStorageMB:
		size, err := c.documents.TotalSizeForFirm(ctx, firmID)
		if err != nil {
			return 0, err
		}
		return (size + bytesPerMB - 1) / bytesPerMB, nil
	case subscription.ResourceInvoicesPerMonth:
		return c.invoices.CountCreatedSince(ctx, firmID, monthStart(c.now()))
	case subscription.ResourceSMSPerMonth:
		return c.comms.CountOutboundSince(ctx, firmID, messaging.ChannelSMS, monthStart(c.now()))
	default:
		return 0, fmt.Errorf("unknown resource %q", resource)
	}
}

func monthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

var _ subscription.UsageCounter = (*GormUsageCounter)(nil)
