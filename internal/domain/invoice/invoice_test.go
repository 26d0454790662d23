package invoice

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lexdesk/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDraft(t *testing.T) *Invoice {
	t.Helper()
	issue := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	inv, err := NewInvoice(uuid.New(), uuid.New(), FormatNumber(2026, 12), issue, issue.AddDate(0, 0, 30), "xaf")
	require.NoError(t, err)
	return inv
}

func mustItem(t *testing.T, desc string, qty, price int64) Item {
	t.Helper()
	item, err := NewItem(desc, decimal.NewFromInt(qty), decimal.NewFromInt(price))
	require.NoError(t, err)
	return item
}

func TestFormatNumber(t *testing.T) {
	assert.Equal(t, "INV-2026-0012", FormatNumber(2026, 12))
	assert.Equal(t, "INV-2026-12345", FormatNumber(2026, 12345))
}

func TestNewInvoice_Validation(t *testing.T) {
	issue := time.Now()
	_, err := NewInvoice(uuid.New(), uuid.Nil, "INV-1", issue, issue, "XAF")
	assert.Error(t, err)
	_, err = NewInvoice(uuid.New(), uuid.New(), "INV-1", issue, issue.AddDate(0, 0, -1), "XAF")
	assert.Error(t, err)
	_, err = NewInvoice(uuid.New(), uuid.New(), "INV-1", issue, issue, "FCFA")
	assert.Error(t, err)

	inv := newDraft(t)
	assert.Equal(t, "XAF", inv.Currency)
	assert.Equal(t, StatusDraft, inv.Status)
}

func TestInvoice_Totals(t *testing.T) {
	inv := newDraft(t)
	require.NoError(t, inv.AddItem(mustItem(t, "Consultation", 2, 25000)))
	require.NoError(t, inv.AddItem(mustItem(t, "Filing fees", 1, 10000)))

	require.NoError(t, inv.UpdateTerms(nil, inv.IssueDate, inv.DueDate, decimal.RequireFromString("19.25"), decimal.NewFromInt(10000), ""))

	assert.True(t, decimal.NewFromInt(60000).Equal(inv.Subtotal))
	assert.True(t, decimal.NewFromInt(9625).Equal(inv.TaxAmount), inv.TaxAmount.String())
	assert.True(t, decimal.NewFromInt(59625).Equal(inv.Total), inv.Total.String())
	assert.Equal(t, 1, inv.Items[1].SortOrder)
}

func TestInvoice_DiscountCannotExceedSubtotal(t *testing.T) {
	inv := newDraft(t)
	require.NoError(t, inv.AddItem(mustItem(t, "Consultation", 1, 5000)))
	err := inv.UpdateTerms(nil, inv.IssueDate, inv.DueDate, decimal.Zero, decimal.NewFromInt(6000), "")
	assert.Error(t, err)
}

func TestInvoice_RemoveItem(t *testing.T) {
	inv := newDraft(t)
	a := mustItem(t, "A", 1, 1000)
	require.NoError(t, inv.AddItem(a))
	require.NoError(t, inv.AddItem(mustItem(t, "B", 1, 2000)))

	require.NoError(t, inv.RemoveItem(a.ID))
	assert.Len(t, inv.Items, 1)
	assert.True(t, decimal.NewFromInt(2000).Equal(inv.Total))
	assert.Error(t, inv.RemoveItem(uuid.New()))
}

func TestInvoice_SendAndPay(t *testing.T) {
	inv := newDraft(t)
	now := time.Now()
	assert.Error(t, inv.Send(now), "empty invoice")

	require.NoError(t, inv.AddItem(mustItem(t, "Consultation", 1, 50000)))
	require.NoError(t, inv.Send(now))
	assert.Equal(t, StatusSent, inv.Status)
	assert.Error(t, inv.AddItem(mustItem(t, "Late", 1, 1)), "sent invoices are locked")

	require.NoError(t, inv.RecordPayment(decimal.NewFromInt(20000), now))
	assert.Equal(t, StatusPartiallyPaid, inv.Status)
	assert.True(t, decimal.NewFromInt(30000).Equal(inv.Balance()))

	err := inv.RecordPayment(decimal.NewFromInt(30001), now)
	require.Error(t, err)
	assert.Equal(t, StatusPartiallyPaid, inv.Status)

	require.NoError(t, inv.RecordPayment(decimal.NewFromInt(30000), now))
	assert.Equal(t, StatusPaid, inv.Status)
	assert.NotNil(t, inv.PaidAt)
	assert.Error(t, inv.RecordPayment(decimal.NewFromInt(1), now))

	types := make([]string, 0)
	for _, e := range inv.GetDomainEvents() {
		types = append(types, e.EventType())
	}
	assert.Equal(t, []string{EventTypeInvoiceSent, EventTypeInvoicePaid}, types)
}

func TestInvoice_MarkOverdue(t *testing.T) {
	inv := newDraft(t)
	require.NoError(t, inv.AddItem(mustItem(t, "Consultation", 1, 50000)))

	assert.False(t, inv.MarkOverdue(inv.DueDate.AddDate(0, 0, 5)), "drafts never go overdue")

	require.NoError(t, inv.Send(inv.IssueDate))
	assert.False(t, inv.MarkOverdue(inv.DueDate.Add(12*time.Hour)), "due date itself is still on time")
	assert.True(t, inv.MarkOverdue(inv.DueDate.AddDate(0, 0, 1)))
	assert.Equal(t, StatusOverdue, inv.Status)
	assert.False(t, inv.MarkOverdue(inv.DueDate.AddDate(0, 0, 2)))

	require.NoError(t, inv.RecordPayment(inv.Total, time.Now()))
	assert.Equal(t, StatusPaid, inv.Status)
}

func TestInvoice_Cancel(t *testing.T) {
	inv := newDraft(t)
	require.NoError(t, inv.Cancel())
	assert.Error(t, inv.Cancel())

	paid := newDraft(t)
	require.NoError(t, paid.AddItem(mustItem(t, "Consultation", 1, 1000)))
	require.NoError(t, paid.Send(time.Now()))
	require.NoError(t, paid.RecordPayment(decimal.NewFromInt(500), time.Now()))
	err := paid.Cancel()
	var de *shared.DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "INVALID_STATE", de.Code)
}

func TestInvoice_TimeEntryIDs(t *testing.T) {
	inv := newDraft(t)
	entryID := uuid.New()
	item := mustItem(t, "Research 2h", 2, 20000)
	item.TimeEntryID = &entryID
	require.NoError(t, inv.ReplaceItems([]Item{item, mustItem(t, "Fees", 1, 500)}))
	assert.Equal(t, []uuid.UUID{entryID}, inv.TimeEntryIDs())
}
