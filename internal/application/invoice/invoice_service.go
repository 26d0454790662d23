// Package invoice bills clients: drafts, time-entry billing, sending,
// cancellation, the overdue sweep and PDF rendering.
package invoice

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	appmsg "github.com/lexdesk/backend/internal/application/messaging"
	"github.com/lexdesk/backend/internal/domain/client"
	"github.com/lexdesk/backend/internal/domain/firm"
	"github.com/lexdesk/backend/internal/domain/invoice"
	"github.com/lexdesk/backend/internal/domain/matter"
	"github.com/lexdesk/backend/internal/domain/messaging"
	"github.com/lexdesk/backend/internal/domain/shared"
	"github.com/lexdesk/backend/internal/domain/subscription"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// DefaultPaymentTermDays is used when a draft has no due date
const DefaultPaymentTermDays = 30

// ClientMailer sends and logs a message to a client
type ClientMailer interface {
	Send(ctx context.Context, firmID, actorID uuid.UUID, req appmsg.SendMessageRequest) (*appmsg.CommunicationResponse, error)
}

// InvoiceService handles invoice business operations
type InvoiceService struct {
	invoices  invoice.InvoiceRepository
	clients   client.ClientRepository
	cases     matter.CaseRepository
	firms     firm.FirmRepository
	entries   matter.TimeEntryRepository
	gate      subscription.Gate
	mailer    ClientMailer
	pdf       PDFRenderer
	publisher shared.EventPublisher
	logger    *zap.Logger
	now       func() time.Time
}

// NewInvoiceService creates a new InvoiceService. mailer and pdf may be
// nil when those features are not configured.
func NewInvoiceService(
	invoices invoice.InvoiceRepository,
	clients client.ClientRepository,
	cases matter.CaseRepository,
	firms firm.FirmRepository,
	entries matter.TimeEntryRepository,
	gate subscription.Gate,
	mailer ClientMailer,
	pdf PDFRenderer,
	logger *zap.Logger,
) *InvoiceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InvoiceService{
		invoices: invoices,
		clients:  clients,
		cases:    cases,
		firms:    firms,
		entries:  entries,
		gate:     gate,
		mailer:   mailer,
		pdf:      pdf,
		logger:   logger,
		now:      time.Now,
	}
}

// SetEventPublisher sets the event publisher
func (s *InvoiceService) SetEventPublisher(publisher shared.EventPublisher) {
	s.publisher = publisher
}

// Create drafts an invoice numbered INV-<year>-<seq>
func (s *InvoiceService) Create(ctx context.Context, firmID, actorID uuid.UUID, req CreateInvoiceRequest) (*InvoiceResponse, error) {
	if err := s.gate.RequireQuota(ctx, firmID, subscription.ResourceInvoicesPerMonth, 1); err != nil {
		return nil, err
	}
	f, err := s.firms.FindByID(ctx, firmID)
	if err != nil {
		return nil, err
	}
	if err := s.ensureClient(ctx, firmID, req.ClientID); err != nil {
		return nil, err
	}
	if err := s.ensureCase(ctx, firmID, req.CaseID, req.ClientID); err != nil {
		return nil, err
	}

	now := s.now()
	issue := dateOnly(now)
	if req.IssueDate != nil {
		issue = dateOnly(*req.IssueDate)
	}
	due := issue.AddDate(0, 0, DefaultPaymentTermDays)
	if req.DueDate != nil {
		due = dateOnly(*req.DueDate)
	}
	currency := req.Currency
	if currency == "" {
		currency = f.Currency
	}

	seq, err := s.invoices.NextSequence(ctx, firmID, issue.Year())
	if err != nil {
		return nil, err
	}
	inv, err := invoice.NewInvoice(firmID, req.ClientID, invoice.FormatNumber(issue.Year(), seq), issue, due, currency)
	if err != nil {
		return nil, err
	}
	if err := inv.UpdateTerms(req.CaseID, issue, due, orZero(req.TaxRate), orZero(req.Discount), req.Notes); err != nil {
		return nil, err
	}
	items, err := buildItems(req.Items)
	if err != nil {
		return nil, err
	}
	if err := inv.ReplaceItems(items); err != nil {
		return nil, err
	}
	inv.SetCreatedBy(actorID)
	if err := s.invoices.Save(ctx, inv); err != nil {
		return nil, err
	}

	s.logger.Info("Invoice created",
		zap.String("firm_id", firmID.String()),
		zap.String("invoice_id", inv.ID.String()),
		zap.String("number", inv.Number))
	resp := ToInvoiceResponse(inv)
	return &resp, nil
}

// GetByID retrieves an invoice with its items
func (s *InvoiceService) GetByID(ctx context.Context, firmID, invoiceID uuid.UUID) (*InvoiceResponse, error) {
	inv, err := s.invoices.FindByIDForFirm(ctx, firmID, invoiceID)
	if err != nil {
		return nil, err
	}
	resp := ToInvoiceResponse(inv)
	return &resp, nil
}

// List retrieves a paginated list of invoices
func (s *InvoiceService) List(ctx context.Context, firmID uuid.UUID, filter InvoiceListFilter) ([]InvoiceResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	if filter.OrderBy == "" {
		filter.OrderBy = "issue_date"
	}
	if filter.OrderDir == "" {
		filter.OrderDir = "desc"
	}

	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
		Search:   filter.Search,
		Filters:  make(map[string]any),
		From:     filter.StartDate,
		To:       filter.EndDate,
	}
	if filter.ClientID != "" {
		domainFilter.Filters["client_id"] = filter.ClientID
	}
	if filter.CaseID != "" {
		domainFilter.Filters["case_id"] = filter.CaseID
	}
	if filter.Status != "" {
		domainFilter.Filters["status"] = filter.Status
	}
	if filter.Outstanding {
		domainFilter.Filters["outstanding"] = "true"
	}

	invoices, total, err := s.invoices.FindAllForFirm(ctx, firmID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	out := make([]InvoiceResponse, len(invoices))
	for i := range invoices {
		out[i] = ToInvoiceResponse(&invoices[i])
	}
	return out, total, nil
}

// Update changes the terms and manual lines of a draft
func (s *InvoiceService) Update(ctx context.Context, firmID, invoiceID uuid.UUID, req UpdateInvoiceRequest) (*InvoiceResponse, error) {
	inv, err := s.invoices.FindByIDForFirm(ctx, firmID, invoiceID)
	if err != nil {
		return nil, err
	}
	if !inv.IsEditable() {
		return nil, shared.NewDomainError("INVOICE_NOT_EDITABLE", "Only draft invoices can be modified")
	}
	if err := s.ensureCase(ctx, firmID, req.CaseID, inv.ClientID); err != nil {
		return nil, err
	}
	if req.CaseID == nil || (inv.CaseID != nil && *req.CaseID != *inv.CaseID) {
		if len(inv.TimeEntryIDs()) > 0 {
			return nil, shared.NewDomainError("INVOICE_HAS_TIME", "Remove billed time before changing the case")
		}
	}

	taxRate, discount := inv.TaxRate, inv.Discount
	if req.TaxRate != nil {
		taxRate = *req.TaxRate
	}
	if req.Discount != nil {
		discount = *req.Discount
	}
	if req.Items != nil {
		manual, err := buildItems(req.Items)
		if err != nil {
			return nil, err
		}
		items := make([]invoice.Item, 0, len(inv.Items)+len(manual))
		for _, item := range inv.Items {
			if item.TimeEntryID != nil {
				items = append(items, item)
			}
		}
		if err := inv.ReplaceItems(append(items, manual...)); err != nil {
			return nil, err
		}
	}
	if err := inv.UpdateTerms(req.CaseID, dateOnly(req.IssueDate), dateOnly(req.DueDate), taxRate, discount, req.Notes); err != nil {
		return nil, err
	}
	if err := s.invoices.Save(ctx, inv); err != nil {
		return nil, err
	}
	resp := ToInvoiceResponse(inv)
	return &resp, nil
}

// AddTimeEntries bills unbilled time of the invoice's case as lines
func (s *InvoiceService) AddTimeEntries(ctx context.Context, firmID, invoiceID uuid.UUID, req AddTimeEntriesRequest) (*InvoiceResponse, error) {
	inv, err := s.invoices.FindByIDForFirm(ctx, firmID, invoiceID)
	if err != nil {
		return nil, err
	}
	if !inv.IsEditable() {
		return nil, shared.NewDomainError("INVOICE_NOT_EDITABLE", "Only draft invoices can be modified")
	}
	if inv.CaseID == nil {
		return nil, shared.NewDomainError("INVALID_CASE", "Invoice is not linked to a case")
	}
	unbilled, err := s.entries.FindUnbilledByCase(ctx, firmID, *inv.CaseID)
	if err != nil {
		return nil, err
	}
	selected, err := selectEntries(unbilled, req.EntryIDs)
	if err != nil {
		return nil, err
	}
	if len(selected) == 0 {
		return nil, shared.NewDomainError("NO_UNBILLED_TIME", "No unbilled time on this case")
	}

	for i := range selected {
		e := &selected[i]
		item, err := timeEntryItem(e)
		if err != nil {
			return nil, err
		}
		if err := inv.AddItem(item); err != nil {
			return nil, err
		}
		if err := e.MarkBilled(inv.ID); err != nil {
			return nil, err
		}
	}
	if err := s.invoices.Save(ctx, inv); err != nil {
		return nil, err
	}
	if err := s.entries.SaveBatch(ctx, selected); err != nil {
		return nil, err
	}

	s.logger.Info("Time billed",
		zap.String("invoice_id", inv.ID.String()),
		zap.Int("entries", len(selected)))
	resp := ToInvoiceResponse(inv)
	return &resp, nil
}

// RemoveItem drops a line from a draft and releases its time entry
func (s *InvoiceService) RemoveItem(ctx context.Context, firmID, invoiceID, itemID uuid.UUID) (*InvoiceResponse, error) {
	inv, err := s.invoices.FindByIDForFirm(ctx, firmID, invoiceID)
	if err != nil {
		return nil, err
	}
	var entryID *uuid.UUID
	for _, item := range inv.Items {
		if item.ID == itemID {
			entryID = item.TimeEntryID
		}
	}
	if err := inv.RemoveItem(itemID); err != nil {
		return nil, err
	}
	if err := s.invoices.Save(ctx, inv); err != nil {
		return nil, err
	}
	if entryID != nil {
		if err := s.releaseEntries(ctx, firmID, inv.ID, *entryID); err != nil {
			return nil, err
		}
	}
	resp := ToInvoiceResponse(inv)
	return &resp, nil
}

// Send issues a draft and emails it to the client. A failed email does
// not undo the send; the outcome is reported in the response.
func (s *InvoiceService) Send(ctx context.Context, firmID, actorID, invoiceID uuid.UUID) (*SendInvoiceResponse, error) {
	inv, err := s.invoices.FindByIDForFirm(ctx, firmID, invoiceID)
	if err != nil {
		return nil, err
	}
	c, err := s.clients.FindByIDForFirm(ctx, firmID, inv.ClientID)
	if err != nil {
		return nil, err
	}
	if err := inv.Send(s.now()); err != nil {
		return nil, err
	}
	if err := s.invoices.Save(ctx, inv); err != nil {
		return nil, err
	}
	s.publish(ctx, inv)

	out := &SendInvoiceResponse{Invoice: ToInvoiceResponse(inv)}
	switch {
	case s.mailer == nil:
		out.EmailError = "email is not configured"
	case !c.HasReachableEmail():
		out.EmailError = "client has no email address"
	default:
		comm, err := s.mailer.Send(ctx, firmID, actorID, appmsg.SendMessageRequest{
			Channel:  string(messaging.ChannelEmail),
			ClientID: &inv.ClientID,
			CaseID:   inv.CaseID,
			Template: string(messaging.TypeInvoiceSent),
			Data: map[string]any{
				"ClientName": c.Name,
				"Number":     inv.Number,
				"Total":      inv.Total,
				"Currency":   inv.Currency,
				"DueDate":    inv.DueDate,
			},
		})
		if err != nil {
			out.EmailError = err.Error()
			s.logger.Warn("Invoice email failed",
				zap.String("invoice_id", inv.ID.String()),
				zap.Error(err))
			break
		}
		out.Emailed = true
		out.CommunicationID = &comm.ID
	}
	return out, nil
}

// Cancel voids an invoice without payments and releases its time entries
func (s *InvoiceService) Cancel(ctx context.Context, firmID, invoiceID uuid.UUID) (*InvoiceResponse, error) {
	inv, err := s.invoices.FindByIDForFirm(ctx, firmID, invoiceID)
	if err != nil {
		return nil, err
	}
	if err := inv.Cancel(); err != nil {
		return nil, err
	}
	if err := s.invoices.Save(ctx, inv); err != nil {
		return nil, err
	}
	if err := s.releaseEntries(ctx, firmID, inv.ID); err != nil {
		return nil, err
	}
	resp := ToInvoiceResponse(inv)
	return &resp, nil
}

// Delete removes a draft and releases its time entries
func (s *InvoiceService) Delete(ctx context.Context, firmID, invoiceID uuid.UUID) error {
	inv, err := s.invoices.FindByIDForFirm(ctx, firmID, invoiceID)
	if err != nil {
		return err
	}
	if !inv.IsEditable() {
		return shared.NewDomainError("INVOICE_NOT_EDITABLE", "Only draft invoices can be deleted; cancel it instead")
	}
	if err := s.releaseEntries(ctx, firmID, inv.ID); err != nil {
		return err
	}
	return s.invoices.DeleteForFirm(ctx, firmID, invoiceID)
}

// MarkOverdue flags sent invoices past their due date across all firms
func (s *InvoiceService) MarkOverdue(ctx context.Context) (OverdueRun, error) {
	var run OverdueRun
	now := s.now()
	candidates, err := s.invoices.FindOverdueCandidates(ctx, dateOnly(now))
	if err != nil {
		return run, err
	}
	for i := range candidates {
		if err := ctx.Err(); err != nil {
			return run, err
		}
		inv := &candidates[i]
		run.Checked++
		if !inv.MarkOverdue(now) {
			continue
		}
		if err := s.invoices.Save(ctx, inv); err != nil {
			run.Failed++
			s.logger.Error("Failed to mark invoice overdue",
				zap.String("invoice_id", inv.ID.String()),
				zap.Error(err))
			continue
		}
		s.publish(ctx, inv)
		run.Marked++
	}
	return run, nil
}

// RenderPDF renders the invoice as a PDF
func (s *InvoiceService) RenderPDF(ctx context.Context, firmID, invoiceID uuid.UUID) (*PDFFile, error) {
	if err := s.gate.RequireFeature(ctx, firmID, subscription.FeatureInvoicePDF); err != nil {
		return nil, err
	}
	if s.pdf == nil {
		return nil, shared.NewDomainError("PDF_NOT_CONFIGURED", "PDF rendering is not configured")
	}
	inv, err := s.invoices.FindByIDForFirm(ctx, firmID, invoiceID)
	if err != nil {
		return nil, err
	}
	f, err := s.firms.FindByID(ctx, firmID)
	if err != nil {
		return nil, err
	}
	c, err := s.clients.FindByIDForFirm(ctx, firmID, inv.ClientID)
	if err != nil {
		return nil, err
	}
	doc := InvoiceDocument{Invoice: inv, Firm: f, Client: c}
	if inv.CaseID != nil {
		if cs, err := s.cases.FindByIDForFirm(ctx, firmID, *inv.CaseID); err == nil {
			doc.CaseReference = cs.Reference
		}
	}
	content, err := s.pdf.RenderInvoice(ctx, doc)
	if err != nil {
		s.logger.Error("Failed to render invoice PDF",
			zap.String("invoice_id", inv.ID.String()),
			zap.Error(err))
		return nil, fmt.Errorf("render invoice %s: %w", inv.Number, err)
	}
	return &PDFFile{Filename: inv.Number + ".pdf", Content: content}, nil
}

// releaseEntries unlinks the invoice's time entries, or only ids when given
func (s *InvoiceService) releaseEntries(ctx context.Context, firmID, invoiceID uuid.UUID, ids ...uuid.UUID) error {
	entries, err := s.entries.FindByInvoice(ctx, firmID, invoiceID)
	if err != nil {
		return err
	}
	released := make([]matter.TimeEntry, 0, len(entries))
	for _, e := range entries {
		if len(ids) > 0 && !slices.Contains(ids, e.ID) {
			continue
		}
		e.ReleaseBilling()
		released = append(released, e)
	}
	if len(released) == 0 {
		return nil
	}
	return s.entries.SaveBatch(ctx, released)
}

func (s *InvoiceService) ensureClient(ctx context.Context, firmID, clientID uuid.UUID) error {
	c, err := s.clients.FindByIDForFirm(ctx, firmID, clientID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.NewDomainError("INVALID_CLIENT", "Client does not exist")
		}
		return err
	}
	if c.Status == client.StatusArchived {
		return shared.NewDomainError("INVALID_CLIENT", "Client is archived")
	}
	return nil
}

func (s *InvoiceService) ensureCase(ctx context.Context, firmID uuid.UUID, caseID *uuid.UUID, clientID uuid.UUID) error {
	if caseID == nil {
		return nil
	}
	c, err := s.cases.FindByIDForFirm(ctx, firmID, *caseID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.NewDomainError("INVALID_CASE", "Case does not exist")
		}
		return err
	}
	if c.ClientID != clientID {
		return shared.NewDomainError("INVALID_CASE", "Case belongs to another client")
	}
	return nil
}

func (s *InvoiceService) publish(ctx context.Context, inv *invoice.Invoice) {
	events := inv.GetDomainEvents()
	inv.ClearDomainEvents()
	if s.publisher == nil || len(events) == 0 {
		return
	}
	if err := s.publisher.Publish(ctx, events...); err != nil {
		s.logger.Error("Failed to publish invoice events", zap.Error(err))
	}
}

func buildItems(reqs []ItemRequest) ([]invoice.Item, error) {
	items := make([]invoice.Item, 0, len(reqs))
	for _, r := range reqs {
		item, err := invoice.NewItem(r.Description, r.Quantity, r.UnitPrice)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

// timeEntryItem prices a line at the entry's exact amount; the quantity
// shown is the duration in hours
func timeEntryItem(e *matter.TimeEntry) (invoice.Item, error) {
	desc := fmt.Sprintf("%s - %s", e.WorkDate.Format("02/01/2006"), e.Description)
	item, err := invoice.NewItem(desc, e.Hours(), e.HourlyRate)
	if err != nil {
		return invoice.Item{}, err
	}
	item.Amount = e.Amount()
	id := e.ID
	item.TimeEntryID = &id
	return item, nil
}

func selectEntries(unbilled []matter.TimeEntry, ids []uuid.UUID) ([]matter.TimeEntry, error) {
	if len(ids) == 0 {
		return unbilled, nil
	}
	selected := make([]matter.TimeEntry, 0, len(ids))
	for _, id := range ids {
		found := false
		for _, e := range unbilled {
			if e.ID == id {
				selected = append(selected, e)
				found = true
				break
			}
		}
		if !found {
			return nil, shared.NewDomainError("INVALID_TIME_ENTRY",
				fmt.Sprintf("Time entry %s is not unbilled time of this case", id))
		}
	}
	return selected, nil
}

func orZero(d *decimal.Decimal) decimal.Decimal {
	if d == nil {
		return decimal.Zero
	}
	return *d
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
