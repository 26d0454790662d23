package invoice

import (
	"context"

	"github.com/lexdesk/backend/internal/domain/client"
	"github.com/lexdesk/backend/internal/domain/firm"
	"github.com/lexdesk/backend/internal/domain/invoice"
)

// InvoiceDocument is everything printed on an invoice
type InvoiceDocument struct {
	Invoice       *invoice.Invoice
	Firm          *firm.Firm
	Client        *client.Client
	CaseReference string
}

// PDFRenderer turns an invoice into a PDF file
type PDFRenderer interface {
	RenderInvoice(ctx context.Context, doc InvoiceDocument) ([]byte, error)
}
