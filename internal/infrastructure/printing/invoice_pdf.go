package printing

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"html/template"
	"time"

	"github.com/shopspring/decimal"

	appinvoice "github.com/lexdesk/backend/internal/application/invoice"
	"github.com/lexdesk/backend/internal/domain/firm"
	"github.com/lexdesk/backend/internal/domain/messaging"
)

//go:embed templates/invoice.html
var invoiceTemplateText string

var invoiceLabels = map[firm.Locale]map[string]string{
	firm.LocaleFR: {
		"invoice": "Facture", "issued": "Date d'émission", "due": "Échéance",
		"billTo": "Facturé à", "case": "Dossier", "description": "Désignation",
		"qty": "Qté", "unitPrice": "Prix unitaire", "amount": "Montant",
		"subtotal": "Sous-total", "discount": "Remise", "tax": "TVA",
		"total": "Total", "paid": "Déjà réglé", "balance": "Reste à payer",
		"notes": "Notes", "bar": "Barreau",
	},
	firm.LocaleEN: {
		"invoice": "Invoice", "issued": "Issue date", "due": "Due date",
		"billTo": "Bill to", "case": "Case", "description": "Description",
		"qty": "Qty", "unitPrice": "Unit price", "amount": "Amount",
		"subtotal": "Subtotal", "discount": "Discount", "tax": "Tax",
		"total": "Total", "paid": "Paid", "balance": "Balance due",
		"notes": "Notes", "bar": "Bar no.",
	},
}

// InvoicePDF lays an invoice out as HTML and prints it
type InvoicePDF struct {
	engine HTMLToPDF
	tmpl   *template.Template
}

// NewInvoicePDF parses the invoice layout
func NewInvoicePDF(engine HTMLToPDF) (*InvoicePDF, error) {
	tmpl, err := template.New("invoice").Funcs(template.FuncMap{
		"money": messaging.FormatMoney,
		"date": func(locale string, t time.Time) string {
			if locale == string(firm.LocaleEN) {
				return t.Format("Jan 2, 2006")
			}
			return t.Format("02/01/2006")
		},
		"positive": func(d decimal.Decimal) bool { return d.IsPositive() },
	}).Parse(invoiceTemplateText)
	if err != nil {
		return nil, fmt.Errorf("failed to parse invoice template: %w", err)
	}
	return &InvoicePDF{engine: engine, tmpl: tmpl}, nil
}

// RenderInvoice renders doc to PDF
func (p *InvoicePDF) RenderInvoice(ctx context.Context, doc appinvoice.InvoiceDocument) ([]byte, error) {
	html, err := p.RenderHTML(doc)
	if err != nil {
		return nil, err
	}
	return p.engine.RenderHTML(ctx, html)
}

// RenderHTML lays doc out without printing it
func (p *InvoicePDF) RenderHTML(doc appinvoice.InvoiceDocument) (string, error) {
	if doc.Invoice == nil || doc.Firm == nil || doc.Client == nil {
		return "", NewRenderError(ErrCodeTemplate, "invoice, firm and client are required", nil)
	}
	locale := doc.Firm.Locale
	labels, ok := invoiceLabels[locale]
	if !ok {
		locale = firm.LocaleFR
		labels = invoiceLabels[locale]
	}

	var buf bytes.Buffer
	err := p.tmpl.Execute(&buf, map[string]any{
		"Locale":        string(locale),
		"L":             labels,
		"Invoice":       doc.Invoice,
		"Firm":          doc.Firm,
		"Client":        doc.Client,
		"CaseReference": doc.CaseReference,
		"Balance":       doc.Invoice.Balance(),
	})
	if err != nil {
		return "", NewRenderError(ErrCodeTemplate, "failed to render invoice template", err)
	}
	return buf.String(), nil
}

var _ appinvoice.PDFRenderer = (*InvoicePDF)(nil)
