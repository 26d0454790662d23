package printing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appinvoice "github.com/lexdesk/backend/internal/application/invoice"
	"github.com/lexdesk/backend/internal/domain/client"
	"github.com/lexdesk/backend/internal/domain/firm"
	"github.com/lexdesk/backend/internal/domain/invoice"
)

type fakeEngine struct {
	html string
	err  error
}

func (f *fakeEngine) RenderHTML(_ context.Context, html string) ([]byte, error) {
	f.html = html
	if f.err != nil {
		return nil, f.err
	}
	return []byte("%PDF-1.7"), nil
}

func (f *fakeEngine) Close() error { return nil }

func newInvoiceDocument(t *testing.T, locale firm.Locale) appinvoice.InvoiceDocument {
	t.Helper()
	f, err := firm.NewTrialFirm("Cabinet Mballa & Associés", "contact@mballa.test", 14)
	require.NoError(t, err)
	require.NoError(t, f.SetPreferences(locale, "XAF", "MB"))

	c, err := client.NewClient(f.ID, client.KindCompany, "Société <Alpha>")
	require.NoError(t, err)

	issue := time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC)
	inv, err := invoice.NewInvoice(f.ID, c.ID, "INV-2026-0007", issue, issue.AddDate(0, 0, 30), "XAF")
	require.NoError(t, err)
	item, err := invoice.NewItem("Consultation", decimal.NewFromInt(2), decimal.NewFromInt(450))
	require.NoError(t, err)
	require.NoError(t, inv.AddItem(item))

	return appinvoice.InvoiceDocument{Invoice: inv, Firm: f, Client: c, CaseReference: "MB-2026-0003"}
}

func TestInvoicePDF_RenderHTML_French(t *testing.T) {
	p, err := NewInvoicePDF(&fakeEngine{})
	require.NoError(t, err)

	html, err := p.RenderHTML(newInvoiceDocument(t, firm.LocaleFR))
	require.NoError(t, err)

	assert.Contains(t, html, `<html lang="fr">`)
	assert.Contains(t, html, "Facture")
	assert.Contains(t, html, "INV-2026-0007")
	assert.Contains(t, html, "05/03/2026")
	assert.Contains(t, html, "MB-2026-0003")
	assert.Contains(t, html, "900 XAF")
	assert.Contains(t, html, "Société &lt;Alpha&gt;", "client data is escaped")
	assert.NotContains(t, html, "Remise", "zero discount row is hidden")
}

func TestInvoicePDF_RenderHTML_English(t *testing.T) {
	p, err := NewInvoicePDF(&fakeEngine{})
	require.NoError(t, err)

	html, err := p.RenderHTML(newInvoiceDocument(t, firm.LocaleEN))
	require.NoError(t, err)
	assert.Contains(t, html, "Invoice")
	assert.Contains(t, html, "Mar 5, 2026")
	assert.Contains(t, html, "Bill to")
}

func TestInvoicePDF_RenderInvoice(t *testing.T) {
	engine := &fakeEngine{}
	p, err := NewInvoicePDF(engine)
	require.NoError(t, err)

	pdf, err := p.RenderInvoice(context.Background(), newInvoiceDocument(t, firm.LocaleFR))
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-1.7"), pdf)
	assert.Contains(t, engine.html, "INV-2026-0007")

	engine.err = NewRenderError(ErrCodeRenderTimeout, "timed out", errors.New("deadline"))
	_, err = p.RenderInvoice(context.Background(), newInvoiceDocument(t, firm.LocaleFR))
	var re *RenderError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, ErrCodeRenderTimeout, re.Code)
}

func TestInvoicePDF_MissingParts(t *testing.T) {
	p, err := NewInvoicePDF(&fakeEngine{})
	require.NoError(t, err)
	_, err = p.RenderHTML(appinvoice.InvoiceDocument{Invoice: &invoice.Invoice{}})
	assert.Error(t, err)
}

func TestWrapDocument(t *testing.T) {
	assert.Equal(t, "<!DOCTYPE html><p>x</p>", wrapDocument("<!DOCTYPE html><p>x</p>"))
	wrapped := wrapDocument("<p>x</p>")
	assert.Contains(t, wrapped, "<body><p>x</p></body>")
	assert.Contains(t, wrapped, `charset="UTF-8"`)
}

func TestChromedpRenderer_EmptyHTML(t *testing.T) {
	r := &ChromedpRenderer{timeout: time.Second}
	_, err := r.RenderHTML(context.Background(), "  ")
	var re *RenderError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, ErrCodeInvalidHTML, re.Code)
	assert.NoError(t, r.Close())
}

func TestMmToInches(t *testing.T) {
	assert.InDelta(t, 8.27, mmToInches(210), 0.01)
}
