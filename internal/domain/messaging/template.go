package messaging

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Rendered is the output of a template
type Rendered struct {
	Title string
	Body  string
}

type templatePair struct {
	title string
	body  string
}

var catalog = map[language.Tag]map[NotificationType]templatePair{
	language.French: {
		TypeSubscriptionExpiring: {
			title: "Votre abonnement expire bientôt",
			body:  "Votre abonnement {{.Plan}} expire le {{date .ExpiresAt}} ({{.DaysRemaining}} jour(s) restant(s)). Renouvelez-le pour conserver l'accès.",
		},
		TypeSubscriptionGrace: {
			title: "Abonnement expiré : période de grâce",
			body:  "Votre abonnement a expiré le {{date .ExpiresAt}}. L'accès sera suspendu le {{date .GraceEndsAt}} sans renouvellement.",
		},
		TypeSubscriptionExpired: {
			title: "Abonnement expiré",
			body:  "L'accès à votre cabinet est suspendu. Renouvelez votre abonnement pour le rétablir.",
		},
		TypePaymentSucceeded: {
			title: "Paiement reçu",
			body:  "Paiement de {{money .Amount .Currency}} reçu. Abonnement {{.Plan}} actif jusqu'au {{date .PeriodEnd}}.",
		},
		TypePaymentFailed: {
			title: "Échec du paiement",
			body:  "Le paiement de {{money .Amount .Currency}} via {{.Provider}} a échoué{{if .Reason}} : {{.Reason}}{{end}}.",
		},
		TypeEventReminder: {
			title: "Rappel : {{.Title}}",
			body:  "{{.Title}} le {{datetime .StartAt}}{{if .Location}} à {{.Location}}{{end}}.",
		},
		TypeInvoiceSent: {
			title: "Facture {{.Number}}",
			body:  "Bonjour {{.ClientName}},\n\nVeuillez trouver la facture {{.Number}} d'un montant de {{money .Total .Currency}}, payable avant le {{date .DueDate}}.\n\n{{.FirmName}}",
		},
		TypeInvoiceOverdue: {
			title: "Facture {{.Number}} en retard",
			body:  "La facture {{.Number}} est échue depuis le {{date .DueDate}}. Solde restant : {{money .Balance .Currency}}.",
		},
		TypeCaseStatusChanged: {
			title: "Dossier {{.Reference}} mis à jour",
			body:  "Le dossier {{.Reference}} est passé de « {{.From}} » à « {{.To}} ».",
		},
	},
	language.English: {
		TypeSubscriptionExpiring: {
			title: "Your subscription expires soon",
			body:  "Your {{.Plan}} subscription expires on {{date .ExpiresAt}} ({{.DaysRemaining}} day(s) left). Renew to keep access.",
		},
		TypeSubscriptionGrace: {
			title: "Subscription expired: grace period",
			body:  "Your subscription expired on {{date .ExpiresAt}}. Access will be suspended on {{date .GraceEndsAt}} unless you renew.",
		},
		TypeSubscriptionExpired: {
			title: "Subscription expired",
			body:  "Access to your firm is suspended. Renew your subscription to restore it.",
		},
		TypePaymentSucceeded: {
			title: "Payment received",
			body:  "Payment of {{money .Amount .Currency}} received. {{.Plan}} subscription active until {{date .PeriodEnd}}.",
		},
		TypePaymentFailed: {
			title: "Payment failed",
			body:  "The payment of {{money .Amount .Currency}} via {{.Provider}} failed{{if .Reason}}: {{.Reason}}{{end}}.",
		},
		TypeEventReminder: {
			title: "Reminder: {{.Title}}",
			body:  "{{.Title}} on {{datetime .StartAt}}{{if .Location}} at {{.Location}}{{end}}.",
		},
		TypeInvoiceSent: {
			title: "Invoice {{.Number}}",
			body:  "Dear {{.ClientName}},\n\nPlease find invoice {{.Number}} for {{money .Total .Currency}}, due by {{date .DueDate}}.\n\n{{.FirmName}}",
		},
		TypeInvoiceOverdue: {
			title: "Invoice {{.Number}} is overdue",
			body:  "Invoice {{.Number}} was due on {{date .DueDate}}. Outstanding balance: {{money .Balance .Currency}}.",
		},
		TypeCaseStatusChanged: {
			title: "Case {{.Reference}} updated",
			body:  "Case {{.Reference}} moved from \"{{.From}}\" to \"{{.To}}\".",
		},
	},
}

var supportedLocales = language.NewMatcher([]language.Tag{language.French, language.English})

// Renderer renders notification and message templates for a locale
type Renderer struct {
	templates map[language.Tag]map[NotificationType]*template.Template
}

// NewRenderer parses the built-in catalog
func NewRenderer() (*Renderer, error) {
	r := &Renderer{templates: make(map[language.Tag]map[NotificationType]*template.Template)}
	for tag, set := range catalog {
		r.templates[tag] = make(map[NotificationType]*template.Template, len(set))
		for typ, pair := range set {
			tmpl, err := template.New(string(typ)).
				Funcs(funcsFor(tag)).
				Option("missingkey=zero").
				Parse(pair.title + "\x00" + pair.body)
			if err != nil {
				return nil, fmt.Errorf("failed to parse template %s/%s: %w", tag, typ, err)
			}
			r.templates[tag][typ] = tmpl
		}
	}
	return r, nil
}

// MustNewRenderer panics when the built-in catalog does not parse
func MustNewRenderer() *Renderer {
	r, err := NewRenderer()
	if err != nil {
		panic(err)
	}
	return r
}

// Has reports whether a template exists for typ
func (r *Renderer) Has(typ NotificationType) bool {
	_, ok := r.templates[language.French][typ]
	return ok
}

// Render executes the template for typ in locale. Unknown locales fall
// back to French.
func (r *Renderer) Render(locale string, typ NotificationType, data map[string]any) (Rendered, error) {
	tag := ResolveLocale(locale)
	tmpl, ok := r.templates[tag][typ]
	if !ok {
		return Rendered{}, fmt.Errorf("no template for notification type %q", typ)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return Rendered{}, fmt.Errorf("failed to render %s: %w", typ, err)
	}
	title, body, _ := strings.Cut(buf.String(), "\x00")
	return Rendered{Title: strings.TrimSpace(title), Body: strings.TrimSpace(body)}, nil
}

// ResolveLocale maps a firm locale to a supported language
func ResolveLocale(locale string) language.Tag {
	tag, _, _ := supportedLocales.Match(language.Make(locale))
	base, _ := tag.Base()
	if base.String() == "en" {
		return language.English
	}
	return language.French
}

// FormatMoney renders amount with the locale's grouping and the currency's
// standard number of decimals, followed by the ISO code.
func FormatMoney(locale string, amount decimal.Decimal, code string) string {
	return moneyFunc(message.NewPrinter(ResolveLocale(locale)))(amount, code)
}

func funcsFor(tag language.Tag) template.FuncMap {
	p := message.NewPrinter(tag)
	dateLayout, dateTimeLayout := "02/01/2006", "02/01/2006 15:04"
	if tag == language.English {
		dateLayout, dateTimeLayout = "Jan 2, 2006", "Jan 2, 2006 3:04 PM"
	}
	return template.FuncMap{
		"money": moneyFunc(p),
		"date": func(t any) string {
			return formatTime(t, dateLayout)
		},
		"datetime": func(t any) string {
			return formatTime(t, dateTimeLayout)
		},
	}
}

func moneyFunc(p *message.Printer) func(amount any, code string) string {
	return func(amount any, code string) string {
		var d decimal.Decimal
		switch v := amount.(type) {
		case decimal.Decimal:
			d = v
		case *decimal.Decimal:
			if v != nil {
				d = *v
			}
		case int:
			d = decimal.NewFromInt(int64(v))
		case int64:
			d = decimal.NewFromInt(v)
		case float64:
			d = decimal.NewFromFloat(v)
		case string:
			d, _ = decimal.NewFromString(v)
		}
		scale := 2
		if unit, err := currency.ParseISO(code); err == nil {
			scale, _ = currency.Standard.Rounding(unit)
		}
		f, _ := d.Round(int32(scale)).Float64()
		return p.Sprintf("%v %s", number.Decimal(f, number.MinFractionDigits(scale), number.MaxFractionDigits(scale)), strings.ToUpper(code))
	}
}

func formatTime(t any, layout string) string {
	switch v := t.(type) {
	case time.Time:
		if v.IsZero() {
			return ""
		}
		return v.Format(layout)
	case *time.Time:
		if v == nil {
			return ""
		}
		return v.Format(layout)
	}
	return ""
}
