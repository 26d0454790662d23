// Package subscription decides what a firm may do: whether its subscription
// still grants access, which features its plan includes and how much of each
// resource it may create.
package subscription

import (
	"sort"

	"github.com/lexdesk/backend/internal/domain/firm"
	"github.com/lexdesk/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Resource is a countable thing limited per plan
type Resource string

const (
	ResourceClients          Resource = "clients"
	ResourceCases            Resource = "cases"
	ResourceUsers            Resource = "users"
	ResourceDocuments        Resource = "documents"
	ResourceStorageMB        Resource = "storage_mb"
	ResourceInvoicesPerMonth Resource = "invoices_per_month"
	ResourceSMSPerMonth      Resource = "sms_per_month"
)

// AllResources lists the limited resources in display order
func AllResources() []Resource {
	return []Resource{
		ResourceClients,
		ResourceCases,
		ResourceUsers,
		ResourceDocuments,
		ResourceStorageMB,
		ResourceInvoicesPerMonth,
		ResourceSMSPerMonth,
	}
}

// IsValid reports whether r is a known resource
func (r Resource) IsValid() bool {
	for _, known := range AllResources() {
		if r == known {
			return true
		}
	}
	return false
}

// Feature is an on/off capability of a plan
type Feature string

const (
	FeatureSMS             Feature = "sms"
	FeatureWhatsApp        Feature = "whatsapp"
	FeatureInvoicePDF      Feature = "invoice_pdf"
	FeatureTimeTracking    Feature = "time_tracking"
	FeatureDocumentStorage Feature = "document_storage"
)

// Unlimited marks a resource without a cap
const Unlimited = -1

// PlanDefinition is one row of the plan table
type PlanDefinition struct {
	Plan         firm.Plan
	Name         string
	MonthlyPrice decimal.Decimal
	Limits       map[Resource]int
	Features     map[Feature]bool
}

// Purchasable reports whether the plan can be paid for
func (d PlanDefinition) Purchasable() bool {
	return d.Plan != firm.PlanTrial
}

// Limit returns the cap for r; unknown resources are unlimited
func (d PlanDefinition) Limit(r Resource) int {
	limit, ok := d.Limits[r]
	if !ok {
		return Unlimited
	}
	return limit
}

// HasFeature reports whether the plan includes f
func (d PlanDefinition) HasFeature(f Feature) bool {
	return d.Features[f]
}

// AnnualBilledMonths is what a 12-month purchase costs, in months
const AnnualBilledMonths = 10

// AllowedPeriods are the purchasable subscription lengths in months
var AllowedPeriods = []int{1, 3, 6, 12}

// IsAllowedPeriod reports whether months is a purchasable length
func IsAllowedPeriod(months int) bool {
	for _, m := range AllowedPeriods {
		if m == months {
			return true
		}
	}
	return false
}

// PriceFor returns the amount due for months of this plan
func (d PlanDefinition) PriceFor(months int) decimal.Decimal {
	billed := months
	if months == 12 {
		billed = AnnualBilledMonths
	}
	return d.MonthlyPrice.Mul(decimal.NewFromInt(int64(billed)))
}

// Catalog is the static plan table
type Catalog struct {
	plans map[firm.Plan]PlanDefinition
}

// NewCatalog builds a catalog from definitions
func NewCatalog(defs ...PlanDefinition) *Catalog {
	c := &Catalog{plans: make(map[firm.Plan]PlanDefinition, len(defs))}
	for _, d := range defs {
		c.plans[d.Plan] = d
	}
	return c
}

// Get returns the definition of plan
func (c *Catalog) Get(plan firm.Plan) (PlanDefinition, error) {
	d, ok := c.plans[plan]
	if !ok {
		return PlanDefinition{}, shared.NewDomainError("INVALID_PLAN", "Unknown plan: "+string(plan))
	}
	return d, nil
}

// All returns every plan ordered by price
func (c *Catalog) All() []PlanDefinition {
	out := make([]PlanDefinition, 0, len(c.plans))
	for _, d := range c.plans {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].MonthlyPrice.LessThan(out[j].MonthlyPrice)
	})
	return out
}

// DefaultCatalog returns the plan table the service ships with
func DefaultCatalog() *Catalog {
	return NewCatalog(
		PlanDefinition{
			Plan:         firm.PlanTrial,
			Name:         "Essai",
			MonthlyPrice: decimal.Zero,
			Limits: map[Resource]int{
				ResourceClients:          10,
				ResourceCases:            10,
				ResourceUsers:            2,
				ResourceDocuments:        50,
				ResourceStorageMB:        500,
				ResourceInvoicesPerMonth: 10,
				ResourceSMSPerMonth:      20,
			},
			Features: map[Feature]bool{
				FeatureSMS:             true,
				FeatureInvoicePDF:      true,
				FeatureTimeTracking:    true,
				FeatureDocumentStorage: true,
			},
		},
		PlanDefinition{
			Plan:         firm.PlanStarter,
			Name:         "Starter",
			MonthlyPrice: decimal.NewFromInt(15000),
			Limits: map[Resource]int{
				ResourceClients:          50,
				ResourceCases:            100,
				ResourceUsers:            3,
				ResourceDocuments:        500,
				ResourceStorageMB:        2048,
				ResourceInvoicesPerMonth: 50,
				ResourceSMSPerMonth:      100,
			},
			Features: map[Feature]bool{
				FeatureSMS:             true,
				FeatureInvoicePDF:      true,
				FeatureDocumentStorage: true,
			},
		},
		PlanDefinition{
			Plan:         firm.PlanProfessional,
			Name:         "Professionnel",
			MonthlyPrice: decimal.NewFromInt(35000),
			Limits: map[Resource]int{
				ResourceClients:          500,
				ResourceCases:            1000,
				ResourceUsers:            10,
				ResourceDocuments:        5000,
				ResourceStorageMB:        20480,
				ResourceInvoicesPerMonth: 500,
				ResourceSMSPerMonth:      1000,
			},
			Features: map[Feature]bool{
				FeatureSMS:             true,
				FeatureWhatsApp:        true,
				FeatureInvoicePDF:      true,
				FeatureTimeTracking:    true,
				FeatureDocumentStorage: true,
			},
		},
		PlanDefinition{
			Plan:         firm.PlanEnterprise,
			Name:         "Entreprise",
			MonthlyPrice: decimal.NewFromInt(75000),
			Limits: map[Resource]int{
				ResourceClients:          Unlimited,
				ResourceCases:            Unlimited,
				ResourceUsers:            Unlimited,
				ResourceDocuments:        Unlimited,
				ResourceStorageMB:        102400,
				ResourceInvoicesPerMonth: Unlimited,
				ResourceSMSPerMonth:      5000,
			},
			Features: map[Feature]bool{
				FeatureSMS:             true,
				FeatureWhatsApp:        true,
				FeatureInvoicePDF:      true,
				FeatureTimeTracking:    true,
				FeatureDocumentStorage: true,
			},
		},
	)
}
