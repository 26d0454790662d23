package persistence

import (
	"strings"

	"github.com/lexdesk/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// ValidateSortOrder validates and normalizes the sort order to ASC or DESC.
// Returns "DESC" as the default if the input is invalid or empty.
func ValidateSortOrder(orderDir string) string {
	normalized := strings.ToUpper(strings.TrimSpace(orderDir))
	if normalized == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField validates the sort field against a whitelist of allowed fields.
// Returns the defaultField if the input is invalid, empty, or not in the whitelist.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed == "" {
		return defaultField
	}
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

func withCommon(fields ...string) map[string]bool {
	m := map[string]bool{"id": true, "created_at": true, "updated_at": true}
	for _, f := range fields {
		m[f] = true
	}
	return m
}

// Allowed sort fields per table
var (
	FirmSortFields          = withCommon("name", "plan", "status", "subscription_expires_at", "trial_ends_at")
	ProfileSortFields       = withCommon("full_name", "email", "role", "last_login_at")
	ClientSortFields        = withCommon("name", "kind", "status", "city", "email")
	ContactSortFields       = withCommon("name", "category", "organization")
	CaseSortFields          = withCommon("reference", "title", "status", "priority", "type", "opened_at", "closed_at")
	TimeEntrySortFields     = withCommon("work_date", "minutes", "hourly_rate")
	CalendarEventSortFields = withCommon("start_at", "end_at", "title", "type", "status")
	DocumentSortFields      = withCommon("name", "category", "size_bytes")
	InvoiceSortFields       = withCommon("number", "issue_date", "due_date", "status", "total")
	CommunicationSortFields = withCommon("channel", "status", "sent_at")
	NotificationSortFields  = withCommon("priority", "read_at")
	PaymentSortFields       = withCommon("status", "amount", "paid_at", "completed_at")
)

// paginate applies a whitelisted ORDER BY and LIMIT/OFFSET from filter
func paginate(query *gorm.DB, filter shared.Filter, allowed map[string]bool, defaultField string) *gorm.DB {
	field := ValidateSortField(filter.OrderBy, allowed, defaultField)
	order := field + " " + ValidateSortOrder(filter.OrderDir)
	// id breaks ties so pages never overlap
	if field != "id" {
		order += ", id"
	}
	return query.
		Order(order).
		Offset(filter.Offset()).
		Limit(filter.Limit())
}

// search adds a case-insensitive LIKE over columns, portable across
// PostgreSQL and SQLite
func search(query *gorm.DB, term string, columns ...string) *gorm.DB {
	term = strings.TrimSpace(term)
	if term == "" || len(columns) == 0 {
		return query
	}
	pattern := "%" + strings.ToLower(term) + "%"
	clauses := make([]string, len(columns))
	args := make([]any, len(columns))
	for i, col := range columns {
		clauses[i] = "LOWER(" + col + ") LIKE ?"
		args[i] = pattern
	}
	return query.Where("("+strings.Join(clauses, " OR ")+")", args...)
}

// dateRange restricts column to [filter.From, filter.To]
func dateRange(query *gorm.DB, filter shared.Filter, column string) *gorm.DB {
	if filter.From != nil {
		query = query.Where(column+" >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where(column+" <= ?", *filter.To)
	}
	return query
}

// stringFilter returns filter.Filters[key] when it is a non-empty string
func stringFilter(filter shared.Filter, key string) (string, bool) {
	v, ok := filter.Filters[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	if !ok || s == "" {
		return "", false
	}
	return s, true
}

// countAndFind counts the rows matched by query, then loads one page of them
// into dest. The count runs on a separate session so query is not mutated.
func countAndFind(query *gorm.DB, filter shared.Filter, allowed map[string]bool, defaultField string, dest any) (int64, error) {
	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return 0, err
	}
	if total == 0 {
		return 0, nil
	}
	if err := paginate(query.Session(&gorm.Session{}), filter, allowed, defaultField).Find(dest).Error; err != nil {
		return 0, err
	}
	return total, nil
}
