package persistence

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/lexdesk/backend/internal/domain/shared"
	"github.com/lexdesk/backend/internal/infrastructure/persistence/models"
)

func TestValidateSortOrder(t *testing.T) {
	for in, want := range map[string]string{
		"":                    "DESC",
		"asc":                 "ASC",
		"  Asc ":              "ASC",
		"desc":                "DESC",
		"ASC; DROP TABLE x--": "DESC",
	} {
		assert.Equal(t, want, ValidateSortOrder(in), "input %q", in)
	}
}

func TestValidateSortField(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"reference", "reference"},
		{" opened_at ", "opened_at"},
		{"", "created_at"},
		{"password_hash", "created_at"},
		{"reference; DELETE FROM cases", "created_at"},
		{"Reference", "created_at"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ValidateSortField(tt.in, CaseSortFields, "created_at"), "input %q", tt.in)
	}
}

func TestSortFieldWhitelists_IncludeCommonColumns(t *testing.T) {
	for name, fields := range map[string]map[string]bool{
		"firm": FirmSortFields, "client": ClientSortFields, "case": CaseSortFields,
		"invoice": InvoiceSortFields, "payment": PaymentSortFields,
	} {
		for _, col := range []string{"id", "created_at", "updated_at"} {
			assert.True(t, fields[col], "%s sorts by %s", name, col)
		}
	}
}

func dryRun(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{DryRun: true})
	require.NoError(t, err)
	return db
}

func renderedSQL(q *gorm.DB) string {
	var out []models.ClientModel
	return q.Find(&out).Statement.SQL.String()
}

func TestQueryHelpers_SQL(t *testing.T) {
	db := dryRun(t)
	base := func() *gorm.DB { return db.Model(&models.ClientModel{}) }

	t.Run("paginate", func(t *testing.T) {
		sql := renderedSQL(paginate(base(), shared.Filter{Page: 3, PageSize: 10, OrderBy: "name", OrderDir: "asc"},
			ClientSortFields, "created_at"))
		assert.Contains(t, sql, "ORDER BY name ASC, id")
		assert.Contains(t, sql, "LIMIT 10 OFFSET 20")
	})

	t.Run("paginate rejects unknown column", func(t *testing.T) {
		sql := renderedSQL(paginate(base(), shared.Filter{OrderBy: "1; --"}, ClientSortFields, "created_at"))
		assert.Contains(t, sql, "ORDER BY created_at DESC")
	})

	t.Run("search", func(t *testing.T) {
		sql := renderedSQL(search(base(), "  Mbarga ", "name", "email"))
		assert.Contains(t, sql, "(LOWER(name) LIKE ? OR LOWER(email) LIKE ?)")
		assert.NotContains(t, renderedSQL(search(base(), "   ", "name")), "LIKE")
	})

	t.Run("date range", func(t *testing.T) {
		from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
		sql := renderedSQL(dateRange(base(), shared.Filter{From: &from}, "created_at"))
		assert.Contains(t, sql, "created_at >= ?")
		assert.NotContains(t, sql, "created_at <=")
	})
}

func TestStringFilter(t *testing.T) {
	f := shared.Filter{Filters: map[string]any{"status": "active", "empty": "", "active": true}}

	v, ok := stringFilter(f, "status")
	assert.True(t, ok)
	assert.Equal(t, "active", v)

	for _, key := range []string{"empty", "active", "missing"} {
		_, ok := stringFilter(f, key)
		assert.False(t, ok, key)
	}
}
