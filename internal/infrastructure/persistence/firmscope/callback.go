package firmscope

import (
	"strings"

	"github.com/lexdesk/backend/internal/infrastructure/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const callbackPrefix = "firmscope:"

// EnableAutoFilter registers callbacks that add firm_id = <context firm> to
// queries, updates and deletes on models that have a firm_id column.
// Tables without the column (firms, raw SQL) are left alone, as are
// statements that already filter on firm_id.
func EnableAutoFilter(db *gorm.DB) error {
	cb := db.Callback()
	if err := cb.Query().Before("gorm:query").Register(callbackPrefix+"query", addFirmFilter); err != nil {
		return err
	}
	if err := cb.Row().Before("gorm:row").Register(callbackPrefix+"row", addFirmFilter); err != nil {
		return err
	}
	if err := cb.Update().Before("gorm:update").Register(callbackPrefix+"update", addFirmFilter); err != nil {
		return err
	}
	return cb.Delete().Before("gorm:delete").Register(callbackPrefix+"delete", addFirmFilter)
}

// DisableAutoFilter removes the callbacks registered by EnableAutoFilter
func DisableAutoFilter(db *gorm.DB) {
	cb := db.Callback()
	_ = cb.Query().Remove(callbackPrefix + "query")
	_ = cb.Row().Remove(callbackPrefix + "row")
	_ = cb.Update().Remove(callbackPrefix + "update")
	_ = cb.Delete().Remove(callbackPrefix + "delete")
}

func addFirmFilter(db *gorm.DB) {
	stmt := db.Statement
	if stmt.Context == nil || stmt.Unscoped || stmt.Schema == nil {
		return
	}
	if stmt.Schema.LookUpField(Column) == nil {
		return
	}
	firmID := logger.GetFirmID(stmt.Context)
	if firmID == "" || hasFirmCondition(stmt) {
		return
	}
	id, err := FirmIDFromContext(stmt.Context)
	if err != nil {
		_ = db.AddError(err)
		return
	}
	stmt.AddClause(clause.Where{Exprs: []clause.Expression{
		clause.Eq{Column: clause.Column{Table: clause.CurrentTable, Name: Column}, Value: id},
	}})
}

func hasFirmCondition(stmt *gorm.Statement) bool {
	c, ok := stmt.Clauses["WHERE"]
	if !ok {
		return false
	}
	where, ok := c.Expression.(clause.Where)
	if !ok {
		return false
	}
	for _, expr := range where.Exprs {
		if mentionsFirm(expr) {
			return true
		}
	}
	return false
}

func mentionsFirm(expr clause.Expression) bool {
	switch e := expr.(type) {
	case clause.Eq:
		if col, ok := e.Column.(clause.Column); ok {
			return col.Name == Column
		}
	case clause.IN:
		if col, ok := e.Column.(clause.Column); ok {
			return col.Name == Column
		}
	case clause.Expr:
		return containsColumn(e.SQL)
	case clause.NamedExpr:
		return containsColumn(e.SQL)
	case clause.AndConditions:
		for _, sub := range e.Exprs {
			if mentionsFirm(sub) {
				return true
			}
		}
	case clause.OrConditions:
		for _, sub := range e.Exprs {
			if mentionsFirm(sub) {
				return true
			}
		}
	}
	return false
}

func containsColumn(sql string) bool {
	return strings.Contains(sql, Column)
}
