package repository

import (
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// applyOrdering sorts by a whitelisted field ("-field" for descending).
// Unknown fields fall back to primary key order.
func applyOrdering(q *gorm.DB, table, ordering string, allowed map[string]string) *gorm.DB {
	field, desc := strings.TrimSpace(ordering), false
	if strings.HasPrefix(field, "-") {
		field, desc = field[1:], true
	}
	col, ok := allowed[field]
	if !ok {
		return q.Order(clause.OrderByColumn{Column: clause.Column{Table: table, Name: "id"}})
	}
	return q.Order(clause.OrderByColumn{Column: clause.Column{Table: table, Name: col}, Desc: desc}).
		Order(clause.OrderByColumn{Column: clause.Column{Table: table, Name: "id"}})
}
