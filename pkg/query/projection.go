// Package query builds parameterized PostgreSQL queries over a projection of
// view field names onto table columns.
package query

import (
	"fmt"
	"strings"
)

// ProjectionMap maps view field names (the names callers filter and sort by)
// onto alias-qualified columns of a single table.
type ProjectionMap struct {
	schema  string
	table   string
	alias   string
	byView  map[string]string
	ordered []string
}

func NewProjectionMap(schema, table, alias string) *ProjectionMap {
	return &ProjectionMap{
		schema: schema,
		table:  table,
		alias:  alias,
		byView: make(map[string]string),
	}
}

// Project maps column to viewName. Projection order is the SELECT order, so
// scan functions must read columns in the order they were projected.
func (p *ProjectionMap) Project(column, viewName string) *ProjectionMap {
	qualified := p.alias + "." + column
	p.byView[viewName] = qualified
	p.ordered = append(p.ordered, qualified)
	return p
}

func (p *ProjectionMap) Alias() string { return p.alias }

// Table returns "schema.table alias".
func (p *ProjectionMap) Table() string {
	return fmt.Sprintf("%s.%s %s", p.schema, p.table, p.alias)
}

// Column returns the qualified column for a view field. The second result is
// false for fields that were never projected.
func (p *ProjectionMap) Column(viewName string) (string, bool) {
	col, ok := p.byView[viewName]
	return col, ok
}

// MustColumn is Column for field names fixed in code. It panics on an
// unprojected field.
func (p *ProjectionMap) MustColumn(viewName string) string {
	col, ok := p.byView[viewName]
	if !ok {
		panic(fmt.Sprintf("query: %s.%s has no projected field %q", p.schema, p.table, viewName))
	}
	return col
}

// Columns returns the SELECT list.
func (p *ProjectionMap) Columns() string {
	return strings.Join(p.ordered, ", ")
}

// ColumnList returns a copy of the projected columns in SELECT order.
func (p *ProjectionMap) ColumnList() []string {
	out := make([]string, len(p.ordered))
	copy(out, p.ordered)
	return out
}
