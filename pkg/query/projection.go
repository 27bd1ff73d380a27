// Package query builds parameterized PostgreSQL SELECT statements over a
// projection of logical field names onto aliased table columns.
package query

import "strings"

// ProjectionMap maps logical field names (the names used by Go types and API
// clients) to alias-qualified columns of a single table.
type ProjectionMap struct {
	table   string
	alias   string
	columns map[string]string
	order   []string
}

// NewProjectionMap creates a ProjectionMap for schema.table referenced as alias.
func NewProjectionMap(schema, table, alias string) *ProjectionMap {
	return &ProjectionMap{
		table:   schema + "." + table,
		alias:   alias,
		columns: make(map[string]string),
	}
}

// Project maps column onto field. Columns are selected in projection order.
func (p *ProjectionMap) Project(column, field string) *ProjectionMap {
	qualified := p.alias + "." + column
	p.columns[field] = qualified
	p.order = append(p.order, qualified)
	return p
}

// Table returns the FROM target: "schema.table alias".
func (p *ProjectionMap) Table() string {
	return p.table + " " + p.alias
}

// Has reports whether field is projected.
func (p *ProjectionMap) Has(field string) bool {
	_, ok := p.columns[field]
	return ok
}

// Column returns the qualified column for field. Unprojected names are
// returned unchanged so callers can reference raw columns.
func (p *ProjectionMap) Column(field string) string {
	if col, ok := p.columns[field]; ok {
		return col
	}
	return field
}

// Columns returns the select list in projection order.
func (p *ProjectionMap) Columns() string {
	return strings.Join(p.order, ", ")
}
