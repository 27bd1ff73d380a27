package query

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// SortField is one ORDER BY term. Field is a projected field name.
type SortField struct {
	Field      string
	Descending bool
}

// ParseSortFields parses "Symbol,-CreatedAt" into sort fields; a leading "-"
// sorts descending. Blank terms are skipped and empty input yields nil.
func ParseSortFields(s string) []SortField {
	if s == "" {
		return nil
	}

	var fields []SortField
	for part := range strings.SplitSeq(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, desc := strings.CutPrefix(part, "-")
		fields = append(fields, SortField{Field: name, Descending: desc})
	}
	return fields
}

// binder hands out positional placeholders while collecting their arguments.
type binder struct {
	args []any
}

func (b *binder) bind(v any) string {
	b.args = append(b.args, v)
	return "$" + strconv.Itoa(len(b.args))
}

// condition renders one WHERE term, binding its arguments as it goes.
type condition func(b *binder) string

// Builder accumulates filter conditions and ordering for one projection.
// Conditions are ANDed in the order they were added.
type Builder struct {
	projection  *ProjectionMap
	conditions  []condition
	sort        []SortField
	defaultSort []SortField
}

// NewBuilder creates a Builder ordering by defaultSort unless OrderByFields
// supplies a usable sort.
func NewBuilder(projection *ProjectionMap, defaultSort ...SortField) *Builder {
	return &Builder{
		projection:  projection,
		defaultSort: defaultSort,
	}
}

// OrderByFields sets the requested sort. Fields the projection does not know
// are dropped; if none remain the default sort applies.
func (b *Builder) OrderByFields(fields []SortField) *Builder {
	b.sort = b.sort[:0]
	for _, f := range fields {
		if b.projection.Has(f.Field) {
			b.sort = append(b.sort, f)
		}
	}
	return b
}

// WhereEquals adds field = value. Nil values, including typed nil pointers,
// add nothing.
func (b *Builder) WhereEquals(field string, value any) *Builder {
	if isNil(value) {
		return b
	}
	col := b.projection.Column(field)
	return b.where(func(bn *binder) string {
		return col + " = " + bn.bind(value)
	})
}

// WhereContains adds a case-insensitive substring match. LIKE wildcards in
// value match literally.
func (b *Builder) WhereContains(field string, value *string) *Builder {
	if value == nil || *value == "" {
		return b
	}
	col := b.projection.Column(field)
	pattern := containsPattern(*value)
	return b.where(func(bn *binder) string {
		return col + " ILIKE " + bn.bind(pattern)
	})
}

// WhereExcludes adds a case-sensitive NOT LIKE condition that rejects rows
// whose column contains value.
func (b *Builder) WhereExcludes(field string, value *string) *Builder {
	if value == nil || *value == "" {
		return b
	}
	col := b.projection.Column(field)
	pattern := containsPattern(*value)
	return b.where(func(bn *binder) string {
		return col + " NOT LIKE " + bn.bind(pattern)
	})
}

// WhereSearch matches search case-insensitively against any of fields.
func (b *Builder) WhereSearch(search *string, fields ...string) *Builder {
	if search == nil || *search == "" || len(fields) == 0 {
		return b
	}
	pattern := containsPattern(*search)
	cols := make([]string, len(fields))
	for i, f := range fields {
		cols[i] = b.projection.Column(f)
	}
	return b.where(func(bn *binder) string {
		terms := make([]string, len(cols))
		for i, col := range cols {
			terms[i] = col + " ILIKE " + bn.bind(pattern)
		}
		return "(" + strings.Join(terms, " OR ") + ")"
	})
}

// Build returns the ordered SELECT for every matching row.
func (b *Builder) Build() (string, []any) {
	var bn binder
	sql := b.selectClause() + b.whereClause(&bn) + b.orderClause()
	return sql, bn.args
}

// BuildCount returns SELECT COUNT(*) over the matching rows.
func (b *Builder) BuildCount() (string, []any) {
	var bn binder
	sql := "SELECT COUNT(*) FROM " + b.projection.Table() + b.whereClause(&bn)
	return sql, bn.args
}

// BuildPage returns the ordered SELECT for a 1-based page of pageSize rows.
func (b *Builder) BuildPage(page, pageSize int) (string, []any) {
	sql, args := b.Build()
	return fmt.Sprintf("%s LIMIT %d OFFSET %d", sql, pageSize, max(page-1, 0)*pageSize), args
}

// BuildSingle returns the SELECT for the row whose idField equals id. Builder
// conditions and ordering are ignored.
func (b *Builder) BuildSingle(idField string, id any) (string, []any) {
	return b.selectClause() + " WHERE " + b.projection.Column(idField) + " = $1", []any{id}
}

func (b *Builder) where(c condition) *Builder {
	b.conditions = append(b.conditions, c)
	return b
}

func (b *Builder) selectClause() string {
	return "SELECT " + b.projection.Columns() + " FROM " + b.projection.Table()
}

func (b *Builder) whereClause(bn *binder) string {
	if len(b.conditions) == 0 {
		return ""
	}
	terms := make([]string, len(b.conditions))
	for i, c := range b.conditions {
		terms[i] = c(bn)
	}
	return " WHERE " + strings.Join(terms, " AND ")
}

func (b *Builder) orderClause() string {
	fields := b.sort
	if len(fields) == 0 {
		fields = b.defaultSort
	}
	if len(fields) == 0 {
		return ""
	}

	terms := make([]string, len(fields))
	for i, f := range fields {
		dir := " ASC"
		if f.Descending {
			dir = " DESC"
		}
		terms[i] = b.projection.Column(f.Field) + dir
	}
	return " ORDER BY " + strings.Join(terms, ", ")
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}

func isNil(value any) bool {
	if value == nil {
		return true
	}
	v := reflect.ValueOf(value)
	switch v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface:
		return v.IsNil()
	}
	return false
}
