package query

import (
	"fmt"
	"reflect"
	"strings"
)

// SortField is one ORDER BY term named by view field.
type SortField struct {
	Field      string
	Descending bool
}

// ParseSortFields parses "year,-createdAt" style sort strings. A leading "-"
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

// predicate renders one WHERE term. bind reserves the next positional
// parameter for v and returns its placeholder.
type predicate func(bind func(v any) string) string

// Builder accumulates conditions and ordering for one projection. Conditions
// are ANDed in the order they were added and parameters are numbered when
// the query is built, so a builder can render both a count and a page query.
type Builder struct {
	projection  *ProjectionMap
	where       []predicate
	sort        []SortField
	defaultSort []SortField
}

func NewBuilder(projection *ProjectionMap, defaultSort ...SortField) *Builder {
	return &Builder{
		projection:  projection,
		defaultSort: defaultSort,
	}
}

// Build returns the full SELECT with conditions and ordering.
func (b *Builder) Build() (string, []any) {
	where, args := b.render()
	return b.selectFrom() + where + b.orderBy(), args
}

// BuildCount returns SELECT COUNT(*) under the same conditions.
func (b *Builder) BuildCount() (string, []any) {
	where, args := b.render()
	return "SELECT COUNT(*) FROM " + b.projection.Table() + where, args
}

// BuildPage returns Build limited to one page. Page numbers start at 1.
func (b *Builder) BuildPage(page, pageSize int) (string, []any) {
	where, args := b.render()
	offset := max(page-1, 0) * pageSize
	return fmt.Sprintf("%s%s%s LIMIT %d OFFSET %d",
		b.selectFrom(), where, b.orderBy(), pageSize, offset), args
}

// BuildSingle selects one row by its identifying field, ignoring any
// accumulated conditions.
func (b *Builder) BuildSingle(idField string, id any) (string, []any) {
	return fmt.Sprintf("%s WHERE %s = $1", b.selectFrom(), b.projection.MustColumn(idField)), []any{id}
}

// OrderByFields replaces the default ordering. Fields the projection does
// not know are dropped.
func (b *Builder) OrderByFields(fields []SortField) *Builder {
	b.sort = fields
	return b
}

// WhereEquals adds field = value. Nil values, including typed nil pointers,
// add nothing.
func (b *Builder) WhereEquals(field string, value any) *Builder {
	return b.compare(field, "=", value)
}

// WhereAtLeast adds field >= value. Nil values add nothing.
func (b *Builder) WhereAtLeast(field string, value any) *Builder {
	return b.compare(field, ">=", value)
}

// WhereAtMost adds field <= value. Nil values add nothing.
func (b *Builder) WhereAtMost(field string, value any) *Builder {
	return b.compare(field, "<=", value)
}

// WhereContains adds a case-insensitive substring match.
func (b *Builder) WhereContains(field string, value *string) *Builder {
	if value == nil || *value == "" {
		return b
	}
	col := b.projection.MustColumn(field)
	pattern := "%" + *value + "%"
	return b.add(func(bind func(any) string) string {
		return col + " ILIKE " + bind(pattern)
	})
}

// WhereIn adds field IN (...). An empty slice adds nothing.
func (b *Builder) WhereIn(field string, values []any) *Builder {
	if len(values) == 0 {
		return b
	}
	col := b.projection.MustColumn(field)
	return b.add(func(bind func(any) string) string {
		placeholders := make([]string, len(values))
		for i, v := range values {
			placeholders[i] = bind(v)
		}
		return col + " IN (" + strings.Join(placeholders, ", ") + ")"
	})
}

// WhereSearch ORs a case-insensitive substring match across fields.
func (b *Builder) WhereSearch(search *string, fields ...string) *Builder {
	if search == nil || *search == "" || len(fields) == 0 {
		return b
	}
	cols := make([]string, len(fields))
	for i, f := range fields {
		cols[i] = b.projection.MustColumn(f)
	}
	pattern := "%" + *search + "%"
	return b.add(func(bind func(any) string) string {
		terms := make([]string, len(cols))
		for i, col := range cols {
			terms[i] = col + " ILIKE " + bind(pattern)
		}
		return "(" + strings.Join(terms, " OR ") + ")"
	})
}

func (b *Builder) compare(field, op string, value any) *Builder {
	if isNil(value) {
		return b
	}
	col := b.projection.MustColumn(field)
	return b.add(func(bind func(any) string) string {
		return col + " " + op + " " + bind(deref(value))
	})
}

func (b *Builder) add(p predicate) *Builder {
	b.where = append(b.where, p)
	return b
}

func (b *Builder) selectFrom() string {
	return "SELECT " + b.projection.Columns() + " FROM " + b.projection.Table()
}

func (b *Builder) render() (string, []any) {
	if len(b.where) == 0 {
		return "", nil
	}

	var args []any
	bind := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	terms := make([]string, len(b.where))
	for i, p := range b.where {
		terms[i] = p(bind)
	}
	return " WHERE " + strings.Join(terms, " AND "), args
}

func (b *Builder) orderBy() string {
	fields := b.sort
	if len(fields) == 0 {
		fields = b.defaultSort
	}

	terms := make([]string, 0, len(fields))
	for _, f := range fields {
		col, ok := b.projection.Column(f.Field)
		if !ok {
			continue
		}
		if f.Descending {
			terms = append(terms, col+" DESC")
		} else {
			terms = append(terms, col+" ASC")
		}
	}

	if len(terms) == 0 {
		return ""
	}
	return " ORDER BY " + strings.Join(terms, ", ")
}

func isNil(value any) bool {
	if value == nil {
		return true
	}
	v := reflect.ValueOf(value)
	switch v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Chan, reflect.Func, reflect.Interface:
		return v.IsNil()
	}
	return false
}

// deref binds the pointed-to value so drivers see a plain string or int.
func deref(value any) any {
	v := reflect.ValueOf(value)
	if v.Kind() == reflect.Pointer {
		return v.Elem().Interface()
	}
	return value
}
