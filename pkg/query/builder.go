package query

import (
	"fmt"
	"strings"
)

type condition struct {
	clause string
	args   []any
}

// SortField is one ORDER BY term over a projected field.
type SortField struct {
	Field      string
	Descending bool
}

// Builder accumulates WHERE conditions and renders numbered-parameter SQL.
type Builder struct {
	projection  *ProjectionMap
	conditions  []condition
	defaultSort []SortField
}

// NewBuilder creates a Builder ordering by defaultSort.
func NewBuilder(projection *ProjectionMap, defaultSort ...SortField) *Builder {
	return &Builder{
		projection:  projection,
		defaultSort: defaultSort,
	}
}

// WhereEquals adds field = value. Empty strings are ignored.
func (b *Builder) WhereEquals(field, value string) *Builder {
	if value == "" {
		return b
	}
	b.conditions = append(b.conditions, condition{
		clause: fmt.Sprintf("%s = $%%d", b.projection.Column(field)),
		args:   []any{value},
	})
	return b
}

// WhereEqualFold adds a case-insensitive equality. Empty strings are ignored.
func (b *Builder) WhereEqualFold(field, value string) *Builder {
	if value == "" {
		return b
	}
	b.conditions = append(b.conditions, condition{
		clause: fmt.Sprintf("LOWER(%s) = LOWER($%%d)", b.projection.Column(field)),
		args:   []any{value},
	})
	return b
}

// WhereSearch matches search as a literal, case-insensitive substring of
// any of fields. Empty search is ignored.
func (b *Builder) WhereSearch(search string, fields ...string) *Builder {
	if search == "" || len(fields) == 0 {
		return b
	}

	pattern := "%" + escapeLike(search) + "%"
	clauses := make([]string, len(fields))
	args := make([]any, len(fields))
	for i, field := range fields {
		clauses[i] = fmt.Sprintf(`%s ILIKE $%%d ESCAPE '\'`, b.projection.Column(field))
		args[i] = pattern
	}

	b.conditions = append(b.conditions, condition{
		clause: "(" + strings.Join(clauses, " OR ") + ")",
		args:   args,
	})
	return b
}

// Build returns the ordered SELECT with every condition applied.
func (b *Builder) Build() (string, []any) {
	where, args := b.buildWhere()
	return fmt.Sprintf(
		"SELECT %s FROM %s%s%s",
		b.projection.Columns(),
		b.projection.From(),
		where,
		b.buildOrderBy(),
	), args
}

// BuildCount returns a COUNT(*) over the current conditions.
func (b *Builder) BuildCount() (string, []any) {
	where, args := b.buildWhere()
	return fmt.Sprintf("SELECT COUNT(*) FROM %s%s", b.projection.From(), where), args
}

// BuildPage returns the ordered SELECT limited to pageSize rows after offset.
// A negative offset is treated as zero.
func (b *Builder) BuildPage(offset, pageSize int) (string, []any) {
	sql, args := b.Build()
	return fmt.Sprintf("%s LIMIT %d OFFSET %d", sql, pageSize, max(offset, 0)), args
}

// BuildSingle returns a SELECT matching field = value, ignoring other conditions.
func (b *Builder) BuildSingle(field string, value any) (string, []any) {
	return fmt.Sprintf(
		"SELECT %s FROM %s WHERE %s = $1",
		b.projection.Columns(),
		b.projection.From(),
		b.projection.Column(field),
	), []any{value}
}

func (b *Builder) buildOrderBy() string {
	if len(b.defaultSort) == 0 {
		return ""
	}

	parts := make([]string, len(b.defaultSort))
	for i, f := range b.defaultSort {
		dir := "ASC"
		if f.Descending {
			dir = "DESC"
		}
		parts[i] = b.projection.Column(f.Field) + " " + dir
	}
	return " ORDER BY " + strings.Join(parts, ", ")
}

func (b *Builder) buildWhere() (string, []any) {
	if len(b.conditions) == 0 {
		return "", nil
	}

	clauses := make([]string, 0, len(b.conditions))
	var args []any
	for _, cond := range b.conditions {
		clause := cond.clause
		for _, arg := range cond.args {
			args = append(args, arg)
			clause = strings.Replace(clause, "$%d", fmt.Sprintf("$%d", len(args)), 1)
		}
		clauses = append(clauses, clause)
	}

	return " WHERE " + strings.Join(clauses, " AND "), args
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
