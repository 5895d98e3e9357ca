package querybuilder

import (
	"fmt"
	"strconv"
	"strings"
)

// MaxParams is the Postgres limit on bind parameters in one statement.
const MaxParams = 65535

type SelectBuilder struct {
	columns []string
	table   string
	orderBy []string
}

func Select(columns ...string) *SelectBuilder {
	return &SelectBuilder{columns: append([]string(nil), columns...)}
}

func (b *SelectBuilder) From(table string) *SelectBuilder {
	b.table = table
	return b
}

func (b *SelectBuilder) OrderBy(parts ...string) *SelectBuilder {
	b.orderBy = append(b.orderBy, parts...)
	return b
}

func (b *SelectBuilder) ToSQL() (string, []any, error) {
	if len(b.columns) == 0 {
		return "", nil, fmt.Errorf("select columns are required")
	}
	if strings.TrimSpace(b.table) == "" {
		return "", nil, fmt.Errorf("select table is required")
	}

	var buf strings.Builder
	buf.WriteString("SELECT ")
	buf.WriteString(strings.Join(b.columns, ", "))
	buf.WriteString(" FROM ")
	buf.WriteString(b.table)
	if len(b.orderBy) > 0 {
		buf.WriteString(" ORDER BY ")
		buf.WriteString(strings.Join(b.orderBy, ", "))
	}

	return buf.String(), nil, nil
}

// InsertBuilder renders a multi-row INSERT, optionally as an upsert.
type InsertBuilder struct {
	table    string
	columns  []string
	rows     [][]any
	conflict []string
	updates  []string
}

func InsertInto(table string) *InsertBuilder {
	return &InsertBuilder{table: table}
}

func (b *InsertBuilder) Columns(columns ...string) *InsertBuilder {
	b.columns = append([]string(nil), columns...)
	return b
}

func (b *InsertBuilder) Values(values ...any) *InsertBuilder {
	b.rows = append(b.rows, append([]any(nil), values...))
	return b
}

// OnConflict sets the conflict target. With no DoUpdate columns the insert does nothing on conflict.
func (b *InsertBuilder) OnConflict(columns ...string) *InsertBuilder {
	b.conflict = append([]string(nil), columns...)
	return b
}

// DoUpdate overwrites columns from the proposed row when the conflict target matches.
func (b *InsertBuilder) DoUpdate(columns ...string) *InsertBuilder {
	b.updates = append([]string(nil), columns...)
	return b
}

// RowsPerStatement returns how many rows of width columns fit under MaxParams.
func RowsPerStatement(columns int) int {
	if columns <= 0 {
		return 0
	}
	return MaxParams / columns
}

func (b *InsertBuilder) ToSQL() (string, []any, error) {
	if strings.TrimSpace(b.table) == "" {
		return "", nil, fmt.Errorf("insert table is required")
	}
	if len(b.columns) == 0 {
		return "", nil, fmt.Errorf("insert columns are required")
	}
	if len(b.rows) == 0 {
		return "", nil, fmt.Errorf("insert values are required")
	}
	if params := len(b.rows) * len(b.columns); params > MaxParams {
		return "", nil, fmt.Errorf("insert into %s needs %d parameters, limit is %d", b.table, params, MaxParams)
	}

	var buf strings.Builder
	buf.WriteString("INSERT INTO ")
	buf.WriteString(b.table)
	buf.WriteString(" (")
	buf.WriteString(strings.Join(b.columns, ", "))
	buf.WriteString(") VALUES ")

	args := make([]any, 0, len(b.rows)*len(b.columns))
	for rowIdx, row := range b.rows {
		if len(row) != len(b.columns) {
			return "", nil, fmt.Errorf("insert row %d has %d values, expected %d", rowIdx, len(row), len(b.columns))
		}
		if rowIdx > 0 {
			buf.WriteString(", ")
		}
		buf.WriteByte('(')
		for colIdx, value := range row {
			if colIdx > 0 {
				buf.WriteString(", ")
			}
			args = append(args, value)
			buf.WriteString(placeholder(len(args)))
		}
		buf.WriteByte(')')
	}

	appendOnConflictClause(&buf, b.conflict, b.updates)
	return buf.String(), args, nil
}

func appendOnConflictClause(buf *strings.Builder, conflict, updates []string) {
	if len(conflict) == 0 {
		return
	}
	buf.WriteString(" ON CONFLICT (")
	buf.WriteString(strings.Join(conflict, ", "))
	buf.WriteString(")")
	if len(updates) == 0 {
		buf.WriteString(" DO NOTHING")
		return
	}
	buf.WriteString(" DO UPDATE SET ")
	for i, column := range updates {
		if i > 0 {
			buf.WriteString(", ")
		}
		buf.WriteString(column)
		buf.WriteString(" = EXCLUDED.")
		buf.WriteString(column)
	}
}

func placeholder(i int) string {
	return "$" + strconv.Itoa(i)
}
