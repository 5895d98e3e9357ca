package warehouse

import (
	"fmt"
	"strings"
)

// Table describes one warehouse table as the sink sees it.
type Table struct {
	Name    string
	Columns []string
	// NaturalKey is the upsert conflict target.
	NaturalKey []string
	// KeyColumn is the surrogate key of a dimension; it is never overwritten on conflict.
	KeyColumn string
	// ArrayColumns hold []string values.
	ArrayColumns []string
}

// Row holds one value per Table.Columns entry, in order.
type Row []any

// UpdateColumns lists the columns rewritten when a row with the same natural key exists.
func (t Table) UpdateColumns() []string {
	skip := make(map[string]struct{}, len(t.NaturalKey)+1)
	for _, column := range t.NaturalKey {
		skip[column] = struct{}{}
	}
	if t.KeyColumn != "" {
		skip[t.KeyColumn] = struct{}{}
	}
	out := make([]string, 0, len(t.Columns))
	for _, column := range t.Columns {
		if _, ok := skip[column]; ok {
			continue
		}
		out = append(out, column)
	}
	return out
}

func (t Table) ColumnIndex(column string) int {
	for i, c := range t.Columns {
		if c == column {
			return i
		}
	}
	return -1
}

func (t Table) IsArrayColumn(column string) bool {
	for _, c := range t.ArrayColumns {
		if c == column {
			return true
		}
	}
	return false
}

// NaturalKeyOf renders the natural key of row as a comparable string.
func (t Table) NaturalKeyOf(row Row) string {
	parts := make([]string, 0, len(t.NaturalKey))
	for _, column := range t.NaturalKey {
		idx := t.ColumnIndex(column)
		if idx < 0 || idx >= len(row) {
			parts = append(parts, "")
			continue
		}
		parts = append(parts, fmt.Sprint(deref(row[idx])))
	}
	return strings.Join(parts, "\x1f")
}

// Validate checks that the table definition is usable and every row matches it.
func (t Table) Validate(rows []Row) error {
	if strings.TrimSpace(t.Name) == "" {
		return fmt.Errorf("table name is required")
	}
	if len(t.Columns) == 0 {
		return fmt.Errorf("table %s: columns are required", t.Name)
	}
	if len(t.NaturalKey) == 0 {
		return fmt.Errorf("table %s: natural key is required", t.Name)
	}
	for _, column := range t.NaturalKey {
		if t.ColumnIndex(column) < 0 {
			return fmt.Errorf("table %s: natural key column %s is not a column", t.Name, column)
		}
	}
	for i, row := range rows {
		if len(row) != len(t.Columns) {
			return fmt.Errorf("table %s row %d: got %d values for %d columns", t.Name, i, len(row), len(t.Columns))
		}
	}
	return nil
}

func deref(v any) any {
	switch typed := v.(type) {
	case *int64:
		if typed == nil {
			return nil
		}
		return *typed
	case *int:
		if typed == nil {
			return nil
		}
		return *typed
	case *float64:
		if typed == nil {
			return nil
		}
		return *typed
	default:
		return v
	}
}
