package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/riskibarqy/sports-warehouse/internal/domain/dimension"
	"github.com/riskibarqy/sports-warehouse/internal/domain/warehouse"
)

type memoryTable struct {
	def   warehouse.Table
	order []string
	rows  map[string]warehouse.Row
}

// WarehouseSink keeps tables in process memory with the same upsert rules as the
// PostgreSQL sink: a conflicting natural key rewrites only the update columns.
type WarehouseSink struct {
	mu     sync.RWMutex
	tables map[string]*memoryTable
}

func NewWarehouseSink() *WarehouseSink {
	return &WarehouseSink{tables: make(map[string]*memoryTable)}
}

func (s *WarehouseSink) Upsert(ctx context.Context, table warehouse.Table, rows []warehouse.Row) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := table.Validate(rows); err != nil {
		return fmt.Errorf("upsert %s: %w", table.Name, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.tables[table.Name]
	if !ok {
		stored = &memoryTable{def: table, rows: make(map[string]warehouse.Row)}
		s.tables[table.Name] = stored
	}

	updates := table.UpdateColumns()
	for _, row := range rows {
		key := table.NaturalKeyOf(row)
		existing, found := stored.rows[key]
		if !found {
			stored.order = append(stored.order, key)
			stored.rows[key] = append(warehouse.Row(nil), row...)
			continue
		}
		for _, column := range updates {
			idx := table.ColumnIndex(column)
			existing[idx] = row[idx]
		}
	}
	return nil
}

// Rows returns a copy of a table's rows in first-insert order.
func (s *WarehouseSink) Rows(tableName string) []warehouse.Row {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored, ok := s.tables[tableName]
	if !ok {
		return nil
	}
	out := make([]warehouse.Row, 0, len(stored.order))
	for _, key := range stored.order {
		out = append(out, append(warehouse.Row(nil), stored.rows[key]...))
	}
	return out
}

func (s *WarehouseSink) Count(tableName string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if stored, ok := s.tables[tableName]; ok {
		return len(stored.rows)
	}
	return 0
}

func (s *WarehouseSink) LoadDimensions(ctx context.Context) (dimension.Tables, error) {
	if err := ctx.Err(); err != nil {
		return dimension.Tables{}, err
	}

	rows := make(map[string][]warehouse.Row, 5)
	for _, table := range warehouse.DimensionTables() {
		rows[table.Name] = s.Rows(table.Name)
	}
	return warehouse.DecodeDimensions(rows)
}
