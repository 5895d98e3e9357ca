package cache

import (
	"context"

	"github.com/riskibarqy/sports-warehouse/internal/domain/dimension"
	"github.com/riskibarqy/sports-warehouse/internal/domain/warehouse"
	basecache "github.com/riskibarqy/sports-warehouse/internal/platform/cache"
)

const (
	keyPrefix     = "warehouse:"
	dimensionsKey = keyPrefix + "dimensions"
)

// WarehouseReader serves committed dimensions from cache between runs.
type WarehouseReader struct {
	next  warehouse.DimensionReader
	cache *basecache.Store
}

func NewWarehouseReader(next warehouse.DimensionReader, cache *basecache.Store) *WarehouseReader {
	return &WarehouseReader{next: next, cache: cache}
}

func (r *WarehouseReader) LoadDimensions(ctx context.Context) (dimension.Tables, error) {
	v, err := r.cache.GetOrLoad(ctx, dimensionsKey, func(ctx context.Context) (any, error) {
		tables, err := r.next.LoadDimensions(ctx)
		if err != nil {
			return nil, err
		}
		return cloneTables(tables), nil
	})
	if err != nil {
		return dimension.Tables{}, err
	}

	tables, _ := v.(dimension.Tables)
	return cloneTables(tables), nil
}

// WarehouseSink drops cached dimensions whenever a dimension table is written,
// including on failure since part of the batch may have committed.
type WarehouseSink struct {
	next  warehouse.Sink
	cache *basecache.Store
}

func NewWarehouseSink(next warehouse.Sink, cache *basecache.Store) *WarehouseSink {
	return &WarehouseSink{next: next, cache: cache}
}

func (s *WarehouseSink) Upsert(ctx context.Context, table warehouse.Table, rows []warehouse.Row) error {
	err := s.next.Upsert(ctx, table, rows)
	if len(rows) > 0 && isDimension(table) {
		s.cache.DeletePrefix(ctx, keyPrefix)
	}
	return err
}

func isDimension(table warehouse.Table) bool {
	for _, dim := range warehouse.DimensionTables() {
		if dim.Name == table.Name {
			return true
		}
	}
	return false
}

func cloneTables(in dimension.Tables) dimension.Tables {
	out := dimension.Tables{
		Dates:        append([]dimension.DateRow(nil), in.Dates...),
		Teams:        make([]dimension.TeamRow, len(in.Teams)),
		Players:      make([]dimension.PlayerRow, len(in.Players)),
		Competitions: append([]dimension.CompetitionRow(nil), in.Competitions...),
		Matches:      append([]dimension.MatchRow(nil), in.Matches...),
	}
	for i, team := range in.Teams {
		team.Aliases = append([]string(nil), team.Aliases...)
		out.Teams[i] = team
	}
	for i, player := range in.Players {
		player.Aliases = append([]string(nil), player.Aliases...)
		out.Players[i] = player
	}
	return out
}
