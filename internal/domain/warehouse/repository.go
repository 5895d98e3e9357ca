package warehouse

import (
	"context"

	"github.com/riskibarqy/sports-warehouse/internal/domain/dimension"
)

// Sink writes rows into a table, replacing rows that share a natural key.
type Sink interface {
	Upsert(ctx context.Context, table Table, rows []Row) error
}

// DimensionReader reads back committed dimension rows so a run can keep earlier keys.
type DimensionReader interface {
	LoadDimensions(ctx context.Context) (dimension.Tables, error)
}
