package postgres

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"

	crerr "github.com/cockroachdb/errors"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/riskibarqy/sports-warehouse/internal/domain/warehouse"
	"github.com/riskibarqy/sports-warehouse/internal/platform/logging"
	qb "github.com/riskibarqy/sports-warehouse/internal/platform/querybuilder"
	"github.com/riskibarqy/sports-warehouse/internal/platform/resilience"
)

const defaultSinkBatchSize = 500

type WarehouseSinkConfig struct {
	BatchSize      int
	CircuitBreaker resilience.CircuitBreakerConfig
}

// WarehouseSink upserts warehouse rows with multi-row INSERT .. ON CONFLICT statements.
// Each Upsert call runs in one transaction.
type WarehouseSink struct {
	db             *sqlx.DB
	batchSize      int
	breaker        *resilience.CircuitBreaker
	circuitEnabled bool
	logger         *logging.Logger
}

func NewWarehouseSink(db *sqlx.DB, cfg WarehouseSinkConfig, logger *logging.Logger) *WarehouseSink {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = defaultSinkBatchSize
	}
	breaker := resilience.NewCircuitBreaker(cfg.CircuitBreaker)
	breaker.OnStateChange(func(from, to resilience.CircuitState) {
		logger.Warn("warehouse circuit breaker state changed", "from", from, "to", to)
	})

	return &WarehouseSink{
		db:             db,
		batchSize:      cfg.BatchSize,
		breaker:        breaker,
		circuitEnabled: cfg.CircuitBreaker.Enabled,
		logger:         logger,
	}
}

func (s *WarehouseSink) Upsert(ctx context.Context, table warehouse.Table, rows []warehouse.Row) error {
	if err := table.Validate(rows); err != nil {
		return crerr.Wrap(err, "validate upsert rows")
	}
	if len(rows) == 0 {
		return nil
	}
	if !s.circuitEnabled {
		return s.upsert(ctx, table, rows)
	}

	err := s.breaker.Do(func() error {
		return s.upsert(ctx, table, rows)
	}, isConnectionFailure)
	if errors.Is(err, resilience.ErrCircuitOpen) {
		s.logger.WarnContext(ctx, "warehouse circuit breaker rejected upsert", "table", table.Name, "state", s.breaker.State())
		return fmt.Errorf("%w: %s rejected by circuit breaker", warehouse.ErrUnavailable, table.Name)
	}
	return err
}

func (s *WarehouseSink) upsert(ctx context.Context, table warehouse.Table, rows []warehouse.Row) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return unavailable(err, "begin tx upsert "+table.Name)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	updates := table.UpdateColumns()
	size := s.batchSize
	if limit := qb.RowsPerStatement(len(table.Columns)); size > limit {
		size = limit
	}
	batch := 0
	for start := 0; start < len(rows); start += size {
		end := start + size
		if end > len(rows) {
			end = len(rows)
		}
		chunk := rows[start:end]

		builder := qb.InsertInto(table.Name).
			Columns(table.Columns...).
			OnConflict(table.NaturalKey...).
			DoUpdate(updates...)
		for _, row := range chunk {
			builder.Values(sqlValues(table, row)...)
		}

		query, args, err := builder.ToSQL()
		if err != nil {
			return crerr.Wrapf(err, "build upsert %s query", table.Name)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			cause := crerr.Wrapf(err, "upsert %s rows %d..%d", table.Name, start, end-1)
			if isConnectionFailure(err) {
				cause = unavailable(err, fmt.Sprintf("upsert %s", table.Name))
			}
			return &warehouse.BatchError{Table: table.Name, Batch: batch, Rows: len(chunk), Err: cause}
		}
		batch++
	}

	if err := tx.Commit(); err != nil {
		return unavailable(err, "commit upsert "+table.Name)
	}
	s.logger.DebugContext(ctx, "warehouse table upserted", "table", table.Name, "rows", len(rows), "batches", batch)
	return nil
}

func sqlValues(table warehouse.Table, row warehouse.Row) []any {
	out := make([]any, len(row))
	for i, value := range row {
		if aliases, ok := value.([]string); ok && table.IsArrayColumn(table.Columns[i]) {
			out[i] = pq.StringArray(aliases)
			continue
		}
		out[i] = value
	}
	return out
}

func unavailable(err error, msg string) error {
	return fmt.Errorf("%w: %s: %v", warehouse.ErrUnavailable, msg, err)
}

// isConnectionFailure reports errors that say nothing about the rows themselves.
func isConnectionFailure(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, warehouse.ErrUnavailable) || errors.Is(err, driver.ErrBadConn) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		// Class 08 is a connection exception, class 57 an operator intervention such as shutdown.
		return pqErr.Code.Class() == "08" || pqErr.Code.Class() == "57"
	}
	return false
}
