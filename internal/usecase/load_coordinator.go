package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/riskibarqy/sports-warehouse/internal/domain/dimension"
	"github.com/riskibarqy/sports-warehouse/internal/domain/fact"
	"github.com/riskibarqy/sports-warehouse/internal/domain/warehouse"
	"github.com/riskibarqy/sports-warehouse/internal/platform/logging"
)

const defaultLoadWorkers = 3

type TableLoad struct {
	Table      string `json:"table"`
	Phase      string `json:"phase"`
	Rows       int    `json:"rows"`
	DurationMs int64  `json:"duration_ms"`
	Error      string `json:"error,omitempty"`
}

type LoadResult struct {
	Tables      []TableLoad `json:"tables"`
	FailedPhase string      `json:"failed_phase,omitempty"`
}

// LoadCoordinator writes every dimension table before any fact table.
type LoadCoordinator struct {
	sink       warehouse.Sink
	maxWorkers int
	logger     *logging.Logger
}

func NewLoadCoordinator(sink warehouse.Sink, maxWorkers int, logger *logging.Logger) *LoadCoordinator {
	if logger == nil {
		logger = logging.Default()
	}
	if maxWorkers <= 0 {
		maxWorkers = defaultLoadWorkers
	}
	return &LoadCoordinator{
		sink:       sink,
		maxWorkers: maxWorkers,
		logger:     logger,
	}
}

// Load runs the dimension phase in fixed table order, then the fact phase with tables
// written in parallel. A dimension failure stops the run before any fact write; tables
// already committed stay committed.
func (c *LoadCoordinator) Load(ctx context.Context, dims dimension.Tables, facts fact.Tables) (LoadResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LoadCoordinator.Load")
	defer span.End()

	if c.sink == nil {
		return LoadResult{}, fmt.Errorf("%w: warehouse sink is not configured", ErrDependencyUnavailable)
	}

	var result LoadResult
	dimRows := warehouse.DimensionRows(dims)
	for _, table := range warehouse.DimensionTables() {
		load, err := c.loadTable(ctx, LoadPhaseDimension, table, dimRows[table.Name])
		result.Tables = append(result.Tables, load)
		if err != nil {
			result.FailedPhase = string(LoadPhaseDimension)
			c.logger.ErrorContext(ctx, "dimension phase failed, fact phase skipped", "table", table.Name, "error", err)
			return result, err
		}
	}

	factLoads, err := c.loadFacts(ctx, warehouse.FactRows(facts))
	result.Tables = append(result.Tables, factLoads...)
	if err != nil {
		result.FailedPhase = string(LoadPhaseFact)
		c.logger.ErrorContext(ctx, "fact phase failed", "error", err)
		return result, err
	}
	return result, nil
}

func (c *LoadCoordinator) loadFacts(ctx context.Context, rows map[string][]warehouse.Row) ([]TableLoad, error) {
	tables := warehouse.FactTables()
	workers := c.maxWorkers
	if workers > len(tables) {
		workers = len(tables)
	}

	pool, err := ants.NewPool(workers)
	if err != nil {
		return nil, fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	var (
		mu       sync.Mutex
		loads    = make([]TableLoad, 0, len(tables))
		firstErr error
		workerWG sync.WaitGroup
	)
	for _, table := range tables {
		table := table
		workerWG.Add(1)
		if err := pool.Submit(func() {
			defer workerWG.Done()

			load, err := c.loadTable(ctx, LoadPhaseFact, table, rows[table.Name])

			mu.Lock()
			defer mu.Unlock()
			loads = append(loads, load)
			if err != nil && firstErr == nil {
				firstErr = err
			}
		}); err != nil {
			workerWG.Done()
			return nil, fmt.Errorf("submit table load to worker pool: %w", err)
		}
	}
	workerWG.Wait()

	order := make(map[string]int, len(tables))
	for i, table := range tables {
		order[table.Name] = i
	}
	sort.SliceStable(loads, func(i, j int) bool { return order[loads[i].Table] < order[loads[j].Table] })

	return loads, firstErr
}

func (c *LoadCoordinator) loadTable(ctx context.Context, phase LoadPhase, table warehouse.Table, rows []warehouse.Row) (TableLoad, error) {
	start := time.Now()
	load := TableLoad{Table: table.Name, Phase: string(phase), Rows: len(rows)}

	err := c.sink.Upsert(ctx, table, rows)
	load.DurationMs = time.Since(start).Milliseconds()
	if err != nil {
		loadErr := &LoadError{Phase: phase, Table: table.Name, Rows: len(rows), Err: err}
		var batchErr *warehouse.BatchError
		if errors.As(err, &batchErr) {
			loadErr.Batch = batchErr.Batch
			loadErr.Rows = batchErr.Rows
		}
		load.Error = err.Error()
		return load, loadErr
	}

	c.logger.InfoContext(ctx, "table loaded",
		"phase", phase,
		"table", table.Name,
		"rows", len(rows),
		"duration_ms", load.DurationMs,
	)
	return load, nil
}
