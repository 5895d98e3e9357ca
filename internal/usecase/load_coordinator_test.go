package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/riskibarqy/sports-warehouse/internal/domain/fact"
	"github.com/riskibarqy/sports-warehouse/internal/domain/warehouse"
	warehousemock "github.com/riskibarqy/sports-warehouse/internal/mocks/domain/warehouse"
	"github.com/stretchr/testify/mock"
)

func tableNamed(name string) any {
	return mock.MatchedBy(func(table warehouse.Table) bool { return table.Name == name })
}

func isFactTable(table warehouse.Table) bool {
	for _, known := range warehouse.FactTables() {
		if known.Name == table.Name {
			return true
		}
	}
	return false
}

func TestLoadCoordinator_Load_DimensionsBeforeFacts(t *testing.T) {
	t.Parallel()

	built := buildMatchDay(t)
	assembled := NewFactAssembler(DefaultFactAssemblerConfig(), nil).Assemble(context.Background(), built.Resolved, built.Tables)

	var (
		mu    sync.Mutex
		order []string
	)
	sink := warehousemock.NewSink(t)
	sink.
		On("Upsert", mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			mu.Lock()
			defer mu.Unlock()
			order = append(order, args.Get(1).(warehouse.Table).Name)
		}).
		Return(nil).
		Times(8)

	result, err := NewLoadCoordinator(sink, 3, nil).Load(context.Background(), built.Tables, assembled.Facts)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	for i, table := range warehouse.DimensionTables() {
		if order[i] != table.Name {
			t.Fatalf("dimension %d: got %s, want %s (order=%v)", i, order[i], table.Name, order)
		}
	}
	if len(result.Tables) != 8 || result.FailedPhase != "" {
		t.Fatalf("unexpected result: %+v", result)
	}
	for i, table := range warehouse.FactTables() {
		load := result.Tables[5+i]
		if load.Table != table.Name || load.Phase != string(LoadPhaseFact) {
			t.Fatalf("fact load %d out of order: %+v", i, load)
		}
	}
	if result.Tables[1].Rows != len(built.Tables.Teams) {
		t.Fatalf("unexpected dim_team row count: %+v", result.Tables[1])
	}
}

func TestLoadCoordinator_Load_DimensionFailureSkipsFacts(t *testing.T) {
	t.Parallel()

	built := buildMatchDay(t)
	assembled := NewFactAssembler(DefaultFactAssemblerConfig(), nil).Assemble(context.Background(), built.Resolved, built.Tables)

	sink := warehousemock.NewSink(t)
	sink.On("Upsert", mock.Anything, tableNamed("dim_date"), mock.Anything).Return(nil).Once()
	sink.On("Upsert", mock.Anything, tableNamed("dim_team"), mock.Anything).Return(nil).Once()
	sink.On("Upsert", mock.Anything, tableNamed("dim_player"), mock.Anything).
		Return(&warehouse.BatchError{Table: "dim_player", Batch: 0, Rows: 2, Err: errors.New("unique violation")}).
		Once()

	result, err := NewLoadCoordinator(sink, 3, nil).Load(context.Background(), built.Tables, assembled.Facts)

	var loadErr *LoadError
	if !errors.As(err, &loadErr) {
		t.Fatalf("expected LoadError, got %v", err)
	}
	if loadErr.Phase != LoadPhaseDimension || loadErr.Table != "dim_player" || loadErr.Batch != 0 || loadErr.Rows != 2 {
		t.Fatalf("unexpected load error: %+v", loadErr)
	}
	if result.FailedPhase != string(LoadPhaseDimension) || len(result.Tables) != 3 {
		t.Fatalf("unexpected result: %+v", result)
	}
	sink.AssertNotCalled(t, "Upsert", mock.Anything, mock.MatchedBy(isFactTable), mock.Anything)
}

func TestLoadCoordinator_Load_FactFailure(t *testing.T) {
	t.Parallel()

	built := buildMatchDay(t)
	assembled := NewFactAssembler(DefaultFactAssemblerConfig(), nil).Assemble(context.Background(), built.Resolved, built.Tables)

	sink := warehousemock.NewSink(t)
	for _, table := range warehouse.DimensionTables() {
		sink.On("Upsert", mock.Anything, tableNamed(table.Name), mock.Anything).Return(nil).Once()
	}
	sink.On("Upsert", mock.Anything, tableNamed("fact_player_gps"), mock.Anything).Return(nil).Once()
	sink.On("Upsert", mock.Anything, tableNamed("fact_player_stats"), mock.Anything).
		Return(errors.New("connection reset")).
		Once()
	sink.On("Upsert", mock.Anything, tableNamed("fact_team_match"), mock.Anything).Return(nil).Once()

	result, err := NewLoadCoordinator(sink, 0, nil).Load(context.Background(), built.Tables, assembled.Facts)

	var loadErr *LoadError
	if !errors.As(err, &loadErr) || loadErr.Phase != LoadPhaseFact || loadErr.Table != "fact_player_stats" {
		t.Fatalf("unexpected error: %v", err)
	}
	if loadErr.Rows != len(assembled.Facts.PlayerStats) {
		t.Fatalf("expected row count of the failed table, got %d", loadErr.Rows)
	}
	if result.FailedPhase != string(LoadPhaseFact) || len(result.Tables) != 8 {
		t.Fatalf("unexpected result: %+v", result)
	}
	if result.Tables[6].Error == "" || result.Tables[5].Error != "" {
		t.Fatalf("unexpected per-table errors: %+v", result.Tables[5:])
	}
}

func TestLoadCoordinator_Load_NoSink(t *testing.T) {
	t.Parallel()

	_, err := NewLoadCoordinator(nil, 1, nil).Load(context.Background(), buildMatchDay(t).Tables, fact.Tables{})
	if !errors.Is(err, ErrDependencyUnavailable) {
		t.Fatalf("expected ErrDependencyUnavailable, got %v", err)
	}
}
