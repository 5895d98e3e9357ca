package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/riskibarqy/sports-warehouse/internal/domain/feed"
	"github.com/riskibarqy/sports-warehouse/internal/domain/rejection"
	"github.com/riskibarqy/sports-warehouse/internal/domain/warehouse"
	"github.com/riskibarqy/sports-warehouse/internal/platform/id"
	"github.com/riskibarqy/sports-warehouse/internal/platform/logging"
)

const (
	RunStatusSucceeded = "succeeded"
	RunStatusFailed    = "failed"
)

type PipelineConfig struct {
	Builder           DimensionBuilderConfig
	Assembler         FactAssemblerConfig
	SeedFromWarehouse bool
}

func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		Builder:           DefaultDimensionBuilderConfig(),
		Assembler:         DefaultFactAssemblerConfig(),
		SeedFromWarehouse: true,
	}
}

// RunReport summarizes one pipeline run. Counts are filled as far as the run got.
type RunReport struct {
	RunID        string                   `json:"run_id"`
	Status       string                   `json:"status"`
	StartedAt    time.Time                `json:"started_at"`
	FinishedAt   time.Time                `json:"finished_at"`
	DurationMs   int64                    `json:"duration_ms"`
	RowsRead     map[feed.Kind]int        `json:"rows_read"`
	Processed    int                      `json:"processed"`
	Accepted     map[string]int           `json:"accepted"`
	Rejected     map[rejection.Reason]int `json:"rejected"`
	Ambiguous    int                      `json:"ambiguous"`
	Deduplicated int                      `json:"deduplicated"`
	Dimensions   map[string]int           `json:"dimensions"`
	Loads        []TableLoad              `json:"loads,omitempty"`
	FailedPhase  string                   `json:"failed_phase,omitempty"`
	Error        string                   `json:"error,omitempty"`
}

func (r RunReport) RejectedTotal() int {
	return rejection.Counts(r.Rejected).Total()
}

// PipelineService wires one run: read, seed, build, assemble, load, report.
type PipelineService struct {
	source    feed.Source
	sink      warehouse.Sink
	reader    warehouse.DimensionReader
	rejects   rejection.Sink
	assembler *FactAssembler
	loader    *LoadCoordinator
	idGen     id.Generator
	cfg       PipelineConfig
	logger    *logging.Logger

	running atomic.Bool
	mu      sync.RWMutex
	last    *RunReport
}

func NewPipelineService(
	source feed.Source,
	sink warehouse.Sink,
	reader warehouse.DimensionReader,
	rejects rejection.Sink,
	loader *LoadCoordinator,
	idGen id.Generator,
	cfg PipelineConfig,
	logger *logging.Logger,
) *PipelineService {
	if logger == nil {
		logger = logging.Default()
	}
	if idGen == nil {
		idGen = id.NewRunIDGenerator()
	}
	if loader == nil {
		loader = NewLoadCoordinator(sink, defaultLoadWorkers, logger)
	}
	return &PipelineService{
		source:    source,
		sink:      sink,
		reader:    reader,
		rejects:   rejects,
		assembler: NewFactAssembler(cfg.Assembler, logger),
		loader:    loader,
		idGen:     idGen,
		cfg:       cfg,
		logger:    logger,
	}
}

// Run executes the pipeline once. Per-record failures are counted in the report; the
// returned error is set only when the run itself failed.
func (s *PipelineService) Run(ctx context.Context) (RunReport, error) {
	run, ok := s.TryStart()
	if !ok {
		return RunReport{}, ErrRunInProgress
	}
	return run(ctx)
}

// TryStart claims the run slot without blocking. The returned function executes the
// claimed run and frees the slot when it returns; callers must invoke it exactly once.
func (s *PipelineService) TryStart() (func(context.Context) (RunReport, error), bool) {
	if !s.running.CompareAndSwap(false, true) {
		return nil, false
	}

	var once sync.Once
	return func(ctx context.Context) (RunReport, error) {
		report := RunReport{}
		err := ErrRunInProgress
		once.Do(func() {
			defer s.running.Store(false)
			report, err = s.execute(ctx)
		})
		return report, err
	}, true
}

func (s *PipelineService) execute(ctx context.Context) (RunReport, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PipelineService.Run")
	defer span.End()

	if s.source == nil || s.sink == nil {
		return RunReport{}, fmt.Errorf("%w: pipeline source and sink are required", ErrDependencyUnavailable)
	}

	runID, err := s.idGen.NewID()
	if err != nil {
		return RunReport{}, fmt.Errorf("generate run id: %w", err)
	}

	report := RunReport{
		RunID:      runID,
		StartedAt:  time.Now().UTC(),
		RowsRead:   make(map[feed.Kind]int, len(feed.Kinds())),
		Accepted:   make(map[string]int, len(warehouse.FactTables())),
		Rejected:   make(map[rejection.Reason]int, len(rejection.Reasons())),
		Dimensions: make(map[string]int, len(warehouse.DimensionTables())),
	}
	ctx = logging.ContextWith(ctx, "run_id", runID)
	logger := s.logger.With("run_id", runID)
	logger.InfoContext(ctx, "pipeline run started")

	runErr := s.run(ctx, logger, &report)

	report.FinishedAt = time.Now().UTC()
	report.DurationMs = report.FinishedAt.Sub(report.StartedAt).Milliseconds()
	report.Status = RunStatusSucceeded
	if runErr != nil {
		report.Status = RunStatusFailed
		report.Error = runErr.Error()
		logger.ErrorContext(ctx, "pipeline run failed",
			"failed_phase", report.FailedPhase,
			"processed", report.Processed,
			"rejected", report.RejectedTotal(),
			"ambiguous", report.Ambiguous,
			"error", runErr,
		)
	} else {
		logger.InfoContext(ctx, "pipeline run finished",
			"processed", report.Processed,
			"rejected", report.RejectedTotal(),
			"ambiguous", report.Ambiguous,
			"duration_ms", report.DurationMs,
		)
	}

	s.mu.Lock()
	stored := report
	s.last = &stored
	s.mu.Unlock()

	return report, runErr
}

func (s *PipelineService) run(ctx context.Context, logger *logging.Logger, report *RunReport) error {
	records := make([]feed.Record, 0)
	for _, kind := range feed.Kinds() {
		batch, err := s.source.Read(ctx, kind)
		if err != nil {
			report.FailedPhase = "read"
			return fmt.Errorf("%w: read feed %s: %v", ErrDependencyUnavailable, kind, err)
		}
		report.RowsRead[kind] = len(batch)
		records = append(records, batch...)
	}

	builder := NewDimensionBuilder(s.cfg.Builder, logger)
	if s.cfg.SeedFromWarehouse && s.reader != nil {
		if err := builder.Seed(ctx, s.reader); err != nil {
			report.FailedPhase = "seed"
			return err
		}
	}

	built := builder.Build(ctx, records)
	report.Processed = built.Processed
	report.Ambiguous = built.Ambiguous
	report.Dimensions[warehouse.DimDate.Name] = len(built.Tables.Dates)
	report.Dimensions[warehouse.DimTeam.Name] = len(built.Tables.Teams)
	report.Dimensions[warehouse.DimPlayer.Name] = len(built.Tables.Players)
	report.Dimensions[warehouse.DimCompetition.Name] = len(built.Tables.Competitions)
	report.Dimensions[warehouse.DimMatch.Name] = len(built.Tables.Matches)

	assembled := s.assembler.Assemble(ctx, built.Resolved, built.Tables)
	report.Deduplicated = assembled.Deduplicated
	report.Accepted[warehouse.FactPlayerGPS.Name] = len(assembled.Facts.PlayerGPS)
	report.Accepted[warehouse.FactPlayerStats.Name] = len(assembled.Facts.PlayerStats)
	report.Accepted[warehouse.FactTeamMatch.Name] = len(assembled.Facts.TeamMatch)

	rejected := append(built.Rejections, assembled.Rejections...)
	for i := range rejected {
		rejected[i].RunID = report.RunID
	}
	rejection.Sort(rejected)
	for reason, n := range rejection.Count(rejected) {
		report.Rejected[reason] = n
	}
	if err := s.flushRejections(ctx, logger, rejected); err != nil {
		logger.WarnContext(ctx, "write rejected records failed", "count", len(rejected), "error", err)
	}

	loaded, err := s.loader.Load(ctx, built.Tables, assembled.Facts)
	report.Loads = loaded.Tables
	if err != nil {
		report.FailedPhase = loaded.FailedPhase
		var loadErr *LoadError
		if errors.As(err, &loadErr) && loadErr.Phase != "" {
			report.FailedPhase = string(loadErr.Phase)
		}
		return err
	}
	return nil
}

func (s *PipelineService) flushRejections(ctx context.Context, logger *logging.Logger, records []rejection.Record) error {
	if s.rejects == nil || len(records) == 0 {
		return nil
	}
	if err := s.rejects.Write(ctx, records); err != nil {
		return err
	}
	logger.InfoContext(ctx, "rejected records written", "count", len(records))
	return nil
}

// LastReport returns the report of the most recent finished run.
func (s *PipelineService) LastReport() (RunReport, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.last == nil {
		return RunReport{}, false
	}
	return *s.last, true
}

// Running reports whether a run is in progress.
func (s *PipelineService) Running() bool {
	return s.running.Load()
}
