package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/sports-warehouse/internal/config"
	"github.com/riskibarqy/sports-warehouse/internal/domain/dimension"
	"github.com/riskibarqy/sports-warehouse/internal/domain/entity"
	"github.com/riskibarqy/sports-warehouse/internal/domain/rejection"
	"github.com/riskibarqy/sports-warehouse/internal/domain/warehouse"
	"github.com/riskibarqy/sports-warehouse/internal/infrastructure/feed/csvsource"
	"github.com/riskibarqy/sports-warehouse/internal/infrastructure/rejectlog"
	"github.com/riskibarqy/sports-warehouse/internal/infrastructure/repository/cache"
	"github.com/riskibarqy/sports-warehouse/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/sports-warehouse/internal/infrastructure/repository/postgres"
	"github.com/riskibarqy/sports-warehouse/internal/interfaces/httpapi"
	basecache "github.com/riskibarqy/sports-warehouse/internal/platform/cache"
	idgen "github.com/riskibarqy/sports-warehouse/internal/platform/id"
	"github.com/riskibarqy/sports-warehouse/internal/platform/logging"
	"github.com/riskibarqy/sports-warehouse/internal/platform/resilience"
	"github.com/riskibarqy/sports-warehouse/internal/usecase"
)

// memoryRejectsLimit caps rejections held in memory when REJECTS_PATH is unset.
const memoryRejectsLimit = 10000

// Pipeline is a wired pipeline service plus the resources it owns.
type Pipeline struct {
	Service *usecase.PipelineService
	db      *sqlx.DB
}

func (p *Pipeline) Close() error {
	if p == nil || p.db == nil {
		return nil
	}
	return p.db.Close()
}

func NewPipeline(ctx context.Context, cfg config.Config, logger *logging.Logger) (*Pipeline, error) {
	if logger == nil {
		logger = logging.Default()
	}

	var (
		db     *sqlx.DB
		sink   warehouse.Sink
		reader warehouse.DimensionReader
	)
	switch cfg.SinkDriver {
	case config.SinkDriverMemory:
		mem := memory.NewWarehouseSink()
		sink, reader = mem, mem
	case config.SinkDriverPostgres:
		var err error
		db, err = OpenDB(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", usecase.ErrDependencyUnavailable, err)
		}
		sink = postgres.NewWarehouseSink(db, postgres.WarehouseSinkConfig{
			BatchSize: cfg.SinkBatchSize,
			CircuitBreaker: resilience.CircuitBreakerConfig{
				Enabled:          cfg.SinkCircuitEnabled,
				FailureThreshold: cfg.SinkCircuitFailureCount,
				OpenTimeout:      cfg.SinkCircuitOpenTimeout,
				HalfOpenMaxReq:   cfg.SinkCircuitHalfOpenMaxReq,
			},
		}, logger)
		reader = postgres.NewWarehouseReader(db)
		if cfg.SeedCacheTTL > 0 {
			store := basecache.NewStore(cfg.SeedCacheTTL)
			sink = cache.NewWarehouseSink(sink, store)
			reader = cache.NewWarehouseReader(reader, store)
		}
	default:
		return nil, fmt.Errorf("unsupported sink driver %q", cfg.SinkDriver)
	}

	rejects := newRejectSink(cfg.RejectsPath)

	source := csvsource.New(csvsource.Config{
		Paths:     cfg.FeedPaths,
		Delimiter: cfg.FeedCSVDelimiter,
	}, logger)

	service := usecase.NewPipelineService(
		source,
		sink,
		reader,
		rejects,
		usecase.NewLoadCoordinator(sink, cfg.LoadMaxWorkers, logger),
		idgen.NewRunIDGenerator(),
		PipelineConfig(cfg),
		logger,
	)

	logger.Info("pipeline wired",
		"sink_driver", cfg.SinkDriver,
		"rejects_path", cfg.RejectsPath,
		"seed_from_warehouse", cfg.SeedFromWarehouse,
		"fuzzy_scorer", cfg.FuzzyScorer,
	)
	return &Pipeline{Service: service, db: db}, nil
}

func newRejectSink(path string) rejection.Sink {
	if path == "" {
		return rejection.NewBoundedMemorySink(memoryRejectsLimit)
	}
	return rejectlog.NewJSONLSink(path)
}

// PipelineConfig maps runtime configuration onto the pipeline's tunables.
func PipelineConfig(cfg config.Config) usecase.PipelineConfig {
	layouts := cfg.DateLayouts
	if len(layouts) == 0 {
		layouts = dimension.DayFirstLayouts()
		if !cfg.DateDayFirst {
			layouts = dimension.MonthFirstLayouts()
		}
	}

	return usecase.PipelineConfig{
		Builder: usecase.DimensionBuilderConfig{
			Resolver: entity.ResolverConfig{
				AcceptThreshold: cfg.FuzzyAcceptThreshold,
				ReviewThreshold: cfg.FuzzyReviewThreshold,
				Scorer:          cfg.FuzzyScorer,
			},
			Normalization: entity.NormalizationRules{
				StripTokens:   cfg.NormalizeStripTokens,
				Abbreviations: cfg.NormalizeAbbreviations,
			},
			DateLayouts:      layouts,
			FillDateRange:    cfg.DateFillRange,
			SeasonStartMonth: cfg.SeasonStartMonth,
		},
		Assembler: usecase.FactAssemblerConfig{
			DistanceUnit: cfg.GPSDistanceUnit,
			SpeedUnit:    cfg.GPSSpeedUnit,
			NullDefaults: cfg.MetricNullDefaults,
		},
		SeedFromWarehouse: cfg.SeedFromWarehouse,
	}
}

// NewHTTPServer builds the run trigger server. The returned handler's Wait drains
// background runs on shutdown.
func NewHTTPServer(cfg config.Config, runner httpapi.PipelineRunner, logger *logging.Logger) (*http.Server, *httpapi.Handler, error) {
	handler := httpapi.NewHandler(runner, cfg.RunTimeout, logger)
	router := httpapi.NewRouter(handler, logger, cfg.InternalJobToken)

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	if server.Addr == "" {
		return nil, nil, fmt.Errorf("http server addr cannot be empty")
	}

	return server, handler, nil
}
