package httpapi

import (
	"context"
	"sync"
	"time"

	"github.com/riskibarqy/sports-warehouse/internal/platform/logging"
	"github.com/riskibarqy/sports-warehouse/internal/usecase"
)

const defaultRunTimeout = 30 * time.Minute

// PipelineRunner is the part of the pipeline service the trigger server drives.
type PipelineRunner interface {
	// TryStart claims the run slot; the returned function runs once and frees it.
	TryStart() (func(context.Context) (usecase.RunReport, error), bool)
	LastReport() (usecase.RunReport, bool)
}

type Handler struct {
	runner     PipelineRunner
	logger     *logging.Logger
	runTimeout time.Duration

	inflight sync.WaitGroup
}

func NewHandler(runner PipelineRunner, runTimeout time.Duration, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	if runTimeout <= 0 {
		runTimeout = defaultRunTimeout
	}

	return &Handler{
		runner:     runner,
		logger:     logger,
		runTimeout: runTimeout,
	}
}

// Wait blocks until every background run started by the handler has returned.
func (h *Handler) Wait() {
	h.inflight.Wait()
}
