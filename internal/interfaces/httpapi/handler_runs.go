package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/riskibarqy/sports-warehouse/internal/usecase"
	"go.opentelemetry.io/otel/trace"
)

type runAcceptedDTO struct {
	Status string `json:"status"`
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

// TriggerRun starts one pipeline run. By default the run continues in the background and
// the call returns 202; with ?wait=true the response carries the finished report.
func (h *Handler) TriggerRun(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.TriggerRun")
	defer span.End()

	if h.runner == nil {
		writeError(ctx, w, fmt.Errorf("%w: pipeline is not configured", usecase.ErrDependencyUnavailable))
		return
	}

	wait, err := parseWait(r.URL.Query().Get("wait"))
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	run, ok := h.runner.TryStart()
	if !ok {
		writeError(ctx, w, usecase.ErrRunInProgress)
		return
	}

	if wait {
		runCtx, cancel := context.WithTimeout(ctx, h.runTimeout)
		defer cancel()

		report, err := run(runCtx)
		if err != nil {
			h.logger.WarnContext(ctx, "triggered run failed", "run_id", report.RunID, "failed_phase", report.FailedPhase, "error", err)
			writeError(ctx, w, err)
			return
		}
		writeSuccess(ctx, w, http.StatusOK, report)
		return
	}

	// Detach from the request but keep the trace link.
	runCtx := trace.ContextWithSpanContext(context.Background(), trace.SpanContextFromContext(ctx))
	h.inflight.Add(1)
	go func() {
		defer h.inflight.Done()

		runCtx, cancel := context.WithTimeout(runCtx, h.runTimeout)
		defer cancel()

		report, err := run(runCtx)
		if err != nil {
			h.logger.WarnContext(runCtx, "background run failed", "run_id", report.RunID, "failed_phase", report.FailedPhase, "error", err)
		}
	}()

	writeSuccess(ctx, w, http.StatusAccepted, runAcceptedDTO{Status: "accepted"})
}

func (h *Handler) GetLastRun(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetLastRun")
	defer span.End()

	if h.runner == nil {
		writeError(ctx, w, fmt.Errorf("%w: pipeline is not configured", usecase.ErrDependencyUnavailable))
		return
	}

	report, ok := h.runner.LastReport()
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: no run has finished yet", usecase.ErrNotFound))
		return
	}
	writeSuccess(ctx, w, http.StatusOK, report)
}

func parseWait(raw string) (bool, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return false, nil
	}
	wait, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("%w: wait must be a boolean", usecase.ErrInvalidInput)
	}
	return wait, nil
}
