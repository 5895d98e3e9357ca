package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
}

func registerInternalJobRoutes(mux *http.ServeMux, handler *Handler, internalJobToken string) {
	mux.Handle("POST /v1/internal/runs", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.TriggerRun)))
	mux.Handle("GET /v1/internal/runs/last", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.GetLastRun)))
}
