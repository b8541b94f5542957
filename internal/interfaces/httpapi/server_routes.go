package httpapi

import "net/http"

func registerRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
	mux.HandleFunc("POST /analyzers/analyze", handler.AnalyzeFixture)
}
