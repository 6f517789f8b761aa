package server

import (
	"net/http"
)

// setupRoutes configures all HTTP routes and middleware
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	// Add middleware layers
	rateLimitHandler := s.rateLimitMiddleware()
	requestLimitHandler := s.requestSizeLimitMiddleware()
	guarded := func(h http.HandlerFunc) http.HandlerFunc {
		return rateLimitHandler(requestLimitHandler(h))
	}

	mux.HandleFunc("GET /health", s.healthHandler)
	mux.HandleFunc("GET /stats", s.statsHandler)
	mux.HandleFunc("GET /state", s.stateHandler)
	mux.HandleFunc("GET /preview", s.previewHandler)
	mux.HandleFunc("GET /templates", s.templatesHandler)
	if metrics := s.Observability.MetricsHandler(); metrics != nil {
		mux.Handle("GET /metrics", metrics)
	}

	mux.HandleFunc("POST /mode", guarded(s.modeHandler))
	mux.HandleFunc("POST /comparison", guarded(s.comparisonHandler))
	mux.HandleFunc("POST /template", guarded(s.templateHandler))
	mux.HandleFunc("PUT /draft", guarded(s.draftHandler))
	mux.HandleFunc("POST /draft/skills", guarded(s.skillAddHandler))
	mux.HandleFunc("PUT /draft/skills/{index}", guarded(s.skillSetHandler))
	mux.HandleFunc("DELETE /draft/skills/{index}", guarded(s.skillRemoveHandler))
	mux.HandleFunc("POST /draft/experience", guarded(s.experienceAddHandler))
	mux.HandleFunc("PUT /draft/experience/{index}", guarded(s.experienceSetHandler))
	mux.HandleFunc("DELETE /draft/experience/{index}", guarded(s.experienceRemoveHandler))

	mux.HandleFunc("POST /upload", guarded(s.createUploadHandler()))
	mux.HandleFunc("DELETE /upload", guarded(s.uploadClearHandler))
	mux.HandleFunc("POST /manual", guarded(s.createManualHandler()))
	mux.HandleFunc("POST /export/{format}", guarded(s.createExportHandler()))
	mux.HandleFunc("POST /chat", guarded(s.createChatHandler()))

	return mux
}

// Handler returns the fully wrapped handler served by Start
func (s *Server) Handler() http.Handler {
	return s.Observability.HTTPMiddleware()(s.setupRoutes())
}

// requestSizeLimitMiddleware limits the size of incoming requests
func (s *Server) requestSizeLimitMiddleware() func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if s.MaxRequestSize > 0 {
				// Limit the request body size
				r.Body = http.MaxBytesReader(w, r.Body, s.MaxRequestSize)
			}

			next(w, r)
		}
	}
}
