package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"mime"
	"net/http"
	"strconv"

	resumeErrors "resumebuilder/internal/errors"
	"resumebuilder/internal/formatters"
	"resumebuilder/internal/templates"
	"resumebuilder/internal/types"
)

// healthHandler reports the server and the state of the circuit breakers guarding the backend
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	response := map[string]any{
		"status":  "healthy",
		"service": "resumebuilder",
		"version": s.Version,
	}

	if s.Backend != nil {
		response["backend"] = map[string]any{
			"base_url":         s.Backend.BaseURL(),
			"healthy":          s.Backend.Healthy(),
			"circuit_breakers": s.Backend.Stats(),
		}

		if !s.Backend.Healthy() {
			response["status"] = "degraded"
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			if err := json.NewEncoder(w).Encode(response); err != nil {
				log.Printf("Failed to encode health response: %v", err)
			}
			return
		}
	}

	writeJSON(w, http.StatusOK, response)
}

// statsHandler provides server statistics including rate limiting info
func (s *Server) statsHandler(w http.ResponseWriter, r *http.Request) {
	response := map[string]any{
		"service": "resumebuilder",
		"version": s.Version,
		"server": map[string]any{
			"max_request_size_bytes": s.MaxRequestSize,
		},
	}

	// Add rate limiting stats if enabled
	if s.RateLimiter != nil {
		response["rate_limiting"] = s.RateLimiter.GetStats()
	} else {
		response["rate_limiting"] = map[string]any{
			"enabled": false,
		}
	}

	if s.Session != nil {
		response["session"] = map[string]any{
			"id":            s.Session.ID(),
			"history_count": len(s.Session.History()),
		}
	}

	writeJSON(w, http.StatusOK, response)
}

// stateHandler returns the session snapshot
func (s *Server) stateHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Session.Snapshot())
}

// previewHandler renders the selected template over the effective record.
// ?format= picks html (default), markdown, text or json.
func (s *Server) previewHandler(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "html"
	}

	preview := formatters.Preview{View: s.Session.Snapshot(), Tree: s.Session.Preview()}
	out, err := formatters.GlobalRegistry.Format(preview, format)
	if err != nil {
		writeErrorResponse(w, "Unsupported preview format", err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", contentTypeFor(format))
	if _, err := io.WriteString(w, out); err != nil {
		log.Printf("Failed to write preview: %v", err)
	}
}

func contentTypeFor(format string) string {
	switch format {
	case "html":
		return "text/html; charset=utf-8"
	case "json":
		return "application/json"
	case "markdown":
		return "text/markdown; charset=utf-8"
	default:
		return "text/plain; charset=utf-8"
	}
}

// templatesHandler lists the registered layouts
func (s *Server) templatesHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, templates.All())
}

// modeHandler switches between upload and manual entry
func (s *Server) modeHandler(w http.ResponseWriter, r *http.Request) {
	var req ModeRequest
	if err := parseJSONRequest(r, &req); err != nil {
		writeErrorResponse(w, "Invalid request body", err.Error(), http.StatusBadRequest)
		return
	}

	mode, ok := types.ParseMode(req.Mode)
	if !ok {
		writeErrorResponse(w, "Invalid mode", fmt.Sprintf("mode must be %q or %q", types.ModeUpload, types.ModeManual), http.StatusBadRequest)
		return
	}

	s.Session.SetMode(mode)
	writeJSON(w, http.StatusOK, s.Session.Snapshot())
}

// comparisonHandler sets comparison mode, or toggles it when enabled is absent
func (s *Server) comparisonHandler(w http.ResponseWriter, r *http.Request) {
	var req ComparisonRequest
	if err := parseJSONRequest(r, &req); err != nil {
		writeErrorResponse(w, "Invalid request body", err.Error(), http.StatusBadRequest)
		return
	}

	if req.Enabled == nil {
		s.Session.ToggleComparison()
	} else {
		s.Session.SetComparison(*req.Enabled)
	}
	writeJSON(w, http.StatusOK, s.Session.Snapshot())
}

// templateHandler selects the preview layout
func (s *Server) templateHandler(w http.ResponseWriter, r *http.Request) {
	var req TemplateRequest
	if err := parseJSONRequest(r, &req); err != nil {
		writeErrorResponse(w, "Invalid request body", err.Error(), http.StatusBadRequest)
		return
	}

	if err := s.Session.SelectTemplate(req.ID); err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.Session.Snapshot())
}

// draftHandler replaces the manual-entry draft without submitting it
func (s *Server) draftHandler(w http.ResponseWriter, r *http.Request) {
	var draft types.ResumeRecord
	if err := parseJSONRequest(r, &draft); err != nil {
		writeErrorResponse(w, "Invalid request body", err.Error(), http.StatusBadRequest)
		return
	}

	s.Session.Form().LoadDraft(draft)
	writeJSON(w, http.StatusOK, s.Session.Snapshot())
}

// skillAddHandler appends an empty skill to the draft
func (s *Server) skillAddHandler(w http.ResponseWriter, r *http.Request) {
	s.Session.Form().AddSkill()
	writeJSON(w, http.StatusOK, s.Session.Snapshot())
}

// skillSetHandler edits one skill in place. An index past the end changes nothing.
func (s *Server) skillSetHandler(w http.ResponseWriter, r *http.Request) {
	i, ok := entryIndex(w, r)
	if !ok {
		return
	}
	var req SkillRequest
	if err := parseJSONRequest(r, &req); err != nil {
		writeErrorResponse(w, "Invalid request body", err.Error(), http.StatusBadRequest)
		return
	}

	s.Session.Form().Skills().Set(i, req.Value)
	writeJSON(w, http.StatusOK, s.Session.Snapshot())
}

// skillRemoveHandler drops one skill. An index past the end changes nothing.
func (s *Server) skillRemoveHandler(w http.ResponseWriter, r *http.Request) {
	i, ok := entryIndex(w, r)
	if !ok {
		return
	}
	s.Session.Form().Skills().Remove(i)
	writeJSON(w, http.StatusOK, s.Session.Snapshot())
}

// experienceAddHandler appends an empty experience entry to the draft
func (s *Server) experienceAddHandler(w http.ResponseWriter, r *http.Request) {
	s.Session.Form().AddExperience()
	writeJSON(w, http.StatusOK, s.Session.Snapshot())
}

func (s *Server) experienceSetHandler(w http.ResponseWriter, r *http.Request) {
	i, ok := entryIndex(w, r)
	if !ok {
		return
	}
	var entry types.ExperienceEntry
	if err := parseJSONRequest(r, &entry); err != nil {
		writeErrorResponse(w, "Invalid request body", err.Error(), http.StatusBadRequest)
		return
	}

	s.Session.Form().Experience().Set(i, entry)
	writeJSON(w, http.StatusOK, s.Session.Snapshot())
}

func (s *Server) experienceRemoveHandler(w http.ResponseWriter, r *http.Request) {
	i, ok := entryIndex(w, r)
	if !ok {
		return
	}
	s.Session.Form().Experience().Remove(i)
	writeJSON(w, http.StatusOK, s.Session.Snapshot())
}

// entryIndex reads the {index} path segment, answering 400 when it is not a number
func entryIndex(w http.ResponseWriter, r *http.Request) (int, bool) {
	i, err := strconv.Atoi(r.PathValue("index"))
	if err != nil {
		writeErrorResponse(w, "Invalid index", fmt.Sprintf("index %q is not a number", r.PathValue("index")), http.StatusBadRequest)
		return 0, false
	}
	return i, true
}

// uploadClearHandler forgets the selected file. Enhanced results stay in place.
func (s *Server) uploadClearHandler(w http.ResponseWriter, r *http.Request) {
	if err := s.Session.Upload().ClearFile(); err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.Session.Snapshot())
}

// parseJSONRequest parses JSON request body into the provided struct
func parseJSONRequest(r *http.Request, v any) error {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil || mediaType != "application/json" {
		return fmt.Errorf("content-type must be application/json")
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return fmt.Errorf("request body too large (limit is %d bytes)", maxBytesErr.Limit)
		}
		return fmt.Errorf("failed to read request body: %w", err)
	}
	defer func() {
		if err := r.Body.Close(); err != nil {
			log.Printf("Failed to close request body: %v", err)
		}
	}()

	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("failed to parse JSON: %w", err)
	}

	return nil
}

func writeJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}

// writeErrorResponse writes a standardized error response
func writeErrorResponse(w http.ResponseWriter, error, message string, statusCode int) {
	writeJSON(w, statusCode, ErrorResponse{
		Error:   error,
		Message: message,
	})
}

// writeAppError writes err with the status matching its type and code.
// The error field carries the message shown to the user.
func writeAppError(w http.ResponseWriter, err error) {
	appErr, ok := resumeErrors.AsAppError(err)
	if !ok {
		writeErrorResponse(w, "Internal error", err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, statusFor(appErr), ErrorResponse{
		Error:   appErr.Message,
		Code:    appErr.Code,
		Message: err.Error(),
	})
}

func statusFor(appErr *resumeErrors.AppError) int {
	switch appErr.Code {
	case resumeErrors.ErrCodeSubmitInFlight:
		return http.StatusConflict
	case resumeErrors.ErrCodeNetworkTimeout:
		return http.StatusGatewayTimeout
	case resumeErrors.ErrCodeServiceUnavailable:
		return http.StatusServiceUnavailable
	}

	switch appErr.Type {
	case resumeErrors.ErrorTypeValidation:
		return http.StatusBadRequest
	case resumeErrors.ErrorTypeService, resumeErrors.ErrorTypeNetwork:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
