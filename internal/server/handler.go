package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"resumebuilder/internal/client"
	resumeErrors "resumebuilder/internal/errors"
	"resumebuilder/internal/export"
	"resumebuilder/internal/types"
	"resumebuilder/internal/upload"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

func (s *Server) failSpan(span trace.Span, err error) {
	span.RecordError(err)
	errorType := "internal"
	if appErr, ok := resumeErrors.AsAppError(err); ok {
		errorType = string(appErr.Type)
		span.SetAttributes(attribute.String("error.code", appErr.Code))
	}
	span.SetAttributes(attribute.String("error.type", errorType))
}

// createUploadHandler selects the multipart resume_file and submits it for enhancement
func (s *Server) createUploadHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := s.Observability.Tracer("resumebuilder.api").Start(r.Context(), "api.upload")
		defer span.End()

		file, header, err := r.FormFile(client.UploadField)
		if err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "validation"))
			var maxBytesErr *http.MaxBytesError
			if errors.As(err, &maxBytesErr) {
				writeErrorResponse(w, "Upload too large", err.Error(), http.StatusRequestEntityTooLarge)
				return
			}
			writeErrorResponse(w, "Missing upload", client.UploadField+" form field is required", http.StatusBadRequest)
			return
		}
		defer func() { _ = file.Close() }()

		content, err := io.ReadAll(file)
		if err != nil {
			span.RecordError(err)
			writeErrorResponse(w, "Failed to read upload", err.Error(), http.StatusBadRequest)
			return
		}

		span.SetAttributes(
			attribute.String("upload.file_name", header.Filename),
			attribute.Int("upload.size", len(content)),
		)

		if err := s.Session.Upload().SelectFile(upload.File{Name: header.Filename, Content: content}); err != nil {
			s.failSpan(span, err)
			writeAppError(w, err)
			return
		}

		result, err := s.Session.Enhance(ctx)
		if err != nil {
			s.failSpan(span, err)
			writeAppError(w, err)
			return
		}

		span.SetAttributes(
			attribute.Bool("success", true),
			attribute.Bool("result.structured", result.Structured != nil),
		)
		writeJSON(w, http.StatusOK, s.Session.Snapshot())
	}
}

// createManualHandler replaces the draft with the posted record and submits it
func (s *Server) createManualHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := s.Observability.Tracer("resumebuilder.api").Start(r.Context(), "api.manual")
		defer span.End()

		var draft types.ResumeRecord
		if err := parseJSONRequest(r, &draft); err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "validation"))
			writeErrorResponse(w, "Invalid request body", err.Error(), http.StatusBadRequest)
			return
		}

		span.SetAttributes(
			attribute.Int("draft.skills", len(draft.Skills)),
			attribute.Int("draft.experience", len(draft.Experience)),
		)

		if _, err := s.Session.SubmitManualDraft(ctx, draft); err != nil {
			s.failSpan(span, err)
			writeAppError(w, err)
			return
		}

		span.SetAttributes(attribute.Bool("success", true))
		writeJSON(w, http.StatusOK, s.Session.Snapshot())
	}
}

// createExportHandler exports the current record as pdf, docx or all.
// A single requested format that fails answers with its error.
func (s *Server) createExportHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := s.Observability.Tracer("resumebuilder.api").Start(r.Context(), "api.export")
		defer span.End()

		formats, err := export.ParseFormats(r.PathValue("format"))
		if err != nil {
			s.failSpan(span, err)
			writeAppError(w, err)
			return
		}
		span.SetAttributes(attribute.String("export.format", r.PathValue("format")))

		results := s.Exports.Export(ctx, s.Session.ExportRecord(), formats)
		if len(results) == 1 && results[0].Err != nil {
			s.failSpan(span, results[0].Err)
			writeAppError(w, results[0].Err)
			return
		}

		writeJSON(w, http.StatusOK, results)
	}
}

// createChatHandler relays one feedback chat message
func (s *Server) createChatHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := s.Observability.Tracer("resumebuilder.api").Start(r.Context(), "api.chat")
		defer span.End()

		var req types.ChatRequest
		if err := parseJSONRequest(r, &req); err != nil {
			span.RecordError(err)
			writeErrorResponse(w, "Invalid request body", err.Error(), http.StatusBadRequest)
			return
		}
		span.SetAttributes(attribute.Int("chat.message_length", len(strings.TrimSpace(req.Message))))

		reply, err := s.Exports.Chat(ctx, req.Message)
		if err != nil {
			s.failSpan(span, err)
			writeAppError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(types.ChatResponse{Response: reply}); err != nil {
			span.RecordError(err)
			http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		}
	}
}
