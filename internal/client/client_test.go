package client

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resumebuilder/internal/config"
	"resumebuilder/internal/errors"
	"resumebuilder/internal/types"
)

const enhanceBody = `{
  "original_text": "raw resume",
  "enhanced_text": "Polished resume",
  "structured": {"name": "Jane", "job_title": "Eng", "summary": "S", "skills": ["Go"], "experience": []},
  "ats": {"overall_score": 80, "keyword_score": 70, "skill_match_score": 60}
}`

func testConfig(baseURL string) *config.Config {
	cfg := config.Defaults()
	cfg.Service.BaseURL = baseURL
	cfg.Service.CircuitBreaker.Enabled = false
	return cfg
}

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(testConfig(srv.URL), errors.NewNopLogger()), srv
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

func TestEnhanceSendsMultipartUpload(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/enhance", r.URL.Path)
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))

		file, header, err := r.FormFile(UploadField)
		require.NoError(t, err)
		defer file.Close()
		content, _ := io.ReadAll(file)
		assert.Equal(t, "cv.txt", header.Filename)
		assert.Equal(t, "raw resume", string(content))

		writeJSON(w, http.StatusOK, enhanceBody)
	})

	result, err := c.Enhance(context.Background(), "cv.txt", []byte("raw resume"))
	require.NoError(t, err)

	assert.Equal(t, "raw resume", result.OriginalText)
	assert.Equal(t, "Polished resume", result.EnhancedText)
	require.NotNil(t, result.Structured)
	assert.Equal(t, "Jane", result.Structured.Name)
	assert.NotNil(t, result.Structured.Experience)
	require.NotNil(t, result.ATS)
	assert.Equal(t, 80.0, result.ATS.OverallScore)
}

func TestEnhanceMalformedResponses(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		body        string
	}{
		{"html page", "text/html", "<html>oops</html>"},
		{"not json without content type", "", "plain words"},
		{"missing enhanced_text", "application/json", `{"original_text": "raw"}`},
		{"structured has wrong shape", "application/json", `{"enhanced_text": "x", "structured": {"skills": "Go"}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				if tt.contentType != "" {
					w.Header().Set("Content-Type", tt.contentType)
				}
				_, _ = io.WriteString(w, tt.body)
			})

			_, err := c.Enhance(context.Background(), "cv.txt", []byte("x"))
			require.Error(t, err)
			assert.True(t, errors.HasCode(err, errors.ErrCodeMalformedResponse), "got %v", err)
		})
	}
}

func TestServiceErrorCarriesMessage(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusInternalServerError, `{"error": "docx library missing"}`)
	})

	_, err := c.ExportDocx(context.Background(), types.ResumeRecord{Name: "Jane"})
	require.Error(t, err)

	appErr, ok := errors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeServiceError, appErr.Code)
	assert.Equal(t, "docx library missing", appErr.Message)
	assert.Equal(t, http.StatusInternalServerError, appErr.Context["status"])
}

func TestServiceErrorWithoutBodyIsUnknown(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	})

	_, err := c.ExportPDF(context.Background(), types.ResumeRecord{})
	require.Error(t, err)
	assert.Equal(t, "unknown", errors.UserMessage(err))
}

func TestTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	t.Cleanup(srv.Close)

	cfg := testConfig(srv.URL)
	short := 50 * time.Millisecond
	cfg.Service.Chat.Timeout = &short
	c := New(cfg, errors.NewNopLogger())

	_, err := c.FeedbackChat(context.Background(), "hello")
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeNetworkTimeout), "got %v", err)
}

func TestCanceledContext(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"response": "hi"}`)
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.FeedbackChat(ctx, "hello")
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeRequestCanceled), "got %v", err)
}

func TestUnreachableService(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := New(testConfig(url), errors.NewNopLogger())
	_, err := c.Enhance(context.Background(), "cv.txt", []byte("x"))
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeServiceUnavailable), "got %v", err)
	assert.Equal(t, "Failed to contact backend", errors.UserMessage(err))
}

func TestCircuitBreakerOpensAfterFailures(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		writeJSON(w, http.StatusInternalServerError, `{"error": "down"}`)
	}))
	t.Cleanup(srv.Close)

	cfg := testConfig(srv.URL)
	cfg.Service.CircuitBreaker = config.CircuitBreakerConfig{
		Enabled:          true,
		MaxRequests:      1,
		Interval:         time.Minute,
		Timeout:          time.Minute,
		MinRequests:      2,
		FailureThreshold: 0.5,
	}
	c := New(cfg, errors.NewNopLogger())

	for range 2 {
		_, err := c.FeedbackChat(context.Background(), "hi")
		assert.True(t, errors.HasCode(err, errors.ErrCodeServiceError), "got %v", err)
	}
	assert.False(t, c.Healthy())

	_, err := c.FeedbackChat(context.Background(), "hi")
	assert.True(t, errors.HasCode(err, errors.ErrCodeServiceUnavailable), "got %v", err)
	assert.Equal(t, int32(2), hits.Load())

	// Other endpoint groups keep their own breaker
	_, err = c.ExportPDF(context.Background(), types.ResumeRecord{})
	assert.True(t, errors.HasCode(err, errors.ErrCodeServiceError), "got %v", err)
}

func TestExportPDFAndDownload(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/export/pdf":
			var record types.ResumeRecord
			require.NoError(t, json.NewDecoder(r.Body).Decode(&record))
			assert.Equal(t, "Jane", record.Name)
			writeJSON(w, http.StatusOK, `{"file": "resume_export.html"}`)
		case "/download/resume_export.html":
			w.Header().Set("Content-Type", "text/html")
			w.Header().Set("Content-Disposition", `attachment; filename="resume_export.html"`)
			_, _ = io.WriteString(w, "<html>Jane</html>")
		default:
			http.NotFound(w, r)
		}
	})

	file, err := c.ExportPDF(context.Background(), types.ResumeRecord{Name: "Jane"})
	require.NoError(t, err)
	assert.Equal(t, "resume_export.html", file)

	d, err := c.Download(context.Background(), file)
	require.NoError(t, err)
	assert.Equal(t, "resume_export.html", d.Name)
	assert.Equal(t, "text/html", d.ContentType)
	assert.Equal(t, "<html>Jane</html>", string(d.Body))
}

func TestExportPDFMissingFile(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{}`)
	})

	_, err := c.ExportPDF(context.Background(), types.ResumeRecord{Name: "Jane"})
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeMalformedResponse))
}

func TestManualEntryPostsNormalizedDraft(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/manual-entry", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		body, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"name":"Jane","job_title":"Eng","summary":"","skills":[],"experience":[]}`, string(body))
		writeJSON(w, http.StatusOK, enhanceBody)
	})

	result, err := c.ManualEntry(context.Background(), types.ResumeRecord{Name: "Jane", JobTitle: "Eng"})
	require.NoError(t, err)
	assert.Equal(t, "Polished resume", result.EnhancedText)
}

func TestFeedbackChat(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var req types.ChatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		writeJSON(w, http.StatusOK, `{"response": "echo: `+req.Message+`"}`)
	})

	reply, err := c.FeedbackChat(context.Background(), "tighten my summary")
	require.NoError(t, err)
	assert.Equal(t, "echo: tighten my summary", reply)
}

func TestFeedbackChatMissingResponse(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"reply": "wrong key"}`)
	})

	_, err := c.FeedbackChat(context.Background(), "hi")
	assert.True(t, errors.HasCode(err, errors.ErrCodeMalformedResponse))
}
