// Package session holds the orchestrator state: input mode, comparison mode,
// selected template, score history, and the controllers whose data feeds the preview.
package session

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"resumebuilder/internal/errors"
	"resumebuilder/internal/form"
	"resumebuilder/internal/observability"
	"resumebuilder/internal/templates"
	"resumebuilder/internal/types"
	"resumebuilder/internal/upload"

	"github.com/google/uuid"
)

// Service is the part of the remote service the session drives
type Service interface {
	upload.Enhancer
	form.Submitter
}

// Session is the single explicit state struct observed by every surface (CLI, preview server)
type Session struct {
	id string

	mu         sync.Mutex
	mode       types.Mode
	comparison bool
	templateID int
	history    []types.ScoreHistoryEntry

	upload *upload.Controller
	form   *form.Controller

	now     func() time.Time
	metrics *observability.Metrics
	logger  *errors.Logger
}

// Option customizes a Session
type Option func(*Session)

// WithClock replaces the clock used to date score history entries
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// WithMetrics records controller activity on m
func WithMetrics(m *observability.Metrics) Option {
	return func(s *Session) { s.metrics = m }
}

// WithTemplate sets the initially selected layout. Unknown ids fall back to the default.
func WithTemplate(id int) Option {
	return func(s *Session) {
		if templates.Valid(id) {
			s.templateID = id
		}
	}
}

// New creates a session in upload mode with comparison off
func New(svc Service, logger *errors.Logger, opts ...Option) *Session {
	s := &Session{
		id:         uuid.NewString(),
		mode:       types.ModeUpload,
		templateID: templates.DefaultID,
		now:        time.Now,
		metrics:    observability.NopMetrics(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = logger.With("session_id", s.id)
	s.upload = upload.NewController(svc, s.metrics, s.logger.With("controller", "upload"))
	s.form = form.NewController(svc, s.upload, s.metrics, s.logger.With("controller", "form"))
	return s
}

// ID identifies the session in logs and snapshots
func (s *Session) ID() string {
	return s.id
}

// Upload is the upload controller
func (s *Session) Upload() *upload.Controller {
	return s.upload
}

// Form is the manual-entry controller
func (s *Session) Form() *form.Controller {
	return s.form
}

// Mode returns the current input mode
func (s *Session) Mode() types.Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

// SetMode switches the input mode. Neither controller's data is touched.
func (s *Session) SetMode(mode types.Mode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.mode != mode {
		s.logger.Debug("Mode changed", "from", s.mode, "to", mode)
	}
	s.mode = mode
}

// Comparison reports whether comparison mode is on
func (s *Session) Comparison() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.comparison
}

// SetComparison turns comparison mode on or off
func (s *Session) SetComparison(on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.comparison = on
}

// ToggleComparison flips comparison mode and returns the new value
func (s *Session) ToggleComparison() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.comparison = !s.comparison
	return s.comparison
}

// TemplateID returns the selected layout id
func (s *Session) TemplateID() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.templateID
}

// SelectTemplate changes the layout used by Preview. The record is never altered.
func (s *Session) SelectTemplate(id int) error {
	if !templates.Valid(id) {
		return errors.NewValidationError(errors.ErrCodeInvalidTemplate,
			fmt.Sprintf("Unknown template %d (choose 1-%d)", id, templates.Count()), nil).
			WithContext("template_id", id)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.templateID = id
	return nil
}

// EffectiveRecord is the record the template renderer consumes right now
func (s *Session) EffectiveRecord() types.ResumeRecord {
	mode := s.Mode()
	snap := s.upload.Snapshot()
	return types.EffectiveRecord(mode, s.form.Draft(), snap.Structured, snap.EnhancedText)
}

// HasStructured reports whether the effective record came from the user or the service
// rather than the placeholder
func (s *Session) HasStructured() bool {
	if s.Mode() == types.ModeManual {
		return true
	}
	return s.upload.Snapshot().Structured != nil
}

// ExportRecord returns a copy of the structured record adopted from the service,
// or nil when none has been ingested. The manual draft itself is never exported.
func (s *Session) ExportRecord() *types.ResumeRecord {
	structured := s.upload.Snapshot().Structured
	if structured == nil {
		return nil
	}
	record := structured.Normalize()
	return &record
}

// Preview renders the effective record with the selected layout
func (s *Session) Preview() templates.Node {
	return templates.Render(s.TemplateID(), s.EffectiveRecord())
}

// TextPanes returns the text columns shown above the preview: original and
// enhanced side by side in upload comparison mode, otherwise the enhanced text alone.
func (s *Session) TextPanes() []types.TextPane {
	s.mu.Lock()
	mode, comparison := s.mode, s.comparison
	s.mu.Unlock()

	snap := s.upload.Snapshot()
	enhanced := snap.EnhancedText
	if enhanced == "" {
		enhanced = "No enhanced text yet"
	}

	if comparison && mode == types.ModeUpload {
		return []types.TextPane{
			{Title: "Original", Text: snap.OriginalText},
			{Title: "Enhanced", Text: enhanced},
		}
	}
	return []types.TextPane{{Title: "Enhanced Text", Text: enhanced}}
}

// ATSLabel summarizes the current score
func (s *Session) ATSLabel() string {
	return FormatATS(s.upload.Snapshot().ATS)
}

// FormatATS renders a score as "80% overall", or "No analysis yet" when absent
func FormatATS(ats *types.ATSScore) string {
	if ats == nil {
		return "No analysis yet"
	}
	return fmt.Sprintf("%g%% overall", ats.OverallScore)
}

// Enhance submits the selected file and records the returned score
func (s *Session) Enhance(ctx context.Context) (types.EnhancementResult, error) {
	result, err := s.upload.Submit(ctx)
	if err != nil {
		return result, err
	}
	s.recordScore(result.ATS)
	return result, nil
}

// SubmitManual submits the form draft and records the returned score
func (s *Session) SubmitManual(ctx context.Context) (types.EnhancementResult, error) {
	result, err := s.form.Submit(ctx)
	if err != nil {
		return result, err
	}
	s.recordScore(result.ATS)
	return result, nil
}

// SubmitManualDraft replaces the form draft with record and submits it as one step
func (s *Session) SubmitManualDraft(ctx context.Context, record types.ResumeRecord) (types.EnhancementResult, error) {
	result, err := s.form.SubmitDraft(ctx, record)
	if err != nil {
		return result, err
	}
	s.recordScore(result.ATS)
	return result, nil
}

func (s *Session) recordScore(ats *types.ATSScore) {
	if ats == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = append(s.history, types.ScoreHistoryEntry{
		Date:  s.now().Format(time.DateOnly),
		Score: ats.OverallScore,
	})
}

// History returns the score history in chronological order
func (s *Session) History() []types.ScoreHistoryEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := slices.Clone(s.history)
	if out == nil {
		out = []types.ScoreHistoryEntry{}
	}
	return out
}

// Snapshot returns a serializable view of the whole session
func (s *Session) Snapshot() types.SessionView {
	s.mu.Lock()
	mode, comparison, templateID := s.mode, s.comparison, s.templateID
	s.mu.Unlock()

	snap := s.upload.Snapshot()
	variant := templates.Lookup(templateID)

	return types.SessionView{
		SessionID:    s.id,
		Mode:         string(mode),
		Comparison:   comparison,
		TemplateID:   variant.ID,
		TemplateName: variant.Name,
		UploadState:  snap.State.String(),
		FileName:     snap.FileName,
		Panes:        s.TextPanes(),
		ATSLabel:     FormatATS(snap.ATS),
		ATS:          snap.ATS,
		Record:       s.EffectiveRecord(),
		Placeholder:  !s.HasStructured(),
		History:      s.History(),
	}
}
