// Package upload drives file selection and single-flight enhancement of an uploaded document.
package upload

import (
	"context"
	"slices"
	"sync"

	"resumebuilder/internal/errors"
	"resumebuilder/internal/observability"
	"resumebuilder/internal/types"
)

// State of the upload controller
type State int

const (
	Idle State = iota
	Selected
	Enhancing
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Selected:
		return "selected"
	case Enhancing:
		return "enhancing"
	default:
		return "unknown"
	}
}

// File is a document picked for upload. Type and size are not checked locally.
type File struct {
	Name    string
	Content []byte
}

// Enhancer sends a document to the enhancement endpoint
type Enhancer interface {
	Enhance(ctx context.Context, fileName string, content []byte) (types.EnhancementResult, error)
}

// Snapshot is a read-only copy of the controller state
type Snapshot struct {
	State        State
	FileName     string
	OriginalText string
	EnhancedText string
	Structured   *types.ResumeRecord
	ATS          *types.ATSScore
}

// Controller owns the ingested enhancement result
type Controller struct {
	mu           sync.Mutex
	state        State
	file         *File
	originalText string
	enhancedText string
	structured   *types.ResumeRecord
	ats          *types.ATSScore

	enhancer Enhancer
	metrics  *observability.Metrics
	logger   *errors.Logger
}

// NewController creates a controller in the Idle state
func NewController(enhancer Enhancer, metrics *observability.Metrics, logger *errors.Logger) *Controller {
	if metrics == nil {
		metrics = observability.NopMetrics()
	}
	return &Controller{enhancer: enhancer, metrics: metrics, logger: logger}
}

// SelectFile picks the document to submit. It is refused while a submission is in flight.
func (c *Controller) SelectFile(f File) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == Enhancing {
		return errors.NewValidationError(errors.ErrCodeSubmitInFlight,
			"Cannot change the file while enhancement is in progress", nil)
	}

	c.file = &File{Name: f.Name, Content: slices.Clone(f.Content)}
	c.state = Selected
	c.logger.Debug("File selected", "file", f.Name, "size", len(f.Content))
	return nil
}

// ClearFile drops the selected file and returns to Idle. Ingested results are kept.
func (c *Controller) ClearFile() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == Enhancing {
		return errors.NewValidationError(errors.ErrCodeSubmitInFlight,
			"Cannot change the file while enhancement is in progress", nil)
	}
	c.file = nil
	c.state = Idle
	return nil
}

// Submit uploads the selected file and ingests the result.
// From Idle it fails with NO_FILE_SELECTED, while Enhancing with SUBMIT_IN_FLIGHT;
// neither issues a request. Either outcome of the request returns to Selected.
func (c *Controller) Submit(ctx context.Context) (types.EnhancementResult, error) {
	c.mu.Lock()
	switch c.state {
	case Idle:
		c.mu.Unlock()
		c.metrics.RecordRejection(ctx, errors.ErrCodeNoFileSelected)
		return types.EnhancementResult{}, errors.NewValidationError(errors.ErrCodeNoFileSelected,
			"Please upload a resume first!", nil)
	case Enhancing:
		c.mu.Unlock()
		c.metrics.RecordRejection(ctx, errors.ErrCodeSubmitInFlight)
		return types.EnhancementResult{}, errors.NewValidationError(errors.ErrCodeSubmitInFlight,
			"Enhancement already in progress", nil)
	}
	c.state = Enhancing
	file := *c.file
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.state = Selected
		c.mu.Unlock()
	}()

	c.logger.Debug("Submitting file for enhancement", "file", file.Name)

	result, err := c.enhancer.Enhance(ctx, file.Name, file.Content)
	if err != nil {
		c.metrics.RecordEnhancement(ctx, "upload", false)
		wrapped := enhancementFailed(err)
		c.logger.LogError(wrapped, "Enhancement failed", "file", file.Name)
		return types.EnhancementResult{}, wrapped
	}

	c.Ingest(result)
	c.metrics.RecordEnhancement(ctx, "upload", true)
	c.logger.Info("Enhancement ingested", "file", file.Name, "has_structured", result.Structured != nil)
	return result, nil
}

// enhancementFailed keeps transport errors as they are and labels service failures for the user
func enhancementFailed(err error) error {
	appErr, ok := errors.AsAppError(err)
	if !ok {
		return errors.NewServiceError(errors.ErrCodeServiceError, "Enhancement failed", err)
	}
	if appErr.Type == errors.ErrorTypeNetwork {
		return err
	}
	return errors.NewServiceError(appErr.Code, "Enhancement failed", err)
}

// Ingest adopts an enhancement result, replacing the enhanced text, record and score.
// The original text is only replaced when the result carries one.
func (c *Controller) Ingest(result types.EnhancementResult) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if result.OriginalText != "" {
		c.originalText = result.OriginalText
	}
	c.enhancedText = result.EnhancedText
	c.structured = cloneRecord(result.Structured)
	c.ats = cloneATS(result.ATS)
}

// Snapshot returns a copy of the current state
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := Snapshot{
		State:        c.state,
		OriginalText: c.originalText,
		EnhancedText: c.enhancedText,
		Structured:   cloneRecord(c.structured),
		ATS:          cloneATS(c.ats),
	}
	if c.file != nil {
		s.FileName = c.file.Name
	}
	return s
}

func cloneRecord(r *types.ResumeRecord) *types.ResumeRecord {
	if r == nil {
		return nil
	}
	out := r.Normalize()
	return &out
}

func cloneATS(a *types.ATSScore) *types.ATSScore {
	if a == nil {
		return nil
	}
	out := *a
	out.FormattingIssues = slices.Clone(a.FormattingIssues)
	out.GrammarIssues = slices.Clone(a.GrammarIssues)
	out.MissingHardSkills = slices.Clone(a.MissingHardSkills)
	out.MissingSoftSkills = slices.Clone(a.MissingSoftSkills)
	out.Recommendations = slices.Clone(a.Recommendations)
	return &out
}
