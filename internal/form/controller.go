// Package form holds the manual-entry draft and submits it for enhancement.
package form

import (
	"context"
	"sync"

	"resumebuilder/internal/errors"
	"resumebuilder/internal/observability"
	"resumebuilder/internal/types"
)

// Submitter sends a draft to the manual-entry endpoint
type Submitter interface {
	ManualEntry(ctx context.Context, record types.ResumeRecord) (types.EnhancementResult, error)
}

// Ingestor adopts a successful enhancement result
type Ingestor interface {
	Ingest(result types.EnhancementResult)
}

// Controller owns the live draft record. Every setter applies immediately.
type Controller struct {
	mu       sync.Mutex
	name     string
	jobTitle string
	summary  string
	inFlight bool

	skills     *List[string]
	experience *List[types.ExperienceEntry]

	submitter Submitter
	ingestor  Ingestor
	metrics   *observability.Metrics
	logger    *errors.Logger
}

// NewController creates an empty draft
func NewController(submitter Submitter, ingestor Ingestor, metrics *observability.Metrics, logger *errors.Logger) *Controller {
	if metrics == nil {
		metrics = observability.NopMetrics()
	}
	return &Controller{
		skills:     NewList[string](),
		experience: NewList[types.ExperienceEntry](),
		submitter:  submitter,
		ingestor:   ingestor,
		metrics:    metrics,
		logger:     logger,
	}
}

func (c *Controller) SetName(v string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.name = v
}

func (c *Controller) SetJobTitle(v string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.jobTitle = v
}

func (c *Controller) SetSummary(v string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.summary = v
}

// Skills is the editable skill list
func (c *Controller) Skills() *List[string] {
	return c.skills
}

// Experience is the editable experience list
func (c *Controller) Experience() *List[types.ExperienceEntry] {
	return c.experience
}

// AddSkill appends an empty skill entry
func (c *Controller) AddSkill() {
	c.skills.Append("")
}

// AddExperience appends an empty experience entry
func (c *Controller) AddExperience() {
	c.experience.Append(types.ExperienceEntry{})
}

// Draft returns the live record
func (c *Controller) Draft() types.ResumeRecord {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.draftLocked()
}

func (c *Controller) draftLocked() types.ResumeRecord {
	return types.ResumeRecord{
		Name:       c.name,
		JobTitle:   c.jobTitle,
		Summary:    c.summary,
		Skills:     c.skills.Items(),
		Experience: c.experience.Items(),
	}
}

// LoadDraft replaces the whole draft, as when reading it from a file.
// It reports whether anything changed.
func (c *Controller) LoadDraft(record types.ResumeRecord) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loadLocked(record)
}

// loadLocked must be called with c.mu held
func (c *Controller) loadLocked(record types.ResumeRecord) bool {
	if c.draftLocked().Equal(record.Normalize()) {
		return false
	}
	c.name = record.Name
	c.jobTitle = record.JobTitle
	c.summary = record.Summary
	c.skills.Replace(record.Skills)
	c.experience.Replace(record.Experience)
	return true
}

// Submitting reports whether a submission is in flight
func (c *Controller) Submitting() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inFlight
}

// Submit sends the current draft for enhancement.
// On success the result is handed to the ingestor; on failure nothing changes.
// A call made while another is in flight fails with SUBMIT_IN_FLIGHT.
func (c *Controller) Submit(ctx context.Context) (types.EnhancementResult, error) {
	draft, err := c.claim(ctx, nil)
	if err != nil {
		return types.EnhancementResult{}, err
	}
	defer c.release()
	return c.send(ctx, draft)
}

// SubmitDraft replaces the draft with record and submits it. The replacement
// happens only once the submission slot is held, so a rejected call leaves the
// draft of the running submission untouched.
func (c *Controller) SubmitDraft(ctx context.Context, record types.ResumeRecord) (types.EnhancementResult, error) {
	draft, err := c.claim(ctx, &record)
	if err != nil {
		return types.EnhancementResult{}, err
	}
	defer c.release()
	return c.send(ctx, draft)
}

// claim takes the in-flight slot, optionally replaces the draft, and returns the
// draft to send, all under one lock
func (c *Controller) claim(ctx context.Context, record *types.ResumeRecord) (types.ResumeRecord, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.inFlight {
		c.metrics.RecordRejection(ctx, errors.ErrCodeSubmitInFlight)
		return types.ResumeRecord{}, errors.NewValidationError(errors.ErrCodeSubmitInFlight,
			"A manual submission is already in progress", nil)
	}
	c.inFlight = true
	if record != nil {
		c.loadLocked(*record)
	}
	return c.draftLocked(), nil
}

func (c *Controller) release() {
	c.mu.Lock()
	c.inFlight = false
	c.mu.Unlock()
}

func (c *Controller) send(ctx context.Context, draft types.ResumeRecord) (types.EnhancementResult, error) {
	c.logger.Debug("Submitting manual draft", "name", draft.Name, "skills", len(draft.Skills), "experience", len(draft.Experience))

	result, err := c.submitter.ManualEntry(ctx, draft)
	if err != nil {
		c.metrics.RecordEnhancement(ctx, "manual", false)
		c.logger.LogError(err, "Manual submission failed")
		return types.EnhancementResult{}, err
	}

	c.ingestor.Ingest(result)
	c.metrics.RecordEnhancement(ctx, "manual", true)
	c.logger.Info("Manual submission ingested", "has_structured", result.Structured != nil, "has_ats", result.ATS != nil)
	return result, nil
}
