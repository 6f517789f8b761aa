// Package export turns the current record into downloadable documents through the
// remote document-generation service, and relays feedback chat messages.
package export

import (
	"context"
	"strings"

	"resumebuilder/internal/client"
	"resumebuilder/internal/errors"
	"resumebuilder/internal/observability"
	"resumebuilder/internal/types"

	"golang.org/x/sync/errgroup"
)

// Format names an export target
type Format string

const (
	FormatPDF  Format = "pdf"
	FormatDocx Format = "docx"
)

// ParseFormats expands a --format value: pdf, docx, or all
func ParseFormats(s string) ([]Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pdf":
		return []Format{FormatPDF}, nil
	case "docx":
		return []Format{FormatDocx}, nil
	case "all", "":
		return []Format{FormatPDF, FormatDocx}, nil
	default:
		return nil, errors.NewValidationError(errors.ErrCodeInvalidFormat,
			"Unsupported export format: "+s+" (use pdf, docx or all)", nil)
	}
}

// Service is the part of the remote service used for exports and chat
type Service interface {
	ExportPDF(ctx context.Context, record types.ResumeRecord) (string, error)
	Download(ctx context.Context, file string) (*client.Download, error)
	ExportDocx(ctx context.Context, record types.ResumeRecord) (*client.Download, error)
	FeedbackChat(ctx context.Context, message string) (string, error)
}

// Controller runs exports. It holds no per-export state, so exports never block each other.
type Controller struct {
	svc      Service
	sink     Sink
	docxName string
	metrics  *observability.Metrics
	logger   *errors.Logger
}

// NewController creates an export controller saving artifacts to sink
func NewController(svc Service, sink Sink, docxName string, metrics *observability.Metrics, logger *errors.Logger) *Controller {
	if metrics == nil {
		metrics = observability.NopMetrics()
	}
	if docxName == "" {
		docxName = "resume.docx"
	}
	return &Controller{svc: svc, sink: sink, docxName: docxName, metrics: metrics, logger: logger}
}

func nothingToExport() error {
	return errors.NewValidationError(errors.ErrCodeNothingToExport, "No structured data to export", nil)
}

// ExportPDF generates a PDF for record and downloads the artifact the service names.
// A nil record fails with NOTHING_TO_EXPORT without any request.
func (c *Controller) ExportPDF(ctx context.Context, record *types.ResumeRecord) (types.Artifact, error) {
	if record == nil {
		c.metrics.RecordRejection(ctx, errors.ErrCodeNothingToExport)
		return types.Artifact{}, nothingToExport()
	}

	artifact, err := c.exportPDF(ctx, *record)
	c.metrics.RecordExport(ctx, string(FormatPDF), err == nil)
	if err != nil {
		c.logger.LogError(err, "PDF export failed")
		return types.Artifact{}, err
	}
	c.logger.Info("PDF exported", "artifact", artifact.Name, "size", artifact.Size)
	return artifact, nil
}

func (c *Controller) exportPDF(ctx context.Context, record types.ResumeRecord) (types.Artifact, error) {
	file, err := c.svc.ExportPDF(ctx, record)
	if err != nil {
		return types.Artifact{}, pdfFailed(err)
	}

	download, err := c.svc.Download(ctx, file)
	if err != nil {
		return types.Artifact{}, pdfFailed(err)
	}

	name := download.Name
	if name == "" {
		name = file
	}
	return c.sink.Save(ctx, name, download.ContentType, download.Body)
}

func pdfFailed(err error) error {
	appErr, ok := errors.AsAppError(err)
	if ok && appErr.Type == errors.ErrorTypeNetwork {
		return err
	}
	code := errors.ErrCodeServiceError
	if ok {
		code = appErr.Code
	}
	return errors.NewServiceError(code, "Failed to export PDF. Check backend.", err)
}

// ExportDocx generates a DOCX for record and saves it under the configured name.
// A failure carries the service's error text, or "unknown".
func (c *Controller) ExportDocx(ctx context.Context, record *types.ResumeRecord) (types.Artifact, error) {
	if record == nil {
		c.metrics.RecordRejection(ctx, errors.ErrCodeNothingToExport)
		return types.Artifact{}, nothingToExport()
	}

	artifact, err := c.exportDocx(ctx, *record)
	c.metrics.RecordExport(ctx, string(FormatDocx), err == nil)
	if err != nil {
		c.logger.LogError(err, "DOCX export failed")
		return types.Artifact{}, err
	}
	c.logger.Info("DOCX exported", "artifact", artifact.Name, "size", artifact.Size)
	return artifact, nil
}

func (c *Controller) exportDocx(ctx context.Context, record types.ResumeRecord) (types.Artifact, error) {
	download, err := c.svc.ExportDocx(ctx, record)
	if err != nil {
		return types.Artifact{}, docxFailed(err)
	}
	return c.sink.Save(ctx, c.docxName, download.ContentType, download.Body)
}

func docxFailed(err error) error {
	appErr, ok := errors.AsAppError(err)
	switch {
	case ok && appErr.Type == errors.ErrorTypeNetwork:
		return err
	case ok && appErr.Code == errors.ErrCodeServiceError:
		return errors.NewServiceError(appErr.Code, "Export failed: "+appErr.Message, err)
	case ok:
		return errors.NewServiceError(appErr.Code, "Export failed: unknown", err)
	default:
		return errors.NewServiceError(errors.ErrCodeServiceError, "Export failed: unknown", err)
	}
}

// Result is the outcome of one format in Export
type Result struct {
	Format   Format          `json:"format"`
	Artifact *types.Artifact `json:"artifact,omitempty"`
	Error    string          `json:"error,omitempty"`
	Err      error           `json:"-"`
}

// Export runs the requested formats concurrently. One failing format never cancels another.
func (c *Controller) Export(ctx context.Context, record *types.ResumeRecord, formats []Format) []Result {
	results := make([]Result, len(formats))

	var g errgroup.Group
	for i, format := range formats {
		g.Go(func() error {
			var artifact types.Artifact
			var err error
			switch format {
			case FormatPDF:
				artifact, err = c.ExportPDF(ctx, record)
			case FormatDocx:
				artifact, err = c.ExportDocx(ctx, record)
			}

			results[i] = Result{Format: format, Err: err}
			if err != nil {
				results[i].Error = errors.UserMessage(err)
			} else {
				results[i].Artifact = &artifact
			}
			return nil
		})
	}
	_ = g.Wait()

	return results
}

// Chat relays one message to the feedback service
func (c *Controller) Chat(ctx context.Context, message string) (string, error) {
	if strings.TrimSpace(message) == "" {
		return "", errors.NewValidationError(errors.ErrCodeInvalidRequest, "Message cannot be empty", nil)
	}
	reply, err := c.svc.FeedbackChat(ctx, message)
	if err != nil {
		c.logger.LogError(err, "Feedback chat failed")
		return "", err
	}
	return reply, nil
}
