package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime"
	"mime/multipart"
	"net/http"
	"net/url"
	"path"

	"resumebuilder/internal/config"
	"resumebuilder/internal/errors"
	"resumebuilder/internal/schemas"
	"resumebuilder/internal/types"
)

// UploadField is the multipart field the enhancement service reads the document from
const UploadField = "resume_file"

// Download is a binary artifact fetched from the service
type Download struct {
	Name        string
	ContentType string
	Body        []byte
}

// Enhance uploads a raw document to POST /enhance
func (c *Client) Enhance(ctx context.Context, fileName string, content []byte) (types.EnhancementResult, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile(UploadField, fileName)
	if err != nil {
		return types.EnhancementResult{}, errors.NewInternalError(errors.ErrCodeInvalidRequest, "failed to build upload", err)
	}
	if _, err := part.Write(content); err != nil {
		return types.EnhancementResult{}, errors.NewInternalError(errors.ErrCodeInvalidRequest, "failed to build upload", err)
	}
	if err := mw.Close(); err != nil {
		return types.EnhancementResult{}, errors.NewInternalError(errors.ErrCodeInvalidRequest, "failed to build upload", err)
	}
	payload := buf.Bytes()
	contentType := mw.FormDataContentType()

	resp, err := c.do(ctx, config.EndpointEnhance, "enhance", func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url("/enhance"), bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", contentType)
		return req, nil
	})
	if err != nil {
		return types.EnhancementResult{}, err
	}

	return decodeEnhancement("enhance", resp)
}

// ManualEntry submits a form draft to POST /manual-entry
func (c *Client) ManualEntry(ctx context.Context, record types.ResumeRecord) (types.EnhancementResult, error) {
	resp, err := c.postJSON(ctx, config.EndpointManualEntry, "manual-entry", "/manual-entry", record.Normalize())
	if err != nil {
		return types.EnhancementResult{}, err
	}
	return decodeEnhancement("manual-entry", resp)
}

// FeedbackChat relays one message to POST /feedback-chat
func (c *Client) FeedbackChat(ctx context.Context, message string) (string, error) {
	resp, err := c.postJSON(ctx, config.EndpointChat, "feedback-chat", "/feedback-chat", types.ChatRequest{Message: message})
	if err != nil {
		return "", err
	}

	var body struct {
		Response *string `json:"response"`
	}
	if err := decodeJSON("feedback-chat", resp, &body); err != nil {
		return "", err
	}
	if body.Response == nil {
		return "", malformed("feedback-chat", fmt.Errorf("missing response field"))
	}
	return *body.Response, nil
}

// ExportPDF asks POST /export/pdf to generate a document and returns the file identifier
func (c *Client) ExportPDF(ctx context.Context, record types.ResumeRecord) (string, error) {
	resp, err := c.postJSON(ctx, config.EndpointExport, "export-pdf", "/export/pdf", record.Normalize())
	if err != nil {
		return "", err
	}

	var body types.ExportPDFResponse
	if err := decodeJSON("export-pdf", resp, &body); err != nil {
		return "", err
	}
	if body.File == "" {
		return "", malformed("export-pdf", fmt.Errorf("missing file field"))
	}
	return body.File, nil
}

// Download fetches GET /download/{file}
func (c *Client) Download(ctx context.Context, file string) (*Download, error) {
	resp, err := c.do(ctx, config.EndpointExport, "download", func(ctx context.Context) (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, c.url("/download/"+url.PathEscape(file)), nil)
	})
	if err != nil {
		return nil, err
	}
	return toDownload(resp, path.Base(file)), nil
}

// ExportDocx posts the record to POST /export/docx and returns the generated document
func (c *Client) ExportDocx(ctx context.Context, record types.ResumeRecord) (*Download, error) {
	resp, err := c.postJSON(ctx, config.EndpointExport, "export-docx", "/export/docx", record.Normalize())
	if err != nil {
		return nil, err
	}
	return toDownload(resp, ""), nil
}

func (c *Client) postJSON(ctx context.Context, ep config.Endpoint, name, route string, body any) (*Response, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, errors.NewInternalError(errors.ErrCodeInvalidRequest, "failed to encode request", err)
	}

	return c.do(ctx, ep, name, func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url(route), bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		return req, nil
	})
}

// decodeEnhancement validates and decodes an enhancement payload.
// A body that is not JSON or lacks enhanced_text is malformed.
func decodeEnhancement(name string, resp *Response) (types.EnhancementResult, error) {
	var raw json.RawMessage
	if err := decodeJSON(name, resp, &raw); err != nil {
		return types.EnhancementResult{}, err
	}
	if err := schemas.ValidateEnhancement(raw); err != nil {
		return types.EnhancementResult{}, malformed(name, err)
	}

	var result types.EnhancementResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return types.EnhancementResult{}, malformed(name, err)
	}
	if result.Structured != nil {
		normalized := result.Structured.Normalize()
		result.Structured = &normalized
	}
	return result, nil
}

func toDownload(resp *Response, fallbackName string) *Download {
	d := &Download{
		Name:        fallbackName,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        resp.Body,
	}
	if cd := resp.Header.Get("Content-Disposition"); cd != "" {
		if _, params, err := mime.ParseMediaType(cd); err == nil && params["filename"] != "" {
			d.Name = path.Base(params["filename"])
		}
	}
	return d
}
