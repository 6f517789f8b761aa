package formatters

import (
	"encoding/json"
	"fmt"
	"html"
	"slices"
	"strings"

	"resumebuilder/internal/export"
	"resumebuilder/internal/templates"
	"resumebuilder/internal/types"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
)

// Preview is the session state together with its rendered template
type Preview struct {
	View types.SessionView `json:"session"`
	Tree templates.Node    `json:"preview"`
}

// Formatter interface for different output formats
type Formatter interface {
	Format(data any) (string, error)
	SupportedType() string
}

// FormatterRegistry manages all available formatters
type FormatterRegistry struct {
	formatters map[string]map[string]Formatter // format -> type -> formatter
}

// NewFormatterRegistry creates a new formatter registry with default formatters
func NewFormatterRegistry() *FormatterRegistry {
	registry := &FormatterRegistry{
		formatters: make(map[string]map[string]Formatter),
	}

	md := newMarkdownConverter()

	registry.RegisterFormatter("json", "any", &JSONFormatter{})
	registry.RegisterFormatter("text", "Preview", &PreviewTextFormatter{})
	registry.RegisterFormatter("html", "Preview", &PreviewHTMLFormatter{})
	registry.RegisterFormatter("markdown", "Preview", &MarkdownFormatter{html: &PreviewHTMLFormatter{}, conv: md, dataType: "Preview"})
	registry.RegisterFormatter("text", "Node", &NodeTextFormatter{})
	registry.RegisterFormatter("html", "Node", &NodeHTMLFormatter{})
	registry.RegisterFormatter("markdown", "Node", &MarkdownFormatter{html: &NodeHTMLFormatter{}, conv: md, dataType: "Node"})
	registry.RegisterFormatter("text", "SessionView", &SessionTextFormatter{})
	registry.RegisterFormatter("text", "Templates", &TemplatesTextFormatter{})
	registry.RegisterFormatter("markdown", "Templates", &TemplatesMarkdownFormatter{})
	registry.RegisterFormatter("text", "Results", &ResultsTextFormatter{})
	registry.RegisterFormatter("markdown", "Results", &ResultsMarkdownFormatter{})

	return registry
}

// RegisterFormatter registers a new formatter for a specific format and data type
func (fr *FormatterRegistry) RegisterFormatter(format, dataType string, formatter Formatter) {
	if fr.formatters[format] == nil {
		fr.formatters[format] = make(map[string]Formatter)
	}
	fr.formatters[format][dataType] = formatter
}

// Format formats data using the appropriate formatter
func (fr *FormatterRegistry) Format(data any, format string) (string, error) {
	dataType := getDataType(data)

	// Try specific formatter first
	if formatters, exists := fr.formatters[format]; exists {
		if formatter, exists := formatters[dataType]; exists {
			return formatter.Format(data)
		}
		// Fall back to generic formatter
		if formatter, exists := formatters["any"]; exists {
			return formatter.Format(data)
		}
	}

	return "", fmt.Errorf("no formatter found for format '%s' and type '%s'", format, dataType)
}

// GetSupportedFormats returns all supported formats, sorted
func (fr *FormatterRegistry) GetSupportedFormats() []string {
	formats := make([]string, 0, len(fr.formatters))
	for format := range fr.formatters {
		formats = append(formats, format)
	}
	slices.Sort(formats)
	return formats
}

func getDataType(data any) string {
	switch data.(type) {
	case Preview:
		return "Preview"
	case templates.Node:
		return "Node"
	case types.SessionView:
		return "SessionView"
	case []templates.Variant:
		return "Templates"
	case []export.Result:
		return "Results"
	default:
		return "any"
	}
}

// JSONFormatter handles JSON formatting for any data type
type JSONFormatter struct{}

func (jf *JSONFormatter) Format(data any) (string, error) {
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", err
	}
	return string(jsonData) + "\n", nil
}

func (jf *JSONFormatter) SupportedType() string {
	return "any"
}

// PreviewTextFormatter prints the text panes, the score and the flattened template
type PreviewTextFormatter struct{}

func (ptf *PreviewTextFormatter) Format(data any) (string, error) {
	p, ok := data.(Preview)
	if !ok {
		return "", fmt.Errorf("expected Preview, got %T", data)
	}

	var output strings.Builder
	writeSessionText(&output, p.View)

	output.WriteString(fmt.Sprintf("=== PREVIEW: %s ===\n", strings.ToUpper(p.View.TemplateName)))
	output.WriteString(p.Tree.PlainText())
	output.WriteString("\n")

	return output.String(), nil
}

func (ptf *PreviewTextFormatter) SupportedType() string {
	return "Preview"
}

// SessionTextFormatter prints the session state without the template
type SessionTextFormatter struct{}

func (stf *SessionTextFormatter) Format(data any) (string, error) {
	view, ok := data.(types.SessionView)
	if !ok {
		return "", fmt.Errorf("expected SessionView, got %T", data)
	}
	var output strings.Builder
	writeSessionText(&output, view)
	return output.String(), nil
}

func (stf *SessionTextFormatter) SupportedType() string {
	return "SessionView"
}

func writeSessionText(output *strings.Builder, view types.SessionView) {
	for _, pane := range view.Panes {
		output.WriteString(fmt.Sprintf("=== %s ===\n", strings.ToUpper(pane.Title)))
		output.WriteString(pane.Text)
		output.WriteString("\n\n")
	}

	output.WriteString("=== ATS ANALYSIS ===\n")
	output.WriteString(view.ATSLabel)
	output.WriteString("\n")
	if view.ATS != nil {
		output.WriteString(fmt.Sprintf("Keywords: %g%%  Skill match: %g%%\n", view.ATS.KeywordScore, view.ATS.SkillMatchScore))
		writeList(output, "Missing hard skills", view.ATS.MissingHardSkills)
		writeList(output, "Missing soft skills", view.ATS.MissingSoftSkills)
		writeList(output, "Recommendations", view.ATS.Recommendations)
	}
	output.WriteString("\n")

	if len(view.History) > 0 {
		output.WriteString("=== SCORE HISTORY ===\n")
		for _, entry := range view.History {
			output.WriteString(fmt.Sprintf("%s  %g%%\n", entry.Date, entry.Score))
		}
		output.WriteString("\n")
	}
}

func writeList(output *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	output.WriteString(title + ":\n")
	for _, item := range items {
		output.WriteString(fmt.Sprintf("- %s\n", item))
	}
}

// NodeTextFormatter flattens a rendered template
type NodeTextFormatter struct{}

func (ntf *NodeTextFormatter) Format(data any) (string, error) {
	n, ok := data.(templates.Node)
	if !ok {
		return "", fmt.Errorf("expected Node, got %T", data)
	}
	return n.PlainText() + "\n", nil
}

func (ntf *NodeTextFormatter) SupportedType() string {
	return "Node"
}

// NodeHTMLFormatter serializes a rendered template as an HTML fragment
type NodeHTMLFormatter struct{}

func (nhf *NodeHTMLFormatter) Format(data any) (string, error) {
	n, ok := data.(templates.Node)
	if !ok {
		return "", fmt.Errorf("expected Node, got %T", data)
	}
	return n.HTML()
}

func (nhf *NodeHTMLFormatter) SupportedType() string {
	return "Node"
}

// PreviewHTMLFormatter produces a standalone HTML page with the panes above the template
type PreviewHTMLFormatter struct{}

func (phf *PreviewHTMLFormatter) Format(data any) (string, error) {
	p, ok := data.(Preview)
	if !ok {
		return "", fmt.Errorf("expected Preview, got %T", data)
	}

	body, err := p.Tree.HTML()
	if err != nil {
		return "", err
	}

	var output strings.Builder
	output.WriteString("<!DOCTYPE html>\n<html><head><meta charset=\"utf-8\">")
	output.WriteString("<title>" + html.EscapeString(p.View.TemplateName) + "</title></head><body>\n")

	output.WriteString(`<section class="text-panes">`)
	for _, pane := range p.View.Panes {
		output.WriteString(`<article class="pane"><h2>` + html.EscapeString(pane.Title) + `</h2><pre>` +
			html.EscapeString(pane.Text) + `</pre></article>`)
	}
	output.WriteString("</section>\n")

	output.WriteString(`<p class="ats-label">` + html.EscapeString(p.View.ATSLabel) + "</p>\n")
	output.WriteString(body)
	output.WriteString("\n</body></html>\n")

	return output.String(), nil
}

func (phf *PreviewHTMLFormatter) SupportedType() string {
	return "Preview"
}

func newMarkdownConverter() *converter.Converter {
	return converter.NewConverter(
		converter.WithPlugins(
			base.NewBasePlugin(),
			commonmark.NewCommonmarkPlugin(),
			table.NewTablePlugin(),
		),
	)
}

// MarkdownFormatter renders data to HTML with another formatter and converts the result
type MarkdownFormatter struct {
	html     Formatter
	conv     *converter.Converter
	dataType string
}

func (mf *MarkdownFormatter) Format(data any) (string, error) {
	doc, err := mf.html.Format(data)
	if err != nil {
		return "", err
	}
	md, err := mf.conv.ConvertString(doc)
	if err != nil {
		return "", fmt.Errorf("failed to convert %s to markdown: %w", mf.dataType, err)
	}
	return strings.TrimSpace(md) + "\n", nil
}

func (mf *MarkdownFormatter) SupportedType() string {
	return mf.dataType
}

// TemplatesTextFormatter lists the registered layouts
type TemplatesTextFormatter struct{}

func (ttf *TemplatesTextFormatter) Format(data any) (string, error) {
	variants, ok := data.([]templates.Variant)
	if !ok {
		return "", fmt.Errorf("expected []Variant, got %T", data)
	}
	var output strings.Builder
	for _, v := range variants {
		output.WriteString(fmt.Sprintf("%d. %s\n", v.ID, v.Name))
	}
	return output.String(), nil
}

func (ttf *TemplatesTextFormatter) SupportedType() string {
	return "Templates"
}

// TemplatesMarkdownFormatter lists the registered layouts as a markdown table
type TemplatesMarkdownFormatter struct{}

func (tmf *TemplatesMarkdownFormatter) Format(data any) (string, error) {
	variants, ok := data.([]templates.Variant)
	if !ok {
		return "", fmt.Errorf("expected []Variant, got %T", data)
	}
	var output strings.Builder
	output.WriteString("| ID | Template |\n|---|---|\n")
	for _, v := range variants {
		output.WriteString(fmt.Sprintf("| %d | %s |\n", v.ID, v.Name))
	}
	return output.String(), nil
}

func (tmf *TemplatesMarkdownFormatter) SupportedType() string {
	return "Templates"
}

// ResultsTextFormatter reports one line per export format
type ResultsTextFormatter struct{}

func (rtf *ResultsTextFormatter) Format(data any) (string, error) {
	results, ok := data.([]export.Result)
	if !ok {
		return "", fmt.Errorf("expected []Result, got %T", data)
	}
	var output strings.Builder
	for _, r := range results {
		output.WriteString(resultLine(r) + "\n")
	}
	return output.String(), nil
}

func (rtf *ResultsTextFormatter) SupportedType() string {
	return "Results"
}

// ResultsMarkdownFormatter reports export results as a markdown list
type ResultsMarkdownFormatter struct{}

func (rmf *ResultsMarkdownFormatter) Format(data any) (string, error) {
	results, ok := data.([]export.Result)
	if !ok {
		return "", fmt.Errorf("expected []Result, got %T", data)
	}
	var output strings.Builder
	output.WriteString("## Export results\n\n")
	for _, r := range results {
		output.WriteString("- " + resultLine(r) + "\n")
	}
	return output.String(), nil
}

func (rmf *ResultsMarkdownFormatter) SupportedType() string {
	return "Results"
}

func resultLine(r export.Result) string {
	format := strings.ToUpper(string(r.Format))
	if r.Artifact == nil {
		return fmt.Sprintf("%s: %s", format, r.Error)
	}
	location := r.Artifact.Location
	if location == "" {
		location = r.Artifact.Name
	}
	return fmt.Sprintf("%s: saved %s (%d bytes)", format, location, r.Artifact.Size)
}

// Global formatter registry
var GlobalRegistry = NewFormatterRegistry()
