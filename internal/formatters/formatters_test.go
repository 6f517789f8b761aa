package formatters

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resumebuilder/internal/export"
	"resumebuilder/internal/templates"
	"resumebuilder/internal/types"
)

func samplePreview() Preview {
	record := types.ResumeRecord{
		Name:       "Jane",
		JobTitle:   "Eng",
		Summary:    "Ships <things>",
		Skills:     []string{"Go", "SQL"},
		Experience: []types.ExperienceEntry{},
	}
	return Preview{
		View: types.SessionView{
			Mode:         "upload",
			TemplateID:   1,
			TemplateName: "Modern Minimal",
			Panes:        []types.TextPane{{Title: "Enhanced Text", Text: "B"}},
			ATSLabel:     "80% overall",
			ATS:          &types.ATSScore{OverallScore: 80, KeywordScore: 70, SkillMatchScore: 90, Recommendations: []string{"Quantify impact"}},
			Record:       record,
			History:      []types.ScoreHistoryEntry{{Date: "2026-03-14", Score: 80}},
		},
		Tree: templates.Render(1, record),
	}
}

func TestSupportedFormats(t *testing.T) {
	assert.Equal(t, []string{"html", "json", "markdown", "text"}, NewFormatterRegistry().GetSupportedFormats())
}

func TestPreviewText(t *testing.T) {
	out, err := GlobalRegistry.Format(samplePreview(), "text")
	require.NoError(t, err)

	assert.Contains(t, out, "=== ENHANCED TEXT ===\nB\n")
	assert.Contains(t, out, "80% overall")
	assert.Contains(t, out, "Keywords: 70%  Skill match: 90%")
	assert.Contains(t, out, "- Quantify impact")
	assert.Contains(t, out, "2026-03-14  80%")
	assert.Contains(t, out, "=== PREVIEW: MODERN MINIMAL ===\nJane\nEng\n")
}

func TestPreviewHTMLEscapesContent(t *testing.T) {
	out, err := GlobalRegistry.Format(samplePreview(), "html")
	require.NoError(t, err)

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(out))
	require.NoError(t, err)

	assert.Equal(t, "Modern Minimal", doc.Find("title").Text())
	assert.Equal(t, "Enhanced Text", doc.Find(".pane h2").Text())
	assert.Equal(t, "80% overall", doc.Find(".ats-label").Text())
	assert.Equal(t, "Jane", doc.Find(".template .name").Text())
	assert.Equal(t, "Ships <things>", doc.Find(".summary-text").Text())
	assert.Equal(t, 2, doc.Find(".skill-badge").Length())
	assert.NotContains(t, out, "<things>")
}

func TestPreviewMarkdown(t *testing.T) {
	out, err := GlobalRegistry.Format(samplePreview(), "markdown")
	require.NoError(t, err)

	assert.Contains(t, out, "# Jane")
	assert.Contains(t, out, "### Summary")
	assert.Contains(t, out, "## Enhanced Text")
	assert.NotContains(t, out, "<div")
}

func TestNodeFormats(t *testing.T) {
	tree := samplePreview().Tree

	text, err := GlobalRegistry.Format(tree, "text")
	require.NoError(t, err)
	assert.Equal(t, tree.PlainText()+"\n", text)

	fragment, err := GlobalRegistry.Format(tree, "html")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(fragment, `<div class="template modern-minimal">`))
}

func TestJSONFallsBackForAnyType(t *testing.T) {
	out, err := GlobalRegistry.Format(samplePreview(), "json")
	require.NoError(t, err)

	var decoded map[string]json.RawMessage
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Contains(t, decoded, "session")
	assert.Contains(t, decoded, "preview")

	out, err = GlobalRegistry.Format(templates.All(), "json")
	require.NoError(t, err)
	assert.Contains(t, out, `"name": "Professional Blue"`)
	assert.NotContains(t, out, "Render")
}

func TestTemplatesList(t *testing.T) {
	out, err := GlobalRegistry.Format(templates.All(), "text")
	require.NoError(t, err)
	assert.Equal(t, "1. Modern Minimal\n2. Professional Blue\n3. Elegant Two-Column\n", out)

	out, err = GlobalRegistry.Format(templates.All(), "markdown")
	require.NoError(t, err)
	assert.Contains(t, out, "| 2 | Professional Blue |")
}

func TestResults(t *testing.T) {
	results := []export.Result{
		{Format: export.FormatPDF, Error: "Failed to export PDF. Check backend."},
		{Format: export.FormatDocx, Artifact: &types.Artifact{Name: "resume.docx", Size: 12, Location: "out/resume.docx"}},
	}

	out, err := GlobalRegistry.Format(results, "text")
	require.NoError(t, err)
	assert.Equal(t, "PDF: Failed to export PDF. Check backend.\nDOCX: saved out/resume.docx (12 bytes)\n", out)

	out, err = GlobalRegistry.Format(results, "markdown")
	require.NoError(t, err)
	assert.Contains(t, out, "- DOCX: saved out/resume.docx (12 bytes)")
}

func TestUnknownCombination(t *testing.T) {
	_, err := GlobalRegistry.Format(types.SessionView{}, "html")
	assert.EqualError(t, err, "no formatter found for format 'html' and type 'SessionView'")

	_, err = GlobalRegistry.Format(samplePreview(), "yaml")
	assert.Error(t, err)
}
