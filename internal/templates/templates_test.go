package templates

import (
	"reflect"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resumebuilder/internal/types"
)

func sampleRecord() types.ResumeRecord {
	return types.ResumeRecord{
		Name:     "Jane Doe",
		JobTitle: "Staff Engineer",
		Summary:  "Builds <reliable> systems & teams",
		Skills:   []string{"Go", "Kubernetes", "SQL"},
		Experience: []types.ExperienceEntry{
			{Position: "Engineer", Company: "Acme", Years: "2019-2023", Description: "Owned billing"},
			{Position: "Intern", Company: "Initech", Years: "2018", Description: "TPS reports"},
		},
	}
}

func parse(t *testing.T, n Node) *goquery.Document {
	t.Helper()
	out, err := n.HTML()
	require.NoError(t, err)
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(out))
	require.NoError(t, err)
	return doc
}

func TestEveryVariantIncludesNameAndTitle(t *testing.T) {
	records := []types.ResumeRecord{
		sampleRecord(),
		{Name: "Solo", JobTitle: "Nothing Else"},
		types.PlaceholderRecord(""),
	}

	for _, v := range All() {
		for _, record := range records {
			t.Run(v.Name+"/"+record.Name, func(t *testing.T) {
				view := Render(v.ID, record)
				doc := parse(t, view)

				assert.Equal(t, record.Name, doc.Find(".name").Text())
				assert.Equal(t, record.JobTitle, doc.Find(".job-title").Text())
				assert.Contains(t, view.PlainText(), record.Name)
				assert.Contains(t, view.PlainText(), record.JobTitle)
			})
		}
	}
}

func TestModernMinimalLayout(t *testing.T) {
	doc := parse(t, Render(1, sampleRecord()))

	assert.Equal(t, 2, doc.Find(".experience-item").Length())
	assert.Equal(t, "Acme — 2019-2023", doc.Find(".experience-item .company-years").First().Text())
	assert.Equal(t, 3, doc.Find(".skill-badge").Length())

	sections := doc.Find("section").Map(func(_ int, s *goquery.Selection) string {
		return s.AttrOr("class", "")
	})
	assert.Equal(t, []string{"summary", "experience", "skills"}, sections)
}

func TestProfessionalBlueHasNoExperience(t *testing.T) {
	doc := parse(t, Render(2, sampleRecord()))

	assert.Equal(t, 1, doc.Find("header.bordered-header").Length())
	assert.Equal(t, 0, doc.Find(".experience-item").Length())
	assert.Equal(t, "Go, Kubernetes, SQL", doc.Find(".skill-line").Text())
}

func TestElegantTwoColumnLayout(t *testing.T) {
	doc := parse(t, Render(3, sampleRecord()))

	sidebar := doc.Find("aside.sidebar")
	assert.Equal(t, "Jane Doe", sidebar.Find(".name").Text())
	assert.Equal(t, 3, sidebar.Find("li.skill-item").Length())

	mainCol := doc.Find("main.main-column")
	assert.Equal(t, 2, mainCol.Find(".experience-item").Length())
	assert.Equal(t, "Builds <reliable> systems & teams", mainCol.Find(".summary-text").Text())
}

func TestEmptySequencesRenderNothingExtra(t *testing.T) {
	empty := types.ResumeRecord{Name: "N", JobTitle: "T"}

	for _, v := range All() {
		t.Run(v.Name, func(t *testing.T) {
			doc := parse(t, Render(v.ID, empty))
			assert.Equal(t, 0, doc.Find(".experience-item").Length())
			assert.Equal(t, 0, doc.Find(".skill-badge, .skill-item").Length())
			assert.Equal(t, "", doc.Find(".skill-line").Text())
		})
	}
}

func TestRenderIsIdempotentAndDoesNotMutate(t *testing.T) {
	record := sampleRecord()
	before := sampleRecord()

	for _, v := range All() {
		first := Render(v.ID, record)
		second := Render(v.ID, record)
		assert.True(t, reflect.DeepEqual(first, second), "variant %d not idempotent", v.ID)
	}
	assert.Equal(t, before, record)
}

func TestHTMLEscapesText(t *testing.T) {
	out, err := Render(1, sampleRecord()).HTML()
	require.NoError(t, err)
	assert.Contains(t, out, "Builds &lt;reliable&gt; systems &amp; teams")
}

func TestLookup(t *testing.T) {
	assert.Equal(t, 3, Count())
	assert.Equal(t, "Professional Blue", Lookup(2).Name)
	assert.True(t, Valid(DefaultID))
	assert.False(t, Valid(0))
	assert.False(t, Valid(4))

	assert.Panics(t, func() { Lookup(0) })
	assert.Panics(t, func() { Lookup(4) })
}
