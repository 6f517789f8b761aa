package types

import "slices"

// Mode selects which controller owns the live record
type Mode string

const (
	ModeUpload Mode = "upload"
	ModeManual Mode = "manual"
)

// ParseMode maps user input onto a Mode
func ParseMode(s string) (Mode, bool) {
	switch Mode(s) {
	case ModeUpload, ModeManual:
		return Mode(s), true
	}
	return "", false
}

// PlaceholderSummary is shown until the service returns enhanced text
const PlaceholderSummary = "Enhanced summary will appear here"

// Normalize returns a copy of r whose sequences are never nil
func (r ResumeRecord) Normalize() ResumeRecord {
	out := r
	if r.Skills == nil {
		out.Skills = []string{}
	} else {
		out.Skills = slices.Clone(r.Skills)
	}
	if r.Experience == nil {
		out.Experience = []ExperienceEntry{}
	} else {
		out.Experience = slices.Clone(r.Experience)
	}
	return out
}

// Equal reports whether two records hold the same values
func (r ResumeRecord) Equal(other ResumeRecord) bool {
	return r.Name == other.Name &&
		r.JobTitle == other.JobTitle &&
		r.Summary == other.Summary &&
		slices.Equal(r.Skills, other.Skills) &&
		slices.Equal(r.Experience, other.Experience)
}

// PlaceholderRecord is substituted when nothing has been enhanced yet.
// The summary falls back to the raw enhanced text when there is any.
func PlaceholderRecord(enhancedText string) ResumeRecord {
	summary := enhancedText
	if summary == "" {
		summary = PlaceholderSummary
	}
	return ResumeRecord{
		Name:     "Your Name",
		JobTitle: "Job Title",
		Summary:  summary,
		Skills:   []string{"Skill A", "Skill B"},
		Experience: []ExperienceEntry{
			{Position: "Role", Company: "Company", Years: "2021-2024", Description: "Description"},
		},
	}
}

// EffectiveRecord selects the record handed to the template renderer
func EffectiveRecord(mode Mode, draft ResumeRecord, ingested *ResumeRecord, enhancedText string) ResumeRecord {
	if mode == ModeManual {
		return draft.Normalize()
	}
	if ingested != nil {
		return ingested.Normalize()
	}
	return PlaceholderRecord(enhancedText)
}
