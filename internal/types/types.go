package types

// ExperienceEntry represents one position held
type ExperienceEntry struct {
	Position    string `json:"position" yaml:"position"`
	Company     string `json:"company" yaml:"company"`
	Years       string `json:"years" yaml:"years"`
	Description string `json:"description" yaml:"description"`
}

// ResumeRecord is the canonical structured resume consumed by every template
type ResumeRecord struct {
	Name       string            `json:"name" yaml:"name"`
	JobTitle   string            `json:"job_title" yaml:"job_title"`
	Summary    string            `json:"summary" yaml:"summary"`
	Skills     []string          `json:"skills" yaml:"skills"`
	Experience []ExperienceEntry `json:"experience" yaml:"experience"`
}

// ATSScore represents the applicant-tracking-system analysis returned by the enhancement service
type ATSScore struct {
	OverallScore    float64 `json:"overall_score"`
	KeywordScore    float64 `json:"keyword_score"`
	SkillMatchScore float64 `json:"skill_match_score"`

	FormattingIssues  []string `json:"formatting_issues,omitempty"`
	GrammarIssues     []string `json:"grammar_issues,omitempty"`
	MissingHardSkills []string `json:"missing_hard_skills,omitempty"`
	MissingSoftSkills []string `json:"missing_soft_skills,omitempty"`
	Recommendations   []string `json:"recommendations,omitempty"`
}

// ScoreHistoryEntry records one ATS score observed during the session
type ScoreHistoryEntry struct {
	Date  string  `json:"date"`
	Score float64 `json:"score"`
}

// EnhancementResult is what the enhancement service hands back for an upload or a manual entry
type EnhancementResult struct {
	OriginalText string        `json:"original_text,omitempty"`
	EnhancedText string        `json:"enhanced_text"`
	Structured   *ResumeRecord `json:"structured"`
	ATS          *ATSScore     `json:"ats"`
}

// ChatRequest is the body of a feedback chat message
type ChatRequest struct {
	Message string `json:"message"`
}

// ChatResponse is the feedback service reply
type ChatResponse struct {
	Response string `json:"response"`
}

// ExportPDFResponse names the artifact generated by the export service
type ExportPDFResponse struct {
	File string `json:"file"`
}

// ServiceErrorResponse is the JSON error body returned by the collaborator services
type ServiceErrorResponse struct {
	Error string `json:"error"`
}

// Artifact is a downloaded export
type Artifact struct {
	Name        string `json:"name"`
	ContentType string `json:"contentType,omitempty"`
	Size        int64  `json:"size"`
	Location    string `json:"location,omitempty"`
}

// TextPane is one of the text columns shown above the template preview
type TextPane struct {
	Title string `json:"title"`
	Text  string `json:"text"`
}

// SessionView is a read-only snapshot of the orchestrator state
type SessionView struct {
	SessionID    string              `json:"sessionId"`
	Mode         string              `json:"mode"`
	Comparison   bool                `json:"comparison"`
	TemplateID   int                 `json:"templateId"`
	TemplateName string              `json:"templateName"`
	UploadState  string              `json:"uploadState"`
	FileName     string              `json:"fileName,omitempty"`
	Panes        []TextPane          `json:"panes"`
	ATSLabel     string              `json:"atsLabel"`
	ATS          *ATSScore           `json:"ats,omitempty"`
	Record       ResumeRecord        `json:"record"`
	Placeholder  bool                `json:"placeholder"`
	History      []ScoreHistoryEntry `json:"history"`
}
