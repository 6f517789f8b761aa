package templates

import (
	"strings"

	"resumebuilder/internal/types"
)

// renderModernMinimal is the single-column layout: header, summary, experience, skill badges.
func renderModernMinimal(r types.ResumeRecord) Node {
	experience := make([]Node, 0, len(r.Experience))
	for _, exp := range r.Experience {
		experience = append(experience, experienceItem(exp))
	}

	badges := make([]Node, 0, len(r.Skills))
	for _, s := range r.Skills {
		badges = append(badges, text("span", "skill-badge", s))
	}

	return el("div", "template modern-minimal",
		text("h1", "name", r.Name),
		text("p", "job-title", r.JobTitle),
		el("section", "summary",
			text("h3", "heading", "Summary"),
			text("p", "summary-text", r.Summary),
		),
		el("section", "experience",
			append([]Node{text("h3", "heading", "Experience")}, experience...)...,
		),
		el("section", "skills",
			text("h3", "heading", "Skills"),
			el("div", "skill-badges", badges...),
		),
	)
}

// renderProfessionalBlue has a bordered header and a comma-joined skills line.
// It deliberately renders no experience section.
func renderProfessionalBlue(r types.ResumeRecord) Node {
	return el("div", "template professional-blue",
		el("header", "bordered-header",
			text("h1", "name", r.Name),
			text("div", "job-title", r.JobTitle),
		),
		el("section", "summary",
			text("h3", "heading", "Summary"),
			text("p", "summary-text", r.Summary),
		),
		el("section", "skills",
			text("h3", "heading", "Skills"),
			text("p", "skill-line", strings.Join(r.Skills, ", ")),
		),
	)
}

// renderElegantTwoColumn puts name, title and a bulleted skill list in a sidebar
// and summary plus experience in the main column.
func renderElegantTwoColumn(r types.ResumeRecord) Node {
	skills := make([]Node, 0, len(r.Skills))
	for _, s := range r.Skills {
		skills = append(skills, text("li", "skill-item", s))
	}

	main := []Node{
		text("h3", "heading", "Summary"),
		text("p", "summary-text", r.Summary),
		text("h3", "heading", "Experience"),
	}
	for _, exp := range r.Experience {
		main = append(main, experienceItem(exp))
	}

	return el("div", "template elegant-two-column",
		el("aside", "sidebar",
			text("h2", "name", r.Name),
			text("div", "job-title", r.JobTitle),
			el("div", "skills",
				text("h4", "heading", "Skills"),
				el("ul", "skill-list", skills...),
			),
		),
		el("main", "main-column", main...),
	)
}

func experienceItem(exp types.ExperienceEntry) Node {
	return el("div", "experience-item",
		text("div", "position", exp.Position),
		text("div", "company-years", exp.Company+" — "+exp.Years),
		text("div", "description", exp.Description),
	)
}
