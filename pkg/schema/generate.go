package schema

import (
	"strconv"
	"strings"
)

///////////////////////////////////////////////////////////////////////////////
// GENERATION ENDPOINTS

const (
	EndpointOutline    = "outline"
	EndpointLesson     = "lesson"
	EndpointSlides     = "slides"
	EndpointAssessment = "assessment"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

// GenerateRequest is the common multipart form payload sent to every
// generation endpoint. Fields carries the endpoint-specific form values
// (subject, grade level, duration, and so on). ThreadID continues an
// established conversation; when empty the server starts a new thread.
type GenerateRequest struct {
	Message  string            `json:"message" yaml:"message"`
	ThreadID string            `json:"thread_id,omitempty" yaml:"thread_id,omitempty"`
	Fields   map[string]string `json:"fields,omitempty" yaml:"fields,omitempty"`
}

// CourseOutline is the result of the outline endpoint.
type CourseOutline struct {
	Title    string           `json:"title"`
	Audience string           `json:"audience,omitempty"`
	Sections []OutlineSection `json:"sections"`
}

type OutlineSection struct {
	Title      string   `json:"title"`
	Objectives []string `json:"objectives,omitempty"`
	Lessons    []string `json:"lessons,omitempty"`
}

// LessonPlan is the result of the lesson endpoint.
type LessonPlan struct {
	Title      string     `json:"title"`
	Subject    string     `json:"subject,omitempty"`
	GradeLevel string     `json:"grade_level,omitempty"`
	Duration   string     `json:"duration,omitempty"`
	Objectives []string   `json:"objectives,omitempty"`
	Activities []Activity `json:"activities"`
	Materials  []string   `json:"materials,omitempty"`
	Homework   string     `json:"homework,omitempty"`
}

type Activity struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Duration    string `json:"duration,omitempty"`
}

// SlideDeck is the result of the slides endpoint.
type SlideDeck struct {
	Title  string  `json:"title"`
	Slides []Slide `json:"slides"`
}

type Slide struct {
	Title   string   `json:"title"`
	Bullets []string `json:"bullets,omitempty"`
	Notes   string   `json:"notes,omitempty"`
}

// Assessment is the result of the assessment endpoint.
type Assessment struct {
	Title     string     `json:"title"`
	Questions []Question `json:"questions"`
}

type Question struct {
	Prompt      string   `json:"prompt"`
	Options     []string `json:"options,omitempty"`
	Answer      string   `json:"answer,omitempty"`
	Explanation string   `json:"explanation,omitempty"`
}

///////////////////////////////////////////////////////////////////////////////
// MARKDOWN

// Markdown renders the outline as a markdown document.
func (o CourseOutline) Markdown() string {
	var b strings.Builder
	heading(&b, 1, o.Title)
	if o.Audience != "" {
		b.WriteString("_" + o.Audience + "_\n\n")
	}
	for _, section := range o.Sections {
		heading(&b, 2, section.Title)
		bullets(&b, "Objectives", section.Objectives)
		bullets(&b, "Lessons", section.Lessons)
	}
	return b.String()
}

// Markdown renders the lesson plan as a markdown document.
func (l LessonPlan) Markdown() string {
	var b strings.Builder
	heading(&b, 1, l.Title)
	for _, line := range []struct{ label, value string }{
		{"Subject", l.Subject},
		{"Grade level", l.GradeLevel},
		{"Duration", l.Duration},
	} {
		if line.value != "" {
			b.WriteString("**" + line.label + ":** " + line.value + "  \n")
		}
	}
	b.WriteString("\n")
	bullets(&b, "Objectives", l.Objectives)
	if len(l.Activities) > 0 {
		heading(&b, 2, "Activities")
		for _, a := range l.Activities {
			b.WriteString("- **" + a.Name + "**")
			if a.Duration != "" {
				b.WriteString(" (" + a.Duration + ")")
			}
			if a.Description != "" {
				b.WriteString(": " + a.Description)
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}
	bullets(&b, "Materials", l.Materials)
	if l.Homework != "" {
		heading(&b, 2, "Homework")
		b.WriteString(l.Homework + "\n")
	}
	return b.String()
}

// Markdown renders the slide deck as a markdown document.
func (s SlideDeck) Markdown() string {
	var b strings.Builder
	heading(&b, 1, s.Title)
	for i, slide := range s.Slides {
		if i > 0 {
			b.WriteString("---\n\n")
		}
		heading(&b, 2, slide.Title)
		bullets(&b, "", slide.Bullets)
		if slide.Notes != "" {
			b.WriteString("> " + slide.Notes + "\n\n")
		}
	}
	return b.String()
}

// Markdown renders the assessment as a markdown document.
func (a Assessment) Markdown() string {
	var b strings.Builder
	heading(&b, 1, a.Title)
	for i, q := range a.Questions {
		heading(&b, 2, "Question "+strconv.Itoa(i+1))
		b.WriteString(q.Prompt + "\n\n")
		for j, option := range q.Options {
			b.WriteString("- " + string(rune('A'+j)) + ". " + option + "\n")
		}
		if len(q.Options) > 0 {
			b.WriteString("\n")
		}
		if q.Answer != "" {
			b.WriteString("**Answer:** " + q.Answer + "\n\n")
		}
		if q.Explanation != "" {
			b.WriteString("_" + q.Explanation + "_\n\n")
		}
	}
	return b.String()
}

///////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

func heading(b *strings.Builder, level int, title string) {
	if title == "" {
		return
	}
	b.WriteString(strings.Repeat("#", level) + " " + title + "\n\n")
}

func bullets(b *strings.Builder, label string, items []string) {
	if len(items) == 0 {
		return
	}
	if label != "" {
		b.WriteString("**" + label + "**\n\n")
	}
	for _, item := range items {
		b.WriteString("- " + item + "\n")
	}
	b.WriteString("\n")
}
