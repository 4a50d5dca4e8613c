package course

import (
	"time"
)

// SectionInfo describes one section of a loaded course structure.
type SectionInfo struct {
	// Index is the position of the section within the course, section zero first.
	Index int
	// Name is the explicit section name, empty when the format default applies.
	Name string
	// Summary is the section description in the format given by SummaryFormat.
	Summary string
	// SummaryFormat is one of html, markdown or plain.
	SummaryFormat string
	// Visible is false for sections hidden by the course editor.
	Visible bool
}

// Structure is the cached view of a course a page needs to render navigation.
type Structure struct {
	CourseID  uint64
	Shortname string
	Fullname  string
	Visible   bool

	// Format fields resolved against the configured format table.
	Format       string
	FormatName   string
	UsesSections bool
	SectionNoun  string
	Weekly       bool

	// NumSections is the advertised section count. Section rows beyond it can
	// exist after a course was shrunk, they are kept in Sections but stay
	// outside the advertised range.
	NumSections int

	// Marked is the section the editor highlighted, 0 for none.
	Marked int

	StartDate time.Time

	// Sections holds all section rows ordered by position.
	Sections []SectionInfo
}

// Section returns the section row at the given position or nil.
func (s *Structure) Section(index int) *SectionInfo {
	for i := range s.Sections {
		if s.Sections[i].Index == index {
			return &s.Sections[i]
		}
	}

	return nil
}

// CurrentSection returns the position of the section the course presents as
// current. For weekly formats that is the section whose week contains now,
// for every other format the marked section. 0 means no section is current.
func (s *Structure) CurrentSection(now time.Time) int {
	if !s.Weekly {
		return s.Marked
	}

	if s.StartDate.IsZero() || now.Before(s.StartDate) {
		return 0
	}

	// week windows are seven days wide, the first week is section one
	week := int(now.Sub(s.StartDate)/(7*24*time.Hour)) + 1
	if week > s.NumSections {
		return 0
	}

	return week
}
