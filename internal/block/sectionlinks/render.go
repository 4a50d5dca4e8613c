package sectionlinks

import (
	"fmt"
	"time"

	"github.com/GoCourseNav/GoCourseNav/internal/course"
	"github.com/GoCourseNav/GoCourseNav/internal/i18n"
	"github.com/GoCourseNav/GoCourseNav/internal/richtext"
)

// Entry is one rendered item of the section list.
type Entry struct {
	// Index is the section position, -1 for the course link entry.
	Index int
	// Number is the enumeration number, meaningful when Numbered is true.
	Number int
	// Numbered is true when the number badge precedes the title.
	Numbered bool
	// Title is the resolved plain text title.
	Title string
	// URL is the link target, empty when the entry is not linked.
	URL string
	// Linked is false for the selected section, it reads as plain text.
	Linked bool
	// Selected marks the entry matching the request's section.
	Selected bool
	// Current marks the section the course presents as current.
	Current bool
	// Dimmed marks sections hidden from students but viewable by this user.
	Dimmed bool
	// IsCourseLink is true for the leading link to the course itself.
	IsCourseLink bool
}

// List is one rendered section links widget.
type List struct {
	// Title is the localized widget heading.
	Title string
	// Placeholder is the diagnostic note shown when the course format has
	// no sections, empty outside debug mode.
	Placeholder string
	// Entries are the rendered items in display order.
	Entries []Entry
}

// RenderContext carries the request scoped inputs of one render call.
type RenderContext struct {
	// Selected is the section index from the request, nil when none.
	Selected *int
	// ViewHidden is true when the user may see hidden sections.
	ViewHidden bool
	// Debug enables the placeholder for formats without sections.
	Debug bool
	// Now is the render time used to decide the current section.
	// The zero value means time.Now().
	Now time.Time
	// Printer localizes titles and placeholders, nil uses the default language.
	Printer *i18n.Printer
	// CourseURL overrides the default course view URL builder.
	CourseURL func(courseID uint64) string
	// SectionURL overrides the default section view URL builder.
	SectionURL func(courseID uint64, section int) string
}

// Build renders the section list of a course into an ordered entry list.
// Sections the user can not see are left out entirely; sections hidden from
// students but viewable by this user are kept and flagged Dimmed. A course
// without sections yields an empty list, never an error.
func Build(structure *course.Structure, eff Effective, ctx RenderContext) List {
	printer := ctx.Printer
	if printer == nil {
		printer = i18n.NewPrinter("")
	}

	list := List{Title: printer.T("sectionlinks.title")}

	// single page formats have nothing to list
	if !structure.UsesSections {
		if ctx.Debug {
			list.Placeholder = printer.T("sectionlinks.placeholder")
		}

		return list
	}

	now := ctx.Now
	if now.IsZero() {
		now = time.Now()
	}

	current := structure.CurrentSection(now)

	for i := range structure.Sections {
		section := &structure.Sections[i]

		// legacy courses can keep section rows beyond the advertised count,
		// everything from the first overflowing row on stays out of the list
		if section.Index > structure.NumSections {
			break
		}

		if !section.Visible && !ctx.ViewHidden {
			continue
		}

		if section.Index == 0 {
			if eff.DisplayCourseLink {
				list.Entries = append(list.Entries, courseLinkEntry(structure, eff, ctx))
			}

			if eff.HideSection0 {
				continue
			}
		}

		list.Entries = append(list.Entries, sectionEntry(section, structure, eff, ctx, printer, current))
	}

	return list
}

// courseLinkEntry builds the leading entry linking to the course itself.
// It reads as selected while no section is selected.
func courseLinkEntry(structure *course.Structure, eff Effective, ctx RenderContext) Entry {
	label := eff.CourseLinkText
	if label == "" {
		label = structure.Shortname
	}

	return Entry{
		Index:        -1,
		Title:        label,
		URL:          ctx.courseURL(structure.CourseID),
		Linked:       true,
		Selected:     ctx.Selected == nil,
		IsCourseLink: true,
	}
}

func sectionEntry(section *course.SectionInfo, structure *course.Structure, eff Effective, ctx RenderContext, printer *i18n.Printer, current int) Entry {
	selected := ctx.Selected != nil && *ctx.Selected == section.Index

	numbered := eff.Enumerate
	if section.Index == 0 && !eff.EnumerateSection0 {
		// the general section only gets a number when asked for
		numbered = false
	}

	number := section.Index
	if eff.Enumerate && eff.EnumerateSection0 {
		// section zero consumes the first slot, every number shifts by one
		number = section.Index + 1
	}

	entry := Entry{
		Index:    section.Index,
		Number:   number,
		Numbered: numbered,
		Title:    sectionTitle(section, structure, eff, printer),
		Selected: selected,
		Current:  current != 0 && section.Index == current,
		Dimmed:   !section.Visible,
	}

	// the selected section reads as plain text, everything else links out
	if !selected {
		entry.Linked = true
		entry.URL = ctx.sectionURL(structure.CourseID, section.Index)
	}

	return entry
}

// sectionTitle resolves the display title. The explicit name wins, then a
// title extracted from the summary when autotitle is on, then the format
// default name for the position.
func sectionTitle(section *course.SectionInfo, structure *course.Structure, eff Effective, printer *i18n.Printer) string {
	if section.Name != "" {
		return section.Name
	}

	if eff.Autotitle && section.Summary != "" {
		if title := richtext.TitleFor(section.Summary, richtext.Format(section.SummaryFormat)); title != "" {
			return title
		}
	}

	return printer.SectionName(structure.SectionNoun, section.Index)
}

func (ctx RenderContext) courseURL(courseID uint64) string {
	if ctx.CourseURL != nil {
		return ctx.CourseURL(courseID)
	}

	return fmt.Sprintf("/course/view?id=%d", courseID)
}

func (ctx RenderContext) sectionURL(courseID uint64, section int) string {
	if ctx.SectionURL != nil {
		return ctx.SectionURL(courseID, section)
	}

	return fmt.Sprintf("/course/view?id=%d&section=%d", courseID, section)
}
