package view

import (
	"testing"
	"time"

	"github.com/GoCourseNav/GoCourseNav/internal/course"
	"github.com/GoCourseNav/GoCourseNav/internal/i18n"
)

func TestSelectedSection(t *testing.T) {
	tests := []struct {
		name        string
		raw         string
		numSections int
		want        *int
	}{
		{
			name:        "absent parameter",
			raw:         "",
			numSections: 5,
			want:        nil,
		},
		{
			name:        "general section",
			raw:         "0",
			numSections: 5,
			want:        intPtr(0),
		},
		{
			name:        "last section",
			raw:         "5",
			numSections: 5,
			want:        intPtr(5),
		},
		{
			name:        "beyond the advertised count",
			raw:         "6",
			numSections: 5,
			want:        nil,
		},
		{
			name:        "negative",
			raw:         "-1",
			numSections: 5,
			want:        nil,
		},
		{
			name:        "not a number",
			raw:         "abc",
			numSections: 5,
			want:        nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := selectedSection(tt.raw, tt.numSections)

			switch {
			case tt.want == nil && got != nil:
				t.Errorf("selectedSection(%q, %d) = %d, want nil", tt.raw, tt.numSections, *got)
			case tt.want != nil && got == nil:
				t.Errorf("selectedSection(%q, %d) = nil, want %d", tt.raw, tt.numSections, *tt.want)
			case tt.want != nil && got != nil && *got != *tt.want:
				t.Errorf("selectedSection(%q, %d) = %d, want %d", tt.raw, tt.numSections, *got, *tt.want)
			}
		})
	}
}

func testStructure() *course.Structure {
	return &course.Structure{
		CourseID:     7,
		Shortname:    "BIO101",
		Fullname:     "Introduction to Biology",
		Visible:      true,
		Format:       "topics",
		FormatName:   "Topics",
		UsesSections: true,
		SectionNoun:  "topic",
		NumSections:  3,
		Sections: []course.SectionInfo{
			{Index: 0, Name: "", Summary: "<p>Welcome to the course</p>", SummaryFormat: "html", Visible: true},
			{Index: 1, Name: "Cells", Summary: "All about cells", SummaryFormat: "plain", Visible: true},
			{Index: 2, Name: "", Visible: false},
			{Index: 3, Name: "Genetics", Visible: true},
			{Index: 4, Name: "Leftover", Visible: true},
		},
	}
}

func TestMainColumnAllSections(t *testing.T) {
	printer := i18n.NewPrinter("en")

	views := mainColumn(testStructure(), nil, false, printer, time.Now())

	// section 2 is hidden, section 4 is beyond the advertised count
	if len(views) != 3 {
		t.Fatalf("mainColumn() returned %d sections, want 3", len(views))
	}

	if views[0].Index != 0 || views[1].Index != 1 || views[2].Index != 3 {
		t.Errorf("mainColumn() indexes = %d, %d, %d, want 0, 1, 3", views[0].Index, views[1].Index, views[2].Index)
	}

	if views[0].Title != "Topic 0" {
		t.Errorf("mainColumn() section 0 title = %q, want %q", views[0].Title, "Topic 0")
	}

	if views[1].Title != "Cells" {
		t.Errorf("mainColumn() section 1 title = %q, want %q", views[1].Title, "Cells")
	}

	if views[1].BodyHTML != "All about cells" {
		t.Errorf("mainColumn() section 1 body = %q, want %q", views[1].BodyHTML, "All about cells")
	}

	if views[0].URL == "" || views[1].URL == "" {
		t.Error("mainColumn() expected section URLs in the overview")
	}
}

func TestMainColumnViewHidden(t *testing.T) {
	printer := i18n.NewPrinter("en")

	views := mainColumn(testStructure(), nil, true, printer, time.Now())

	if len(views) != 4 {
		t.Fatalf("mainColumn() returned %d sections, want 4", len(views))
	}

	if !views[2].Hidden {
		t.Error("mainColumn() section 2 should be flagged hidden")
	}
}

func TestMainColumnSelected(t *testing.T) {
	printer := i18n.NewPrinter("en")

	views := mainColumn(testStructure(), intPtr(1), false, printer, time.Now())

	if len(views) != 1 {
		t.Fatalf("mainColumn() returned %d sections, want 1", len(views))
	}

	if views[0].Index != 1 || views[0].Title != "Cells" {
		t.Errorf("mainColumn() = index %d title %q, want index 1 title %q", views[0].Index, views[0].Title, "Cells")
	}

	if views[0].URL != "" {
		t.Errorf("mainColumn() selected section URL = %q, want empty", views[0].URL)
	}
}

func TestMainColumnSelectedHiddenSection(t *testing.T) {
	printer := i18n.NewPrinter("en")

	views := mainColumn(testStructure(), intPtr(2), false, printer, time.Now())

	if len(views) != 1 {
		t.Fatalf("mainColumn() returned %d sections, want 1", len(views))
	}

	if !views[0].Hidden {
		t.Error("mainColumn() hidden section should be flagged hidden")
	}

	if views[0].BodyHTML != "" {
		t.Errorf("mainColumn() hidden section body = %q, want empty", views[0].BodyHTML)
	}
}

func TestMainColumnSinglePageFormat(t *testing.T) {
	structure := testStructure()
	structure.UsesSections = false

	views := mainColumn(structure, nil, false, i18n.NewPrinter("en"), time.Now())

	if len(views) != 0 {
		t.Errorf("mainColumn() returned %d sections for a single page format, want 0", len(views))
	}
}

func TestMainColumnCurrentSection(t *testing.T) {
	structure := testStructure()
	structure.Marked = 3

	views := mainColumn(structure, nil, false, i18n.NewPrinter("en"), time.Now())

	for _, view := range views {
		if view.Index == 3 && !view.Current {
			t.Error("mainColumn() marked section should be flagged current")
		}

		if view.Index != 3 && view.Current {
			t.Errorf("mainColumn() section %d should not be flagged current", view.Index)
		}
	}
}

func TestSectionHeadingLocalized(t *testing.T) {
	structure := testStructure()
	section := &structure.Sections[0]

	got := sectionHeading(section, structure, i18n.NewPrinter("de"))

	if got != "Thema 0" {
		t.Errorf("sectionHeading() = %q, want %q", got, "Thema 0")
	}
}

func intPtr(v int) *int {
	return &v
}
