package courses

import (
	"testing"

	"github.com/GoCourseNav/GoCourseNav/internal/db/models"
)

func TestFilterCourses(t *testing.T) {
	entries := []Entry{
		{Shortname: "BIO101", Fullname: "Introduction to Biology"},
		{Shortname: "CHEM201", Fullname: "Organic Chemistry"},
		{Shortname: "MATH101", Fullname: "Calculus I"},
	}

	tests := []struct {
		name   string
		search string
		want   []string
	}{
		{
			name:   "empty search keeps everything",
			search: "",
			want:   []string{"BIO101", "CHEM201", "MATH101"},
		},
		{
			name:   "matches shortname case insensitively",
			search: "bio",
			want:   []string{"BIO101"},
		},
		{
			name:   "matches fullname",
			search: "chemistry",
			want:   []string{"CHEM201"},
		},
		{
			name:   "matches both name fields",
			search: "101",
			want:   []string{"BIO101", "MATH101"},
		},
		{
			name:   "no match",
			search: "physics",
			want:   []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := filterCourses(entries, tt.search)

			if len(got) != len(tt.want) {
				t.Fatalf("filterCourses() returned %d entries, want %d", len(got), len(tt.want))
			}

			for i, entry := range got {
				if entry.Shortname != tt.want[i] {
					t.Errorf("filterCourses()[%d] = %q, want %q", i, entry.Shortname, tt.want[i])
				}
			}
		})
	}
}

func TestSortCourses(t *testing.T) {
	tests := []struct {
		name      string
		sortField string
		sortOrder string
		want      []string
	}{
		{
			name:      "shortname ascending",
			sortField: "shortname",
			sortOrder: "asc",
			want:      []string{"BIO101", "CHEM201", "MATH101"},
		},
		{
			name:      "shortname descending",
			sortField: "shortname",
			sortOrder: "desc",
			want:      []string{"MATH101", "CHEM201", "BIO101"},
		},
		{
			name:      "fullname ascending",
			sortField: "fullname",
			sortOrder: "asc",
			want:      []string{"MATH101", "BIO101", "CHEM201"},
		},
		{
			name:      "unknown field keeps order",
			sortField: "serial",
			sortOrder: "asc",
			want:      []string{"CHEM201", "BIO101", "MATH101"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entries := []Entry{
				{Shortname: "CHEM201", Fullname: "Organic Chemistry"},
				{Shortname: "BIO101", Fullname: "Introduction to Biology"},
				{Shortname: "MATH101", Fullname: "Calculus I"},
			}

			sortCourses(entries, tt.sortField, tt.sortOrder)

			for i, entry := range entries {
				if entry.Shortname != tt.want[i] {
					t.Errorf("sortCourses()[%d] = %q, want %q", i, entry.Shortname, tt.want[i])
				}
			}
		})
	}
}

func TestPaginateCourses(t *testing.T) {
	entries := make([]Entry, 0, 7)
	for _, shortname := range []string{"A", "B", "C", "D", "E", "F", "G"} {
		entries = append(entries, Entry{Shortname: shortname})
	}

	tests := []struct {
		name           string
		page           int
		pageSize       int
		wantShortnames []string
		wantTotalPages int
		wantActualPage int
	}{
		{
			name:           "first page",
			page:           1,
			pageSize:       3,
			wantShortnames: []string{"A", "B", "C"},
			wantTotalPages: 3,
			wantActualPage: 1,
		},
		{
			name:           "last partial page",
			page:           3,
			pageSize:       3,
			wantShortnames: []string{"G"},
			wantTotalPages: 3,
			wantActualPage: 3,
		},
		{
			name:           "page beyond end clamps to last",
			page:           9,
			pageSize:       3,
			wantShortnames: []string{"G"},
			wantTotalPages: 3,
			wantActualPage: 3,
		},
		{
			name:           "single page fits all",
			page:           1,
			pageSize:       25,
			wantShortnames: []string{"A", "B", "C", "D", "E", "F", "G"},
			wantTotalPages: 1,
			wantActualPage: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, totalPages, actualPage := paginateCourses(entries, tt.page, tt.pageSize)

			if totalPages != tt.wantTotalPages {
				t.Errorf("paginateCourses() totalPages = %d, want %d", totalPages, tt.wantTotalPages)
			}

			if actualPage != tt.wantActualPage {
				t.Errorf("paginateCourses() actualPage = %d, want %d", actualPage, tt.wantActualPage)
			}

			if len(got) != len(tt.wantShortnames) {
				t.Fatalf("paginateCourses() returned %d entries, want %d", len(got), len(tt.wantShortnames))
			}

			for i, entry := range got {
				if entry.Shortname != tt.wantShortnames[i] {
					t.Errorf("paginateCourses()[%d] = %q, want %q", i, entry.Shortname, tt.wantShortnames[i])
				}
			}
		})
	}
}

func TestPaginateCoursesEmpty(t *testing.T) {
	got, totalPages, actualPage := paginateCourses([]Entry{}, 1, 25)

	if len(got) != 0 {
		t.Errorf("paginateCourses() returned %d entries, want 0", len(got))
	}

	if totalPages != 1 {
		t.Errorf("paginateCourses() totalPages = %d, want 1", totalPages)
	}

	if actualPage != 1 {
		t.Errorf("paginateCourses() actualPage = %d, want 1", actualPage)
	}
}

func TestJoinable(t *testing.T) {
	tests := []struct {
		name   string
		course models.Course
		key    string
		want   bool
	}{
		{
			name:   "matching key on open visible course",
			course: models.Course{Visible: true, EnrolmentKey: "opensesame"},
			key:    "opensesame",
			want:   true,
		},
		{
			name:   "wrong key",
			course: models.Course{Visible: true, EnrolmentKey: "opensesame"},
			key:    "letmein",
			want:   false,
		},
		{
			name:   "key comparison is case sensitive",
			course: models.Course{Visible: true, EnrolmentKey: "OpenSesame"},
			key:    "opensesame",
			want:   false,
		},
		{
			name:   "no key means self enrolment closed",
			course: models.Course{Visible: true, EnrolmentKey: ""},
			key:    "",
			want:   false,
		},
		{
			name:   "hidden course never joinable",
			course: models.Course{Visible: false, EnrolmentKey: "opensesame"},
			key:    "opensesame",
			want:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := joinable(&tt.course, tt.key); got != tt.want {
				t.Errorf("joinable() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBuildTabData(t *testing.T) {
	params := QueryParams{
		Page:        2,
		PageSize:    10,
		SearchQuery: "bio",
		SortField:   "shortname",
		SortOrder:   "asc",
	}

	entries := []Entry{{Shortname: "BIO101"}}

	got := buildTabData(entries, 3, &params)

	if got.CurrentPage != 2 {
		t.Errorf("buildTabData() CurrentPage = %d, want 2", got.CurrentPage)
	}

	if !got.HasPrevPage || !got.HasNextPage {
		t.Errorf("buildTabData() HasPrevPage = %v, HasNextPage = %v, want both true", got.HasPrevPage, got.HasNextPage)
	}

	if got.PrevPage != 1 || got.NextPage != 3 {
		t.Errorf("buildTabData() PrevPage = %d, NextPage = %d, want 1 and 3", got.PrevPage, got.NextPage)
	}

	if got.SearchQuery != "bio" {
		t.Errorf("buildTabData() SearchQuery = %q, want %q", got.SearchQuery, "bio")
	}
}
