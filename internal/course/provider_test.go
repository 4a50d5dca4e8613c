package course

import (
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/GoCourseNav/GoCourseNav/internal/db/models"
)

// setupTestDB creates an in-memory SQLite database for testing.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(&models.Course{}, &models.Section{})
	require.NoError(t, err)

	return db
}

func testFormats() Formats {
	return Formats{
		"topics": {Name: "Topics", UsesSections: true, SectionNoun: "topic"},
		"weeks":  {Name: "Weekly", UsesSections: true, SectionNoun: "week", Weekly: true},
		"social": {Name: "Social", UsesSections: false, SectionNoun: "topic"},
	}
}

func newTestProvider(t *testing.T, db *gorm.DB) *Provider {
	t.Helper()

	p, err := NewProvider(db, ProviderConfig{
		TTL:     time.Minute,
		Formats: testFormats(),
	})
	require.NoError(t, err)
	t.Cleanup(p.Close)

	return p
}

// seedCourse creates a topics course with section 0 and three content sections.
func seedCourse(t *testing.T, db *gorm.DB) models.Course {
	t.Helper()

	c := models.Course{
		Shortname:   "BIO101",
		Fullname:    "Introduction to Biology",
		Format:      "topics",
		NumSections: 3,
		Visible:     true,
	}
	require.NoError(t, db.Create(&c).Error)

	sections := []models.Section{
		{CourseID: c.ID, Position: 0, Summary: "<h3>Welcome</h3>", SummaryFormat: "html", Visible: true},
		{CourseID: c.ID, Position: 1, Name: "Cells", Visible: true},
		{CourseID: c.ID, Position: 2, Summary: "<p>Genetics</p>", SummaryFormat: "html", Visible: false},
		{CourseID: c.ID, Position: 3, Name: "Evolution", Visible: true},
	}
	for i := range sections {
		require.NoError(t, db.Create(&sections[i]).Error)
	}

	return c
}

func TestStructure(t *testing.T) {
	db := setupTestDB(t)
	c := seedCourse(t, db)
	p := newTestProvider(t, db)

	s, err := p.Structure(c.ID)
	require.NoError(t, err)

	assert.Equal(t, c.ID, s.CourseID)
	assert.Equal(t, "BIO101", s.Shortname)
	assert.Equal(t, "Introduction to Biology", s.Fullname)
	assert.Equal(t, "Topics", s.FormatName)
	assert.True(t, s.UsesSections)
	assert.Equal(t, "topic", s.SectionNoun)
	assert.False(t, s.Weekly)
	assert.Equal(t, 3, s.NumSections)

	require.Len(t, s.Sections, 4)

	for i, section := range s.Sections {
		assert.Equal(t, i, section.Index)
	}

	assert.True(t, s.Sections[1].Visible)
	assert.False(t, s.Sections[2].Visible)
	assert.Equal(t, "Cells", s.Sections[1].Name)
	assert.Equal(t, "<p>Genetics</p>", s.Sections[2].Summary)
}

func TestStructureSectionLookup(t *testing.T) {
	db := setupTestDB(t)
	c := seedCourse(t, db)
	p := newTestProvider(t, db)

	s, err := p.Structure(c.ID)
	require.NoError(t, err)

	section := s.Section(2)
	require.NotNil(t, section)
	assert.Equal(t, 2, section.Index)

	assert.Nil(t, s.Section(9))
}

func TestStructureCaching(t *testing.T) {
	db := setupTestDB(t)
	c := seedCourse(t, db)
	p := newTestProvider(t, db)

	s1, err := p.Structure(c.ID)
	require.NoError(t, err)

	// wait for the async admission so the next lookup hits the cache
	p.cache.Wait()

	err = db.Model(&models.Course{}).Where("id = ?", c.ID).Update("fullname", "Renamed Biology").Error
	require.NoError(t, err)

	s2, err := p.Structure(c.ID)
	require.NoError(t, err)
	assert.Equal(t, s1.Fullname, s2.Fullname, "edit should stay invisible until invalidation")

	p.Invalidate(c.ID)

	s3, err := p.Structure(c.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed Biology", s3.Fullname)
}

func TestStructureNotFound(t *testing.T) {
	db := setupTestDB(t)
	p := newTestProvider(t, db)

	_, err := p.Structure(9999)
	require.ErrorIs(t, err, ErrCourseNotFound)
}

func TestStructureUnknownFormat(t *testing.T) {
	db := setupTestDB(t)
	p := newTestProvider(t, db)

	c := models.Course{
		Shortname:   "EXP-1",
		Fullname:    "Experimental Course",
		Format:      "kanban",
		NumSections: 1,
		Visible:     true,
	}
	require.NoError(t, db.Create(&c).Error)

	s, err := p.Structure(c.ID)
	require.NoError(t, err)

	// unknown formats keep their section list with the generic noun
	assert.Equal(t, "kanban", s.FormatName)
	assert.True(t, s.UsesSections)
	assert.Equal(t, "section", s.SectionNoun)
}

func TestNewProviderNilDB(t *testing.T) {
	_, err := NewProvider(nil, ProviderConfig{})
	require.ErrorIs(t, err, ErrDBNil)
}

func TestCurrentSection(t *testing.T) {
	start := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		structure Structure
		now       time.Time
		want      int
	}{
		{
			name:      "topics format returns marked section",
			structure: Structure{Marked: 2, NumSections: 3},
			now:       start,
			want:      2,
		},
		{
			name:      "topics format without mark",
			structure: Structure{NumSections: 3},
			now:       start,
			want:      0,
		},
		{
			name:      "weekly before course start",
			structure: Structure{Weekly: true, NumSections: 3, StartDate: start},
			now:       start.Add(-24 * time.Hour),
			want:      0,
		},
		{
			name:      "weekly inside first week",
			structure: Structure{Weekly: true, NumSections: 3, StartDate: start},
			now:       start.Add(3 * 24 * time.Hour),
			want:      1,
		},
		{
			name:      "weekly inside second week",
			structure: Structure{Weekly: true, NumSections: 3, StartDate: start},
			now:       start.Add(10 * 24 * time.Hour),
			want:      2,
		},
		{
			name:      "weekly after the last week",
			structure: Structure{Weekly: true, NumSections: 3, StartDate: start},
			now:       start.Add(50 * 24 * time.Hour),
			want:      0,
		},
		{
			name:      "weekly without start date",
			structure: Structure{Weekly: true, NumSections: 3},
			now:       start,
			want:      0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.structure.CurrentSection(tt.now))
		})
	}
}
