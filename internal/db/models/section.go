package models

import "time"

// Section represents one content section of a course.
// Position 0 is the general section above the numbered ones.
type Section struct {
	// ID is the unique identifier for the section.
	ID uint64 `gorm:"primaryKey"`
	// CourseID is the ID of the owning course.
	CourseID uint64 `gorm:"not null;uniqueIndex:idx_course_position"`
	// Course is the owning course (loaded via foreign key).
	// Deleting a course removes its sections (CASCADE).
	Course Course `gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE"`
	// Position is the zero-based index of the section within the course.
	// Unique per course.
	Position int `gorm:"not null;uniqueIndex:idx_course_position"`
	// Name is the explicit section title. Empty means the title is derived
	// from the summary or the format's default name at display time.
	Name string `gorm:"size:255"`
	// Summary is the section description in the markup language of SummaryFormat.
	Summary string `gorm:"type:text"`
	// SummaryFormat is the markup language of Summary (html, markdown, or plain).
	SummaryFormat string `gorm:"type:varchar(20);not null;default:'html'"`
	// Visible indicates whether students can see the section. Hidden
	// sections stay visible to users holding the view hidden capability.
	Visible bool `gorm:"default:true"`
	// CreatedAt is the timestamp when the section was created (managed by GORM).
	CreatedAt time.Time
	// UpdatedAt is the timestamp when the section was last updated (managed by GORM).
	UpdatedAt time.Time
}

// TableName specifies the database table name for the Section model.
func (Section) TableName() string {
	return "sections"
}
