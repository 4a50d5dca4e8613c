package models

import "time"

// Course represents a single course on the portal.
// A course is divided into ordered sections; how those sections behave is
// governed by the course format (see config.Format).
type Course struct {
	// ID is the unique identifier for the course.
	ID uint64 `gorm:"primaryKey"`
	// Shortname is the unique short identifier shown in navigation.
	Shortname string `gorm:"unique;size:100;not null"`
	// Fullname is the complete course title.
	Fullname string `gorm:"size:255;not null"`
	// Summary is the course description in the markup language of SummaryFormat.
	Summary string `gorm:"type:text"`
	// SummaryFormat is the markup language of Summary (html, markdown, or plain).
	SummaryFormat string `gorm:"type:varchar(20);not null;default:'html'"`
	// Format is the course format key (for example topics or weeks).
	Format string `gorm:"type:varchar(32);not null;default:'topics'"`
	// NumSections is the declared number of content sections, not counting
	// section 0. Section rows beyond this count may remain in the database
	// after a course is shrunk; they are kept but not shown.
	NumSections int `gorm:"not null;default:0"`
	// MarkedSection is the section currently highlighted by the teacher.
	// Used by topic style formats to decide the current section; 0 means none.
	MarkedSection int `gorm:"default:0"`
	// StartDate is when the course begins. Weekly formats derive each
	// section's week window from it.
	StartDate time.Time
	// Visible indicates whether the course is visible to enrolled students.
	Visible bool `gorm:"default:true"`
	// EnrolmentKey is the self-enrolment passphrase, empty when self
	// enrolment is closed.
	EnrolmentKey string `gorm:"size:50"`
	// CreatedAt is the timestamp when the course was created (managed by GORM).
	CreatedAt time.Time
	// UpdatedAt is the timestamp when the course was last updated (managed by GORM).
	UpdatedAt time.Time
}
