package models

import "time"

// BlockInstance represents one block placed on a course page.
// The per-course configuration of the block lives in the Config blob; only
// options the site administrator left optional take effect from it.
type BlockInstance struct {
	// ID is the unique identifier for the block instance.
	ID uint64 `gorm:"primaryKey"`
	// PublicID is the stable UUID used in settings URLs, so instance IDs
	// are never guessable from sequence.
	PublicID string `gorm:"type:varchar(36);uniqueIndex;not null"`
	// CourseID is the ID of the course page carrying the block.
	CourseID uint64 `gorm:"not null;uniqueIndex:idx_course_block"`
	// Course is the owning course (loaded via foreign key).
	// Deleting a course removes its block instances (CASCADE).
	Course Course `gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE"`
	// BlockType identifies the block implementation (for example sectionlinks).
	// One instance of each type per course.
	BlockType string `gorm:"size:50;not null;uniqueIndex:idx_course_block"`
	// Region is the page region the block renders in.
	Region string `gorm:"size:20;not null;default:'side'"`
	// Weight orders blocks within a region, lowest first.
	Weight int `gorm:"default:0"`
	// Visible indicates whether the block is shown on the course page.
	Visible bool `gorm:"default:true"`
	// Config is the JSON-encoded per-course override blob, nil when the
	// course never configured the block.
	Config []byte `gorm:"type:blob"`
	// CreatedAt is the timestamp when the block was added (managed by GORM).
	CreatedAt time.Time
	// UpdatedAt is the timestamp when the block was last updated (managed by GORM).
	UpdatedAt time.Time
}

// TableName specifies the database table name for the BlockInstance model.
func (BlockInstance) TableName() string {
	return "block_instances"
}
