package models

import "time"

// CourseRole represents the role a user holds inside one course.
type CourseRole string

const (
	// CourseRoleStudent grants viewing of the course and its visible sections.
	CourseRoleStudent CourseRole = "student"
	// CourseRoleTeacher additionally grants viewing hidden sections and
	// configuring the course's blocks.
	CourseRoleTeacher CourseRole = "teacher"
)

// Enrolment represents the membership of a user in a course.
// It is the junction between users and courses and carries the course role.
// All course-scoped capabilities derive from these rows; site admins are the
// only users with access beyond their enrolments.
type Enrolment struct {
	// UserID is the ID of the enrolled user.
	UserID uint64 `gorm:"primaryKey;column:user_id"`
	// CourseID is the ID of the course the user is enrolled in.
	CourseID uint64 `gorm:"primaryKey;column:course_id"`
	// User is the enrolled user (loaded via foreign key).
	// Deleting a user removes their enrolments (CASCADE).
	User User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	// Course is the course enrolled in (loaded via foreign key).
	// Deleting a course removes its enrolments (CASCADE).
	Course Course `gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE"`
	// Role is the role the user holds in this course.
	Role CourseRole `gorm:"type:varchar(20);not null;default:'student'"`
	// CreatedAt is the timestamp when the user was enrolled (managed by GORM).
	CreatedAt time.Time
}

// TableName specifies the database table name for the Enrolment model.
func (Enrolment) TableName() string {
	return "enrolments"
}
