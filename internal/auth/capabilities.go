package auth

import "github.com/GoCourseNav/GoCourseNav/internal/db/models"

// Capability constants define the access rights checked around the portal.
// Capabilities are course-scoped: what a user may do inside a course follows
// from their enrolment role there. Site admins hold every capability on
// every course.
const (
	// CapCourseView allows viewing a course and its visible sections.
	CapCourseView = "course.view"

	// CapCourseViewHidden allows seeing sections the teacher has hidden.
	// Hidden sections are rendered dimmed for holders of this capability.
	CapCourseViewHidden = "course.viewhidden"

	// CapBlockConfigure allows editing the block settings of a course.
	CapBlockConfigure = "block.configure"

	// CapSiteConfig allows managing site-wide settings. Never granted
	// through an enrolment.
	CapSiteConfig = "site.config"
)

// roleCapabilities maps each course role to the capabilities it grants
// within the course.
var roleCapabilities = map[models.CourseRole][]string{
	models.CourseRoleStudent: {
		CapCourseView,
	},
	models.CourseRoleTeacher: {
		CapCourseView,
		CapCourseViewHidden,
		CapBlockConfigure,
	},
}

// roleGrants reports whether the course role carries the capability.
func roleGrants(role models.CourseRole, capability string) bool {
	for _, granted := range roleCapabilities[role] {
		if granted == capability {
			return true
		}
	}

	return false
}
