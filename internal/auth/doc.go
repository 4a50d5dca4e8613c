// Package auth provides authentication and authorization functionality for the portal.
//
// Authentication supports multiple sources:
//   - Local database authentication with Argon2id password hashing
//   - LDAP/Active Directory authentication
//   - OpenID Connect (OIDC) authentication with external identity providers
//
// External sign-ins (LDAP, OIDC) provision a portal user account on first
// login and refresh its profile fields afterwards. They never grant course
// access by themselves.
//
// # Authorization System
//
// Authorization is capability based and course scoped:
//   - An enrolment ties a user to a course with a role (student or teacher)
//   - Each role grants a fixed set of capabilities inside that course
//   - Students may view the course and its visible sections
//   - Teachers may additionally see hidden sections and configure blocks
//   - Site admins hold every capability everywhere, including site.config
//
// # Capability Checking
//
// The Service type provides methods for checking capabilities:
//   - HasCapability: check one capability inside one course
//   - HasSiteCapability: check a site-wide capability
//   - CourseCapabilities: retrieve all capabilities a user holds in a course
//   - CourseRole / EnrolledCourseIDs: raw enrolment lookups
//
// # Middleware
//
// Fiber middleware and helpers are provided for route protection:
//   - RequireSiteCapability: protect admin routes
//   - HasCapabilityInContext: course-scoped checks inside handlers
//   - UserIDFromContext: resolve the signed-in user
//
// Example usage:
//
//	// Initialize auth service
//	authService := auth.NewService(db)
//
//	// Check capability in a course handler
//	canConfigure, err := authService.HasCapability(userID, courseID, auth.CapBlockConfigure)
//
//	// Protect an admin route with middleware
//	app.Get("/admin/settings/sectionlinks",
//	    auth.RequireSiteCapability(authService, auth.CapSiteConfig),
//	    handler,
//	)
package auth
