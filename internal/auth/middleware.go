package auth

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/GoCourseNav/GoCourseNav/internal/web/session"
)

// RequireSiteCapability creates Fiber middleware that requires a site-wide
// capability, for example on the admin settings pages.
func RequireSiteCapability(authService *Service, capability string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sessionData, ok := sessionFromRequest(c)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).SendString("Unauthorized")
		}

		hasCapability, err := authService.HasSiteCapability(sessionData.User.ID, capability)
		if err != nil {
			log.Error().Err(err).Uint64("user_id", sessionData.User.ID).Str("capability", capability).
				Msg("Failed to check site capability")

			return c.Status(fiber.StatusInternalServerError).SendString("Internal Server Error")
		}

		if !hasCapability {
			log.Warn().Uint64("user_id", sessionData.User.ID).Str("capability", capability).
				Msg("User lacks required site capability")

			return c.Status(fiber.StatusForbidden).SendString("Forbidden: You don't have permission to access this resource")
		}

		return c.Next()
	}
}

// HasCapabilityInContext checks if the current user holds a capability inside
// one course. Course-scoped routes resolve the course from the request, so
// this is called from handlers rather than installed as route middleware.
func HasCapabilityInContext(c *fiber.Ctx, authService *Service, courseID uint64, capability string) bool {
	sessionData, ok := sessionFromRequest(c)
	if !ok {
		return false
	}

	hasCapability, err := authService.HasCapability(sessionData.User.ID, courseID, capability)
	if err != nil {
		log.Error().Err(err).Uint64("user_id", sessionData.User.ID).Str("capability", capability).
			Msg("Failed to check capability")

		return false
	}

	return hasCapability
}

// UserIDFromContext returns the ID of the signed-in user, or 0 when the
// request carries no valid session.
func UserIDFromContext(c *fiber.Ctx) uint64 {
	sessionData, ok := sessionFromRequest(c)
	if !ok {
		return 0
	}

	return sessionData.User.ID
}

// sessionFromRequest reads and validates the session cookie.
func sessionFromRequest(c *fiber.Ctx) (*session.Data, bool) {
	sessionID := c.Cookies("session")
	if sessionID == "" {
		return nil, false
	}

	sessionData := new(session.Data)
	if err := sessionData.Read(sessionID); err != nil {
		return nil, false
	}

	if sessionData.User.ID == 0 {
		return nil, false
	}

	return sessionData, true
}
