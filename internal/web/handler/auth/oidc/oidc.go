package oidc

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/GoCourseNav/GoCourseNav/internal/auth"
	"github.com/GoCourseNav/GoCourseNav/internal/config"
	"github.com/GoCourseNav/GoCourseNav/internal/web/handler"
	"github.com/GoCourseNav/GoCourseNav/internal/web/session"
)

const (
	// LoginPath is the path to initiate OIDC login.
	LoginPath = handler.RootPath + "auth/oidc/login"

	// CallbackPath is the path for the OIDC callback.
	CallbackPath = handler.RootPath + "auth/oidc/callback"

	// LogoutPath is the path for OIDC logout.
	LogoutPath = handler.RootPath + "auth/oidc/logout"

	// stateLifetime bounds how long an issued state token stays valid.
	stateLifetime = 5 * time.Minute
)

// Service is the OIDC handler service.
type Service struct {
	handler.Service
	cfg          *config.Config
	db           *gorm.DB
	oidcProvider *auth.OIDCProvider

	// in-memory state store; single instance deployments only
	stateMu    sync.Mutex
	stateStore map[string]time.Time
}

// Handler is the OIDC handler.
var Handler = Service{
	stateStore: make(map[string]time.Time),
}

// Init initializes the OIDC handler. When the provider is unreachable the
// portal starts without OIDC instead of failing, local sign-in stays usable.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB) {
	if app == nil || cfg == nil || db == nil {
		log.Fatal().Msg(handler.ErrNilACDFatalLogMsg)
		return
	}

	s.db = db
	s.cfg = cfg

	if !cfg.Auth.OIDC.Enabled {
		return
	}

	oidcProvider, err := auth.NewOIDCProvider(context.Background(), &cfg.Auth.OIDC, db)
	if err != nil {
		if errors.Is(err, auth.ErrOIDCDisabled) {
			log.Info().Msg("OIDC authentication is disabled by configuration")
		} else {
			log.Warn().Err(err).Msg("failed to initialize OIDC provider, OIDC sign-in disabled")
		}

		return
	}

	s.oidcProvider = oidcProvider

	log.Info().Msg("OIDC authentication provider initialized")

	app.Get(LoginPath, s.Login)
	app.Get(CallbackPath, s.Callback)
	app.Get(LogoutPath, s.Logout)

	go s.cleanupStates()
}

// Login initiates the OIDC login flow.
func (s *Service) Login(c *fiber.Ctx) error {
	if s.oidcProvider == nil {
		return c.Status(fiber.StatusServiceUnavailable).SendString("OIDC authentication is not available")
	}

	// state token ties the callback to this browser, CSRF protection
	state, err := auth.GenerateStateToken()
	if err != nil {
		log.Error().Err(err).Msg("failed to generate state token")

		return c.Status(fiber.StatusInternalServerError).SendString("Internal server error")
	}

	s.stateMu.Lock()
	s.stateStore[state] = time.Now().Add(stateLifetime)
	s.stateMu.Unlock()

	return c.Redirect(s.oidcProvider.GetAuthURL(state))
}

// Callback handles the provider redirect, verifies the ID token and signs
// the provisioned portal user in.
func (s *Service) Callback(c *fiber.Ctx) error {
	if s.oidcProvider == nil {
		return c.Status(fiber.StatusServiceUnavailable).SendString("OIDC authentication is not available")
	}

	code := c.Query("code")
	state := c.Query("state")

	if code == "" || state == "" {
		log.Error().Msg("missing code or state in OIDC callback")

		return c.Status(fiber.StatusBadRequest).SendString("Invalid callback parameters")
	}

	if !s.takeState(state) {
		log.Error().Msg("invalid or expired state token in OIDC callback")

		return c.Status(fiber.StatusBadRequest).SendString("Invalid state token")
	}

	authenticatedUser, err := s.oidcProvider.HandleCallback(context.Background(), code)
	if err != nil {
		log.Error().Err(err).Msg("OIDC authentication failed")

		return c.Status(fiber.StatusUnauthorized).SendString("Authentication failed")
	}

	sessionID, err := session.GenerateSessionID()
	if err != nil {
		log.Error().Err(err).Msg("failed to generate session ID")

		return c.Status(fiber.StatusInternalServerError).SendString("Internal server error")
	}

	userSession := &session.Data{
		User: *authenticatedUser,
	}

	if err = userSession.Write(sessionID, s.cfg.Webserver.Session.ExpiryTime); err != nil {
		log.Error().Err(err).Msg("failed to write session")

		return c.Status(fiber.StatusInternalServerError).SendString("Internal server error")
	}

	cookieSettings := &fiber.Cookie{
		Name:     "session",
		Value:    sessionID,
		MaxAge:   int(s.cfg.Webserver.Session.ExpiryTime.Seconds()),
		Secure:   true,
		HTTPOnly: true,
		SameSite: "Lax",
	}

	if s.cfg.DevMode {
		cookieSettings.Secure = false
	}

	c.Cookie(cookieSettings)

	log.Info().Str("username", authenticatedUser.Username).Msg("user logged in via OIDC")

	return c.Redirect("/courses")
}

// Logout clears the portal session and, when the provider supports it,
// forwards to the provider's end session endpoint.
func (s *Service) Logout(c *fiber.Ctx) error {
	c.ClearCookie("session")

	if s.oidcProvider != nil {
		postLogoutRedirectURI := s.cfg.Webserver.URL

		if logoutURL := s.oidcProvider.GetLogoutURL("", postLogoutRedirectURI); logoutURL != "" {
			return c.Redirect(logoutURL)
		}
	}

	return c.Redirect("/login")
}

// takeState consumes a state token, reporting whether it was valid. Tokens
// are single use.
func (s *Service) takeState(state string) bool {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()

	expiration, exists := s.stateStore[state]
	if !exists {
		return false
	}

	delete(s.stateStore, state)

	return time.Now().Before(expiration)
}

// cleanupStates periodically removes expired state tokens.
func (s *Service) cleanupStates() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		now := time.Now()

		s.stateMu.Lock()
		for state, expiration := range s.stateStore {
			if now.After(expiration) {
				delete(s.stateStore, state)
			}
		}
		s.stateMu.Unlock()
	}
}
