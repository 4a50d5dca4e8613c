package login

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/GoCourseNav/GoCourseNav/internal/auth"
	"github.com/GoCourseNav/GoCourseNav/internal/config"
	"github.com/GoCourseNav/GoCourseNav/internal/db/models"
	"github.com/GoCourseNav/GoCourseNav/internal/web/handler"
	"github.com/GoCourseNav/GoCourseNav/internal/web/session"
)

const (
	// Path is the path to the login page.
	Path = "/login"

	// TemplateName is the name of the login template.
	TemplateName = "login"

	// MethodLocal selects the portal database sign-in.
	MethodLocal = "local"

	// MethodLDAP selects the directory sign-in.
	MethodLDAP = "ldap"
)

// Form is the submitted login form.
type Form struct {
	Username string `form:"username" validate:"required,max=100"`
	Password string `form:"password" validate:"required"`
	Method   string `form:"method"   validate:"omitempty,oneof=local ldap"`
}

// Service is the login handler service.
type Service struct {
	handler.Service
	cfg       *config.Config
	db        *gorm.DB
	validator *validator.Validate
	local     *auth.LocalProvider
	ldap      *auth.LDAPProvider
}

// Handler is the login handler.
var Handler = Service{}

// Init initializes the login handler.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB) error {
	if app == nil || cfg == nil || db == nil {
		return errors.New(handler.ErrNilACDFatalLogMsg)
	}

	s.db = db
	s.cfg = cfg
	s.validator = validator.New()

	if cfg.Auth.Local.Enabled {
		s.local = auth.NewLocalProvider(db)
	}

	if cfg.Auth.LDAP.Enabled {
		ldapProvider, err := auth.NewLDAPProvider(&cfg.Auth.LDAP, db)
		if err != nil {
			log.Warn().Err(err).Msg("failed to initialize LDAP provider, directory sign-in disabled")
		} else {
			s.ldap = ldapProvider
		}
	}

	// register routes
	app.Route(Path, func(router fiber.Router) {
		router.Get(handler.RouterRootPath, s.Get)
		router.Post(handler.RouterRootPath, s.Post)
	})

	return nil
}

// Get handles the login page rendering.
func (s *Service) Get(c *fiber.Ctx) error {
	return s.render(c, fiber.StatusOK, "")
}

// Post handles the login form submission.
func (s *Service) Post(c *fiber.Ctx) error {
	form := new(Form)

	if err := c.BodyParser(form); err != nil {
		return s.render(c, fiber.StatusBadRequest, ErrInvalidFormData.Error())
	}

	if err := s.validator.Struct(form); err != nil {
		return s.render(c, fiber.StatusBadRequest, ErrInvalidFormData.Error())
	}

	user, err := s.authenticate(form)
	if err != nil {
		switch {
		case errors.Is(err, ErrNoAuthMethod), errors.Is(err, ErrInvalidAuthMethod):
			return s.render(c, fiber.StatusBadRequest, err.Error())
		case errors.Is(err, auth.ErrUserAccountDisabled):
			return s.render(c, fiber.StatusUnauthorized, auth.ErrUserAccountDisabled.Error())
		default:
			// wrong username, wrong password and directory misses all
			// read the same to the outside
			return s.render(c, fiber.StatusUnauthorized, ErrInvalidCredentials.Error())
		}
	}

	sessionID, err := session.GenerateSessionID()
	if err != nil {
		log.Error().Err(err).Msg("failed to generate session ID")

		return s.render(c, fiber.StatusInternalServerError, ErrInternalServerError.Error())
	}

	userSession := &session.Data{
		User: *user,
	}

	if err = userSession.Write(sessionID, s.cfg.Webserver.Session.ExpiryTime); err != nil {
		log.Error().Err(err).Msg("failed to write session")

		return s.render(c, fiber.StatusInternalServerError, ErrInternalServerError.Error())
	}

	// set login cookie
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

	log.Info().Str("username", user.Username).Str("auth_source", string(user.AuthSource)).
		Msg("user logged in")

	return c.Redirect("/courses")
}

// authenticate routes the form to the selected provider. Without an explicit
// method the local provider is preferred, then LDAP.
func (s *Service) authenticate(form *Form) (*models.User, error) {
	method := form.Method
	if method == "" {
		switch {
		case s.local != nil:
			method = MethodLocal
		case s.ldap != nil:
			method = MethodLDAP
		default:
			return nil, ErrNoAuthMethod
		}
	}

	switch method {
	case MethodLocal:
		if s.local == nil {
			return nil, ErrLocalAuthDisabled
		}

		return s.local.Authenticate(form.Username, form.Password) //nolint:wrapcheck
	case MethodLDAP:
		if s.ldap == nil {
			return nil, ErrLDAPAuthDisabled
		}

		return s.ldap.Authenticate(form.Username, form.Password) //nolint:wrapcheck
	default:
		return nil, ErrInvalidAuthMethod
	}
}

func (s *Service) render(c *fiber.Ctx, status int, errMsg string) error {
	data := fiber.Map{
		"Title":         s.cfg.Title,
		"local_enabled": s.local != nil,
		"ldap_enabled":  s.ldap != nil,
		"oidc_enabled":  s.cfg.Auth.OIDC.Enabled,
	}

	if errMsg != "" {
		data["error"] = errMsg
	}

	return c.Status(status).Render(TemplateName, data)
}
