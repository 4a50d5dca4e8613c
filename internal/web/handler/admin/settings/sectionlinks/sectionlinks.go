// Package sectionlinks provides the site-wide settings page of the section
// links block. Administrators pick one of the four states per toggle: the
// forced states apply everywhere, the optional ones only supply the default
// a course can override.
package sectionlinks

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/GoCourseNav/GoCourseNav/internal/auth"
	"github.com/GoCourseNav/GoCourseNav/internal/block"
	"github.com/GoCourseNav/GoCourseNav/internal/block/sectionlinks"
	"github.com/GoCourseNav/GoCourseNav/internal/config"
	"github.com/GoCourseNav/GoCourseNav/internal/db/models"
	"github.com/GoCourseNav/GoCourseNav/internal/web/handler"
	"github.com/GoCourseNav/GoCourseNav/internal/web/handler/courses"
	"github.com/GoCourseNav/GoCourseNav/internal/web/navigation"
)

const (
	// Path is the path to the site-wide block settings page.
	Path = handler.RootPath + "admin/settings/" + sectionlinks.BlockType

	// TemplateName is the name of the site-wide block settings template.
	TemplateName = "admin/settings/sectionlinks"
)

// Form is the submitted site-wide settings form. Every toggle carries one of
// the four state strings.
type Form struct {
	Autotitle         string `form:"autotitle"         validate:"oneof=forced_off forced_on optional_off optional_on"`
	DisplayCourseLink string `form:"displaycourselink" validate:"oneof=forced_off forced_on optional_off optional_on"`
	HideSection0      string `form:"hidesection0"      validate:"oneof=forced_off forced_on optional_off optional_on"`
	EnumerateSection0 string `form:"enumeratesection0" validate:"oneof=forced_off forced_on optional_off optional_on"`
	Enumerate         string `form:"enumerate"         validate:"oneof=forced_off forced_on optional_off optional_on"`
	CourseLinkText    string `form:"courselinktext"    validate:"max=255"`
}

// ToggleRow is one toggle of the settings form for template rendering.
type ToggleRow struct {
	// Field is the form field name.
	Field string
	// Label is the display label.
	Label string
	// Value is the stored state string.
	Value block.Toggle
}

// Service is the site-wide block settings handler service.
type Service struct {
	handler.Service
	cfg       *config.Config
	db        *gorm.DB
	validator *validator.Validate
}

// Handler is the site-wide block settings handler.
var Handler = Service{}

// Init initializes the site-wide block settings handler.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB, authService *auth.Service) {
	if app == nil || cfg == nil || db == nil {
		log.Fatal().Msg(handler.ErrNilACDFatalLogMsg)
		return
	}

	s.db = db
	s.cfg = cfg
	s.validator = validator.New()

	// register routes with capability checks
	app.Get(Path,
		auth.RequireSiteCapability(authService, auth.CapSiteConfig),
		s.Get,
	)
	app.Post(Path,
		auth.RequireSiteCapability(authService, auth.CapSiteConfig),
		s.Post,
	)
}

// Get handles the site-wide block settings page rendering.
func (s *Service) Get(c *fiber.Ctx) error {
	settings := sectionlinks.LoadSettings(s.db)

	return c.Render(TemplateName, fiber.Map{
		"Navigation":     s.navContext(c),
		"Toggles":        toggleRows(settings),
		"CourseLinkText": settings.CourseLinkText,
		"States":         block.Toggles(),
	}, handler.BaseLayout)
}

// Post handles the site-wide block settings form submission.
func (s *Service) Post(c *fiber.Ctx) error {
	nav := s.navContext(c)

	form := new(Form)
	if err := c.BodyParser(form); err != nil {
		log.Error().Err(err).Msg("failed to parse block settings form")

		return s.renderError(c, fiber.StatusBadRequest, nav, "Invalid form data")
	}

	if err := s.validator.Struct(form); err != nil {
		var validationErrors validator.ValidationErrors
		errors.As(err, &validationErrors)

		errorMessages := make([]string, len(validationErrors))
		for i, ve := range validationErrors {
			errorMessages[i] = "Field '" + ve.Field() + "' failed validation tag '" + ve.Tag() + "'"
		}

		log.Error().Err(err).Msg("validation failed for block settings")

		return c.Status(fiber.StatusBadRequest).Render(TemplateName, fiber.Map{
			"Navigation":     nav,
			"Toggles":        toggleRows(sectionlinks.LoadSettings(s.db)),
			"CourseLinkText": form.CourseLinkText,
			"States":         block.Toggles(),
			"Error":          errorMessages,
		}, handler.BaseLayout)
	}

	settings := settingsFromForm(form)

	if err := sectionlinks.SaveSettings(s.db, settings); err != nil {
		log.Error().Err(err).Msg("failed to save block settings")

		return s.renderError(c, fiber.StatusInternalServerError, nav, "Failed to save settings")
	}

	log.Info().
		Str("autotitle", string(settings.Autotitle)).
		Str("enumerate", string(settings.Enumerate)).
		Msg("site-wide block settings saved")

	return c.Render(TemplateName, fiber.Map{
		"Navigation":     nav,
		"Toggles":        toggleRows(settings),
		"CourseLinkText": settings.CourseLinkText,
		"States":         block.Toggles(),
		"Success":        "Settings saved successfully",
	}, handler.BaseLayout)
}

func (s *Service) renderError(c *fiber.Ctx, status int, nav *navigation.Context, msg string) error {
	stored := sectionlinks.LoadSettings(s.db)

	return c.Status(status).Render(TemplateName, fiber.Map{
		"Navigation":     nav,
		"Toggles":        toggleRows(stored),
		"CourseLinkText": stored.CourseLinkText,
		"States":         block.Toggles(),
		"Error":          msg,
	}, handler.BaseLayout)
}

func (s *Service) navContext(c *fiber.Ctx) *navigation.Context {
	user, _ := c.Locals("CurrentUser").(models.User)

	return navigation.NewContext("Section links defaults", "admin", "settings-sectionlinks").
		AddBreadcrumb("Home", courses.Path, false).
		AddBreadcrumb("Admin", "#", false).
		AddBreadcrumb("Section links", Path, true).
		WithUser(user.FullName(), user.SiteAdmin)
}

// toggleRows builds the form rows from the stored settings.
func toggleRows(settings sectionlinks.Settings) []ToggleRow {
	return []ToggleRow{
		{Field: "autotitle", Label: "Derive titles from section summaries", Value: settings.Autotitle},
		{Field: "displaycourselink", Label: "Show a link to the course page", Value: settings.DisplayCourseLink},
		{Field: "hidesection0", Label: "Hide the general section", Value: settings.HideSection0},
		{Field: "enumeratesection0", Label: "Number the general section", Value: settings.EnumerateSection0},
		{Field: "enumerate", Label: "Number the sections", Value: settings.Enumerate},
	}
}

// settingsFromForm converts the validated form back into stored settings.
func settingsFromForm(form *Form) sectionlinks.Settings {
	return sectionlinks.Settings{
		Autotitle:         block.Toggle(form.Autotitle),
		DisplayCourseLink: block.Toggle(form.DisplayCourseLink),
		HideSection0:      block.Toggle(form.HideSection0),
		EnumerateSection0: block.Toggle(form.EnumerateSection0),
		Enumerate:         block.Toggle(form.Enumerate),
		CourseLinkText:    form.CourseLinkText,
	}
}
