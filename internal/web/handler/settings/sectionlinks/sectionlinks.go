// Package sectionlinks provides the per course settings page of the section
// links block. Teachers reach it from the block's gear icon; each optional
// toggle can be left on the site default or pinned to yes or no for this
// course alone.
package sectionlinks

import (
	"errors"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/GoCourseNav/GoCourseNav/internal/auth"
	"github.com/GoCourseNav/GoCourseNav/internal/block"
	"github.com/GoCourseNav/GoCourseNav/internal/block/sectionlinks"
	"github.com/GoCourseNav/GoCourseNav/internal/config"
	"github.com/GoCourseNav/GoCourseNav/internal/db/controller/blockinstance"
	"github.com/GoCourseNav/GoCourseNav/internal/db/models"
	"github.com/GoCourseNav/GoCourseNav/internal/web/handler"
	"github.com/GoCourseNav/GoCourseNav/internal/web/handler/courses"
	"github.com/GoCourseNav/GoCourseNav/internal/web/navigation"
)

const (
	// Path is the path to the block instance settings page.
	Path = handler.RootPath + "course/settings/" + sectionlinks.BlockType

	// TemplateName is the name of the block instance settings template.
	TemplateName = "settings/sectionlinks"

	// ChoiceDefault keeps the site wide default for a toggle.
	ChoiceDefault = "default"

	// ChoiceOn pins a toggle to on for this course.
	ChoiceOn = "1"

	// ChoiceOff pins a toggle to off for this course.
	ChoiceOff = "0"
)

// Form is the submitted block instance settings form.
type Form struct {
	Autotitle         string `form:"autotitle"         validate:"oneof=default 1 0"`
	DisplayCourseLink string `form:"displaycourselink" validate:"oneof=default 1 0"`
	HideSection0      string `form:"hidesection0"      validate:"oneof=default 1 0"`
	EnumerateSection0 string `form:"enumeratesection0" validate:"oneof=default 1 0"`
	Enumerate         string `form:"enumerate"         validate:"oneof=default 1 0"`
	CourseLinkText    string `form:"courselinktext"    validate:"max=255"`
}

// ToggleRow is one toggle of the settings form for template rendering.
type ToggleRow struct {
	// Field is the form field name.
	Field string
	// Label is the display label.
	Label string
	// Value is the current choice, one of default, 1 and 0.
	Value string
	// Forced is true when the site administrator removed the choice.
	Forced bool
	// DefaultOn is what the site default resolves to without an override.
	DefaultOn bool
}

// Service is the block instance settings handler service.
type Service struct {
	handler.Service
	cfg       *config.Config
	db        *gorm.DB
	auth      *auth.Service
	validator *validator.Validate
}

// Handler is the block instance settings handler.
var Handler = Service{}

// Init initializes the block instance settings handler.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB, authService *auth.Service) {
	if app == nil || cfg == nil || db == nil || authService == nil {
		log.Fatal().Msg(handler.ErrNilACDFatalLogMsg)
		return
	}

	s.db = db
	s.cfg = cfg
	s.auth = authService
	s.validator = validator.New()

	app.Route(Path, func(router fiber.Router) {
		router.Get(handler.RouterRootPath, s.Get)
		router.Post(handler.RouterRootPath, s.Post)
	})
}

// Get handles the block instance settings page rendering.
func (s *Service) Get(c *fiber.Ctx) error {
	instance, courseRow, errResp := s.resolveInstance(c)
	if errResp != nil {
		return errResp(c)
	}

	overrides, err := sectionlinks.ParseOverrides(instance.Config)
	if err != nil {
		log.Warn().Err(err).Str("instance", instance.PublicID).Msg("unreadable block config, editing from defaults")

		overrides = nil
	}

	site := sectionlinks.LoadSettings(s.db)

	return c.Render(TemplateName, fiber.Map{
		"Navigation":     s.navContext(c, courseRow),
		"InstanceID":     instance.PublicID,
		"Course":         courseRow,
		"Toggles":        toggleRows(site, overrides),
		"CourseLinkText": courseLinkText(overrides),
	}, handler.BaseLayout)
}

// Post handles the block instance settings form submission.
func (s *Service) Post(c *fiber.Ctx) error {
	instance, courseRow, errResp := s.resolveInstance(c)
	if errResp != nil {
		return errResp(c)
	}

	site := sectionlinks.LoadSettings(s.db)
	nav := s.navContext(c, courseRow)
	stored, _ := sectionlinks.ParseOverrides(instance.Config)

	form := new(Form)
	if err := c.BodyParser(form); err != nil {
		return s.renderError(c, fiber.StatusBadRequest, nav, instance.PublicID, courseRow, site, stored, ErrInvalidFormData.Error())
	}

	if err := s.validator.Struct(form); err != nil {
		return s.renderError(c, fiber.StatusBadRequest, nav, instance.PublicID, courseRow, site, stored, ErrInvalidFormData.Error())
	}

	overrides := overridesFromForm(form, site)

	blob, err := sectionlinks.EncodeOverrides(overrides)
	if err != nil {
		log.Error().Err(err).Str("instance", instance.PublicID).Msg("failed to encode block config")

		return s.renderError(c, fiber.StatusInternalServerError, nav, instance.PublicID, courseRow, site, stored, ErrSaveFailed.Error())
	}

	if _, err := blockinstance.SaveConfig(s.db, instance.ID, blob); err != nil {
		log.Error().Err(err).Str("instance", instance.PublicID).Msg("failed to save block config")

		return s.renderError(c, fiber.StatusInternalServerError, nav, instance.PublicID, courseRow, site, stored, ErrSaveFailed.Error())
	}

	log.Info().Str("instance", instance.PublicID).Uint64("course_id", courseRow.ID).
		Msg("block instance settings saved")

	return c.Render(TemplateName, fiber.Map{
		"Navigation":     nav,
		"InstanceID":     instance.PublicID,
		"Course":         courseRow,
		"Toggles":        toggleRows(site, overrides),
		"CourseLinkText": courseLinkText(overrides),
		"Success":        "Settings saved successfully",
	}, handler.BaseLayout)
}

// resolveInstance loads the block instance addressed by the id query
// parameter and checks the caller may configure blocks in its course.
func (s *Service) resolveInstance(c *fiber.Ctx) (*models.BlockInstance, *models.Course, func(*fiber.Ctx) error) {
	publicID := c.Query("id")
	if publicID == "" {
		return nil, nil, func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusBadRequest).SendString("Missing block instance id")
		}
	}

	instance, err := blockinstance.GetByPublicID(s.db, publicID)
	if err != nil {
		if errors.Is(err, blockinstance.ErrInstanceNotFound) {
			return nil, nil, func(c *fiber.Ctx) error {
				return c.Status(fiber.StatusNotFound).SendString("Block instance not found")
			}
		}

		log.Error().Err(err).Str("instance", publicID).Msg("failed to load block instance")

		return nil, nil, func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusInternalServerError).SendString("Failed to load block instance")
		}
	}

	if !auth.HasCapabilityInContext(c, s.auth, instance.CourseID, auth.CapBlockConfigure) {
		return nil, nil, func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusForbidden).SendString("Forbidden: You may not configure blocks in this course")
		}
	}

	var courseRow models.Course
	if err := s.db.First(&courseRow, instance.CourseID).Error; err != nil {
		log.Error().Err(err).Uint64("course_id", instance.CourseID).Msg("failed to load course for block instance")

		return nil, nil, func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusInternalServerError).SendString("Failed to load course")
		}
	}

	return instance, &courseRow, nil
}

func (s *Service) renderError(c *fiber.Ctx, status int, nav *navigation.Context, publicID string, courseRow *models.Course, site sectionlinks.Settings, stored *sectionlinks.Overrides, msg string) error {
	return c.Status(status).Render(TemplateName, fiber.Map{
		"Navigation":     nav,
		"InstanceID":     publicID,
		"Course":         courseRow,
		"Toggles":        toggleRows(site, stored),
		"CourseLinkText": courseLinkText(stored),
		"Error":          msg,
	}, handler.BaseLayout)
}

func (s *Service) navContext(c *fiber.Ctx, courseRow *models.Course) *navigation.Context {
	user, _ := c.Locals("CurrentUser").(models.User)

	courseURL := "/course/view?id=" + strconv.FormatUint(courseRow.ID, 10)

	return navigation.NewContext("Section links settings", "courses", "course").
		AddBreadcrumb("Home", courses.Path, false).
		AddBreadcrumb("Courses", courses.Path, false).
		AddBreadcrumb(courseRow.Shortname, courseURL, false).
		AddBreadcrumb("Section links", Path, true).
		WithUser(user.FullName(), user.SiteAdmin)
}

// toggleRows builds the form rows from the site defaults and the stored
// instance overrides. Forced toggles keep their row but lose the choice.
func toggleRows(site sectionlinks.Settings, o *sectionlinks.Overrides) []ToggleRow {
	if o == nil {
		o = &sectionlinks.Overrides{}
	}

	return []ToggleRow{
		{
			Field:     "autotitle",
			Label:     "Derive titles from section summaries",
			Value:     choiceFor(o.Autotitle),
			Forced:    site.Autotitle.Forced(),
			DefaultOn: site.Autotitle.Resolve(nil),
		},
		{
			Field:     "displaycourselink",
			Label:     "Show a link to the course page",
			Value:     choiceFor(o.DisplayCourseLink),
			Forced:    site.DisplayCourseLink.Forced(),
			DefaultOn: site.DisplayCourseLink.Resolve(nil),
		},
		{
			Field:     "hidesection0",
			Label:     "Hide the general section",
			Value:     choiceFor(o.HideSection0),
			Forced:    site.HideSection0.Forced(),
			DefaultOn: site.HideSection0.Resolve(nil),
		},
		{
			Field:     "enumeratesection0",
			Label:     "Number the general section",
			Value:     choiceFor(o.EnumerateSection0),
			Forced:    site.EnumerateSection0.Forced(),
			DefaultOn: site.EnumerateSection0.Resolve(nil),
		},
		{
			Field:     "enumerate",
			Label:     "Number the sections",
			Value:     choiceFor(o.Enumerate),
			Forced:    site.Enumerate.Forced(),
			DefaultOn: site.Enumerate.Resolve(nil),
		},
	}
}

// choiceFor maps a stored override to its form choice.
func choiceFor(o *bool) string {
	switch {
	case o == nil:
		return ChoiceDefault
	case *o:
		return ChoiceOn
	default:
		return ChoiceOff
	}
}

// overrideFor maps a form choice back to an override. Forced toggles ignore
// whatever the browser submitted.
func overrideFor(choice string, t block.Toggle) *bool {
	if t.Forced() {
		return nil
	}

	switch choice {
	case ChoiceOn:
		v := true

		return &v
	case ChoiceOff:
		v := false

		return &v
	default:
		return nil
	}
}

// overridesFromForm converts the submitted form into the override set to
// store. A form that keeps every default yields nil, the instance then reads
// as never configured.
func overridesFromForm(form *Form, site sectionlinks.Settings) *sectionlinks.Overrides {
	o := &sectionlinks.Overrides{
		Autotitle:         overrideFor(form.Autotitle, site.Autotitle),
		DisplayCourseLink: overrideFor(form.DisplayCourseLink, site.DisplayCourseLink),
		HideSection0:      overrideFor(form.HideSection0, site.HideSection0),
		EnumerateSection0: overrideFor(form.EnumerateSection0, site.EnumerateSection0),
		Enumerate:         overrideFor(form.Enumerate, site.Enumerate),
		CourseLinkText:    form.CourseLinkText,
	}

	if o.Autotitle == nil && o.DisplayCourseLink == nil && o.HideSection0 == nil &&
		o.EnumerateSection0 == nil && o.Enumerate == nil && o.CourseLinkText == "" {
		return nil
	}

	return o
}

func courseLinkText(o *sectionlinks.Overrides) string {
	if o == nil {
		return ""
	}

	return o.CourseLinkText
}
