// Package view provides the course page handler. The page shows the course
// or section content in the main column and the configured blocks, most
// importantly the section links block, in the side column.
package view

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/GoCourseNav/GoCourseNav/internal/auth"
	"github.com/GoCourseNav/GoCourseNav/internal/block/sectionlinks"
	"github.com/GoCourseNav/GoCourseNav/internal/config"
	"github.com/GoCourseNav/GoCourseNav/internal/course"
	"github.com/GoCourseNav/GoCourseNav/internal/db/controller/blockinstance"
	"github.com/GoCourseNav/GoCourseNav/internal/db/models"
	"github.com/GoCourseNav/GoCourseNav/internal/i18n"
	"github.com/GoCourseNav/GoCourseNav/internal/richtext"
	"github.com/GoCourseNav/GoCourseNav/internal/web/handler"
	"github.com/GoCourseNav/GoCourseNav/internal/web/handler/courses"
	"github.com/GoCourseNav/GoCourseNav/internal/web/navigation"
)

const (
	// Path is the path to the course page.
	Path = handler.RootPath + "course/view"

	// TemplateName is the name of the course page template.
	TemplateName = "course/view"

	// SettingsPathPrefix is the base of per instance block settings URLs.
	SettingsPathPrefix = handler.RootPath + "course/settings/"
)

// SectionView is one section rendered in the main column.
type SectionView struct {
	Index    int
	Title    string
	BodyHTML string
	Hidden   bool
	Current  bool
	URL      string
}

// Block is one side column block ready for template rendering.
type Block struct {
	PublicID     string
	List         sectionlinks.List
	CanConfigure bool
	SettingsURL  string
}

// Data represents the complete course page data.
type Data struct {
	CourseID     uint64
	Shortname    string
	Fullname     string
	FormatName   string
	HiddenNotice string
	Selected     *int
	Sections     []SectionView
	Blocks       []Block
}

// Service is the course page handler service.
type Service struct {
	handler.Service
	cfg     *config.Config
	db      *gorm.DB
	auth    *auth.Service
	courses *course.Provider
}

// Handler is the course page handler.
var Handler = Service{}

// Init initializes the course page handler.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB, authService *auth.Service, courseProvider *course.Provider) {
	if app == nil || cfg == nil || db == nil || authService == nil || courseProvider == nil {
		log.Fatal().Msg(handler.ErrNilACDFatalLogMsg)
		return
	}

	s.db = db
	s.cfg = cfg
	s.auth = authService
	s.courses = courseProvider

	app.Get(Path, s.Get)
}

// Get handles the course page rendering.
func (s *Service) Get(c *fiber.Ctx) error {
	courseID := uint64(c.QueryInt("id", 0))
	if courseID == 0 {
		return c.Status(fiber.StatusBadRequest).SendString("Missing course id")
	}

	userID := auth.UserIDFromContext(c)
	if userID == 0 {
		return c.Status(fiber.StatusUnauthorized).SendString("Unauthorized")
	}

	structure, err := s.courses.Structure(courseID)
	if err != nil {
		if errors.Is(err, course.ErrCourseNotFound) {
			return c.Status(fiber.StatusNotFound).SendString("Course not found")
		}

		log.Error().Err(err).Uint64("course_id", courseID).Msg("failed to load course structure")

		return c.Status(fiber.StatusInternalServerError).SendString("Failed to load course")
	}

	if !auth.HasCapabilityInContext(c, s.auth, courseID, auth.CapCourseView) {
		return c.Status(fiber.StatusForbidden).SendString("Forbidden: You are not enrolled in this course")
	}

	viewHidden := auth.HasCapabilityInContext(c, s.auth, courseID, auth.CapCourseViewHidden)

	// a hidden course reads as missing for everyone who cannot see hidden
	// content
	if !structure.Visible && !viewHidden {
		return c.Status(fiber.StatusNotFound).SendString("Course not found")
	}

	printer := i18n.NewPrinter(c.Get(fiber.HeaderAcceptLanguage))
	selected := selectedSection(c.Query("section"), structure.NumSections)
	now := time.Now()

	data := Data{
		CourseID:   structure.CourseID,
		Shortname:  structure.Shortname,
		Fullname:   structure.Fullname,
		FormatName: structure.FormatName,
		Selected:   selected,
		Sections:   mainColumn(structure, selected, viewHidden, printer, now),
	}

	if !structure.Visible {
		data.HiddenNotice = printer.T("course.hidden")
	}

	blocks, err := s.sideColumn(c, structure, selected, viewHidden, printer, now)
	if err != nil {
		log.Error().Err(err).Uint64("course_id", courseID).Msg("failed to load course blocks")

		return c.Status(fiber.StatusInternalServerError).SendString("Failed to load course")
	}

	data.Blocks = blocks

	nav := s.navContext(c, structure, selected)

	log.Debug().
		Uint64("course_id", courseID).
		Int("sections", len(data.Sections)).
		Int("blocks", len(data.Blocks)).
		Bool("view_hidden", viewHidden).
		Msg("Course page rendered")

	return c.Render(TemplateName, fiber.Map{
		"Navigation": nav,
		"Data":       data,
	}, handler.BaseLayout)
}

// selectedSection parses the section query parameter. Absent, unparsable and
// out of range values all mean no section is selected.
func selectedSection(raw string, numSections int) *int {
	if raw == "" {
		return nil
	}

	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 || n > numSections {
		return nil
	}

	return &n
}

// mainColumn builds the section content of the main column. With a selected
// section only that one is shown, otherwise every section the user may see.
func mainColumn(structure *course.Structure, selected *int, viewHidden bool, printer *i18n.Printer, now time.Time) []SectionView {
	views := make([]SectionView, 0, len(structure.Sections))

	if !structure.UsesSections {
		return views
	}

	current := structure.CurrentSection(now)

	for i := range structure.Sections {
		section := &structure.Sections[i]

		if section.Index > structure.NumSections {
			break
		}

		if selected != nil && section.Index != *selected {
			continue
		}

		if !section.Visible && !viewHidden {
			// enrolled users learn that something is there, not what
			if selected != nil {
				views = append(views, SectionView{
					Index:   section.Index,
					Title:   sectionHeading(section, structure, printer),
					Hidden:  true,
					Current: current != 0 && section.Index == current,
				})
			}

			continue
		}

		view := SectionView{
			Index:    section.Index,
			Title:    sectionHeading(section, structure, printer),
			BodyHTML: richtext.Render(section.Summary, richtext.Format(section.SummaryFormat)),
			Hidden:   !section.Visible,
			Current:  current != 0 && section.Index == current,
		}

		if selected == nil {
			view.URL = Path + "?id=" + strconv.FormatUint(structure.CourseID, 10) +
				"&section=" + strconv.Itoa(section.Index)
		}

		views = append(views, view)
	}

	return views
}

// sectionHeading resolves the main column heading of a section, the explicit
// name or the format default for the position.
func sectionHeading(section *course.SectionInfo, structure *course.Structure, printer *i18n.Printer) string {
	if section.Name != "" {
		return section.Name
	}

	return printer.SectionName(structure.SectionNoun, section.Index)
}

// sideColumn renders the visible blocks placed on the course page.
func (s *Service) sideColumn(c *fiber.Ctx, structure *course.Structure, selected *int, viewHidden bool, printer *i18n.Printer, now time.Time) ([]Block, error) {
	instances, err := blockinstance.ListByCourse(s.db, structure.CourseID)
	if err != nil {
		return nil, err
	}

	canConfigure := auth.HasCapabilityInContext(c, s.auth, structure.CourseID, auth.CapBlockConfigure)
	settings := sectionlinks.LoadSettings(s.db)

	blocks := make([]Block, 0, len(instances))

	for i := range instances {
		instance := &instances[i]

		if !instance.Visible || instance.BlockType != sectionlinks.BlockType {
			continue
		}

		overrides, err := sectionlinks.ParseOverrides(instance.Config)
		if err != nil {
			// a broken override blob falls back to the site defaults
			log.Warn().Err(err).Str("instance", instance.PublicID).Msg("unreadable block config ignored")

			overrides = nil
		}

		eff := settings.Effective(overrides)

		list := sectionlinks.Build(structure, eff, sectionlinks.RenderContext{
			Selected:   selected,
			ViewHidden: viewHidden,
			Debug:      s.cfg.DevMode,
			Now:        now,
			Printer:    printer,
		})

		blocks = append(blocks, Block{
			PublicID:     instance.PublicID,
			List:         list,
			CanConfigure: canConfigure,
			SettingsURL:  SettingsPathPrefix + instance.BlockType + "?id=" + instance.PublicID,
		})
	}

	return blocks, nil
}

func (s *Service) navContext(c *fiber.Ctx, structure *course.Structure, selected *int) *navigation.Context {
	user, _ := c.Locals("CurrentUser").(models.User)

	selfURL := Path + "?id=" + strconv.FormatUint(structure.CourseID, 10)

	nav := navigation.NewContext(structure.Fullname, "courses", "course").
		AddBreadcrumb("Home", courses.Path, false).
		AddBreadcrumb("Courses", courses.Path, false).
		WithUser(user.FullName(), user.SiteAdmin)

	if selected == nil {
		return nav.AddBreadcrumb(structure.Shortname, selfURL, true)
	}

	return nav.
		AddBreadcrumb(structure.Shortname, selfURL, false).
		AddBreadcrumb("Section "+strconv.Itoa(*selected), selfURL+"&section="+strconv.Itoa(*selected), true)
}
