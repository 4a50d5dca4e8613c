// Package enrolment provides handlers for managing course enrolments in the
// admin area. Enrolment rows are the portal's permission data: the role a
// user holds in a course decides every course-scoped capability.
package enrolment

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/GoCourseNav/GoCourseNav/internal/auth"
	"github.com/GoCourseNav/GoCourseNav/internal/config"
	"github.com/GoCourseNav/GoCourseNav/internal/db/models"
	"github.com/GoCourseNav/GoCourseNav/internal/web/handler"
	"github.com/GoCourseNav/GoCourseNav/internal/web/handler/courses"
	"github.com/GoCourseNav/GoCourseNav/internal/web/navigation"
)

const (
	// Path is the base path for enrolment management.
	Path = handler.RootPath + "admin/enrolment"

	// TemplateList is the template for listing enrolments.
	TemplateList = "admin/enrolment/list"

	// DefaultPageSize for pagination.
	DefaultPageSize = 25
	// MaxPageSize clamps the page size upper bound.
	MaxPageSize = 100

	// TitleEnrolments is the page title for the enrolment list.
	TitleEnrolments = "Enrolments"

	// ErrFailedLoadEnrolments indicates an unexpected error occurred while loading enrolments.
	ErrFailedLoadEnrolments = "Failed to load enrolments"
	// ErrUnknownUser is returned when the submitted username does not exist.
	ErrUnknownUser = "No user with that username"
	// ErrUnknownCourse is returned when the submitted course shortname does not exist.
	ErrUnknownCourse = "No course with that shortname"
	// ErrFailedSaveEnrolment indicates the enrol operation failed.
	ErrFailedSaveEnrolment = "Failed to save enrolment"
	// ErrValidationPrefix prefixes validation error messages shown to the user.
	ErrValidationPrefix = "Validation failed: "

	// RouteDelete is the route for removing an enrolment.
	RouteDelete = Path + "/delete"
)

// Row is one enrolment prepared for template rendering.
type Row struct {
	UserID          uint64
	Username        string
	UserFullName    string
	CourseID        uint64
	CourseShortname string
	Role            models.CourseRole
}

// Form is the submitted enrol form. Users and courses are addressed by their
// unique names, not database IDs.
type Form struct {
	Username  string `form:"username"  validate:"required,max=100"`
	Shortname string `form:"shortname" validate:"required,max=100"`
	Role      string `form:"role"      validate:"required,oneof=student teacher"`
}

// DeleteForm addresses the enrolment row to remove.
type DeleteForm struct {
	UserID   uint64 `form:"user_id"   validate:"required"`
	CourseID uint64 `form:"course_id" validate:"required"`
}

// Service provides enrolment management.
type Service struct {
	handler.Service
	cfg       *config.Config
	db        *gorm.DB
	auth      *auth.Service
	validator *validator.Validate
}

// Handler is the exported instance.
var Handler = Service{}

// Init registers routes.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB, authService *auth.Service) {
	if app == nil || cfg == nil || db == nil {
		log.Fatal().Msg(handler.ErrNilACDFatalLogMsg)
		return
	}

	s.db = db
	s.cfg = cfg
	s.auth = authService
	s.validator = validator.New()

	// Routes
	app.Get(Path,
		auth.RequireSiteCapability(authService, auth.CapSiteConfig),
		s.List,
	)
	app.Post(Path,
		auth.RequireSiteCapability(authService, auth.CapSiteConfig),
		s.Create,
	)
	app.Post(RouteDelete,
		auth.RequireSiteCapability(authService, auth.CapSiteConfig),
		s.Delete,
	)
}

// List shows enrolments with simple pagination and search.
func (s *Service) List(c *fiber.Ctx) error {
	return s.render(c, fiber.StatusOK, "", "")
}

// Create enrols a user into a course, or changes the role of an existing
// enrolment.
func (s *Service) Create(c *fiber.Ctx) error {
	form := new(Form)

	if err := c.BodyParser(form); err != nil {
		return s.render(c, fiber.StatusBadRequest, "Invalid form data", "")
	}

	if err := s.validator.Struct(form); err != nil {
		return s.render(c, fiber.StatusBadRequest, ErrValidationPrefix+err.Error(), "")
	}

	var user models.User
	if err := s.db.Where("username = ?", form.Username).First(&user).Error; err != nil {
		return s.render(c, fiber.StatusNotFound, ErrUnknownUser, "")
	}

	var courseRow models.Course
	if err := s.db.Where("shortname = ?", form.Shortname).First(&courseRow).Error; err != nil {
		return s.render(c, fiber.StatusNotFound, ErrUnknownCourse, "")
	}

	if err := s.auth.Enrol(user.ID, courseRow.ID, models.CourseRole(form.Role)); err != nil {
		log.Error().Err(err).Uint64("user_id", user.ID).Uint64("course_id", courseRow.ID).
			Msg("failed to save enrolment")

		return s.render(c, fiber.StatusInternalServerError, ErrFailedSaveEnrolment, "")
	}

	log.Info().Str("username", user.Username).Str("course", courseRow.Shortname).
		Str("role", form.Role).Msg("enrolment saved")

	return s.render(c, fiber.StatusOK, "", "Enrolment saved")
}

// Delete removes an enrolment row.
func (s *Service) Delete(c *fiber.Ctx) error {
	form := new(DeleteForm)

	if err := c.BodyParser(form); err != nil {
		return s.render(c, fiber.StatusBadRequest, "Invalid form data", "")
	}

	if err := s.validator.Struct(form); err != nil {
		return s.render(c, fiber.StatusBadRequest, ErrValidationPrefix+err.Error(), "")
	}

	if err := s.auth.Unenrol(form.UserID, form.CourseID); err != nil {
		log.Error().Err(err).Uint64("user_id", form.UserID).Uint64("course_id", form.CourseID).
			Msg("failed to remove enrolment")

		return s.render(c, fiber.StatusInternalServerError, ErrFailedSaveEnrolment, "")
	}

	log.Info().Uint64("user_id", form.UserID).Uint64("course_id", form.CourseID).
		Msg("enrolment removed")

	return s.render(c, fiber.StatusOK, "", "Enrolment removed")
}

func (s *Service) render(c *fiber.Ctx, status int, errMsg, success string) error {
	currentUser, _ := c.Locals("CurrentUser").(models.User)

	nav := navigation.NewContext(TitleEnrolments, "admin", "enrolment").
		AddBreadcrumb("Home", courses.Path, false).
		AddBreadcrumb("Admin", "#", false).
		AddBreadcrumb("Enrolments", Path, true).
		WithUser(currentUser.FullName(), currentUser.SiteAdmin)

	page := c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}

	pageSize := c.QueryInt("pageSize", DefaultPageSize)
	if pageSize < 1 || pageSize > MaxPageSize {
		pageSize = DefaultPageSize
	}

	search := c.Query("search", "")

	var (
		enrolments []models.Enrolment
		totalCount int64
		tx         = s.db.Model(&models.Enrolment{}).
				Joins("JOIN users ON users.id = enrolments.user_id").
				Joins("JOIN courses ON courses.id = enrolments.course_id")
	)

	if search != "" {
		like := "%" + search + "%"
		tx = tx.Where("users.username LIKE ? OR courses.shortname LIKE ?", like, like)
	}

	if err := tx.Count(&totalCount).Error; err != nil {
		log.Error().Err(err).Msg("count enrolments failed")

		return c.Status(fiber.StatusInternalServerError).Render(TemplateList, fiber.Map{
			"Navigation": nav,
			"Error":      ErrFailedLoadEnrolments,
		}, handler.BaseLayout)
	}

	totalPages := int((totalCount + int64(pageSize) - 1) / int64(pageSize))
	if totalPages < 1 {
		totalPages = 1
	}

	if page > totalPages {
		page = totalPages
	}

	offset := (page - 1) * pageSize
	if err := tx.Preload("User").Preload("Course").
		Order("courses.shortname ASC, users.username ASC").
		Limit(pageSize).Offset(offset).
		Find(&enrolments).Error; err != nil {
		log.Error().Err(err).Msg("query enrolments failed")

		return c.Status(fiber.StatusInternalServerError).Render(TemplateList, fiber.Map{
			"Navigation": nav,
			"Error":      ErrFailedLoadEnrolments,
		}, handler.BaseLayout)
	}

	rows := make([]Row, 0, len(enrolments))
	for i := range enrolments {
		e := &enrolments[i]
		rows = append(rows, Row{
			UserID:          e.UserID,
			Username:        e.User.Username,
			UserFullName:    e.User.FullName(),
			CourseID:        e.CourseID,
			CourseShortname: e.Course.Shortname,
			Role:            e.Role,
		})
	}

	data := fiber.Map{
		"Navigation": nav,
		"Enrolments": rows,
		"Roles":      []models.CourseRole{models.CourseRoleStudent, models.CourseRoleTeacher},
		"Search":     search,
		"Page":       page,
		"PageSize":   pageSize,
		"TotalItems": totalCount,
		"TotalPages": totalPages,
		"HasPrev":    page > 1,
		"HasNext":    page < totalPages,
		"PrevPage":   page - 1,
		"NextPage":   page + 1,
	}

	if errMsg != "" {
		data["Error"] = errMsg
	}

	if success != "" {
		data["Success"] = success
	}

	return c.Status(status).Render(TemplateList, data, handler.BaseLayout)
}
