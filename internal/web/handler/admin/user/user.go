// Package user provides handlers for managing portal users (CRUD) in the
// admin area. External sign-in providers create accounts on first login;
// this page is where administrators activate, edit or remove them.
package user

import (
	"errors"
	"strconv"

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
	"github.com/GoCourseNav/GoCourseNav/internal/web/session"
)

const (
	// Path is the base path for user management.
	Path = handler.RootPath + "admin/user"

	// TemplateList is the template for listing users.
	TemplateList = "admin/user/list"
	// TemplateForm is the template for creating/updating a user.
	TemplateForm = "admin/user/form"

	// DefaultPageSize for pagination.
	DefaultPageSize = 25
)

// Form is the submitted user form, shared by create and update.
type Form struct {
	Username   string `form:"username"    validate:"required,min=3,max=100"`
	Email      string `form:"email"       validate:"required,email,max=255"`
	FirstName  string `form:"firstname"   validate:"max=100"`
	LastName   string `form:"lastname"    validate:"max=100"`
	AuthSource string `form:"source"      validate:"required,oneof=local oidc ldap"`
	ExternalID string `form:"external_id"`
	Password   string `form:"password"`
	Active     bool   `form:"active"`
	SiteAdmin  bool   `form:"site_admin"`
}

// Service provides CRUD operations for users.
type Service struct {
	handler.Service
	cfg       *config.Config
	db        *gorm.DB
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
	s.validator = validator.New()

	// Routes
	app.Get(Path,
		auth.RequireSiteCapability(authService, auth.CapSiteConfig),
		s.List,
	)
	app.Get(Path+"/new",
		auth.RequireSiteCapability(authService, auth.CapSiteConfig),
		s.New,
	)
	app.Post(Path,
		auth.RequireSiteCapability(authService, auth.CapSiteConfig),
		s.Create,
	)
	app.Get(Path+"/:id/edit",
		auth.RequireSiteCapability(authService, auth.CapSiteConfig),
		s.Edit,
	)
	app.Post(Path+"/:id",
		auth.RequireSiteCapability(authService, auth.CapSiteConfig),
		s.Update,
	)
	app.Post(Path+"/:id/delete",
		auth.RequireSiteCapability(authService, auth.CapSiteConfig),
		s.Delete,
	)
}

// List shows users with simple pagination and search.
func (s *Service) List(c *fiber.Ctx) error {
	nav := s.listNav(c)

	page := c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}

	pageSize := c.QueryInt("pageSize", DefaultPageSize)
	if pageSize < 1 || pageSize > 100 {
		pageSize = DefaultPageSize
	}

	search := c.Query("search", "")

	var (
		users      []models.User
		totalCount int64
		tx         = s.db.Model(&models.User{})
	)

	if search != "" {
		like := "%" + search + "%"
		tx = tx.Where(
			"username LIKE ? OR email LIKE ? OR external_id LIKE ? OR first_name LIKE ? OR last_name LIKE ?",
			like,
			like,
			like,
			like,
			like,
		)
	}

	if err := tx.Count(&totalCount).Error; err != nil {
		log.Error().Err(err).Msg("count users failed")

		return c.Status(fiber.StatusInternalServerError).Render(TemplateList, fiber.Map{
			"Navigation": nav,
			"Error":      "Failed to load users",
			"Search":     search,
		}, handler.BaseLayout)
	}

	totalPages := int((totalCount + int64(pageSize) - 1) / int64(pageSize))
	if totalPages == 0 {
		totalPages = 1
	}

	if page > totalPages {
		page = totalPages
	}

	offset := (page - 1) * pageSize
	if err := tx.Order("id DESC").Limit(pageSize).Offset(offset).Find(&users).Error; err != nil {
		log.Error().Err(err).Msg("query users failed")

		return c.Status(fiber.StatusInternalServerError).Render(TemplateList, fiber.Map{
			"Navigation": nav,
			"Error":      "Failed to load users",
			"Search":     search,
		}, handler.BaseLayout)
	}

	return c.Render(TemplateList, fiber.Map{
		"Navigation":    nav,
		"Users":         users,
		"CurrentUserID": currentUserID(c),
		"Search":        search,
		"Page":          page,
		"PageSize":      pageSize,
		"TotalItems":    totalCount,
		"TotalPages":    totalPages,
		"HasPrev":       page > 1,
		"HasNext":       page < totalPages,
		"PrevPage":      page - 1,
		"NextPage":      page + 1,
	}, handler.BaseLayout)
}

// New shows the creation form.
func (s *Service) New(c *fiber.Ctx) error {
	nav := s.formNav(c, "New User", "New", Path+"/new")

	return c.Render(TemplateForm, fiber.Map{
		"Navigation": nav,
		"User":       models.User{AuthSource: models.AuthSourceLocal, Active: true},
		"IsCreate":   true,
	}, handler.BaseLayout)
}

// Create creates a new user.
func (s *Service) Create(c *fiber.Ctx) error {
	var in Form

	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).Render(TemplateList, fiber.Map{
			"Navigation": s.listNav(c),
			"Error":      "Invalid form data",
		}, handler.BaseLayout)
	}

	if in.AuthSource != string(models.AuthSourceLocal) {
		in.Password = "" // ignore for non-local
	}

	if err := s.validator.Struct(in); err != nil {
		return c.Status(fiber.StatusBadRequest).Render(TemplateList, fiber.Map{
			"Navigation": s.listNav(c),
			"Error":      "Please correct the highlighted errors",
		}, handler.BaseLayout)
	}

	user := models.User{
		Username:   in.Username,
		Email:      in.Email,
		FirstName:  in.FirstName,
		LastName:   in.LastName,
		AuthSource: models.AuthSource(in.AuthSource),
		ExternalID: in.ExternalID,
		Active:     in.Active,
		SiteAdmin:  in.SiteAdmin,
	}

	if in.AuthSource == string(models.AuthSourceLocal) && in.Password != "" {
		user.Password = models.HashPassword(in.Password)
	}

	if err := s.db.Create(&user).Error; err != nil {
		// Unique constraint errors etc.
		return c.Status(fiber.StatusBadRequest).Render(TemplateList, fiber.Map{
			"Navigation": s.listNav(c),
			"Error":      "Failed to create user: " + err.Error(),
		}, handler.BaseLayout)
	}

	log.Info().Str("username", user.Username).Uint64("user_id", user.ID).Msg("user created")

	return c.Redirect(Path)
}

// Edit shows the edit form for a user.
func (s *Service) Edit(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil || id <= 0 {
		return c.Redirect(Path)
	}

	var user models.User
	if err := s.db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Redirect(Path)
		}

		return c.Status(fiber.StatusInternalServerError).Render(TemplateForm, fiber.Map{
			"Error": "Failed to load user",
		}, handler.BaseLayout)
	}

	nav := s.formNav(c, "Edit User", "Edit", Path+"/"+strconv.Itoa(id)+"/edit")

	return c.Render(TemplateForm, fiber.Map{
		"Navigation": nav,
		"User":       user,
		"IsCreate":   false,
	}, handler.BaseLayout)
}

// Update updates a user.
func (s *Service) Update(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil || id <= 0 {
		return c.Redirect(Path)
	}

	var in Form
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).Render(TemplateForm, fiber.Map{
			"Error": "Invalid form data",
		}, handler.BaseLayout)
	}

	if in.AuthSource != string(models.AuthSourceLocal) {
		in.Password = ""
	}

	if err := s.validator.Struct(in); err != nil {
		return c.Status(fiber.StatusBadRequest).Render(TemplateForm, fiber.Map{
			"Error": "Please correct the highlighted errors",
		}, handler.BaseLayout)
	}

	var user models.User
	if err := s.db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Redirect(Path)
		}

		return c.Status(fiber.StatusInternalServerError).Render(TemplateForm, fiber.Map{
			"Error": "Failed to load user",
		}, handler.BaseLayout)
	}

	// an administrator editing their own account cannot drop the flag,
	// otherwise a site could lock itself out
	if user.ID == currentUserID(c) && user.SiteAdmin {
		in.SiteAdmin = true
	}

	user.Username = in.Username
	user.Email = in.Email
	user.FirstName = in.FirstName
	user.LastName = in.LastName
	user.AuthSource = models.AuthSource(in.AuthSource)
	user.ExternalID = in.ExternalID
	user.Active = in.Active
	user.SiteAdmin = in.SiteAdmin

	if in.AuthSource == string(models.AuthSourceLocal) && in.Password != "" {
		user.Password = models.HashPassword(in.Password)
	}

	if err := s.db.Save(&user).Error; err != nil {
		return c.Status(fiber.StatusBadRequest).Render(TemplateForm, fiber.Map{
			"Error": "Failed to update user: " + err.Error(),
		}, handler.BaseLayout)
	}

	log.Info().Str("username", user.Username).Uint64("user_id", user.ID).Msg("user updated")

	return c.Redirect(Path)
}

// Delete removes a user. Enrolments follow through the foreign key cascade.
func (s *Service) Delete(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil || id <= 0 {
		return c.Redirect(Path)
	}

	var user models.User
	if err := s.db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Redirect(Path)
		}

		return c.Status(fiber.StatusInternalServerError).Render(TemplateList, fiber.Map{
			"Navigation": s.listNav(c),
			"Error":      "Failed to load user.",
		}, handler.BaseLayout)
	}

	// Prevent deleting site administrators
	if user.SiteAdmin {
		return c.Status(fiber.StatusForbidden).Render(TemplateList, fiber.Map{
			"Navigation": s.listNav(c),
			"Error":      "Cannot delete site administrators.",
		}, handler.BaseLayout)
	}

	// Prevent a user from deleting themselves
	if currentUserID(c) == user.ID {
		return c.Status(fiber.StatusBadRequest).Render(TemplateList, fiber.Map{
			"Navigation": s.listNav(c),
			"Error":      "You cannot delete your own account.",
		}, handler.BaseLayout)
	}

	if err := s.db.Delete(&models.User{}, id).Error; err != nil {
		return c.Status(fiber.StatusBadRequest).Render(TemplateList, fiber.Map{
			"Navigation": s.listNav(c),
			"Error":      "Failed to delete user: " + err.Error(),
		}, handler.BaseLayout)
	}

	log.Info().Str("username", user.Username).Uint64("user_id", user.ID).Msg("user deleted")

	return c.Redirect(Path)
}

// currentUserID reads the signed-in user from the request session.
func currentUserID(c *fiber.Ctx) uint64 {
	sessionID := c.Cookies("session")
	if sessionID == "" {
		return 0
	}

	sessionData := new(session.Data)
	if err := sessionData.Read(sessionID); err != nil {
		return 0
	}

	return sessionData.User.ID
}

func (s *Service) listNav(c *fiber.Ctx) *navigation.Context {
	currentUser, _ := c.Locals("CurrentUser").(models.User)

	return navigation.NewContext("Users", "admin", "user").
		AddBreadcrumb("Home", courses.Path, false).
		AddBreadcrumb("Admin", "#", false).
		AddBreadcrumb("Users", Path, true).
		WithUser(currentUser.FullName(), currentUser.SiteAdmin)
}

func (s *Service) formNav(c *fiber.Ctx, title, crumb, url string) *navigation.Context {
	currentUser, _ := c.Locals("CurrentUser").(models.User)

	return navigation.NewContext(title, "admin", "user").
		AddBreadcrumb("Home", courses.Path, false).
		AddBreadcrumb("Admin", "#", false).
		AddBreadcrumb("Users", Path, false).
		AddBreadcrumb(crumb, url, true).
		WithUser(currentUser.FullName(), currentUser.SiteAdmin)
}
