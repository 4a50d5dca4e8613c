// Package courses provides the course overview handler, the page users land
// on after signing in.
package courses

import (
	"errors"
	"sort"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/GoCourseNav/GoCourseNav/internal/auth"
	"github.com/GoCourseNav/GoCourseNav/internal/config"
	"github.com/GoCourseNav/GoCourseNav/internal/db/models"
	"github.com/GoCourseNav/GoCourseNav/internal/richtext"
	"github.com/GoCourseNav/GoCourseNav/internal/web/handler"
	"github.com/GoCourseNav/GoCourseNav/internal/web/navigation"
)

const (
	// Path is the path to the course overview page.
	Path = handler.RootPath + "courses"

	// JoinPath is the path for the self enrolment form submission.
	JoinPath = Path + "/join"

	// TemplateName is the name of the course overview template.
	TemplateName = "courses/courses"

	// DefaultPageSize is the default number of courses per page.
	DefaultPageSize = 25

	// TabEnrolled represents the tab listing the user's own courses.
	TabEnrolled = "enrolled"

	// TabBrowse represents the tab listing joinable courses.
	TabBrowse = "browse"

	desc = "desc"
)

// Entry represents a course row for template rendering.
type Entry struct {
	ID          uint64
	Shortname   string
	Fullname    string
	SummaryHTML string
	Role        string
	Hidden      bool
	SelfEnrol   bool
}

// QueryParams holds the query and pagination parameters.
type QueryParams struct {
	Page        int
	PageSize    int
	SearchQuery string
	SortField   string
	SortOrder   string
}

// TabData represents pagination data for a single tab.
type TabData struct {
	Courses     []Entry
	CurrentPage int
	PageSize    int
	TotalItems  int
	TotalPages  int
	HasPrevPage bool
	HasNextPage bool
	PrevPage    int
	NextPage    int
	SearchQuery string
	SortField   string
	SortOrder   string
}

// Data represents the complete course overview data.
type Data struct {
	ActiveTab   string
	EnrolledTab TabData
	BrowseTab   TabData
	JoinError   string
}

// JoinForm is the submitted self enrolment form.
type JoinForm struct {
	Shortname    string `form:"shortname"    validate:"required,max=100"`
	EnrolmentKey string `form:"enrolmentkey" validate:"required"`
}

// Service is the course overview handler service.
type Service struct {
	handler.Service
	cfg       *config.Config
	db        *gorm.DB
	auth      *auth.Service
	validator *validator.Validate
}

// Handler is the course overview handler.
var Handler = Service{}

// Init initializes the course overview handler.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB, authService *auth.Service) {
	if app == nil || cfg == nil || db == nil || authService == nil {
		log.Fatal().Msg(handler.ErrNilACDFatalLogMsg)
		return
	}

	s.db = db
	s.cfg = cfg
	s.auth = authService
	s.validator = validator.New()

	app.Get(Path, s.Get)
	app.Post(JoinPath, s.Join)
}

// Get handles the course overview page rendering.
func (s *Service) Get(c *fiber.Ctx) error {
	return s.render(c, fiber.StatusOK, "")
}

// Join handles the self enrolment form submission. The course is addressed
// by shortname and guarded by its enrolment key; successful joins enrol the
// user as a student and continue straight into the course.
func (s *Service) Join(c *fiber.Ctx) error {
	form := new(JoinForm)

	if err := c.BodyParser(form); err != nil {
		return s.render(c, fiber.StatusBadRequest, ErrInvalidJoinForm.Error())
	}

	if err := s.validator.Struct(form); err != nil {
		return s.render(c, fiber.StatusBadRequest, ErrInvalidJoinForm.Error())
	}

	var courseRow models.Course

	err := s.db.Where("shortname = ?", form.Shortname).First(&courseRow).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		// unknown shortname and wrong key read the same to the outside
		return s.render(c, fiber.StatusNotFound, ErrJoinRejected.Error())
	}

	if err != nil {
		log.Error().Err(err).Msg("failed to look up course for self enrolment")

		return s.render(c, fiber.StatusInternalServerError, ErrInternalServerError.Error())
	}

	if !joinable(&courseRow, form.EnrolmentKey) {
		return s.render(c, fiber.StatusForbidden, ErrJoinRejected.Error())
	}

	userID := auth.UserIDFromContext(c)
	if userID == 0 {
		return c.Status(fiber.StatusUnauthorized).SendString("Unauthorized")
	}

	if err := s.auth.Enrol(userID, courseRow.ID, models.CourseRoleStudent); err != nil {
		log.Error().Err(err).Uint64("user_id", userID).Uint64("course_id", courseRow.ID).
			Msg("failed to enrol user")

		return s.render(c, fiber.StatusInternalServerError, ErrInternalServerError.Error())
	}

	log.Info().Uint64("user_id", userID).Uint64("course_id", courseRow.ID).
		Str("shortname", courseRow.Shortname).Msg("user self-enrolled in course")

	return c.Redirect("/course/view?id=" + strconv.FormatUint(courseRow.ID, 10))
}

func (s *Service) render(c *fiber.Ctx, status int, joinError string) error {
	user, _ := c.Locals("CurrentUser").(models.User)

	nav := navigation.NewContext("Courses", "courses", "courses").
		AddBreadcrumb("Home", Path, false).
		AddBreadcrumb("Courses", Path, true).
		WithUser(user.FullName(), user.SiteAdmin)

	activeTab := c.Query("tab", TabEnrolled)
	if activeTab != TabEnrolled && activeTab != TabBrowse {
		activeTab = TabEnrolled
	}

	params := QueryParams{
		Page:        c.QueryInt("page", 1),
		PageSize:    c.QueryInt("pageSize", DefaultPageSize),
		SearchQuery: c.Query("search", ""),
		SortField:   c.Query("sort", "shortname"),
		SortOrder:   c.Query("order", "asc"),
	}

	if params.Page < 1 {
		params.Page = 1
	}

	if params.PageSize < 1 || params.PageSize > 100 {
		params.PageSize = DefaultPageSize
	}

	enrolled, browse, err := s.loadEntries(user.ID)
	if err != nil {
		log.Error().Err(err).Msg("failed to load course overview")

		return c.Status(fiber.StatusInternalServerError).SendString("Failed to load courses: " + err.Error())
	}

	var entries []Entry

	switch activeTab {
	case TabBrowse:
		entries = browse
	default:
		entries = enrolled
	}

	entries = filterCourses(entries, params.SearchQuery)
	sortCourses(entries, params.SortField, params.SortOrder)

	paginated, totalPages, actualPage := paginateCourses(entries, params.Page, params.PageSize)
	totalItems := len(entries)

	params.Page = actualPage
	tabData := buildTabData(paginated, totalPages, &params)
	tabData.TotalItems = totalItems

	data := Data{
		ActiveTab: activeTab,
		JoinError: joinError,
	}

	switch activeTab {
	case TabBrowse:
		data.BrowseTab = tabData
		data.EnrolledTab.TotalItems = len(enrolled)
	default:
		data.EnrolledTab = tabData
		data.BrowseTab.TotalItems = len(browse)
	}

	log.Debug().
		Int("enrolled_courses", len(enrolled)).
		Int("browse_courses", len(browse)).
		Str("active_tab", activeTab).
		Int("page", params.Page).
		Str("search", params.SearchQuery).
		Msg("Course overview retrieved successfully")

	return c.Status(status).Render(TemplateName, fiber.Map{
		"Navigation": nav,
		"Data":       data,
	}, handler.BaseLayout)
}

// loadEntries loads and categorizes all courses for the user: their own
// enrolments on one tab, everything else they could join on the other.
func (s *Service) loadEntries(userID uint64) (enrolled, browse []Entry, err error) {
	var courseRows []models.Course

	if err := s.db.Find(&courseRows).Error; err != nil {
		return nil, nil, err
	}

	var enrolments []models.Enrolment

	if err := s.db.Where("user_id = ?", userID).Find(&enrolments).Error; err != nil {
		return nil, nil, err
	}

	roles := make(map[uint64]models.CourseRole, len(enrolments))
	for _, enrolment := range enrolments {
		roles[enrolment.CourseID] = enrolment.Role
	}

	isAdmin, err := s.auth.IsSiteAdmin(userID)
	if err != nil {
		return nil, nil, err
	}

	enrolled = make([]Entry, 0)
	browse = make([]Entry, 0)

	for i := range courseRows {
		courseRow := &courseRows[i]
		role, isEnrolled := roles[courseRow.ID]

		// hidden courses stay off the page for everyone who cannot see
		// hidden content
		seesHidden := isAdmin || role == models.CourseRoleTeacher
		if !courseRow.Visible && !seesHidden {
			continue
		}

		entry := Entry{
			ID:          courseRow.ID,
			Shortname:   courseRow.Shortname,
			Fullname:    courseRow.Fullname,
			SummaryHTML: richtext.Render(courseRow.Summary, richtext.Format(courseRow.SummaryFormat)),
			Hidden:      !courseRow.Visible,
		}

		if isEnrolled {
			entry.Role = string(role)
			enrolled = append(enrolled, entry)

			continue
		}

		entry.SelfEnrol = courseRow.EnrolmentKey != ""
		browse = append(browse, entry)
	}

	return enrolled, browse, nil
}

// joinable reports whether the course accepts the self enrolment attempt.
func joinable(courseRow *models.Course, enrolmentKey string) bool {
	if !courseRow.Visible {
		return false
	}

	if courseRow.EnrolmentKey == "" {
		return false
	}

	return courseRow.EnrolmentKey == enrolmentKey
}

// filterCourses applies the search filter to course entries.
func filterCourses(entries []Entry, searchQuery string) []Entry {
	if searchQuery == "" {
		return entries
	}

	query := strings.ToLower(searchQuery)
	filtered := make([]Entry, 0)

	for _, entry := range entries {
		if strings.Contains(strings.ToLower(entry.Shortname), query) ||
			strings.Contains(strings.ToLower(entry.Fullname), query) {
			filtered = append(filtered, entry)
		}
	}

	return filtered
}

// sortCourses sorts course entries by the specified field and order.
func sortCourses(entries []Entry, sortField, sortOrder string) {
	switch sortField {
	case "shortname":
		sort.Slice(entries, func(i, j int) bool {
			if sortOrder == desc {
				return strings.ToLower(entries[i].Shortname) > strings.ToLower(entries[j].Shortname)
			}

			return strings.ToLower(entries[i].Shortname) < strings.ToLower(entries[j].Shortname)
		})
	case "fullname":
		sort.Slice(entries, func(i, j int) bool {
			if sortOrder == desc {
				return strings.ToLower(entries[i].Fullname) > strings.ToLower(entries[j].Fullname)
			}

			return strings.ToLower(entries[i].Fullname) < strings.ToLower(entries[j].Fullname)
		})
	case "role":
		sort.Slice(entries, func(i, j int) bool {
			if sortOrder == desc {
				return entries[i].Role > entries[j].Role
			}

			return entries[i].Role < entries[j].Role
		})
	}
}

// paginateCourses calculates pagination and returns the page slice.
func paginateCourses(entries []Entry, page, pageSize int) (paginated []Entry, totalPages, actualPage int) {
	var (
		totalItems = len(entries)
	)

	totalPages = (totalItems + pageSize - 1) / pageSize

	if totalPages < 1 {
		totalPages = 1
	}

	if page > totalPages {
		page = totalPages
	}

	var (
		startIdx = (page - 1) * pageSize
		endIdx   = startIdx + pageSize
	)

	if endIdx > totalItems {
		endIdx = totalItems
	}

	if startIdx < totalItems {
		paginated = entries[startIdx:endIdx]
	} else {
		paginated = []Entry{}
	}

	return paginated, totalPages, page
}

// buildTabData creates TabData with pagination information.
func buildTabData(entries []Entry, totalPages int, params *QueryParams) TabData {
	return TabData{
		Courses:     entries,
		CurrentPage: params.Page,
		PageSize:    params.PageSize,
		TotalItems:  len(entries),
		TotalPages:  totalPages,
		HasPrevPage: params.Page > 1,
		HasNextPage: params.Page < totalPages,
		PrevPage:    params.Page - 1,
		NextPage:    params.Page + 1,
		SearchQuery: params.SearchQuery,
		SortField:   params.SortField,
		SortOrder:   params.SortOrder,
	}
}
