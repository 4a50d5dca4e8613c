// Package configuration provides the read-only admin page showing the
// portal's effective configuration: the flattened config values after env
// overrides and defaults, plus the course format table.
package configuration

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

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
	// Path is the base path for the server configuration page.
	Path = handler.RootPath + "admin/server/configuration"

	// TemplateName is the name of the server configuration template.
	TemplateName = "admin/server/configuration"

	// DefaultPageSize is the default number of items per page.
	DefaultPageSize = 25
)

// Service is the server configuration handler service.
type Service struct {
	handler.Service
	cfg *config.Config
	db  *gorm.DB
}

// Data represents the data passed to the template.
type Data struct {
	Settings    []ConfigSetting
	Formats     []FormatRow
	CurrentPage int
	PageSize    int
	TotalItems  int
	TotalPages  int
	HasPrevPage bool
	HasNextPage bool
	PrevPage    int
	NextPage    int
	SearchQuery string
}

// ConfigSetting represents one flattened configuration value.
type ConfigSetting struct {
	Name  string
	Value string
}

// FormatRow represents one course format for the format table.
type FormatRow struct {
	ID           string
	Name         string
	UsesSections bool
	SectionNoun  string
	Weekly       bool
}

var (
	// Handler is the server configuration handler.
	Handler = Service{}
)

// secretKeys are configuration names whose values never reach the page.
var secretKeys = []string{"password", "secret", "key", "salt"}

// Init initializes the server configuration handler.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB, authService *auth.Service) {
	if app == nil || cfg == nil || db == nil {
		log.Fatal().Msg(handler.ErrNilACDFatalLogMsg)
		return
	}

	s.db = db
	s.cfg = cfg

	// register routes with capability checks
	app.Get(Path,
		auth.RequireSiteCapability(authService, auth.CapSiteConfig),
		s.Get,
	)
}

// Get handles the server configuration page rendering with pagination.
func (s *Service) Get(c *fiber.Ctx) error {
	currentUser, _ := c.Locals("CurrentUser").(models.User)

	nav := navigation.NewContext("Server Configuration", "admin", "configuration").
		AddBreadcrumb("Home", courses.Path, false).
		AddBreadcrumb("Admin", "#", false).
		AddBreadcrumb("Configuration", Path, true).
		WithUser(currentUser.FullName(), currentUser.SiteAdmin)

	settings, err := flattenConfig(s.cfg)
	if err != nil {
		log.Error().Err(err).Msg("failed to flatten configuration")

		return c.Status(fiber.StatusInternalServerError).Render(TemplateName, fiber.Map{
			"Navigation": nav,
			"Error":      "Failed to read configuration",
		}, handler.BaseLayout)
	}

	// Parse query params
	page, pageSize := getPaginationParams(c)
	searchQuery := c.Query("search", "")

	if searchQuery != "" {
		filtered := make([]ConfigSetting, 0, len(settings))

		for _, setting := range settings {
			if containsIgnoreCase(setting.Name, searchQuery) || containsIgnoreCase(setting.Value, searchQuery) {
				filtered = append(filtered, setting)
			}
		}

		settings = filtered
	}

	// Pagination
	totalItems := len(settings)
	totalPages, page := computeTotalPagesAndAdjust(totalItems, pageSize, page)
	startIdx, endIdx := pageSliceBounds(totalItems, pageSize, page)
	paginated := settings[startIdx:endIdx]

	data := Data{
		Settings:    paginated,
		Formats:     formatRows(s.cfg),
		CurrentPage: page,
		PageSize:    pageSize,
		TotalItems:  totalItems,
		TotalPages:  totalPages,
		HasPrevPage: page > 1,
		HasNextPage: page < totalPages,
		PrevPage:    page - 1,
		NextPage:    page + 1,
		SearchQuery: searchQuery,
	}

	log.Debug().
		Int("total_settings", totalItems).
		Int("page", page).
		Str("search", searchQuery).
		Msg("Server configuration retrieved successfully")

	return c.Render(TemplateName, fiber.Map{
		"Navigation": nav,
		"Data":       data,
	}, handler.BaseLayout)
}

// flattenConfig turns the nested config document into sorted name/value
// pairs, redacting everything that looks like a credential.
func flattenConfig(cfg *config.Config) ([]ConfigSetting, error) {
	dump, err := config.DumpConfigJSON(cfg)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}

	var tree map[string]any
	if err := json.Unmarshal([]byte(dump), &tree); err != nil {
		return nil, err //nolint:wrapcheck
	}

	settings := make([]ConfigSetting, 0)
	flattenInto(&settings, "", tree)

	sort.Slice(settings, func(i, j int) bool {
		return settings[i].Name < settings[j].Name
	})

	return settings, nil
}

func flattenInto(out *[]ConfigSetting, prefix string, node map[string]any) {
	for name, value := range node {
		fullName := name
		if prefix != "" {
			fullName = prefix + "." + name
		}

		if child, ok := value.(map[string]any); ok {
			flattenInto(out, fullName, child)

			continue
		}

		*out = append(*out, ConfigSetting{
			Name:  fullName,
			Value: redact(fullName, fmt.Sprintf("%v", value)),
		})
	}
}

// redact hides values of credential-like settings.
func redact(name, value string) string {
	if value == "" {
		return value
	}

	lower := strings.ToLower(name)
	for _, secret := range secretKeys {
		if strings.Contains(lower, secret) {
			return "********"
		}
	}

	return value
}

// formatRows builds the course format table in stable order.
func formatRows(cfg *config.Config) []FormatRow {
	rows := make([]FormatRow, 0, len(cfg.Format))

	for id, settings := range cfg.Format {
		rows = append(rows, FormatRow{
			ID:           id,
			Name:         settings.Name,
			UsesSections: settings.UsesSections,
			SectionNoun:  settings.SectionNoun,
			Weekly:       settings.Weekly,
		})
	}

	sort.Slice(rows, func(i, j int) bool {
		return rows[i].ID < rows[j].ID
	})

	return rows
}

// getPaginationParams parses and normalizes page and pageSize query parameters.
func getPaginationParams(c *fiber.Ctx) (int, int) {
	page := c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}

	pageSize := c.QueryInt("pageSize", DefaultPageSize)
	if pageSize < 1 || pageSize > 100 {
		pageSize = DefaultPageSize
	}

	return page, pageSize
}

// computeTotalPagesAndAdjust computes total pages and adjusts the page into range.
func computeTotalPagesAndAdjust(totalItems, pageSize, page int) (int, int) {
	totalPages := (totalItems + pageSize - 1) / pageSize
	if totalPages < 1 {
		totalPages = 1
	}

	if page > totalPages {
		page = totalPages
	}

	return totalPages, page
}

// pageSliceBounds calculates start and end indices for slicing a page.
func pageSliceBounds(totalItems, pageSize, page int) (int, int) {
	startIdx := (page - 1) * pageSize

	endIdx := startIdx + pageSize
	if endIdx > totalItems {
		endIdx = totalItems
	}

	if startIdx < 0 {
		startIdx = 0
	}

	if startIdx > endIdx {
		startIdx = endIdx
	}

	return startIdx, endIdx
}

// containsIgnoreCase checks if a string contains a substring, case-insensitive.
func containsIgnoreCase(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
