package sectionlinks

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/GoCourseNav/GoCourseNav/internal/auth"
	"github.com/GoCourseNav/GoCourseNav/internal/block"
	blk "github.com/GoCourseNav/GoCourseNav/internal/block/sectionlinks"
	"github.com/GoCourseNav/GoCourseNav/internal/config"
	"github.com/GoCourseNav/GoCourseNav/internal/db/models"
	websess "github.com/GoCourseNav/GoCourseNav/internal/web/session"
)

// setupTestDB creates an in-memory SQLite database for testing.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err, "failed to create test database")

	err = db.AutoMigrate(&models.User{}, &models.Enrolment{}, &models.Setting{})
	require.NoError(t, err, "failed to migrate test database")

	return db
}

// testStorage is a minimal in-memory implementation of storage.Storage for tests.
type testStorage struct {
	mu   sync.RWMutex
	data map[string][]byte
}

var _ storage.Storage = (*testStorage)(nil)

func (s *testStorage) Get(key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v := s.data[key]
	out := make([]byte, len(v))
	copy(out, v)

	return out, nil
}

func (s *testStorage) Set(key string, val []byte, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.data == nil {
		s.data = make(map[string][]byte)
	}

	buf := make([]byte, len(val))
	copy(buf, val)
	s.data[key] = buf

	return nil
}

func (s *testStorage) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.data, key)

	return nil
}

func (s *testStorage) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data = make(map[string][]byte)

	return nil
}

func (s *testStorage) Close() error { return nil }

// mockTemplateEngine renders nothing, requests just need a 200.
type mockTemplateEngine struct{}

func (m *mockTemplateEngine) Load() error {
	return nil
}

func (m *mockTemplateEngine) Render(_ io.Writer, _ string, binding interface{}, _ ...string) error {
	if data, ok := binding.(fiber.Map); ok {
		if _, hasToggles := data["Toggles"]; hasToggles {
			return nil
		}
	}

	return fiber.ErrInternalServerError
}

func newTestService(t *testing.T) (*gorm.DB, *fiber.App) {
	t.Helper()

	db := setupTestDB(t)
	authService := auth.NewService(db)

	service := &Service{
		cfg:       &config.Config{},
		db:        db,
		validator: validator.New(),
	}

	app := fiber.New(fiber.Config{
		Views: &mockTemplateEngine{},
	})

	// the real routes carry the site capability guard, so does the test app
	app.Get(Path, auth.RequireSiteCapability(authService, auth.CapSiteConfig), service.Get)
	app.Post(Path, auth.RequireSiteCapability(authService, auth.CapSiteConfig), service.Post)

	websess.Init(&testStorage{data: make(map[string][]byte)})

	return db, app
}

// signIn stores a session for the user and returns the cookie value.
func signIn(t *testing.T, user *models.User) string {
	t.Helper()

	sessionID, err := websess.GenerateSessionID()
	require.NoError(t, err)

	data := &websess.Data{User: *user}
	require.NoError(t, data.Write(sessionID, time.Minute))

	return sessionID
}

func seedUsers(t *testing.T, db *gorm.DB) (*models.User, *models.User) {
	t.Helper()

	admin := &models.User{Username: "admin", Email: "admin@example.com", Active: true, SiteAdmin: true}
	require.NoError(t, db.Create(admin).Error)

	user := &models.User{Username: "user", Email: "user@example.com", Active: true}
	require.NoError(t, db.Create(user).Error)

	return admin, user
}

func TestService_Get_AsAdmin(t *testing.T) {
	db, app := newTestService(t)
	admin, _ := seedUsers(t, db)

	req := httptest.NewRequest(http.MethodGet, Path, nil)
	req.Header.Set("Cookie", "session="+signIn(t, admin))

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer func() {
		_ = resp.Body.Close()
	}()

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestService_Get_AsRegularUserForbidden(t *testing.T) {
	db, app := newTestService(t)
	_, user := seedUsers(t, db)

	req := httptest.NewRequest(http.MethodGet, Path, nil)
	req.Header.Set("Cookie", "session="+signIn(t, user))

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer func() {
		_ = resp.Body.Close()
	}()

	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestService_Post_StoresSettings(t *testing.T) {
	db, app := newTestService(t)
	admin, _ := seedUsers(t, db)

	formData := "autotitle=forced_off&displaycourselink=optional_on&hidesection0=forced_on" +
		"&enumeratesection0=optional_off&enumerate=optional_on&courselinktext=Course home"
	req := httptest.NewRequest(http.MethodPost, Path, strings.NewReader(formData))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Cookie", "session="+signIn(t, admin))

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer func() {
		_ = resp.Body.Close()
	}()

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	stored := blk.LoadSettings(db)
	assert.Equal(t, block.ForcedOff, stored.Autotitle)
	assert.Equal(t, block.ForcedOn, stored.HideSection0)
	assert.Equal(t, block.OptionalOn, stored.Enumerate)
	assert.Equal(t, "Course home", stored.CourseLinkText)
}

func TestService_Post_InvalidState(t *testing.T) {
	db, app := newTestService(t)
	admin, _ := seedUsers(t, db)

	formData := "autotitle=sometimes&displaycourselink=optional_on&hidesection0=optional_off" +
		"&enumeratesection0=optional_off&enumerate=optional_on"
	req := httptest.NewRequest(http.MethodPost, Path, strings.NewReader(formData))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Cookie", "session="+signIn(t, admin))

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer func() {
		_ = resp.Body.Close()
	}()

	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	// nothing was stored, the loader still answers with the defaults
	assert.Equal(t, blk.DefaultSettings(), blk.LoadSettings(db))
}

func TestSettingsFromForm(t *testing.T) {
	form := &Form{
		Autotitle:         "forced_on",
		DisplayCourseLink: "optional_off",
		HideSection0:      "optional_on",
		EnumerateSection0: "forced_off",
		Enumerate:         "optional_on",
		CourseLinkText:    "Overview",
	}

	settings := settingsFromForm(form)

	assert.Equal(t, block.ForcedOn, settings.Autotitle)
	assert.Equal(t, block.OptionalOff, settings.DisplayCourseLink)
	assert.Equal(t, block.OptionalOn, settings.HideSection0)
	assert.Equal(t, block.ForcedOff, settings.EnumerateSection0)
	assert.Equal(t, "Overview", settings.CourseLinkText)
}

func TestToggleRows(t *testing.T) {
	settings := blk.DefaultSettings()
	settings.HideSection0 = block.ForcedOn

	rows := toggleRows(settings)

	require.Len(t, rows, 5)
	assert.Equal(t, "autotitle", rows[0].Field)
	assert.Equal(t, block.OptionalOn, rows[0].Value)
	assert.Equal(t, "hidesection0", rows[2].Field)
	assert.Equal(t, block.ForcedOn, rows[2].Value)
}
