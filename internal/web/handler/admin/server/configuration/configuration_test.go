package configuration

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GoCourseNav/GoCourseNav/internal/config"
)

func TestFlattenConfig(t *testing.T) {
	cfg := &config.Config{
		Title:   "Test Portal",
		DevMode: true,
	}
	cfg.Webserver.Port = 8080
	cfg.Webserver.URL = "http://localhost:8080"
	cfg.DB.Password = "supersecret"

	settings, err := flattenConfig(cfg)
	require.NoError(t, err)
	require.NotEmpty(t, settings)

	byName := make(map[string]string, len(settings))
	for _, s := range settings {
		byName[s.Name] = s.Value
	}

	assert.Equal(t, "Test Portal", byName["Title"])
	assert.Equal(t, "8080", byName["Webserver.Port"])
	assert.Equal(t, "********", byName["DB.Password"], "credentials are redacted")

	// output is sorted by name
	for i := 1; i < len(settings); i++ {
		assert.Less(t, settings[i-1].Name, settings[i].Name)
	}
}

func TestRedact(t *testing.T) {
	tests := []struct {
		name     string
		key      string
		value    string
		expected string
	}{
		{"plain value", "Webserver.Port", "8080", "8080"},
		{"password", "DB.Password", "hunter2", "********"},
		{"client secret", "Auth.OIDC.ClientSecret", "abc", "********"},
		{"encryption key", "Webserver.CookieEncryptionKey", "abc", "********"},
		{"salt", "Webserver.Argon2Salt", "abc", "********"},
		{"empty secret stays empty", "DB.Password", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, redact(tt.key, tt.value))
		})
	}
}

func TestFormatRows(t *testing.T) {
	cfg := &config.Config{
		Format: config.Format{
			"weeks":  {Name: "Weekly", UsesSections: true, SectionNoun: "week", Weekly: true},
			"topics": {Name: "Topics", UsesSections: true, SectionNoun: "topic"},
			"social": {Name: "Social", UsesSections: false, SectionNoun: "topic"},
		},
	}

	rows := formatRows(cfg)
	require.Len(t, rows, 3)

	// stable ID order
	assert.Equal(t, "social", rows[0].ID)
	assert.Equal(t, "topics", rows[1].ID)
	assert.Equal(t, "weeks", rows[2].ID)

	assert.False(t, rows[0].UsesSections)
	assert.True(t, rows[2].Weekly)
}

func TestComputeTotalPagesAndAdjust(t *testing.T) {
	tests := []struct {
		name          string
		totalItems    int
		pageSize      int
		page          int
		expectedPages int
		expectedPage  int
	}{
		{"empty still has one page", 0, 25, 1, 1, 1},
		{"exact fit", 50, 25, 2, 2, 2},
		{"remainder adds a page", 51, 25, 1, 3, 1},
		{"page beyond range clamps", 10, 25, 9, 1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pages, page := computeTotalPagesAndAdjust(tt.totalItems, tt.pageSize, tt.page)
			assert.Equal(t, tt.expectedPages, pages)
			assert.Equal(t, tt.expectedPage, page)
		})
	}
}

func TestPageSliceBounds(t *testing.T) {
	start, end := pageSliceBounds(10, 25, 1)
	assert.Equal(t, 0, start)
	assert.Equal(t, 10, end)

	start, end = pageSliceBounds(60, 25, 3)
	assert.Equal(t, 50, start)
	assert.Equal(t, 60, end)

	start, end = pageSliceBounds(0, 25, 1)
	assert.Equal(t, 0, start)
	assert.Equal(t, 0, end)
}

func TestContainsIgnoreCase(t *testing.T) {
	assert.True(t, containsIgnoreCase("Webserver.Port", "port"))
	assert.True(t, containsIgnoreCase("Topics", "TOP"))
	assert.False(t, containsIgnoreCase("Topics", "weeks"))
	assert.True(t, containsIgnoreCase("anything", ""))
}
