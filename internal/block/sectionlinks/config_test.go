package sectionlinks

import (
	"encoding/json"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/GoCourseNav/GoCourseNav/internal/block"
	"github.com/GoCourseNav/GoCourseNav/internal/db/models"
)

// setupTestDB creates an in-memory SQLite database for testing.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err, "failed to create test database")

	err = db.AutoMigrate(&models.Setting{})
	require.NoError(t, err, "failed to migrate test database")

	return db
}

func boolPtr(b bool) *bool { return &b }

func TestSettings_Effective(t *testing.T) {
	site := Settings{
		Autotitle:         block.ForcedOff,
		DisplayCourseLink: block.ForcedOn,
		HideSection0:      block.OptionalOff,
		EnumerateSection0: block.OptionalOn,
		Enumerate:         block.OptionalOn,
		CourseLinkText:    "Overview",
	}

	tests := []struct {
		name      string
		overrides *Overrides
		want      Effective
	}{
		{
			name:      "no instance config keeps defaults",
			overrides: nil,
			want: Effective{
				Autotitle:         false,
				DisplayCourseLink: true,
				HideSection0:      false,
				EnumerateSection0: true,
				Enumerate:         true,
				CourseLinkText:    "Overview",
			},
		},
		{
			name: "optional toggles follow the override",
			overrides: &Overrides{
				HideSection0:      boolPtr(true),
				EnumerateSection0: boolPtr(false),
				Enumerate:         boolPtr(false),
			},
			want: Effective{
				Autotitle:         false,
				DisplayCourseLink: true,
				HideSection0:      true,
				EnumerateSection0: false,
				Enumerate:         false,
				CourseLinkText:    "Overview",
			},
		},
		{
			name: "forced toggles ignore the override",
			overrides: &Overrides{
				Autotitle:         boolPtr(true),
				DisplayCourseLink: boolPtr(false),
			},
			want: Effective{
				Autotitle:         false,
				DisplayCourseLink: true,
				EnumerateSection0: true,
				Enumerate:         true,
				CourseLinkText:    "Overview",
			},
		},
		{
			name: "override of false differs from no override",
			overrides: &Overrides{
				EnumerateSection0: boolPtr(false),
			},
			want: Effective{
				DisplayCourseLink: true,
				EnumerateSection0: false,
				Enumerate:         true,
				CourseLinkText:    "Overview",
			},
		},
		{
			name:      "instance label wins over the site label",
			overrides: &Overrides{CourseLinkText: "Start here"},
			want: Effective{
				DisplayCourseLink: true,
				EnumerateSection0: true,
				Enumerate:         true,
				CourseLinkText:    "Start here",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, site.Effective(tt.overrides))
		})
	}
}

func TestLoadSettings(t *testing.T) {
	t.Run("missing row yields defaults", func(t *testing.T) {
		db := setupTestDB(t)

		assert.Equal(t, DefaultSettings(), LoadSettings(db))
	})

	t.Run("round trip", func(t *testing.T) {
		db := setupTestDB(t)

		stored := DefaultSettings()
		stored.HideSection0 = block.ForcedOn
		stored.CourseLinkText = "Overview"

		require.NoError(t, SaveSettings(db, stored))

		assert.Equal(t, stored, LoadSettings(db))
	})

	t.Run("malformed blob yields defaults", func(t *testing.T) {
		db := setupTestDB(t)

		err := db.Create(&models.Setting{Name: SettingName, Value: []byte("{broken")}).Error
		require.NoError(t, err)

		assert.Equal(t, DefaultSettings(), LoadSettings(db))
	})

	t.Run("unknown toggle values reset to defaults", func(t *testing.T) {
		db := setupTestDB(t)

		err := db.Create(&models.Setting{
			Name:  SettingName,
			Value: []byte(`{"autotitle":"sometimes","enumerate":"forced_on"}`),
		}).Error
		require.NoError(t, err)

		got := LoadSettings(db)
		assert.Equal(t, DefaultSettings().Autotitle, got.Autotitle)
		assert.Equal(t, block.ForcedOn, got.Enumerate)
	})
}

func TestParseOverrides(t *testing.T) {
	t.Run("empty blob means unconfigured", func(t *testing.T) {
		for _, blob := range [][]byte{nil, {}} {
			got, err := ParseOverrides(blob)
			require.NoError(t, err)
			assert.Nil(t, got)
		}
	})

	t.Run("absent field stays nil", func(t *testing.T) {
		got, err := ParseOverrides([]byte(`{"hideSection0":false}`))
		require.NoError(t, err)

		require.NotNil(t, got)
		require.NotNil(t, got.HideSection0)
		assert.False(t, *got.HideSection0)
		assert.Nil(t, got.Enumerate)
	})

	t.Run("broken blob errors", func(t *testing.T) {
		_, err := ParseOverrides([]byte("{broken"))
		assert.Error(t, err)
	})
}

func TestEncodeOverrides(t *testing.T) {
	t.Run("nil encodes to nil", func(t *testing.T) {
		blob, err := EncodeOverrides(nil)
		require.NoError(t, err)
		assert.Nil(t, blob)
	})

	t.Run("nil fields stay absent", func(t *testing.T) {
		blob, err := EncodeOverrides(&Overrides{HideSection0: boolPtr(false)})
		require.NoError(t, err)

		var raw map[string]json.RawMessage
		require.NoError(t, json.Unmarshal(blob, &raw))

		assert.Contains(t, raw, "hideSection0")
		assert.NotContains(t, raw, "enumerate")
		assert.NotContains(t, raw, "autotitle")
	})
}
