// Package sectionlinks implements the section links block, a navigation
// widget listing the sections of one course.
//
// Display behaviour is controlled by five toggles. The site administrator
// stores a block.Toggle per feature as the site wide default; a course
// teacher can override the optional ones per block instance with a plain
// boolean. An override of literal false is distinct from no override.
package sectionlinks

import (
	"encoding/json"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/GoCourseNav/GoCourseNav/internal/block"
	"github.com/GoCourseNav/GoCourseNav/internal/db/controller/setting"
)

// BlockType identifies this block in block instance rows.
const BlockType = "sectionlinks"

// SettingName is the settings store key of the site wide defaults.
const SettingName = "block_" + BlockType

// Settings are the site wide defaults for every section links block.
type Settings struct {
	// Autotitle derives missing section titles from the section summary.
	Autotitle block.Toggle `json:"autotitle" validate:"oneof=forced_off forced_on optional_off optional_on"`
	// DisplayCourseLink puts a link to the course itself above the sections.
	DisplayCourseLink block.Toggle `json:"displayCourseLink" validate:"oneof=forced_off forced_on optional_off optional_on"`
	// HideSection0 drops the general section from the list.
	HideSection0 block.Toggle `json:"hideSection0" validate:"oneof=forced_off forced_on optional_off optional_on"`
	// EnumerateSection0 gives the general section a number of its own.
	EnumerateSection0 block.Toggle `json:"enumerateSection0" validate:"oneof=forced_off forced_on optional_off optional_on"`
	// Enumerate shows a number badge before each section title.
	Enumerate block.Toggle `json:"enumerate" validate:"oneof=forced_off forced_on optional_off optional_on"`
	// CourseLinkText is the default label of the course link, empty falls
	// back to the course short name.
	CourseLinkText string `json:"courseLinkText" validate:"max=255"`
}

// Overrides are the per instance values a teacher can store for one block.
// A nil field keeps the site wide default.
type Overrides struct {
	Autotitle         *bool  `json:"autotitle,omitempty"`
	DisplayCourseLink *bool  `json:"displayCourseLink,omitempty"`
	HideSection0      *bool  `json:"hideSection0,omitempty"`
	EnumerateSection0 *bool  `json:"enumerateSection0,omitempty"`
	Enumerate         *bool  `json:"enumerate,omitempty"`
	CourseLinkText    string `json:"courseLinkText,omitempty"`
}

// Effective holds the resolved booleans one render works with.
type Effective struct {
	Autotitle         bool
	DisplayCourseLink bool
	HideSection0      bool
	EnumerateSection0 bool
	Enumerate         bool
	// CourseLinkText is the instance label, else the site wide label.
	// Empty means the renderer uses the course short name.
	CourseLinkText string
}

// DefaultSettings returns the stock configuration of a fresh site.
func DefaultSettings() Settings {
	return Settings{
		Autotitle:         block.OptionalOn,
		DisplayCourseLink: block.OptionalOn,
		HideSection0:      block.OptionalOff,
		EnumerateSection0: block.OptionalOff,
		Enumerate:         block.OptionalOn,
	}
}

// Effective resolves every toggle against the given instance overrides.
func (s Settings) Effective(o *Overrides) Effective {
	if o == nil {
		o = &Overrides{}
	}

	text := o.CourseLinkText
	if text == "" {
		text = s.CourseLinkText
	}

	return Effective{
		Autotitle:         s.Autotitle.Resolve(o.Autotitle),
		DisplayCourseLink: s.DisplayCourseLink.Resolve(o.DisplayCourseLink),
		HideSection0:      s.HideSection0.Resolve(o.HideSection0),
		EnumerateSection0: s.EnumerateSection0.Resolve(o.EnumerateSection0),
		Enumerate:         s.Enumerate.Resolve(o.Enumerate),
		CourseLinkText:    text,
	}
}

// normalize resets unknown toggle values to their defaults so a hand edited
// settings row can not break rendering.
func (s *Settings) normalize() {
	defaults := DefaultSettings()

	if !s.Autotitle.Valid() {
		s.Autotitle = defaults.Autotitle
	}

	if !s.DisplayCourseLink.Valid() {
		s.DisplayCourseLink = defaults.DisplayCourseLink
	}

	if !s.HideSection0.Valid() {
		s.HideSection0 = defaults.HideSection0
	}

	if !s.EnumerateSection0.Valid() {
		s.EnumerateSection0 = defaults.EnumerateSection0
	}

	if !s.Enumerate.Valid() {
		s.Enumerate = defaults.Enumerate
	}
}

// LoadSettings reads the site wide defaults from the settings store.
// A missing row, an unreadable blob or unknown toggle values fall back to
// the defaults, the block never fails to render over configuration.
func LoadSettings(db *gorm.DB) Settings {
	defaults := DefaultSettings()

	row, err := setting.Get(db, SettingName)
	if err != nil {
		if !errors.Is(err, setting.ErrSettingNotFound) {
			log.Warn().Err(err).Str("setting", SettingName).Msg("can't read block settings, using defaults")
		}

		return defaults
	}

	s := defaults
	if err := json.Unmarshal(row.Value, &s); err != nil {
		log.Warn().Err(err).Str("setting", SettingName).Msg("block settings malformed, using defaults")

		return defaults
	}

	s.normalize()

	return s
}

// SaveSettings stores the site wide defaults in the settings store.
func SaveSettings(db *gorm.DB, s Settings) error {
	value, err := json.Marshal(s)
	if err != nil {
		return errors.Wrap(err, "failed to encode block settings")
	}

	if _, err := setting.Set(db, SettingName, value); err != nil {
		return errors.Wrap(err, "failed to store block settings")
	}

	return nil
}

// ParseOverrides decodes the config blob of a block instance.
// A nil or empty blob means the instance was never configured.
func ParseOverrides(config []byte) (*Overrides, error) {
	if len(config) == 0 {
		return nil, nil //nolint:nilnil // no overrides stored is a regular answer
	}

	var o Overrides
	if err := json.Unmarshal(config, &o); err != nil {
		return nil, errors.Wrap(err, "failed to decode block instance config")
	}

	return &o, nil
}

// EncodeOverrides encodes an override set for storage on a block instance
// row. Nil encodes to nil, the instance then reads as never configured.
func EncodeOverrides(o *Overrides) ([]byte, error) {
	if o == nil {
		return nil, nil
	}

	blob, err := json.Marshal(o)
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode block instance config")
	}

	return blob, nil
}
