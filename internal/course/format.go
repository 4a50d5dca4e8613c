package course

// FormatSettings mirrors one format entry of the main configuration.
type FormatSettings struct {
	Name         string // display name of the format
	UsesSections bool   // false = single page formats without a section list
	SectionNoun  string // noun used for unnamed sections ("topic", "week")
	Weekly       bool   // true = section dates derive from the course start date
}

// Formats maps a course format identifier to its settings.
type Formats map[string]FormatSettings

// resolveFormat returns the settings for a format identifier. A course can
// reference a format the configuration no longer lists, those courses keep
// a section list with the generic noun instead of losing their content.
func resolveFormat(formats Formats, id string) FormatSettings {
	if settings, ok := formats[id]; ok {
		return settings
	}

	return FormatSettings{
		Name:         id,
		UsesSections: true,
		SectionNoun:  "section",
	}
}
