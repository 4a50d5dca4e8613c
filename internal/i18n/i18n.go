// Package i18n resolves user-facing message strings against the built-in
// language catalogs. The language is negotiated per request from the
// Accept-Language header using golang.org/x/text.
package i18n

import (
	"fmt"

	"golang.org/x/text/language"
)

// supported lists the catalog languages. The first entry is the fallback for
// clients that match nothing.
var supported = []language.Tag{
	language.English,
	language.German,
}

var matcher = language.NewMatcher(supported)

var catalogs = map[language.Tag]map[string]string{
	language.English: {
		"sectionlinks.title":       "Section links",
		"sectionlinks.placeholder": "The current course format does not use sections.",
		"section.topic":            "Topic %d",
		"section.week":             "Week %d",
		"section.generic":          "Section %d",
		"course.hidden":            "This course is currently hidden.",
		"section.restricted":       "Not available",
	},
	language.German: {
		"sectionlinks.title":       "Abschnitts-Links",
		"sectionlinks.placeholder": "Das aktuelle Kursformat verwendet keine Abschnitte.",
		"section.topic":            "Thema %d",
		"section.week":             "Woche %d",
		"section.generic":          "Abschnitt %d",
		"course.hidden":            "Dieser Kurs ist derzeit verborgen.",
		"section.restricted":       "Nicht verfügbar",
	},
}

// Printer translates message keys for one negotiated language.
type Printer struct {
	tag language.Tag
}

// NewPrinter negotiates the best catalog language for an Accept-Language
// header value. An empty or unparsable header yields the fallback language.
func NewPrinter(acceptLanguage string) *Printer {
	// ParseAcceptLanguage fails on garbage input; the matcher then falls
	// back to the first supported tag.
	desired, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil {
		desired = nil
	}

	_, index, _ := matcher.Match(desired...)

	return &Printer{tag: supported[index]}
}

// Tag returns the negotiated language.
func (p *Printer) Tag() language.Tag {
	return p.tag
}

// T returns the message for key, formatted with args. Keys missing from the
// negotiated catalog fall back to the fallback language, then to the key
// itself so broken lookups stay visible instead of rendering empty.
func (p *Printer) T(key string, args ...any) string {
	msg, ok := catalogs[p.tag][key]
	if !ok {
		msg, ok = catalogs[supported[0]][key]
	}
	if !ok {
		return key
	}

	if len(args) == 0 {
		return msg
	}

	return fmt.Sprintf(msg, args...)
}

// SectionName returns the localized default name of a section, for example
// "Topic 3". The noun is the course format's section noun key; unknown nouns
// use the generic form.
func (p *Printer) SectionName(noun string, number int) string {
	key := "section." + noun
	if _, ok := catalogs[supported[0]][key]; !ok {
		key = "section.generic"
	}

	return p.T(key, number)
}
