// Package richtext converts stored course content into display-safe HTML.
//
// Summaries and descriptions are stored together with the markup language
// their author wrote them in. Rendering dispatches on that format: HTML is
// author-trusted and passed through, Markdown is converted, plain text is
// escaped with line breaks preserved.
package richtext

import (
	"bytes"
	"html"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/yuin/goldmark"
)

// Format identifies the markup language of a stored text field.
type Format string

const (
	// FormatHTML marks author-written HTML.
	FormatHTML Format = "html"

	// FormatMarkdown marks Markdown source.
	FormatMarkdown Format = "markdown"

	// FormatPlain marks plain text.
	FormatPlain Format = "plain"
)

var markdown = goldmark.New()

// Render converts text in the given format into HTML markup.
func Render(text string, format Format) string {
	switch format {
	case FormatMarkdown:
		var buf bytes.Buffer
		if err := markdown.Convert([]byte(text), &buf); err != nil {
			log.Warn().Err(err).Msg("markdown conversion failed, falling back to escaped text")

			return renderPlain(text)
		}

		return buf.String()
	case FormatPlain:
		return renderPlain(text)
	default:
		return text
	}
}

func renderPlain(text string) string {
	escaped := html.EscapeString(text)

	return strings.ReplaceAll(escaped, "\n", "<br>\n")
}
