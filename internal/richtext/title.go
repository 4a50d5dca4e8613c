package richtext

import (
	"strings"

	"golang.org/x/net/html"
)

// elements that terminate a visual line when extracting a title.
var lineBreakers = map[string]bool{
	"p": true, "div": true, "br": true, "li": true, "tr": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
}

// ExtractTitle derives a short title from HTML markup. Anchor elements are
// dropped entirely so navigation links inside a summary never become its
// title. The result is the first non-empty line of the remaining text with
// whitespace collapsed, or the empty string when nothing usable is left.
func ExtractTitle(markup string) string {
	doc, err := html.Parse(strings.NewReader(markup))
	if err != nil {
		return ""
	}

	var sb strings.Builder
	collectText(doc, &sb)

	for _, line := range strings.Split(sb.String(), "\n") {
		if collapsed := strings.Join(strings.Fields(line), " "); collapsed != "" {
			return collapsed
		}
	}

	return ""
}

func collectText(n *html.Node, sb *strings.Builder) {
	if n.Type == html.ElementNode && n.Data == "a" {
		return
	}
	if n.Type == html.TextNode {
		sb.WriteString(n.Data)
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, sb)
	}

	if n.Type == html.ElementNode && lineBreakers[n.Data] {
		sb.WriteString("\n")
	}
}

// TitleFor returns the automatic title of a stored text field, converting
// Markdown before extraction so formatting never leaks into the title.
func TitleFor(text string, format Format) string {
	if format == FormatPlain {
		for _, line := range strings.Split(text, "\n") {
			if collapsed := strings.Join(strings.Fields(line), " "); collapsed != "" {
				return collapsed
			}
		}

		return ""
	}

	return ExtractTitle(Render(text, format))
}
