package i18n

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/text/language"
)

func TestNewPrinterNegotiation(t *testing.T) {
	testCases := []struct {
		name   string
		accept string
		want   language.Tag
	}{
		{name: "empty header falls back to english", accept: "", want: language.English},
		{name: "garbage header falls back to english", accept: ";;;", want: language.English},
		{name: "exact german", accept: "de", want: language.German},
		{name: "regional german", accept: "de-AT,de;q=0.9", want: language.German},
		{name: "unsupported language falls back", accept: "fr-FR,fr;q=0.8", want: language.English},
		{name: "quality ordering wins", accept: "en;q=0.5,de;q=0.9", want: language.German},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			p := NewPrinter(tc.accept)
			assert.Equal(t, tc.want, p.Tag())
		})
	}
}

func TestPrinterT(t *testing.T) {
	en := NewPrinter("en")
	de := NewPrinter("de")

	assert.Equal(t, "Section links", en.T("sectionlinks.title"))
	assert.Equal(t, "Abschnitts-Links", de.T("sectionlinks.title"))
	assert.Equal(t, "Topic 4", en.T("section.topic", 4))
	assert.Equal(t, "Woche 2", de.T("section.week", 2))

	// Unknown keys surface as themselves.
	assert.Equal(t, "does.not.exist", en.T("does.not.exist"))
}

func TestPrinterSectionName(t *testing.T) {
	en := NewPrinter("en")

	assert.Equal(t, "Topic 0", en.SectionName("topic", 0))
	assert.Equal(t, "Week 12", en.SectionName("week", 12))
	assert.Equal(t, "Section 3", en.SectionName("generic", 3))
	assert.Equal(t, "Section 7", en.SectionName("chapter", 7), "unknown nouns use the generic form")
}
