package documents

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// excerptRunes is the listing excerpt cap, counted in runes so multibyte
// text is not cut mid-character.
const excerptRunes = 280

// extractText parses the submitted HTML and returns its full plain text
// plus the excerpt shown in listings. The excerpt is the first paragraph,
// or the leading text when the content has no paragraph markup.
func extractText(contentHTML string) (string, string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(contentHTML))
	if err != nil {
		return "", "", err
	}

	text := normalizeSpace(doc.Text())

	lead := normalizeSpace(doc.Find("p").First().Text())
	if lead == "" {
		lead = text
	}

	return text, truncateRunes(lead, excerptRunes), nil
}

func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return strings.TrimSpace(string(runes[:n])) + "…"
}
