// Package scrape extracts LinkedIn post text from host-page HTML fragments.
package scrape

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// postSelectors is the prioritized chain of selectors known to hold post
// text across LinkedIn's feed markup revisions. First match wins.
var postSelectors = []string{
	".feed-shared-update-v2__description .update-components-text",
	".feed-shared-update-v2__description",
	".update-components-text",
	".feed-shared-text",
	"[data-test-id='main-feed-activity-card__commentary']",
	"article p",
}

// maxPostLength bounds extracted text; LinkedIn posts cap out around 3000
// characters and anything beyond that is page chrome leaking in.
const maxPostLength = 3000

// PostContent pulls the post body out of an HTML fragment. Extraction is
// best effort: degenerate markup yields "" rather than an error.
func PostContent(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}

	for _, selector := range postSelectors {
		sel := doc.Find(selector).First()
		if sel.Length() == 0 {
			continue
		}
		if text := normalize(sel.Text()); text != "" {
			return text
		}
	}
	return ""
}

// normalize collapses runs of whitespace left behind by nested markup.
func normalize(text string) string {
	fields := strings.Fields(text)
	out := strings.Join(fields, " ")
	if len(out) > maxPostLength {
		out = out[:maxPostLength]
	}
	return out
}
