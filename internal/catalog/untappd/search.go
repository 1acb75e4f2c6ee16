package untappd

import (
	"context"
	"net/url"
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// maxCandidates caps how many search hits are returned. A guided dialogue
// presents at most this many choices.
const maxCandidates = 5

// beerLinkPattern matches beverage page links on a search results page:
// /b/<slug>/<numeric id>.
var beerLinkPattern = regexp.MustCompile(`href="(/b/([^"]+)/(\d+))"`)

// Search scrapes the search results page for the query and returns up to
// maxCandidates beverage candidates in page order.
func (c *Client) Search(ctx context.Context, query string) ([]Candidate, error) {
	searchURL := c.baseURL + "/search?q=" + url.QueryEscape(query)

	body, err := c.fetch(ctx, searchURL)
	if err != nil {
		return nil, wrapError("search", query, err)
	}

	matches := beerLinkPattern.FindAllStringSubmatch(string(body), maxCandidates)
	candidates := make([]Candidate, 0, len(matches))
	for _, m := range matches {
		path, slug := m[1], m[2]
		candidates = append(candidates, Candidate{
			DisplayName: displayNameFromSlug(slug),
			Slug:        slug,
			URL:         c.baseURL + path,
		})
	}

	c.logger.Debug("catalog search", "query", query, "candidates", len(candidates))
	return candidates, nil
}

// displayNameFromSlug turns a URL slug into a human-readable name, e.g.
// "sierra-nevada-pale-ale" into "Sierra Nevada Pale Ale".
func displayNameFromSlug(slug string) string {
	// A Caser is stateful and must not be shared between goroutines.
	return cases.Title(language.English).String(strings.ReplaceAll(slug, "-", " "))
}
