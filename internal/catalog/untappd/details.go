package untappd

import (
	"context"
	"regexp"
	"strconv"
	"strings"
)

// Patterns for the fields a beverage page exposes. The markup has been
// stable for years; each field degrades to absent when its pattern misses.
var (
	abvPattern   = regexp.MustCompile(`(?i)(\d+\.?\d*)\s*%\s*ABV`)
	ibuPattern   = regexp.MustCompile(`(?i)(\d+\.?\d*)\s*IBU`)
	stylePattern = regexp.MustCompile(`<p class="style">([^<]+)</p>`)
	namePattern  = regexp.MustCompile(`<h1>([^<]+)</h1>`)

	// The long-form description div, with the truncated variant as fallback.
	descPatterns = []*regexp.Regexp{
		regexp.MustCompile(`<div class="beer-descrption-read-less">([^<]+)</div>`),
		regexp.MustCompile(`<div class="beer-desc">([^<]+)</div>`),
	}
)

// Details scrapes a beverage page. Missing fields stay zero; only transport
// failures are errors.
func (c *Client) Details(ctx context.Context, pageURL string) (*Details, error) {
	body, err := c.fetch(ctx, pageURL)
	if err != nil {
		return nil, wrapError("details", pageURL, err)
	}

	page := string(body)
	d := &Details{}

	if m := abvPattern.FindStringSubmatch(page); m != nil {
		if abv, err := strconv.ParseFloat(m[1], 64); err == nil {
			d.ABV = &abv
		}
	}
	if m := ibuPattern.FindStringSubmatch(page); m != nil {
		if ibu, err := strconv.ParseFloat(m[1], 64); err == nil {
			d.IBU = &ibu
		}
	}
	if m := stylePattern.FindStringSubmatch(page); m != nil {
		d.Style = strings.TrimSpace(m[1])
	}
	if m := namePattern.FindStringSubmatch(page); m != nil {
		d.Name = strings.TrimSpace(m[1])
	}
	for _, pattern := range descPatterns {
		if m := pattern.FindStringSubmatch(page); m != nil {
			d.Description = cleanText(m[1])
			break
		}
	}

	c.logger.Debug("catalog details",
		"url", pageURL,
		"has_abv", d.ABV != nil,
		"has_ibu", d.IBU != nil,
		"has_style", d.Style != "",
	)
	return d, nil
}
