package untappd

// Candidate is one beverage link found on a search results page.
type Candidate struct {
	// DisplayName is derived from the URL slug, title-cased for prompts.
	DisplayName string
	// Slug is the URL path segment identifying the beverage.
	Slug string
	// URL is the absolute beverage page URL.
	URL string
}

// Details holds whatever a beverage page exposes. Every field is optional;
// pages differ in what they publish.
type Details struct {
	Name        string
	Style       string
	Description string
	ABV         *float64
	IBU         *float64
}
