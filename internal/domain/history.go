package domain

import "time"

// HistoryEntry is a cached record of a previously entered (brewery, name) pair,
// ranked by how often it has been reused. It is a cache, not a source of truth:
// deleting an entry never affects tap assignments that referenced the same pair.
type HistoryEntry struct {
	ID          int64      `json:"id"`
	Brewery     string     `json:"brewery"`
	Name        string     `json:"name"`
	Style       string     `json:"style,omitempty"`
	Description string     `json:"description,omitempty"`
	CatalogURL  string     `json:"catalog_url,omitempty"`
	ABV         *float64   `json:"abv,omitempty"`
	IBU         *float64   `json:"ibu,omitempty"`
	UsageCount  int        `json:"usage_count"`
	LastUsedAt  time.Time  `json:"last_used_at"`
}

// BeverageMetadata carries the descriptive fields recorded alongside a
// (brewery, name) pair on each use. Latest values win.
type BeverageMetadata struct {
	Style       string
	Description string
	CatalogURL  string
	ABV         *float64
	IBU         *float64
}

// Metadata extracts the metadata fields of a history entry.
func (e *HistoryEntry) Metadata() BeverageMetadata {
	return BeverageMetadata{
		Style:       e.Style,
		Description: e.Description,
		CatalogURL:  e.CatalogURL,
		ABV:         e.ABV,
		IBU:         e.IBU,
	}
}
