package service

import (
	"context"
	"log/slog"

	"github.com/taplistapp/taplist-server/internal/catalog/untappd"
)

// CatalogClient is the slice of the catalog scraper the service needs.
type CatalogClient interface {
	Search(ctx context.Context, query string) ([]untappd.Candidate, error)
	Details(ctx context.Context, pageURL string) (*untappd.Details, error)
}

// CatalogService wraps the external catalog with best-effort semantics:
// lookups that fail for any reason degrade to empty results. The catalog
// never blocks registry operations.
type CatalogService struct {
	client CatalogClient
	logger *slog.Logger
}

// NewCatalogService creates a new catalog service.
func NewCatalogService(client CatalogClient, logger *slog.Logger) *CatalogService {
	return &CatalogService{
		client: client,
		logger: logger,
	}
}

// Lookup searches the catalog and returns up to five candidates. An
// unreachable or misbehaving catalog yields an empty slice, never an error.
func (s *CatalogService) Lookup(ctx context.Context, query string) []untappd.Candidate {
	candidates, err := s.client.Search(ctx, query)
	if err != nil {
		s.logger.Warn("catalog lookup failed, continuing without candidates",
			"query", query,
			"error", err,
		)
		return nil
	}
	return candidates
}

// Describe fetches beverage details from a candidate page. Failures yield
// nil; callers fall back to manual entry.
func (s *CatalogService) Describe(ctx context.Context, pageURL string) *untappd.Details {
	details, err := s.client.Details(ctx, pageURL)
	if err != nil {
		s.logger.Warn("catalog details failed, continuing without enrichment",
			"url", pageURL,
			"error", err,
		)
		return nil
	}
	return details
}
