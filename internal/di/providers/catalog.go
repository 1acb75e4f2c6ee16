package providers

import (
	"log/slog"

	"github.com/samber/do/v2"

	"github.com/taplistapp/taplist-server/internal/catalog/untappd"
	"github.com/taplistapp/taplist-server/internal/config"
	"github.com/taplistapp/taplist-server/internal/logger"
)

// ProvideCatalogClient provides the Untappd scraping client.
func ProvideCatalogClient(i do.Injector) (*untappd.Client, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	slogger := do.MustInvoke[*slog.Logger](i)

	client := untappd.New(untappd.Config{
		BaseURL:           cfg.Catalog.BaseURL,
		Timeout:           cfg.Catalog.Timeout,
		RequestsPerSecond: cfg.Catalog.RequestsPerSecond,
	}, slogger)

	log.Info("Catalog client ready",
		"base_url", cfg.Catalog.BaseURL,
		"timeout", cfg.Catalog.Timeout,
	)

	return client, nil
}
