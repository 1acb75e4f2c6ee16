package providers

import (
	"log/slog"

	"github.com/samber/do/v2"

	"github.com/taplistapp/taplist-server/internal/catalog/untappd"
	"github.com/taplistapp/taplist-server/internal/config"
	"github.com/taplistapp/taplist-server/internal/service"
)

// ProvideTapService provides the tap registry service.
func ProvideTapService(i do.Injector) (*service.TapService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	slogger := do.MustInvoke[*slog.Logger](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)

	return service.NewTapService(storeHandle.Store, cfg.Taps.Count, slogger), nil
}

// ProvideHistoryService provides the beverage history service.
func ProvideHistoryService(i do.Injector) (*service.HistoryService, error) {
	slogger := do.MustInvoke[*slog.Logger](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)

	return service.NewHistoryService(storeHandle.Store, slogger), nil
}

// ProvideCatalogService provides the best-effort catalog lookup service.
func ProvideCatalogService(i do.Injector) (*service.CatalogService, error) {
	slogger := do.MustInvoke[*slog.Logger](i)
	client := do.MustInvoke[*untappd.Client](i)

	return service.NewCatalogService(client, slogger), nil
}
