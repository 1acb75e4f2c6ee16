// Package di provides dependency injection configuration for the taplist server.
package di

import (
	"log/slog"

	"github.com/samber/do/v2"

	"github.com/taplistapp/taplist-server/internal/config"
	"github.com/taplistapp/taplist-server/internal/di/providers"
	"github.com/taplistapp/taplist-server/internal/logger"
	"github.com/taplistapp/taplist-server/internal/service"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)
	do.Provide(injector, providers.ProvideSlogLogger)

	// Database layer
	do.Provide(injector, providers.ProvideStore)

	// Catalog layer
	do.Provide(injector, providers.ProvideCatalogClient)

	// Business services
	do.Provide(injector, providers.ProvideTapService)
	do.Provide(injector, providers.ProvideHistoryService)
	do.Provide(injector, providers.ProvideCatalogService)

	// Workflow engine
	do.Provide(injector, providers.ProvideEngine)

	// Server
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap initializes all services and returns handles for lifecycle management.
// This triggers lazy initialization of all core services.
func Bootstrap(injector *do.RootScope) error {
	_ = do.MustInvoke[*config.Config](injector)
	_ = do.MustInvoke[*logger.Logger](injector)
	_ = do.MustInvoke[*slog.Logger](injector)
	_ = do.MustInvoke[*providers.StoreHandle](injector)

	// Business services
	_ = do.MustInvoke[*service.TapService](injector)
	_ = do.MustInvoke[*service.HistoryService](injector)
	_ = do.MustInvoke[*service.CatalogService](injector)

	// Workflow engine and server
	_ = do.MustInvoke[*providers.EngineHandle](injector)
	_ = do.MustInvoke[*providers.HTTPServerHandle](injector)

	return nil
}
