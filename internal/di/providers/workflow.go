package providers

import (
	"log/slog"

	"github.com/samber/do/v2"

	"github.com/taplistapp/taplist-server/internal/config"
	"github.com/taplistapp/taplist-server/internal/logger"
	"github.com/taplistapp/taplist-server/internal/service"
	"github.com/taplistapp/taplist-server/internal/workflow"
)

// EngineHandle wraps the workflow engine with shutdown capability.
type EngineHandle struct {
	*workflow.Engine
}

// Shutdown implements do.Shutdownable.
func (h *EngineHandle) Shutdown() error {
	h.Close()
	return nil
}

// ProvideEngine provides the guided workflow engine.
func ProvideEngine(i do.Injector) (*EngineHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	slogger := do.MustInvoke[*slog.Logger](i)
	taps := do.MustInvoke[*service.TapService](i)
	history := do.MustInvoke[*service.HistoryService](i)
	catalog := do.MustInvoke[*service.CatalogService](i)

	engine := workflow.NewEngine(workflow.Config{
		ServingVolumes: cfg.Taps.ServingVolumes,
	}, taps, history, catalog, slogger)

	log.Info("Workflow engine ready", "serving_volumes", cfg.Taps.ServingVolumes)

	return &EngineHandle{Engine: engine}, nil
}
