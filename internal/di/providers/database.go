package providers

import (
	"log/slog"

	"github.com/samber/do/v2"

	"github.com/taplistapp/taplist-server/internal/config"
	"github.com/taplistapp/taplist-server/internal/logger"
	"github.com/taplistapp/taplist-server/internal/store/sqlite"
)

// StoreHandle wraps the store with shutdown capability.
type StoreHandle struct {
	*sqlite.Store
}

// Shutdown implements do.Shutdownable.
func (h *StoreHandle) Shutdown() error {
	return h.Close()
}

// ProvideStore provides the database store.
func ProvideStore(i do.Injector) (*StoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	slogger := do.MustInvoke[*slog.Logger](i)

	db, err := sqlite.Open(cfg.Database.Path, slogger)
	if err != nil {
		return nil, err
	}

	log.Info("Database initialized", "path", cfg.Database.Path)

	return &StoreHandle{Store: db}, nil
}
