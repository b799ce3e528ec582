package providers

import (
	"fmt"

	"github.com/samber/do/v2"

	"github.com/homeshelf/homeshelf-server/internal/config"
	"github.com/homeshelf/homeshelf-server/internal/logger"
	"github.com/homeshelf/homeshelf-server/internal/store"
	"github.com/homeshelf/homeshelf-server/internal/store/jsonfile"
	"github.com/homeshelf/homeshelf-server/internal/store/sqlite"
)

// CatalogHandle wraps the catalog store with shutdown capability.
type CatalogHandle struct {
	store.Catalog
}

// Shutdown implements do.Shutdownable.
func (h *CatalogHandle) Shutdown() error {
	return h.Close()
}

// ProvideCatalog provides the catalog store selected by the configured driver.
func ProvideCatalog(i do.Injector) (*CatalogHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	path := cfg.CatalogPath()

	switch cfg.Store.Driver {
	case config.DriverSQLite:
		catalog, err := sqlite.Open(path, log.Logger)
		if err != nil {
			return nil, fmt.Errorf("open sqlite catalog: %w", err)
		}
		log.Info("Catalog opened", "driver", cfg.Store.Driver, "path", path)
		return &CatalogHandle{Catalog: catalog}, nil

	case config.DriverJSON:
		log.Info("Catalog opened", "driver", cfg.Store.Driver, "path", path)
		return &CatalogHandle{Catalog: jsonfile.New(path, log.Logger)}, nil

	default:
		return nil, fmt.Errorf("unknown store driver: %s", cfg.Store.Driver)
	}
}
