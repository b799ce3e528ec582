package providers

import (
	"github.com/samber/do/v2"

	"github.com/homeshelf/homeshelf-server/internal/logger"
	"github.com/homeshelf/homeshelf-server/internal/service"
)

// ProvideLibraryService provides the book record lifecycle service.
func ProvideLibraryService(i do.Injector) (*service.LibraryService, error) {
	catalogHandle := do.MustInvoke[*CatalogHandle](i)
	resolverHandle := do.MustInvoke[*ResolverHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	// A typed nil *openlibrary.Client must not reach the service as a
	// non-nil Resolver interface.
	var resolver service.Resolver
	if resolverHandle.Client != nil {
		resolver = resolverHandle.Client
	}

	return service.NewLibraryService(catalogHandle.Catalog, resolver, log.Logger), nil
}
