// Package di provides dependency injection configuration for the HomeShelf server.
package di

import (
	"github.com/samber/do/v2"

	"github.com/homeshelf/homeshelf-server/internal/config"
	"github.com/homeshelf/homeshelf-server/internal/di/providers"
	"github.com/homeshelf/homeshelf-server/internal/export"
	"github.com/homeshelf/homeshelf-server/internal/logger"
	"github.com/homeshelf/homeshelf-server/internal/service"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)

	// Storage layer
	do.Provide(injector, providers.ProvideCatalog)

	// Metadata layer
	do.Provide(injector, providers.ProvideResolver)

	// Business services
	do.Provide(injector, providers.ProvideLibraryService)

	// Export layer
	do.Provide(injector, providers.ProvideReportRenderer)
	do.Provide(injector, providers.ProvideExportPipeline)

	// Server
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap initializes all services and returns once the server is running.
// This triggers lazy initialization of every provider in dependency order.
func Bootstrap(injector *do.RootScope) error {
	_ = do.MustInvoke[*config.Config](injector)
	_ = do.MustInvoke[*logger.Logger](injector)

	if _, err := do.Invoke[*providers.CatalogHandle](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*providers.ResolverHandle](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*service.LibraryService](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*providers.ReportRendererHandle](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*export.Pipeline](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*providers.HTTPServerHandle](injector); err != nil {
		return err
	}

	return nil
}
