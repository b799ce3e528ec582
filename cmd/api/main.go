// Package main provides the entry point for the HomeShelf server application.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/samber/do/v2"

	"github.com/homeshelf/homeshelf-server/internal/di"
	"github.com/homeshelf/homeshelf-server/internal/di/providers"
	"github.com/homeshelf/homeshelf-server/internal/logger"
)

func main() {
	// Create DI container
	injector := di.NewContainer()

	// Bootstrap all services
	if err := di.Bootstrap(injector); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to bootstrap server: %v\n", err)
		os.Exit(1)
	}

	// Get logger for shutdown messages
	log := do.MustInvoke[*logger.Logger](injector)

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server gracefully...")

	// Shutdown all services in reverse order
	// The DI container handles shutdown order automatically
	if err := injector.Shutdown(); err != nil {
		log.Error("Shutdown error", "error", err)
	}

	// The catalog handle needs explicit close when the container did not
	// shut it down (it is reached through a wrapper type).
	if catalogHandle, err := do.Invoke[*providers.CatalogHandle](injector); err == nil {
		if err := catalogHandle.Shutdown(); err != nil {
			log.Error("Failed to close catalog", "error", err)
		} else {
			log.Info("Catalog closed")
		}
	}

	log.Info("Goodnight, shelf.")
}
