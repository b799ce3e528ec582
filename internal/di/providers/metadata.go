package providers

import (
	"github.com/samber/do/v2"

	"github.com/homeshelf/homeshelf-server/internal/config"
	"github.com/homeshelf/homeshelf-server/internal/logger"
	"github.com/homeshelf/homeshelf-server/internal/metadata/openlibrary"
)

// ResolverHandle carries the optional Open Library client. Client is nil when
// automatic metadata lookup is disabled; book adds then use manual fields only.
type ResolverHandle struct {
	Client *openlibrary.Client
}

// ProvideResolver provides the metadata resolver, if enabled.
func ProvideResolver(i do.Injector) (*ResolverHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if !cfg.Resolver.Enabled {
		log.Info("Metadata lookup disabled")
		return &ResolverHandle{}, nil
	}

	client := openlibrary.NewClient(cfg.Resolver.BaseURL, cfg.Resolver.Timeout, log.Logger)
	log.Info("Metadata lookup enabled", "base_url", cfg.Resolver.BaseURL, "timeout", cfg.Resolver.Timeout)

	return &ResolverHandle{Client: client}, nil
}
