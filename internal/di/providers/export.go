package providers

import (
	"github.com/samber/do/v2"

	"github.com/homeshelf/homeshelf-server/internal/config"
	"github.com/homeshelf/homeshelf-server/internal/export"
	"github.com/homeshelf/homeshelf-server/internal/export/pdfreport"
	"github.com/homeshelf/homeshelf-server/internal/logger"
)

// ReportRendererHandle carries the optional PDF report renderer. Renderer is
// nil when report export is disabled; the export pipeline then answers report
// requests with an unavailability error.
type ReportRendererHandle struct {
	Renderer *pdfreport.Renderer
}

// ProvideReportRenderer provides the PDF report renderer, if enabled.
func ProvideReportRenderer(i do.Injector) (*ReportRendererHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if !cfg.Export.ReportEnabled {
		log.Info("PDF report export disabled")
		return &ReportRendererHandle{}, nil
	}

	return &ReportRendererHandle{Renderer: pdfreport.New()}, nil
}

// ProvideExportPipeline provides the live-collection export pipeline.
func ProvideExportPipeline(i do.Injector) (*export.Pipeline, error) {
	catalogHandle := do.MustInvoke[*CatalogHandle](i)
	rendererHandle := do.MustInvoke[*ReportRendererHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	var renderer export.ReportRenderer
	if rendererHandle.Renderer != nil {
		renderer = rendererHandle.Renderer
	}

	return export.NewPipeline(catalogHandle.Catalog, renderer, log.Logger), nil
}
