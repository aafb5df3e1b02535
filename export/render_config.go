package export

import (
	"context"
	"io"
	"path"
)

// RenderConfigurationSupplier yields the configuration a renderer should use.
type RenderConfigurationSupplier func() RenderConfiguration

// BuildRenderConfiguration assembles an in-memory render configuration for one export.
// Nothing is registered or stored; the template bytes are copied so configurations never
// share a backing array.
func BuildRenderConfiguration(report ReportDescriptor, format Format, template []byte) RenderConfiguration {
	cfg := RenderConfiguration{
		Report:     report.Identity,
		Definition: report.Definition,
		DesignName: report.Identity.Name + " design",
		Format:     NormalizeFormat(format),
	}
	if template != nil {
		cfg.Template = append([]byte(nil), template...)
		ext := path.Ext(templatePath(report))
		if ext == "" {
			ext = "." + ExtensionFor(cfg.Format)
		}
		cfg.ResourceName = "template" + ext
	}
	return cfg
}

// StaticConfiguration returns a supplier that always yields cfg.
func StaticConfiguration(cfg RenderConfiguration) RenderConfigurationSupplier {
	return func() RenderConfiguration { return cfg }
}

func templatePath(report ReportDescriptor) string {
	if report.Template == nil {
		return ""
	}
	return report.Template.Path
}

// BoundRenderer pairs a renderer with the supplier of its configuration, so a render can
// be driven without any configuration lookup.
type BoundRenderer struct {
	Renderer Renderer
	Supply   RenderConfigurationSupplier
}

// Bind returns a renderer bound to a configuration supplier.
func Bind(renderer Renderer, supply RenderConfigurationSupplier) BoundRenderer {
	return BoundRenderer{Renderer: renderer, Supply: supply}
}

// Render renders data with the supplied configuration.
func (b BoundRenderer) Render(ctx context.Context, data EvaluatedData, w io.Writer) error {
	if b.Renderer == nil {
		return NewError(KindInternal, "renderer is nil", nil)
	}
	cfg := RenderConfiguration{}
	if b.Supply != nil {
		cfg = b.Supply()
	}
	return b.Renderer.Render(ctx, data, cfg, w)
}
