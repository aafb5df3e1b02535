package export

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DefaultTemplateExtension is the spreadsheet template suffix accepted by default.
const DefaultTemplateExtension = ".xlsx"

// ExporterConfig supplies dependencies for an Exporter.
type ExporterConfig struct {
	Resolver          TemplateResolver
	Spreadsheet       Renderer
	Delimited         Renderer
	TemplateExtension string
	TimeParameter     string
	Location          *time.Location
	MaxBytes          int64
	Logger            Logger
	IDGenerator       func() string
}

// Exporter turns evaluated report data into a downloadable artifact.
// It holds no per-request state and is safe for concurrent use.
type Exporter struct {
	resolver          TemplateResolver
	spreadsheet       Renderer
	delimited         Renderer
	filenames         FilenamePolicy
	templateExtension string
	maxBytes          int64
	logger            Logger
	idGenerator       func() string
}

// NewExporter creates an Exporter with the provided configuration.
func NewExporter(cfg ExporterConfig) *Exporter {
	spreadsheet := cfg.Spreadsheet
	if spreadsheet == nil {
		spreadsheet = SpreadsheetRenderer{}
	}
	delimited := cfg.Delimited
	if delimited == nil {
		delimited = DelimitedRenderer{}
	}

	ext := strings.TrimSpace(cfg.TemplateExtension)
	if ext == "" {
		ext = DefaultTemplateExtension
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}

	logger := cfg.Logger
	if logger == nil {
		logger = NopLogger{}
	}
	idGen := cfg.IDGenerator
	if idGen == nil {
		idGen = uuid.NewString
	}

	return &Exporter{
		resolver:          cfg.Resolver,
		spreadsheet:       spreadsheet,
		delimited:         delimited,
		filenames:         FilenamePolicy{Parameter: cfg.TimeParameter, Location: cfg.Location},
		templateExtension: strings.ToLower(ext),
		maxBytes:          cfg.MaxBytes,
		logger:            logger,
		idGenerator:       idGen,
	}
}

// Export renders the request data in the requested format.
func (e *Exporter) Export(ctx context.Context, req ExportRequest) (Artifact, error) {
	if e == nil {
		return Artifact{}, NewError(KindInternal, "exporter is nil", nil)
	}

	format, err := ParseFormat(req.Format)
	if err != nil {
		return Artifact{}, err
	}

	var renderer BoundRenderer
	switch format {
	case FormatSpreadsheet:
		renderer, err = e.spreadsheetRenderer(ctx, req.Report)
	case FormatDelimited:
		renderer = Bind(e.delimited, StaticConfiguration(BuildRenderConfiguration(req.Report, format, nil)))
	default:
		err = NewError(KindUnsupportedFormat, fmt.Sprintf("unsupported format %q", format), nil)
	}
	if err != nil {
		return Artifact{}, err
	}

	filename, err := e.filenames.Filename(req.Report.Identity.Name, req.Data.Context, ExtensionFor(format))
	if err != nil {
		return Artifact{}, err
	}

	var buf bytes.Buffer
	if err := renderer.Render(ctx, req.Data, &capWriter{w: &buf, max: e.maxBytes}); err != nil {
		e.logger.Errorf("export %q as %s failed: %v", req.Report.Identity.Name, format, err)
		if IsKind(err, KindCanceled) || IsKind(err, KindTimeout) {
			return Artifact{}, err
		}
		return Artifact{}, NewError(KindRenderFailure, fmt.Sprintf("render %q as %s", req.Report.Identity.Name, format), err)
	}

	artifact := Artifact{
		ID:          e.idGenerator(),
		Filename:    filename,
		ContentType: ContentTypeFor(format),
		Bytes:       buf.Bytes(),
	}
	e.logger.Infof("export %s ready: %s (%d bytes)", artifact.ID, artifact.Filename, artifact.Size())
	return artifact, nil
}

func (e *Exporter) spreadsheetRenderer(ctx context.Context, report ReportDescriptor) (BoundRenderer, error) {
	if report.Template == nil {
		return BoundRenderer{}, NewError(KindInvalidTemplate, fmt.Sprintf("report %q has no spreadsheet template", report.Identity.Name), nil)
	}
	if !strings.HasSuffix(strings.ToLower(report.Template.Path), e.templateExtension) {
		return BoundRenderer{}, NewError(KindInvalidTemplate, fmt.Sprintf("template %q is not a %s file", report.Template.Path, e.templateExtension), nil)
	}
	if e.resolver == nil {
		return BoundRenderer{}, NewError(KindInternal, "template resolver not configured", nil)
	}

	e.logger.Debugf("resolving template %s/%s", report.Template.Provider, report.Template.Path)
	template, err := e.resolver.Resolve(ctx, report.Template.Provider, report.Template.Path)
	if err != nil {
		if KindFromError(err) == KindInternal {
			return BoundRenderer{}, NewError(KindResourceNotFound, fmt.Sprintf("template %s/%s", report.Template.Provider, report.Template.Path), err)
		}
		return BoundRenderer{}, err
	}

	cfg := BuildRenderConfiguration(report, FormatSpreadsheet, template)
	return Bind(e.spreadsheet, StaticConfiguration(cfg)), nil
}
