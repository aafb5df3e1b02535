package command

import (
	"context"

	gcmd "github.com/goliatone/go-command"
	"github.com/goliatone/go-errors"

	"github.com/goliatone/go-report-export/export"
)

// Exporter renders report data into an artifact.
type Exporter interface {
	Export(ctx context.Context, req export.ExportRequest) (export.Artifact, error)
}

// ExportReportHandler handles report export commands.
type ExportReportHandler struct {
	Exporter Exporter
}

func NewExportReportHandler(exporter Exporter) *ExportReportHandler {
	return &ExportReportHandler{Exporter: exporter}
}

func (h *ExportReportHandler) Execute(ctx context.Context, msg ExportReport) error {
	if h == nil || h.Exporter == nil {
		return errors.New("exporter is required", errors.CategoryInternal).
			WithTextCode("EXPORTER_REQUIRED")
	}
	artifact, err := h.Exporter.Export(ctx, export.ExportRequest{
		Report: msg.Report,
		Data:   msg.Data,
		Format: msg.Format,
	})
	if err != nil {
		return export.AsGoError(err)
	}
	if msg.Result != nil {
		*msg.Result = artifact
	}
	if res := gcmd.ResultFromContext[export.Artifact](ctx); res != nil {
		res.Store(artifact)
	}
	return nil
}
