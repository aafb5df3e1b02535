package command

import (
	"strings"

	"github.com/goliatone/go-errors"

	"github.com/goliatone/go-report-export/export"
)

// ExportReport renders evaluated report data into a downloadable artifact.
type ExportReport struct {
	Report export.ReportDescriptor
	Data   export.EvaluatedData
	Format string
	Result *export.Artifact
}

func (ExportReport) Type() string { return "report:export" }

func (msg ExportReport) Validate() error {
	if strings.TrimSpace(msg.Report.Identity.Name) == "" {
		return errors.New("report name is required", errors.CategoryValidation).
			WithTextCode("REPORT_NAME_REQUIRED")
	}
	if strings.TrimSpace(msg.Format) == "" {
		return errors.New("export format is required", errors.CategoryValidation).
			WithTextCode("FORMAT_REQUIRED")
	}
	return nil
}
