package query

import (
	"strings"

	"github.com/goliatone/go-errors"

	"github.com/goliatone/go-report-export/export"
)

// ReportData requests the evaluated snapshot saved for a report request.
type ReportData struct {
	RequestID string
}

func (ReportData) Type() string { return "report:data" }

func (msg ReportData) Validate() error {
	if strings.TrimSpace(msg.RequestID) == "" {
		return errors.New("report request ID is required", errors.CategoryValidation).
			WithTextCode("REQUEST_ID_REQUIRED")
	}
	return nil
}

// ReportDefinition requests only the report descriptor saved for a report request.
type ReportDefinition struct {
	RequestID string
}

func (ReportDefinition) Type() string { return "report:definition" }

func (msg ReportDefinition) Validate() error {
	return ReportData{RequestID: msg.RequestID}.Validate()
}

// ReportSnapshot is the report definition and evaluated data for a request.
type ReportSnapshot struct {
	Report export.ReportDescriptor `json:"report"`
	Data   export.EvaluatedData    `json:"data"`
}
