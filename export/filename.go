package export

import (
	"fmt"
	"strings"
	"time"
)

const (
	// DefaultTimeParameter is the evaluation parameter that names the reporting period.
	DefaultTimeParameter = "startDate"
	periodLayout         = "2006-01"
)

// FilenamePolicy derives download names from the report name and reporting period.
// The period keeps the zone it carries; Location only applies to date strings
// written without an offset.
type FilenamePolicy struct {
	Parameter string
	Location  *time.Location
}

// Filename returns "{reportName} {YYYY-MM}.{extension}".
func (p FilenamePolicy) Filename(reportName string, ec EvaluationContext, extension string) (string, error) {
	param := p.Parameter
	if param == "" {
		param = DefaultTimeParameter
	}

	value, ok := ec.Parameter(param)
	if !ok || value == nil {
		return "", NewError(KindMissingTimeParameter, fmt.Sprintf("evaluation context has no %q parameter", param), nil)
	}
	period, ok := timeValue(value, p.Location)
	if !ok {
		return "", NewError(KindMissingTimeParameter, fmt.Sprintf("parameter %q is not a date", param), nil)
	}

	name := strings.TrimSpace(reportName)
	if name == "" {
		return "", NewError(KindValidation, "report name is required", nil)
	}
	return fmt.Sprintf("%s %s.%s", name, period.Format(periodLayout), strings.TrimPrefix(extension, ".")), nil
}
