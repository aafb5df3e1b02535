package exportapi

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	errorslib "github.com/goliatone/go-errors"

	"github.com/goliatone/go-report-export/export"
)

// DefaultBasePath is the download route used when none is configured.
const DefaultBasePath = "/reports/export"

// Exporter renders report data into a downloadable artifact.
type Exporter interface {
	Export(ctx context.Context, req export.ExportRequest) (export.Artifact, error)
}

// ReportLoader loads a report request in two steps. Describe runs before the
// access check; LoadData only runs once access is granted.
type ReportLoader interface {
	Describe(ctx context.Context, requestID string) (export.ReportDescriptor, error)
	LoadData(ctx context.Context, requestID string) (export.EvaluatedData, error)
}

// ReportLoaderFuncs adapts a pair of functions to a ReportLoader.
type ReportLoaderFuncs struct {
	DescribeFunc func(ctx context.Context, requestID string) (export.ReportDescriptor, error)
	LoadDataFunc func(ctx context.Context, requestID string) (export.EvaluatedData, error)
}

func (f ReportLoaderFuncs) Describe(ctx context.Context, requestID string) (export.ReportDescriptor, error) {
	if f.DescribeFunc == nil {
		return export.ReportDescriptor{}, export.NewError(export.KindInternal, "report describe function not configured", nil)
	}
	return f.DescribeFunc(ctx, requestID)
}

func (f ReportLoaderFuncs) LoadData(ctx context.Context, requestID string) (export.EvaluatedData, error) {
	if f.LoadDataFunc == nil {
		return export.EvaluatedData{}, export.NewError(export.KindInternal, "report data function not configured", nil)
	}
	return f.LoadDataFunc(ctx, requestID)
}

// AccessChecker decides whether the caller may download a report.
type AccessChecker interface {
	CheckReportAccess(ctx context.Context, report export.ReportDescriptor) error
}

// AccessCheckerFunc adapts a function to an AccessChecker.
type AccessCheckerFunc func(ctx context.Context, report export.ReportDescriptor) error

func (f AccessCheckerFunc) CheckReportAccess(ctx context.Context, report export.ReportDescriptor) error {
	return f(ctx, report)
}

// AllowAll grants access to every report.
type AllowAll struct{}

func (AllowAll) CheckReportAccess(context.Context, export.ReportDescriptor) error { return nil }

// Config configures the shared report download controller.
type Config struct {
	Exporter Exporter
	Loader   ReportLoader
	Access   AccessChecker
	BasePath string
	Logger   export.Logger
}

// Controller serves report downloads for multiple transports.
type Controller struct {
	exporter Exporter
	loader   ReportLoader
	access   AccessChecker
	basePath string
	logger   export.Logger
}

// NewController creates a shared report download controller.
func NewController(cfg Config) *Controller {
	basePath := strings.TrimRight(cfg.BasePath, "/")
	if basePath == "" {
		basePath = DefaultBasePath
	}
	logger := cfg.Logger
	if logger == nil {
		logger = export.NopLogger{}
	}
	access := cfg.Access
	if access == nil {
		access = AllowAll{}
	}
	return &Controller{
		exporter: cfg.Exporter,
		loader:   cfg.Loader,
		access:   access,
		basePath: basePath,
		logger:   logger,
	}
}

// BasePath returns the configured base path.
func (c *Controller) BasePath() string {
	if c == nil {
		return DefaultBasePath
	}
	return c.basePath
}

// Serve handles GET <base>?request=<id>&type=<token>.
func (c *Controller) Serve(req Request, res Response) {
	if res == nil {
		return
	}
	if c == nil {
		WriteError(res, export.NewError(export.KindInternal, "handler is nil", nil))
		return
	}
	if req == nil {
		WriteError(res, export.NewError(export.KindInternal, "request is nil", nil))
		return
	}
	if strings.TrimRight(req.Path(), "/") != c.basePath {
		writeNotFound(res)
		return
	}
	if req.Method() != http.MethodGet && req.Method() != http.MethodHead {
		writeMethodNotAllowed(res)
		return
	}
	c.handleDownload(req, res)
}

func (c *Controller) handleDownload(req Request, res Response) {
	if c.exporter == nil {
		WriteError(res, export.NewError(export.KindInternal, "exporter not configured", nil))
		return
	}
	if c.loader == nil {
		WriteError(res, export.NewError(export.KindInternal, "report loader not configured", nil))
		return
	}

	requestID := strings.TrimSpace(req.Query("request"))
	if requestID == "" {
		WriteError(res, export.NewError(export.KindValidation, "request parameter is required", nil))
		return
	}
	token := req.Query("type")

	ctx := req.Context()
	report, err := c.loader.Describe(ctx, requestID)
	if err != nil {
		WriteError(res, err)
		return
	}
	if err := c.access.CheckReportAccess(ctx, report); err != nil {
		if export.KindFromError(err) == export.KindInternal {
			err = export.NewError(export.KindAuthz, fmt.Sprintf("access to report %q denied", report.Identity.Name), err)
		}
		WriteError(res, err)
		return
	}
	data, err := c.loader.LoadData(ctx, requestID)
	if err != nil {
		WriteError(res, err)
		return
	}

	artifact, err := c.exporter.Export(ctx, export.ExportRequest{Report: report, Data: data, Format: token})
	if err != nil {
		c.logger.Errorf("report request %s export failed: %v", requestID, err)
		WriteError(res, err)
		return
	}

	setDownloadHeaders(res, artifact)
	res.WriteHeader(http.StatusOK)
	if req.Method() == http.MethodHead {
		return
	}
	if _, err := res.Write(artifact.Bytes); err != nil {
		c.logger.Errorf("download write failed: %v", err)
	}
}

func writeNotFound(res Response) {
	res.SetHeader("Content-Type", "text/plain; charset=utf-8")
	res.SetHeader("X-Content-Type-Options", "nosniff")
	res.WriteHeader(http.StatusNotFound)
	_, _ = res.Write([]byte("404 page not found\n"))
}

func writeMethodNotAllowed(res Response) {
	res.SetHeader("Allow", "GET, HEAD")
	writeJSON(res, http.StatusMethodNotAllowed, ErrorResponse{Error: ErrorBody{
		Message: "method not allowed",
		Code:    "method_not_allowed",
	}})
}

// WriteError writes err as a JSON error body with the mapped status.
func WriteError(res Response, err error) {
	if err == nil {
		res.WriteHeader(http.StatusNoContent)
		return
	}
	ge := export.AsGoError(err)
	status := statusForError(ge)
	payload := ErrorResponse{
		Error: ErrorBody{
			Message: ge.Message,
			Code:    ge.TextCode,
		},
	}
	writeJSON(res, status, payload)
}

func writeJSON(res Response, status int, payload any) {
	_ = res.WriteJSON(status, payload)
}

func statusForError(err *errorslib.Error) int {
	if err == nil {
		return http.StatusInternalServerError
	}
	switch err.TextCode {
	case string(export.KindInvalidTemplate), string(export.KindMissingTimeParameter):
		return http.StatusUnprocessableEntity
	}
	switch err.Category {
	case errorslib.CategoryValidation:
		return http.StatusBadRequest
	case errorslib.CategoryAuthz:
		return http.StatusForbidden
	case errorslib.CategoryNotFound:
		return http.StatusNotFound
	case errorslib.CategoryOperation:
		if err.TextCode == "canceled" {
			return http.StatusConflict
		}
		return http.StatusRequestTimeout
	default:
		return http.StatusInternalServerError
	}
}

func sanitizeFilename(filename string) string {
	name := strings.TrimSpace(filename)
	name = strings.ReplaceAll(name, "\"", "")
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	if name == "" {
		name = "export"
	}
	return name
}

func setDownloadHeaders(res Response, artifact export.Artifact) {
	contentType := artifact.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	res.SetHeader("Content-Type", contentType)
	res.SetHeader("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", sanitizeFilename(artifact.Filename)))
	res.SetHeader("Content-Length", strconv.FormatInt(artifact.Size(), 10))
	if artifact.ID != "" {
		res.SetHeader("X-Export-Id", artifact.ID)
	}
}
