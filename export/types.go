package export

import (
	"context"
	"io"
)

// Format is the export output format.
type Format string

const (
	FormatSpreadsheet Format = "spreadsheet"
	FormatDelimited   Format = "delimited-text"
)

// ReportIdentity names a report for display and filenames.
type ReportIdentity struct {
	Name string `json:"name"`
}

// TemplateResource references a template asset served by a provider.
type TemplateResource struct {
	Provider string `json:"provider"`
	Path     string `json:"path"`
}

// ReportDescriptor describes the report definition being exported.
type ReportDescriptor struct {
	Identity   ReportIdentity    `json:"identity"`
	Definition string            `json:"definition,omitempty"`
	Template   *TemplateResource `json:"template,omitempty"`
}

// EvaluationContext carries the parameter values used to evaluate a report.
type EvaluationContext struct {
	Parameters map[string]any `json:"parameters,omitempty"`
}

// Parameter returns the named parameter value.
func (c EvaluationContext) Parameter(name string) (any, bool) {
	if c.Parameters == nil {
		return nil, false
	}
	value, ok := c.Parameters[name]
	return value, ok
}

// Column defines a column in an evaluated data set.
type Column struct {
	Name  string `json:"name"`
	Label string `json:"label,omitempty"`
	Type  string `json:"type,omitempty"`
}

// Row is a column-aligned record.
type Row []any

// DataSet is one named table of evaluated results.
type DataSet struct {
	Name    string   `json:"name"`
	Columns []Column `json:"columns"`
	Rows    []Row    `json:"rows"`
}

// EvaluatedData is the read-only result of a report evaluation.
type EvaluatedData struct {
	DataSets []DataSet        `json:"datasets"`
	Context  EvaluationContext `json:"context"`
}

// RenderConfiguration is the per-request input a renderer needs beyond the data.
// It is built in memory and discarded after the render.
type RenderConfiguration struct {
	Report       ReportIdentity
	Definition   string
	DesignName   string
	Format       Format
	ResourceName string
	Template     []byte
}

// ExportRequest captures a single export call.
type ExportRequest struct {
	Report ReportDescriptor
	Data   EvaluatedData
	Format string
}

// Artifact is a downloadable export result.
type Artifact struct {
	ID          string
	Filename    string
	ContentType string
	Bytes       []byte
}

// Size returns the payload length.
func (a Artifact) Size() int64 {
	return int64(len(a.Bytes))
}

// Renderer writes evaluated data using a render configuration.
type Renderer interface {
	Render(ctx context.Context, data EvaluatedData, cfg RenderConfiguration, w io.Writer) error
}

// TemplateResolver loads template bytes by provider and path.
type TemplateResolver interface {
	Resolve(ctx context.Context, provider, path string) ([]byte, error)
}

// TemplateResolverFunc adapts a function to a TemplateResolver.
type TemplateResolverFunc func(ctx context.Context, provider, path string) ([]byte, error)

func (f TemplateResolverFunc) Resolve(ctx context.Context, provider, path string) ([]byte, error) {
	if f == nil {
		return nil, NewError(KindInternal, "template resolver is nil", nil)
	}
	return f(ctx, provider, path)
}

// Logger provides logging hooks.
type Logger interface {
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Errorf(format string, args ...any)
}

// NopLogger is a no-op logger.
type NopLogger struct{}

func (NopLogger) Debugf(string, ...any) {}
func (NopLogger) Infof(string, ...any)  {}
func (NopLogger) Errorf(string, ...any) {}
