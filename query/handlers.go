package query

import (
	"context"

	"github.com/goliatone/go-command/dispatcher"
	"github.com/goliatone/go-errors"

	"github.com/goliatone/go-report-export/export"
)

// ReportLoader loads saved report snapshots.
type ReportLoader interface {
	Load(ctx context.Context, requestID string) (export.ReportDescriptor, export.EvaluatedData, error)
	Describe(ctx context.Context, requestID string) (export.ReportDescriptor, error)
}

// ReportDataHandler returns the saved snapshot for a report request.
type ReportDataHandler struct {
	Loader ReportLoader
}

func NewReportDataHandler(loader ReportLoader) *ReportDataHandler {
	return &ReportDataHandler{Loader: loader}
}

func (h *ReportDataHandler) Query(ctx context.Context, msg ReportData) (ReportSnapshot, error) {
	if h == nil || h.Loader == nil {
		return ReportSnapshot{}, errors.New("report loader is required", errors.CategoryInternal).
			WithTextCode("LOADER_REQUIRED")
	}
	report, data, err := h.Loader.Load(ctx, msg.RequestID)
	if err != nil {
		return ReportSnapshot{}, export.AsGoError(err)
	}
	return ReportSnapshot{Report: report, Data: data}, nil
}

// ReportDefinitionHandler returns the saved descriptor without its data.
type ReportDefinitionHandler struct {
	Loader ReportLoader
}

func NewReportDefinitionHandler(loader ReportLoader) *ReportDefinitionHandler {
	return &ReportDefinitionHandler{Loader: loader}
}

func (h *ReportDefinitionHandler) Query(ctx context.Context, msg ReportDefinition) (export.ReportDescriptor, error) {
	if h == nil || h.Loader == nil {
		return export.ReportDescriptor{}, errors.New("report loader is required", errors.CategoryInternal).
			WithTextCode("LOADER_REQUIRED")
	}
	report, err := h.Loader.Describe(ctx, msg.RequestID)
	if err != nil {
		return export.ReportDescriptor{}, export.AsGoError(err)
	}
	return report, nil
}

// RegisterHandlers wires report queries to the dispatcher.
func RegisterHandlers(loader ReportLoader) ([]dispatcher.Subscription, error) {
	if loader == nil {
		return nil, errors.New("report loader is required", errors.CategoryValidation).
			WithTextCode("LOADER_REQUIRED")
	}
	return []dispatcher.Subscription{
		dispatcher.SubscribeQuery(NewReportDataHandler(loader)),
		dispatcher.SubscribeQuery(NewReportDefinitionHandler(loader)),
	}, nil
}
