package reportdatabun

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	"github.com/goliatone/go-report-export/export"
)

// Store keeps evaluated report snapshots keyed by report request ID.
type Store struct {
	DB  *bun.DB
	Now func() time.Time
}

// NewStore creates a Bun-backed report data store.
func NewStore(db *bun.DB) *Store {
	return &Store{DB: db, Now: time.Now}
}

// CreateSchema creates the report_requests table when missing.
func (s *Store) CreateSchema(ctx context.Context) error {
	if s == nil || s.DB == nil {
		return export.NewError(export.KindInternal, "report data database not configured", nil)
	}
	_, err := s.DB.NewCreateTable().Model((*requestModel)(nil)).IfNotExists().Exec(ctx)
	return err
}

// Save stores or replaces the snapshot for a request.
func (s *Store) Save(ctx context.Context, requestID string, report export.ReportDescriptor, data export.EvaluatedData) error {
	if s == nil || s.DB == nil {
		return export.NewError(export.KindInternal, "report data database not configured", nil)
	}
	if requestID == "" {
		return export.NewError(export.KindValidation, "report request ID is required", nil)
	}

	model, err := modelFromSnapshot(requestID, report, data)
	if err != nil {
		return err
	}
	model.CreatedAt = s.now()

	_, err = s.DB.NewInsert().Model(&model).
		On("CONFLICT (id) DO UPDATE").
		Set("report_name = EXCLUDED.report_name").
		Set("definition = EXCLUDED.definition").
		Set("template_provider = EXCLUDED.template_provider").
		Set("template_path = EXCLUDED.template_path").
		Set("datasets = EXCLUDED.datasets").
		Set("parameters = EXCLUDED.parameters").
		Set("created_at = EXCLUDED.created_at").
		Exec(ctx)
	return err
}

// Load returns the report descriptor and evaluated data saved for a request.
func (s *Store) Load(ctx context.Context, requestID string) (export.ReportDescriptor, export.EvaluatedData, error) {
	model, err := s.find(ctx, requestID)
	if err != nil {
		return export.ReportDescriptor{}, export.EvaluatedData{}, err
	}
	data, err := model.data()
	if err != nil {
		return export.ReportDescriptor{}, export.EvaluatedData{}, err
	}
	return model.descriptor(), data, nil
}

// Describe returns only the report descriptor saved for a request.
func (s *Store) Describe(ctx context.Context, requestID string) (export.ReportDescriptor, error) {
	model, err := s.find(ctx, requestID, "id", "report_name", "definition", "template_provider", "template_path")
	if err != nil {
		return export.ReportDescriptor{}, err
	}
	return model.descriptor(), nil
}

// LoadData returns only the evaluated data saved for a request.
func (s *Store) LoadData(ctx context.Context, requestID string) (export.EvaluatedData, error) {
	model, err := s.find(ctx, requestID, "id", "datasets", "parameters")
	if err != nil {
		return export.EvaluatedData{}, err
	}
	return model.data()
}

func (s *Store) find(ctx context.Context, requestID string, columns ...string) (*requestModel, error) {
	if s == nil || s.DB == nil {
		return nil, export.NewError(export.KindInternal, "report data database not configured", nil)
	}
	if requestID == "" {
		return nil, export.NewError(export.KindValidation, "report request ID is required", nil)
	}

	model := new(requestModel)
	q := s.DB.NewSelect().Model(model).Where("id = ?", requestID).Limit(1)
	if len(columns) > 0 {
		q = q.Column(columns...)
	}
	if err := q.Scan(ctx); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, export.NewError(export.KindNotFound, fmt.Sprintf("report request %q not found", requestID), nil)
		}
		return nil, err
	}
	return model, nil
}

// Delete removes the snapshot for a request.
func (s *Store) Delete(ctx context.Context, requestID string) error {
	if s == nil || s.DB == nil {
		return export.NewError(export.KindInternal, "report data database not configured", nil)
	}
	if requestID == "" {
		return export.NewError(export.KindValidation, "report request ID is required", nil)
	}

	res, err := s.DB.NewDelete().Model((*requestModel)(nil)).Where("id = ?", requestID).Exec(ctx)
	if err != nil {
		return err
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return export.NewError(export.KindNotFound, fmt.Sprintf("report request %q not found", requestID), nil)
	}
	return nil
}

func (s *Store) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}

type requestModel struct {
	bun.BaseModel `bun:"table:report_requests,alias:report_requests"`

	ID               string    `bun:",pk"`
	ReportName       string    `bun:"report_name,notnull"`
	Definition       string    `bun:"definition"`
	TemplateProvider string    `bun:"template_provider"`
	TemplatePath     string    `bun:"template_path"`
	DataSets         []byte    `bun:"datasets"`
	Parameters       []byte    `bun:"parameters"`
	CreatedAt        time.Time `bun:"created_at"`
}

func modelFromSnapshot(requestID string, report export.ReportDescriptor, data export.EvaluatedData) (requestModel, error) {
	datasets, err := json.Marshal(data.DataSets)
	if err != nil {
		return requestModel{}, err
	}
	params, err := json.Marshal(data.Context.Parameters)
	if err != nil {
		return requestModel{}, err
	}

	model := requestModel{
		ID:         requestID,
		ReportName: report.Identity.Name,
		Definition: report.Definition,
		DataSets:   datasets,
		Parameters: params,
	}
	if report.Template != nil {
		model.TemplateProvider = report.Template.Provider
		model.TemplatePath = report.Template.Path
	}
	return model, nil
}

func (m *requestModel) descriptor() export.ReportDescriptor {
	report := export.ReportDescriptor{
		Identity:   export.ReportIdentity{Name: m.ReportName},
		Definition: m.Definition,
	}
	if m.TemplatePath != "" {
		report.Template = &export.TemplateResource{Provider: m.TemplateProvider, Path: m.TemplatePath}
	}
	return report
}

func (m *requestModel) data() (export.EvaluatedData, error) {
	data := export.EvaluatedData{}
	if err := decodeJSON(m.DataSets, &data.DataSets); err != nil {
		return export.EvaluatedData{}, err
	}
	if err := decodeJSON(m.Parameters, &data.Context.Parameters); err != nil {
		return export.EvaluatedData{}, err
	}
	return data, nil
}

func decodeJSON(payload []byte, target any) error {
	if len(payload) == 0 {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(payload))
	dec.UseNumber()
	return dec.Decode(target)
}
