package export

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"
)

func buildTemplate(t *testing.T, cells map[string]map[string]any) []byte {
	t.Helper()

	file := excelize.NewFile()
	defer func() {
		_ = file.Close()
	}()

	for _, sheet := range []string{"Sheet1", "Summary"} {
		values, ok := cells[sheet]
		if !ok {
			continue
		}
		if sheet != "Sheet1" {
			if _, err := file.NewSheet(sheet); err != nil {
				t.Fatalf("new sheet: %v", err)
			}
		}
		for cell, value := range values {
			if err := file.SetCellValue(sheet, cell, value); err != nil {
				t.Fatalf("set %s!%s: %v", sheet, cell, err)
			}
		}
	}

	buf, err := file.WriteToBuffer()
	if err != nil {
		t.Fatalf("write template: %v", err)
	}
	return buf.Bytes()
}

func readCell(t *testing.T, file *excelize.File, sheet, cell string) string {
	t.Helper()
	value, err := file.GetCellValue(sheet, cell, excelize.Options{RawCellValue: true})
	if err != nil {
		t.Fatalf("get %s!%s: %v", sheet, cell, err)
	}
	return value
}

func visitsData() EvaluatedData {
	return EvaluatedData{
		DataSets: []DataSet{{
			Name:    "visits",
			Columns: []Column{{Name: "facility"}, {Name: "total", Type: "int"}},
			Rows:    []Row{{"Kisumu", 42}, {"Nakuru", 7}},
		}},
		Context: EvaluationContext{Parameters: map[string]any{
			"startDate": time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		}},
	}
}

func TestSpreadsheetRenderer_FillsPlaceholders(t *testing.T) {
	template := buildTemplate(t, map[string]map[string]any{
		"Sheet1": {
			"A1": "#report.name#",
			"A2": "Period from #startDate#",
			"B2": "#visits.total#",
			"B3": "#facility#",
			"C1": "#unknown#",
			"C2": "plain text",
		},
		"Summary": {
			"A1": "#report.definition#",
		},
	})

	cfg := BuildRenderConfiguration(ReportDescriptor{
		Identity:   ReportIdentity{Name: "ANC Monthly"},
		Definition: "anc-monthly",
		Template:   &TemplateResource{Provider: "moh", Path: "anc.xlsx"},
	}, FormatSpreadsheet, template)

	buf := &bytes.Buffer{}
	if err := (SpreadsheetRenderer{}).Render(context.Background(), visitsData(), cfg, buf); err != nil {
		t.Fatalf("render: %v", err)
	}

	file, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("open output: %v", err)
	}
	defer func() {
		_ = file.Close()
	}()

	checks := []struct {
		sheet, cell, want string
	}{
		{"Sheet1", "A1", "ANC Monthly"},
		{"Sheet1", "A2", "Period from 2024-03-01"},
		{"Sheet1", "B2", "42"},
		{"Sheet1", "B3", "Kisumu"},
		{"Sheet1", "C1", "#unknown#"},
		{"Sheet1", "C2", "plain text"},
		{"Summary", "A1", "anc-monthly"},
	}
	for _, check := range checks {
		if got := readCell(t, file, check.sheet, check.cell); got != check.want {
			t.Fatalf("%s!%s: expected %q, got %q", check.sheet, check.cell, check.want, got)
		}
	}
}

func TestSpreadsheetRenderer_QualifiedKeysOnlyWithSeveralDataSets(t *testing.T) {
	template := buildTemplate(t, map[string]map[string]any{
		"Sheet1": {"A1": "#total#", "A2": "#referrals.total#"},
	})
	data := EvaluatedData{DataSets: []DataSet{
		{Name: "visits", Columns: []Column{{Name: "total"}}, Rows: []Row{{1}}},
		{Name: "referrals", Columns: []Column{{Name: "total"}}, Rows: []Row{{2}}},
	}}

	cfg := RenderConfiguration{Report: ReportIdentity{Name: "HTS"}, Template: template}
	buf := &bytes.Buffer{}
	if err := (SpreadsheetRenderer{}).Render(context.Background(), data, cfg, buf); err != nil {
		t.Fatalf("render: %v", err)
	}

	file, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("open output: %v", err)
	}
	defer func() {
		_ = file.Close()
	}()

	if got := readCell(t, file, "Sheet1", "A1"); got != "#total#" {
		t.Fatalf("expected ambiguous key untouched, got %q", got)
	}
	if got := readCell(t, file, "Sheet1", "A2"); got != "2" {
		t.Fatalf("expected referrals total, got %q", got)
	}
}

func TestSpreadsheetRenderer_Deterministic(t *testing.T) {
	template := buildTemplate(t, map[string]map[string]any{
		"Sheet1":  {"A1": "#report.name#", "B1": "#total#", "C1": "Period from #startDate#"},
		"Summary": {"A1": "#report.definition#", "B1": "#visits.facility#"},
	})
	cfg := RenderConfiguration{
		Report:     ReportIdentity{Name: "ANC Monthly"},
		Definition: "anc-monthly",
		Template:   template,
	}

	render := func() []byte {
		buf := &bytes.Buffer{}
		if err := (SpreadsheetRenderer{}).Render(context.Background(), visitsData(), cfg, buf); err != nil {
			t.Fatalf("render: %v", err)
		}
		return buf.Bytes()
	}

	first, second := render(), render()
	if !bytes.Equal(first, second) {
		t.Fatalf("expected byte-identical workbooks (%d vs %d bytes)", len(first), len(second))
	}

	file, err := excelize.OpenReader(bytes.NewReader(first))
	if err != nil {
		t.Fatalf("open output: %v", err)
	}
	defer func() {
		_ = file.Close()
	}()
	if got := readCell(t, file, "Sheet1", "B1"); got != "42" {
		t.Fatalf("unexpected total %q", got)
	}
	if got := readCell(t, file, "Summary", "B1"); got != "Kisumu" {
		t.Fatalf("unexpected facility %q", got)
	}
}

func TestSpreadsheetRenderer_JSONNumbersStayNumeric(t *testing.T) {
	template := buildTemplate(t, map[string]map[string]any{
		"Sheet1": {"A1": "#total#", "A2": "#rate#"},
	})
	cfg := RenderConfiguration{Template: template}

	cellTypes := func(total, rate any) (excelize.CellType, excelize.CellType, string, string) {
		data := EvaluatedData{DataSets: []DataSet{{
			Name:    "visits",
			Columns: []Column{{Name: "total"}, {Name: "rate"}},
			Rows:    []Row{{total, rate}},
		}}}
		buf := &bytes.Buffer{}
		if err := (SpreadsheetRenderer{}).Render(context.Background(), data, cfg, buf); err != nil {
			t.Fatalf("render: %v", err)
		}
		file, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
		if err != nil {
			t.Fatalf("open output: %v", err)
		}
		defer func() {
			_ = file.Close()
		}()
		totalType, err := file.GetCellType("Sheet1", "A1")
		if err != nil {
			t.Fatalf("cell type: %v", err)
		}
		rateType, err := file.GetCellType("Sheet1", "A2")
		if err != nil {
			t.Fatalf("cell type: %v", err)
		}
		return totalType, rateType, readCell(t, file, "Sheet1", "A1"), readCell(t, file, "Sheet1", "A2")
	}

	wantTotal, wantRate, _, _ := cellTypes(42, 0.5)
	gotTotal, gotRate, total, rate := cellTypes(json.Number("42"), json.Number("0.5"))
	for _, got := range []excelize.CellType{gotTotal, gotRate} {
		if got == excelize.CellTypeSharedString || got == excelize.CellTypeInlineString {
			t.Fatalf("expected numeric cell, got string type %v", got)
		}
	}
	if gotTotal != wantTotal || gotRate != wantRate {
		t.Fatalf("expected native number cell types %v/%v, got %v/%v", wantTotal, wantRate, gotTotal, gotRate)
	}
	if total != "42" || rate != "0.5" {
		t.Fatalf("unexpected values %q %q", total, rate)
	}
}

func TestSpreadsheetRenderer_TemplateErrors(t *testing.T) {
	err := (SpreadsheetRenderer{}).Render(context.Background(), visitsData(), RenderConfiguration{}, &bytes.Buffer{})
	if !IsKind(err, KindRenderFailure) {
		t.Fatalf("expected render failure for missing template, got %v", err)
	}

	cfg := RenderConfiguration{Template: []byte("not a workbook"), ResourceName: "template.xlsx"}
	err = (SpreadsheetRenderer{}).Render(context.Background(), visitsData(), cfg, &bytes.Buffer{})
	if !IsKind(err, KindRenderFailure) {
		t.Fatalf("expected render failure for unreadable template, got %v", err)
	}
}
