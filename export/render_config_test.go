package export

import (
	"bytes"
	"context"
	"testing"
)

func TestBuildRenderConfiguration_CopiesTemplate(t *testing.T) {
	template := []byte("workbook")
	report := ReportDescriptor{
		Identity:   ReportIdentity{Name: "MOH 731"},
		Definition: "moh-731",
		Template:   &TemplateResource{Provider: "moh", Path: "forms/moh731.xlsx"},
	}

	first := BuildRenderConfiguration(report, "excel", template)
	second := BuildRenderConfiguration(report, FormatSpreadsheet, template)
	template[0] = 'W'
	first.Template[1] = 'O'

	if string(second.Template) != "workbook" {
		t.Fatalf("expected configurations not to share template bytes, got %q", second.Template)
	}
	if first.Format != FormatSpreadsheet || first.Definition != "moh-731" {
		t.Fatalf("unexpected configuration %+v", first)
	}
	if first.DesignName != "MOH 731 design" || first.ResourceName != "template.xlsx" {
		t.Fatalf("unexpected names %q %q", first.DesignName, first.ResourceName)
	}
}

func TestBuildRenderConfiguration_WithoutTemplate(t *testing.T) {
	cfg := BuildRenderConfiguration(ReportDescriptor{Identity: ReportIdentity{Name: "HTS"}}, FormatDelimited, nil)
	if cfg.Template != nil || cfg.ResourceName != "" {
		t.Fatalf("expected no template resource, got %+v", cfg)
	}
}

func TestBoundRenderer_UsesSuppliedConfiguration(t *testing.T) {
	capture := &captureRenderer{}
	cfg := RenderConfiguration{Report: ReportIdentity{Name: "HTS"}, Format: FormatDelimited}

	buf := &bytes.Buffer{}
	if err := Bind(capture, StaticConfiguration(cfg)).Render(context.Background(), EvaluatedData{}, buf); err != nil {
		t.Fatalf("render: %v", err)
	}
	if capture.cfg.Report.Name != "HTS" || buf.String() != "ok" {
		t.Fatalf("unexpected render %+v %q", capture.cfg, buf.String())
	}

	if err := (BoundRenderer{}).Render(context.Background(), EvaluatedData{}, buf); !IsKind(err, KindInternal) {
		t.Fatalf("expected internal error for nil renderer, got %v", err)
	}
}

func TestMemoryResolver(t *testing.T) {
	resolver := NewMemoryResolver()
	resolver.Put("moh", "anc.xlsx", []byte("bytes"))

	data, err := resolver.Resolve(context.Background(), "moh", "anc.xlsx")
	if err != nil || string(data) != "bytes" {
		t.Fatalf("resolve: %q %v", data, err)
	}
	if _, err := resolver.Resolve(context.Background(), "other", "anc.xlsx"); !IsKind(err, KindResourceNotFound) {
		t.Fatalf("expected resource not found, got %v", err)
	}
}
