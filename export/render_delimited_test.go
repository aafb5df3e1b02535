package export

import (
	"bytes"
	"context"
	"testing"
	"time"
)

func TestDelimitedRenderer_SingleDataSet(t *testing.T) {
	data := EvaluatedData{DataSets: []DataSet{{
		Name: "visits",
		Columns: []Column{
			{Name: "facility", Label: "Facility"},
			{Name: "total", Type: "int"},
			{Name: "rate", Type: "float"},
			{Name: "visited_on", Type: "date"},
			{Name: "synced_at", Type: "datetime"},
		},
		Rows: []Row{
			{"Kisumu", 42, 12.5, time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC), time.Date(2024, 3, 4, 8, 30, 0, 0, time.UTC)},
			{"Nakuru, West", "7", nil, "2024-03-05", nil},
		},
	}}}

	buf := &bytes.Buffer{}
	if err := (DelimitedRenderer{}).Render(context.Background(), data, RenderConfiguration{}, buf); err != nil {
		t.Fatalf("render: %v", err)
	}

	expected := "Facility,total,rate,visited_on,synced_at\n" +
		"Kisumu,42,12.5,2024-03-04,2024-03-04T08:30:00Z\n" +
		"\"Nakuru, West\",7,,2024-03-05,\n"
	if buf.String() != expected {
		t.Fatalf("unexpected output:\n%s", buf.String())
	}
}

func TestDelimitedRenderer_MultipleDataSets(t *testing.T) {
	data := EvaluatedData{DataSets: []DataSet{
		{Name: "visits", Columns: []Column{{Name: "total"}}, Rows: []Row{{1}}},
		{Name: "referrals", Columns: []Column{{Name: "total"}}, Rows: []Row{{2}, {3}}},
	}}

	buf := &bytes.Buffer{}
	if err := (DelimitedRenderer{}).Render(context.Background(), data, RenderConfiguration{}, buf); err != nil {
		t.Fatalf("render: %v", err)
	}

	expected := "visits\ntotal\n1\n\nreferrals\ntotal\n2\n3\n"
	if buf.String() != expected {
		t.Fatalf("unexpected output:\n%q", buf.String())
	}
}

func TestDelimitedRenderer_Delimiter(t *testing.T) {
	data := EvaluatedData{DataSets: []DataSet{{
		Name:    "visits",
		Columns: []Column{{Name: "a"}, {Name: "b"}},
		Rows:    []Row{{"x", "y"}},
	}}}

	buf := &bytes.Buffer{}
	if err := (DelimitedRenderer{Delimiter: ';'}).Render(context.Background(), data, RenderConfiguration{}, buf); err != nil {
		t.Fatalf("render: %v", err)
	}
	if buf.String() != "a;b\nx;y\n" {
		t.Fatalf("unexpected output %q", buf.String())
	}
}

func TestDelimitedRenderer_RowMismatch(t *testing.T) {
	data := EvaluatedData{DataSets: []DataSet{{
		Name:    "visits",
		Columns: []Column{{Name: "a"}, {Name: "b"}},
		Rows:    []Row{{"x"}},
	}}}

	err := (DelimitedRenderer{}).Render(context.Background(), data, RenderConfiguration{}, &bytes.Buffer{})
	if !IsKind(err, KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestDelimitedRenderer_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	data := EvaluatedData{DataSets: []DataSet{{Name: "visits", Columns: []Column{{Name: "a"}}, Rows: []Row{{"x"}}}}}
	err := (DelimitedRenderer{}).Render(ctx, data, RenderConfiguration{}, &bytes.Buffer{})
	if !IsKind(err, KindCanceled) {
		t.Fatalf("expected canceled, got %v", err)
	}
}

func TestDelimitedRenderer_TimezoneReadsPlainDates(t *testing.T) {
	data := EvaluatedData{DataSets: []DataSet{{
		Name:    "visits",
		Columns: []Column{{Name: "visited_on", Type: "date"}, {Name: "synced_at", Type: "datetime"}},
		Rows:    []Row{{"2024-03-01", "2024-03-01 08:00:00"}},
	}}}

	buf := &bytes.Buffer{}
	if err := (DelimitedRenderer{Timezone: "Africa/Nairobi"}).Render(context.Background(), data, RenderConfiguration{}, buf); err != nil {
		t.Fatalf("render: %v", err)
	}
	if buf.String() != "visited_on,synced_at\n2024-03-01,2024-03-01T08:00:00+03:00\n" {
		t.Fatalf("unexpected output:\n%s", buf.String())
	}
}
