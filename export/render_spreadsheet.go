package export

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

var placeholderPattern = regexp.MustCompile(`#([^#\s]+)#`)

// SpreadsheetRenderer fills a workbook template with evaluated report values.
type SpreadsheetRenderer struct {
	Timezone string
}

// Render opens the configured template, replaces placeholders in every sheet and writes the workbook.
func (r SpreadsheetRenderer) Render(ctx context.Context, data EvaluatedData, cfg RenderConfiguration, w io.Writer) error {
	if len(cfg.Template) == 0 {
		return NewError(KindRenderFailure, "render configuration has no template", nil)
	}

	formatter, err := newValueFormatter(r.Timezone)
	if err != nil {
		return err
	}

	file, err := excelize.OpenReader(bytes.NewReader(cfg.Template))
	if err != nil {
		return NewError(KindRenderFailure, fmt.Sprintf("open template %s", cfg.ResourceName), err)
	}
	defer func() {
		_ = file.Close()
	}()

	bindings := buildBindings(data, cfg, formatter)
	for _, sheet := range file.GetSheetList() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fillSheet(ctx, file, sheet, bindings); err != nil {
			return err
		}
	}

	_, err = file.WriteTo(w)
	return err
}

func fillSheet(ctx context.Context, file *excelize.File, sheet string, bindings map[string]any) error {
	rows, err := file.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return err
	}
	for rowIndex, row := range rows {
		if err := ctx.Err(); err != nil {
			return err
		}
		for colIndex, raw := range row {
			if !strings.Contains(raw, "#") {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(colIndex+1, rowIndex+1)
			if err != nil {
				return err
			}
			if formula, _ := file.GetCellFormula(sheet, cell); formula != "" {
				continue
			}
			if err := fillCell(file, sheet, cell, raw, bindings); err != nil {
				return err
			}
		}
	}
	return nil
}

func fillCell(file *excelize.File, sheet, cell, raw string, bindings map[string]any) error {
	if match := placeholderPattern.FindStringSubmatch(raw); match != nil && match[0] == raw {
		value, ok := bindings[match[1]]
		if !ok {
			return nil
		}
		if isTypedCellValue(value) {
			return file.SetCellValue(sheet, cell, value)
		}
		return file.SetCellStr(sheet, cell, stringify(value))
	}

	changed := false
	replaced := placeholderPattern.ReplaceAllStringFunc(raw, func(token string) string {
		value, ok := bindings[strings.Trim(token, "#")]
		if !ok {
			return token
		}
		changed = true
		return stringify(value)
	})
	if !changed {
		return nil
	}
	return file.SetCellStr(sheet, cell, replaced)
}

// buildBindings resolves placeholder keys. Report keys win over parameters, and
// parameters win over bare column names.
func buildBindings(data EvaluatedData, cfg RenderConfiguration, formatter valueFormatter) map[string]any {
	bindings := map[string]any{}

	if len(data.DataSets) == 1 {
		for key, value := range firstRowValues(data.DataSets[0], formatter) {
			bindings[key] = value
		}
	}
	for _, ds := range data.DataSets {
		for key, value := range firstRowValues(ds, formatter) {
			bindings[ds.Name+"."+key] = value
		}
	}
	for name, value := range data.Context.Parameters {
		bindings[name] = bindingValue(Column{}, value, formatter)
	}

	bindings["report.name"] = cfg.Report.Name
	bindings["report.definition"] = cfg.Definition
	return bindings
}

func firstRowValues(ds DataSet, formatter valueFormatter) map[string]any {
	values := map[string]any{}
	if len(ds.Rows) == 0 {
		return values
	}
	row := ds.Rows[0]
	for i, col := range ds.Columns {
		if i >= len(row) {
			break
		}
		values[col.Name] = bindingValue(col, row[i], formatter)
	}
	return values
}

// bindingValue keeps numbers and booleans typed and turns everything else into text.
func bindingValue(col Column, value any, formatter valueFormatter) any {
	switch v := value.(type) {
	case nil:
		return ""
	case time.Time, *time.Time:
		if columnKind(col.Type) == "datetime" {
			if formatted, err := formatter.cell(col, v); err == nil {
				return formatted
			}
		}
		return formatter.plain(v)
	case bool, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return v
	}

	kind := columnKind(col.Type)
	switch kind {
	case "int":
		if parsed, ok := asInt(value); ok {
			return parsed
		}
	case "float":
		if parsed, ok := asFloat(value); ok {
			return parsed
		}
	case "bool":
		if parsed, ok := asBool(value); ok {
			return parsed
		}
	}
	// Snapshots decoded with UseNumber carry numbers as json.Number.
	if number, ok := value.(json.Number); ok && kind == "string" {
		if parsed, ok := asInt(number); ok {
			return parsed
		}
		if parsed, ok := asFloat(number); ok {
			return parsed
		}
	}
	if formatted, err := formatter.cell(col, value); err == nil {
		return formatted
	}
	return stringify(value)
}

func isTypedCellValue(value any) bool {
	switch value.(type) {
	case bool, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return true
	default:
		return false
	}
}
