package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
)

// DelimitedRenderer renders evaluated data sets as delimited text.
type DelimitedRenderer struct {
	Delimiter rune
	Timezone  string
}

// Render writes each data set as a header row followed by its rows, in evaluation order.
func (r DelimitedRenderer) Render(ctx context.Context, data EvaluatedData, _ RenderConfiguration, w io.Writer) error {
	writer := csv.NewWriter(w)
	if r.Delimiter != 0 {
		writer.Comma = r.Delimiter
	}

	formatter, err := newValueFormatter(r.Timezone)
	if err != nil {
		return err
	}

	multiple := len(data.DataSets) > 1
	for i, ds := range data.DataSets {
		if err := ctx.Err(); err != nil {
			return err
		}
		if multiple {
			if i > 0 {
				if err := writer.Write([]string{""}); err != nil {
					return err
				}
			}
			if err := writer.Write([]string{ds.Name}); err != nil {
				return err
			}
		}

		headers := make([]string, 0, len(ds.Columns))
		for _, col := range ds.Columns {
			label := col.Label
			if label == "" {
				label = col.Name
			}
			headers = append(headers, label)
		}
		if err := writer.Write(headers); err != nil {
			return err
		}

		for rowIndex, row := range ds.Rows {
			if err := ctx.Err(); err != nil {
				return err
			}
			if len(row) != len(ds.Columns) {
				return NewError(KindValidation, fmt.Sprintf("data set %q row %d does not match its columns", ds.Name, rowIndex), nil)
			}

			record := make([]string, len(row))
			for j, value := range row {
				formatted, err := formatter.cell(ds.Columns[j], value)
				if err != nil {
					return err
				}
				record[j] = formatted
			}
			if err := writer.Write(record); err != nil {
				return err
			}
		}
	}

	writer.Flush()
	return writer.Error()
}
