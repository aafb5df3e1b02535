package export

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"
)

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04:05"
)

// timeLayouts are tried in order when a string has to be read as a time.
var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	dateLayout,
	"2006-01",
	timeLayout,
}

// valueFormatter turns cell values into text, shifting times into an optional zone.
type valueFormatter struct {
	loc *time.Location
}

func newValueFormatter(timezone string) (valueFormatter, error) {
	tz := strings.TrimSpace(timezone)
	if tz == "" {
		return valueFormatter{}, nil
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return valueFormatter{}, NewError(KindValidation, fmt.Sprintf("unknown timezone %q", tz), err)
	}
	return valueFormatter{loc: loc}, nil
}

func (f valueFormatter) zoned(t time.Time) time.Time {
	if f.loc == nil {
		return t
	}
	return t.In(f.loc)
}

// cell formats value according to the declared column type.
func (f valueFormatter) cell(col Column, value any) (string, error) {
	if value == nil {
		return "", nil
	}

	kind := columnKind(col.Type)
	invalid := func() (string, error) {
		return "", NewError(KindValidation, fmt.Sprintf("column %q: %v is not a valid %s", col.Name, value, kind), nil)
	}

	switch kind {
	case "date", "time", "datetime":
		t, ok := asTimeIn(value, f.loc)
		if !ok {
			return invalid()
		}
		layout := time.RFC3339
		if kind == "date" {
			layout = dateLayout
		} else if kind == "time" {
			layout = timeLayout
		}
		return f.zoned(t).Format(layout), nil
	case "bool":
		b, ok := asBool(value)
		if !ok {
			return invalid()
		}
		return strconv.FormatBool(b), nil
	case "int":
		n, ok := asInt(value)
		if !ok {
			return invalid()
		}
		return strconv.FormatInt(n, 10), nil
	case "float":
		n, ok := asFloat(value)
		if !ok {
			return invalid()
		}
		return strconv.FormatFloat(n, 'f', -1, 64), nil
	}
	return f.plain(value), nil
}

// plain formats a value with no declared type. Times render as dates.
func (f valueFormatter) plain(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case time.Time:
		return f.zoned(v).Format(dateLayout)
	case *time.Time:
		if v == nil {
			return ""
		}
		return f.zoned(*v).Format(dateLayout)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return stringify(value)
}

// columnKind folds database-style type names into the kinds the renderers know.
func columnKind(raw string) string {
	name := strings.ToLower(strings.TrimSpace(raw))
	switch name {
	case "", "string", "text", "varchar", "uuid":
		return "string"
	case "bool", "boolean":
		return "bool"
	case "int", "integer", "int8", "int16", "int32", "int64", "smallint", "bigint":
		return "int"
	case "float", "float32", "float64", "double", "decimal", "number", "numeric":
		return "float"
	case "time", "timetz":
		return "time"
	case "datetime", "timestamp", "timestamptz":
		return "datetime"
	}
	return name
}

func asFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case json.Number:
		n, err := v.Float64()
		return n, err == nil
	case string:
		n, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return n, err == nil
	}

	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	}
	return 0, false
}

// asInt accepts integers and whole-valued floats.
func asInt(value any) (int64, bool) {
	switch v := value.(type) {
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return n, true
		}
	case string:
		if n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64); err == nil {
			return n, true
		}
	}

	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		if rv.Uint() > math.MaxInt64 {
			return 0, false
		}
		return int64(rv.Uint()), true
	}

	f, ok := asFloat(value)
	if !ok || math.Trunc(f) != f {
		return 0, false
	}
	return int64(f), true
}

func asBool(value any) (bool, bool) {
	switch v := value.(type) {
	case bool:
		return v, true
	case *bool:
		if v == nil {
			return false, false
		}
		return *v, true
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		return b, err == nil
	}
	n, ok := asFloat(value)
	return n != 0, ok
}

// asTimeIn reads times, time strings and unix seconds. Strings without
// an offset are read in loc, or UTC when loc is nil.
func asTimeIn(value any, loc *time.Location) (time.Time, bool) {
	if t, ok := timeValue(value, loc); ok {
		return t, true
	}
	if _, ok := value.(string); ok {
		return time.Time{}, false
	}
	if secs, ok := asInt(value); ok {
		return time.Unix(secs, 0).UTC(), true
	}
	if secs, ok := asFloat(value); ok {
		return time.Unix(int64(secs), 0).UTC(), true
	}
	return time.Time{}, false
}

// timeValue accepts only time values and time strings.
func timeValue(value any, loc *time.Location) (time.Time, bool) {
	switch v := value.(type) {
	case time.Time:
		return v, true
	case *time.Time:
		if v == nil {
			return time.Time{}, false
		}
		return *v, true
	case string:
		return parseTime(v, loc)
	}
	return time.Time{}, false
}

func parseTime(raw string, loc *time.Location) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	if loc == nil {
		loc = time.UTC
	}
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, raw, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func stringify(value any) string {
	if value == nil {
		return ""
	}
	return fmt.Sprint(value)
}

// capWriter fails once more than max bytes would be written. A max of zero disables the cap.
type capWriter struct {
	w       io.Writer
	max     int64
	written int64
}

func (c *capWriter) Write(p []byte) (int, error) {
	if c.max > 0 && c.written+int64(len(p)) > c.max {
		return 0, NewError(KindRenderFailure, fmt.Sprintf("export exceeds %d bytes", c.max), nil)
	}
	n, err := c.w.Write(p)
	c.written += int64(n)
	return n, err
}
