package export

import (
	"fmt"
	"strings"
)

// FormatInfo describes the fixed output properties of a format.
type FormatInfo struct {
	Format      Format
	Extension   string
	ContentType string
}

var formatInfos = map[Format]FormatInfo{
	FormatSpreadsheet: {
		Format:      FormatSpreadsheet,
		Extension:   "xlsx",
		ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	},
	FormatDelimited: {
		Format:      FormatDelimited,
		Extension:   "csv",
		ContentType: "text/csv",
	},
}

// NormalizeFormat coerces format tokens into known formats.
// Unknown tokens are returned lowercased and trimmed.
func NormalizeFormat(format Format) Format {
	normalized := strings.ToLower(strings.TrimSpace(string(format)))
	switch normalized {
	case string(FormatSpreadsheet), "excel", "xls", "xlsx":
		return FormatSpreadsheet
	case string(FormatDelimited), "delimited", "csv":
		return FormatDelimited
	default:
		return Format(normalized)
	}
}

// ParseFormat resolves a requested token into one of the supported formats.
func ParseFormat(token string) (Format, error) {
	format := NormalizeFormat(Format(token))
	if _, ok := formatInfos[format]; !ok {
		return "", NewError(KindUnsupportedFormat, fmt.Sprintf("unrecognised export type %q", token), nil)
	}
	return format, nil
}

// InfoFor returns the fixed output properties of a supported format.
func InfoFor(format Format) (FormatInfo, bool) {
	info, ok := formatInfos[NormalizeFormat(format)]
	return info, ok
}

// ContentTypeFor returns the content type for a format.
func ContentTypeFor(format Format) string {
	if info, ok := InfoFor(format); ok {
		return info.ContentType
	}
	return "application/octet-stream"
}

// ExtensionFor returns the file extension for a format, without the dot.
func ExtensionFor(format Format) string {
	if info, ok := InfoFor(format); ok {
		return info.Extension
	}
	return ""
}
