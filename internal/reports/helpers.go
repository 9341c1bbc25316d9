package reports

import (
	"text/template"
	"time"
)

// FuncMap returns the template functions used by the run report.
func FuncMap() template.FuncMap {
	return template.FuncMap{
		"formatTime": FormatTime,
	}
}

// FormatTime renders t in UTC, or "-" for the zero time.
func FormatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.UTC().Format(time.RFC3339)
}
