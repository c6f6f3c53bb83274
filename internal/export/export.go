// Package export serializes report output into delimited text suitable
// for download or spooling to disk.
package export

import (
	"errors"
	"strings"
)

// ErrNoData signals that there is nothing to export. Callers must skip
// the write side-effect instead of producing an empty file.
var ErrNoData = errors.New("export: no data")

// Record is one flat row keyed by field name.
type Record map[string]string

// ToDelimitedText renders records as CSV text: a plain header line,
// then one line per record with every field wrapped in double quotes
// and embedded quotes doubled. Fields are selected by exact header
// match; a missing field renders as an empty string. Lines are joined
// with \n and there is no trailing newline.
func ToDelimitedText(records []Record, headers []string) (string, error) {
	if len(records) == 0 {
		return "", ErrNoData
	}

	lines := make([]string, 0, len(records)+1)
	lines = append(lines, strings.Join(headers, ","))

	fields := make([]string, len(headers))
	for _, rec := range records {
		for i, h := range headers {
			fields[i] = `"` + strings.ReplaceAll(rec[h], `"`, `""`) + `"`
		}
		lines = append(lines, strings.Join(fields, ","))
	}
	return strings.Join(lines, "\n"), nil
}
