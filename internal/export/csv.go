package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"shipmerge/internal/merge"
)

// BOM is the UTF-8 byte order mark spreadsheet tools need to detect UTF-8.
var BOM = []byte{0xEF, 0xBB, 0xBF}

// findingColumns defines the findings CSV header row.
var findingColumns = []string{
	"#",
	"Severity",
	"Rule",
	"Field",
	"Message",
}

// Writer wraps csv.Writer for exporting merge findings as CSV.
type Writer struct {
	csv *csv.Writer
}

// NewWriter creates a Writer that writes CSV to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{csv: csv.NewWriter(w)}
}

// WriteHeader writes the header row.
func (w *Writer) WriteHeader() error {
	return w.csv.Write(findingColumns)
}

// WriteFindings writes one row per finding, numbered from 1.
func (w *Writer) WriteFindings(findings []merge.Finding) error {
	for i := range findings {
		if err := w.csv.Write(findingToRow(i+1, &findings[i])); err != nil {
			return err
		}
	}
	return nil
}

// Flush flushes the underlying csv.Writer buffer.
func (w *Writer) Flush() {
	w.csv.Flush()
}

// Error returns any error from the underlying csv.Writer.
func (w *Writer) Error() error {
	return w.csv.Error()
}

// WriteFindingsCSV writes the BOM, header and every finding of r to out.
func WriteFindingsCSV(out io.Writer, r *merge.Result) error {
	if _, err := out.Write(BOM); err != nil {
		return fmt.Errorf("writing bom: %w", err)
	}
	w := NewWriter(out)
	if err := w.WriteHeader(); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	if err := w.WriteFindings(r.Findings); err != nil {
		return fmt.Errorf("writing findings: %w", err)
	}
	w.Flush()
	return w.Error()
}

func findingToRow(n int, f *merge.Finding) []string {
	return []string{
		fmt.Sprint(n),
		string(f.Severity),
		f.Rule,
		f.Field,
		f.Message,
	}
}

// nonAlphanumeric matches characters that are not alphanumeric, hyphen, or underscore.
var nonAlphanumeric = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

// multiUnderscore matches consecutive underscores.
var multiUnderscore = regexp.MustCompile(`_{2,}`)

// SanitizeFilename makes name safe for a Content-Disposition header:
// other characters become _, runs of _ collapse, and the result is cut
// to 100 characters.
func SanitizeFilename(name string) string {
	s := nonAlphanumeric.ReplaceAllString(name, "_")
	s = multiUnderscore.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")
	if len(s) > 100 {
		s = s[:100]
	}
	return s
}

// BuildFilename returns shipment_{prefix}_{YYYY-MM-DD}.{ext}.
func BuildFilename(prefix, ext string, now time.Time) string {
	name := "shipment"
	if p := SanitizeFilename(prefix); p != "" {
		name += "_" + p
	}
	return fmt.Sprintf("%s_%s.%s", name, now.Format("2006-01-02"), ext)
}
