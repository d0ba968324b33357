// Command seedregistry converts a company registry export (xlsx) into a SQL
// seed file for the company_registry table.
// The first sheet is read; row 0 is a header and columns are BIN, name, address.
// Usage: go run ./cmd/seedregistry [input.xlsx] [output.sql]
// Output defaults to db/seeds/company_registry.sql
package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/xuri/excelize/v2"
)

const (
	batchSize      = 500
	defaultInput   = "company_registry.xlsx"
	defaultOutput  = "db/seeds/company_registry.sql"
	registryBINLen = 12
)

type registryEntry struct {
	bin     string
	name    string
	address string
}

func main() {
	in, out := defaultInput, defaultOutput
	if len(os.Args) > 1 {
		in = os.Args[1]
	}
	if len(os.Args) > 2 {
		out = os.Args[2]
	}
	if err := run(in, out); err != nil {
		log.Fatal(err)
	}
}

func run(inPath, outPath string) error {
	f, err := excelize.OpenFile(inPath)
	if err != nil {
		return fmt.Errorf("open Excel file: %w", err)
	}
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return fmt.Errorf("read registry sheet: %w", err)
	}
	entries, skipped := parseRows(rows)
	log.Printf("registry sheet: %d entries, %d rows skipped", len(entries), skipped)

	out, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}
	defer func() { _ = out.Close() }()

	if err := writeSeed(out, entries); err != nil {
		return err
	}
	log.Printf("Generated %d entries (%d batches) in %s",
		len(entries), (len(entries)+batchSize-1)/batchSize, outPath)
	return nil
}

// parseRows skips the header, rows without a 12-digit BIN, and repeated BINs
// (first row wins).
func parseRows(rows [][]string) (entries []registryEntry, skipped int) {
	seen := make(map[string]bool)
	for i := 1; i < len(rows); i++ {
		row := rows[i]
		bin := digits(cellVal(row, 0))
		name := strings.TrimSpace(cellVal(row, 1))
		if len(bin) != registryBINLen || name == "" || seen[bin] {
			skipped++
			continue
		}
		seen[bin] = true
		entries = append(entries, registryEntry{
			bin:     bin,
			name:    name,
			address: strings.TrimSpace(cellVal(row, 2)),
		})
	}
	return entries, skipped
}

func writeSeed(out io.Writer, entries []registryEntry) error {
	w := func(s string) error { _, werr := fmt.Fprintln(out, s); return werr }

	for _, line := range []string{
		"-- Company registry seed data generated from Excel.",
		fmt.Sprintf("-- %d entries in batches of %d.", len(entries), batchSize),
		"BEGIN;",
		"",
	} {
		if werr := w(line); werr != nil {
			return fmt.Errorf("write header: %w", werr)
		}
	}

	for i := 0; i < len(entries); i += batchSize {
		end := i + batchSize
		if end > len(entries) {
			end = len(entries)
		}
		if err := writeBatch(out, entries[i:end]); err != nil {
			return fmt.Errorf("write batch at offset %d: %w", i, err)
		}
	}

	for _, line := range []string{"", "COMMIT;"} {
		if werr := w(line); werr != nil {
			return fmt.Errorf("write footer: %w", werr)
		}
	}
	return nil
}

func writeBatch(out io.Writer, batch []registryEntry) error {
	if len(batch) == 0 {
		return nil
	}

	var b strings.Builder
	b.WriteString("INSERT INTO company_registry (bin, name_ru, address) VALUES\n")
	for i := range batch {
		e := &batch[i]
		if i > 0 {
			b.WriteString(",\n")
		}
		fmt.Fprintf(&b, "  ('%s', '%s', '%s')", e.bin, escapeSQL(e.name), escapeSQL(e.address))
	}
	b.WriteString("\nON CONFLICT (bin) DO UPDATE SET name_ru = EXCLUDED.name_ru, address = EXCLUDED.address, updated_at = NOW();\n")

	_, err := io.WriteString(out, b.String())
	return err
}

func cellVal(row []string, idx int) string {
	if idx < len(row) {
		return row[idx]
	}
	return ""
}

func digits(s string) string {
	var b strings.Builder
	for _, c := range s {
		if c >= '0' && c <= '9' {
			b.WriteRune(c)
		}
	}
	return b.String()
}

func escapeSQL(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}
