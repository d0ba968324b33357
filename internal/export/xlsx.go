package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"shipmerge/internal/domain"
	"shipmerge/internal/merge"
)

// Sheet names in workbook order.
const (
	SheetDocuments     = "Documents"
	SheetCounteragents = "Counteragents"
	SheetProducts      = "Products"
	SheetFindings      = "Findings"
)

type sheet struct {
	name   string
	header []any
	rows   func(*merge.Result) [][]any
}

var sheets = []sheet{
	{
		name:   SheetDocuments,
		header: []any{"Filename", "Type", "Number", "Date"},
		rows:   documentRows,
	},
	{
		name:   SheetCounteragents,
		header: []any{"Role", "Present", "Entity Type", "Name", "BIN", "Address", "Certificate"},
		rows:   counteragentRows,
	},
	{
		name:   SheetProducts,
		header: []any{"#", "Tariff Code", "Commercial Name", "Gross Weight", "Quantity", "Cost", "Currency", "Source"},
		rows:   productRows,
	},
	{
		name:   SheetFindings,
		header: []any{"#", "Severity", "Rule", "Field", "Message"},
		rows:   findingRows,
	},
}

// WriteWorkbook renders r as an xlsx workbook with one sheet per section.
func WriteWorkbook(w io.Writer, r *merge.Result) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("creating header style: %w", err)
	}

	for i, s := range sheets {
		if i == 0 {
			if err := f.SetSheetName(f.GetSheetName(0), s.name); err != nil {
				return fmt.Errorf("renaming sheet: %w", err)
			}
		} else if _, err := f.NewSheet(s.name); err != nil {
			return fmt.Errorf("creating sheet %s: %w", s.name, err)
		}
		if err := writeSheet(f, s, r, bold); err != nil {
			return err
		}
	}
	f.SetActiveSheet(0)

	if err := f.Write(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}

func writeSheet(f *excelize.File, s sheet, r *merge.Result, headerStyle int) error {
	header := s.header
	if err := f.SetSheetRow(s.name, "A1", &header); err != nil {
		return fmt.Errorf("writing %s header: %w", s.name, err)
	}
	last, err := excelize.CoordinatesToCellName(len(s.header), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(s.name, "A1", last, headerStyle); err != nil {
		return fmt.Errorf("styling %s header: %w", s.name, err)
	}

	for i, row := range s.rows(r) {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(s.name, cell, &row); err != nil {
			return fmt.Errorf("writing %s row %d: %w", s.name, i+1, err)
		}
	}
	return nil
}

func documentRows(r *merge.Result) [][]any {
	rows := make([][]any, 0, len(r.Documents))
	for _, d := range r.Documents {
		rows = append(rows, []any{d.Filename, d.DocumentType.DisplayName(), d.Number, d.Date})
	}
	return rows
}

func counteragentRows(r *merge.Result) [][]any {
	rows := make([][]any, 0, len(domain.Roles))
	for _, role := range domain.Roles {
		ca := r.Shipment.Counteragents.Get(role)
		if ca == nil {
			continue
		}
		present := "No"
		if ca.Present {
			present = "Yes"
		}
		cert := ""
		if ca.RepresentativeCertificate != nil {
			cert = strings.TrimSpace(ca.RepresentativeCertificate.Number + " " + ca.RepresentativeCertificate.Date)
		}
		rows = append(rows, []any{
			string(role), present, string(ca.EntityType), ca.DisplayName(), ca.Legal.BIN, firstAddress(ca), cert,
		})
	}
	return rows
}

func firstAddress(ca *merge.Counteragent) string {
	if len(ca.Addresses) == 0 {
		return ""
	}
	a := ca.Addresses[0]
	if a.FullAddress != "" {
		return a.FullAddress
	}
	var parts []string
	for _, p := range []string{a.PostalCode, a.CountryCode, a.Region, a.City, a.Street, a.House} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

func productRows(r *merge.Result) [][]any {
	rows := make([][]any, 0, len(r.Shipment.Products))
	for i, p := range r.Shipment.Products {
		rows = append(rows, []any{
			i + 1, p.TariffCode, p.CommercialName, p.GrossWeight, p.Quantity, p.Cost, p.CurrencyCode, p.SourceLabel,
		})
	}
	return rows
}

func findingRows(r *merge.Result) [][]any {
	rows := make([][]any, 0, len(r.Findings))
	for i, f := range r.Findings {
		rows = append(rows, []any{i + 1, string(f.Severity), f.Rule, f.Field, f.Message})
	}
	return rows
}
