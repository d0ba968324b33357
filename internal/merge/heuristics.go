package merge

import (
	"path"
	"strings"

	"shipmerge/internal/domain"
)

const (
	defaultSimilarityThreshold = 0.8
	defaultFinancialTolerance  = 0.1
	defaultCurrency            = "USD"
	tariffCodeLength           = 6
	taxIDLength                = 12
	totalsEpsilon              = 0.001
)

// Heuristics holds the static tables and thresholds that drive reconciliation.
// It is plain data so callers can inspect, extend, or override any table
// without touching the algorithms that read it.
type Heuristics struct {
	// SimilarityThreshold splits probable typos (>=) from genuine conflicts.
	SimilarityThreshold float64
	// FinancialTolerance is the absolute difference allowed between the
	// declared invoice total and the sum of product costs.
	FinancialTolerance float64
	// DefaultCurrency is assigned to products that declare none.
	DefaultCurrency string

	// ProductBlacklist lists upper-cased commercial names that denote totals
	// or placeholders rather than goods.
	ProductBlacklist []string
	// MinProductNameLength is the shortest commercial name kept.
	MinProductNameLength int
	// SourcePriority ranks product sources by document type.
	SourcePriority map[domain.DocumentType]float64
	// SpreadsheetExtensions reclassify an invoice as INVOICE_EXCEL.
	SpreadsheetExtensions []string

	// LegalFormTokens are stripped from names before comparison.
	LegalFormTokens []string

	// TransportDocTypes are the primary transport documents.
	TransportDocTypes []domain.DocumentType
	// VehicleDocType is authoritative for vehicle plates.
	VehicleDocType domain.DocumentType
	// DriverDocType is authoritative for driver identity.
	DriverDocType domain.DocumentType

	// ReservedSourceLabels are synthetic totals keys that never count as a
	// document source in the weight and package checks.
	ReservedSourceLabels []string

	// Completeness score weights.
	ScoreTaxID         int
	ScoreName          int
	ScoreAddress       int
	ScoreFullAddress   int
	ScoreTransportDoc  int
	ScoreDeclarantCert int
}

// DefaultHeuristics returns the production tables.
func DefaultHeuristics() Heuristics {
	return Heuristics{
		SimilarityThreshold: defaultSimilarityThreshold,
		FinancialTolerance:  defaultFinancialTolerance,
		DefaultCurrency:     defaultCurrency,
		ProductBlacklist: []string{
			"TOTAL",
			"TOTAL:",
			"GRAND TOTAL",
			"SUBTOTAL",
			"SUB TOTAL",
			"SUMMARY",
			"AS PER INVOICE",
			"AS PER ATTACHED INVOICE",
			"SEE ATTACHED",
			"SEE INVOICE",
			"VARIOUS GOODS",
			"GENERAL CARGO",
			"ИТОГО",
			"ВСЕГО",
			"ИТОГО ПО ИНВОЙСУ",
			"СОГЛАСНО ИНВОЙСУ",
			"СОГЛАСНО ИНВОЙСА",
			"СМ. ИНВОЙС",
			"СБОРНЫЙ ГРУЗ",
			"ТНП",
		},
		MinProductNameLength: 3,
		SourcePriority: map[domain.DocumentType]float64{
			domain.DocTypeRegistry:     4,
			domain.DocTypeInvoiceExcel: 3,
			domain.DocTypeCMR:          2,
			domain.DocTypeTTN:          2,
			domain.DocTypeTransportDoc: 2,
			domain.DocTypePackingList:  1.5,
			domain.DocTypeInvoice:      1,
			domain.DocTypeOther:        0,
		},
		SpreadsheetExtensions: []string{".xlsx", ".xls", ".xlsm", ".csv", ".ods"},
		LegalFormTokens: []string{
			"LTD", "LLC", "LLP", "INC", "CORP", "CO", "GMBH", "AG", "SA", "SRL", "SPA", "BV", "PLC", "JSC", "OOO", "TOO",
			"ТОО", "АО", "ООО", "ОАО", "ЗАО", "ПАО", "ИП", "ЧП", "ТДО", "КХ", "ПК",
		},
		TransportDocTypes: []domain.DocumentType{
			domain.DocTypeTransportDoc,
			domain.DocTypeCMR,
			domain.DocTypeTTN,
		},
		VehicleDocType:       domain.DocTypeVehicleDoc,
		DriverDocType:        domain.DocTypeDriverID,
		ReservedSourceLabels: []string{"final", "source"},
		ScoreTaxID:           3,
		ScoreName:            2,
		ScoreAddress:         1,
		ScoreFullAddress:     1,
		ScoreTransportDoc:    20,
		ScoreDeclarantCert:   30,
	}
}

// IsTransportDoc reports whether t is a primary transport document.
func (h *Heuristics) IsTransportDoc(t domain.DocumentType) bool {
	for _, td := range h.TransportDocTypes {
		if td == t {
			return true
		}
	}
	return false
}

// Priority returns the product source priority for a document, reclassifying
// spreadsheet invoices first. Unknown types rank as OTHER.
func (h *Heuristics) Priority(t domain.DocumentType, filename string) float64 {
	t = h.ProductSourceType(t, filename)
	if p, ok := h.SourcePriority[t]; ok {
		return p
	}
	return h.SourcePriority[domain.DocTypeOther]
}

// ProductSourceType returns INVOICE_EXCEL for invoices with a spreadsheet
// extension and t otherwise.
func (h *Heuristics) ProductSourceType(t domain.DocumentType, filename string) domain.DocumentType {
	if t != domain.DocTypeInvoice {
		return t
	}
	ext := strings.ToLower(path.Ext(filename))
	for _, e := range h.SpreadsheetExtensions {
		if ext == e {
			return domain.DocTypeInvoiceExcel
		}
	}
	return t
}

// IsPlaceholder reports whether an upper-cased, trimmed commercial name is in
// ProductBlacklist. Names shorter than MinProductNameLength are dropped
// separately by the consolidator.
func (h *Heuristics) IsPlaceholder(name string) bool {
	for _, b := range h.ProductBlacklist {
		if name == b {
			return true
		}
	}
	return false
}

// IsReservedLabel reports whether label is a synthetic totals key.
func (h *Heuristics) IsReservedLabel(label string) bool {
	l := strings.ToLower(strings.TrimSpace(label))
	for _, r := range h.ReservedSourceLabels {
		if l == r {
			return true
		}
	}
	return false
}
