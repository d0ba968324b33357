package merge

import (
	"fmt"
	"strings"

	"shipmerge/internal/domain"
)

// Mention is one value found in one document, with the document it came from.
type Mention[T any] struct {
	SourceLabel string              `json:"sourceLabel"`
	DocType     domain.DocumentType `json:"docType"`
	Data        T                   `json:"data"`
}

// ProductSource is the line items of one document.
type ProductSource struct {
	Filename string
	Items    []ProductCandidate
}

// Mentions groups every mention of one merge by role or field. Each list
// keeps input document order.
type Mentions struct {
	Roles       map[domain.Role][]Mention[Counteragent]
	Vehicles    []Mention[Vehicles]
	Drivers     []Mention[Driver]
	Countries   []Mention[Countries]
	Shipping    []Mention[Shipping]
	Products    []Mention[ProductSource]
	Weights     []Mention[float64]
	Packages    []Mention[float64]
	Costs       []Mention[float64]
	Validations []Mention[EmbeddedValidation]
	Documents   []DocumentDescriptor
}

// SourceLabel builds the human-readable provenance label of a document.
// position is the 1-based index of the document in the input.
func SourceLabel(t domain.DocumentType, filename string, position int) string {
	filename = strings.TrimSpace(filename)
	if filename == "" {
		return fmt.Sprintf("%s (document %d)", t.DisplayName(), position)
	}
	return fmt.Sprintf("%s (%s)", t.DisplayName(), filename)
}

// Aggregate walks docs in order and collects role- and field-scoped mentions.
// Nil and error-flagged documents are skipped; documents missing a payload
// simply contribute nothing for it. Totals from documents named like a
// reserved synthetic key are not collected.
func Aggregate(docs []*DocumentResult, h *Heuristics) *Mentions {
	m := &Mentions{
		Roles:     make(map[domain.Role][]Mention[Counteragent], len(domain.Roles)),
		Documents: []DocumentDescriptor{},
	}
	for i, doc := range docs {
		if doc == nil || strings.TrimSpace(doc.Error) != "" {
			continue
		}
		t := domain.ParseDocumentType(string(doc.DocumentType))
		label := SourceLabel(t, doc.Filename, i+1)

		m.Documents = append(m.Documents, DocumentDescriptor{
			Filename:     doc.Filename,
			DocumentType: t,
			Number:       strings.TrimSpace(doc.Number),
			Date:         strings.TrimSpace(doc.Date),
		})

		for _, role := range domain.Roles {
			ca := doc.Counteragent(role)
			if ca == nil || !ca.Present {
				continue
			}
			m.Roles[role] = append(m.Roles[role], Mention[Counteragent]{SourceLabel: label, DocType: t, Data: *ca})
		}
		if doc.Vehicles != nil {
			m.Vehicles = append(m.Vehicles, Mention[Vehicles]{SourceLabel: label, DocType: t, Data: *doc.Vehicles})
		}
		if doc.Driver != nil {
			m.Drivers = append(m.Drivers, Mention[Driver]{SourceLabel: label, DocType: t, Data: *doc.Driver})
		}
		if doc.Countries != nil {
			m.Countries = append(m.Countries, Mention[Countries]{SourceLabel: label, DocType: t, Data: *doc.Countries})
		}
		if doc.Shipping != nil {
			m.Shipping = append(m.Shipping, Mention[Shipping]{SourceLabel: label, DocType: t, Data: *doc.Shipping})
		}
		if len(doc.Products) > 0 {
			m.Products = append(m.Products, Mention[ProductSource]{
				SourceLabel: label,
				DocType:     t,
				Data:        ProductSource{Filename: doc.Filename, Items: doc.Products},
			})
		}
		if !h.IsReservedLabel(doc.Filename) {
			if w := doc.TotalWeight.Float(); w > 0 {
				m.Weights = append(m.Weights, Mention[float64]{SourceLabel: label, DocType: t, Data: w})
			}
			if p := doc.TotalPackages.Float(); p > 0 {
				m.Packages = append(m.Packages, Mention[float64]{SourceLabel: label, DocType: t, Data: p})
			}
		}
		if c := doc.TotalCost.Float(); c > 0 {
			m.Costs = append(m.Costs, Mention[float64]{SourceLabel: label, DocType: t, Data: c})
		}
		if v := doc.Validation; v != nil && (len(v.Warnings) > 0 || len(v.Errors) > 0) {
			m.Validations = append(m.Validations, Mention[EmbeddedValidation]{SourceLabel: label, DocType: t, Data: *v})
		}
	}
	return m
}
