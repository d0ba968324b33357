// Package merge reconciles per-document extraction results of one shipment
// into a single canonical record plus findings describing where the source
// documents agree, conflict, or are incomplete.
//
// The engine is synchronous and keeps no state between calls: every Merge
// allocates its own mentions and findings, so concurrent merges need no locking.
package merge

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"shipmerge/internal/domain"
)

// Engine runs the full merge pipeline.
type Engine struct {
	h            Heuristics
	resolver     *Resolver
	consolidator *Consolidator
	validator    *CrossValidator
}

// NewEngine creates an Engine over a private copy of h.
func NewEngine(h Heuristics) *Engine {
	e := &Engine{h: h}
	e.resolver = NewResolver(&e.h)
	e.consolidator = NewConsolidator(&e.h)
	e.validator = NewCrossValidator(&e.h)
	return e
}

// Heuristics returns the tables the engine runs with.
func (e *Engine) Heuristics() Heuristics {
	return e.h
}

// DecodeDocuments decodes raw extraction results. Entries that are not a JSON
// object decode to nil and are skipped by Merge. Within an object, a field
// whose value does not fit its type is dropped and the rest is kept.
func DecodeDocuments(raw []json.RawMessage) []*DocumentResult {
	docs := make([]*DocumentResult, len(raw))
	for i, r := range raw {
		docs[i] = decodeDocument(r)
	}
	return docs
}

func decodeDocument(r json.RawMessage) *DocumentResult {
	r = bytes.TrimSpace(r)
	if len(r) == 0 || r[0] != '{' {
		return nil
	}
	var d DocumentResult
	if err := json.Unmarshal(r, &d); err == nil {
		return &d
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(r, &fields); err != nil {
		return nil
	}
	for key, value := range fields {
		one, err := json.Marshal(map[string]json.RawMessage{key: value})
		if err != nil || json.Unmarshal(one, &DocumentResult{}) != nil {
			delete(fields, key)
		}
	}
	kept, err := json.Marshal(fields)
	if err != nil {
		return nil
	}
	d = DocumentResult{}
	if err := json.Unmarshal(kept, &d); err != nil {
		return nil
	}
	return &d
}

// Merge reconciles docs into one canonical shipment. The result is never nil
// and is fully populated even when docs is empty or every entry is unusable.
func (e *Engine) Merge(docs []*DocumentResult) *Result {
	m := Aggregate(docs, &e.h)

	var findings []Finding
	var parties Counteragents
	for _, role := range domain.Roles {
		ca, f := e.resolver.Resolve(role, m.Roles[role])
		*parties.Get(role) = ca
		findings = append(findings, f...)
	}

	products := e.consolidator.Consolidate(m.Products)
	findings = append(findings, e.validator.Validate(m, products)...)
	findings = append(findings, embeddedFindings(m.Validations)...)

	shipment := Shipment{
		Counteragents: parties,
		Vehicles:      vehiclesOf(m.Vehicles, e.h.VehicleDocType),
		Countries:     firstTransport(m.Countries, &e.h),
		Products:      products,
		Registry:      registryOf(m.Documents),
		Driver:        bestOf(m.Drivers, e.h.DriverDocType),
		Shipping:      firstTransport(m.Shipping, &e.h),
	}
	findings = append(findings, structuralFindings(&shipment)...)

	if findings == nil {
		findings = []Finding{}
	}
	return &Result{
		Documents: m.Documents,
		Findings:  findings,
		Shipment:  shipment,
	}
}

// bestOf returns the first mention from the authoritative document type,
// else the first mention, else the zero value.
func bestOf[T any](mentions []Mention[T], authoritative domain.DocumentType) T {
	for i := range mentions {
		if mentions[i].DocType == authoritative {
			return mentions[i].Data
		}
	}
	if len(mentions) > 0 {
		return mentions[0].Data
	}
	var zero T
	return zero
}

// firstTransport prefers a mention sourced from a transport document.
func firstTransport[T any](mentions []Mention[T], h *Heuristics) T {
	for i := range mentions {
		if h.IsTransportDoc(mentions[i].DocType) {
			return mentions[i].Data
		}
	}
	if len(mentions) > 0 {
		return mentions[0].Data
	}
	var zero T
	return zero
}

// vehiclesOf picks the tractor and the trailer independently, so a document
// naming only one unit does not blank the other.
func vehiclesOf(mentions []Mention[Vehicles], authoritative domain.DocumentType) Vehicles {
	return Vehicles{
		Tractor: plateOf(mentions, authoritative, func(v *Vehicles) VehiclePlate { return v.Tractor }),
		Trailer: plateOf(mentions, authoritative, func(v *Vehicles) VehiclePlate { return v.Trailer }),
	}
}

// plateOf returns the first non-empty plate from the authoritative document
// type, else the first non-empty plate, normalized.
func plateOf(mentions []Mention[Vehicles], authoritative domain.DocumentType, unit func(*Vehicles) VehiclePlate) VehiclePlate {
	found := -1
	for i := range mentions {
		if NormalizePlate(unit(&mentions[i].Data).Plate) == "" {
			continue
		}
		if mentions[i].DocType == authoritative {
			found = i
			break
		}
		if found < 0 {
			found = i
		}
	}
	if found < 0 {
		return VehiclePlate{}
	}
	p := unit(&mentions[found].Data)
	return VehiclePlate{Plate: NormalizePlate(p.Plate), Country: toUpper(p.Country)}
}

func registryOf(docs []DocumentDescriptor) Registry {
	for _, d := range docs {
		if d.DocumentType == domain.DocTypeRegistry {
			return Registry{Number: d.Number, Date: d.Date}
		}
	}
	return Registry{}
}

// embeddedFindings surfaces warnings and errors the extraction step attached
// to individual documents.
func embeddedFindings(mentions []Mention[EmbeddedValidation]) []Finding {
	var out []Finding
	for _, m := range mentions {
		for _, w := range m.Data.Warnings {
			if w = strings.TrimSpace(w); w != "" {
				out = append(out, Finding{Rule: "document.warning", Severity: domain.SeverityWarning, Message: fmt.Sprintf("%s: %s", m.SourceLabel, w)})
			}
		}
		for _, e := range m.Data.Errors {
			if e = strings.TrimSpace(e); e != "" {
				out = append(out, Finding{Rule: "document.error", Severity: domain.SeverityError, Message: fmt.Sprintf("%s: %s", m.SourceLabel, e)})
			}
		}
	}
	return out
}

// structuralFindings flags mandatory parts of the record that are missing or malformed.
func structuralFindings(s *Shipment) []Finding {
	var out []Finding
	if len(s.Products) == 0 {
		out = append(out, Finding{
			Rule: "structure.products", Severity: domain.SeverityWarning, Field: "products",
			Message: "No products found in any document",
		})
	}
	for _, role := range []domain.Role{domain.RoleConsignor, domain.RoleConsignee, domain.RoleCarrier} {
		ca := s.Counteragents.Get(role)
		if ca.Present && !ValidTaxID(ca.Legal.BIN) {
			out = append(out, Finding{
				Rule: fmt.Sprintf("structure.%s.bin", role), Severity: domain.SeverityWarning,
				Field:   fmt.Sprintf("%s.legal.bin", role),
				Message: fmt.Sprintf("%s: tax identifier %q is not 12 digits", role, ca.Legal.BIN),
			})
		}
	}
	if s.Vehicles.Tractor.Plate == "" {
		out = append(out, Finding{
			Rule: "structure.vehicles.tractor", Severity: domain.SeverityWarning, Field: "vehicles.tractor.plate",
			Message: "No tractor plate found in any document",
		})
	}
	for _, role := range []domain.Role{domain.RoleConsignor, domain.RoleConsignee} {
		if !s.Counteragents.Get(role).Present {
			out = append(out, Finding{
				Rule: fmt.Sprintf("structure.%s", role), Severity: domain.SeverityWarning, Field: string(role),
				Message: fmt.Sprintf("%s: not found in any document", role),
			})
		}
	}
	return out
}
