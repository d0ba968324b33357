package merge

import (
	"fmt"
	"math"
	"strings"

	"shipmerge/internal/domain"
)

// crossCheck is one deterministic check across all mentions of a merge.
type crossCheck struct {
	ruleKey string
	check   func(*Mentions, []Product) []Finding
}

// CrossValidator runs the numeric and identifier cross-checks. Checks are
// independent and always run in the same order.
type CrossValidator struct {
	h      *Heuristics
	checks []crossCheck
}

// NewCrossValidator creates a CrossValidator over h.
func NewCrossValidator(h *Heuristics) *CrossValidator {
	v := &CrossValidator{h: h}
	v.checks = []crossCheck{
		{ruleKey: "xv.financial", check: v.financial},
		{ruleKey: "xv.weight", check: func(m *Mentions, _ []Product) []Finding {
			return v.totals("xv.weight", "Weight check", "totalWeight", m.Weights, fmtAmount)
		}},
		{ruleKey: "xv.packages", check: func(m *Mentions, _ []Product) []Finding {
			return v.totals("xv.packages", "Package check", "totalPackages", m.Packages, fmtCount)
		}},
		{ruleKey: "xv.consignor.name", check: func(m *Mentions, _ []Product) []Finding {
			return v.names(domain.RoleConsignor, m.Roles[domain.RoleConsignor])
		}},
		{ruleKey: "xv.consignee.name", check: func(m *Mentions, _ []Product) []Finding {
			return v.names(domain.RoleConsignee, m.Roles[domain.RoleConsignee])
		}},
		{ruleKey: "xv.vehicles.tractor", check: func(m *Mentions, _ []Product) []Finding {
			return v.plates("tractor", m.Vehicles, func(x *Vehicles) string { return x.Tractor.Plate })
		}},
		{ruleKey: "xv.vehicles.trailer", check: func(m *Mentions, _ []Product) []Finding {
			return v.plates("trailer", m.Vehicles, func(x *Vehicles) string { return x.Trailer.Plate })
		}},
	}
	return v
}

// RuleKeys returns the check keys in execution order.
func (v *CrossValidator) RuleKeys() []string {
	keys := make([]string, len(v.checks))
	for i := range v.checks {
		keys[i] = v.checks[i].ruleKey
	}
	return keys
}

// Validate runs every check and returns their findings in check order.
func (v *CrossValidator) Validate(m *Mentions, products []Product) []Finding {
	var findings []Finding
	for _, c := range v.checks {
		findings = append(findings, c.check(m, products)...)
	}
	return findings
}

func fmtAmount(f float64) string { return fmt.Sprintf("%.2f", f) }

func fmtCount(f float64) string {
	if f == math.Trunc(f) {
		return fmt.Sprintf("%.0f", f)
	}
	return fmt.Sprintf("%.2f", f)
}

func (v *CrossValidator) financial(m *Mentions, products []Product) []Finding {
	var declared *Mention[float64]
	for i := range m.Costs {
		if m.Costs[i].DocType.IsInvoice() {
			declared = &m.Costs[i]
			break
		}
	}
	sum := 0.0
	for i := range products {
		sum += products[i].Cost
	}
	if declared == nil || sum <= 0 {
		return nil
	}

	diff := math.Abs(declared.Data - sum)
	f := Finding{Rule: "xv.financial", Field: "totalCost"}
	// The epsilon absorbs binary rounding of sums such as 0.1+0.2.
	if diff <= v.h.FinancialTolerance+1e-9 {
		f.Severity = domain.SeveritySuccess
		f.Message = fmt.Sprintf("Financial check: invoice total %s (%s) matches product total %s",
			fmtAmount(declared.Data), declared.SourceLabel, fmtAmount(sum))
	} else {
		f.Severity = domain.SeverityError
		f.Message = fmt.Sprintf("Financial check: invoice total %s (%s) does not match product total %s, mismatch of %s",
			fmtAmount(declared.Data), declared.SourceLabel, fmtAmount(sum), fmtAmount(diff))
	}
	return []Finding{f}
}

func (v *CrossValidator) totals(rule, name, field string, mentions []Mention[float64], format func(float64) string) []Finding {
	if len(mentions) < 2 {
		return nil
	}
	equal := true
	for i := 1; i < len(mentions); i++ {
		if math.Abs(mentions[i].Data-mentions[0].Data) > totalsEpsilon {
			equal = false
			break
		}
	}
	if equal {
		return []Finding{{
			Rule:     rule,
			Severity: domain.SeveritySuccess,
			Field:    field,
			Message:  fmt.Sprintf("%s: %s consistent across %d documents", name, format(mentions[0].Data), len(mentions)),
		}}
	}
	parts := make([]string, len(mentions))
	for i := range mentions {
		parts[i] = fmt.Sprintf("%s: %s", mentions[i].SourceLabel, format(mentions[i].Data))
	}
	return []Finding{{
		Rule:     rule,
		Severity: domain.SeverityError,
		Field:    field,
		Message:  fmt.Sprintf("%s: totals differ across documents: %s", name, strings.Join(parts, "; ")),
	}}
}

// names compares the first named mention with the first later mention whose
// normalized name differs, or with the second named mention when all agree.
func (v *CrossValidator) names(role domain.Role, mentions []Mention[Counteragent]) []Finding {
	var named []*Mention[Counteragent]
	for i := range mentions {
		if strings.TrimSpace(mentions[i].Data.DisplayName()) != "" {
			named = append(named, &mentions[i])
		}
	}
	if len(named) < 2 {
		return nil
	}

	first := named[0]
	firstKey := NormalizeName(first.Data.DisplayName(), v.h.LegalFormTokens)
	second := named[1]
	for _, n := range named[1:] {
		if NormalizeName(n.Data.DisplayName(), v.h.LegalFormTokens) != firstKey {
			second = n
			break
		}
	}
	secondKey := NormalizeName(second.Data.DisplayName(), v.h.LegalFormTokens)

	f := Finding{
		Rule:  fmt.Sprintf("xv.%s.name", role),
		Field: fmt.Sprintf("%s.name", role),
	}
	a := strings.TrimSpace(first.Data.DisplayName())
	b := strings.TrimSpace(second.Data.DisplayName())
	switch ratio := Similarity(firstKey, secondKey); {
	case firstKey == secondKey:
		f.Severity = domain.SeveritySuccess
		f.Message = fmt.Sprintf("%s: name matches across %d documents", role, len(named))
	case ratio >= v.h.SimilarityThreshold:
		f.Severity = domain.SeverityError
		f.Message = fmt.Sprintf("%s: suspected typo in name: %q in %s vs %q in %s (similarity %.2f)",
			role, a, first.SourceLabel, b, second.SourceLabel, ratio)
	default:
		f.Severity = domain.SeverityError
		f.Message = fmt.Sprintf("%s: name discrepancy between %s and %s: %q vs %q (similarity %.2f)",
			role, first.SourceLabel, second.SourceLabel, a, b, ratio)
	}
	return []Finding{f}
}

// plates compares the transport document plate with the technical passport plate.
func (v *CrossValidator) plates(unit string, mentions []Mention[Vehicles], plate func(*Vehicles) string) []Finding {
	var transport, passport *Mention[Vehicles]
	for i := range mentions {
		m := &mentions[i]
		if strings.TrimSpace(plate(&m.Data)) == "" {
			continue
		}
		if transport == nil && v.h.IsTransportDoc(m.DocType) {
			transport = m
		}
		if passport == nil && m.DocType == v.h.VehicleDocType {
			passport = m
		}
	}
	if transport == nil || passport == nil {
		return nil
	}

	tp, pp := plate(&transport.Data), plate(&passport.Data)
	f := Finding{
		Rule:  "xv.vehicles." + unit,
		Field: fmt.Sprintf("vehicles.%s.plate", unit),
	}
	if NormalizePlate(tp) == NormalizePlate(pp) {
		f.Severity = domain.SeveritySuccess
		f.Message = fmt.Sprintf("Vehicle check: %s plate %s confirmed by %s and %s",
			unit, NormalizePlate(tp), transport.SourceLabel, passport.SourceLabel)
	} else {
		f.Severity = domain.SeverityError
		f.Message = fmt.Sprintf("Vehicle check: %s plate mismatch: %q in %s vs %q in %s",
			unit, strings.TrimSpace(tp), transport.SourceLabel, strings.TrimSpace(pp), passport.SourceLabel)
	}
	return []Finding{f}
}
