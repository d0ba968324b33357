package merge

import (
	"fmt"
	"strings"

	"shipmerge/internal/domain"
)

// Resolver picks one canonical counteragent per role from its mentions.
type Resolver struct {
	h *Heuristics
}

// NewResolver creates a Resolver over h.
func NewResolver(h *Heuristics) *Resolver {
	return &Resolver{h: h}
}

// distinctValue is one distinct value and the labels of the mentions carrying it.
type distinctValue struct {
	value   string
	sources []string
}

func (d distinctValue) String() string {
	return fmt.Sprintf("%q (%s)", d.value, strings.Join(d.sources, ", "))
}

// collectDistinct groups non-empty keys in first-seen order. display holds the
// value shown in messages for each key.
func collectDistinct(mentions []Mention[Counteragent], key, display func(*Counteragent) string) []distinctValue {
	var out []distinctValue
	index := make(map[string]int)
	for i := range mentions {
		k := key(&mentions[i].Data)
		if k == "" {
			continue
		}
		if j, ok := index[k]; ok {
			out[j].sources = appendUnique(out[j].sources, mentions[i].SourceLabel)
			continue
		}
		index[k] = len(out)
		out = append(out, distinctValue{value: display(&mentions[i].Data), sources: []string{mentions[i].SourceLabel}})
	}
	return out
}

// nameKey compares names ignoring case and whitespace.
func nameKey(name string) string {
	return strings.Join(strings.Fields(toUpper(name)), "")
}

func appendUnique(list []string, s string) []string {
	for _, v := range list {
		if v == s {
			return list
		}
	}
	return append(list, s)
}

// Resolve returns the canonical counteragent for role and the findings raised
// while resolving it. With no mentions the result is an explicit absent record.
func (r *Resolver) Resolve(role domain.Role, mentions []Mention[Counteragent]) (Counteragent, []Finding) {
	if len(mentions) == 0 {
		return Counteragent{Present: false, Addresses: []Address{}}, nil
	}

	var findings []Finding
	findings = append(findings, r.checkNames(role, mentions)...)
	findings = append(findings, r.checkTaxIDs(role, mentions)...)

	base := r.pickBase(role, mentions)
	resolved := cloneCounteragent(&mentions[base].Data)
	r.backfill(&resolved, mentions, base)

	resolved.Present = true
	resolved.Legal.NameRu = toUpper(resolved.Legal.NameRu)
	resolved.NonResidentLegal.NameRu = toUpper(resolved.NonResidentLegal.NameRu)
	resolved.Legal.BIN = NormalizeTaxID(resolved.Legal.BIN)
	if resolved.Addresses == nil {
		resolved.Addresses = []Address{}
	}
	return resolved, findings
}

func (r *Resolver) checkNames(role domain.Role, mentions []Mention[Counteragent]) []Finding {
	names := collectDistinct(mentions,
		func(c *Counteragent) string { return nameKey(c.DisplayName()) },
		func(c *Counteragent) string { return strings.TrimSpace(c.DisplayName()) },
	)
	if len(names) < 2 {
		return nil
	}
	a, b := names[0], names[1]
	ratio := Similarity(NormalizeName(a.value, r.h.LegalFormTokens), NormalizeName(b.value, r.h.LegalFormTokens))
	f := Finding{
		Rule:     fmt.Sprintf("resolve.%s.name", role),
		Severity: domain.SeverityWarning,
		Field:    fmt.Sprintf("%s.name", role),
	}
	if ratio >= r.h.SimilarityThreshold {
		f.Message = fmt.Sprintf("%s: probable typo in name: %s vs %s (similarity %.2f)", role, a, b, ratio)
	} else {
		f.Message = fmt.Sprintf("%s: unresolved name conflict: %s vs %s (similarity %.2f)", role, a, b, ratio)
	}
	return []Finding{f}
}

func (r *Resolver) checkTaxIDs(role domain.Role, mentions []Mention[Counteragent]) []Finding {
	ids := collectDistinct(mentions,
		func(c *Counteragent) string { return NormalizeTaxID(c.Legal.BIN) },
		func(c *Counteragent) string { return NormalizeTaxID(c.Legal.BIN) },
	)
	if len(ids) < 2 {
		return nil
	}
	parts := make([]string, len(ids))
	for i := range ids {
		parts[i] = ids[i].String()
	}
	return []Finding{{
		Rule:     fmt.Sprintf("resolve.%s.bin", role),
		Severity: domain.SeverityError,
		Field:    fmt.Sprintf("%s.legal.bin", role),
		Message:  fmt.Sprintf("%s: conflicting tax identifiers: %s", role, strings.Join(parts, "; ")),
	}}
}

// score rates how complete a mention is; higher wins.
func (r *Resolver) score(role domain.Role, m *Mention[Counteragent]) int {
	c := &m.Data
	s := 0
	if strings.TrimSpace(c.Legal.BIN) != "" {
		s += r.h.ScoreTaxID
	}
	if strings.TrimSpace(c.DisplayName()) != "" {
		s += r.h.ScoreName
	}
	if len(c.Addresses) > 0 {
		s += r.h.ScoreAddress
		if strings.TrimSpace(c.Addresses[0].FullAddress) != "" {
			s += r.h.ScoreFullAddress
		}
	}
	switch role {
	case domain.RoleConsignor, domain.RoleConsignee, domain.RoleCarrier:
		if r.h.IsTransportDoc(m.DocType) {
			s += r.h.ScoreTransportDoc
		}
	case domain.RoleDeclarant:
		if hasCertificate(c) {
			s += r.h.ScoreDeclarantCert
		}
	}
	return s
}

// pickBase returns the index of the highest scoring mention; the first wins ties.
func (r *Resolver) pickBase(role domain.Role, mentions []Mention[Counteragent]) int {
	best, bestScore := 0, -1
	for i := range mentions {
		if s := r.score(role, &mentions[i]); s > bestScore {
			best, bestScore = i, s
		}
	}
	return best
}

// backfill fills fields left empty on c from the other mentions, first value wins.
func (r *Resolver) backfill(c *Counteragent, mentions []Mention[Counteragent], base int) {
	for i := range mentions {
		if i == base {
			continue
		}
		donor := &mentions[i].Data
		if c.EntityType == "" && donor.EntityType != "" {
			c.EntityType = donor.EntityType
		}
		if strings.TrimSpace(c.Legal.BIN) == "" && strings.TrimSpace(donor.Legal.BIN) != "" {
			c.Legal.BIN = donor.Legal.BIN
		}
		if strings.TrimSpace(c.DisplayName()) == "" && strings.TrimSpace(donor.DisplayName()) != "" {
			c.Legal.NameRu = donor.Legal.NameRu
			c.NonResidentLegal.NameRu = donor.NonResidentLegal.NameRu
		}
		if len(c.Addresses) == 0 && len(donor.Addresses) > 0 {
			c.Addresses = append([]Address(nil), donor.Addresses...)
		}
		if !hasCertificate(c) && hasCertificate(donor) {
			cert := *donor.RepresentativeCertificate
			c.RepresentativeCertificate = &cert
		}
	}
}

func hasCertificate(c *Counteragent) bool {
	return c.RepresentativeCertificate != nil && strings.TrimSpace(c.RepresentativeCertificate.Number) != ""
}

// cloneCounteragent copies c so the resolved record never aliases input slices.
func cloneCounteragent(c *Counteragent) Counteragent {
	out := *c
	if c.Addresses != nil {
		out.Addresses = append([]Address(nil), c.Addresses...)
	}
	if c.RepresentativeCertificate != nil {
		cert := *c.RepresentativeCertificate
		out.RepresentativeCertificate = &cert
	}
	return out
}
