package merge_test

import (
	"strings"

	"shipmerge/internal/domain"
	"shipmerge/internal/merge"
)

func party(name, bin string) *merge.Counteragent {
	return &merge.Counteragent{
		Present:    true,
		EntityType: domain.EntityLegal,
		Legal:      merge.LegalInfo{BIN: bin, NameRu: name},
	}
}

func doc(t domain.DocumentType, filename string) *merge.DocumentResult {
	return &merge.DocumentResult{Filename: filename, DocumentType: t}
}

func items(names ...string) []merge.ProductCandidate {
	out := make([]merge.ProductCandidate, 0, len(names))
	for _, n := range names {
		out = append(out, merge.ProductCandidate{
			TariffCode:     "8471300000",
			CommercialName: n,
			GrossWeight:    10,
			Quantity:       1,
			Cost:           100,
		})
	}
	return out
}

func numberedItems(prefix string, n int) []merge.ProductCandidate {
	names := make([]string, n)
	for i := range names {
		names[i] = prefix + " ITEM " + string(rune('A'+i))
	}
	return items(names...)
}

func findingsByRule(findings []merge.Finding, rule string) []merge.Finding {
	var out []merge.Finding
	for _, f := range findings {
		if f.Rule == rule {
			out = append(out, f)
		}
	}
	return out
}

func findingsWithPrefix(findings []merge.Finding, prefix string) []merge.Finding {
	var out []merge.Finding
	for _, f := range findings {
		if strings.HasPrefix(f.Rule, prefix) {
			out = append(out, f)
		}
	}
	return out
}

func mentionsOf(role domain.Role, docs ...*merge.DocumentResult) []merge.Mention[merge.Counteragent] {
	h := merge.DefaultHeuristics()
	return merge.Aggregate(docs, &h).Roles[role]
}
