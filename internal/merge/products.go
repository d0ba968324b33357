package merge

import (
	"math"
	"sort"
	"strings"
)

// Consolidator selects the canonical product list among per-document sources.
type Consolidator struct {
	h *Heuristics
}

// NewConsolidator creates a Consolidator over h.
func NewConsolidator(h *Heuristics) *Consolidator {
	return &Consolidator{h: h}
}

// productList is the normalized items of one source document.
type productList struct {
	priority float64
	items    []Product
}

// Consolidate filters and normalizes every source, then returns the items of
// the highest priority source (largest on ties) followed by the items of any
// other source with the same positive priority.
func (c *Consolidator) Consolidate(sources []Mention[ProductSource]) []Product {
	lists := make([]productList, 0, len(sources))
	for i := range sources {
		src := &sources[i]
		items := c.normalize(src.SourceLabel, src.Data.Items)
		if len(items) == 0 {
			continue
		}
		lists = append(lists, productList{
			priority: c.h.Priority(src.DocType, src.Data.Filename),
			items:    items,
		})
	}

	lists = dropUnranked(lists)
	if len(lists) == 0 {
		return []Product{}
	}

	sort.SliceStable(lists, func(i, j int) bool {
		if lists[i].priority != lists[j].priority {
			return lists[i].priority > lists[j].priority
		}
		return len(lists[i].items) > len(lists[j].items)
	})

	top := lists[0]
	out := append([]Product{}, top.items...)
	if top.priority > 0 {
		for _, l := range lists[1:] {
			if l.priority == top.priority {
				out = append(out, l.items...)
			}
		}
	}
	return out
}

// dropUnranked removes priority-0 lists unless nothing else is left.
func dropUnranked(lists []productList) []productList {
	ranked := make([]productList, 0, len(lists))
	for _, l := range lists {
		if l.priority > 0 {
			ranked = append(ranked, l)
		}
	}
	if len(ranked) == 0 {
		return lists
	}
	return ranked
}

// normalize drops placeholder rows and coerces the numeric fields.
func (c *Consolidator) normalize(label string, items []ProductCandidate) []Product {
	out := make([]Product, 0, len(items))
	for i := range items {
		p := &items[i]
		name := toUpper(p.CommercialName)
		if len([]rune(name)) < c.h.MinProductNameLength || c.h.IsPlaceholder(name) {
			continue
		}
		currency := toUpper(p.CurrencyCode)
		if currency == "" {
			currency = c.h.DefaultCurrency
		}
		out = append(out, Product{
			TariffCode:     NormalizeTariffCode(string(p.TariffCode)),
			CommercialName: strings.TrimSpace(p.CommercialName),
			GrossWeight:    nonNegative(p.GrossWeight.Float()),
			Quantity:       quantity(p.Quantity.Float()),
			Cost:           nonNegative(p.Cost.Float()),
			CurrencyCode:   currency,
			SourceLabel:    label,
		})
	}
	return out
}

// quantity rounds f to a whole count, clamped to [0, math.MaxInt].
func quantity(f float64) int {
	f = math.Round(nonNegative(f))
	if f >= float64(math.MaxInt) {
		return math.MaxInt
	}
	return int(f)
}

func nonNegative(f float64) float64 {
	if f < 0 || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}
