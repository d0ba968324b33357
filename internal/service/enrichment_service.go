package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"shipmerge/internal/config"
	"shipmerge/internal/domain"
	"shipmerge/internal/merge"
	"shipmerge/internal/port"
)

const defaultEnrichmentConcurrency = 4

// EnrichmentService refines resolved counteragents against the company registry.
type EnrichmentService interface {
	// Enrich looks up every present counteragent with a valid BIN and appends
	// one finding per lookup. Existing findings are left untouched.
	Enrich(ctx context.Context, r *merge.Result)
}

type enrichmentService struct {
	registry port.CompanyRegistry
	cfg      *config.EnrichmentConfig
}

// NewEnrichmentService creates a new EnrichmentService implementation.
func NewEnrichmentService(registry port.CompanyRegistry, cfg *config.EnrichmentConfig) EnrichmentService {
	return &enrichmentService{registry: registry, cfg: cfg}
}

type lookup struct {
	role   domain.Role
	ca     *merge.Counteragent
	bin    string
	record *port.RegistryRecord
	err    error
}

func (s *enrichmentService) Enrich(ctx context.Context, r *merge.Result) {
	var lookups []*lookup
	for _, role := range domain.Roles {
		ca := r.Shipment.Counteragents.Get(role)
		if ca == nil || !ca.Present || !merge.ValidTaxID(ca.Legal.BIN) {
			continue
		}
		lookups = append(lookups, &lookup{role: role, ca: ca, bin: merge.NormalizeTaxID(ca.Legal.BIN)})
	}
	if len(lookups) == 0 {
		return
	}

	concurrency := defaultEnrichmentConcurrency
	if s.cfg != nil && s.cfg.Concurrency > 0 {
		concurrency = s.cfg.Concurrency
	}
	sem := make(chan struct{}, concurrency)
	var wg sync.WaitGroup
	for _, l := range lookups {
		wg.Add(1)
		sem <- struct{}{}
		go func(l *lookup) {
			defer wg.Done()
			defer func() { <-sem }()
			l.record, l.err = s.find(ctx, l.bin)
		}(l)
	}
	wg.Wait()

	for _, l := range lookups {
		r.Findings = append(r.Findings, s.apply(l))
	}
}

func (s *enrichmentService) find(ctx context.Context, bin string) (*port.RegistryRecord, error) {
	if s.cfg != nil && s.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
	}
	return s.registry.FindByBIN(ctx, bin)
}

// apply writes a registry hit onto the counteragent and reports the outcome.
func (s *enrichmentService) apply(l *lookup) merge.Finding {
	f := merge.Finding{
		Rule:  fmt.Sprintf("enrich.%s.registry", l.role),
		Field: fmt.Sprintf("%s.legal.bin", l.role),
	}
	switch {
	case errors.Is(l.err, domain.ErrNotFound), l.err == nil && l.record == nil:
		f.Severity = domain.SeverityWarning
		f.Message = fmt.Sprintf("%s: BIN %s not found in company registry", l.role, l.bin)
		return f
	case l.err != nil:
		log.Printf("enrichmentService.Enrich: lookup of %s BIN %s failed: %v", l.role, l.bin, l.err)
		f.Severity = domain.SeverityWarning
		f.Message = fmt.Sprintf("%s: company registry lookup failed for BIN %s", l.role, l.bin)
		return f
	}

	if name := strings.TrimSpace(l.record.NameRu); name != "" {
		l.ca.Legal.NameRu = cases.Upper(language.Und).String(name)
	}
	if addr := strings.TrimSpace(l.record.Address); addr != "" {
		switch {
		case len(l.ca.Addresses) == 0:
			l.ca.Addresses = append(l.ca.Addresses, merge.Address{FullAddress: addr})
		case strings.TrimSpace(l.ca.Addresses[0].FullAddress) == "":
			l.ca.Addresses[0].FullAddress = addr
		}
	}
	f.Severity = domain.SeveritySuccess
	f.Message = fmt.Sprintf("%s: BIN %s confirmed by company registry as %s", l.role, l.bin, l.ca.DisplayName())
	return f
}
