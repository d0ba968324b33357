package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/google/uuid"

	"shipmerge/internal/config"
	"shipmerge/internal/domain"
	"shipmerge/internal/merge"
)

// MergeInput is the DTO for a merge request.
type MergeInput struct {
	Documents []json.RawMessage
	Enrich    bool
}

// MergeOutput is a merge result tagged with the id of the run.
type MergeOutput struct {
	MergeID uuid.UUID `json:"mergeId"`
	*merge.Result
}

// MergeService reconciles the extraction results of one shipment.
type MergeService interface {
	// Merge decodes raw extraction results and merges them. Entries that do
	// not decode as a document are skipped.
	Merge(ctx context.Context, input MergeInput) (*MergeOutput, error)
	// MergeDocuments merges already decoded documents.
	MergeDocuments(ctx context.Context, docs []*merge.DocumentResult, enrich bool) (*MergeOutput, error)
}

type mergeService struct {
	engine   *merge.Engine
	enricher EnrichmentService
	cfg      *config.MergeConfig
}

// NewMergeService creates a MergeService. enricher may be nil when no
// company registry is configured.
func NewMergeService(cfg *config.MergeConfig, enricher EnrichmentService) MergeService {
	return &mergeService{
		engine:   merge.NewEngine(HeuristicsFromConfig(cfg)),
		enricher: enricher,
		cfg:      cfg,
	}
}

// HeuristicsFromConfig applies the configured thresholds to the default
// tables. Zero values keep the defaults.
func HeuristicsFromConfig(cfg *config.MergeConfig) merge.Heuristics {
	h := merge.DefaultHeuristics()
	if cfg == nil {
		return h
	}
	if cfg.SimilarityThreshold > 0 {
		h.SimilarityThreshold = cfg.SimilarityThreshold
	}
	if cfg.FinancialTolerance > 0 {
		h.FinancialTolerance = cfg.FinancialTolerance
	}
	if cfg.DefaultCurrency != "" {
		h.DefaultCurrency = cfg.DefaultCurrency
	}
	return h
}

func (s *mergeService) Merge(ctx context.Context, input MergeInput) (*MergeOutput, error) {
	if input.Documents == nil {
		return nil, fmt.Errorf("%w: documents are required", domain.ErrInvalidInput)
	}
	if err := s.checkLimit(len(input.Documents)); err != nil {
		return nil, err
	}

	docs := merge.DecodeDocuments(input.Documents)
	skipped := 0
	for _, d := range docs {
		if d == nil {
			skipped++
		}
	}
	if skipped > 0 {
		log.Printf("mergeService.Merge: skipped %d of %d entries that are not documents", skipped, len(docs))
	}
	return s.run(ctx, docs, input.Enrich)
}

func (s *mergeService) MergeDocuments(ctx context.Context, docs []*merge.DocumentResult, enrich bool) (*MergeOutput, error) {
	if err := s.checkLimit(len(docs)); err != nil {
		return nil, err
	}
	return s.run(ctx, docs, enrich)
}

func (s *mergeService) checkLimit(n int) error {
	if s.cfg != nil && s.cfg.MaxDocuments > 0 && n > s.cfg.MaxDocuments {
		return fmt.Errorf("%w: %d documents, limit is %d", domain.ErrTooManyDocuments, n, s.cfg.MaxDocuments)
	}
	return nil
}

func (s *mergeService) run(ctx context.Context, docs []*merge.DocumentResult, enrich bool) (*MergeOutput, error) {
	out := &MergeOutput{MergeID: uuid.New(), Result: s.engine.Merge(docs)}

	if enrich {
		if s.enricher == nil {
			out.Findings = append(out.Findings, merge.Finding{
				Rule:     "enrich.registry",
				Severity: domain.SeverityWarning,
				Message:  "Registry enrichment requested but no company registry is configured",
			})
		} else {
			s.enricher.Enrich(ctx, out.Result)
		}
	}

	log.Printf("mergeService.Merge: merge %s: %d documents, %d products, findings success=%d warning=%d error=%d",
		out.MergeID, len(out.Documents), len(out.Shipment.Products),
		out.Count(domain.SeveritySuccess), out.Count(domain.SeverityWarning), out.Count(domain.SeverityError))
	return out, nil
}
