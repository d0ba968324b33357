package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/spf13/cobra"

	"shipmerge/internal/config"
	"shipmerge/internal/repository/postgres"
	"shipmerge/internal/service"
)

type mergeFlags struct {
	format    string
	out       string
	enrich    bool
	threshold float64
}

func newMergeCommand() *cobra.Command {
	flags := &mergeFlags{}
	cmd := &cobra.Command{
		Use:   "merge FILE...",
		Short: "Merge extraction result files into one shipment report",
		Long: `Merge reads JSON files, each holding either an array of document
extraction results or a single one, and merges them in argument order.`,
		Args: cobra.MinimumNArgs(1),
		Example: `  shipmerge merge invoice.json cmr.json            # JSON result on stdout
  shipmerge merge --format xlsx --out report.xlsx docs/*.json
  SHIPMERGE_DB_ENABLED=true shipmerge merge --enrich docs.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMerge(cmd, flags, args)
		},
	}

	cmd.Flags().StringVarP(&flags.format, "format", "f", service.FormatJSON, "output format: json, xlsx or csv")
	cmd.Flags().StringVarP(&flags.out, "out", "o", "", "output file (default stdout)")
	cmd.Flags().BoolVar(&flags.enrich, "enrich", false, "confirm tax ids against the company registry")
	cmd.Flags().Float64Var(&flags.threshold, "threshold", 0, "name similarity threshold (default from config)")
	return cmd
}

func runMerge(cmd *cobra.Command, flags *mergeFlags, files []string) error {
	format, err := service.ParseFormat(flags.format)
	if err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if flags.threshold != 0 {
		if flags.threshold < 0 || flags.threshold > 1 {
			return fmt.Errorf("--threshold must be within [0, 1], got %v", flags.threshold)
		}
		cfg.Merge.SimilarityThreshold = flags.threshold
	}

	docs, err := readDocuments(files)
	if err != nil {
		return err
	}

	var enricher service.EnrichmentService
	if flags.enrich && cfg.DB.Enabled {
		db, err := postgres.NewDB(cmd.Context(), &cfg.DB)
		if err != nil {
			return err
		}
		defer db.Close()
		enricher = service.NewEnrichmentService(postgres.NewCompanyRegistryRepo(db), &cfg.Enrichment)
	}

	out, err := service.NewMergeService(&cfg.Merge, enricher).Merge(cmd.Context(), service.MergeInput{
		Documents: docs,
		Enrich:    flags.enrich,
	})
	if err != nil {
		return err
	}

	report, err := service.NewReportService(nil, nil).Render(out.Result, format)
	if err != nil {
		return err
	}

	if flags.out == "" {
		_, err = cmd.OutOrStdout().Write(report.Body)
		return err
	}
	if err := os.WriteFile(flags.out, report.Body, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", flags.out, err)
	}
	log.Printf("shipmerge: merge %s written to %s (%d findings)", out.MergeID, flags.out, len(out.Findings))
	return nil
}

// readDocuments concatenates the documents of every file, in order.
func readDocuments(files []string) ([]json.RawMessage, error) {
	docs := []json.RawMessage{}
	for _, name := range files {
		f, err := os.Open(name)
		if err != nil {
			return nil, err
		}
		batch, err := decodeFile(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		docs = append(docs, batch...)
	}
	return docs, nil
}

// decodeFile accepts either a JSON array of documents or a single document.
func decodeFile(r io.Reader) ([]json.RawMessage, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, fmt.Errorf("empty file")
	}

	if data[0] == '[' {
		var batch []json.RawMessage
		if err := json.Unmarshal(data, &batch); err != nil {
			return nil, fmt.Errorf("decoding document array: %w", err)
		}
		return batch, nil
	}
	if !json.Valid(data) {
		return nil, fmt.Errorf("invalid JSON")
	}
	return []json.RawMessage{json.RawMessage(data)}, nil
}
