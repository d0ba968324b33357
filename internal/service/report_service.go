package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"shipmerge/internal/config"
	"shipmerge/internal/domain"
	"shipmerge/internal/export"
	"shipmerge/internal/merge"
	"shipmerge/internal/port"
)

// Report formats.
const (
	FormatXLSX = "xlsx"
	FormatCSV  = "csv"
	FormatJSON = "json"
)

var reportContentTypes = map[string]string{
	FormatXLSX: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	FormatCSV:  "text/csv; charset=utf-8",
	FormatJSON: "application/json",
}

// Report is a rendered merge result.
type Report struct {
	Format      string
	ContentType string
	Filename    string
	Body        []byte
}

// ArchiveOutput locates an archived report.
type ArchiveOutput struct {
	Key       string `json:"key"`
	URL       string `json:"url"`
	ExpiresIn int64  `json:"expiresIn"`
}

// ReportService renders merge results and archives them to object storage.
type ReportService interface {
	Render(r *merge.Result, format string) (*Report, error)
	Archive(ctx context.Context, out *MergeOutput, format string) (*ArchiveOutput, error)
}

type reportService struct {
	storage port.ObjectStorage
	cfg     *config.S3Config
	now     func() time.Time
}

// NewReportService creates a new ReportService. storage may be nil, in which
// case Archive reports domain.ErrArchiveDisabled.
func NewReportService(storage port.ObjectStorage, cfg *config.S3Config) ReportService {
	return &reportService{storage: storage, cfg: cfg, now: time.Now}
}

// ParseFormat normalizes a report format name; empty means xlsx.
func ParseFormat(format string) (string, error) {
	f := strings.ToLower(strings.TrimSpace(format))
	if f == "" {
		f = FormatXLSX
	}
	if _, ok := reportContentTypes[f]; !ok {
		return "", fmt.Errorf("%w: %q", domain.ErrUnsupportedFormat, format)
	}
	return f, nil
}

func (s *reportService) Render(r *merge.Result, format string) (*Report, error) {
	f, err := ParseFormat(format)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	switch f {
	case FormatXLSX:
		err = export.WriteWorkbook(&buf, r)
	case FormatCSV:
		err = export.WriteFindingsCSV(&buf, r)
	case FormatJSON:
		enc := json.NewEncoder(&buf)
		enc.SetIndent("", "  ")
		err = enc.Encode(r)
	}
	if err != nil {
		return nil, fmt.Errorf("rendering %s report: %w", f, err)
	}

	return &Report{
		Format:      f,
		ContentType: reportContentTypes[f],
		Filename:    export.BuildFilename(r.Shipment.Registry.Number, f, s.now()),
		Body:        buf.Bytes(),
	}, nil
}

func (s *reportService) Archive(ctx context.Context, out *MergeOutput, format string) (*ArchiveOutput, error) {
	if s.storage == nil || s.cfg == nil || s.cfg.Bucket == "" {
		return nil, domain.ErrArchiveDisabled
	}
	report, err := s.Render(out.Result, format)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	key := fmt.Sprintf("reports/%04d/%02d/%s.%s", now.Year(), int(now.Month()), out.MergeID, report.Format)

	log.Printf("reportService.Archive: uploading %s report for merge %s (%d bytes)", report.Format, out.MergeID, len(report.Body))
	_, err = s.storage.Upload(ctx, port.UploadInput{
		Bucket:      s.cfg.Bucket,
		Key:         key,
		Body:        bytes.NewReader(report.Body),
		ContentType: report.ContentType,
		Filename:    report.Filename,
		Size:        int64(len(report.Body)),
	})
	if err != nil {
		log.Printf("reportService.Archive: upload of %s failed: %v", key, err)
		return nil, domain.ErrUploadFailed
	}

	url, err := s.storage.GetPresignedURL(ctx, s.cfg.Bucket, key, s.cfg.PresignExpiry)
	if err != nil {
		log.Printf("reportService.Archive: presign of %s failed: %v", key, err)
		if derr := s.storage.Delete(ctx, s.cfg.Bucket, key); derr != nil {
			log.Printf("reportService.Archive: cleanup of %s failed: %v", key, derr)
		}
		return nil, fmt.Errorf("presigning archived report: %w", err)
	}

	return &ArchiveOutput{Key: key, URL: url, ExpiresIn: s.cfg.PresignExpiry}, nil
}
