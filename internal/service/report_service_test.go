package service_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"regexp"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"shipmerge/internal/config"
	"shipmerge/internal/domain"
	"shipmerge/internal/export"
	"shipmerge/internal/merge"
	"shipmerge/internal/port"
	"shipmerge/internal/service"
	"shipmerge/mocks"
)

func testS3Config() config.S3Config {
	return config.S3Config{
		Region:        "us-east-1",
		Bucket:        "test-bucket",
		PresignExpiry: 3600,
	}
}

func sampleOutput(t *testing.T) *service.MergeOutput {
	t.Helper()
	cfg := testMergeConfig()
	out, err := service.NewMergeService(&cfg, nil).Merge(context.Background(), service.MergeInput{Documents: rawDocs(invoiceJSON)})
	require.NoError(t, err)
	return out
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in, want string
		wantErr  bool
	}{
		{in: "", want: service.FormatXLSX},
		{in: "XLSX", want: service.FormatXLSX},
		{in: " csv ", want: service.FormatCSV},
		{in: "json", want: service.FormatJSON},
		{in: "pdf", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := service.ParseFormat(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, domain.ErrUnsupportedFormat)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestReportService_Render(t *testing.T) {
	svc := service.NewReportService(nil, nil)
	out := sampleOutput(t)

	t.Run("xlsx", func(t *testing.T) {
		rep, err := svc.Render(out.Result, "xlsx")
		require.NoError(t, err)
		assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", rep.ContentType)
		assert.Regexp(t, `^shipment_\d{4}-\d{2}-\d{2}\.xlsx$`, rep.Filename)
		// xlsx is a zip archive.
		assert.True(t, bytes.HasPrefix(rep.Body, []byte("PK")))
	})

	t.Run("csv", func(t *testing.T) {
		rep, err := svc.Render(out.Result, "csv")
		require.NoError(t, err)
		assert.True(t, bytes.HasPrefix(rep.Body, export.BOM))
		assert.Contains(t, string(rep.Body), "xv.financial")
	})

	t.Run("json", func(t *testing.T) {
		rep, err := svc.Render(out.Result, "json")
		require.NoError(t, err)
		var decoded merge.Result
		require.NoError(t, json.Unmarshal(rep.Body, &decoded))
		assert.Len(t, decoded.Findings, len(out.Findings))
	})

	t.Run("unsupported", func(t *testing.T) {
		_, err := svc.Render(out.Result, "docx")
		assert.ErrorIs(t, err, domain.ErrUnsupportedFormat)
	})
}

func TestReportService_Archive(t *testing.T) {
	storage := new(mocks.MockObjectStorage)
	cfg := testS3Config()
	svc := service.NewReportService(storage, &cfg)
	out := sampleOutput(t)

	keyPattern := regexp.MustCompile(`^reports/\d{4}/\d{2}/` + out.MergeID.String() + `\.csv$`)
	storage.On("Upload", mock.Anything, mock.MatchedBy(func(in port.UploadInput) bool {
		return in.Bucket == "test-bucket" && keyPattern.MatchString(in.Key) && in.Size > 0 &&
			in.ContentType == "text/csv; charset=utf-8" && strings.HasSuffix(in.Filename, ".csv")
	})).Return(&port.UploadOutput{Location: "s3://test-bucket/key"}, nil)
	storage.On("GetPresignedURL", mock.Anything, "test-bucket", mock.AnythingOfType("string"), int64(3600)).
		Return("https://signed.example.com/report.csv", nil)

	got, err := svc.Archive(context.Background(), out, "csv")

	require.NoError(t, err)
	assert.Regexp(t, keyPattern, got.Key)
	assert.Equal(t, "https://signed.example.com/report.csv", got.URL)
	assert.Equal(t, int64(3600), got.ExpiresIn)
	storage.AssertExpectations(t)
}

func TestReportService_Archive_Disabled(t *testing.T) {
	cfg := config.S3Config{}
	out := &service.MergeOutput{MergeID: uuid.New(), Result: &merge.Result{}}

	_, err := service.NewReportService(new(mocks.MockObjectStorage), &cfg).Archive(context.Background(), out, "json")
	assert.ErrorIs(t, err, domain.ErrArchiveDisabled)

	s3cfg := testS3Config()
	_, err = service.NewReportService(nil, &s3cfg).Archive(context.Background(), out, "json")
	assert.ErrorIs(t, err, domain.ErrArchiveDisabled)
}

func TestReportService_Archive_UploadFails(t *testing.T) {
	storage := new(mocks.MockObjectStorage)
	cfg := testS3Config()
	svc := service.NewReportService(storage, &cfg)
	storage.On("Upload", mock.Anything, mock.AnythingOfType("port.UploadInput")).Return(nil, errors.New("s3 down"))

	_, err := svc.Archive(context.Background(), sampleOutput(t), "json")

	assert.ErrorIs(t, err, domain.ErrUploadFailed)
	storage.AssertNotCalled(t, "GetPresignedURL", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestReportService_Archive_PresignFailsCleansUp(t *testing.T) {
	storage := new(mocks.MockObjectStorage)
	cfg := testS3Config()
	svc := service.NewReportService(storage, &cfg)
	storage.On("Upload", mock.Anything, mock.AnythingOfType("port.UploadInput")).Return(&port.UploadOutput{}, nil)
	storage.On("GetPresignedURL", mock.Anything, "test-bucket", mock.AnythingOfType("string"), int64(3600)).
		Return("", errors.New("signing failed"))
	storage.On("Delete", mock.Anything, "test-bucket", mock.AnythingOfType("string")).Return(nil)

	_, err := svc.Archive(context.Background(), sampleOutput(t), "json")

	require.Error(t, err)
	storage.AssertCalled(t, "Delete", mock.Anything, "test-bucket", mock.AnythingOfType("string"))
}
