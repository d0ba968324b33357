package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"shipmerge/internal/merge"
	"shipmerge/internal/service"
)

// MockReportService is a mock implementation of service.ReportService.
type MockReportService struct {
	mock.Mock
}

func (m *MockReportService) Render(r *merge.Result, format string) (*service.Report, error) {
	args := m.Called(r, format)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Report), args.Error(1)
}

func (m *MockReportService) Archive(ctx context.Context, out *service.MergeOutput, format string) (*service.ArchiveOutput, error) {
	args := m.Called(ctx, out, format)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ArchiveOutput), args.Error(1)
}
