package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"shipmerge/internal/merge"
	"shipmerge/internal/service"
)

// MockMergeService is a mock implementation of service.MergeService.
type MockMergeService struct {
	mock.Mock
}

func (m *MockMergeService) Merge(ctx context.Context, input service.MergeInput) (*service.MergeOutput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.MergeOutput), args.Error(1)
}

func (m *MockMergeService) MergeDocuments(ctx context.Context, docs []*merge.DocumentResult, enrich bool) (*service.MergeOutput, error) {
	args := m.Called(ctx, docs, enrich)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.MergeOutput), args.Error(1)
}
