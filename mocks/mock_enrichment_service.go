package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"shipmerge/internal/merge"
)

// MockEnrichmentService is a mock implementation of service.EnrichmentService.
type MockEnrichmentService struct {
	mock.Mock
}

func (m *MockEnrichmentService) Enrich(ctx context.Context, r *merge.Result) {
	m.Called(ctx, r)
}
