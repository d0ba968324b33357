package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"shipmerge/internal/port"
)

// MockCompanyRegistry is a mock implementation of port.CompanyRegistry.
type MockCompanyRegistry struct {
	mock.Mock
}

func (m *MockCompanyRegistry) FindByBIN(ctx context.Context, bin string) (*port.RegistryRecord, error) {
	args := m.Called(ctx, bin)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*port.RegistryRecord), args.Error(1)
}

func (m *MockCompanyRegistry) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
