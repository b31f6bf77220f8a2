package mocks

import (
	"context"

	"github.com/kevin07696/borica-gateway/internal/adapters/ports"
	"github.com/stretchr/testify/mock"
)

// MockSecretReader mocks ports.SecretReader
type MockSecretReader struct {
	mock.Mock
}

func (m *MockSecretReader) GetSecret(ctx context.Context, path string) (*ports.Secret, error) {
	args := m.Called(ctx, path)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ports.Secret), args.Error(1)
}

func (m *MockSecretReader) GetSecretVersion(ctx context.Context, path, version string) (*ports.Secret, error) {
	args := m.Called(ctx, path, version)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ports.Secret), args.Error(1)
}
