package mocks

import (
	"context"

	"access-sync/core/seam"

	"github.com/stretchr/testify/mock"
)

// Provider is a mock implementation of reconcile.CodeProvider
type Provider struct {
	mock.Mock
}

func (m *Provider) ListAccessCodes(ctx context.Context, deviceID string) ([]seam.AccessCode, error) {
	args := m.Called(ctx, deviceID)
	if codes, ok := args.Get(0).([]seam.AccessCode); ok {
		return codes, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Provider) CreateAccessCode(ctx context.Context, params seam.CreateParams) (*seam.AccessCode, error) {
	args := m.Called(ctx, params)
	if code, ok := args.Get(0).(*seam.AccessCode); ok {
		return code, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Provider) UpdateAccessCode(ctx context.Context, params seam.UpdateParams) error {
	args := m.Called(ctx, params)
	return args.Error(0)
}

func (m *Provider) DeleteAccessCode(ctx context.Context, accessCodeID string) error {
	args := m.Called(ctx, accessCodeID)
	return args.Error(0)
}
