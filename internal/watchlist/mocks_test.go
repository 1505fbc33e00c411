package watchlist

import (
	"context"
	"testing"

	"github.com/stretchr/testify/mock"
)

// StorageMock is a hand-rolled testify mock for the Storage interface.
type StorageMock struct {
	mock.Mock
}

func NewStorageMock(t *testing.T) *StorageMock {
	m := new(StorageMock)
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *StorageMock) AddAddress(ctx context.Context, entry AddressEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *StorageMock) RemoveAddress(ctx context.Context, entry AddressEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *StorageMock) ListAddresses(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)

	var addresses []string
	if v := args.Get(0); v != nil {
		addresses = v.([]string)
	}
	return addresses, args.Error(1)
}
