package watchlist

import (
	"errors"
	"testing"

	"github.com/gabapcia/txsentinel/internal/pkg/validator"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Run("creates service with provided storage", func(t *testing.T) {
		storage := NewStorageMock(t)

		svc := New(storage)

		require.NotNil(t, svc)
		assert.Equal(t, storage, svc.storage)
	})
}

func TestService_Watch(t *testing.T) {
	t.Run("registers an address for monitoring", func(t *testing.T) {
		ctx := t.Context()
		storage := NewStorageMock(t)
		s := &service{storage: storage}

		storage.On("AddAddress", ctx, AddressEntry{Address: "0xbad"}).Return(nil).Once()

		err := s.Watch(ctx, "0xbad")
		require.NoError(t, err)
	})

	t.Run("returns a validation error for an empty address", func(t *testing.T) {
		s := &service{storage: NewStorageMock(t)}

		err := s.Watch(t.Context(), "")
		require.Error(t, err)
		assert.ErrorIs(t, err, validator.ErrValidationFailed)
	})

	t.Run("propagates a storage failure", func(t *testing.T) {
		ctx := t.Context()
		storage := NewStorageMock(t)
		s := &service{storage: storage}

		expectedErr := errors.New("storage error")
		storage.On("AddAddress", ctx, AddressEntry{Address: "0xbad"}).Return(expectedErr).Once()

		err := s.Watch(ctx, "0xbad")
		assert.ErrorIs(t, err, expectedErr)
	})
}

func TestService_Unwatch(t *testing.T) {
	t.Run("removes an address from the watchlist", func(t *testing.T) {
		ctx := t.Context()
		storage := NewStorageMock(t)
		s := &service{storage: storage}

		storage.On("RemoveAddress", ctx, AddressEntry{Address: "0xbad"}).Return(nil).Once()

		err := s.Unwatch(ctx, "0xbad")
		require.NoError(t, err)
	})

	t.Run("returns a validation error for an empty address", func(t *testing.T) {
		s := &service{storage: NewStorageMock(t)}

		err := s.Unwatch(t.Context(), "")
		require.Error(t, err)
		assert.ErrorIs(t, err, validator.ErrValidationFailed)
	})
}

func TestService_Addresses(t *testing.T) {
	t.Run("lists every persisted address", func(t *testing.T) {
		ctx := t.Context()
		storage := NewStorageMock(t)
		s := &service{storage: storage}

		storage.On("ListAddresses", ctx).Return([]string{"0xbad", "0xworse"}, nil).Once()

		addresses, err := s.Addresses(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"0xbad", "0xworse"}, addresses)
	})

	t.Run("propagates a storage failure", func(t *testing.T) {
		ctx := t.Context()
		storage := NewStorageMock(t)
		s := &service{storage: storage}

		expectedErr := errors.New("storage error")
		storage.On("ListAddresses", ctx).Return(nil, expectedErr).Once()

		_, err := s.Addresses(ctx)
		assert.ErrorIs(t, err, expectedErr)
	})
}
