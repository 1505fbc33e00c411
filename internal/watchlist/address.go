package watchlist

import (
	"context"

	"github.com/gabapcia/txsentinel/internal/pkg/validator"
)

// AddressEntry identifies one address on the watchlist. The address is
// required and validated before persistence.
type AddressEntry struct {
	Address string `validate:"required"`
}

// Storage defines the persistence interface for the set of watched
// addresses. Implementations should make Add and Remove idempotent.
type Storage interface {
	// AddAddress adds the given entry to the persisted watchlist.
	AddAddress(ctx context.Context, entry AddressEntry) error

	// RemoveAddress removes the given entry from the persisted watchlist.
	RemoveAddress(ctx context.Context, entry AddressEntry) error

	// ListAddresses returns every persisted watchlist address.
	ListAddresses(ctx context.Context) ([]string, error)
}

// buildAddressEntry constructs and validates an AddressEntry, enforcing
// correct input before persistence.
func buildAddressEntry(address string) (AddressEntry, error) {
	entry := AddressEntry{
		Address: address,
	}

	return entry, validator.Validate(entry)
}

// Watch registers an address for heightened monitoring.
func (s *service) Watch(ctx context.Context, address string) error {
	entry, err := buildAddressEntry(address)
	if err != nil {
		return err
	}

	return s.storage.AddAddress(ctx, entry)
}

// Unwatch removes an address from the watchlist.
func (s *service) Unwatch(ctx context.Context, address string) error {
	entry, err := buildAddressEntry(address)
	if err != nil {
		return err
	}

	return s.storage.RemoveAddress(ctx, entry)
}

// Addresses returns every address currently on the persisted watchlist.
func (s *service) Addresses(ctx context.Context) ([]string, error) {
	return s.storage.ListAddresses(ctx)
}
