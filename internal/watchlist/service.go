// Package watchlist manages the persisted set of addresses subject to
// heightened monitoring. Addresses registered here are merged with the
// configured watchlist when the pipeline starts; changes take effect on the
// next run, matching the configuration snapshot semantics.
package watchlist

import "context"

// Service defines the interface for registering and unregistering addresses
// on the persisted watchlist.
//
// Implementations are responsible for validating input and delegating
// persistence to the configured Storage.
type Service interface {
	// Watch registers an address for heightened monitoring.
	Watch(ctx context.Context, address string) error

	// Unwatch removes an address from the watchlist.
	Unwatch(ctx context.Context, address string) error

	// Addresses returns every address currently on the persisted watchlist.
	Addresses(ctx context.Context) ([]string, error)
}

// service is the concrete implementation of the Service interface.
// It uses a Storage backend to persist registered addresses.
type service struct {
	storage Storage
}

// Ensure compile-time compliance with the Service interface.
var _ Service = (*service)(nil)

// New creates a new watchlist service using the provided Storage
// implementation. Intended to be used during application wiring.
func New(storage Storage) *service {
	return &service{
		storage: storage,
	}
}
