package repositories

import "context"

// Store groups the repositories that share one database handle.
type Store interface {
	Users() UserRepository
	Clothing() ClothingRepository
	Orders() OrderRepository
	// Transaction runs fn against a Store bound to a single transaction.
	// The transaction commits when fn returns nil and rolls back otherwise.
	Transaction(ctx context.Context, fn func(tx Store) error) error
}
