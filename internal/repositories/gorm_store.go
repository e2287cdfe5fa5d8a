package repositories

import (
	"context"

	"gorm.io/gorm"
)

// GORMStore is the Store backed by a relational database through GORM.
type GORMStore struct {
	db       *gorm.DB
	users    *GORMUserRepository
	clothing *GORMClothingRepository
	orders   *GORMOrderRepository
}

// NewGORMStore creates a Store whose repositories share db.
func NewGORMStore(db *gorm.DB) *GORMStore {
	return &GORMStore{
		db:       db,
		users:    NewGORMUserRepository(db),
		clothing: NewGORMClothingRepository(db),
		orders:   NewGORMOrderRepository(db),
	}
}

func (s *GORMStore) Users() UserRepository        { return s.users }
func (s *GORMStore) Clothing() ClothingRepository { return s.clothing }
func (s *GORMStore) Orders() OrderRepository      { return s.orders }

// Transaction runs fn inside a database transaction. Nested calls reuse the
// outer transaction through GORM savepoints.
func (s *GORMStore) Transaction(ctx context.Context, fn func(tx Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewGORMStore(tx))
	})
}
