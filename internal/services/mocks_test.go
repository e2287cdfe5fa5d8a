package services_test

import (
	"context"
	"sync"

	"wardrobe/internal/models"
	"wardrobe/internal/repositories"

	"github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/mock"
)

// MockUserRepository is a mock implementation of repositories.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetAdmin(ctx context.Context) (*models.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) List(ctx context.Context) ([]models.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.User), args.Error(1)
}

func (m *MockUserRepository) Delete(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

// MockPublisher is a mock implementation of services.EventPublisher
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, routingKey string, body []byte) error {
	args := m.Called(ctx, routingKey, body)
	return args.Error(0)
}

// flakyStore fails the first failures transactions with a busy error.
type flakyStore struct {
	repositories.Store

	mu       sync.Mutex
	failures int
	calls    int
}

func (s *flakyStore) Transaction(ctx context.Context, fn func(tx repositories.Store) error) error {
	s.mu.Lock()
	s.calls++
	fail := s.calls <= s.failures
	s.mu.Unlock()

	if fail {
		return sqlite3.Error{Code: sqlite3.ErrBusy}
	}
	return s.Store.Transaction(ctx, fn)
}

// unserializedStore runs transaction bodies directly against the wrapped
// store, so concurrent transactions interleave their reads and writes. The
// first GetWithSizesForUpdate made after pauseNextRead signals read and then
// waits for resume.
type unserializedStore struct {
	repositories.Store

	once   sync.Once
	armed  chan struct{}
	read   chan struct{}
	resume chan struct{}
}

func newUnserializedStore(inner repositories.Store) *unserializedStore {
	return &unserializedStore{
		Store:  inner,
		armed:  make(chan struct{}),
		read:   make(chan struct{}),
		resume: make(chan struct{}),
	}
}

func (s *unserializedStore) pauseNextRead() { close(s.armed) }

func (s *unserializedStore) Clothing() repositories.ClothingRepository {
	return &pausingClothing{ClothingRepository: s.Store.Clothing(), store: s}
}

func (s *unserializedStore) Transaction(_ context.Context, fn func(tx repositories.Store) error) error {
	return fn(s)
}

type pausingClothing struct {
	repositories.ClothingRepository
	store *unserializedStore
}

func (c *pausingClothing) GetWithSizesForUpdate(ctx context.Context, name string) (*models.Clothing, error) {
	clothing, err := c.ClothingRepository.GetWithSizesForUpdate(ctx, name)
	select {
	case <-c.store.armed:
		c.store.once.Do(func() {
			close(c.store.read)
			<-c.store.resume
		})
	default:
	}
	return clothing, err
}
