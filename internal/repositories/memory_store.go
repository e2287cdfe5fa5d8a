package repositories

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"wardrobe/internal/models"
)

// memoryData is the full state of an InMemoryStore.
type memoryData struct {
	users    map[uint]models.User
	clothing map[uint]models.Clothing // Sizes are kept in sizes, not here.
	sizes    map[uint]models.Size
	orders   map[uint]models.Order
	nextID   uint
}

func newMemoryData() *memoryData {
	return &memoryData{
		users:    make(map[uint]models.User),
		clothing: make(map[uint]models.Clothing),
		sizes:    make(map[uint]models.Size),
		orders:   make(map[uint]models.Order),
	}
}

func (d *memoryData) clone() *memoryData {
	c := &memoryData{
		users:    make(map[uint]models.User, len(d.users)),
		clothing: make(map[uint]models.Clothing, len(d.clothing)),
		sizes:    make(map[uint]models.Size, len(d.sizes)),
		orders:   make(map[uint]models.Order, len(d.orders)),
		nextID:   d.nextID,
	}
	for k, v := range d.users {
		c.users[k] = v
	}
	for k, v := range d.clothing {
		c.clothing[k] = v
	}
	for k, v := range d.sizes {
		c.sizes[k] = v
	}
	for k, v := range d.orders {
		c.orders[k] = v
	}
	return c
}

func (d *memoryData) id() uint {
	d.nextID++
	return d.nextID
}

// InMemoryStore is a Store that keeps everything in process memory. It
// enforces the same unique keys as the relational schema and serializes
// transactions with a single lock.
type InMemoryStore struct {
	mu   *sync.RWMutex
	data **memoryData
	inTx bool
}

// NewInMemoryStore creates an empty InMemoryStore.
func NewInMemoryStore() *InMemoryStore {
	data := newMemoryData()
	return &InMemoryStore{
		mu:   &sync.RWMutex{},
		data: &data,
	}
}

func (s *InMemoryStore) Users() UserRepository        { return (*memoryUsers)(s) }
func (s *InMemoryStore) Clothing() ClothingRepository { return (*memoryClothing)(s) }
func (s *InMemoryStore) Orders() OrderRepository      { return (*memoryOrders)(s) }

// Transaction holds the store lock for the duration of fn and restores the
// previous state if fn fails.
func (s *InMemoryStore) Transaction(ctx context.Context, fn func(tx Store) error) error {
	if s.inTx {
		return fn(s)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := (*s.data).clone()
	tx := &InMemoryStore{mu: s.mu, data: s.data, inTx: true}
	if err := fn(tx); err != nil {
		*s.data = snapshot
		return err
	}
	return nil
}

func (s *InMemoryStore) read() (*memoryData, func()) {
	if s.inTx {
		return *s.data, func() {}
	}
	s.mu.RLock()
	return *s.data, s.mu.RUnlock
}

func (s *InMemoryStore) write() (*memoryData, func()) {
	if s.inTx {
		return *s.data, func() {}
	}
	s.mu.Lock()
	return *s.data, s.mu.Unlock
}

type memoryUsers InMemoryStore

func (r *memoryUsers) store() *InMemoryStore { return (*InMemoryStore)(r) }

// Create adds a new user, rejecting a duplicate email.
func (r *memoryUsers) Create(_ context.Context, user *models.User) error {
	d, done := r.store().write()
	defer done()

	for _, u := range d.users {
		if u.Email == user.Email {
			return fmt.Errorf("failed to create user %s: %w", user.Email, ErrDuplicate)
		}
	}
	user.ID = d.id()
	d.users[user.ID] = *user
	return nil
}

// GetByEmail returns a user by email.
func (r *memoryUsers) GetByEmail(_ context.Context, email string) (*models.User, error) {
	d, done := r.store().read()
	defer done()

	for _, u := range d.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, fmt.Errorf("user with email %s: %w", email, ErrNotFound)
}

// GetAdmin returns the administrator with the lowest id.
func (r *memoryUsers) GetAdmin(_ context.Context) (*models.User, error) {
	d, done := r.store().read()
	defer done()

	var admin *models.User
	for _, u := range d.users {
		if u.IsAdmin && (admin == nil || u.ID < admin.ID) {
			u := u
			admin = &u
		}
	}
	if admin == nil {
		return nil, fmt.Errorf("admin user: %w", ErrNotFound)
	}
	return admin, nil
}

// List returns all users ordered by id.
func (r *memoryUsers) List(_ context.Context) ([]models.User, error) {
	d, done := r.store().read()
	defer done()

	users := make([]models.User, 0, len(d.users))
	for _, u := range d.users {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

// Delete removes a user.
func (r *memoryUsers) Delete(_ context.Context, user *models.User) error {
	d, done := r.store().write()
	defer done()

	if _, ok := d.users[user.ID]; !ok {
		return fmt.Errorf("user with email %s: %w", user.Email, ErrNotFound)
	}
	delete(d.users, user.ID)
	return nil
}

type memoryClothing InMemoryStore

func (r *memoryClothing) store() *InMemoryStore { return (*InMemoryStore)(r) }

func findClothing(d *memoryData, name string) (models.Clothing, bool) {
	for _, c := range d.clothing {
		if c.Name == name {
			return c, true
		}
	}
	return models.Clothing{}, false
}

func sizesOf(d *memoryData, clothingID uint) []models.Size {
	sizes := make([]models.Size, 0)
	for _, s := range d.sizes {
		if s.ClothingID == clothingID {
			sizes = append(sizes, s)
		}
	}
	sort.Slice(sizes, func(i, j int) bool { return sizes[i].ID < sizes[j].ID })
	return sizes
}

// GetAll returns all clothing ordered by id, without sizes.
func (r *memoryClothing) GetAll(_ context.Context) ([]models.Clothing, error) {
	d, done := r.store().read()
	defer done()

	clothing := make([]models.Clothing, 0, len(d.clothing))
	for _, c := range d.clothing {
		clothing = append(clothing, c)
	}
	sort.Slice(clothing, func(i, j int) bool { return clothing[i].ID < clothing[j].ID })
	return clothing, nil
}

// GetByName returns a clothing item without sizes.
func (r *memoryClothing) GetByName(_ context.Context, name string) (*models.Clothing, error) {
	d, done := r.store().read()
	defer done()

	c, ok := findClothing(d, name)
	if !ok {
		return nil, fmt.Errorf("clothing with name %s: %w", name, ErrNotFound)
	}
	return &c, nil
}

// GetWithSizes returns a clothing item with its sizes.
func (r *memoryClothing) GetWithSizes(_ context.Context, name string) (*models.Clothing, error) {
	d, done := r.store().read()
	defer done()

	c, ok := findClothing(d, name)
	if !ok {
		return nil, fmt.Errorf("clothing with name %s: %w", name, ErrNotFound)
	}
	c.Sizes = sizesOf(d, c.ID)
	return &c, nil
}

// GetWithSizesForUpdate is GetWithSizes; transactions already hold the
// store-wide lock.
func (r *memoryClothing) GetWithSizesForUpdate(ctx context.Context, name string) (*models.Clothing, error) {
	return r.GetWithSizes(ctx, name)
}

// Ensure returns an existing clothing item or creates it.
func (r *memoryClothing) Ensure(_ context.Context, name string) (*models.Clothing, error) {
	d, done := r.store().write()
	defer done()

	if c, ok := findClothing(d, name); ok {
		return &c, nil
	}
	c := models.Clothing{ID: d.id(), Name: name}
	d.clothing[c.ID] = c
	return &c, nil
}

// Delete removes a clothing item and its sizes.
func (r *memoryClothing) Delete(_ context.Context, clothing *models.Clothing) error {
	d, done := r.store().write()
	defer done()

	if _, ok := d.clothing[clothing.ID]; !ok {
		return fmt.Errorf("clothing with name %s: %w", clothing.Name, ErrNotFound)
	}
	for id, s := range d.sizes {
		if s.ClothingID == clothing.ID {
			delete(d.sizes, id)
		}
	}
	delete(d.clothing, clothing.ID)
	return nil
}

// GetSize returns one size of a clothing item.
func (r *memoryClothing) GetSize(_ context.Context, clothingID uint, size string) (*models.Size, error) {
	d, done := r.store().read()
	defer done()

	for _, s := range d.sizes {
		if s.ClothingID == clothingID && s.Size == size {
			return &s, nil
		}
	}
	return nil, fmt.Errorf("size %s of clothing %d: %w", size, clothingID, ErrNotFound)
}

// AddSize creates a size row.
func (r *memoryClothing) AddSize(_ context.Context, clothingID uint, size string, quantity int) (*models.Size, error) {
	d, done := r.store().write()
	defer done()

	for _, s := range d.sizes {
		if s.ClothingID == clothingID && s.Size == size {
			return nil, fmt.Errorf("failed to add size %s to clothing %d: %w", size, clothingID, ErrDuplicate)
		}
	}
	s := models.Size{ID: d.id(), ClothingID: clothingID, Size: size, Quantity: quantity}
	d.sizes[s.ID] = s
	return &s, nil
}

// SetQuantity overwrites the stock of one size.
func (r *memoryClothing) SetQuantity(_ context.Context, clothingID uint, size string, quantity int) error {
	d, done := r.store().write()
	defer done()

	for id, s := range d.sizes {
		if s.ClothingID == clothingID && s.Size == size {
			s.Quantity = quantity
			d.sizes[id] = s
			return nil
		}
	}
	return fmt.Errorf("size %s of clothing %d: %w", size, clothingID, ErrNotFound)
}

// DecrementQuantity takes one unit from a size.
func (r *memoryClothing) DecrementQuantity(_ context.Context, sizeID uint) error {
	d, done := r.store().write()
	defer done()

	s, ok := d.sizes[sizeID]
	if !ok || s.Quantity <= 0 {
		return fmt.Errorf("size %d has no stock: %w", sizeID, ErrNotFound)
	}
	s.Quantity--
	d.sizes[sizeID] = s
	return nil
}

type memoryOrders InMemoryStore

func (r *memoryOrders) store() *InMemoryStore { return (*InMemoryStore)(r) }

// Create records an order, rejecting a second order for the same user and
// clothing.
func (r *memoryOrders) Create(_ context.Context, order *models.Order) error {
	d, done := r.store().write()
	defer done()

	for _, o := range d.orders {
		if o.EmailUser == order.EmailUser && o.NameClothing == order.NameClothing {
			return fmt.Errorf("failed to create order of %s for %s: %w", order.NameClothing, order.EmailUser, ErrDuplicate)
		}
	}
	order.ID = d.id()
	if order.CreatedAt.IsZero() {
		order.CreatedAt = time.Now()
	}
	d.orders[order.ID] = *order
	return nil
}

// GetByEmailAndClothing returns the order a user placed for a clothing item.
func (r *memoryOrders) GetByEmailAndClothing(_ context.Context, email, clothing string) (*models.Order, error) {
	d, done := r.store().read()
	defer done()

	for _, o := range d.orders {
		if o.EmailUser == email && o.NameClothing == clothing {
			return &o, nil
		}
	}
	return nil, fmt.Errorf("order of %s for %s: %w", clothing, email, ErrNotFound)
}

// ListByEmail returns all orders of a user ordered by id.
func (r *memoryOrders) ListByEmail(_ context.Context, email string) ([]models.Order, error) {
	d, done := r.store().read()
	defer done()

	orders := make([]models.Order, 0)
	for _, o := range d.orders {
		if o.EmailUser == email {
			orders = append(orders, o)
		}
	}
	sort.Slice(orders, func(i, j int) bool { return orders[i].ID < orders[j].ID })
	return orders, nil
}

// Delete removes an order.
func (r *memoryOrders) Delete(_ context.Context, order *models.Order) error {
	d, done := r.store().write()
	defer done()

	if _, ok := d.orders[order.ID]; !ok {
		return fmt.Errorf("order %d: %w", order.ID, ErrNotFound)
	}
	delete(d.orders, order.ID)
	return nil
}
