package services

import (
	"context"
	"sync"
	"time"

	"shop-telegram/models"
)

// In-memory stand-ins for the Postgres-backed stores, mirroring their
// miss-is-nil contracts.

type memoryCatalog struct {
	mu       sync.RWMutex
	products map[string]*models.Product
}

func newMemoryCatalog(products ...*models.Product) *memoryCatalog {
	c := &memoryCatalog{products: make(map[string]*models.Product)}
	for _, p := range products {
		c.products[p.ID] = p
	}
	return c
}

func (c *memoryCatalog) ResolveByIDs(ctx context.Context, ids []string) (map[string]*models.Product, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[string]*models.Product)
	for _, id := range ids {
		if p, ok := c.products[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

func (c *memoryCatalog) GetByID(ctx context.Context, id string) (*models.Product, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.products[id], nil
}

type memoryOrderRepo struct {
	mu          sync.Mutex
	orders      map[string]*models.Order
	inserted    []string
	failInserts int // first N inserts fail with ErrOrderNumberTaken
}

func newMemoryOrderRepo() *memoryOrderRepo {
	return &memoryOrderRepo{orders: make(map[string]*models.Order)}
}

func (r *memoryOrderRepo) Insert(ctx context.Context, order *models.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failInserts > 0 {
		r.failInserts--
		return ErrOrderNumberTaken
	}
	for _, o := range r.orders {
		if o.OrderNumber == order.OrderNumber {
			return ErrOrderNumberTaken
		}
	}
	cp := *order
	r.orders[order.ID] = &cp
	r.inserted = append(r.inserted, order.ID)
	return nil
}

func (r *memoryOrderRepo) GetByID(ctx context.Context, id string) (*models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return nil, nil
	}
	cp := *o
	return &cp, nil
}

func (r *memoryOrderRepo) GetByNumber(ctx context.Context, number string) (*models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, o := range r.orders {
		if o.OrderNumber == number {
			cp := *o
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memoryOrderRepo) List(ctx context.Context, includeCancelled bool) ([]*models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Order
	for i := len(r.inserted) - 1; i >= 0; i-- {
		o, ok := r.orders[r.inserted[i]]
		if !ok {
			continue
		}
		if !includeCancelled && o.Status == OrderStatusCancelled {
			continue
		}
		cp := *o
		out = append(out, &cp)
	}
	return out, nil
}

func (r *memoryOrderRepo) Update(ctx context.Context, order *models.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *order
	r.orders[order.ID] = &cp
	return nil
}

func (r *memoryOrderRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.orders, id)
	return nil
}

func (r *memoryOrderRepo) MarkSent(ctx context.Context, id string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if o, ok := r.orders[id]; ok {
		o.IsSentToTelegram = true
		o.SentToTelegramAt = &at
	}
	return nil
}

func (r *memoryOrderRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.orders)
}

type memoryCartStore struct {
	mu    sync.Mutex
	carts map[string]*models.Cart // by cart id
}

func newMemoryCartStore() *memoryCartStore {
	return &memoryCartStore{carts: make(map[string]*models.Cart)}
}

// copyCart detaches the returned cart from the stored one, the way the
// database store rebuilds a cart on every read.
func copyCart(c *models.Cart) *models.Cart {
	cp := *c
	cp.Items = append([]models.CartItem(nil), c.Items...)
	return &cp
}

func (s *memoryCartStore) GetBySession(ctx context.Context, sessionID string) (*models.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.carts {
		if c.SessionID == sessionID && sessionID != "" {
			return copyCart(c), nil
		}
	}
	return nil, nil
}

func (s *memoryCartStore) GetByUser(ctx context.Context, userID string) (*models.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.carts {
		if c.UserID == userID && userID != "" {
			return copyCart(c), nil
		}
	}
	return nil, nil
}

func (s *memoryCartStore) Save(ctx context.Context, cart *models.Cart) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.carts[cart.ID] = copyCart(cart)
	return nil
}

func (s *memoryCartStore) DeleteBySession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, c := range s.carts {
		if c.SessionID == sessionID {
			delete(s.carts, id)
		}
	}
	return nil
}

type memoryIntegrationStore struct {
	integrations []*models.Integration
}

func (s *memoryIntegrationStore) ListActiveByType(ctx context.Context, integrationType string) ([]*models.Integration, error) {
	var out []*models.Integration
	for _, in := range s.integrations {
		if in.Type == integrationType && in.IsActive {
			out = append(out, in)
		}
	}
	return out, nil
}

type recordingNotifier struct {
	mu     sync.Mutex
	orders []*models.Order
}

func (n *recordingNotifier) NotifyOrderCreated(ctx context.Context, order *models.Order) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.orders = append(n.orders, order)
}

func (n *recordingNotifier) notified() []*models.Order {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]*models.Order(nil), n.orders...)
}
