package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"shop-telegram/db"
	"shop-telegram/models"
)

// cartTTL is how long a fresh cart lives before it is eligible for eviction.
const cartTTL = 30 * 24 * time.Hour

// CartStore persists carts keyed by session or user id. Lookup misses return
// (nil, nil); DeleteBySession is a no-op when no cart exists.
type CartStore interface {
	GetBySession(ctx context.Context, sessionID string) (*models.Cart, error)
	GetByUser(ctx context.Context, userID string) (*models.Cart, error)
	Save(ctx context.Context, cart *models.Cart) error
	DeleteBySession(ctx context.Context, sessionID string) error
}

// PostgresCartStore keeps one row per cart with items as a jsonb document.
type PostgresCartStore struct{}

func NewPostgresCartStore() *PostgresCartStore {
	return &PostgresCartStore{}
}

const cartColumns = `
	id::text, COALESCE(session_id, ''), COALESCE(user_id, ''), items,
	COALESCE(promo_code, ''), expires_at, created_at, updated_at`

func (s *PostgresCartStore) GetBySession(ctx context.Context, sessionID string) (*models.Cart, error) {
	return s.getByKey(ctx, `session_id`, sessionID)
}

func (s *PostgresCartStore) GetByUser(ctx context.Context, userID string) (*models.Cart, error) {
	return s.getByKey(ctx, `user_id`, userID)
}

func (s *PostgresCartStore) getByKey(ctx context.Context, column, key string) (*models.Cart, error) {
	rows, err := db.Pool.Query(ctx, `SELECT `+cartColumns+` FROM carts WHERE `+column+` = $1`, key)
	if err != nil {
		return nil, fmt.Errorf("get cart: %w", err)
	}
	defer rows.Close()
	if !rows.Next() {
		return nil, rows.Err()
	}

	var c models.Cart
	var itemsJSON []byte
	err = rows.Scan(&c.ID, &c.SessionID, &c.UserID, &itemsJSON, &c.PromoCode,
		&c.ExpiresAt, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("scan cart: %w", err)
	}
	if len(itemsJSON) > 0 {
		if err := json.Unmarshal(itemsJSON, &c.Items); err != nil {
			return nil, fmt.Errorf("unmarshal cart items: %w", err)
		}
	}
	if c.Items == nil {
		c.Items = []models.CartItem{}
	}
	return &c, nil
}

func (s *PostgresCartStore) Save(ctx context.Context, cart *models.Cart) error {
	itemsJSON, err := json.Marshal(cart.Items)
	if err != nil {
		return fmt.Errorf("marshal cart items: %w", err)
	}
	_, err = db.Pool.Exec(ctx, `
		INSERT INTO carts (id, session_id, user_id, items, promo_code, expires_at, created_at, updated_at)
		VALUES ($1, NULLIF($2, ''), NULLIF($3, ''), $4, NULLIF($5, ''), $6, $7, now())
		ON CONFLICT (id) DO UPDATE SET
			items = $4,
			promo_code = NULLIF($5, ''),
			updated_at = now()`,
		cart.ID, cart.SessionID, cart.UserID, itemsJSON, cart.PromoCode,
		cart.ExpiresAt, cart.CreatedAt,
	)
	return err
}

func (s *PostgresCartStore) DeleteBySession(ctx context.Context, sessionID string) error {
	_, err := db.Pool.Exec(ctx, `DELETE FROM carts WHERE session_id = $1`, sessionID)
	return err
}

// Carts owns the cart lifecycle: lazy creation, quantity merge, removal, and
// the joined cart-with-products view.
type Carts struct {
	store   CartStore
	catalog Catalog
}

func NewCarts(store CartStore, catalog Catalog) *Carts {
	return &Carts{store: store, catalog: catalog}
}

// AddToCartInput is one add-to-cart request.
type AddToCartInput struct {
	ProductID  string
	Quantity   int
	Variant    string
	Attributes map[string]string
}

// GetOrCreate returns the cart for the given key, creating an empty one if
// none exists. Exactly one of sessionID and userID must be supplied.
func (c *Carts) GetOrCreate(ctx context.Context, sessionID, userID string) (*models.Cart, error) {
	if (sessionID == "") == (userID == "") {
		return nil, &ValidationError{Message: "exactly one of session id or user id is required"}
	}

	var cart *models.Cart
	var err error
	if userID != "" {
		cart, err = c.store.GetByUser(ctx, userID)
	} else {
		cart, err = c.store.GetBySession(ctx, sessionID)
	}
	if err != nil {
		return nil, err
	}
	if cart != nil {
		return cart, nil
	}

	now := time.Now()
	cart = &models.Cart{
		ID:        uuid.New().String(),
		SessionID: sessionID,
		UserID:    userID,
		Items:     []models.CartItem{},
		ExpiresAt: now.Add(cartTTL),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := c.store.Save(ctx, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// AddItem adds a product to the cart. An existing line with the same product
// and variant has its quantity incremented; attribute maps do not participate
// in line identity.
func (c *Carts) AddItem(ctx context.Context, sessionID, userID string, input AddToCartInput) (*models.Cart, error) {
	if err := validateObjectID("product", input.ProductID); err != nil {
		return nil, err
	}
	if input.Quantity < 1 {
		return nil, &ValidationError{Field: "quantity", Message: "must be at least 1"}
	}

	cart, err := c.GetOrCreate(ctx, sessionID, userID)
	if err != nil {
		return nil, err
	}

	product, err := c.catalog.GetByID(ctx, input.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, &NotFoundError{Entity: "product", Key: input.ProductID}
	}

	merged := false
	for i := range cart.Items {
		if cart.Items[i].ProductID == input.ProductID && cart.Items[i].Variant == input.Variant {
			cart.Items[i].Quantity += input.Quantity
			merged = true
			break
		}
	}
	if !merged {
		cart.Items = append(cart.Items, models.CartItem{
			ID:         uuid.New().String(),
			ProductID:  input.ProductID,
			Quantity:   input.Quantity,
			Variant:    input.Variant,
			Attributes: input.Attributes,
		})
	}

	if err := c.store.Save(ctx, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// UpdateItemQuantity sets a line's quantity directly. Zero or negative removes
// the line; an unknown line id is an error.
func (c *Carts) UpdateItemQuantity(ctx context.Context, sessionID, userID, itemID string, quantity int) (*models.Cart, error) {
	if err := validateObjectID("cart item", itemID); err != nil {
		return nil, err
	}
	cart, err := c.GetOrCreate(ctx, sessionID, userID)
	if err != nil {
		return nil, err
	}

	idx := -1
	for i := range cart.Items {
		if cart.Items[i].ID == itemID {
			idx = i
			break
		}
	}
	if idx == -1 {
		return nil, &NotFoundError{Entity: "cart item", Key: itemID}
	}

	if quantity <= 0 {
		cart.Items = append(cart.Items[:idx], cart.Items[idx+1:]...)
	} else {
		cart.Items[idx].Quantity = quantity
	}

	if err := c.store.Save(ctx, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// RemoveItem removes a line. A line id that matches nothing is a silent no-op.
func (c *Carts) RemoveItem(ctx context.Context, sessionID, userID, itemID string) (*models.Cart, error) {
	if err := validateObjectID("cart item", itemID); err != nil {
		return nil, err
	}
	cart, err := c.GetOrCreate(ctx, sessionID, userID)
	if err != nil {
		return nil, err
	}

	for i := range cart.Items {
		if cart.Items[i].ID == itemID {
			cart.Items = append(cart.Items[:i], cart.Items[i+1:]...)
			break
		}
	}

	if err := c.store.Save(ctx, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// Clear empties the cart unconditionally.
func (c *Carts) Clear(ctx context.Context, sessionID, userID string) (*models.Cart, error) {
	cart, err := c.GetOrCreate(ctx, sessionID, userID)
	if err != nil {
		return nil, err
	}
	cart.Items = []models.CartItem{}
	if err := c.store.Save(ctx, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// CartView is the cart joined against the catalog. Lines whose product no
// longer resolves keep a nil Product and do not contribute to Subtotal.
type CartView struct {
	ID        string
	SessionID string
	UserID    string
	Items     []CartViewItem
	PromoCode string
	Subtotal  decimal.Decimal
	ExpiresAt time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

type CartViewItem struct {
	ID         string
	Product    *CartViewProduct
	Quantity   int
	Variant    string
	Attributes map[string]string
}

type CartViewProduct struct {
	ID    string
	Name  string
	Slug  string
	Image string
	Price models.Price
}

// ViewWithProducts joins every cart line against the catalog.
func (c *Carts) ViewWithProducts(ctx context.Context, sessionID, userID string) (*CartView, error) {
	cart, err := c.GetOrCreate(ctx, sessionID, userID)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(cart.Items))
	for _, item := range cart.Items {
		ids = append(ids, item.ProductID)
	}
	products, err := c.catalog.ResolveByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	view := &CartView{
		ID:        cart.ID,
		SessionID: cart.SessionID,
		UserID:    cart.UserID,
		Items:     make([]CartViewItem, 0, len(cart.Items)),
		PromoCode: cart.PromoCode,
		Subtotal:  decimal.Zero,
		ExpiresAt: cart.ExpiresAt,
		CreatedAt: cart.CreatedAt,
		UpdatedAt: cart.UpdatedAt,
	}
	for _, item := range cart.Items {
		vi := CartViewItem{
			ID:         item.ID,
			Quantity:   item.Quantity,
			Variant:    item.Variant,
			Attributes: item.Attributes,
		}
		if p, ok := products[item.ProductID]; ok {
			vi.Product = &CartViewProduct{
				ID:    p.ID,
				Name:  p.Name,
				Slug:  p.Slug,
				Image: p.FirstImage(),
				Price: p.Price,
			}
			view.Subtotal = view.Subtotal.Add(p.Price.Current.Mul(decimal.NewFromInt(int64(item.Quantity))))
		}
		view.Items = append(view.Items, vi)
	}
	return view, nil
}

// validateObjectID rejects malformed entity ids before any I/O happens.
func validateObjectID(entity, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return &ValidationError{Field: entity + " id", Message: "malformed id " + id}
	}
	return nil
}
