package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"

	"shop-telegram/db"
	"shop-telegram/models"
)

// ErrOrderNumberTaken signals a unique-constraint collision on the generated
// order number; the caller regenerates and retries.
var ErrOrderNumberTaken = errors.New("order number already taken")

// OrderRepository is the durable order store. Lookup misses return (nil, nil).
type OrderRepository interface {
	Insert(ctx context.Context, order *models.Order) error
	GetByID(ctx context.Context, id string) (*models.Order, error)
	GetByNumber(ctx context.Context, number string) (*models.Order, error)
	List(ctx context.Context, includeCancelled bool) ([]*models.Order, error)
	Update(ctx context.Context, order *models.Order) error
	Delete(ctx context.Context, id string) error
	MarkSent(ctx context.Context, id string, at time.Time) error
}

// PostgresOrderRepository stores orders in the orders table, with items,
// customer, delivery address and metadata as jsonb documents.
type PostgresOrderRepository struct{}

func NewPostgresOrderRepository() *PostgresOrderRepository {
	return &PostgresOrderRepository{}
}

const orderColumns = `
	id::text, order_number, items, customer, delivery_address, status,
	payment_method, delivery_method, subtotal::text, discount::text,
	delivery_cost::text, total::text, currency, COALESCE(notes, ''),
	COALESCE(promo_code, ''), is_paid, is_sent_to_telegram, sent_to_telegram_at,
	COALESCE(ip_address, ''), COALESCE(user_agent, ''), metadata, created_at, updated_at`

func (r *PostgresOrderRepository) Insert(ctx context.Context, o *models.Order) error {
	itemsJSON, customerJSON, addressJSON, metaJSON, err := marshalOrderDocs(o)
	if err != nil {
		return err
	}
	_, err = db.Pool.Exec(ctx, `
		INSERT INTO orders (
			id, order_number, items, customer, delivery_address, status,
			payment_method, delivery_method, subtotal, discount, delivery_cost,
			total, currency, notes, promo_code, is_paid, ip_address, user_agent,
			metadata, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9::numeric, $10::numeric,
			$11::numeric, $12::numeric, $13, NULLIF($14, ''), NULLIF($15, ''),
			$16, NULLIF($17, ''), NULLIF($18, ''), $19, $20, $21
		)`,
		o.ID, o.OrderNumber, itemsJSON, customerJSON, addressJSON, o.Status,
		o.PaymentMethod, o.DeliveryMethod, o.Subtotal.String(), o.Discount.String(),
		o.DeliveryCost.String(), o.Total.String(), o.Currency, o.Notes, o.PromoCode,
		o.IsPaid, o.IPAddress, o.UserAgent, metaJSON, o.CreatedAt, o.UpdatedAt,
	)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" && pgErr.ConstraintName == "orders_order_number_key" {
		return ErrOrderNumberTaken
	}
	return err
}

func (r *PostgresOrderRepository) GetByID(ctx context.Context, id string) (*models.Order, error) {
	rows, err := db.Pool.Query(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	defer rows.Close()
	if !rows.Next() {
		return nil, rows.Err()
	}
	return scanOrder(rows)
}

func (r *PostgresOrderRepository) GetByNumber(ctx context.Context, number string) (*models.Order, error) {
	rows, err := db.Pool.Query(ctx, `SELECT `+orderColumns+` FROM orders WHERE order_number = $1`, number)
	if err != nil {
		return nil, fmt.Errorf("get order by number: %w", err)
	}
	defer rows.Close()
	if !rows.Next() {
		return nil, rows.Err()
	}
	return scanOrder(rows)
}

func (r *PostgresOrderRepository) List(ctx context.Context, includeCancelled bool) ([]*models.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders`
	if !includeCancelled {
		query += ` WHERE status <> 'cancelled'`
	}
	query += ` ORDER BY created_at DESC`

	rows, err := db.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var orders []*models.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

func (r *PostgresOrderRepository) Update(ctx context.Context, o *models.Order) error {
	_, _, _, metaJSON, err := marshalOrderDocs(o)
	if err != nil {
		return err
	}
	_, err = db.Pool.Exec(ctx, `
		UPDATE orders SET
			status = $1,
			subtotal = $2::numeric,
			discount = $3::numeric,
			delivery_cost = $4::numeric,
			total = $5::numeric,
			notes = NULLIF($6, ''),
			promo_code = NULLIF($7, ''),
			is_paid = $8,
			metadata = $9,
			updated_at = now()
		WHERE id = $10`,
		o.Status, o.Subtotal.String(), o.Discount.String(), o.DeliveryCost.String(),
		o.Total.String(), o.Notes, o.PromoCode, o.IsPaid, metaJSON, o.ID,
	)
	return err
}

func (r *PostgresOrderRepository) Delete(ctx context.Context, id string) error {
	_, err := db.Pool.Exec(ctx, `DELETE FROM orders WHERE id = $1`, id)
	return err
}

func (r *PostgresOrderRepository) MarkSent(ctx context.Context, id string, at time.Time) error {
	_, err := db.Pool.Exec(ctx, `
		UPDATE orders SET is_sent_to_telegram = true, sent_to_telegram_at = $1, updated_at = now()
		WHERE id = $2`,
		at, id,
	)
	return err
}

func marshalOrderDocs(o *models.Order) (items, customer, address, meta []byte, err error) {
	items, err = json.Marshal(o.Items)
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("marshal order items: %w", err)
	}
	customer, err = json.Marshal(o.Customer)
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("marshal order customer: %w", err)
	}
	if o.DeliveryAddress != nil {
		address, err = json.Marshal(o.DeliveryAddress)
		if err != nil {
			return nil, nil, nil, nil, fmt.Errorf("marshal delivery address: %w", err)
		}
	}
	m := o.Metadata
	if m == nil {
		m = map[string]any{}
	}
	meta, err = json.Marshal(m)
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("marshal order metadata: %w", err)
	}
	return items, customer, address, meta, nil
}

func scanOrder(row scanner) (*models.Order, error) {
	var o models.Order
	var itemsJSON, customerJSON, addressJSON, metaJSON []byte
	var subtotal, discount, deliveryCost, total string
	err := row.Scan(
		&o.ID, &o.OrderNumber, &itemsJSON, &customerJSON, &addressJSON, &o.Status,
		&o.PaymentMethod, &o.DeliveryMethod, &subtotal, &discount, &deliveryCost,
		&total, &o.Currency, &o.Notes, &o.PromoCode, &o.IsPaid, &o.IsSentToTelegram,
		&o.SentToTelegramAt, &o.IPAddress, &o.UserAgent, &metaJSON, &o.CreatedAt,
		&o.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("scan order: %w", err)
	}
	if o.Subtotal, err = decimal.NewFromString(subtotal); err != nil {
		return nil, fmt.Errorf("parse order subtotal: %w", err)
	}
	if o.Discount, err = decimal.NewFromString(discount); err != nil {
		return nil, fmt.Errorf("parse order discount: %w", err)
	}
	if o.DeliveryCost, err = decimal.NewFromString(deliveryCost); err != nil {
		return nil, fmt.Errorf("parse order delivery cost: %w", err)
	}
	if o.Total, err = decimal.NewFromString(total); err != nil {
		return nil, fmt.Errorf("parse order total: %w", err)
	}
	if err := json.Unmarshal(itemsJSON, &o.Items); err != nil {
		return nil, fmt.Errorf("unmarshal order items: %w", err)
	}
	if err := json.Unmarshal(customerJSON, &o.Customer); err != nil {
		return nil, fmt.Errorf("unmarshal order customer: %w", err)
	}
	if len(addressJSON) > 0 {
		o.DeliveryAddress = &models.DeliveryAddress{}
		if err := json.Unmarshal(addressJSON, o.DeliveryAddress); err != nil {
			return nil, fmt.Errorf("unmarshal delivery address: %w", err)
		}
	}
	if len(metaJSON) > 0 {
		if err := json.Unmarshal(metaJSON, &o.Metadata); err != nil {
			return nil, fmt.Errorf("unmarshal order metadata: %w", err)
		}
	}
	return &o, nil
}
