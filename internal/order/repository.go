package order

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"sort"
	"time"

	"zidoyvelg-be/internal/logger"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type Repository interface {
	Create(ctx context.Context, o *Order) error
	GetByID(ctx context.Context, id uuid.UUID) (*Order, error)
	ListByUser(ctx context.Context, userID uint) ([]Order, error)
	ListAll(ctx context.Context) ([]Order, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to Status, at time.Time) error
	CountByStatus(ctx context.Context, from, to time.Time) ([]StatusSummary, error)
	DeleteAll(ctx context.Context) (int64, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

const orderColumns = `id, reference, user_id, customer_name, customer_phone, shipping_address,
	payment_method, payment_proof_url, total_amount, status, created_at, updated_at`

// Create reserves stock for every item and inserts the order in a single
// transaction. Each reservation is a conditional decrement, so concurrent
// checkouts can never drive stock below zero. Items are locked in product
// id order to avoid deadlocks between overlapping carts.
func (r *repository) Create(ctx context.Context, o *Order) error {
	log := logger.ForLayer(ctx, "repository", "Create").With(zap.String("order_id", o.ID.String()))

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		log.Error("begin tx failed", zap.Error(err))
		return err
	}
	defer tx.Rollback()

	sorted := make([]OrderItem, len(o.Items))
	copy(sorted, o.Items)
	sort.Slice(sorted, func(i, j int) bool {
		return bytes.Compare(sorted[i].ProductID[:], sorted[j].ProductID[:]) < 0
	})

	var missing, short, repriced []uuid.UUID
	for _, it := range sorted {
		var price decimal.Decimal
		err := tx.QueryRowContext(ctx, `
			UPDATE products
			SET stock = stock - $1, updated_at = $2
			WHERE id = $3 AND stock >= $1
			RETURNING price
		`, it.Quantity, o.CreatedAt, it.ProductID).Scan(&price)

		if errors.Is(err, sql.ErrNoRows) {
			var exists bool
			if err := tx.QueryRowContext(ctx,
				`SELECT EXISTS (SELECT 1 FROM products WHERE id = $1)`, it.ProductID,
			).Scan(&exists); err != nil {
				return err
			}
			if exists {
				short = append(short, it.ProductID)
			} else {
				missing = append(missing, it.ProductID)
			}
			continue
		}
		if err != nil {
			log.Error("reserve stock failed", zap.String("product_id", it.ProductID.String()), zap.Error(err))
			return err
		}
		if !price.Equal(it.Price) {
			repriced = append(repriced, it.ProductID)
		}
	}

	switch {
	case len(missing) > 0:
		return &StockError{Kind: ErrProductNotFound, ProductIDs: missing}
	case len(short) > 0:
		return &StockError{Kind: ErrOutOfStock, ProductIDs: short}
	case len(repriced) > 0:
		return &StockError{Kind: ErrPriceChanged, ProductIDs: repriced}
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO orders (
			id, reference, user_id, customer_name, customer_phone, shipping_address,
			payment_method, payment_proof_url, total_amount, status, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
	`,
		o.ID, o.Reference, o.UserID, o.CustomerName, o.CustomerPhone, o.ShippingAddress,
		o.PaymentMethod, o.PaymentProofURL, o.TotalAmount, string(o.Status), o.CreatedAt, o.UpdatedAt,
	)
	if err != nil {
		log.Error("insert order failed", zap.Error(err))
		return err
	}

	for pos, it := range o.Items {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO order_items (
				order_id, position, product_id, product_name, spec, color, price, quantity
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		`, o.ID, pos, it.ProductID, it.ProductName, it.Spec, it.Color, it.Price, it.Quantity)
		if err != nil {
			log.Error("insert order item failed", zap.Error(err))
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		log.Error("commit failed", zap.Error(err))
		return err
	}

	log.Debug("order persisted", zap.Int("items", len(o.Items)))
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (Order, error) {
	var (
		o      Order
		status string
	)
	err := row.Scan(
		&o.ID, &o.Reference, &o.UserID, &o.CustomerName, &o.CustomerPhone, &o.ShippingAddress,
		&o.PaymentMethod, &o.PaymentProofURL, &o.TotalAmount, &status, &o.CreatedAt, &o.UpdatedAt,
	)
	o.Status = Status(status)
	o.Items = []OrderItem{}
	return o, err
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Order, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)

	o, err := scanOrder(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		logger.ForLayer(ctx, "repository", "GetByID").Error("query order failed", zap.Error(err))
		return nil, err
	}

	orders := []Order{o}
	if err := r.attachItems(ctx, orders); err != nil {
		return nil, err
	}
	return &orders[0], nil
}

func (r *repository) ListByUser(ctx context.Context, userID uint) ([]Order, error) {
	return r.list(ctx, "ListByUser", `
		SELECT `+orderColumns+`
		FROM orders
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
	`, userID)
}

func (r *repository) ListAll(ctx context.Context) ([]Order, error) {
	return r.list(ctx, "ListAll", `
		SELECT `+orderColumns+`
		FROM orders
		ORDER BY created_at DESC, id DESC
	`)
}

func (r *repository) list(ctx context.Context, method, query string, args ...any) ([]Order, error) {
	log := logger.ForLayer(ctx, "repository", method)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("query orders failed", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	orders := []Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := r.attachItems(ctx, orders); err != nil {
		return nil, err
	}

	log.Debug("orders listed", zap.Int("count", len(orders)))
	return orders, nil
}

// attachItems loads the items of all orders with one query.
func (r *repository) attachItems(ctx context.Context, orders []Order) error {
	if len(orders) == 0 {
		return nil
	}

	ids := make([]string, len(orders))
	index := make(map[uuid.UUID]int, len(orders))
	for i, o := range orders {
		ids[i] = o.ID.String()
		index[o.ID] = i
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT order_id, product_id, product_name, spec, color, price, quantity
		FROM order_items
		WHERE order_id = ANY($1::uuid[])
		ORDER BY order_id, position
	`, pq.Array(ids))
	if err != nil {
		logger.ForLayer(ctx, "repository", "attachItems").Error("query order items failed", zap.Error(err))
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			orderID uuid.UUID
			it      OrderItem
		)
		if err := rows.Scan(&orderID, &it.ProductID, &it.ProductName, &it.Spec, &it.Color, &it.Price, &it.Quantity); err != nil {
			return err
		}
		if i, ok := index[orderID]; ok {
			orders[i].Items = append(orders[i].Items, it)
		}
	}
	return rows.Err()
}

// UpdateStatus writes status and updated_at together, and only if the order
// is still in from. A lost race surfaces as a TransitionError from the
// status the order actually has.
func (r *repository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to Status, at time.Time) error {
	log := logger.ForLayer(ctx, "repository", "UpdateStatus").With(zap.String("order_id", id.String()))

	res, err := r.db.ExecContext(ctx, `
		UPDATE orders
		SET status = $1, updated_at = $2
		WHERE id = $3 AND status = $4
	`, string(to), at, id, string(from))
	if err != nil {
		log.Error("update status failed", zap.Error(err))
		return err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 1 {
		return nil
	}

	var current string
	err = r.db.QueryRowContext(ctx, `SELECT status FROM orders WHERE id = $1`, id).Scan(&current)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrOrderNotFound
	}
	if err != nil {
		return err
	}

	log.Warn("status moved concurrently", zap.String("current", current))
	return &TransitionError{From: Status(current), To: to}
}

func (r *repository) CountByStatus(ctx context.Context, from, to time.Time) ([]StatusSummary, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT status, COUNT(*), COALESCE(SUM(total_amount), 0)
		FROM orders
		WHERE created_at >= $1 AND created_at < $2
		GROUP BY status
	`, from, to)
	if err != nil {
		logger.ForLayer(ctx, "repository", "CountByStatus").Error("query summary failed", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var out []StatusSummary
	for rows.Next() {
		var (
			s      StatusSummary
			status string
		)
		if err := rows.Scan(&status, &s.Count, &s.Total); err != nil {
			return nil, err
		}
		s.Status = Status(status)
		out = append(out, s)
	}
	return out, rows.Err()
}

// DeleteAll removes every order and, by cascade, its items. Stock is not
// restored. Only the maintenance CLI calls this.
func (r *repository) DeleteAll(ctx context.Context) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM orders`)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
