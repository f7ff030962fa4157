package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/loayeid/shophub/internal/entity"
	"github.com/loayeid/shophub/internal/usecase"
)

var ErrNotFound = errors.New("not found")

type MySQLOrderRepo struct{ db *sql.DB }

func NewMySQLOrderRepo(db *sql.DB) *MySQLOrderRepo { return &MySQLOrderRepo{db: db} }

const orderColumns = `
id, user_id, user_name, user_email, payment_method, card_last4,
subtotal, tax, shipping, total, status, created_at,
shipping_first_name, shipping_last_name, shipping_address_line1, shipping_address_line2,
shipping_city, shipping_state, shipping_postal_code, shipping_country, shipping_phone,
billing_first_name, billing_last_name, billing_address_line1, billing_address_line2,
billing_city, billing_state, billing_postal_code, billing_country, billing_phone`

// Create writes the order header and all lines in one transaction. If any
// insert fails the whole aggregate is rolled back; a partially written order
// must never become visible.
func (r *MySQLOrderRepo) Create(ctx context.Context, o *entity.Order) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
INSERT INTO orders (`+orderColumns+`)
VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		o.ID, nullIfEmpty(o.UserID), o.UserName, o.UserEmail, o.PaymentMethod, nullIfEmpty(o.CardLast4),
		o.Subtotal, o.Tax, o.Shipping, o.Total, string(o.Status), o.CreatedAt,
		o.ShippingAddress.FirstName, o.ShippingAddress.LastName, o.ShippingAddress.AddressLine1, nullIfEmpty(o.ShippingAddress.AddressLine2),
		o.ShippingAddress.City, o.ShippingAddress.State, o.ShippingAddress.PostalCode, o.ShippingAddress.Country, o.ShippingAddress.Phone,
		o.BillingAddress.FirstName, o.BillingAddress.LastName, o.BillingAddress.AddressLine1, nullIfEmpty(o.BillingAddress.AddressLine2),
		o.BillingAddress.City, o.BillingAddress.State, o.BillingAddress.PostalCode, o.BillingAddress.Country, o.BillingAddress.Phone,
	)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("insert order: %w", err)
	}

	for _, line := range o.Lines {
		_, err = tx.ExecContext(ctx, `
INSERT INTO order_items (order_id, product_id, product_name, quantity, price)
VALUES (?,?,?,?,?)`,
			o.ID, line.ProductID, line.ProductName, line.Quantity, line.Price,
		)
		if err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("insert order line %s: %w", line.ProductID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (r *MySQLOrderRepo) GetByID(ctx context.Context, id string) (*entity.Order, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = ?`, id)
	o, err := scanOrder(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if o.Lines, err = r.linesFor(ctx, id); err != nil {
		return nil, err
	}
	return o, nil
}

func (r *MySQLOrderRepo) List(ctx context.Context) ([]*entity.Order, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+orderColumns+` FROM orders ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*entity.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, o := range out {
		if o.Lines, err = r.linesFor(ctx, o.ID); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// UpdateStatusIf applies the transition only when the row still holds
// fromStatus; rows == 0 means not found or a concurrent change.
func (r *MySQLOrderRepo) UpdateStatusIf(ctx context.Context, id string, fromStatus, toStatus entity.OrderStatus) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE orders SET status = ? WHERE id = ? AND status = ?`,
		string(toStatus), id, string(fromStatus),
	)
	if err != nil {
		return false, err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}

func (r *MySQLOrderRepo) linesFor(ctx context.Context, orderID string) ([]entity.OrderLine, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT product_id, product_name, quantity, price
FROM order_items WHERE order_id = ? ORDER BY id`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lines []entity.OrderLine
	for rows.Next() {
		var l entity.OrderLine
		if err := rows.Scan(&l.ProductID, &l.ProductName, &l.Quantity, &l.Price); err != nil {
			return nil, err
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (*entity.Order, error) {
	var o entity.Order
	var userID, cardLast4, shipL2, billL2 sql.NullString
	err := row.Scan(
		&o.ID, &userID, &o.UserName, &o.UserEmail, &o.PaymentMethod, &cardLast4,
		&o.Subtotal, &o.Tax, &o.Shipping, &o.Total, &o.Status, &o.CreatedAt,
		&o.ShippingAddress.FirstName, &o.ShippingAddress.LastName, &o.ShippingAddress.AddressLine1, &shipL2,
		&o.ShippingAddress.City, &o.ShippingAddress.State, &o.ShippingAddress.PostalCode, &o.ShippingAddress.Country, &o.ShippingAddress.Phone,
		&o.BillingAddress.FirstName, &o.BillingAddress.LastName, &o.BillingAddress.AddressLine1, &billL2,
		&o.BillingAddress.City, &o.BillingAddress.State, &o.BillingAddress.PostalCode, &o.BillingAddress.Country, &o.BillingAddress.Phone,
	)
	if err != nil {
		return nil, err
	}
	o.UserID = userID.String
	o.CardLast4 = cardLast4.String
	o.ShippingAddress.AddressLine2 = shipL2.String
	o.BillingAddress.AddressLine2 = billL2.String
	return &o, nil
}

// nullIfEmpty keeps optional fields NULL in storage, never "" and never a
// literal "undefined".
func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

var _ usecase.OrderRepo = (*MySQLOrderRepo)(nil)
