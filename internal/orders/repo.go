package orders

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ariefcatur/go-juice-pos/internal/postgres"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

type Repo struct{ DB *pgxpool.Pool }

const orderColumns = `id, items, total_amount::text, total_currency, payment_method, status,
	customer_id, employee_id, created_at, updated_at`

// InsertOrder stores n under id. The database assigns created_at.
func (r *Repo) InsertOrder(ctx context.Context, id string, n NewOrder, total Money) (Order, error) {
	items, err := json.Marshal(n.Items)
	if err != nil {
		return Order{}, fmt.Errorf("json.Marshal items: %w", err)
	}

	status := n.Status
	if status == "" {
		status = StatusPending
	}

	row := r.DB.QueryRow(ctx, `
		INSERT INTO orders(id, items, total_amount, total_currency, payment_method, status, customer_id, employee_id)
		VALUES ($1, $2, $3::text::numeric, $4, $5, $6, $7, $8)
		RETURNING `+orderColumns,
		id, items, total.Amount.String(), total.Currency.String(), string(n.PaymentMethod), string(status),
		n.CustomerID, n.EmployeeID,
	)

	o, err := scanOrder(row)
	if err != nil {
		if postgres.IsUniqueViolation(err, "orders_pkey") {
			return Order{}, fmt.Errorf("q.InsertOrder[%s]: %w", id, ErrIDCollision)
		}
		return Order{}, fmt.Errorf("q.InsertOrder[%s]: %w: %w", id, ErrInsert, err)
	}

	return o, nil
}

// LatestIDSince orders by length first so that a day past 999 orders still
// yields its true maximum.
func (r *Repo) LatestIDSince(ctx context.Context, since time.Time, prefix string) (string, bool, error) {
	var id string

	err := r.DB.QueryRow(ctx, `
		SELECT id FROM orders
		WHERE created_at >= $1 AND id LIKE $2
		ORDER BY length(id) DESC, id DESC
		LIMIT 1`, since, prefix+"%").Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("q.LatestIDSince: %w", err)
	}

	return id, true, nil
}

func (r *Repo) GetOrder(ctx context.Context, id string) (Order, error) {
	row := r.DB.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)

	o, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Order{}, fmt.Errorf("q.GetOrder: %w", ErrNotFound)
		}
		return Order{}, fmt.Errorf("q.GetOrder: %w", err)
	}

	return o, nil
}

// ListOrders returns the newest orders first.
func (r *Repo) ListOrders(ctx context.Context, f Filter) ([]Order, error) {
	statuses := lo.Map(f.Statuses, func(s Status, _ int) string { return string(s) })

	var limit *int
	if f.Limit > 0 {
		limit = lo.ToPtr(f.Limit)
	}

	rows, err := r.DB.Query(ctx, `
		SELECT `+orderColumns+` FROM orders
		WHERE ($1::uuid IS NULL OR customer_id = $1)
		  AND ($2::text[] IS NULL OR status = ANY($2))
		  AND ($3::timestamptz IS NULL OR created_at >= $3)
		  AND ($4::timestamptz IS NULL OR created_at < $4)
		ORDER BY created_at DESC, id DESC
		LIMIT $5`,
		f.CustomerID, nilSliceIfEmpty(statuses), f.Since, f.Until, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("q.ListOrders: %w", err)
	}

	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Order, error) {
		return scanOrder(row)
	})
	if err != nil {
		return nil, fmt.Errorf("pgx.CollectRows: %w", err)
	}

	return out, nil
}

type statusChange struct {
	order Order
	from  Status
}

// UpdateStatus moves the order to status to, enforcing CanTransition under a
// row lock. It returns the updated order and its previous status.
func (r *Repo) UpdateStatus(ctx context.Context, id string, to Status) (Order, Status, error) {
	res, err := postgres.WithTx(ctx, r.DB, func(tx pgx.Tx) (statusChange, error) {
		var current string
		if err := tx.QueryRow(ctx, `SELECT status FROM orders WHERE id = $1 FOR UPDATE`, id).Scan(&current); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return statusChange{}, fmt.Errorf("q.LockOrder: %w", ErrNotFound)
			}
			return statusChange{}, fmt.Errorf("q.LockOrder: %w", err)
		}

		from := Status(current)
		if !CanTransition(from, to) {
			return statusChange{}, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
		}

		row := tx.QueryRow(ctx, `
			UPDATE orders SET status = $2, updated_at = now()
			WHERE id = $1
			RETURNING `+orderColumns, id, string(to))

		o, err := scanOrder(row)
		if err != nil {
			return statusChange{}, fmt.Errorf("q.UpdateOrderStatus: %w", err)
		}

		return statusChange{order: o, from: from}, nil
	})
	if err != nil {
		return Order{}, "", err
	}

	return res.order, res.from, nil
}

func scanOrder(row pgx.Row) (Order, error) {
	var (
		o                                  Order
		items                              []byte
		amount, cur, paymentMethod, status string
	)

	err := row.Scan(&o.ID, &items, &amount, &cur, &paymentMethod, &status,
		&o.CustomerID, &o.EmployeeID, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return o, err
	}

	if err := json.Unmarshal(items, &o.Items); err != nil {
		return o, fmt.Errorf("json.Unmarshal items[%s]: %w", o.ID, err)
	}

	total, err := decimal.NewFromString(amount)
	if err != nil {
		return o, fmt.Errorf("total[%s] is not valid: %w", amount, err)
	}

	unit, err := currency.ParseISO(cur)
	if err != nil {
		return o, fmt.Errorf("currency[%s] is not valid: %w", cur, err)
	}
	o.Total = Money{Amount: total, Currency: unit}

	if o.PaymentMethod, err = ToPaymentMethod(paymentMethod); err != nil {
		return o, err
	}
	if o.Status, err = ToStatus(status); err != nil {
		return o, err
	}

	return o, nil
}

func nilSliceIfEmpty[T any](s []T) []T {
	if len(s) == 0 {
		return nil
	}
	return s
}
