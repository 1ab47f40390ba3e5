package payment

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

type Repository interface {
	Record(ctx context.Context, userID int, subscriptionID *int, amountCents int64, method string, reference *string) (*Payment, error)
	List(ctx context.Context, filter ListFilter) ([]Payment, int, error)
	ListByUser(ctx context.Context, userID int) ([]Payment, error)
	MonthlyRevenue(ctx context.Context) ([]MonthlyRevenue, error)
}

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

// Record validates the payer and the optional subscription link inside one
// transaction so a concurrent subscription delete cannot leave a dangling
// reference.
func (r *repository) Record(ctx context.Context, userID int, subscriptionID *int, amountCents int64, method string, reference *string) (*Payment, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var userExists bool
	err = tx.GetContext(ctx, &userExists,
		`SELECT EXISTS(SELECT 1 FROM users WHERE id = $1)`, userID)
	if err != nil {
		return nil, err
	}
	if !userExists {
		return nil, ErrPayerNotFound
	}

	if subscriptionID != nil {
		var subExists bool
		err = tx.GetContext(ctx, &subExists,
			`SELECT EXISTS(SELECT 1 FROM subscriptions WHERE id = $1 AND user_id = $2)`,
			*subscriptionID, userID)
		if err != nil {
			return nil, err
		}
		if !subExists {
			return nil, ErrSubscriptionMismatch
		}
	}

	var p Payment
	err = tx.GetContext(ctx, &p, `
		INSERT INTO payments (user_id, subscription_id, amount_cents, method, reference, paid_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		RETURNING id, user_id, subscription_id, amount_cents, method, reference, paid_at, created_at
	`, userID, subscriptionID, amountCents, method, reference)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return &p, nil
}

func (r *repository) List(ctx context.Context, filter ListFilter) ([]Payment, int, error) {
	where := ` WHERE 1=1`
	args := []interface{}{}

	if filter.UserID != 0 {
		args = append(args, filter.UserID)
		where += fmt.Sprintf(" AND user_id = $%d", len(args))
	}

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM payments`+where, args...); err != nil {
		return nil, 0, err
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	perPage := filter.PerPage
	if perPage < 1 {
		perPage = DefaultPageSize
	}

	args = append(args, perPage, (page-1)*perPage)
	query := `
		SELECT id, user_id, subscription_id, amount_cents, method, reference, paid_at, created_at
		FROM payments` + where + fmt.Sprintf(" ORDER BY paid_at DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	payments := []Payment{}
	if err := r.db.SelectContext(ctx, &payments, query, args...); err != nil {
		return nil, 0, err
	}

	return payments, total, nil
}

func (r *repository) ListByUser(ctx context.Context, userID int) ([]Payment, error) {
	payments := []Payment{}
	err := r.db.SelectContext(ctx, &payments, `
		SELECT id, user_id, subscription_id, amount_cents, method, reference, paid_at, created_at
		FROM payments
		WHERE user_id = $1
		ORDER BY paid_at DESC
	`, userID)
	return payments, err
}

func (r *repository) MonthlyRevenue(ctx context.Context) ([]MonthlyRevenue, error) {
	revenue := []MonthlyRevenue{}
	err := r.db.SelectContext(ctx, &revenue, `
		SELECT to_char(date_trunc('month', paid_at), 'YYYY-MM') AS month,
		       COALESCE(SUM(amount_cents), 0) AS total_cents,
		       COUNT(*) AS count
		FROM payments
		GROUP BY month
		ORDER BY month DESC
		LIMIT 12
	`)
	return revenue, err
}
