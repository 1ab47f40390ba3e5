package subscription

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

const detailQuery = `
	SELECT s.id, s.user_id, s.membership_id, s.start_date, s.end_date,
	       s.is_active, s.notes, s.created_at, s.updated_at,
	       u.name AS user_name, u.email AS user_email,
	       m.name AS membership_name, m.price_cents AS membership_price_cents,
	       m.duration_days AS membership_duration_days
	FROM subscriptions s
	JOIN users u ON u.id = s.user_id
	JOIN memberships m ON m.id = s.membership_id
`

type detailRow struct {
	Subscription
	UserName             string `db:"user_name"`
	UserEmail            string `db:"user_email"`
	MembershipName       string `db:"membership_name"`
	MembershipPriceCents int64  `db:"membership_price_cents"`
	MembershipDuration   int    `db:"membership_duration_days"`
}

func (r detailRow) toDetails() *SubscriptionWithDetails {
	return &SubscriptionWithDetails{
		Subscription: r.Subscription,
		User: UserSummary{
			ID:    r.UserID,
			Name:  r.UserName,
			Email: r.UserEmail,
		},
		Membership: MembershipSummary{
			ID:           r.MembershipID,
			Name:         r.MembershipName,
			PriceCents:   r.MembershipPriceCents,
			DurationDays: r.MembershipDuration,
		},
	}
}

// Create holds a row lock on the member's users row for the duration of the
// current-subscription check and the insert, so two concurrent creates for
// the same member serialize instead of both passing the check.
func (r *repository) Create(ctx context.Context, userID, membershipID int, startDate, endDate time.Time, notes *string) (*SubscriptionWithDetails, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var role string
	err = tx.GetContext(ctx, &role, `SELECT role FROM users WHERE id = $1 FOR UPDATE`, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMemberNotFound
		}
		return nil, err
	}
	if role != "member" {
		return nil, ErrNotAMember
	}

	var hasCurrent bool
	err = tx.GetContext(ctx, &hasCurrent, `
		SELECT EXISTS(
			SELECT 1 FROM subscriptions
			WHERE user_id = $1 AND is_active = TRUE AND end_date >= CURRENT_DATE
		)`, userID)
	if err != nil {
		return nil, err
	}
	if hasCurrent {
		return nil, ErrActiveSubscriptionExists
	}

	var membershipExists bool
	err = tx.GetContext(ctx, &membershipExists,
		`SELECT EXISTS(SELECT 1 FROM memberships WHERE id = $1)`, membershipID)
	if err != nil {
		return nil, err
	}
	if !membershipExists {
		return nil, ErrMembershipNotFound
	}

	var id int
	err = tx.GetContext(ctx, &id, `
		INSERT INTO subscriptions (user_id, membership_id, start_date, end_date, is_active, notes)
		VALUES ($1, $2, $3, $4, TRUE, $5)
		RETURNING id
	`, userID, membershipID, startDate, endDate, notes)
	if err != nil {
		return nil, err
	}

	var row detailRow
	if err := tx.GetContext(ctx, &row, detailQuery+` WHERE s.id = $1`, id); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return row.toDetails(), nil
}

func (r *repository) GetByID(ctx context.Context, id int) (*SubscriptionWithDetails, error) {
	var row detailRow
	err := r.db.GetContext(ctx, &row, detailQuery+` WHERE s.id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSubscriptionNotFound
		}
		return nil, err
	}

	return row.toDetails(), nil
}

func (r *repository) Renew(ctx context.Context, id int, newEndDate time.Time) (*SubscriptionWithDetails, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE subscriptions
		SET end_date = $2, is_active = TRUE, updated_at = NOW()
		WHERE id = $1
	`, id, newEndDate)
	if err != nil {
		return nil, err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		return nil, ErrSubscriptionNotFound
	}

	return r.GetByID(ctx, id)
}

func (r *repository) Cancel(ctx context.Context, id int, endDate time.Time) (*SubscriptionWithDetails, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE subscriptions
		SET is_active = FALSE, end_date = $2, updated_at = NOW()
		WHERE id = $1
	`, id, endDate)
	if err != nil {
		return nil, err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		return nil, ErrSubscriptionNotFound
	}

	return r.GetByID(ctx, id)
}

func (r *repository) Update(ctx context.Context, id int, startDate, endDate time.Time, isActive bool, notes *string) (*SubscriptionWithDetails, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE subscriptions
		SET start_date = $2, end_date = $3, is_active = $4, notes = $5, updated_at = NOW()
		WHERE id = $1
	`, id, startDate, endDate, isActive, notes)
	if err != nil {
		return nil, err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		return nil, ErrSubscriptionNotFound
	}

	return r.GetByID(ctx, id)
}

func (r *repository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM subscriptions WHERE id = $1`, id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrSubscriptionNotFound
	}

	return nil
}

func (r *repository) List(ctx context.Context, filter ListFilter) ([]SubscriptionWithDetails, int, error) {
	where := ` WHERE 1=1`
	args := []interface{}{}

	if filter.UserID != 0 {
		args = append(args, filter.UserID)
		where += fmt.Sprintf(" AND s.user_id = $%d", len(args))
	}
	if filter.MembershipID != 0 {
		args = append(args, filter.MembershipID)
		where += fmt.Sprintf(" AND s.membership_id = $%d", len(args))
	}
	switch filter.Status {
	case "active":
		where += " AND s.is_active = TRUE AND s.end_date >= CURRENT_DATE"
	case "expired":
		where += " AND s.end_date < CURRENT_DATE"
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM subscriptions s` + where
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
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
	query := detailQuery + where + fmt.Sprintf(" ORDER BY s.created_at DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows := []detailRow{}
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, 0, err
	}

	items := make([]SubscriptionWithDetails, 0, len(rows))
	for _, row := range rows {
		items = append(items, *row.toDetails())
	}

	return items, total, nil
}

func (r *repository) ListByUser(ctx context.Context, userID int) ([]SubscriptionWithDetails, error) {
	rows := []detailRow{}
	err := r.db.SelectContext(ctx, &rows, detailQuery+`
		WHERE s.user_id = $1
		ORDER BY s.created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}

	items := make([]SubscriptionWithDetails, 0, len(rows))
	for _, row := range rows {
		items = append(items, *row.toDetails())
	}

	return items, nil
}

func (r *repository) GetCurrentForUser(ctx context.Context, userID int) (*SubscriptionWithDetails, error) {
	var row detailRow
	err := r.db.GetContext(ctx, &row, detailQuery+`
		WHERE s.user_id = $1
		  AND s.is_active = TRUE
		  AND s.end_date >= CURRENT_DATE
		ORDER BY s.end_date DESC
		LIMIT 1
	`, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return row.toDetails(), nil
}

func (r *repository) ListExpiringWithin(ctx context.Context, days int) ([]SubscriptionWithDetails, error) {
	rows := []detailRow{}
	err := r.db.SelectContext(ctx, &rows, detailQuery+`
		WHERE s.is_active = TRUE
		  AND s.end_date >= CURRENT_DATE
		  AND s.end_date <= CURRENT_DATE + $1
		ORDER BY s.end_date ASC
	`, days)
	if err != nil {
		return nil, err
	}

	items := make([]SubscriptionWithDetails, 0, len(rows))
	for _, row := range rows {
		items = append(items, *row.toDetails())
	}

	return items, nil
}

func (r *repository) Stats(ctx context.Context) (*Stats, error) {
	stats := &Stats{}

	counts := struct {
		Total        int `db:"total"`
		Active       int `db:"active"`
		Expired      int `db:"expired"`
		ExpiringSoon int `db:"expiring_soon"`
	}{}
	err := r.db.GetContext(ctx, &counts, fmt.Sprintf(`
		SELECT
			COUNT(*) AS total,
			COUNT(*) FILTER (WHERE is_active = TRUE AND end_date >= CURRENT_DATE) AS active,
			COUNT(*) FILTER (WHERE end_date < CURRENT_DATE) AS expired,
			COUNT(*) FILTER (WHERE is_active = TRUE
				AND end_date >= CURRENT_DATE
				AND end_date <= CURRENT_DATE + %d) AS expiring_soon
		FROM subscriptions
	`, StatsExpiringWindowDays))
	if err != nil {
		return nil, err
	}
	stats.Total = counts.Total
	stats.Active = counts.Active
	stats.Expired = counts.Expired
	stats.ExpiringSoon = counts.ExpiringSoon

	err = r.db.GetContext(ctx, &stats.ActiveRevenueCents, `
		SELECT COALESCE(SUM(m.price_cents), 0)
		FROM subscriptions s
		JOIN memberships m ON m.id = s.membership_id
		WHERE s.is_active = TRUE AND s.end_date >= CURRENT_DATE
	`)
	if err != nil {
		return nil, err
	}

	monthRows := []struct {
		MonthNum int `db:"month_num"`
		Count    int `db:"count"`
	}{}
	err = r.db.SelectContext(ctx, &monthRows, `
		SELECT EXTRACT(MONTH FROM created_at)::int AS month_num, COUNT(*) AS count
		FROM subscriptions
		WHERE EXTRACT(YEAR FROM created_at) = EXTRACT(YEAR FROM CURRENT_DATE)
		GROUP BY month_num
		ORDER BY month_num
	`)
	if err != nil {
		return nil, err
	}

	stats.ByMonth = make([]MonthlyCount, 0, len(monthRows))
	for _, m := range monthRows {
		stats.ByMonth = append(stats.ByMonth, MonthlyCount{
			Month: time.Month(m.MonthNum).String(),
			Count: m.Count,
		})
	}

	return stats, nil
}
