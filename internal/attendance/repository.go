package attendance

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
)

type Repository interface {
	Insert(ctx context.Context, userID int) (*Attendance, error)
	GetOpenForUser(ctx context.Context, userID int) (*Attendance, error)
	Close(ctx context.Context, id int) (*Attendance, error)
	ListByUser(ctx context.Context, userID int, limit int) ([]Attendance, error)
	DailyCounts(ctx context.Context, days int) ([]DailyCount, error)
}

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Insert(ctx context.Context, userID int) (*Attendance, error) {
	var a Attendance
	err := r.db.GetContext(ctx, &a, `
		INSERT INTO attendances (user_id, checked_in_at)
		VALUES ($1, NOW())
		RETURNING id, user_id, checked_in_at, checked_out_at
	`, userID)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// GetOpenForUser returns nil when the user has no session without a checkout.
func (r *repository) GetOpenForUser(ctx context.Context, userID int) (*Attendance, error) {
	var a Attendance
	err := r.db.GetContext(ctx, &a, `
		SELECT id, user_id, checked_in_at, checked_out_at
		FROM attendances
		WHERE user_id = $1 AND checked_out_at IS NULL
		ORDER BY checked_in_at DESC
		LIMIT 1
	`, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &a, nil
}

func (r *repository) Close(ctx context.Context, id int) (*Attendance, error) {
	var a Attendance
	err := r.db.GetContext(ctx, &a, `
		UPDATE attendances
		SET checked_out_at = NOW()
		WHERE id = $1
		RETURNING id, user_id, checked_in_at, checked_out_at
	`, id)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *repository) ListByUser(ctx context.Context, userID int, limit int) ([]Attendance, error) {
	if limit < 1 {
		limit = 50
	}

	attendances := []Attendance{}
	err := r.db.SelectContext(ctx, &attendances, `
		SELECT id, user_id, checked_in_at, checked_out_at
		FROM attendances
		WHERE user_id = $1
		ORDER BY checked_in_at DESC
		LIMIT $2
	`, userID, limit)
	return attendances, err
}

func (r *repository) DailyCounts(ctx context.Context, days int) ([]DailyCount, error) {
	counts := []DailyCount{}
	err := r.db.SelectContext(ctx, &counts, `
		SELECT to_char(date_trunc('day', checked_in_at), 'YYYY-MM-DD') AS day,
		       COUNT(*) AS count
		FROM attendances
		WHERE checked_in_at >= CURRENT_DATE - $1
		GROUP BY day
		ORDER BY day DESC
	`, days)
	return counts, err
}
