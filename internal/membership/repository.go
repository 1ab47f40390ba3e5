package membership

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
)

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

const membershipColumns = `id, name, description, price_cents, duration_days,
	has_coach, has_workout_plan, has_nutrition_plan, is_active, created_at, updated_at`

func (r *repository) Create(ctx context.Context, req CreateMembershipRequest) (*Membership, error) {
	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	query := `
		INSERT INTO memberships (name, description, price_cents, duration_days,
			has_coach, has_workout_plan, has_nutrition_plan, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + membershipColumns

	var m Membership
	err := r.db.GetContext(ctx, &m, query,
		req.Name, req.Description, req.PriceCents, req.DurationDays,
		req.HasCoach, req.HasWorkoutPlan, req.HasNutritionPlan, isActive,
	)
	if err != nil {
		return nil, err
	}

	return &m, nil
}

func (r *repository) GetByID(ctx context.Context, id int) (*Membership, error) {
	query := `SELECT ` + membershipColumns + ` FROM memberships WHERE id = $1`

	var m Membership
	err := r.db.GetContext(ctx, &m, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMembershipNotFound
		}
		return nil, err
	}

	return &m, nil
}

func (r *repository) Update(ctx context.Context, m *Membership) (*Membership, error) {
	query := `
		UPDATE memberships
		SET name = $1, description = $2, price_cents = $3, duration_days = $4,
		    has_coach = $5, has_workout_plan = $6, has_nutrition_plan = $7,
		    is_active = $8, updated_at = NOW()
		WHERE id = $9
		RETURNING ` + membershipColumns

	var updated Membership
	err := r.db.GetContext(ctx, &updated, query,
		m.Name, m.Description, m.PriceCents, m.DurationDays,
		m.HasCoach, m.HasWorkoutPlan, m.HasNutritionPlan, m.IsActive, m.ID,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMembershipNotFound
		}
		return nil, err
	}

	return &updated, nil
}

func (r *repository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM memberships WHERE id = $1`, id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrMembershipNotFound
	}

	return nil
}

// List returns catalog entries ordered by price ascending.
func (r *repository) List(ctx context.Context, filter ListFilter) ([]Membership, error) {
	query := `SELECT ` + membershipColumns + ` FROM memberships WHERE 1=1`
	args := []interface{}{}

	if filter.ActiveOnly {
		query += ` AND is_active = TRUE`
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		query += ` AND (name ILIKE $1 OR description ILIKE $1)`
	}

	query += ` ORDER BY price_cents ASC`

	memberships := []Membership{}
	err := r.db.SelectContext(ctx, &memberships, query, args...)
	if err != nil {
		return nil, err
	}

	return memberships, nil
}

// HasSubscriptions is an existence query, not a count; it backs the delete
// guard.
func (r *repository) HasSubscriptions(ctx context.Context, id int) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM subscriptions WHERE membership_id = $1)`

	var exists bool
	err := r.db.GetContext(ctx, &exists, query, id)
	if err != nil {
		return false, err
	}

	return exists, nil
}

func (r *repository) Stats(ctx context.Context) (*Stats, error) {
	stats := &Stats{}

	countsQuery := `
		SELECT
			COUNT(*) AS total,
			COUNT(*) FILTER (WHERE is_active) AS active,
			COUNT(*) FILTER (WHERE NOT is_active) AS inactive
		FROM memberships
	`
	row := struct {
		Total    int `db:"total"`
		Active   int `db:"active"`
		Inactive int `db:"inactive"`
	}{}
	if err := r.db.GetContext(ctx, &row, countsQuery); err != nil {
		return nil, err
	}
	stats.Total = row.Total
	stats.Active = row.Active
	stats.Inactive = row.Inactive

	revenueQuery := `
		SELECT m.name,
		       COUNT(s.id) FILTER (WHERE s.is_active AND s.end_date >= CURRENT_DATE) AS active_subscriptions,
		       COALESCE(COUNT(s.id) FILTER (WHERE s.is_active AND s.end_date >= CURRENT_DATE) * m.price_cents, 0) AS revenue_cents
		FROM memberships m
		LEFT JOIN subscriptions s ON s.membership_id = m.id
		GROUP BY m.id, m.name, m.price_cents
		ORDER BY m.price_cents ASC
	`
	revenue := []RevenueByPlan{}
	if err := r.db.SelectContext(ctx, &revenue, revenueQuery); err != nil {
		return nil, err
	}
	stats.Revenue = revenue

	return stats, nil
}
