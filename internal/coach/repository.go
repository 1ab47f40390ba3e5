package coach

import (
	"context"

	"github.com/jmoiron/sqlx"
)

type Repository interface {
	IsAssigned(ctx context.Context, coachID, memberID int) (bool, error)
	Assign(ctx context.Context, coachID, memberID int) (*Assignment, error)
	Unassign(ctx context.Context, coachID, memberID int) error
	ListMembersForCoach(ctx context.Context, coachID int) ([]AssignedMember, error)
}

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) IsAssigned(ctx context.Context, coachID, memberID int) (bool, error) {
	var assigned bool
	err := r.db.GetContext(ctx, &assigned, `
		SELECT EXISTS(
			SELECT 1 FROM coach_members WHERE coach_id = $1 AND member_id = $2
		)`, coachID, memberID)
	return assigned, err
}

// Assign relies on the unique (coach_id, member_id) pair; a conflicting
// insert returns no row and maps to ErrAlreadyAssigned.
func (r *repository) Assign(ctx context.Context, coachID, memberID int) (*Assignment, error) {
	rows, err := r.db.QueryxContext(ctx, `
		INSERT INTO coach_members (coach_id, member_id)
		VALUES ($1, $2)
		ON CONFLICT (coach_id, member_id) DO NOTHING
		RETURNING id, coach_id, member_id, assigned_at
	`, coachID, memberID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, ErrAlreadyAssigned
	}

	var a Assignment
	if err := rows.StructScan(&a); err != nil {
		return nil, err
	}

	return &a, rows.Err()
}

func (r *repository) Unassign(ctx context.Context, coachID, memberID int) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM coach_members WHERE coach_id = $1 AND member_id = $2`,
		coachID, memberID)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrAssignmentNotFound
	}

	return nil
}

func (r *repository) ListMembersForCoach(ctx context.Context, coachID int) ([]AssignedMember, error) {
	members := []AssignedMember{}
	err := r.db.SelectContext(ctx, &members, `
		SELECT cm.member_id, u.name, u.email, cm.assigned_at
		FROM coach_members cm
		JOIN users u ON u.id = cm.member_id
		WHERE cm.coach_id = $1
		ORDER BY cm.assigned_at DESC
	`, coachID)
	return members, err
}
