package coach

import "time"

type Assignment struct {
	ID         int       `db:"id" json:"id"`
	CoachID    int       `db:"coach_id" json:"coach_id"`
	MemberID   int       `db:"member_id" json:"member_id"`
	AssignedAt time.Time `db:"assigned_at" json:"assigned_at"`
}

// AssignedMember is an assignment joined with the member's profile for the
// coach dashboard.
type AssignedMember struct {
	MemberID   int       `db:"member_id" json:"member_id"`
	Name       string    `db:"name" json:"name"`
	Email      string    `db:"email" json:"email"`
	AssignedAt time.Time `db:"assigned_at" json:"assigned_at"`
}

type AssignRequest struct {
	CoachID  int `json:"coach_id" binding:"required"`
	MemberID int `json:"member_id" binding:"required"`
}
