package coach

import (
	"context"
	"errors"

	"gymdesk/internal/user"
)

var (
	ErrNotACoach          = errors.New("user is not a coach")
	ErrNotAMember         = errors.New("user is not a member")
	ErrAlreadyAssigned    = errors.New("member is already assigned to this coach")
	ErrAssignmentNotFound = errors.New("assignment not found")
)

type Service interface {
	Assign(ctx context.Context, coachID, memberID int) (*Assignment, error)
	Unassign(ctx context.Context, coachID, memberID int) error
	ListMembersForCoach(ctx context.Context, coachID int) ([]AssignedMember, error)
	IsAssigned(ctx context.Context, coachID, memberID int) (bool, error)
}

type service struct {
	repo  Repository
	users user.Repository
}

func NewService(repo Repository, users user.Repository) Service {
	return &service{repo: repo, users: users}
}

// Assign validates both sides of the pair before writing: the coach must hold
// the coach role and the member the member role.
func (s *service) Assign(ctx context.Context, coachID, memberID int) (*Assignment, error) {
	coach, err := s.users.FindByID(ctx, coachID)
	if err != nil {
		return nil, err
	}
	if coach.Role != user.RoleCoach {
		return nil, ErrNotACoach
	}

	member, err := s.users.FindByID(ctx, memberID)
	if err != nil {
		return nil, err
	}
	if member.Role != user.RoleMember {
		return nil, ErrNotAMember
	}

	return s.repo.Assign(ctx, coachID, memberID)
}

func (s *service) Unassign(ctx context.Context, coachID, memberID int) error {
	return s.repo.Unassign(ctx, coachID, memberID)
}

func (s *service) ListMembersForCoach(ctx context.Context, coachID int) ([]AssignedMember, error) {
	return s.repo.ListMembersForCoach(ctx, coachID)
}

func (s *service) IsAssigned(ctx context.Context, coachID, memberID int) (bool, error) {
	return s.repo.IsAssigned(ctx, coachID, memberID)
}
