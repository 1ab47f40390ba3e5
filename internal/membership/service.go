package membership

import (
	"context"
	"errors"
)

var (
	ErrMembershipNotFound = errors.New("membership not found")
	ErrMembershipInUse    = errors.New("membership is referenced by subscriptions")
)

type Service interface {
	Create(ctx context.Context, req CreateMembershipRequest) (*Membership, error)
	Get(ctx context.Context, id int) (*Membership, error)
	Update(ctx context.Context, id int, req UpdateMembershipRequest) (*Membership, error)
	Delete(ctx context.Context, id int) error
	List(ctx context.Context, filter ListFilter) ([]Membership, error)
	Stats(ctx context.Context) (*Stats, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) Create(ctx context.Context, req CreateMembershipRequest) (*Membership, error) {
	return s.repo.Create(ctx, req)
}

func (s *service) Get(ctx context.Context, id int) (*Membership, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) Update(ctx context.Context, id int, req UpdateMembershipRequest) (*Membership, error) {
	m, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		m.Name = *req.Name
	}
	if req.Description != nil {
		m.Description = req.Description
	}
	if req.PriceCents != nil {
		m.PriceCents = *req.PriceCents
	}
	if req.DurationDays != nil {
		m.DurationDays = *req.DurationDays
	}
	if req.HasCoach != nil {
		m.HasCoach = *req.HasCoach
	}
	if req.HasWorkoutPlan != nil {
		m.HasWorkoutPlan = *req.HasWorkoutPlan
	}
	if req.HasNutritionPlan != nil {
		m.HasNutritionPlan = *req.HasNutritionPlan
	}
	if req.IsActive != nil {
		m.IsActive = *req.IsActive
	}

	return s.repo.Update(ctx, m)
}

// Delete refuses to remove a membership any subscription still references.
func (s *service) Delete(ctx context.Context, id int) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return err
	}

	inUse, err := s.repo.HasSubscriptions(ctx, id)
	if err != nil {
		return err
	}
	if inUse {
		return ErrMembershipInUse
	}

	return s.repo.Delete(ctx, id)
}

func (s *service) List(ctx context.Context, filter ListFilter) ([]Membership, error) {
	return s.repo.List(ctx, filter)
}

func (s *service) Stats(ctx context.Context) (*Stats, error) {
	return s.repo.Stats(ctx)
}
