package payment

import (
	"context"
	"errors"

	"gymdesk/internal/metrics"
)

var (
	ErrPayerNotFound        = errors.New("payer not found")
	ErrSubscriptionMismatch = errors.New("subscription does not belong to the payer")
	ErrInvalidAmount        = errors.New("payment amount must be positive")
)

type Service interface {
	Record(ctx context.Context, req RecordPaymentRequest) (*Payment, error)
	List(ctx context.Context, filter ListFilter) ([]Payment, int, error)
	ListByUser(ctx context.Context, userID int) ([]Payment, error)
	MonthlyRevenue(ctx context.Context) ([]MonthlyRevenue, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) Record(ctx context.Context, req RecordPaymentRequest) (*Payment, error) {
	if req.AmountCents <= 0 {
		return nil, ErrInvalidAmount
	}

	p, err := s.repo.Record(ctx, req.UserID, req.SubscriptionID, req.AmountCents, req.Method, req.Reference)
	if err != nil {
		return nil, err
	}

	metrics.RecordPayment()
	return p, nil
}

func (s *service) List(ctx context.Context, filter ListFilter) ([]Payment, int, error) {
	return s.repo.List(ctx, filter)
}

func (s *service) ListByUser(ctx context.Context, userID int) ([]Payment, error) {
	return s.repo.ListByUser(ctx, userID)
}

func (s *service) MonthlyRevenue(ctx context.Context) ([]MonthlyRevenue, error) {
	return s.repo.MonthlyRevenue(ctx)
}
