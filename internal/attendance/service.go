package attendance

import (
	"context"
	"errors"

	"gymdesk/internal/metrics"
	"gymdesk/internal/subscription"
)

var (
	ErrNoCurrentSubscription = errors.New("member has no current subscription")
	ErrAlreadyCheckedIn      = errors.New("member already has an open session")
	ErrNoOpenSession         = errors.New("member has no open session")
)

// SubscriptionLookup is the slice of the subscription service the gate needs.
type SubscriptionLookup interface {
	GetCurrentForUser(ctx context.Context, userID int) (*subscription.SubscriptionWithDetails, error)
}

type Service interface {
	CheckIn(ctx context.Context, userID int) (*Attendance, error)
	CheckOut(ctx context.Context, userID int) (*Attendance, error)
	History(ctx context.Context, userID int, limit int) ([]Attendance, error)
	DailyCounts(ctx context.Context, days int) ([]DailyCount, error)
}

type service struct {
	repo          Repository
	subscriptions SubscriptionLookup
}

func NewService(repo Repository, subscriptions SubscriptionLookup) Service {
	return &service{repo: repo, subscriptions: subscriptions}
}

// CheckIn gates the door on a current subscription, then refuses a second
// check-in while a session is still open.
func (s *service) CheckIn(ctx context.Context, userID int) (*Attendance, error) {
	current, err := s.subscriptions.GetCurrentForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, ErrNoCurrentSubscription
	}

	open, err := s.repo.GetOpenForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if open != nil {
		return nil, ErrAlreadyCheckedIn
	}

	a, err := s.repo.Insert(ctx, userID)
	if err != nil {
		return nil, err
	}

	metrics.RecordCheckIn()
	return a, nil
}

func (s *service) CheckOut(ctx context.Context, userID int) (*Attendance, error) {
	open, err := s.repo.GetOpenForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if open == nil {
		return nil, ErrNoOpenSession
	}

	return s.repo.Close(ctx, open.ID)
}

func (s *service) History(ctx context.Context, userID int, limit int) ([]Attendance, error) {
	return s.repo.ListByUser(ctx, userID, limit)
}

func (s *service) DailyCounts(ctx context.Context, days int) ([]DailyCount, error) {
	return s.repo.DailyCounts(ctx, days)
}
