package subscription

import (
	"context"
	"errors"
	"time"

	"gymdesk/internal/logger"
	"gymdesk/internal/metrics"
)

var (
	ErrSubscriptionNotFound     = errors.New("subscription not found")
	ErrMemberNotFound           = errors.New("member not found")
	ErrNotAMember               = errors.New("user is not a member")
	ErrMembershipNotFound       = errors.New("membership not found")
	ErrActiveSubscriptionExists = errors.New("user already has an active subscription")
	ErrInvalidDateRange         = errors.New("start date must be before end date")
	ErrInvalidRenewal           = errors.New("renewal requires extension_days or new_end_date")
)

type Service interface {
	Create(ctx context.Context, req CreateSubscriptionRequest) (*SubscriptionWithDetails, error)
	Get(ctx context.Context, id int) (*SubscriptionWithDetails, error)
	Renew(ctx context.Context, id int, req RenewSubscriptionRequest) (*SubscriptionWithDetails, error)
	Cancel(ctx context.Context, id int) (*SubscriptionWithDetails, error)
	Update(ctx context.Context, id int, req UpdateSubscriptionRequest) (*SubscriptionWithDetails, error)
	Delete(ctx context.Context, id int) error
	List(ctx context.Context, filter ListFilter) ([]SubscriptionWithDetails, int, error)
	History(ctx context.Context, userID int) ([]SubscriptionWithDetails, error)
	GetCurrentForUser(ctx context.Context, userID int) (*SubscriptionWithDetails, error)
	ListExpiringWithin(ctx context.Context, days int) ([]SubscriptionWithDetails, error)
	Stats(ctx context.Context) (*Stats, error)
}

// Mailer queues subscription lifecycle notifications.
type Mailer interface {
	SendSubscriptionCancelled(ctx context.Context, to, name, membershipName string) error
}

type service struct {
	repo   Repository
	mailer Mailer
	now    func() time.Time
}

func NewService(repo Repository, mailer Mailer) Service {
	return &service{repo: repo, mailer: mailer, now: time.Now}
}

func (s *service) Create(ctx context.Context, req CreateSubscriptionRequest) (*SubscriptionWithDetails, error) {
	startDate, err := time.Parse(DateLayout, req.StartDate)
	if err != nil {
		return nil, ErrInvalidDateRange
	}
	endDate, err := time.Parse(DateLayout, req.EndDate)
	if err != nil {
		return nil, ErrInvalidDateRange
	}
	if !startDate.Before(endDate) {
		return nil, ErrInvalidDateRange
	}

	sub, err := s.repo.Create(ctx, req.UserID, req.MembershipID, startDate, endDate, req.Notes)
	if err != nil {
		return nil, err
	}

	metrics.RecordSubscriptionCreated(sub.Membership.Name)
	sub.Status = sub.StatusAt(s.now())
	return sub, nil
}

func (s *service) Get(ctx context.Context, id int) (*SubscriptionWithDetails, error) {
	sub, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	sub.Status = sub.StatusAt(s.now())
	return sub, nil
}

// Renew extends from the stored end date when extension_days is given,
// otherwise moves end_date to the later of the stored end date and
// new_end_date. A renewal never shortens a subscription and always
// reactivates it.
func (s *service) Renew(ctx context.Context, id int, req RenewSubscriptionRequest) (*SubscriptionWithDetails, error) {
	sub, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	var newEndDate time.Time
	switch {
	case req.ExtensionDays > 0:
		newEndDate = sub.EndDate.AddDate(0, 0, req.ExtensionDays)
	case req.NewEndDate != "":
		newEndDate, err = time.Parse(DateLayout, req.NewEndDate)
		if err != nil {
			return nil, ErrInvalidDateRange
		}
		if newEndDate.Before(sub.EndDate) {
			newEndDate = sub.EndDate
		}
	default:
		return nil, ErrInvalidRenewal
	}

	renewed, err := s.repo.Renew(ctx, id, newEndDate)
	if err != nil {
		return nil, err
	}

	metrics.RecordSubscriptionRenewed()
	renewed.Status = renewed.StatusAt(s.now())
	return renewed, nil
}

// Cancel clears the active flag and pulls end_date up to today. Cancelling an
// already-cancelled subscription is a no-op and returns the row unchanged.
func (s *service) Cancel(ctx context.Context, id int) (*SubscriptionWithDetails, error) {
	sub, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !sub.IsActive {
		sub.Status = sub.StatusAt(s.now())
		return sub, nil
	}

	cancelled, err := s.repo.Cancel(ctx, id, dateOf(s.now()))
	if err != nil {
		return nil, err
	}

	metrics.RecordSubscriptionCancelled()

	if s.mailer != nil {
		if err := s.mailer.SendSubscriptionCancelled(ctx, cancelled.User.Email, cancelled.User.Name, cancelled.Membership.Name); err != nil {
			logger.Warnf("Failed to queue cancellation email for subscription %d: %v", id, err)
		}
	}

	cancelled.Status = cancelled.StatusAt(s.now())
	return cancelled, nil
}

func (s *service) Update(ctx context.Context, id int, req UpdateSubscriptionRequest) (*SubscriptionWithDetails, error) {
	sub, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	startDate := sub.StartDate
	endDate := sub.EndDate
	isActive := sub.IsActive
	notes := sub.Notes

	if req.StartDate != nil {
		startDate, err = time.Parse(DateLayout, *req.StartDate)
		if err != nil {
			return nil, ErrInvalidDateRange
		}
	}
	if req.EndDate != nil {
		endDate, err = time.Parse(DateLayout, *req.EndDate)
		if err != nil {
			return nil, ErrInvalidDateRange
		}
	}
	if !startDate.Before(endDate) {
		return nil, ErrInvalidDateRange
	}
	if req.IsActive != nil {
		isActive = *req.IsActive
	}
	if req.Notes != nil {
		notes = req.Notes
	}

	updated, err := s.repo.Update(ctx, id, startDate, endDate, isActive, notes)
	if err != nil {
		return nil, err
	}

	updated.Status = updated.StatusAt(s.now())
	return updated, nil
}

func (s *service) Delete(ctx context.Context, id int) error {
	return s.repo.Delete(ctx, id)
}

func (s *service) List(ctx context.Context, filter ListFilter) ([]SubscriptionWithDetails, int, error) {
	items, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	now := s.now()
	for i := range items {
		items[i].Status = items[i].StatusAt(now)
	}

	return items, total, nil
}

func (s *service) History(ctx context.Context, userID int) ([]SubscriptionWithDetails, error) {
	items, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	for i := range items {
		items[i].Status = items[i].StatusAt(now)
	}

	return items, nil
}

// GetCurrentForUser returns nil without an error when the member has no
// current subscription; handlers translate that into a 404.
func (s *service) GetCurrentForUser(ctx context.Context, userID int) (*SubscriptionWithDetails, error) {
	sub, err := s.repo.GetCurrentForUser(ctx, userID)
	if err != nil || sub == nil {
		return nil, err
	}

	sub.Status = sub.StatusAt(s.now())
	return sub, nil
}

func (s *service) ListExpiringWithin(ctx context.Context, days int) ([]SubscriptionWithDetails, error) {
	items, err := s.repo.ListExpiringWithin(ctx, days)
	if err != nil {
		return nil, err
	}

	now := s.now()
	for i := range items {
		items[i].Status = items[i].StatusAt(now)
	}

	return items, nil
}

func (s *service) Stats(ctx context.Context) (*Stats, error) {
	return s.repo.Stats(ctx)
}
