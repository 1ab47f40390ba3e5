package subscription

import (
	"context"
	"time"
)

type Repository interface {
	// Create inserts a subscription after locking the member's user row and
	// re-checking the no-current-subscription invariant inside one
	// transaction.
	Create(ctx context.Context, userID, membershipID int, startDate, endDate time.Time, notes *string) (*SubscriptionWithDetails, error)
	GetByID(ctx context.Context, id int) (*SubscriptionWithDetails, error)
	Renew(ctx context.Context, id int, newEndDate time.Time) (*SubscriptionWithDetails, error)
	Cancel(ctx context.Context, id int, endDate time.Time) (*SubscriptionWithDetails, error)
	Update(ctx context.Context, id int, startDate, endDate time.Time, isActive bool, notes *string) (*SubscriptionWithDetails, error)
	Delete(ctx context.Context, id int) error
	List(ctx context.Context, filter ListFilter) ([]SubscriptionWithDetails, int, error)
	ListByUser(ctx context.Context, userID int) ([]SubscriptionWithDetails, error)
	GetCurrentForUser(ctx context.Context, userID int) (*SubscriptionWithDetails, error)
	ListExpiringWithin(ctx context.Context, days int) ([]SubscriptionWithDetails, error)
	Stats(ctx context.Context) (*Stats, error)
}
