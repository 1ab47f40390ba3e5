package subscription

import (
	"context"
	"os"
	"testing"
	"time"

	"gymdesk/internal/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	logger.Init()
	os.Exit(m.Run())
}

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Create(ctx context.Context, userID, membershipID int, startDate, endDate time.Time, notes *string) (*SubscriptionWithDetails, error) {
	args := m.Called(ctx, userID, membershipID, startDate, endDate, notes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*SubscriptionWithDetails), args.Error(1)
}

func (m *MockRepository) GetByID(ctx context.Context, id int) (*SubscriptionWithDetails, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*SubscriptionWithDetails), args.Error(1)
}

func (m *MockRepository) Renew(ctx context.Context, id int, newEndDate time.Time) (*SubscriptionWithDetails, error) {
	args := m.Called(ctx, id, newEndDate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*SubscriptionWithDetails), args.Error(1)
}

func (m *MockRepository) Cancel(ctx context.Context, id int, endDate time.Time) (*SubscriptionWithDetails, error) {
	args := m.Called(ctx, id, endDate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*SubscriptionWithDetails), args.Error(1)
}

func (m *MockRepository) Update(ctx context.Context, id int, startDate, endDate time.Time, isActive bool, notes *string) (*SubscriptionWithDetails, error) {
	args := m.Called(ctx, id, startDate, endDate, isActive, notes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*SubscriptionWithDetails), args.Error(1)
}

func (m *MockRepository) Delete(ctx context.Context, id int) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockRepository) List(ctx context.Context, filter ListFilter) ([]SubscriptionWithDetails, int, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]SubscriptionWithDetails), args.Int(1), args.Error(2)
}

func (m *MockRepository) ListByUser(ctx context.Context, userID int) ([]SubscriptionWithDetails, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]SubscriptionWithDetails), args.Error(1)
}

func (m *MockRepository) GetCurrentForUser(ctx context.Context, userID int) (*SubscriptionWithDetails, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*SubscriptionWithDetails), args.Error(1)
}

func (m *MockRepository) ListExpiringWithin(ctx context.Context, days int) ([]SubscriptionWithDetails, error) {
	args := m.Called(ctx, days)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]SubscriptionWithDetails), args.Error(1)
}

func (m *MockRepository) Stats(ctx context.Context) (*Stats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Stats), args.Error(1)
}

func newTestService(repo Repository, now time.Time) *service {
	return &service{repo: repo, now: func() time.Time { return now }}
}

type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) SendSubscriptionCancelled(ctx context.Context, to, name, membershipName string) error {
	args := m.Called(ctx, to, name, membershipName)
	return args.Error(0)
}

func detailsFixture(id int, start, end time.Time, isActive bool) *SubscriptionWithDetails {
	return &SubscriptionWithDetails{
		Subscription: Subscription{
			ID:           id,
			UserID:       7,
			MembershipID: 3,
			StartDate:    start,
			EndDate:      end,
			IsActive:     isActive,
		},
		User:       UserSummary{ID: 7, Name: "Jane Doe", Email: "jane@example.com"},
		Membership: MembershipSummary{ID: 3, Name: "Gold", PriceCents: 4999, DurationDays: 30},
	}
}

func TestService_Create(t *testing.T) {
	now := time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC)

	t.Run("creates subscription with parsed dates", func(t *testing.T) {
		repo := new(MockRepository)
		svc := newTestService(repo, now)

		start := date(2024, 1, 10)
		end := date(2024, 2, 9)
		repo.On("Create", mock.Anything, 7, 3, start, end, (*string)(nil)).
			Return(detailsFixture(1, start, end, true), nil)

		sub, err := svc.Create(context.Background(), CreateSubscriptionRequest{
			UserID:       7,
			MembershipID: 3,
			StartDate:    "2024-01-10",
			EndDate:      "2024-02-09",
		})

		require.NoError(t, err)
		assert.Equal(t, 1, sub.ID)
		assert.Equal(t, StatusActive, sub.Status)
		repo.AssertExpectations(t)
	})

	t.Run("rejects start date not before end date", func(t *testing.T) {
		repo := new(MockRepository)
		svc := newTestService(repo, now)

		_, err := svc.Create(context.Background(), CreateSubscriptionRequest{
			UserID:       7,
			MembershipID: 3,
			StartDate:    "2024-02-09",
			EndDate:      "2024-01-10",
		})

		assert.ErrorIs(t, err, ErrInvalidDateRange)
		repo.AssertNotCalled(t, "Create")
	})

	t.Run("rejects malformed dates", func(t *testing.T) {
		repo := new(MockRepository)
		svc := newTestService(repo, now)

		_, err := svc.Create(context.Background(), CreateSubscriptionRequest{
			UserID:       7,
			MembershipID: 3,
			StartDate:    "10/01/2024",
			EndDate:      "2024-02-09",
		})

		assert.ErrorIs(t, err, ErrInvalidDateRange)
		repo.AssertNotCalled(t, "Create")
	})

	t.Run("propagates duplicate current subscription conflict", func(t *testing.T) {
		repo := new(MockRepository)
		svc := newTestService(repo, now)

		repo.On("Create", mock.Anything, 7, 3, mock.Anything, mock.Anything, (*string)(nil)).
			Return(nil, ErrActiveSubscriptionExists)

		_, err := svc.Create(context.Background(), CreateSubscriptionRequest{
			UserID:       7,
			MembershipID: 3,
			StartDate:    "2024-01-10",
			EndDate:      "2024-02-09",
		})

		assert.ErrorIs(t, err, ErrActiveSubscriptionExists)
		repo.AssertExpectations(t)
	})
}

func TestService_Renew(t *testing.T) {
	now := time.Date(2024, 1, 20, 9, 0, 0, 0, time.UTC)
	start := date(2024, 1, 1)
	end := date(2024, 1, 31)

	t.Run("extension days extend from stored end date", func(t *testing.T) {
		repo := new(MockRepository)
		svc := newTestService(repo, now)

		expectedEnd := date(2024, 2, 15)
		repo.On("GetByID", mock.Anything, 1).Return(detailsFixture(1, start, end, true), nil)
		repo.On("Renew", mock.Anything, 1, expectedEnd).
			Return(detailsFixture(1, start, expectedEnd, true), nil)

		sub, err := svc.Renew(context.Background(), 1, RenewSubscriptionRequest{ExtensionDays: 15})

		require.NoError(t, err)
		assert.Equal(t, expectedEnd, sub.EndDate)
		repo.AssertExpectations(t)
	})

	t.Run("absolute new end date", func(t *testing.T) {
		repo := new(MockRepository)
		svc := newTestService(repo, now)

		expectedEnd := date(2024, 3, 1)
		repo.On("GetByID", mock.Anything, 1).Return(detailsFixture(1, start, end, true), nil)
		repo.On("Renew", mock.Anything, 1, expectedEnd).
			Return(detailsFixture(1, start, expectedEnd, true), nil)

		sub, err := svc.Renew(context.Background(), 1, RenewSubscriptionRequest{NewEndDate: "2024-03-01"})

		require.NoError(t, err)
		assert.Equal(t, expectedEnd, sub.EndDate)
		repo.AssertExpectations(t)
	})

	t.Run("clamps earlier new end date to the stored end date", func(t *testing.T) {
		repo := new(MockRepository)
		svc := newTestService(repo, now)

		cancelled := detailsFixture(1, start, end, false)
		repo.On("GetByID", mock.Anything, 1).Return(cancelled, nil)
		repo.On("Renew", mock.Anything, 1, end).
			Return(detailsFixture(1, start, end, true), nil)

		sub, err := svc.Renew(context.Background(), 1, RenewSubscriptionRequest{NewEndDate: "2024-01-15"})

		require.NoError(t, err)
		assert.Equal(t, end, sub.EndDate)
		assert.True(t, sub.IsActive)
		repo.AssertExpectations(t)
	})

	t.Run("rejects empty renewal request", func(t *testing.T) {
		repo := new(MockRepository)
		svc := newTestService(repo, now)

		repo.On("GetByID", mock.Anything, 1).Return(detailsFixture(1, start, end, true), nil)

		_, err := svc.Renew(context.Background(), 1, RenewSubscriptionRequest{})

		assert.ErrorIs(t, err, ErrInvalidRenewal)
		repo.AssertNotCalled(t, "Renew")
	})

	t.Run("unknown subscription", func(t *testing.T) {
		repo := new(MockRepository)
		svc := newTestService(repo, now)

		repo.On("GetByID", mock.Anything, 99).Return(nil, ErrSubscriptionNotFound)

		_, err := svc.Renew(context.Background(), 99, RenewSubscriptionRequest{ExtensionDays: 30})

		assert.ErrorIs(t, err, ErrSubscriptionNotFound)
	})
}

func TestService_Cancel(t *testing.T) {
	now := time.Date(2024, 1, 20, 16, 45, 0, 0, time.UTC)
	start := date(2024, 1, 1)
	end := date(2024, 3, 1)

	t.Run("cancels active subscription with end date today", func(t *testing.T) {
		repo := new(MockRepository)
		svc := newTestService(repo, now)

		today := date(2024, 1, 20)
		repo.On("GetByID", mock.Anything, 1).Return(detailsFixture(1, start, end, true), nil)
		repo.On("Cancel", mock.Anything, 1, today).
			Return(detailsFixture(1, start, today, false), nil)

		sub, err := svc.Cancel(context.Background(), 1)

		require.NoError(t, err)
		assert.False(t, sub.IsActive)
		assert.Equal(t, today, sub.EndDate)
		assert.Equal(t, StatusCancelled, sub.Status)
		repo.AssertExpectations(t)
	})

	t.Run("queues cancellation email", func(t *testing.T) {
		repo := new(MockRepository)
		mailer := new(MockMailer)
		svc := newTestService(repo, now)
		svc.mailer = mailer

		today := date(2024, 1, 20)
		repo.On("GetByID", mock.Anything, 1).Return(detailsFixture(1, start, end, true), nil)
		repo.On("Cancel", mock.Anything, 1, today).
			Return(detailsFixture(1, start, today, false), nil)
		mailer.On("SendSubscriptionCancelled", mock.Anything, "jane@example.com", "Jane Doe", "Gold").
			Return(nil)

		_, err := svc.Cancel(context.Background(), 1)

		require.NoError(t, err)
		mailer.AssertExpectations(t)
	})

	t.Run("mailer failure does not fail the cancel", func(t *testing.T) {
		repo := new(MockRepository)
		mailer := new(MockMailer)
		svc := newTestService(repo, now)
		svc.mailer = mailer

		today := date(2024, 1, 20)
		repo.On("GetByID", mock.Anything, 1).Return(detailsFixture(1, start, end, true), nil)
		repo.On("Cancel", mock.Anything, 1, today).
			Return(detailsFixture(1, start, today, false), nil)
		mailer.On("SendSubscriptionCancelled", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(assert.AnError)

		sub, err := svc.Cancel(context.Background(), 1)

		require.NoError(t, err)
		assert.False(t, sub.IsActive)
	})

	t.Run("cancelling twice is a no-op", func(t *testing.T) {
		repo := new(MockRepository)
		svc := newTestService(repo, now)

		alreadyCancelled := detailsFixture(1, start, date(2024, 1, 18), false)
		repo.On("GetByID", mock.Anything, 1).Return(alreadyCancelled, nil)

		sub, err := svc.Cancel(context.Background(), 1)

		require.NoError(t, err)
		assert.Equal(t, StatusCancelled, sub.Status)
		assert.Equal(t, date(2024, 1, 18), sub.EndDate)
		repo.AssertNotCalled(t, "Cancel")
	})
}

func TestService_Update(t *testing.T) {
	now := time.Date(2024, 1, 20, 9, 0, 0, 0, time.UTC)
	start := date(2024, 1, 1)
	end := date(2024, 3, 1)

	t.Run("patches only provided fields", func(t *testing.T) {
		repo := new(MockRepository)
		svc := newTestService(repo, now)

		newEnd := date(2024, 4, 1)
		repo.On("GetByID", mock.Anything, 1).Return(detailsFixture(1, start, end, true), nil)
		repo.On("Update", mock.Anything, 1, start, newEnd, true, (*string)(nil)).
			Return(detailsFixture(1, start, newEnd, true), nil)

		endStr := "2024-04-01"
		sub, err := svc.Update(context.Background(), 1, UpdateSubscriptionRequest{EndDate: &endStr})

		require.NoError(t, err)
		assert.Equal(t, newEnd, sub.EndDate)
		repo.AssertExpectations(t)
	})

	t.Run("rejects patch that inverts the date range", func(t *testing.T) {
		repo := new(MockRepository)
		svc := newTestService(repo, now)

		repo.On("GetByID", mock.Anything, 1).Return(detailsFixture(1, start, end, true), nil)

		endStr := "2023-12-01"
		_, err := svc.Update(context.Background(), 1, UpdateSubscriptionRequest{EndDate: &endStr})

		assert.ErrorIs(t, err, ErrInvalidDateRange)
		repo.AssertNotCalled(t, "Update")
	})
}

func TestService_GetCurrentForUser(t *testing.T) {
	now := time.Date(2024, 1, 20, 9, 0, 0, 0, time.UTC)

	t.Run("returns nil when member has no current subscription", func(t *testing.T) {
		repo := new(MockRepository)
		svc := newTestService(repo, now)

		repo.On("GetCurrentForUser", mock.Anything, 7).Return(nil, nil)

		sub, err := svc.GetCurrentForUser(context.Background(), 7)

		require.NoError(t, err)
		assert.Nil(t, sub)
	})

	t.Run("fills derived status", func(t *testing.T) {
		repo := new(MockRepository)
		svc := newTestService(repo, now)

		repo.On("GetCurrentForUser", mock.Anything, 7).
			Return(detailsFixture(1, date(2024, 1, 1), date(2024, 1, 25), true), nil)

		sub, err := svc.GetCurrentForUser(context.Background(), 7)

		require.NoError(t, err)
		assert.Equal(t, StatusExpiringSoon, sub.Status)
	})
}

func TestService_ListExpiringWithin(t *testing.T) {
	now := time.Date(2024, 1, 20, 9, 0, 0, 0, time.UTC)

	repo := new(MockRepository)
	svc := newTestService(repo, now)

	items := []SubscriptionWithDetails{
		*detailsFixture(1, date(2024, 1, 1), date(2024, 1, 20), true),
		*detailsFixture(2, date(2024, 1, 1), date(2024, 1, 27), true),
	}
	repo.On("ListExpiringWithin", mock.Anything, ExpiringSoonDays).Return(items, nil)

	got, err := svc.ListExpiringWithin(context.Background(), ExpiringSoonDays)

	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, StatusExpiringSoon, got[0].Status)
	assert.Equal(t, StatusExpiringSoon, got[1].Status)
	repo.AssertExpectations(t)
}
