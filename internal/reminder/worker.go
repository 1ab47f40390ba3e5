package reminder

import (
	"context"
	"time"

	"gymdesk/internal/logger"
	"gymdesk/internal/subscription"
)

// Mailer is the slice of the email service the worker needs.
type Mailer interface {
	SendRenewalReminder(ctx context.Context, to, name, membershipName string, endDate time.Time) error
}

// ExpiringLister is the slice of the subscription service the worker needs.
type ExpiringLister interface {
	ListExpiringWithin(ctx context.Context, days int) ([]subscription.SubscriptionWithDetails, error)
}

// Worker queues renewal reminders for subscriptions entering the
// expiring-soon window. It runs once at startup and then once per day.
type Worker struct {
	subscriptions ExpiringLister
	mailer        Mailer
	interval      time.Duration
}

func NewWorker(subscriptions ExpiringLister, mailer Mailer) *Worker {
	return &Worker{
		subscriptions: subscriptions,
		mailer:        mailer,
		interval:      24 * time.Hour,
	}
}

func (w *Worker) Start(ctx context.Context) {
	logger.Info("Reminder worker started")

	w.runOnce(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("Reminder worker stopped")
			return
		case <-ticker.C:
			w.runOnce(ctx)
		}
	}
}

func (w *Worker) runOnce(ctx context.Context) {
	expiring, err := w.subscriptions.ListExpiringWithin(ctx, subscription.ExpiringSoonDays)
	if err != nil {
		logger.Errorf("Reminder worker: failed to list expiring subscriptions: %v", err)
		return
	}

	for _, sub := range expiring {
		err := w.mailer.SendRenewalReminder(ctx, sub.User.Email, sub.User.Name, sub.Membership.Name, sub.EndDate)
		if err != nil {
			logger.Errorf("Reminder worker: failed to queue reminder for %s: %v", sub.User.Email, err)
			continue
		}
	}

	if len(expiring) > 0 {
		logger.Infof("Reminder worker: queued %d renewal reminders", len(expiring))
	}
}
