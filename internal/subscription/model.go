package subscription

import "time"

type Status string

const (
	StatusActive       Status = "active"
	StatusExpiringSoon Status = "expiring_soon"
	StatusExpired      Status = "expired"
	StatusCancelled    Status = "cancelled"
)

const (
	// ExpiringSoonDays is the window for the user-facing expiring_soon
	// status and the renewal-reminder worker.
	ExpiringSoonDays = 7

	// StatsExpiringWindowDays is the wider window the admin stats report
	// uses for upcoming renewals.
	StatsExpiringWindowDays = 30

	// DateLayout is the wire format for start_date / end_date.
	DateLayout = "2006-01-02"

	DefaultPageSize = 15
)

type Subscription struct {
	ID           int       `db:"id" json:"id"`
	UserID       int       `db:"user_id" json:"user_id"`
	MembershipID int       `db:"membership_id" json:"membership_id"`
	StartDate    time.Time `db:"start_date" json:"start_date"`
	EndDate      time.Time `db:"end_date" json:"end_date"`
	IsActive     bool      `db:"is_active" json:"is_active"`
	Notes        *string   `db:"notes" json:"notes,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`

	// Status is derived, never stored; services fill it before returning
	// rows to handlers.
	Status Status `db:"-" json:"status,omitempty"`
}

// StatusAt derives the lifecycle status from the stored row at the given
// instant. Inactive rows are cancelled regardless of dates: the only paths
// that clear is_active are an explicit cancel or an admin edit, while
// natural expiry leaves the flag set. end_date == today counts as
// expiring_soon (inclusive boundary).
func (s *Subscription) StatusAt(now time.Time) Status {
	if !s.IsActive {
		return StatusCancelled
	}

	today := dateOf(now)
	end := dateOf(s.EndDate)

	if end.Before(today) {
		return StatusExpired
	}
	if !end.After(today.AddDate(0, 0, ExpiringSoonDays)) {
		return StatusExpiringSoon
	}
	return StatusActive
}

// IsCurrent reports whether the subscription counts against the
// one-current-per-member invariant: active flag set and not yet ended.
func (s *Subscription) IsCurrent(now time.Time) bool {
	return s.IsActive && !dateOf(s.EndDate).Before(dateOf(now))
}

func dateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// UserSummary and MembershipSummary are embedded in responses so the
// dashboard does not need follow-up lookups.
type UserSummary struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type MembershipSummary struct {
	ID           int    `json:"id"`
	Name         string `json:"name"`
	PriceCents   int64  `json:"price_cents"`
	DurationDays int    `json:"duration_days"`
}

type SubscriptionWithDetails struct {
	Subscription
	User       UserSummary       `json:"user"`
	Membership MembershipSummary `json:"membership"`
}

type CreateSubscriptionRequest struct {
	UserID       int     `json:"user_id" binding:"required"`
	MembershipID int     `json:"membership_id" binding:"required"`
	StartDate    string  `json:"start_date" binding:"required"`
	EndDate      string  `json:"end_date" binding:"required"`
	Notes        *string `json:"notes,omitempty"`
}

// RenewSubscriptionRequest accepts either an extension from the current end
// date or an absolute new end date; extension_days wins when both are set.
type RenewSubscriptionRequest struct {
	ExtensionDays int    `json:"extension_days,omitempty" binding:"omitempty,min=1"`
	NewEndDate    string `json:"new_end_date,omitempty"`
}

type UpdateSubscriptionRequest struct {
	StartDate *string `json:"start_date,omitempty"`
	EndDate   *string `json:"end_date,omitempty"`
	IsActive  *bool   `json:"is_active,omitempty"`
	Notes     *string `json:"notes,omitempty"`
}

type ListFilter struct {
	UserID       int
	MembershipID int
	Status       string // "active" or "expired" coarse date filter
	Page         int
	PerPage      int
}

type Stats struct {
	Total              int            `json:"total"`
	Active             int            `json:"active"`
	Expired            int            `json:"expired"`
	ExpiringSoon       int            `json:"expiring_soon"`
	ActiveRevenueCents int64          `json:"active_revenue_cents"`
	ByMonth            []MonthlyCount `json:"by_month"`
}

type MonthlyCount struct {
	Month string `json:"month"`
	Count int    `json:"count"`
}
