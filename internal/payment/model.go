package payment

import "time"

const DefaultPageSize = 15

type Payment struct {
	ID             int       `db:"id" json:"id"`
	UserID         int       `db:"user_id" json:"user_id"`
	SubscriptionID *int      `db:"subscription_id" json:"subscription_id,omitempty"`
	AmountCents    int64     `db:"amount_cents" json:"amount_cents"`
	Method         string    `db:"method" json:"method"`
	Reference      *string   `db:"reference" json:"reference,omitempty"`
	PaidAt         time.Time `db:"paid_at" json:"paid_at"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}

type RecordPaymentRequest struct {
	UserID         int     `json:"user_id" binding:"required"`
	SubscriptionID *int    `json:"subscription_id,omitempty"`
	AmountCents    int64   `json:"amount_cents" binding:"required,min=1"`
	Method         string  `json:"method" binding:"required,oneof=cash card transfer"`
	Reference      *string `json:"reference,omitempty"`
}

type ListFilter struct {
	UserID  int
	Page    int
	PerPage int
}

type MonthlyRevenue struct {
	Month      string `db:"month" json:"month"`
	TotalCents int64  `db:"total_cents" json:"total_cents"`
	Count      int    `db:"count" json:"count"`
}
