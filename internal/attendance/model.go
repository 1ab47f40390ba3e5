package attendance

import "time"

type Attendance struct {
	ID           int        `db:"id" json:"id"`
	UserID       int        `db:"user_id" json:"user_id"`
	CheckedInAt  time.Time  `db:"checked_in_at" json:"checked_in_at"`
	CheckedOutAt *time.Time `db:"checked_out_at" json:"checked_out_at,omitempty"`
}

type DailyCount struct {
	Day   string `db:"day" json:"day"`
	Count int    `db:"count" json:"count"`
}
