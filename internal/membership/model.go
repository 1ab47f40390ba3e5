package membership

import "time"

type Membership struct {
	ID               int       `db:"id" json:"id"`
	Name             string    `db:"name" json:"name"`
	Description      *string   `db:"description" json:"description,omitempty"`
	PriceCents       int64     `db:"price_cents" json:"price_cents"`
	DurationDays     int       `db:"duration_days" json:"duration_days"`
	HasCoach         bool      `db:"has_coach" json:"has_coach"`
	HasWorkoutPlan   bool      `db:"has_workout_plan" json:"has_workout_plan"`
	HasNutritionPlan bool      `db:"has_nutrition_plan" json:"has_nutrition_plan"`
	IsActive         bool      `db:"is_active" json:"is_active"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time `db:"updated_at" json:"updated_at"`
}

type CreateMembershipRequest struct {
	Name             string  `json:"name" binding:"required,max=255"`
	Description      *string `json:"description,omitempty"`
	PriceCents       int64   `json:"price_cents" binding:"min=0"`
	DurationDays     int     `json:"duration_days" binding:"required,min=1"`
	HasCoach         bool    `json:"has_coach"`
	HasWorkoutPlan   bool    `json:"has_workout_plan"`
	HasNutritionPlan bool    `json:"has_nutrition_plan"`
	IsActive         *bool   `json:"is_active,omitempty"`
}

type UpdateMembershipRequest struct {
	Name             *string `json:"name,omitempty" binding:"omitempty,max=255"`
	Description      *string `json:"description,omitempty"`
	PriceCents       *int64  `json:"price_cents,omitempty" binding:"omitempty,min=0"`
	DurationDays     *int    `json:"duration_days,omitempty" binding:"omitempty,min=1"`
	HasCoach         *bool   `json:"has_coach,omitempty"`
	HasWorkoutPlan   *bool   `json:"has_workout_plan,omitempty"`
	HasNutritionPlan *bool   `json:"has_nutrition_plan,omitempty"`
	IsActive         *bool   `json:"is_active,omitempty"`
}

type ListFilter struct {
	ActiveOnly bool
	Search     string
}

type Stats struct {
	Total    int               `json:"total"`
	Active   int               `json:"active"`
	Inactive int               `json:"inactive"`
	Revenue  []RevenueByPlan   `json:"revenue_by_membership"`
}

type RevenueByPlan struct {
	Name                string `db:"name" json:"name"`
	ActiveSubscriptions int    `db:"active_subscriptions" json:"active_subscriptions"`
	RevenueCents        int64  `db:"revenue_cents" json:"revenue_cents"`
}
