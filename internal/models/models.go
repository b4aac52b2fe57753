package models

import (
	"encoding/json"
	"time"
)

// MaxIntakeAmount is the largest single intake in ml. The binding tag on
// CreateIntakeRequest.Amount repeats it.
const MaxIntakeAmount = 10000

// CreateIntakeRequest is the body of POST /api/v1/intake.
// ID is optional; clients that work offline send a UUIDv7 so retries are idempotent.
type CreateIntakeRequest struct {
	ID        *string   `json:"id,omitempty"`
	Timestamp time.Time `json:"timestamp" binding:"required"`
	Amount    float64   `json:"amount" binding:"required,gt=0,lte=10000"`
	Source    string    `json:"source,omitempty" binding:"omitempty,oneof=manual reminder import"`
}

// UpdateProfileRequest is the body of PATCH /api/v1/profile.
// Nullable fields distinguish "leave unchanged" from "clear".
type UpdateProfileRequest struct {
	Name                 NullableString  `json:"name"`
	Phone                NullableString  `json:"phone"`
	Gender               NullableString  `json:"gender"`
	WeightKg             NullableFloat64 `json:"weight_kg"`
	HeightCm             NullableFloat64 `json:"height_cm"`
	ActivityLevel        NullableString  `json:"activity_level"`
	DailyGoal            *int            `json:"daily_goal,omitempty" binding:"omitempty,gte=0"`
	Timezone             NullableString  `json:"timezone"`
	City                 NullableString  `json:"city"`
	NotificationsEnabled *bool           `json:"notifications_enabled,omitempty"`
}

// IntakeListResponse is a page of intake events
type IntakeListResponse struct {
	Events []IntakeEvent `json:"events"`
	Limit  int           `json:"limit"`
	Offset int           `json:"offset"`
}

// IdempotencyKey is a stored response for a replayed mutating request
type IdempotencyKey struct {
	Key          string          `json:"key"`
	Route        string          `json:"route"`
	UserID       string          `json:"user_id"`
	ResponseBody json.RawMessage `json:"response_body"`
	StatusCode   int             `json:"status_code"`
	CreatedAt    time.Time       `json:"created_at"`
}
