package db

import (
	"time"

	"github.com/google/uuid"
)

// User is a rider account. Created by the booking app; this service only
// ever mutates the push token field, and only to clear it.
type User struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	FirstName *string   `json:"first_name,omitempty"`
	PushToken *string   `json:"push_token,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// HasPushToken reports whether the user has a non-empty push token.
func (u *User) HasPushToken() bool {
	return u.PushToken != nil && *u.PushToken != ""
}

// Booking is a confirmed transit booking. Read-only here except for the
// notified_at claim marker set once confirmation messages go out.
type Booking struct {
	ID          uuid.UUID  `json:"id"`
	UserID      uuid.UUID  `json:"user_id"`
	TransitType string     `json:"transit_type"`
	Source      string     `json:"source"`
	Destination string     `json:"destination"`
	TravelDate  time.Time  `json:"travel_date"`
	Fare        float64    `json:"fare"`
	QRCode      *string    `json:"qr_code,omitempty"`
	NotifiedAt  *time.Time `json:"notified_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// AnalyticsEvent is one append-only delivery or open record. Exactly one
// of Delivered/Opened is set; the table enforces this with a CHECK.
type AnalyticsEvent struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Category  string    `json:"category"`
	Timestamp time.Time `json:"timestamp"`
	Delivered bool      `json:"delivered"`
	Opened    bool      `json:"opened"`
}

// CategorySummary aggregates analytics events for one category.
type CategorySummary struct {
	Delivered int `json:"delivered"`
	Opened    int `json:"opened"`
}
