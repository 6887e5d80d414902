package models

import "time"

// BookingEvent is the envelope streamed to the booking-events topic on
// every lifecycle transition.
type BookingEvent struct {
	Type      string    `json:"type"`
	BookingID string    `json:"booking_id"`
	Booking   *Booking  `json:"booking,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

const (
	EventBookingCreated       = "booking_created"
	EventScreenshotAttached   = "payment_screenshot_attached"
	EventPaymentVerified      = "payment_verified"
	EventPaymentRejected      = "payment_rejected"
	EventBookingStatusChanged = "booking_status_changed"
	EventBookingDeleted       = "booking_deleted"
)
