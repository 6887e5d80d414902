package models

import (
	"time"

	"github.com/uptrace/bun"
)

type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingCompleted BookingStatus = "completed"
	BookingCancelled BookingStatus = "cancelled"
)

func (s BookingStatus) Valid() bool {
	switch s {
	case BookingPending, BookingConfirmed, BookingCompleted, BookingCancelled:
		return true
	}
	return false
}

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentVerified PaymentStatus = "verified"
	PaymentRejected PaymentStatus = "rejected"
)

func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentPending, PaymentVerified, PaymentRejected:
		return true
	}
	return false
}

// Booking is a persisted request for a tutoring session. Status and
// payment status are independent axes: a booking can be confirmed while
// its payment is still pending.
type Booking struct {
	bun.BaseModel `bun:"table:bookings"`

	ID                string        `bun:"id,pk" json:"id"`
	Name              string        `bun:"name,notnull" json:"name"`
	Email             string        `bun:"email,notnull" json:"email"`
	Phone             string        `bun:"phone,notnull" json:"phone"`
	Education         string        `bun:"education,notnull" json:"education"`
	PrimarySchool     *string       `bun:"primary_school,nullzero" json:"primary_school"`
	SecondarySchool   *string       `bun:"secondary_school,nullzero" json:"secondary_school"`
	PreferredDate     string        `bun:"preferred_date,notnull" json:"preferred_date"`
	PreferredTime     string        `bun:"preferred_time,notnull" json:"preferred_time"`
	Language          string        `bun:"language,notnull" json:"language"`
	Goals             *string       `bun:"goals,nullzero" json:"goals"`
	Status            BookingStatus `bun:"status,notnull" json:"status"`
	PaymentScreenshot *string       `bun:"payment_screenshot,nullzero" json:"payment_screenshot"`
	PaymentStatus     PaymentStatus `bun:"payment_status,notnull" json:"payment_status"`
	PaymentVerifiedAt *time.Time    `bun:"payment_verified_at,nullzero" json:"payment_verified_at"`
	CreatedAt         time.Time     `bun:"created_at,notnull" json:"created_at"`
	UpdatedAt         time.Time     `bun:"updated_at,notnull" json:"updated_at"`
}

// BookingRequest carries the booking form fields. Plan is optional: when a
// pricing plan was selected the response includes payment instructions.
type BookingRequest struct {
	Name            string `json:"name" validate:"required,min=2"`
	Email           string `json:"email" validate:"required,email"`
	Phone           string `json:"phone" validate:"required,min=10"`
	Education       string `json:"education" validate:"required"`
	PrimarySchool   string `json:"primary_school,omitempty"`
	SecondarySchool string `json:"secondary_school,omitempty"`
	PreferredDate   string `json:"preferred_date" validate:"required"`
	PreferredTime   string `json:"preferred_time" validate:"required"`
	Language        string `json:"language" validate:"required,oneof=english hindi"`
	Goals           string `json:"goals,omitempty"`
	Plan            string `json:"plan,omitempty"`
}

// BookingUpdate is a partial patch over the mutable contact/session fields.
// Nil pointers are left untouched by the store.
type BookingUpdate struct {
	Name            *string `json:"name,omitempty" validate:"omitempty,min=2"`
	Email           *string `json:"email,omitempty" validate:"omitempty,email"`
	Phone           *string `json:"phone,omitempty" validate:"omitempty,min=10"`
	Education       *string `json:"education,omitempty"`
	PrimarySchool   *string `json:"primary_school,omitempty"`
	SecondarySchool *string `json:"secondary_school,omitempty"`
	PreferredDate   *string `json:"preferred_date,omitempty"`
	PreferredTime   *string `json:"preferred_time,omitempty"`
	Language        *string `json:"language,omitempty" validate:"omitempty,oneof=english hindi"`
	Goals           *string `json:"goals,omitempty"`
}

// BookingResponse echoes the created booking back to the caller. Payment is
// non-nil only when the request selected a pricing plan.
type BookingResponse struct {
	Booking Booking              `json:"booking"`
	Payment *PaymentInstructions `json:"payment,omitempty"`
}

type PaymentInstructions struct {
	Plan   Plan   `json:"plan"`
	UPIID  string `json:"upi_id"`
	QRPath string `json:"qr_path"`
}

// Confirmation mirrors the post-booking thank-you view: the contact and
// session fields echoed back to the user.
type Confirmation struct {
	Name          string `json:"name"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	PreferredDate string `json:"date"`
	PreferredTime string `json:"time"`
	Language      string `json:"language"`
}

func (b *Booking) Confirmation() Confirmation {
	return Confirmation{
		Name:          b.Name,
		Email:         b.Email,
		Phone:         b.Phone,
		PreferredDate: b.PreferredDate,
		PreferredTime: b.PreferredTime,
		Language:      b.Language,
	}
}

// BookingStats are aggregate counts over a loaded set of bookings.
type BookingStats struct {
	Total           int `json:"total"`
	Pending         int `json:"pending"`
	Confirmed       int `json:"confirmed"`
	Completed       int `json:"completed"`
	Cancelled       int `json:"cancelled"`
	PaymentPending  int `json:"payment_pending"`
	PaymentVerified int `json:"payment_verified"`
	PaymentRejected int `json:"payment_rejected"`
}

// TimeSlots are the fixed one-hour session slots offered on the booking form.
var TimeSlots = []string{
	"9:00 AM - 10:00 AM",
	"10:00 AM - 11:00 AM",
	"11:00 AM - 12:00 PM",
	"2:00 PM - 3:00 PM",
	"3:00 PM - 4:00 PM",
	"4:00 PM - 5:00 PM",
	"5:00 PM - 6:00 PM",
	"6:00 PM - 7:00 PM",
	"7:00 PM - 8:00 PM",
	"8:00 PM - 9:00 PM",
}

// EducationLevels back the education dropdown. Free text is still accepted
// by the store; the list is a UI aid, not a constraint.
var EducationLevels = []string{
	"Primary School Student",
	"Secondary School Student",
	"High School Student",
	"Undergraduate Student",
	"Graduate Student",
	"Working Professional",
	"Other",
}
