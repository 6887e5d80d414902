package db

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"ms-bookings/internal/models"

	"github.com/uptrace/bun"
)

// ErrNoPendingPayment is returned when a verify/reject transition finds no
// matching row, either because the booking is gone or because its payment
// already left the pending state.
var ErrNoPendingPayment = errors.New("no pending payment for booking")

type DB struct {
	Bun *bun.DB
}

// ---------------- BOOKINGS ----------------

// ListBookings → all bookings, newest first
func (d *DB) ListBookings() ([]models.Booking, error) {
	var bookings []models.Booking
	err := d.Bun.NewSelect().
		Model(&bookings).
		Order("created_at DESC").
		Scan(context.Background())
	if err != nil {
		return nil, err
	}
	return bookings, nil
}

// GetBookingByID → fetch one booking by its ID
func (d *DB) GetBookingByID(id string) (*models.Booking, error) {
	var booking models.Booking
	err := d.Bun.NewSelect().
		Model(&booking).
		Where("id = ?", id).
		Limit(1).
		Scan(context.Background())
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

// CreateBooking → insert new booking
func (d *DB) CreateBooking(booking models.Booking) error {
	_, err := d.Bun.NewInsert().Model(&booking).Exec(context.Background())
	return err
}

// UpdateBooking → merge a partial patch into the existing record and stamp
// updated_at. Returns the stored row after the merge.
func (d *DB) UpdateBooking(id string, patch models.BookingUpdate) (*models.Booking, error) {
	booking, err := d.GetBookingByID(id)
	if err != nil {
		return nil, err
	}

	if patch.Name != nil {
		booking.Name = *patch.Name
	}
	if patch.Email != nil {
		booking.Email = *patch.Email
	}
	if patch.Phone != nil {
		booking.Phone = *patch.Phone
	}
	if patch.Education != nil {
		booking.Education = *patch.Education
	}
	if patch.PrimarySchool != nil {
		booking.PrimarySchool = patch.PrimarySchool
	}
	if patch.SecondarySchool != nil {
		booking.SecondarySchool = patch.SecondarySchool
	}
	if patch.PreferredDate != nil {
		booking.PreferredDate = *patch.PreferredDate
	}
	if patch.PreferredTime != nil {
		booking.PreferredTime = *patch.PreferredTime
	}
	if patch.Language != nil {
		booking.Language = *patch.Language
	}
	if patch.Goals != nil {
		booking.Goals = patch.Goals
	}
	booking.UpdatedAt = time.Now().UTC()

	_, err = d.Bun.NewUpdate().
		Model(booking).
		WherePK().
		Exec(context.Background())
	if err != nil {
		return nil, err
	}
	return booking, nil
}

// DeleteBooking → remove a booking by ID
func (d *DB) DeleteBooking(id string) error {
	res, err := d.Bun.NewDelete().
		Model((*models.Booking)(nil)).
		Where("id = ?", id).
		Exec(context.Background())
	if err != nil {
		return err
	}
	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ---------------- FIELD-LEVEL UPDATES ----------------

// UpdateStatus → convenience wrapper over the status column
func (d *DB) UpdateStatus(id string, status models.BookingStatus) (*models.Booking, error) {
	res, err := d.Bun.NewUpdate().
		Model((*models.Booking)(nil)).
		Set("status = ?", status).
		Set("updated_at = ?", time.Now().UTC()).
		Where("id = ?", id).
		Exec(context.Background())
	if err != nil {
		return nil, err
	}
	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		return nil, sql.ErrNoRows
	}
	return d.GetBookingByID(id)
}

// AttachPaymentScreenshot → set the screenshot URL. The payment status is
// deliberately left alone: verification is a separate admin action.
func (d *DB) AttachPaymentScreenshot(id string, url string) (*models.Booking, error) {
	res, err := d.Bun.NewUpdate().
		Model((*models.Booking)(nil)).
		Set("payment_screenshot = ?", url).
		Set("updated_at = ?", time.Now().UTC()).
		Where("id = ?", id).
		Exec(context.Background())
	if err != nil {
		return nil, err
	}
	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		return nil, sql.ErrNoRows
	}
	return d.GetBookingByID(id)
}

// VerifyPayment → mark the payment verified and stamp payment_verified_at in
// a single update. The WHERE clause re-checks the precondition at the store
// layer so the two fields can never disagree.
func (d *DB) VerifyPayment(id string, at time.Time) (*models.Booking, error) {
	res, err := d.Bun.NewUpdate().
		Model((*models.Booking)(nil)).
		Set("payment_status = ?", models.PaymentVerified).
		Set("payment_verified_at = ?", at).
		Set("updated_at = ?", at).
		Where("id = ?", id).
		Where("payment_status = ?", models.PaymentPending).
		Where("payment_screenshot IS NOT NULL").
		Exec(context.Background())
	if err != nil {
		return nil, err
	}
	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		return nil, ErrNoPendingPayment
	}
	return d.GetBookingByID(id)
}

// RejectPayment → mark the payment rejected. payment_verified_at is left
// untouched.
func (d *DB) RejectPayment(id string) (*models.Booking, error) {
	res, err := d.Bun.NewUpdate().
		Model((*models.Booking)(nil)).
		Set("payment_status = ?", models.PaymentRejected).
		Set("updated_at = ?", time.Now().UTC()).
		Where("id = ?", id).
		Where("payment_status = ?", models.PaymentPending).
		Where("payment_screenshot IS NOT NULL").
		Exec(context.Background())
	if err != nil {
		return nil, err
	}
	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		return nil, ErrNoPendingPayment
	}
	return d.GetBookingByID(id)
}
