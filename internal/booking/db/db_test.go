package db_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"ms-bookings/internal/booking/db"
	"ms-bookings/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	_ "github.com/uptrace/bun/driver/sqliteshim"
)

func setupTestDB(t *testing.T) (*db.DB, *bun.DB) {
	// Connect to an in-memory SQLite DB for testing
	sqldb, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to connect to in-memory database: %v", err)
	}

	bunDB := bun.NewDB(sqldb, sqlitedialect.New())

	_, err = bunDB.NewCreateTable().Model((*models.Booking)(nil)).Exec(context.Background())
	if err != nil {
		t.Fatalf("Failed to create bookings table: %v", err)
	}

	return &db.DB{Bun: bunDB}, bunDB
}

func testBooking(createdAt time.Time) models.Booking {
	return models.Booking{
		ID:            uuid.New().String(),
		Name:          "Asha Rao",
		Email:         "asha@example.com",
		Phone:         "9876543210",
		Education:     "High School Student",
		PreferredDate: "2026-09-01",
		PreferredTime: "6:00 PM - 7:00 PM",
		Language:      "english",
		Status:        models.BookingPending,
		PaymentStatus: models.PaymentPending,
		CreatedAt:     createdAt,
		UpdatedAt:     createdAt,
	}
}

func TestCreateAndGetBooking(t *testing.T) {
	bookingDB, bunDB := setupTestDB(t)
	defer bunDB.Close()

	b := testBooking(time.Now().UTC())
	err := bookingDB.CreateBooking(b)
	assert.NoError(t, err)

	got, err := bookingDB.GetBookingByID(b.ID)
	assert.NoError(t, err)
	assert.NotNil(t, got)
	assert.Equal(t, b.ID, got.ID)
	assert.Equal(t, "Asha Rao", got.Name)
	assert.Equal(t, models.BookingPending, got.Status)
	assert.Equal(t, models.PaymentPending, got.PaymentStatus)
	assert.Nil(t, got.PaymentScreenshot)
	assert.Nil(t, got.PaymentVerifiedAt)

	// Test case: Get non-existent booking
	got, err = bookingDB.GetBookingByID("non-existent")
	assert.Error(t, err)
	assert.Nil(t, got)
}

func TestListBookingsNewestFirst(t *testing.T) {
	bookingDB, bunDB := setupTestDB(t)
	defer bunDB.Close()

	base := time.Now().UTC()
	oldest := testBooking(base.Add(-2 * time.Hour))
	middle := testBooking(base.Add(-1 * time.Hour))
	newest := testBooking(base)

	for _, b := range []models.Booking{oldest, middle, newest} {
		assert.NoError(t, bookingDB.CreateBooking(b))
	}

	bookings, err := bookingDB.ListBookings()
	assert.NoError(t, err)
	assert.Equal(t, 3, len(bookings))
	assert.Equal(t, newest.ID, bookings[0].ID)
	assert.Equal(t, middle.ID, bookings[1].ID)
	assert.Equal(t, oldest.ID, bookings[2].ID)
}

func TestUpdateBookingMergesPatch(t *testing.T) {
	bookingDB, bunDB := setupTestDB(t)
	defer bunDB.Close()

	b := testBooking(time.Now().UTC().Add(-time.Hour))
	assert.NoError(t, bookingDB.CreateBooking(b))

	newPhone := "9999999999"
	newGoals := "Crack the board exams"
	updated, err := bookingDB.UpdateBooking(b.ID, models.BookingUpdate{
		Phone: &newPhone,
		Goals: &newGoals,
	})
	assert.NoError(t, err)
	assert.Equal(t, newPhone, updated.Phone)
	assert.NotNil(t, updated.Goals)
	assert.Equal(t, newGoals, *updated.Goals)

	// Untouched fields survive the merge
	assert.Equal(t, b.Name, updated.Name)
	assert.Equal(t, b.Email, updated.Email)
	assert.True(t, updated.UpdatedAt.After(b.UpdatedAt))

	// Patching a missing booking surfaces the store's not-found
	_, err = bookingDB.UpdateBooking("non-existent", models.BookingUpdate{Phone: &newPhone})
	assert.Error(t, err)
}

func TestDeleteBooking(t *testing.T) {
	bookingDB, bunDB := setupTestDB(t)
	defer bunDB.Close()

	b := testBooking(time.Now().UTC())
	assert.NoError(t, bookingDB.CreateBooking(b))

	err := bookingDB.DeleteBooking(b.ID)
	assert.NoError(t, err)

	count, err := bunDB.NewSelect().
		Model((*models.Booking)(nil)).
		Where("id = ?", b.ID).
		Count(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, 0, count)

	// Deleting again reports not-found
	err = bookingDB.DeleteBooking(b.ID)
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestUpdateStatus(t *testing.T) {
	bookingDB, bunDB := setupTestDB(t)
	defer bunDB.Close()

	b := testBooking(time.Now().UTC())
	assert.NoError(t, bookingDB.CreateBooking(b))

	updated, err := bookingDB.UpdateStatus(b.ID, models.BookingConfirmed)
	assert.NoError(t, err)
	assert.Equal(t, models.BookingConfirmed, updated.Status)

	_, err = bookingDB.UpdateStatus("non-existent", models.BookingConfirmed)
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestAttachPaymentScreenshotKeepsPaymentPending(t *testing.T) {
	bookingDB, bunDB := setupTestDB(t)
	defer bunDB.Close()

	b := testBooking(time.Now().UTC())
	assert.NoError(t, bookingDB.CreateBooking(b))

	url := "https://storage.example.com/storage/v1/object/public/payment-screenshots/payment-screenshots/" + b.ID + "_1700000000000.png"
	updated, err := bookingDB.AttachPaymentScreenshot(b.ID, url)
	assert.NoError(t, err)
	assert.NotNil(t, updated.PaymentScreenshot)
	assert.Equal(t, url, *updated.PaymentScreenshot)

	// Attaching proof never moves the payment out of pending
	assert.Equal(t, models.PaymentPending, updated.PaymentStatus)
	assert.Nil(t, updated.PaymentVerifiedAt)
}

func TestVerifyPayment(t *testing.T) {
	bookingDB, bunDB := setupTestDB(t)
	defer bunDB.Close()

	b := testBooking(time.Now().UTC())
	assert.NoError(t, bookingDB.CreateBooking(b))

	// No screenshot yet: the store-level guard refuses the transition
	_, err := bookingDB.VerifyPayment(b.ID, time.Now().UTC())
	assert.ErrorIs(t, err, db.ErrNoPendingPayment)

	_, err = bookingDB.AttachPaymentScreenshot(b.ID, "https://storage.example.com/payment-screenshots/"+b.ID+"_1.png")
	assert.NoError(t, err)

	at := time.Now().UTC().Truncate(time.Millisecond)
	verified, err := bookingDB.VerifyPayment(b.ID, at)
	assert.NoError(t, err)
	assert.Equal(t, models.PaymentVerified, verified.PaymentStatus)
	assert.NotNil(t, verified.PaymentVerifiedAt)
	assert.WithinDuration(t, at, *verified.PaymentVerifiedAt, time.Second)

	// Already verified: the guard refuses a second transition
	_, err = bookingDB.VerifyPayment(b.ID, time.Now().UTC())
	assert.ErrorIs(t, err, db.ErrNoPendingPayment)

	// Missing booking hits the same guard
	_, err = bookingDB.VerifyPayment("non-existent", time.Now().UTC())
	assert.ErrorIs(t, err, db.ErrNoPendingPayment)
}

func TestRejectPaymentLeavesVerifiedAtEmpty(t *testing.T) {
	bookingDB, bunDB := setupTestDB(t)
	defer bunDB.Close()

	b := testBooking(time.Now().UTC())
	assert.NoError(t, bookingDB.CreateBooking(b))

	_, err := bookingDB.AttachPaymentScreenshot(b.ID, "https://storage.example.com/payment-screenshots/"+b.ID+"_1.png")
	assert.NoError(t, err)

	rejected, err := bookingDB.RejectPayment(b.ID)
	assert.NoError(t, err)
	assert.Equal(t, models.PaymentRejected, rejected.PaymentStatus)
	assert.Nil(t, rejected.PaymentVerifiedAt)

	// A rejected payment cannot be verified afterwards
	_, err = bookingDB.VerifyPayment(b.ID, time.Now().UTC())
	assert.ErrorIs(t, err, db.ErrNoPendingPayment)
}
