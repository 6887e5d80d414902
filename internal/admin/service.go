package admin

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"ms-bookings/internal/booking"
	bookingdb "ms-bookings/internal/booking/db"
	"ms-bookings/internal/models"
)

// ErrVerifyNotAllowed is returned when a verify/reject is attempted on a
// booking without a screenshot or whose payment already left pending. The
// store is never contacted in that case.
var ErrVerifyNotAllowed = errors.New("payment verification requires an uploaded screenshot and a pending payment")

type DBLayer interface {
	ListBookings() ([]models.Booking, error)
	GetBookingByID(id string) (*models.Booking, error)
	UpdateBooking(id string, patch models.BookingUpdate) (*models.Booking, error)
	DeleteBooking(id string) error
	UpdateStatus(id string, status models.BookingStatus) (*models.Booking, error)
	VerifyPayment(id string, at time.Time) (*models.Booking, error)
	RejectPayment(id string) (*models.Booking, error)
}

type EventPublisher interface {
	PublishBookingStatusChanged(booking models.Booking) error
	PublishPaymentVerified(booking models.Booking) error
	PublishPaymentRejected(booking models.Booking) error
	PublishBookingDeleted(id string) error
}

// ScreenshotRemover best-effort deletes an uploaded screenshot by URL.
type ScreenshotRemover interface {
	Delete(url string) error
}

// AdminService is the review surface over the bookings table. It works on
// an explicitly refreshed in-memory snapshot: filters and stats never
// re-query the store, and the snapshot is only patched after a mutation is
// confirmed by the store.
type AdminService struct {
	DB      DBLayer
	Kafka   EventPublisher
	Remover ScreenshotRemover

	mu       sync.RWMutex
	bookings []models.Booking
	loaded   bool
}

func NewAdminService(db DBLayer, kafka EventPublisher, remover ScreenshotRemover) *AdminService {
	return &AdminService{DB: db, Kafka: kafka, Remover: remover}
}

// Refresh reloads the snapshot from the store.
func (s *AdminService) Refresh() error {
	bookings, err := s.DB.ListBookings()
	if err != nil {
		return &booking.StoreError{Op: "list", Err: err}
	}
	s.mu.Lock()
	s.bookings = bookings
	s.loaded = true
	s.mu.Unlock()
	return nil
}

// Loaded reports whether the snapshot has ever been fetched.
func (s *AdminService) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

// Bookings returns a copy of the current snapshot.
func (s *AdminService) Bookings() []models.Booking {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Booking, len(s.bookings))
	copy(out, s.bookings)
	return out
}

// Filter applies, in order: a case-insensitive substring match over
// name/email/phone, then an exact payment_status match, then an exact
// status match. "all" (or empty) skips a stage. Purely a view transform
// over the loaded snapshot.
func (s *AdminService) Filter(search, paymentStatus, status string) []models.Booking {
	filtered := s.Bookings()

	if search != "" {
		needle := strings.ToLower(search)
		var matched []models.Booking
		for _, b := range filtered {
			if strings.Contains(strings.ToLower(b.Name), needle) ||
				strings.Contains(strings.ToLower(b.Email), needle) ||
				strings.Contains(b.Phone, search) {
				matched = append(matched, b)
			}
		}
		filtered = matched
	}

	if paymentStatus != "" && paymentStatus != "all" {
		var matched []models.Booking
		for _, b := range filtered {
			if string(b.PaymentStatus) == paymentStatus {
				matched = append(matched, b)
			}
		}
		filtered = matched
	}

	if status != "" && status != "all" {
		var matched []models.Booking
		for _, b := range filtered {
			if string(b.Status) == status {
				matched = append(matched, b)
			}
		}
		filtered = matched
	}

	return filtered
}

// Stats scans the loaded snapshot for aggregate counts.
func (s *AdminService) Stats() models.BookingStats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := models.BookingStats{Total: len(s.bookings)}
	for _, b := range s.bookings {
		switch b.Status {
		case models.BookingPending:
			stats.Pending++
		case models.BookingConfirmed:
			stats.Confirmed++
		case models.BookingCompleted:
			stats.Completed++
		case models.BookingCancelled:
			stats.Cancelled++
		}
		switch b.PaymentStatus {
		case models.PaymentPending:
			stats.PaymentPending++
		case models.PaymentVerified:
			stats.PaymentVerified++
		case models.PaymentRejected:
			stats.PaymentRejected++
		}
	}
	return stats
}

// GetBooking fetches the full booking context for the detail view.
func (s *AdminService) GetBooking(id string) (*models.Booking, error) {
	b, err := s.DB.GetBookingByID(id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, booking.ErrNotFound
		}
		return nil, &booking.StoreError{Op: "get", Err: err}
	}
	return b, nil
}

// ChangeStatus applies a booking status transition and patches the snapshot
// after the store confirms.
func (s *AdminService) ChangeStatus(id string, status models.BookingStatus) (*models.Booking, error) {
	if !status.Valid() {
		return nil, &booking.ValidationError{Field: "Status", Message: fmt.Sprintf("Invalid booking status %q", status)}
	}

	updated, err := s.DB.UpdateStatus(id, status)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, booking.ErrNotFound
		}
		return nil, &booking.StoreError{Op: "update status", Err: err}
	}

	s.patch(*updated)

	if err := s.Kafka.PublishBookingStatusChanged(*updated); err != nil {
		fmt.Printf("Kafka publish error (status changed): %v\n", err)
	}
	return updated, nil
}

// VerifyPayment marks an attached payment proof as accepted. The
// precondition (screenshot present, payment pending) is checked against the
// snapshot before any store call; the store re-checks it inside the same
// update that stamps payment_verified_at.
func (s *AdminService) VerifyPayment(id string) (*models.Booking, error) {
	if err := s.checkVerifyPrecondition(id); err != nil {
		return nil, err
	}

	updated, err := s.DB.VerifyPayment(id, time.Now().UTC())
	if err != nil {
		return nil, s.mapTransitionErr(err)
	}

	s.patch(*updated)

	if err := s.Kafka.PublishPaymentVerified(*updated); err != nil {
		fmt.Printf("Kafka publish error (payment verified): %v\n", err)
	}
	return updated, nil
}

// RejectPayment marks an attached payment proof as rejected.
// payment_verified_at is left untouched.
func (s *AdminService) RejectPayment(id string) (*models.Booking, error) {
	if err := s.checkVerifyPrecondition(id); err != nil {
		return nil, err
	}

	updated, err := s.DB.RejectPayment(id)
	if err != nil {
		return nil, s.mapTransitionErr(err)
	}

	s.patch(*updated)

	if err := s.Kafka.PublishPaymentRejected(*updated); err != nil {
		fmt.Printf("Kafka publish error (payment rejected): %v\n", err)
	}
	return updated, nil
}

// EditBooking merges the patch and stores the row the store returned, so
// server-side normalization is reflected in the snapshot.
func (s *AdminService) EditBooking(id string, patch models.BookingUpdate) (*models.Booking, error) {
	updated, err := s.DB.UpdateBooking(id, patch)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, booking.ErrNotFound
		}
		return nil, &booking.StoreError{Op: "update", Err: err}
	}
	s.patch(*updated)
	return updated, nil
}

// DeleteBooking removes the record and drops it from the snapshot. The
// screenshot object is cleaned up best-effort afterwards.
func (s *AdminService) DeleteBooking(id string) error {
	existing, err := s.DB.GetBookingByID(id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return booking.ErrNotFound
		}
		return &booking.StoreError{Op: "get", Err: err}
	}

	if err := s.DB.DeleteBooking(id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return booking.ErrNotFound
		}
		return &booking.StoreError{Op: "delete", Err: err}
	}

	s.mu.Lock()
	for i, b := range s.bookings {
		if b.ID == id {
			s.bookings = append(s.bookings[:i], s.bookings[i+1:]...)
			break
		}
	}
	s.mu.Unlock()

	if existing.PaymentScreenshot != nil {
		_ = s.Remover.Delete(*existing.PaymentScreenshot)
	}

	if err := s.Kafka.PublishBookingDeleted(id); err != nil {
		fmt.Printf("Kafka publish error (booking deleted): %v\n", err)
	}
	return nil
}

// checkVerifyPrecondition rejects a transition locally when the snapshot
// shows it cannot succeed. A booking missing from the snapshot falls
// through to the store, whose own guard has the final word.
func (s *AdminService) checkVerifyPrecondition(id string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, b := range s.bookings {
		if b.ID != id {
			continue
		}
		if b.PaymentScreenshot == nil || b.PaymentStatus != models.PaymentPending {
			return ErrVerifyNotAllowed
		}
		return nil
	}
	return nil
}

func (s *AdminService) mapTransitionErr(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return booking.ErrNotFound
	}
	if errors.Is(err, bookingdb.ErrNoPendingPayment) {
		return ErrVerifyNotAllowed
	}
	return &booking.StoreError{Op: "payment transition", Err: err}
}

func (s *AdminService) patch(updated models.Booking) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, b := range s.bookings {
		if b.ID == updated.ID {
			s.bookings[i] = updated
			return
		}
	}
}
