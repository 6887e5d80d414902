package payment

import (
	"database/sql"
	"errors"
	"fmt"

	"ms-bookings/internal/booking"
	"ms-bookings/internal/models"
	"ms-bookings/internal/notifier"
	"ms-bookings/internal/payment/upi"
)

type BookingStore interface {
	GetBookingByID(id string) (*models.Booking, error)
	AttachPaymentScreenshot(id string, url string) (*models.Booking, error)
}

type Uploader interface {
	Upload(data []byte, contentType, bookingID, filename string) (string, error)
}

type EventPublisher interface {
	PublishScreenshotAttached(booking models.Booking) error
}

// PaymentService handles the proof-of-payment step: a screenshot of a
// manual UPI transfer is uploaded and attached to an existing booking.
// Verification stays a separate admin action; confirming a payment never
// moves payment_status away from pending.
type PaymentService struct {
	DB       BookingStore
	Uploader Uploader
	Kafka    EventPublisher
	Notifier notifier.Notifier

	UPIID     string
	PayeeName string
}

func NewPaymentService(db BookingStore, uploader Uploader, kafka EventPublisher, n notifier.Notifier, upiID, payeeName string) *PaymentService {
	return &PaymentService{
		DB:        db,
		Uploader:  uploader,
		Kafka:     kafka,
		Notifier:  n,
		UPIID:     upiID,
		PayeeName: payeeName,
	}
}

// ConfirmPayment uploads the screenshot and attaches its URL to the booking.
// The booking must already exist. On any failure the booking row is left
// untouched so the caller can retry with the same file.
func (s *PaymentService) ConfirmPayment(bookingID string, data []byte, contentType, filename string) (*models.Booking, error) {
	if _, err := s.DB.GetBookingByID(bookingID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, booking.ErrNotFound
		}
		return nil, &booking.StoreError{Op: "get", Err: err}
	}

	screenshotURL, err := s.Uploader.Upload(data, contentType, bookingID, filename)
	if err != nil {
		s.Notifier.Error(err.Error())
		return nil, err
	}

	updated, err := s.DB.AttachPaymentScreenshot(bookingID, screenshotURL)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, booking.ErrNotFound
		}
		s.Notifier.Error("Failed to upload screenshot. Please try again.")
		return nil, &booking.StoreError{Op: "attach screenshot", Err: err}
	}

	if err := s.Kafka.PublishScreenshotAttached(*updated); err != nil {
		fmt.Printf("Kafka publish error (screenshot attached): %v\n", err)
	}

	s.Notifier.Success("Payment screenshot uploaded! We'll verify and contact you soon.")
	return updated, nil
}

// Instructions returns the payment details for a plan: the static UPI id
// plus the QR route for the plan's amount.
func (s *PaymentService) Instructions(planName string) (*models.PaymentInstructions, error) {
	plan, ok := models.PlanByName(planName)
	if !ok {
		return nil, fmt.Errorf("unknown plan: %s", planName)
	}
	return &models.PaymentInstructions{
		Plan:   plan,
		UPIID:  s.UPIID,
		QRPath: fmt.Sprintf("/api/v1/plans/%s/qr", plan.Name),
	}, nil
}

// QRCode renders the UPI payment QR for a plan as a PNG.
func (s *PaymentService) QRCode(planName string, size int) ([]byte, error) {
	plan, ok := models.PlanByName(planName)
	if !ok {
		return nil, fmt.Errorf("unknown plan: %s", planName)
	}
	return upi.QRCode(s.UPIID, s.PayeeName, plan.Amount, size)
}
