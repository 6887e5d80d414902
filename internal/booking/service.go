package booking

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"ms-bookings/internal/models"
	"ms-bookings/internal/notifier"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

type DBLayer interface {
	ListBookings() ([]models.Booking, error)
	GetBookingByID(id string) (*models.Booking, error)
	CreateBooking(booking models.Booking) error
	UpdateBooking(id string, patch models.BookingUpdate) (*models.Booking, error)
	DeleteBooking(id string) error
}

type EventPublisher interface {
	PublishBookingCreated(booking models.Booking) error
	PublishBookingDeleted(id string) error
}

// ScreenshotRemover deletes an uploaded screenshot by its public URL.
// Removal is best-effort cleanup; failures never propagate to the caller.
type ScreenshotRemover interface {
	Delete(url string) error
}

type BookingService struct {
	DB       DBLayer
	Kafka    EventPublisher
	Remover  ScreenshotRemover
	Notifier notifier.Notifier

	validate *validator.Validate
}

func NewBookingService(db DBLayer, kafka EventPublisher, remover ScreenshotRemover, n notifier.Notifier) *BookingService {
	return &BookingService{
		DB:       db,
		Kafka:    kafka,
		Remover:  remover,
		Notifier: n,
		validate: validator.New(),
	}
}

// fieldMessages mirror the booking form's inline validation copy.
var fieldMessages = map[string]string{
	"Name":          "Name must be at least 2 characters",
	"Email":         "Please enter a valid email",
	"Phone":         "Please enter a valid phone number",
	"Education":     "Please select your education level",
	"PreferredDate": "Please select a preferred date",
	"PreferredTime": "Please select a preferred time",
	"Language":      "Please select a language",
}

func (s *BookingService) validationError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		field := verrs[0].Field()
		msg, ok := fieldMessages[field]
		if !ok {
			msg = fmt.Sprintf("Invalid value for %s", field)
		}
		return &ValidationError{Field: field, Message: msg}
	}
	return &ValidationError{Field: "", Message: "Invalid booking data"}
}

// CreateBooking validates the form fields and persists a new booking with
// pending defaults and no payment artifact. When a pricing plan was selected
// the response carries the payment instructions for the next step.
func (s *BookingService) CreateBooking(req models.BookingRequest) (*models.BookingResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, s.validationError(err)
	}

	var plan *models.Plan
	if req.Plan != "" {
		p, ok := models.PlanByName(req.Plan)
		if !ok {
			return nil, &ValidationError{Field: "Plan", Message: "Unknown pricing plan"}
		}
		plan = &p
	}

	now := time.Now().UTC()
	booking := models.Booking{
		ID:            uuid.New().String(),
		Name:          req.Name,
		Email:         req.Email,
		Phone:         req.Phone,
		Education:     req.Education,
		PreferredDate: req.PreferredDate,
		PreferredTime: req.PreferredTime,
		Language:      req.Language,
		Status:        models.BookingPending,
		PaymentStatus: models.PaymentPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if req.PrimarySchool != "" {
		booking.PrimarySchool = &req.PrimarySchool
	}
	if req.SecondarySchool != "" {
		booking.SecondarySchool = &req.SecondarySchool
	}
	if req.Goals != "" {
		booking.Goals = &req.Goals
	}

	if err := s.DB.CreateBooking(booking); err != nil {
		s.Notifier.Error("Failed to submit booking. Please try again.")
		return nil, &StoreError{Op: "create", Err: err}
	}

	if err := s.Kafka.PublishBookingCreated(booking); err != nil {
		fmt.Printf("Kafka publish error (booking created): %v\n", err)
	}

	s.Notifier.Success("Booking request submitted! We'll contact you soon.")

	resp := &models.BookingResponse{Booking: booking}
	if plan != nil {
		resp.Payment = &models.PaymentInstructions{
			Plan:   *plan,
			QRPath: fmt.Sprintf("/api/v1/plans/%s/qr", plan.Name),
		}
	}
	return resp, nil
}

func (s *BookingService) GetBooking(id string) (*models.Booking, error) {
	booking, err := s.DB.GetBookingByID(id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, &StoreError{Op: "get", Err: err}
	}
	return booking, nil
}

func (s *BookingService) ListBookings() ([]models.Booking, error) {
	bookings, err := s.DB.ListBookings()
	if err != nil {
		return nil, &StoreError{Op: "list", Err: err}
	}
	return bookings, nil
}

// UpdateBooking merges the patch into the stored record and returns the
// store's row, so any server-side normalization is reflected.
func (s *BookingService) UpdateBooking(id string, patch models.BookingUpdate) (*models.Booking, error) {
	if err := s.validate.Struct(patch); err != nil {
		return nil, s.validationError(err)
	}

	booking, err := s.DB.UpdateBooking(id, patch)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, &StoreError{Op: "update", Err: err}
	}
	return booking, nil
}

// DeleteBooking removes the record, then best-effort deletes the attached
// screenshot from object storage. Storage failures are logged inside the
// remover and never block the delete.
func (s *BookingService) DeleteBooking(id string) error {
	booking, err := s.DB.GetBookingByID(id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return &StoreError{Op: "get", Err: err}
	}

	if err := s.DB.DeleteBooking(id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return &StoreError{Op: "delete", Err: err}
	}

	if booking.PaymentScreenshot != nil {
		_ = s.Remover.Delete(*booking.PaymentScreenshot)
	}

	if err := s.Kafka.PublishBookingDeleted(id); err != nil {
		fmt.Printf("Kafka publish error (booking deleted): %v\n", err)
	}
	return nil
}
