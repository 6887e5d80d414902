package booking_test

import (
	"database/sql"
	"errors"
	"testing"

	"ms-bookings/internal/booking"
	"ms-bookings/internal/models"
	"ms-bookings/internal/notifier"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// Mock implementations
type MockDBLayer struct {
	mock.Mock
}

func (m *MockDBLayer) ListBookings() ([]models.Booking, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Booking), args.Error(1)
}

func (m *MockDBLayer) GetBookingByID(id string) (*models.Booking, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Booking), args.Error(1)
}

func (m *MockDBLayer) CreateBooking(b models.Booking) error {
	args := m.Called(b)
	return args.Error(0)
}

func (m *MockDBLayer) UpdateBooking(id string, patch models.BookingUpdate) (*models.Booking, error) {
	args := m.Called(id, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Booking), args.Error(1)
}

func (m *MockDBLayer) DeleteBooking(id string) error {
	args := m.Called(id)
	return args.Error(0)
}

type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) PublishBookingCreated(b models.Booking) error {
	args := m.Called(b)
	return args.Error(0)
}

func (m *MockEventPublisher) PublishBookingDeleted(id string) error {
	args := m.Called(id)
	return args.Error(0)
}

type MockRemover struct {
	mock.Mock
}

func (m *MockRemover) Delete(url string) error {
	args := m.Called(url)
	return args.Error(0)
}

func validRequest() models.BookingRequest {
	return models.BookingRequest{
		Name:          "Asha Rao",
		Email:         "asha@example.com",
		Phone:         "9876543210",
		Education:     "High School Student",
		PreferredDate: "2026-09-01",
		PreferredTime: "6:00 PM - 7:00 PM",
		Language:      "english",
	}
}

func newService(db *MockDBLayer, kafka *MockEventPublisher, remover *MockRemover) *booking.BookingService {
	return booking.NewBookingService(db, kafka, remover, notifier.Noop{})
}

func TestCreateBookingDefaults(t *testing.T) {
	mockDB := new(MockDBLayer)
	mockKafka := new(MockEventPublisher)
	svc := newService(mockDB, mockKafka, new(MockRemover))

	mockDB.On("CreateBooking", mock.AnythingOfType("models.Booking")).Return(nil)
	mockKafka.On("PublishBookingCreated", mock.AnythingOfType("models.Booking")).Return(nil)

	resp, err := svc.CreateBooking(validRequest())
	assert.NoError(t, err)
	assert.NotNil(t, resp)

	created := resp.Booking
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, models.BookingPending, created.Status)
	assert.Equal(t, models.PaymentPending, created.PaymentStatus)
	assert.Nil(t, created.PaymentScreenshot)
	assert.Nil(t, created.PaymentVerifiedAt)
	assert.False(t, created.CreatedAt.IsZero())
	assert.Equal(t, created.CreatedAt, created.UpdatedAt)

	// No plan selected, so no payment instructions
	assert.Nil(t, resp.Payment)

	mockDB.AssertExpectations(t)
	mockKafka.AssertExpectations(t)
}

func TestCreateBookingValidation(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*models.BookingRequest)
		field   string
		message string
	}{
		{
			name:    "short name",
			mutate:  func(r *models.BookingRequest) { r.Name = "A" },
			field:   "Name",
			message: "Name must be at least 2 characters",
		},
		{
			name:    "invalid email",
			mutate:  func(r *models.BookingRequest) { r.Email = "not-an-email" },
			field:   "Email",
			message: "Please enter a valid email",
		},
		{
			name:    "short phone",
			mutate:  func(r *models.BookingRequest) { r.Phone = "12345" },
			field:   "Phone",
			message: "Please enter a valid phone number",
		},
		{
			name:    "missing education",
			mutate:  func(r *models.BookingRequest) { r.Education = "" },
			field:   "Education",
			message: "Please select your education level",
		},
		{
			name:    "missing date",
			mutate:  func(r *models.BookingRequest) { r.PreferredDate = "" },
			field:   "PreferredDate",
			message: "Please select a preferred date",
		},
		{
			name:    "missing time",
			mutate:  func(r *models.BookingRequest) { r.PreferredTime = "" },
			field:   "PreferredTime",
			message: "Please select a preferred time",
		},
		{
			name:    "unsupported language",
			mutate:  func(r *models.BookingRequest) { r.Language = "french" },
			field:   "Language",
			message: "Please select a language",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			mockDB := new(MockDBLayer)
			svc := newService(mockDB, new(MockEventPublisher), new(MockRemover))

			req := validRequest()
			tc.mutate(&req)

			resp, err := svc.CreateBooking(req)
			assert.Nil(t, resp)

			var verr *booking.ValidationError
			assert.ErrorAs(t, err, &verr)
			assert.Equal(t, tc.field, verr.Field)
			assert.Equal(t, tc.message, verr.Message)

			// A rejected submission never reaches the store
			mockDB.AssertNotCalled(t, "CreateBooking", mock.Anything)
		})
	}
}

func TestCreateBookingWithPlan(t *testing.T) {
	mockDB := new(MockDBLayer)
	mockKafka := new(MockEventPublisher)
	svc := newService(mockDB, mockKafka, new(MockRemover))

	mockDB.On("CreateBooking", mock.AnythingOfType("models.Booking")).Return(nil)
	mockKafka.On("PublishBookingCreated", mock.AnythingOfType("models.Booking")).Return(nil)

	req := validRequest()
	req.Plan = "Demo Class"

	resp, err := svc.CreateBooking(req)
	assert.NoError(t, err)
	assert.NotNil(t, resp.Payment)
	assert.Equal(t, "Demo Class", resp.Payment.Plan.Name)
	assert.Contains(t, resp.Payment.QRPath, "/plans/Demo Class/qr")
}

func TestCreateBookingUnknownPlan(t *testing.T) {
	mockDB := new(MockDBLayer)
	svc := newService(mockDB, new(MockEventPublisher), new(MockRemover))

	req := validRequest()
	req.Plan = "Lifetime Deal"

	resp, err := svc.CreateBooking(req)
	assert.Nil(t, resp)

	var verr *booking.ValidationError
	assert.ErrorAs(t, err, &verr)
	mockDB.AssertNotCalled(t, "CreateBooking", mock.Anything)
}

func TestGetBookingNotFound(t *testing.T) {
	mockDB := new(MockDBLayer)
	svc := newService(mockDB, new(MockEventPublisher), new(MockRemover))

	mockDB.On("GetBookingByID", "missing").Return(nil, sql.ErrNoRows)

	b, err := svc.GetBooking("missing")
	assert.Nil(t, b)
	assert.ErrorIs(t, err, booking.ErrNotFound)
}

func TestUpdateBookingWrapsStoreError(t *testing.T) {
	mockDB := new(MockDBLayer)
	svc := newService(mockDB, new(MockEventPublisher), new(MockRemover))

	boom := errors.New("connection reset")
	mockDB.On("UpdateBooking", "b1", mock.Anything).Return(nil, boom)

	newPhone := "9999999999"
	b, err := svc.UpdateBooking("b1", models.BookingUpdate{Phone: &newPhone})
	assert.Nil(t, b)

	var serr *booking.StoreError
	assert.ErrorAs(t, err, &serr)
	assert.ErrorIs(t, err, boom)
}

func TestDeleteBookingCleansUpScreenshot(t *testing.T) {
	mockDB := new(MockDBLayer)
	mockKafka := new(MockEventPublisher)
	mockRemover := new(MockRemover)
	svc := newService(mockDB, mockKafka, mockRemover)

	url := "https://storage.example.com/payment-screenshots/b1_1.png"
	existing := &models.Booking{ID: "b1", PaymentScreenshot: &url}

	mockDB.On("GetBookingByID", "b1").Return(existing, nil)
	mockDB.On("DeleteBooking", "b1").Return(nil)
	mockRemover.On("Delete", url).Return(errors.New("storage unavailable"))
	mockKafka.On("PublishBookingDeleted", "b1").Return(nil)

	// Cleanup failure never surfaces to the caller
	err := svc.DeleteBooking("b1")
	assert.NoError(t, err)

	mockDB.AssertExpectations(t)
	mockRemover.AssertExpectations(t)
	mockKafka.AssertExpectations(t)
}

func TestDeleteBookingNotFound(t *testing.T) {
	mockDB := new(MockDBLayer)
	mockRemover := new(MockRemover)
	svc := newService(mockDB, new(MockEventPublisher), mockRemover)

	mockDB.On("GetBookingByID", "missing").Return(nil, sql.ErrNoRows)

	err := svc.DeleteBooking("missing")
	assert.ErrorIs(t, err, booking.ErrNotFound)
	mockDB.AssertNotCalled(t, "DeleteBooking", mock.Anything)
	mockRemover.AssertNotCalled(t, "Delete", mock.Anything)
}
