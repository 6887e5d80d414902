package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"ms-bookings/internal/booking"
	"ms-bookings/internal/logger"
	"ms-bookings/internal/models"
	"ms-bookings/internal/payment"
	"ms-bookings/internal/storage"
	"ms-bookings/internal/utils"

	"github.com/go-chi/chi/v5"
)

// multipart forms are capped above the screenshot limit so oversized files
// reach the validator and get the proper user-facing message.
const maxUploadMemory = 8 << 20

type Handler struct {
	BookingService *booking.BookingService
	PaymentService *payment.PaymentService
	Logger         *logger.Logger
}

func NewHandler(bookingService *booking.BookingService, paymentService *payment.PaymentService, log *logger.Logger) *Handler {
	return &Handler{
		BookingService: bookingService,
		PaymentService: paymentService,
		Logger:         log,
	}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/bookings", h.CreateBooking)
	r.Get("/bookings/{bookingId}/confirmation", h.GetConfirmation)
	r.Post("/bookings/{bookingId}/payment-screenshot", h.ConfirmPayment)
	r.Get("/plans", h.ListPlans)
	r.Get("/plans/{planName}/qr", h.PlanQR)
}

// CreateBooking handles the booking form submission.
func (h *Handler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	var req models.BookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Logger.Error("API", fmt.Sprintf("CreateBooking: failed to decode request body: %v", err))
		writeJSON(w, http.StatusBadRequest, utils.ErrorResponse("Invalid request body", err.Error()))
		return
	}

	resp, err := h.BookingService.CreateBooking(req)
	if err != nil {
		h.writeError(w, "CreateBooking", err)
		return
	}

	// A selected plan hands the caller off to the payment step.
	if resp.Payment != nil {
		if instr, err := h.PaymentService.Instructions(resp.Payment.Plan.Name); err == nil {
			resp.Payment = instr
		}
	}

	h.Logger.LogBooking("CREATE", resp.Booking.ID, "booking created")
	writeJSON(w, http.StatusCreated, utils.SuccessResponse("Booking request submitted! We'll contact you soon.", resp))
}

// GetConfirmation echoes the booking summary for the thank-you view.
func (h *Handler) GetConfirmation(w http.ResponseWriter, r *http.Request) {
	bookingID := chi.URLParam(r, "bookingId")

	b, err := h.BookingService.GetBooking(bookingID)
	if err != nil {
		h.writeError(w, "GetConfirmation", err)
		return
	}

	writeJSON(w, http.StatusOK, utils.SuccessResponse("Booking confirmed", b.Confirmation()))
}

// ConfirmPayment accepts the proof-of-payment screenshot and attaches it to
// the booking. Payment status stays pending until an admin verifies.
func (h *Handler) ConfirmPayment(w http.ResponseWriter, r *http.Request) {
	bookingID := chi.URLParam(r, "bookingId")
	h.Logger.Info("API", fmt.Sprintf("ConfirmPayment: bookingId=%s", bookingID))

	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		writeJSON(w, http.StatusBadRequest, utils.ErrorResponse("Invalid upload", err.Error()))
		return
	}

	file, header, err := r.FormFile("screenshot")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, utils.ErrorResponse("Please upload payment screenshot before confirming.", err.Error()))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, utils.ErrorResponse("Failed to read uploaded file", err.Error()))
		return
	}

	contentType := header.Header.Get("Content-Type")
	updated, err := h.PaymentService.ConfirmPayment(bookingID, data, contentType, header.Filename)
	if err != nil {
		h.writeError(w, "ConfirmPayment", err)
		return
	}

	h.Logger.LogPayment("ATTACH", bookingID, "screenshot attached")
	writeJSON(w, http.StatusOK, utils.SuccessResponse("Payment screenshot uploaded! We'll verify and contact you soon.", updated))
}

// ListPlans returns the pricing catalog plus the static UPI id.
func (h *Handler) ListPlans(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, utils.SuccessResponse("Plans", map[string]interface{}{
		"plans":  models.Plans,
		"upi_id": h.PaymentService.UPIID,
	}))
}

// PlanQR renders the UPI payment QR code for a plan.
func (h *Handler) PlanQR(w http.ResponseWriter, r *http.Request) {
	planName := chi.URLParam(r, "planName")

	png, err := h.PaymentService.QRCode(planName, 256)
	if err != nil {
		writeJSON(w, http.StatusNotFound, utils.ErrorResponse("Unknown plan", err.Error()))
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(png); err != nil {
		h.Logger.Error("API", fmt.Sprintf("PlanQR: failed to write response: %v", err))
	}
}

func (h *Handler) writeError(w http.ResponseWriter, op string, err error) {
	var verr *booking.ValidationError
	var ierr *storage.InvalidInputError
	var uerr *storage.UploadError

	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, utils.ErrorResponse(verr.Message, verr.Field))
	case errors.As(err, &ierr):
		writeJSON(w, http.StatusBadRequest, utils.ErrorResponse(ierr.Message, ""))
	case errors.Is(err, booking.ErrNotFound):
		writeJSON(w, http.StatusNotFound, utils.ErrorResponse("Booking not found", ""))
	case errors.As(err, &uerr):
		h.Logger.Error("API", fmt.Sprintf("%s: upload failed: %v", op, err))
		writeJSON(w, http.StatusBadGateway, utils.ErrorResponse(uerr.Message, ""))
	default:
		h.Logger.Error("API", fmt.Sprintf("%s: %v", op, err))
		writeJSON(w, http.StatusInternalServerError, utils.ErrorResponse("Something went wrong. Please try again.", ""))
	}
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
