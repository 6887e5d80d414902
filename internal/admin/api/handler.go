package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"ms-bookings/internal/admin"
	"ms-bookings/internal/auth"
	"ms-bookings/internal/booking"
	"ms-bookings/internal/logger"
	"ms-bookings/internal/models"
	"ms-bookings/internal/utils"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	Admin    *admin.AdminService
	Sessions *auth.SessionCache
	Logger   *logger.Logger
}

func NewHandler(adminService *admin.AdminService, sessions *auth.SessionCache, log *logger.Logger) *Handler {
	return &Handler{
		Admin:    adminService,
		Sessions: sessions,
		Logger:   log,
	}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/bookings", h.ListBookings)
	r.Get("/bookings/{bookingId}", h.GetBooking)
	r.Get("/stats", h.Stats)
	r.Patch("/bookings/{bookingId}/status", h.ChangeStatus)
	r.Patch("/bookings/{bookingId}/payment", h.PaymentTransition)
	r.Put("/bookings/{bookingId}", h.EditBooking)
	r.Delete("/bookings/{bookingId}", h.DeleteBooking)
	r.Post("/refresh", h.Refresh)
	r.Post("/logout", h.Logout)
}

// ListBookings returns the loaded snapshot filtered by search term, payment
// status and booking status, in that fixed order. Filters never hit the
// store; use POST /refresh to reload.
func (h *Handler) ListBookings(w http.ResponseWriter, r *http.Request) {
	if !h.Admin.Loaded() {
		if err := h.Admin.Refresh(); err != nil {
			h.writeError(w, "ListBookings", err)
			return
		}
	}

	q := r.URL.Query()
	filtered := h.Admin.Filter(q.Get("search"), q.Get("payment_status"), q.Get("status"))

	writeJSON(w, http.StatusOK, utils.SuccessResponse("Bookings", filtered))
}

// GetBooking renders the full booking context for the detail view,
// screenshot URL included.
func (h *Handler) GetBooking(w http.ResponseWriter, r *http.Request) {
	bookingID := chi.URLParam(r, "bookingId")

	b, err := h.Admin.GetBooking(bookingID)
	if err != nil {
		h.writeError(w, "GetBooking", err)
		return
	}

	writeJSON(w, http.StatusOK, utils.SuccessResponse("Booking", b))
}

// Stats returns aggregate counts over the loaded snapshot.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	if !h.Admin.Loaded() {
		if err := h.Admin.Refresh(); err != nil {
			h.writeError(w, "Stats", err)
			return
		}
	}

	writeJSON(w, http.StatusOK, utils.SuccessResponse("Stats", h.Admin.Stats()))
}

// ChangeStatus applies a booking status transition.
func (h *Handler) ChangeStatus(w http.ResponseWriter, r *http.Request) {
	bookingID := chi.URLParam(r, "bookingId")

	var req struct {
		Status models.BookingStatus `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, utils.ErrorResponse("Invalid request body", err.Error()))
		return
	}

	updated, err := h.Admin.ChangeStatus(bookingID, req.Status)
	if err != nil {
		h.writeError(w, "ChangeStatus", err)
		return
	}

	h.Logger.LogBooking("STATUS", bookingID, fmt.Sprintf("status changed to %s by %s", req.Status, auth.UserID(r.Context())))
	writeJSON(w, http.StatusOK, utils.SuccessResponse("Status updated", updated))
}

// PaymentTransition verifies or rejects an attached payment proof.
func (h *Handler) PaymentTransition(w http.ResponseWriter, r *http.Request) {
	bookingID := chi.URLParam(r, "bookingId")

	var req struct {
		Action string `json:"action"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, utils.ErrorResponse("Invalid request body", err.Error()))
		return
	}

	var updated *models.Booking
	var err error
	switch req.Action {
	case "verify":
		updated, err = h.Admin.VerifyPayment(bookingID)
	case "reject":
		updated, err = h.Admin.RejectPayment(bookingID)
	default:
		writeJSON(w, http.StatusBadRequest, utils.ErrorResponse("Action must be 'verify' or 'reject'", req.Action))
		return
	}
	if err != nil {
		h.writeError(w, "PaymentTransition", err)
		return
	}

	h.Logger.LogPayment("TRANSITION", bookingID, fmt.Sprintf("payment %sed by %s", req.Action, auth.UserID(r.Context())))
	writeJSON(w, http.StatusOK, utils.SuccessResponse(fmt.Sprintf("Payment %s", updated.PaymentStatus), updated))
}

// EditBooking merges a partial patch over the mutable contact/session
// fields and returns the store's row.
func (h *Handler) EditBooking(w http.ResponseWriter, r *http.Request) {
	bookingID := chi.URLParam(r, "bookingId")

	var patch models.BookingUpdate
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeJSON(w, http.StatusBadRequest, utils.ErrorResponse("Invalid request body", err.Error()))
		return
	}

	updated, err := h.Admin.EditBooking(bookingID, patch)
	if err != nil {
		h.writeError(w, "EditBooking", err)
		return
	}

	h.Logger.LogBooking("EDIT", bookingID, "booking updated")
	writeJSON(w, http.StatusOK, utils.SuccessResponse("Booking updated", updated))
}

// DeleteBooking removes a booking. The irreversible action must be
// acknowledged with ?confirm=true, mirroring the confirmation dialog.
func (h *Handler) DeleteBooking(w http.ResponseWriter, r *http.Request) {
	bookingID := chi.URLParam(r, "bookingId")

	if r.URL.Query().Get("confirm") != "true" {
		writeJSON(w, http.StatusBadRequest, utils.ErrorResponse("Deletion is irreversible and must be confirmed", "pass confirm=true"))
		return
	}

	if err := h.Admin.DeleteBooking(bookingID); err != nil {
		h.writeError(w, "DeleteBooking", err)
		return
	}

	h.Logger.LogBooking("DELETE", bookingID, fmt.Sprintf("booking deleted by %s", auth.UserID(r.Context())))
	w.WriteHeader(http.StatusNoContent)
}

// Refresh reloads the snapshot from the store. Stale views after concurrent
// edits are only corrected here; there is no background sync.
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	if err := h.Admin.Refresh(); err != nil {
		h.writeError(w, "Refresh", err)
		return
	}
	writeJSON(w, http.StatusOK, utils.SuccessResponse("Bookings refreshed", h.Admin.Bookings()))
}

// Logout revokes the current session token.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	rawToken, err := auth.ExtractTokenFromRequest(r)
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, utils.ErrorResponse("Not signed in", err.Error()))
		return
	}

	if err := h.Sessions.Revoke(r.Context(), rawToken); err != nil {
		h.writeError(w, "Logout", err)
		return
	}

	if sub, err := auth.ExtractUserIDFromJWT(rawToken); err == nil {
		h.Logger.LogSecurity("LOGOUT", fmt.Sprintf("operator %s signed out", sub))
	}
	writeJSON(w, http.StatusOK, utils.SuccessResponse("Signed out", nil))
}

func (h *Handler) writeError(w http.ResponseWriter, op string, err error) {
	var verr *booking.ValidationError

	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, utils.ErrorResponse(verr.Message, verr.Field))
	case errors.Is(err, booking.ErrNotFound):
		writeJSON(w, http.StatusNotFound, utils.ErrorResponse("Booking not found", ""))
	case errors.Is(err, admin.ErrVerifyNotAllowed):
		writeJSON(w, http.StatusConflict, utils.ErrorResponse(admin.ErrVerifyNotAllowed.Error(), ""))
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
