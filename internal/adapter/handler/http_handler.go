package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/chaitanyak175/TicketBoss/internal/core/domain"
	"github.com/chaitanyak175/TicketBoss/internal/core/service"
)

// HTTPHandler exposes the reservation lifecycle over HTTP. Status codes and
// error payloads are fixed; partner integrations depend on the exact strings.
type HTTPHandler struct {
	reservations *service.ReservationService
}

type createReservationRequest struct {
	PartnerID string `json:"partnerId"`
	Seats     int    `json:"seats"`
}

type createReservationResponse struct {
	ReservationID string `json:"reservationId"`
	Seats         int    `json:"seats"`
	Status        string `json:"status"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func NewHTTPHandler(reservations *service.ReservationService) *HTTPHandler {
	return &HTTPHandler{reservations: reservations}
}

// Routes mounts all endpoints on a fresh chi router.
func (h *HTTPHandler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Get("/health", h.HealthCheck)
	r.Post("/api/events/{eventID}/reservations", h.CreateReservation)
	r.Get("/api/events/{eventID}/summary", h.GetSummary)
	r.Delete("/api/reservations/{reservationID}", h.CancelReservation)
	return r
}

// CreateReservation handles POST /api/events/{eventID}/reservations.
func (h *HTTPHandler) CreateReservation(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventID")

	var req createReservationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	res, err := h.reservations.Reserve(r.Context(), eventID, req.PartnerID, req.Seats)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPartnerIDRequired):
			writeError(w, http.StatusBadRequest, "Partner ID is required")
		case errors.Is(err, service.ErrSeatsTooFew):
			writeError(w, http.StatusBadRequest, "Seats must be at least 1")
		case errors.Is(err, service.ErrSeatsTooMany):
			writeError(w, http.StatusBadRequest,
				fmt.Sprintf("Maximum %d seats per request", h.reservations.MaxSeatsPerRequest()))
		case errors.Is(err, domain.ErrEventNotFound):
			writeError(w, http.StatusNotFound, "Event not found")
		case errors.Is(err, domain.ErrInsufficientCapacity):
			writeError(w, http.StatusConflict, "Not enough seats left")
		case errors.Is(err, domain.ErrConflict):
			writeError(w, http.StatusConflict, "Reservation conflict, please try again")
		default:
			log.Printf("create reservation: %v", err)
			writeError(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	writeJSON(w, http.StatusCreated, createReservationResponse{
		ReservationID: res.ReservationID,
		Seats:         res.Seats,
		Status:        string(res.Status),
	})
}

// GetSummary handles GET /api/events/{eventID}/summary.
func (h *HTTPHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventID")

	sum, err := h.reservations.Summary(r.Context(), eventID)
	if err != nil {
		if errors.Is(err, domain.ErrEventNotFound) {
			writeError(w, http.StatusNotFound, "Event not found")
			return
		}
		log.Printf("event summary: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, sum)
}

// CancelReservation handles DELETE /api/reservations/{reservationID}.
func (h *HTTPHandler) CancelReservation(w http.ResponseWriter, r *http.Request) {
	reservationID := chi.URLParam(r, "reservationID")

	err := h.reservations.Cancel(r.Context(), reservationID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrReservationNotFound):
			writeError(w, http.StatusNotFound, "Reservation not found or already cancelled")
		case errors.Is(err, domain.ErrEventNotFound):
			writeError(w, http.StatusNotFound, "Event not found")
		default:
			// Includes a lost credit race: the reservation is already marked
			// cancelled and the reconciler will return the seats.
			log.Printf("cancel reservation %s: %v", reservationID, err)
			writeError(w, http.StatusInternalServerError, "Failed to cancel reservation")
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *HTTPHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
