package http

import (
	"encoding/json"
	"net/http"
	"time"

	"autofleet-backoffice/internal/domain"
	"autofleet-backoffice/internal/repository"
	"autofleet-backoffice/internal/service"
)

type ReservationHandler struct {
	reservationService service.ReservationService
}

func NewReservationHandler(reservationService service.ReservationService) *ReservationHandler {
	return &ReservationHandler{reservationService: reservationService}
}

// parseDate accepts the YYYY-MM-DD wire format used by the admin console.
func parseDate(raw string) (time.Time, error) {
	return time.Parse("2006-01-02", raw)
}

type createReservationRequest struct {
	ClientID       int64                  `json:"client_id"`
	VehicleID      int64                  `json:"vehicle_id"`
	StartDate      string                 `json:"start_date"`
	EndDate        string                 `json:"end_date"`
	AdditionalFees []domain.AdditionalFee `json:"additional_fees"`
	Deposit        domain.Deposit         `json:"deposit"`
	PickupLocation string                 `json:"pickup_location"`
	ReturnLocation string                 `json:"return_location"`
	Notes          string                 `json:"notes"`
}

func (h *ReservationHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createReservationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Message: "invalid request body"})
		return
	}
	start, err := parseDate(req.StartDate)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Message: "start_date must be YYYY-MM-DD"})
		return
	}
	end, err := parseDate(req.EndDate)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Message: "end_date must be YYYY-MM-DD"})
		return
	}
	reservation, err := h.reservationService.CreateReservation(r.Context(), service.CreateReservationInput{
		ClientID:       req.ClientID,
		VehicleID:      req.VehicleID,
		StartDate:      start,
		EndDate:        end,
		AdditionalFees: req.AdditionalFees,
		Deposit:        req.Deposit,
		PickupLocation: req.PickupLocation,
		ReturnLocation: req.ReturnLocation,
		Notes:          req.Notes,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, reservation)
}

func (h *ReservationHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Message: "invalid reservation id"})
		return
	}
	reservation, err := h.reservationService.GetReservation(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reservation)
}

type updateReservationRequest struct {
	StartDate      *string                `json:"start_date"`
	EndDate        *string                `json:"end_date"`
	AdditionalFees []domain.AdditionalFee `json:"additional_fees"`
	Deposit        *domain.Deposit        `json:"deposit"`
	PickupLocation *string                `json:"pickup_location"`
	ReturnLocation *string                `json:"return_location"`
	Notes          *string                `json:"notes"`
}

func (h *ReservationHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Message: "invalid reservation id"})
		return
	}
	var req updateReservationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Message: "invalid request body"})
		return
	}
	input := service.UpdateReservationInput{
		AdditionalFees: req.AdditionalFees,
		Deposit:        req.Deposit,
		PickupLocation: req.PickupLocation,
		ReturnLocation: req.ReturnLocation,
		Notes:          req.Notes,
	}
	if req.StartDate != nil {
		start, err := parseDate(*req.StartDate)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Message: "start_date must be YYYY-MM-DD"})
			return
		}
		input.StartDate = &start
	}
	if req.EndDate != nil {
		end, err := parseDate(*req.EndDate)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Message: "end_date must be YYYY-MM-DD"})
			return
		}
		input.EndDate = &end
	}
	reservation, err := h.reservationService.UpdateReservation(r.Context(), id, input)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reservation)
}

func (h *ReservationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Message: "invalid reservation id"})
		return
	}
	if err := h.reservationService.DeleteReservation(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "reservation deleted"})
}

func (h *ReservationHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := repository.ReservationFilter{
		Status:    domain.ReservationStatus(r.URL.Query().Get("status")),
		ClientID:  int64(queryInt(r, "client_id")),
		VehicleID: int64(queryInt(r, "vehicle_id")),
		Page:      queryInt(r, "page"),
		PageSize:  queryInt(r, "page_size"),
	}
	if from, ok := queryDate(r, "start_from"); ok {
		filter.StartFrom = &from
	}
	if to, ok := queryDate(r, "start_to"); ok {
		filter.StartTo = &to
	}
	reservations, total, err := h.reservationService.ListReservations(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newListResponse(reservations, filter.Page, filter.PageSize, total))
}

type changeStatusRequest struct {
	Status             domain.ReservationStatus `json:"status"`
	Mileage            *int64                   `json:"mileage"`
	FuelLevel          domain.FuelLevel         `json:"fuel_level"`
	CancellationReason string                   `json:"cancellation_reason"`
	CancelledBy        domain.CancelledBy       `json:"cancelled_by"`
}

func (h *ReservationHandler) ChangeStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Message: "invalid reservation id"})
		return
	}
	var req changeStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Message: "invalid request body"})
		return
	}
	reservation, err := h.reservationService.ChangeStatus(r.Context(), id, req.Status, service.TransitionInput{
		Mileage:            req.Mileage,
		FuelLevel:          req.FuelLevel,
		CancellationReason: req.CancellationReason,
		CancelledBy:        req.CancelledBy,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reservation)
}

func (h *ReservationHandler) Calendar(w http.ResponseWriter, r *http.Request) {
	start, okStart := queryDate(r, "start")
	end, okEnd := queryDate(r, "end")
	if !okStart || !okEnd {
		writeJSON(w, http.StatusBadRequest, errorResponse{Message: "start and end query parameters are required (YYYY-MM-DD)"})
		return
	}
	reservations, err := h.reservationService.Calendar(r.Context(), start, end)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": reservations})
}

func (h *ReservationHandler) Overdue(w http.ResponseWriter, r *http.Request) {
	reservations, err := h.reservationService.ListOverdue(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": reservations})
}
