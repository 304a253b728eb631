package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"autofleet-backoffice/internal/domain"
	"autofleet-backoffice/internal/repository"
	"autofleet-backoffice/internal/service"
)

type VehicleHandler struct {
	vehicleService service.VehicleService
}

func NewVehicleHandler(vehicleService service.VehicleService) *VehicleHandler {
	return &VehicleHandler{vehicleService: vehicleService}
}

func pathID(r *http.Request) (int64, error) {
	return strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
}

func queryInt(r *http.Request, key string) int {
	v, _ := strconv.Atoi(r.URL.Query().Get(key))
	return v
}

// queryDate parses a YYYY-MM-DD query parameter.
func queryDate(r *http.Request, key string) (time.Time, bool) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return time.Time{}, false
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func (h *VehicleHandler) Create(w http.ResponseWriter, r *http.Request) {
	var vehicle domain.Vehicle
	if err := json.NewDecoder(r.Body).Decode(&vehicle); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Message: "invalid request body"})
		return
	}
	if err := h.vehicleService.AddVehicle(r.Context(), &vehicle); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, vehicle)
}

func (h *VehicleHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Message: "invalid vehicle id"})
		return
	}
	vehicle, err := h.vehicleService.GetVehicle(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, vehicle)
}

func (h *VehicleHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Message: "invalid vehicle id"})
		return
	}
	vehicle, err := h.vehicleService.GetVehicle(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := json.NewDecoder(r.Body).Decode(vehicle); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Message: "invalid request body"})
		return
	}
	vehicle.ID = id
	if err := h.vehicleService.UpdateVehicle(r.Context(), vehicle); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, vehicle)
}

func (h *VehicleHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Message: "invalid vehicle id"})
		return
	}
	if err := h.vehicleService.DeleteVehicle(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "vehicle deleted"})
}

func (h *VehicleHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := repository.VehicleFilter{
		Status:   domain.VehicleStatus(r.URL.Query().Get("status")),
		FuelType: domain.FuelType(r.URL.Query().Get("fuel_type")),
		Search:   r.URL.Query().Get("search"),
		Page:     queryInt(r, "page"),
		PageSize: queryInt(r, "page_size"),
	}
	vehicles, total, err := h.vehicleService.ListVehicles(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newListResponse(vehicles, filter.Page, filter.PageSize, total))
}

type availabilityResponse struct {
	Available bool                `json:"available"`
	Conflict  *domain.Reservation `json:"conflict,omitempty"`
}

func (h *VehicleHandler) CheckAvailability(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Message: "invalid vehicle id"})
		return
	}
	start, okStart := queryDate(r, "start")
	end, okEnd := queryDate(r, "end")
	if !okStart || !okEnd {
		writeJSON(w, http.StatusBadRequest, errorResponse{Message: "start and end query parameters are required (YYYY-MM-DD)"})
		return
	}
	available, conflict, err := h.vehicleService.CheckAvailability(r.Context(), id, start, end)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, availabilityResponse{Available: available, Conflict: conflict})
}

func (h *VehicleHandler) UpdateDocuments(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Message: "invalid vehicle id"})
		return
	}
	var docs domain.VehicleDocuments
	if err := json.NewDecoder(r.Body).Decode(&docs); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Message: "invalid request body"})
		return
	}
	vehicle, err := h.vehicleService.UpdateDocuments(r.Context(), id, docs)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, vehicle)
}
