package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"autofleet-backoffice/internal/domain"
	"autofleet-backoffice/internal/logger"
	"autofleet-backoffice/internal/service"
)

type errorResponse struct {
	Message string              `json:"message"`
	Reasons []string            `json:"reasons,omitempty"`
	Fields  []domain.FieldError `json:"fields,omitempty"`
}

type pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

type listResponse struct {
	Data       any        `json:"data"`
	Pagination pagination `json:"pagination"`
}

func newListResponse(data any, page, pageSize, total int) listResponse {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 10
	}
	pages := (total + pageSize - 1) / pageSize
	return listResponse{
		Data: data,
		Pagination: pagination{
			Page:       page,
			PageSize:   pageSize,
			Total:      total,
			TotalPages: pages,
		},
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			logger.Error("write response failed", "error", err)
		}
	}
}

// writeError translates domain and service errors into HTTP statuses with a
// consistent body shape.
func writeError(w http.ResponseWriter, err error) {
	var (
		eligibilityErr *domain.EligibilityError
		validationErr  *domain.ValidationError
		conflictErr    *domain.ConflictError
		duplicateErr   *domain.DuplicateError
		stateErr       *domain.StateError
		unavailableErr *domain.VehicleUnavailableError
	)

	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Message: "record not found"})
	case errors.As(err, &validationErr):
		writeJSON(w, http.StatusBadRequest, errorResponse{Message: "validation failed", Fields: validationErr.Fields})
	case errors.As(err, &eligibilityErr):
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{
			Message: "client is not eligible for rental",
			Reasons: eligibilityErr.Reasons,
		})
	case errors.As(err, &unavailableErr):
		writeJSON(w, http.StatusConflict, errorResponse{Message: unavailableErr.Error()})
	case errors.As(err, &conflictErr):
		writeJSON(w, http.StatusConflict, errorResponse{Message: conflictErr.Error()})
	case errors.As(err, &duplicateErr):
		writeJSON(w, http.StatusConflict, errorResponse{Message: duplicateErr.Error()})
	case errors.As(err, &stateErr):
		writeJSON(w, http.StatusConflict, errorResponse{Message: stateErr.Error()})
	case errors.Is(err, domain.ErrStartAfterEnd),
		errors.Is(err, domain.ErrStartInPast),
		errors.Is(err, domain.ErrNotDeletable):
		writeJSON(w, http.StatusBadRequest, errorResponse{Message: err.Error()})
	case errors.Is(err, domain.ErrHasActiveReservations):
		writeJSON(w, http.StatusConflict, errorResponse{Message: err.Error()})
	case errors.Is(err, service.ErrInvalidCredentials):
		writeJSON(w, http.StatusUnauthorized, errorResponse{Message: err.Error()})
	case errors.Is(err, service.ErrAccountDisabled):
		writeJSON(w, http.StatusForbidden, errorResponse{Message: err.Error()})
	default:
		logger.Error("internal error", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Message: "internal server error"})
	}
}
