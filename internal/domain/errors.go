package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound is returned when a referenced record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrStartAfterEnd is returned when a reservation interval is reversed.
	ErrStartAfterEnd = errors.New("end date must be after start date")
	// ErrStartInPast is returned when a new reservation starts before now.
	ErrStartInPast = errors.New("start date cannot be in the past")
	// ErrNotDeletable is returned when deleting a reservation whose status
	// requires a cancellation instead.
	ErrNotDeletable = errors.New("only pending, cancelled or completed reservations can be deleted")
	// ErrHasActiveReservations blocks deleting a vehicle or client that is
	// referenced by a blocking reservation.
	ErrHasActiveReservations = errors.New("record has active or confirmed reservations")
)

// EligibilityError carries the structured reason list for a client failing
// the rental gate.
type EligibilityError struct {
	Reasons []string
}

func (e *EligibilityError) Error() string {
	return "client is not eligible for rental: " + strings.Join(e.Reasons, "; ")
}

// VehicleUnavailableError signals a vehicle whose status blocks new rentals.
type VehicleUnavailableError struct {
	Status VehicleStatus
}

func (e *VehicleUnavailableError) Error() string {
	return fmt.Sprintf("vehicle is not available (status: %s)", e.Status)
}

// ConflictError signals an overlapping blocking reservation on the vehicle.
type ConflictError struct {
	ReservationNumber string
}

func (e *ConflictError) Error() string {
	return "vehicle is already reserved for this period (conflicts with " + e.ReservationNumber + ")"
}

// StateError signals a status transition not present in the transition table.
type StateError struct {
	From ReservationStatus
	To   ReservationStatus
}

func (e *StateError) Error() string {
	return fmt.Sprintf("cannot transition reservation from %s to %s", e.From, e.To)
}

// DuplicateError signals a uniqueness violation on the named field.
type DuplicateError struct {
	Field string
}

func (e *DuplicateError) Error() string {
	return e.Field + " already exists"
}

// ValidationError aggregates per-field input problems.
type ValidationError struct {
	Fields []FieldError
}

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.Field + ": " + f.Message
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Add(field, message string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message})
}

func (e *ValidationError) HasErrors() bool {
	return len(e.Fields) > 0
}
