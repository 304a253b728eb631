package domain

import "time"

type ReservationStatus string

const (
	ReservationStatusPending   ReservationStatus = "pending"
	ReservationStatusConfirmed ReservationStatus = "confirmed"
	ReservationStatusActive    ReservationStatus = "active"
	ReservationStatusCompleted ReservationStatus = "completed"
	ReservationStatusCancelled ReservationStatus = "cancelled"
)

// reservationTransitions is the allowed transition table. Cancellation is
// reachable from every non-terminal state; completed and cancelled are final.
var reservationTransitions = map[ReservationStatus][]ReservationStatus{
	ReservationStatusPending:   {ReservationStatusConfirmed, ReservationStatusCancelled},
	ReservationStatusConfirmed: {ReservationStatusActive, ReservationStatusCancelled},
	ReservationStatusActive:    {ReservationStatusCompleted, ReservationStatusCancelled},
	ReservationStatusCompleted: {},
	ReservationStatusCancelled: {},
}

// CanTransition reports whether moving from one reservation status to
// another is permitted.
func CanTransition(from, to ReservationStatus) bool {
	for _, next := range reservationTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether a status admits no further transitions.
func (s ReservationStatus) IsTerminal() bool {
	return len(reservationTransitions[s]) == 0
}

// IsBlocking reports whether a reservation in this status holds the vehicle
// for its date interval.
func (s ReservationStatus) IsBlocking() bool {
	return s == ReservationStatusConfirmed || s == ReservationStatusActive
}

// Deletable reports whether a reservation in this status may be removed.
func (s ReservationStatus) Deletable() bool {
	switch s {
	case ReservationStatusPending, ReservationStatusCancelled, ReservationStatusCompleted:
		return true
	}
	return false
}

type FeeType string

const (
	FeeTypeFuel       FeeType = "fuel"
	FeeTypeInsurance  FeeType = "insurance"
	FeeTypeDamage     FeeType = "damage"
	FeeTypeLateReturn FeeType = "late_return"
	FeeTypeCleaning   FeeType = "cleaning"
	FeeTypeOther      FeeType = "other"
)

// AdditionalFee is a named surcharge added on top of the base amount.
type AdditionalFee struct {
	Type        FeeType `json:"type"`
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
}

// Deposit is a refundable hold tracked separately from the rental charge.
type Deposit struct {
	Amount   float64    `json:"amount"`
	Paid     bool       `json:"paid"`
	PaidDate *time.Time `json:"paid_date,omitempty"`
}

type FuelLevel string

const (
	FuelLevelEmpty         FuelLevel = "empty"
	FuelLevelQuarter       FuelLevel = "quarter"
	FuelLevelHalf          FuelLevel = "half"
	FuelLevelThreeQuarters FuelLevel = "three_quarters"
	FuelLevelFull          FuelLevel = "full"
)

type CancelledBy string

const (
	CancelledByClient  CancelledBy = "client"
	CancelledByCompany CancelledBy = "company"
)

type Reservation struct {
	ID                int64             `json:"id"`
	ReservationNumber string            `json:"reservation_number"`
	ClientID          int64             `json:"client_id"`
	VehicleID         int64             `json:"vehicle_id"`
	Client            *Client           `json:"client,omitempty"`
	Vehicle           *Vehicle          `json:"vehicle,omitempty"`
	StartDate         time.Time         `json:"start_date"`
	EndDate           time.Time         `json:"end_date"`
	ActualStartDate   *time.Time        `json:"actual_start_date,omitempty"`
	ActualEndDate     *time.Time        `json:"actual_end_date,omitempty"`
	Status            ReservationStatus `json:"status"`
	// Rate snapshot taken from the vehicle at creation time; later vehicle
	// price changes never affect an existing reservation.
	DailyRate      float64         `json:"daily_rate"`
	TotalDays      int             `json:"total_days"`
	BaseAmount     float64         `json:"base_amount"`
	AdditionalFees []AdditionalFee `json:"additional_fees"`
	TotalAmount    float64         `json:"total_amount"`
	Deposit        Deposit         `json:"deposit"`
	PickupLocation string          `json:"pickup_location,omitempty"`
	ReturnLocation string          `json:"return_location,omitempty"`
	MileageStart   *int64          `json:"mileage_start,omitempty"`
	MileageEnd     *int64          `json:"mileage_end,omitempty"`
	FuelLevelStart FuelLevel       `json:"fuel_level_start,omitempty"`
	FuelLevelEnd   FuelLevel       `json:"fuel_level_end,omitempty"`
	Notes          string          `json:"notes,omitempty"`

	CancellationReason string      `json:"cancellation_reason,omitempty"`
	CancelledBy        CancelledBy `json:"cancelled_by,omitempty"`
	CancelledDate      *time.Time  `json:"cancelled_date,omitempty"`

	CreatedOn time.Time `json:"created_on"`
	UpdatedOn time.Time `json:"updated_on"`
}

// FeesTotal sums the additional fees.
func (r *Reservation) FeesTotal() float64 {
	var total float64
	for _, fee := range r.AdditionalFees {
		total += fee.Amount
	}
	return total
}

// IsOverdue reports whether an active rental is past its planned end date.
func (r *Reservation) IsOverdue(now time.Time) bool {
	if r.Status != ReservationStatusActive {
		return false
	}
	return now.After(r.EndDate)
}
