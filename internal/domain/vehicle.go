package domain

import "time"

type VehicleStatus string

const (
	VehicleStatusAvailable    VehicleStatus = "available"
	VehicleStatusRented       VehicleStatus = "rented"
	VehicleStatusMaintenance  VehicleStatus = "maintenance"
	VehicleStatusOutOfService VehicleStatus = "out_of_service"
)

type FuelType string

const (
	FuelTypeEssence  FuelType = "essence"
	FuelTypeDiesel   FuelType = "diesel"
	FuelTypeElectric FuelType = "electric"
	FuelTypeHybrid   FuelType = "hybrid"
)

type Transmission string

const (
	TransmissionManual    Transmission = "manual"
	TransmissionAutomatic Transmission = "automatic"
)

type VehicleDocumentType string

const (
	VehicleDocumentRegistration VehicleDocumentType = "registration"
	VehicleDocumentInsurance    VehicleDocumentType = "insurance"
	VehicleDocumentInspection   VehicleDocumentType = "inspection"
)

// VehicleDocument tracks the expiry metadata of an administrative document.
// The document files themselves live outside this system.
type VehicleDocument struct {
	Name       string     `json:"name,omitempty"`
	ExpiryDate *time.Time `json:"expiry_date,omitempty"`
}

type VehicleDocuments struct {
	Registration VehicleDocument `json:"registration"`
	Insurance    VehicleDocument `json:"insurance"`
	Inspection   VehicleDocument `json:"inspection"`
}

// MinimumDailyRate is the lowest daily price a vehicle may be listed at.
const MinimumDailyRate = 200

type Vehicle struct {
	ID           int64            `json:"id"`
	Brand        string           `json:"brand"`
	Model        string           `json:"model"`
	Year         int              `json:"year"`
	LicensePlate string           `json:"license_plate"`
	FuelType     FuelType         `json:"fuel_type"`
	DailyRate    float64          `json:"daily_rate"`
	Mileage      int64            `json:"mileage"`
	Status       VehicleStatus    `json:"status"`
	Color        string           `json:"color,omitempty"`
	Transmission Transmission     `json:"transmission"`
	Seats        int              `json:"seats"`
	Documents    VehicleDocuments `json:"documents"`
	Notes        string           `json:"notes,omitempty"`
	CreatedOn    time.Time        `json:"created_on"`
	UpdatedOn    time.Time        `json:"updated_on"`
}

// FullName is the display label used in alerts and dashboards.
func (v *Vehicle) FullName() string {
	return v.Brand + " " + v.Model + " (" + v.LicensePlate + ")"
}

type ExpiringDocument struct {
	Type       VehicleDocumentType `json:"type"`
	ExpiryDate time.Time           `json:"expiry_date"`
}

// ExpiringDocuments returns the administrative documents whose expiry date
// falls on or before now+window.
func (v *Vehicle) ExpiringDocuments(now time.Time, window time.Duration) []ExpiringDocument {
	cutoff := now.Add(window)
	var out []ExpiringDocument
	check := func(t VehicleDocumentType, d VehicleDocument) {
		if d.ExpiryDate != nil && !d.ExpiryDate.After(cutoff) {
			out = append(out, ExpiringDocument{Type: t, ExpiryDate: *d.ExpiryDate})
		}
	}
	check(VehicleDocumentRegistration, v.Documents.Registration)
	check(VehicleDocumentInsurance, v.Documents.Insurance)
	check(VehicleDocumentInspection, v.Documents.Inspection)
	return out
}
