package domain

import "time"

type ClientStatus string

const (
	ClientStatusActive      ClientStatus = "active"
	ClientStatusBlacklisted ClientStatus = "blacklisted"
	ClientStatusSuspended   ClientStatus = "suspended"
)

// MinimumRentalAge is the youngest age at which a client may rent.
const MinimumRentalAge = 21

// DefaultExpiryWindow is the lookahead used for license and document
// expiry warnings.
const DefaultExpiryWindow = 30 * 24 * time.Hour

type Client struct {
	ID                int64        `json:"id"`
	FirstName         string       `json:"first_name"`
	LastName          string       `json:"last_name"`
	Email             string       `json:"email"`
	Phone             string       `json:"phone"`
	DateOfBirth       time.Time    `json:"date_of_birth"`
	NationalID        string       `json:"national_id"`
	LicenseNumber     string       `json:"license_number"`
	LicenseExpiryDate time.Time    `json:"license_expiry_date"`
	Status            ClientStatus `json:"status"`
	BlacklistReason   string       `json:"blacklist_reason,omitempty"`
	Notes             string       `json:"notes,omitempty"`
	TotalRentals      int32        `json:"total_rentals"`
	TotalSpent        float64      `json:"total_spent"`
	CreatedOn         time.Time    `json:"created_on"`
	UpdatedOn         time.Time    `json:"updated_on"`
}

func (c *Client) FullName() string {
	return c.FirstName + " " + c.LastName
}

// Age computes the client's age at the given instant, accounting for
// whether the birthday has occurred yet this year.
func (c *Client) Age(now time.Time) int {
	age := now.Year() - c.DateOfBirth.Year()
	if now.Month() < c.DateOfBirth.Month() ||
		(now.Month() == c.DateOfBirth.Month() && now.Day() < c.DateOfBirth.Day()) {
		age--
	}
	return age
}

// EligibleForRental reports whether the client may start a rental:
// active status, a license valid beyond now, and minimum age.
func (c *Client) EligibleForRental(now time.Time) bool {
	return len(c.EligibilityReasons(now)) == 0
}

// EligibilityReasons lists every reason the client fails the rental gate.
// An empty slice means the client is eligible.
func (c *Client) EligibilityReasons(now time.Time) []string {
	var reasons []string
	if c.Status != ClientStatusActive {
		reasons = append(reasons, "client status: "+string(c.Status))
	}
	if !c.LicenseExpiryDate.After(now) {
		reasons = append(reasons, "license expired")
	}
	if c.Age(now) < MinimumRentalAge {
		reasons = append(reasons, "client under 21 years old")
	}
	return reasons
}

// LicenseExpiringSoon reports whether the license expires within the window.
func (c *Client) LicenseExpiringSoon(now time.Time, window time.Duration) bool {
	return !c.LicenseExpiryDate.After(now.Add(window))
}
