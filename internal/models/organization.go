package models

import (
	"time"

	"github.com/google/uuid"
)

// DefaultUTCOffsetMinutes is the organizational timezone offset used to
// interpret step time-of-day values when an organization does not override it (JST).
const DefaultUTCOffsetMinutes = 9 * 60

// Organization represents a real-estate company using the CRM
type Organization struct {
	ID               uuid.UUID `json:"id" db:"id"`
	Name             string    `json:"name" db:"name"`
	Address          *string   `json:"address,omitempty" db:"address"`
	Phone            *string   `json:"phone,omitempty" db:"phone"`
	BusinessHours    *string   `json:"business_hours,omitempty" db:"business_hours"`
	LineAddURL       *string   `json:"line_add_url,omitempty" db:"line_add_url"`
	LicenseNumber    *string   `json:"license_number,omitempty" db:"license_number"`
	StoreName        *string   `json:"store_name,omitempty" db:"store_name"`
	StoreAddress     *string   `json:"store_address,omitempty" db:"store_address"`
	StorePhone       *string   `json:"store_phone,omitempty" db:"store_phone"`
	StoreHours       *string   `json:"store_hours,omitempty" db:"store_hours"`
	UTCOffsetMinutes int       `json:"utc_offset_minutes" db:"utc_offset_minutes"`
	CreatedAt        time.Time `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time `json:"updated_at" db:"updated_at"`
}

// Location returns the fixed organizational timezone. Step time-of-day values
// are always interpreted in this zone, never in the host timezone.
func (o *Organization) Location() *time.Location {
	offset := o.UTCOffsetMinutes
	if offset == 0 {
		offset = DefaultUTCOffsetMinutes
	}
	return time.FixedZone("org", offset*60)
}
