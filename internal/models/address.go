package models

import "fmt"

// Address belongs to exactly one of a customer or a provider. Coordinates are
// filled in lazily by geocoding and may stay nil.
type Address struct {
	ID         uint     `gorm:"primaryKey;autoIncrement" json:"id"`
	CustomerID *uint    `gorm:"index" json:"customer_id,omitempty"`
	ProviderID *uint    `gorm:"index" json:"provider_id,omitempty"`
	Line       string   `gorm:"column:address_line;type:varchar(255);not null" json:"address_line"`
	City       string   `gorm:"type:varchar(100);not null" json:"city"`
	State      string   `gorm:"type:varchar(100);not null" json:"state"`
	PostalCode string   `gorm:"type:varchar(20);not null" json:"postal_code"`
	Latitude   *float64 `json:"latitude,omitempty"`
	Longitude  *float64 `json:"longitude,omitempty"`
}

// FullAddress returns the single-line form used for geocoding and display.
func (a *Address) FullAddress() string {
	return fmt.Sprintf("%s, %s, %s %s", a.Line, a.City, a.State, a.PostalCode)
}

// HasCoordinates reports whether the address has been geocoded.
func (a *Address) HasCoordinates() bool {
	return a.Latitude != nil && a.Longitude != nil
}
