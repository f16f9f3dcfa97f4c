package models

import "time"

// BookingDateLayout is the wire format for booking dates.
const BookingDateLayout = "2006-01-02"

// Booking status values. Transitions are one-way:
// pending -> confirmed -> completed
// pending -> cancelled
// confirmed -> cancelled
const (
	BookingStatusPending   = "pending"
	BookingStatusConfirmed = "confirmed"
	BookingStatusCompleted = "completed"
	BookingStatusCancelled = "cancelled"
)

// allowedTransitions encodes the booking state flow as data.
var allowedTransitions = map[string][]string{
	BookingStatusPending:   {BookingStatusConfirmed, BookingStatusCancelled},
	BookingStatusConfirmed: {BookingStatusCompleted, BookingStatusCancelled},
}

// CanTransition reports whether a booking may move from one status to another.
// Completed and cancelled are terminal.
func CanTransition(from, to string) bool {
	for _, s := range allowedTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// DayTimeSlots is the shared slot enumeration; conflict detection compares
// slot labels as exact strings, so every caller must book against this list.
var DayTimeSlots = []string{
	"09:00-10:00", "10:00-11:00", "11:00-12:00",
	"13:00-14:00", "14:00-15:00", "15:00-16:00",
	"16:00-17:00", "17:00-18:00",
}

// Booking is a customer's reservation of a provider for one time slot.
type Booking struct {
	ID         uint `gorm:"primaryKey;autoIncrement" json:"id"`
	CustomerID uint `gorm:"not null;index" json:"customer_id"`
	ProviderID uint `gorm:"not null;index:idx_provider_schedule" json:"provider_id"`
	CategoryID uint `gorm:"not null;index" json:"category_id"`
	AddressID  uint `gorm:"not null" json:"address_id"`

	BookingDate time.Time `gorm:"type:date;not null;index:idx_provider_schedule" json:"booking_date"`
	TimeSlot    string    `gorm:"type:varchar(20);not null;index:idx_provider_schedule" json:"time_slot"`
	Status      string    `gorm:"type:varchar(20);not null;default:pending" json:"status"`

	// Rating is set at most once, after completion.
	Rating        *int   `json:"rating,omitempty"`
	RatingComment string `gorm:"type:text" json:"rating_comment,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`

	Payment  *Payment         `gorm:"foreignKey:BookingID" json:"payment,omitempty"`
	Category *ServiceCategory `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
}

// IsActive reports whether the booking still occupies its provider's slot.
func (b *Booking) IsActive() bool {
	return b.Status == BookingStatusPending || b.Status == BookingStatusConfirmed
}

// BookingRequest is the input for creating a booking.
type BookingRequest struct {
	CustomerID  uint   `json:"customer_id"`
	ProviderID  uint   `json:"provider_id"`
	CategoryID  uint   `json:"category_id"`
	AddressID   uint   `json:"address_id"`
	BookingDate string `json:"booking_date"`
	TimeSlot    string `json:"time_slot"`
}
