package models

import "time"

// Provider is a service professional (plumber, electrician, ...) who sells
// offerings in one or more service categories.
type Provider struct {
	ID                   uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Email                string    `gorm:"type:varchar(100);uniqueIndex;not null" json:"email"`
	Phone                string    `gorm:"type:varchar(15);uniqueIndex;not null" json:"phone"`
	PasswordHash         string    `gorm:"type:varchar(128);not null" json:"-"`
	FirstName            string    `gorm:"type:varchar(50);not null" json:"first_name"`
	LastName             string    `gorm:"type:varchar(50);not null" json:"last_name"`
	VerificationDocument string    `gorm:"type:varchar(255);not null" json:"verification_document"`
	ExperienceYears      int       `gorm:"default:0" json:"experience_years"`
	IsAvailable          bool      `gorm:"default:true" json:"is_available"`
	// AvgRating is nil until the provider has at least one rated completed booking.
	AvgRating  *float64  `json:"avg_rating"`
	IsVerified bool      `gorm:"default:false" json:"is_verified"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`

	Addresses []Address          `gorm:"foreignKey:ProviderID" json:"addresses,omitempty"`
	Services  []ProviderCategory `gorm:"foreignKey:ProviderID" json:"services,omitempty"`
	Bookings  []Booking          `gorm:"foreignKey:ProviderID" json:"bookings,omitempty"`
}

// FullName returns the provider's display name.
func (p *Provider) FullName() string {
	return p.FirstName + " " + p.LastName
}

// ProviderRegistration is the input for creating a provider account.
type ProviderRegistration struct {
	Email                string `json:"email"`
	Phone                string `json:"phone"`
	FirstName            string `json:"first_name"`
	LastName             string `json:"last_name"`
	Password             string `json:"password"`
	VerificationDocument string `json:"verification_document"`
	ExperienceYears      int    `json:"experience_years"`
}
