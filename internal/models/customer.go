package models

import "time"

// Customer is a person who books services on the platform.
type Customer struct {
	ID           uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Email        string    `gorm:"type:varchar(100);uniqueIndex;not null" json:"email"`
	Phone        string    `gorm:"type:varchar(15);uniqueIndex;not null" json:"phone"`
	PasswordHash string    `gorm:"type:varchar(128);not null" json:"-"`
	FirstName    string    `gorm:"type:varchar(50);not null" json:"first_name"`
	LastName     string    `gorm:"type:varchar(50);not null" json:"last_name"`
	IsVerified   bool      `gorm:"default:false" json:"is_verified"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`

	Addresses []Address `gorm:"foreignKey:CustomerID" json:"addresses,omitempty"`
	Bookings  []Booking `gorm:"foreignKey:CustomerID" json:"bookings,omitempty"`
}

// FullName returns the customer's display name.
func (c *Customer) FullName() string {
	return c.FirstName + " " + c.LastName
}

// CustomerRegistration is the input for creating a customer account.
type CustomerRegistration struct {
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Password  string `json:"password"`
}
