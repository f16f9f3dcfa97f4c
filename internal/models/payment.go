package models

import "time"

// Payment status values.
const (
	PaymentStatusPending    = "pending"
	PaymentStatusSuccessful = "successful"
	PaymentStatusFailed     = "failed"
	PaymentStatusRefunded   = "refunded"
)

// Accepted payment methods.
var PaymentMethods = []string{"credit_card", "debit_card", "paypal", "bank_transfer"}

// Payment records the (simulated) capture for a booking. A booking has at
// most one payment.
type Payment struct {
	ID            uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	BookingID     uint      `gorm:"not null;uniqueIndex" json:"booking_id"`
	Amount        float64   `gorm:"not null" json:"amount"`
	PaymentMethod string    `gorm:"type:varchar(50);not null" json:"payment_method"`
	TransactionID string    `gorm:"type:varchar(100);uniqueIndex;not null" json:"transaction_id"`
	Status        string    `gorm:"type:varchar(20);not null;default:pending" json:"status"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
