package models

import "time"

// Subject types an OTP can be issued for.
const (
	SubjectCustomer = "customer"
	SubjectProvider = "provider"
)

// OTP is one issued verification code. Records are append-only per subject;
// only the most recently created unused one is considered during verification.
type OTP struct {
	ID          uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	SubjectID   uint      `gorm:"not null;index:idx_otp_subject" json:"subject_id"`
	SubjectType string    `gorm:"type:varchar(10);not null;index:idx_otp_subject" json:"subject_type"`
	Code        string    `gorm:"type:varchar(6);not null" json:"-"`
	IsUsed      bool      `gorm:"default:false" json:"is_used"`
	ExpiresAt   time.Time `gorm:"not null" json:"expires_at"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// IsExpired reports whether the code is past its expiry.
func (o *OTP) IsExpired() bool {
	return time.Now().UTC().After(o.ExpiresAt)
}
