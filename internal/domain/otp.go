package domain

import "time"

// OTP purposes
const (
	OTPPurposeLogin    = "login"
	OTPPurposeRegister = "register"
)

// OTP Model. The code itself is never stored, only its bcrypt hash.
type OTP struct {
	ID        uint       `gorm:"primaryKey"`
	Phone     string     `gorm:"size:20;not null;index:idx_otp_phone_purpose"`
	Purpose   string     `gorm:"size:20;not null;index:idx_otp_phone_purpose"`
	CodeHash  string     `gorm:"size:100;not null"`
	ExpiresAt time.Time  `gorm:"not null"`
	Attempts  int        `gorm:"not null;default:0"`
	UsedAt    *time.Time // Set once the code is consumed or superseded
	CreatedAt time.Time
}

// ValidOTPPurpose reports whether purpose is a known OTP purpose
func ValidOTPPurpose(purpose string) bool {
	return purpose == OTPPurposeLogin || purpose == OTPPurposeRegister
}
