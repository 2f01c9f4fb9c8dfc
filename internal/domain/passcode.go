package domain

import "time"

// Passcode is a one-time login code issued to an email address. Records
// are deleted on successful verification; expired rows are left in place
// and filtered out of lookups by expires_at.
type Passcode struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Email     string    `gorm:"size:255;not null;index:idx_passcodes_email" json:"email"`
	Code      string    `gorm:"size:12;not null" json:"-"`
	ExpiresAt time.Time `gorm:"not null" json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}
