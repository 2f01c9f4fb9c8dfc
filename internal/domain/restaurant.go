package domain

import "time"

// Restaurant belongs to exactly one owner. PublicID is the non-guessable
// identifier embedded in the shareable menu link and QR code.
type Restaurant struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	PublicID  string    `gorm:"uniqueIndex;size:36;not null" json:"public_id"`
	Name      string    `gorm:"size:120;not null" json:"name"`
	Location  string    `gorm:"size:255;not null" json:"location"`
	OwnerID   uint      `gorm:"not null;index:idx_restaurants_owner" json:"owner_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
