package domain

import "time"

// DeviceToken is a push destination registered by a user. The token value
// is deliberately not unique: the same device can be registered by
// multiple accounts, and one account can register multiple devices.
type DeviceToken struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"user_id" gorm:"index;not null"`
	Token     string    `json:"-" gorm:"index"`
	CreatedAt time.Time `json:"created_at"`
}
