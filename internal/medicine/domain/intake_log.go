package domain

import "time"

// IntakeLog records a dose taken by a user. Creating one decrements the
// medicine's inventory (floored at 0); deleting one restores it by 1.
type IntakeLog struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	MedicineID uint      `json:"medicine_id" gorm:"index"`
	UserID     uint      `json:"user_id" gorm:"index"`
	TakenAt    time.Time `json:"taken_at"`

	Medicine *Medicine `json:"-" gorm:"foreignKey:MedicineID;constraint:OnDelete:CASCADE"`
}
