package domain

import "time"

// Type enumerates the notification categories.
type Type string

const (
	TypeReminder  Type = "reminder"
	TypeInventory Type = "inventory"
	TypeSystem    Type = "system"
)

// RelatedMedicine is the related-entity tag the scheduler writes; the
// dedup lookups key on it.
const RelatedMedicine = "medicine"

// Notification is a persisted alert for one user. RelatedEntityType and
// RelatedEntityID are a weak reference used only for lookup, never
// enforced as a foreign key.
type Notification struct {
	ID                uint      `json:"id" gorm:"primaryKey"`
	UserID            uint      `json:"user_id" gorm:"index"`
	Title             string    `json:"title" gorm:"not null"`
	Message           string    `json:"message" gorm:"not null"`
	Type              Type      `json:"type" gorm:"column:notification_type;not null"`
	IsRead            bool      `json:"is_read" gorm:"default:false"`
	RelatedEntityType *string   `json:"related_entity_type,omitempty"`
	RelatedEntityID   *uint     `json:"related_entity_id,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
}
