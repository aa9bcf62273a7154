package domain

// Medicine is an item in a user's cabinet. Inventory and LowThreshold are
// pointers: nil inventory means the count is not tracked, nil threshold
// means low-stock alerts are disabled for this medicine.
type Medicine struct {
	ID           uint    `json:"id" gorm:"primaryKey"`
	UserID       uint    `json:"user_id" gorm:"index"`
	Name         string  `json:"name" gorm:"not null"`
	Dosage       *string `json:"dosage,omitempty"`
	Inventory    *int    `json:"inventory,omitempty"`
	LowThreshold *int    `json:"low_threshold,omitempty"`
}

// InventoryTracked reports whether both the count and the alert threshold
// are set, which is what the low-stock pass requires.
func (m *Medicine) InventoryTracked() bool {
	return m.Inventory != nil && m.LowThreshold != nil
}
