package domain

import (
	"time"

	medicinedomain "medtrack-backend/internal/medicine/domain"
	"medtrack-backend/pkg/timeutil"
)

// RecurrenceKind enumerates how often a schedule repeats.
type RecurrenceKind string

const (
	RecurrenceDaily      RecurrenceKind = "daily"
	RecurrenceEveryNDays RecurrenceKind = "every_n_days"
)

// Valid reports whether the kind is one the matcher understands.
func (k RecurrenceKind) Valid() bool {
	return k == RecurrenceDaily || k == RecurrenceEveryNDays
}

// Schedule is a dosing plan for one medicine: a recurrence descriptor
// plus one or more times of day. Interval means "every N occurrences";
// 1 is every occurrence.
type Schedule struct {
	ID         uint           `json:"id" gorm:"primaryKey"`
	MedicineID uint           `json:"medicine_id" gorm:"index"`
	Kind       RecurrenceKind `json:"kind" gorm:"column:recurrence_kind;not null"`
	Interval   int            `json:"interval" gorm:"column:recurrence_interval;default:1"`
	CreatedAt  time.Time      `json:"created_at"`

	Times    []ScheduleTime           `json:"times" gorm:"foreignKey:ScheduleID;constraint:OnDelete:CASCADE"`
	Medicine *medicinedomain.Medicine `json:"-" gorm:"foreignKey:MedicineID;constraint:OnDelete:CASCADE"`
}

// ScheduleTime is one firing time of day, always stored in the reference
// zone. Conversion from the caller's zone happens at the boundary, never
// at match time.
type ScheduleTime struct {
	ID         uint               `json:"id" gorm:"primaryKey"`
	ScheduleID uint               `json:"schedule_id" gorm:"index"`
	TimeOfDay  timeutil.TimeOfDay `json:"time_of_day" gorm:"type:time;not null"`
}
