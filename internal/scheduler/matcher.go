package scheduler

import (
	"context"
	"fmt"
	"log"
	"time"

	notifdomain "medtrack-backend/internal/notification/domain"
	scheduledomain "medtrack-backend/internal/schedule/domain"
)

// ScheduleSource is the per-tick read of every schedule with its times
// and owning medicine loaded.
type ScheduleSource interface {
	FindAll() ([]*scheduledomain.Schedule, error)
}

// ReminderDedup answers whether a reminder already fired for a medicine
// within the current minute window.
type ReminderDedup interface {
	ReminderExistsSince(medicineID uint, since time.Time) (bool, error)
}

// Emitter persists a notification and fans it out to the user's devices.
type Emitter interface {
	Emit(ctx context.Context, userID uint, title, message string, typ notifdomain.Type, relatedType *string, relatedID *uint) (*notifdomain.Notification, error)
}

// ReminderMatcher scans schedule times against the current wall-clock
// minute and emits one reminder per matching medicine per minute.
type ReminderMatcher struct {
	schedules ScheduleSource
	dedup     ReminderDedup
	emitter   Emitter
	location  *time.Location

	// enforceInterval makes every_n_days schedules skip days counted from
	// their creation date. The shipped behavior leaves this off: stored
	// intervals fire daily.
	enforceInterval bool
}

// NewReminderMatcher creates a matcher working in the reference zone.
func NewReminderMatcher(schedules ScheduleSource, dedup ReminderDedup, emitter Emitter, location *time.Location, enforceInterval bool) *ReminderMatcher {
	return &ReminderMatcher{
		schedules:       schedules,
		dedup:           dedup,
		emitter:         emitter,
		location:        location,
		enforceInterval: enforceInterval,
	}
}

// Run executes one matcher pass for the given moment. Failures emitting
// a single reminder are logged and do not abort the remaining schedules;
// only a failed schedule listing aborts the pass.
func (m *ReminderMatcher) Run(ctx context.Context, now time.Time) error {
	local := now.In(m.location)

	schedules, err := m.schedules.FindAll()
	if err != nil {
		return fmt.Errorf("listing schedules: %w", err)
	}

	for _, schedule := range schedules {
		medicine := schedule.Medicine
		if medicine == nil {
			// Orphaned schedule, nothing to remind about.
			continue
		}
		if !m.dueToday(schedule, local) {
			continue
		}

		for _, st := range schedule.Times {
			if st.TimeOfDay.Hour != local.Hour() || st.TimeOfDay.Minute != local.Minute() {
				continue
			}

			minuteStart := time.Date(local.Year(), local.Month(), local.Day(),
				st.TimeOfDay.Hour, st.TimeOfDay.Minute, 0, 0, m.location)
			exists, err := m.dedup.ReminderExistsSince(medicine.ID, minuteStart)
			if err != nil {
				log.Printf("[Scheduler] Reminder dedup check failed for medicine %d: %v", medicine.ID, err)
				continue
			}
			if exists {
				continue
			}

			dosage := "dose"
			if medicine.Dosage != nil && *medicine.Dosage != "" {
				dosage = *medicine.Dosage
			}
			title := fmt.Sprintf("Time to take %s", medicine.Name)
			message := fmt.Sprintf("Please take %s (%s) now.", medicine.Name, dosage)

			relatedType := notifdomain.RelatedMedicine
			relatedID := medicine.ID
			if _, err := m.emitter.Emit(ctx, medicine.UserID, title, message, notifdomain.TypeReminder, &relatedType, &relatedID); err != nil {
				log.Printf("[Scheduler] Failed to emit reminder for medicine %d: %v", medicine.ID, err)
				continue
			}
			log.Printf("[Scheduler] Reminder created for user %d - medicine %s", medicine.UserID, medicine.Name)
		}
	}
	return nil
}

// dueToday applies the recurrence interval when enforcement is on. Days
// are counted in the reference zone from the schedule's creation date.
func (m *ReminderMatcher) dueToday(schedule *scheduledomain.Schedule, local time.Time) bool {
	if !m.enforceInterval {
		return true
	}
	if schedule.Kind != scheduledomain.RecurrenceEveryNDays || schedule.Interval <= 1 {
		return true
	}

	created := schedule.CreatedAt.In(m.location)
	createdDay := time.Date(created.Year(), created.Month(), created.Day(), 0, 0, 0, 0, m.location)
	today := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, m.location)
	daysSince := int(today.Sub(createdDay).Hours() / 24)
	if daysSince < 0 {
		return false
	}
	return daysSince%schedule.Interval == 0
}
