package usecase

import (
	"errors"
	"fmt"
	"time"

	medicinerepo "medtrack-backend/internal/medicine/repository"
	"medtrack-backend/internal/schedule/domain"
	"medtrack-backend/internal/schedule/repository"
	"medtrack-backend/pkg/timeutil"
)

var (
	ErrScheduleNotFound  = errors.New("schedule not found")
	ErrMedicineNotFound  = errors.New("medicine not found")
	ErrNoTimes           = errors.New("schedule requires at least one time of day")
	ErrInvalidRecurrence = errors.New("invalid recurrence")
)

// CreateInput is the payload for creating a schedule. Times are raw
// "HH:MM" or "HH:MM:SS" strings in SourceZone; empty SourceZone means
// they are already reference-local.
type CreateInput struct {
	Kind       domain.RecurrenceKind
	Interval   int
	Times      []string
	SourceZone string
}

// UpdateInput is a partial update: nil fields are left unchanged. A
// non-nil Times list replaces the stored set all-or-nothing.
type UpdateInput struct {
	Kind       *domain.RecurrenceKind
	Interval   *int
	Times      []string
	SourceZone string
}

// MedicineSnapshot is the nested medicine block returned with schedules.
type MedicineSnapshot struct {
	ID           uint    `json:"id"`
	Name         string  `json:"name"`
	Dosage       *string `json:"dosage,omitempty"`
	Inventory    *int    `json:"inventory,omitempty"`
	LowThreshold *int    `json:"low_threshold,omitempty"`
}

// TimeView is a schedule time rendered in the requested display zone.
type TimeView struct {
	ID        uint   `json:"id"`
	TimeOfDay string `json:"time_of_day"`
}

// ScheduleView is a schedule with its medicine snapshot and times.
type ScheduleView struct {
	ID        uint                  `json:"id"`
	Kind      domain.RecurrenceKind `json:"kind"`
	Interval  int                   `json:"interval"`
	CreatedAt time.Time             `json:"created_at"`
	Medicine  MedicineSnapshot      `json:"medicine"`
	Times     []TimeView            `json:"times"`
}

// ScheduleUsecase is the schedule store: CRUD scoped by the owning
// medicine's owning user, with zone conversion at the boundary.
type ScheduleUsecase interface {
	Create(userID, medicineID uint, in CreateInput) (*ScheduleView, error)
	GetByID(userID, scheduleID uint, displayZone string) (*ScheduleView, error)
	ListForMedicine(userID, medicineID uint, displayZone string) ([]*ScheduleView, error)
	List(userID uint, displayZone string) ([]*ScheduleView, error)
	Update(userID, scheduleID uint, in UpdateInput) (*ScheduleView, error)
	Delete(userID, scheduleID uint) error
}

type scheduleUsecase struct {
	schedules  repository.ScheduleRepository
	medicines  medicinerepo.MedicineRepository
	normalizer *timeutil.Normalizer
}

// NewScheduleUsecase creates a new instance of scheduleUsecase
func NewScheduleUsecase(schedules repository.ScheduleRepository, medicines medicinerepo.MedicineRepository, normalizer *timeutil.Normalizer) ScheduleUsecase {
	return &scheduleUsecase{
		schedules:  schedules,
		medicines:  medicines,
		normalizer: normalizer,
	}
}

func (u *scheduleUsecase) Create(userID, medicineID uint, in CreateInput) (*ScheduleView, error) {
	medicine, err := u.medicines.FindByIDForUser(medicineID, userID)
	if err != nil {
		return nil, err
	}
	if medicine == nil {
		return nil, ErrMedicineNotFound
	}

	if in.Interval == 0 && in.Kind == domain.RecurrenceDaily {
		in.Interval = 1
	}
	if err := validateRecurrence(in.Kind, in.Interval); err != nil {
		return nil, err
	}
	if len(in.Times) == 0 {
		return nil, ErrNoTimes
	}

	times, err := u.normalizeTimes(in.Times, in.SourceZone)
	if err != nil {
		return nil, err
	}

	// Creating the schedule with its times in one write keeps a failed
	// create from leaving a timeless schedule behind.
	schedule := &domain.Schedule{
		MedicineID: medicine.ID,
		Kind:       in.Kind,
		Interval:   in.Interval,
		Times:      times,
	}
	if err := u.schedules.Create(schedule); err != nil {
		return nil, err
	}

	return u.GetByID(userID, schedule.ID, "")
}

func (u *scheduleUsecase) GetByID(userID, scheduleID uint, displayZone string) (*ScheduleView, error) {
	schedule, err := u.schedules.FindByIDForUser(scheduleID, userID)
	if err != nil {
		return nil, err
	}
	if schedule == nil {
		return nil, ErrScheduleNotFound
	}
	return u.toView(schedule, displayZone)
}

func (u *scheduleUsecase) ListForMedicine(userID, medicineID uint, displayZone string) ([]*ScheduleView, error) {
	schedules, err := u.schedules.FindByMedicineForUser(medicineID, userID)
	if err != nil {
		return nil, err
	}
	return u.toViews(schedules, displayZone)
}

func (u *scheduleUsecase) List(userID uint, displayZone string) ([]*ScheduleView, error) {
	schedules, err := u.schedules.FindByUser(userID)
	if err != nil {
		return nil, err
	}
	return u.toViews(schedules, displayZone)
}

func (u *scheduleUsecase) Update(userID, scheduleID uint, in UpdateInput) (*ScheduleView, error) {
	schedule, err := u.schedules.FindByIDForUser(scheduleID, userID)
	if err != nil {
		return nil, err
	}
	if schedule == nil {
		return nil, ErrScheduleNotFound
	}

	if in.Kind != nil {
		schedule.Kind = *in.Kind
	}
	if in.Interval != nil {
		schedule.Interval = *in.Interval
	}
	if err := validateRecurrence(schedule.Kind, schedule.Interval); err != nil {
		return nil, err
	}
	if err := u.schedules.Update(schedule); err != nil {
		return nil, err
	}

	if in.Times != nil {
		if len(in.Times) == 0 {
			return nil, ErrNoTimes
		}
		times, err := u.normalizeTimes(in.Times, in.SourceZone)
		if err != nil {
			return nil, err
		}
		if err := u.schedules.ReplaceTimes(schedule.ID, times); err != nil {
			return nil, err
		}
	}

	return u.GetByID(userID, scheduleID, "")
}

func (u *scheduleUsecase) Delete(userID, scheduleID uint) error {
	schedule, err := u.schedules.FindByIDForUser(scheduleID, userID)
	if err != nil {
		return err
	}
	if schedule == nil {
		return ErrScheduleNotFound
	}
	return u.schedules.Delete(schedule.ID)
}

func (u *scheduleUsecase) normalizeTimes(raw []string, sourceZone string) ([]domain.ScheduleTime, error) {
	times := make([]domain.ScheduleTime, 0, len(raw))
	for _, s := range raw {
		tod, err := u.normalizer.ToCanonicalString(s, sourceZone)
		if err != nil {
			return nil, err
		}
		times = append(times, domain.ScheduleTime{TimeOfDay: tod})
	}
	return times, nil
}

func (u *scheduleUsecase) toViews(schedules []*domain.Schedule, displayZone string) ([]*ScheduleView, error) {
	views := make([]*ScheduleView, 0, len(schedules))
	for _, schedule := range schedules {
		view, err := u.toView(schedule, displayZone)
		if err != nil {
			return nil, err
		}
		views = append(views, view)
	}
	return views, nil
}

func (u *scheduleUsecase) toView(schedule *domain.Schedule, displayZone string) (*ScheduleView, error) {
	view := &ScheduleView{
		ID:        schedule.ID,
		Kind:      schedule.Kind,
		Interval:  schedule.Interval,
		CreatedAt: schedule.CreatedAt,
		Times:     make([]TimeView, 0, len(schedule.Times)),
	}
	if schedule.Medicine != nil {
		view.Medicine = MedicineSnapshot{
			ID:           schedule.Medicine.ID,
			Name:         schedule.Medicine.Name,
			Dosage:       schedule.Medicine.Dosage,
			Inventory:    schedule.Medicine.Inventory,
			LowThreshold: schedule.Medicine.LowThreshold,
		}
	}
	for _, t := range schedule.Times {
		display, err := u.normalizer.ToDisplay(t.TimeOfDay, displayZone)
		if err != nil {
			return nil, err
		}
		view.Times = append(view.Times, TimeView{ID: t.ID, TimeOfDay: display.String()})
	}
	return view, nil
}

func validateRecurrence(kind domain.RecurrenceKind, interval int) error {
	if !kind.Valid() {
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidRecurrence, kind)
	}
	if interval < 1 {
		return fmt.Errorf("%w: interval must be a positive integer", ErrInvalidRecurrence)
	}
	return nil
}
