package repository

import (
	"errors"

	"gorm.io/gorm"

	"medtrack-backend/internal/schedule/domain"
)

// ScheduleRepository defines the interface for schedule data access.
// User scoping goes through the owning medicine; the repository itself
// does no authorization beyond that join.
type ScheduleRepository interface {
	// Create persists the schedule and any attached times in one write.
	Create(schedule *domain.Schedule) error
	// ReplaceTimes swaps the full time list in one transaction.
	ReplaceTimes(scheduleID uint, times []domain.ScheduleTime) error
	FindByIDForUser(id, userID uint) (*domain.Schedule, error)
	FindByMedicineForUser(medicineID, userID uint) ([]*domain.Schedule, error)
	FindByUser(userID uint) ([]*domain.Schedule, error)
	// FindAll returns every schedule with times and medicine loaded; this
	// is the matcher's per-tick read.
	FindAll() ([]*domain.Schedule, error)
	Update(schedule *domain.Schedule) error
	Delete(id uint) error
}

// gormScheduleRepository implements ScheduleRepository using GORM
type gormScheduleRepository struct {
	db *gorm.DB
}

// NewScheduleRepository creates a new GORM-based ScheduleRepository
func NewScheduleRepository(db *gorm.DB) ScheduleRepository {
	return &gormScheduleRepository{db: db}
}

func (r *gormScheduleRepository) Create(schedule *domain.Schedule) error {
	return r.db.Create(schedule).Error
}

func (r *gormScheduleRepository) ReplaceTimes(scheduleID uint, times []domain.ScheduleTime) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("schedule_id = ?", scheduleID).Delete(&domain.ScheduleTime{}).Error; err != nil {
			return err
		}
		for i := range times {
			times[i].ID = 0
			times[i].ScheduleID = scheduleID
		}
		return tx.Create(&times).Error
	})
}

func (r *gormScheduleRepository) FindByIDForUser(id, userID uint) (*domain.Schedule, error) {
	var schedule domain.Schedule
	err := r.db.Preload("Times").Preload("Medicine").
		Joins("JOIN medicines ON medicines.id = schedules.medicine_id").
		Where("schedules.id = ? AND medicines.user_id = ?", id, userID).
		First(&schedule).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &schedule, nil
}

func (r *gormScheduleRepository) FindByMedicineForUser(medicineID, userID uint) ([]*domain.Schedule, error) {
	var schedules []*domain.Schedule
	err := r.db.Preload("Times").Preload("Medicine").
		Joins("JOIN medicines ON medicines.id = schedules.medicine_id").
		Where("medicines.id = ? AND medicines.user_id = ?", medicineID, userID).
		Find(&schedules).Error
	return schedules, err
}

func (r *gormScheduleRepository) FindByUser(userID uint) ([]*domain.Schedule, error) {
	var schedules []*domain.Schedule
	err := r.db.Preload("Times").Preload("Medicine").
		Joins("JOIN medicines ON medicines.id = schedules.medicine_id").
		Where("medicines.user_id = ?", userID).
		Find(&schedules).Error
	return schedules, err
}

func (r *gormScheduleRepository) FindAll() ([]*domain.Schedule, error) {
	var schedules []*domain.Schedule
	err := r.db.Preload("Times").Preload("Medicine").Find(&schedules).Error
	return schedules, err
}

func (r *gormScheduleRepository) Update(schedule *domain.Schedule) error {
	return r.db.Omit("Times", "Medicine").Save(schedule).Error
}

func (r *gormScheduleRepository) Delete(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("schedule_id = ?", id).Delete(&domain.ScheduleTime{}).Error; err != nil {
			return err
		}
		return tx.Delete(&domain.Schedule{}, "id = ?", id).Error
	})
}
