package repository

import (
	"errors"

	"gorm.io/gorm"

	"medtrack-backend/internal/medicine/domain"
	scheduledomain "medtrack-backend/internal/schedule/domain"
)

// MedicineRepository defines the interface for medicine data access
type MedicineRepository interface {
	Create(medicine *domain.Medicine) error
	FindByID(id uint) (*domain.Medicine, error)
	FindByIDForUser(id, userID uint) (*domain.Medicine, error)
	FindByUser(userID uint) ([]*domain.Medicine, error)
	Update(medicine *domain.Medicine) error
	// Delete removes the medicine together with its schedules, schedule
	// times and intake logs in one transaction.
	Delete(id uint) error
	// FindInventoryTracked returns medicines with both an inventory count
	// and a low-stock threshold set.
	FindInventoryTracked() ([]*domain.Medicine, error)
}

// gormMedicineRepository implements MedicineRepository using GORM
type gormMedicineRepository struct {
	db *gorm.DB
}

// NewMedicineRepository creates a new GORM-based MedicineRepository
func NewMedicineRepository(db *gorm.DB) MedicineRepository {
	return &gormMedicineRepository{db: db}
}

func (r *gormMedicineRepository) Create(medicine *domain.Medicine) error {
	return r.db.Create(medicine).Error
}

func (r *gormMedicineRepository) FindByID(id uint) (*domain.Medicine, error) {
	var medicine domain.Medicine
	err := r.db.Where("id = ?", id).First(&medicine).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &medicine, nil
}

func (r *gormMedicineRepository) FindByIDForUser(id, userID uint) (*domain.Medicine, error) {
	var medicine domain.Medicine
	err := r.db.Where("id = ? AND user_id = ?", id, userID).First(&medicine).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &medicine, nil
}

func (r *gormMedicineRepository) FindByUser(userID uint) ([]*domain.Medicine, error) {
	var medicines []*domain.Medicine
	err := r.db.Where("user_id = ?", userID).Find(&medicines).Error
	return medicines, err
}

func (r *gormMedicineRepository) Update(medicine *domain.Medicine) error {
	return r.db.Save(medicine).Error
}

func (r *gormMedicineRepository) Delete(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		scheduleIDs := tx.Model(&scheduledomain.Schedule{}).Select("id").Where("medicine_id = ?", id)
		if err := tx.Where("schedule_id IN (?)", scheduleIDs).Delete(&scheduledomain.ScheduleTime{}).Error; err != nil {
			return err
		}
		if err := tx.Where("medicine_id = ?", id).Delete(&scheduledomain.Schedule{}).Error; err != nil {
			return err
		}
		if err := tx.Where("medicine_id = ?", id).Delete(&domain.IntakeLog{}).Error; err != nil {
			return err
		}
		return tx.Delete(&domain.Medicine{}, "id = ?", id).Error
	})
}

func (r *gormMedicineRepository) FindInventoryTracked() ([]*domain.Medicine, error) {
	var medicines []*domain.Medicine
	err := r.db.Where("inventory IS NOT NULL AND low_threshold IS NOT NULL").Find(&medicines).Error
	return medicines, err
}
