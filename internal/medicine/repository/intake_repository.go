package repository

import (
	"errors"

	"gorm.io/gorm"

	"medtrack-backend/internal/medicine/domain"
)

// IntakeRepository defines the interface for intake log data access
type IntakeRepository interface {
	Create(intake *domain.IntakeLog) error
	FindByIDForUser(id, userID uint) (*domain.IntakeLog, error)
	// FindByUser returns intake logs newest first with the medicine loaded.
	FindByUser(userID uint) ([]*domain.IntakeLog, error)
	Delete(id uint) error
}

// gormIntakeRepository implements IntakeRepository using GORM
type gormIntakeRepository struct {
	db *gorm.DB
}

// NewIntakeRepository creates a new GORM-based IntakeRepository
func NewIntakeRepository(db *gorm.DB) IntakeRepository {
	return &gormIntakeRepository{db: db}
}

func (r *gormIntakeRepository) Create(intake *domain.IntakeLog) error {
	return r.db.Create(intake).Error
}

func (r *gormIntakeRepository) FindByIDForUser(id, userID uint) (*domain.IntakeLog, error) {
	var intake domain.IntakeLog
	err := r.db.Where("id = ? AND user_id = ?", id, userID).First(&intake).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &intake, nil
}

func (r *gormIntakeRepository) FindByUser(userID uint) ([]*domain.IntakeLog, error) {
	var intakes []*domain.IntakeLog
	err := r.db.Preload("Medicine").
		Where("user_id = ?", userID).
		Order("taken_at DESC").
		Find(&intakes).Error
	return intakes, err
}

func (r *gormIntakeRepository) Delete(id uint) error {
	return r.db.Delete(&domain.IntakeLog{}, "id = ?", id).Error
}
