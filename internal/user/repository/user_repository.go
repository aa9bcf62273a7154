package repository

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	medicinedomain "medtrack-backend/internal/medicine/domain"
	notifdomain "medtrack-backend/internal/notification/domain"
	scheduledomain "medtrack-backend/internal/schedule/domain"
	"medtrack-backend/internal/user/domain"
)

// UserRepository defines the user directory data access the rest of the
// system depends on.
type UserRepository interface {
	Create(user *domain.User) error
	FindByID(id uint) (*domain.User, error)
	FindByEmail(email string) (*domain.User, error)
	Update(user *domain.User) error
	// Delete removes the user together with every owned row: device
	// tokens, medicines with their schedules, schedule times and intake
	// logs, and notifications, in one transaction.
	Delete(id uint) error
}

// userRepository implements UserRepository interface
type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new instance of userRepository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{
		db: db,
	}
}

func (r *userRepository) Create(user *domain.User) error {
	return r.db.Create(user).Error
}

func (r *userRepository) FindByID(id uint) (*domain.User, error) {
	var user domain.User
	err := r.db.Where("id = ?", id).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByEmail(email string) (*domain.User, error) {
	var user domain.User
	err := r.db.Where("email = ?", email).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) Update(user *domain.User) error {
	return r.db.Save(user).Error
}

func (r *userRepository) Delete(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		medicineIDs := tx.Model(&medicinedomain.Medicine{}).Select("id").Where("user_id = ?", id)
		scheduleIDs := tx.Model(&scheduledomain.Schedule{}).Select("id").Where("medicine_id IN (?)", medicineIDs)
		if err := tx.Where("schedule_id IN (?)", scheduleIDs).Delete(&scheduledomain.ScheduleTime{}).Error; err != nil {
			return err
		}
		if err := tx.Where("medicine_id IN (?)", medicineIDs).Delete(&scheduledomain.Schedule{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", id).Delete(&medicinedomain.IntakeLog{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", id).Delete(&medicinedomain.Medicine{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", id).Delete(&notifdomain.Notification{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", id).Delete(&domain.DeviceToken{}).Error; err != nil {
			return err
		}
		return tx.Delete(&domain.User{}, "id = ?", id).Error
	})
}

// HashPassword hashes a password using bcrypt
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

// CheckPassword compares a plaintext password with a stored hash
func CheckPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
