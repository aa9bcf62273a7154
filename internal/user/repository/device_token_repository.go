package repository

import (
	"errors"

	"gorm.io/gorm"

	"medtrack-backend/internal/user/domain"
)

// DeviceTokenRepository defines the interface for push token operations
type DeviceTokenRepository interface {
	SaveToken(userID uint, token string) (*domain.DeviceToken, error)
	GetTokensByUserID(userID uint) ([]domain.DeviceToken, error)
	DeleteToken(userID uint, token string) error
}

// deviceTokenRepository implements DeviceTokenRepository interface
type deviceTokenRepository struct {
	db *gorm.DB
}

// NewDeviceTokenRepository creates a new instance of deviceTokenRepository
func NewDeviceTokenRepository(db *gorm.DB) DeviceTokenRepository {
	return &deviceTokenRepository{
		db: db,
	}
}

// SaveToken registers a token for a user. The same user+token pair is
// stored once; the token value alone may repeat across users.
func (r *deviceTokenRepository) SaveToken(userID uint, token string) (*domain.DeviceToken, error) {
	var existing domain.DeviceToken
	err := r.db.Where("user_id = ? AND token = ?", userID, token).First(&existing).Error
	if err == nil {
		return &existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	deviceToken := &domain.DeviceToken{
		UserID: userID,
		Token:  token,
	}
	if err := r.db.Create(deviceToken).Error; err != nil {
		return nil, err
	}
	return deviceToken, nil
}

// GetTokensByUserID returns all device tokens for a user
func (r *deviceTokenRepository) GetTokensByUserID(userID uint) ([]domain.DeviceToken, error) {
	var tokens []domain.DeviceToken
	err := r.db.Where("user_id = ?", userID).Find(&tokens).Error
	if err != nil {
		return nil, err
	}
	return tokens, nil
}

// DeleteToken removes a specific token registration for a user
func (r *deviceTokenRepository) DeleteToken(userID uint, token string) error {
	return r.db.Where("user_id = ? AND token = ?", userID, token).Delete(&domain.DeviceToken{}).Error
}
