package usecase

import (
	"errors"

	"medtrack-backend/internal/user/domain"
	"medtrack-backend/internal/user/repository"
)

var (
	ErrEmailTaken   = errors.New("email already registered")
	ErrUserNotFound = errors.New("user not found")
)

// UserUsecase is the user directory the notification side of the system
// reads from: accounts plus their registered push destinations.
type UserUsecase interface {
	Register(fullName, email, password string) (*domain.User, error)
	GetByID(id uint) (*domain.User, error)
	// Delete removes the account and everything it owns: device tokens,
	// medicines, schedules, intake logs and notifications.
	Delete(id uint) error
	RegisterDeviceToken(userID uint, token string) (*domain.DeviceToken, error)
	UnregisterDeviceToken(userID uint, token string) error
	DeviceTokens(userID uint) ([]domain.DeviceToken, error)
}

type userUsecase struct {
	users  repository.UserRepository
	tokens repository.DeviceTokenRepository
}

// NewUserUsecase creates a new instance of userUsecase
func NewUserUsecase(users repository.UserRepository, tokens repository.DeviceTokenRepository) UserUsecase {
	return &userUsecase{
		users:  users,
		tokens: tokens,
	}
}

func (u *userUsecase) Register(fullName, email, password string) (*domain.User, error) {
	existing, err := u.users.FindByEmail(email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	hash, err := repository.HashPassword(password)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		FullName:     fullName,
		Email:        email,
		PasswordHash: hash,
		IsActive:     true,
	}
	if err := u.users.Create(user); err != nil {
		return nil, err
	}
	return user, nil
}

func (u *userUsecase) GetByID(id uint) (*domain.User, error) {
	user, err := u.users.FindByID(id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

func (u *userUsecase) Delete(id uint) error {
	user, err := u.users.FindByID(id)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrUserNotFound
	}
	return u.users.Delete(user.ID)
}

func (u *userUsecase) RegisterDeviceToken(userID uint, token string) (*domain.DeviceToken, error) {
	user, err := u.users.FindByID(userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return u.tokens.SaveToken(userID, token)
}

func (u *userUsecase) UnregisterDeviceToken(userID uint, token string) error {
	return u.tokens.DeleteToken(userID, token)
}

func (u *userUsecase) DeviceTokens(userID uint) ([]domain.DeviceToken, error) {
	return u.tokens.GetTokensByUserID(userID)
}
