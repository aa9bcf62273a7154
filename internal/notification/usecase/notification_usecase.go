package usecase

import (
	"context"
	"errors"
	"log"

	"medtrack-backend/internal/notification/domain"
	"medtrack-backend/internal/notification/repository"
	userrepo "medtrack-backend/internal/user/repository"
)

var ErrNotificationNotFound = errors.New("notification not found")

// Pusher fans a push message out to a set of device tokens and reports
// which tokens were rejected. pkg/fcm implements it; a nil Pusher is a
// valid silent no-op mode.
type Pusher interface {
	SendToDevices(ctx context.Context, tokens []string, title, body string) ([]string, error)
}

// NotificationUsecase persists notifications and fans them out to the
// owning user's registered devices.
type NotificationUsecase interface {
	// Emit persists an unread notification and attempts push delivery to
	// every device token of the user. Per-token failures are logged and
	// swallowed; they never roll back the persisted row.
	Emit(ctx context.Context, userID uint, title, message string, typ domain.Type, relatedType *string, relatedID *uint) (*domain.Notification, error)
	List(userID uint, filter repository.ListFilter) ([]*domain.Notification, error)
	GetByID(userID, notificationID uint) (*domain.Notification, error)
	SetRead(userID, notificationID uint, read bool) (*domain.Notification, error)
	MarkAllRead(userID uint) error
	Delete(userID, notificationID uint) error
	Stats(userID uint) (*repository.Stats, error)
}

type notificationUsecase struct {
	notifications repository.NotificationRepository
	tokens        userrepo.DeviceTokenRepository
	pusher        Pusher
}

// NewNotificationUsecase creates a new instance of notificationUsecase.
// pusher may be nil when push credentials are not configured.
func NewNotificationUsecase(notifications repository.NotificationRepository, tokens userrepo.DeviceTokenRepository, pusher Pusher) NotificationUsecase {
	return &notificationUsecase{
		notifications: notifications,
		tokens:        tokens,
		pusher:        pusher,
	}
}

func (u *notificationUsecase) Emit(ctx context.Context, userID uint, title, message string, typ domain.Type, relatedType *string, relatedID *uint) (*domain.Notification, error) {
	notification := &domain.Notification{
		UserID:            userID,
		Title:             title,
		Message:           message,
		Type:              typ,
		IsRead:            false,
		RelatedEntityType: relatedType,
		RelatedEntityID:   relatedID,
	}
	if err := u.notifications.Create(notification); err != nil {
		return nil, err
	}

	u.pushToDevices(ctx, userID, title, message)
	return notification, nil
}

// pushToDevices is best-effort: rejected tokens must not prevent
// delivery to the user's other tokens, and no push outcome ever rolls
// back the persisted notification.
func (u *notificationUsecase) pushToDevices(ctx context.Context, userID uint, title, message string) {
	if u.pusher == nil {
		return
	}

	tokens, err := u.tokens.GetTokensByUserID(userID)
	if err != nil {
		log.Printf("[Emitter] Error getting device tokens for user %d: %v", userID, err)
		return
	}
	if len(tokens) == 0 {
		return
	}

	values := make([]string, 0, len(tokens))
	for _, t := range tokens {
		values = append(values, t.Token)
	}

	failed, err := u.pusher.SendToDevices(ctx, values, title, message)
	if err != nil {
		log.Printf("[Emitter] Push delivery failed for user %d: %v", userID, err)
		return
	}

	// A rejected token is a stale registration; drop it so the next
	// fan-out stops retrying it.
	for _, token := range failed {
		if err := u.tokens.DeleteToken(userID, token); err != nil {
			log.Printf("[Emitter] Failed to remove stale token for user %d: %v", userID, err)
		}
	}
}

func (u *notificationUsecase) List(userID uint, filter repository.ListFilter) ([]*domain.Notification, error) {
	return u.notifications.FindByUser(userID, filter)
}

func (u *notificationUsecase) GetByID(userID, notificationID uint) (*domain.Notification, error) {
	notification, err := u.notifications.FindByIDForUser(notificationID, userID)
	if err != nil {
		return nil, err
	}
	if notification == nil {
		return nil, ErrNotificationNotFound
	}
	return notification, nil
}

func (u *notificationUsecase) SetRead(userID, notificationID uint, read bool) (*domain.Notification, error) {
	notification, err := u.GetByID(userID, notificationID)
	if err != nil {
		return nil, err
	}
	notification.IsRead = read
	if err := u.notifications.Update(notification); err != nil {
		return nil, err
	}
	return notification, nil
}

func (u *notificationUsecase) MarkAllRead(userID uint) error {
	return u.notifications.MarkAllRead(userID)
}

func (u *notificationUsecase) Delete(userID, notificationID uint) error {
	notification, err := u.GetByID(userID, notificationID)
	if err != nil {
		return err
	}
	return u.notifications.Delete(notification.ID)
}

func (u *notificationUsecase) Stats(userID uint) (*repository.Stats, error) {
	return u.notifications.GetStats(userID)
}
