package repository

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"medtrack-backend/internal/notification/domain"
)

// ListFilter narrows FindByUser results.
type ListFilter struct {
	UnreadOnly bool
	Type       *domain.Type
	Offset     int
	Limit      int
}

// TypeCount is one row of the per-type stats breakdown.
type TypeCount struct {
	Total  int64 `json:"total"`
	Unread int64 `json:"unread"`
}

// Stats is the notification overview for one user.
type Stats struct {
	Total  int64                     `json:"total"`
	Unread int64                     `json:"unread"`
	ByType map[domain.Type]TypeCount `json:"by_type"`
}

// NotificationRepository defines the interface for notification data
// access, including the two dedup lookups the scheduler relies on.
type NotificationRepository interface {
	Create(notification *domain.Notification) error
	FindByIDForUser(id, userID uint) (*domain.Notification, error)
	FindByUser(userID uint, filter ListFilter) ([]*domain.Notification, error)
	Update(notification *domain.Notification) error
	MarkAllRead(userID uint) error
	Delete(id uint) error
	GetStats(userID uint) (*Stats, error)

	// ReminderExistsSince reports whether a reminder notification for the
	// medicine was created at or after the given moment. The matcher
	// passes the start of the current minute.
	ReminderExistsSince(medicineID uint, since time.Time) (bool, error)
	// InventoryAlertExists reports whether any inventory notification was
	// ever created for the medicine, regardless of age.
	InventoryAlertExists(medicineID uint) (bool, error)
}

// gormNotificationRepository implements NotificationRepository using GORM
type gormNotificationRepository struct {
	db *gorm.DB
}

// NewNotificationRepository creates a new GORM-based NotificationRepository
func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &gormNotificationRepository{db: db}
}

func (r *gormNotificationRepository) Create(notification *domain.Notification) error {
	return r.db.Create(notification).Error
}

func (r *gormNotificationRepository) FindByIDForUser(id, userID uint) (*domain.Notification, error) {
	var notification domain.Notification
	err := r.db.Where("id = ? AND user_id = ?", id, userID).First(&notification).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &notification, nil
}

func (r *gormNotificationRepository) FindByUser(userID uint, filter ListFilter) ([]*domain.Notification, error) {
	query := r.db.Where("user_id = ?", userID)
	if filter.UnreadOnly {
		query = query.Where("is_read = ?", false)
	}
	if filter.Type != nil {
		query = query.Where("notification_type = ?", *filter.Type)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}

	var notifications []*domain.Notification
	err := query.Offset(filter.Offset).Order("created_at DESC").Find(&notifications).Error
	return notifications, err
}

func (r *gormNotificationRepository) Update(notification *domain.Notification) error {
	return r.db.Save(notification).Error
}

func (r *gormNotificationRepository) MarkAllRead(userID uint) error {
	return r.db.Model(&domain.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Update("is_read", true).Error
}

func (r *gormNotificationRepository) Delete(id uint) error {
	return r.db.Delete(&domain.Notification{}, "id = ?", id).Error
}

func (r *gormNotificationRepository) GetStats(userID uint) (*Stats, error) {
	type row struct {
		NotificationType domain.Type
		IsRead           bool
		Count            int64
	}
	var rows []row
	err := r.db.Model(&domain.Notification{}).
		Select("notification_type, is_read, count(*) as count").
		Where("user_id = ?", userID).
		Group("notification_type, is_read").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	stats := &Stats{ByType: make(map[domain.Type]TypeCount)}
	for _, r := range rows {
		entry := stats.ByType[r.NotificationType]
		entry.Total += r.Count
		stats.Total += r.Count
		if !r.IsRead {
			entry.Unread += r.Count
			stats.Unread += r.Count
		}
		stats.ByType[r.NotificationType] = entry
	}
	return stats, nil
}

func (r *gormNotificationRepository) ReminderExistsSince(medicineID uint, since time.Time) (bool, error) {
	var count int64
	err := r.db.Model(&domain.Notification{}).
		Where("related_entity_type = ? AND related_entity_id = ?", domain.RelatedMedicine, medicineID).
		Where("notification_type = ?", domain.TypeReminder).
		Where("created_at >= ?", since).
		Count(&count).Error
	return count > 0, err
}

func (r *gormNotificationRepository) InventoryAlertExists(medicineID uint) (bool, error) {
	var count int64
	err := r.db.Model(&domain.Notification{}).
		Where("related_entity_type = ? AND related_entity_id = ?", domain.RelatedMedicine, medicineID).
		Where("notification_type = ?", domain.TypeInventory).
		Count(&count).Error
	return count > 0, err
}
