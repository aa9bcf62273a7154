package usecase

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	medicinedomain "medtrack-backend/internal/medicine/domain"
	notifdomain "medtrack-backend/internal/notification/domain"
	scheduledomain "medtrack-backend/internal/schedule/domain"
	"medtrack-backend/internal/user/domain"
	"medtrack-backend/internal/user/repository"
	"medtrack-backend/pkg/timeutil"
)

func newTestUsecase(t *testing.T) UserUsecase {
	usecase, _ := newTestUsecaseWithDB(t)
	return usecase
}

func newTestUsecaseWithDB(t *testing.T) (UserUsecase, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	// In-memory SQLite is per-connection; keep the pool at one.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(
		&domain.User{},
		&domain.DeviceToken{},
		&medicinedomain.Medicine{},
		&medicinedomain.IntakeLog{},
		&scheduledomain.Schedule{},
		&scheduledomain.ScheduleTime{},
		&notifdomain.Notification{},
	))
	return NewUserUsecase(repository.NewUserRepository(db), repository.NewDeviceTokenRepository(db)), db
}

func TestRegisterHashesCredential(t *testing.T) {
	users := newTestUsecase(t)

	user, err := users.Register("Asha", "asha@example.com", "s3cret")
	require.NoError(t, err)
	require.NotZero(t, user.ID)
	assert.True(t, user.IsActive)
	assert.NotEqual(t, "s3cret", user.PasswordHash)
	assert.True(t, repository.CheckPassword("s3cret", user.PasswordHash))
	assert.False(t, repository.CheckPassword("wrong", user.PasswordHash))
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	users := newTestUsecase(t)

	_, err := users.Register("Asha", "asha@example.com", "s3cret")
	require.NoError(t, err)

	_, err = users.Register("Someone Else", "asha@example.com", "other")
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestDeviceTokenRegistration(t *testing.T) {
	users := newTestUsecase(t)

	a, err := users.Register("A", "a@example.com", "pw")
	require.NoError(t, err)
	b, err := users.Register("B", "b@example.com", "pw")
	require.NoError(t, err)

	// Same pair registered twice stays a single row.
	first, err := users.RegisterDeviceToken(a.ID, "device-1")
	require.NoError(t, err)
	again, err := users.RegisterDeviceToken(a.ID, "device-1")
	require.NoError(t, err)
	assert.Equal(t, first.ID, again.ID)

	// The same token value may belong to another user too.
	_, err = users.RegisterDeviceToken(b.ID, "device-1")
	require.NoError(t, err)

	_, err = users.RegisterDeviceToken(a.ID, "device-2")
	require.NoError(t, err)

	tokens, err := users.DeviceTokens(a.ID)
	require.NoError(t, err)
	assert.Len(t, tokens, 2)

	tokens, err = users.DeviceTokens(b.ID)
	require.NoError(t, err)
	assert.Len(t, tokens, 1)

	require.NoError(t, users.UnregisterDeviceToken(a.ID, "device-1"))
	tokens, err = users.DeviceTokens(a.ID)
	require.NoError(t, err)
	require.Len(t, tokens, 1)
	assert.Equal(t, "device-2", tokens[0].Token)
}

func TestRegisterDeviceTokenUnknownUser(t *testing.T) {
	users := newTestUsecase(t)

	_, err := users.RegisterDeviceToken(99, "device-1")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestDeleteCascadesOwnedRows(t *testing.T) {
	users, db := newTestUsecaseWithDB(t)

	user, err := users.Register("Asha", "asha@example.com", "pw")
	require.NoError(t, err)
	other, err := users.Register("B", "b@example.com", "pw")
	require.NoError(t, err)

	_, err = users.RegisterDeviceToken(user.ID, "device-1")
	require.NoError(t, err)
	_, err = users.RegisterDeviceToken(other.ID, "device-2")
	require.NoError(t, err)

	seed := func(userID uint) {
		medicine := &medicinedomain.Medicine{UserID: userID, Name: "Aspirin"}
		require.NoError(t, db.Create(medicine).Error)
		require.NoError(t, db.Create(&scheduledomain.Schedule{
			MedicineID: medicine.ID,
			Kind:       scheduledomain.RecurrenceDaily,
			Interval:   1,
			Times:      []scheduledomain.ScheduleTime{{TimeOfDay: timeutil.TimeOfDay{Hour: 8}}},
		}).Error)
		require.NoError(t, db.Create(&medicinedomain.IntakeLog{MedicineID: medicine.ID, UserID: userID}).Error)
		require.NoError(t, db.Create(&notifdomain.Notification{UserID: userID, Title: "r", Message: "r", Type: notifdomain.TypeReminder}).Error)
	}
	seed(user.ID)
	seed(other.ID)

	require.NoError(t, users.Delete(user.ID))

	count := func(model interface{}, query string, args ...interface{}) int64 {
		var n int64
		require.NoError(t, db.Model(model).Where(query, args...).Count(&n).Error)
		return n
	}
	assert.Zero(t, count(&domain.User{}, "id = ?", user.ID))
	assert.Zero(t, count(&domain.DeviceToken{}, "user_id = ?", user.ID))
	assert.Zero(t, count(&medicinedomain.Medicine{}, "user_id = ?", user.ID))
	assert.Zero(t, count(&medicinedomain.IntakeLog{}, "user_id = ?", user.ID))
	assert.Zero(t, count(&notifdomain.Notification{}, "user_id = ?", user.ID))
	var orphanSchedules int64
	require.NoError(t, db.Model(&scheduledomain.Schedule{}).
		Where("medicine_id NOT IN (?)", db.Model(&medicinedomain.Medicine{}).Select("id")).
		Count(&orphanSchedules).Error)
	assert.Zero(t, orphanSchedules)
	var orphanTimes int64
	require.NoError(t, db.Model(&scheduledomain.ScheduleTime{}).
		Where("schedule_id NOT IN (?)", db.Model(&scheduledomain.Schedule{}).Select("id")).
		Count(&orphanTimes).Error)
	assert.Zero(t, orphanTimes)

	// The other account is untouched.
	assert.EqualValues(t, 1, count(&domain.DeviceToken{}, "user_id = ?", other.ID))
	assert.EqualValues(t, 1, count(&medicinedomain.Medicine{}, "user_id = ?", other.ID))
	assert.EqualValues(t, 1, count(&notifdomain.Notification{}, "user_id = ?", other.ID))
}

func TestDeleteUnknownUser(t *testing.T) {
	users := newTestUsecase(t)
	assert.ErrorIs(t, users.Delete(42), ErrUserNotFound)
}
