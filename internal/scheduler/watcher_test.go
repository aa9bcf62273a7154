package scheduler

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	medicinedomain "medtrack-backend/internal/medicine/domain"
	notifdomain "medtrack-backend/internal/notification/domain"
)

func (e *testEnv) setInventory(t *testing.T, medicineID uint, inventory int) {
	t.Helper()
	require.NoError(t, e.db.Model(&medicinedomain.Medicine{}).
		Where("id = ?", medicineID).Update("inventory", inventory).Error)
}

func (e *testEnv) inventoryAlertCount(t *testing.T, medicineID uint) int64 {
	t.Helper()
	var count int64
	require.NoError(t, e.db.Model(&notifdomain.Notification{}).
		Where("notification_type = ? AND related_entity_id = ?", notifdomain.TypeInventory, medicineID).
		Count(&count).Error)
	return count
}

func intPtr(v int) *int { return &v }

func TestWatcherFiresOnce(t *testing.T) {
	env := newTestEnv(t)
	medicine := env.addMedicine(t, 1, "Aspirin", intPtr(3), intPtr(5))

	watcher := NewInventoryWatcher(env.medicines, env.notifications, env.emitter, false)
	require.NoError(t, watcher.Run(context.Background()))
	assert.EqualValues(t, 1, env.inventoryAlertCount(t, medicine.ID))

	var notification notifdomain.Notification
	require.NoError(t, env.db.First(&notification).Error)
	assert.Equal(t, "Low stock: Aspirin", notification.Title)
	assert.Equal(t, "Aspirin running low — 3 left", notification.Message)
	assert.Equal(t, medicine.UserID, notification.UserID)

	// Still below threshold: the alert is one-shot.
	require.NoError(t, watcher.Run(context.Background()))
	assert.EqualValues(t, 1, env.inventoryAlertCount(t, medicine.ID))
}

func TestWatcherOneShotSurvivesOscillation(t *testing.T) {
	env := newTestEnv(t)
	medicine := env.addMedicine(t, 1, "Aspirin", intPtr(3), intPtr(5))

	watcher := NewInventoryWatcher(env.medicines, env.notifications, env.emitter, false)
	require.NoError(t, watcher.Run(context.Background()))

	// Inventory oscillates below the threshold between ticks.
	env.setInventory(t, medicine.ID, 4)
	require.NoError(t, watcher.Run(context.Background()))
	env.setInventory(t, medicine.ID, 3)
	require.NoError(t, watcher.Run(context.Background()))

	assert.EqualValues(t, 1, env.inventoryAlertCount(t, medicine.ID))
}

func TestWatcherOneShotIgnoresRecovery(t *testing.T) {
	env := newTestEnv(t)
	medicine := env.addMedicine(t, 1, "Aspirin", intPtr(3), intPtr(5))

	watcher := NewInventoryWatcher(env.medicines, env.notifications, env.emitter, false)
	require.NoError(t, watcher.Run(context.Background()))

	// Even a full recovery does not re-arm the default policy.
	env.setInventory(t, medicine.ID, 50)
	require.NoError(t, watcher.Run(context.Background()))
	env.setInventory(t, medicine.ID, 2)
	require.NoError(t, watcher.Run(context.Background()))

	assert.EqualValues(t, 1, env.inventoryAlertCount(t, medicine.ID))
}

func TestWatcherRearmPolicy(t *testing.T) {
	env := newTestEnv(t)
	medicine := env.addMedicine(t, 1, "Aspirin", intPtr(3), intPtr(5))

	watcher := NewInventoryWatcher(env.medicines, env.notifications, env.emitter, true)
	require.NoError(t, watcher.Run(context.Background()))
	assert.EqualValues(t, 1, env.inventoryAlertCount(t, medicine.ID))

	// Below threshold with no recovery: still deduped.
	require.NoError(t, watcher.Run(context.Background()))
	assert.EqualValues(t, 1, env.inventoryAlertCount(t, medicine.ID))

	// Recovery above threshold re-arms; the next drop fires again.
	env.setInventory(t, medicine.ID, 10)
	require.NoError(t, watcher.Run(context.Background()))
	env.setInventory(t, medicine.ID, 4)
	require.NoError(t, watcher.Run(context.Background()))
	assert.EqualValues(t, 2, env.inventoryAlertCount(t, medicine.ID))
}

func TestWatcherRearmFallsBackOnStoredAlertAfterRestart(t *testing.T) {
	env := newTestEnv(t)
	medicine := env.addMedicine(t, 1, "Aspirin", intPtr(3), intPtr(5))

	first := NewInventoryWatcher(env.medicines, env.notifications, env.emitter, true)
	require.NoError(t, first.Run(context.Background()))

	// A fresh watcher (as after a restart) must not re-alert until it has
	// seen a recovery.
	second := NewInventoryWatcher(env.medicines, env.notifications, env.emitter, true)
	require.NoError(t, second.Run(context.Background()))
	assert.EqualValues(t, 1, env.inventoryAlertCount(t, medicine.ID))
}

func TestWatcherSkipsUntrackedMedicines(t *testing.T) {
	env := newTestEnv(t)
	noInventory := env.addMedicine(t, 1, "NoCount", nil, intPtr(5))
	noThreshold := env.addMedicine(t, 1, "NoThreshold", intPtr(0), nil)
	healthy := env.addMedicine(t, 1, "Healthy", intPtr(50), intPtr(5))

	watcher := NewInventoryWatcher(env.medicines, env.notifications, env.emitter, false)
	require.NoError(t, watcher.Run(context.Background()))

	assert.Zero(t, env.inventoryAlertCount(t, noInventory.ID))
	assert.Zero(t, env.inventoryAlertCount(t, noThreshold.ID))
	assert.Zero(t, env.inventoryAlertCount(t, healthy.ID))
}

func TestWatcherFiresAtExactThreshold(t *testing.T) {
	env := newTestEnv(t)
	medicine := env.addMedicine(t, 1, "Aspirin", intPtr(5), intPtr(5))

	watcher := NewInventoryWatcher(env.medicines, env.notifications, env.emitter, false)
	require.NoError(t, watcher.Run(context.Background()))
	assert.EqualValues(t, 1, env.inventoryAlertCount(t, medicine.ID))
}
