package usecase

import (
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"medtrack-backend/internal/medicine/domain"
	"medtrack-backend/internal/medicine/repository"
	scheduledomain "medtrack-backend/internal/schedule/domain"
	"medtrack-backend/pkg/timeutil"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	// In-memory SQLite is per-connection; keep the pool at one.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(
		&domain.Medicine{},
		&domain.IntakeLog{},
		&scheduledomain.Schedule{},
		&scheduledomain.ScheduleTime{},
	))
	return db
}

func intPtr(v int) *int { return &v }

func strPtr(v string) *string { return &v }

func TestMedicineCRUDScopedByUser(t *testing.T) {
	db := newTestDB(t)
	medicines := NewMedicineUsecase(repository.NewMedicineRepository(db))

	created, err := medicines.Create(1, MedicineInput{
		Name:         "Paracetamol",
		Dosage:       strPtr("500mg"),
		Inventory:    intPtr(20),
		LowThreshold: intPtr(5),
	})
	require.NoError(t, err)
	require.NotZero(t, created.ID)

	// Another user cannot see it.
	_, err = medicines.GetByID(2, created.ID)
	assert.ErrorIs(t, err, ErrMedicineNotFound)

	got, err := medicines.GetByID(1, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Paracetamol", got.Name)
	assert.True(t, got.InventoryTracked())

	// Updating can turn tracking off via nil fields.
	updated, err := medicines.Update(1, created.ID, MedicineInput{Name: "Paracetamol", Dosage: strPtr("500mg")})
	require.NoError(t, err)
	assert.Nil(t, updated.Inventory)
	assert.Nil(t, updated.LowThreshold)
	assert.False(t, updated.InventoryTracked())
}

func TestDeleteMedicineCascades(t *testing.T) {
	db := newTestDB(t)
	medicineRepo := repository.NewMedicineRepository(db)
	medicines := NewMedicineUsecase(medicineRepo)
	intakes := NewIntakeUsecase(repository.NewIntakeRepository(db), medicineRepo)

	med, err := medicines.Create(1, MedicineInput{Name: "Ibuprofen", Inventory: intPtr(10)})
	require.NoError(t, err)

	schedule := &scheduledomain.Schedule{
		MedicineID: med.ID,
		Kind:       scheduledomain.RecurrenceDaily,
		Interval:   1,
		Times: []scheduledomain.ScheduleTime{
			{TimeOfDay: timeutil.TimeOfDay{Hour: 8}},
			{TimeOfDay: timeutil.TimeOfDay{Hour: 20}},
		},
	}
	require.NoError(t, db.Create(schedule).Error)

	_, err = intakes.Log(1, med.ID)
	require.NoError(t, err)

	require.NoError(t, medicines.Delete(1, med.ID))

	var scheduleCount, timeCount, intakeCount int64
	require.NoError(t, db.Model(&scheduledomain.Schedule{}).Count(&scheduleCount).Error)
	require.NoError(t, db.Model(&scheduledomain.ScheduleTime{}).Count(&timeCount).Error)
	require.NoError(t, db.Model(&domain.IntakeLog{}).Count(&intakeCount).Error)
	assert.Zero(t, scheduleCount, "no orphaned schedules")
	assert.Zero(t, timeCount, "no orphaned schedule times")
	assert.Zero(t, intakeCount, "no orphaned intake logs")

	_, err = medicines.GetByID(1, med.ID)
	assert.ErrorIs(t, err, ErrMedicineNotFound)
}

func TestLogIntakeDecrementsInventory(t *testing.T) {
	db := newTestDB(t)
	medicineRepo := repository.NewMedicineRepository(db)
	medicines := NewMedicineUsecase(medicineRepo)
	intakes := NewIntakeUsecase(repository.NewIntakeRepository(db), medicineRepo)

	med, err := medicines.Create(1, MedicineInput{Name: "Aspirin", Dosage: strPtr("100mg"), Inventory: intPtr(2)})
	require.NoError(t, err)

	view, err := intakes.Log(1, med.ID)
	require.NoError(t, err)
	assert.Equal(t, "Aspirin", view.MedicineName)
	assert.Equal(t, "100mg", *view.MedicineDosage)

	got, err := medicines.GetByID(1, med.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, *got.Inventory)
}

func TestLogIntakeFloorsInventoryAtZero(t *testing.T) {
	db := newTestDB(t)
	medicineRepo := repository.NewMedicineRepository(db)
	medicines := NewMedicineUsecase(medicineRepo)
	intakes := NewIntakeUsecase(repository.NewIntakeRepository(db), medicineRepo)

	med, err := medicines.Create(1, MedicineInput{Name: "Aspirin", Inventory: intPtr(0)})
	require.NoError(t, err)

	intake, err := intakes.Log(1, med.ID)
	require.NoError(t, err)

	got, err := medicines.GetByID(1, med.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, *got.Inventory, "inventory never goes negative")

	// Deleting the intake restores one unit with no floor check.
	require.NoError(t, intakes.Delete(1, intake.ID))
	got, err = medicines.GetByID(1, med.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, *got.Inventory)
}

func TestLogIntakeUntrackedInventory(t *testing.T) {
	db := newTestDB(t)
	medicineRepo := repository.NewMedicineRepository(db)
	medicines := NewMedicineUsecase(medicineRepo)
	intakes := NewIntakeUsecase(repository.NewIntakeRepository(db), medicineRepo)

	med, err := medicines.Create(1, MedicineInput{Name: "Vitamins"})
	require.NoError(t, err)

	intake, err := intakes.Log(1, med.ID)
	require.NoError(t, err)

	got, err := medicines.GetByID(1, med.ID)
	require.NoError(t, err)
	assert.Nil(t, got.Inventory, "untracked count stays untracked on log")

	// The restore path starts an untracked count over at 1.
	require.NoError(t, intakes.Delete(1, intake.ID))
	got, err = medicines.GetByID(1, med.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Inventory)
	assert.Equal(t, 1, *got.Inventory)
}

func TestIntakeListNewestFirst(t *testing.T) {
	db := newTestDB(t)
	medicineRepo := repository.NewMedicineRepository(db)
	medicines := NewMedicineUsecase(medicineRepo)
	intakes := NewIntakeUsecase(repository.NewIntakeRepository(db), medicineRepo)

	med, err := medicines.Create(1, MedicineInput{Name: "Aspirin", Inventory: intPtr(10)})
	require.NoError(t, err)

	first, err := intakes.Log(1, med.ID)
	require.NoError(t, err)
	second, err := intakes.Log(1, med.ID)
	require.NoError(t, err)

	// Force a deterministic ordering regardless of clock resolution.
	require.NoError(t, db.Model(&domain.IntakeLog{}).Where("id = ?", second.ID).
		Update("taken_at", first.TakenAt.Add(time.Minute)).Error)

	views, err := intakes.List(1)
	require.NoError(t, err)
	require.Len(t, views, 2)
	assert.Equal(t, second.ID, views[0].ID)
	assert.Equal(t, "Aspirin", views[0].MedicineName)
}

func TestIntakeScopedByUser(t *testing.T) {
	db := newTestDB(t)
	medicineRepo := repository.NewMedicineRepository(db)
	medicines := NewMedicineUsecase(medicineRepo)
	intakes := NewIntakeUsecase(repository.NewIntakeRepository(db), medicineRepo)

	med, err := medicines.Create(1, MedicineInput{Name: "Aspirin", Inventory: intPtr(10)})
	require.NoError(t, err)

	_, err = intakes.Log(2, med.ID)
	assert.ErrorIs(t, err, ErrMedicineNotFound)

	intake, err := intakes.Log(1, med.ID)
	require.NoError(t, err)

	err = intakes.Delete(2, intake.ID)
	assert.ErrorIs(t, err, ErrIntakeNotFound)
}
