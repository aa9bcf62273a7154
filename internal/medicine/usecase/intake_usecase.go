package usecase

import (
	"errors"
	"time"

	"medtrack-backend/internal/medicine/domain"
	"medtrack-backend/internal/medicine/repository"
)

var ErrIntakeNotFound = errors.New("intake not found")

// IntakeView is an intake log flattened with a medicine snapshot for
// listing.
type IntakeView struct {
	ID             uint      `json:"id"`
	MedicineID     uint      `json:"medicine_id"`
	TakenAt        time.Time `json:"taken_at"`
	MedicineName   string    `json:"medicine_name,omitempty"`
	MedicineDosage *string   `json:"medicine_dosage,omitempty"`
}

// IntakeUsecase logs doses and keeps the inventory count in step.
type IntakeUsecase interface {
	Log(userID, medicineID uint) (*IntakeView, error)
	List(userID uint) ([]*IntakeView, error)
	Delete(userID, intakeID uint) error
}

type intakeUsecase struct {
	intakes   repository.IntakeRepository
	medicines repository.MedicineRepository
}

// NewIntakeUsecase creates a new instance of intakeUsecase
func NewIntakeUsecase(intakes repository.IntakeRepository, medicines repository.MedicineRepository) IntakeUsecase {
	return &intakeUsecase{
		intakes:   intakes,
		medicines: medicines,
	}
}

// Log records a dose and decrements inventory, never below zero.
// Untracked inventory (nil) is left untouched.
func (u *intakeUsecase) Log(userID, medicineID uint) (*IntakeView, error) {
	medicine, err := u.medicines.FindByIDForUser(medicineID, userID)
	if err != nil {
		return nil, err
	}
	if medicine == nil {
		return nil, ErrMedicineNotFound
	}

	if medicine.Inventory != nil && *medicine.Inventory > 0 {
		remaining := *medicine.Inventory - 1
		medicine.Inventory = &remaining
		if err := u.medicines.Update(medicine); err != nil {
			return nil, err
		}
	}

	intake := &domain.IntakeLog{
		MedicineID: medicine.ID,
		UserID:     userID,
		TakenAt:    time.Now(),
	}
	if err := u.intakes.Create(intake); err != nil {
		return nil, err
	}

	return &IntakeView{
		ID:             intake.ID,
		MedicineID:     intake.MedicineID,
		TakenAt:        intake.TakenAt,
		MedicineName:   medicine.Name,
		MedicineDosage: medicine.Dosage,
	}, nil
}

func (u *intakeUsecase) List(userID uint) ([]*IntakeView, error) {
	intakes, err := u.intakes.FindByUser(userID)
	if err != nil {
		return nil, err
	}

	views := make([]*IntakeView, 0, len(intakes))
	for _, intake := range intakes {
		view := &IntakeView{
			ID:         intake.ID,
			MedicineID: intake.MedicineID,
			TakenAt:    intake.TakenAt,
		}
		if intake.Medicine != nil {
			view.MedicineName = intake.Medicine.Name
			view.MedicineDosage = intake.Medicine.Dosage
		}
		views = append(views, view)
	}
	return views, nil
}

// Delete removes an intake record and restores one unit of inventory.
// Unlike Log there is no bound on the restore: an untracked count starts
// over at 1.
func (u *intakeUsecase) Delete(userID, intakeID uint) error {
	intake, err := u.intakes.FindByIDForUser(intakeID, userID)
	if err != nil {
		return err
	}
	if intake == nil {
		return ErrIntakeNotFound
	}

	medicine, err := u.medicines.FindByID(intake.MedicineID)
	if err != nil {
		return err
	}
	if medicine != nil {
		restored := 1
		if medicine.Inventory != nil {
			restored = *medicine.Inventory + 1
		}
		medicine.Inventory = &restored
		if err := u.medicines.Update(medicine); err != nil {
			return err
		}
	}

	return u.intakes.Delete(intake.ID)
}
