package usecase

import (
	"errors"

	"medtrack-backend/internal/medicine/domain"
	"medtrack-backend/internal/medicine/repository"
)

var ErrMedicineNotFound = errors.New("medicine not found")

// MedicineInput carries the caller-editable medicine fields. Nil
// Inventory means the count is not tracked; nil LowThreshold disables
// low-stock alerts.
type MedicineInput struct {
	Name         string
	Dosage       *string
	Inventory    *int
	LowThreshold *int
}

// MedicineUsecase is the CRUD surface for a user's medicine cabinet.
type MedicineUsecase interface {
	Create(userID uint, in MedicineInput) (*domain.Medicine, error)
	GetByID(userID, medicineID uint) (*domain.Medicine, error)
	List(userID uint) ([]*domain.Medicine, error)
	Update(userID, medicineID uint, in MedicineInput) (*domain.Medicine, error)
	Delete(userID, medicineID uint) error
}

type medicineUsecase struct {
	medicines repository.MedicineRepository
}

// NewMedicineUsecase creates a new instance of medicineUsecase
func NewMedicineUsecase(medicines repository.MedicineRepository) MedicineUsecase {
	return &medicineUsecase{medicines: medicines}
}

func (u *medicineUsecase) Create(userID uint, in MedicineInput) (*domain.Medicine, error) {
	medicine := &domain.Medicine{
		UserID:       userID,
		Name:         in.Name,
		Dosage:       in.Dosage,
		Inventory:    in.Inventory,
		LowThreshold: in.LowThreshold,
	}
	if err := u.medicines.Create(medicine); err != nil {
		return nil, err
	}
	return medicine, nil
}

func (u *medicineUsecase) GetByID(userID, medicineID uint) (*domain.Medicine, error) {
	medicine, err := u.medicines.FindByIDForUser(medicineID, userID)
	if err != nil {
		return nil, err
	}
	if medicine == nil {
		return nil, ErrMedicineNotFound
	}
	return medicine, nil
}

func (u *medicineUsecase) List(userID uint) ([]*domain.Medicine, error) {
	return u.medicines.FindByUser(userID)
}

func (u *medicineUsecase) Update(userID, medicineID uint, in MedicineInput) (*domain.Medicine, error) {
	medicine, err := u.GetByID(userID, medicineID)
	if err != nil {
		return nil, err
	}

	medicine.Name = in.Name
	medicine.Dosage = in.Dosage
	medicine.Inventory = in.Inventory
	medicine.LowThreshold = in.LowThreshold

	if err := u.medicines.Update(medicine); err != nil {
		return nil, err
	}
	return medicine, nil
}

// Delete removes the medicine and cascades to its schedules, schedule
// times and intake logs.
func (u *medicineUsecase) Delete(userID, medicineID uint) error {
	medicine, err := u.GetByID(userID, medicineID)
	if err != nil {
		return err
	}
	return u.medicines.Delete(medicine.ID)
}
