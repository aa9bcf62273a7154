package scheduler

import (
	"context"
	"fmt"
	"log"

	medicinedomain "medtrack-backend/internal/medicine/domain"
	notifdomain "medtrack-backend/internal/notification/domain"
)

// MedicineSource lists medicines with both inventory and threshold set.
type MedicineSource interface {
	FindInventoryTracked() ([]*medicinedomain.Medicine, error)
}

// InventoryDedup answers whether an inventory alert was ever created for
// a medicine.
type InventoryDedup interface {
	InventoryAlertExists(medicineID uint) (bool, error)
}

// InventoryWatcher emits low-stock alerts for medicines at or below
// their threshold. By default an alert is one-shot: once created it
// never fires again unless the old notification is deleted externally.
// With rearm enabled, observing the inventory back above the threshold
// re-arms the alert for that medicine.
type InventoryWatcher struct {
	medicines MedicineSource
	dedup     InventoryDedup
	emitter   Emitter

	rearm bool
	// fired tracks alerted medicines while re-arming is on. It is only
	// touched from the single scheduler goroutine.
	fired map[uint]bool
}

// NewInventoryWatcher creates a watcher with the given re-arm policy.
func NewInventoryWatcher(medicines MedicineSource, dedup InventoryDedup, emitter Emitter, rearm bool) *InventoryWatcher {
	return &InventoryWatcher{
		medicines: medicines,
		dedup:     dedup,
		emitter:   emitter,
		rearm:     rearm,
		fired:     make(map[uint]bool),
	}
}

// Run executes one low-inventory pass. Per-medicine failures are logged
// and skipped; only a failed medicine listing aborts the pass.
func (w *InventoryWatcher) Run(ctx context.Context) error {
	medicines, err := w.medicines.FindInventoryTracked()
	if err != nil {
		return fmt.Errorf("listing tracked medicines: %w", err)
	}

	for _, medicine := range medicines {
		if !medicine.InventoryTracked() {
			continue
		}
		if *medicine.Inventory > *medicine.LowThreshold {
			if w.rearm {
				delete(w.fired, medicine.ID)
			}
			continue
		}

		skip, err := w.alreadyAlerted(medicine.ID)
		if err != nil {
			log.Printf("[Scheduler] Inventory dedup check failed for medicine %d: %v", medicine.ID, err)
			continue
		}
		if skip {
			continue
		}

		title := fmt.Sprintf("Low stock: %s", medicine.Name)
		message := fmt.Sprintf("%s running low — %d left", medicine.Name, *medicine.Inventory)

		relatedType := notifdomain.RelatedMedicine
		relatedID := medicine.ID
		if _, err := w.emitter.Emit(ctx, medicine.UserID, title, message, notifdomain.TypeInventory, &relatedType, &relatedID); err != nil {
			log.Printf("[Scheduler] Failed to emit inventory alert for medicine %d: %v", medicine.ID, err)
			continue
		}
		if w.rearm {
			w.fired[medicine.ID] = true
		}
		log.Printf("[Scheduler] Low inventory alert for medicine %s (user %d)", medicine.Name, medicine.UserID)
	}
	return nil
}

func (w *InventoryWatcher) alreadyAlerted(medicineID uint) (bool, error) {
	if !w.rearm {
		return w.dedup.InventoryAlertExists(medicineID)
	}
	if w.fired[medicineID] {
		return true, nil
	}
	// After a restart the in-memory state is empty; fall back on the
	// stored alert until a recovery above threshold is observed.
	exists, err := w.dedup.InventoryAlertExists(medicineID)
	if err != nil {
		return false, err
	}
	if exists {
		w.fired[medicineID] = true
	}
	return exists, nil
}
