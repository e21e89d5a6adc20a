package models

import (
	"time"

	"github.com/google/uuid"
)

// ChecklistItem is one of the fixed launch pre-conditions.
type ChecklistItem string

const (
	ChecklistITSystemsReady    ChecklistItem = "it_systems_ready"
	ChecklistSalesTrainingDone ChecklistItem = "sales_training_done"
	ChecklistLegalReviewPassed ChecklistItem = "legal_review_passed"
	ChecklistTariffsLoaded     ChecklistItem = "tariffs_loaded"
	ChecklistDocumentsPrinted  ChecklistItem = "documents_printed"
	ChecklistCBPackagePrepared ChecklistItem = "cb_package_prepared"
)

// AllChecklistItems lists the launch checklist in display order.
// The checklist is fixed-size; readiness uses its length as the denominator.
var AllChecklistItems = []ChecklistItem{
	ChecklistITSystemsReady,
	ChecklistSalesTrainingDone,
	ChecklistLegalReviewPassed,
	ChecklistTariffsLoaded,
	ChecklistDocumentsPrinted,
	ChecklistCBPackagePrepared,
}

// IsValidChecklistItem checks if the given item is part of the fixed list.
func IsValidChecklistItem(i ChecklistItem) bool {
	for _, v := range AllChecklistItems {
		if v == i {
			return true
		}
	}
	return false
}

// ChecklistState records whether one launch pre-condition is met for a product.
type ChecklistState struct {
	ProductID uuid.UUID     `json:"product_id"`
	Item      ChecklistItem `json:"item"`
	Checked   bool          `json:"checked"`
	UpdatedBy string        `json:"updated_by"`
	UpdatedAt time.Time     `json:"updated_at"`
}
