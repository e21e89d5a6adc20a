package models

import "math"

// ReadinessTier is the four-bucket color coding of the readiness bar.
type ReadinessTier string

const (
	TierRed   ReadinessTier = "red"   // < 33%
	TierAmber ReadinessTier = "amber" // < 66%
	TierBlue  ReadinessTier = "blue"  // < 100%
	TierGreen ReadinessTier = "green" // exactly 100%
)

// ReadinessSnapshot is the launch-readiness score computed on demand from
// approvals, uploaded artifacts and the launch checklist. It is never
// persisted; every mutation to any input recomputes it fresh.
type ReadinessSnapshot struct {
	ApprovalsCount int           `json:"approvals_count"`
	ApprovalsTotal int           `json:"approvals_total"`
	ArtifactsCount int           `json:"artifacts_count"`
	ArtifactsTotal int           `json:"artifacts_total"`
	ChecklistCount int           `json:"checklist_count"`
	ChecklistTotal int           `json:"checklist_total"`
	OverallPercent int           `json:"overall_percent"`
	Tier           ReadinessTier `json:"tier"`
}

// ComputeReadiness combines the three completion ratios into one percentage.
// Each ratio is weighted equally: overall = round(mean of ratios * 100).
func ComputeReadiness(approvals, approvalsTotal, artifacts, artifactsTotal, checklist, checklistTotal int) ReadinessSnapshot {
	snap := ReadinessSnapshot{
		ApprovalsCount: approvals,
		ApprovalsTotal: approvalsTotal,
		ArtifactsCount: artifacts,
		ArtifactsTotal: artifactsTotal,
		ChecklistCount: checklist,
		ChecklistTotal: checklistTotal,
	}

	mean := (ratio(approvals, approvalsTotal) +
		ratio(artifacts, artifactsTotal) +
		ratio(checklist, checklistTotal)) / 3

	snap.OverallPercent = int(math.Round(mean * 100))
	snap.Tier = tierFor(snap.OverallPercent)
	return snap
}

func ratio(count, total int) float64 {
	if total <= 0 {
		return 0
	}
	if count > total {
		count = total
	}
	return float64(count) / float64(total)
}

func tierFor(percent int) ReadinessTier {
	switch {
	case percent < 33:
		return TierRed
	case percent < 66:
		return TierAmber
	case percent < 100:
		return TierBlue
	default:
		return TierGreen
	}
}
